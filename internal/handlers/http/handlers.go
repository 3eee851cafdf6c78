package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tobias-fyi/xebec/internal/blockchain"
)

// how long a forged-block notification may take before it is dropped
const publishTimeout = 2 * time.Second

// Ledger is what the HTTP layer needs from the chain.
type Ledger interface {
	NewTransaction(sender, recipient string, amount float64) int64
	SubmitProof(proof int64) (blockchain.Block, error)
	LastBlock() blockchain.Block
	FullChain() []blockchain.Block
	Mempool() []blockchain.Transaction
}

// Publisher gets told about every block forged through /mine.
type Publisher interface {
	BlockForged(ctx context.Context, block blockchain.Block) error
}

// inbound side of the node: gin routes on top of the ledger
type Handlers struct {
	ledger    Ledger
	publisher Publisher
	log       *slog.Logger
}

type Option func(*Handlers)

func WithPublisher(p Publisher) Option {
	return func(h *Handlers) {
		h.publisher = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handlers) {
		if l != nil {
			h.log = l
		}
	}
}

func New(ledger Ledger, opts ...Option) *Handlers {
	h := &Handlers{ledger: ledger, log: slog.Default()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Router builds the gin engine with every route registered.
func (h *Handlers) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	h.registerHealthEndpoints(r)
	h.registerLedgerEndpoints(r)
	h.registerMempoolEndpoints(r)

	return r
}

// runs on its own goroutine, the miner already has its answer
func (h *Handlers) publish(block blockchain.Block) {
	if h.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := h.publisher.BlockForged(ctx, block); err != nil {
		h.log.Warn("handlers: could not publish forged block", "index", block.Index, "error", err)
	}
}
