package blockchain

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrInvalidProof is returned when a proof does not satisfy the target for
// the current head. The head may have moved since the caller fetched it.
var ErrInvalidProof = errors.New("invalid proof")

// Blockchain owns the chain and the pending transactions. Every mutation
// happens under mu, so reading the head, validating a proof, appending the
// block and clearing the mempool is one atomic step.
type Blockchain struct {
	mu     sync.RWMutex
	ledger []Block
	mpool  []Transaction

	pow *ProofOfWork
	now func() time.Time
	log *slog.Logger
}

type Option func(*Blockchain)

func WithDifficulty(difficulty int) Option {
	return func(b *Blockchain) {
		b.pow = NewProofOfWork(difficulty)
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Blockchain) {
		if now != nil {
			b.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Blockchain) {
		if l != nil {
			b.log = l
		}
	}
}

// starts with the genesis block and an empty mempool
func New(opts ...Option) *Blockchain {
	b := &Blockchain{
		pow: NewProofOfWork(DefaultDifficulty),
		now: time.Now,
		log: slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}

	b.ledger = []Block{Genesis(b.now())}
	b.mpool = []Transaction{}
	return b
}

// SubmitProof validates proof against the head at the moment of the call and,
// if it holds, forges the next block with every pending transaction.
func (b *Blockchain) SubmitProof(proof int64) (Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	head := b.ledger[len(b.ledger)-1]
	reference := string(Serialize(head))

	if !b.pow.Validate(reference, proof) {
		b.log.Debug("blockchain: proof rejected", "proof", proof, "head", head.Index)
		return Block{}, ErrInvalidProof
	}

	block := Block{
		Index:        head.Index + 1,
		Timestamp:    Timestamp(b.now()),
		Transactions: b.mpool,
		Proof:        proof,
		PreviousHash: Digest(Hash(head)),
		Hash:         ProofHash(reference, proof),
	}

	b.ledger = append(b.ledger, block)
	b.mpool = []Transaction{}

	b.log.Info("blockchain: block forged",
		"index", block.Index,
		"proof", block.Proof,
		"transactions", len(block.Transactions),
		"previous_hash", block.PreviousHash.String())

	return block.clone(), nil
}

func (b *Blockchain) LastBlock() Block {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.ledger[len(b.ledger)-1].clone()
}

func (b *Blockchain) FullChain() []Block {
	b.mu.RLock()
	defer b.mu.RUnlock()

	chain := make([]Block, len(b.ledger))
	for i, block := range b.ledger {
		chain[i] = block.clone()
	}
	return chain
}

func (b *Blockchain) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.ledger)
}

func (b *Blockchain) Difficulty() int {
	return b.pow.Difficulty()
}
