package wallet

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tobias-fyi/xebec/internal/blockchain"
	handlers "github.com/tobias-fyi/xebec/internal/handlers/http"
	"github.com/tobias-fyi/xebec/internal/models"
	"github.com/tobias-fyi/xebec/internal/nodeclient"
)

type stubNode struct {
	chain []blockchain.Block
	sent  []blockchain.Transaction
}

func (s *stubNode) Chain(ctx context.Context) (models.ChainResponse, error) {
	return models.ChainResponse{Length: len(s.chain), Chain: s.chain}, nil
}

func (s *stubNode) NewTransaction(ctx context.Context, sender, recipient string, amount float64) (models.TransactionResponse, error) {
	s.sent = append(s.sent, blockchain.Transaction{Sender: sender, Recipient: recipient, Amount: amount})
	return models.TransactionResponse{Index: int64(len(s.chain) + 1)}, nil
}

func block(index int64, txs ...blockchain.Transaction) blockchain.Block {
	return blockchain.Block{Index: index, Timestamp: float64(1700000000 + index), Transactions: txs}
}

func TestApplyBalances(t *testing.T) {
	w := New(nil, "007", 100)
	chain := []blockchain.Block{
		block(1),
		block(2,
			blockchain.Transaction{Sender: "007", Recipient: "008", Amount: 30},
			blockchain.Transaction{Sender: "008", Recipient: "009", Amount: 5},
		),
		block(3, blockchain.Transaction{Sender: "009", Recipient: "007", Amount: 2.5}),
	}

	if n := w.Apply(chain); n != 2 {
		t.Fatalf("added %d entries, want 2", n)
	}
	if got := w.Balance(); got != 72.5 {
		t.Fatalf("balance = %v, want 72.5", got)
	}

	hist := w.History()
	if hist[0].BlockIndex != 2 || hist[1].BlockIndex != 3 || !hist[1].Received("007") {
		t.Fatalf("history = %+v", hist)
	}
	if hist[1].BlockTimestamp != 1700000003 {
		t.Fatalf("timestamp = %v", hist[1].BlockTimestamp)
	}
}

func TestApplyIsIncremental(t *testing.T) {
	w := New(nil, "007", 0)
	chain := []blockchain.Block{
		block(1),
		block(2, blockchain.Transaction{Sender: "x", Recipient: "007", Amount: 10}),
	}
	w.Apply(chain)
	w.Apply(chain)
	if w.Balance() != 10 {
		t.Fatalf("re-applying the same chain counted twice: %v", w.Balance())
	}

	chain = append(chain, block(3, blockchain.Transaction{Sender: "007", Recipient: "y", Amount: 4}))
	if n := w.Apply(chain); n != 1 {
		t.Fatalf("added %d, want 1", n)
	}
	if w.Balance() != 6 {
		t.Fatalf("balance = %v, want 6", w.Balance())
	}
}

func TestApplyShorterChainRescans(t *testing.T) {
	w := New(nil, "007", 1)
	w.Apply([]blockchain.Block{
		block(1),
		block(2, blockchain.Transaction{Sender: "x", Recipient: "007", Amount: 10}),
		block(3, blockchain.Transaction{Sender: "x", Recipient: "007", Amount: 10}),
	})
	w.Apply([]blockchain.Block{block(1)})
	if w.Balance() != 1 || len(w.History()) != 0 {
		t.Fatalf("balance = %v history = %d after reset", w.Balance(), len(w.History()))
	}
}

func TestSelfTransferCountsAsReceived(t *testing.T) {
	w := New(nil, "007", 0)
	w.Apply([]blockchain.Block{block(1, blockchain.Transaction{Sender: "007", Recipient: "007", Amount: 3})})
	if w.Balance() != 3 {
		t.Fatalf("balance = %v, want 3", w.Balance())
	}
}

func TestSendRefusesOverdraw(t *testing.T) {
	node := &stubNode{chain: []blockchain.Block{block(1)}}
	w := New(node, "007", 5)

	if _, err := w.Send(context.Background(), "008", 6); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if len(node.sent) != 0 {
		t.Fatalf("overdraw reached the node")
	}

	index, err := w.Send(context.Background(), "008", 5)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if index != 2 || node.sent[0].Sender != "007" {
		t.Fatalf("index = %d sent = %+v", index, node.sent)
	}
}

func TestSyncAgainstNode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bc := blockchain.New(blockchain.WithDifficulty(1))
	srv := httptest.NewServer(handlers.New(bc).Router())
	defer srv.Close()

	cl, err := nodeclient.New(srv.URL)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	w := New(cl, "007", 100)
	ctx := context.Background()

	if _, err := w.Send(ctx, "008", 40); err != nil {
		t.Fatalf("send: %v", err)
	}
	// pending transactions do not move the balance
	if _, err := w.Sync(ctx); err != nil || w.Balance() != 100 {
		t.Fatalf("sync before mining: balance %v err %v", w.Balance(), err)
	}

	pow := blockchain.NewProofOfWork(1)
	proof, err := pow.Run(ctx, string(blockchain.Serialize(bc.LastBlock())))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := bc.SubmitProof(proof); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if n, err := w.Sync(ctx); err != nil || n != 1 {
		t.Fatalf("sync: n=%d err=%v", n, err)
	}
	if w.Balance() != 60 {
		t.Fatalf("balance = %v, want 60", w.Balance())
	}
}
