// Package wallet keeps a client-side balance for one user by scanning the
// node's chain for transactions that name it.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tobias-fyi/xebec/internal/blockchain"
	"github.com/tobias-fyi/xebec/internal/models"
)

var ErrInsufficientFunds = errors.New("not enough coins for transaction")

// Entry is a transaction involving the user, tagged with the block it landed in.
type Entry struct {
	Transaction    blockchain.Transaction
	BlockIndex     int64
	BlockTimestamp float64
}

// Received reports whether the user is the recipient of the entry.
func (e Entry) Received(userID string) bool {
	return e.Transaction.Recipient == userID
}

type Node interface {
	Chain(ctx context.Context) (models.ChainResponse, error)
	NewTransaction(ctx context.Context, sender, recipient string, amount float64) (models.TransactionResponse, error)
}

type Wallet struct {
	mu        sync.Mutex
	node      Node
	userID    string
	initial   float64
	balance   float64
	history   []Entry
	processed int // blocks already scanned
}

func New(node Node, userID string, balance float64) *Wallet {
	return &Wallet{
		node:    node,
		userID:  userID,
		initial: balance,
		balance: balance,
	}
}

func (w *Wallet) UserID() string {
	return w.userID
}

func (w *Wallet) Balance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

func (w *Wallet) History() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Entry, len(w.history))
	copy(out, w.history)
	return out
}

// Apply scans the blocks past the last one seen and returns how many entries
// were added. A chain shorter than what was already scanned restarts the scan
// from the initial balance.
func (w *Wallet) Apply(chain []blockchain.Block) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(chain) < w.processed {
		w.balance = w.initial
		w.history = nil
		w.processed = 0
	}

	added := 0
	for _, block := range chain[w.processed:] {
		for _, tx := range block.Transactions {
			if tx.Sender != w.userID && tx.Recipient != w.userID {
				continue
			}
			w.history = append(w.history, Entry{
				Transaction:    tx,
				BlockIndex:     block.Index,
				BlockTimestamp: block.Timestamp,
			})
			if tx.Recipient == w.userID {
				w.balance += tx.Amount
			} else {
				w.balance -= tx.Amount
			}
			added++
		}
	}
	w.processed = len(chain)
	return added
}

// Sync pulls the full chain from the node and applies it.
func (w *Wallet) Sync(ctx context.Context) (int, error) {
	resp, err := w.node.Chain(ctx)
	if err != nil {
		return 0, fmt.Errorf("sync wallet %s: %w", w.userID, err)
	}
	return w.Apply(resp.Chain), nil
}

// Send queues a transfer from the user. The balance only moves once the
// transaction is mined and picked up by a later Sync.
func (w *Wallet) Send(ctx context.Context, recipient string, amount float64) (int64, error) {
	if w.Balance()-amount < 0 {
		return 0, fmt.Errorf("%w: balance %g, amount %g", ErrInsufficientFunds, w.Balance(), amount)
	}
	resp, err := w.node.NewTransaction(ctx, w.userID, recipient, amount)
	if err != nil {
		return 0, fmt.Errorf("send %g to %s: %w", amount, recipient, err)
	}
	return resp.Index, nil
}
