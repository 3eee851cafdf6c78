package blockchain

// NewTransaction queues a transaction for the next block and returns the
// index that block would get if it were forged right now. It is only a hint:
// another miner may forge the block before or after the caller expects.
func (b *Blockchain) NewTransaction(sender, recipient string, amount float64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mpool = append(b.mpool, Transaction{Sender: sender, Recipient: recipient, Amount: amount})
	return b.ledger[len(b.ledger)-1].Index + 1
}

// snapshot of the pending transactions
func (b *Blockchain) Mempool() []Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()

	pool := make([]Transaction, len(b.mpool))
	copy(pool, b.mpool)
	return pool
}
