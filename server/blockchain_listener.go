package main

import (
	"context"
	"time"

	"github.com/fatih/color"

	"github.com/tobias-fyi/xebec/internal/blockchain"
)

// RunBlockListener watches the ledger and prints every block appended to it.
func (s *Server) RunBlockListener(ctx context.Context) {
	color.Cyan("[listener] watching the ledger...")

	// genesis is printed in the banner
	processed := 1

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed = s.announceBlocks(processed)
		}
	}
}

// announceBlocks prints the blocks past processed and returns the new height.
func (s *Server) announceBlocks(processed int) int {
	if s.Blockchain.Len() <= processed {
		return processed
	}

	chain := s.Blockchain.FullChain()
	for _, block := range chain[processed:] {
		s.processBlock(block)
	}
	return len(chain)
}

func (s *Server) processBlock(block blockchain.Block) {
	color.Green("[listener] block #%d forged with proof %d, %d transactions", block.Index, block.Proof, len(block.Transactions))
	for _, tx := range block.Transactions {
		color.White("    %s -> %s: %g", tx.Sender, tx.Recipient, tx.Amount)
	}
}
