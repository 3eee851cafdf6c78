package main

import (
	"context"
	"testing"

	"github.com/fatih/color"

	"github.com/tobias-fyi/xebec/internal/blockchain"
)

func init() {
	color.NoColor = true
}

func TestAnnounceBlocks(t *testing.T) {
	s := &Server{Blockchain: blockchain.New(blockchain.WithDifficulty(1))}

	if got := s.announceBlocks(1); got != 1 {
		t.Fatalf("height = %d, want 1 with only genesis", got)
	}

	for i := 0; i < 2; i++ {
		s.Blockchain.NewTransaction("A", "B", 1)
		reference := string(blockchain.Serialize(s.Blockchain.LastBlock()))
		proof, err := blockchain.NewProofOfWork(1).Run(context.Background(), reference)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if _, err := s.Blockchain.SubmitProof(proof); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	if got := s.announceBlocks(1); got != 3 {
		t.Fatalf("height = %d, want 3", got)
	}
	if got := s.announceBlocks(3); got != 3 {
		t.Fatalf("height = %d, want 3 when nothing changed", got)
	}
}
