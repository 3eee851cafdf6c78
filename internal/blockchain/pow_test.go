package blockchain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateGoldenProofAtDefaultDifficulty(t *testing.T) {
	pow := NewProofOfWork(0)
	if pow.Difficulty() != DefaultDifficulty {
		t.Fatalf("difficulty = %d, want %d", pow.Difficulty(), DefaultDifficulty)
	}
	if !pow.Validate(goldenGenesisJSON, goldenProof) {
		t.Fatalf("golden proof %d rejected", goldenProof)
	}
	if got := ProofHash(goldenGenesisJSON, goldenProof); got != goldenProofHash {
		t.Fatalf("proof hash = %s, want %s", got, goldenProofHash)
	}
	if pow.Validate(goldenGenesisJSON, goldenProof+1) {
		t.Fatalf("proof %d should not satisfy the target", goldenProof+1)
	}
}

func TestValidateIsHexPrefixTest(t *testing.T) {
	for d := 1; d <= 4; d++ {
		pow := NewProofOfWork(d)
		proof, err := pow.Run(context.Background(), "prefix-test")
		if err != nil {
			t.Fatalf("difficulty %d: %v", d, err)
		}
		digest := ProofHash("prefix-test", proof)
		if !strings.HasPrefix(digest, strings.Repeat("0", d)) {
			t.Fatalf("difficulty %d: digest %s lacks prefix", d, digest)
		}
	}
}

func TestRunReturnsFirstValidProof(t *testing.T) {
	pow := NewProofOfWork(3)
	reference := string(Serialize(goldenGenesis()))

	proof, err := pow.Run(context.Background(), reference)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !pow.Validate(reference, proof) {
		t.Fatalf("run returned invalid proof %d", proof)
	}
	for p := int64(0); p < proof; p++ {
		if pow.Validate(reference, p) {
			t.Fatalf("proof %d is valid but run returned %d", p, proof)
		}
	}
}

func TestRunStopsWhenContextIsDone(t *testing.T) {
	pow := NewProofOfWork(maxDifficulty)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pow.Run(ctx, "unreachable")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestNewProofOfWorkClampsDifficulty(t *testing.T) {
	if d := NewProofOfWork(-3).Difficulty(); d != DefaultDifficulty {
		t.Fatalf("negative difficulty -> %d, want %d", d, DefaultDifficulty)
	}
	if d := NewProofOfWork(100).Difficulty(); d != maxDifficulty {
		t.Fatalf("oversized difficulty -> %d, want %d", d, maxDifficulty)
	}
}
