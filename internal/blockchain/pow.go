package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// number of leading '0' hex characters a valid proof digest needs
const DefaultDifficulty = 6

// sha256 hex digest length
const maxDifficulty = 64

// how many attempts between context checks
const checkInterval = 1 << 12

var ErrProofSpaceExhausted = errors.New("proof of work: no proof found in int64 range")

type ProofOfWork struct {
	difficulty int
}

// difficulty <= 0 means DefaultDifficulty
func NewProofOfWork(difficulty int) *ProofOfWork {
	if difficulty <= 0 {
		difficulty = DefaultDifficulty
	}
	if difficulty > maxDifficulty {
		difficulty = maxDifficulty
	}
	return &ProofOfWork{difficulty: difficulty}
}

func (pow *ProofOfWork) Difficulty() int {
	return pow.difficulty
}

// Validate reports whether SHA256(reference + proof) starts with the required
// number of '0' hex characters.
func (pow *ProofOfWork) Validate(reference string, proof int64) bool {
	return pow.meetsTarget(proofSum(reference, proof))
}

// Run tries 0, 1, 2, ... and returns the first valid proof for reference.
// It only stops early when ctx is done; with context.Background it runs
// until a proof is found.
func (pow *ProofOfWork) Run(ctx context.Context, reference string) (int64, error) {
	buf := make([]byte, 0, len(reference)+20)
	buf = append(buf, reference...)
	prefix := len(reference)

	for proof := int64(0); proof < math.MaxInt64; proof++ {
		if proof%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return 0, fmt.Errorf("proof of work cancelled after %d attempts: %w", proof, ctx.Err())
			default:
			}
		}

		if pow.meetsTarget(sumWithProof(buf[:prefix], proof)) {
			return proof, nil
		}
	}
	return 0, ErrProofSpaceExhausted
}

// textual prefix test on the hex digest: each byte holds two hex characters
func (pow *ProofOfWork) meetsTarget(sum [32]byte) bool {
	for i := 0; i < pow.difficulty; i++ {
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble != 0 {
			return false
		}
	}
	return true
}
