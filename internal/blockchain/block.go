package blockchain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// proof stored in the genesis block, nobody mines it
const GenesisProof int64 = 100

// literal that marks "no predecessor" in the genesis block
const sentinelLiteral = "1"

type Transaction struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
}

// PreviousHash is either the genesis sentinel or the digest of the previous block.
// The zero value is an empty digest, never the sentinel.
type PreviousHash struct {
	digest   string
	sentinel bool
}

func Sentinel() PreviousHash {
	return PreviousHash{sentinel: true}
}

func Digest(d string) PreviousHash {
	return PreviousHash{digest: d}
}

func (p PreviousHash) IsSentinel() bool {
	return p.sentinel
}

// digest of the previous block ("" for genesis)
func (p PreviousHash) Digest() string {
	return p.digest
}

func (p PreviousHash) String() string {
	if p.sentinel {
		return sentinelLiteral
	}
	return p.digest
}

func (p PreviousHash) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	writePreviousHash(&buf, p)
	return buf.Bytes(), nil
}

// accepts the number 1 (sentinel) or a digest string
func (p *PreviousHash) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == sentinelLiteral {
		*p = Sentinel()
		return nil
	}

	var d string
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("previous_hash must be %s or a hex digest: %w", sentinelLiteral, err)
	}
	*p = Digest(d)
	return nil
}

// Block is immutable once appended to the chain. Hash is derived from the
// previous block plus this block's proof and is informational only; chain
// integrity is carried by PreviousHash.
type Block struct {
	Index        int64         `json:"index"`
	Timestamp    float64       `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	Proof        int64         `json:"proof"`
	PreviousHash PreviousHash  `json:"previous_hash"`
	Hash         string        `json:"hash"`
}

// the wire uses the same encoder as the hash
func (b Block) MarshalJSON() ([]byte, error) {
	return Serialize(b), nil
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	writeTransaction(&buf, t)
	return buf.Bytes(), nil
}

// first block of the chain
func Genesis(now time.Time) Block {
	return Block{
		Index:        1,
		Timestamp:    Timestamp(now),
		Transactions: []Transaction{},
		Proof:        GenesisProof,
		PreviousHash: Sentinel(),
		Hash:         "",
	}
}

// Timestamp converts t to Unix seconds with a fractional part.
func Timestamp(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// copies the txs so callers can't touch the block stored on the chain
func (b Block) clone() Block {
	b.Transactions = slices.Clone(b.Transactions)
	if b.Transactions == nil {
		b.Transactions = []Transaction{}
	}
	return b
}
