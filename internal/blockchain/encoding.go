package blockchain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// the canonical form is the sorted-keys JSON text that reference nodes produce:
// ", " and ": " separators, ASCII-only strings and shortest round-trip floats.
// any change here changes every hash on the chain.

type member struct {
	key   string
	write func(*bytes.Buffer)
}

// Serialize returns the canonical encoding of b.
func Serialize(b Block) []byte {
	var buf bytes.Buffer
	writeBlock(&buf, b)
	return buf.Bytes()
}

// Hash returns the lowercase hex SHA-256 of the canonical encoding of b.
func Hash(b Block) string {
	sum := sha256.Sum256(Serialize(b))
	return hex.EncodeToString(sum[:])
}

// ProofHash hashes reference followed by the decimal text of proof.
func ProofHash(reference string, proof int64) string {
	sum := proofSum(reference, proof)
	return hex.EncodeToString(sum[:])
}

func proofSum(reference string, proof int64) [32]byte {
	buf := make([]byte, 0, len(reference)+20)
	buf = append(buf, reference...)
	return sumWithProof(buf, proof)
}

// reference must have spare capacity for the digits or it gets copied
func sumWithProof(reference []byte, proof int64) [32]byte {
	return sha256.Sum256(strconv.AppendInt(reference, proof, 10))
}

func writeBlock(buf *bytes.Buffer, b Block) {
	writeObject(buf, []member{
		{"index", func(buf *bytes.Buffer) { writeInt(buf, b.Index) }},
		{"timestamp", func(buf *bytes.Buffer) { writeFloat(buf, b.Timestamp) }},
		{"transactions", func(buf *bytes.Buffer) { writeTransactions(buf, b.Transactions) }},
		{"proof", func(buf *bytes.Buffer) { writeInt(buf, b.Proof) }},
		{"previous_hash", func(buf *bytes.Buffer) { writePreviousHash(buf, b.PreviousHash) }},
		{"hash", func(buf *bytes.Buffer) { writeString(buf, b.Hash) }},
	})
}

func writeTransactions(buf *bytes.Buffer, txs []Transaction) {
	buf.WriteByte('[')
	for i, tx := range txs {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeTransaction(buf, tx)
	}
	buf.WriteByte(']')
}

func writeTransaction(buf *bytes.Buffer, tx Transaction) {
	writeObject(buf, []member{
		{"sender", func(buf *bytes.Buffer) { writeString(buf, tx.Sender) }},
		{"recipient", func(buf *bytes.Buffer) { writeString(buf, tx.Recipient) }},
		{"amount", func(buf *bytes.Buffer) { writeFloat(buf, tx.Amount) }},
	})
}

func writePreviousHash(buf *bytes.Buffer, p PreviousHash) {
	if p.sentinel {
		buf.WriteString(sentinelLiteral)
		return
	}
	writeString(buf, p.digest)
}

func writeObject(buf *bytes.Buffer, members []member) {
	sort.Slice(members, func(i, j int) bool { return members[i].key < members[j].key })

	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeString(buf, m.key)
		buf.WriteString(": ")
		m.write(buf)
	}
	buf.WriteByte('}')
}

func writeInt(buf *bytes.Buffer, v int64) {
	buf.WriteString(strconv.FormatInt(v, 10))
}

// fixed notation while the decimal exponent is in [-4, 16), exponent form
// otherwise; integral values in fixed notation keep a ".0"
func writeFloat(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsNaN(f):
		buf.WriteString("NaN")
		return
	case math.IsInf(f, 1):
		buf.WriteString("Infinity")
		return
	case math.IsInf(f, -1):
		buf.WriteString("-Infinity")
		return
	}

	if f != 0 {
		exp := decimalExponent(f)
		if exp < -4 || exp >= 16 {
			buf.WriteString(strconv.FormatFloat(f, 'e', -1, 64))
			return
		}
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	buf.WriteString(s)
}

// decimal exponent of the shortest representation (1.5e-05 -> -5)
func decimalExponent(f float64) int {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.IndexByte(s, 'e')
	exp, _ := strconv.Atoi(s[i+1:])
	return exp
}

const hexDigits = "0123456789abcdef"

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				buf.WriteRune(r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				writeUnicodeEscape(buf, r1)
				writeUnicodeEscape(buf, r2)
			default:
				writeUnicodeEscape(buf, r)
			}
		}
	}
	buf.WriteByte('"')
}

func writeUnicodeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[(r>>12)&0xf])
	buf.WriteByte(hexDigits[(r>>8)&0xf])
	buf.WriteByte(hexDigits[(r>>4)&0xf])
	buf.WriteByte(hexDigits[r&0xf])
}
