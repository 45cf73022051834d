// Package database defines the blocks and transactions of the ledger and the
// rules used to hash, mine and validate a chain of blocks.
package database

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together.
type Block struct {
	TimeStamp    float64 `json:"timestamp"`     // Unix time in seconds the block was created.
	Transactions []Tx    `json:"transactions"`  // Transactions in the order they entered the pool.
	Nonce        int64   `json:"nonce"`         // Value identified to solve the hash solution.
	PreviousHash string  `json:"previous_hash"` // Hash of the previous block in the chain.
}

// Genesis returns the first block of every chain.
func Genesis() Block {
	return Block{
		TimeStamp:    0.0,
		Transactions: []Tx{},
		Nonce:        0,
		PreviousHash: "",
	}
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() string {
	return signature.Hash(b)
}

// MarshalJSON implements the json.Marshaler interface. The keys are always
// written in the same order and the numbers in the same form so every node
// computes the same hash for the same block.
func (b Block) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"timestamp":`)
	buf.WriteString(formatFloat(b.TimeStamp, true))

	buf.WriteString(`,"transactions":[`)
	for i, tx := range b.Transactions {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeTx(&buf, tx); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`],"nonce":`)
	buf.WriteString(strconv.FormatInt(b.Nonce, 10))

	buf.WriteString(`,"previous_hash":`)
	if err := writeString(&buf, b.PreviousHash); err != nil {
		return nil, err
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// =============================================================================

// ValidProof reports whether a block holding these transactions, linked to
// previousHash and carrying nonce, solves the puzzle at the given difficulty.
// The timestamp is fixed at zero so guesses don't depend on the clock.
func ValidProof(trans []Tx, previousHash string, nonce int64, difficulty int) bool {
	guess := Block{
		TimeStamp:    0.0,
		Transactions: trans,
		Nonce:        nonce,
		PreviousHash: previousHash,
	}

	return isHashSolved(difficulty, guess.Hash())
}

// POW performs the work of finding a nonce, starting at zero, that solves the
// puzzle for these transactions. The search only stops early when the
// context is cancelled.
func POW(ctx context.Context, trans []Tx, previousHash string, difficulty int, ev func(v string, args ...any)) (int64, error) {
	ev("database: POW: MINING: started: difficulty[%d]: txs[%d]", difficulty, len(trans))
	defer ev("database: POW: MINING: completed")

	for nonce := int64(0); ; nonce++ {
		if nonce%1_000_000 == 0 && nonce > 0 {
			ev("database: POW: MINING: attempts[%d]", nonce)
		}

		// Did we get cancelled trying to solve the problem.
		if nonce%1024 == 0 && ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED: attempts[%d]", nonce)
			return 0, ctx.Err()
		}

		if ValidProof(trans, previousHash, nonce, difficulty) {
			ev("database: POW: MINING: SOLVED: prevBlk[%s]: nonce[%d]", previousHash, nonce)
			return nonce, nil
		}
	}
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty int, hash string) bool {
	if difficulty < 0 || len(hash) < difficulty {
		return false
	}

	return hash[:difficulty] == strings.Repeat("0", difficulty)
}

// =============================================================================

func writeTx(buf *bytes.Buffer, tx Tx) error {
	buf.WriteString(`{"sender_blockchain_address":`)
	if err := writeString(buf, tx.SenderAddress); err != nil {
		return err
	}

	buf.WriteString(`,"recipient_blockchain_address":`)
	if err := writeString(buf, tx.RecipientAddress); err != nil {
		return err
	}

	buf.WriteString(`,"value":`)
	buf.WriteString(formatFloat(tx.Value, true))
	buf.WriteByte('}')

	return nil
}

// writeString writes the quoted string. HTML characters are left as they
// are, which json.Marshal would escape.
func writeString(buf *bytes.Buffer, s string) error {
	var str bytes.Buffer

	enc := json.NewEncoder(&str)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(str.Bytes(), []byte{'\n'}))

	return nil
}
