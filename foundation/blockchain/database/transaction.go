package database

import (
	"fmt"
	"strings"
)

// MiningSender is the sender address of a mining reward transaction. A
// transaction from this address is not signed.
const MiningSender = "THE BLOCKCHAIN"

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	SenderAddress    string  `json:"sender_blockchain_address"`    // Address of the wallet sending the value.
	RecipientAddress string  `json:"recipient_blockchain_address"` // Address of the wallet receiving the value.
	Value            float64 `json:"value"`                        // Monetary value transferred.
}

// NewTx constructs a new transaction.
func NewTx(sender string, recipient string, value float64) Tx {
	return Tx{
		SenderAddress:    sender,
		RecipientAddress: recipient,
		Value:            value,
	}
}

// NewRewardTx constructs the transaction that pays a miner for a block.
func NewRewardTx(miner string, reward float64) Tx {
	return NewTx(MiningSender, miner, reward)
}

// IsReward reports whether the transaction is a mining reward.
func (tx Tx) IsReward() bool {
	return tx.SenderAddress == MiningSender
}

// String implements the fmt.Stringer interface. This is the representation
// wallets sign, so the field order and number format can never change.
func (tx Tx) String() string {
	return fmt.Sprintf("sender_blockchain_address=%s recipient_blockchain_address=%s value=%s",
		quote(tx.SenderAddress), quote(tx.RecipientAddress), formatFloat(tx.Value, false))
}

// =============================================================================

// SignedTx is a transaction with the material needed to verify who sent it.
// This is how wallets submit transactions and how nodes share them.
type SignedTx struct {
	Tx
	SenderPublicKey string `json:"sender_public_key"`
	Signature       string `json:"signature"`
}

// NewSignedTx constructs a signed transaction from its parts.
func NewSignedTx(tx Tx, publicKey string, signature string) SignedTx {
	return SignedTx{
		Tx:              tx,
		SenderPublicKey: publicKey,
		Signature:       signature,
	}
}

// =============================================================================

// quote renders s inside single quotes, switching to double quotes when s
// holds a single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteByte(q)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			b.WriteString(`\\`)
		case c == q:
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)

	return b.String()
}
