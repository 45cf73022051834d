package state

import (
	"fmt"
	"math"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
)

// AddTransaction admits the transaction into the pool. Mining rewards are
// admitted as is, everything else needs a valid signature from the sender
// and, when the balance check is on, enough funds. A malformed key or
// signature is returned as an error wrapping signature.ErrMalformed.
func (s *State) AddTransaction(tx database.Tx, publicKey string, sig string) (bool, error) {
	if tx.IsReward() {
		n := s.mempool.Add(tx)
		s.evHandler("state: AddTransaction: reward: to[%s] value[%v] pool[%d]", tx.RecipientAddress, tx.Value, n)
		return true, nil
	}

	// Only positive finite values can be transferred.
	if !(tx.Value > 0) || math.IsInf(tx.Value, 0) {
		s.evHandler("state: AddTransaction: WARNING: invalid value: from[%s] value[%v]", tx.SenderAddress, tx.Value)
		return false, fmt.Errorf("%w: %v", ErrInvalidValue, tx.Value)
	}

	if publicKey == "" || sig == "" {
		return false, ErrMissingSignature
	}

	ok, err := signature.VerifyDigests(publicKey, sig, tx, s.stamps...)
	if err != nil {
		s.evHandler("state: AddTransaction: WARNING: %s", err)
		return false, err
	}
	if !ok {
		s.evHandler("state: AddTransaction: WARNING: signature mismatch: from[%s]", tx.SenderAddress)
		return false, ErrInvalidSignature
	}

	if s.enforceBalance {
		balance := s.CalculateTotalAmount(tx.SenderAddress)
		if balance < tx.Value {
			s.evHandler("state: AddTransaction: WARNING: insufficient balance: from[%s] balance[%v] value[%v]", tx.SenderAddress, balance, tx.Value)
			return false, fmt.Errorf("%w: balance[%v] value[%v]", ErrInsufficientBalance, balance, tx.Value)
		}
	}

	n := s.mempool.Add(tx)
	s.evHandler("state: AddTransaction: from[%s] to[%s] value[%v] pool[%d]", tx.SenderAddress, tx.RecipientAddress, tx.Value, n)

	return true, nil
}

// SubmitTransaction admits a transaction from a wallet and, when it is
// accepted, has the worker share it with the known peers.
func (s *State) SubmitTransaction(signed database.SignedTx) (bool, error) {
	ok, err := s.AddTransaction(signed.Tx, signed.SenderPublicKey, signed.Signature)
	if !ok {
		return false, err
	}

	s.Worker.SignalShareTx(signed)

	return true, nil
}

// UpdateTransaction admits a transaction relayed by a peer. It is not
// shared again.
func (s *State) UpdateTransaction(signed database.SignedTx) (bool, error) {
	return s.AddTransaction(signed.Tx, signed.SenderPublicKey, signed.Signature)
}

// ClearPendingTransactions removes every transaction from the pool.
func (s *State) ClearPendingTransactions() {
	s.mempool.Truncate()
	s.evHandler("state: ClearPendingTransactions: pool cleared")
}
