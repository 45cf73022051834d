package database

import (
	"errors"
	"fmt"
)

// Set of errors returned when a chain fails validation.
var (
	ErrEmptyChain   = errors.New("chain has no blocks")
	ErrBrokenLink   = errors.New("previous hash doesn't match the previous block")
	ErrInvalidProof = errors.New("block hash doesn't solve the puzzle")
)

// ValidateChain walks the chain from the block after genesis and checks every
// block links to the hash of the block before it and solves the puzzle.
func ValidateChain(chain []Block, difficulty int) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	prevBlock := chain[0]
	for i := 1; i < len(chain); i++ {
		block := chain[i]

		if block.PreviousHash != prevBlock.Hash() {
			return fmt.Errorf("block[%d]: %w", i, ErrBrokenLink)
		}

		if !ValidProof(block.Transactions, block.PreviousHash, block.Nonce, difficulty) {
			return fmt.Errorf("block[%d]: %w", i, ErrInvalidProof)
		}

		prevBlock = block
	}

	return nil
}

// Balance walks every transaction in the chain and returns the total value
// received by the address minus the total value it sent.
func Balance(chain []Block, address string) float64 {
	var total float64

	for _, block := range chain {
		for _, tx := range block.Transactions {
			if tx.RecipientAddress == address {
				total += tx.Value
			}
			if tx.SenderAddress == address {
				total -= tx.Value
			}
		}
	}

	return total
}
