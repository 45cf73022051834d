package public

import (
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

type tx struct {
	SenderAddress    string  `json:"sender_blockchain_address"`
	SenderName       string  `json:"sender_name"`
	RecipientAddress string  `json:"recipient_blockchain_address"`
	RecipientName    string  `json:"recipient_name"`
	Value            float64 `json:"value"`
}

type pool struct {
	Transactions []tx `json:"transactions"`
	Length       int  `json:"length"`
}

// newTx is what a wallet submits to move value to another address.
type newTx struct {
	SenderAddress    string  `json:"sender_blockchain_address" validate:"required"`
	RecipientAddress string  `json:"recipient_blockchain_address" validate:"required"`
	Value            float64 `json:"value" validate:"gt=0"`
	SenderPublicKey  string  `json:"sender_public_key" validate:"required,hexadecimal"`
	Signature        string  `json:"signature" validate:"required,hexadecimal"`
}

func (ntx newTx) toSignedTx() database.SignedTx {
	tx := database.NewTx(ntx.SenderAddress, ntx.RecipientAddress, ntx.Value)
	return database.NewSignedTx(tx, ntx.SenderPublicKey, ntx.Signature)
}

type walletInfo struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
	Address    string `json:"blockchain_address"`
}

type nodeInfo struct {
	Host         string    `json:"host"`
	MinerAddress string    `json:"miner_blockchain_address"`
	MinerName    string    `json:"miner_name"`
	GenesisDate  time.Time `json:"genesis_date"`
	Difficulty   int       `json:"difficulty"`
	MiningReward float64   `json:"mining_reward"`
	Length       int       `json:"length"`
	Pending      int       `json:"pending"`
}
