// Package wallet holds the key pair of a ledger participant and knows how to
// derive its address and sign transactions with it.
package wallet

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160"
)

// KeyExt is the file extension used for private key files.
const KeyExt = ".p256"

// addressVersion is the version byte placed in front of the key hash.
const addressVersion = 0x00

// Wallet represents the key pair of a participant.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    string
}

// New generates a wallet with a fresh P-256 key pair.
func New() (*Wallet, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return fromPrivateKey(privateKey)
}

// FromPrivateKeyHex constructs a wallet from the hex of a raw private key.
func FromPrivateKeyHex(privateKeyHex string) (*Wallet, error) {
	privateKey, err := signature.ToPrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}

	return fromPrivateKey(privateKey)
}

// Load reads a wallet from a key file holding the hex of the private key.
func Load(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	return FromPrivateKeyHex(string(data))
}

// Save writes the hex of the private key to the specified file.
func (w *Wallet) Save(path string) error {
	if !strings.HasSuffix(path, KeyExt) {
		path += KeyExt
	}

	if err := os.WriteFile(path, []byte(w.PrivateKeyHex()), 0600); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}

	return nil
}

// PrivateKeyHex returns the hex of the raw private key.
func (w *Wallet) PrivateKeyHex() string {
	s, _ := signature.PrivateKeyHex(w.privateKey)
	return s
}

// PublicKeyHex returns the hex of the raw X||Y public key.
func (w *Wallet) PublicKeyHex() string {
	s, _ := signature.PublicKeyHex(&w.privateKey.PublicKey)
	return s
}

// Address returns the address of the wallet.
func (w *Wallet) Address() string {
	return w.address
}

// Sign creates a transaction from this wallet to the recipient and signs it.
func (w *Wallet) Sign(recipient string, value float64) (database.SignedTx, error) {
	tx := database.NewTx(w.address, recipient, value)

	sig, err := signature.Sign(tx, w.privateKey)
	if err != nil {
		return database.SignedTx{}, fmt.Errorf("signing: %w", err)
	}

	return database.NewSignedTx(tx, w.PublicKeyHex(), sig), nil
}

// =============================================================================

// Address derives the address for the hex of a raw X||Y public key. The
// address is the Base58Check encoding of RIPEMD160(SHA256(key)).
func Address(publicKeyHex string) (string, error) {
	publicKey, err := signature.ToPublicKey(publicKeyHex)
	if err != nil {
		return "", err
	}

	return address(publicKey)
}

func fromPrivateKey(privateKey *ecdsa.PrivateKey) (*Wallet, error) {
	addr, err := address(&privateKey.PublicKey)
	if err != nil {
		return nil, err
	}

	w := Wallet{
		privateKey: privateKey,
		address:    addr,
	}

	return &w, nil
}

func address(publicKey *ecdsa.PublicKey) (string, error) {
	raw, err := publicKey.Bytes()
	if err != nil {
		return "", fmt.Errorf("encoding public key: %w", err)
	}

	digest := sha256.Sum256(raw[1:])

	hasher := ripemd160.New()
	hasher.Write(digest[:])

	return base58.CheckEncode(hasher.Sum(nil), addressVersion), nil
}
