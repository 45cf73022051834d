// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Sizes of the raw encodings exchanged between wallets and nodes. Keys and
// signatures travel as hex of the raw big-endian coordinates with no DER or
// point-format prefix.
const (
	PublicKeyLength  = 64
	PrivateKeyLength = 32
	SignatureLength  = 64
)

// ErrMalformed is returned when a key or signature can't be decoded.
var ErrMalformed = errors.New("malformed key or signature")

// =============================================================================

// Hash returns the hex encoded SHA-256 digest of the JSON encoding of the
// value. Values that need a byte-stable digest must provide a deterministic
// MarshalJSON. HTML characters are not escaped.
func Hash(value any) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return ""
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})

	hash := sha256.Sum256(data)
	return common.Bytes2Hex(hash[:])
}

// Digest turns the string form of a value into the message that is signed.
type Digest func(value fmt.Stringer) []byte

// StampSHA256 is the digest used by this node and its wallets: the SHA-256
// of the string form of the value.
func StampSHA256(value fmt.Stringer) []byte {
	digest := sha256.Sum256([]byte(value.String()))
	return digest[:]
}

// StampSHA1 is the digest of wallets that hash the SHA-256 digest again with
// SHA-1 before signing it.
func StampSHA1(value fmt.Stringer) []byte {
	digest := sha1.Sum(StampSHA256(value))
	return digest[:]
}

// =============================================================================

// Sign uses the specified private key to sign the string representation of
// the value. The signature is returned as hex of r||s.
func Sign(value fmt.Stringer, privateKey *ecdsa.PrivateKey) (string, error) {
	return SignDigest(value, privateKey, StampSHA256)
}

// SignDigest is Sign with the digest of the value chosen by the caller.
func SignDigest(value fmt.Stringer, privateKey *ecdsa.PrivateKey, stamp Digest) (string, error) {
	digest := stamp(value)

	r, s, err := ecdsa.Sign(rand.Reader, privateKey, digest)
	if err != nil {
		return "", err
	}

	sig := make([]byte, SignatureLength)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])

	return common.Bytes2Hex(sig), nil
}

// Verify checks the signature was produced over the value by the private key
// matching the public key. A malformed key or signature is reported as an
// error so callers can tell it apart from a signature that doesn't match.
func Verify(publicKeyHex string, signatureHex string, value fmt.Stringer) (bool, error) {
	return VerifyDigests(publicKeyHex, signatureHex, value, StampSHA256)
}

// VerifyDigests is Verify accepting a signature made over any one of the
// digests of the value.
func VerifyDigests(publicKeyHex string, signatureHex string, value fmt.Stringer, stamps ...Digest) (bool, error) {
	publicKey, err := ToPublicKey(publicKeyHex)
	if err != nil {
		return false, err
	}

	sig, err := decodeHex(signatureHex)
	if err != nil {
		return false, fmt.Errorf("signature: %w", err)
	}

	if len(sig) != SignatureLength {
		return false, fmt.Errorf("signature: %w: got %d bytes, exp %d", ErrMalformed, len(sig), SignatureLength)
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])

	for _, stamp := range stamps {
		if ecdsa.Verify(publicKey, stamp(value), r, s) {
			return true, nil
		}
	}

	return false, nil
}

// =============================================================================

// ToPublicKey decodes the hex of a raw X||Y point into a P-256 public key.
func ToPublicKey(publicKeyHex string) (*ecdsa.PublicKey, error) {
	raw, err := decodeHex(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}

	if len(raw) != PublicKeyLength {
		return nil, fmt.Errorf("public key: %w: got %d bytes, exp %d", ErrMalformed, len(raw), PublicKeyLength)
	}

	// The uncompressed point format wants the 0x04 tag in front of X||Y.
	publicKey, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), append([]byte{4}, raw...))
	if err != nil {
		return nil, fmt.Errorf("public key: %w: %s", ErrMalformed, err)
	}

	return publicKey, nil
}

// PublicKeyHex returns the hex of the raw X||Y point of the public key.
func PublicKeyHex(publicKey *ecdsa.PublicKey) (string, error) {
	raw, err := publicKey.Bytes()
	if err != nil {
		return "", err
	}

	return common.Bytes2Hex(raw[1:]), nil
}

// ToPrivateKey decodes the hex of a raw 32 byte scalar into a P-256 private key.
func ToPrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	raw, err := decodeHex(strings.TrimSpace(privateKeyHex))
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}

	if len(raw) != PrivateKeyLength {
		return nil, fmt.Errorf("private key: %w: got %d bytes, exp %d", ErrMalformed, len(raw), PrivateKeyLength)
	}

	privateKey, err := ecdsa.ParseRawPrivateKey(elliptic.P256(), raw)
	if err != nil {
		return nil, fmt.Errorf("private key: %w: %s", ErrMalformed, err)
	}

	return privateKey, nil
}

// PrivateKeyHex returns the hex of the raw scalar of the private key.
func PrivateKeyHex(privateKey *ecdsa.PrivateKey) (string, error) {
	raw, err := privateKey.Bytes()
	if err != nil {
		return "", err
	}

	return common.Bytes2Hex(raw), nil
}

// =============================================================================

// decodeHex accepts hex with or without the 0x prefix.
func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}

	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	return b, nil
}
