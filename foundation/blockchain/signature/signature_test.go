package signature_test

import (
	"crypto/ecdsa"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common"
)

const (
	pkHexKey = "c9afa9d845ba75166b5c215767b1d6934e50c3db36e89b127b8a622b120f6721"
)

type payload struct {
	name string
}

func (p payload) String() string {
	return "name='" + p.name + "'"
}

// flip returns the hex string with the hex digit at index i changed.
func flip(s string, i int) string {
	b := []byte(s)
	if b[i] == '0' {
		b[i] = '1'
	} else {
		b[i] = '0'
	}
	return string(b)
}

// =============================================================================

func Test_Signing(t *testing.T) {
	pk, err := signature.ToPrivateKey(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to decode a private key: %s", err)
	}

	pubHex, err := signature.PublicKeyHex(&pk.PublicKey)
	if err != nil {
		t.Fatalf("Should be able to encode the public key: %s", err)
	}

	if len(pubHex) != signature.PublicKeyLength*2 {
		t.Logf("got: %d", len(pubHex))
		t.Logf("exp: %d", signature.PublicKeyLength*2)
		t.Fatalf("Should get back a raw X||Y public key.")
	}

	value := payload{name: "Bill"}

	sig, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	ok, err := signature.Verify(pubHex, sig, value)
	if err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}
	if !ok {
		t.Fatalf("Should get a valid signature.")
	}

	ok, err = signature.Verify("0x"+pubHex, "0x"+sig, value)
	if err != nil || !ok {
		t.Fatalf("Should accept 0x prefixed hex: %v", err)
	}
}

func Test_Tampering(t *testing.T) {
	pk, err := signature.ToPrivateKey(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to decode a private key: %s", err)
	}

	pubHex, err := signature.PublicKeyHex(&pk.PublicKey)
	if err != nil {
		t.Fatalf("Should be able to encode the public key: %s", err)
	}

	value := payload{name: "Bill"}

	sig, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	type table struct {
		name  string
		pub   string
		sig   string
		value payload
	}

	tt := []table{
		{name: "signature-r", pub: pubHex, sig: flip(sig, 10), value: value},
		{name: "signature-s", pub: pubHex, sig: flip(sig, 100), value: value},
		{name: "publickey-x", pub: flip(pubHex, 5), sig: sig, value: value},
		{name: "publickey-y", pub: flip(pubHex, 120), sig: sig, value: value},
		{name: "payload", pub: pubHex, sig: sig, value: payload{name: "Jill"}},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ok, err := signature.Verify(tst.pub, tst.sig, tst.value)
			if ok && err == nil {
				t.Fatalf("Test %s:\tShould fail verification when a byte is altered.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Malformed(t *testing.T) {
	pk, err := signature.ToPrivateKey(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to decode a private key: %s", err)
	}

	pubHex, err := signature.PublicKeyHex(&pk.PublicKey)
	if err != nil {
		t.Fatalf("Should be able to encode the public key: %s", err)
	}

	value := payload{name: "Bill"}

	sig, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	type table struct {
		name string
		pub  string
		sig  string
	}

	tt := []table{
		{name: "bad-hex-key", pub: "zz" + pubHex[2:], sig: sig},
		{name: "bad-hex-sig", pub: pubHex, sig: "zz" + sig[2:]},
		{name: "odd-length", pub: pubHex[1:], sig: sig},
		{name: "short-key", pub: pubHex[:64], sig: sig},
		{name: "short-sig", pub: pubHex, sig: sig[:64]},
		{name: "empty", pub: "", sig: ""},
		{name: "off-curve", pub: strings.Repeat("01", signature.PublicKeyLength), sig: sig},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ok, err := signature.Verify(tst.pub, tst.sig, value)
			if ok {
				t.Fatalf("Test %s:\tShould not verify.", tst.name)
			}
			if !errors.Is(err, signature.ErrMalformed) {
				t.Logf("Test %s:\tgot: %v", tst.name, err)
				t.Logf("Test %s:\texp: %v", tst.name, signature.ErrMalformed)
				t.Fatalf("Test %s:\tShould report a malformed input.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_KeyRoundTrip(t *testing.T) {
	pk, err := signature.ToPrivateKey(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to decode a private key: %s", err)
	}

	got, err := signature.PrivateKeyHex(pk)
	if err != nil {
		t.Fatalf("Should be able to encode a private key: %s", err)
	}

	if got != pkHexKey {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", pkHexKey)
		t.Fatalf("Should get back the same private key.")
	}

	pubHex, err := signature.PublicKeyHex(&pk.PublicKey)
	if err != nil {
		t.Fatalf("Should be able to encode the public key: %s", err)
	}

	pub, err := signature.ToPublicKey(pubHex)
	if err != nil {
		t.Fatalf("Should be able to decode the public key: %s", err)
	}

	if !pub.Equal(&pk.PublicKey) {
		t.Fatalf("Should get back the same public key.")
	}
}

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := "0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}
}

func Test_Digests(t *testing.T) {
	pk, err := signature.ToPrivateKey(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to decode a private key: %s", err)
	}

	pubHex, err := signature.PublicKeyHex(&pk.PublicKey)
	if err != nil {
		t.Fatalf("Should be able to encode the public key: %s", err)
	}

	value := payload{name: "Bill"}

	inner := sha256.Sum256([]byte(value.String()))
	exp := sha1.Sum(inner[:])
	if got := signature.StampSHA1(value); string(got) != string(exp[:]) {
		t.Logf("got: %x", got)
		t.Logf("exp: %x", exp)
		t.Fatalf("Should get back SHA-1 over the SHA-256 digest.")
	}

	sig, err := signature.SignDigest(value, pk, signature.StampSHA1)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	raw := common.Hex2Bytes(sig)
	r := new(big.Int).SetBytes(raw[:32])
	s := new(big.Int).SetBytes(raw[32:])
	if !ecdsa.Verify(&pk.PublicKey, exp[:], r, s) {
		t.Fatalf("Should sign the 20 byte digest as is.")
	}

	ok, err := signature.Verify(pubHex, sig, value)
	if ok || err != nil {
		t.Fatalf("Should not accept a SHA-1 signature by default: %v", err)
	}

	ok, err = signature.VerifyDigests(pubHex, sig, value, signature.StampSHA256, signature.StampSHA1)
	if !ok || err != nil {
		t.Fatalf("Should accept a SHA-1 signature when the digest is allowed: %v", err)
	}

	sig256, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	ok, err = signature.VerifyDigests(pubHex, sig256, value, signature.StampSHA256, signature.StampSHA1)
	if !ok || err != nil {
		t.Fatalf("Should still accept a SHA-256 signature: %v", err)
	}

	ok, err = signature.VerifyDigests(pubHex, sig256, payload{name: "Jill"}, signature.StampSHA256, signature.StampSHA1)
	if ok || err != nil {
		t.Fatalf("Should reject a signature over another value: %v", err)
	}
}
