package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/ardanlabs/powchain/foundation/nameservice"
)

func Test_NameService(t *testing.T) {
	root := t.TempDir()

	kennedy, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}
	if err := kennedy.Save(filepath.Join(root, "kennedy")); err != nil {
		t.Fatalf("Should be able to save a wallet: %s", err)
	}

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not a key"), 0600); err != nil {
		t.Fatalf("Should be able to write a file: %s", err)
	}

	ns, err := nameservice.New(root)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	if got := ns.Lookup(kennedy.Address()); got != "kennedy" {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", "kennedy")
		t.Fatalf("Should get back the name of the wallet.")
	}

	if got := ns.Lookup("unknown"); got != "unknown" {
		t.Fatalf("Should get back the address when there is no name: %s", got)
	}

	if len(ns.Copy()) != 1 {
		t.Fatalf("Should only load key files: %v", ns.Copy())
	}
}
