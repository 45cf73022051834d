package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

func Test_Load(t *testing.T) {
	type table struct {
		name    string
		content string
		exp     genesis.Genesis
		fail    bool
	}

	tt := []table{
		{
			name:    "partial",
			content: `{"difficulty": 2}`,
			exp:     genesis.Genesis{Difficulty: 2, MiningReward: genesis.DefaultMiningReward},
		},
		{
			name:    "full",
			content: `{"difficulty": 4, "mining_reward": 12.5}`,
			exp:     genesis.Genesis{Difficulty: 4, MiningReward: 12.5},
		},
		{
			name:    "bad-difficulty",
			content: `{"difficulty": 65}`,
			fail:    true,
		},
		{
			name:    "bad-json",
			content: `{"difficulty": `,
			fail:    true,
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(tst.content), 0600); err != nil {
				t.Fatalf("Test %s:\tShould be able to write the genesis file: %s", tst.name, err)
			}

			gen, err := genesis.Load(path)
			if tst.fail {
				if err == nil {
					t.Fatalf("Test %s:\tShould fail to load the genesis file.", tst.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("Test %s:\tShould be able to load the genesis file: %s", tst.name, err)
			}

			if gen != tst.exp {
				t.Logf("Test %s:\tgot: %+v", tst.name, gen)
				t.Logf("Test %s:\texp: %+v", tst.name, tst.exp)
				t.Fatalf("Test %s:\tShould get back the right parameters.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}

	gen, err := genesis.Load("")
	if err != nil || gen != genesis.Default() {
		t.Fatalf("Should get back the defaults for an empty path: %v", err)
	}
}
