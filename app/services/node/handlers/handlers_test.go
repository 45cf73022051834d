package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powchain/app/services/node/handlers"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type muxes struct {
	public  http.Handler
	private http.Handler
	st      *state.State
}

func newMuxes(t *testing.T) muxes {
	st, err := state.New(state.Config{
		MinerAddress: "miner",
		Genesis:      genesis.Default(),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	ns, err := nameservice.New(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	}

	return muxes{
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
		st:      st,
	}
}

func do(h http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, &buf))

	return w
}

func signedTx(t *testing.T, value float64) database.SignedTx {
	wlt, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to generate a wallet: %s", err)
	}

	tx, err := wlt.Sign("recipient", value)
	if err != nil {
		t.Fatalf("Should be able to sign a transaction: %s", err)
	}

	return tx
}

// =============================================================================

func Test_PublicSubmit(t *testing.T) {
	m := newMuxes(t)

	tampered := signedTx(t, 1)
	tampered.Value = 2

	reward := signedTx(t, 1)
	reward.SenderAddress = database.MiningSender

	missing := signedTx(t, 1)
	missing.Signature = ""

	type table struct {
		name   string
		tx     database.SignedTx
		status int
	}

	tt := []table{
		{name: "signed", tx: signedTx(t, 0.5), status: http.StatusCreated},
		{name: "tampered", tx: tampered, status: http.StatusBadRequest},
		{name: "reward", tx: reward, status: http.StatusBadRequest},
		{name: "missing-signature", tx: missing, status: http.StatusBadRequest},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			w := do(m.public, http.MethodPost, "/v1/transactions", tst.tx)
			if w.Code != tst.status {
				t.Logf("Test %s:\tgot: %d %s", tst.name, w.Code, w.Body.String())
				t.Logf("Test %s:\texp: %d", tst.name, tst.status)
				t.Fatalf("Test %s:\tShould get back the right status.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}

	if _, n := m.st.RetrievePendingTransactions(); n != 1 {
		t.Logf("got: %d", n)
		t.Logf("exp: %d", 1)
		t.Fatalf("Should only pool the properly signed transaction.")
	}

	w := do(m.public, http.MethodGet, "/v1/transactions", nil)

	var pool struct {
		Transactions []struct {
			Value float64 `json:"value"`
		} `json:"transactions"`
		Length int `json:"length"`
	}
	if err := json.NewDecoder(w.Body).Decode(&pool); err != nil {
		t.Fatalf("Should be able to decode the pool: %s", err)
	}

	if pool.Length != 1 || len(pool.Transactions) != 1 || pool.Transactions[0].Value != 0.5 {
		t.Logf("got: %+v", pool)
		t.Fatalf("Should get back the pooled transaction.")
	}

	w = do(m.public, http.MethodDelete, "/v1/transactions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Should be able to clear the pool: %d", w.Code)
	}

	if _, n := m.st.RetrievePendingTransactions(); n != 0 {
		t.Fatalf("Should get back an empty pool after clearing it: %d", n)
	}
}

func Test_PublicQueries(t *testing.T) {
	m := newMuxes(t)

	t.Log("Given the need to query a node.")
	{
		t.Logf("\tTest 0:\tWhen asking for the balance of an unknown address.")
		{
			w := do(m.public, http.MethodGet, "/v1/amount/1nobody", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould get back a 200: %d", failed, w.Code)
			}

			var resp struct {
				Address string  `json:"blockchain_address"`
				Amount  float64 `json:"amount"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decode the response: %s", failed, err)
			}

			if resp.Address != "1nobody" || resp.Amount != 0 {
				t.Logf("\t%s\tTest 0:\tgot: %+v", failed, resp)
				t.Fatalf("\t%s\tTest 0:\tShould get back a zero balance.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get back a zero balance.", success)
		}

		t.Logf("\tTest 1:\tWhen asking for the chain.")
		{
			w := do(m.public, http.MethodGet, "/v1/chain", nil)

			var resp struct {
				Chain []database.Block `json:"chain"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to decode the chain: %s", failed, err)
			}

			if len(resp.Chain) != 1 || resp.Chain[0].Hash() != database.Genesis().Hash() {
				t.Fatalf("\t%s\tTest 1:\tShould get back the genesis block only.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould get back the genesis block only.", success)
		}

		t.Logf("\tTest 2:\tWhen asking for a new wallet.")
		{
			w := do(m.public, http.MethodPost, "/v1/wallet", nil)
			if w.Code != http.StatusCreated {
				t.Fatalf("\t%s\tTest 2:\tShould get back a 201: %d", failed, w.Code)
			}

			var resp struct {
				PrivateKey string `json:"private_key"`
				PublicKey  string `json:"public_key"`
				Address    string `json:"blockchain_address"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to decode the wallet: %s", failed, err)
			}

			address, err := wallet.Address(resp.PublicKey)
			if err != nil || address != resp.Address {
				t.Logf("\t%s\tTest 2:\tgot: %s", failed, address)
				t.Logf("\t%s\tTest 2:\texp: %s", failed, resp.Address)
				t.Fatalf("\t%s\tTest 2:\tShould get back an address matching the public key.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould get back an address matching the public key.", success)
		}

		t.Logf("\tTest 3:\tWhen asking for the node information.")
		{
			w := do(m.public, http.MethodGet, "/v1/node", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 3:\tShould get back a 200: %d", failed, w.Code)
			}

			var resp struct {
				MinerAddress string  `json:"miner_blockchain_address"`
				Difficulty   int     `json:"difficulty"`
				MiningReward float64 `json:"mining_reward"`
				Length       int     `json:"length"`
				Pending      int     `json:"pending"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to decode the node information: %s", failed, err)
			}

			if resp.MinerAddress != "miner" || resp.Difficulty != genesis.DefaultDifficulty || resp.MiningReward != genesis.DefaultMiningReward || resp.Length != 1 || resp.Pending != 0 {
				t.Logf("\t%s\tTest 3:\tgot: %+v", failed, resp)
				t.Fatalf("\t%s\tTest 3:\tShould get back the miner and the chain parameters.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould get back the miner and the chain parameters.", success)
		}

		t.Logf("\tTest 4:\tWhen asking to mine with no worker running.")
		{
			w := do(m.public, http.MethodPost, "/v1/mine", nil)
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("\t%s\tTest 4:\tShould get back a 500: %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 4:\tShould get back a 500.", success)
		}
	}
}

func Test_Private(t *testing.T) {
	m := newMuxes(t)

	w := do(m.private, http.MethodGet, "/", nil)

	var conn struct {
		Connection bool `json:"connection"`
	}
	if err := json.NewDecoder(w.Body).Decode(&conn); err != nil || !conn.Connection {
		t.Fatalf("Should answer the connection check: %v", err)
	}

	for _, value := range []float64{-5, 0} {
		w = do(m.private, http.MethodPost, "/update_transactions", signedTx(t, value))
		if w.Code != http.StatusBadRequest {
			t.Logf("got: %d %s", w.Code, w.Body.String())
			t.Logf("exp: %d", http.StatusBadRequest)
			t.Fatalf("Should reject a relayed transaction with value %v.", value)
		}
	}

	w = do(m.private, http.MethodPost, "/update_transactions", signedTx(t, 1))
	if w.Code != http.StatusCreated {
		t.Logf("got: %d %s", w.Code, w.Body.String())
		t.Logf("exp: %d", http.StatusCreated)
		t.Fatalf("Should accept a relayed transaction.")
	}

	if _, n := m.st.RetrievePendingTransactions(); n != 1 {
		t.Fatalf("Should pool the relayed transaction: %d", n)
	}

	w = do(m.private, http.MethodDelete, "/delete_transaction", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Should be able to clear the pool: %d", w.Code)
	}

	if _, n := m.st.RetrievePendingTransactions(); n != 0 {
		t.Fatalf("Should get back an empty pool: %d", n)
	}

	w = do(m.private, http.MethodPost, "/consensus", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Should be able to run consensus with no peers: %d", w.Code)
	}
}
