// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of wallet facing endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Chain returns the full chain held by this node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Chain []database.Block `json:"chain"`
	}{
		Chain: h.State.RetrieveChain(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transactions returns the set of transactions waiting to be mined.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans, n := h.State.RetrievePendingTransactions()

	resp := pool{
		Transactions: make([]tx, n),
		Length:       n,
	}
	for i, tran := range trans {
		resp.Transactions[i] = tx{
			SenderAddress:    tran.SenderAddress,
			SenderName:       h.NS.Lookup(tran.SenderAddress),
			RecipientAddress: tran.RecipientAddress,
			RecipientName:    h.NS.Lookup(tran.RecipientAddress),
			Value:            tran.Value,
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a signed wallet transaction to the pool and shares
// it with the other nodes.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(ntx); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	if ntx.SenderAddress == database.MiningSender {
		return errs.NewTrusted(errors.New("sender address is reserved for mining rewards"), http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "from", ntx.SenderAddress, "to", ntx.RecipientAddress, "value", ntx.Value)

	if _, err := h.State.SubmitTransaction(ntx.toSignedTx()); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Message string `json:"message"`
	}{
		Message: "success",
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// ClearTransactions removes every transaction waiting to be mined.
func (h Handlers) ClearTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.ClearPendingTransactions()

	resp := struct {
		Message string `json:"message"`
	}{
		Message: "success",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine runs a mining cycle on the worker and waits for the block.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if _, err := h.State.Worker.RunMining(ctx); err != nil {
		switch {
		case errors.Is(err, state.ErrMiningBusy), errors.Is(err, state.ErrChainChanged):
			return errs.NewTrusted(err, http.StatusConflict)
		case errors.Is(err, context.Canceled):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		default:
			return err
		}
	}

	resp := struct {
		Message string         `json:"message"`
		Block   database.Block `json:"block"`
	}{
		Message: "success",
		Block:   h.State.RetrieveLatestBlock(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Node returns the identity of this node and the chain parameters it runs.
func (h Handlers) Node(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	miner := h.State.RetrieveMinerAddress()
	_, pending := h.State.RetrievePendingTransactions()

	resp := nodeInfo{
		Host:         h.State.RetrieveHost(),
		MinerAddress: miner,
		MinerName:    h.NS.Lookup(miner),
		GenesisDate:  gen.Date,
		Difficulty:   gen.Difficulty,
		MiningReward: gen.MiningReward,
		Length:       len(h.State.RetrieveChain()),
		Pending:      pending,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Amount returns the balance of the address.
func (h Handlers) Amount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	resp := struct {
		Address string  `json:"blockchain_address"`
		Name    string  `json:"name"`
		Amount  float64 `json:"amount"`
	}{
		Address: address,
		Name:    h.NS.Lookup(address),
		Amount:  h.State.CalculateTotalAmount(address),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Neighbours returns the peers this node currently knows.
func (h Handlers) Neighbours(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	peers := h.State.RetrieveKnownPeers()

	hosts := make([]string, len(peers))
	for i, pr := range peers {
		hosts[i] = pr.Host
	}

	resp := struct {
		Neighbours []string `json:"neighbours"`
	}{
		Neighbours: hosts,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Consensus runs conflict resolution against the known peers.
func (h Handlers) Consensus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Replaced bool `json:"replaced"`
	}{
		Replaced: h.State.ResolveConflicts(ctx),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Wallet generates a new key pair and returns it with its address. The keys
// are not kept by the node.
func (h Handlers) Wallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wlt, err := wallet.New()
	if err != nil {
		return err
	}

	resp := walletInfo{
		PrivateKey: wlt.PrivateKeyHex(),
		PublicKey:  wlt.PublicKeyHex(),
		Address:    wlt.Address(),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}
