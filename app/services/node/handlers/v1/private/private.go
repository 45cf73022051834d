// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// relayedTx is a transaction another node accepted and is sharing.
type relayedTx struct {
	SenderAddress    string  `json:"sender_blockchain_address" validate:"required"`
	RecipientAddress string  `json:"recipient_blockchain_address" validate:"required"`
	Value            float64 `json:"value" validate:"gt=0"`
	SenderPublicKey  string  `json:"sender_public_key" validate:"required"`
	Signature        string  `json:"signature" validate:"required"`
}

// Connection answers the probe other nodes use to check this node is up.
func (h Handlers) Connection(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Connection bool `json:"connection"`
	}{
		Connection: true,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns the full chain so other nodes can run conflict resolution.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Chain []database.Block `json:"chain"`
	}{
		Chain: h.State.RetrieveChain(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transactions returns the transactions waiting to be mined.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans, n := h.State.RetrievePendingTransactions()

	resp := struct {
		Transactions []database.Tx `json:"transactions"`
		Length       int           `json:"length"`
	}{
		Transactions: trans,
		Length:       n,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// UpdateTransaction adds a transaction shared by another node to the pool.
func (h Handlers) UpdateTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var rtx relayedTx
	if err := web.Decode(r, &rtx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(rtx); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	if rtx.SenderAddress == database.MiningSender {
		return errs.NewTrusted(errors.New("sender address is reserved for mining rewards"), http.StatusBadRequest)
	}

	h.Log.Infow("update tran", "traceid", v.TraceID, "from", rtx.SenderAddress, "to", rtx.RecipientAddress, "value", rtx.Value)

	tx := database.NewTx(rtx.SenderAddress, rtx.RecipientAddress, rtx.Value)
	if _, err := h.State.UpdateTransaction(database.NewSignedTx(tx, rtx.SenderPublicKey, rtx.Signature)); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Message string `json:"message"`
	}{
		Message: "success",
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// DeleteTransactions clears the pool after another node mined a block.
func (h Handlers) DeleteTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.ClearPendingTransactions()

	resp := struct {
		Message string `json:"message"`
	}{
		Message: "success",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Consensus runs conflict resolution when another node asks for it.
func (h Handlers) Consensus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Replaced bool `json:"replaced"`
	}{
		Replaced: h.State.ResolveConflicts(ctx),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
