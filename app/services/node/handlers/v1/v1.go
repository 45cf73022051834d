// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/powchain/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/powchain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/transactions", pbl.Transactions)
	app.Handle(http.MethodPost, version, "/transactions", pbl.SubmitTransaction)
	app.Handle(http.MethodDelete, version, "/transactions", pbl.ClearTransactions)
	app.Handle(http.MethodPost, version, "/mine", pbl.Mine)
	app.Handle(http.MethodGet, version, "/amount/:address", pbl.Amount)
	app.Handle(http.MethodGet, version, "/neighbours", pbl.Neighbours)
	app.Handle(http.MethodGet, version, "/node", pbl.Node)
	app.Handle(http.MethodPost, version, "/consensus", pbl.Consensus)
	app.Handle(http.MethodPost, version, "/wallet", pbl.Wallet)
}

// PrivateRoutes binds the routes other nodes call. These paths are fixed by
// the nodes already on the network, so they are not versioned.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, "", "/", prv.Connection)
	app.Handle(http.MethodGet, "", "/chain", prv.Chain)
	app.Handle(http.MethodGet, "", "/transactions", prv.Transactions)
	app.Handle(http.MethodPost, "", "/update_transactions", prv.UpdateTransaction)
	app.Handle(http.MethodDelete, "", "/delete_transaction", prv.DeleteTransactions)
	app.Handle(http.MethodPost, "", "/consensus", prv.Consensus)
}
