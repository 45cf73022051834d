package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/powchain/foundation/web"
)

func Test_App(t *testing.T) {
	shutdown := make(chan os.Signal, 1)

	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	app := web.NewApp(shutdown, mw("app"))

	app.Handle(http.MethodGet, "v1", "/amount/:address", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		if err != nil || v.TraceID == "" {
			t.Fatalf("Should get a trace id for the request: %v", err)
		}

		resp := struct {
			Address string `json:"address"`
		}{
			Address: web.Param(r, "address"),
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}, mw("route"))

	app.Handle(http.MethodPost, "", "/echo", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var body struct {
			Value float64 `json:"value"`
		}
		if err := web.Decode(r, &body); err != nil {
			return web.Respond(ctx, w, nil, http.StatusBadRequest)
		}
		return web.Respond(ctx, w, body, http.StatusOK)
	})

	app.Handle(http.MethodGet, "", "/integrity", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.NewShutdownError("integrity issue")
	})

	t.Run("param", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/amount/1abc", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Should get back a 200: %d", w.Code)
		}

		var resp struct {
			Address string `json:"address"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Should be able to decode the response: %s", err)
		}
		if resp.Address != "1abc" {
			t.Logf("got: %s", resp.Address)
			t.Logf("exp: %s", "1abc")
			t.Fatalf("Should get back the route parameter.")
		}

		if strings.Join(order, ",") != "app,route" {
			t.Fatalf("Should run the app middleware before the route middleware: %v", order)
		}
	})

	t.Run("decode", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"value":1.5}`)))
		if w.Code != http.StatusOK {
			t.Fatalf("Should decode a known document: %d", w.Code)
		}

		w = httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"other":1}`)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Should reject unknown fields: %d", w.Code)
		}
	})

	t.Run("shutdown", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/integrity", nil))

		select {
		case <-shutdown:
		default:
			t.Fatalf("Should signal a shutdown on a shutdown error.")
		}
	})
}
