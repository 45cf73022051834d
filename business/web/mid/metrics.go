package mid

import (
	"context"
	"expvar"
	"net/http"
	"runtime"

	"github.com/ardanlabs/powchain/foundation/web"
)

// m contains the global program counters for the application.
var m = struct {
	gr     *expvar.Int
	req    *expvar.Int
	err    *expvar.Int
	panics *expvar.Int
}{
	gr:     expvar.NewInt("goroutines"),
	req:    expvar.NewInt("requests"),
	err:    expvar.NewInt("errors"),
	panics: expvar.NewInt("panics"),
}

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the request and goroutines counter.
			addRequest()

			// Increment if there is an error flowing through the request.
			if err != nil {
				addError()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}

func addRequest() {
	m.req.Add(1)
	n := m.req.Value()

	// Update the count for the number of active goroutines every 100 requests.
	if n%100 == 0 {
		m.gr.Set(int64(runtime.NumGoroutine()))
	}
}

func addError() {
	m.err.Add(1)
}

func addPanic() {
	m.panics.Add(1)
}
