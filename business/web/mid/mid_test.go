package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/business/web/mid"
	"github.com/ardanlabs/powchain/foundation/web"
	"go.uber.org/zap"
)

func Test_Errors(t *testing.T) {
	log := zap.NewNop().Sugar()
	app := web.NewApp(make(chan os.Signal, 1), mid.Logger(log), mid.Errors(log), mid.Metrics(), mid.Panics())

	type table struct {
		name   string
		err    func() error
		status int
		fields bool
	}

	tt := []table{
		{name: "trusted", err: func() error { return errs.NewTrusted(errors.New("bad signature"), http.StatusBadRequest) }, status: http.StatusBadRequest},
		{name: "fields", err: func() error {
			return validate.Check(struct {
				Value float64 `json:"value" validate:"gt=0"`
			}{})
		}, status: http.StatusBadRequest, fields: true},
		{name: "untrusted", err: func() error { return errors.New("database exploded") }, status: http.StatusInternalServerError},
		{name: "panic", err: func() error { panic("boom") }, status: http.StatusInternalServerError},
	}

	for _, tst := range tt {
		app.Handle(http.MethodGet, "", "/"+tst.name, func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return tst.err()
		})
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+tst.name, nil))

			if w.Code != tst.status {
				t.Logf("Test %s:\tgot: %d", tst.name, w.Code)
				t.Logf("Test %s:\texp: %d", tst.name, tst.status)
				t.Fatalf("Test %s:\tShould get back the right status.", tst.name)
			}

			var resp errs.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Test %s:\tShould get back an error document: %s", tst.name, err)
			}

			if tst.status == http.StatusInternalServerError && resp.Error != http.StatusText(http.StatusInternalServerError) {
				t.Fatalf("Test %s:\tShould not leak untrusted errors: %s", tst.name, resp.Error)
			}

			if tst.fields && resp.Fields["value"] == "" {
				t.Fatalf("Test %s:\tShould get back the field that failed: %v", tst.name, resp.Fields)
			}
		}

		t.Run(tst.name, f)
	}
}
