package brew

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetFormulaInfo(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/formula/beads.json":
			if r.Header.Get("User-Agent") == "" {
				t.Errorf("request without User-Agent")
			}
			w.Write([]byte(`{"name":"beads","full_name":"beads","desc":"Issue tracker",
				"license":"MIT","versions":{"stable":"0.9.3","bottle":true},
				"dependencies":["go"]}`))
		case "/api/formula/broken.json":
			w.Write([]byte(`{not json`))
		case "/api/formula/flaky.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL + "/api/")
	ctx := context.Background()

	info, err := c.GetFormulaInfo(ctx, "beads")
	if err != nil {
		t.Fatalf("GetFormulaInfo(beads): %v", err)
	}
	if info.Versions.Stable != "0.9.3" || info.License != "MIT" || len(info.Dependencies) != 1 {
		t.Errorf("unexpected info: %+v", info)
	}

	if _, err := c.GetFormulaInfo(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: error = %v, want ErrNotFound", err)
	}
	if _, err := c.GetFormulaInfo(ctx, "borkdude/brew/babashka"); !errors.Is(err, ErrNotInCoreAPI) {
		t.Errorf("tap formula: error = %v, want ErrNotInCoreAPI", err)
	}
	for _, name := range []string{"broken", "flaky"} {
		if _, err := c.GetFormulaInfo(ctx, name); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
