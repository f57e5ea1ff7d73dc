package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/openimis/openimis-be-dhis2-py/internal/platform/config"

	"github.com/go-chi/chi/v5"
)

func TestNewServer_MountsRoutesThroughRouter(t *testing.T) {
	t.Setenv("T_API_PORT", ":4100")
	var order []string
	s := NewServer(config.New().Prefix("T_"), func(m *chi.Mux) {
		m.Use(func(next stdhttp.Handler) stdhttp.Handler {
			return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
				order = append(order, "mw")
				next.ServeHTTP(w, r)
			})
		})
	})
	if s.Addr() != ":4100" {
		t.Fatalf("Addr = %q", s.Addr())
	}

	s.Router().Route("/adx", func(r Router) {
		r.Get("/cubes", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
			order = append(order, "get")
			w.WriteHeader(stdhttp.StatusNoContent)
		})
		r.Group(func(g Router) {
			g.Post("/cubes/{cube}/push", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
				order = append(order, "push:"+chi.URLParam(r, "cube"))
				w.WriteHeader(stdhttp.StatusAccepted)
			})
		})
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/adx/cubes", nil))
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("GET status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodPost, "/adx/cubes/insurees/push", nil))
	if rec.Code != stdhttp.StatusAccepted {
		t.Fatalf("POST status = %d", rec.Code)
	}

	want := []string{"mw", "get", "mw", "push:insurees"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestNewServer_DefaultPort(t *testing.T) {
	if got := NewServer(config.New().Prefix("NOPE_")).Addr(); got != ":4000" {
		t.Fatalf("default addr = %q", got)
	}
}
