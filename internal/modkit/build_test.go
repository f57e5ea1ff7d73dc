package modkit

import (
	"net/http"
	"testing"

	phttp "github.com/openimis/openimis-be-dhis2-py/internal/platform/net/http"
)

func TestBuild_DefaultsAndOverrides(t *testing.T) {
	b := Build()
	if b.Name != "" || b.Prefix != "" || b.Register == nil {
		t.Fatalf("defaults = %+v", b)
	}

	mw := func(next http.Handler) http.Handler { return next }
	called := false
	b = Build(
		WithName("adx"),
		WithPrefix("/adx"),
		WithName("adxexport"),
		WithMiddlewares(mw, mw),
		WithRegister(func(phttp.Router) { called = true }),
	)
	if b.Name != "adxexport" || b.Prefix != "/adx" || len(b.Mw) != 2 {
		t.Fatalf("built = %+v", b)
	}
	b.Register(nil)
	if !called {
		t.Fatalf("register hook not kept")
	}
}
