package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	pnet "github.com/openimis/openimis-be-dhis2-py/internal/platform/net"
)

func request() *stdhttp.Request {
	r := httptest.NewRequest(stdhttp.MethodGet, "/adx/cubes", nil)
	return r.WithContext(pnet.WithRequestID(r.Context(), "req-9"))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v\n%s", err, rec.Body.String())
	}
	return env
}

func TestRespondOK(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondOK(rec, request(), []string{"insurees"})

	if rec.Code != stdhttp.StatusOK || rec.Header().Get("Content-Type") != "application/json; charset=utf-8" {
		t.Fatalf("status=%d ct=%q", rec.Code, rec.Header().Get("Content-Type"))
	}
	env := decode(t, rec)
	if env.RequestID != "req-9" || env.Status != "OK" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   perr.ErrorCode
	}{
		{perr.InvalidArgf("invalid period %q", "2019-01-01P2Y"), stdhttp.StatusUnprocessableEntity, perr.ErrorCodeInvalidArgument},
		{perr.NotFoundf("unknown cube"), stdhttp.StatusNotFound, perr.ErrorCodeNotFound},
		{perr.WithField(perr.Validationf("bad"), "categories[0].name"), stdhttp.StatusBadRequest, perr.ErrorCodeValidation},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, request(), c.err)
		if rec.Code != c.status {
			t.Fatalf("status = %d, want %d", rec.Code, c.status)
		}
		env := decode(t, rec)
		if env.Code != c.code || env.Error == "" || env.RequestID != "req-9" {
			t.Fatalf("envelope = %+v", env)
		}
	}
}

func TestRespondError_CarriesField(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, request(), perr.WithField(perr.Validationf("bad"), "period"))
	if env := decode(t, rec); env.Field != "period" {
		t.Fatalf("field = %q", env.Field)
	}
}

func TestRespondErrorData(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorData(rec, request(), perr.Newf(perr.ErrorCodeConflict, "2 conflicts"), map[string]int{"ignored": 2})
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decode(t, rec)
	if m, ok := env.Data.(map[string]any); !ok || m["ignored"] != float64(2) {
		t.Fatalf("data = %#v", env.Data)
	}
}

func TestRespondBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	body := []byte(`<adx></adx>`)
	RespondBytes(rec, request(), "application/adx+xml", body)

	if rec.Code != stdhttp.StatusOK || rec.Body.String() != string(body) {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "application/adx+xml" || rec.Header().Get("Content-Length") != "11" {
		t.Fatalf("headers = %v", rec.Header())
	}
	if rec.Header().Get("X-Request-ID") != "req-9" {
		t.Fatalf("request id header missing")
	}
}
