package http

import (
	"encoding/json"
	stdhttp "net/http"
	"strconv"

	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	pnet "github.com/openimis/openimis-be-dhis2-py/internal/platform/net"
)

// Envelope is the JSON body of every non-ADX response
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as application/json with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondOK writes a 200 envelope around data
func RespondOK(w stdhttp.ResponseWriter, r *stdhttp.Request, data any) {
	JSON(w, stdhttp.StatusOK, Envelope{
		StatusCode: stdhttp.StatusOK,
		Status:     stdhttp.StatusText(stdhttp.StatusOK),
		RequestID:  pnet.RequestID(r.Context()),
		Data:       data,
	})
}

// RespondError maps err to a status and envelope
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	RespondErrorData(w, r, err, nil)
}

// RespondErrorData is RespondError with a payload, e.g. the import summary of a rejected push
func RespondErrorData(w stdhttp.ResponseWriter, r *stdhttp.Request, err error, data any) {
	status, wire := perr.HTTP(err)
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		Code:       wire.Code,
		Error:      wire.Message,
		Field:      wire.Field,
		RequestID:  pnet.RequestID(r.Context()),
		Data:       data,
	})
}

// RespondBytes writes a pre-encoded document such as an ADX payload
func RespondBytes(w stdhttp.ResponseWriter, r *stdhttp.Request, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if id := pnet.RequestID(r.Context()); id != "" {
		w.Header().Set("X-Request-ID", id)
	}
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = w.Write(body)
}
