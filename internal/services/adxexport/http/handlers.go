// Package http provides http transport for adxexport
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/dhis2"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	phttp "github.com/openimis/openimis-be-dhis2-py/internal/platform/net/http"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
)

// Register mounts the routes
func Register(r phttp.Router, svc domain.ServicePort) {
	h := &handlers{svc: svc}
	r.Get("/cubes", h.cubes)
	r.Get("/cubes/{cube}", h.export)
	r.Post("/cubes/{cube}/push", h.push)
	r.Get("/cubes/{cube}/lint", h.lint)
	r.Post("/sync-monthly", h.syncMonthly)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Registered cubes
// @Tags adx
// @Produce json
// @Success 200 {array} domain.CubeInfo "ok"
// @Router /adx/cubes [get]
func (h *handlers) cubes(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	phttp.RespondOK(w, r, h.svc.Cubes(r.Context()))
}

// @Summary Export a cube as ADX
// @Tags adx
// @Produce application/adx+xml
// @Param cube path string true "Cube name"
// @Param period query string true "Period in the cube's period type"
// @Param namespace query bool false "Write xmlns on the root element"
// @Param indent query bool false "Pretty print"
// @Param exported query bool false "Write the build time on the root element"
// @Success 200 {string} string "ADX document"
// @Failure 422 {object} phttp.Envelope "invalid period"
// @Router /adx/cubes/{cube} [get]
func (h *handlers) export(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	q := r.URL.Query()
	res, err := h.svc.Export(r.Context(), domain.ExportInput{
		Cube:      chi.URLParam(r, "cube"),
		Period:    q.Get("period"),
		Namespace: flag(q.Get("namespace")),
		Indent:    flag(q.Get("indent")),
		Exported:  flag(q.Get("exported")),
	})
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondBytes(w, r, dhis2.ContentTypeADX, res.XML)
}

// @Summary Export a cube and submit it to DHIS2
// @Tags adx
// @Produce json
// @Param cube path string true "Cube name"
// @Param period query string true "Period in the cube's period type"
// @Success 200 {object} domain.PushResult "ok"
// @Failure 409 {object} phttp.Envelope "import conflicts, data holds the import summary"
// @Router /adx/cubes/{cube}/push [post]
func (h *handlers) push(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	res, err := h.svc.Push(r.Context(), domain.ExportInput{
		Cube:   chi.URLParam(r, "cube"),
		Period: r.URL.Query().Get("period"),
	})
	if err != nil {
		if res != nil && res.Summary != nil {
			phttp.RespondErrorData(w, r, err, res.Summary)
			return
		}
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, res)
}

// @Summary Report category options that overlap or leave gaps
// @Tags adx
// @Produce json
// @Param cube path string true "Cube name"
// @Param period query string true "Period in the cube's period type"
// @Param facility query string false "Health facility code, UUID or org unit UID"
// @Success 200 {object} domain.LintResult "ok"
// @Router /adx/cubes/{cube}/lint [get]
func (h *handlers) lint(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	q := r.URL.Query()
	res, err := h.svc.Lint(r.Context(), domain.LintInput{
		Cube:     chi.URLParam(r, "cube"),
		Period:   q.Get("period"),
		Facility: q.Get("facility"),
	})
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, res)
}

// @Summary Push every cube for one month
// @Tags adx
// @Produce json
// @Param month query string false "YYYYMM, defaults to the previous month"
// @Success 200 {array} domain.PushResult "ok"
// @Router /adx/sync-monthly [post]
func (h *handlers) syncMonthly(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var month period.Period
	if s := r.URL.Query().Get("month"); s != "" {
		p, err := period.Parse(s, period.Monthly{})
		if err != nil {
			phttp.RespondError(w, r, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid month"), "month"))
			return
		}
		month = p
	}
	res, err := h.svc.SyncMonthly(r.Context(), month)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, res)
}

func flag(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
