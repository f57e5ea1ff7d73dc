// Package service provides the adxexport implementation
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/dhis2"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/adx"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/adxml"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
	"github.com/openimis/openimis-be-dhis2-py/internal/modkit/repokit"
	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/logger"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/validate"
	dom "github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
)

// Config controls builds and pushes
type Config struct {
	Workers int

	// Namespace writes xmlns on pushed documents
	Namespace bool

	// Levels restricts exports to these facility levels; empty means all
	Levels []string
}

// Service wires the records store, the cube catalog and the optional sinks
type Service struct {
	DB         repokit.TxRunner
	Facilities repokit.Binder[dom.FacilityRepo]
	Catalog    dom.Catalog
	Cfg        Config

	// Archive is nil when the ClickHouse archive is disabled
	Archive dom.Archive

	// Submitter is nil when DHIS2 is not configured
	Submitter dom.Submitter

	now func() time.Time
}

// New constructs the service
func New(db repokit.TxRunner, facilities repokit.Binder[dom.FacilityRepo], catalog dom.Catalog, cfg Config) *Service {
	if db == nil {
		panic("adxexport.Service requires a non nil TxRunner")
	}
	if facilities == nil {
		panic("adxexport.Service requires a non nil facility binder")
	}
	if catalog == nil {
		panic("adxexport.Service requires a non nil catalog")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Service{DB: db, Facilities: facilities, Catalog: catalog, Cfg: cfg, now: time.Now}
}

// Cubes implements domain.ServicePort
func (s *Service) Cubes(context.Context) []dom.CubeInfo {
	return lo.Map(s.Catalog.List(), func(c dom.CubeSource, _ int) dom.CubeInfo { return c.Info() })
}

// Export implements domain.ServicePort
func (s *Service) Export(ctx context.Context, in dom.ExportInput) (*dom.ExportResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	src, err := s.cube(in.Cube)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithExport(ctx, in.Cube, in.Period)
	l := logger.C(ctx).With().Str("mod", "adxexport").Logger()

	if _, err := parsePeriod(in.Period, src.PeriodType()); err != nil {
		return nil, err
	}
	hfs, err := repokit.MustBind(s.Facilities, s.DB).Facilities(ctx, s.Cfg.Levels)
	if err != nil {
		return nil, err
	}

	start := s.now()
	cube, err := src.Build(ctx, in.Period, hfs, adx.WithWorkers(s.Cfg.Workers), adx.WithClock(s.now))
	if err != nil {
		l.Error().Err(err).Bool("retryable", perr.IsRetryable(err)).Msg("adxexport: build failed")
		if perr.IsUndefinedObject(err) {
			l.Error().Msg("adxexport: cube references a missing table or column")
		}
		return nil, buildErr(err)
	}

	var opts []adxml.Option
	if in.Namespace {
		opts = append(opts, adxml.WithNamespace(adxml.Namespace))
	}
	if in.Indent {
		opts = append(opts, adxml.WithIndent("", "  "))
	}
	if in.Exported {
		opts = append(opts, adxml.WithExported())
	}
	doc, err := adxml.Format(cube, opts...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "format adx document")
	}

	if s.Archive != nil {
		if err := s.Archive.Store(ctx, in.Cube, cube); err != nil {
			l.Warn().Err(err).Msg("adxexport: archive failed")
		}
	}

	res := &dom.ExportResult{
		Cube:   cube,
		XML:    doc,
		Name:   in.Cube,
		Period: in.Period,
		Groups: len(cube.Groups),
		Values: cube.ValueCount(),
	}
	l.Info().
		Int("facilities", len(hfs)).
		Int("groups", res.Groups).
		Int("values", res.Values).
		Dur("took", s.now().Sub(start)).
		Msg("adxexport: export done")
	return res, nil
}

// Push implements domain.ServicePort
func (s *Service) Push(ctx context.Context, in dom.ExportInput) (*dom.PushResult, error) {
	if s.Submitter == nil {
		return nil, perr.Unavailablef("dhis2 is not configured")
	}
	in.Namespace = s.Cfg.Namespace
	in.Indent, in.Exported = false, false

	exp, err := s.Export(ctx, in)
	if err != nil {
		return nil, err
	}
	l := logger.C(logger.WithExport(ctx, in.Cube, in.Period)).With().Str("mod", "adxexport").Logger()

	sum, err := s.Submitter.SubmitADX(ctx, exp.XML)
	res := &dom.PushResult{Export: *exp, Summary: sum}
	if err != nil {
		l.Error().Err(err).Msg("adxexport: push failed")
		return res, err
	}
	l.Info().
		Str("status", sum.Status).
		Int("imported", sum.ImportCount.Imported).
		Int("updated", sum.ImportCount.Updated).
		Int("ignored", sum.ImportCount.Ignored).
		Msg("adxexport: push done")
	return res, nil
}

// SyncMonthly implements domain.ServicePort. A zero month means the month
// before today. Cubes whose period type cannot express a month are skipped
func (s *Service) SyncMonthly(ctx context.Context, month period.Period) ([]dom.PushResult, error) {
	if month.IsZero() {
		month = period.PreviousMonth(s.now())
	}
	if n, unit := month.Length(); n != 1 || unit != period.Month || month.From().Day() != 1 {
		return nil, perr.WithField(perr.InvalidArgf("%s is not a calendar month", month), "month")
	}
	if s.Submitter == nil {
		return nil, perr.Unavailablef("dhis2 is not configured")
	}

	l := logger.C(ctx).With().Str("mod", "adxexport").Str("month", month.String()).Logger()
	var (
		out  []dom.PushResult
		errs []error
	)
	for _, src := range s.Catalog.List() {
		name := src.Info().Name
		if _, err := period.Parse(month.String(), src.PeriodType()); err != nil {
			l.Warn().Str("cube", name).Str("period_type", src.PeriodType().Name()).Msg("adxexport: cube skipped, period type has no monthly form")
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := s.Push(ctx, dom.ExportInput{Cube: name, Period: month.String()})
		if err != nil {
			errs = append(errs, fmt.Errorf("cube %s: %w", name, err))
			continue
		}
		out = append(out, *res)
	}
	l.Info().Int("pushed", len(out)).Int("failed", len(errs)).Msg("adxexport: monthly sync done")
	return out, errors.Join(errs...)
}

// Lint implements domain.ServicePort
func (s *Service) Lint(ctx context.Context, in dom.LintInput) (*dom.LintResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	src, err := s.cube(in.Cube)
	if err != nil {
		return nil, err
	}
	p, err := parsePeriod(in.Period, src.PeriodType())
	if err != nil {
		return nil, err
	}
	ctx = logger.WithExport(ctx, in.Cube, in.Period)

	hfs, err := repokit.MustBind(s.Facilities, s.DB).Facilities(ctx, s.Cfg.Levels)
	if err != nil {
		return nil, err
	}
	if in.Facility != "" {
		hfs = lo.Filter(hfs, func(hf dom.HealthFacility, _ int) bool { return matchFacility(hf, in.Facility) })
		if len(hfs) == 0 {
			return nil, perr.WithField(perr.NotFoundf("health facility %q not found", in.Facility), "facility")
		}
	}

	res := &dom.LintResult{Cube: in.Cube, Period: p.String(), Facilities: len(hfs), Findings: []adx.PartitionFinding{}}
	for _, hf := range hfs {
		fs, err := src.Lint(ctx, p, hf)
		if err != nil {
			return nil, buildErr(err)
		}
		res.Findings = append(res.Findings, fs...)
	}
	logger.C(ctx).Info().Str("mod", "adxexport").Int("findings", len(res.Findings)).Msg("adxexport: lint done")
	return res, nil
}

// matchFacility accepts a facility code, its UUID or the org unit UID derived from it
func matchFacility(hf dom.HealthFacility, key string) bool {
	if hf.Code == key {
		return true
	}
	if hf.UUID == uuid.Nil {
		return false
	}
	if dhis2.IsUID(key) {
		return dhis2.UIDFromUUID(hf.UUID) == key
	}
	uid, ok := dhis2.UIDFromString(key)
	return ok && dhis2.UIDFromUUID(hf.UUID) == uid
}

func (s *Service) cube(name string) (dom.CubeSource, error) {
	src, ok := s.Catalog.Get(name)
	if !ok {
		return nil, perr.WithField(perr.NotFoundf("cube %q is not registered", name), "cube")
	}
	return src, nil
}

func parsePeriod(in string, t period.Type) (period.Period, error) {
	p, err := period.Parse(in, t)
	if err != nil {
		return p, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid period"), "period")
	}
	return p, nil
}

// buildErr keeps the code of the data access failure and names where it happened
func buildErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "export interrupted")
	}
	var be *adx.BuildError
	if !errors.As(err, &be) {
		return perr.Wrap(err, perr.ErrorCodeDB, "build cube")
	}
	code := perr.CodeOf(be.Err)
	if code == perr.ErrorCodeUnknown {
		code = perr.ErrorCodeDB
	}
	return perr.Wrapf(err, code, "build %s: org unit %s, data element %s", be.DataSet, be.OrgUnit, be.DataElement)
}
