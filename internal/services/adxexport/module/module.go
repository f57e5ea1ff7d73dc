// Package module wires adxexport using modkit
package module

import (
	"net/http"

	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/dhis2"
	"github.com/openimis/openimis-be-dhis2-py/internal/modkit"
	phttp "github.com/openimis/openimis-be-dhis2-py/internal/platform/net/http"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/definitions"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
	xhttp "github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/http"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/repo"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/service"
)

// Ports exposed by the adxexport module
type Ports struct {
	Service domain.ServicePort
}

// Module implements the adxexport module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	register func(phttp.Router)
	ports    Ports
}

// New constructs the module: the builtin cubes plus any mapping file, the
// archive when ClickHouse is configured and the DHIS2 client when DHIS2_URL is set
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	return NewWith(deps, FromConfig(deps.Cfg), opts...)
}

// NewWith is New with settings already resolved, e.g. env plus CLI flags
func NewWith(deps modkit.Deps, cfg Options, opts ...modkit.Option) (*Module, error) {
	if deps.PG == nil {
		panic("adxexport module requires a Postgres TxRunner")
	}
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("adxexport"),
		modkit.WithPrefix("/adx"),
	}, opts...)...)

	catalog := definitions.NewRegistry(definitions.Insurees(deps.PG))
	if cfg.MappingFile != "" {
		cubes, err := definitions.LoadFile(cfg.MappingFile, deps.PG)
		if err != nil {
			return nil, err
		}
		for _, c := range cubes {
			if err := catalog.Register(c); err != nil {
				return nil, err
			}
		}
	}

	svc := service.New(deps.PG, repo.NewPG(), catalog, service.Config{
		Workers:   cfg.Workers,
		Namespace: cfg.Namespace,
		Levels:    cfg.Levels,
	})
	if deps.CH != nil && cfg.Archive {
		svc.Archive = repo.NewArchive(deps.CH)
	}
	if cfg.DHIS2.BaseURL != "" {
		svc.Submitter = dhis2.NewClient(cfg.DHIS2)
	}

	log := deps.Log.With().Str("mod", b.Name).Logger()
	log.Info().
		Int("cubes", len(catalog.List())).
		Bool("archive", svc.Archive != nil).
		Bool("dhis2", svc.Submitter != nil).
		Msg("adxexport: module ready")

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Service: svc},
	}
	external := b.Register
	m.register = func(r phttp.Router) {
		xhttp.Register(r, m.ports.Service)
		external(r)
	}
	return m, nil
}

// Service returns the export service
func (m *Module) Service() domain.ServicePort { return m.ports.Service }

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r phttp.Router) {
	r.Route(m.prefix, func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		m.register(rr)
	})
}

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }
