package definitions

import (
	"sync"

	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
)

// Registry is a domain.Catalog keeping registration order
type Registry struct {
	mu    sync.RWMutex
	order []string
	cubes map[string]domain.CubeSource
}

// NewRegistry returns a registry holding cubes; it panics if any is invalid
func NewRegistry(cubes ...domain.CubeSource) *Registry {
	r := &Registry{cubes: map[string]domain.CubeSource{}}
	for _, c := range cubes {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Register validates c and adds it under its name
func (r *Registry) Register(c domain.CubeSource) error {
	name := c.Info().Name
	if name == "" {
		return perr.WithField(perr.Validationf("cube name is required"), "name")
	}
	if err := c.Validate(); err != nil {
		return perr.Wrapf(err, perr.CodeOf(err), "cube %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.cubes[name]; dup {
		return perr.WithField(perr.Validationf("cube %q is already registered", name), "name")
	}
	r.cubes[name] = c
	r.order = append(r.order, name)
	return nil
}

// Get implements domain.Catalog
func (r *Registry) Get(name string) (domain.CubeSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cubes[name]
	return c, ok
}

// List implements domain.Catalog
func (r *Registry) List() []domain.CubeSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CubeSource, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.cubes[n])
	}
	return out
}
