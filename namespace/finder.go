package namespace

import "strings"

// The host's import machinery has carried two hook shapes over time: a
// legacy finder/loader pair and a spec-based finder. Both are thin
// adapters over the registry's single resolve operation.

// Finder is the legacy two-call import hook shape.
type Finder struct {
	reg *Registry
}

// Finder returns the legacy finder/loader adapter for this registry
func (r *Registry) Finder() *Finder {
	return &Finder{reg: r}
}

// FindModule reports whether this finder handles the dotted name
func (f *Finder) FindModule(name string) bool {
	return f.reg.Accepts(name)
}

// LoadModule resolves an accepted dotted name
func (f *Finder) LoadModule(name string) (any, error) {
	return f.reg.Load(name)
}

// ModuleSpec is the spec-based import hook shape: a found module plus
// the deferred create step.
type ModuleSpec struct {
	// Name is the dotted name being imported.
	Name string
	// SearchLocations marks the module as a package for the host's
	// machinery (the dotted name with path separators).
	SearchLocations []string

	reg *Registry
}

// FindSpec returns a module spec for the dotted name, or false when
// the name is outside the intercepted namespace.
func (r *Registry) FindSpec(name string) (*ModuleSpec, bool) {
	if !r.Accepts(name) {
		return nil, false
	}
	return &ModuleSpec{
		Name:            name,
		SearchLocations: []string{strings.ReplaceAll(name, ".", "/")},
		reg:             r,
	}, true
}

// Create resolves the spec's dotted name
func (s *ModuleSpec) Create() (any, error) {
	return s.reg.Load(s.Name)
}
