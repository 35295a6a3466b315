package twigpad

import (
	"maps"
	"slices"
)

// Function is a template function: {{ name(args...) }}.
type Function func(args []any, kwargs map[string]any) (any, error)

// Filter is a template filter: {{ value | name(args...) }}.
type Filter func(value any, args []any, kwargs map[string]any) (any, error)

// Test is a template test: {% if value is name %}.
type Test func(value any, args []any) (bool, error)

// Registry holds the symbols a template can reference.
// Registration is last-writer-wins. A Registry is not safe for concurrent
// mutation; the Renderer gives every render call its own clone.
type Registry struct {
	functions map[string]Function
	filters   map[string]Filter
	tests     map[string]Test
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		functions: map[string]Function{},
		filters:   map[string]Filter{},
		tests:     map[string]Test{},
	}
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry()
	}
	return &Registry{
		functions: maps.Clone(r.functions),
		filters:   maps.Clone(r.filters),
		tests:     maps.Clone(r.tests),
	}
}

func (r *Registry) RegisterFunction(name string, fn Function) { r.functions[name] = fn }
func (r *Registry) RegisterFilter(name string, fn Filter)     { r.filters[name] = fn }
func (r *Registry) RegisterTest(name string, fn Test)         { r.tests[name] = fn }

// AddFunction registers fn unless name is already taken, and reports whether it did.
func (r *Registry) AddFunction(name string, fn Function) bool {
	if _, ok := r.functions[name]; ok {
		return false
	}
	r.functions[name] = fn
	return true
}

// AddFilter registers fn unless name is already taken, and reports whether it did.
func (r *Registry) AddFilter(name string, fn Filter) bool {
	if _, ok := r.filters[name]; ok {
		return false
	}
	r.filters[name] = fn
	return true
}

func (r *Registry) Function(name string) (Function, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

func (r *Registry) Filter(name string) (Filter, bool) {
	fn, ok := r.filters[name]
	return fn, ok
}

func (r *Registry) Test(name string) (Test, bool) {
	fn, ok := r.tests[name]
	return fn, ok
}

// FunctionNames returns the registered function names, sorted.
func (r *Registry) FunctionNames() []string { return slices.Sorted(maps.Keys(r.functions)) }

// FilterNames returns the registered filter names, sorted.
func (r *Registry) FilterNames() []string { return slices.Sorted(maps.Keys(r.filters)) }

// TestNames returns the registered test names, sorted.
func (r *Registry) TestNames() []string { return slices.Sorted(maps.Keys(r.tests)) }
