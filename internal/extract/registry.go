/*
PURPOSE:
  Maps component names to the processor that extracts their metrics.

REQUIREMENTS:
  User-specified:
  - Alpha_wrap_3 always uses the named Quality schema.
  - Any other component name is accepted.

  Implementation-discovered:
  - Unregistered components fall back to the standard Extractor with the
    configured schema, so adding a component needs no code.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli (components)

USAGE:
  p, builtin := extract.DefaultRegistry().Lookup(name, src, schema)
*/

package extract

import "sort"

// Factory builds the Processor of a component for one run.
type Factory func(src Source) Processor

// Registry maps component names to their processors. Components without an
// entry use the standard Extractor with the deployment's quality schema.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns the registry with the built-in components.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("Alpha_wrap_3", func(src Source) Processor {
		return NewExtractor(src, SchemaNamed)
	})
	return r
}

// Register adds or replaces the processor for component.
func (r *Registry) Register(component string, f Factory) {
	r.factories[component] = f
}

// Lookup returns the processor for component and whether it was registered.
func (r *Registry) Lookup(component string, src Source, schema QualitySchema) (Processor, bool) {
	if f, ok := r.factories[component]; ok {
		return f(src), true
	}
	return NewExtractor(src, schema), false
}

// Names lists registered components in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
