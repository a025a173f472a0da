package source

import (
	"fmt"

	"SoccerTrends/internal/ports"
)

// Registry keeps a mapping from strategy names to post sources. Config
// picks which one feeds the pipeline.
type Registry struct {
	sources map[string]ports.PostSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.PostSource{}}
}

// Register adds or replaces a source strategy.
func (r *Registry) Register(name string, src ports.PostSource) {
	if r.sources == nil {
		r.sources = map[string]ports.PostSource{}
	}
	r.sources[name] = src
}

// Resolve returns a source by strategy name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.PostSource, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source strategy %s is not registered", name)
}
