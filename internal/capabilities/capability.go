package capabilities

import (
	"context"
)

// Capability defines the interface for all agent-callable beamline
// operations. Descriptions and parameter schemas are what the
// orchestrating LLM sees when deciding which capability to invoke.
type Capability interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema for the capability's inputs
	Execute(ctx context.Context, input string) (string, error)
}

// Registry manages the set of available capabilities.
type Registry struct {
	Capabilities map[string]Capability
}

func NewRegistry() *Registry {
	return &Registry{
		Capabilities: make(map[string]Capability),
	}
}

func (r *Registry) Register(c Capability) {
	r.Capabilities[c.Name()] = c
}

func (r *Registry) Get(name string) Capability {
	return r.Capabilities[name]
}
