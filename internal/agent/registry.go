package agent

import (
	"fmt"
	"sort"
)

// Registry holds the named agents available to the orchestrator.
type Registry struct {
	agents map[string]Agent
}

func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent under its own name. Re-registering a name replaces
// the previous agent.
func (r *Registry) Register(a Agent) {
	r.agents[a.Name()] = a
}

// Get returns the agent registered under name.
func (r *Registry) Get(name string) (Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// Names returns all registered agent names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves the requested names, in registry order. An empty request
// selects every registered agent.
func (r *Registry) Select(names []string) ([]Agent, error) {
	if len(names) == 0 {
		names = r.Names()
	}
	selected := make([]Agent, 0, len(names))
	for _, name := range names {
		a, ok := r.agents[name]
		if !ok {
			return nil, fmt.Errorf("agent '%s' is not registered (available: %v)", name, r.Names())
		}
		selected = append(selected, a)
	}
	return selected, nil
}

// Builtin returns a registry preloaded with the built-in analyzers.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(NewSecurityAgent())
	r.Register(NewHygieneAgent())
	r.Register(NewComplexityAgent())
	return r
}
