package search

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"snax.fit/snax/internal/config"
)

// Registry stores search engines in registration order. The order is part
// of the search contract: it is the stable tie-break for equally relevant
// results.
type Registry struct {
	engines []Engine
	byName  map[string]Engine
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Engine),
	}
}

// NewRegistryFromConfig builds a registry holding the configured engines in
// configuration order. Unknown engine names fail construction so a typo is
// caught at startup rather than silently shrinking the catalog set.
func NewRegistryFromConfig(cfg *config.Config, logger zerolog.Logger) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	client := &http.Client{}
	registry := NewRegistry()
	for _, name := range cfg.SearchEngineList() {
		var engine Engine
		switch name {
		case EngineNameShipt:
			engine = NewShiptEngine(client, logger)
		case EngineNameBoxed:
			engine = NewBoxedEngine(client, logger)
		case EngineNameSamsClub:
			engine = NewSamsClubEngine(client, logger)
		default:
			return nil, fmt.Errorf("search engine %q is not known (available: %s)",
				name, strings.Join([]string{EngineNameShipt, EngineNameBoxed, EngineNameSamsClub}, ", "))
		}
		if err := registry.Register(engine); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds one engine. Re-registering a name replaces the engine but
// keeps its original position.
func (r *Registry) Register(engine Engine) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if engine == nil {
		return fmt.Errorf("engine is nil")
	}
	name := normalizeEngineName(engine.Name())
	if name == "" {
		return fmt.Errorf("engine name is required")
	}

	if _, exists := r.byName[name]; exists {
		for i, existing := range r.engines {
			if normalizeEngineName(existing.Name()) == name {
				r.engines[i] = engine
				break
			}
		}
	} else {
		r.engines = append(r.engines, engine)
	}
	r.byName[name] = engine
	return nil
}

// Engines returns the registered engines in registration order.
func (r *Registry) Engines() []Engine {
	if r == nil {
		return nil
	}
	out := make([]Engine, len(r.engines))
	copy(out, r.engines)
	return out
}

// Engine resolves an engine by name.
func (r *Registry) Engine(name string) (Engine, error) {
	if r == nil || len(r.byName) == 0 {
		return nil, fmt.Errorf("no search engines are registered")
	}
	engine, ok := r.byName[normalizeEngineName(name)]
	if !ok {
		return nil, fmt.Errorf("search engine %q is not registered (available: %s)",
			name, strings.Join(r.EngineNames(), ", "))
	}
	return engine, nil
}

func (r *Registry) EngineNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeEngineName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
