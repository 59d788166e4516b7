package scenario

import (
	"fmt"
	"sort"

	"github.com/tmn-dev/ilqgame/internal/config"
)

// Builder assembles a problem from configuration.
type Builder func(cfg *config.Config) (*Problem, error)

type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	r.builders["one_player_reach"] = OnePlayerReach
	r.builders["two_player_intersection"] = TwoPlayerIntersection
	r.builders["point_mass_regulation"] = PointMassRegulation
	return r
}

// Build looks a scenario up by name and assembles it.
func (r *Registry) Build(name string, cfg *config.Config) (*Problem, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
	return b(cfg)
}

// Names lists registered scenarios in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
