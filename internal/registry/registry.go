// Package registry provides a global registry of scenario factories.
// Built-in scenarios register themselves in init() functions, and user
// scenario directories are added at startup, so commands can list and
// start scenarios without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tilerules/internal/levels"
)

// ScenarioInfo contains metadata about a registered scenario.
type ScenarioInfo struct {
	ID     string
	Title  string
	Source string // file the scenario was loaded from
}

// Factory returns a fresh scenario. Each call must return a scenario whose
// world shares no state with earlier calls.
type Factory func() levels.Scenario

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]ScenarioInfo)
	mu        sync.RWMutex
)

// Register adds a scenario factory to the registry.
// Typically called from an init() function.
// Panics if a scenario with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: scenario %q already registered", id))
	}

	factories[id] = f

	// Get title by creating a temporary instance
	sc := f()
	infos[id] = ScenarioInfo{ID: id, Title: sc.Name, Source: sc.FilePath}
}

// FromScenario builds a factory that hands out copies of a loaded scenario.
func FromScenario(sc levels.Scenario) Factory {
	return func() levels.Scenario {
		clone := *sc.Scenario
		clone.World = sc.NewWorld()
		return levels.Scenario{Scenario: &clone, FilePath: sc.FilePath}
	}
}

// RegisterDir loads every scenario under dir and registers it. Scenarios
// whose ID is already registered are skipped and returned as the second
// value.
func RegisterDir(dir string) (added, skipped []string, err error) {
	all, err := levels.NewLoader(dir).LoadAll()
	if err != nil {
		return nil, nil, err
	}
	for _, sc := range all {
		if Exists(sc.ID) {
			skipped = append(skipped, sc.ID)
			continue
		}
		Register(sc.ID, FromScenario(sc))
		added = append(added, sc.ID)
	}
	return added, skipped, nil
}

// List returns information about all registered scenarios, sorted by ID.
func List() []ScenarioInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ScenarioInfo, 0, len(factories))
	for id := range factories {
		result = append(result, infos[id])
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a scenario by its ID.
// Returns an error if the scenario ID is not registered.
func Create(id string) (levels.Scenario, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return levels.Scenario{}, fmt.Errorf("registry: unknown scenario %q", id)
	}

	return f(), nil
}

// Exists checks if a scenario with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
