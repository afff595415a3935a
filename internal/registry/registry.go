// Package registry provides a global registry for script factories.
// Scripts register themselves in init() functions, allowing the CLI to
// discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/spritecore/internal/script"
)

// ScriptInfo contains metadata about a registered script.
type ScriptInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a script.
type Factory func() script.Script

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a script factory to the registry.
// Typically called from a script's init() function.
// Panics if a script with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: script %q already registered", id))
	}

	factories[id] = f

	// Get title by creating a temporary instance
	titles[id] = f().Title()
}

// List returns information about all registered scripts, sorted by ID.
func List() []ScriptInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ScriptInfo, 0, len(factories))
	for id := range factories {
		result = append(result, ScriptInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new script by its ID.
// Returns an error if the script ID is not registered.
func Create(id string) (script.Script, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown script %q", id)
	}

	return f(), nil
}

// Exists checks if a script with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
