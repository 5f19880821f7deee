package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// NormalizeFunc converts one component's raw UI state into its canonical
// record. A nil record with a nil error means the component holds only
// default or placeholder data and is suppressed from submission. An error is
// returned only when a required reference id cannot be resolved; the
// function performs no network or storage side effects.
type NormalizeFunc func(raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error)

// ComponentDefinition describes one registered inspection component.
type ComponentDefinition struct {
	// Name is the component tag used by the UI state, unique per component.
	Name string

	// Label is the human-readable section title.
	Label string

	// Normalize converts the component's raw state.
	Normalize NormalizeFunc
}

var (
	components   = make(map[string]ComponentDefinition)
	componentsMu sync.RWMutex
)

// RegisterComponent adds a component definition to the registry.
// Panics if a component with the same name is already registered.
func RegisterComponent(def ComponentDefinition) {
	componentsMu.Lock()
	defer componentsMu.Unlock()

	if _, exists := components[def.Name]; exists {
		panic(fmt.Sprintf("component already registered: %s", def.Name))
	}
	if def.Normalize == nil {
		panic(fmt.Sprintf("component has no normalizer: %s", def.Name))
	}

	components[def.Name] = def
}

// Component returns a component definition by name.
// Returns false if not found.
func Component(name string) (ComponentDefinition, bool) {
	componentsMu.RLock()
	defer componentsMu.RUnlock()

	def, ok := components[name]
	return def, ok
}

// Components returns all registered component definitions sorted by name.
func Components() []ComponentDefinition {
	componentsMu.RLock()
	defer componentsMu.RUnlock()

	result := make([]ComponentDefinition, 0, len(components))
	for _, def := range components {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// ComponentCount returns the number of registered components.
func ComponentCount() int {
	componentsMu.RLock()
	defer componentsMu.RUnlock()
	return len(components)
}

// Normalize dispatches one component's raw state to its registered
// normalizer. Unknown component names are an error: the UI and the registry
// must agree on the component set.
func Normalize(name string, raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error) {
	def, ok := Component(name)
	if !ok {
		return nil, fmt.Errorf("unknown component: %s", name)
	}
	rec, err := def.Normalize(raw, refs)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", name, err)
	}
	if rec != nil {
		rec.Component = def.Name
	}
	return rec, nil
}
