package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// EventFactory creates an empty event for a push message type.
type EventFactory func() Event

var (
	registryMu sync.RWMutex
	registry   = make(map[string]EventFactory)
)

// RegisterEventType registers a factory for a push message type.
// e.g. RegisterEventType("filling", func() Event { return &Filling{} })
func RegisterEventType(typeName string, factory EventFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[typeName]; dup {
		panic("RegisterEventType called twice for " + typeName)
	}
	registry[typeName] = factory
}

// GetEventType creates a new, empty event for the given message type.
func GetEventType(typeName string) (Event, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[typeName]
	if !ok {
		return nil, fmt.Errorf("event type '%s' not found in registry", typeName)
	}
	return factory(), nil
}

// EventTypes returns the registered message types, sorted.
func EventTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DecodeEvent decodes one push message. Unknown message types yield (nil, typeName, nil).
func DecodeEvent(data []byte) (Event, string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, "", fmt.Errorf("malformed push message: %w", err)
	}
	ev, err := GetEventType(head.Type)
	if err != nil {
		return nil, head.Type, nil
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, head.Type, fmt.Errorf("malformed '%s' payload: %w", head.Type, err)
	}
	return ev, head.Type, nil
}
