package device

import (
	"sort"
	"strings"
	"sync"
)

// OpenFunc creates a device instance. The name is the human-visible device
// name backends may surface to the OS.
type OpenFunc func(name string) (Device, error)

var (
	registry   = make(map[string]OpenFunc)
	registryMu sync.RWMutex
)

// Register makes a backend available under the given name. Called from
// backend init() functions. Names are case-insensitive.
func Register(backend string, open OpenFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(backend)] = open
}

func lookup(backend string) OpenFunc {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[backend]
}

// Backends lists registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
