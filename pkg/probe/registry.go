package probe

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	services = map[string]Service{}
	order    []string
)

// Register makes a Service available by its Name().
// It is typically called from an init() function. Registering a name twice
// replaces the earlier service but keeps its original position.
func Register(s Service) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := services[s.Name()]; !ok {
		order = append(order, s.Name())
	}
	services[s.Name()] = s
}

// Get returns the Service with the given name, or an error if not found.
func Get(name string) (Service, error) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := services[name]
	if !ok {
		return nil, fmt.Errorf("unknown service %q (available: %v)", name, sortedNames())
	}
	return s, nil
}

// MustGet is Get for names registered by this package.
func MustGet(name string) Service {
	s, err := Get(name)
	if err != nil {
		panic("probe: " + err.Error())
	}
	return s
}

// All returns the registered services in setup order.
func All() []Service {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Service, 0, len(order))
	for _, name := range order {
		out = append(out, services[name])
	}
	return out
}

// Names returns the sorted list of registered service names.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return sortedNames()
}

func sortedNames() []string {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupKey finds the KeySpec for an environment key (or one of its aliases)
// across all registered services.
func LookupKey(key string) (KeySpec, bool) {
	for _, s := range All() {
		for _, k := range s.Keys() {
			if k.Key == key {
				return k, true
			}
			for _, a := range k.Aliases {
				if a == key {
					return k, true
				}
			}
		}
	}
	return KeySpec{}, false
}
