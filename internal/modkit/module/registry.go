// Package module is the process wide ports registry modules publish into at mount time
package module

import (
	"sort"
	"sync"
)

var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register publishes ports under a module name. A nil ports value is not stored
func Register(name string, ports any) {
	if ports == nil {
		return
	}
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// PortsAs returns the ports registered under name as T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// Names lists registered module names in order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Reset empties the registry. Tests call it between mounts
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
