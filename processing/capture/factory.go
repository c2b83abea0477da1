package capture

import (
	"fmt"
	"sort"
	"sync"

	"imgproc/internal/config"
)

// Backend builds an OpenFunc from the current configuration.
type Backend func(cfg *config.Config) OpenFunc

var (
	backendsMu sync.RWMutex
	backends   = map[config.CaptureBackend]Backend{}
)

// Register makes a capture backend available by name. Backends that link
// native libraries register themselves from their package init.
func Register(name config.CaptureBackend, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if b == nil {
		panic("capture: Register backend is nil")
	}

	if _, dup := backends[name]; dup {
		panic("capture: Register called twice for backend " + string(name))
	}

	backends[name] = b
}

func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, string(name))
	}
	sort.Strings(names)

	return names
}

func NewOpener(cfg *config.Config) (OpenFunc, error) {
	name := cfg.GetBackend()

	backendsMu.RLock()
	b, ok := backends[name]
	backendsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("capture backend %q is not available", name)
	}

	return b(cfg), nil
}
