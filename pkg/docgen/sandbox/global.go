package sandbox

import (
	"maps"
	"sync"
)

// The process-wide fallback scope. Every environment built by a Runtime
// consults it with the lowest precedence.
var (
	renderMu sync.Mutex

	globalMu    sync.RWMutex
	globalScope = map[string]any{}
)

// SetGlobal stores a name in the fallback scope.
func SetGlobal(name string, v any) {
	globalMu.Lock()
	globalScope[name] = v
	globalMu.Unlock()
}

// DeleteGlobal removes a name from the fallback scope.
func DeleteGlobal(name string) {
	globalMu.Lock()
	delete(globalScope, name)
	globalMu.Unlock()
}

// Global returns a name from the fallback scope.
func Global(name string) (any, bool) {
	globalMu.RLock()
	defer globalMu.RUnlock()
	v, ok := globalScope[name]
	return v, ok
}

func globals() map[string]any {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return maps.Clone(globalScope)
}

// AcquireGlobal installs the helper in the fallback scope for the duration of
// one render. Holders are serialized on a process mutex. The returned release
// restores the previous value of c, including its absence, and must be called
// exactly once, typically with defer.
func AcquireGlobal() (release func()) {
	renderMu.Lock()

	prev, had := Global(HelperName)
	SetGlobal(HelperName, C)

	var once sync.Once
	return func() {
		once.Do(func() {
			if had {
				SetGlobal(HelperName, prev)
			} else {
				DeleteGlobal(HelperName)
			}
			renderMu.Unlock()
		})
	}
}
