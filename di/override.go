package di

import "sync"

// overrideTable holds resolution-time substitutions. It is consulted before
// any cache or provider lookup. Overrides for the same interface stack:
// removing the innermost one reinstates the previous value.
type overrideTable struct {
	mu        sync.RWMutex
	instances map[Interface][]any
}

func newOverrideTable() *overrideTable {
	return &overrideTable{instances: make(map[Interface][]any)}
}

func (t *overrideTable) get(iface Interface) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	stack := t.instances[iface]
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1], true
}

// push installs an override and returns the function that removes it. The
// restore function is idempotent and must be called to end the override
// window on every exit path.
func (t *overrideTable) push(iface Interface, instance any) func() {
	t.mu.Lock()
	t.instances[iface] = append(t.instances[iface], instance)
	depth := len(t.instances[iface])
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			stack := t.instances[iface]
			if len(stack) >= depth {
				t.instances[iface] = append(stack[:depth-1], stack[depth:]...)
			}
			if len(t.instances[iface]) == 0 {
				delete(t.instances, iface)
			}
		})
	}
}
