package share

import "sync"

// inflight tracks which controls have a request outstanding.
// A control is disabled from acquire until release.
type inflight struct {
	mu     sync.Mutex
	active map[any]struct{}
}

func (g *inflight) acquire(key any) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		g.active = make(map[any]struct{})
	}
	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

func (g *inflight) release(key any) {
	g.mu.Lock()
	delete(g.active, key)
	g.mu.Unlock()
}

func (g *inflight) busy(key any) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[key]
	return ok
}
