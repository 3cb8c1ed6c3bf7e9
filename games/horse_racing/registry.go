package horse_racing

import (
	"context"
	"sync"
	"time"

	"hrc-derby/utils"
)

// Registry manages active tables keyed by ID (a Discord channel, an HTTP table
// name). Tables are created on first use against the shared catalog.
type Registry struct {
	catalog    *Catalog
	animations *utils.AnimationManager
	newRandom  func() Random

	tables map[string]*Table
	mutex  sync.RWMutex
}

func NewRegistry(catalog *Catalog, animations *utils.AnimationManager) *Registry {
	return &Registry{
		catalog:    catalog,
		animations: animations,
		tables:     make(map[string]*Table),
	}
}

// Catalog exposes the shared catalog.
func (r *Registry) Catalog() *Catalog { return r.catalog }

// Get returns the table for id, creating it if needed.
func (r *Registry) Get(id string) *Table {
	r.mutex.RLock()
	t, ok := r.tables[id]
	r.mutex.RUnlock()
	if ok {
		return t
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if t, ok := r.tables[id]; ok {
		return t
	}
	var rng Random
	if r.newRandom != nil {
		rng = r.newRandom()
	}
	t = NewTable(id, NewGame(r.catalog, rng), r.animations)
	r.tables[id] = t
	return t
}

// Lookup returns the table for id without creating one.
func (r *Registry) Lookup(id string) (*Table, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	t, ok := r.tables[id]
	return t, ok
}

// Remove resets and forgets a table.
func (r *Registry) Remove(id string) {
	r.mutex.Lock()
	t, ok := r.tables[id]
	delete(r.tables, id)
	r.mutex.Unlock()
	if ok {
		t.Reset()
	}
}

// Stats returns counts of tables by race status plus a total.
func (r *Registry) Stats() map[string]int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	stats := map[string]int{"total": len(r.tables)}
	for _, t := range r.tables {
		stats[string(t.Game().Status())]++
	}
	return stats
}

// CleanupIdle drops tables that are not racing and have been quiet longer
// than maxAge. It returns how many were removed.
func (r *Registry) CleanupIdle(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	r.mutex.Lock()
	var expired []*Table
	for id, t := range r.tables {
		if !t.IsRacing() && t.IdleSince().Before(cutoff) {
			expired = append(expired, t)
			delete(r.tables, id)
		}
	}
	r.mutex.Unlock()

	for _, t := range expired {
		t.Reset()
	}
	if len(expired) > 0 {
		utils.BotLogf("DERBY", "Cleaned up %d idle tables", len(expired))
	}
	return len(expired)
}

// RunCleanup calls CleanupIdle every interval until ctx is done.
func (r *Registry) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.CleanupIdle(maxAge)
		}
	}
}
