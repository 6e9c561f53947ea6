// Package ids hands out stable integer view ids for string identifiers.
package ids

import "sync"

// MaxID is the largest id a Generator hands out. Ids above it are reserved
// for ids assigned by host toolkits.
const MaxID = 0x00FFFFFF

// Generator maps strings to process-unique integers. The same string always
// maps to the same id and different strings never share one. It is safe for
// concurrent use.
type Generator struct {
	mu    sync.RWMutex
	ids   map[string]int
	names []string // index i holds the name of id i+1
}

// NewGenerator returns an empty generator. The first id is 1.
func NewGenerator() *Generator {
	return &Generator{ids: make(map[string]int)}
}

// Unique returns the id for name, allocating the next free one on first use.
// It panics once MaxID ids have been handed out.
func (g *Generator) Unique(name string) int {
	g.mu.RLock()
	id, ok := g.ids[name]
	g.mu.RUnlock()
	if ok {
		return id
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.ids[name]; ok {
		return id
	}
	if len(g.names) >= MaxID {
		panic("ids: id space exhausted")
	}
	g.names = append(g.names, name)
	id = len(g.names)
	g.ids[name] = id
	return id
}

// Lookup returns the id already allocated for name.
func (g *Generator) Lookup(name string) (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.ids[name]
	return id, ok
}

// Name returns the string an id was allocated for.
func (g *Generator) Name(id int) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if id < 1 || id > len(g.names) {
		return "", false
	}
	return g.names[id-1], true
}

// Len returns how many ids have been allocated.
func (g *Generator) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.names)
}
