package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/danthegoodman1/icescore/schema"
)

type (
	// Factory creates a fresh engine instance. Engines are stateful, so every
	// execution gets its own.
	Factory func() Engine

	Catalog struct {
		mu        sync.RWMutex
		factories map[string]Factory
	}

	EngineInfo struct {
		Name    string
		Method  string
		Input   json.RawMessage
		Output  json.RawMessage
		Summary string
	}
)

var (
	ErrEngineNotFound = errors.New("scoring engine not found")
	ErrEngineExists   = errors.New("scoring engine already registered")
)

func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

func (c *Catalog) Register(name string, f Factory) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrEngineExists, name)
	}
	c.factories[name] = f
	return nil
}

func (c *Catalog) New(name string) (Engine, error) {
	c.mu.RLock()
	f, ok := c.factories[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEngineNotFound, name)
	}
	return f(), nil
}

// List describes every registered engine, sorted by name.
func (c *Catalog) List() []EngineInfo {
	c.mu.RLock()
	names := make([]string, 0, len(c.factories))
	for n := range c.factories {
		names = append(names, n)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	infos := make([]EngineInfo, 0, len(names))
	for _, n := range names {
		e, err := c.New(n)
		if err != nil {
			continue
		}
		infos = append(infos, Describe(n, e))
	}
	return infos
}

func Describe(name string, e Engine) EngineInfo {
	return EngineInfo{
		Name:    name,
		Method:  e.Method().String(),
		Input:   json.RawMessage(e.InputSchema().String()),
		Output:  json.RawMessage(e.OutputSchema().String()),
		Summary: schema.Summary(e.InputSchema(), e.OutputSchema()),
	}
}
