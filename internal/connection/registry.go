package connection

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nucleus/cdc-conductor/internal/core"
)

// Factory creates a validator bound to per-call options.
type Factory func(opts Options) Validator

// Registry holds validator factories indexed by destination type.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty validator registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

func normalizeType(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// Register adds a factory for the given destination type.
// Panics if the type is already registered.
func (r *Registry) Register(connType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeType(connType)
	if _, exists := r.factories[key]; exists {
		panic(fmt.Sprintf("connection validator already registered: %s", key))
	}
	r.factories[key] = factory
}

// Get returns the factory for the given destination type.
func (r *Registry) Get(connType string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[normalizeType(connType)]
	return factory, ok
}

// List returns all registered destination types, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// New instantiates the validator for connType.
func (r *Registry) New(connType string, opts Options) (Validator, error) {
	factory, ok := r.Get(connType)
	if !ok {
		return nil, fmt.Errorf("unknown connection type: %s", connType)
	}
	return factory(opts), nil
}

// Descriptors returns the descriptor of every registered validator.
func (r *Registry) Descriptors() []*Descriptor {
	types := r.List()
	out := make([]*Descriptor, 0, len(types))
	for _, t := range types {
		v, err := r.New(t, Options{})
		if err != nil {
			continue
		}
		out = append(out, v.Descriptor())
	}
	return out
}

// Validate dispatches conn to the validator registered for its type.
func (r *Registry) Validate(ctx context.Context, conn *core.Connection, opts Options) Result {
	if conn == nil {
		return Invalid(NullConfigurationMessage)
	}
	v, err := r.New(conn.Type, opts)
	if err != nil {
		return Invalid("Connection type %s not supported", conn.Type)
	}
	return v.Validate(ctx, conn)
}

// --- Default Global Registry ---

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global validator registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a factory to the default registry.
func Register(connType string, factory Factory) {
	defaultRegistry.Register(connType, factory)
}
