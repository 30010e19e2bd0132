package registry

import (
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving items by name
type Registry[T any] interface {
	// Register adds an item to the registry. Names are registered once.
	Register(name string, item T) error

	// Get retrieves an item from the registry
	Get(name string) (T, error)

	// Lookup retrieves an item without building an error
	Lookup(name string) (T, bool)

	// List returns all registered names, sorted
	List() []string

	// All iterates over name/item pairs in sorted name order
	All() iter.Seq2[string, T]

	// Has checks if an item is registered
	Has(name string) bool

	// Count returns the number of registered items
	Count() int
}

// Option customizes a registry.
type Option func(*settings)

type settings struct {
	kind         string
	notFoundCode errors.ErrorCode
}

// WithKind names the kind of item stored, used in error messages
// ("plug 'x' not found" instead of "item 'x' not found").
func WithKind(kind string) Option {
	return func(s *settings) { s.kind = kind }
}

// WithNotFoundCode sets the error code returned by Get for unknown names.
func WithNotFoundCode(code errors.ErrorCode) Option {
	return func(s *settings) { s.notFoundCode = code }
}

// registry is the internal implementation of Registry
type registry[T any] struct {
	settings
	mu    sync.RWMutex
	items map[string]T
}

// New creates a new Registry instance
func New[T any](opts ...Option) Registry[T] {
	r := &registry[T]{
		settings: settings{kind: "item", notFoundCode: errors.ErrNotFound},
		items:    make(map[string]T),
	}
	for _, opt := range opts {
		opt(&r.settings)
	}
	return r
}

func (r *registry[T]) Register(name string, item T) error {
	if name == "" {
		return errors.Newf(errors.ErrInvalidInput, "%s name cannot be empty", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "%s '%s' is already registered", r.kind, name).
			WithDetail("name", name)
	}

	r.items[name] = item
	return nil
}

func (r *registry[T]) Get(name string) (T, error) {
	item, ok := r.Lookup(name)
	if !ok {
		return item, errors.Newf(r.notFoundCode, "%s '%s' not found in registry", r.kind, name).
			WithDetail("name", name).
			WithDetail("available", r.List())
	}
	return item, nil
}

func (r *registry[T]) Lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	return item, exists
}

func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

func (r *registry[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, name := range r.List() {
			item, ok := r.Lookup(name)
			if !ok {
				continue
			}
			if !yield(name, item) {
				return
			}
		}
	}
}

func (r *registry[T]) Has(name string) bool {
	_, exists := r.Lookup(name)
	return exists
}

func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// MustRegister registers an item and panics if registration fails
// This is useful for init() functions where registration errors are programming errors
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}
