package registry

import (
	"fmt"
	"sync"

	"github.com/powpow088/EnglishWordsT/internal/speech/engine"
)

// Factory builds a speech backend of type T from a config map.
type Factory[T any] func(config map[string]string) (T, error)

// Registry holds named backend factories. Backends register themselves
// from init() so a blank import is enough to make one available.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// Register adds a named factory.
func (r *Registry[T]) Register(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates the named backend.
func (r *Registry[T]) Create(name string, config map[string]string) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown speech backend %q", name)
	}
	return factory(config)
}

// List returns all registered backend names.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Synth holds speech-output backends.
var Synth = New[engine.Synthesizer]()

// Recog holds speech-input backends.
var Recog = New[engine.Recognizer]()
