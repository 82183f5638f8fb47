// Package codec defines the pluggable byte-codec contract and a registry
// of named codecs, keyed the way the teacher keys its backend registries.
package codec

import (
	"sync"

	"krypt.co/rpc/rpcerr"
	"krypt.co/rpc/variant"
)

// Codec converts between wire bytes and a Variant value tree.
type Codec interface {
	Name() string
	Parse(data []byte) (*variant.Variant, error)
	Assemble(v *variant.Variant) ([]byte, error)
}

// Registry is a name->Codec map with one designated default entry.
type Registry struct {
	mu      sync.RWMutex
	codecs  map[string]Codec
	dflt    string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Global is the process-wide codec registry; concrete codec packages
// (e.g. codec/msgpack) register themselves into it from their init().
var Global = NewRegistry()

// Register adds c under its own Name(). Fails with BackendDuplicated if
// the name is already taken by a different codec.
func (r *Registry) Register(c Codec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.codecs[c.Name()]; ok && existing != c {
		return rpcerr.New(rpcerr.BackendDuplicated, "codec %q already registered", c.Name())
	}
	r.codecs[c.Name()] = c
	if r.dflt == "" {
		r.dflt = c.Name()
	}
	return nil
}

// SetDefault designates name as the registry's default codec. Fails with
// BackendNotFound if name has not been registered.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codecs[name]; !ok {
		return rpcerr.New(rpcerr.BackendNotFound, "codec %q not registered", name)
	}
	r.dflt = name
	return nil
}

// Lookup returns the codec registered under name.
func (r *Registry) Lookup(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	if !ok {
		return nil, rpcerr.New(rpcerr.BackendNotFound, "codec %q not registered", name)
	}
	return c, nil
}

// Default returns the registry's designated default codec.
func (r *Registry) Default() (Codec, error) {
	r.mu.RLock()
	name := r.dflt
	r.mu.RUnlock()
	if name == "" {
		return nil, rpcerr.New(rpcerr.BackendNotFound, "no default codec registered")
	}
	return r.Lookup(name)
}
