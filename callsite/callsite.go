// Package callsite implements the call-site contract of spec.md §5: a
// local implementation backed by a class registry, and a generic
// client-side proxy that mirrors a declared type's methods.
package callsite

import (
	"sync"
	"sync/atomic"

	"github.com/op/go-logging"

	"krypt.co/rpc/classreg"
	"krypt.co/rpc/rpcerr"
	"krypt.co/rpc/variant"
)

var log = logging.MustGetLogger("krypt.co/rpc/callsite")

// CallSite is the contract a proxy routes every invocation through.
type CallSite interface {
	Startup(signature string) (uint64, error)
	Cleanup(handle uint64)
	Invoke(handle uint64, methodSignature string, argv *variant.Variant) (*variant.Variant, error)
}

type liveObject struct {
	instance classreg.Object
	class    *classreg.ClassMeta
}

// LocalCallSite implements CallSite against a class registry held
// in-process. Handle assignment is a single atomic increment, and every
// read or write of the handle→instance map is guarded by mu. The method
// call in Invoke runs outside that lock, so concurrent invocations on the
// same instance are not serialized.
type LocalCallSite struct {
	registry *classreg.Registry
	nextID   uint64 // atomically incremented; first issued handle is 1

	mu        sync.Mutex
	instances map[uint64]liveObject
}

// NewLocalCallSite returns a LocalCallSite resolving classes through
// registry.
func NewLocalCallSite(registry *classreg.Registry) *LocalCallSite {
	return &LocalCallSite{registry: registry, instances: make(map[uint64]liveObject)}
}

// Startup instantiates the class named by signature (an object(name)
// type signature, e.g. "<Greeter>") and returns a freshly issued handle.
func (s *LocalCallSite) Startup(signature string) (uint64, error) {
	class, err := s.registry.Find(signature)
	if err != nil {
		return 0, err
	}
	handle := atomic.AddUint64(&s.nextID, 1)
	instance := class.NewInstance()

	s.mu.Lock()
	s.instances[handle] = liveObject{instance: instance, class: class}
	s.mu.Unlock()

	log.Debugf("startup %s -> handle %d", signature, handle)
	return handle, nil
}

// Cleanup releases the instance owned by handle, if any.
func (s *LocalCallSite) Cleanup(handle uint64) {
	s.mu.Lock()
	delete(s.instances, handle)
	s.mu.Unlock()
	log.Debugf("cleanup handle %d", handle)
}

// Invoke dispatches methodSignature against the instance owned by
// handle, looking up the bound method on the class recorded at Startup.
func (s *LocalCallSite) Invoke(handle uint64, methodSignature string, argv *variant.Variant) (*variant.Variant, error) {
	s.mu.Lock()
	live, ok := s.instances[handle]
	s.mu.Unlock()
	if !ok {
		return nil, rpcerr.New(rpcerr.Argument, "no instance live for handle %d", handle)
	}
	method, err := live.class.FindMethod(methodSignature)
	if err != nil {
		return nil, err
	}
	return method.Invoke(live.instance, argv)
}
