package callsite

import (
	"reflect"

	"krypt.co/rpc/dispatch"
	"krypt.co/rpc/rpctype"
	"krypt.co/rpc/variant"
)

// Proxy mirrors a declared type's methods on the client side of a
// CallSite. T only types the proxy for the caller's convenience — Go
// generics cannot express a per-instance dynamic method set, so a
// concrete generated proxy (the declarative macro layer, out of scope
// here) wraps Proxy[T].Call per declared method and uses WriteBack to
// replay mutable-argument results into its own typed parameters.
type Proxy[T any] struct {
	site      CallSite
	handle    uint64
	signature string
}

// NewProxy issues CallSite.Startup for the object named signature and
// returns a bound Proxy. Passing a nil CallSite panics — the Go analogue
// of "passing a null site is fatal" (spec.md §5).
func NewProxy[T any](site CallSite, signature string) (*Proxy[T], error) {
	if site == nil {
		panic("callsite: NewProxy requires a non-nil CallSite")
	}
	handle, err := site.Startup(signature)
	if err != nil {
		return nil, err
	}
	return &Proxy[T]{site: site, handle: handle, signature: signature}, nil
}

// Call invokes name against the proxy's remote object using the method's
// declared argument/result shape to build the dispatch signature, and
// returns the method result. Mutable arguments are back-patched into argv
// in place.
func (p *Proxy[T]) Call(name string, argTypes []*rpctype.Type, resultType *rpctype.Type, argv *variant.Variant) (*variant.Variant, error) {
	sig := rpctype.MethodSignature(name, argTypes, resultType)
	return p.site.Invoke(p.handle, sig, argv)
}

// Close releases the proxy's remote handle.
func (p *Proxy[T]) Close() {
	p.site.Cleanup(p.handle)
}

// WriteBack decodes argv's i'th entry (after Call returns) back into
// *target, the address of the Go variable originally passed by pointer
// for a declared-mutable argument — spec.md §4.6 step 6's back-patch,
// replayed on the client side.
func WriteBack(argv *variant.Variant, i int, t *rpctype.Type, target interface{}) error {
	child, err := argv.Index(i)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr {
		panic("callsite: WriteBack target must be a pointer")
	}
	decoded, err := dispatch.Decode(child, t, rv.Elem().Type())
	if err != nil {
		return err
	}
	rv.Elem().Set(decoded)
	return nil
}
