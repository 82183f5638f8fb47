// Package classreg holds the class registry, field/method metadata, and
// the base (de)serialization routine every declared type rides on
// (spec.md §4.3/§4.4).
package classreg

import (
	"reflect"
	"sync"

	"github.com/op/go-logging"

	"krypt.co/rpc/dispatch"
	"krypt.co/rpc/rpcerr"
	"krypt.co/rpc/rpctype"
	"krypt.co/rpc/variant"
)

var log = logging.MustGetLogger("krypt.co/rpc/classreg")

// Object is implemented by every declared type. Field metadata is
// produced by BaseSerialize/BaseDeserialize against a type's ClassMeta;
// a declared type typically implements these by delegating straight to
// those helpers.
type Object interface {
	SerializeRPC() (*variant.Variant, error)
	DeserializeRPC(*variant.Variant) error
}

// Factory constructs a zero-value instance of a declared type, used by a
// call site to materialize an object named in Startup.
type Factory func() Object

// FieldMeta describes one declared field: its wire type and the Go
// struct field it reads/writes through reflection.
type FieldMeta struct {
	Name     string
	Type     *rpctype.Type
	goField  string
}

// MethodMeta describes one declared method: its dispatch signature and
// its bound Invoker.
type MethodMeta struct {
	Name      string
	ArgTypes  []*rpctype.Type
	Result    *rpctype.Type
	Signature string
	invoke    dispatch.Invoker
}

// Invoke runs the method against instance with packed arguments argv.
func (m *MethodMeta) Invoke(instance Object, argv *variant.Variant) (*variant.Variant, error) {
	return m.invoke(instance, argv)
}

// ClassMeta is the full reflective description of one declared type.
type ClassMeta struct {
	name    string
	sig     *rpctype.Type
	fields  []*FieldMeta
	methods map[string]*MethodMeta
	factory Factory
}

// NewClass begins declaring a type named name, backed by factory for
// instantiation at a call site.
func NewClass(name string, factory Factory) *ClassMeta {
	return &ClassMeta{
		name:    name,
		sig:     rpctype.NewObject(name),
		methods: make(map[string]*MethodMeta),
		factory: factory,
	}
}

// Name returns the class's registered name.
func (c *ClassMeta) Name() string { return c.name }

// Signature returns the object(name) type descriptor for this class.
func (c *ClassMeta) Signature() *rpctype.Type { return c.sig }

// Fields returns the class's declared field table in declaration order.
func (c *ClassMeta) Fields() []*FieldMeta { return c.fields }

// NewInstance returns a fresh instance built by the class's factory.
func (c *ClassMeta) NewInstance() Object { return c.factory() }

// AddField declares a field named name of wire type t, backed by the Go
// struct field goField. Rejects a pointer-kind Go field immediately —
// the Go analogue of spec.md §4.5's "reference-typed fields are
// rejected at construction" — by instantiating a zero-value object from
// the class's factory and inspecting goField's reflect.Kind right away,
// rather than deferring the check to the first (de)serialize call.
func (c *ClassMeta) AddField(name string, t *rpctype.Type, goField string) error {
	for _, f := range c.fields {
		if f.Name == name {
			return rpcerr.New(rpcerr.Reflection, "class %q already declares field %q", c.name, name)
		}
	}
	if err := checkGoField(c, name, goField); err != nil {
		return err
	}
	c.fields = append(c.fields, &FieldMeta{Name: name, Type: t, goField: goField})
	return nil
}

// checkGoField validates that goField names an addressable, non-pointer
// struct field on a zero-value instance of c.
func checkGoField(c *ClassMeta, name, goField string) error {
	rv := reflect.ValueOf(c.factory())
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return rpcerr.New(rpcerr.Reflection, "class %q: factory must produce a pointer to a struct, got %s", c.name, rv.Type())
	}
	fv := rv.Elem().FieldByName(goField)
	if !fv.IsValid() {
		return rpcerr.New(rpcerr.Reflection, "class %q: no Go field %q backing declared field %q", c.name, goField, name)
	}
	if fv.Kind() == reflect.Ptr {
		return rpcerr.New(rpcerr.Reflection, "class %q: field %q is pointer-kind — reference-typed fields are rejected at construction", c.name, name)
	}
	return nil
}

// AddMethod declares a method named name with the given argument/result
// signature, bound to fn (a Go method-expression value such as
// (*T).Method) via dispatch.Bind.
func (c *ClassMeta) AddMethod(name string, argTypes []*rpctype.Type, resultType *rpctype.Type, fn interface{}) error {
	sig := rpctype.MethodSignature(name, argTypes, resultType)
	invoke, err := dispatch.Bind(argTypes, resultType, fn)
	if err != nil {
		return err
	}
	c.methods[sig] = &MethodMeta{
		Name: name, ArgTypes: argTypes, Result: resultType, Signature: sig, invoke: invoke,
	}
	log.Debugf("class %q: bound method %s", c.name, sig)
	return nil
}

// FindMethod looks up a method by its full dispatch signature.
func (c *ClassMeta) FindMethod(signature string) (*MethodMeta, error) {
	m, ok := c.methods[signature]
	if !ok {
		return nil, rpcerr.New(rpcerr.Reflection, "class %q has no method %q", c.name, signature)
	}
	return m, nil
}

// structField returns the addressable reflect.Value of f's backing Go
// field on instance, which must be a pointer to a struct.
func structField(instance Object, f *FieldMeta) (reflect.Value, error) {
	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, rpcerr.New(rpcerr.Reflection, "instance must be a pointer to a struct, got %s", rv.Type())
	}
	fv := rv.Elem().FieldByName(f.goField)
	if !fv.IsValid() {
		return reflect.Value{}, rpcerr.New(rpcerr.Reflection, "no Go field %q backing declared field %q", f.goField, f.Name)
	}
	if fv.Kind() == reflect.Ptr {
		return reflect.Value{}, rpcerr.New(rpcerr.Reflection, "field %q: pointer-kind Go fields are not addressable by the registry", f.Name)
	}
	return fv, nil
}

// Registry is a process-wide name->ClassMeta map.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*ClassMeta
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*ClassMeta)}
}

// Global is the process-wide class registry.
var Global = NewRegistry()

// Register adds c under its own Name(). Registering the identical
// *ClassMeta a second time is a no-op; registering a distinct ClassMeta
// under a name already taken fails with ClassDuplicated.
func (r *Registry) Register(c *ClassMeta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.classes[c.name]; ok {
		if existing == c {
			return nil
		}
		return rpcerr.New(rpcerr.ClassDuplicated, "class %q already registered", c.name)
	}
	r.classes[c.name] = c
	log.Debugf("registered class %q", c.name)
	return nil
}

// Find looks up a registered class by its object(name) signature, e.g.
// "<Greeter>".
func (r *Registry) Find(signature string) (*ClassMeta, error) {
	name, err := objectNameFromSignature(signature)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	if !ok {
		return nil, rpcerr.New(rpcerr.ClassNotFound, "no class registered for %q", signature)
	}
	return c, nil
}

func objectNameFromSignature(signature string) (string, error) {
	t, err := rpctype.ParseSignature(signature)
	if err != nil {
		return "", err
	}
	if t.Kind() != rpctype.Object {
		return "", rpcerr.New(rpcerr.ClassNotFound, "signature %q does not name an object type", signature)
	}
	return t.Name(), nil
}
