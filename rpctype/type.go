package rpctype

// Type is an immutable record describing one static type: a primitive, an
// array of an (always immutable) element type, a map of an (always
// immutable) key and value type, or a named object type. A Type may
// additionally be marked mutable, meaning it describes a mutable reference
// to the underlying shape rather than the shape itself — only the outer
// reference may be mutable; spec.md §3 forbids a mutable array/map element.
type Type struct {
	kind    Kind
	mutable bool
	elem    *Type  // Array element, always immutable
	key     *Type  // Map key, always immutable
	val     *Type  // Map value, always immutable
	name    string // Object's registered name
}

// Kind returns the receiver's kind.
func (t *Type) Kind() Kind { return t.kind }

// IsMutable reports whether t describes a mutable reference.
func (t *Type) IsMutable() bool { return t.mutable }

// Elem returns the element type of an Array descriptor.
func (t *Type) Elem() *Type { return t.elem }

// Key returns the key type of a Map descriptor.
func (t *Type) Key() *Type { return t.key }

// Val returns the value type of a Map descriptor.
func (t *Type) Val() *Type { return t.val }

// Name returns the registered name of an Object descriptor.
func (t *Type) Name() string { return t.name }

func primitive(k Kind) *Type { return &Type{kind: k} }

func VoidType() *Type    { return primitive(Void) }
func Int8Type() *Type    { return primitive(Int8) }
func Int16Type() *Type   { return primitive(Int16) }
func Int32Type() *Type   { return primitive(Int32) }
func Int64Type() *Type   { return primitive(Int64) }
func Uint8Type() *Type   { return primitive(Uint8) }
func Uint16Type() *Type  { return primitive(Uint16) }
func Uint32Type() *Type  { return primitive(Uint32) }
func Uint64Type() *Type  { return primitive(Uint64) }
func Float32Type() *Type { return primitive(Float32) }
func Float64Type() *Type { return primitive(Float64) }
func BoolType() *Type    { return primitive(Bool) }
func StringType() *Type  { return primitive(String) }

// NewArray builds an Array(elem) descriptor. elem must not itself be
// mutable — spec.md §3: "array/map element descriptors are always
// immutable (only the outer reference can be mutable)".
func NewArray(elem *Type) *Type {
	if elem.IsMutable() {
		panic("rpctype: array element type must be immutable")
	}
	return &Type{kind: Array, elem: elem}
}

// NewMap builds a Map(key, val) descriptor. Neither key nor val may be
// mutable.
func NewMap(key, val *Type) *Type {
	if key.IsMutable() || val.IsMutable() {
		panic("rpctype: map key/value type must be immutable")
	}
	return &Type{kind: Map, key: key, val: val}
}

// NewObject builds an Object(name) descriptor.
func NewObject(name string) *Type {
	return &Type{kind: Object, name: name}
}

// Mutable returns a copy of t marked as a mutable reference. void is
// always immutable (spec.md §3) so calling Mutable on a Void type panics.
func (t *Type) Mutable() *Type {
	if t.kind == Void {
		panic("rpctype: void is always immutable")
	}
	cp := *t
	cp.mutable = true
	return &cp
}

// Immutable returns a copy of t marked as a non-reference value.
func (t *Type) Immutable() *Type {
	cp := *t
	cp.mutable = false
	return &cp
}

// Equal reports whether t and o describe the same type, including
// mutability.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.kind != o.kind || t.mutable != o.mutable {
		return false
	}
	switch t.kind {
	case Array:
		return t.elem.Equal(o.elem)
	case Map:
		return t.key.Equal(o.key) && t.val.Equal(o.val)
	case Object:
		return t.name == o.name
	default:
		return true
	}
}
