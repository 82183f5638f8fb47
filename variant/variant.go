// Package variant implements the value tree (spec.md §3/§4.2): a uniform,
// tagged container for every value that crosses a serialization or
// dispatch boundary. Every accessor is strict — it succeeds only when the
// Variant's tag exactly matches the type requested of it.
package variant

import (
	"krypt.co/rpc/rpcerr"
	"krypt.co/rpc/rpctype"
)

// Pair is one key/value entry of a Map variant. Map keys are themselves
// Variants, compared structurally via Equal — spec.md §4.2 requires that
// "keys are hashable by structural equality", which here means linear
// lookup by Equal inside a Hash-bucketed table (see mapData in
// mapdata.go), not
// Go's native map key identity.
type Pair struct {
	Key   *Variant
	Value *Variant
}

// Variant is the tagged value. Exactly one of the representation fields is
// meaningful, selected by kind. Array and Object children are held as
// shared *Variant pointers so that the dispatcher's mutable write-back
// (spec.md §4.6) can update a child in place and have every holder of the
// same pointer observe it.
type Variant struct {
	kind rpctype.Kind

	i   int64   // Int8/16/32/64
	u   uint64  // Uint8/16/32/64
	f   float64 // Float32/64 (Float32 stored widened, narrowed back on read)
	b   bool    // Bool
	str string  // String

	arr []*Variant          // Array
	obj map[string]*Variant // Object
	m   *mapData            // Map
}

// Kind returns the variant's tag.
func (v *Variant) Kind() rpctype.Kind { return v.kind }

func typeMismatch(want rpctype.Kind, v *Variant) error {
	return rpcerr.New(rpcerr.Type, "expected %s, got %s", want, v.kind)
}

// --- constructors ---

func NewVoid() *Variant  { return &Variant{kind: rpctype.Void} }
func NewInt8(x int8) *Variant   { return &Variant{kind: rpctype.Int8, i: int64(x)} }
func NewInt16(x int16) *Variant { return &Variant{kind: rpctype.Int16, i: int64(x)} }
func NewInt32(x int32) *Variant { return &Variant{kind: rpctype.Int32, i: int64(x)} }
func NewInt64(x int64) *Variant { return &Variant{kind: rpctype.Int64, i: x} }

func NewUint8(x uint8) *Variant   { return &Variant{kind: rpctype.Uint8, u: uint64(x)} }
func NewUint16(x uint16) *Variant { return &Variant{kind: rpctype.Uint16, u: uint64(x)} }
func NewUint32(x uint32) *Variant { return &Variant{kind: rpctype.Uint32, u: uint64(x)} }
func NewUint64(x uint64) *Variant { return &Variant{kind: rpctype.Uint64, u: x} }

func NewFloat32(x float32) *Variant { return &Variant{kind: rpctype.Float32, f: float64(x)} }
func NewFloat64(x float64) *Variant { return &Variant{kind: rpctype.Float64, f: x} }

func NewBool(x bool) *Variant     { return &Variant{kind: rpctype.Bool, b: x} }
func NewString(x string) *Variant { return &Variant{kind: rpctype.String, str: x} }

// NewArray wraps an ordered sequence of already-shared children.
func NewArray(children []*Variant) *Variant {
	arr := make([]*Variant, len(children))
	copy(arr, children)
	return &Variant{kind: rpctype.Array, arr: arr}
}

// NewObject wraps a name→child mapping representing a serialized object's
// fields.
func NewObject(fields map[string]*Variant) *Variant {
	obj := make(map[string]*Variant, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return &Variant{kind: rpctype.Object, obj: obj}
}

// NewMap wraps an arbitrary Variant-keyed mapping.
func NewMap(pairs []Pair) *Variant {
	m := newMapData()
	for _, p := range pairs {
		m.set(p.Key, p.Value)
	}
	return &Variant{kind: rpctype.Map, m: m}
}

// --- strict typed accessors ---

func (v *Variant) Int8() (int8, error) {
	if v.kind != rpctype.Int8 {
		return 0, typeMismatch(rpctype.Int8, v)
	}
	return int8(v.i), nil
}

func (v *Variant) Int16() (int16, error) {
	if v.kind != rpctype.Int16 {
		return 0, typeMismatch(rpctype.Int16, v)
	}
	return int16(v.i), nil
}

func (v *Variant) Int32() (int32, error) {
	if v.kind != rpctype.Int32 {
		return 0, typeMismatch(rpctype.Int32, v)
	}
	return int32(v.i), nil
}

func (v *Variant) Int64() (int64, error) {
	if v.kind != rpctype.Int64 {
		return 0, typeMismatch(rpctype.Int64, v)
	}
	return v.i, nil
}

func (v *Variant) Uint8() (uint8, error) {
	if v.kind != rpctype.Uint8 {
		return 0, typeMismatch(rpctype.Uint8, v)
	}
	return uint8(v.u), nil
}

func (v *Variant) Uint16() (uint16, error) {
	if v.kind != rpctype.Uint16 {
		return 0, typeMismatch(rpctype.Uint16, v)
	}
	return uint16(v.u), nil
}

func (v *Variant) Uint32() (uint32, error) {
	if v.kind != rpctype.Uint32 {
		return 0, typeMismatch(rpctype.Uint32, v)
	}
	return uint32(v.u), nil
}

func (v *Variant) Uint64() (uint64, error) {
	if v.kind != rpctype.Uint64 {
		return 0, typeMismatch(rpctype.Uint64, v)
	}
	return v.u, nil
}

func (v *Variant) Float32() (float32, error) {
	if v.kind != rpctype.Float32 {
		return 0, typeMismatch(rpctype.Float32, v)
	}
	return float32(v.f), nil
}

func (v *Variant) Float64() (float64, error) {
	if v.kind != rpctype.Float64 {
		return 0, typeMismatch(rpctype.Float64, v)
	}
	return v.f, nil
}

func (v *Variant) Bool() (bool, error) {
	if v.kind != rpctype.Bool {
		return false, typeMismatch(rpctype.Bool, v)
	}
	return v.b, nil
}

// Str returns the underlying value of a String variant. Named Str rather
// than String to leave String() free for the human-readable debug
// rendering of spec.md §4.2 (variant_text.go), matching fmt.Stringer.
func (v *Variant) Str() (string, error) {
	if v.kind != rpctype.String {
		return "", typeMismatch(rpctype.String, v)
	}
	return v.str, nil
}

// Array returns the variant's children. The returned slice shares storage
// with the variant; callers must not mutate it directly — use Index to
// obtain a child Variant and mutate through it instead.
func (v *Variant) Array() ([]*Variant, error) {
	if v.kind != rpctype.Array {
		return nil, typeMismatch(rpctype.Array, v)
	}
	return v.arr, nil
}

// Object returns the variant's name→child mapping.
func (v *Variant) Object() (map[string]*Variant, error) {
	if v.kind != rpctype.Object {
		return nil, typeMismatch(rpctype.Object, v)
	}
	return v.obj, nil
}

// MapPairs returns the variant's key/value pairs in unspecified order.
func (v *Variant) MapPairs() ([]Pair, error) {
	if v.kind != rpctype.Map {
		return nil, typeMismatch(rpctype.Map, v)
	}
	return v.m.pairs(), nil
}

// --- mutators ---

// Index returns the i'th array element. Fails with Index if i is out of
// range, or Type if the variant isn't an array.
func (v *Variant) Index(i int) (*Variant, error) {
	if v.kind != rpctype.Array {
		return nil, typeMismatch(rpctype.Array, v)
	}
	if i < 0 || i >= len(v.arr) {
		return nil, rpcerr.New(rpcerr.Index, "array index %d out of range [0,%d)", i, len(v.arr))
	}
	return v.arr[i], nil
}

// Field reads a named object field. Fails with Name on a miss, Type if
// the variant isn't an object.
func (v *Variant) Field(name string) (*Variant, error) {
	if v.kind != rpctype.Object {
		return nil, typeMismatch(rpctype.Object, v)
	}
	child, ok := v.obj[name]
	if !ok {
		return nil, rpcerr.New(rpcerr.Name, "object has no field %q", name)
	}
	return child, nil
}

// FieldForWrite returns the named object field, inserting a zero Int32
// child if it doesn't already exist, so that the caller can assign
// through the returned pointer. Panics if the variant isn't an object —
// unlike Field, there is no well-defined "wrong type" return value for a
// write-access helper.
func (v *Variant) FieldForWrite(name string) *Variant {
	if v.kind != rpctype.Object {
		panic("variant: FieldForWrite on a non-object variant")
	}
	if child, ok := v.obj[name]; ok {
		return child
	}
	child := NewInt32(0)
	v.obj[name] = child
	return child
}

// SetIndex replaces the i'th array element. Fails with Index if i is out
// of range, Type if the variant isn't an array.
func (v *Variant) SetIndex(i int, child *Variant) error {
	if v.kind != rpctype.Array {
		return typeMismatch(rpctype.Array, v)
	}
	if i < 0 || i >= len(v.arr) {
		return rpcerr.New(rpcerr.Index, "array index %d out of range [0,%d)", i, len(v.arr))
	}
	v.arr[i] = child
	return nil
}

// SetField replaces (or inserts) a named object field.
func (v *Variant) SetField(name string, child *Variant) error {
	if v.kind != rpctype.Object {
		return typeMismatch(rpctype.Object, v)
	}
	v.obj[name] = child
	return nil
}

// Len returns the number of elements in an Array, or the number of
// (key,value) pairs in a Map.
func (v *Variant) Len() (int, error) {
	switch v.kind {
	case rpctype.Array:
		return len(v.arr), nil
	case rpctype.Map:
		return v.m.len(), nil
	default:
		return 0, rpcerr.New(rpcerr.Type, "Len not defined on %s", v.kind)
	}
}
