// Package rpctype implements the type descriptor and signature grammar of
// spec.md §3: an immutable description of one static type, plus the total
// function that turns a descriptor into a compact structural signature
// string and back.
package rpctype

// Kind enumerates the primitive and composite shapes a Type can take.
type Kind int

const (
	Invalid Kind = iota
	Void
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Bool
	String
	Array
	Map
	Object
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Array:
		return "array"
	case Map:
		return "map"
	case Object:
		return "object"
	default:
		return "invalid"
	}
}

// IsPrimitive reports whether k is a scalar kind with no sub-descriptors.
func (k Kind) IsPrimitive() bool {
	switch k {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64, Float32, Float64, Bool, String:
		return true
	default:
		return false
	}
}
