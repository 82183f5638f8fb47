// Package dispatch is the reflection core: it binds a Go method-expression
// value to the self-describing (argTypes, resultType) signature pair the
// class registry declares for it, and converts between Variant values and
// reflect.Value arguments along the way (spec.md §4.5/§4.6).
package dispatch

import (
	"reflect"

	"krypt.co/rpc/rpcerr"
	"krypt.co/rpc/rpctype"
	"krypt.co/rpc/variant"
)

// rpcObject mirrors classreg.Object's method set structurally so this
// package can decode/encode object-kind values without importing
// classreg — classreg imports dispatch to build its method invokers, and
// Go does not allow the reverse.
type rpcObject interface {
	SerializeRPC() (*variant.Variant, error)
	DeserializeRPC(*variant.Variant) error
}

var rpcObjectType = reflect.TypeOf((*rpcObject)(nil)).Elem()

// Decode converts v into a reflect.Value of the given target Go type,
// guided by the declared rpctype.Type t for array/map element shapes and
// object dispatch.
func Decode(v *variant.Variant, t *rpctype.Type, target reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case rpctype.Void:
		return reflect.Value{}, rpcerr.New(rpcerr.Argument, "void is not a decodable argument type")
	case rpctype.Int8:
		x, err := v.Int8()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Int16:
		x, err := v.Int16()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Int32:
		x, err := v.Int32()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Int64:
		x, err := v.Int64()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Uint8:
		x, err := v.Uint8()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Uint16:
		x, err := v.Uint16()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Uint32:
		x, err := v.Uint32()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Uint64:
		x, err := v.Uint64()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Float32:
		x, err := v.Float32()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Float64:
		x, err := v.Float64()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Bool:
		x, err := v.Bool()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.String:
		x, err := v.Str()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(x).Convert(target), nil
	case rpctype.Array:
		return decodeArray(v, t, target)
	case rpctype.Map:
		return decodeMap(v, t, target)
	case rpctype.Object:
		return decodeObject(v, target)
	default:
		return reflect.Value{}, rpcerr.New(rpcerr.Reflection, "cannot decode kind %v", t.Kind())
	}
}

func decodeArray(v *variant.Variant, t *rpctype.Type, target reflect.Type) (reflect.Value, error) {
	if target.Kind() != reflect.Slice {
		return reflect.Value{}, rpcerr.New(rpcerr.Reflection, "array argument must bind to a Go slice, got %s", target)
	}
	children, err := v.Array()
	if err != nil {
		return reflect.Value{}, err
	}
	elemTarget := target.Elem()
	out := reflect.MakeSlice(target, len(children), len(children))
	for i, c := range children {
		elem, err := Decode(c, t.Elem(), elemTarget)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(elem)
	}
	return out, nil
}

func decodeMap(v *variant.Variant, t *rpctype.Type, target reflect.Type) (reflect.Value, error) {
	if target.Kind() != reflect.Map {
		return reflect.Value{}, rpcerr.New(rpcerr.Reflection, "map argument must bind to a Go map, got %s", target)
	}
	pairs, err := v.MapPairs()
	if err != nil {
		return reflect.Value{}, err
	}
	keyTarget := target.Key()
	valTarget := target.Elem()
	out := reflect.MakeMapWithSize(target, len(pairs))
	for _, p := range pairs {
		key, err := Decode(p.Key, t.Key(), keyTarget)
		if err != nil {
			return reflect.Value{}, err
		}
		val, err := Decode(p.Value, t.Val(), valTarget)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(key, val)
	}
	return out, nil
}

// decodeObject accepts either a pointer target (used for method
// arguments, which always bind to a pointer Go parameter) or a plain
// struct target (used for struct fields, which classreg forbids from
// being pointer-kind) and instantiates accordingly.
func decodeObject(v *variant.Variant, target reflect.Type) (reflect.Value, error) {
	ptrType, structType := target, target
	if target.Kind() == reflect.Ptr {
		structType = target.Elem()
	} else {
		ptrType = reflect.PtrTo(target)
	}
	if !ptrType.Implements(rpcObjectType) {
		return reflect.Value{}, rpcerr.New(rpcerr.Reflection, "object argument type %s does not implement SerializeRPC/DeserializeRPC", target)
	}
	inst := reflect.New(structType)
	obj := inst.Interface().(rpcObject)
	if err := obj.DeserializeRPC(v); err != nil {
		return reflect.Value{}, err
	}
	if target.Kind() == reflect.Ptr {
		return inst, nil
	}
	return inst.Elem(), nil
}

// Encode is the inverse of Decode: it renders rv, a reflect.Value shaped
// per t, back into a Variant.
func Encode(rv reflect.Value, t *rpctype.Type) (*variant.Variant, error) {
	switch t.Kind() {
	case rpctype.Void:
		return variant.NewVoid(), nil
	case rpctype.Int8:
		return variant.NewInt8(int8(rv.Int())), nil
	case rpctype.Int16:
		return variant.NewInt16(int16(rv.Int())), nil
	case rpctype.Int32:
		return variant.NewInt32(int32(rv.Int())), nil
	case rpctype.Int64:
		return variant.NewInt64(rv.Int()), nil
	case rpctype.Uint8:
		return variant.NewUint8(uint8(rv.Uint())), nil
	case rpctype.Uint16:
		return variant.NewUint16(uint16(rv.Uint())), nil
	case rpctype.Uint32:
		return variant.NewUint32(uint32(rv.Uint())), nil
	case rpctype.Uint64:
		return variant.NewUint64(rv.Uint()), nil
	case rpctype.Float32:
		return variant.NewFloat32(float32(rv.Float())), nil
	case rpctype.Float64:
		return variant.NewFloat64(rv.Float()), nil
	case rpctype.Bool:
		return variant.NewBool(rv.Bool()), nil
	case rpctype.String:
		return variant.NewString(rv.String()), nil
	case rpctype.Array:
		n := rv.Len()
		children := make([]*variant.Variant, n)
		for i := 0; i < n; i++ {
			c, err := Encode(rv.Index(i), t.Elem())
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return variant.NewArray(children), nil
	case rpctype.Map:
		keys := rv.MapKeys()
		pairs := make([]variant.Pair, 0, len(keys))
		for _, k := range keys {
			kv, err := Encode(k, t.Key())
			if err != nil {
				return nil, err
			}
			vv, err := Encode(rv.MapIndex(k), t.Val())
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, variant.Pair{Key: kv, Value: vv})
		}
		return variant.NewMap(pairs), nil
	case rpctype.Object:
		if rv.Kind() != reflect.Ptr {
			if !rv.CanAddr() {
				return nil, rpcerr.New(rpcerr.Reflection, "object result %s is neither a pointer nor addressable", rv.Type())
			}
			rv = rv.Addr()
		}
		obj, ok := rv.Interface().(rpcObject)
		if !ok {
			return nil, rpcerr.New(rpcerr.Reflection, "%s does not implement SerializeRPC/DeserializeRPC", rv.Type())
		}
		return obj.SerializeRPC()
	default:
		return nil, rpcerr.New(rpcerr.Reflection, "cannot encode kind %v", t.Kind())
	}
}
