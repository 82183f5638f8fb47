package dispatch

import (
	"reflect"

	"github.com/op/go-logging"

	"krypt.co/rpc/rpcerr"
	"krypt.co/rpc/rpctype"
	"krypt.co/rpc/variant"
)

var log = logging.MustGetLogger("krypt.co/rpc/dispatch")

// Invoker is a bound method ready to be called against an instance and a
// packed argument array. instance is typed interface{} rather than
// classreg.Object to keep classreg the only side of that dependency.
type Invoker func(instance interface{}, argv *variant.Variant) (*variant.Variant, error)

// Bind builds an Invoker from fn, a Go method-expression value such as
// (*Greeter).Greet, validating its shape against the declared argument and
// result types (spec.md §4.6 steps 1-7).
func Bind(argTypes []*rpctype.Type, resultType *rpctype.Type, fn interface{}) (Invoker, error) {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return nil, rpcerr.New(rpcerr.Argument, "dispatch.Bind: fn must be a function, got %s", fnType)
	}
	if fnType.NumIn() != len(argTypes)+1 {
		return nil, rpcerr.New(rpcerr.Argument, "dispatch.Bind: fn takes %d parameters, declared arity is %d (+receiver)", fnType.NumIn(), len(argTypes))
	}
	if resultType.Kind() == rpctype.Void {
		if fnType.NumOut() != 0 {
			return nil, rpcerr.New(rpcerr.Argument, "dispatch.Bind: declared a void result but fn returns %d values", fnType.NumOut())
		}
	} else if fnType.NumOut() != 1 {
		return nil, rpcerr.New(rpcerr.Argument, "dispatch.Bind: declared a result but fn returns %d values", fnType.NumOut())
	}

	receiverType := fnType.In(0)
	for i, at := range argTypes {
		paramType := fnType.In(i + 1)
		switch {
		case at.Kind() == rpctype.Object:
			// Objects always bind through a pointer, mutable or not —
			// classreg.Object's methods have pointer receivers.
			if paramType.Kind() != reflect.Ptr {
				return nil, rpcerr.New(rpcerr.Argument, "dispatch.Bind: object argument %d must bind to a pointer Go parameter, got %s", i, paramType)
			}
		case at.IsMutable() && at.Kind() == rpctype.Array:
			if paramType.Kind() != reflect.Slice {
				return nil, rpcerr.New(rpcerr.Argument, "dispatch.Bind: mutable array argument %d must bind to a Go slice, got %s", i, paramType)
			}
		case at.IsMutable() && at.Kind() == rpctype.Map:
			if paramType.Kind() != reflect.Map {
				return nil, rpcerr.New(rpcerr.Argument, "dispatch.Bind: mutable map argument %d must bind to a Go map, got %s", i, paramType)
			}
		case at.IsMutable():
			// Every other mutable kind needs an explicit Go pointer —
			// slices and maps already carry reference semantics, plain
			// scalars don't.
			if paramType.Kind() != reflect.Ptr {
				return nil, rpcerr.New(rpcerr.Argument, "dispatch.Bind: mutable argument %d must bind to a pointer Go parameter, got %s", i, paramType)
			}
		default:
			if paramType.Kind() == reflect.Ptr {
				return nil, rpcerr.New(rpcerr.Argument, "dispatch.Bind: immutable argument %d must not bind to a pointer Go parameter, got %s", i, paramType)
			}
		}
	}

	return func(instance interface{}, argv *variant.Variant) (*variant.Variant, error) {
		n, err := argv.Len()
		if err != nil {
			return nil, err
		}
		if n != len(argTypes) {
			return nil, rpcerr.New(rpcerr.Argument, "method expects %d arguments, got %d", len(argTypes), n)
		}

		recv := reflect.ValueOf(instance)
		if !recv.IsValid() || recv.Type() != receiverType {
			return nil, rpcerr.New(rpcerr.Argument, "dispatch: receiver type mismatch, expected %s", receiverType)
		}

		callArgs := make([]reflect.Value, 1, len(argTypes)+1)
		callArgs[0] = recv
		holders := make([]reflect.Value, len(argTypes))

		for i, at := range argTypes {
			child, err := argv.Index(i)
			if err != nil {
				return nil, err
			}
			paramType := fnType.In(i + 1)
			switch {
			case at.Kind() == rpctype.Object:
				decoded, err := Decode(child, at, paramType)
				if err != nil {
					return nil, err
				}
				holders[i] = decoded
				callArgs = append(callArgs, decoded)
			case at.IsMutable() && (at.Kind() == rpctype.Array || at.Kind() == rpctype.Map):
				// Slices and maps are already reference types in Go: the
				// decoded value IS the call argument, and the method's
				// in-place mutations are visible through the same
				// reflect.Value afterwards.
				decoded, err := Decode(child, at, paramType)
				if err != nil {
					return nil, err
				}
				holders[i] = decoded
				callArgs = append(callArgs, decoded)
			case at.IsMutable():
				elemType := paramType.Elem()
				decoded, err := Decode(child, at, elemType)
				if err != nil {
					return nil, err
				}
				holder := reflect.New(elemType).Elem()
				holder.Set(decoded)
				holders[i] = holder
				callArgs = append(callArgs, holder.Addr())
			default:
				decoded, err := Decode(child, at, paramType)
				if err != nil {
					return nil, err
				}
				callArgs = append(callArgs, decoded)
			}
		}

		results, err := safeCall(fnVal, callArgs)
		if err != nil {
			return nil, err
		}

		for i, at := range argTypes {
			if !at.IsMutable() {
				continue
			}
			encoded, err := Encode(holders[i], at)
			if err != nil {
				return nil, err
			}
			if err := argv.SetIndex(i, encoded); err != nil {
				return nil, err
			}
		}

		if resultType.Kind() == rpctype.Void {
			return variant.NewVoid(), nil
		}
		return Encode(results[0], resultType)
	}, nil
}

// safeCall invokes fn, converting a native panic into a Runtime error
// rather than letting it cross the dispatch boundary (spec.md §7:
// "dispatcher errors bubble unchanged out of the native method" — but an
// unrecovered panic is not an error return, so it cannot bubble as one).
func safeCall(fn reflect.Value, args []reflect.Value) (results []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Warningf("recovered panic from a dispatched method: %v", r)
			err = rpcerr.New(rpcerr.Runtime, "method panicked: %v", r)
		}
	}()
	results = fn.Call(args)
	return results, nil
}
