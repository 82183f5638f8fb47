package variant

import "krypt.co/rpc/rpctype"

// MapGet looks up key in a Map variant.
func (v *Variant) MapGet(key *Variant) (*Variant, bool, error) {
	if v.kind != rpctype.Map {
		return nil, false, typeMismatch(rpctype.Map, v)
	}
	val, ok := v.m.get(key)
	return val, ok, nil
}

// MapSet inserts or replaces a (key, value) pair in a Map variant.
func (v *Variant) MapSet(key, value *Variant) error {
	if v.kind != rpctype.Map {
		return typeMismatch(rpctype.Map, v)
	}
	v.m.set(key, value)
	return nil
}

// MapDelete removes key from a Map variant, if present.
func (v *Variant) MapDelete(key *Variant) error {
	if v.kind != rpctype.Map {
		return typeMismatch(rpctype.Map, v)
	}
	v.m.delete(key)
	return nil
}
