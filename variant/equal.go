package variant

import (
	"hash/fnv"
	"math"

	"krypt.co/rpc/rpctype"
)

// Equal reports whether v and o have the same tag and structurally equal
// contents (spec.md §4.2: "two variants are equal iff their tags match
// and their contents match structurally").
func (v *Variant) Equal(o *Variant) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case rpctype.Void:
		return true
	case rpctype.Int8, rpctype.Int16, rpctype.Int32, rpctype.Int64:
		return v.i == o.i
	case rpctype.Uint8, rpctype.Uint16, rpctype.Uint32, rpctype.Uint64:
		return v.u == o.u
	case rpctype.Float32:
		return float32(v.f) == float32(o.f)
	case rpctype.Float64:
		return v.f == o.f
	case rpctype.Bool:
		return v.b == o.b
	case rpctype.String:
		return v.str == o.str
	case rpctype.Array:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case rpctype.Object:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, vv := range v.obj {
			ov, ok := o.obj[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	case rpctype.Map:
		return v.m.equal(o.m)
	default:
		return false
	}
}

// Hash returns a stable hash combining the variant's tag and a structural
// fold of its contents, so a Variant can key a Map's bucketed storage
// (spec.md §4.2).
func (v *Variant) Hash() uint64 {
	h := fnv.New64a()
	writeUint64(h, uint64(v.kind))
	switch v.kind {
	case rpctype.Int8, rpctype.Int16, rpctype.Int32, rpctype.Int64:
		writeUint64(h, uint64(v.i))
	case rpctype.Uint8, rpctype.Uint16, rpctype.Uint32, rpctype.Uint64:
		writeUint64(h, v.u)
	case rpctype.Float32:
		writeUint64(h, uint64(math.Float32bits(float32(v.f))))
	case rpctype.Float64:
		writeUint64(h, math.Float64bits(v.f))
	case rpctype.Bool:
		if v.b {
			writeUint64(h, 1)
		}
	case rpctype.String:
		h.Write([]byte(v.str))
	case rpctype.Array:
		for _, c := range v.arr {
			writeUint64(h, c.Hash())
		}
	case rpctype.Object:
		// Field order is irrelevant to equality, so fold with XOR rather
		// than concatenation to keep the hash order-independent.
		var acc uint64
		for k, c := range v.obj {
			sub := fnv.New64a()
			sub.Write([]byte(k))
			writeUint64(sub, c.Hash())
			acc ^= sub.Sum64()
		}
		writeUint64(h, acc)
	case rpctype.Map:
		var acc uint64
		for _, p := range v.m.pairs() {
			acc ^= p.Key.Hash()*31 + p.Value.Hash()
		}
		writeUint64(h, acc)
	}
	return h.Sum64()
}

func writeUint64(h interface{ Write([]byte) (int, error) }, x uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(x >> (8 * uint(i)))
	}
	h.Write(buf[:])
}

// Clone returns a deep copy of v. spec.md §3: "shared children may appear
// more than once after an explicit clone, never cyclically" — Clone is
// the one place the value tree is allowed to duplicate shared structure.
func (v *Variant) Clone() *Variant {
	if v == nil {
		return nil
	}
	cp := &Variant{kind: v.kind, i: v.i, u: v.u, f: v.f, b: v.b, str: v.str}
	switch v.kind {
	case rpctype.Array:
		cp.arr = make([]*Variant, len(v.arr))
		for i, c := range v.arr {
			cp.arr[i] = c.Clone()
		}
	case rpctype.Object:
		cp.obj = make(map[string]*Variant, len(v.obj))
		for k, c := range v.obj {
			cp.obj[k] = c.Clone()
		}
	case rpctype.Map:
		cp.m = v.m.clone()
	}
	return cp
}
