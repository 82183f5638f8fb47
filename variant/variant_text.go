package variant

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"krypt.co/rpc/rpctype"
)

// String renders a human-readable debugging form of v (spec.md §4.2):
// primitives as "name(value)", strings with C-style escaping, arrays in
// brackets, objects in angle brackets, maps in braces.
func (v *Variant) String() string {
	var b strings.Builder
	v.writeString(&b)
	return b.String()
}

func (v *Variant) writeString(b *strings.Builder) {
	switch v.kind {
	case rpctype.Void:
		b.WriteString("void()")
	case rpctype.Int8, rpctype.Int16, rpctype.Int32, rpctype.Int64:
		fmt.Fprintf(b, "%s(%d)", v.kind, v.i)
	case rpctype.Uint8, rpctype.Uint16, rpctype.Uint32, rpctype.Uint64:
		fmt.Fprintf(b, "%s(%d)", v.kind, v.u)
	case rpctype.Float32, rpctype.Float64:
		fmt.Fprintf(b, "%s(%v)", v.kind, v.f)
	case rpctype.Bool:
		fmt.Fprintf(b, "bool(%t)", v.b)
	case rpctype.String:
		b.WriteString(strconv.Quote(v.str))
	case rpctype.Array:
		b.WriteByte('[')
		for i, c := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			c.writeString(b)
		}
		b.WriteByte(']')
	case rpctype.Object:
		b.WriteByte('<')
		names := make([]string, 0, len(v.obj))
		for k := range v.obj {
			names = append(names, k)
		}
		sort.Strings(names)
		for i, name := range names {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, "%s:", name)
			v.obj[name].writeString(b)
		}
		b.WriteByte('>')
	case rpctype.Map:
		b.WriteByte('{')
		pairs := v.m.pairs()
		for i, p := range pairs {
			if i > 0 {
				b.WriteByte(',')
			}
			p.Key.writeString(b)
			b.WriteByte(':')
			p.Value.writeString(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString("invalid")
	}
}
