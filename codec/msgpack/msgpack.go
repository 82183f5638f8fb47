// Package msgpack implements the canonical MessagePack-compatible codec of
// spec.md §6: a bit-exact wire format selected by a type's declared width,
// not its runtime magnitude.
package msgpack

import (
	"math"

	"krypt.co/rpc/bytebuf"
	"krypt.co/rpc/codec"
	"krypt.co/rpc/rpcerr"
	"krypt.co/rpc/rpctype"
	"krypt.co/rpc/variant"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("krypt.co/rpc/codec/msgpack")

const name = "msgpack"

func init() {
	c := &Codec{}
	if err := codec.Global.Register(c); err != nil {
		panic(err)
	}
	if err := codec.Global.SetDefault(name); err != nil {
		panic(err)
	}
	log.Debugf("registered %q as the default codec", name)
}

// Codec is the MessagePack-compatible codec.Codec implementation.
type Codec struct{}

func (*Codec) Name() string { return name }

// Assemble renders v into MessagePack-compatible bytes.
func (*Codec) Assemble(v *variant.Variant) ([]byte, error) {
	b := bytebuf.New()
	if err := assemble(b, v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Parse decodes a MessagePack-compatible byte sequence into a Variant.
func (*Codec) Parse(data []byte) (*variant.Variant, error) {
	b := bytebuf.NewFromBytes(data)
	v, err := parseOne(b)
	if err != nil {
		return nil, err
	}
	return v, nil
}

const (
	tagNil        = 0xc0
	tagFalse      = 0xc2
	tagTrue       = 0xc3
	tagFloat32    = 0xca
	tagFloat64    = 0xcb
	tagUint8      = 0xcc
	tagUint16     = 0xcd
	tagUint32     = 0xce
	tagUint64     = 0xcf
	tagInt8       = 0xd0
	tagInt16      = 0xd1
	tagInt32      = 0xd2
	tagInt64      = 0xd3
	tagStr8       = 0xd9
	tagStr16      = 0xda
	tagStr32      = 0xdb
	tagArray16    = 0xdc
	tagArray32    = 0xdd
	tagMap16      = 0xde
	tagMap32      = 0xdf
	fixmapBase    = 0x80
	fixmapMax     = 0x8f
	fixarrayBase  = 0x90
	fixarrayMax   = 0x9f
	fixstrBase    = 0xa0
	fixstrMax     = 0xbf
	posFixintMax  = 0x7f
	negFixintBase = 0xe0
)

func isReserved(tag byte) bool {
	switch {
	case tag == 0xc1:
		return true
	case tag >= 0xc4 && tag <= 0xc9:
		return true
	case tag >= 0xd4 && tag <= 0xd8:
		return true
	}
	return false
}

func assemble(b *bytebuf.Buffer, v *variant.Variant) error {
	switch v.Kind() {
	case rpctype.Void:
		b.AppendByte(tagNil)
	case rpctype.Bool:
		bv, _ := v.Bool()
		if bv {
			b.AppendByte(tagTrue)
		} else {
			b.AppendByte(tagFalse)
		}
	case rpctype.Int8:
		x, _ := v.Int8()
		assembleInt8(b, x)
	case rpctype.Uint8:
		x, _ := v.Uint8()
		assembleUint8(b, x)
	case rpctype.Int16:
		x, _ := v.Int16()
		b.AppendByte(tagInt16)
		b.WriteUint16BE(uint16(x))
	case rpctype.Uint16:
		x, _ := v.Uint16()
		b.AppendByte(tagUint16)
		b.WriteUint16BE(x)
	case rpctype.Int32:
		x, _ := v.Int32()
		b.AppendByte(tagInt32)
		b.WriteUint32BE(uint32(x))
	case rpctype.Uint32:
		x, _ := v.Uint32()
		b.AppendByte(tagUint32)
		b.WriteUint32BE(x)
	case rpctype.Int64:
		x, _ := v.Int64()
		b.AppendByte(tagInt64)
		b.WriteUint64BE(uint64(x))
	case rpctype.Uint64:
		x, _ := v.Uint64()
		b.AppendByte(tagUint64)
		b.WriteUint64BE(x)
	case rpctype.Float32:
		x, _ := v.Float32()
		b.AppendByte(tagFloat32)
		b.WriteUint32BE(math.Float32bits(x))
	case rpctype.Float64:
		x, _ := v.Float64()
		b.AppendByte(tagFloat64)
		b.WriteUint64BE(math.Float64bits(x))
	case rpctype.String:
		s, _ := v.Str()
		return assembleString(b, s)
	case rpctype.Array:
		arr, _ := v.Array()
		return assembleArray(b, arr)
	case rpctype.Object:
		obj, _ := v.Object()
		return assembleObjectAsMap(b, obj)
	case rpctype.Map:
		pairs, _ := v.MapPairs()
		return assembleMap(b, pairs)
	default:
		return rpcerr.New(rpcerr.Serializer, "msgpack: cannot assemble kind %v", v.Kind())
	}
	return nil
}

func assembleInt8(b *bytebuf.Buffer, x int8) {
	if x >= 0 {
		b.AppendByte(byte(x))
		return
	}
	if x >= -32 {
		b.AppendByte(byte(int16(x) & 0xff))
		return
	}
	b.AppendByte(tagInt8)
	b.AppendByte(byte(x))
}

func assembleUint8(b *bytebuf.Buffer, x uint8) {
	if x <= posFixintMax {
		b.AppendByte(x)
		return
	}
	b.AppendByte(tagUint8)
	b.AppendByte(x)
}

func assembleString(b *bytebuf.Buffer, s string) error {
	n := len(s)
	switch {
	case n <= 31:
		b.AppendByte(byte(fixstrBase + n))
	case n <= 0xff:
		b.AppendByte(tagStr8)
		b.WriteUint8(uint8(n))
	case n <= 0xffff:
		b.AppendByte(tagStr16)
		b.WriteUint16BE(uint16(n))
	case n <= 0xffffffff:
		b.AppendByte(tagStr32)
		b.WriteUint32BE(uint32(n))
	default:
		return rpcerr.New(rpcerr.Serializer, "msgpack: string of length %d exceeds str32", n)
	}
	b.Append([]byte(s))
	return nil
}

func assembleArray(b *bytebuf.Buffer, arr []*variant.Variant) error {
	n := len(arr)
	switch {
	case n <= 15:
		b.AppendByte(byte(fixarrayBase + n))
	case n <= 0xffff:
		b.AppendByte(tagArray16)
		b.WriteUint16BE(uint16(n))
	case n <= 0xffffffff:
		b.AppendByte(tagArray32)
		b.WriteUint32BE(uint32(n))
	default:
		return rpcerr.New(rpcerr.Serializer, "msgpack: array of length %d exceeds array32", n)
	}
	for _, c := range arr {
		if err := assemble(b, c); err != nil {
			return err
		}
	}
	return nil
}

func writeMapHeader(b *bytebuf.Buffer, n int) error {
	switch {
	case n <= 15:
		b.AppendByte(byte(fixmapBase + n))
	case n <= 0xffff:
		b.AppendByte(tagMap16)
		b.WriteUint16BE(uint16(n))
	case n <= 0xffffffff:
		b.AppendByte(tagMap32)
		b.WriteUint32BE(uint32(n))
	default:
		return rpcerr.New(rpcerr.Serializer, "msgpack: map of size %d exceeds map32", n)
	}
	return nil
}

// assembleObjectAsMap renders a Variant Object as a msgpack map keyed by
// field name, the wire representation an Object shares with a Map per
// spec.md §6 (the codec format has no separate "object" tag).
func assembleObjectAsMap(b *bytebuf.Buffer, obj map[string]*variant.Variant) error {
	if err := writeMapHeader(b, len(obj)); err != nil {
		return err
	}
	for k, c := range obj {
		if err := assembleString(b, k); err != nil {
			return err
		}
		if err := assemble(b, c); err != nil {
			return err
		}
	}
	return nil
}

func assembleMap(b *bytebuf.Buffer, pairs []variant.Pair) error {
	if err := writeMapHeader(b, len(pairs)); err != nil {
		return err
	}
	for _, p := range pairs {
		if p.Key.Kind() != rpctype.String {
			return rpcerr.New(rpcerr.Serializer, "msgpack: map key %s is not a string", p.Key)
		}
		if err := assemble(b, p.Key); err != nil {
			return err
		}
		if err := assemble(b, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func parseOne(b *bytebuf.Buffer) (*variant.Variant, error) {
	tag, err := b.ConsumeByte()
	if err != nil {
		return nil, err
	}
	switch {
	case tag <= posFixintMax:
		return variant.NewInt8(int8(tag)), nil
	case tag >= negFixintBase:
		return variant.NewInt8(int8(tag)), nil
	case tag >= fixmapBase && tag <= fixmapMax:
		return parseMap(b, int(tag-fixmapBase))
	case tag >= fixarrayBase && tag <= fixarrayMax:
		return parseArray(b, int(tag-fixarrayBase))
	case tag >= fixstrBase && tag <= fixstrMax:
		return parseString(b, int(tag-fixstrBase))
	case isReserved(tag):
		return nil, rpcerr.New(rpcerr.Deserializer, "msgpack: reserved leading byte 0x%02x", tag)
	}

	switch tag {
	case tagNil:
		return variant.NewVoid(), nil
	case tagFalse:
		return variant.NewBool(false), nil
	case tagTrue:
		return variant.NewBool(true), nil
	case tagFloat32:
		bits, err := b.ReadUint32BE()
		if err != nil {
			return nil, err
		}
		return variant.NewFloat32(math.Float32frombits(bits)), nil
	case tagFloat64:
		bits, err := b.ReadUint64BE()
		if err != nil {
			return nil, err
		}
		return variant.NewFloat64(math.Float64frombits(bits)), nil
	case tagUint8:
		x, err := b.ReadUint8()
		if err != nil {
			return nil, err
		}
		return variant.NewUint8(x), nil
	case tagUint16:
		x, err := b.ReadUint16BE()
		if err != nil {
			return nil, err
		}
		return variant.NewUint16(x), nil
	case tagUint32:
		x, err := b.ReadUint32BE()
		if err != nil {
			return nil, err
		}
		return variant.NewUint32(x), nil
	case tagUint64:
		x, err := b.ReadUint64BE()
		if err != nil {
			return nil, err
		}
		return variant.NewUint64(x), nil
	case tagInt8:
		x, err := b.ReadUint8()
		if err != nil {
			return nil, err
		}
		return variant.NewInt8(int8(x)), nil
	case tagInt16:
		x, err := b.ReadUint16BE()
		if err != nil {
			return nil, err
		}
		return variant.NewInt16(int16(x)), nil
	case tagInt32:
		x, err := b.ReadUint32BE()
		if err != nil {
			return nil, err
		}
		return variant.NewInt32(int32(x)), nil
	case tagInt64:
		x, err := b.ReadUint64BE()
		if err != nil {
			return nil, err
		}
		return variant.NewInt64(int64(x)), nil
	case tagStr8:
		n, err := b.ReadUint8()
		if err != nil {
			return nil, err
		}
		return parseString(b, int(n))
	case tagStr16:
		n, err := b.ReadUint16BE()
		if err != nil {
			return nil, err
		}
		return parseString(b, int(n))
	case tagStr32:
		n, err := b.ReadUint32BE()
		if err != nil {
			return nil, err
		}
		return parseString(b, int(n))
	case tagArray16:
		n, err := b.ReadUint16BE()
		if err != nil {
			return nil, err
		}
		return parseArray(b, int(n))
	case tagArray32:
		n, err := b.ReadUint32BE()
		if err != nil {
			return nil, err
		}
		return parseArray(b, int(n))
	case tagMap16:
		n, err := b.ReadUint16BE()
		if err != nil {
			return nil, err
		}
		return parseMap(b, int(n))
	case tagMap32:
		n, err := b.ReadUint32BE()
		if err != nil {
			return nil, err
		}
		return parseMap(b, int(n))
	}
	return nil, rpcerr.New(rpcerr.Deserializer, "msgpack: unrecognized leading byte 0x%02x", tag)
}

func parseString(b *bytebuf.Buffer, n int) (*variant.Variant, error) {
	bs, err := b.Consume(n)
	if err != nil {
		return nil, err
	}
	return variant.NewString(string(bs)), nil
}

func parseArray(b *bytebuf.Buffer, n int) (*variant.Variant, error) {
	children := make([]*variant.Variant, n)
	for i := 0; i < n; i++ {
		c, err := parseOne(b)
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return variant.NewArray(children), nil
}

// parseMap decodes a wire map into a Variant Map, rejecting any key that
// is not a string (spec.md §6: "maps whose keys are not strings are
// rejected on parse").
func parseMap(b *bytebuf.Buffer, n int) (*variant.Variant, error) {
	pairs := make([]variant.Pair, n)
	for i := 0; i < n; i++ {
		key, err := parseOne(b)
		if err != nil {
			return nil, err
		}
		if key.Kind() != rpctype.String {
			return nil, rpcerr.New(rpcerr.Deserializer, "msgpack: map key of kind %v is not a string", key.Kind())
		}
		val, err := parseOne(b)
		if err != nil {
			return nil, err
		}
		pairs[i] = variant.Pair{Key: key, Value: val}
	}
	return variant.NewMap(pairs), nil
}
