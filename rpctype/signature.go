package rpctype

import (
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"krypt.co/rpc/rpcerr"
)

// Signature emits the compact structural string of spec.md §3 for t.
func (t *Type) Signature() string {
	var b strings.Builder
	t.writeSignature(&b)
	if t.mutable {
		b.WriteByte('&')
	}
	return b.String()
}

func (t *Type) writeSignature(b *strings.Builder) {
	switch t.kind {
	case Void:
		b.WriteByte('v')
	case Int8:
		b.WriteByte('b')
	case Int16:
		b.WriteByte('h')
	case Int32:
		b.WriteByte('i')
	case Int64:
		b.WriteByte('q')
	case Uint8:
		b.WriteByte('B')
	case Uint16:
		b.WriteByte('H')
	case Uint32:
		b.WriteByte('I')
	case Uint64:
		b.WriteByte('Q')
	case Float32:
		b.WriteByte('f')
	case Float64:
		b.WriteByte('d')
	case Bool:
		b.WriteByte('?')
	case String:
		b.WriteByte('s')
	case Array:
		b.WriteByte('[')
		t.elem.writeSignature(b)
		b.WriteByte(']')
	case Map:
		b.WriteByte('{')
		t.key.writeSignature(b)
		b.WriteByte(':')
		t.val.writeSignature(b)
		b.WriteByte('}')
	case Object:
		b.WriteByte('<')
		b.WriteString(t.name)
		b.WriteByte('>')
	default:
		panic("rpctype: cannot emit signature for invalid kind")
	}
}

// MethodSignature builds the dispatch key described in spec.md §3:
// name(sig(arg0)sig(arg1)...)sig(ret), with no spaces.
func MethodSignature(name string, args []*Type, result *Type) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for _, a := range args {
		a.writeSignature(&b)
		if a.mutable {
			b.WriteByte('&')
		}
	}
	b.WriteByte(')')
	result.writeSignature(&b)
	if result.mutable {
		b.WriteByte('&')
	}
	return b.String()
}

// sigCache memoizes ParseSignature: it is a pure function of its input, so
// caching is a transparent performance optimization — Registry.Find, and
// so every LocalCallSite.Startup, re-parses the same handful of object
// signatures.
var sigCache, _ = lru.New(4096)

// ParseSignature parses a type signature string back into a Type. It is
// the left inverse of Signature: ParseSignature(t.Signature()) == t for
// every constructible t (spec.md §8 invariant 1).
func ParseSignature(s string) (*Type, error) {
	if cached, ok := sigCache.Get(s); ok {
		return cached.(*Type), nil
	}
	p := &sigParser{s: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, rpcerr.New(rpcerr.Value, "trailing characters in signature %q", s)
	}
	sigCache.Add(s, t)
	return t, nil
}

type sigParser struct {
	s   string
	pos int
}

func (p *sigParser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

func (p *sigParser) next() (byte, error) {
	c, ok := p.peek()
	if !ok {
		return 0, rpcerr.New(rpcerr.Value, "unexpected end of signature %q", p.s)
	}
	p.pos++
	return c, nil
}

func (p *sigParser) expect(want byte) error {
	c, err := p.next()
	if err != nil {
		return err
	}
	if c != want {
		return rpcerr.New(rpcerr.Value, "signature %q: expected %q, got %q", p.s, want, c)
	}
	return nil
}

// parseType parses one type (LL(1) over the grammar of spec.md §3),
// followed by an optional trailing '&' marking it mutable.
func (p *sigParser) parseType() (*Type, error) {
	t, err := p.parseCore()
	if err != nil {
		return nil, err
	}
	if c, ok := p.peek(); ok && c == '&' {
		p.pos++
		if t.Kind() == Void {
			return nil, rpcerr.New(rpcerr.Value, "signature %q: void cannot be marked mutable", p.s)
		}
		t = t.Mutable()
	}
	return t, nil
}

func (p *sigParser) parseCore() (*Type, error) {
	c, err := p.next()
	if err != nil {
		return nil, err
	}
	switch c {
	case 'v':
		return VoidType(), nil
	case 'b':
		return Int8Type(), nil
	case 'h':
		return Int16Type(), nil
	case 'i':
		return Int32Type(), nil
	case 'q':
		return Int64Type(), nil
	case 'B':
		return Uint8Type(), nil
	case 'H':
		return Uint16Type(), nil
	case 'I':
		return Uint32Type(), nil
	case 'Q':
		return Uint64Type(), nil
	case 'f':
		return Float32Type(), nil
	case 'd':
		return Float64Type(), nil
	case '?':
		return BoolType(), nil
	case 's':
		return StringType(), nil
	case '[':
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		if elem.IsMutable() {
			return nil, rpcerr.New(rpcerr.Value, "signature %q: array element type must be immutable", p.s)
		}
		return NewArray(elem), nil
	case '{':
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		if key.IsMutable() || val.IsMutable() {
			return nil, rpcerr.New(rpcerr.Value, "signature %q: map key/value type must be immutable", p.s)
		}
		return NewMap(key, val), nil
	case '<':
		start := p.pos
		for {
			nc, ok := p.peek()
			if !ok {
				return nil, rpcerr.New(rpcerr.Value, "unterminated object signature %q", p.s)
			}
			if nc == '>' {
				break
			}
			p.pos++
		}
		name := p.s[start:p.pos]
		p.pos++ // consume '>'
		return NewObject(name), nil
	default:
		return nil, rpcerr.New(rpcerr.Value, "signature %q: unknown token %q", p.s, c)
	}
}
