package classreg

import (
	"testing"

	"krypt.co/rpc/rpcerr"
	"krypt.co/rpc/rpctype"
	"krypt.co/rpc/variant"
)

type point struct {
	X int32
	Y int32
}

func (p *point) SerializeRPC() (*variant.Variant, error)    { return BaseSerialize(pointClass, p) }
func (p *point) DeserializeRPC(v *variant.Variant) error    { return BaseDeserialize(pointClass, p, v) }
func (p *point) Translate(dx, dy int32) {
	p.X += dx
	p.Y += dy
}

var pointClass = NewClass("Point", func() Object { return &point{} })

func init() {
	mustAddField(pointClass, "x", rpctype.Int32Type(), "X")
	mustAddField(pointClass, "y", rpctype.Int32Type(), "Y")
	mustAddMethod(pointClass, "translate",
		[]*rpctype.Type{rpctype.Int32Type(), rpctype.Int32Type()}, rpctype.VoidType(),
		(*point).Translate)
}

func mustAddField(c *ClassMeta, name string, t *rpctype.Type, goField string) {
	if err := c.AddField(name, t, goField); err != nil {
		panic(err)
	}
}

func mustAddMethod(c *ClassMeta, name string, args []*rpctype.Type, result *rpctype.Type, fn interface{}) {
	if err := c.AddMethod(name, args, result, fn); err != nil {
		panic(err)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	p := &point{X: 1, Y: 2}
	v, err := p.SerializeRPC()
	if err != nil {
		t.Fatal(err)
	}
	var p2 point
	if err := p2.DeserializeRPC(v); err != nil {
		t.Fatal(err)
	}
	if p2 != *p {
		t.Fatalf("round trip = %+v, want %+v", p2, *p)
	}
}

func TestDeserializeMissingFieldFails(t *testing.T) {
	v := variant.NewObject(map[string]*variant.Variant{"x": variant.NewInt32(1)})
	var p point
	if err := p.DeserializeRPC(v); err == nil || !rpcerr.Is(err, rpcerr.Reflection) {
		t.Fatalf("DeserializeRPC with a missing field: err = %v, want a Reflection error", err)
	}
}

func TestDeserializeUnknownFieldFails(t *testing.T) {
	v := variant.NewObject(map[string]*variant.Variant{
		"x": variant.NewInt32(1), "y": variant.NewInt32(2), "z": variant.NewInt32(3),
	})
	var p point
	if err := p.DeserializeRPC(v); err == nil || !rpcerr.Is(err, rpcerr.Reflection) {
		t.Fatalf("DeserializeRPC with an unknown field: err = %v, want a Reflection error", err)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(pointClass); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(pointClass); err != nil {
		t.Fatalf("re-registering the identical ClassMeta should be a no-op: %v", err)
	}
	found, err := r.Find(pointClass.Signature().Signature())
	if err != nil {
		t.Fatal(err)
	}
	if found != pointClass {
		t.Fatal("Find did not return the registered ClassMeta")
	}

	other := NewClass("Point", func() Object { return &point{} })
	if err := r.Register(other); err == nil || !rpcerr.Is(err, rpcerr.ClassDuplicated) {
		t.Fatalf("registering a distinct class under a taken name: err = %v, want ClassDuplicated", err)
	}

	if _, err := r.Find("<NoSuchClass>"); err == nil || !rpcerr.Is(err, rpcerr.ClassNotFound) {
		t.Fatalf("Find of an unregistered class: err = %v, want ClassNotFound", err)
	}
}

type refHolder struct {
	Ref *int32
}

func (r *refHolder) SerializeRPC() (*variant.Variant, error) { return nil, nil }
func (r *refHolder) DeserializeRPC(v *variant.Variant) error { return nil }

func TestAddFieldRejectsPointerKindGoFieldAtConstruction(t *testing.T) {
	c := NewClass("RefHolder", func() Object { return &refHolder{} })
	err := c.AddField("ref", rpctype.Int32Type(), "Ref")
	if err == nil || !rpcerr.Is(err, rpcerr.Reflection) {
		t.Fatalf("AddField with a pointer-kind Go field: err = %v, want a Reflection error", err)
	}
	if len(c.fields) != 0 {
		t.Fatalf("rejected field must not be appended, got %d fields", len(c.fields))
	}
}

func TestMethodInvoke(t *testing.T) {
	p := &point{X: 10, Y: 10}
	m, err := pointClass.FindMethod(rpctype.MethodSignature("translate",
		[]*rpctype.Type{rpctype.Int32Type(), rpctype.Int32Type()}, rpctype.VoidType()))
	if err != nil {
		t.Fatal(err)
	}
	argv := variant.NewArray([]*variant.Variant{variant.NewInt32(1), variant.NewInt32(-1)})
	if _, err := m.Invoke(p, argv); err != nil {
		t.Fatal(err)
	}
	if p.X != 11 || p.Y != 9 {
		t.Fatalf("p = %+v, want {X:11 Y:9}", p)
	}
}
