package dispatch

import (
	"testing"

	"krypt.co/rpc/rpctype"
	"krypt.co/rpc/variant"
)

type greeter struct {
	greeting string
}

func (g *greeter) Greet(name string) string {
	return g.greeting + ", " + name
}

func (g *greeter) Shout(word string) {
	g.greeting = word
}

func (g *greeter) Bump(counter *int32) {
	*counter = *counter + 1
}

func TestBindImmutableCall(t *testing.T) {
	inv, err := Bind([]*rpctype.Type{rpctype.StringType()}, rpctype.StringType(), (*greeter).Greet)
	if err != nil {
		t.Fatal(err)
	}
	g := &greeter{greeting: "hi"}
	argv := variant.NewArray([]*variant.Variant{variant.NewString("alice")})
	result, err := inv(g, argv)
	if err != nil {
		t.Fatal(err)
	}
	got, err := result.Str()
	if err != nil || got != "hi, alice" {
		t.Fatalf("result = (%q, %v), want (%q, nil)", got, err, "hi, alice")
	}
}

func TestBindArityMismatch(t *testing.T) {
	inv, err := Bind([]*rpctype.Type{rpctype.StringType()}, rpctype.StringType(), (*greeter).Greet)
	if err != nil {
		t.Fatal(err)
	}
	g := &greeter{}
	argv := variant.NewArray(nil)
	if _, err := inv(g, argv); err == nil {
		t.Fatal("calling with the wrong arity should fail")
	}
}

func TestBindVoidResult(t *testing.T) {
	inv, err := Bind([]*rpctype.Type{rpctype.StringType()}, rpctype.VoidType(), (*greeter).Shout)
	if err != nil {
		t.Fatal(err)
	}
	g := &greeter{}
	argv := variant.NewArray([]*variant.Variant{variant.NewString("hey")})
	result, err := inv(g, argv)
	if err != nil {
		t.Fatal(err)
	}
	if result.Kind() != rpctype.Void {
		t.Fatalf("result kind = %v, want Void", result.Kind())
	}
	if g.greeting != "hey" {
		t.Fatalf("greeting = %q, want %q", g.greeting, "hey")
	}
}

func TestBindMutableWriteBack(t *testing.T) {
	inv, err := Bind([]*rpctype.Type{rpctype.Int32Type().Mutable()}, rpctype.VoidType(), (*greeter).Bump)
	if err != nil {
		t.Fatal(err)
	}
	g := &greeter{}
	argv := variant.NewArray([]*variant.Variant{variant.NewInt32(41)})
	if _, err := inv(g, argv); err != nil {
		t.Fatal(err)
	}
	patched, err := argv.Index(0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := patched.Int32()
	if err != nil || got != 42 {
		t.Fatalf("argv[0] after invoke = (%d, %v), want (42, nil)", got, err)
	}
}

func TestBindRejectsMismatchedMutability(t *testing.T) {
	_, err := Bind([]*rpctype.Type{rpctype.Int32Type()}, rpctype.VoidType(), (*greeter).Bump)
	if err == nil {
		t.Fatal("declaring an immutable arg bound to a pointer Go parameter should fail Bind")
	}
}

func TestBindRecoversPanic(t *testing.T) {
	type panicker struct{}
	boom := func(p *panicker, x int32) int32 {
		panic("boom")
	}
	inv, err := Bind([]*rpctype.Type{rpctype.Int32Type()}, rpctype.Int32Type(), boom)
	if err != nil {
		t.Fatal(err)
	}
	argv := variant.NewArray([]*variant.Variant{variant.NewInt32(1)})
	if _, err := inv(&panicker{}, argv); err == nil {
		t.Fatal("a panicking method should surface as a Runtime error, not propagate")
	}
}
