package callsite

import (
	"testing"

	"krypt.co/rpc/classreg"
	"krypt.co/rpc/rpctype"
	"krypt.co/rpc/variant"
)

type counter struct {
	n int32
}

func (c *counter) SerializeRPC() (*variant.Variant, error) { return classreg.BaseSerialize(counterClass, c) }
func (c *counter) DeserializeRPC(v *variant.Variant) error { return classreg.BaseDeserialize(counterClass, c, v) }
func (c *counter) Bump(by int32) int32 {
	c.n += by
	return c.n
}

var counterClass = classreg.NewClass("Counter", func() classreg.Object { return &counter{} })

func init() {
	if err := counterClass.AddField("n", rpctype.Int32Type(), "n"); err != nil {
		panic(err)
	}
	if err := counterClass.AddMethod("bump",
		[]*rpctype.Type{rpctype.Int32Type()}, rpctype.Int32Type(), (*counter).Bump); err != nil {
		panic(err)
	}
}

func TestLocalCallSiteStartupInvokeCleanup(t *testing.T) {
	reg := classreg.NewRegistry()
	if err := reg.Register(counterClass); err != nil {
		t.Fatal(err)
	}
	site := NewLocalCallSite(reg)

	h1, err := site.Startup(counterClass.Signature().Signature())
	if err != nil {
		t.Fatal(err)
	}
	h2, err := site.Startup(counterClass.Signature().Signature())
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 || h2 <= h1 {
		t.Fatalf("handles should be strictly increasing: h1=%d h2=%d", h1, h2)
	}

	sig := rpctype.MethodSignature("bump", []*rpctype.Type{rpctype.Int32Type()}, rpctype.Int32Type())
	argv := variant.NewArray([]*variant.Variant{variant.NewInt32(5)})
	result, err := site.Invoke(h1, sig, argv)
	if err != nil {
		t.Fatal(err)
	}
	got, err := result.Int32()
	if err != nil || got != 5 {
		t.Fatalf("result = (%d, %v), want (5, nil)", got, err)
	}

	site.Cleanup(h1)
	if _, err := site.Invoke(h1, sig, argv); err == nil {
		t.Fatal("Invoke after Cleanup should fail")
	}
}

func TestProxyRoundTrip(t *testing.T) {
	reg := classreg.NewRegistry()
	if err := reg.Register(counterClass); err != nil {
		t.Fatal(err)
	}
	site := NewLocalCallSite(reg)

	proxy, err := NewProxy[*counter](site, counterClass.Signature().Signature())
	if err != nil {
		t.Fatal(err)
	}
	defer proxy.Close()

	argTypes := []*rpctype.Type{rpctype.Int32Type()}
	resultType := rpctype.Int32Type()
	argv := variant.NewArray([]*variant.Variant{variant.NewInt32(3)})
	result, err := proxy.Call("bump", argTypes, resultType, argv)
	if err != nil {
		t.Fatal(err)
	}
	got, err := result.Int32()
	if err != nil || got != 3 {
		t.Fatalf("result = (%d, %v), want (3, nil)", got, err)
	}
}

func TestNewProxyNilCallSitePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewProxy with a nil CallSite should panic")
		}
	}()
	NewProxy[*counter](nil, "<Counter>")
}
