package rpctype

import "testing"

func TestSignatureRoundTrip(t *testing.T) {
	cases := []*Type{
		VoidType(),
		Int8Type(),
		Int64Type(),
		Uint32Type(),
		Float64Type(),
		BoolType(),
		StringType(),
		NewArray(Int32Type()),
		NewMap(StringType(), Int64Type()),
		NewObject("Test"),
		NewArray(NewObject("Test")).Mutable(),
		Int32Type().Mutable(),
		NewMap(StringType(), NewArray(BoolType())),
	}
	for _, want := range cases {
		sig := want.Signature()
		got, err := ParseSignature(sig)
		if err != nil {
			t.Fatalf("ParseSignature(%q): %v", sig, err)
		}
		if !got.Equal(want) {
			t.Fatalf("round trip mismatch for %q: got %+v want %+v", sig, got, want)
		}
	}
}

func TestSignatureTokens(t *testing.T) {
	cases := map[string]*Type{
		"v": VoidType(),
		"b": Int8Type(),
		"h": Int16Type(),
		"i": Int32Type(),
		"q": Int64Type(),
		"B": Uint8Type(),
		"H": Uint16Type(),
		"I": Uint32Type(),
		"Q": Uint64Type(),
		"f": Float32Type(),
		"d": Float64Type(),
		"?": BoolType(),
		"s": StringType(),
	}
	for sig, typ := range cases {
		if got := typ.Signature(); got != sig {
			t.Fatalf("Signature() = %q, want %q", got, sig)
		}
	}
}

func TestMethodSignature(t *testing.T) {
	sig := MethodSignature("test", []*Type{Int64Type(), StringType()}, Int32Type())
	if sig != "test(qs)i" {
		t.Fatalf("MethodSignature = %q, want %q", sig, "test(qs)i")
	}
}

func TestParseSignatureRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "x", "[i", "{i:}", "iz"} {
		if _, err := ParseSignature(s); err == nil {
			t.Fatalf("ParseSignature(%q) should have failed", s)
		}
	}
}

// Malformed-but-untrusted signatures must return an error, never panic —
// this string can come straight off the wire (callsite.Startup's handle
// signature), so ParseSignature has to be safe against hostile input.
func TestParseSignatureRejectsMutableGarbageWithoutPanicking(t *testing.T) {
	for _, s := range []string{"v&", "[i&]", "{i&:s}", "{s:i&}"} {
		if _, err := ParseSignature(s); err == nil {
			t.Fatalf("ParseSignature(%q) should have failed", s)
		}
	}
}

func TestMutableArrayElementPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic constructing array of mutable element")
		}
	}()
	NewArray(Int32Type().Mutable())
}
