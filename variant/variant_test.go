package variant

import "testing"

func TestStrictAccessorsMismatch(t *testing.T) {
	v := NewInt32(42)
	if _, err := v.Int64(); err == nil {
		t.Fatal("Int64() on an Int32 variant should fail")
	}
	got, err := v.Int32()
	if err != nil || got != 42 {
		t.Fatalf("Int32() = (%d, %v), want (42, nil)", got, err)
	}
}

func TestArrayIndexOutOfRange(t *testing.T) {
	arr := NewArray([]*Variant{NewInt32(1), NewInt32(2)})
	if _, err := arr.Index(2); err == nil {
		t.Fatal("Index(2) on a 2-element array should fail")
	}
	if _, err := NewInt32(1).Index(0); err == nil {
		t.Fatal("Index on a non-array should fail with type error")
	}
}

func TestObjectFieldMissing(t *testing.T) {
	obj := NewObject(map[string]*Variant{"a": NewInt32(1)})
	if _, err := obj.Field("missing"); err == nil {
		t.Fatal("Field(missing) should fail with a name error")
	}
	got := obj.FieldForWrite("missing")
	if got.kind.String() != "int32" {
		t.Fatalf("FieldForWrite default kind = %v, want int32", got.kind)
	}
	if _, err := obj.Field("missing"); err != nil {
		t.Fatalf("Field(missing) after FieldForWrite: %v", err)
	}
}

func TestEqual(t *testing.T) {
	a := NewArray([]*Variant{NewInt32(1), NewString("x")})
	b := NewArray([]*Variant{NewInt32(1), NewString("x")})
	c := NewArray([]*Variant{NewInt32(1), NewString("y")})
	if !a.Equal(b) {
		t.Fatal("a should equal b")
	}
	if a.Equal(c) {
		t.Fatal("a should not equal c")
	}
}

func TestMapAsKey(t *testing.T) {
	key1 := NewArray([]*Variant{NewInt32(1), NewInt32(2)})
	key2 := NewArray([]*Variant{NewInt32(1), NewInt32(2)})
	m := NewMap(nil)
	if err := m.MapSet(key1, NewString("first")); err != nil {
		t.Fatal(err)
	}
	got, ok, err := m.MapGet(key2)
	if err != nil || !ok {
		t.Fatalf("MapGet with a structurally-equal key should hit: ok=%v err=%v", ok, err)
	}
	s, _ := got.Str()
	if s != "first" {
		t.Fatalf("MapGet = %q, want %q", s, "first")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := NewArray([]*Variant{NewInt32(1)})
	clone := orig.Clone()
	clone.arr[0] = NewInt32(99)
	v, _ := orig.Index(0)
	got, _ := v.Int32()
	if got != 1 {
		t.Fatalf("mutating a clone's child mutated the original: got %d", got)
	}
}

func TestStringForm(t *testing.T) {
	v := NewObject(map[string]*Variant{"a": NewInt32(1)})
	if got, want := v.String(), "<a:int32(1)>"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if got, want := NewString("hi").String(), `"hi"`; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
