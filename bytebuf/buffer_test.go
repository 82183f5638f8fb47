package bytebuf

import "testing"

func TestAppendConsumeRoundTrip(t *testing.T) {
	b := New()
	b.Append([]byte("hello"))
	b.AppendByte(' ')
	b.Append([]byte("world"))

	got, err := b.Consume(5)
	if err != nil || string(got) != "hello" {
		t.Fatalf("Consume(5) = (%q, %v)", got, err)
	}
	rest, err := b.Consume(b.Len())
	if err != nil || string(rest) != " world" {
		t.Fatalf("Consume(rest) = (%q, %v)", rest, err)
	}
}

func TestConsumeOverflow(t *testing.T) {
	b := New()
	b.Append([]byte("ab"))
	if _, err := b.Consume(3); err == nil {
		t.Fatal("Consume(3) on a 2-byte buffer should fail")
	}
}

func TestGrowthBeyondInitialCapacity(t *testing.T) {
	b := New()
	big := make([]byte, initialCapacity*4)
	for i := range big {
		big[i] = byte(i)
	}
	b.Append(big)
	got, err := b.Consume(len(big))
	if err != nil {
		t.Fatal(err)
	}
	for i := range big {
		if got[i] != big[i] {
			t.Fatalf("byte %d: got %d, want %d", i, got[i], big[i])
		}
	}
}

func TestCompactionReclaimsConsumedSpace(t *testing.T) {
	b := New()
	b.Append(make([]byte, 20))
	if _, err := b.Consume(20); err != nil {
		t.Fatal(err)
	}
	// The append region should reuse the reclaimed space rather than
	// growing without bound.
	b.Append(make([]byte, 20))
	if b.Len() != 20 {
		t.Fatalf("Len() = %d, want 20", b.Len())
	}
	if cap(b.data) != initialCapacity {
		t.Fatalf("cap = %d, want %d (compaction should avoid a resize)", cap(b.data), initialCapacity)
	}
}

func TestBigEndianScalarRoundTrip(t *testing.T) {
	b := New()
	b.WriteUint16BE(0x1234)
	b.WriteUint32BE(0xdeadbeef)
	b.WriteUint64BE(0x0102030405060708)

	u16, err := b.ReadUint16BE()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadUint16BE = (%x, %v)", u16, err)
	}
	u32, err := b.ReadUint32BE()
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("ReadUint32BE = (%x, %v)", u32, err)
	}
	u64, err := b.ReadUint64BE()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("ReadUint64BE = (%x, %v)", u64, err)
	}
}

func TestLittleEndianScalarRoundTrip(t *testing.T) {
	b := New()
	b.WriteUint32LE(0xdeadbeef)
	u32, err := b.ReadUint32LE()
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("ReadUint32LE = (%x, %v)", u32, err)
	}
}
