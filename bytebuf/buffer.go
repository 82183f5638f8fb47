// Package bytebuf implements the growable byte-sequence buffer of
// spec.md §4.1: an append region and a separate read cursor, with
// doubling growth and tail compaction, used by the MessagePack codec to
// assemble and parse wire bytes.
package bytebuf

import (
	"encoding/binary"

	"krypt.co/rpc/rpcerr"
)

const initialCapacity = 32

// Buffer is a growable byte buffer with a read cursor distinct from the
// append position. It is not safe for concurrent use by multiple
// goroutines — spec.md §4.1: "not shared across threads".
type Buffer struct {
	data []byte
	read int
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{data: make([]byte, 0, initialCapacity)}
}

// NewFromBytes returns a Buffer whose unread region is exactly b. The
// bytes are copied.
func NewFromBytes(b []byte) *Buffer {
	data := make([]byte, len(b))
	copy(data, b)
	return &Buffer{data: data}
}

// Len returns the number of unread bytes remaining.
func (b *Buffer) Len() int { return len(b.data) - b.read }

// Bytes returns the unread region. The returned slice aliases the
// buffer's storage and is only valid until the next mutating call.
func (b *Buffer) Bytes() []byte { return b.data[b.read:] }

// compact moves the unread region to the front of the backing array,
// discarding already-consumed bytes, so a subsequent grow has the whole
// capacity available to satisfy a reservation.
func (b *Buffer) compact() {
	if b.read == 0 {
		return
	}
	n := copy(b.data[:cap(b.data)], b.data[b.read:])
	b.data = b.data[:n]
	b.read = 0
}

// grow ensures n additional bytes can be appended, compacting first and
// doubling capacity from initialCapacity until the request fits.
func (b *Buffer) grow(n int) {
	if cap(b.data)-len(b.data) >= n {
		return
	}
	b.compact()
	if cap(b.data)-len(b.data) >= n {
		return
	}
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = initialCapacity
	}
	for newCap-len(b.data) < n {
		newCap *= 2
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
}

// Append writes p to the end of the buffer.
func (b *Buffer) Append(p []byte) {
	b.grow(len(p))
	b.data = append(b.data, p...)
}

// AppendByte writes a single byte to the end of the buffer.
func (b *Buffer) AppendByte(x byte) {
	b.grow(1)
	b.data = append(b.data, x)
}

// Consume returns the next n unread bytes and advances the read cursor
// past them. Fails with BufferOverflow if fewer than n bytes remain.
func (b *Buffer) Consume(n int) ([]byte, error) {
	if n > b.Len() {
		return nil, rpcerr.New(rpcerr.BufferOverflow, "need %d bytes, only %d remain", n, b.Len())
	}
	out := b.data[b.read : b.read+n]
	b.read += n
	return out, nil
}

// ConsumeByte consumes and returns a single byte.
func (b *Buffer) ConsumeByte() (byte, error) {
	bs, err := b.Consume(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

// --- big-endian fixed-width scalars, used by the MessagePack codec ---

func (b *Buffer) WriteUint8(x uint8)   { b.AppendByte(x) }
func (b *Buffer) WriteUint16BE(x uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], x)
	b.Append(buf[:])
}
func (b *Buffer) WriteUint32BE(x uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], x)
	b.Append(buf[:])
}
func (b *Buffer) WriteUint64BE(x uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], x)
	b.Append(buf[:])
}

func (b *Buffer) ReadUint8() (uint8, error) { return b.ConsumeByte() }

func (b *Buffer) ReadUint16BE() (uint16, error) {
	bs, err := b.Consume(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(bs), nil
}

func (b *Buffer) ReadUint32BE() (uint32, error) {
	bs, err := b.Consume(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(bs), nil
}

func (b *Buffer) ReadUint64BE() (uint64, error) {
	bs, err := b.Consume(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(bs), nil
}

// --- little-endian counterparts, kept for parity with spec.md §4.1's
// "typed little-endian and big-endian read/write of fixed-width scalars";
// the MessagePack codec only uses the big-endian family.

func (b *Buffer) WriteUint16LE(x uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], x)
	b.Append(buf[:])
}
func (b *Buffer) WriteUint32LE(x uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], x)
	b.Append(buf[:])
}
func (b *Buffer) WriteUint64LE(x uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	b.Append(buf[:])
}

func (b *Buffer) ReadUint16LE() (uint16, error) {
	bs, err := b.Consume(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(bs), nil
}
func (b *Buffer) ReadUint32LE() (uint32, error) {
	bs, err := b.Consume(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(bs), nil
}
func (b *Buffer) ReadUint64LE() (uint64, error) {
	bs, err := b.Consume(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(bs), nil
}
