package bitbuf

import (
	"math/rand"
	"testing"
)

func TestWritePeekReadRewind(t *testing.T) {
	b := New(4, Expand)
	data := []byte{0xAB, 0xCD, 0xEF, 0x12}
	if err := b.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for n := 1; n <= 32; n++ {
		if !b.Has(n) {
			break
		}
		peeked := b.Peek(n)
		read := b.Read(n)
		if peeked != read {
			t.Fatalf("n=%d: peek %x != read %x", n, peeked, read)
		}
		b.Rewind(n)
		again := b.Read(n)
		if again != read {
			t.Fatalf("n=%d: rewind mismatch %x != %x", n, again, read)
		}
		b.Rewind(n)
	}
}

func TestReadByteAligned(t *testing.T) {
	b := New(4, Expand)
	b.Write([]byte{0xFF, 0x00, 0xA5})
	if got := b.Read(8); got != 0xFF {
		t.Fatalf("byte 0: got %x", got)
	}
	if got := b.Read(8); got != 0x00 {
		t.Fatalf("byte 1: got %x", got)
	}
	if got := b.Read(8); got != 0xA5 {
		t.Fatalf("byte 2: got %x", got)
	}
}

func TestEvictModeRoundTrip(t *testing.T) {
	b := New(16, Evict)
	rng := rand.New(rand.NewSource(1))
	var written, read []byte

	for i := 0; i < 200; i++ {
		chunk := make([]byte, 1+rng.Intn(5))
		rng.Read(chunk)
		// Keep unread bytes within the capacity: an Evict buffer drops
		// unread data when a write cannot fit even after eviction.
		for b.Remaining()/8+len(chunk) > 16 {
			read = append(read, byte(b.Read(8)))
		}
		if err := b.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		written = append(written, chunk...)

		if b.Has(8) && rng.Intn(2) == 0 {
			v := b.Read(8)
			read = append(read, byte(v))
		}
	}
	for b.Has(8) {
		read = append(read, byte(b.Read(8)))
	}
	if len(read) != len(written) {
		t.Fatalf("length mismatch: read %d, written %d", len(read), len(written))
	}
	for i := range read {
		if read[i] != written[i] {
			t.Fatalf("byte %d: got %x want %x", i, read[i], written[i])
		}
	}
}

func TestFindNextStartCode(t *testing.T) {
	b := New(16, Expand)
	b.Write([]byte{0x11, 0x22, 0x00, 0x00, 0x01, 0xE0, 0x33})
	code := b.FindNextStartCode()
	if code != 0xE0 {
		t.Fatalf("code = %x, want E0", code)
	}
	if b.ReadBits() != 6*8 {
		t.Fatalf("read position after start code = %d, want %d", b.ReadBits(), 6*8)
	}
	if got := b.Read(8); got != 0x33 {
		t.Fatalf("trailing byte = %x", got)
	}
}

func TestFindNextStartCodeNotFound(t *testing.T) {
	b := New(16, Expand)
	b.Write([]byte{0x11, 0x22, 0x33, 0x44})
	if code := b.FindNextStartCode(); code != -1 {
		t.Fatalf("code = %d, want -1", code)
	}
	if b.ReadBits() != b.Len()*8 {
		t.Fatalf("read position not advanced to end")
	}
}

func TestFindStartCode(t *testing.T) {
	b := New(16, Expand)
	b.Write([]byte{0x00, 0x00, 0x01, 0xB3, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0xE0})
	code := b.FindStartCode(0xE0)
	if code != 0xE0 {
		t.Fatalf("code = %x, want E0", code)
	}
}

func TestNextBytesAreStartCode(t *testing.T) {
	b := New(16, Expand)
	b.Write([]byte{0x00, 0x00, 0x01, 0xB3})
	if !b.NextBytesAreStartCode() {
		t.Fatalf("expected start code at current position")
	}
	b.Skip(8)
	if b.NextBytesAreStartCode() {
		t.Fatalf("did not expect start code after skip")
	}
}

func TestExpandGrowsCapacity(t *testing.T) {
	b := New(2, Expand)
	big := make([]byte, 100)
	for i := range big {
		big[i] = byte(i)
	}
	if err := b.Write(big); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for i := range big {
		if got := b.Read(8); got != uint32(big[i]) {
			t.Fatalf("byte %d: got %x want %x", i, got, big[i])
		}
	}
}

func TestExpandCapacityExceeded(t *testing.T) {
	b := New(4, Expand)
	if err := b.Write(make([]byte, maxCapacity+1)); err != ErrCapacityExceeded {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func FuzzWriteReadRoundTrip(f *testing.F) {
	f.Add([]byte{0x00, 0x00, 0x01, 0xE0, 0xFF})
	f.Fuzz(func(t *testing.T, data []byte) {
		b := New(4, Evict)
		if err := b.Write(data); err != nil {
			return
		}
		var out []byte
		for b.Has(8) {
			out = append(out, byte(b.Read(8)))
		}
		if len(out) != len(data) {
			t.Fatalf("length mismatch: got %d want %d", len(out), len(data))
		}
	})
}
