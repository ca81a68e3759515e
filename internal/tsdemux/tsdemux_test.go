package tsdemux

import (
	"bytes"
	"testing"
)

// fakeDest records every PES payload/PTS pair it receives, in order.
type fakeDest struct {
	payloads [][]byte
	ptss     []float64
}

func (f *fakeDest) WritePES(payload []byte, pts float64, hasPTS bool) {
	cp := append([]byte(nil), payload...)
	f.payloads = append(f.payloads, cp)
	f.ptss = append(f.ptss, pts)
}

// buildPacket assembles one 188-byte TS packet. A payload shorter than
// the 184 available bytes is preceded by an adaptation field of stuffing
// bytes, so every payload byte the demuxer sees is the caller's.
func buildPacket(pid uint16, payloadStart bool, continuity byte, payload []byte) []byte {
	pkt := make([]byte, packetSize)
	pkt[0] = syncByte
	b1 := byte(pid >> 8 & 0x1F)
	if payloadStart {
		b1 |= 0x40
	}
	pkt[1] = b1
	pkt[2] = byte(pid)
	if len(payload) >= packetSize-4 {
		pkt[3] = 0x10 | (continuity & 0xF) // payload only, no adaptation field
		copy(pkt[4:], payload)
		return pkt
	}
	pkt[3] = 0x30 | (continuity & 0xF) // adaptation field, then payload
	afLen := packetSize - 5 - len(payload)
	pkt[4] = byte(afLen)
	for i := 5; i < 5+afLen; i++ {
		pkt[i] = 0xFF // stuffing
	}
	if afLen > 0 {
		pkt[5] = 0x00 // adaptation field flags
	}
	copy(pkt[5+afLen:], payload)
	return pkt
}

// buildPESHeader builds a minimal PES header with an optional PTS.
func buildPESHeader(streamID byte, bodyLen int, pts float64, withPTS bool) []byte {
	var hdr []byte
	hdr = append(hdr, 0x00, 0x00, 0x01, streamID)

	var optional []byte
	ptsDTSFlags := byte(0)
	if withPTS {
		ptsDTSFlags = 0x2
		ticks := uint64(pts * 90000)
		top3 := byte((ticks >> 30) & 0x7)
		mid := uint32((ticks >> 15) & 0x7FFF)
		low := uint32(ticks & 0x7FFF)
		b := make([]byte, 5)
		b[0] = 0x20 | (top3 << 1) | 0x01
		b[1] = byte(mid >> 7)
		b[2] = byte(mid<<1) | 0x01
		b[3] = byte(low >> 7)
		b[4] = byte(low<<1) | 0x01
		optional = b
	}

	packetLength := 3 + len(optional) + bodyLen
	hdr = append(hdr, byte(packetLength>>8), byte(packetLength))
	hdr = append(hdr, 0x80)            // flags byte (skipped by parser)
	hdr = append(hdr, ptsDTSFlags<<6)  // PTS/DTS flags in top 2 bits
	hdr = append(hdr, byte(len(optional)))
	hdr = append(hdr, optional...)
	return hdr
}

func TestBasicPESDispatch(t *testing.T) {
	dst := &fakeDest{}
	d := New()
	d.Connect(videoStreamID, dst)

	body := bytes.Repeat([]byte{0xAA}, 50)
	hdr := buildPESHeader(byte(videoStreamID), len(body), 1.5, true)
	payload := append(hdr, body...)

	pkt1 := buildPacket(0x100, true, 0, payload[:40])
	pkt2 := buildPacket(0x100, false, 1, payload[40:])

	stream := append(append([]byte{}, pkt1...), pkt2...)
	// Trailing packet on a different (unconnected) PID; it must not
	// produce a dispatch of its own.
	pkt3 := buildPacket(0x200, true, 0, []byte{0xEE})
	stream = append(stream, pkt3...)

	if err := d.Write(stream); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// The PES above was flushed when its declared length was reached. A
	// further payload-start packet on the video PID opens a new PES with
	// no body yet, so nothing more is dispatched.
	pkt4 := buildPacket(0x100, true, 2, buildPESHeader(byte(videoStreamID), 1, 0, false))
	if err := d.Write(pkt4); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if len(dst.payloads) != 1 {
		t.Fatalf("got %d PES payloads, want 1", len(dst.payloads))
	}
	if !bytes.Equal(dst.payloads[0], body) {
		t.Fatalf("payload mismatch: got %d bytes, want %d", len(dst.payloads[0]), len(body))
	}
	if dst.ptss[0] < 1.49 || dst.ptss[0] > 1.51 {
		t.Fatalf("pts = %v, want ~1.5", dst.ptss[0])
	}
}

func TestResyncAfterGarbagePrefix(t *testing.T) {
	dst := &fakeDest{}
	d := New()
	d.Connect(videoStreamID, dst)

	body := bytes.Repeat([]byte{0x5A}, 20)
	hdr := buildPESHeader(byte(videoStreamID), len(body), 0, false)
	payload := append(hdr, body...)

	pkt1 := buildPacket(0x100, true, 0, payload)
	pkt2 := buildPacket(0x100, true, 1, buildPESHeader(byte(videoStreamID), 1, 0, false))

	garbage := bytes.Repeat([]byte{0x99}, 200)
	stream := append(append([]byte{}, garbage...), pkt1...)
	stream = append(stream, pkt2...)
	// Resync confirms sync over six packet lengths, so follow the two
	// packets with null-PID filler packets.
	for i := 0; i < 4; i++ {
		stream = append(stream, buildPacket(0x1FFF, false, byte(i), nil)...)
	}

	var resyncs int
	d.OnResync = func(ev ResyncEvent) { resyncs++ }

	if err := d.Write(stream); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(dst.payloads) != 1 {
		t.Fatalf("got %d PES payloads, want 1", len(dst.payloads))
	}
	if !bytes.Equal(dst.payloads[0], body) {
		t.Fatalf("payload mismatch after resync")
	}
	if resyncs == 0 {
		t.Fatalf("expected at least one resync event")
	}
}

func TestLeftoverBytesCarriedAcrossWrites(t *testing.T) {
	dst := &fakeDest{}
	d := New()
	d.Connect(audioStreamID, dst)

	body := bytes.Repeat([]byte{0x11}, 30)
	hdr := buildPESHeader(byte(audioStreamID), len(body), 0, false)
	payload := append(hdr, body...)
	pkt := buildPacket(0x101, true, 0, payload)
	pkt2 := buildPacket(0x101, true, 1, buildPESHeader(byte(audioStreamID), 1, 0, false))

	// Split pkt across two Write calls at a non-packet boundary.
	if err := d.Write(pkt[:100]); err != nil {
		t.Fatalf("Write part1: %v", err)
	}
	rest := append(append([]byte{}, pkt[100:]...), pkt2...)
	if err := d.Write(rest); err != nil {
		t.Fatalf("Write part2: %v", err)
	}

	if len(dst.payloads) != 1 || !bytes.Equal(dst.payloads[0], body) {
		t.Fatalf("PES payload not reassembled correctly across split writes")
	}
}
