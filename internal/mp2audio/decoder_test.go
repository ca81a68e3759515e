package mp2audio

import (
	"testing"

	"github.com/deepteams/tsplay/internal/bitbuf"
)

// buildHeader builds an MP2 frame header matching §8's worked example:
// sync, MPEG-1, Layer II, no CRC, bitrate index 8 (128kbps), 44.1kHz,
// stereo, no padding.
func buildHeader() []byte {
	// 11100 0011 0101 100 0 0 00 0000
	// Field layout (MSB first): sync(11)=11111111111, version(2)=11,
	// layer(2)=10, crc(1)=1 (protection absent -> no CRC), bitrate(4)=1000,
	// samplerate(2)=00, padding(1)=0, private(1)=0, mode(2)=00 (stereo),
	// modeext skipped for stereo, copyright/original/emphasis(4)=0000.
	bits := "11111111111" + "11" + "10" + "1" + "1000" + "00" + "0" + "0" + "00" + "00" + "0000"
	return bitsToBytes(bits)
}

func bitsToBytes(bits string) []byte {
	for len(bits)%8 != 0 {
		bits += "0"
	}
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if bits[i*8+j] == '1' {
				b |= 1
			}
		}
		out[i] = b
	}
	return out
}

func TestParseHeaderBasic(t *testing.T) {
	buf := bitbuf.New(4096, bitbuf.Expand)
	d := New(buf, false)
	d.Write(buildHeader(), 0, false)

	h, ok := d.parseHeader()
	if !ok {
		t.Fatalf("parseHeader failed")
	}
	if h.sampleRate != 44100 {
		t.Errorf("sampleRate = %d, want 44100", h.sampleRate)
	}
	if h.bitrateKbps != 128 {
		t.Errorf("bitrateKbps = %d, want 128", h.bitrateKbps)
	}
	if h.channels != 2 {
		t.Errorf("channels = %d, want 2", h.channels)
	}
}

func TestParseHeaderRejectsBadSync(t *testing.T) {
	buf := bitbuf.New(64, bitbuf.Expand)
	d := New(buf, false)
	d.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 0, false)
	if _, ok := d.parseHeader(); ok {
		t.Errorf("parseHeader accepted an all-zero sync")
	}
}

func TestReconstructScaleFactorZeroAtSentinel(t *testing.T) {
	if v := reconstructScaleFactor(63); v != 0 {
		t.Errorf("reconstructScaleFactor(63) = %d, want 0", v)
	}
}

func TestGroupedCodewordBits(t *testing.T) {
	// nlevels=3 -> n=4 -> n^3=64 -> needs 6 bits.
	if got := groupedCodewordBits(4); got != 6 {
		t.Errorf("groupedCodewordBits(4) = %d, want 6", got)
	}
}
