// Package mp2audio implements a progressive MPEG Audio Layer II (MP2)
// decoder: frame header validation, bit allocation, scale-factor decode,
// sample dequantization, and the 32-band polyphase synthesis filterbank
// producing 1152 stereo PCM samples per frame, per §4.4 of the governing
// specification.
package mp2audio

import (
	"errors"

	"github.com/deepteams/tsplay/internal/bitbuf"
)

// ErrBadHeader is returned by Decode when the frame header fails
// validation (§4.4); callers should drop the frame and keep reading.
var ErrBadHeader = errors.New("mp2audio: invalid frame header")

const samplesPerFrame = 1152

// Frame holds one decoded MP2 frame: 1152 float32 PCM samples per
// channel, in separate Left and Right slices, at SampleRate.
type Frame struct {
	Left, Right []float32
	SampleRate  int
	PTS         float64
}

// synthesisState is the per-channel rolling filterbank state (§4.4
// "Synthesis"): a 1024-entry V history buffer and its rotating write
// position.
type synthesisState struct {
	v    [1024]int32
	vPos int
}

// Decoder is a progressive MPEG Audio Layer II decoder. No method is
// safe to call concurrently with another (§5).
type Decoder struct {
	Buf *bitbuf.Buffer

	collectTimestamps bool
	currentPTS        float64

	synth [2]synthesisState

	LastFrame *Frame
}

// New creates an empty Decoder over buf.
func New(buf *bitbuf.Buffer, collectTimestamps bool) *Decoder {
	return &Decoder{Buf: buf, collectTimestamps: collectTimestamps}
}

// Write appends bytes to the decoder's bit buffer, recording the most
// recent PTS seen (used to stamp the next decoded frame).
func (d *Decoder) Write(data []byte, pts float64, hasPTS bool) {
	if hasPTS {
		d.currentPTS = pts
	}
	d.Buf.Write(data)
}

// header holds one parsed MP2 frame header (§4.4).
type header struct {
	version        int // 0 = MPEG-2.5, 2 = MPEG-2, 3 = MPEG-1
	bitrateIndex   int
	sampleRateIdx  int
	padding        int
	mode           int
	modeExtension  int
	bound          int
	tab3           int
	subbandLimit   int
	sampleRate     int
	bitrateKbps    int
	channels       int
}

// Decode consumes exactly one frame from the bit buffer and, on
// success, stores it in LastFrame. It returns false (consuming nothing)
// if there is not enough data yet or the header is invalid — the caller
// should then skip forward and retry, per §4.4 "Errors are non-fatal".
func (d *Decoder) Decode() bool {
	if !d.Buf.Has(48) { // worst case: full header + mode extension + CRC
		return false
	}
	startPos := d.Buf.ReadBits()

	h, ok := d.parseHeader()
	if !ok {
		d.Buf.SetReadBits(startPos)
		return false
	}

	frameBytes := 144000*h.bitrateKbps/h.sampleRate + h.padding
	bitsNeeded := frameBytes*8 - 32 // header already consumed
	if !d.Buf.Has(bitsNeeded) {
		d.Buf.SetReadBits(startPos)
		return false
	}

	left := make([]float32, 0, samplesPerFrame)
	right := make([]float32, 0, samplesPerFrame)
	if !d.decodeFrameBody(h, &left, &right) {
		// Leave the cursor at the end of the frame regardless: a
		// malformed body still consumed a fixed number of bytes.
		d.Buf.SetReadBits(startPos + frameBytes*8)
		return false
	}

	d.LastFrame = &Frame{Left: left, Right: right, SampleRate: h.sampleRate, PTS: d.currentPTS}
	d.Buf.SetReadBits(startPos + frameBytes*8)
	return true
}

func (d *Decoder) parseHeader() (header, bool) {
	var h header
	if d.Buf.Read(11) != 0x7FF {
		return h, false
	}
	h.version = int(d.Buf.Read(2))
	layer := int(d.Buf.Read(2))
	if layer != 0b10 { // Layer II
		return h, false
	}
	crcFlag := d.Buf.Read(1) == 0 // flag bit is "protection absent" inverted
	h.bitrateIndex = int(d.Buf.Read(4))
	h.sampleRateIdx = int(d.Buf.Read(2))
	if h.bitrateIndex == 0 || h.bitrateIndex == 15 || h.sampleRateIdx == 3 {
		return h, false
	}
	h.padding = int(d.Buf.Read(1))
	d.Buf.Skip(1) // private bit
	h.mode = int(d.Buf.Read(2))

	switch h.mode {
	case 0b01: // joint stereo
		h.modeExtension = int(d.Buf.Read(2))
		h.bound = (h.modeExtension + 1) << 2
	case 0b11: // mono
		h.bound = 0
		d.Buf.Skip(2)
	default:
		h.bound = 32
		d.Buf.Skip(2)
	}
	d.Buf.Skip(4) // copyright, original, emphasis(2)
	if crcFlag {
		d.Buf.Skip(16)
	}

	h.channels = 2
	if h.mode == 0b11 {
		h.channels = 1
	}

	h.sampleRate = sampleRateTable[h.sampleRateIdx]
	h.bitrateKbps = bitrateTableV1[h.bitrateIndex]

	if h.version == 3 { // MPEG-1
		tab1 := 0
		if h.channels != 1 {
			tab1 = 1
		}
		tab2 := quantLUTStep1[tab1][h.bitrateIndex]
		packed := quantLUTStep2[tab2][h.sampleRateIdx]
		h.subbandLimit = packed & 63
		h.tab3 = packed >> 6
	} else { // MPEG-2 LSR
		h.tab3 = 2
		h.subbandLimit = 30
	}
	if h.bound > h.subbandLimit {
		h.bound = h.subbandLimit
	}
	return h, true
}
