// Package mpeg1video implements a progressive, bit-accurate MPEG-1 video
// decoder: sequence/picture/slice/macroblock/block layer parsing, motion
// compensation from a single forward reference, dequantization, the 8x8
// inverse DCT, and planar YCbCr frame output, per §4.3 of the governing
// specification.
package mpeg1video

import (
	"github.com/deepteams/tsplay/internal/bitbuf"
)

// Picture types, exported for callers that inspect Decoder.LastPictureType.
const (
	PictureI = pictureTypeI
	PictureP = pictureTypeP
	PictureB = pictureTypeB
)

// Frame holds one decoded picture as three planar YCbCr buffers. Strides
// equal the plane width; Y is full resolution, Cb/Cr are quarter
// resolution (4:2:0), per §3/§4.3.
type Frame struct {
	Width, Height   int // coded dimensions, each rounded up to a multiple of 16
	Y, Cb, Cr       []byte
	CStride         int // Cb/Cr row stride == Width/2
	PTS             float64
}

// timestampRecord is one entry of the per-decoder timestamp map (§3).
type timestampRecord struct {
	bitIndex int
	time     float64
}

// Decoder is a progressive MPEG-1 video decoder. It owns one BitBuffer,
// two sets of reference planes (current + forward), and per-picture/slice
// state. No method is safe to call concurrently with another (§5).
type Decoder struct {
	Buf *bitbuf.Buffer

	hasSequenceHeader bool // explicit per §9's Open Question resolution
	loadFails         int

	width, height   int // display dimensions from the sequence header
	mbWidth, mbHeight int
	codedWidth, codedHeight int

	intraQuant    [64]uint8
	nonIntraQuant [64]uint8

	frameRate float64

	// current/forward planar buffers; current becomes forward after a
	// reference picture is decoded (§3 "Reference frames").
	currentY, currentCb, currentCr []byte
	forwardY, forwardCb, forwardCr []byte

	pictureType int

	fullPelForward bool
	forwardFCode   int
	forwardRSize   int
	forwardF       int

	// Per-slice/macroblock state (§3 "Per-slice").
	quantizerScale int
	mbAddress      int
	dcPredictorY   int32
	dcPredictorCb  int32
	dcPredictorCr  int32
	motionFH, motionFV int // forward motion vector accumulators

	block [64]int32 // per-block coefficient buffer, reused across blocks

	collectTimestamps bool
	timestamps        []timestampRecord

	currentPTS float64

	LastFrame *Frame
}

// New creates an empty Decoder over buf. collectTimestamps enables the
// timestamp map used for seeking (§3).
func New(buf *bitbuf.Buffer, collectTimestamps bool) *Decoder {
	return &Decoder{
		Buf:               buf,
		collectTimestamps: collectTimestamps,
	}
}

// Write appends bytes to the decoder's bit buffer and records a timestamp
// entry for the write position, if timestamp collection is enabled.
func (d *Decoder) Write(data []byte, pts float64, hasPTS bool) {
	if hasPTS {
		d.currentPTS = pts
	}
	bitIndexBefore := d.Buf.Len() * 8
	d.Buf.Write(data)
	if d.collectTimestamps && hasPTS {
		d.timestamps = append(d.timestamps, timestampRecord{bitIndex: bitIndexBefore, time: pts})
	}
}

// SeekTarget returns the bit index of the highest timestamp record whose
// time is <= target, or 0 if none qualifies (§4.6 "Seek").
func (d *Decoder) SeekTarget(target float64) int {
	best := 0
	for _, r := range d.timestamps {
		if r.time <= target {
			best = r.bitIndex
		} else {
			break
		}
	}
	return best
}

// Decode advances to the next Picture start code (locating the Sequence
// header on the first call) and decodes one picture. It returns true iff a
// picture was produced; false means there is not enough data yet, which is
// not an error (§4.3, §7).
func (d *Decoder) Decode() bool {
	if !d.hasSequenceHeader {
		if !d.readSequenceHeader() {
			return false
		}
	}
	if !d.advanceToPictureStart() {
		return false
	}
	return d.decodePicture()
}

// advanceToPictureStart scans forward for a Picture start code (0x00),
// re-parsing any sequence headers it encounters along the way (MPEG-1
// sequences may repeat the header before any picture, e.g. on a GOP
// boundary).
func (d *Decoder) advanceToPictureStart() bool {
	for {
		if !d.Buf.Has(8 + 24) {
			return false
		}
		code := d.Buf.FindNextStartCode()
		if code < 0 {
			return false
		}
		switch {
		case code == startCodePicture:
			return true
		case code == startCodeSequenceHeader:
			if !d.parseSequenceHeaderBody() {
				d.loadFails++
				return false
			}
		default:
			// Group-of-pictures, extension, user-data, slice start
			// codes before the first picture: skip past.
		}
	}
}

const (
	startCodePicture        = 0x00
	startCodeSliceMin       = 0x01
	startCodeSliceMax       = 0xAF
	startCodeUserData       = 0xB2
	startCodeSequenceHeader = 0xB3
	startCodeExtension      = 0xB5
	startCodeSequenceEnd    = 0xB7
	startCodeGroup          = 0xB8
)

func roundUp16(v int) int {
	return (v + 15) &^ 15
}
