// Package colorconv converts packed BGRX frames into planar YUV420P
// or NV12, with optional scaling, per §4.5. It is independent of the
// MPEG-1 video decoder, which already emits YUV420P natively; this
// package serves callers feeding BGRX from elsewhere (a screen
// capture, a different codec, a diagnostic tool).
package colorconv

// alignment is the memory alignment, in bytes, applied to every output
// plane's row stride (§4.5 "aligned up to the memory-align alignment").
const alignment = 32

// Format selects the planar output layout.
type Format int

const (
	// FormatYUV420P is three independent planes: Y, Cb, Cr.
	FormatYUV420P Format = iota
	// FormatNV12 is two planes: Y, and interleaved UV.
	FormatNV12
)

// Filter selects the resampling kernel used when scaling is requested.
type Filter int

const (
	FilterNearest Filter = iota
	FilterBilinear
	FilterBox
)

// FilterForSpeed maps a [0,100] speed setting to a Filter, per §4.5:
// speed > 66 -> nearest, > 33 -> bilinear, else box.
func FilterForSpeed(speed int) Filter {
	switch {
	case speed > 66:
		return FilterNearest
	case speed > 33:
		return FilterBilinear
	default:
		return FilterBox
	}
}

// BGRXImage is a packed BGRX source image (4 bytes per pixel).
type BGRXImage struct {
	Width, Height int
	Stride        int // bytes per row, >= Width*4
	Pix           []byte
}

// YUVImage is a planar YUV420P or NV12 output image. For FormatNV12,
// Cr and CrStride are unused; UV is interleaved into Cb/CbStride.
type YUVImage struct {
	Format Format

	Width, Height int

	Y       []byte
	YStride int

	Cb       []byte // or interleaved UV, for NV12
	CbStride int

	Cr       []byte // unused for NV12
	CrStride int
}

func alignUp(v int) int {
	return (v + alignment - 1) &^ (alignment - 1)
}

func chromaDim(v int) int {
	return (v + 1) / 2
}

// newYUVImage allocates a YUV420P or NV12 image for (width, height),
// with plane strides rounded up to alignment and two extra rows of
// padding per plane so odd-height two-row reads stay in bounds, per
// §4.5 "Plane sizes include two extra rowstrides of padding".
func newYUVImage(format Format, width, height int) *YUVImage {
	cw, ch := chromaDim(width), chromaDim(height)
	img := &YUVImage{Format: format, Width: width, Height: height}

	img.YStride = alignUp(width)
	ySize := img.YStride * (height + 2)
	img.Y = make([]byte, ySize)

	switch format {
	case FormatYUV420P:
		img.CbStride = alignUp(cw)
		img.CrStride = img.CbStride
		cSize := img.CbStride * (ch + 2)
		img.Cb = make([]byte, cSize)
		img.Cr = make([]byte, cSize)
	case FormatNV12:
		img.CbStride = alignUp(2 * cw)
		cSize := img.CbStride * (ch + 2)
		img.Cb = make([]byte, cSize)
	}
	return img
}
