package colorconv

import "testing"

func solidBGRX(w, h int, b, g, r, x byte) *BGRXImage {
	img := &BGRXImage{Width: w, Height: h, Stride: w * 4}
	img.Pix = make([]byte, img.Stride*h)
	for i := 0; i < w*h; i++ {
		img.Pix[i*4] = b
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = r
		img.Pix[i*4+3] = x
	}
	return img
}

func TestFilterForSpeed(t *testing.T) {
	cases := map[int]Filter{0: FilterBox, 33: FilterBox, 34: FilterBilinear, 66: FilterBilinear, 67: FilterNearest, 100: FilterNearest}
	for speed, want := range cases {
		if got := FilterForSpeed(speed); got != want {
			t.Errorf("FilterForSpeed(%d) = %v, want %v", speed, got, want)
		}
	}
}

func TestConvertBlackYUV420P(t *testing.T) {
	src := solidBGRX(16, 16, 0, 0, 0, 0)
	img := Convert(src, FormatYUV420P, 0, 0, FilterNearest)
	if img.Y[0] != 0 { // black maps to luma 0 under BT.601 full range
		t.Errorf("Y[0] = %d, want 0", img.Y[0])
	}
	if img.Cb[0] != 128 || img.Cr[0] != 128 {
		t.Errorf("Cb/Cr for black = %d/%d, want 128/128", img.Cb[0], img.Cr[0])
	}
}

func TestConvertBlueMatchesSpecScenario(t *testing.T) {
	// §8 scenario 4: BGRX blue (255,0,0,0) -> Y≈29, Cb≈255, Cr≈107, within
	// ±1 of BT.601 full-range integer rounding.
	src := solidBGRX(1, 1, 255, 0, 0, 0)
	img := Convert(src, FormatYUV420P, 0, 0, FilterNearest)
	if d := int(img.Y[0]) - 29; d < -1 || d > 1 {
		t.Errorf("Y[0] = %d, want 29±1", img.Y[0])
	}
	if d := int(img.Cb[0]) - 255; d < -1 || d > 1 {
		t.Errorf("Cb[0] = %d, want 255±1", img.Cb[0])
	}
	if d := int(img.Cr[0]) - 107; d < -1 || d > 1 {
		t.Errorf("Cr[0] = %d, want 107±1", img.Cr[0])
	}
}

func TestConvertDimensions(t *testing.T) {
	src := solidBGRX(10, 10, 10, 20, 30, 0)
	img := Convert(src, FormatYUV420P, 0, 0, FilterNearest)
	if img.Width != 10 || img.Height != 10 {
		t.Fatalf("unexpected image dims %dx%d", img.Width, img.Height)
	}
	wantCW, wantCH := 5, 5
	if len(img.Cb) < img.CbStride*wantCH {
		t.Errorf("Cb plane too small for %dx%d chroma", wantCW, wantCH)
	}
}

func TestNV12Interleaving(t *testing.T) {
	src := solidBGRX(8, 8, 1, 2, 3, 0)
	img := Convert(src, FormatNV12, 0, 0, FilterNearest)
	if len(img.Cr) != 0 {
		t.Errorf("NV12 image should not populate Cr")
	}
	// UV interleaved: even offsets are U, odd are V.
	u0 := img.Cb[0]
	v0 := img.Cb[1]
	if u0 == 0 && v0 == 0 {
		t.Errorf("expected non-zero chroma for a colored input")
	}
}

func TestScaleBGRXPreservesSolidColor(t *testing.T) {
	src := solidBGRX(4, 4, 50, 60, 70, 255)
	dst := ScaleBGRX(src, 8, 8, FilterBilinear)
	if dst.Width != 8 || dst.Height != 8 {
		t.Fatalf("unexpected scaled dims %dx%d", dst.Width, dst.Height)
	}
	if dst.Pix[0] != 50 || dst.Pix[1] != 60 || dst.Pix[2] != 70 {
		t.Errorf("scaling a solid color changed it: got %v", dst.Pix[:4])
	}
}

func TestScaleNearestExact(t *testing.T) {
	src := &BGRXImage{Width: 2, Height: 1, Stride: 8}
	src.Pix = []byte{10, 0, 0, 0, 200, 0, 0, 0}
	dst := ScaleBGRX(src, 4, 1, FilterNearest)
	if dst.Pix[0] != 10 {
		t.Errorf("nearest-left sample = %d, want 10", dst.Pix[0])
	}
}

func TestGrayPreservesStrideAndAlpha(t *testing.T) {
	src := solidBGRX(5, 3, 10, 20, 30, 99)
	gray := Gray(src)
	if gray.Stride != src.Stride || gray.Width != src.Width || gray.Height != src.Height {
		t.Fatalf("Gray changed dimensions/stride")
	}
	if gray.Pix[3] != 99 {
		t.Errorf("Gray must preserve the X channel, got %d", gray.Pix[3])
	}
	if gray.Pix[0] != gray.Pix[1] || gray.Pix[1] != gray.Pix[2] {
		t.Errorf("Gray must replicate luma across B/G/R, got %v", gray.Pix[:3])
	}
}
