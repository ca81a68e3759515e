package mpeg1video

import "testing"

func TestRoundUp16(t *testing.T) {
	cases := map[int]int{0: 0, 1: 16, 15: 16, 16: 16, 17: 32, 352: 352, 360: 368}
	for in, want := range cases {
		if got := roundUp16(in); got != want {
			t.Errorf("roundUp16(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestDequantizeOddify(t *testing.T) {
	// Positive even result must be decremented, negative even incremented,
	// odd results left alone, per the "oddify" rule in §4.3.
	cases := []struct {
		level, scale, matrix int32
		wantOdd              bool
	}{
		{4, 8, 16, true},
		{-4, 8, 16, true},
		{1, 1, 16, true},
	}
	for _, c := range cases {
		v := dequantize(c.level, int(c.scale), int(c.matrix))
		if v%2 == 0 {
			t.Errorf("dequantize(%d,%d,%d) = %d, want odd", c.level, c.scale, c.matrix, v)
		}
	}
}

func TestDequantizeClamp(t *testing.T) {
	v := dequantize(4095, 112, 255)
	if v > 2047 || v < -2048 {
		t.Errorf("dequantize did not clamp: got %d", v)
	}
	v = dequantize(-4095, 112, 255)
	if v > 2047 || v < -2048 {
		t.Errorf("dequantize did not clamp negative: got %d", v)
	}
}

func TestWrapMotionStaysInRange(t *testing.T) {
	forwardF := 4
	low, high := -forwardF*16, forwardF*16-1
	for _, v := range []int{-1000, -65, -64, 0, 63, 64, 1000} {
		got := wrapMotion(v, forwardF)
		if got < low || got > high {
			t.Errorf("wrapMotion(%d, %d) = %d, out of range [%d,%d]", v, forwardF, got, low, high)
		}
	}
}

func TestIDCTFlatDC(t *testing.T) {
	// A block with only a DC coefficient must produce a spatially flat
	// output (every basis function beyond u=v=0 contributes zero).
	var in, out [64]int32
	in[0] = 256 * 100 // DC scaled the way decodeBlock scales it (value<<8)
	idct8x8(&in, &out)
	first := out[0]
	for i, v := range out {
		if v != first {
			t.Fatalf("expected flat output, out[%d]=%d != out[0]=%d", i, v, first)
		}
	}
}

func TestIDCTZeroIsZero(t *testing.T) {
	var in, out [64]int32
	idct8x8(&in, &out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("expected all-zero output for all-zero input, out[%d]=%d", i, v)
		}
	}
}

func TestFillAndWriteBlockCopyVsAdd(t *testing.T) {
	plane := make([]byte, 16*16)
	for i := range plane {
		plane[i] = 50
	}
	fillBlockCopy(plane, 16, 0, 0, 200)
	if plane[0] != 200 {
		t.Fatalf("fillBlockCopy did not overwrite: got %d", plane[0])
	}

	plane2 := make([]byte, 16*16)
	for i := range plane2 {
		plane2[i] = 50
	}
	fillBlockAdd(plane2, 16, 0, 0, 10)
	if plane2[0] != 60 {
		t.Fatalf("fillBlockAdd = %d, want 60", plane2[0])
	}

	var spatial [64]int32
	for i := range spatial {
		spatial[i] = 10
	}
	writeBlockCopy(plane, 16, 8, 0, &spatial)
	if plane[8] != 10 {
		t.Fatalf("writeBlockCopy did not overwrite: got %d", plane[8])
	}
	writeBlockAdd(plane2, 16, 8, 0, &spatial)
	if plane2[8] != 60 {
		t.Fatalf("writeBlockAdd = %d, want 60", plane2[8])
	}
}

func TestBlockOriginAndPlaneFor(t *testing.T) {
	d := &Decoder{mbWidth: 4, codedWidth: 64}
	d.mbAddress = 5 // row 1, col 1 -> pixel origin (16, 16)
	x, y := d.blockOrigin(0)
	if x != 16 || y != 16 {
		t.Fatalf("blockOrigin(0) = (%d,%d), want (16,16)", x, y)
	}
	x, y = d.blockOrigin(3)
	if x != 24 || y != 24 {
		t.Fatalf("blockOrigin(3) = (%d,%d), want (24,24)", x, y)
	}
	x, y = d.blockOrigin(4)
	if x != 8 || y != 8 {
		t.Fatalf("blockOrigin(4) = (%d,%d), want (8,8)", x, y)
	}
	if _, stride := d.planeFor(0); stride != 64 {
		t.Fatalf("planeFor(0) stride = %d, want 64", stride)
	}
	if _, stride := d.planeFor(4); stride != 32 {
		t.Fatalf("planeFor(4) stride = %d, want 32", stride)
	}
}
