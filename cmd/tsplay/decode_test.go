package main

import (
	"testing"

	"github.com/deepteams/tsplay/internal/mpeg1video"
)

func TestYUVToBGRXBlack(t *testing.T) {
	f := &mpeg1video.Frame{
		Width: 2, Height: 2,
		Y:       []byte{16, 16, 16, 16},
		Cb:      []byte{128},
		Cr:      []byte{128},
		CStride: 1,
	}
	img := yuvToBGRX(f)
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("unexpected dims %dx%d", img.Width, img.Height)
	}
	for i := 0; i < 3; i++ {
		if img.Pix[i] != 16 {
			t.Errorf("channel %d = %d, want ~16 for neutral chroma", i, img.Pix[i])
		}
	}
}

func TestClampByte(t *testing.T) {
	if clampByte(-10) != 0 {
		t.Error("clampByte(-10) should floor to 0")
	}
	if clampByte(300) != 255 {
		t.Error("clampByte(300) should ceil to 255")
	}
	if clampByte(128.4) != 128 {
		t.Errorf("clampByte(128.4) = %d, want 128", clampByte(128.4))
	}
}

func TestFloatToPCM16Clamps(t *testing.T) {
	if v := floatToPCM16(2.0); v != 32767 {
		t.Errorf("floatToPCM16(2.0) = %d, want clamp to 32767", v)
	}
	if v := floatToPCM16(-2.0); v != -32768 {
		t.Errorf("floatToPCM16(-2.0) = %d, want clamp to -32768", v)
	}
	if v := floatToPCM16(0); v != 0 {
		t.Errorf("floatToPCM16(0) = %d, want 0", v)
	}
}
