package mpeg1video

import "math"

// idct8x8 performs the separable 8x8 inverse DCT described in §4.3: a
// column pass followed by a row pass, each using the standard DCT-III
// basis. The column pass divides each coefficient by its
// premultiplierMatrix entry; the row pass applies idctScale and rounds.
//
// The teacher codebase's 4x4 VP8 transform (internal/dsp/transforms.go)
// uses the fast AAN butterfly network with fixed-point multipliers C1/C2;
// an 8x8 IDCT needs an 8-point butterfly instead of VP8's 4-point one, so
// this uses precomputed basis tables rather than re-deriving AAN
// constants for size 8 — but keeps the same two-pass (column, then row),
// fixed-point, round-and-shift structure.
var idctBasis [8][8]float64

func init() {
	for u := 0; u < 8; u++ {
		cu := 1.0
		if u == 0 {
			cu = 1.0 / math.Sqrt2
		}
		for x := 0; x < 8; x++ {
			idctBasis[u][x] = cu * math.Cos((2*float64(x)+1)*float64(u)*math.Pi/16)
		}
	}
}

// idctScale is the 1/4 normalisation of the 2-D 8x8 inverse DCT
// (idctBasis carries only the C(u) factors). With the premultiplier
// divided out in the column pass, an intra DC of value<<8 comes out as
// value, the same result as decodeBlock's (dc + 128) >> 8 DC-only path.
const idctScale = 1.0 / 4.0

// idct8x8 transforms in (64 premultiplied, dequantized coefficients in
// raster order) into out (64 spatial-domain residual/pixel values in
// raster order), including the final rounding shift.
func idct8x8(in *[64]int32, out *[64]int32) {
	var tmp [64]float64
	// Column pass.
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			var sum float64
			for v := 0; v < 8; v++ {
				sum += float64(in[v*8+x]) / float64(premultiplierMatrix[v*8+x]) * idctBasis[v][y]
			}
			tmp[y*8+x] = sum
		}
	}
	// Row pass, folding in the final scale-and-round.
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var sum float64
			for u := 0; u < 8; u++ {
				sum += tmp[y*8+u] * idctBasis[u][x]
			}
			out[y*8+x] = int32(math.Round(sum * idctScale))
		}
	}
}
