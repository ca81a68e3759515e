package colorconv

// BT.601 full-range fixed-point coefficients, Q8 (>>8 after multiply),
// matching the constant-multiplier style the teacher uses throughout
// internal/dsp (e.g. predict_lossy.go's avg3/avg2 shift-and-round
// helpers) rather than floating point. Full range (no luma pedestal,
// full-swing chroma) per §8's quantified conversion scenario: black ->
// Y=0, and BGRX blue (255,0,0,0) -> Y≈29, Cb≈255, Cr≈107.
const (
	yR, yG, yB = 77, 150, 29

	uR, uG, uB = -43, -85, 128
	uAdd       = 128 << 8

	vR, vG, vB = 128, -107, -21
	vAdd       = 128 << 8
)

func bgrxToY(b, g, r int) uint8 {
	v := (yR*r + yG*g + yB*b + 128) >> 8
	return clamp255(v)
}

func bgrxToU(b, g, r int) uint8 {
	v := (uR*r + uG*g + uB*b + uAdd + 128) >> 8
	return clamp255(v)
}

func bgrxToV(b, g, r int) uint8 {
	v := (vR*r + vG*g + vB*b + vAdd + 128) >> 8
	return clamp255(v)
}

func clamp255(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Convert produces a YUV image of the requested format from src, per
// §4.5 "convert(image)". If dstWidth/dstHeight are non-zero and differ
// from src's dimensions, scaling is applied using filter:
//   - YUV420P: convert at source resolution, then scale each plane
//     independently ("YUV-side scaling").
//   - NV12: scale the BGRX source first, then convert ("RGB-side
//     scaling").
func Convert(src *BGRXImage, format Format, dstWidth, dstHeight int, filter Filter) *YUVImage {
	scale := dstWidth != 0 && dstHeight != 0 && (dstWidth != src.Width || dstHeight != src.Height)

	if format == FormatNV12 && scale {
		src = ScaleBGRX(src, dstWidth, dstHeight, filter)
	}

	img := convertAtSourceRes(src, format)

	if format == FormatYUV420P && scale {
		img = scaleYUV(img, dstWidth, dstHeight, filter)
	}
	return img
}

// convertAtSourceRes converts src to format at src's own resolution.
func convertAtSourceRes(src *BGRXImage, format Format) *YUVImage {
	img := newYUVImage(format, src.Width, src.Height)

	for y := 0; y < src.Height; y++ {
		srcRow := src.Pix[y*src.Stride:]
		yRow := img.Y[y*img.YStride:]
		for x := 0; x < src.Width; x++ {
			p := srcRow[x*4:]
			b, g, r := int(p[0]), int(p[1]), int(p[2])
			yRow[x] = bgrxToY(b, g, r)
		}
	}

	cw, ch := chromaDim(src.Width), chromaDim(src.Height)
	for cy := 0; cy < ch; cy++ {
		sy := cy * 2
		if sy >= src.Height {
			sy = src.Height - 1
		}
		srcRow := src.Pix[sy*src.Stride:]
		switch format {
		case FormatYUV420P:
			cbRow := img.Cb[cy*img.CbStride:]
			crRow := img.Cr[cy*img.CrStride:]
			for cx := 0; cx < cw; cx++ {
				sx := cx * 2
				if sx >= src.Width {
					sx = src.Width - 1
				}
				p := srcRow[sx*4:]
				b, g, r := int(p[0]), int(p[1]), int(p[2])
				cbRow[cx] = bgrxToU(b, g, r)
				crRow[cx] = bgrxToV(b, g, r)
			}
		case FormatNV12:
			uvRow := img.Cb[cy*img.CbStride:]
			for cx := 0; cx < cw; cx++ {
				sx := cx * 2
				if sx >= src.Width {
					sx = src.Width - 1
				}
				p := srcRow[sx*4:]
				b, g, r := int(p[0]), int(p[1]), int(p[2])
				uvRow[cx*2] = bgrxToU(b, g, r)
				uvRow[cx*2+1] = bgrxToV(b, g, r)
			}
		}
	}
	return img
}

// Gray produces a 32-bit packed gray image of the same dimensions and
// stride as src, per §4.5 "argb_to_gray(image)": every BGRX pixel's
// luma value replicated across B, G, and R, with X left untouched.
func Gray(src *BGRXImage) *BGRXImage {
	out := &BGRXImage{Width: src.Width, Height: src.Height, Stride: src.Stride}
	out.Pix = make([]byte, src.Stride*src.Height)
	for y := 0; y < src.Height; y++ {
		srcRow := src.Pix[y*src.Stride:]
		dstRow := out.Pix[y*out.Stride:]
		for x := 0; x < src.Width; x++ {
			p := srcRow[x*4:]
			b, g, r := int(p[0]), int(p[1]), int(p[2])
			v := bgrxToY(b, g, r)
			dst := dstRow[x*4:]
			dst[0], dst[1], dst[2], dst[3] = v, v, v, p[3]
		}
	}
	return out
}
