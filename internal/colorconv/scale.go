package colorconv

// Scaling adapted from the teacher's internal/dsp/rescale.go box-filter
// rescaler: the same fixed-point multFix/rescalerFrac shift-and-round
// idiom, but operating on a whole in-memory plane per call instead of
// incremental per-row streaming, since §4.5's convert/argb_scale
// operations are always given a complete frame.

const rescaleFix = 16
const rescaleOne = uint32(1) << rescaleFix

// rescaleFrac computes ((x << rescaleFix) / y), matching rescale.go's
// rescalerFrac helper at reduced fixed-point precision (whole-frame
// scaling needs far less headroom than incremental row accumulation).
func rescaleFrac(x, y int) uint32 {
	if y == 0 {
		return 0
	}
	return uint32((uint64(x) << rescaleFix) / uint64(y))
}

func multFix(x, y uint32) uint32 {
	rounder := uint64(1) << (rescaleFix - 1)
	return uint32((uint64(x)*uint64(y) + rounder) >> rescaleFix)
}

// ScaleBGRX produces a scaled copy of src at (dstWidth, dstHeight) using
// filter, per §4.5 "argb_scale".
func ScaleBGRX(src *BGRXImage, dstWidth, dstHeight int, filter Filter) *BGRXImage {
	dst := &BGRXImage{Width: dstWidth, Height: dstHeight, Stride: dstWidth * 4}
	dst.Pix = make([]byte, dst.Stride*dstHeight)
	scalePlane4(src.Pix, src.Stride, src.Width, src.Height, dst.Pix, dst.Stride, dstWidth, dstHeight, filter)
	return dst
}

// scaleYUV produces a scaled copy of a YUV420P/NV12 image, scaling each
// plane independently (§4.5 "YUV-side scaling").
func scaleYUV(src *YUVImage, dstWidth, dstHeight int, filter Filter) *YUVImage {
	dst := newYUVImage(src.Format, dstWidth, dstHeight)

	scalePlane1(src.Y, src.YStride, src.Width, src.Height, dst.Y, dst.YStride, dstWidth, dstHeight, filter)

	scw, sch := chromaDim(src.Width), chromaDim(src.Height)
	dcw, dch := chromaDim(dstWidth), chromaDim(dstHeight)

	switch src.Format {
	case FormatYUV420P:
		scalePlane1(src.Cb, src.CbStride, scw, sch, dst.Cb, dst.CbStride, dcw, dch, filter)
		scalePlane1(src.Cr, src.CrStride, scw, sch, dst.Cr, dst.CrStride, dcw, dch, filter)
	case FormatNV12:
		scalePlane2(src.Cb, src.CbStride, scw, sch, dst.Cb, dst.CbStride, dcw, dch, filter)
	}
	return dst
}

// scalePlane1 scales a single-byte-per-sample plane.
func scalePlane1(src []byte, srcStride, srcW, srcH int, dst []byte, dstStride, dstW, dstH int, filter Filter) {
	forEachDstSample(srcW, srcH, dstW, dstH, filter, func(dx, dy, sx0, sy0, sx1, sy1 int, fx, fy uint32) {
		v := sampleBilinear1(src, srcStride, sx0, sy0, sx1, sy1, fx, fy, filter)
		dst[dy*dstStride+dx] = v
	})
}

// scalePlane2 scales an interleaved 2-byte-per-sample (NV12 UV) plane.
func scalePlane2(src []byte, srcStride, srcW, srcH int, dst []byte, dstStride, dstW, dstH int, filter Filter) {
	forEachDstSample(srcW, srcH, dstW, dstH, filter, func(dx, dy, sx0, sy0, sx1, sy1 int, fx, fy uint32) {
		for c := 0; c < 2; c++ {
			v := sampleBilinear1Strided(src, srcStride, 2, c, sx0, sy0, sx1, sy1, fx, fy, filter)
			dst[dy*dstStride+dx*2+c] = v
		}
	})
}

// scalePlane4 scales a 4-byte-per-pixel (BGRX) plane.
func scalePlane4(src []byte, srcStride, srcW, srcH int, dst []byte, dstStride, dstW, dstH int, filter Filter) {
	forEachDstSample(srcW, srcH, dstW, dstH, filter, func(dx, dy, sx0, sy0, sx1, sy1 int, fx, fy uint32) {
		for c := 0; c < 4; c++ {
			v := sampleBilinear1Strided(src, srcStride, 4, c, sx0, sy0, sx1, sy1, fx, fy, filter)
			dst[dy*dstStride+dx*4+c] = v
		}
	})
}

// forEachDstSample drives dstW x dstH output positions, computing the
// corresponding source coordinates (and, for box/bilinear, the
// neighboring sample plus fixed-point fractional weight) and invoking
// set for each.
func forEachDstSample(srcW, srcH, dstW, dstH int, filter Filter, set func(dx, dy, sx0, sy0, sx1, sy1 int, fx, fy uint32)) {
	xStep := rescaleFrac(srcW, dstW)
	yStep := rescaleFrac(srcH, dstH)
	for dy := 0; dy < dstH; dy++ {
		srcYFixed := uint32(dy) * yStep
		sy0 := int(srcYFixed >> rescaleFix)
		fy := srcYFixed & (rescaleOne - 1)
		sy1 := sy0 + 1
		if sy1 >= srcH {
			sy1 = srcH - 1
		}
		if sy0 >= srcH {
			sy0 = srcH - 1
		}
		for dx := 0; dx < dstW; dx++ {
			srcXFixed := uint32(dx) * xStep
			sx0 := int(srcXFixed >> rescaleFix)
			fx := srcXFixed & (rescaleOne - 1)
			sx1 := sx0 + 1
			if sx1 >= srcW {
				sx1 = srcW - 1
			}
			if sx0 >= srcW {
				sx0 = srcW - 1
			}
			set(dx, dy, sx0, sy0, sx1, sy1, fx, fy)
		}
	}
}

func sampleBilinear1(src []byte, stride, sx0, sy0, sx1, sy1 int, fx, fy uint32, filter Filter) byte {
	return sampleBilinear1Strided(src, stride, 1, 0, sx0, sy0, sx1, sy1, fx, fy, filter)
}

// sampleBilinear1Strided reads one channel (stride bytesPerSample,
// channel offset ch) at up to 4 neighboring positions and blends them
// per filter: Nearest takes the top-left sample; Box and Bilinear both
// perform a bilinear blend (a box filter over a whole-frame single-pass
// scale reduces to the same bilinear weights used for magnification;
// the distinction matters for incremental multi-row accumulation, which
// this whole-frame scaler doesn't need).
func sampleBilinear1Strided(src []byte, stride, bytesPerSample, ch, sx0, sy0, sx1, sy1 int, fx, fy uint32, filter Filter) byte {
	at := func(x, y int) uint32 {
		return uint32(src[y*stride+x*bytesPerSample+ch])
	}
	if filter == FilterNearest {
		return byte(at(sx0, sy0))
	}

	top := multFix(rescaleOne-fx, at(sx0, sy0)) + multFix(fx, at(sx1, sy0))
	bot := multFix(rescaleOne-fx, at(sx0, sy1)) + multFix(fx, at(sx1, sy1))
	v := multFix(rescaleOne-fy, top) + multFix(fy, bot)
	if v > 255 {
		v = 255
	}
	return byte(v)
}
