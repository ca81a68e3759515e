package mpeg1video

// decodeMotionVectors reads one forward motion vector delta pair and
// accumulates it into the running motion vector state, per §4.3 "Motion
// vectors".
func (d *Decoder) decodeMotionVectors() bool {
	dh, ok := d.decodeMotionComponent()
	if !ok {
		return false
	}
	dv, ok := d.decodeMotionComponent()
	if !ok {
		return false
	}
	d.motionFH = wrapMotion(d.motionFH+dh, d.forwardF)
	d.motionFV = wrapMotion(d.motionFV+dv, d.forwardF)
	return true
}

// decodeMotionComponent reads one motion_code (+ residual bits if
// forwardF != 1) and returns the signed delta, before full-pel scaling.
func (d *Decoder) decodeMotionComponent() (int, bool) {
	code, ok := motionTable.decode(d.Buf.Peek, d.Buf.Skip)
	if !ok {
		return 0, false
	}
	c := int(code)
	if c == 0 || d.forwardF == 1 {
		return c, true
	}
	if !d.Buf.Has(d.forwardRSize) {
		return 0, false
	}
	r := int(d.Buf.Read(d.forwardRSize))
	mag := (abs(c)-1)<<uint(d.forwardRSize) + r + 1
	if c < 0 {
		mag = -mag
	}
	return mag, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// wrapMotion accumulates a motion-vector component modulo forwardF<<5,
// keeping the result within [-forwardF*16, forwardF*16-1] per §4.3.
func wrapMotion(v, forwardF int) int {
	r := forwardF << 5
	low := -forwardF * 16
	high := forwardF*16 - 1
	for v < low {
		v += r
	}
	for v > high {
		v -= r
	}
	return v
}

// copyFromForward performs motion-compensated prediction of the current
// macroblock from the forward reference, using the accumulated motion
// vector plus (extraH, extraV) (always 0,0 here; kept as parameters so
// skipped-macroblock prediction, which reuses this with the carried-over
// vector, shares the same code path).
func (d *Decoder) copyFromForward(extraH, extraV int) {
	mh := d.motionFH + extraH
	mv := d.motionFV + extraV
	if d.fullPelForward {
		mh <<= 1
		mv <<= 1
	}

	x, y := d.mbPixelOrigin()
	motionCompensateBlock(d.currentY, d.forwardY, d.codedWidth, d.codedHeight, x, y, 16, 16, mh, mv)

	cx, cy := x/2, y/2
	cw, ch := d.codedWidth/2, d.codedHeight/2
	motionCompensateBlock(d.currentCb, d.forwardCb, cw, ch, cx, cy, 8, 8, mh/2, mv/2)
	motionCompensateBlock(d.currentCr, d.forwardCr, cw, ch, cx, cy, 8, 8, mh/2, mv/2)
}

// predictSkippedMacroblock applies motion compensation for a macroblock
// that carries no residual at all (§4.3 "skipped-block handling"): P
// pictures copy from the forward reference at the current forward motion
// vector; the macroblock is otherwise left as whatever resetPlaneForDecode
// seeded it with (the co-located forward-reference pixels), which for I
// pictures is correct by construction since skips cannot occur there.
func (d *Decoder) predictSkippedMacroblock() {
	if d.pictureType != pictureTypeP {
		return
	}
	d.copyFromForward(0, 0)
}

// motionCompensateBlock copies a w x h block from src at (x+ih, y+iv)
// (integer motion) with optional half-pel bilinear averaging, into dst at
// (x, y). planeW/planeH bound the valid source region; motion vectors
// referencing outside it are clamped to the edge.
func motionCompensateBlock(dst, src []byte, planeW, planeH, x, y, w, h, mh, mv int) {
	ih := mh >> 1
	iv := mv >> 1
	oddH := mh & 1
	oddV := mv & 1

	for row := 0; row < h; row++ {
		sy := clampInt(y+row+iv, 0, planeH-1)
		sy1 := clampInt(y+row+iv+1, 0, planeH-1)
		dstOff := (y+row)*planeW + x
		for col := 0; col < w; col++ {
			sx := clampInt(x+col+ih, 0, planeW-1)
			sx1 := clampInt(x+col+ih+1, 0, planeW-1)

			var v int
			switch {
			case oddH == 0 && oddV == 0:
				v = int(src[sy*planeW+sx])
			case oddH == 1 && oddV == 0:
				v = (int(src[sy*planeW+sx]) + int(src[sy*planeW+sx1]) + 1) >> 1
			case oddH == 0 && oddV == 1:
				v = (int(src[sy*planeW+sx]) + int(src[sy1*planeW+sx]) + 1) >> 1
			default:
				v = (int(src[sy*planeW+sx]) + int(src[sy*planeW+sx1]) +
					int(src[sy1*planeW+sx]) + int(src[sy1*planeW+sx1]) + 2) >> 2
			}
			dst[dstOff+col] = byte(v)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
