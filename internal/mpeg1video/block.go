package mpeg1video

// decodeBlock decodes one 8x8 block (index 0-3 luma, 4 Cb, 5 Cr),
// dequantizes and premultiplies its coefficients, runs the inverse DCT,
// and writes the result into the appropriate current plane, per §4.3
// "Block decode".
func (d *Decoder) decodeBlock(index int, isIntra bool) bool {
	for i := range d.block {
		d.block[i] = 0
	}

	n := 0
	if isIntra {
		dc, ok := d.decodeDCDifferential(index)
		if !ok {
			return false
		}
		pred := d.dcPredictorFor(index)
		newPred := *pred + dc
		*pred = newPred
		d.block[0] = newPred << 8
		n = 1
	}

	quant := &d.nonIntraQuant
	if isIntra {
		quant = &d.intraQuant
	}

	onlyDC := isIntra
	for {
		run, level, isEOB, ok := d.decodeACCoefficient(n)
		if !ok {
			return false
		}
		if isEOB {
			break
		}
		n += run
		if n >= 64 {
			return false
		}
		dezig := int(zigZag[n])
		level = dequantize(level, d.quantizerScale, int(quant[n]))
		d.block[dezig] = level * premultiplierMatrix[dezig]
		n++
		onlyDC = false
		if n >= 64 {
			break
		}
	}

	x, y := d.blockOrigin(index)
	plane, stride := d.planeFor(index)
	if onlyDC {
		// DC-only optimization per §4.3: (dc + 128) >> 8 directly.
		dc := int(d.block[0]+128) >> 8
		if isIntra {
			fillBlockCopy(plane, stride, x, y, byte(clamp255(dc)))
		} else {
			fillBlockAdd(plane, stride, x, y, dc)
		}
	} else {
		var spatial [64]int32
		idct8x8(&d.block, &spatial)
		if isIntra {
			writeBlockCopy(plane, stride, x, y, &spatial)
		} else {
			writeBlockAdd(plane, stride, x, y, &spatial)
		}
	}
	return true
}

// dcPredictorFor returns the running DC predictor for the plane that
// block index belongs to (Y for 0-3, Cb for 4, Cr for 5).
func (d *Decoder) dcPredictorFor(index int) *int32 {
	switch {
	case index < 4:
		return &d.dcPredictorY
	case index == 4:
		return &d.dcPredictorCb
	default:
		return &d.dcPredictorCr
	}
}

func (d *Decoder) decodeDCDifferential(index int) (int32, bool) {
	table := dctDCSizeLuminanceTable
	if index >= 4 {
		table = dctDCSizeChrominanceTable
	}
	size, ok := table.decode(d.Buf.Peek, d.Buf.Skip)
	if !ok {
		return 0, false
	}
	s := int(size)
	if s == 0 {
		return 0, true
	}
	if !d.Buf.Has(s) {
		return 0, false
	}
	v := int32(d.Buf.Read(s))
	// Sign-extend: if the high bit is clear, the value is negative,
	// per the two's-complement-style differential coding in §4.3.
	half := int32(1) << uint(s-1)
	if v < half {
		v = v - (1<<uint(s) - 1)
	}
	return v, true
}

// decodeACCoefficient decodes one (run, level) pair from the current bit
// position, or reports end-of-block. n is the coefficient index already
// reached (used only to distinguish "first coefficient" EOB semantics
// noted in §4.3, where DCT_COEFF's (0,1) code after the very first
// coefficient means EOB rather than (run=0, level=1)).
func (d *Decoder) decodeACCoefficient(n int) (run int, level int32, isEOB bool, ok bool) {
	if !d.Buf.Has(2) {
		return 0, 0, false, false
	}
	// End-of-block: the reserved code "10" at the coefficient-table root
	// when n > 0 (for n == 0, i.e. non-intra block with no DC, a real
	// first-coefficient decode always precedes any EOB check).
	if n > 0 && d.Buf.Peek(2) == 0b10 {
		d.Buf.Skip(2)
		return 0, 0, true, true
	}

	// Escape code: the 6-bit code 000001, followed by a 6-bit run and an
	// 8-bit level that is extended as below (§4.3's "0xFFFF" escape).
	if d.Buf.Peek(6) == 0b000001 {
		d.Buf.Skip(6)
		if !d.Buf.Has(6 + 8) {
			return 0, 0, false, false
		}
		run = int(d.Buf.Read(6))
		lvl := int(d.Buf.Read(8))
		switch lvl {
		case 0:
			if !d.Buf.Has(8) {
				return 0, 0, false, false
			}
			lvl = int(d.Buf.Read(8))
		case 128:
			if !d.Buf.Has(8) {
				return 0, 0, false, false
			}
			lvl = int(d.Buf.Read(8)) - 256
		default:
			if lvl > 127 {
				lvl -= 256
			}
		}
		return run, int32(lvl), false, true
	}

	e, found := matchDCTCoeff(d.Buf.Peek)
	if !found {
		return 0, 0, false, false
	}
	d.Buf.Skip(int(e.bits))
	if !d.Buf.Has(1) {
		return 0, 0, false, false
	}
	sign := d.Buf.Read(1)
	lvl := int32(e.level)
	if sign != 0 {
		lvl = -lvl
	}
	return int(e.run), lvl, false, true
}

// matchDCTCoeff finds the dctCoeffTable entry matching the bits at the
// current position without consuming them.
func matchDCTCoeff(peek func(int) uint32) (dctCoeffEntry, bool) {
	maxBits := 0
	for _, e := range dctCoeffTable {
		if int(e.bits) > maxBits {
			maxBits = int(e.bits)
		}
	}
	for n := 1; n <= maxBits; n++ {
		v := uint16(peek(n))
		for _, e := range dctCoeffTable {
			if int(e.bits) == n && e.code == v {
				return e, true
			}
		}
	}
	return dctCoeffEntry{}, false
}

// dequantize implements §4.3's dequantization formula: scale, multiply by
// quantizer_scale and the quant matrix entry, clamp, then "oddify".
func dequantize(level int32, quantizerScale, quantMatrixEntry int) int32 {
	var signCorrection int32
	if level < 0 {
		signCorrection = -1
	} else if level > 0 {
		signCorrection = 1
	}
	v := (level*2 + signCorrection) * int32(quantizerScale) * int32(quantMatrixEntry) >> 4
	if v > 2047 {
		v = 2047
	} else if v < -2048 {
		v = -2048
	}
	if v != 0 && v%2 == 0 {
		if v > 0 {
			v--
		} else {
			v++
		}
	}
	return v
}

func clamp255(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// blockOrigin returns the pixel origin, within the plane returned by
// planeFor, of the given block index.
func (d *Decoder) blockOrigin(index int) (x, y int) {
	mbX, mbY := d.mbPixelOrigin()
	switch index {
	case 0:
		return mbX, mbY
	case 1:
		return mbX + 8, mbY
	case 2:
		return mbX, mbY + 8
	case 3:
		return mbX + 8, mbY + 8
	case 4, 5:
		return mbX / 2, mbY / 2
	}
	return mbX, mbY
}

func (d *Decoder) planeFor(index int) (plane []byte, stride int) {
	switch {
	case index < 4:
		return d.currentY, d.codedWidth
	case index == 4:
		return d.currentCb, d.codedWidth / 2
	default:
		return d.currentCr, d.codedWidth / 2
	}
}

// fillBlockCopy writes a constant DC value into an 8x8 intra block
// ("CopyValue" in §4.3's terminology).
func fillBlockCopy(plane []byte, stride, x, y int, v byte) {
	for row := 0; row < 8; row++ {
		off := (y+row)*stride + x
		for col := 0; col < 8; col++ {
			plane[off+col] = v
		}
	}
}

// fillBlockAdd adds a constant DC value to an existing (motion-predicted)
// 8x8 block ("AddValue").
func fillBlockAdd(plane []byte, stride, x, y, dc int) {
	for row := 0; row < 8; row++ {
		off := (y+row)*stride + x
		for col := 0; col < 8; col++ {
			plane[off+col] = byte(clamp255(int(plane[off+col]) + dc))
		}
	}
}

// writeBlockCopy overwrites an 8x8 intra block with the IDCT output
// ("CopyBlock").
func writeBlockCopy(plane []byte, stride, x, y int, spatial *[64]int32) {
	for row := 0; row < 8; row++ {
		off := (y+row)*stride + x
		for col := 0; col < 8; col++ {
			plane[off+col] = byte(clamp255(int(spatial[row*8+col])))
		}
	}
}

// writeBlockAdd adds the IDCT residual output to the existing
// (motion-predicted) 8x8 block ("AddBlock").
func writeBlockAdd(plane []byte, stride, x, y int, spatial *[64]int32) {
	for row := 0; row < 8; row++ {
		off := (y+row)*stride + x
		for col := 0; col < 8; col++ {
			plane[off+col] = byte(clamp255(int(plane[off+col]) + int(spatial[row*8+col])))
		}
	}
}
