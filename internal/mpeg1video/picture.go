package mpeg1video

// decodePicture parses the picture layer (consumed start code already
// matched startCodePicture), decodes all of its slices, and emits the
// frame on success. Returns true iff a full picture was produced.
func (d *Decoder) decodePicture() bool {
	if !d.Buf.Has(10 + 3 + 16) {
		return false
	}
	d.Buf.Skip(10) // temporal_reference
	pictureType := int(d.Buf.Read(3))
	d.Buf.Skip(16) // vbv_delay

	d.pictureType = pictureType

	switch pictureType {
	case pictureTypeI:
		// no forward motion parameters
	case pictureTypeP:
		if !d.Buf.Has(1 + 3) {
			return false
		}
		d.fullPelForward = d.Buf.Read(1) != 0
		fCode := int(d.Buf.Read(3))
		if fCode == 0 {
			// §4.3/§7: zero forward f-code abandons the picture
			// without corrupting reference state.
			return false
		}
		d.forwardFCode = fCode
		d.forwardRSize = fCode - 1
		d.forwardF = 1 << uint(d.forwardRSize)
	default:
		// B/D pictures and unknown types are discarded (§4.3).
		return false
	}

	d.resetPlaneForDecode()

	if !d.skipExtensionAndUserData() {
		return false
	}

	decodedAny := false
	for {
		if !d.Buf.Has(24) {
			break
		}
		if !d.Buf.NextBytesAreStartCode() {
			break
		}
		saved := d.Buf.ReadBits()
		c := d.Buf.FindNextStartCode()
		if c < startCodeSliceMin || c > startCodeSliceMax {
			d.Buf.SetReadBits(saved)
			break
		}
		if !d.decodeSlice() {
			break
		}
		decodedAny = true
	}
	if !decodedAny {
		return false
	}

	frame := &Frame{
		Width:   d.codedWidth,
		Height:  d.codedHeight,
		Y:       append([]byte(nil), d.currentY...),
		Cb:      append([]byte(nil), d.currentCb...),
		Cr:      append([]byte(nil), d.currentCr...),
		CStride: d.codedWidth / 2,
		PTS:     d.currentPTS,
	}
	d.LastFrame = frame

	if pictureType == pictureTypeI || pictureType == pictureTypeP {
		d.swapReferences()
	}
	return true
}

// resetPlaneForDecode seeds the working "current" planes from the
// forward reference for P pictures so that skipped macroblocks (which
// never write any residual) still carry the previous frame's content.
func (d *Decoder) resetPlaneForDecode() {
	if d.pictureType == pictureTypeP {
		copy(d.currentY, d.forwardY)
		copy(d.currentCb, d.forwardCb)
		copy(d.currentCr, d.forwardCr)
	}
}

// swapReferences exchanges the current and forward buffer handles after
// a reference picture (I or P) finishes decoding, per §3/§8.
func (d *Decoder) swapReferences() {
	d.currentY, d.forwardY = d.forwardY, d.currentY
	d.currentCb, d.forwardCb = d.forwardCb, d.currentCb
	d.currentCr, d.forwardCr = d.forwardCr, d.currentCr
}

// skipExtensionAndUserData consumes any Extension/UserData start codes
// immediately following the picture header (§4.3).
func (d *Decoder) skipExtensionAndUserData() bool {
	for {
		if !d.Buf.Has(24) {
			return false
		}
		if !d.Buf.NextBytesAreStartCode() {
			return true
		}
		saved := d.Buf.ReadBits()
		c := d.Buf.FindNextStartCode()
		if c != startCodeExtension && c != startCodeUserData {
			d.Buf.SetReadBits(saved)
			return true
		}
		// Consumed the 4-byte prefix; skip to just before the next
		// start code so we don't have to parse extension contents.
		if !d.skipToNextStartCode() {
			return false
		}
	}
}

// skipToNextStartCode advances the read cursor to just before the next
// start code, without consuming it, by repeatedly peeking byte-aligned.
func (d *Decoder) skipToNextStartCode() bool {
	for {
		if !d.Buf.Has(24) {
			return false
		}
		if d.Buf.NextBytesAreStartCode() {
			return true
		}
		d.Buf.Skip(8)
	}
}

// decodeSlice parses and decodes one slice: its header (§3 "Per-slice")
// followed by macroblocks until the next start code is byte-aligned.
func (d *Decoder) decodeSlice() bool {
	// The slice_vertical_position (1..175) was the code byte consumed by
	// FindNextStartCode; reconstruct it by re-reading the byte just
	// before the current position.
	pos := d.Buf.ReadBits()
	if pos < 8 {
		return false
	}
	d.Buf.SetReadBits(pos - 8)
	sliceVerticalPosition := int(d.Buf.Read(8))

	if !d.Buf.Has(5) {
		return false
	}
	d.quantizerScale = int(d.Buf.Read(5))

	for d.Buf.Has(1) && d.Buf.Peek(1) == 1 {
		d.Buf.Skip(1)
		if !d.Buf.Has(8) {
			return false
		}
		d.Buf.Skip(8) // extra_bit_slice payload byte
	}
	if d.Buf.Has(1) {
		d.Buf.Skip(1) // terminating extra_bit_slice == 0
	}

	d.mbAddress = (sliceVerticalPosition-1)*d.mbWidth - 1
	d.motionFH, d.motionFV = 0, 0
	d.resetDCPredictors()

	for {
		if !d.Buf.Has(8) {
			return true
		}
		if d.Buf.ReadBits()%8 == 0 && d.Buf.Has(24) && d.Buf.NextBytesAreStartCode() {
			return true
		}
		if !d.decodeMacroblock() {
			return true
		}
	}
}

// resetDCPredictors resets the three DC predictors to 128, per §3/§8
// ("DC predictors are 128 at the start of each slice").
func (d *Decoder) resetDCPredictors() {
	d.dcPredictorY = 128
	d.dcPredictorCb = 128
	d.dcPredictorCr = 128
}
