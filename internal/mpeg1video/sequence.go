package mpeg1video

// readSequenceHeader locates and parses the first sequence header in the
// stream (called once, lazily, from Decode).
func (d *Decoder) readSequenceHeader() bool {
	if !d.Buf.Has(8 + 24) {
		return false
	}
	code := d.Buf.FindStartCode(startCodeSequenceHeader)
	if code < 0 {
		return false
	}
	return d.parseSequenceHeaderBody()
}

// parseSequenceHeaderBody parses the fields immediately following a
// consumed sequence-header start code, per §4.3 "Sequence header".
func (d *Decoder) parseSequenceHeaderBody() bool {
	if !d.Buf.Has(12 + 12 + 4 + 4 + 30) {
		return false
	}
	width := int(d.Buf.Read(12))
	height := int(d.Buf.Read(12))
	d.Buf.Skip(4) // aspect ratio
	frIdx := int(d.Buf.Read(4))
	d.Buf.Skip(18 + 1 + 10 + 1) // bit_rate(18) marker(1) vbv_buffer_size(10) constrained(1)

	d.frameRate = frameRateTable[frIdx&0xF]

	d.intraQuant = defaultIntraQuantMatrix
	d.nonIntraQuant = defaultNonIntraQuantMatrix

	if !d.Buf.Has(1) {
		return false
	}
	if d.Buf.Read(1) != 0 { // load_intra_quantizer_matrix
		for i := 0; i < 64; i++ {
			d.intraQuant[i] = uint8(d.Buf.Read(8))
		}
	}
	if !d.Buf.Has(1) {
		return false
	}
	if d.Buf.Read(1) != 0 { // load_non_intra_quantizer_matrix
		for i := 0; i < 64; i++ {
			d.nonIntraQuant[i] = uint8(d.Buf.Read(8))
		}
	}

	codedWidth := roundUp16(width)
	codedHeight := roundUp16(height)
	if codedWidth != d.codedWidth || codedHeight != d.codedHeight {
		d.reallocate(codedWidth, codedHeight)
	}
	d.width, d.height = width, height
	d.hasSequenceHeader = true
	return true
}

// reallocate (re)sizes the reference and current planar buffers for the
// given coded dimensions (§4.3 "On width/height change").
func (d *Decoder) reallocate(codedWidth, codedHeight int) {
	d.codedWidth, d.codedHeight = codedWidth, codedHeight
	d.mbWidth = codedWidth / 16
	d.mbHeight = codedHeight / 16

	ySize := codedWidth * codedHeight
	cSize := (codedWidth / 2) * (codedHeight / 2)

	d.currentY = make([]byte, ySize)
	d.currentCb = make([]byte, cSize)
	d.currentCr = make([]byte, cSize)
	d.forwardY = make([]byte, ySize)
	d.forwardCb = make([]byte, cSize)
	d.forwardCr = make([]byte, cSize)
}
