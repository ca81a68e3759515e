package mpeg1video

// decodeMacroblock decodes one macroblock_address_increment plus
// macroblock layer (§4.3 "Macroblock layer"), handling skipped
// macroblocks in between, and returns false if the bitstream was
// exhausted partway through (not a stream error by itself: the picture
// has simply ended).
func (d *Decoder) decodeMacroblock() bool {
	increment := 0
	for {
		v, ok := d.readMacroblockAddressIncrement()
		if !ok {
			return false
		}
		if v == macroblockStuffing {
			continue
		}
		if v == macroblockEscape {
			increment += 33
			continue
		}
		increment += int(v)
		break
	}

	if increment > 1 {
		// §4.3/§8: skipped blocks reset DC predictors and, in P
		// pictures, forward motion vectors.
		d.resetDCPredictors()
		if d.pictureType == pictureTypeP {
			d.motionFH, d.motionFV = 0, 0
		}
		for i := 0; i < increment-1; i++ {
			d.mbAddress++
			d.predictSkippedMacroblock()
		}
	}
	d.mbAddress++

	return d.decodeMacroblockLayer()
}

func (d *Decoder) readMacroblockAddressIncrement() (int16, bool) {
	return macroblockAddressIncrementTable.decode(d.Buf.Peek, d.Buf.Skip)
}

// decodeMacroblockLayer reads macroblock_type and its conditional
// fields, then the six 8x8 blocks whose coded_block_pattern bit is set
// (§4.3 "Macroblock layer").
func (d *Decoder) decodeMacroblockLayer() bool {
	if !d.Buf.Has(1) {
		return false
	}
	mbType, ok := macroblockTypeTable[d.pictureType-1].decode(d.Buf.Peek, d.Buf.Skip)
	if !ok {
		return false
	}
	mt := int(mbType)

	isIntra := mt&0x01 != 0
	hasPattern := mt&0x02 != 0
	hasForward := mt&0x08 != 0
	hasQuant := mt&0x10 != 0

	if hasQuant {
		if !d.Buf.Has(5) {
			return false
		}
		d.quantizerScale = int(d.Buf.Read(5))
	}

	if isIntra {
		d.motionFH, d.motionFV = 0, 0
	} else {
		d.resetDCPredictors()
		if hasForward {
			if !d.decodeMotionVectors() {
				return false
			}
			d.copyFromForward(0, 0)
		} else {
			d.motionFH, d.motionFV = 0, 0
			d.copyFromForward(0, 0)
		}
	}

	cbp := 0
	if hasPattern {
		v, ok := codedBlockPatternTable.decode(d.Buf.Peek, d.Buf.Skip)
		if !ok {
			return false
		}
		cbp = int(v)
	} else if isIntra {
		cbp = 0x3F
	}

	for i := 0; i < 6; i++ {
		if cbp&(1<<uint(5-i)) == 0 {
			continue
		}
		if !d.decodeBlock(i, isIntra) {
			return false
		}
	}
	return true
}

// mbPixelOrigin returns the (x, y) pixel origin of the current
// macroblock in luma coordinates.
func (d *Decoder) mbPixelOrigin() (x, y int) {
	mbRow := d.mbAddress / d.mbWidth
	mbCol := d.mbAddress % d.mbWidth
	return mbCol * 16, mbRow * 16
}
