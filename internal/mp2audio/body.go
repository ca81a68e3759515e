package mp2audio

// decodeFrameBody decodes the bit allocation, scale factors, and sample
// data following a validated header, running the synthesis filterbank
// as it goes and appending PCM samples to left/right (§4.4 "Sample
// decoding", "Synthesis").
func (d *Decoder) decodeFrameBody(h header, left, right *[]float32) bool {
	bits := allocationBits(h.tab3)

	allocation := [2][32]int{}
	for sb := 0; sb < h.bound; sb++ {
		for ch := 0; ch < h.channels; ch++ {
			if !d.Buf.Has(bits) {
				return false
			}
			allocation[ch][sb] = int(d.Buf.Read(bits))
		}
	}
	for sb := h.bound; sb < h.subbandLimit; sb++ {
		if !d.Buf.Has(bits) {
			return false
		}
		v := int(d.Buf.Read(bits))
		for ch := 0; ch < h.channels; ch++ {
			allocation[ch][sb] = v
		}
	}

	var sfsi [2][32]int
	for sb := 0; sb < h.subbandLimit; sb++ {
		for ch := 0; ch < h.channels; ch++ {
			if allocation[ch][sb] == 0 {
				continue
			}
			if !d.Buf.Has(2) {
				return false
			}
			sfsi[ch][sb] = int(d.Buf.Read(2))
		}
	}

	var scaleFactors [2][32][3]int32
	for sb := 0; sb < h.subbandLimit; sb++ {
		for ch := 0; ch < h.channels; ch++ {
			if allocation[ch][sb] == 0 {
				continue
			}
			sf, ok := d.decodeScaleFactors(sfsi[ch][sb])
			if !ok {
				return false
			}
			scaleFactors[ch][sb] = sf
		}
	}

	var samples [2][32][3]int32
	for part := 0; part < 3; part++ {
		for granule := 0; granule < 4; granule++ {
			for sb := 0; sb < h.subbandLimit; sb++ {
				for ch := 0; ch < h.channels; ch++ {
					if ch > 0 && sb >= h.bound {
						break
					}
					code := allocation[ch][sb]
					if code == 0 {
						samples[ch][sb] = [3]int32{0, 0, 0}
						continue
					}
					qt := quantTables[h.tab3][code-1]
					vals, ok := d.readSamples(qt)
					if !ok {
						return false
					}
					sf := scaleFactors[ch][sb][part]
					for i := range vals {
						vals[i] = requantize(vals[i], qt, sf)
					}
					samples[ch][sb] = vals
				}
				if h.channels == 1 {
					samples[1][sb] = samples[0][sb]
				} else if sb >= h.bound {
					// joint-stereo subbands above the bound share a
					// single decoded sample set (§4.4 "Mode extension").
					samples[1][sb] = samples[0][sb]
				}
			}

			for s := 0; s < 3; s++ {
				for ch := 0; ch < 2; ch++ {
					in := make([]int32, h.subbandLimit)
					for sb := 0; sb < h.subbandLimit; sb++ {
						in[sb] = samples[ch][sb][s]
					}
					out := d.synthesize(ch, in)
					if ch == 0 {
						*left = append(*left, out...)
					} else {
						*right = append(*right, out...)
					}
				}
			}
		}
	}
	return true
}

// decodeScaleFactors reads 1-3 6-bit scale-factor codes according to
// sfsi and reconstructs the three per-part scale factors, per §4.4
// "Scale factors".
func (d *Decoder) decodeScaleFactors(sfsi int) ([3]int32, bool) {
	var raw [3]int
	switch sfsi {
	case 0:
		if !d.Buf.Has(18) {
			return [3]int32{}, false
		}
		raw[0] = int(d.Buf.Read(6))
		raw[1] = int(d.Buf.Read(6))
		raw[2] = int(d.Buf.Read(6))
	case 1:
		if !d.Buf.Has(12) {
			return [3]int32{}, false
		}
		raw[0] = int(d.Buf.Read(6))
		raw[1] = raw[0]
		raw[2] = int(d.Buf.Read(6))
	case 2:
		if !d.Buf.Has(6) {
			return [3]int32{}, false
		}
		raw[0] = int(d.Buf.Read(6))
		raw[1], raw[2] = raw[0], raw[0]
	case 3:
		if !d.Buf.Has(12) {
			return [3]int32{}, false
		}
		raw[0] = int(d.Buf.Read(6))
		raw[1] = int(d.Buf.Read(6))
		raw[2] = raw[1]
	}
	var out [3]int32
	for i, sf := range raw {
		out[i] = reconstructScaleFactor(sf)
	}
	return out, true
}

// reconstructScaleFactor implements §4.4's scale-factor reconstruction
// formula.
func reconstructScaleFactor(sf int) int32 {
	if sf == 63 {
		return 0
	}
	shift := uint(sf / 3)
	base := scaleFactorBase[sf%3]
	return (base + ((1 << shift) >> 1)) >> shift
}

// readSamples reads either three independent quantized values or one
// grouped codeword decomposed modulo nlevels, per §4.4 "Sample decoding".
func (d *Decoder) readSamples(qt quantTableEntry) ([3]int32, bool) {
	var out [3]int32
	if qt.group {
		n := int32(qt.nlevels + 1)
		bits := groupedCodewordBits(n)
		if !d.Buf.Has(bits) {
			return out, false
		}
		v := int32(d.Buf.Read(bits))
		out[0] = v % n
		v /= n
		out[1] = v % n
		v /= n
		out[2] = v % n
		return out, true
	}
	bits := groupBits(qt.nlevels)
	for i := 0; i < 3; i++ {
		if !d.Buf.Has(bits) {
			return out, false
		}
		out[i] = int32(d.Buf.Read(bits))
	}
	return out, true
}

// groupBits returns the number of bits needed to represent a single
// ungrouped quantized value in 0..nlevels.
func groupBits(nlevels int) int {
	n := nlevels + 1
	bits := 0
	for (1 << bits) < n {
		bits++
	}
	return bits
}

// groupedCodewordBits returns the number of bits needed to represent a
// packed 3-sample grouped codeword, whose range is n^3 (§4.4 "read one
// grouped value... decomposed modulo levels").
func groupedCodewordBits(n int32) int {
	total := n * n * n
	bits := 0
	for (int32(1) << uint(bits)) < total {
		bits++
	}
	return bits
}

// requantize implements §4.4's "val = (adj - sample)*scale" formula
// followed by the fixed-point scale-factor multiply.
func requantize(sample int32, qt quantTableEntry, sf int32) int32 {
	adj := qt.cBase
	scale := qt.cScale
	val := (adj - sample) * scale
	return (val*(sf>>12) + ((val*(sf&4095) + 2048) >> 12)) >> 12
}
