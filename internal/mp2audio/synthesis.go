package mp2audio

// synthesize runs the 32-band polyphase synthesis filterbank (§4.4
// "Synthesis") for one sub-block of channel ch, producing 32 PCM
// samples. subbandSamples has length subbandLimit; unused high
// subbands are treated as zero input to MatrixTransform.
func (d *Decoder) synthesize(ch int, subbandSamples []int32) []float32 {
	st := &d.synth[ch]

	var in [32]int32
	copy(in[:], subbandSamples)

	st.vPos = (st.vPos - 64) & 1023
	matrixTransform(&in, st.v[:], st.vPos)

	var u [32]int64
	dIndex := 0
	vIndex := st.vPos
	for i := 0; i < 8; i++ {
		for j := 0; j < 32; j++ {
			u[j] += int64(synthesisWindow[dIndex]) * int64(st.v[vIndex&1023])
			dIndex++
			vIndex += 64
		}
		vIndex = (vIndex - (32*64 - 32)) & 1023
		for j := 0; j < 32; j++ {
			u[j] += int64(synthesisWindow[dIndex]) * int64(st.v[vIndex&1023])
			dIndex++
			vIndex += 64
		}
		vIndex = (vIndex - (32*64 - 32)) & 1023
	}

	out := make([]float32, 32)
	for j := 0; j < 32; j++ {
		out[j] = float32(u[j]) / (65536.0 * 2147418112.0)
	}
	return out
}

// matrixTransform performs the 32-point DCT used by the synthesis
// filterbank (§4.4 "MatrixTransform"), writing the 64 new V-history
// entries starting at vPos (mod 1024).
func matrixTransform(in *[32]int32, v []int32, vPos int) {
	for i := 0; i < 64; i++ {
		var sum int64
		for k := 0; k < 32; k++ {
			sum += int64(in[k]) * int64(matrixCoeff(i, k))
		}
		v[(vPos+i)&1023] = int32(sum >> 16)
	}
}
