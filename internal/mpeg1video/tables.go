package mpeg1video

// Tables from ISO/IEC 11172-2 ("MPEG-1 Video"), in the same form used by
// every from-scratch MPEG-1 decoder: zig-zag scan order, default
// quantization matrices, the AAN-style IDCT premultiplier matrix, the
// fixed frame-rate lookup, and the variable-length code tables for
// macroblock addressing, types, motion vectors, coded-block-pattern and
// DCT coefficients.

// zigZag maps zig-zag scan index -> raster (row-major) index within an
// 8x8 block. Decode stores coefficients at zigZag[n], the inverse of the
// scan order used when encoding (§3 "stored in zig-zag inverse order").
var zigZag = [64]uint8{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// defaultIntraQuantMatrix is the default intra quantization matrix,
// stored in zig-zag order exactly as it appears in the bitstream.
var defaultIntraQuantMatrix = [64]uint8{
	8, 16, 16, 19, 16, 19, 22, 22,
	22, 22, 22, 22, 26, 24, 26, 27,
	27, 27, 26, 26, 26, 26, 27, 27,
	27, 29, 29, 29, 34, 34, 34, 29,
	29, 29, 27, 27, 29, 29, 32, 32,
	34, 34, 37, 38, 37, 35, 35, 34,
	35, 38, 38, 40, 40, 40, 48, 48,
	46, 46, 56, 56, 58, 69, 69, 83,
}

// defaultNonIntraQuantMatrix is the default non-intra quantization
// matrix: flat, every entry is 16.
var defaultNonIntraQuantMatrix = [64]uint8{
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
}

// premultiplierMatrix holds the per-coefficient scale applied after
// dequantization and before the IDCT (in raster order), absorbing the
// AAN fixed-point constants into the dequantization step.
var premultiplierMatrix = [64]int32{
	32, 44, 42, 38, 32, 25, 17, 9,
	44, 62, 58, 52, 44, 35, 24, 12,
	42, 58, 55, 49, 42, 33, 23, 12,
	38, 52, 49, 44, 38, 30, 20, 10,
	32, 44, 42, 38, 32, 25, 17, 9,
	25, 35, 33, 30, 25, 20, 14, 7,
	17, 24, 23, 20, 17, 14, 9, 5,
	9, 12, 12, 10, 9, 7, 5, 2,
}

// frameRateTable maps the 4-bit sequence-header frame-rate index to
// frames per second (§3 "frame rate (looked up from a fixed 16-entry
// table)"). Index 0 is reserved/forbidden.
var frameRateTable = [16]float64{
	0,
	24000.0 / 1001.0,
	24,
	25,
	30000.0 / 1001.0,
	30,
	50,
	60000.0 / 1001.0,
	60,
	// Reserved entries, included only so the table has 16 slots.
	0, 0, 0, 0, 0, 0, 0,
}

// Picture types, per §3.
const (
	pictureTypeI = 1
	pictureTypeP = 2
	pictureTypeB = 3
)

// vlcEntry is one leaf of a variable-length code table: a `bits`-bit
// sequence whose value, when matched, decodes to `value`.
type vlcEntry struct {
	bits  uint8
	code  uint16 // code left-justified is not used; code is the raw bit pattern, MSB-first, `bits` wide
	value int16
}

// vlcTable is a flat table of prefix-free codes, matched by trying
// progressively longer bit reads (the tables are guaranteed prefix-free
// by construction, so there is exactly one matching length/pattern).
type vlcTable []vlcEntry

// decode reads bits from peek/skip functions until a code in the table
// matches, returning its value, or (0, false) if no entry matched within
// the longest code length in the table (caller should treat this as a
// stream error).
func (t vlcTable) decode(peek func(int) uint32, skip func(int)) (int16, bool) {
	maxBits := 0
	for _, e := range t {
		if int(e.bits) > maxBits {
			maxBits = int(e.bits)
		}
	}
	for n := 1; n <= maxBits; n++ {
		v := uint16(peek(n))
		for _, e := range t {
			if int(e.bits) == n && e.code == v {
				skip(n)
				return e.value, true
			}
		}
	}
	return 0, false
}

// macroblockAddressIncrementTable is Table B-1. Value 34 is the
// macroblock-stuffing code, value 35 is the escape code (+33, continue).
var macroblockAddressIncrementTable = vlcTable{
	{1, 0b1, 1},
	{3, 0b011, 2},
	{3, 0b010, 3},
	{4, 0b0011, 4},
	{4, 0b0010, 5},
	{5, 0b00011, 6},
	{5, 0b00010, 7},
	{7, 0b0001111, 8},
	{7, 0b0001110, 9},
	{8, 0b00001111, 10},
	{8, 0b00001110, 11},
	{8, 0b00001101, 12},
	{8, 0b00001100, 13},
	{8, 0b00001011, 14},
	{8, 0b00001010, 15},
	{10, 0b0000011111, 16},
	{10, 0b0000011110, 17},
	{10, 0b0000011101, 18},
	{10, 0b0000011100, 19},
	{10, 0b0000011011, 20},
	{10, 0b0000011010, 21},
	{10, 0b0000011001, 22},
	{10, 0b0000011000, 23},
	{11, 0b00000101111, 24},
	{11, 0b00000101110, 25},
	{11, 0b00000101101, 26},
	{11, 0b00000101100, 27},
	{11, 0b00000101011, 28},
	{11, 0b00000101010, 29},
	{11, 0b00000101001, 30},
	{11, 0b00000101000, 31},
	{11, 0b00000100111, 32},
	{11, 0b00000100110, 33},
	{11, 0b00000100101, 34}, // stuffing
	{11, 0b00000100100, 35}, // escape
}

// macroblockStuffing and macroblockEscape are the decoded values for
// those special codes, per §4.3.
const (
	macroblockStuffing = 34
	macroblockEscape   = 35
)

// macroblockTypeTable is indexed [pictureType-1], each a VLC table
// decoding directly to the macroblock_type bitfield (§4.3):
// 0x01 intra, 0x02 pattern, 0x04 motion-backward, 0x08 motion-forward,
// 0x10 quant.
var macroblockTypeTable = [3]vlcTable{
	// I-pictures (Table B-2).
	{
		{1, 0b1, 0x01},
		{2, 0b01, 0x11},
	},
	// P-pictures (Table B-3).
	{
		{1, 0b1, 0x0A},
		{2, 0b01, 0x02},
		{3, 0b001, 0x08},
		{5, 0b00011, 0x12},
		{5, 0b00010, 0x1A},
		{5, 0b00001, 0x01},
		{6, 0b000001, 0x11},
		{6, 0b000000, 0x21},
	},
	// B-pictures (Table B-4). Kept for completeness even though §4.3
	// discards B pictures before macroblock decode.
	{
		{2, 0b10, 0x0C},
		{2, 0b11, 0x0E},
		{3, 0b010, 0x04},
		{3, 0b011, 0x06},
		{4, 0b0010, 0x08},
		{4, 0b0011, 0x0A},
		{5, 0b00011, 0x01},
		{5, 0b00010, 0x11},
		{6, 0b000001, 0x21},
		{6, 0b000000, 0x1A},
	},
}

// motionTable is Table B-10 (motion_code), shared by horizontal and
// vertical components. Negative raw codes are later combined with a
// sign read alongside (§4.3 "Motion vectors").
var motionTable = vlcTable{
	{11, 0b00000011001, -16},
	{10, 0b0000001111, -15},
	{10, 0b0000001101, -14},
	{10, 0b0000001011, -13},
	{8, 0b00000111, -12},
	{8, 0b00000101, -11},
	{7, 0b0000111, -10},
	{7, 0b0000101, -9},
	{6, 0b000111, -8},
	{5, 0b00111, -7},
	{5, 0b00101, -6},
	{4, 0b0111, -5},
	{4, 0b0101, -4},
	{3, 0b011, -3},
	{3, 0b010, -2},
	{2, 0b11, -1},
	{1, 0b1, 0},
	{2, 0b10, 1},
	{3, 0b010 ^ 0, 2}, // placeholder overwritten below; see init
	{3, 0b011 ^ 0, 3},
	{4, 0b0101, 4},
	{4, 0b0111, 5},
	{5, 0b00101, 6},
	{5, 0b00111, 7},
	{6, 0b000111, 8},
	{7, 0b0000101, 9},
	{7, 0b0000111, 10},
	{8, 0b00000101, 11},
	{8, 0b00000111, 12},
	{10, 0b0000001011, 13},
	{10, 0b0000001101, 14},
	{10, 0b0000001111, 15},
	{11, 0b00000011001, 16},
}

func init() {
	// The motion_code VLC table is symmetric: codes for +n and -n share
	// the same bit pattern (the direction is carried by the sign bit
	// read alongside it per §4.3), except for 0 which has a single
	// code. Rebuild the positive half directly from the negative half
	// to avoid the duplicated-literal placeholders above going stale.
	neg := map[int16]vlcEntry{}
	for _, e := range motionTable {
		if e.value < 0 {
			neg[-e.value] = e
		}
	}
	for i, e := range motionTable {
		if e.value > 0 {
			if src, ok := neg[e.value]; ok {
				motionTable[i] = vlcEntry{bits: src.bits, code: src.code, value: e.value}
			}
		}
	}
}

// codedBlockPatternTable is Table B-9.
var codedBlockPatternTable = vlcTable{
	{3, 0b111, 60},
	{4, 0b1101, 4},
	{4, 0b1100, 8},
	{4, 0b1011, 16},
	{4, 0b1010, 32},
	{4, 0b1001, 12},
	{4, 0b1000, 48},
	{4, 0b0111, 20},
	{4, 0b0110, 40},
	{5, 0b00111, 28},
	{5, 0b00110, 44},
	{5, 0b00101, 52},
	{5, 0b00100, 56},
	{5, 0b00011, 1},
	{5, 0b00010, 61},
	{6, 0b000111, 2},
	{6, 0b000110, 62},
	{6, 0b000101, 24},
	{6, 0b000100, 36},
	{6, 0b000011, 3},
	{6, 0b000010, 63},
	{7, 0b0000101, 5},
	{7, 0b0000100, 9},
	{7, 0b0000011, 17},
	{7, 0b0000010, 33},
	{8, 0b00000111, 6},
	{8, 0b00000110, 10},
	{8, 0b00000101, 18},
	{8, 0b00000100, 34},
	{8, 0b00000011, 7},
	{8, 0b00000010, 11},
	{8, 0b00000001, 19},
	{8, 0b00000000, 35},
	{9, 0b000000111, 13},
	{9, 0b000000110, 49},
	{9, 0b000000101, 21},
	{9, 0b000000100, 41},
	{9, 0b000000011, 14},
	{9, 0b000000010, 50},
	{9, 0b000000001, 22},
	{9, 0b000000000, 42},
}

// dctDCSizeLuminanceTable is Table B-12.
var dctDCSizeLuminanceTable = vlcTable{
	{3, 0b100, 0},
	{2, 0b00, 1},
	{2, 0b01, 2},
	{3, 0b101, 3},
	{3, 0b110, 4},
	{4, 0b1110, 5},
	{5, 0b11110, 6},
	{6, 0b111110, 7},
	{7, 0b1111110, 8},
	{8, 0b11111110, 9},
}

// dctDCSizeChrominanceTable is Table B-13.
var dctDCSizeChrominanceTable = vlcTable{
	{2, 0b00, 0},
	{2, 0b01, 1},
	{2, 0b10, 2},
	{3, 0b110, 3},
	{4, 0b1110, 4},
	{5, 0b11110, 5},
	{6, 0b111110, 6},
	{7, 0b1111110, 7},
	{8, 0b11111110, 8},
}

// dctCoeffEntry is one run/level pair decoded from Table B-14/B-15,
// excluding the end-of-block (0x0001-after-first) and escape
// (0xFFFF-equivalent) special cases handled directly by the decoder.
type dctCoeffEntry struct {
	bits  uint8
	code  uint16
	run   uint8
	level int16 // magnitude; sign read separately as a trailing bit
}

// dctCoeffTable is the combined run/level VLC table used for both intra
// (after the DC coefficient) and non-intra AC coefficient decode.
var dctCoeffTable = []dctCoeffEntry{
	{2, 0b10, 0, 1},
	{3, 0b110, 1, 1},
	{4, 0b0110, 0, 2},
	{5, 0b01000, 2, 1},
	{5, 0b00110, 0, 3},
	{6, 0b001010, 3, 1},
	{6, 0b001000, 4, 1},
	{6, 0b000110, 1, 2},
	{6, 0b000101, 5, 1},
	{7, 0b0001111, 6, 1},
	{7, 0b0001011, 7, 1},
	{7, 0b0001001, 0, 4},
	{7, 0b0001000, 2, 2},
	{8, 0b00100001, 8, 1},
	{8, 0b00100000, 9, 1},
	{8, 0b00011111, 0, 5},
	{8, 0b00011011, 3, 2},
	{8, 0b00011001, 1, 3},
	{8, 0b00011000, 0, 6},
}

// There are no separate escape tables: decodeACCoefficient recognises
// the 6-bit escape code 000001 itself and reads a 6-bit run and an
// 8-bit level, with the boundary re-mapping documented in §4.3.
