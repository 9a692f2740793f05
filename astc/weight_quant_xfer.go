package astc

// Weight quantization transfer tables.
//
// Weight quantization only uses quant methods QUANT_2 .. QUANT_32. The
// unquantized value tables and scramble orders are copied from
// Source/astcenc_weight_quant_xfer_tables.cpp; they are part of the wire
// format. The prev/next transfer records are rebuilt from them at init.

// weightQuantToUnquant holds the unquantized value of each codepoint in
// unscrambled (ascending value) order.
var weightQuantToUnquant = [12][32]uint8{
	// quant2
	{0, 64},
	// quant3
	{0, 32, 64},
	// quant4
	{0, 21, 43, 64},
	// quant5
	{0, 16, 32, 48, 64},
	// quant6
	{0, 12, 25, 39, 52, 64},
	// quant8
	{0, 9, 18, 27, 37, 46, 55, 64},
	// quant10
	{0, 7, 14, 21, 28, 36, 43, 50, 57, 64},
	// quant12
	{0, 5, 11, 17, 23, 28, 36, 41, 47, 53, 59, 64},
	// quant16
	{0, 4, 8, 12, 17, 21, 25, 29, 35, 39, 43, 47, 52, 56, 60, 64},
	// quant20
	{0, 3, 6, 9, 13, 16, 19, 23, 26, 29, 35, 38, 41, 45, 48, 51, 55, 58, 61, 64},
	// quant24
	{0, 2, 5, 8, 11, 13, 16, 19, 22, 24, 27, 30, 34, 37, 40, 42, 45, 48, 51, 53, 56, 59, 62, 64},
	// quant32
	{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30, 34, 36, 38, 40, 42, 44, 46, 48, 50, 52, 54, 56, 58, 60, 62, 64},
}

// weightScrambleMap gives the scrambled (wire) codepoint for each unscrambled
// codepoint index: scrambled[map[i]] corresponds to unscrambled i.
var weightScrambleMap = [12][32]uint8{
	// quant2
	{0, 1},
	// quant3
	{0, 1, 2},
	// quant4
	{0, 1, 2, 3},
	// quant5
	{0, 1, 2, 3, 4},
	// quant6
	{0, 2, 4, 5, 3, 1},
	// quant8
	{0, 1, 2, 3, 4, 5, 6, 7},
	// quant10
	{0, 2, 4, 6, 8, 9, 7, 5, 3, 1},
	// quant12
	{0, 4, 8, 2, 6, 10, 11, 7, 3, 9, 5, 1},
	// quant16
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	// quant20
	{0, 4, 8, 12, 16, 2, 6, 10, 14, 18, 19, 15, 11, 7, 3, 17, 13, 9, 5, 1},
	// quant24
	{0, 8, 16, 2, 10, 18, 4, 12, 20, 6, 14, 22, 23, 15, 7, 21, 13, 5, 19, 11, 3, 17, 9, 1},
	// quant32
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31},
}

// quantAndXferTable is the per-level transfer record used by the decimated
// grid solver and the weight refinement passes.
type quantAndXferTable struct {
	method quantMethod

	// Unscrambled unquantized values, ascending.
	unquantizedValueUnsc [33]float32

	// scrambleMap[i] is the wire codepoint of unscrambled index i.
	scrambleMap [32]uint8

	// unquantizedValue[p] is the unquantized value of wire codepoint p.
	unquantizedValue [32]uint8

	// prevNextValues is indexed by the current unquantized value:
	//  * bits 7:0   previous value, unquantized
	//  * bits 15:8  next value, unquantized
	//  * bits 23:16 previous value, wire codepoint
	//  * bits 31:24 next value, wire codepoint
	prevNextValues [65]uint32
}

var quantAndXferTables [12]quantAndXferTable

// weightUnscrambleAndUnquantMap maps a wire codepoint straight to its
// unquantized value, per level.
var weightUnscrambleAndUnquantMap [12][32]uint8

// weightQuantizeScrambledLUT maps an unquantized weight value (0..64) to the
// nearest wire codepoint; exact on codepoint values, which is what the
// symbolic-to-physical packer relies on.
var weightQuantizeScrambledLUT [12][65]uint8

func init() {
	for q := quantMethod(0); q <= quant32; q++ {
		levels := quantLevel(q)
		qx := &quantAndXferTables[q]
		qx.method = q

		for i := 0; i < levels; i++ {
			unq := weightQuantToUnquant[q][i]
			scr := weightScrambleMap[q][i]
			qx.unquantizedValueUnsc[i] = float32(unq)
			qx.scrambleMap[i] = scr
			qx.unquantizedValue[scr] = unq
			weightUnscrambleAndUnquantMap[q][scr] = unq
		}

		for v := 0; v <= 64; v++ {
			best := 0
			bestDiff := 1 << 30
			for i := 0; i < levels; i++ {
				d := absInt(int(weightQuantToUnquant[q][i]) - v)
				if d < bestDiff {
					bestDiff = d
					best = i
				}
			}
			weightQuantizeScrambledLUT[q][v] = weightScrambleMap[q][best]

			// Locate the floor codepoint for v, stepping to strict neighbors
			// when v is itself a codepoint.
			lo := 0
			for lo+1 < levels && int(weightQuantToUnquant[q][lo+1]) <= v {
				lo++
			}
			prev := lo
			next := lo
			if int(weightQuantToUnquant[q][lo]) == v {
				if lo > 0 {
					prev = lo - 1
				}
				if lo+1 < levels {
					next = lo + 1
				}
			} else if lo+1 < levels {
				next = lo + 1
			}

			qx.prevNextValues[v] = uint32(weightQuantToUnquant[q][prev]) |
				uint32(weightQuantToUnquant[q][next])<<8 |
				uint32(weightScrambleMap[q][prev])<<16 |
				uint32(weightScrambleMap[q][next])<<24
		}
	}
}
