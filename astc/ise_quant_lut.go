package astc

// Precomputed quantization fit tables.
//
// quantModeTable mirrors quant_mode_table in Source/astcenc_quantization.cpp:
// indexing by [integerCount/2][bitsAvailable] gives the highest quant level
// that fits, or -1 if the integer count can never fit the storage size.
//
// quantLevelForISELUT extends the same idea to the raw (charCount, bits)
// domain used when unpacking endpoint streams.

const (
	iseQuantLUTMaxChars = blockMaxColorIntsBuf
	iseQuantLUTMaxBits  = 128
)

var quantModeTable [17][128]int8
var quantLevelForISELUT [iseQuantLUTMaxChars + 1][iseQuantLUTMaxBits + 1]int16

func init() {
	for cc := 0; cc <= iseQuantLUTMaxChars; cc++ {
		for b := 0; b <= iseQuantLUTMaxBits; b++ {
			best := int16(-1)
			if cc > 0 {
				for q := int(quant256); q >= int(quant2); q-- {
					if iseSequenceBitCount(cc, quantMethod(q)) <= b {
						best = int16(q)
						break
					}
				}
			}
			quantLevelForISELUT[cc][b] = best
		}
	}

	for pairs := 0; pairs < 17; pairs++ {
		for b := 0; b < 128; b++ {
			quantModeTable[pairs][b] = -1
			if pairs > 0 {
				quantModeTable[pairs][b] = int8(quantLevelForISELUT[2*pairs][b])
			}
		}
	}
}

// quantLevelForISE finds the highest-precision quant level whose ISE encoding
// of charCount characters fits into bitsAvailable, or -1 if none fits.
func quantLevelForISE(charCount, bitsAvailable int) int {
	if charCount <= 0 || bitsAvailable < 0 {
		return -1
	}
	if bitsAvailable > iseQuantLUTMaxBits {
		bitsAvailable = iseQuantLUTMaxBits
	}
	if charCount <= iseQuantLUTMaxChars {
		return int(quantLevelForISELUT[charCount][bitsAvailable])
	}

	// Fallback (should not be hit by the current encoder/decoder).
	for q := int(quant256); q >= int(quant2); q-- {
		if iseSequenceBitCount(charCount, quantMethod(q)) <= bitsAvailable {
			return q
		}
	}
	return -1
}
