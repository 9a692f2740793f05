package astc

import "testing"

func TestColorUnquantTablesInjective(t *testing.T) {
	for q := quant6; q <= quant256; q++ {
		levels := quantLevel(q)
		seen := map[uint8]int{}
		for p := 0; p < levels; p++ {
			u := colorUnquantTables[q][p]
			if prev, ok := seen[u]; ok {
				t.Fatalf("quant=%d: codepoints %d and %d share unquant value %d", q, prev, p, u)
			}
			seen[u] = p
		}
	}
}

func TestColorQuantUnquantRoundTrip(t *testing.T) {
	for q := quant6; q <= quant256; q++ {
		levels := quantLevel(q)
		for p := 0; p < levels; p++ {
			u := colorUnquantTables[q][p]
			if got := colorQuantTables[q][u]; got != uint8(p) {
				t.Fatalf("quant=%d: codepoint %d (value %d) quantizes back to %d", q, p, u, got)
			}
			if got := colorUnquantLUT[q][u]; got != u {
				t.Fatalf("quant=%d: unquant LUT of codepoint value %d is %d", q, u, got)
			}
		}
	}
}

func TestColorUnquantKnownValues(t *testing.T) {
	// quant6 reference values from the ASTC specification tables.
	want := [6]uint8{0, 255, 51, 204, 102, 153}
	for p, w := range want {
		if got := colorUnquantTables[quant6][p]; got != w {
			t.Fatalf("quant6 codepoint %d: got %d want %d", p, got, w)
		}
	}

	// Bit-only levels replicate bits.
	if got := colorUnquantTables[quant256][0x5A]; got != 0x5A {
		t.Fatalf("quant256 must be identity, got %d for 0x5A", got)
	}
	if got := colorUnquantTables[quant16][0xF]; got != 0xFF {
		t.Fatalf("quant16 top codepoint must replicate to 255, got %d", got)
	}
}

func TestQuantModeTable(t *testing.T) {
	for pairs := 1; pairs < 17; pairs++ {
		for bits := 0; bits < 128; bits++ {
			level := quantModeTable[pairs][bits]
			if level < 0 {
				continue
			}
			if iseSequenceBitCount(2*pairs, quantMethod(level)) > bits {
				t.Fatalf("pairs=%d bits=%d: level %d does not fit", pairs, bits, level)
			}
			if level < int8(quant256) {
				if iseSequenceBitCount(2*pairs, quantMethod(level+1)) <= bits {
					t.Fatalf("pairs=%d bits=%d: level %d is not the highest fit", pairs, bits, level)
				}
			}
		}
	}
}

func TestWeightQuantTransferTables(t *testing.T) {
	for q := quantMethod(0); q <= quant32; q++ {
		levels := quantLevel(q)
		qx := &quantAndXferTables[q]

		for i := 0; i < levels; i++ {
			unq := weightQuantToUnquant[q][i]
			scr := weightScrambleMap[q][i]
			if qx.unquantizedValue[scr] != unq {
				t.Fatalf("quant=%d: scrambled value table mismatch at %d", q, i)
			}
			if weightUnscrambleAndUnquantMap[q][scr] != unq {
				t.Fatalf("quant=%d: unscramble map mismatch at %d", q, i)
			}

			// Codepoints step to their strict neighbors.
			pn := qx.prevNextValues[unq]
			prevU := uint8(pn)
			nextU := uint8(pn >> 8)
			if i > 0 && prevU != weightQuantToUnquant[q][i-1] {
				t.Fatalf("quant=%d value=%d: prev is %d", q, unq, prevU)
			}
			if i == 0 && prevU != unq {
				t.Fatalf("quant=%d: first codepoint prev must self-reference", q)
			}
			if i < levels-1 && nextU != weightQuantToUnquant[q][i+1] {
				t.Fatalf("quant=%d value=%d: next is %d", q, unq, nextU)
			}
			if i == levels-1 && nextU != unq {
				t.Fatalf("quant=%d: last codepoint next must self-reference", q)
			}
		}

		// Quantize LUT is exact on codepoints.
		for i := 0; i < levels; i++ {
			unq := weightQuantToUnquant[q][i]
			if weightQuantizeScrambledLUT[q][unq] != weightScrambleMap[q][i] {
				t.Fatalf("quant=%d: quantize LUT not exact on codepoint %d", q, i)
			}
		}
	}
}

func TestWeightQuantizeTieRoundsDown(t *testing.T) {
	// quant2 has codepoints {0, 64}; an ideal value of exactly 0.5 sits
	// halfway and must round to the smaller codepoint.
	bsd, err := newBlockSizeDescriptor(4, 4, 1, false, 1.0)
	if err != nil {
		t.Fatalf("newBlockSizeDescriptor: %v", err)
	}

	var di *decimationInfo
	for dm := 0; dm < bsd.decimationModeCount; dm++ {
		cand := bsd.decimationInfoFor(dm)
		if cand.weightCount == cand.texelCount {
			di = cand
			break
		}
	}
	if di == nil {
		t.Fatal("no full-resolution decimation mode found")
	}

	ideal := make([]float32, di.weightCount)
	for i := range ideal {
		ideal[i] = 0.5
	}
	uvalues := make([]float32, di.weightCount)
	pvalues := make([]uint8, di.weightCount)

	computeQuantizedWeightsForDecimation(di, 0, 1, ideal, uvalues, pvalues, quant2)
	for i := range pvalues {
		if pvalues[i] != 0 {
			t.Fatalf("halfway weight quantized up: pvalue[%d]=%d", i, pvalues[i])
		}
		if uvalues[i] != 0 {
			t.Fatalf("halfway weight unquant not low bound: %f", uvalues[i])
		}
	}
}
