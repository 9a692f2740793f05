package astc

import "testing"

func TestISERoundTripAllQuantLevels(t *testing.T) {
	for q := quant2; q <= quant256; q++ {
		levels := quantLevel(q)
		for _, charCount := range []int{1, 2, 3, 5, 7, 8, 15, 16, 31, 64} {
			input := make([]uint8, charCount)
			for i := range input {
				input[i] = uint8((i*7 + 3) % levels)
			}

			for _, bitOffset := range []int{0, 3, 13} {
				bitCount := iseSequenceBitCount(charCount, q)
				buf := make([]byte, (bitOffset+bitCount+7)/8+2)
				encodeISE(q, charCount, input, buf, bitOffset)

				output := make([]uint8, charCount)
				decodeISE(q, charCount, buf, bitOffset, output)

				for i := range input {
					if input[i] != output[i] {
						t.Fatalf("quant=%d charCount=%d offset=%d: roundtrip mismatch at %d: %d != %d",
							q, charCount, bitOffset, i, input[i], output[i])
					}
				}
			}
		}
	}
}

func TestISEBitCountMatchesEncoder(t *testing.T) {
	// Encode a worst-case sequence and verify no bit beyond the declared
	// count is touched.
	for q := quant2; q <= quant256; q++ {
		levels := quantLevel(q)
		const charCount = 11
		input := make([]uint8, charCount)
		for i := range input {
			input[i] = uint8(levels - 1)
		}

		bitCount := iseSequenceBitCount(charCount, q)
		buf := make([]byte, 64)
		encodeISE(q, charCount, input, buf, 0)

		for bit := bitCount; bit < len(buf)*8; bit++ {
			if (buf[bit>>3]>>(uint(bit)&7))&1 != 0 {
				t.Fatalf("quant=%d: bit %d set beyond declared count %d", q, bit, bitCount)
			}
		}
	}
}

func TestISEInvalidQuantLevelBitCount(t *testing.T) {
	if got := iseSequenceBitCount(8, quantMethod(21)); got < 129 {
		t.Fatalf("invalid quant level should be unencodable, got %d bits", got)
	}
	if got := iseSequenceBitCount(8, quantMethod(200)); got < 129 {
		t.Fatalf("invalid quant level should be unencodable, got %d bits", got)
	}
}

func TestTritQuintTables(t *testing.T) {
	for packed := 0; packed < 256; packed++ {
		tr := tritsOfInteger[packed]
		for _, v := range tr {
			if v > 2 {
				t.Fatalf("trit block %d decodes out-of-range trit %d", packed, v)
			}
		}
		// The inverse table must map the unpacked tuple to a packed value
		// that unpacks identically.
		back := integerOfTrits[tr[4]][tr[3]][tr[2]][tr[1]][tr[0]]
		if tritsOfInteger[back] != tr {
			t.Fatalf("trit inverse mismatch for packed %d", packed)
		}
	}

	for packed := 0; packed < 128; packed++ {
		qs := quintsOfInteger[packed]
		for _, v := range qs {
			if v > 4 {
				t.Fatalf("quint block %d decodes out-of-range quint %d", packed, v)
			}
		}
		back := integerOfQuints[qs[2]][qs[1]][qs[0]]
		if quintsOfInteger[back] != qs {
			t.Fatalf("quint inverse mismatch for packed %d", packed)
		}
	}
}

func TestDecodeISE128MatchesSlowPath(t *testing.T) {
	var block [BlockBytes]byte
	for i := range block {
		block[i] = uint8(i*37 + 11)
	}

	lo := uint64(0)
	hi := uint64(0)
	for i := 0; i < 8; i++ {
		lo |= uint64(block[i]) << uint(8*i)
		hi |= uint64(block[8+i]) << uint(8*i)
	}

	for q := quant2; q <= quant256; q++ {
		for _, charCount := range []int{1, 4, 9, 12} {
			for _, offset := range []int{0, 17, 29} {
				if offset+iseSequenceBitCount(charCount, q) > 128 {
					continue
				}

				var slow, fast [16]uint8
				decodeISE(q, charCount, block[:], offset, slow[:])
				decodeISE128(q, charCount, lo, hi, offset, fast[:])
				if slow != fast {
					t.Fatalf("quant=%d charCount=%d offset=%d: fast path diverges", q, charCount, offset)
				}
			}
		}
	}
}
