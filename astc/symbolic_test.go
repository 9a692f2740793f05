package astc

import (
	"math/rand"
	"testing"
)

func symbolicSemanticEqual(a, b *symbolicBlock) bool {
	if a.blockType != b.blockType {
		return false
	}
	if a.blockType != symBlockNonConst {
		return a.constantColor == b.constantColor
	}
	if a.blockMode != b.blockMode ||
		a.partitionCount != b.partitionCount ||
		a.partitionIndex != b.partitionIndex ||
		a.quantMode != b.quantMode ||
		a.plane2Component != b.plane2Component ||
		a.weights != b.weights {
		return false
	}
	for p := 0; p < int(a.partitionCount); p++ {
		if a.colorFormats[p] != b.colorFormats[p] || a.colorValues[p] != b.colorValues[p] {
			return false
		}
	}
	return true
}

func TestPhysicalSymbolicPhysicalRandom(t *testing.T) {
	// The wire format has redundant encodings (non-canonical packed trit and
	// quint blocks decode like their canonical forms), so arbitrary input is
	// only guaranteed to become bit-stable after one canonicalizing pass:
	// re-encoding must preserve all symbolic semantics, and a second pass
	// must be a byte-exact fixpoint.
	bsd := testBSD(t, 4, 4, 1)
	rng := rand.New(rand.NewSource(0x5CA1AB1E))

	roundTripped := 0
	exact := 0
	for trial := 0; trial < 20000; trial++ {
		var block [BlockBytes]byte
		rng.Read(block[:])

		scb := physicalToSymbolic(bsd, block[:])
		if scb.blockType == symBlockError {
			continue
		}
		roundTripped++

		back, err := symbolicToPhysical(bsd, &scb)
		if err != nil {
			t.Fatalf("trial %d: re-encode failed: %v", trial, err)
		}
		if back == block {
			exact++
		}

		scb2 := physicalToSymbolic(bsd, back[:])
		if !symbolicSemanticEqual(&scb, &scb2) {
			t.Fatalf("trial %d: symbolic semantics changed across re-encode:\n in %x\nout %x", trial, block, back)
		}

		back2, err := symbolicToPhysical(bsd, &scb2)
		if err != nil {
			t.Fatalf("trial %d: second re-encode failed: %v", trial, err)
		}
		if back2 != back {
			t.Fatalf("trial %d: canonical encoding is not a fixpoint:\n in %x\nout %x", trial, back, back2)
		}
	}

	if roundTripped == 0 {
		t.Fatal("no random block decoded; decoder is rejecting everything")
	}
	if exact == 0 {
		t.Fatal("no random block round-tripped byte exactly")
	}
}

func TestSymbolicPhysicalSymbolicFromEncoder(t *testing.T) {
	cfg, err := NewConfig(ProfileLDR, 6, 6, 1, EncodeMedium)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	ctx, err := NewContextWithThreads(cfg, 1)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	img := gradientImage(6, 6)
	blocks, err := ctx.CompressImage(img, SwizzleRGBA)
	if err != nil {
		t.Fatalf("CompressImage: %v", err)
	}

	bsd, err := decodeBSD(6, 6, 1)
	if err != nil {
		t.Fatalf("decodeBSD: %v", err)
	}

	scb := physicalToSymbolic(bsd, blocks[:BlockBytes])
	if scb.blockType != symBlockNonConst {
		t.Fatalf("gradient block should not be constant, got type %d", scb.blockType)
	}

	pcb, err := symbolicToPhysical(bsd, &scb)
	if err != nil {
		t.Fatalf("symbolicToPhysical: %v", err)
	}

	scb2 := physicalToSymbolic(bsd, pcb[:])
	if scb2.blockType != scb.blockType ||
		scb2.blockMode != scb.blockMode ||
		scb2.partitionCount != scb.partitionCount ||
		scb2.partitionIndex != scb.partitionIndex ||
		scb2.quantMode != scb.quantMode ||
		scb2.plane2Component != scb.plane2Component {
		t.Fatal("symbolic roundtrip changed semantic fields")
	}
	for p := 0; p < int(scb.partitionCount); p++ {
		if scb2.colorFormats[p] != scb.colorFormats[p] {
			t.Fatalf("partition %d format changed: %d != %d", p, scb2.colorFormats[p], scb.colorFormats[p])
		}
		if scb2.colorValues[p] != scb.colorValues[p] {
			t.Fatalf("partition %d color values changed", p)
		}
	}
	if scb2.weights != scb.weights {
		t.Fatal("symbolic roundtrip changed weights")
	}
}

func TestReservedBlockModeIsErrorBlock(t *testing.T) {
	bsd := testBSD(t, 4, 4, 1)

	// An all-zero block has block mode 0, which does not decode.
	var block [BlockBytes]byte
	scb := physicalToSymbolic(bsd, block[:])
	if scb.blockType != symBlockError {
		t.Fatalf("expected error block, got type %d", scb.blockType)
	}

	var blk imageBlock
	decompressSymbolicBlock(ProfileLDR, bsd, 0, 0, 0, &scb, &blk)
	for tx := 0; tx < bsd.texelCount; tx++ {
		tex := blk.texel(tx)
		if tex != (vfloat4{65535, 0, 65535, 65535}) {
			t.Fatalf("texel %d is not the magenta sentinel: %v", tx, tex)
		}
	}
}

func TestVoidExtentCoordinatePreservation(t *testing.T) {
	bsd := testBSD(t, 4, 4, 1)

	// A void-extent block with specific (valid) extent coordinates must
	// survive a symbolic roundtrip bit-exactly.
	var block [BlockBytes]byte
	writeBits(11, 0, block[:], 0x1FC) // void extent, U16
	writeBits(2, 10, block[:], 3)     // reserved bits
	writeBits(13, 12, block[:], 10)   // low s
	writeBits(13, 25, block[:], 200)  // high s
	writeBits(13, 38, block[:], 20)   // low t
	writeBits(13, 51, block[:], 100)  // high t
	block[8], block[9] = 0x34, 0x12
	block[10], block[11] = 0x78, 0x56
	block[12], block[13] = 0xBC, 0x9A
	block[14], block[15] = 0xF0, 0xDE

	scb := physicalToSymbolic(bsd, block[:])
	if scb.blockType != symBlockConstU16 {
		t.Fatalf("expected constant block, got type %d", scb.blockType)
	}

	back, err := symbolicToPhysical(bsd, &scb)
	if err != nil {
		t.Fatalf("symbolicToPhysical: %v", err)
	}
	if back != block {
		t.Fatalf("void extent coordinates lost:\n in %x\nout %x", block, back)
	}
}

func TestInvalidVoidExtentIsError(t *testing.T) {
	bsd := testBSD(t, 4, 4, 1)

	var block [BlockBytes]byte
	writeBits(11, 0, block[:], 0x1FC)
	writeBits(2, 10, block[:], 3)
	// low >= high and not all-ones: malformed.
	writeBits(13, 12, block[:], 100)
	writeBits(13, 25, block[:], 50)
	writeBits(13, 38, block[:], 0)
	writeBits(13, 51, block[:], 1)

	scb := physicalToSymbolic(bsd, block[:])
	if scb.blockType != symBlockError {
		t.Fatalf("expected error block for malformed void extent, got %d", scb.blockType)
	}
}
