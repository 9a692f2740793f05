package astc

import "testing"

func testBSD(t *testing.T, x, y, z int) *blockSizeDescriptor {
	t.Helper()
	bsd, err := newBlockSizeDescriptor(x, y, z, false, 1.0)
	if err != nil {
		t.Fatalf("newBlockSizeDescriptor(%d,%d,%d): %v", x, y, z, err)
	}
	return bsd
}

func TestBSDRejectsIllegalBlockSizes(t *testing.T) {
	for _, dims := range [][3]int{{3, 3, 1}, {7, 7, 1}, {13, 13, 1}, {2, 2, 2}, {6, 6, 7}} {
		if _, err := newBlockSizeDescriptor(dims[0], dims[1], dims[2], false, 1.0); err == nil {
			t.Fatalf("expected error for block size %v", dims)
		}
	}
}

func TestBSDDecimationWeightSums(t *testing.T) {
	for _, dims := range [][3]int{{4, 4, 1}, {6, 6, 1}, {8, 8, 1}, {12, 12, 1}, {3, 3, 3}, {6, 6, 6}} {
		bsd := testBSD(t, dims[0], dims[1], dims[2])

		for dm := 0; dm < bsd.decimationModeCount; dm++ {
			di := bsd.decimationInfoFor(dm)
			for tx := 0; tx < di.texelCount; tx++ {
				intSum := 0
				floatSum := float32(0)
				for k := 0; k < 4; k++ {
					intSum += int(di.texelWeightsInt4t[k][tx])
					floatSum += di.texelWeightsFloat4t[k][tx]
				}
				if intSum != 16 {
					t.Fatalf("%v dm=%d texel=%d: integer factors sum to %d", dims, dm, tx, intSum)
				}
				if absF32(floatSum-1.0) > 1e-6 {
					t.Fatalf("%v dm=%d texel=%d: float factors sum to %f", dims, dm, tx, floatSum)
				}
			}
		}
	}
}

func TestBSDPackedIndexConsistency(t *testing.T) {
	for _, dims := range [][3]int{{4, 4, 1}, {5, 5, 1}, {10, 8, 1}, {4, 4, 4}} {
		bsd := testBSD(t, dims[0], dims[1], dims[2])

		for m := 0; m < weightsMaxBlockModes; m++ {
			packed := bsd.blockModePackedIndex[m]
			if packed == blockBadBlockMode {
				continue
			}
			if int(packed) >= bsd.blockModeCount {
				t.Fatalf("%v: packed index %d out of range for mode %d", dims, packed, m)
			}
			if bsd.blockModes[packed].modeIndex != uint16(m) {
				t.Fatalf("%v: packed entry %d names mode %d, want %d", dims, packed, bsd.blockModes[packed].modeIndex, m)
			}
		}

		if bsd.decimationModeCount > weightsMaxDecimationModes {
			t.Fatalf("%v: %d decimation modes exceeds limit", dims, bsd.decimationModeCount)
		}

		// Always modes are sorted to the front of both lists.
		for i, bm := range bsd.blockModes {
			if bm.alwaysHit != (i < bsd.alwaysBlockModeCount) {
				t.Fatalf("%v: always block modes are not front-packed at %d", dims, i)
			}
		}
		for i, dm := range bsd.decimationModes {
			if dm.alwaysHit != (i < bsd.alwaysDecimationModeCount) {
				t.Fatalf("%v: always decimation modes are not front-packed at %d", dims, i)
			}
		}
	}
}

func TestBSDPartitionTables(t *testing.T) {
	bsd := testBSD(t, 6, 6, 1)

	for pc := 2; pc <= 4; pc++ {
		table := bsd.partitionTable(pc)
		active := 0
		for seed, pi := range table {
			if pi.partitionCount == 0 {
				continue
			}
			active++

			if pi.partitionCount != pc {
				t.Fatalf("pc=%d seed=%d: stored count %d", pc, seed, pi.partitionCount)
			}

			total := 0
			for p := 0; p < pc; p++ {
				total += int(pi.partitionTexelCount[p])
				if len(pi.texelsOfPartition[p]) != int(pi.partitionTexelCount[p]) {
					t.Fatalf("pc=%d seed=%d: partition %d texel list length mismatch", pc, seed, p)
				}
			}
			if total != bsd.texelCount {
				t.Fatalf("pc=%d seed=%d: texel counts sum to %d, want %d", pc, seed, total, bsd.texelCount)
			}

			var hit [blockMaxTexels]bool
			for p := 0; p < pc; p++ {
				for _, tx := range pi.texelsOfPartition[p] {
					if hit[tx] {
						t.Fatalf("pc=%d seed=%d: texel %d appears twice", pc, seed, tx)
					}
					hit[tx] = true
					if pi.partitionOfTexel[tx] != uint8(p) {
						t.Fatalf("pc=%d seed=%d: texel %d partition mismatch", pc, seed, tx)
					}
				}
			}
		}
		if active == 0 {
			t.Fatalf("pc=%d: no active partitionings", pc)
		}
	}

	single := bsd.partitionInfoFor(1, 0)
	if single.partitionCount != 1 || int(single.partitionTexelCount[0]) != bsd.texelCount {
		t.Fatal("degenerate single-partition entry is malformed")
	}

	if len(bsd.kmeansTexels) == 0 || len(bsd.kmeansTexels) > blockMaxKMeansTexels {
		t.Fatalf("kmeans texel count %d out of range", len(bsd.kmeansTexels))
	}
}

func TestBSDModePruning(t *testing.T) {
	full := testBSD(t, 6, 6, 1)

	pruned, err := newBlockSizeDescriptor(6, 6, 1, true, 0.1)
	if err != nil {
		t.Fatalf("newBlockSizeDescriptor: %v", err)
	}

	if pruned.blockModeCount >= full.blockModeCount {
		t.Fatalf("pruned descriptor keeps %d modes, full has %d", pruned.blockModeCount, full.blockModeCount)
	}
	if pruned.blockModeCount == 0 {
		t.Fatal("pruned descriptor has no modes")
	}

	// Every mode kept by the pruned descriptor must exist in the full one.
	for _, bm := range pruned.blockModes {
		if full.blockModePackedIndex[bm.modeIndex] == blockBadBlockMode {
			t.Fatalf("pruned mode %d missing from full descriptor", bm.modeIndex)
		}
	}
}
