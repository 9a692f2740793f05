package astc

import "sort"

// decimationInfo stores the weight grid layout for a single decimation
// pattern: for every texel the up-to-4 contributing weights with their
// bilinear factors (integers summing to 16, floats summing to 1.0), plus the
// transposed per-weight texel lists and a folded per-weight copy of the
// per-texel tables used by the grid solver.
type decimationInfo struct {
	texelCount  int
	weightCount int
	weightX     int
	weightY     int
	weightZ     int

	texelWeightCount    []uint8
	texelWeights4t      [4][]uint8
	texelWeightsInt4t   [4][]uint8
	texelWeightsFloat4t [4][]float32

	weightTexelCount    []uint8
	weightTexels        [][]uint8
	weightTexelContribs [][]float32

	// Folded tables, gathered per weight:
	//   texelWeightsTexel[w][j][k]      = texelWeights4t[k][weightTexels[w][j]]
	//   texelWeightsFloatTexel[w][j][k] = texelWeightsFloat4t[k][weightTexels[w][j]]
	texelWeightsTexel      [][][4]uint8
	texelWeightsFloatTexel [][][4]float32
}

// decimationMode describes one entry in the compacted decimation mode list.
type decimationMode struct {
	maxPrec1Plane  int8 // Highest weight quant usable with 1 plane, or -1.
	maxPrec2Planes int8 // Highest weight quant usable with 2 planes, or -1.
	percentileHit  bool
	alwaysHit      bool
}

// blockMode describes one legal 11-bit block mode for the block size.
type blockMode struct {
	modeIndex      uint16
	decimationMode uint8
	quantMode      quantMethod
	isDualPlane    bool
	percentileHit  bool
	alwaysHit      bool
	weightBits     uint8
	weightCount    uint8 // Weights per plane.
}

// partitionInfo holds the texel assignment for one partitioning. Seeds that
// generate duplicates of earlier seeds or leave a partition empty are left
// with partitionCount == 0 so searches skip them.
type partitionInfo struct {
	partitionCount      int
	partitionTexelCount [blockMaxPartitions]uint8
	partitionOfTexel    [blockMaxTexels]uint8
	texelsOfPartition   [blockMaxPartitions][]uint8
	coverageBitmaps     [blockMaxPartitions]uint64
}

// blockSizeDescriptor owns every precomputed table for one block footprint:
// the compacted decimation and block mode lists (always-enabled entries
// first), the packed block mode index, the partition tables and the k-means
// sample texels. It is immutable after construction and shared across
// threads.
type blockSizeDescriptor struct {
	xdim       int
	ydim       int
	zdim       int
	texelCount int

	decimationModeCount       int
	alwaysDecimationModeCount int
	blockModeCount            int
	alwaysBlockModeCount      int

	decimationModes  []decimationMode
	decimationTables []decimationInfo

	blockModePackedIndex [weightsMaxBlockModes]uint16
	blockModes           []blockMode

	// partitions holds 1024 entries each for 2/3/4 partitions plus one
	// degenerate single-partition entry at the end.
	partitions []partitionInfo

	kmeansTexels []uint8
}

// alwaysCentile is the centile at or below which a mode is treated as an
// "always" mode and sorted to the front of the search lists.
const alwaysCentile = 0.05

// isLegalBlockSize reports whether a block footprint is one of the footprints
// allowed by the ASTC specification.
func isLegalBlockSize(x, y, z int) bool {
	if z == 1 {
		switch [2]int{x, y} {
		case [2]int{4, 4}, [2]int{5, 4}, [2]int{5, 5}, [2]int{6, 5}, [2]int{6, 6},
			[2]int{8, 5}, [2]int{8, 6}, [2]int{8, 8}, [2]int{10, 5}, [2]int{10, 6},
			[2]int{10, 8}, [2]int{10, 10}, [2]int{12, 10}, [2]int{12, 12}:
			return true
		}
		return false
	}
	switch [3]int{x, y, z} {
	case [3]int{3, 3, 3}, [3]int{4, 3, 3}, [3]int{4, 4, 3}, [3]int{4, 4, 4},
		[3]int{5, 4, 4}, [3]int{5, 5, 4}, [3]int{5, 5, 5}, [3]int{6, 5, 5},
		[3]int{6, 6, 5}, [3]int{6, 6, 6}:
		return true
	}
	return false
}

// newBlockSizeDescriptor builds the descriptor for a block footprint.
//
// When canOmitModes is set, block modes whose centile exceeds modeCutoff are
// dropped from the mode list entirely; decompression contexts pass
// canOmitModes=false so that every legal wire encoding stays reachable.
func newBlockSizeDescriptor(xdim, ydim, zdim int, canOmitModes bool, modeCutoff float32) (*blockSizeDescriptor, error) {
	if !isLegalBlockSize(xdim, ydim, zdim) {
		return nil, newError(ErrBadBlockSize, "astc: illegal block size")
	}

	bsd := &blockSizeDescriptor{
		xdim:       xdim,
		ydim:       ydim,
		zdim:       zdim,
		texelCount: xdim * ydim * zdim,
	}

	modeCutoff = clampF32(modeCutoff, 0, 1)

	centiles := blockModeCentiles(xdim, ydim, zdim)

	// Interned decimation grids, keyed by packed grid dims.
	dmIndex := map[[3]int]int{}

	type pendingMode struct {
		bm       blockMode
		centile  float32
		selected bool
	}
	var pending []pendingMode

	for i := 0; i < weightsMaxBlockModes; i++ {
		bsd.blockModePackedIndex[i] = blockBadBlockMode

		var (
			xW, yW, zW  int
			isDualPlane bool
			quant       quantMethod
			weightBits  int
			ok          bool
		)
		if zdim == 1 {
			xW, yW, isDualPlane, quant, weightBits, ok = decodeBlockMode2D(i)
			zW = 1
		} else {
			xW, yW, zW, isDualPlane, quant, weightBits, ok = decodeBlockMode3D(i)
		}
		if !ok || xW > xdim || yW > ydim || zW > zdim {
			continue
		}

		key := [3]int{xW, yW, zW}
		dm, seen := dmIndex[key]
		if !seen {
			dm = len(bsd.decimationTables)
			dmIndex[key] = dm
			bsd.decimationTables = append(bsd.decimationTables, buildDecimationInfo(xdim, ydim, zdim, xW, yW, zW))
			bsd.decimationModes = append(bsd.decimationModes, decimationMode{maxPrec1Plane: -1, maxPrec2Planes: -1})
		}

		// Track the maximum weight precision usable with this grid.
		weightCount := xW * yW * zW
		mode := &bsd.decimationModes[dm]
		if isDualPlane {
			if int8(quant) > mode.maxPrec2Planes {
				mode.maxPrec2Planes = int8(quant)
			}
		} else {
			if int8(quant) > mode.maxPrec1Plane {
				mode.maxPrec1Plane = int8(quant)
			}
		}

		centile := centiles[i]
		selected := centile <= modeCutoff
		if canOmitModes && !selected {
			continue
		}

		pending = append(pending, pendingMode{
			bm: blockMode{
				modeIndex:      uint16(i),
				decimationMode: uint8(dm),
				quantMode:      quant,
				isDualPlane:    isDualPlane,
				percentileHit:  selected,
				alwaysHit:      centile <= alwaysCentile,
				weightBits:     uint8(weightBits),
				weightCount:    uint8(weightCount),
			},
			centile:  centile,
			selected: selected,
		})

		if selected {
			mode.percentileHit = true
			if centile <= alwaysCentile {
				mode.alwaysHit = true
			}
		}
	}

	// Sort always modes to the front, keeping packed order stable otherwise.
	sort.SliceStable(pending, func(a, b int) bool {
		if pending[a].bm.alwaysHit != pending[b].bm.alwaysHit {
			return pending[a].bm.alwaysHit
		}
		return false
	})

	// Reorder the decimation mode list the same way.
	dmOrder := make([]int, len(bsd.decimationModes))
	for i := range dmOrder {
		dmOrder[i] = i
	}
	sort.SliceStable(dmOrder, func(a, b int) bool {
		if bsd.decimationModes[dmOrder[a]].alwaysHit != bsd.decimationModes[dmOrder[b]].alwaysHit {
			return bsd.decimationModes[dmOrder[a]].alwaysHit
		}
		return false
	})

	dmRemap := make([]uint8, len(bsd.decimationModes))
	newModes := make([]decimationMode, len(bsd.decimationModes))
	newTables := make([]decimationInfo, len(bsd.decimationTables))
	for newIdx, oldIdx := range dmOrder {
		dmRemap[oldIdx] = uint8(newIdx)
		newModes[newIdx] = bsd.decimationModes[oldIdx]
		newTables[newIdx] = bsd.decimationTables[oldIdx]
	}
	bsd.decimationModes = newModes
	bsd.decimationTables = newTables

	for i := range pending {
		pending[i].bm.decimationMode = dmRemap[pending[i].bm.decimationMode]
	}

	bsd.decimationModeCount = len(bsd.decimationModes)
	for _, m := range bsd.decimationModes {
		if m.alwaysHit {
			bsd.alwaysDecimationModeCount++
		}
	}

	bsd.blockModes = make([]blockMode, len(pending))
	for i, pm := range pending {
		bsd.blockModes[i] = pm.bm
		bsd.blockModePackedIndex[pm.bm.modeIndex] = uint16(i)
		if pm.bm.alwaysHit {
			bsd.alwaysBlockModeCount++
		}
	}
	bsd.blockModeCount = len(bsd.blockModes)

	bsd.kmeansTexels = pickKMeansTexels(bsd.texelCount)
	bsd.initPartitionTables()

	return bsd, nil
}

// blockModeCentiles builds the per-mode usefulness centiles for a block
// footprint. 2D modes are ranked by a synthesized usefulness key: denser
// weight grids first, then higher weight quant levels, with dual-plane modes
// scored at half weight and ties going to the lower mode index. 3D block
// sizes have no percentile data upstream so every legal mode is reported as
// centile zero.
func blockModeCentiles(xdim, ydim, zdim int) []float32 {
	centiles := make([]float32, weightsMaxBlockModes)
	for i := range centiles {
		centiles[i] = 1
	}

	if zdim != 1 {
		for i := range centiles {
			centiles[i] = 0
		}
		return centiles
	}

	type ranked struct {
		mode  int
		score float32
	}
	var modes []ranked
	for i := 0; i < weightsMaxBlockModes; i++ {
		xW, yW, isDualPlane, quant, _, ok := decodeBlockMode2D(i)
		if !ok || xW > xdim || yW > ydim {
			continue
		}
		score := float32(xW*yW)*4 + float32(quant)
		if isDualPlane {
			score *= 0.5
		}
		modes = append(modes, ranked{mode: i, score: score})
	}

	sort.SliceStable(modes, func(a, b int) bool {
		if modes[a].score != modes[b].score {
			return modes[a].score > modes[b].score
		}
		return modes[a].mode < modes[b].mode
	})

	n := len(modes)
	for rank, m := range modes {
		centiles[m.mode] = float32(rank) / float32(n)
	}
	return centiles
}

// pickKMeansTexels selects up to 64 texels evenly spread across the block for
// partition fingerprinting.
func pickKMeansTexels(texelCount int) []uint8 {
	if texelCount <= blockMaxKMeansTexels {
		out := make([]uint8, texelCount)
		for i := range out {
			out[i] = uint8(i)
		}
		return out
	}
	out := make([]uint8, blockMaxKMeansTexels)
	for i := range out {
		out[i] = uint8(i * texelCount / blockMaxKMeansTexels)
	}
	return out
}

// buildDecimationInfo computes the bilinear weight infill tables for one
// weight grid size. The interpolation fixed-point math matches
// init_decimation_info_2d/3d() in Source/astcenc_block_sizes.cpp, so the
// integer factors for each texel sum to exactly 16.
func buildDecimationInfo(xdim, ydim, zdim, xW, yW, zW int) decimationInfo {
	texelCount := xdim * ydim * zdim
	weightCount := xW * yW * zW

	di := decimationInfo{
		texelCount:  texelCount,
		weightCount: weightCount,
		weightX:     xW,
		weightY:     yW,
		weightZ:     zW,

		texelWeightCount: make([]uint8, texelCount),
		weightTexelCount: make([]uint8, weightCount),
	}
	for k := 0; k < 4; k++ {
		di.texelWeights4t[k] = make([]uint8, texelCount)
		di.texelWeightsInt4t[k] = make([]uint8, texelCount)
		di.texelWeightsFloat4t[k] = make([]float32, texelCount)
	}

	perWeightTexels := make([][]uint8, weightCount)
	perWeightContribs := make([][]float32, weightCount)

	addTexelEntry := func(tix int, widx [4]int, wint [4]int) {
		n := 0
		for i := 0; i < 4; i++ {
			if wint[i] == 0 {
				continue
			}
			w := widx[i]
			di.texelWeights4t[n][tix] = uint8(w)
			di.texelWeightsInt4t[n][tix] = uint8(wint[i])
			di.texelWeightsFloat4t[n][tix] = float32(wint[i]) * (1.0 / 16.0)
			perWeightTexels[w] = append(perWeightTexels[w], uint8(tix))
			perWeightContribs[w] = append(perWeightContribs[w], float32(wint[i])*(1.0/16.0))
			n++
		}
		di.texelWeightCount[tix] = uint8(n)
	}

	if zdim == 1 {
		xScale := (1024 + xdim/2) / (xdim - 1)
		yScale := (1024 + ydim/2) / (ydim - 1)

		for y := 0; y < ydim; y++ {
			for x := 0; x < xdim; x++ {
				tix := y*xdim + x

				xWeight := (xScale*x*(xW-1) + 32) >> 6
				yWeight := (yScale*y*(yW-1) + 32) >> 6

				xFrac := xWeight & 0xF
				yFrac := yWeight & 0xF
				xInt := xWeight >> 4
				yInt := yWeight >> 4

				q0 := xInt + yInt*xW
				q1 := q0 + 1
				q2 := q0 + xW
				q3 := q2 + 1

				prod := xFrac * yFrac
				w3 := (prod + 8) >> 4
				w1 := xFrac - w3
				w2 := yFrac - w3
				w0 := 16 - xFrac - yFrac + w3

				addTexelEntry(tix, [4]int{q0, q1, q2, q3}, [4]int{w0, w1, w2, w3})
			}
		}
	} else {
		xScale := (1024 + xdim/2) / (xdim - 1)
		yScale := (1024 + ydim/2) / (ydim - 1)
		zScale := (1024 + zdim/2) / (zdim - 1)

		N := xW
		NM := xW * yW

		tix := 0
		for z := 0; z < zdim; z++ {
			for y := 0; y < ydim; y++ {
				for x := 0; x < xdim; x++ {
					xWeight := (xScale*x*(xW-1) + 32) >> 6
					yWeight := (yScale*y*(yW-1) + 32) >> 6
					zWeight := (zScale*z*(zW-1) + 32) >> 6

					fs := xWeight & 0xF
					ft := yWeight & 0xF
					fp := zWeight & 0xF
					xInt := xWeight >> 4
					yInt := yWeight >> 4
					zInt := zWeight >> 4

					q0 := (zInt*yW+yInt)*xW + xInt
					q3 := ((zInt+1)*yW+(yInt+1))*xW + (xInt + 1)

					cas := 0
					if fs > ft {
						cas |= 4
					}
					if ft > fp {
						cas |= 2
					}
					if fs > fp {
						cas |= 1
					}

					s1, s2, w0, w1, w2, w3 := 0, 0, 0, 0, 0, 0
					switch cas {
					case 7:
						s1, s2 = 1, N
						w0, w1, w2, w3 = 16-fs, fs-ft, ft-fp, fp
					case 3:
						s1, s2 = N, 1
						w0, w1, w2, w3 = 16-ft, ft-fs, fs-fp, fp
					case 5:
						s1, s2 = 1, NM
						w0, w1, w2, w3 = 16-fs, fs-fp, fp-ft, ft
					case 4:
						s1, s2 = NM, 1
						w0, w1, w2, w3 = 16-fp, fp-fs, fs-ft, ft
					case 2:
						s1, s2 = N, NM
						w0, w1, w2, w3 = 16-ft, ft-fp, fp-fs, fs
					default:
						s1, s2 = NM, N
						w0, w1, w2, w3 = 16-fp, fp-ft, ft-fs, fs
					}

					q1 := q0 + s1
					q2 := q1 + s2

					addTexelEntry(tix, [4]int{q0, q1, q2, q3}, [4]int{w0, w1, w2, w3})
					tix++
				}
			}
		}
	}

	di.weightTexels = perWeightTexels
	di.weightTexelContribs = perWeightContribs
	di.texelWeightsTexel = make([][][4]uint8, weightCount)
	di.texelWeightsFloatTexel = make([][][4]float32, weightCount)
	for w := 0; w < weightCount; w++ {
		di.weightTexelCount[w] = uint8(len(perWeightTexels[w]))
		di.texelWeightsTexel[w] = make([][4]uint8, len(perWeightTexels[w]))
		di.texelWeightsFloatTexel[w] = make([][4]float32, len(perWeightTexels[w]))
		for j, t := range perWeightTexels[w] {
			for k := 0; k < 4; k++ {
				di.texelWeightsTexel[w][j][k] = di.texelWeights4t[k][t]
				di.texelWeightsFloatTexel[w][j][k] = di.texelWeightsFloat4t[k][t]
			}
		}
	}

	return di
}

// initPartitionTables fills the partitioning records for 2, 3 and 4
// partitions, collapsing duplicate and degenerate seeds, and appends the
// single-partition entry at the end.
func (bsd *blockSizeDescriptor) initPartitionTables() {
	bsd.partitions = make([]partitionInfo, 3*blockMaxPartitionings+1)

	smallBlock := bsd.texelCount < 32

	for pc := 2; pc <= blockMaxPartitions; pc++ {
		base := (pc - 2) * blockMaxPartitionings
		seen := map[[blockMaxPartitions]uint64]bool{}

		for seed := 0; seed < blockMaxPartitionings; seed++ {
			pi := &bsd.partitions[base+seed]

			tix := 0
			var counts [blockMaxPartitions]int
			for z := 0; z < bsd.zdim; z++ {
				for y := 0; y < bsd.ydim; y++ {
					for x := 0; x < bsd.xdim; x++ {
						part := selectPartition(seed, x, y, z, pc, smallBlock)
						pi.partitionOfTexel[tix] = part
						counts[part]++
						tix++
					}
				}
			}

			// A partitioning that leaves a partition empty wastes an endpoint
			// pair; leave it skipped.
			degenerate := false
			for p := 0; p < pc; p++ {
				if counts[p] == 0 {
					degenerate = true
				}
			}
			if degenerate {
				continue
			}

			var bitmaps [blockMaxPartitions]uint64
			for i, t := range bsd.kmeansTexels {
				bitmaps[pi.partitionOfTexel[t]] |= uint64(1) << uint(i)
			}

			// Canonicalize as a sorted multiset so partition-order permutations
			// of the same pattern collapse onto one seed.
			canon := bitmaps
			sort.Slice(canon[:pc], func(a, b int) bool { return canon[a] < canon[b] })
			if seen[canon] {
				continue
			}
			seen[canon] = true

			pi.partitionCount = pc
			pi.coverageBitmaps = bitmaps
			for p := 0; p < pc; p++ {
				pi.partitionTexelCount[p] = uint8(counts[p])
				pi.texelsOfPartition[p] = make([]uint8, 0, counts[p])
			}
			for t := 0; t < bsd.texelCount; t++ {
				p := pi.partitionOfTexel[t]
				pi.texelsOfPartition[p] = append(pi.texelsOfPartition[p], uint8(t))
			}
		}
	}

	// Degenerate single-partition entry.
	pi := &bsd.partitions[3*blockMaxPartitionings]
	pi.partitionCount = 1
	pi.partitionTexelCount[0] = uint8(bsd.texelCount)
	pi.texelsOfPartition[0] = make([]uint8, bsd.texelCount)
	for t := 0; t < bsd.texelCount; t++ {
		pi.texelsOfPartition[0][t] = uint8(t)
	}
	var bitmap uint64
	for i := range bsd.kmeansTexels {
		bitmap |= uint64(1) << uint(i)
	}
	pi.coverageBitmaps[0] = bitmap
}

// blockModeForIndex returns the block mode record for a raw 11-bit mode
// index, or nil if the mode is not active for this descriptor.
func (bsd *blockSizeDescriptor) blockModeForIndex(raw int) *blockMode {
	if raw < 0 || raw >= weightsMaxBlockModes {
		return nil
	}
	packed := bsd.blockModePackedIndex[raw]
	if packed == blockBadBlockMode {
		return nil
	}
	return &bsd.blockModes[packed]
}

// partitionTable returns the 1024 partitionings for a partition count, or the
// single degenerate entry for one partition.
func (bsd *blockSizeDescriptor) partitionTable(partitionCount int) []partitionInfo {
	if partitionCount == 1 {
		return bsd.partitions[3*blockMaxPartitionings:]
	}
	base := (partitionCount - 2) * blockMaxPartitionings
	return bsd.partitions[base : base+blockMaxPartitionings]
}

// partitionInfoFor returns the partitioning for a partition count and seed.
// For skipped seeds the returned record has partitionCount == 0.
func (bsd *blockSizeDescriptor) partitionInfoFor(partitionCount, index int) *partitionInfo {
	if partitionCount == 1 {
		return &bsd.partitions[3*blockMaxPartitionings]
	}
	return &bsd.partitions[(partitionCount-2)*blockMaxPartitionings+(index&(blockMaxPartitionings-1))]
}

func (bsd *blockSizeDescriptor) decimationInfoFor(mode int) *decimationInfo {
	return &bsd.decimationTables[mode]
}
