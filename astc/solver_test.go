package astc

import "testing"

func makeTestBlockAndWeights(t *testing.T, bsd *blockSizeDescriptor, fill func(x, y int) vfloat4) (*imageBlock, *errorWeightBlock) {
	t.Helper()

	blk := &imageBlock{texelCount: bsd.texelCount}
	blk.dataMin = vfloat4{1e38, 1e38, 1e38, 1e38}
	blk.dataMax = vfloat4{-1e38, -1e38, -1e38, -1e38}
	blk.grayscale = true

	idx := 0
	for y := 0; y < bsd.ydim; y++ {
		for x := 0; x < bsd.xdim; x++ {
			v := fill(x, y)
			blk.setTexel(idx, v)
			if idx == 0 {
				blk.originTexel = v
			}
			for c := 0; c < 4; c++ {
				blk.dataMin[c] = minF32(blk.dataMin[c], v[c])
				blk.dataMax[c] = maxF32(blk.dataMax[c], v[c])
			}
			if v[0] != v[1] || v[0] != v[2] {
				blk.grayscale = false
			}
			idx++
		}
	}

	ewb := &errorWeightBlock{}
	cfg := Config{CwR: 1, CwG: 1, CwB: 1, CwA: 1}
	img := &Image{Width: bsd.xdim, Height: bsd.ydim, Depth: 1, Type: TypeU8}
	computeErrorWeightBlock(&cfg, img, bsd, blk, ewb)
	return blk, ewb
}

func TestIdealWeightsSpanGradient(t *testing.T) {
	bsd := testBSD(t, 4, 4, 1)

	blk, ewb := makeTestBlockAndWeights(t, bsd, func(x, y int) vfloat4 {
		v := float32(x) * (65535.0 / 3.0)
		return vfloat4{v, v, v, 65535}
	})

	pi := bsd.partitionInfoFor(1, 0)
	var ei endpointsAndWeights
	computeIdealColorsAndWeights1Plane(blk, ewb, pi, &ei)

	// The darkest column maps to weight 0, the brightest to weight 1.
	for y := 0; y < 4; y++ {
		if ei.weights[y*4] > 0.01 {
			t.Fatalf("dark texel weight %f, want ~0", ei.weights[y*4])
		}
		if ei.weights[y*4+3] < 0.99 {
			t.Fatalf("bright texel weight %f, want ~1", ei.weights[y*4+3])
		}
	}

	// Endpoint 1 must be the bright end.
	if ei.ep.endpt1[0][0] < ei.ep.endpt0[0][0] {
		t.Fatal("endpoints are not oriented dark-to-bright")
	}
}

func TestDecimationSolverOutputsInRange(t *testing.T) {
	bsd := testBSD(t, 6, 6, 1)

	blk, ewb := makeTestBlockAndWeights(t, bsd, func(x, y int) vfloat4 {
		v := float32(x+y) * (65535.0 / 10.0)
		return vfloat4{v, v, v, 65535}
	})

	pi := bsd.partitionInfoFor(1, 0)
	var ei endpointsAndWeights
	computeIdealColorsAndWeights1Plane(blk, ewb, pi, &ei)

	for dm := 0; dm < bsd.decimationModeCount; dm++ {
		di := bsd.decimationInfoFor(dm)
		if bsd.decimationModes[dm].maxPrec1Plane < 0 {
			continue
		}

		ideal := make([]float32, blockMaxWeights)
		sig := make([]float32, blockMaxWeights)
		computeIdealWeightsForDecimation(&ei, di, ideal, sig)

		for w := 0; w < di.weightCount; w++ {
			if ideal[w] < 0 || ideal[w] > 1 {
				t.Fatalf("dm=%d weight %d out of range: %f", dm, w, ideal[w])
			}
			if sig[w] < 0 {
				t.Fatalf("dm=%d weight %d has negative significance", dm, w)
			}
		}

		// Quantizing the solved grid and scoring it against the ideal
		// weights gives a non-negative error at every grid size.
		uvalues := make([]float32, di.weightCount)
		pvalues := make([]uint8, di.weightCount)
		computeQuantizedWeightsForDecimation(di, 0, 1, ideal, uvalues, pvalues, quant32)

		errVal := computeErrorOfWeightSet1Plane(&ei, di, uvalues)
		if errVal < 0 {
			t.Fatalf("dm=%d negative weight set error", dm)
		}
	}
}

func TestAngularEndpointsCoverUniformRamp(t *testing.T) {
	samples := []float32{0, 1.0 / 3.0, 2.0 / 3.0, 1}
	sigs := []float32{1, 1, 1, 1}

	var low, high [12]float32
	angularEndpointsForQuantLevels(samples, sigs, low[:], high[:])

	// quant4 has exactly four levels; the grid should anchor close to the
	// sample positions.
	if low[int(quant4)] > 0.1 || high[int(quant4)] < 0.9 {
		t.Fatalf("quant4 range [%f, %f] does not cover the ramp", low[int(quant4)], high[int(quant4)])
	}
}

func TestFindBestPartitionCandidates(t *testing.T) {
	bsd := testBSD(t, 6, 6, 1)

	// Left half red, right half blue: a clean two-partition split.
	blk, ewb := makeTestBlockAndWeights(t, bsd, func(x, y int) vfloat4 {
		if x < 3 {
			return vfloat4{65535, 0, 0, 65535}
		}
		return vfloat4{0, 0, 65535, 65535}
	})

	uncor, samec := findBestPartitionCandidates(bsd, blk, ewb, 2, 256)

	for _, seed := range []int{uncor, samec} {
		pi := bsd.partitionInfoFor(2, seed)
		if pi.partitionCount != 2 {
			t.Fatalf("seed %d points at a skipped partitioning", seed)
		}
	}

	// The best uncorrelated seed must be a valid partitioning index.
	if uncor < 0 || uncor >= blockMaxPartitionings {
		t.Fatalf("seed %d out of range", uncor)
	}
}

func TestComputeAvgsAndDirs(t *testing.T) {
	bsd := testBSD(t, 4, 4, 1)

	blk, ewb := makeTestBlockAndWeights(t, bsd, func(x, y int) vfloat4 {
		v := float32(x) * (65535.0 / 3.0)
		return vfloat4{v, v / 2, 0, 65535}
	})

	pi := bsd.partitionInfoFor(1, 0)
	var pms [blockMaxPartitions]partitionMetrics
	computeAvgsAndDirs4Comp(pi, blk, ewb, pms[:])

	// The dominant direction must favor red over green (2:1 data slope) and
	// carry no blue.
	dir := pms[0].dir
	if absF32(dir[0]) <= absF32(dir[1]) {
		t.Fatalf("direction %v does not favor the red axis", dir)
	}
	if absF32(dir[2]) > 1e-3*absF32(dir[0]) {
		t.Fatalf("direction %v has a blue component", dir)
	}
}
