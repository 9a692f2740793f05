package astc

// compressionWorkingBuffers is the per-worker scratch memory for the
// compressor. Everything is allocated once at context creation; the per-block
// hot path performs no allocation.
type compressionWorkingBuffers struct {
	ei1 endpointsAndWeights
	ei2 endpointsAndWeights

	ewb errorWeightBlock

	// Decimated ideal weights, indexed by decimation mode. Plane 2 values
	// start at weightsPlane2Offset within each mode's slot.
	decWeightsIdealValue []float32
	decWeightsIdealSig   []float32

	// Quantized weights, indexed by packed block mode.
	decWeightsQuantUValue []float32
	decWeightsQuantPValue []uint8

	qwtBitcounts []int
	qwtErrors    []float32

	lowValues1  []float32
	highValues1 []float32
	lowValues2  []float32
	highValues2 []float32

	candidates [tuneMaxTrialCandidates]formatCandidate

	scratchBlock imageBlock
}

func newCompressionWorkingBuffers(bsd *blockSizeDescriptor) *compressionWorkingBuffers {
	return &compressionWorkingBuffers{
		decWeightsIdealValue:  make([]float32, bsd.decimationModeCount*blockMaxWeights),
		decWeightsIdealSig:    make([]float32, bsd.decimationModeCount*blockMaxWeights),
		decWeightsQuantUValue: make([]float32, bsd.blockModeCount*blockMaxWeights),
		decWeightsQuantPValue: make([]uint8, bsd.blockModeCount*blockMaxWeights),
		qwtBitcounts:          make([]int, bsd.blockModeCount),
		qwtErrors:             make([]float32, bsd.blockModeCount),
		lowValues1:            make([]float32, bsd.blockModeCount),
		highValues1:           make([]float32, bsd.blockModeCount),
		lowValues2:            make([]float32, bsd.blockModeCount),
		highValues2:           make([]float32, bsd.blockModeCount),
	}
}

// packCandidateEndpoints packs every partition's endpoints for a format
// candidate and settles on the color quant level the decoder will derive from
// the actual bit budget: matched formats free up bits and raise the level,
// and opportunistic variant packing can flip the matched state, so the pack
// iterates until the pair is consistent (disabling the variants if it fails
// to converge). Returns false when no legal level exists.
func packCandidateEndpoints(ep *endpoints, rgbs, rgbo []vfloat4, cand *formatCandidate, partitionCount, weightBits int, dualPlane bool, scb *symbolicBlock) bool {
	totalInts := 0
	for p := 0; p < partitionCount; p++ {
		totalInts += colorFormatIntCount(int(cand.partitionFormats[p]))
	}
	pairs := totalInts / 2

	levelFor := func(matched bool) int {
		bits := colorBitsAvailable(partitionCount, weightBits, dualPlane, matched)
		return int(quantModeTable[pairs][minInt(bits, 127)])
	}

	level := int(cand.quantLevel)
	allowVariants := true
	for iter := 0; iter < 8; iter++ {
		matched := true
		for p := 0; p < partitionCount; p++ {
			actual, vals := packColorEndpoints(ep.endpt0[p], ep.endpt1[p], rgbs[p], rgbo[p],
				int(cand.partitionFormats[p]), allowVariants, quantMethod(level))
			scb.colorFormats[p] = actual
			scb.colorValues[p] = vals
			if actual != scb.colorFormats[0] {
				matched = false
			}
		}

		want := levelFor(matched)
		if want < int(quant6) {
			return false
		}
		if want == level {
			scb.quantMode = quantMethod(level)
			scb.formatsMatched = matched
			return true
		}
		level = want
		if iter >= 3 {
			// Variant packing keeps flipping the matched state; force the
			// base formats, whose outcome depends only on the request.
			allowVariants = false
		}
	}
	return false
}

// compressSymbolicBlockForPartition1Plane runs the single-plane pipeline for
// one partitioning: ideal solve, per-decimation grid solve, angular ranges,
// per-mode quantization, format search, and candidate refinement. It returns
// the error of the best encoding found, updating scbOut when it improves on
// bestError.
func compressSymbolicBlockForPartition1Plane(cfg *Config, bsd *blockSizeDescriptor, blk *imageBlock, ewb *errorWeightBlock, onlyAlways bool, partitionIndex int, pi *partitionInfo, wb *compressionWorkingBuffers, scbOut *symbolicBlock, bestError float32) float32 {
	ei := &wb.ei1
	computeIdealColorsAndWeights1Plane(blk, ewb, pi, ei)

	// Solve the ideal weights on every active decimated grid.
	for dm := 0; dm < bsd.decimationModeCount; dm++ {
		mode := &bsd.decimationModes[dm]
		if mode.maxPrec1Plane < 0 || !mode.percentileHit {
			continue
		}
		if onlyAlways && !mode.alwaysHit {
			continue
		}
		base := dm * blockMaxWeights
		computeIdealWeightsForDecimation(ei, bsd.decimationInfoFor(dm), wb.decWeightsIdealValue[base:], wb.decWeightsIdealSig[base:])
	}

	computeAngularEndpoints1Plane(onlyAlways, bsd, wb.decWeightsIdealValue, wb.decWeightsIdealSig, wb.lowValues1, wb.highValues1)

	for i := 0; i < bsd.blockModeCount; i++ {
		wb.qwtBitcounts[i] = -1
		wb.qwtErrors[i] = errorCalcDefault

		bm := &bsd.blockModes[i]
		if bm.isDualPlane || !bm.percentileHit {
			continue
		}
		if onlyAlways && !bm.alwaysHit {
			continue
		}

		dm := int(bm.decimationMode)
		di := bsd.decimationInfoFor(dm)
		idealBase := dm * blockMaxWeights
		quantBase := i * blockMaxWeights

		computeQuantizedWeightsForDecimation(di,
			wb.lowValues1[i], wb.highValues1[i],
			wb.decWeightsIdealValue[idealBase:idealBase+di.weightCount],
			wb.decWeightsQuantUValue[quantBase:quantBase+di.weightCount],
			wb.decWeightsQuantPValue[quantBase:quantBase+di.weightCount],
			bm.quantMode)

		wb.qwtErrors[i] = computeErrorOfWeightSet1Plane(ei, di, wb.decWeightsQuantUValue[quantBase:quantBase+di.weightCount])
		wb.qwtBitcounts[i] = int(bm.weightBits)
	}

	encodeHDRRGB := blk.rgbLNS[0]
	encodeHDRAlpha := blk.alphaLNS[0]

	count := computeIdealEndpointFormats(bsd, pi, blk, ewb, &ei.ep, encodeHDRRGB, encodeHDRAlpha, false,
		wb.qwtBitcounts, wb.qwtErrors, cfg.TuneCandidateLimit, wb.candidates[:])

	for ci := 0; ci < count; ci++ {
		cand := &wb.candidates[ci]
		bm := &bsd.blockModes[cand.blockMode]
		dm := int(bm.decimationMode)
		di := bsd.decimationInfoFor(dm)
		quantBase := cand.blockMode * blockMaxWeights
		pvals := wb.decWeightsQuantPValue[quantBase : quantBase+di.weightCount]

		ep := ei.ep
		var rgbs, rgbo [blockMaxPartitions]vfloat4
		recomputeIdealColors1Plane(blk, ewb, pi, di, bm.quantMode, pvals, &ep, rgbs[:], rgbo[:])

		var scb symbolicBlock
		scb.blockType = symBlockNonConst
		scb.blockMode = bm.modeIndex
		scb.partitionCount = uint8(pi.partitionCount)
		scb.partitionIndex = uint16(partitionIndex)
		scb.plane2Component = -1
		scb.quantMode = cand.quantLevel

		if !packCandidateEndpoints(&ep, rgbs[:], rgbo[:], cand, pi.partitionCount, int(bm.weightBits), false, &scb) {
			continue
		}

		uqMap := &weightUnscrambleAndUnquantMap[bm.quantMode]
		for w := 0; w < di.weightCount; w++ {
			scb.weights[w] = uqMap[pvals[w]]
		}

		errVal := computeSymbolicBlockDifference(cfg, bsd, &scb, blk, ewb, &wb.scratchBlock)
		if errVal < 0 {
			continue
		}
		if errVal < bestError {
			bestError = errVal
			scb.errorVal = errVal
			*scbOut = scb
		}
	}

	return bestError
}

// compressSymbolicBlock2Planes runs the dual-plane pipeline for one plane 2
// component. Dual-plane encodings use a single partition.
func compressSymbolicBlock2Planes(cfg *Config, bsd *blockSizeDescriptor, blk *imageBlock, ewb *errorWeightBlock, plane2Component int, wb *compressionWorkingBuffers, scbOut *symbolicBlock, bestError float32) float32 {
	ei1 := &wb.ei1
	ei2 := &wb.ei2
	pi := bsd.partitionInfoFor(1, 0)
	computeIdealColorsAndWeights2Planes(blk, ewb, pi, plane2Component, ei1, ei2)

	for dm := 0; dm < bsd.decimationModeCount; dm++ {
		mode := &bsd.decimationModes[dm]
		if mode.maxPrec2Planes < 0 || !mode.percentileHit {
			continue
		}
		di := bsd.decimationInfoFor(dm)
		base := dm * blockMaxWeights
		computeIdealWeightsForDecimation(ei1, di, wb.decWeightsIdealValue[base:], wb.decWeightsIdealSig[base:])
		computeIdealWeightsForDecimation(ei2, di, wb.decWeightsIdealValue[base+weightsPlane2Offset:], wb.decWeightsIdealSig[base+weightsPlane2Offset:])
	}

	computeAngularEndpoints2Planes(bsd, wb.decWeightsIdealValue, wb.decWeightsIdealSig,
		wb.lowValues1, wb.highValues1, wb.lowValues2, wb.highValues2)

	for i := 0; i < bsd.blockModeCount; i++ {
		wb.qwtBitcounts[i] = -1
		wb.qwtErrors[i] = errorCalcDefault

		bm := &bsd.blockModes[i]
		if !bm.isDualPlane || !bm.percentileHit {
			continue
		}

		dm := int(bm.decimationMode)
		di := bsd.decimationInfoFor(dm)
		idealBase := dm * blockMaxWeights
		quantBase := i * blockMaxWeights

		computeQuantizedWeightsForDecimation(di,
			wb.lowValues1[i], wb.highValues1[i],
			wb.decWeightsIdealValue[idealBase:idealBase+di.weightCount],
			wb.decWeightsQuantUValue[quantBase:quantBase+di.weightCount],
			wb.decWeightsQuantPValue[quantBase:quantBase+di.weightCount],
			bm.quantMode)
		computeQuantizedWeightsForDecimation(di,
			wb.lowValues2[i], wb.highValues2[i],
			wb.decWeightsIdealValue[idealBase+weightsPlane2Offset:idealBase+weightsPlane2Offset+di.weightCount],
			wb.decWeightsQuantUValue[quantBase+weightsPlane2Offset:quantBase+weightsPlane2Offset+di.weightCount],
			wb.decWeightsQuantPValue[quantBase+weightsPlane2Offset:quantBase+weightsPlane2Offset+di.weightCount],
			bm.quantMode)

		wb.qwtErrors[i] = computeErrorOfWeightSet2Planes(ei1, ei2, di,
			wb.decWeightsQuantUValue[quantBase:quantBase+di.weightCount],
			wb.decWeightsQuantUValue[quantBase+weightsPlane2Offset:quantBase+weightsPlane2Offset+di.weightCount])
		wb.qwtBitcounts[i] = int(bm.weightBits)
	}

	encodeHDRRGB := blk.rgbLNS[0]
	encodeHDRAlpha := blk.alphaLNS[0]

	count := computeIdealEndpointFormats(bsd, pi, blk, ewb, &ei1.ep, encodeHDRRGB, encodeHDRAlpha, true,
		wb.qwtBitcounts, wb.qwtErrors, cfg.TuneCandidateLimit, wb.candidates[:])

	for ci := 0; ci < count; ci++ {
		cand := &wb.candidates[ci]
		bm := &bsd.blockModes[cand.blockMode]
		dm := int(bm.decimationMode)
		di := bsd.decimationInfoFor(dm)
		quantBase := cand.blockMode * blockMaxWeights
		pvals1 := wb.decWeightsQuantPValue[quantBase : quantBase+di.weightCount]
		pvals2 := wb.decWeightsQuantPValue[quantBase+weightsPlane2Offset : quantBase+weightsPlane2Offset+di.weightCount]

		ep := ei1.ep
		var rgbs, rgbo vfloat4
		recomputeIdealColors2Planes(blk, ewb, di, bm.quantMode, pvals1, pvals2, &ep, &rgbs, &rgbo, plane2Component)

		var scb symbolicBlock
		scb.blockType = symBlockNonConst
		scb.blockMode = bm.modeIndex
		scb.partitionCount = 1
		scb.partitionIndex = 0
		scb.plane2Component = int8(plane2Component)
		scb.quantMode = cand.quantLevel

		rgbsArr := [blockMaxPartitions]vfloat4{rgbs}
		rgboArr := [blockMaxPartitions]vfloat4{rgbo}
		if !packCandidateEndpoints(&ep, rgbsArr[:], rgboArr[:], cand, 1, int(bm.weightBits), true, &scb) {
			continue
		}

		uqMap := &weightUnscrambleAndUnquantMap[bm.quantMode]
		for w := 0; w < di.weightCount; w++ {
			scb.weights[w] = uqMap[pvals1[w]]
			scb.weights[w+weightsPlane2Offset] = uqMap[pvals2[w]]
		}

		errVal := computeSymbolicBlockDifference(cfg, bsd, &scb, blk, ewb, &wb.scratchBlock)
		if errVal < 0 {
			continue
		}
		if errVal < bestError {
			bestError = errVal
			scb.errorVal = errVal
			*scbOut = scb
		}
	}

	return bestError
}

// blockMeanColor is the plain average of the block texels, used for the
// best-effort constant fallback when no candidate encoding survives.
func blockMeanColor(blk *imageBlock) vfloat4 {
	var sum vfloat4
	for t := 0; t < blk.texelCount; t++ {
		sum = sum.add(blk.texel(t))
	}
	return sum.scale(1 / float32(blk.texelCount))
}

// constantColorSymbolic builds the constant-color encoding for a color in the
// block's scaled float domain.
func constantColorSymbolic(blk *imageBlock, color vfloat4) symbolicBlock {
	var scb symbolicBlock
	if blk.rgbLNS[0] || blk.alphaLNS[0] {
		scb.blockType = symBlockConstF16
		for c := 0; c < 4; c++ {
			code := uint16(clampF32(color[c], 0, 65535))
			lns := blk.rgbLNS[0]
			if c == 3 {
				lns = blk.alphaLNS[0]
			}
			if lns {
				scb.constantColor[c] = lnsToSF16(code)
			} else {
				scb.constantColor[c] = unorm16ToSF16(code)
			}
		}
	} else {
		scb.blockType = symBlockConstU16
		for c := 0; c < 4; c++ {
			scb.constantColor[c] = uint16(clampF32(color[c]+0.5, 0, 65535))
		}
	}
	return scb
}

// dualPlaneCandidateComponent picks the channel least correlated with the
// remaining channels, and reports whether it clears the correlation cutoff.
func dualPlaneCandidateComponent(blk *imageBlock, cutoff float32) (int, bool) {
	bestComp := -1
	bestCorr := float32(2)

	for c := 0; c < 4; c++ {
		if blk.isConstantChannel(c) {
			continue
		}

		var sumX, sumY, sumXX, sumYY, sumXY float32
		n := float32(blk.texelCount)
		for t := 0; t < blk.texelCount; t++ {
			tex := blk.texel(t)
			x := tex[c]
			y := (tex.hsum() - x) * (1.0 / 3.0)
			sumX += x
			sumY += y
			sumXX += x * x
			sumYY += y * y
			sumXY += x * y
		}

		varX := sumXX - sumX*sumX/n
		varY := sumYY - sumY*sumY/n
		cov := sumXY - sumX*sumY/n
		if varX <= 0 || varY <= 0 {
			continue
		}
		corr := absF32(cov / sqrtF32(varX*varY))
		if corr < bestCorr {
			bestCorr = corr
			bestComp = c
		}
	}

	return bestComp, bestComp >= 0 && bestCorr < cutoff
}

// compressBlock compresses one image block to a physical block. The output
// is always a well-formed 16-byte encoding: when every candidate is rejected
// the block falls back to a constant-color encoding of the block's mean color.
func compressBlock(cfg *Config, bsd *blockSizeDescriptor, blk *imageBlock, wb *compressionWorkingBuffers) [BlockBytes]byte {
	// Constant color blocks short-circuit straight to a void-extent block.
	if blk.isConstant() {
		scb := constantColorSymbolic(blk, blk.originTexel)
		pcb, err := symbolicToPhysical(bsd, &scb)
		if err == nil {
			return pcb
		}
	}

	bestError := float32(errorCalcDefault)
	var bestSCB symbolicBlock

	// Single partition, single plane.
	pi1 := bsd.partitionInfoFor(1, 0)
	bestError = compressSymbolicBlockForPartition1Plane(cfg, bsd, blk, &wb.ewb, false, 0, pi1, wb, &bestSCB, bestError)

	// Dual plane trial on the least correlated component.
	if cfg.Tune2PlaneEarlyOutLimitCorrelation > 0 {
		if comp, ok := dualPlaneCandidateComponent(blk, cfg.Tune2PlaneEarlyOutLimitCorrelation); ok {
			bestError = compressSymbolicBlock2Planes(cfg, bsd, blk, &wb.ewb, comp, wb, &bestSCB, bestError)
		}
	}

	// Multi-partition trials.
	for pc := 2; pc <= cfg.TunePartitionCountLimit; pc++ {
		uncor, samec := findBestPartitionCandidates(bsd, blk, &wb.ewb, pc, cfg.TunePartitionIndexLimit)

		seeds := [2]int{uncor, samec}
		for si, seed := range seeds {
			if si == 1 && seed == seeds[0] {
				continue
			}
			pi := bsd.partitionInfoFor(pc, seed)
			if pi.partitionCount == 0 {
				continue
			}
			bestError = compressSymbolicBlockForPartition1Plane(cfg, bsd, blk, &wb.ewb, false, seed, pi, wb, &bestSCB, bestError)
		}
	}

	if bestError >= errorCalcDefault {
		bestSCB = constantColorSymbolic(blk, blockMeanColor(blk))
	}

	pcb, err := symbolicToPhysical(bsd, &bestSCB)
	if err != nil {
		fallback := constantColorSymbolic(blk, blockMeanColor(blk))
		pcb, _ = symbolicToPhysical(bsd, &fallback)
	}
	return pcb
}
