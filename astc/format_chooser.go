package astc

// Endpoint format selection: the joint search over color format, block mode
// and color quant level under the 128-bit budget. This follows the shape of
// Source/astcenc_pick_best_endpoint_format.cpp: per-partition estimates of
// the error of substituting cheaper endpoint representations, folded with a
// per-quant-level baseline quantization error, then a combination pass per
// block mode against the bits left over by the weight grid.

// encodingChoiceErrors estimates the cost of the cheaper endpoint encodings
// for one partition.
type encodingChoiceErrors struct {
	rgbScaleError   float32
	rgbLumaError    float32
	luminanceError  float32
	alphaDropError  float32
	canOffsetEncode bool
	canBlueContract bool
}

// computeEncodingChoiceErrors fills the per-partition substitution errors.
func computeEncodingChoiceErrors(blk *imageBlock, ewb *errorWeightBlock, pi *partitionInfo, ep *endpoints, eci []encodingChoiceErrors) {
	defaultAlpha := blk.defaultAlpha()

	for p := 0; p < pi.partitionCount; p++ {
		texels := pi.texelsOfPartition[p]

		// Weighted mean of the RGB data, for the same-chroma line.
		var sum vfloat4
		var wsum float32
		for _, t := range texels {
			w := ewb.texelWeightRGB[t]
			tex := blk.texel(int(t))
			sum[0] += tex[0] * w
			sum[1] += tex[1] * w
			sum[2] += tex[2] * w
			wsum += w
		}
		if wsum > 1e-10 {
			sum = sum.scale(1 / wsum)
		}

		samecDir := vfloat4{sum[0], sum[1], sum[2], 0}.normalizeSafe(vfloat4{0.577, 0.577, 0.577, 0})
		lumaDir := vfloat4{0.577350269, 0.577350269, 0.577350269, 0}

		var rgbScaleError, lumaError, alphaDropError float32
		for _, tt := range texels {
			t := int(tt)
			w := ewb.texelWeightRGB[t]
			tex := blk.texel(t)
			rgb := vfloat4{tex[0], tex[1], tex[2], 0}

			paramS := rgb.dot(samecDir)
			perpS := rgb.sub(samecDir.scale(paramS))
			rgbScaleError += w * perpS.dot(perpS)

			paramL := rgb.dot(lumaDir)
			perpL := rgb.sub(lumaDir.scale(paramL))
			lumaError += w * perpL.dot(perpL)

			da := tex[3] - defaultAlpha
			alphaDropError += ewb.texelWeightA[t] * da * da
		}

		e0 := ep.endpt0[p]
		e1 := ep.endpt1[p]

		canOffset := true
		for c := 0; c < 4; c++ {
			if absF32(e1[c]-e0[c]) > 0.12*65535 {
				canOffset = false
			}
		}

		canBlueContract := true
		for _, e := range [2]vfloat4{e0, e1} {
			rc := e[0]*2 - e[2]
			gc := e[1]*2 - e[2]
			if rc < 0 || rc > 65535 || gc < 0 || gc > 65535 {
				canBlueContract = false
			}
		}

		eci[p] = encodingChoiceErrors{
			rgbScaleError:   rgbScaleError,
			rgbLumaError:    lumaError,
			luminanceError:  lumaError,
			alphaDropError:  alphaDropError,
			canOffsetEncode: canOffset,
			canBlueContract: canBlueContract,
		}
	}
}

// baselineQuantErrorScale is the expected per-channel squared quantization
// error for a quant level, in the scaled [0, 65535] color domain.
var baselineQuantErrorScale [21]float32

func init() {
	for q := quant2; q <= quant256; q++ {
		step := 65535.0 / float32(quantLevel(q)-1)
		baselineQuantErrorScale[q] = step * step * (1.0 / 12.0)
	}
}

// perPartitionFormatErrors holds, for one partition, the best format and its
// estimated error for every (quant level, integer pair count) cell.
type perPartitionFormatErrors struct {
	bestError  [21][4]float32
	bestFormat [21][4]uint8
}

// computeColorErrorForEveryIntegerCountAndQuantLevel fills the table for one
// partition.
func computeColorErrorForEveryIntegerCountAndQuantLevel(encodeHDRRGB, encodeHDRAlpha bool, pi *partitionInfo, p int, blk *imageBlock, ewb *errorWeightBlock, eci *encodingChoiceErrors, out *perPartitionFormatErrors) {
	var rgbWeightSum, alphaWeightSum float32
	for _, tt := range pi.texelsOfPartition[p] {
		t := int(tt)
		ew := ewb.errorWeights[t]
		rgbWeightSum += ew[0] + ew[1] + ew[2]
		alphaWeightSum += ew[3]
	}

	alphaUsed := !blk.isConstantChannel(3) || blk.dataMin[3] != blk.defaultAlpha()

	for q := quantMethod(0); q <= quant256; q++ {
		for pairs := 0; pairs < 4; pairs++ {
			out.bestError[q][pairs] = errorCalcDefault
			out.bestFormat[q][pairs] = fmtRGBA
		}
		if q < quant6 {
			continue
		}

		qerr := baselineQuantErrorScale[q]
		offsetQerr := qerr
		if eci.canOffsetEncode {
			// Offset encodings spend their budget on a narrower range.
			offsetQerr = qerr * 0.25
		}

		alphaDrop := float32(0)
		if alphaUsed {
			alphaDrop = eci.alphaDropError
		}

		if encodeHDRRGB {
			// HDR formats quantize a wider dynamic range; bias the baseline
			// error up to reflect the coarser effective precision.
			hdrQerr := qerr * 2

			out.bestError[q][0] = eci.luminanceError + alphaDrop + hdrQerr*rgbWeightSum
			out.bestFormat[q][0] = fmtHDRLuminanceLargeRange

			out.bestError[q][1] = eci.rgbScaleError + alphaDrop + hdrQerr*rgbWeightSum
			out.bestFormat[q][1] = fmtHDRRGBScale

			out.bestError[q][2] = alphaDrop + hdrQerr*rgbWeightSum
			out.bestFormat[q][2] = fmtHDRRGB

			if encodeHDRAlpha {
				out.bestError[q][3] = hdrQerr * (rgbWeightSum + alphaWeightSum)
				out.bestFormat[q][3] = fmtHDRRGBA
			} else {
				out.bestError[q][3] = hdrQerr*rgbWeightSum + qerr*alphaWeightSum
				out.bestFormat[q][3] = fmtHDRRGBLDRAlpha
			}
			continue
		}

		// 2 integers: luminance.
		out.bestError[q][0] = eci.luminanceError + alphaDrop + offsetQerr*rgbWeightSum
		out.bestFormat[q][0] = fmtLuminance

		// 4 integers: luminance+alpha or RGB scale.
		laErr := eci.luminanceError + offsetQerr*(rgbWeightSum+alphaWeightSum)
		rgbsErr := eci.rgbScaleError + alphaDrop + qerr*rgbWeightSum
		if alphaUsed && laErr < rgbsErr {
			out.bestError[q][1] = laErr
			out.bestFormat[q][1] = fmtLuminanceAlpha
		} else {
			out.bestError[q][1] = rgbsErr
			out.bestFormat[q][1] = fmtRGBScale
		}

		// 6 integers: RGB or RGB scale + alpha.
		rgbErr := alphaDrop + offsetQerr*rgbWeightSum
		rgbsaErr := eci.rgbScaleError + qerr*(rgbWeightSum+alphaWeightSum)
		if alphaUsed && rgbsaErr < rgbErr {
			out.bestError[q][2] = rgbsaErr
			out.bestFormat[q][2] = fmtRGBScaleAlpha
		} else {
			out.bestError[q][2] = rgbErr
			out.bestFormat[q][2] = fmtRGB
		}

		// 8 integers: RGBA.
		out.bestError[q][3] = offsetQerr * (rgbWeightSum + alphaWeightSum)
		out.bestFormat[q][3] = fmtRGBA
	}
}

// colorBitsAvailable returns the bit budget left for the endpoint integers.
func colorBitsAvailable(partitionCount, weightBits int, dualPlane, formatsMatched bool) int {
	var colorBits int
	switch partitionCount {
	case 1:
		colorBits = 115 - 4
	default:
		colorBits = 113 - 4 - partitionIndexBits
	}
	colorBits -= weightBits
	if partitionCount > 1 && !formatsMatched {
		colorBits -= 3*partitionCount - 4
	}
	if dualPlane {
		colorBits -= 2
	}
	if colorBits < 0 {
		colorBits = 0
	}
	return colorBits
}

// formatCandidate is one entry returned by computeIdealEndpointFormats.
type formatCandidate struct {
	blockMode        int // packed index into bsd.blockModes
	quantLevel       quantMethod
	quantLevelMod    quantMethod
	partitionFormats [blockMaxPartitions]uint8
	totalError       float32
}

// computeIdealEndpointFormats finds, for each feasible block mode, the best
// set of per-partition endpoint formats and color quant level, and returns up
// to tuneCandidateLimit candidates in ascending error order.
//
// qwtBitcounts and qwtErrors are indexed by packed block mode; infeasible
// modes carry a negative bitcount.
func computeIdealEndpointFormats(bsd *blockSizeDescriptor, pi *partitionInfo, blk *imageBlock, ewb *errorWeightBlock, ep *endpoints, encodeHDRRGB, encodeHDRAlpha, dualPlane bool, qwtBitcounts []int, qwtErrors []float32, tuneCandidateLimit int, candidates []formatCandidate) int {
	partitionCount := pi.partitionCount

	var eci [blockMaxPartitions]encodingChoiceErrors
	computeEncodingChoiceErrors(blk, ewb, pi, ep, eci[:])

	var tables [blockMaxPartitions]perPartitionFormatErrors
	for p := 0; p < partitionCount; p++ {
		computeColorErrorForEveryIntegerCountAndQuantLevel(encodeHDRRGB, encodeHDRAlpha, pi, p, blk, ewb, &eci[p], &tables[p])
	}

	count := 0

	insert := func(c formatCandidate) {
		pos := count
		for pos > 0 && candidates[pos-1].totalError > c.totalError {
			pos--
		}
		if pos >= tuneCandidateLimit {
			return
		}
		if count < tuneCandidateLimit {
			count++
		}
		copy(candidates[pos+1:count], candidates[pos:count-1])
		candidates[pos] = c
	}

	for i := 0; i < bsd.blockModeCount; i++ {
		if qwtBitcounts[i] < 0 || qwtErrors[i] >= errorCalcDefault {
			continue
		}
		bm := &bsd.blockModes[i]
		if bm.isDualPlane != dualPlane {
			continue
		}

		bitsUnmatched := colorBitsAvailable(partitionCount, qwtBitcounts[i], dualPlane, false)
		bitsMatched := colorBitsAvailable(partitionCount, qwtBitcounts[i], dualPlane, true)

		bestErr := float32(errorCalcDefault)
		var best formatCandidate

		for totalPairs := partitionCount; totalPairs <= 4*partitionCount; totalPairs++ {
			if 2*totalPairs > blockMaxColorInts {
				break
			}
			ql := quantModeTable[totalPairs][minInt(bitsUnmatched, 127)]
			qlMod := quantModeTable[totalPairs][minInt(bitsMatched, 127)]
			if ql < int8(quant6) {
				continue
			}

			level := quantMethod(ql)
			levelMod := level
			if qlMod > ql {
				levelMod = quantMethod(qlMod)
			}

			// Distribute the pair budget across partitions, restricted to
			// adjacent endpoint classes so the formats stay encodable in the
			// shared class field.
			for lowClass := 0; lowClass <= 2; lowClass++ {
				const inf = float32(errorCalcDefault)
				var dp [17]float32
				var dpChoice [blockMaxPartitions][17]uint8
				for t := range dp {
					dp[t] = inf
				}
				dp[0] = 0

				for p := 0; p < partitionCount; p++ {
					var next [17]float32
					for t := range next {
						next[t] = inf
					}
					for t := 0; t <= 4*p; t++ {
						if dp[t] >= inf {
							continue
						}
						for pairs := lowClass + 1; pairs <= minInt(lowClass+2, 4); pairs++ {
							err := dp[t] + tables[p].bestError[level][pairs-1]
							if err < next[t+pairs] {
								next[t+pairs] = err
								dpChoice[p][t+pairs] = uint8(pairs)
							}
						}
					}
					dp = next
				}

				if dp[totalPairs] >= inf {
					continue
				}

				total := qwtErrors[i] + dp[totalPairs]
				if total >= bestErr {
					continue
				}

				cand := formatCandidate{
					blockMode:     i,
					quantLevel:    level,
					quantLevelMod: levelMod,
					totalError:    total,
				}
				t := totalPairs
				for p := partitionCount - 1; p >= 0; p-- {
					pairs := int(dpChoice[p][t])
					cand.partitionFormats[p] = tables[p].bestFormat[level][pairs-1]
					t -= pairs
				}
				bestErr = total
				best = cand
			}
		}

		if bestErr < errorCalcDefault {
			insert(best)
		}
	}

	return count
}
