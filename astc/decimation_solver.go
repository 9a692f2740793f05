package astc

// bilinearInfill interpolates the weight for one texel from the up-to-4
// contributing weights of a decimated grid.
func bilinearInfill(di *decimationInfo, weights []float32, index int) float32 {
	return (weights[di.texelWeights4t[0][index]]*di.texelWeightsFloat4t[0][index] +
		weights[di.texelWeights4t[1][index]]*di.texelWeightsFloat4t[1][index]) +
		(weights[di.texelWeights4t[2][index]]*di.texelWeightsFloat4t[2][index] +
			weights[di.texelWeights4t[3][index]]*di.texelWeightsFloat4t[3][index])
}

// decimationDescentSteps is the fixed number of steepest-descent refinement
// passes run over the decimated grid.
const decimationDescentSteps = 2

// computeIdealWeightsForDecimation solves the ideal weights on a decimated
// grid. The initial value of every stored weight is the inverse-bilinear
// weighted mean of the ideal weights of its contributing texels; a fixed
// number of steepest-descent steps then move each weight toward the values
// that minimize the infill error, damped by the bilinear factors.
//
// decWeightIdealSig receives the significance of each stored weight: the sum
// of the error scales of the texels it contributes to.
func computeIdealWeightsForDecimation(eai *endpointsAndWeights, di *decimationInfo, decWeightIdealValue, decWeightIdealSig []float32) {
	// An undecimated grid needs no solving.
	if di.weightCount == di.texelCount {
		for t := 0; t < di.texelCount; t++ {
			decWeightIdealValue[t] = eai.weights[t]
			decWeightIdealSig[t] = eai.weightErrorScale[t]
		}
		return
	}

	for w := 0; w < di.weightCount; w++ {
		weightSum := float32(1e-10)
		initial := float32(0)
		sig := float32(0)

		texels := di.weightTexels[w]
		contribs := di.weightTexelContribs[w]
		for j, tt := range texels {
			t := int(tt)
			contrib := contribs[j] * eai.weightErrorScale[t]
			weightSum += contrib
			initial += eai.weights[t] * contrib
			sig += eai.weightErrorScale[t]
		}

		decWeightIdealValue[w] = initial / weightSum
		decWeightIdealSig[w] = sig
	}

	for step := 0; step < decimationDescentSteps; step++ {
		for w := 0; w < di.weightCount; w++ {
			errorChange0 := float32(1e-10)
			errorChange1 := float32(0)

			texels := di.weightTexels[w]
			contribs := di.weightTexelContribs[w]
			for j, tt := range texels {
				t := int(tt)
				contrib := contribs[j]
				scale := eai.weightErrorScale[t] * contrib

				infilled := bilinearInfill(di, decWeightIdealValue, t)
				errorChange0 += contrib * scale
				errorChange1 += (infilled - eai.weights[t]) * scale
			}

			decWeightIdealValue[w] = clamp01(decWeightIdealValue[w] - errorChange1/errorChange0)
		}
	}
}

// computeQuantizedWeightsForDecimation quantizes the solved weight grid
// against the (lowBound, highBound) range at the requested quant level.
//
// When an ideal value is exactly halfway between two codepoints the smaller
// unquantized value wins, matching the canonical encoder's rounding.
func computeQuantizedWeightsForDecimation(di *decimationInfo, lowBound, highBound float32, decWeightIdealValue []float32, decWeightQuantUValue []float32, decWeightQuantPValue []uint8, quantLevel quantMethod) {
	lowBound = clamp01(lowBound)
	highBound = clamp01(highBound)
	if highBound <= lowBound {
		lowBound = 0
		highBound = 1
	}

	rscale := highBound - lowBound
	scale := 1 / rscale

	qx := &quantAndXferTables[quantLevel]
	levels := quantLevel2Count(quantLevel)

	for w := 0; w < di.weightCount; w++ {
		ix := clamp01((decWeightIdealValue[w] - lowBound) * scale)
		target := ix * 64.0

		// Nearest codepoint in unscrambled order; strict comparison keeps the
		// smaller value on an exact tie.
		best := 0
		bestDiff := float32(1e30)
		for i := 0; i < levels; i++ {
			d := absF32(qx.unquantizedValueUnsc[i] - target)
			if d < bestDiff {
				bestDiff = d
				best = i
			}
		}

		decWeightQuantPValue[w] = qx.scrambleMap[best]
		decWeightQuantUValue[w] = (qx.unquantizedValueUnsc[best]*(1.0/64.0))*rscale + lowBound
	}
}

// quantLevel2Count is quantLevel() restricted to the weight quant range.
func quantLevel2Count(q quantMethod) int {
	if q > quant32 {
		return 0
	}
	return quantLevel(q)
}

// computeErrorOfWeightSet1Plane accumulates the infill error of a quantized
// decimated grid against the ideal per-texel weights.
func computeErrorOfWeightSet1Plane(eai *endpointsAndWeights, di *decimationInfo, decWeightQuantUValue []float32) float32 {
	var errorSum float32

	if eai.isConstantWeightErrorScale {
		// All error scales equal; hoist the multiply out of the loop.
		scale := eai.weightErrorScale[0]
		for t := 0; t < di.texelCount; t++ {
			current := bilinearInfill(di, decWeightQuantUValue, t)
			diff := current - eai.weights[t]
			errorSum += diff * diff
		}
		return errorSum * scale
	}

	for t := 0; t < di.texelCount; t++ {
		current := bilinearInfill(di, decWeightQuantUValue, t)
		diff := current - eai.weights[t]
		errorSum += diff * diff * eai.weightErrorScale[t]
	}
	return errorSum
}

// computeErrorOfWeightSet2Planes is the dual-plane variant of
// computeErrorOfWeightSet1Plane.
func computeErrorOfWeightSet2Planes(eai1, eai2 *endpointsAndWeights, di *decimationInfo, decWeightQuantUValueP1, decWeightQuantUValueP2 []float32) float32 {
	var errorSum float32
	for t := 0; t < di.texelCount; t++ {
		current1 := bilinearInfill(di, decWeightQuantUValueP1, t)
		diff1 := current1 - eai1.weights[t]
		errorSum += diff1 * diff1 * eai1.weightErrorScale[t]

		current2 := bilinearInfill(di, decWeightQuantUValueP2, t)
		diff2 := current2 - eai2.weights[t]
		errorSum += diff2 * diff2 * eai2.weightErrorScale[t]
	}
	return errorSum
}
