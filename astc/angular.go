package astc

import "math"

// Angular weight-range estimation.
//
// Computing an optimal (low, high) weight endpoint pair for every decimation
// mode and weight quant level by full least squares is expensive. Instead
// every ideal weight is projected onto a small family of angular steppings
// and the stepping with the lowest rounding residual wins; the quant range is
// then anchored to that stepping's grid. This follows the approach of
// Source/astcenc_weight_align.cpp.

const (
	angularSincosSteps = 64
	angularMaxSteps    = 33
)

// maxAngularStepsNeededForQuantLevel gives the grid density needed to cover
// each weight quant level.
var maxAngularStepsNeededForQuantLevel = [12]int{2, 3, 4, 5, 6, 8, 10, 12, 16, 20, 24, 33}

var angularSinTable [angularSincosSteps][angularMaxSteps]float32
var angularCosTable [angularSincosSteps][angularMaxSteps]float32

// prepareAngularTables fills the stepping projection tables. The tables are
// independent of block content and are built once at process start.
func prepareAngularTables() {
	for j := 0; j < angularSincosSteps; j++ {
		for i := 0; i < angularMaxSteps; i++ {
			angle := (2.0 * math.Pi / angularSincosSteps) * float64(i+1) * float64(j)
			angularSinTable[j][i] = float32(math.Sin(angle))
			angularCosTable[j][i] = float32(math.Cos(angle))
		}
	}
}

func init() {
	prepareAngularTables()
}

// computeAngularOffsets computes, for every stepping, the phase offset that
// best aligns the stepping grid with the weight samples.
func computeAngularOffsets(samples []float32, maxSteps int, offsets []float32) {
	var isamples [blockMaxWeights]int
	for k, s := range samples {
		isamples[k] = int(clamp01(s)*(angularSincosSteps-1) + 0.5)
	}

	for i := 0; i < maxSteps; i++ {
		var sumX, sumY float32
		for k := range samples {
			sumX += angularCosTable[isamples[k]][i]
			sumY += angularSinTable[isamples[k]][i]
		}
		angle := float32(math.Atan2(float64(sumY), float64(sumX)))
		offsets[i] = angle * (float32(i+1) / (2.0 * math.Pi))
	}
}

// angularEndpointsForQuantLevels estimates the (low, high) weight range for
// each weight quant level from one sample set.
func angularEndpointsForQuantLevels(samples, sigs []float32, lowValue, highValue []float32) {
	maxQuant := len(maxAngularStepsNeededForQuantLevel) - 1
	maxSteps := maxAngularStepsNeededForQuantLevel[maxQuant]

	var offsets [angularMaxSteps]float32
	computeAngularOffsets(samples, maxSteps, offsets[:])

	// Per stepping: rounding residual and the index span of the samples.
	var errval [angularMaxSteps]float32
	var minIdx, maxIdx [angularMaxSteps]int

	for i := 0; i < maxSteps; i++ {
		rcpStepsize := float32(i + 1)
		offset := offsets[i]

		lo := 1 << 20
		hi := -(1 << 20)
		var errSum float32
		for k, s := range samples {
			sval := s*rcpStepsize - offset
			svalr := int(math.Floor(float64(sval) + 0.5))
			diff := sval - float32(svalr)
			errSum += diff * diff * sigs[k]
			if svalr < lo {
				lo = svalr
			}
			if svalr > hi {
				hi = svalr
			}
		}
		errval[i] = errSum
		minIdx[i] = lo
		maxIdx[i] = hi
	}

	for q := 0; q <= maxQuant; q++ {
		levels := quantLevel(quantMethod(q))

		bestStep := -1
		bestErr := float32(errorCalcDefault)
		for i := 0; i < maxAngularStepsNeededForQuantLevel[q]; i++ {
			if maxIdx[i]-minIdx[i] > levels-1 {
				continue
			}
			if errval[i] < bestErr {
				bestErr = errval[i]
				bestStep = i
			}
		}

		if bestStep < 0 {
			lowValue[q] = 0
			highValue[q] = 1
			continue
		}

		stepsize := 1.0 / float32(bestStep+1)
		lowValue[q] = (offsets[bestStep] + float32(minIdx[bestStep])) * stepsize
		highValue[q] = (offsets[bestStep] + float32(minIdx[bestStep]+levels-1)) * stepsize
	}
}

// computeAngularEndpoints1Plane fills the per-block-mode weight range for
// single plane modes. Dual-plane modes, modes outside the percentile cutoff
// and, when onlyAlways is set, modes not marked always-useful are skipped;
// their entries are left unchanged.
func computeAngularEndpoints1Plane(onlyAlways bool, bsd *blockSizeDescriptor, decWeightsIdealValue, decWeightsIdealSig []float32, lowValue, highValue []float32) {
	var lowForQuant [weightsMaxDecimationModes][12]float32
	var highForQuant [weightsMaxDecimationModes][12]float32
	var solved [weightsMaxDecimationModes]bool

	for i := 0; i < bsd.blockModeCount; i++ {
		bm := &bsd.blockModes[i]
		if bm.isDualPlane || !bm.percentileHit {
			continue
		}
		if onlyAlways && !bm.alwaysHit {
			continue
		}

		dm := int(bm.decimationMode)
		if !solved[dm] {
			di := bsd.decimationInfoFor(dm)
			base := dm * blockMaxWeights
			samples := decWeightsIdealValue[base : base+di.weightCount]
			sigs := decWeightsIdealSig[base : base+di.weightCount]
			angularEndpointsForQuantLevels(samples, sigs, lowForQuant[dm][:], highForQuant[dm][:])
			solved[dm] = true
		}

		lowValue[i] = lowForQuant[dm][bm.quantMode]
		highValue[i] = highForQuant[dm][bm.quantMode]
	}
}

// computeAngularEndpoints2Planes fills the per-block-mode weight ranges for
// both planes of dual plane modes.
func computeAngularEndpoints2Planes(bsd *blockSizeDescriptor, decWeightsIdealValue, decWeightsIdealSig []float32, lowValue1, highValue1, lowValue2, highValue2 []float32) {
	var lowForQuant1 [weightsMaxDecimationModes][12]float32
	var highForQuant1 [weightsMaxDecimationModes][12]float32
	var lowForQuant2 [weightsMaxDecimationModes][12]float32
	var highForQuant2 [weightsMaxDecimationModes][12]float32
	var solved [weightsMaxDecimationModes]bool

	for i := 0; i < bsd.blockModeCount; i++ {
		bm := &bsd.blockModes[i]
		if !bm.isDualPlane || !bm.percentileHit {
			continue
		}

		dm := int(bm.decimationMode)
		if !solved[dm] {
			di := bsd.decimationInfoFor(dm)
			base := dm * blockMaxWeights
			samples1 := decWeightsIdealValue[base : base+di.weightCount]
			sigs1 := decWeightsIdealSig[base : base+di.weightCount]
			samples2 := decWeightsIdealValue[base+weightsPlane2Offset : base+weightsPlane2Offset+di.weightCount]
			sigs2 := decWeightsIdealSig[base+weightsPlane2Offset : base+weightsPlane2Offset+di.weightCount]
			angularEndpointsForQuantLevels(samples1, sigs1, lowForQuant1[dm][:], highForQuant1[dm][:])
			angularEndpointsForQuantLevels(samples2, sigs2, lowForQuant2[dm][:], highForQuant2[dm][:])
			solved[dm] = true
		}

		lowValue1[i] = lowForQuant1[dm][bm.quantMode]
		highValue1[i] = highForQuant1[dm][bm.quantMode]
		lowValue2[i] = lowForQuant2[dm][bm.quantMode]
		highValue2[i] = highForQuant2[dm][bm.quantMode]
	}
}
