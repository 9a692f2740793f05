package astc

// endpoints stores the color endpoint pairs for each partition.
type endpoints struct {
	partitionCount int
	endpt0         [blockMaxPartitions]vfloat4
	endpt1         [blockMaxPartitions]vfloat4
}

// endpointsAndWeights couples endpoints with the per-texel ideal weight and
// its error scaling.
type endpointsAndWeights struct {
	isConstantWeightErrorScale bool

	ep endpoints

	weights          [blockMaxTexels]float32
	weightErrorScale [blockMaxTexels]float32
}

// partitionMetrics holds the error-weighted average color and dominant
// direction of one partition.
type partitionMetrics struct {
	avg vfloat4
	dir vfloat4
}

// computeAvgsAndDirs4Comp computes the error-weighted average and dominant
// direction for each partition over all four components.
//
// The direction is estimated with a single-pass weighted sum of signed
// deviations along each of the +-axis candidates, a fast approximation of the
// PCA dominant eigenvector (matches compute_avgs_and_dirs_4_comp() in
// Source/astcenc_averages_and_directions.cpp).
func computeAvgsAndDirs4Comp(pi *partitionInfo, blk *imageBlock, ewb *errorWeightBlock, pm []partitionMetrics) {
	for p := 0; p < pi.partitionCount; p++ {
		texels := pi.texelsOfPartition[p]

		var sum vfloat4
		var wsum float32
		for _, t := range texels {
			w := ewb.texelWeight[t]
			sum = sum.add(blk.texel(int(t)).scale(w))
			wsum += w
		}
		avg := sum
		if wsum > 1e-10 {
			avg = sum.scale(1 / wsum)
		}

		var sumXP, sumYP, sumZP, sumWP vfloat4
		for _, t := range texels {
			w := ewb.texelWeight[t]
			dat := blk.texel(int(t)).sub(avg).scale(w)
			if dat[0] > 0 {
				sumXP = sumXP.add(dat)
			}
			if dat[1] > 0 {
				sumYP = sumYP.add(dat)
			}
			if dat[2] > 0 {
				sumZP = sumZP.add(dat)
			}
			if dat[3] > 0 {
				sumWP = sumWP.add(dat)
			}
		}

		bestDir := sumXP
		bestMag := sumXP.dot(sumXP)
		for _, cand := range [3]vfloat4{sumYP, sumZP, sumWP} {
			mag := cand.dot(cand)
			if mag > bestMag {
				bestMag = mag
				bestDir = cand
			}
		}

		pm[p] = partitionMetrics{avg: avg, dir: bestDir}
	}
}

// computeAvgsAndDirs3Comp is the three-component variant with one component
// omitted from the analysis. The result vectors keep the omitted lane zero.
func computeAvgsAndDirs3Comp(pi *partitionInfo, blk *imageBlock, ewb *errorWeightBlock, omitted int, pm []partitionMetrics) {
	var texelWeights *[blockMaxTexels]float32
	var comps [3]int
	switch omitted {
	case 0:
		texelWeights = &ewb.texelWeightGBA
		comps = [3]int{1, 2, 3}
	case 1:
		texelWeights = &ewb.texelWeightRBA
		comps = [3]int{0, 2, 3}
	case 2:
		texelWeights = &ewb.texelWeightRGA
		comps = [3]int{0, 1, 3}
	default:
		texelWeights = &ewb.texelWeightRGB
		comps = [3]int{0, 1, 2}
	}

	for p := 0; p < pi.partitionCount; p++ {
		texels := pi.texelsOfPartition[p]

		var sum vfloat4
		var wsum float32
		for _, t := range texels {
			w := texelWeights[t]
			tex := blk.texel(int(t))
			for _, c := range comps {
				sum[c] += tex[c] * w
			}
			wsum += w
		}
		avg := sum
		if wsum > 1e-10 {
			avg = sum.scale(1 / wsum)
		}

		var sumP [3]vfloat4
		for _, t := range texels {
			w := texelWeights[t]
			var dat vfloat4
			for _, c := range comps {
				dat[c] = (blk.texel(int(t))[c] - avg[c]) * w
			}
			for i, c := range comps {
				if dat[c] > 0 {
					sumP[i] = sumP[i].add(dat)
				}
			}
		}

		bestDir := sumP[0]
		bestMag := sumP[0].dot(sumP[0])
		for _, cand := range sumP[1:] {
			mag := cand.dot(cand)
			if mag > bestMag {
				bestMag = mag
				bestDir = cand
			}
		}

		pm[p] = partitionMetrics{avg: avg, dir: bestDir}
	}
}

// computeAvgsAndDirs2Comp is the two-component variant used when only a pair
// of channels carries signal.
func computeAvgsAndDirs2Comp(pi *partitionInfo, blk *imageBlock, ewb *errorWeightBlock, component1, component2 int, pm []partitionMetrics) {
	var texelWeights *[blockMaxTexels]float32
	switch {
	case component1 == 0 && component2 == 1:
		texelWeights = &ewb.texelWeightRG
	case component1 == 0 && component2 == 2:
		texelWeights = &ewb.texelWeightRB
	default:
		texelWeights = &ewb.texelWeightGB
	}
	comps := [2]int{component1, component2}

	for p := 0; p < pi.partitionCount; p++ {
		texels := pi.texelsOfPartition[p]

		var sum vfloat4
		var wsum float32
		for _, t := range texels {
			w := texelWeights[t]
			tex := blk.texel(int(t))
			for _, c := range comps {
				sum[c] += tex[c] * w
			}
			wsum += w
		}
		avg := sum
		if wsum > 1e-10 {
			avg = sum.scale(1 / wsum)
		}

		var sumP [2]vfloat4
		for _, t := range texels {
			w := texelWeights[t]
			var dat vfloat4
			for _, c := range comps {
				dat[c] = (blk.texel(int(t))[c] - avg[c]) * w
			}
			for i, c := range comps {
				if dat[c] > 0 {
					sumP[i] = sumP[i].add(dat)
				}
			}
		}

		bestDir := sumP[0]
		if sumP[1].dot(sumP[1]) > bestDir.dot(bestDir) {
			bestDir = sumP[1]
		}

		pm[p] = partitionMetrics{avg: avg, dir: bestDir}
	}
}

// computeIdealColorsAndWeights1Plane fits a color line per partition and
// parameterizes every texel by its normalized projection onto that line.
func computeIdealColorsAndWeights1Plane(blk *imageBlock, ewb *errorWeightBlock, pi *partitionInfo, ei *endpointsAndWeights) {
	usesAlpha := !blk.isConstantChannel(3)

	var pms [blockMaxPartitions]partitionMetrics
	if usesAlpha {
		computeAvgsAndDirs4Comp(pi, blk, ewb, pms[:])
	} else {
		computeAvgsAndDirs3Comp(pi, blk, ewb, 3, pms[:])
	}

	ei.ep.partitionCount = pi.partitionCount

	constantScale := true
	var firstScale float32
	haveScale := false

	var texelParams [blockMaxTexels]float32
	var lowParam, highParam [blockMaxPartitions]float32

	for p := 0; p < pi.partitionCount; p++ {
		dir := pms[p].dir.normalizeSafe(vfloat4{0.5, 0.5, 0.5, 0.5})
		// Orient the line so weight 1.0 is the brighter end.
		if dir.hsum() < 0 {
			dir = dir.scale(-1)
		}

		lowParam[p] = 1e10
		highParam[p] = -1e10
		for _, t := range pi.texelsOfPartition[p] {
			param := blk.texel(int(t)).sub(pms[p].avg).dot(dir)
			texelParams[t] = param
			lowParam[p] = minF32(lowParam[p], param)
			highParam[p] = maxF32(highParam[p], param)
		}

		if highParam[p] <= lowParam[p] {
			lowParam[p] = 0
			highParam[p] = 1e-7
		}

		ei.ep.endpt0[p] = pms[p].avg.add(dir.scale(lowParam[p]))
		ei.ep.endpt1[p] = pms[p].avg.add(dir.scale(highParam[p]))

		if !usesAlpha {
			da := blk.defaultAlpha()
			ei.ep.endpt0[p][3] = da
			ei.ep.endpt1[p][3] = da
		}
	}

	for p := 0; p < pi.partitionCount; p++ {
		length := highParam[p] - lowParam[p]
		scale := 1 / length
		lengthSquared := length * length

		for _, t := range pi.texelsOfPartition[p] {
			idx := int(t)
			ei.weights[idx] = clamp01((texelParams[t] - lowParam[p]) * scale)

			tw := ewb.texelWeight[idx]
			if !usesAlpha {
				tw = ewb.texelWeightRGB[idx]
			}
			errScale := lengthSquared * tw
			ei.weightErrorScale[idx] = errScale

			if tw > 1e-10 {
				if !haveScale {
					firstScale = errScale
					haveScale = true
				} else if absF32(errScale-firstScale) > firstScale*1e-5 {
					constantScale = false
				}
			}
		}
	}

	ei.isConstantWeightErrorScale = constantScale
}

// computeIdealColorsAndWeights2Planes solves plane 1 as a 3-component line
// over the components not assigned to plane 2, and plane 2 as a 1-component
// range over the assigned component. Dual-plane encodings only ever use a
// single partition.
func computeIdealColorsAndWeights2Planes(blk *imageBlock, ewb *errorWeightBlock, pi *partitionInfo, plane2Component int, ei1, ei2 *endpointsAndWeights) {
	var pms [blockMaxPartitions]partitionMetrics
	computeAvgsAndDirs3Comp(pi, blk, ewb, plane2Component, pms[:])

	ei1.ep.partitionCount = 1
	ei2.ep.partitionCount = 1

	dir := pms[0].dir.normalizeSafe(vfloat4{0.577, 0.577, 0.577, 0.577})
	if dir.hsum() < 0 {
		dir = dir.scale(-1)
	}

	var channelWeights *[blockMaxTexels]float32
	var planeWeights *[blockMaxTexels]float32
	switch plane2Component {
	case 0:
		channelWeights = &ewb.texelWeightR
		planeWeights = &ewb.texelWeightGBA
	case 1:
		channelWeights = &ewb.texelWeightG
		planeWeights = &ewb.texelWeightRBA
	case 2:
		channelWeights = &ewb.texelWeightB
		planeWeights = &ewb.texelWeightRGA
	default:
		channelWeights = &ewb.texelWeightA
		planeWeights = &ewb.texelWeightRGB
	}

	lowParam1 := float32(1e10)
	highParam1 := float32(-1e10)
	low2 := float32(1e10)
	high2 := float32(-1e10)

	var params1 [blockMaxTexels]float32
	for t := 0; t < blk.texelCount; t++ {
		var delta vfloat4
		tex := blk.texel(t)
		for c := 0; c < 4; c++ {
			if c == plane2Component {
				continue
			}
			delta[c] = tex[c] - pms[0].avg[c]
		}
		param := delta.dot(dir)
		params1[t] = param
		lowParam1 = minF32(lowParam1, param)
		highParam1 = maxF32(highParam1, param)

		v2 := tex[plane2Component]
		low2 = minF32(low2, v2)
		high2 = maxF32(high2, v2)
	}

	if highParam1 <= lowParam1 {
		lowParam1 = 0
		highParam1 = 1e-7
	}
	if high2 <= low2 {
		low2 = 0
		high2 = 1e-7
	}

	ei1.ep.endpt0[0] = pms[0].avg.add(dir.scale(lowParam1))
	ei1.ep.endpt1[0] = pms[0].avg.add(dir.scale(highParam1))
	ei1.ep.endpt0[0][plane2Component] = low2
	ei1.ep.endpt1[0][plane2Component] = high2

	ei2.ep.endpt0[0] = ei1.ep.endpt0[0]
	ei2.ep.endpt1[0] = ei1.ep.endpt1[0]

	length1 := highParam1 - lowParam1
	scale1 := 1 / length1
	lengthSquared1 := length1 * length1

	length2 := high2 - low2
	scale2 := 1 / length2
	lengthSquared2 := length2 * length2

	const1 := true
	const2 := true
	for t := 0; t < blk.texelCount; t++ {
		ei1.weights[t] = clamp01((params1[t] - lowParam1) * scale1)
		ei1.weightErrorScale[t] = lengthSquared1 * planeWeights[t]

		ei2.weights[t] = clamp01((blk.texel(t)[plane2Component] - low2) * scale2)
		ei2.weightErrorScale[t] = lengthSquared2 * channelWeights[t]

		if t > 0 {
			if absF32(ei1.weightErrorScale[t]-ei1.weightErrorScale[0]) > ei1.weightErrorScale[0]*1e-5 {
				const1 = false
			}
			if absF32(ei2.weightErrorScale[t]-ei2.weightErrorScale[0]) > ei2.weightErrorScale[0]*1e-5 {
				const2 = false
			}
		}
	}

	ei1.isConstantWeightErrorScale = const1
	ei2.isConstantWeightErrorScale = const2
}

// recomputeIdealColors1Plane refits the endpoint colors against a quantized
// and decimated weight set by solving the per-channel weighted least squares
// normal equations. It also produces the same-chroma (RGBS) and HDR offset
// (RGBO) candidate vectors used by the scale-based endpoint formats.
func recomputeIdealColors1Plane(blk *imageBlock, ewb *errorWeightBlock, pi *partitionInfo, di *decimationInfo, weightQuantMode quantMethod, decWeightsQuantPValue []uint8, ep *endpoints, rgbsVectors, rgboVectors []vfloat4) {
	var texelWeights [blockMaxTexels]float32
	uqMap := &weightUnscrambleAndUnquantMap[weightQuantMode]
	if di.weightCount == di.texelCount {
		for t := 0; t < di.texelCount; t++ {
			texelWeights[t] = float32(uqMap[decWeightsQuantPValue[t]]) * (1.0 / 64.0)
		}
	} else {
		var dec [blockMaxWeights]float32
		for w := 0; w < di.weightCount; w++ {
			dec[w] = float32(uqMap[decWeightsQuantPValue[w]]) * (1.0 / 64.0)
		}
		for t := 0; t < di.texelCount; t++ {
			texelWeights[t] = bilinearInfill(di, dec[:], t)
		}
	}

	ep.partitionCount = pi.partitionCount

	for p := 0; p < pi.partitionCount; p++ {
		var s11, s12, s22 vfloat4
		var r1, r2 vfloat4

		var rgbSum vfloat4
		var rgbWeightSum float32

		for _, tt := range pi.texelsOfPartition[p] {
			t := int(tt)
			w := texelWeights[t]
			om := 1 - w
			ew := ewb.errorWeights[t]
			tex := blk.texel(t)

			s11 = s11.add(ew.scale(om * om))
			s12 = s12.add(ew.scale(om * w))
			s22 = s22.add(ew.scale(w * w))
			r1 = r1.add(ew.mul(tex).scale(om))
			r2 = r2.add(ew.mul(tex).scale(w))

			tw := ewb.texelWeightRGB[t]
			rgbSum = rgbSum.add(tex.scale(tw))
			rgbWeightSum += tw
		}

		e0 := ep.endpt0[p]
		e1 := ep.endpt1[p]
		for c := 0; c < 4; c++ {
			det := s11[c]*s22[c] - s12[c]*s12[c]
			if absF32(det) > 1e-10 {
				inv := 1 / det
				v0 := (r1[c]*s22[c] - r2[c]*s12[c]) * inv
				v1 := (r2[c]*s11[c] - r1[c]*s12[c]) * inv
				e0[c] = clampF32(v0, 0, 65535)
				e1[c] = clampF32(v1, 0, 65535)
			}
		}
		ep.endpt0[p] = e0
		ep.endpt1[p] = e1

		// Same-chroma candidate: high endpoint RGB plus the scale that best
		// reproduces the low endpoint along the same chroma line.
		num := e0.dot3(e1)
		den := e1.dot3(e1)
		scale := float32(0)
		if den > 1e-10 {
			scale = clamp01(num / den)
		}
		rgbsVectors[p] = vfloat4{e1[0], e1[1], e1[2], scale * 255.0}

		// HDR offset candidate: high endpoint with a shared offset down to the
		// low endpoint.
		offset := ((e1[0] - e0[0]) + (e1[1] - e0[1]) + (e1[2] - e0[2])) * (1.0 / 3.0)
		offset = maxF32(offset, 0)
		rgboVectors[p] = vfloat4{e1[0] - offset, e1[1] - offset, e1[2] - offset, offset}
	}
}

// recomputeIdealColors2Planes is the dual-plane variant of
// recomputeIdealColors1Plane; the plane 2 component is refit against the
// plane 2 weight set. Dual-plane blocks always use a single partition.
func recomputeIdealColors2Planes(blk *imageBlock, ewb *errorWeightBlock, di *decimationInfo, weightQuantMode quantMethod, decWeightsP1, decWeightsP2 []uint8, ep *endpoints, rgbsVector, rgboVector *vfloat4, plane2Component int) {
	var texelWeights1 [blockMaxTexels]float32
	var texelWeights2 [blockMaxTexels]float32
	uqMap := &weightUnscrambleAndUnquantMap[weightQuantMode]

	if di.weightCount == di.texelCount {
		for t := 0; t < di.texelCount; t++ {
			texelWeights1[t] = float32(uqMap[decWeightsP1[t]]) * (1.0 / 64.0)
			texelWeights2[t] = float32(uqMap[decWeightsP2[t]]) * (1.0 / 64.0)
		}
	} else {
		var dec1, dec2 [blockMaxWeights]float32
		for w := 0; w < di.weightCount; w++ {
			dec1[w] = float32(uqMap[decWeightsP1[w]]) * (1.0 / 64.0)
			dec2[w] = float32(uqMap[decWeightsP2[w]]) * (1.0 / 64.0)
		}
		for t := 0; t < di.texelCount; t++ {
			texelWeights1[t] = bilinearInfill(di, dec1[:], t)
			texelWeights2[t] = bilinearInfill(di, dec2[:], t)
		}
	}

	ep.partitionCount = 1

	var s11, s12, s22 vfloat4
	var r1, r2 vfloat4

	for t := 0; t < di.texelCount; t++ {
		w := texelWeights1[t]
		ew := ewb.errorWeights[t]
		tex := blk.texel(t)

		for c := 0; c < 4; c++ {
			wc := w
			if c == plane2Component {
				wc = texelWeights2[t]
			}
			om := 1 - wc
			s11[c] += ew[c] * om * om
			s12[c] += ew[c] * om * wc
			s22[c] += ew[c] * wc * wc
			r1[c] += ew[c] * tex[c] * om
			r2[c] += ew[c] * tex[c] * wc
		}
	}

	e0 := ep.endpt0[0]
	e1 := ep.endpt1[0]
	for c := 0; c < 4; c++ {
		det := s11[c]*s22[c] - s12[c]*s12[c]
		if absF32(det) > 1e-10 {
			inv := 1 / det
			v0 := (r1[c]*s22[c] - r2[c]*s12[c]) * inv
			v1 := (r2[c]*s11[c] - r1[c]*s12[c]) * inv
			e0[c] = clampF32(v0, 0, 65535)
			e1[c] = clampF32(v1, 0, 65535)
		}
	}
	ep.endpt0[0] = e0
	ep.endpt1[0] = e1

	num := e0.dot3(e1)
	den := e1.dot3(e1)
	scale := float32(0)
	if den > 1e-10 {
		scale = clamp01(num / den)
	}
	*rgbsVector = vfloat4{e1[0], e1[1], e1[2], scale * 255.0}

	offset := ((e1[0] - e0[0]) + (e1[1] - e0[1]) + (e1[2] - e0[2])) * (1.0 / 3.0)
	offset = maxF32(offset, 0)
	*rgboVector = vfloat4{e1[0] - offset, e1[1] - offset, e1[2] - offset, offset}
}
