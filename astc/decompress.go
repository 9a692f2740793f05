package astc

import "math"

// unpackWeights expands the stored weight grid to one (or two) unquantized
// weights per texel, bilinearly infilled in the integer domain where the four
// contribution factors sum to 16.
func unpackWeights(bsd *blockSizeDescriptor, scb *symbolicBlock, di *decimationInfo, isDualPlane bool, weightsPlane1, weightsPlane2 *[blockMaxTexels]int) {
	if di.weightCount == di.texelCount {
		for t := 0; t < di.texelCount; t++ {
			weightsPlane1[t] = int(scb.weights[t])
		}
		if isDualPlane {
			for t := 0; t < di.texelCount; t++ {
				weightsPlane2[t] = int(scb.weights[t+weightsPlane2Offset])
			}
		}
		return
	}

	for t := 0; t < di.texelCount; t++ {
		sum := 8
		for k := 0; k < 4; k++ {
			sum += int(scb.weights[di.texelWeights4t[k][t]]) * int(di.texelWeightsInt4t[k][t])
		}
		weightsPlane1[t] = sum >> 4
	}
	if isDualPlane {
		for t := 0; t < di.texelCount; t++ {
			sum := 8
			for k := 0; k < 4; k++ {
				sum += int(scb.weights[int(di.texelWeights4t[k][t])+weightsPlane2Offset]) * int(di.texelWeightsInt4t[k][t])
			}
			weightsPlane2[t] = sum >> 4
		}
	}
}

var nan32 = float32(math.NaN())

// fillErrorBlock writes the profile sentinel: magenta for the LDR profiles
// and NaN for HDR.
func fillErrorBlock(profile Profile, blk *imageBlock, texelCount int) {
	for t := 0; t < texelCount; t++ {
		if profile.isHDR() {
			blk.setTexel(t, vfloat4{nan32, nan32, nan32, nan32})
		} else {
			blk.setTexel(t, vfloat4{65535, 0, 65535, 65535})
		}
		blk.rgbLNS[t] = false
		blk.alphaLNS[t] = false
	}
}

// decompressSymbolicBlock reconstructs the texels of one symbolic block into
// the scaled float domain.
func decompressSymbolicBlock(profile Profile, bsd *blockSizeDescriptor, xpos, ypos, zpos int, scb *symbolicBlock, blk *imageBlock) {
	blk.xpos = xpos
	blk.ypos = ypos
	blk.zpos = zpos
	blk.texelCount = bsd.texelCount

	switch scb.blockType {
	case symBlockError:
		fillErrorBlock(profile, blk, bsd.texelCount)
		return

	case symBlockConstU16:
		var v vfloat4
		for c := 0; c < 4; c++ {
			v[c] = float32(scb.constantColor[c])
		}
		for t := 0; t < bsd.texelCount; t++ {
			blk.setTexel(t, v)
			blk.rgbLNS[t] = false
			blk.alphaLNS[t] = false
		}
		return

	case symBlockConstF16:
		if !profile.isHDR() {
			// FP16 constant blocks are only valid in HDR profiles.
			fillErrorBlock(profile, blk, bsd.texelCount)
			return
		}
		var v vfloat4
		for c := 0; c < 4; c++ {
			v[c] = floatToLNS(halfToFloat32(scb.constantColor[c]))
		}
		for t := 0; t < bsd.texelCount; t++ {
			blk.setTexel(t, v)
			blk.rgbLNS[t] = true
			blk.alphaLNS[t] = profile == ProfileHDR
		}
		return
	}

	bm := bsd.blockModeForIndex(int(scb.blockMode))
	if bm == nil {
		fillErrorBlock(profile, blk, bsd.texelCount)
		return
	}
	di := bsd.decimationInfoFor(int(bm.decimationMode))

	var weightsPlane1, weightsPlane2 [blockMaxTexels]int
	unpackWeights(bsd, scb, di, bm.isDualPlane, &weightsPlane1, &weightsPlane2)

	partitionCount := int(scb.partitionCount)
	pi := bsd.partitionInfoFor(partitionCount, int(scb.partitionIndex))

	var ep0, epd [blockMaxPartitions]int4
	var rgbHDRs, alphaHDRs [blockMaxPartitions]bool
	for p := 0; p < partitionCount; p++ {
		rgbHDR, alphaHDR, e0, e1 := unpackColorEndpoints(profile, scb.colorFormats[p], scb.colorValues[p][:])
		rgbHDRs[p] = rgbHDR
		alphaHDRs[p] = alphaHDR
		ep0[p] = e0
		for c := 0; c < 4; c++ {
			epd[p][c] = e1[c] - e0[c]
		}
	}

	plane2Component := int(scb.plane2Component)

	for t := 0; t < bsd.texelCount; t++ {
		part := 0
		if partitionCount > 1 {
			part = int(pi.partitionOfTexel[t])
		}

		w1 := weightsPlane1[t]
		var v vfloat4
		for c := 0; c < 4; c++ {
			w := w1
			if bm.isDualPlane && c == plane2Component {
				w = weightsPlane2[t]
			}
			v[c] = float32(ep0[part][c] + ((epd[part][c]*w + 32) >> 6))
		}
		blk.setTexel(t, v)
		blk.rgbLNS[t] = rgbHDRs[part]
		blk.alphaLNS[t] = alphaHDRs[part]
	}
}

// computeSymbolicBlockDifference decodes a candidate encoding and scores it
// against the original block under the error weights. A negative return
// rejects the encoding outright; in RGBM mode any encoding whose M channel
// decodes to zero is rejected as it would divide by zero at sample time.
func computeSymbolicBlockDifference(cfg *Config, bsd *blockSizeDescriptor, scb *symbolicBlock, blk *imageBlock, ewb *errorWeightBlock, scratch *imageBlock) float32 {
	if scb.blockType == symBlockError {
		return -errorCalcDefault
	}

	decompressSymbolicBlock(cfg.Profile, bsd, blk.xpos, blk.ypos, blk.zpos, scb, scratch)

	var sum float32
	for t := 0; t < bsd.texelCount; t++ {
		if cfg.RGBM && scratch.dataA[t] == 0 {
			return -errorCalcDefault
		}

		ew := ewb.errorWeights[t]
		orig := blk.texel(t)
		dec := scratch.texel(t)
		for c := 0; c < 4; c++ {
			d := dec[c] - orig[c]
			sum += ew[c] * d * d
		}
	}
	return sum
}
