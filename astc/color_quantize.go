package astc

// LDR color endpoint packing.
//
// The packers emit endpoint integers in the unquantized (uquant) domain: the
// values are codepoint reconstructions for the chosen quant level, so the
// symbolic-to-physical mapping back to wire codepoints is exact. The delta
// variants verify their own encodings by running the matching unpacker, which
// guarantees the emitted fields stay legal after quantization.

func clamp255f(v float32) float32 {
	return clampF32(v, 0, 255)
}

// ldrByte converts a [0, 65535] domain value to the 8-bit endpoint domain.
func ldrByte(v float32) int {
	return clampInt(flt2intRTN(clamp255f(v*(1.0/257.0))), 0, 255)
}

func quantizeLuminance(color0, color1 vfloat4, q quantMethod) (out [2]uint8) {
	lum0 := ldrByte((color0[0] + color0[1] + color0[2]) * (1.0 / 3.0))
	lum1 := ldrByte((color1[0] + color1[1] + color1[2]) * (1.0 / 3.0))
	if lum0 > lum1 {
		avg := (lum0 + lum1) >> 1
		lum0 = avg
		lum1 = avg
	}
	out[0] = quantColorUquant(q, uint8(lum0))
	out[1] = quantColorUquant(q, uint8(lum1))
	return out
}

func tryQuantizeLuminanceDelta(color0, color1 vfloat4, q quantMethod) (out [2]uint8, ok bool) {
	lum0 := ldrByte((color0[0] + color0[1] + color0[2]) * (1.0 / 3.0))
	lum1 := ldrByte((color1[0] + color1[1] + color1[2]) * (1.0 / 3.0))
	if lum0 > lum1 {
		return out, false
	}
	diff := lum1 - lum0
	if diff > 63 {
		return out, false
	}

	v0 := quantColorUquant(q, uint8((lum0<<2)&0xFF))
	v1 := quantColorUquant(q, uint8((lum0&0xC0)|diff))

	dec0, dec1 := unpackLuminanceDelta([]uint8{v0, v1})
	if absInt(dec0[0]-lum0) > 16 || absInt(dec1[0]-lum1) > 16 {
		return out, false
	}
	return [2]uint8{v0, v1}, true
}

func quantizeLuminanceAlpha(color0, color1 vfloat4, q quantMethod) (out [4]uint8) {
	lum := quantizeLuminance(color0, color1, q)
	out[0] = lum[0]
	out[1] = lum[1]
	out[2] = quantColorUquant(q, uint8(ldrByte(color0[3])))
	out[3] = quantColorUquant(q, uint8(ldrByte(color1[3])))
	return out
}

func tryQuantizeLuminanceAlphaDelta(color0, color1 vfloat4, q quantMethod) (out [4]uint8, ok bool) {
	lum0 := ldrByte((color0[0] + color0[1] + color0[2]) * (1.0 / 3.0))
	lum1 := ldrByte((color1[0] + color1[1] + color1[2]) * (1.0 / 3.0))
	a0 := ldrByte(color0[3])
	a1 := ldrByte(color1[3])

	lumD := lum1 - lum0
	alphaD := a1 - a0
	if lumD < -32 || lumD > 31 || alphaD < -32 || alphaD > 31 {
		return out, false
	}

	// Inverse of unpackLuminanceAlphaDelta: 7 bits of base per value plus the
	// base high bit carried in the delta byte.
	v0 := quantColorUquant(q, uint8(((lum0&0x7F)<<1)&0xFF))
	v1 := quantColorUquant(q, uint8(((lumD&0x3F)<<1)|(lum0&0x80)))
	v2 := quantColorUquant(q, uint8(((a0&0x7F)<<1)&0xFF))
	v3 := quantColorUquant(q, uint8(((alphaD&0x3F)<<1)|(a0&0x80)))

	dec0, dec1 := unpackLuminanceAlphaDelta([]uint8{v0, v1, v2, v3})
	if absInt(dec0[0]-lum0) > 16 || absInt(dec1[0]-lum1) > 16 ||
		absInt(dec0[3]-a0) > 16 || absInt(dec1[3]-a1) > 16 {
		return out, false
	}
	return [4]uint8{v0, v1, v2, v3}, true
}

// quantizeRGB packs two RGB endpoints, nudging the quantization so the
// decoder's blue-contraction swap rule does not trigger.
func quantizeRGB(color0, color1 vfloat4, q quantMethod) (out [6]uint8) {
	r0 := clamp255f(color0[0] * (1.0 / 257.0))
	g0 := clamp255f(color0[1] * (1.0 / 257.0))
	b0 := clamp255f(color0[2] * (1.0 / 257.0))
	r1 := clamp255f(color1[0] * (1.0 / 257.0))
	g1 := clamp255f(color1[1] * (1.0 / 257.0))
	b1 := clamp255f(color1[2] * (1.0 / 257.0))

	var ri0, gi0, bi0, ri1, gi1, bi1 uint8
	rgb0Addon := float32(0.5)
	rgb1Addon := float32(0.5)
	for i := 0; i < 10; i++ {
		ri0 = quantColorUquant(q, uint8(clampInt(int(maxF32(r0+rgb0Addon, 0)), 0, 255)))
		gi0 = quantColorUquant(q, uint8(clampInt(int(maxF32(g0+rgb0Addon, 0)), 0, 255)))
		bi0 = quantColorUquant(q, uint8(clampInt(int(maxF32(b0+rgb0Addon, 0)), 0, 255)))
		ri1 = quantColorUquant(q, uint8(clampInt(int(minF32(r1+rgb1Addon, 255)), 0, 255)))
		gi1 = quantColorUquant(q, uint8(clampInt(int(minF32(g1+rgb1Addon, 255)), 0, 255)))
		bi1 = quantColorUquant(q, uint8(clampInt(int(minF32(b1+rgb1Addon, 255)), 0, 255)))

		if int(ri0)+int(gi0)+int(bi0) <= int(ri1)+int(gi1)+int(bi1) {
			break
		}
		rgb0Addon -= 0.2
		rgb1Addon += 0.2
	}

	out[0] = ri0
	out[1] = ri1
	out[2] = gi0
	out[3] = gi1
	out[4] = bi0
	out[5] = bi1
	return out
}

// tryQuantizeRGBBlueContract packs blue-contracted endpoints in swapped order
// so the decoder's swap restores them, gaining precision for near-grey data.
func tryQuantizeRGBBlueContract(color0, color1 vfloat4, q quantMethod) (out [6]uint8, ok bool) {
	// Swap and contract.
	r0 := color1[0]*(1.0/257.0)*2 - color1[2]*(1.0/257.0)
	g0 := color1[1]*(1.0/257.0)*2 - color1[2]*(1.0/257.0)
	b0 := color1[2] * (1.0 / 257.0)
	r1 := color0[0]*(1.0/257.0)*2 - color0[2]*(1.0/257.0)
	g1 := color0[1]*(1.0/257.0)*2 - color0[2]*(1.0/257.0)
	b1 := color0[2] * (1.0 / 257.0)

	if r0 < 0 || r0 > 255 || g0 < 0 || g0 > 255 ||
		r1 < 0 || r1 > 255 || g1 < 0 || g1 > 255 {
		return out, false
	}

	ri0 := quantColorUquant(q, uint8(flt2intRTN(r0)))
	gi0 := quantColorUquant(q, uint8(flt2intRTN(g0)))
	bi0 := quantColorUquant(q, uint8(flt2intRTN(b0)))
	ri1 := quantColorUquant(q, uint8(flt2intRTN(r1)))
	gi1 := quantColorUquant(q, uint8(flt2intRTN(g1)))
	bi1 := quantColorUquant(q, uint8(flt2intRTN(b1)))

	// The decoder only uncontracts when the first endpoint sums higher.
	if int(ri0)+int(gi0)+int(bi0) <= int(ri1)+int(gi1)+int(bi1) {
		return out, false
	}

	out[0] = ri0
	out[1] = ri1
	out[2] = gi0
	out[3] = gi1
	out[4] = bi0
	out[5] = bi1
	return out, true
}

// packDeltaPair encodes one (base, delta) component pair for the
// bit-transferred delta formats: 7 bits of base in v0, the signed 6-bit delta
// plus the base high bit in v1.
func packDeltaPair(base, delta int, q quantMethod) (v0, v1 uint8) {
	v0 = quantColorUquant(q, uint8(((base&0x7F)<<1)&0xFF))
	v1 = quantColorUquant(q, uint8(((delta&0x3F)<<1)|(base&0x80)))
	return v0, v1
}

func tryQuantizeRGBADelta(color0, color1 vfloat4, includeAlpha bool, q quantMethod) (out [8]uint8, ok bool) {
	var base, delta [4]int
	for c := 0; c < 4; c++ {
		b := ldrByte(color0[c])
		d := ldrByte(color1[c]) - b
		if d < -32 || d > 31 {
			return out, false
		}
		base[c] = b
		delta[c] = d
	}
	// The decoder routes a negative delta sum into the blue-contract path.
	if delta[0]+delta[1]+delta[2] < 0 {
		return out, false
	}

	var vals [8]uint8
	for c := 0; c < 4; c++ {
		vals[2*c], vals[2*c+1] = packDeltaPair(base[c], delta[c], q)
	}

	dec0, dec1 := unpackRGBADelta(vals[:])

	comps := 3
	if includeAlpha {
		comps = 4
	}
	for c := 0; c < comps; c++ {
		if absInt(dec0[c]-base[c]) > 16 || absInt(dec1[c]-(base[c]+delta[c])) > 16 {
			return out, false
		}
	}
	return vals, true
}

func quantizeRGBA(color0, color1 vfloat4, q quantMethod) (out [8]uint8) {
	rgb := quantizeRGB(color0, color1, q)
	copy(out[0:6], rgb[:])
	out[6] = quantColorUquant(q, uint8(ldrByte(color0[3])))
	out[7] = quantColorUquant(q, uint8(ldrByte(color1[3])))
	return out
}

func quantizeRGBS(rgbsColor vfloat4, q quantMethod) (out [4]uint8) {
	out[0] = quantColorUquant(q, uint8(ldrByte(rgbsColor[0])))
	out[1] = quantColorUquant(q, uint8(ldrByte(rgbsColor[1])))
	out[2] = quantColorUquant(q, uint8(ldrByte(rgbsColor[2])))
	out[3] = quantColorUquant(q, uint8(clampInt(flt2intRTN(rgbsColor[3]), 0, 255)))
	return out
}

func quantizeRGBSAlpha(color0, color1, rgbsColor vfloat4, q quantMethod) (out [6]uint8) {
	rgbs := quantizeRGBS(rgbsColor, q)
	copy(out[0:4], rgbs[:])
	out[4] = quantColorUquant(q, uint8(ldrByte(color0[3])))
	out[5] = quantColorUquant(q, uint8(ldrByte(color1[3])))
	return out
}

// packColorEndpoints packs one endpoint pair as effectively as possible. The
// caller requests a base format; when allowVariants is set the packer may
// pick the delta (or small-range) variant of the same class when it
// round-trips well. It reports the format actually used. With allowVariants
// false the chosen format depends only on the requested format, which callers
// use to force a stable matched/unmatched outcome.
func packColorEndpoints(color0, color1, rgbsColor, rgboColor vfloat4, format int, allowVariants bool, q quantMethod) (actual uint8, output [blockMaxColorValues]uint8) {
	switch format {
	case fmtLuminance, fmtLuminanceDelta:
		if allowVariants {
			if vals, ok := tryQuantizeLuminanceDelta(color0, color1, q); ok {
				copy(output[:], vals[:])
				return fmtLuminanceDelta, output
			}
		}
		vals := quantizeLuminance(color0, color1, q)
		copy(output[:], vals[:])
		return fmtLuminance, output

	case fmtLuminanceAlpha, fmtLuminanceAlphaDelta:
		if allowVariants {
			if vals, ok := tryQuantizeLuminanceAlphaDelta(color0, color1, q); ok {
				copy(output[:], vals[:])
				return fmtLuminanceAlphaDelta, output
			}
		}
		vals := quantizeLuminanceAlpha(color0, color1, q)
		copy(output[:], vals[:])
		return fmtLuminanceAlpha, output

	case fmtRGBScale:
		vals := quantizeRGBS(rgbsColor, q)
		copy(output[:], vals[:])
		return fmtRGBScale, output

	case fmtRGBScaleAlpha:
		vals := quantizeRGBSAlpha(color0, color1, rgbsColor, q)
		copy(output[:], vals[:])
		return fmtRGBScaleAlpha, output

	case fmtRGB, fmtRGBDelta:
		if allowVariants {
			if vals, ok := tryQuantizeRGBADelta(color0, color1, false, q); ok {
				copy(output[:6], vals[:6])
				return fmtRGBDelta, output
			}
			if vals, ok := tryQuantizeRGBBlueContract(color0, color1, q); ok {
				copy(output[:], vals[:])
				return fmtRGB, output
			}
		}
		vals := quantizeRGB(color0, color1, q)
		copy(output[:], vals[:])
		return fmtRGB, output

	case fmtRGBA, fmtRGBADelta:
		if allowVariants {
			if vals, ok := tryQuantizeRGBADelta(color0, color1, true, q); ok {
				copy(output[:], vals[:])
				return fmtRGBADelta, output
			}
		}
		vals := quantizeRGBA(color0, color1, q)
		copy(output[:], vals[:])
		return fmtRGBA, output

	case fmtHDRLuminanceSmallRange, fmtHDRLuminanceLargeRange:
		if allowVariants {
			if vals, ok := tryQuantizeHDRLuminanceSmallRange([4]float32(color0), [4]float32(color1), q); ok {
				copy(output[:], vals[:])
				return fmtHDRLuminanceSmallRange, output
			}
		}
		vals := quantizeHDRLuminanceLargeRange([4]float32(color0), [4]float32(color1), q)
		copy(output[:], vals[:])
		return fmtHDRLuminanceLargeRange, output

	case fmtHDRRGBScale:
		vals := quantizeHDRRGBScale([4]float32(rgboColor), q)
		copy(output[:], vals[:])
		return fmtHDRRGBScale, output

	case fmtHDRRGB:
		vals := quantizeHDRRGB([4]float32(color0), [4]float32(color1), q)
		copy(output[:], vals[:])
		return fmtHDRRGB, output

	case fmtHDRRGBLDRAlpha:
		vals := quantizeHDRRGBLDRAlpha([4]float32(color0), [4]float32(color1), q)
		copy(output[:], vals[:])
		return fmtHDRRGBLDRAlpha, output

	case fmtHDRRGBA:
		vals := quantizeHDRRGBA([4]float32(color0), [4]float32(color1), q)
		copy(output[:], vals[:])
		return fmtHDRRGBA, output

	default:
		// Fall back to plain RGBA for unknown requests.
		vals := quantizeRGBA(color0, color1, q)
		copy(output[:], vals[:])
		return fmtRGBA, output
	}
}
