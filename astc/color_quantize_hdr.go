package astc

// HDR color endpoint packing.
//
// The HDR endpoint formats store a major component plus differentials, split
// across a family of submodes that trade range for precision. The submode
// descriptor tables below (field widths, representable-range cutoffs, value
// scales) and the fold tables (which high bit of each accumulator rides in
// which spare slot of the quantized bytes) are fixed by the ASTC
// specification's HDR endpoint mode layouts. All inputs are in the scaled
// [0, 65535] float domain.

func quantColorUquant(q quantMethod, value uint8) uint8 {
	return colorUnquantLUT[q][value]
}

// quantizeRetainingTopBits quantizes a byte while forcing the bits selected
// by mask to survive quantization, stepping the input down until they do.
// The HDR formats keep their submode selectors in those bits.
func quantizeRetainingTopBits(q quantMethod, value, mask uint8) uint8 {
	v := value
	for i := 0; i < 256; i++ {
		qv := quantColorUquant(q, v)
		if qv&mask == v&mask {
			return qv
		}
		v--
	}
	return quantColorUquant(q, value)
}

// hdrFoldBit names one accumulator bit folded into a spare slot of a
// quantized byte.
type hdrFoldBit struct {
	src   uint8
	shift uint8
}

func foldBitOf(vals []int, f hdrFoldBit) int {
	return (vals[f.src] >> f.shift) & 1
}

// dominantComponent picks the largest of the first three components,
// breaking ties toward the later component (green over red, blue over
// either).
func dominantComponent(c [4]float32) int {
	if c[0] > c[1] && c[0] > c[2] {
		return 0
	}
	if c[1] > c[2] {
		return 1
	}
	return 2
}

// swizzleMajorToRed swaps the major component into the red slot.
func swizzleMajorToRed(c [4]float32, majcomp int) [4]float32 {
	c[0], c[majcomp] = c[majcomp], c[0]
	return c
}

// hdrLumPair reduces two endpoints to a non-decreasing luminance pair.
func hdrLumPair(color0, color1 [4]float32) (float32, float32) {
	lum0 := (color0[0] + color0[1] + color0[2]) * (1.0 / 3.0)
	lum1 := (color1[0] + color1[1] + color1[2]) * (1.0 / 3.0)
	if lum1 < lum0 {
		avg := (lum0 + lum1) * 0.5
		return avg, avg
	}
	return lum0, lum1
}

func quantizeHDRA(alpha0, alpha1 float32, q quantMethod) (out [2]uint8) {
	a0 := flt2intRTN(clampF32(alpha0, 0, 65280))
	a1 := flt2intRTN(clampF32(alpha1, 0, 65280))

	// The delta submodes, highest precision first.
	for sub := 2; sub >= 0; sub-- {
		val0 := (a0 + (128 >> uint(sub))) >> uint(8-sub)
		val1 := (a1 + (128 >> uint(sub))) >> uint(8-sub)

		v6 := (val0 & 0x7F) | ((sub & 1) << 7)
		v6q := quantColorUquant(q, uint8(v6))
		if (int(v6q)^v6)&0x80 != 0 {
			continue
		}

		val0 = (val0 &^ 0x7F) | (int(v6q) & 0x7F)
		diff := val1 - val0
		cutoff := 32 >> uint(sub)
		if diff < -cutoff || diff >= cutoff {
			continue
		}

		v7 := ((sub & 2) << 6) | ((val0 >> 7) << uint(6-sub)) | (diff & (2*cutoff - 1))
		v7q := quantColorUquant(q, uint8(v7))
		keep := [3]int{0xE0, 0xF0, 0xF8}[sub]
		if (int(v7q)^v7)&keep != 0 {
			continue
		}

		out[0] = v6q
		out[1] = v7q
		return out
	}

	// No delta submode fits; store flat 7-bit values.
	out[0] = quantColorUquant(q, uint8(((a0+256)>>9)|0x80))
	out[1] = quantColorUquant(q, uint8(((a1+256)>>9)|0x80))
	return out
}

// hdrRGBSubmodes describes the 8 direct HDR RGB submodes: the b/c/d field
// widths, the float-domain cutoffs each field must stay under, and the value
// scale for the submode's precision.
var hdrRGBSubmodes = [8]struct {
	bBits, cBits, dBits int
	bMax, cMax, dMax    float32
	scale, rscale       float32
}{
	{7, 6, 7, 16384, 8192, 8192, 1.0 / 128, 128},
	{8, 6, 6, 32768, 8192, 4096, 1.0 / 128, 128},
	{6, 7, 7, 4096, 8192, 4096, 1.0 / 64, 64},
	{7, 7, 6, 8192, 8192, 2048, 1.0 / 64, 64},
	{8, 6, 5, 8192, 2048, 512, 1.0 / 32, 32},
	{6, 8, 6, 2048, 8192, 1024, 1.0 / 32, 32},
	{7, 7, 5, 2048, 2048, 256, 1.0 / 16, 16},
	{6, 7, 6, 1024, 2048, 512, 1.0 / 16, 16},
}

// Fold tables for the direct HDR RGB format. Accumulator indices:
// 0=a 1=c 2=b0 3=b1 4=d0 5=d1. The b-stage entries land in bit 6 of the b0
// and b1 bytes; the d-stage entries land in bits 6 and 5 of the d0/d1 bytes.
var hdrRGBFoldB = [8][2]hdrFoldBit{
	{{2, 6}, {3, 6}},
	{{2, 6}, {3, 6}},
	{{0, 9}, {1, 6}},
	{{2, 6}, {3, 6}},
	{{2, 6}, {3, 6}},
	{{0, 9}, {0, 10}},
	{{2, 6}, {3, 6}},
	{{0, 9}, {0, 10}},
}

var hdrRGBFoldD = [8][4]hdrFoldBit{
	{{4, 6}, {5, 6}, {4, 5}, {5, 5}},
	{{2, 7}, {3, 7}, {4, 5}, {5, 5}},
	{{4, 6}, {5, 6}, {4, 5}, {5, 5}},
	{{0, 9}, {1, 6}, {4, 5}, {5, 5}},
	{{2, 7}, {3, 7}, {0, 9}, {0, 10}},
	{{1, 7}, {1, 6}, {4, 5}, {5, 5}},
	{{0, 11}, {1, 6}, {0, 9}, {0, 10}},
	{{0, 11}, {1, 6}, {4, 5}, {5, 5}},
}

func quantizeHDRRGB(color0, color1 [4]float32, q quantMethod) (out [6]uint8) {
	for i := 0; i < 3; i++ {
		color0[i] = clampF32(color0[i], 0, 65535)
		color1[i] = clampF32(color1[i], 0, 65535)
	}
	color0Bak := color0
	color1Bak := color1

	majcomp := dominantComponent(color1)
	color0 = swizzleMajorToRed(color0, majcomp)
	color1 = swizzleMajorToRed(color1, majcomp)

	aBase := clampF32(color1[0], 0, 65535)
	b0Base := aBase - color1[1]
	b1Base := aBase - color1[2]
	cBase := aBase - color0[0]
	d0Base := aBase - b0Base - cBase - color0[1]
	d1Base := aBase - b1Base - cBase - color0[2]

	for mode := 7; mode >= 0; mode-- {
		sm := &hdrRGBSubmodes[mode]
		if b0Base > sm.bMax || b1Base > sm.bMax || cBase > sm.cMax ||
			absF32(d0Base) > sm.dMax || absF32(d1Base) > sm.dMax {
			continue
		}

		// The a field: quantize the low 8 bits, keep the rest exact.
		aInt := flt2intRTN(aBase * sm.scale)
		aQuant := int(quantColorUquant(q, uint8(aInt&0xFF)))
		aInt = (aInt &^ 0xFF) | aQuant
		aF := float32(aInt) * sm.rscale

		// The c field carries the submode low bit and a's bit 8.
		cF := clampF32(aF-color0[0], 0, 65535)
		cInt := flt2intRTN(cF * sm.scale)
		if cInt >= 1<<uint(sm.cBits) {
			continue
		}
		cLow := (cInt & 0x3F) | ((mode & 1) << 7) | ((aInt & 0x100) >> 2)
		cQuant := quantizeRetainingTopBits(q, uint8(cLow), 0xC0)
		cInt = (cInt &^ 0x3F) | int(cQuant&0x3F)
		cF = float32(cInt) * sm.rscale

		b0F := clampF32(aF-color1[1], 0, 65535)
		b1F := clampF32(aF-color1[2], 0, 65535)
		b0Int := flt2intRTN(b0F * sm.scale)
		b1Int := flt2intRTN(b1F * sm.scale)
		if b0Int >= 1<<uint(sm.bBits) || b1Int >= 1<<uint(sm.bBits) {
			continue
		}

		vals := [6]int{aInt, cInt, b0Int, b1Int, 0, 0}
		b0Low := (b0Int & 0x3F) | (foldBitOf(vals[:], hdrRGBFoldB[mode][0]) << 6) | (((mode >> 1) & 1) << 7)
		b1Low := (b1Int & 0x3F) | (foldBitOf(vals[:], hdrRGBFoldB[mode][1]) << 6) | (((mode >> 2) & 1) << 7)

		b0Quant := quantizeRetainingTopBits(q, uint8(b0Low), 0xC0)
		b1Quant := quantizeRetainingTopBits(q, uint8(b1Low), 0xC0)
		b0Int = (b0Int &^ 0x3F) | int(b0Quant&0x3F)
		b1Int = (b1Int &^ 0x3F) | int(b1Quant&0x3F)
		b0F = float32(b0Int) * sm.rscale
		b1F = float32(b1Int) * sm.rscale

		d0F := clampF32(aF-b0F-cF-color0[1], -65535, 65535)
		d1F := clampF32(aF-b1F-cF-color0[2], -65535, 65535)
		d0Int := flt2intRTN(d0F * sm.scale)
		d1Int := flt2intRTN(d1F * sm.scale)
		if absInt(d0Int) >= 1<<uint(sm.dBits-1) || absInt(d1Int) >= 1<<uint(sm.dBits-1) {
			continue
		}

		vals[2] = b0Int
		vals[3] = b1Int
		vals[4] = d0Int
		vals[5] = d1Int
		d0Low := (d0Int & 0x1F) |
			(foldBitOf(vals[:], hdrRGBFoldD[mode][0]) << 6) |
			(foldBitOf(vals[:], hdrRGBFoldD[mode][2]) << 5) |
			((majcomp & 1) << 7)
		d1Low := (d1Int & 0x1F) |
			(foldBitOf(vals[:], hdrRGBFoldD[mode][1]) << 6) |
			(foldBitOf(vals[:], hdrRGBFoldD[mode][3]) << 5) |
			(((majcomp >> 1) & 1) << 7)

		out[0] = uint8(aQuant)
		out[1] = cQuant
		out[2] = b0Quant
		out[3] = b1Quant
		out[4] = quantizeRetainingTopBits(q, uint8(d0Low), 0xF0)
		out[5] = quantizeRetainingTopBits(q, uint8(d1Low), 0xF0)
		return out
	}

	// No submode can represent the block; fall back to direct 8-bit
	// endpoints (majcomp == 3 on decode).
	vals := [6]float32{
		color0Bak[0], color1Bak[0],
		color0Bak[1], color1Bak[1],
		color0Bak[2], color1Bak[2],
	}
	for i := range vals {
		vals[i] = clampF32(vals[i], 0, 65020)
	}
	for i := 0; i < 4; i++ {
		out[i] = quantColorUquant(q, uint8(flt2intRTN(vals[i]/256.0)))
	}
	for i := 4; i < 6; i++ {
		out[i] = quantizeRetainingTopBits(q, uint8(flt2intRTN(vals[i]/512.0)+128), 0xC0)
	}
	return out
}

func quantizeHDRRGBA(color0, color1 [4]float32, q quantMethod) (out [8]uint8) {
	rgb := quantizeHDRRGB(color0, color1, q)
	copy(out[0:6], rgb[:])
	alpha := quantizeHDRA(color0[3], color1[3], q)
	out[6] = alpha[0]
	out[7] = alpha[1]
	return out
}

func quantizeHDRRGBLDRAlpha(color0, color1 [4]float32, q quantMethod) (out [8]uint8) {
	a0 := clampF32(color0[3]/257.0, 0, 255)
	a1 := clampF32(color1[3]/257.0, 0, 255)
	out[6] = quantColorUquant(q, uint8(clampInt(flt2intRTN(a0), 0, 255)))
	out[7] = quantColorUquant(q, uint8(clampInt(flt2intRTN(a1), 0, 255)))
	rgb := quantizeHDRRGB(color0, color1, q)
	copy(out[0:6], rgb[:])
	return out
}

// hdrRGBOSubmodes describes the 5 RGB+scale submodes.
var hdrRGBOSubmodes = [5]struct {
	gbBits, sBits int
	gbMax, sMax   float32
	scale, rscale float32
}{
	{5, 7, 1024, 4096, 1.0 / 32, 32},
	{6, 5, 2048, 1024, 1.0 / 32, 32},
	{5, 8, 2048, 16384, 1.0 / 64, 64},
	{6, 7, 8192, 16384, 1.0 / 128, 128},
	{7, 6, 32768, 16384, 1.0 / 256, 256},
}

// Fold tables for the RGB+scale format. Accumulator indices:
// 0=r 1=g 2=b 3=s. The g/b stage lands in bits 6 and 5 of the g and b bytes;
// the s stage lands in bits 5, 6 and 7 of the s byte.
var hdrRGBOFoldGB = [5][4]hdrFoldBit{
	{{0, 9}, {0, 8}, {0, 7}, {0, 10}},
	{{0, 8}, {1, 5}, {0, 7}, {2, 5}},
	{{0, 9}, {0, 8}, {0, 7}, {0, 6}},
	{{0, 8}, {1, 5}, {0, 7}, {2, 5}},
	{{1, 6}, {1, 5}, {2, 6}, {2, 5}},
}

var hdrRGBOFoldS = [5][3]hdrFoldBit{
	{{3, 5}, {3, 6}, {0, 6}},
	{{0, 9}, {0, 10}, {0, 6}},
	{{3, 5}, {3, 6}, {3, 7}},
	{{3, 5}, {3, 6}, {0, 6}},
	{{3, 5}, {0, 7}, {0, 6}},
}

func quantizeHDRRGBScale(rgbo [4]float32, q quantMethod) (out [4]uint8) {
	// The input is RGB + offset (O): the high endpoint is (R+O, G+O, B+O)
	// and the low endpoint is reconstructed from the encoded scale on decode.
	rgbo[0] += rgbo[3]
	rgbo[1] += rgbo[3]
	rgbo[2] += rgbo[3]
	for i := range rgbo {
		rgbo[i] = clampF32(rgbo[i], 0, 65535)
	}
	rgboBak := rgbo

	majcomp := dominantComponent(rgbo)
	rgbo = swizzleMajorToRed(rgbo, majcomp)

	rBase := rgbo[0]
	gBase := rgbo[0] - rgbo[1]
	bBase := rgbo[0] - rgbo[2]
	sBase := rgbo[3]

	for mode := 0; mode < 5; mode++ {
		sm := &hdrRGBOSubmodes[mode]
		if gBase > sm.gbMax || bBase > sm.gbMax || sBase > sm.sMax {
			continue
		}

		modeEnc := mode | (majcomp << 2)
		if mode == 4 {
			modeEnc = majcomp | 0xC
		}

		rInt := flt2intRTN(rBase * sm.scale)
		rLow := (rInt & 0x3F) | ((modeEnc & 3) << 6)
		rQuant := quantizeRetainingTopBits(q, uint8(rLow), 0xC0)
		rInt = (rInt &^ 0x3F) | int(rQuant&0x3F)
		rF := float32(rInt) * sm.rscale

		gF := clampF32(rF-rgbo[1], 0, 65535)
		bF := clampF32(rF-rgbo[2], 0, 65535)
		gInt := flt2intRTN(gF * sm.scale)
		bInt := flt2intRTN(bF * sm.scale)
		if gInt >= 1<<uint(sm.gbBits) || bInt >= 1<<uint(sm.gbBits) {
			continue
		}

		vals := [4]int{rInt, gInt, bInt, 0}
		gLow := (gInt & 0x1F) | ((modeEnc & 0x4) << 5) |
			(foldBitOf(vals[:], hdrRGBOFoldGB[mode][0]) << 6) |
			(foldBitOf(vals[:], hdrRGBOFoldGB[mode][1]) << 5)
		bLow := (bInt & 0x1F) | ((modeEnc & 0x8) << 4) |
			(foldBitOf(vals[:], hdrRGBOFoldGB[mode][2]) << 6) |
			(foldBitOf(vals[:], hdrRGBOFoldGB[mode][3]) << 5)

		gQuant := quantizeRetainingTopBits(q, uint8(gLow), 0xF0)
		bQuant := quantizeRetainingTopBits(q, uint8(bLow), 0xF0)
		gInt = (gInt &^ 0x1F) | int(gQuant&0x1F)
		bInt = (bInt &^ 0x1F) | int(bQuant&0x1F)
		gF = float32(gInt) * sm.rscale
		bF = float32(bInt) * sm.rscale

		// Fold the RGB rounding error into the scale so the low endpoint
		// stays centered.
		rgbErrSum := (rF - rgbo[0]) + (rF - gF - rgbo[1]) + (rF - bF - rgbo[2])
		sF := clampF32(sBase+rgbErrSum*(1.0/3.0), 0, 1e9)
		sInt := flt2intRTN(sF * sm.scale)
		if sInt >= 1<<uint(sm.sBits) {
			continue
		}

		vals[3] = sInt
		sLow := (sInt & 0x1F) |
			(foldBitOf(vals[:], hdrRGBOFoldS[mode][0]) << 5) |
			(foldBitOf(vals[:], hdrRGBOFoldS[mode][1]) << 6) |
			(foldBitOf(vals[:], hdrRGBOFoldS[mode][2]) << 7)

		out[0] = rQuant
		out[1] = gQuant
		out[2] = bQuant
		out[3] = quantizeRetainingTopBits(q, uint8(sLow), 0xF0)
		return out
	}

	// No submode fits; encode the direct-value fallback (mode #5).
	vals := [4]float32{rgboBak[0], rgboBak[1], rgboBak[2], rgboBak[3]}
	var ivals [4]int
	var cvals [3]float32
	for i := 0; i < 3; i++ {
		vals[i] = clampF32(vals[i], 0, 65020)
		ivals[i] = flt2intRTN(vals[i] * (1.0 / 512.0))
		cvals[i] = float32(ivals[i]) * 512.0
	}

	rgbErrSum := (cvals[0] - vals[0]) + (cvals[1] - vals[1]) + (cvals[2] - vals[2])
	vals[3] = clampF32(vals[3]+rgbErrSum*(1.0/3.0), 0, 65020)
	ivals[3] = flt2intRTN(vals[3] * (1.0 / 512.0))

	enc := [4]int{
		(ivals[0] & 0x3F) | 0xC0,
		(ivals[1] & 0x7F) | 0x80,
		(ivals[2] & 0x7F) | 0x80,
		(ivals[3] & 0x7F) | ((ivals[0] & 0x40) << 1),
	}
	for i := range enc {
		out[i] = quantizeRetainingTopBits(q, uint8(enc[i]), 0xF0)
	}
	return out
}

func quantizeHDRLuminanceLargeRange(color0, color1 [4]float32, q quantMethod) (out [2]uint8) {
	lum0, lum1 := hdrLumPair(color0, color1)
	i0 := flt2intRTN(lum0)
	i1 := flt2intRTN(lum1)

	// Direct submode: round each endpoint to its 8-bit cell.
	dv0 := clampInt((i0+128)>>8, 0, 255)
	dv1 := clampInt((i1+128)>>8, 0, 255)
	d0 := (dv0 << 8) - i0
	d1 := (dv1 << 8) - i1
	directErr := d0*d0 + d1*d1

	// Offset submode: stored swapped so the decoder reconstructs with a
	// half-cell shift.
	ov0 := clampInt((i1+256)>>8, 0, 255)
	ov1 := clampInt(i0>>8, 0, 255)
	o0 := (ov1 << 8) + 128 - i0
	o1 := (ov0 << 8) - 128 - i1
	offsetErr := o0*o0 + o1*o1

	v0, v1 := dv0, dv1
	if offsetErr <= directErr {
		v0, v1 = ov0, ov1
	}

	out[0] = quantColorUquant(q, uint8(v0))
	out[1] = quantColorUquant(q, uint8(v1))
	return out
}

func tryQuantizeHDRLuminanceSmallRange(color0, color1 [4]float32, q quantMethod) (out [2]uint8, ok bool) {
	lum0, lum1 := hdrLumPair(color0, color1)
	i0 := flt2intRTN(lum0)
	i1 := flt2intRTN(lum1)

	// A spread of more than a factor of two fails immediately.
	if i1-i0 > 2048 {
		return out, false
	}

	// High-precision submode: 5-bit cells with a 4-bit delta.
	lo := clampInt((i0+16)>>5, 0, 2047)
	hi := clampInt((i1+16)>>5, 0, 2047)
	v0 := quantColorUquant(q, uint8(lo&0x7F))
	if int(v0) < 0x80 {
		lo = (lo &^ 0x7F) | int(v0)
		if d := hi - lo; d >= 0 && d <= 15 {
			top := (lo >> 3) & 0xF0
			v1 := quantColorUquant(q, uint8(top|d))
			if int(v1)&0xF0 == top {
				return [2]uint8{v0, v1}, true
			}
		}
	}

	// Low-precision submode: 6-bit cells with a 5-bit delta.
	lo = clampInt((i0+32)>>6, 0, 1023)
	hi = clampInt((i1+32)>>6, 0, 1023)
	v0 = quantColorUquant(q, uint8((lo&0x7F)|0x80))
	if int(v0)&0x80 == 0 {
		return out, false
	}
	lo = (lo &^ 0x7F) | (int(v0) & 0x7F)

	d := hi - lo
	if d < 0 || d > 31 {
		return out, false
	}
	top := (lo >> 2) & 0xE0
	v1 := quantColorUquant(q, uint8(top|d))
	if int(v1)&0xE0 != top {
		return out, false
	}
	return [2]uint8{v0, v1}, true
}
