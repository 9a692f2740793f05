package astc

// Endpoint formats. Values are specified by ASTC and must not be reordered.
const (
	fmtLuminance              = 0
	fmtLuminanceDelta         = 1
	fmtHDRLuminanceLargeRange = 2
	fmtHDRLuminanceSmallRange = 3
	fmtLuminanceAlpha         = 4
	fmtLuminanceAlphaDelta    = 5
	fmtRGBScale               = 6
	fmtHDRRGBScale            = 7
	fmtRGB                    = 8
	fmtRGBDelta               = 9
	fmtRGBScaleAlpha          = 10
	fmtHDRRGB                 = 11
	fmtRGBA                   = 12
	fmtRGBADelta              = 13
	fmtHDRRGBLDRAlpha         = 14
	fmtHDRRGBA                = 15
)

// colorFormatIntCount returns the number of encoded integers for a format.
func colorFormatIntCount(format int) int {
	return ((format >> 2) + 1) * 2
}

// isFormatHDR reports whether an endpoint format stores HDR RGB data.
func isFormatHDR(format int) bool {
	switch format {
	case fmtHDRLuminanceLargeRange, fmtHDRLuminanceSmallRange, fmtHDRRGBScale,
		fmtHDRRGB, fmtHDRRGBLDRAlpha, fmtHDRRGBA:
		return true
	}
	return false
}

type int4 [4]int

// signExtend interprets the low bits of v as a two's complement value.
func signExtend(v, bits int) int {
	v &= (1 << uint(bits)) - 1
	m := 1 << uint(bits-1)
	return (v ^ m) - m
}

// blueExpand is the decode half of blue contraction: red and green are stored
// contracted against blue and averaged back up here.
func blueExpand(c int4) int4 {
	c[0] = (c[0] + c[2]) >> 1
	c[1] = (c[1] + c[2]) >> 1
	return c
}

func rgbSum(c int4) int {
	return c[0] + c[1] + c[2]
}

func clamp255(c int4) int4 {
	for i := range c {
		c[i] = clampInt(c[i], 0, 255)
	}
	return c
}

func splat3(v, alpha int) int4 {
	return int4{v, v, v, alpha}
}

// The per-format unpackers below produce endpoint pairs in the 8-bit LDR
// domain or the 12-bit (<<4) HDR domain; unpackColorEndpoints expands them
// into the 16-bit interpolation domain afterwards. Each unpacker reads the
// raw encoded integers for its format directly from the value stream.

func unpackLuminance(v []uint8) (int4, int4) {
	return splat3(int(v[0]), 255), splat3(int(v[1]), 255)
}

func unpackLuminanceDelta(v []uint8) (int4, int4) {
	l0 := (int(v[0]) >> 2) | (int(v[1]) & 0xC0)
	l1 := minInt(l0+(int(v[1])&0x3F), 255)
	return splat3(l0, 255), splat3(l1, 255)
}

func unpackLuminanceAlpha(v []uint8) (int4, int4) {
	return splat3(int(v[0]), int(v[2])), splat3(int(v[1]), int(v[3]))
}

// unpackBitTransferPair decodes one 9-bit base + signed 7-bit offset pair,
// where the base high bit rides in the offset byte.
func unpackBitTransferPair(base, off int) (lo, hi int) {
	lo = (base | ((off & 0x80) << 1)) >> 1
	hi = lo + signExtend(off, 7)>>1
	return lo, hi
}

func unpackLuminanceAlphaDelta(v []uint8) (int4, int4) {
	l0, l1 := unpackBitTransferPair(int(v[0]), int(v[1]))
	a0, a1 := unpackBitTransferPair(int(v[2]), int(v[3]))
	l1 = clampInt(l1, 0, 255)
	a1 = clampInt(a1, 0, 255)
	return splat3(l0, a0), splat3(l1, a1)
}

func unpackRGBScale(v []uint8) (int4, int4) {
	hi := int4{int(v[0]), int(v[1]), int(v[2]), 255}
	scale := int(v[3])
	var lo int4
	for i := 0; i < 3; i++ {
		lo[i] = (hi[i] * scale) >> 8
	}
	lo[3] = 255
	return lo, hi
}

func unpackRGBScaleAlpha(v []uint8) (int4, int4) {
	hi := int4{int(v[0]), int(v[1]), int(v[2]), int(v[5])}
	scale := int(v[3])
	var lo int4
	for i := 0; i < 3; i++ {
		lo[i] = (hi[i] * scale) >> 8
	}
	lo[3] = int(v[4])
	return lo, hi
}

// unpackPairs gathers interleaved (low, high) component pairs.
func unpackPairs(v []uint8, components int) (e0, e1 int4) {
	for i := 0; i < components; i++ {
		e0[i] = int(v[2*i])
		e1[i] = int(v[2*i+1])
	}
	return e0, e1
}

func unpackRGBA(v []uint8) (int4, int4) {
	e0, e1 := unpackPairs(v, 4)
	if rgbSum(e0) > rgbSum(e1) {
		// Blue-contracted encoding: expand and swap.
		return blueExpand(e1), blueExpand(e0)
	}
	return e0, e1
}

func unpackRGB(v []uint8) (int4, int4) {
	e0, e1 := unpackPairs(v, 3)
	e0[3] = 255
	e1[3] = 255
	if rgbSum(e0) > rgbSum(e1) {
		return blueExpand(e1), blueExpand(e0)
	}
	return e0, e1
}

func unpackRGBADelta(v []uint8) (int4, int4) {
	var base, high int4
	deltaSum := 0
	for i := 0; i < 4; i++ {
		b := (int(v[2*i]) >> 1) | (int(v[2*i+1]) & 0x80)
		d := signExtend(int(v[2*i+1])>>1, 6)
		base[i] = b
		high[i] = b + d
		if i < 3 {
			deltaSum += d
		}
	}
	if deltaSum < 0 {
		base = blueExpand(base)
		high = blueExpand(high)
		base, high = high, base
	}
	return clamp255(base), clamp255(high)
}

func unpackRGBDelta(v []uint8) (int4, int4) {
	var buf [8]uint8
	copy(buf[:6], v[:6])
	e0, e1 := unpackRGBADelta(buf[:])
	e0[3] = 255
	e1[3] = 255
	return e0, e1
}

// hdrAlpha12 is the alpha lane value marking "HDR 1.0" endpoints.
const hdrAlpha12 = 0x7800

func unpackHDRLuminanceLargeRange(v []uint8) (int4, int4) {
	v0 := int(v[0])
	v1 := int(v[1])

	// The swapped ordering selects the offset submode.
	y0 := v0 << 4
	y1 := v1 << 4
	if v1 < v0 {
		y0 = (v1 << 4) + 8
		y1 = (v0 << 4) - 8
	}
	return splat3(y0<<4, hdrAlpha12), splat3(y1<<4, hdrAlpha12)
}

func unpackHDRLuminanceSmallRange(v []uint8) (int4, int4) {
	v0 := int(v[0])
	v1 := int(v[1])

	var y0, d int
	if v0&0x80 != 0 {
		// Low-precision submode with a wider delta.
		y0 = ((v1 & 0xE0) << 4) | ((v0 & 0x7F) << 2)
		d = (v1 & 0x1F) << 2
	} else {
		y0 = ((v1 & 0xF0) << 4) | ((v0 & 0x7F) << 1)
		d = (v1 & 0xF) << 1
	}
	y1 := minInt(y0+d, 0xFFF)
	return splat3(y0<<4, hdrAlpha12), splat3(y1<<4, hdrAlpha12)
}

// hdrBitSrc routes one spare bit from a quantized byte back into a value
// accumulator; used by the table-driven HDR unpackers below.
type hdrBitSrc struct {
	modes uint8 // submode mask this routing applies to
	bit   uint8 // index into the spare-bit vector
	field uint8 // destination accumulator
	shift uint8 // destination bit position
}

// unpackHDRRGBScale decodes the RGB + scale (offset) HDR format. The value
// layout per submode follows the ASTC specification's HDR endpoint mode
// tables; the scatter table routes the spare high bits of each encoded byte
// into the red/green/blue/scale accumulators.
var hdrRGBOScatter = [...]hdrBitSrc{
	{0x30, 0, 1, 6}, {0x3A, 1, 1, 5},
	{0x30, 2, 2, 6}, {0x3A, 3, 2, 5},
	{0x3D, 6, 3, 5}, {0x2D, 5, 3, 6}, {0x04, 4, 3, 7},
	{0x3B, 4, 0, 6}, {0x04, 3, 0, 6},
	{0x10, 5, 0, 7}, {0x0F, 2, 0, 7},
	{0x05, 1, 0, 8}, {0x0A, 0, 0, 8},
	{0x05, 0, 0, 9}, {0x02, 6, 0, 9},
	{0x01, 3, 0, 10}, {0x02, 5, 0, 10},
}

func unpackHDRRGBScale(v []uint8) (int4, int4) {
	v0 := int(v[0])
	v1 := int(v[1])
	v2 := int(v[2])
	v3 := int(v[3])

	modeval := ((v0 & 0xC0) >> 6) | (((v1 & 0x80) >> 7) << 2) | (((v2 & 0x80) >> 7) << 3)

	var majcomp, mode int
	switch {
	case modeval&0xC != 0xC:
		majcomp = modeval >> 2
		mode = modeval & 3
	case modeval != 0xF:
		majcomp = modeval & 3
		mode = 4
	default:
		majcomp = 0
		mode = 5
	}

	// Accumulators: red, green, blue, scale.
	vals := int4{v0 & 0x3F, v1 & 0x1F, v2 & 0x1F, v3 & 0x1F}
	spare := [7]int{
		(v1 >> 6) & 1, (v1 >> 5) & 1,
		(v2 >> 6) & 1, (v2 >> 5) & 1,
		(v3 >> 7) & 1, (v3 >> 6) & 1, (v3 >> 5) & 1,
	}
	for _, s := range hdrRGBOScatter {
		if s.modes&(1<<uint(mode)) != 0 {
			vals[s.field] |= spare[s.bit] << s.shift
		}
	}

	// Expand to 12 bits.
	shamt := [6]uint{1, 1, 2, 3, 4, 5}[mode]
	red := vals[0] << shamt
	green := vals[1] << shamt
	blue := vals[2] << shamt
	scale := vals[3] << shamt

	// Modes 0..4 store green and blue as differentials against red.
	if mode != 5 {
		green = red - green
		blue = red - blue
	}

	switch majcomp {
	case 1:
		red, green = green, red
	case 2:
		red, blue = blue, red
	}

	hi := int4{maxInt(red, 0), maxInt(green, 0), maxInt(blue, 0), 0}
	lo := int4{maxInt(red-scale, 0), maxInt(green-scale, 0), maxInt(blue-scale, 0), 0}

	for i := 0; i < 3; i++ {
		lo[i] <<= 4
		hi[i] <<= 4
	}
	lo[3] = hdrAlpha12
	hi[3] = hdrAlpha12
	return lo, hi
}

// unpackHDRRGB decodes the direct HDR RGB format. Accumulators: a, c, b0,
// b1, d0, d1 per the specification's naming.
var hdrRGBScatter = [...]hdrBitSrc{
	{0xA4, 0, 0, 9}, {0x08, 2, 0, 9}, {0x50, 4, 0, 9},
	{0x50, 5, 0, 10}, {0xA0, 1, 0, 10}, {0xC0, 2, 0, 11},
	{0x04, 1, 1, 6}, {0xE8, 3, 1, 6}, {0x20, 2, 1, 7},
	{0x5B, 0, 2, 6}, {0x5B, 1, 3, 6},
	{0x12, 2, 2, 7}, {0x12, 3, 3, 7},
	{0xAF, 4, 4, 5}, {0xAF, 5, 5, 5},
	{0x05, 2, 4, 6}, {0x05, 3, 5, 6},
}

// hdrRGBDeltaBits is the signed bit width of the d0/d1 deltas per submode.
var hdrRGBDeltaBits = [8]int{7, 6, 7, 6, 5, 6, 5, 6}

func unpackHDRRGB(v []uint8) (int4, int4) {
	v0 := int(v[0])
	v1 := int(v[1])
	v2 := int(v[2])
	v3 := int(v[3])
	v4 := int(v[4])
	v5 := int(v[5])

	modeval := ((v1 & 0x80) >> 7) | (((v2 & 0x80) >> 7) << 1) | (((v3 & 0x80) >> 7) << 2)
	majcomp := ((v4 & 0x80) >> 7) | (((v5 & 0x80) >> 7) << 1)

	if majcomp == 3 {
		// Direct submode: three independent component ranges.
		lo := int4{v0 << 8, v2 << 8, (v4 & 0x7F) << 9, hdrAlpha12}
		hi := int4{v1 << 8, v3 << 8, (v5 & 0x7F) << 9, hdrAlpha12}
		return lo, hi
	}

	vals := [6]int{
		v0 | ((v1 & 0x40) << 2), // a
		v1 & 0x3F,               // c
		v2 & 0x3F,               // b0
		v3 & 0x3F,               // b1
		v4 & 0x7F,               // d0
		v5 & 0x7F,               // d1
	}
	spare := [7]int{
		(v2 >> 6) & 1, (v3 >> 6) & 1,
		(v4 >> 6) & 1, (v5 >> 6) & 1,
		(v4 >> 5) & 1, (v5 >> 5) & 1,
		0,
	}
	for _, s := range hdrRGBScatter {
		if s.modes&(1<<uint(modeval)) != 0 {
			vals[s.field] |= spare[s.bit] << s.shift
		}
	}

	dbits := hdrRGBDeltaBits[modeval]
	d0 := signExtend(vals[4], dbits)
	d1 := signExtend(vals[5], dbits)

	shamt := uint((modeval >> 1) ^ 3)
	a := vals[0] << shamt
	c := vals[1] << shamt
	b0 := vals[2] << shamt
	b1 := vals[3] << shamt
	d0 <<= shamt
	d1 <<= shamt

	hi := int4{a, a - b0, a - b1, 0}
	lo := int4{a - c, a - b0 - c - d0, a - b1 - c - d1, 0}
	for i := 0; i < 3; i++ {
		lo[i] = clampInt(lo[i], 0, 4095)
		hi[i] = clampInt(hi[i], 0, 4095)
	}

	switch majcomp {
	case 1:
		lo[0], lo[1] = lo[1], lo[0]
		hi[0], hi[1] = hi[1], hi[0]
	case 2:
		lo[0], lo[2] = lo[2], lo[0]
		hi[0], hi[2] = hi[2], hi[0]
	}

	for i := 0; i < 3; i++ {
		lo[i] <<= 4
		hi[i] <<= 4
	}
	lo[3] = hdrAlpha12
	hi[3] = hdrAlpha12
	return lo, hi
}

// unpackHDRAlphaPair decodes one HDR alpha endpoint pair. The 12-bit values
// are returned already shifted left by 4 into the 16-bit domain.
func unpackHDRAlphaPair(b6, b7 uint8) (lo, hi int) {
	selector := ((int(b6) >> 7) & 1) | ((int(b7) >> 6) & 2)
	a0 := int(b6) & 0x7F
	a1 := int(b7) & 0x7F

	if selector == 3 {
		return (a0 << 5) << 4, (a1 << 5) << 4
	}

	a0 |= (a1 << uint(selector+1)) & 0x780
	a1 &= 0x3F >> uint(selector)
	a1 ^= 32 >> uint(selector)
	a1 -= 32 >> uint(selector)
	a0 <<= uint(4 - selector)
	a1 <<= uint(4 - selector)

	a1 = clampInt(a1+a0, 0, 0xFFF)
	return a0 << 4, a1 << 4
}

func unpackHDRRGBLDRAlpha(v []uint8) (int4, int4) {
	lo, hi := unpackHDRRGB(v[:6])
	lo[3] = int(v[6])
	hi[3] = int(v[7])
	return lo, hi
}

func unpackHDRRGBA(v []uint8) (int4, int4) {
	lo, hi := unpackHDRRGB(v[:6])
	lo[3], hi[3] = unpackHDRAlphaPair(v[6], v[7])
	return lo, hi
}

// endpointDecoder binds a format's unpacker to its dynamic range behavior.
type endpointDecoder struct {
	unpack func([]uint8) (int4, int4)

	// rgbHDR marks formats whose RGB endpoints are HDR; alphaHDR marks an
	// HDR alpha endpoint; alphaDefault marks formats that carry no alpha of
	// their own and take the profile's default.
	rgbHDR       bool
	alphaHDR     bool
	alphaDefault bool
}

var endpointDecoders = [16]endpointDecoder{
	fmtLuminance:              {unpack: unpackLuminance},
	fmtLuminanceDelta:         {unpack: unpackLuminanceDelta},
	fmtHDRLuminanceLargeRange: {unpack: unpackHDRLuminanceLargeRange, rgbHDR: true, alphaDefault: true},
	fmtHDRLuminanceSmallRange: {unpack: unpackHDRLuminanceSmallRange, rgbHDR: true, alphaDefault: true},
	fmtLuminanceAlpha:         {unpack: unpackLuminanceAlpha},
	fmtLuminanceAlphaDelta:    {unpack: unpackLuminanceAlphaDelta},
	fmtRGBScale:               {unpack: unpackRGBScale},
	fmtHDRRGBScale:            {unpack: unpackHDRRGBScale, rgbHDR: true, alphaDefault: true},
	fmtRGB:                    {unpack: unpackRGB},
	fmtRGBDelta:               {unpack: unpackRGBDelta},
	fmtRGBScaleAlpha:          {unpack: unpackRGBScaleAlpha},
	fmtHDRRGB:                 {unpack: unpackHDRRGB, rgbHDR: true, alphaDefault: true},
	fmtRGBA:                   {unpack: unpackRGBA},
	fmtRGBADelta:              {unpack: unpackRGBADelta},
	fmtHDRRGBLDRAlpha:         {unpack: unpackHDRRGBLDRAlpha, rgbHDR: true},
	fmtHDRRGBA:                {unpack: unpackHDRRGBA, rgbHDR: true, alphaHDR: true},
}

var errorEndpoint = int4{0xFF, 0x00, 0xFF, 0xFF}

// unpackColorEndpoints unpacks a pair of encoded endpoints and expands them
// into the 16-bit interpolation domain for the given decode profile. The
// input values are the unquantized 8-bit endpoint integers.
func unpackColorEndpoints(profile Profile, format uint8, input []uint8) (rgbHDR, alphaHDR bool, output0, output1 int4) {
	dec := &endpointDecoders[format&0xF]
	output0, output1 = dec.unpack(input)
	rgbHDR = dec.rgbHDR
	alphaHDR = dec.alphaHDR

	if dec.alphaDefault {
		if profile == ProfileHDR {
			output0[3] = hdrAlpha12
			output1[3] = hdrAlpha12
			alphaHDR = true
		} else {
			output0[3] = 0x00FF
			output1[3] = 0x00FF
		}
	}

	// LDR profiles cannot interpolate HDR endpoints; substitute the error
	// color. Then widen every lane to 16 bits per the profile rules.
	switch profile {
	case ProfileLDR, ProfileLDRSRGB:
		if rgbHDR || alphaHDR {
			output0 = errorEndpoint
			output1 = errorEndpoint
			rgbHDR = false
			alphaHDR = false
		}
		for i := 0; i < 4; i++ {
			if profile == ProfileLDRSRGB {
				output0[i] = (output0[i] << 8) | 0x80
				output1[i] = (output1[i] << 8) | 0x80
			} else {
				output0[i] *= 257
				output1[i] *= 257
			}
		}
	default:
		// HDR decode profile; LDR lanes still need widening.
		for i := 0; i < 4; i++ {
			hdrLane := alphaHDR
			if i < 3 {
				hdrLane = rgbHDR
			}
			if !hdrLane {
				output0[i] *= 257
				output1[i] *= 257
			}
		}
	}

	return rgbHDR, alphaHDR, output0, output1
}
