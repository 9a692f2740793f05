package astc

// SwizzleComponent selects the source for one output component.
type SwizzleComponent uint8

const (
	// SwzR selects the red component.
	SwzR SwizzleComponent = iota
	// SwzG selects the green component.
	SwzG
	// SwzB selects the blue component.
	SwzB
	// SwzA selects the alpha component.
	SwzA
	// Swz0 selects a constant zero.
	Swz0
	// Swz1 selects a constant one.
	Swz1
	// SwzZ reconstructs a unit-vector Z from the swizzled R and G components.
	SwzZ
)

// Swizzle is a component mapping applied on image load and store.
type Swizzle struct {
	R, G, B, A SwizzleComponent
}

// SwizzleRGBA is the identity swizzle.
var SwizzleRGBA = Swizzle{SwzR, SwzG, SwzB, SwzA}

// ComponentType describes the storage type of image texels.
type ComponentType uint8

const (
	// TypeU8 is 8-bit UNORM data.
	TypeU8 ComponentType = iota
	// TypeU16 is 16-bit UNORM data.
	TypeU16
	// TypeF16 is IEEE binary16 data.
	TypeF16
	// TypeF32 is float32 data.
	TypeF32
)

// Image is an uncompressed image surface with interleaved RGBA texels. The
// slice matching Type must hold Width*Height*Depth*4 values.
type Image struct {
	Width  int
	Height int
	Depth  int
	Type   ComponentType

	DataU8  []uint8
	DataU16 []uint16
	DataF16 []uint16
	DataF32 []float32
}

func (img *Image) validate() error {
	if img.Width <= 0 || img.Height <= 0 || img.Depth <= 0 {
		return newError(ErrBadParam, "astc: image with non-positive dimension")
	}
	need := img.Width * img.Height * img.Depth * 4
	switch img.Type {
	case TypeU8:
		if len(img.DataU8) < need {
			return newError(ErrBadParam, "astc: image data too short")
		}
	case TypeU16:
		if len(img.DataU16) < need {
			return newError(ErrBadParam, "astc: image data too short")
		}
	case TypeF16:
		if len(img.DataF16) < need {
			return newError(ErrBadParam, "astc: image data too short")
		}
	case TypeF32:
		if len(img.DataF32) < need {
			return newError(ErrBadParam, "astc: image data too short")
		}
	default:
		return newError(ErrBadParam, "astc: unknown image component type")
	}
	return nil
}

// texelFloat reads one texel as linear floats without scaling.
func (img *Image) texelFloat(x, y, z int) (r, g, b, a float32) {
	off := ((z*img.Height+y)*img.Width + x) * 4
	switch img.Type {
	case TypeU8:
		return float32(img.DataU8[off]) * (1.0 / 255.0),
			float32(img.DataU8[off+1]) * (1.0 / 255.0),
			float32(img.DataU8[off+2]) * (1.0 / 255.0),
			float32(img.DataU8[off+3]) * (1.0 / 255.0)
	case TypeU16:
		return float32(img.DataU16[off]) * (1.0 / 65535.0),
			float32(img.DataU16[off+1]) * (1.0 / 65535.0),
			float32(img.DataU16[off+2]) * (1.0 / 65535.0),
			float32(img.DataU16[off+3]) * (1.0 / 65535.0)
	case TypeF16:
		return halfToFloat32(img.DataF16[off]),
			halfToFloat32(img.DataF16[off+1]),
			halfToFloat32(img.DataF16[off+2]),
			halfToFloat32(img.DataF16[off+3])
	default:
		return img.DataF32[off], img.DataF32[off+1], img.DataF32[off+2], img.DataF32[off+3]
	}
}

// imageBlock is the per-block working image data. Texel values are stored in
// a scaled float domain [0, 65535]: LDR values are direct UNORM, HDR values
// are LNS codes.
type imageBlock struct {
	dataR [blockMaxTexels]float32
	dataG [blockMaxTexels]float32
	dataB [blockMaxTexels]float32
	dataA [blockMaxTexels]float32

	originTexel vfloat4
	dataMin     vfloat4
	dataMax     vfloat4
	grayscale   bool

	rgbLNS   [blockMaxTexels]bool
	alphaLNS [blockMaxTexels]bool

	xpos int
	ypos int
	zpos int

	texelCount int
}

func (blk *imageBlock) texel(i int) vfloat4 {
	return vfloat4{blk.dataR[i], blk.dataG[i], blk.dataB[i], blk.dataA[i]}
}

func (blk *imageBlock) setTexel(i int, v vfloat4) {
	blk.dataR[i] = v[0]
	blk.dataG[i] = v[1]
	blk.dataB[i] = v[2]
	blk.dataA[i] = v[3]
}

// isConstant reports whether every component is constant across the block.
func (blk *imageBlock) isConstant() bool {
	return blk.dataMin == blk.dataMax
}

// isConstantChannel reports whether one component is constant across the
// block. Constant components interpolate to the same value under any weight
// and can be ignored for weight selection.
func (blk *imageBlock) isConstantChannel(c int) bool {
	return blk.dataMin[c] == blk.dataMax[c]
}

func (blk *imageBlock) defaultAlpha() float32 {
	if blk.alphaLNS[0] {
		return float32(0x7800)
	}
	return float32(0xFFFF)
}

func (blk *imageBlock) isLuminance() bool {
	da := blk.defaultAlpha()
	return blk.grayscale && blk.dataMin[3] == da && blk.dataMax[3] == da
}

func (blk *imageBlock) isLuminanceAlpha() bool {
	da := blk.defaultAlpha()
	return blk.grayscale && !(blk.dataMin[3] == da && blk.dataMax[3] == da)
}

func unormByte(v float32) uint8 {
	if !(v > 0) { // NaN and negatives
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func unormShort(v float32) uint16 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 65535
	}
	return uint16(v*65535 + 0.5)
}

func applySwizzle(r, g, b, a float32, c SwizzleComponent) float32 {
	switch c {
	case SwzR:
		return r
	case SwzG:
		return g
	case SwzB:
		return b
	case SwzA:
		return a
	case Swz0:
		return 0
	case Swz1:
		return 1
	default:
		return 0
	}
}

// fetchImageBlock loads one block of texels from the image into the scaled
// float domain, clamping coordinates at the image edge.
func fetchImageBlock(profile Profile, img *Image, bsd *blockSizeDescriptor, blk *imageBlock, xpos, ypos, zpos int, swz Swizzle) {
	blk.xpos = xpos
	blk.ypos = ypos
	blk.zpos = zpos
	blk.texelCount = bsd.texelCount

	hdr := profile.isHDR()
	hdrAlpha := profile == ProfileHDR

	dataMin := vfloat4{1e38, 1e38, 1e38, 1e38}
	dataMax := vfloat4{-1e38, -1e38, -1e38, -1e38}
	grayscale := true

	idx := 0
	for z := 0; z < bsd.zdim; z++ {
		zi := minInt(zpos+z, img.Depth-1)
		for y := 0; y < bsd.ydim; y++ {
			yi := minInt(ypos+y, img.Height-1)
			for x := 0; x < bsd.xdim; x++ {
				xi := minInt(xpos+x, img.Width-1)

				r, g, b, a := img.texelFloat(xi, yi, zi)

				sr := applySwizzle(r, g, b, a, swz.R)
				sg := applySwizzle(r, g, b, a, swz.G)
				sb := applySwizzle(r, g, b, a, swz.B)
				sa := applySwizzle(r, g, b, a, swz.A)

				if swz.R == SwzZ || swz.G == SwzZ || swz.B == SwzZ || swz.A == SwzZ {
					// Reconstruct a unit normal Z from the X and Y slots.
					nx := sr*2 - 1
					ny := sg*2 - 1
					nz2 := 1 - nx*nx - ny*ny
					nz := sqrtF32(maxF32(nz2, 0))*0.5 + 0.5
					if swz.R == SwzZ {
						sr = nz
					}
					if swz.G == SwzZ {
						sg = nz
					}
					if swz.B == SwzZ {
						sb = nz
					}
					if swz.A == SwzZ {
						sa = nz
					}
				}

				var v vfloat4
				if hdr {
					v[0] = floatToLNS(sr)
					v[1] = floatToLNS(sg)
					v[2] = floatToLNS(sb)
					blk.rgbLNS[idx] = true
					if hdrAlpha {
						v[3] = floatToLNS(sa)
						blk.alphaLNS[idx] = true
					} else {
						v[3] = clamp01(sa) * 65535.0
						blk.alphaLNS[idx] = false
					}
				} else {
					v[0] = clamp01(sr) * 65535.0
					v[1] = clamp01(sg) * 65535.0
					v[2] = clamp01(sb) * 65535.0
					v[3] = clamp01(sa) * 65535.0
					blk.rgbLNS[idx] = false
					blk.alphaLNS[idx] = false
				}

				blk.setTexel(idx, v)

				if idx == 0 {
					blk.originTexel = v
				}
				for c := 0; c < 4; c++ {
					dataMin[c] = minF32(dataMin[c], v[c])
					dataMax[c] = maxF32(dataMax[c], v[c])
				}
				if v[0] != v[1] || v[0] != v[2] {
					grayscale = false
				}

				idx++
			}
		}
	}

	blk.dataMin = dataMin
	blk.dataMax = dataMax
	blk.grayscale = grayscale
}

// writeImageBlock stores a decompressed block back into the image, skipping
// texels that fall outside the image bounds.
func writeImageBlock(img *Image, blk *imageBlock, bsd *blockSizeDescriptor, xpos, ypos, zpos int, swz Swizzle) {
	idx := 0
	for z := 0; z < bsd.zdim; z++ {
		zi := zpos + z
		for y := 0; y < bsd.ydim; y++ {
			yi := ypos + y
			for x := 0; x < bsd.xdim; x++ {
				xi := xpos + x
				if xi >= img.Width || yi >= img.Height || zi >= img.Depth {
					idx++
					continue
				}

				var lin [4]float32
				for c, v := range [4]float32{blk.dataR[idx], blk.dataG[idx], blk.dataB[idx], blk.dataA[idx]} {
					if v != v {
						// NaN sentinel from an HDR error block.
						lin[c] = v
						continue
					}
					lns := blk.rgbLNS[idx]
					if c == 3 {
						lns = blk.alphaLNS[idx]
					}
					code := uint16(clampF32(v, 0, 65535))
					if lns {
						lin[c] = lnsToFloat32Table[code]
					} else {
						lin[c] = unorm16ToFloat32Table[code]
					}
				}

				sr := applySwizzle(lin[0], lin[1], lin[2], lin[3], swz.R)
				sg := applySwizzle(lin[0], lin[1], lin[2], lin[3], swz.G)
				sb := applySwizzle(lin[0], lin[1], lin[2], lin[3], swz.B)
				sa := applySwizzle(lin[0], lin[1], lin[2], lin[3], swz.A)

				off := ((zi*img.Height+yi)*img.Width + xi) * 4
				switch img.Type {
				case TypeU8:
					img.DataU8[off+0] = unormByte(sr)
					img.DataU8[off+1] = unormByte(sg)
					img.DataU8[off+2] = unormByte(sb)
					img.DataU8[off+3] = unormByte(sa)
				case TypeU16:
					img.DataU16[off+0] = unormShort(sr)
					img.DataU16[off+1] = unormShort(sg)
					img.DataU16[off+2] = unormShort(sb)
					img.DataU16[off+3] = unormShort(sa)
				case TypeF16:
					img.DataF16[off+0] = float32ToHalf(sr)
					img.DataF16[off+1] = float32ToHalf(sg)
					img.DataF16[off+2] = float32ToHalf(sb)
					img.DataF16[off+3] = float32ToHalf(sa)
				default:
					img.DataF32[off+0] = sr
					img.DataF32[off+1] = sg
					img.DataF32[off+2] = sb
					img.DataF32[off+3] = sa
				}

				idx++
			}
		}
	}
}
