package astc

// errorWeightBlock stores a per-texel per-component error weight multiplier
// together with precomputed channel-subset averages used to weight different
// color projections without recomputing sums in hot loops.
type errorWeightBlock struct {
	errorWeights [blockMaxTexels]vfloat4

	texelWeight [blockMaxTexels]float32

	texelWeightGBA [blockMaxTexels]float32
	texelWeightRBA [blockMaxTexels]float32
	texelWeightRGA [blockMaxTexels]float32
	texelWeightRGB [blockMaxTexels]float32

	texelWeightRG [blockMaxTexels]float32
	texelWeightRB [blockMaxTexels]float32
	texelWeightGB [blockMaxTexels]float32

	texelWeightR [blockMaxTexels]float32
	texelWeightG [blockMaxTexels]float32
	texelWeightB [blockMaxTexels]float32
	texelWeightA [blockMaxTexels]float32

	blockErrorWeightedRGBASum vfloat4
	blockErrorWeightSum       vfloat4
}

// computeErrorWeightBlock fills the per-texel error weights for a block from
// the configured channel weights. Texels that fall outside the image bounds
// get zero weight so edge blocks spend their bits on real texels.
func computeErrorWeightBlock(cfg *Config, img *Image, bsd *blockSizeDescriptor, blk *imageBlock, ewb *errorWeightBlock) {
	base := vfloat4{cfg.CwR, cfg.CwG, cfg.CwB, cfg.CwA}

	var weightedSum vfloat4
	var weightSum vfloat4

	idx := 0
	for z := 0; z < bsd.zdim; z++ {
		for y := 0; y < bsd.ydim; y++ {
			for x := 0; x < bsd.xdim; x++ {
				w := base
				if blk.xpos+x >= img.Width || blk.ypos+y >= img.Height || blk.zpos+z >= img.Depth {
					w = vfloat4{}
				} else if cfg.AlphaScaleRGB {
					// Scale RGB significance by the texel's alpha so opaque
					// texels keep the highest accuracy.
					alpha := clamp01(blk.dataA[idx] * (1.0 / 65535.0))
					w[0] *= alpha
					w[1] *= alpha
					w[2] *= alpha
				}

				ewb.errorWeights[idx] = w

				ewb.texelWeight[idx] = (w[0] + w[1] + w[2] + w[3]) * 0.25

				ewb.texelWeightGBA[idx] = (w[1] + w[2] + w[3]) * (1.0 / 3.0)
				ewb.texelWeightRBA[idx] = (w[0] + w[2] + w[3]) * (1.0 / 3.0)
				ewb.texelWeightRGA[idx] = (w[0] + w[1] + w[3]) * (1.0 / 3.0)
				ewb.texelWeightRGB[idx] = (w[0] + w[1] + w[2]) * (1.0 / 3.0)

				ewb.texelWeightRG[idx] = (w[0] + w[1]) * 0.5
				ewb.texelWeightRB[idx] = (w[0] + w[2]) * 0.5
				ewb.texelWeightGB[idx] = (w[1] + w[2]) * 0.5

				ewb.texelWeightR[idx] = w[0]
				ewb.texelWeightG[idx] = w[1]
				ewb.texelWeightB[idx] = w[2]
				ewb.texelWeightA[idx] = w[3]

				weightedSum = weightedSum.add(w.mul(blk.texel(idx)))
				weightSum = weightSum.add(w)

				idx++
			}
		}
	}

	ewb.blockErrorWeightedRGBASum = weightedSum
	ewb.blockErrorWeightSum = weightSum
}
