package astc

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Context holds the immutable per-block-size state for compression and
// decompression: the configuration, the block size descriptor, and the
// preallocated per-worker scratch buffers. A context is safe for concurrent
// use.
type Context struct {
	cfg Config
	bsd *blockSizeDescriptor

	threadCount int

	buffers chan *compressionWorkingBuffers
}

// NewContext validates the configuration and builds the block size
// descriptor and per-thread working buffers.
func NewContext(cfg Config) (*Context, error) {
	return NewContextWithThreads(cfg, runtime.GOMAXPROCS(0))
}

// NewContextWithThreads is NewContext with an explicit worker count.
func NewContextWithThreads(cfg Config, threadCount int) (*Context, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if threadCount < 1 {
		threadCount = 1
	}

	bsd, err := newBlockSizeDescriptor(cfg.BlockX, cfg.BlockY, cfg.BlockZ, true, cfg.TuneBlockModeLimit)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		cfg:         cfg,
		bsd:         bsd,
		threadCount: threadCount,
		buffers:     make(chan *compressionWorkingBuffers, threadCount),
	}
	for i := 0; i < threadCount; i++ {
		ctx.buffers <- newCompressionWorkingBuffers(bsd)
	}
	return ctx, nil
}

// Config returns a copy of the context configuration.
func (ctx *Context) Config() Config {
	return ctx.cfg
}

// blockCounts returns the block grid dimensions for an image.
func (ctx *Context) blockCounts(img *Image) (bx, by, bz int) {
	bx = (img.Width + ctx.cfg.BlockX - 1) / ctx.cfg.BlockX
	by = (img.Height + ctx.cfg.BlockY - 1) / ctx.cfg.BlockY
	bz = (img.Depth + ctx.cfg.BlockZ - 1) / ctx.cfg.BlockZ
	return bx, by, bz
}

// CompressImage compresses a whole image to contiguous 16-byte blocks in
// raster order. Work is split across the context's worker count, one row of
// blocks per task; each worker writes only its own block range, so the output
// is deterministic.
func (ctx *Context) CompressImage(img *Image, swz Swizzle) ([]byte, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}

	bx, by, bz := ctx.blockCounts(img)
	out := make([]byte, bx*by*bz*BlockBytes)

	var g errgroup.Group
	g.SetLimit(ctx.threadCount)

	for z := 0; z < bz; z++ {
		for y := 0; y < by; y++ {
			z, y := z, y
			g.Go(func() error {
				wb := <-ctx.buffers
				defer func() { ctx.buffers <- wb }()

				var blk imageBlock
				for x := 0; x < bx; x++ {
					fetchImageBlock(ctx.cfg.Profile, img, ctx.bsd, &blk,
						x*ctx.cfg.BlockX, y*ctx.cfg.BlockY, z*ctx.cfg.BlockZ, swz)
					computeErrorWeightBlock(&ctx.cfg, img, ctx.bsd, &blk, &wb.ewb)

					pcb := compressBlock(&ctx.cfg, ctx.bsd, &blk, wb)
					copy(out[((z*by+y)*bx+x)*BlockBytes:], pcb[:])
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecompressImage decodes contiguous 16-byte blocks in raster order into an
// image surface.
func (ctx *Context) DecompressImage(blocks []byte, img *Image, swz Swizzle) error {
	if err := img.validate(); err != nil {
		return err
	}

	bx, by, bz := ctx.blockCounts(img)
	need := bx * by * bz * BlockBytes
	if len(blocks) < need {
		return newError(ErrBadParam, "astc: compressed payload too short")
	}

	// Decoding must accept every legal wire encoding, so it runs against the
	// full-mode descriptor rather than the pruned compression descriptor.
	bsd, err := decodeBSD(ctx.cfg.BlockX, ctx.cfg.BlockY, ctx.cfg.BlockZ)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(ctx.threadCount)

	for z := 0; z < bz; z++ {
		for y := 0; y < by; y++ {
			z, y := z, y
			g.Go(func() error {
				var blk imageBlock
				for x := 0; x < bx; x++ {
					off := ((z*by+y)*bx + x) * BlockBytes
					scb := physicalToSymbolic(bsd, blocks[off:off+BlockBytes])
					decompressSymbolicBlock(ctx.cfg.Profile, bsd, x*ctx.cfg.BlockX, y*ctx.cfg.BlockY, z*ctx.cfg.BlockZ, &scb, &blk)
					writeImageBlock(img, &blk, bsd, x*ctx.cfg.BlockX, y*ctx.cfg.BlockY, z*ctx.cfg.BlockZ, swz)
				}
				return nil
			})
		}
	}

	return g.Wait()
}

// decodeBSDs caches full-mode block size descriptors per footprint so the
// decoder can parse arbitrary wire data regardless of the compression
// pruning in effect.
var decodeBSDs struct {
	mu sync.RWMutex
	m  map[[3]int]*blockSizeDescriptor
}

func decodeBSD(blockX, blockY, blockZ int) (*blockSizeDescriptor, error) {
	key := [3]int{blockX, blockY, blockZ}

	decodeBSDs.mu.RLock()
	if decodeBSDs.m != nil {
		if bsd := decodeBSDs.m[key]; bsd != nil {
			decodeBSDs.mu.RUnlock()
			return bsd, nil
		}
	}
	decodeBSDs.mu.RUnlock()

	decodeBSDs.mu.Lock()
	defer decodeBSDs.mu.Unlock()
	if decodeBSDs.m == nil {
		decodeBSDs.m = make(map[[3]int]*blockSizeDescriptor)
	} else if bsd := decodeBSDs.m[key]; bsd != nil {
		return bsd, nil
	}

	bsd, err := newBlockSizeDescriptor(blockX, blockY, blockZ, false, 1.0)
	if err != nil {
		return nil, err
	}
	decodeBSDs.m[key] = bsd
	return bsd, nil
}
