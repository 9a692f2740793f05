package astc

import (
	"math"
	"testing"
)

func flatImage(w, h int, r, g, b, a uint8) *Image {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = a
	}
	return &Image{Width: w, Height: h, Depth: 1, Type: TypeU8, DataU8: pix}
}

func gradientImage(w, h int) *Image {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			pix[off+0] = uint8(x * 255 / maxInt(w-1, 1))
			pix[off+1] = uint8(y * 255 / maxInt(h-1, 1))
			pix[off+2] = uint8((x + y) * 255 / maxInt(w+h-2, 1))
			pix[off+3] = 255
		}
	}
	return &Image{Width: w, Height: h, Depth: 1, Type: TypeU8, DataU8: pix}
}

func compressSingleBlock(t *testing.T, img *Image, bx, by int, quality EncodeQuality) []byte {
	t.Helper()
	cfg, err := NewConfig(ProfileLDR, bx, by, 1, quality)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	ctx, err := NewContextWithThreads(cfg, 1)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	blocks, err := ctx.CompressImage(img, SwizzleRGBA)
	if err != nil {
		t.Fatalf("CompressImage: %v", err)
	}
	if len(blocks) != BlockBytes {
		t.Fatalf("expected a single block, got %d bytes", len(blocks))
	}
	return blocks
}

func decompressRGBA8(t *testing.T, blocks []byte, w, h, bx, by int) []byte {
	t.Helper()
	cfg, err := NewConfig(ProfileLDR, bx, by, 1, EncodeMedium)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	ctx, err := NewContextWithThreads(cfg, 1)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	img := &Image{Width: w, Height: h, Depth: 1, Type: TypeU8, DataU8: make([]byte, w*h*4)}
	if err := ctx.DecompressImage(blocks, img, SwizzleRGBA); err != nil {
		t.Fatalf("DecompressImage: %v", err)
	}
	return img.DataU8
}

func TestCompressConstantWhite(t *testing.T) {
	blocks := compressSingleBlock(t, flatImage(4, 4, 255, 255, 255, 255), 4, 4, EncodeMedium)

	if blocks[0] != 0xFC {
		t.Fatalf("first byte is %#x, want the void-extent marker 0xFC", blocks[0])
	}
	for i := 8; i < 16; i++ {
		if blocks[i] != 0xFF {
			t.Fatalf("white constant payload byte %d is %#x, want 0xFF", i, blocks[i])
		}
	}

	r, g, b, a, err := DecodeConstBlockRGBA8(blocks)
	if err != nil {
		t.Fatalf("DecodeConstBlockRGBA8: %v", err)
	}
	if r != 255 || g != 255 || b != 255 || a != 255 {
		t.Fatalf("decoded constant %d,%d,%d,%d, want white", r, g, b, a)
	}
}

func TestCompressConstantBlack(t *testing.T) {
	blocks := compressSingleBlock(t, flatImage(4, 4, 0, 0, 0, 255), 4, 4, EncodeMedium)

	if blocks[0] != 0xFC {
		t.Fatalf("first byte is %#x, want the void-extent marker 0xFC", blocks[0])
	}

	r, g, b, a, err := DecodeConstBlockRGBA8(blocks)
	if err != nil {
		t.Fatalf("DecodeConstBlockRGBA8: %v", err)
	}
	if r != 0 || g != 0 || b != 0 || a != 255 {
		t.Fatalf("decoded constant %d,%d,%d,%d, want opaque black", r, g, b, a)
	}
}

func TestCompressHalfBlackHalfWhite(t *testing.T) {
	img := flatImage(4, 4, 0, 0, 0, 255)
	for y := 0; y < 4; y++ {
		for x := 2; x < 4; x++ {
			off := (y*4 + x) * 4
			img.DataU8[off+0] = 255
			img.DataU8[off+1] = 255
			img.DataU8[off+2] = 255
		}
	}

	blocks := compressSingleBlock(t, img, 4, 4, EncodeThorough)

	bsd, err := decodeBSD(4, 4, 1)
	if err != nil {
		t.Fatalf("decodeBSD: %v", err)
	}
	scb := physicalToSymbolic(bsd, blocks)
	if scb.blockType != symBlockNonConst {
		t.Fatalf("expected a non-constant block, got type %d", scb.blockType)
	}

	out := decompressRGBA8(t, blocks, 4, 4, 4, 4)
	for i := range out {
		diff := absInt(int(out[i]) - int(img.DataU8[i]))
		if diff > 1 {
			t.Fatalf("texel byte %d off by %d (got %d want %d)", i, diff, out[i], img.DataU8[i])
		}
	}
}

func TestCompressStripes(t *testing.T) {
	img := flatImage(6, 6, 0, 0, 0, 255)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			off := (y*6 + x) * 4
			if x%2 == 0 {
				img.DataU8[off+0] = 255 // red
			} else {
				img.DataU8[off+2] = 255 // blue
			}
		}
	}

	blocks := compressSingleBlock(t, img, 6, 6, EncodeThorough)

	out := decompressRGBA8(t, blocks, 6, 6, 6, 6)
	var sumSq float64
	for i := range out {
		d := float64(int(out[i]) - int(img.DataU8[i]))
		sumSq += d * d
	}
	rms := math.Sqrt(sumSq / float64(len(out)))
	if rms > 40 {
		t.Fatalf("stripes reconstruction RMS error %f too high", rms)
	}
}

func TestCompressGradientRoundTrip(t *testing.T) {
	img := gradientImage(8, 8)
	blocks := compressSingleBlock(t, img, 8, 8, EncodeMedium)

	out := decompressRGBA8(t, blocks, 8, 8, 8, 8)
	for i := range out {
		diff := absInt(int(out[i]) - int(img.DataU8[i]))
		if diff > 24 {
			t.Fatalf("gradient texel byte %d off by %d", i, diff)
		}
	}
}

func TestCompressIdempotence(t *testing.T) {
	img := gradientImage(6, 6)
	blocks := compressSingleBlock(t, img, 6, 6, EncodeMedium)
	dec1 := decompressRGBA8(t, blocks, 6, 6, 6, 6)

	// Re-encoding an already-encoded block must not drift: the error of the
	// second pass against the first decode stays within the error of the
	// first pass against the original.
	img2 := &Image{Width: 6, Height: 6, Depth: 1, Type: TypeU8, DataU8: dec1}
	blocks2 := compressSingleBlock(t, img2, 6, 6, EncodeMedium)
	dec2 := decompressRGBA8(t, blocks2, 6, 6, 6, 6)

	var err1, err2 float64
	for i := range dec1 {
		d1 := float64(int(dec1[i]) - int(img.DataU8[i]))
		err1 += d1 * d1
		d2 := float64(int(dec2[i]) - int(dec1[i]))
		err2 += d2 * d2
	}
	if err2 > err1+1 {
		t.Fatalf("re-encode drifted: err2=%f err1=%f", err2, err1)
	}
}

func TestCompressHDRSpike(t *testing.T) {
	const n = 4
	data := make([]float32, n*n*4)
	for i := 0; i < n*n; i++ {
		data[i*4+0] = 1.0
		data[i*4+1] = 1.0
		data[i*4+2] = 1.0
		data[i*4+3] = 1.0
	}
	data[0] = 1e4
	data[1] = 1e4
	data[2] = 1e4

	img := &Image{Width: n, Height: n, Depth: 1, Type: TypeF32, DataF32: data}

	cfg, err := NewConfig(ProfileHDRRGBLDRAlpha, 4, 4, 1, EncodeThorough)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	ctx, err := NewContextWithThreads(cfg, 1)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	blocks, err := ctx.CompressImage(img, SwizzleRGBA)
	if err != nil {
		t.Fatalf("CompressImage: %v", err)
	}

	out := &Image{Width: n, Height: n, Depth: 1, Type: TypeF32, DataF32: make([]float32, n*n*4)}
	if err := ctx.DecompressImage(blocks, out, SwizzleRGBA); err != nil {
		t.Fatalf("DecompressImage: %v", err)
	}

	for i, v := range out.DataF32 {
		if v != v {
			t.Fatalf("NaN in decoded HDR output at %d", i)
		}
	}

	spike := out.DataF32[0]
	if spike < 1e4*0.95 || spike > 1e4*1.05 {
		t.Fatalf("spike texel decoded to %f, want within 5%% of 1e4", spike)
	}
}

func TestDecompressReservedModeIsMagenta(t *testing.T) {
	// A zero block has an unassigned block mode and must decode to the LDR
	// magenta sentinel.
	blocks := make([]byte, BlockBytes)
	out := decompressRGBA8(t, blocks, 4, 4, 4, 4)
	for i := 0; i < len(out); i += 4 {
		if out[i] != 255 || out[i+1] != 0 || out[i+2] != 255 || out[i+3] != 255 {
			t.Fatalf("texel %d is %v, want magenta", i/4, out[i:i+4])
		}
	}
}

func TestCompressImageMultiBlockDeterministic(t *testing.T) {
	img := gradientImage(16, 12)

	cfg, err := NewConfig(ProfileLDR, 4, 4, 1, EncodeFast)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	ctx1, err := NewContextWithThreads(cfg, 1)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx4, err := NewContextWithThreads(cfg, 4)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	b1, err := ctx1.CompressImage(img, SwizzleRGBA)
	if err != nil {
		t.Fatalf("CompressImage: %v", err)
	}
	b4, err := ctx4.CompressImage(img, SwizzleRGBA)
	if err != nil {
		t.Fatalf("CompressImage: %v", err)
	}

	if len(b1) != 16*12/16*BlockBytes {
		t.Fatalf("unexpected output size %d", len(b1))
	}
	for i := range b1 {
		if b1[i] != b4[i] {
			t.Fatalf("thread count changed output at byte %d", i)
		}
	}
}

func TestEncodeDecodeRGBA8File(t *testing.T) {
	img := gradientImage(10, 7)

	file, err := EncodeRGBA8(img.DataU8, 10, 7, 4, 4, EncodeFast)
	if err != nil {
		t.Fatalf("EncodeRGBA8: %v", err)
	}

	hdr, blocks, err := ParseFile(file)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if hdr.SizeX != 10 || hdr.SizeY != 7 || hdr.BlockX != 4 || hdr.BlockY != 4 {
		t.Fatalf("unexpected header: %s", hdr)
	}
	if len(blocks) != 3*2*BlockBytes {
		t.Fatalf("unexpected block payload size %d", len(blocks))
	}

	pix, w, h, err := DecodeRGBA8(file)
	if err != nil {
		t.Fatalf("DecodeRGBA8: %v", err)
	}
	if w != 10 || h != 7 || len(pix) != 10*7*4 {
		t.Fatalf("unexpected decode dimensions %dx%d", w, h)
	}
}
