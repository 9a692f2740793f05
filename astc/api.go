package astc

// Convenience wrappers for the common RGBA8 texture cases. These mirror the
// container-producing surface: encoders return full .astc files, decoders
// accept .astc or .astcz files.

// EncodeRGBA8 compresses an interleaved RGBA8 image into a .astc file using
// the LDR profile.
func EncodeRGBA8(pix []byte, width, height, blockX, blockY int, quality EncodeQuality) ([]byte, error) {
	return EncodeRGBA8Volume(pix, width, height, 1, blockX, blockY, 1, ProfileLDR, quality)
}

// EncodeRGBA8Volume compresses an interleaved RGBA8 volume into a .astc file.
func EncodeRGBA8Volume(pix []byte, width, height, depth, blockX, blockY, blockZ int, profile Profile, quality EncodeQuality) ([]byte, error) {
	cfg, err := NewConfig(profile, blockX, blockY, blockZ, quality)
	if err != nil {
		return nil, err
	}

	ctx, err := NewContext(cfg)
	if err != nil {
		return nil, err
	}

	img := &Image{
		Width:  width,
		Height: height,
		Depth:  depth,
		Type:   TypeU8,
		DataU8: pix,
	}

	blocks, err := ctx.CompressImage(img, SwizzleRGBA)
	if err != nil {
		return nil, err
	}

	return MarshalFile(Header{
		BlockX: uint8(blockX),
		BlockY: uint8(blockY),
		BlockZ: uint8(blockZ),
		SizeX:  uint32(width),
		SizeY:  uint32(height),
		SizeZ:  uint32(depth),
	}, blocks)
}

// DecodeRGBA8 decodes a .astc (or .astcz) file into interleaved RGBA8 pixels
// using the LDR profile.
func DecodeRGBA8(file []byte) (pix []byte, width, height int, err error) {
	hdr, blocks, err := ParseFile(file)
	if err != nil {
		return nil, 0, 0, err
	}

	cfg, err := NewConfig(ProfileLDR, int(hdr.BlockX), int(hdr.BlockY), int(hdr.BlockZ), EncodeMedium)
	if err != nil {
		return nil, 0, 0, err
	}
	ctx, err := NewContext(cfg)
	if err != nil {
		return nil, 0, 0, err
	}

	img := &Image{
		Width:  int(hdr.SizeX),
		Height: int(hdr.SizeY),
		Depth:  int(hdr.SizeZ),
		Type:   TypeU8,
		DataU8: make([]byte, int(hdr.SizeX)*int(hdr.SizeY)*int(hdr.SizeZ)*4),
	}

	if err := ctx.DecompressImage(blocks, img, SwizzleRGBA); err != nil {
		return nil, 0, 0, err
	}
	return img.DataU8, img.Width, img.Height, nil
}
