package astc

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{BlockX: 6, BlockY: 5, BlockZ: 1, SizeX: 1024, SizeY: 768, SizeZ: 1}

	raw, err := MarshalHeader(h)
	if err != nil {
		t.Fatalf("MarshalHeader: %v", err)
	}

	got, err := ParseHeader(raw[:])
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if got != h {
		t.Fatalf("header roundtrip mismatch: %+v != %+v", got, h)
	}

	bx, by, bz, total, err := h.BlockCount()
	if err != nil {
		t.Fatalf("BlockCount: %v", err)
	}
	if bx != 171 || by != 154 || bz != 1 || total != 171*154 {
		t.Fatalf("unexpected block counts %d %d %d %d", bx, by, bz, total)
	}
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	var raw [HeaderSize]byte
	if _, err := ParseHeader(raw[:]); err == nil {
		t.Fatal("expected an error for a zero header")
	}
}

func TestFileRoundTrip(t *testing.T) {
	h := Header{BlockX: 4, BlockY: 4, BlockZ: 1, SizeX: 8, SizeY: 8, SizeZ: 1}
	blocks := make([]byte, 4*BlockBytes)
	for i := range blocks {
		blocks[i] = byte(i * 3)
	}

	file, err := MarshalFile(h, blocks)
	if err != nil {
		t.Fatalf("MarshalFile: %v", err)
	}

	gotH, gotBlocks, err := ParseFile(file)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if gotH != h {
		t.Fatalf("header mismatch: %+v != %+v", gotH, h)
	}
	if !bytes.Equal(gotBlocks, blocks) {
		t.Fatal("block payload mismatch")
	}
}

func TestFileRoundTripZstd(t *testing.T) {
	h := Header{BlockX: 4, BlockY: 4, BlockZ: 1, SizeX: 16, SizeY: 16, SizeZ: 1}
	blocks := make([]byte, 16*BlockBytes)
	for i := range blocks {
		blocks[i] = byte(i % 7)
	}

	file, err := MarshalFileZstd(h, blocks)
	if err != nil {
		t.Fatalf("MarshalFileZstd: %v", err)
	}

	gotH, gotBlocks, err := ParseFile(file)
	if err != nil {
		t.Fatalf("ParseFile(.astcz): %v", err)
	}
	if gotH != h {
		t.Fatalf("header mismatch: %+v != %+v", gotH, h)
	}
	if !bytes.Equal(gotBlocks, blocks) {
		t.Fatal("block payload mismatch after zstd roundtrip")
	}
}

func TestFileRejectsTruncatedPayload(t *testing.T) {
	h := Header{BlockX: 4, BlockY: 4, BlockZ: 1, SizeX: 8, SizeY: 8, SizeZ: 1}
	blocks := make([]byte, 4*BlockBytes)

	file, err := MarshalFile(h, blocks)
	if err != nil {
		t.Fatalf("MarshalFile: %v", err)
	}

	if _, _, err := ParseFile(file[:len(file)-1]); err == nil {
		t.Fatal("expected an error for a truncated file")
	}
}
