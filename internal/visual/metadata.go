package visual

import (
	"fmt"

	"github.com/jeongseonghan/hvatp/internal/palette"
)

// MetadataBytes is the packed size of FrameMetadata.
const MetadataBytes = 9

// FrameMetadata is the per-frame header carried in the reserved metadata
// region, independent of the RS-coded data region.
type FrameMetadata struct {
	FrameID uint32 // fits in 24 bits
	TotalFrames uint16
	DataLength uint16
}

// Pack serializes the metadata to its 9-byte wire form: frame_id (u24 BE),
// total_frames (u16 BE), data_length (u16 BE), checksum (u16 BE) = sum of
// the first 7 bytes mod 2^16.
func (m FrameMetadata) Pack() [MetadataBytes]byte {
	var b [MetadataBytes]byte
	b[0] = byte(m.FrameID >> 16)
	b[1] = byte(m.FrameID >> 8)
	b[2] = byte(m.FrameID)
	b[3] = byte(m.TotalFrames >> 8)
	b[4] = byte(m.TotalFrames)
	b[5] = byte(m.DataLength >> 8)
	b[6] = byte(m.DataLength)

	var sum uint16
	for i := 0; i < 7; i++ {
		sum += uint16(b[i])
	}
	b[7] = byte(sum >> 8)
	b[8] = byte(sum)
	return b
}

// UnpackMetadata parses and checksum-verifies a 9-byte metadata block,
// failing with ErrBadMetadata on mismatch.
func UnpackMetadata(b [MetadataBytes]byte) (FrameMetadata, error) {
	var sum uint16
	for i := 0; i < 7; i++ {
		sum += uint16(b[i])
	}
	want := uint16(b[7])<<8 | uint16(b[8])
	if sum != want {
		return FrameMetadata{}, fmt.Errorf("visual: %w: checksum 0x%04X != 0x%04X", ErrBadMetadata, want, sum)
	}
	return FrameMetadata{
		FrameID: uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]),
		TotalFrames: uint16(b[3])<<8 | uint16(b[4]),
		DataLength: uint16(b[5])<<8 | uint16(b[6]),
	}, nil
}

// metadataOrigin / metadataWidth describe the 10x8 reserved metadata block
// (x in [10,20), y in [10,18)) in module coordinates.
const (
	metadataOriginX = 10
	metadataOriginY = 10
	metadataWidth = 10
	metadataHeight = 8
)

// embedMetadata packs metadata to a 72-bit stream and writes one bit per
// module as palette[0]/palette[1], filling the metadata region left to
// right, top to bottom. 9 bytes * 8 bits = 72 bits fit inside the
// 10x8=80-module region with 8 modules left over; a 2x2-block-per-bit
// scheme (as in an earlier revision of this encoder) only has room for 20
// bits and silently drops the rest of the header, so this only ever
// spends one module per bit.
func embedMetadata(f *Frame, meta FrameMetadata, pal []palette.Color) {
	packed := meta.Pack()
	x, y := metadataOriginX, metadataOriginY
	for _, b := range packed {
		for bitPos := 0; bitPos < 8; bitPos++ {
			bit := (b >> (7 - bitPos)) & 1
			f.Set(x, y, pal[bit])
			x++
			if x >= metadataOriginX+metadataWidth {
				x = metadataOriginX
				y++
			}
		}
	}
}

// recoverMetadata reads the metadata region back out, one bit per module
// via nearest-palette-color classification, the inverse of embedMetadata.
func recoverMetadata(f *Frame, mode palette.Mode) [MetadataBytes]byte {
	var bits []byte
	x, y := metadataOriginX, metadataOriginY
	for len(bits) < MetadataBytes*8 {
		bit := byte(0)
		if mode.NearestColor(f.At(x, y)) == 1 {
			bit = 1
		}
		bits = append(bits, bit)

		x++
		if x >= metadataOriginX+metadataWidth {
			x = metadataOriginX
			y++
		}
	}

	var out [MetadataBytes]byte
	for i := range out {
		var v byte
		for j := 0; j < 8; j++ {
			v = v<<1 | bits[i*8+j]
		}
		out[i] = v
	}
	return out
}
