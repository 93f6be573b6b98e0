package acoustic

import (
	"encoding/binary"
	"errors"

	"github.com/jeongseonghan/hvatp/internal/fec"
)

// HeaderBytes is the wire size of a PacketHeader.
const HeaderBytes = 8

// PayloadType is the closed set of acoustic control-plane payload kinds.
type PayloadType byte

const (
	FrameSync PayloadType = 0x01
	Operators PayloadType = 0x02
	PrngSeeds PayloadType = 0x03
	VisualParity PayloadType = 0x04
	Dictionary PayloadType = 0x05
	Control PayloadType = 0x06
)

// ErrBadCRC is returned by UnpackHeader when the header checksum fails.
var ErrBadCRC = errors.New("acoustic: header CRC mismatch")

// PacketHeader is the 8-byte header prefixing every audio packet's
// payload symbols.
type PacketHeader struct {
	FrameID uint32 // u24 on the wire
	PacketSeq uint16
	PayloadType PayloadType
}

// Pack serializes the header and appends its CRC-16/CCITT-FALSE checksum
// over the first 6 bytes.
func (h PacketHeader) Pack() [HeaderBytes]byte {
	var buf [HeaderBytes]byte
	buf[0] = byte(h.FrameID >> 16)
	buf[1] = byte(h.FrameID >> 8)
	buf[2] = byte(h.FrameID)
	binary.BigEndian.PutUint16(buf[3:5], h.PacketSeq)
	buf[5] = byte(h.PayloadType)
	crc := fec.CRC16(buf[:6])
	binary.BigEndian.PutUint16(buf[6:8], crc)
	return buf
}

// UnpackHeader validates the CRC over the first 6 bytes and decodes the
// header fields.
func UnpackHeader(buf [HeaderBytes]byte) (PacketHeader, error) {
	want := fec.CRC16(buf[:6])
	got := binary.BigEndian.Uint16(buf[6:8])
	if want != got {
		return PacketHeader{}, ErrBadCRC
	}
	return PacketHeader{
		FrameID: uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]),
		PacketSeq: binary.BigEndian.Uint16(buf[3:5]),
		PayloadType: PayloadType(buf[5]),
	}, nil
}
