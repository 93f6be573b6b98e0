package acoustic

import (
	"testing"

	"github.com/jeongseonghan/hvatp/internal/fec"
)

func TestPacketHeader_PackUnpack(t *testing.T) {
	h := PacketHeader{FrameID: 42, PacketSeq: 0, PayloadType: FrameSync}
	packed := h.Pack()

	wantCRC := fec.CRC16([]byte{0, 0, 42, 0, 0, byte(FrameSync)})
	gotCRC := uint16(packed[6])<<8 | uint16(packed[7])
	if gotCRC != wantCRC {
		t.Errorf("header CRC = %#04x, want %#04x", gotCRC, wantCRC)
	}

	recovered, err := UnpackHeader(packed)
	if err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	if recovered != h {
		t.Errorf("recovered = %+v, want %+v", recovered, h)
	}
}

func TestPacketHeader_BadCRC(t *testing.T) {
	h := PacketHeader{FrameID: 1, PacketSeq: 2, PayloadType: Control}
	packed := h.Pack()
	packed[0] ^= 0xFF

	if _, err := UnpackHeader(packed); err != ErrBadCRC {
		t.Errorf("UnpackHeader corrupted header: err = %v, want ErrBadCRC", err)
	}
}
