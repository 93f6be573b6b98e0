package acoustic

import (
	"math"
	"testing"
)

func TestEncodePacket_FixedLength(t *testing.T) {
	params, err := NewParams(48000, 48, 2000, 100, QPSK, 0.05)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	if got := params.SamplesPerPacket(); got != 2400 {
		t.Fatalf("SamplesPerPacket = %d, want 2400", got)
	}

	builder := NewAudioPacketBuilder(params)
	samples := builder.BuildAckPacket(0xFFFFFFFFFFFFFFFF, 42, 0)

	if len(samples) != 2400 {
		t.Errorf("len(samples) = %d, want 2400", len(samples))
	}
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak > 1.0 {
		t.Errorf("peak amplitude = %v, want <= 1.0", peak)
	}
}

func TestEncodePacket_VariousPayloadLengths(t *testing.T) {
	params := DefaultParams()
	pb := NewPacketBuilder(params)
	target := params.SamplesPerPacket()

	for _, n := range []int{0, 1, 7, 8, 64, 200} {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i)
		}
		samples := pb.EncodePacket(payload, 1, 0, Control)
		if len(samples) != target {
			t.Errorf("payload len %d: len(samples) = %d, want %d", n, len(samples), target)
		}
	}
}

func TestOperatorPacket_FixedLength(t *testing.T) {
	params := DefaultParams()
	builder := NewAudioPacketBuilder(params)
	ops := []Operator{
		{Opcode: 0x01, Params: []byte{0xAA}},
		{Opcode: 0x02, Params: []byte{0xBB, 0xCC}},
	}
	samples := builder.BuildOperatorPacket(ops, 5, 1)
	if len(samples) != params.SamplesPerPacket() {
		t.Errorf("len(samples) = %d, want %d", len(samples), params.SamplesPerPacket())
	}
}

func TestPrngPacket_FixedLength(t *testing.T) {
	params := DefaultParams()
	builder := NewAudioPacketBuilder(params)
	samples := builder.BuildPrngPacket(1, 0xCAFEBABE, 4096, 0, 0)
	if len(samples) != params.SamplesPerPacket() {
		t.Errorf("len(samples) = %d, want %d", len(samples), params.SamplesPerPacket())
	}
}
