package acoustic

import "encoding/binary"

// Operator is one (opcode, params) control instruction packed into an
// OPERATORS payload.
type Operator struct {
	Opcode byte
	Params []byte
}

// AudioPacketBuilder assembles the three control-plane packet kinds on
// top of the generic acoustic packet assembler.
type AudioPacketBuilder struct {
	packets *PacketBuilder
}

// NewAudioPacketBuilder builds an AudioPacketBuilder for the given Params.
func NewAudioPacketBuilder(params *Params) *AudioPacketBuilder {
	return &AudioPacketBuilder{packets: NewPacketBuilder(params)}
}

// BuildAckPacket wraps an 8-byte big-endian ACK bitmap as a FRAME_SYNC
// payload.
func (b *AudioPacketBuilder) BuildAckPacket(bitmap uint64, frameID uint32, packetSeq uint16) []float64 {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, bitmap)
	return b.packets.EncodePacket(payload, frameID, packetSeq, FrameSync)
}

// BuildOperatorPacket concatenates (opcode, params) pairs into an
// OPERATORS payload.
func (b *AudioPacketBuilder) BuildOperatorPacket(ops []Operator, frameID uint32, packetSeq uint16) []float64 {
	var payload []byte
	for _, op := range ops {
		payload = append(payload, op.Opcode)
		payload = append(payload, op.Params...)
	}
	return b.packets.EncodePacket(payload, frameID, packetSeq, Operators)
}

// BuildPrngPacket packs (algorithm, seed, length) big-endian into a
// PRNG_SEEDS payload.
func (b *AudioPacketBuilder) BuildPrngPacket(algorithm byte, seed uint32, length uint64, frameID uint32, packetSeq uint16) []float64 {
	payload := make([]byte, 1+4+8)
	payload[0] = algorithm
	binary.BigEndian.PutUint32(payload[1:5], seed)
	binary.BigEndian.PutUint64(payload[5:13], length)
	return b.packets.EncodePacket(payload, frameID, packetSeq, PrngSeeds)
}
