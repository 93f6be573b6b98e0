package visual

// FrameSequenceEncoder splits an arbitrary-length payload into a sequence
// of VisualFrames sized to the encoder's per-frame capacity.
type FrameSequenceEncoder struct {
	encoder *Encoder
}

// NewFrameSequenceEncoder wraps an Encoder for multi-frame payloads.
func NewFrameSequenceEncoder(encoder *Encoder) *FrameSequenceEncoder {
	return &FrameSequenceEncoder{encoder: encoder}
}

// EncodeData chunks data into data_symbols-sized parts (the final chunk
// zero-padded before RS encode) and encodes each as one frame stamped with
// its (frame_id, total_frames, actual_data_length).
func (s *FrameSequenceEncoder) EncodeData(data []byte) ([]*Frame, error) {
	dataSymbols := s.encoder.Params().CapacityInfo().DataSymbols
	if dataSymbols <= 0 {
		return nil, ErrCapacityExceeded
	}

	totalFrames := (len(data) + dataSymbols - 1) / dataSymbols
	if totalFrames == 0 {
		totalFrames = 1
	}

	frames := make([]*Frame, 0, totalFrames)
	for frameID := 0; frameID < totalFrames; frameID++ {
		start := frameID * dataSymbols
		end := start + dataSymbols
		if end > len(data) {
			end = len(data)
		}
		chunk := data[start:end]

		frame, err := s.encoder.EncodeFrame(chunk, uint32(frameID), uint16(totalFrames))
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// ReassemblyBuffer collects decoded chunks keyed by frame_id across a
// single file transfer (this format: lifetime is one transfer).
type ReassemblyBuffer struct {
	chunks map[uint32][]byte
	totalFrames uint16
	latched bool
}

// NewReassemblyBuffer creates an empty buffer.
func NewReassemblyBuffer() *ReassemblyBuffer {
	return &ReassemblyBuffer{chunks: make(map[uint32][]byte)}
}

// Insert records a successfully decoded frame's payload chunk. total_frames
// is latched from the first inserted frame; later frames are trusted to
// agree (a mismatch indicates a corrupted or foreign sequence and is
// ignored rather than corrupting an in-progress transfer).
func (b *ReassemblyBuffer) Insert(frameID uint32, totalFrames uint16, chunk []byte) {
	if !b.latched {
		b.totalFrames = totalFrames
		b.latched = true
	}
	if totalFrames != b.totalFrames {
		return
	}
	stored := make([]byte, len(chunk))
	copy(stored, chunk)
	b.chunks[frameID] = stored
}

// Complete reports whether every frame_id in [0, total_frames) has arrived.
func (b *ReassemblyBuffer) Complete() bool {
	if !b.latched {
		return false
	}
	if len(b.chunks) != int(b.totalFrames) {
		return false
	}
	for i := uint32(0); i < uint32(b.totalFrames); i++ {
		if _, ok := b.chunks[i]; !ok {
			return false
		}
	}
	return true
}

// Assemble concatenates chunks by ascending frame_id. Callers should check
// Complete first; a gap yields a short result.
func (b *ReassemblyBuffer) Assemble() []byte {
	var out []byte
	for i := uint32(0); i < uint32(b.totalFrames); i++ {
		out = append(out, b.chunks[i]...)
	}
	return out
}

// Missing returns the frame_ids not yet received, ascending.
func (b *ReassemblyBuffer) Missing() []uint32 {
	var missing []uint32
	for i := uint32(0); i < uint32(b.totalFrames); i++ {
		if _, ok := b.chunks[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}
