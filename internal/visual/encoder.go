package visual

import "fmt"

// Encoder produces VisualFrames for successive payload chunks under a
// fixed Params configuration (this format: VisualEncoder::encode_frame,
// render_for_display).
type Encoder struct {
	params *Params
}

// NewEncoder builds an Encoder for the given params.
func NewEncoder(params *Params) *Encoder {
	return &Encoder{params: params}
}

// Params returns the encoder's configuration.
func (e *Encoder) Params() *Params { return e.params }

// EncodeFrame RS-encodes data, lays it into the data region of a fresh
// frame, stamps structural patterns, and embeds metadata. data longer than
// the frame's DataSymbols capacity is rejected with ErrCapacityExceeded;
// the frame sequencing layer is responsible for chunking so this never
// happens in normal use.
func (e *Encoder) EncodeFrame(data []byte, frameID uint32, totalFrames uint16) (*Frame, error) {
	info := e.params.CapacityInfo()
	if len(data) > info.DataSymbols {
		return nil, fmt.Errorf("visual: chunk of %d bytes exceeds %d-byte capacity: %w", len(data), info.DataSymbols, ErrCapacityExceeded)
	}

	padded := make([]byte, info.DataSymbols)
	copy(padded, data)

	codec, err := newFrameCodec(info.TotalSymbols, e.params.EccLevel)
	if err != nil {
		return nil, err
	}
	encoded := codec.encode(padded)

	pal := e.params.Mode.Palette()
	bitsPerModule := e.params.Mode.BitsPerModule()
	modules := DataToModules(encoded, bitsPerModule)

	frame := NewFrame(e.params.ModuleCount)
	idx := 0
	m := e.params.ModuleCount
	for y := 0; y < m; y++ {
		for x := 0; x < m; x++ {
			if IsReserved(x, y, m) {
				continue
			}
			if idx < len(modules) {
				frame.Set(x, y, pal[modules[idx]])
				idx++
			}
		}
	}

	drawFinderPatterns(frame, pal)
	drawTimingPatterns(frame, pal)

	meta := FrameMetadata{FrameID: frameID, TotalFrames: totalFrames, DataLength: uint16(len(data))}
	embedMetadata(frame, meta, pal)

	return frame, nil
}

// RenderForDisplay upscales frame to scale x its module grid for a screen
// collaborator, preserving sharp module boundaries.
func (e *Encoder) RenderForDisplay(frame *Frame, scale int) *Raster {
	return frame.ToRaster().Upscale(scale)
}
