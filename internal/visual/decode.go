package visual

// DecodedFrame is the result of a successful frame decode.
type DecodedFrame struct {
	FrameID uint32
	TotalFrames uint16
	Data []byte
	ErrorCount int
}

// DecodeFrame recovers metadata and payload from a module grid that has
// already been quantized to palette colors (either the noise-free output
// of EncodeFrame, or a camera-sampled frame built by visual/detect). It
// does not touch the camera pipeline -- finder detection, rectification,
// and per-module color sampling are the caller's job.
//
// The original implementation this protocol was distilled from prepends
// metadata to the RS-coded data stream and slices the payload out at a
// fixed offset; here metadata lives entirely in its own reserved region
// (recovered independently via recoverMetadata), so the payload is simply
// the first data_length bytes of the RS-decoded data region.
func DecodeFrame(frame *Frame, params *Params) (*DecodedFrame, error) {
	metaBytes := recoverMetadata(frame, params.Mode)
	meta, err := UnpackMetadata(metaBytes)
	if err != nil {
		return nil, err
	}

	info := params.CapacityInfo()
	if int(meta.DataLength) > info.DataSymbols {
		return nil, ErrBadMetadata
	}

	m := params.ModuleCount
	modules := make([]byte, 0, info.DataModules)
	for y := 0; y < m; y++ {
		for x := 0; x < m; x++ {
			if IsReserved(x, y, m) {
				continue
			}
			modules = append(modules, byte(params.Mode.NearestColor(frame.At(x, y))))
		}
	}

	encoded := ModulesToData(modules, params.Mode.BitsPerModule())
	if len(encoded) < info.TotalSymbols {
		return nil, ErrUncorrectable
	}
	encoded = encoded[:info.TotalSymbols]

	codec, err := newFrameCodec(info.TotalSymbols, params.EccLevel)
	if err != nil {
		return nil, err
	}
	decoded, corrected, err := codec.decode(encoded)
	if err != nil {
		return nil, ErrUncorrectable
	}
	if int(meta.DataLength) > len(decoded) {
		return nil, ErrBadMetadata
	}

	return &DecodedFrame{
		FrameID: meta.FrameID,
		TotalFrames: meta.TotalFrames,
		Data: decoded[:meta.DataLength],
		ErrorCount: corrected,
	}, nil
}
