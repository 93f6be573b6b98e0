package visual

import (
	"bytes"
	"testing"

	"github.com/jeongseonghan/hvatp/internal/palette"
)

func dataPositions(params *Params) []struct{ x, y int } {
	m := params.ModuleCount
	var positions []struct{ x, y int }
	for y := 0; y < m; y++ {
		for x := 0; x < m; x++ {
			if IsReserved(x, y, m) {
				continue
			}
			positions = append(positions, struct{ x, y int }{x, y})
		}
	}
	return positions
}

func TestIsReserved_Symmetry(t *testing.T) {
	// The encoder and decoder both call the single shared IsReserved, so
	// this mainly pins down the documented boundary cases.
	m := 200
	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{9, 9, true},
		{10, 10, true}, // metadata region
		{19, 17, true}, // metadata region
		{20, 17, false}, // just past metadata region
		{6, 50, true}, // timing column
		{50, 6, true}, // timing row
		{190, 0, true}, // top-right finder
		{0, 190, true}, // bottom-left finder
		{25, 25, false},
	}
	for _, c := range cases {
		if got := IsReserved(c.x, c.y, m); got != c.want {
			t.Errorf("IsReserved(%d,%d,%d) = %v, want %v", c.x, c.y, m, got, c.want)
		}
	}
}

func TestEncoder_RoundTripNoiseFree(t *testing.T) {
	params, err := NewParams(palette.Balanced, 80, 0.35)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	enc := NewEncoder(params)

	payload := []byte("hello hvatp, exercised end to end")
	frame, err := enc.EncodeFrame(payload, 7, 1)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	decoded, err := DecodeFrame(frame, params)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if decoded.FrameID != 7 || decoded.TotalFrames != 1 {
		t.Errorf("metadata mismatch: frame_id=%d total_frames=%d", decoded.FrameID, decoded.TotalFrames)
	}
	if !bytes.Equal(decoded.Data, payload) {
		t.Errorf("payload mismatch: got %q, want %q", decoded.Data, payload)
	}
	if decoded.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0 for a clean frame", decoded.ErrorCount)
	}
}

func TestEncoder_CapacityExceeded(t *testing.T) {
	params, _ := NewParams(palette.RobustBW, 50, 0.5)
	enc := NewEncoder(params)

	info := params.CapacityInfo()
	tooBig := make([]byte, info.DataSymbols+1)

	if _, err := enc.EncodeFrame(tooBig, 0, 1); err == nil {
		t.Error("expected ErrCapacityExceeded for an oversized chunk")
	}
}

func TestDecodeFrame_CorrectsModuleErrors(t *testing.T) {
	params, err := NewParams(palette.Balanced, 80, 0.5)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	enc := NewEncoder(params)

	payload := bytes.Repeat([]byte{0xAA}, 40)
	frame, err := enc.EncodeFrame(payload, 1, 1)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	positions := dataPositions(params)
	pal := params.Mode.Palette()
	flips := []int{0, 4, 8, 12, 16, 20}
	for _, idx := range flips {
		pos := positions[idx]
		cur := params.Mode.NearestColor(frame.At(pos.x, pos.y))
		frame.Set(pos.x, pos.y, pal[(cur+1)%len(pal)])
	}

	decoded, err := DecodeFrame(frame, params)
	if err != nil {
		t.Fatalf("DecodeFrame with corrupted modules: %v", err)
	}
	if !bytes.Equal(decoded.Data, payload) {
		t.Errorf("payload mismatch after correction: got %x, want %x", decoded.Data, payload)
	}
	if decoded.ErrorCount == 0 {
		t.Error("expected ErrorCount > 0 after injecting module errors")
	}
}

func TestFrameMetadata_PackUnpack(t *testing.T) {
	meta := FrameMetadata{FrameID: 0x123456, TotalFrames: 0x07D0, DataLength: 0x0400}
	packed := meta.Pack()

	want := [MetadataBytes]byte{0x12, 0x34, 0x56, 0x07, 0xD0, 0x04, 0x00, 0x01, 0x77}
	if packed != want {
		t.Errorf("Pack = %x, want %x", packed, want)
	}

	recovered, err := UnpackMetadata(packed)
	if err != nil {
		t.Fatalf("UnpackMetadata: %v", err)
	}
	if recovered != meta {
		t.Errorf("recovered = %+v, want %+v", recovered, meta)
	}

	packed[0] ^= 0xFF
	if _, err := UnpackMetadata(packed); err == nil {
		t.Error("expected checksum failure after corruption")
	}
}

func TestFrameSequenceEncoder_MultiFrameRoundTrip(t *testing.T) {
	params, err := NewParams(palette.Balanced, 60, 0.35)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	enc := NewEncoder(params)
	seq := NewFrameSequenceEncoder(enc)

	dataSymbols := params.CapacityInfo().DataSymbols
	payload := bytes.Repeat([]byte("abcdefgh"), dataSymbols/4) // spans multiple frames

	frames, err := seq.EncodeData(payload)
	if err != nil {
		t.Fatalf("EncodeData: %v", err)
	}
	if len(frames) < 2 {
		t.Fatalf("expected a multi-frame sequence, got %d frame(s)", len(frames))
	}

	buf := NewReassemblyBuffer()
	for _, frame := range frames {
		decoded, err := DecodeFrame(frame, params)
		if err != nil {
			t.Fatalf("DecodeFrame: %v", err)
		}
		buf.Insert(decoded.FrameID, decoded.TotalFrames, decoded.Data)
	}

	if !buf.Complete() {
		t.Fatalf("reassembly buffer incomplete, missing %v", buf.Missing())
	}
	assembled := buf.Assemble()
	if !bytes.Equal(assembled, payload) {
		t.Errorf("assembled payload mismatch: got %d bytes, want %d bytes", len(assembled), len(payload))
	}
}

func TestRaster_UpscalePreservesModules(t *testing.T) {
	params, _ := NewParams(palette.RobustBW, 52, 0.4)
	enc := NewEncoder(params)
	frame, err := enc.EncodeFrame([]byte("x"), 0, 1)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	raster := enc.RenderForDisplay(frame, 3)
	if raster.Width != params.ModuleCount*3 || raster.Height != params.ModuleCount*3 {
		t.Fatalf("raster size = %dx%d, want %dx%d", raster.Width, raster.Height, params.ModuleCount*3, params.ModuleCount*3)
	}

	for y := 0; y < params.ModuleCount; y++ {
		for x := 0; x < params.ModuleCount; x++ {
			want := frame.At(x, y)
			got := raster.At(x*3+1, y*3+1)
			if got != want {
				t.Fatalf("module (%d,%d): raster color %+v != frame color %+v", x, y, got, want)
			}
		}
	}
}
