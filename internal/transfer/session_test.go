package transfer

import (
	"bytes"
	"testing"

	"github.com/jeongseonghan/hvatp/internal/acoustic"
	"github.com/jeongseonghan/hvatp/internal/palette"
	"github.com/jeongseonghan/hvatp/internal/visual"
)

func TestSession_SendFile_EmitsProgress(t *testing.T) {
	visualParams, err := visual.NewParams(palette.Balanced, 60, 0.35)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	audioParams := acoustic.DefaultParams()
	session := NewSession(visualParams, audioParams)

	dataSymbols := visualParams.CapacityInfo().DataSymbols
	payload := bytes.Repeat([]byte("x"), dataSymbols*3)

	frames, err := session.SendFile(payload)
	if err != nil {
		t.Fatalf("SendFile: %v", err)
	}
	if len(frames) < 3 {
		t.Fatalf("expected a multi-frame sequence, got %d", len(frames))
	}

	var lastProgress float64
	count := 0
	for {
		select {
		case ev := <-session.Events():
			lastProgress = ev.Progress
			count++
			continue
		default:
		}
		break
	}
	if count == 0 {
		t.Fatal("expected at least one progress event")
	}
	if lastProgress != 1.0 {
		t.Errorf("last progress = %v, want 1.0", lastProgress)
	}
	if rate := session.SuccessRate(); rate != 1.0 {
		t.Errorf("SuccessRate = %v, want 1.0", rate)
	}
}

func TestSession_BuildAckPacket(t *testing.T) {
	visualParams, _ := visual.NewParams(palette.RobustBW, 50, 0.3)
	audioParams := acoustic.DefaultParams()
	session := NewSession(visualParams, audioParams)

	samples := session.BuildAckPacket(0xFF, 1, 0)
	if len(samples) != audioParams.SamplesPerPacket() {
		t.Errorf("len(samples) = %d, want %d", len(samples), audioParams.SamplesPerPacket())
	}
}
