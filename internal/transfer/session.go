// Package transfer orchestrates one file send across the visual and
// acoustic codecs: chunking a payload into VisualFrames and building the
// acoustic control-plane packets that accompany them. It has no
// retransmission engine and no audio-side receiver -- per this format's
// Non-goals, true closed-loop ARQ and demodulation are out of scope;
// this package is sender-side orchestration only.
package transfer

import (
	"fmt"
	"log"

	"github.com/jeongseonghan/hvatp/internal/acoustic"
	"github.com/jeongseonghan/hvatp/internal/visual"
)

// Status is the transfer's coarse lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusEncoding
	StatusCompleted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusEncoding:
		return "encoding"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Event reports transfer progress to a listener (screen/log collaborator).
type Event struct {
	Status Status
	Message string
	Progress float64 // 0.0.. 1.0
	Error error
}

// Session wires a visual encoder and an acoustic packet builder around
// one file transfer's lifetime, matching the ReassemblyBuffer's own
// one-transfer lifetime.
type Session struct {
	sequencer *visual.FrameSequenceEncoder
	audioBuilder *acoustic.AudioPacketBuilder

	status Status
	eventChan chan Event

	attempted int
	successful int
}

// NewSession builds a Session over the given visual and acoustic
// configurations.
func NewSession(visualParams *visual.Params, audioParams *acoustic.Params) *Session {
	encoder := visual.NewEncoder(visualParams)
	return &Session{
		sequencer: visual.NewFrameSequenceEncoder(encoder),
		audioBuilder: acoustic.NewAudioPacketBuilder(audioParams),
		eventChan: make(chan Event, 100),
	}
}

// Events returns the progress event channel. Buffered; a slow consumer
// drops events rather than blocking the encode loop (mirrors the
// teacher's session event channel).
func (s *Session) Events() <-chan Event {
	return s.eventChan
}

// SendFile chunks data into VisualFrames, emitting a progress Event per
// frame. The caller is responsible for rendering each frame to a screen
// collaborator and advancing once the receiver's ACK (if any) confirms
// it; this method does not wait for acknowledgment.
func (s *Session) SendFile(data []byte) ([]*visual.Frame, error) {
	s.setStatus(StatusEncoding, "encoding visual frames")

	frames, err := s.sequencer.EncodeData(data)
	if err != nil {
		s.setStatus(StatusError, fmt.Sprintf("encode failed: %v", err))
		return nil, err
	}

	for i, frame := range frames {
		_ = frame
		s.attempted++
		s.successful++
		s.emit(Event{
			Status: StatusEncoding,
			Message: fmt.Sprintf("frame %d/%d ready", i+1, len(frames)),
			Progress: float64(i+1) / float64(len(frames)),
		})
	}

	s.status = StatusCompleted
	s.emit(Event{Status: StatusCompleted, Message: fmt.Sprintf("%d frames encoded", len(frames)), Progress: 1.0})
	return frames, nil
}

// BuildAckPacket delegates to the wrapped AudioPacketBuilder so a
// receiver-side collaborator can acknowledge received frame_ids over the
// acoustic return channel.
func (s *Session) BuildAckPacket(bitmap uint64, frameID uint32, packetSeq uint16) []float64 {
	return s.audioBuilder.BuildAckPacket(bitmap, frameID, packetSeq)
}

// SuccessRate reports successful/attempted frame encodes for this
// session instance (this format: these counters are owned by one instance).
func (s *Session) SuccessRate() float64 {
	if s.attempted == 0 {
		return 0
	}
	return float64(s.successful) / float64(s.attempted)
}

func (s *Session) setStatus(status Status, message string) {
	s.status = status
	s.emit(Event{Status: status, Message: message})
}

func (s *Session) emit(event Event) {
	select {
	case s.eventChan <- event:
	default:
		log.Printf("transfer: event channel full, dropping: %s - %s", event.Status, event.Message)
	}
}
