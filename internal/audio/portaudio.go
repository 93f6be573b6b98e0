package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// NumChannels is fixed at mono boundary.
const NumChannels = 1

// Init initializes the PortAudio library. Call once per process before
// constructing a Speaker.
func Init() error {
	return portaudio.Initialize()
}

// Terminate releases PortAudio's global state.
func Terminate() error {
	return portaudio.Terminate()
}

// Speaker plays AudioPackets -- fixed-length, 32-bit float PCM buffers --
// to the default output device. One Speaker is sized to one packet
// configuration; SamplesPerPacket must match every buffer passed to
// Play.
type Speaker struct {
	stream *portaudio.Stream
	buf []float32
	samplesPerPacket int
	mu sync.Mutex
}

// NewSpeaker opens the default output stream at sampleRate, buffered to
// exactly samplesPerPacket frames so one Play call writes one complete
// AudioPacket.
func NewSpeaker(sampleRate float64, samplesPerPacket int) (*Speaker, error) {
	buf := make([]float32, samplesPerPacket)
	stream, err := portaudio.OpenDefaultStream(0, NumChannels, sampleRate, samplesPerPacket, buf)
	if err != nil {
		return nil, fmt.Errorf("audio: open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("audio: start output stream: %w", err)
	}
	return &Speaker{stream: stream, buf: buf, samplesPerPacket: samplesPerPacket}, nil
}

// Play writes one AudioPacket's samples (this format: mono float32 in
// [-1, 1], length exactly samples_per_packet) to the output device.
func (s *Speaker) Play(samples []float64) error {
	if len(samples) != s.samplesPerPacket {
		return fmt.Errorf("audio: packet has %d samples, want %d", len(samples), s.samplesPerPacket)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, v := range samples {
		s.buf[i] = float32(v)
	}
	return s.stream.Write()
}

// Close stops and releases the output stream.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	s.stream = nil
	return err
}
