package acoustic

import (
	"fmt"
	"math"
)

// Params configures the acoustic return channel (this format: AudioParams).
type Params struct {
	SampleRate float64
	NumSubcarriers int
	CarrierStart float64
	CarrierSpacing float64
	Modulation Modulation
	PacketDuration float64
}

// DefaultParams mirrors the 48 kHz / QPSK / 48-subcarrier configuration
// used throughout the worked examples.
func DefaultParams() *Params {
	return &Params{
		SampleRate: 48000,
		NumSubcarriers: 48,
		CarrierStart: 2000,
		CarrierSpacing: 100,
		Modulation: QPSK,
		PacketDuration: 0.05,
	}
}

// NewParams validates and constructs an acoustic Params.
func NewParams(sampleRate float64, numSubcarriers int, carrierStart, carrierSpacing float64, mod Modulation, packetDuration float64) (*Params, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("acoustic: sample_rate must be positive, got %v", sampleRate)
	}
	if numSubcarriers <= 0 {
		return nil, fmt.Errorf("acoustic: num_subcarriers must be positive, got %d", numSubcarriers)
	}
	if packetDuration <= 0 {
		return nil, fmt.Errorf("acoustic: packet_duration must be positive, got %v", packetDuration)
	}
	return &Params{
		SampleRate: sampleRate,
		NumSubcarriers: numSubcarriers,
		CarrierStart: carrierStart,
		CarrierSpacing: carrierSpacing,
		Modulation: mod,
		PacketDuration: packetDuration,
	}, nil
}

// SamplesPerPacket is round(sample_rate * packet_duration).
func (p *Params) SamplesPerPacket() int {
	return int(math.Round(p.SampleRate * p.PacketDuration))
}

// SymbolDuration is packet_duration / 4, the length of one OFDM symbol
// (header or payload). The preamble (5 ms) and sync word (2 ms) have their
// own fixed lengths.
func (p *Params) SymbolDuration() float64 {
	return p.PacketDuration / 4
}

// SamplesPerSymbol is round(sample_rate * symbol_duration).
func (p *Params) SamplesPerSymbol() int {
	return int(math.Round(p.SampleRate * p.SymbolDuration()))
}

// CarrierFreq returns the i-th subcarrier's center frequency.
func (p *Params) CarrierFreq(i int) float64 {
	return p.CarrierStart + float64(i)*p.CarrierSpacing
}

// CarrierFreqs returns all N subcarrier frequencies.
func (p *Params) CarrierFreqs() []float64 {
	freqs := make([]float64, p.NumSubcarriers)
	for i := range freqs {
		freqs[i] = p.CarrierFreq(i)
	}
	return freqs
}

// BitsPerOFDMSymbol is the payload capacity, in bits, of one OFDM symbol
// under this configuration's modulation.
func (p *Params) BitsPerOFDMSymbol() int {
	return p.NumSubcarriers * p.Modulation.BitsPerSymbol()
}

// BytesPerOFDMSymbol is BitsPerOFDMSymbol/8, rounded down.
func (p *Params) BytesPerOFDMSymbol() int {
	return p.BitsPerOFDMSymbol() / 8
}
