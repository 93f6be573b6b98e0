package acoustic

import "math"

// barker7 is the Barker-7 sequence used to phase-modulate sync pilots.
var barker7 = []int{1, 1, 1, -1, -1, 1, -1}

// Modulator turns constellation symbols into real-valued OFDM audio
// samples by direct summation over subcarriers. This is
// deliberately not an FFT/IFFT implementation: the subcarrier frequencies
// are not bin-aligned to any fixed-size transform, so each output sample
// is the literal sum of N real sinusoid projections.
type Modulator struct {
	params *Params
}

// NewModulator builds an OFDM modulator for the given acoustic Params.
func NewModulator(params *Params) *Modulator {
	return &Modulator{params: params}
}

// ModulateSymbol renders one OFDM symbol from up to NumSubcarriers complex
// points. Missing trailing points (when symbols is shorter than
// NumSubcarriers) are treated as 0+0j, matching the constellation mapper's
// zero-fill rule for a partially-filled final symbol.
func (m *Modulator) ModulateSymbol(symbols []complex128) []float64 {
	p := m.params
	n := p.SamplesPerSymbol()
	freqs := p.CarrierFreqs()
	samples := make([]float64, n)

	for sampleIdx := 0; sampleIdx < n; sampleIdx++ {
		t := float64(sampleIdx) / p.SampleRate
		var sum float64
		for i, freq := range freqs {
			var c complex128
			if i < len(symbols) {
				c = symbols[i]
			}
			phase := 2 * math.Pi * freq * t
			sum += real(c)*math.Cos(phase) - imag(c)*math.Sin(phase)
		}
		samples[sampleIdx] = sum
	}

	normalizeTo(samples, 0.7)
	return samples
}

// AddCyclicPrefix prepends the last prefixLen samples of symbol to itself.
// PacketBuilder never calls this -- it exists as an opt-in utility for
// implementations that add a cyclic prefix ahead of a correlation-based
// symbol synchronizer.
func AddCyclicPrefix(symbol []float64, prefixLen int) []float64 {
	if prefixLen <= 0 || prefixLen > len(symbol) {
		return symbol
	}
	out := make([]float64, 0, len(symbol)+prefixLen)
	out = append(out, symbol[len(symbol)-prefixLen:]...)
	out = append(out, symbol...)
	return out
}

// Preamble renders the 5ms linear chirp used for coarse packet timing.
func (m *Modulator) Preamble() []float64 {
	p := m.params
	const duration = 0.005
	n := int(math.Round(p.SampleRate * duration))
	f0 := p.CarrierStart
	f1 := p.CarrierFreq(p.NumSubcarriers - 1)

	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / p.SampleRate
		phase := 2 * math.Pi * (f0*t + (f1-f0)*t*t/(2*duration))
		samples[i] = math.Sin(phase) * hann(i, n)
	}
	normalizeTo(samples, 0.8)
	return samples
}

// SyncWord renders the 2ms Barker-modulated pilot burst used for
// frame-boundary detection.
func (m *Modulator) SyncWord() []float64 {
	p := m.params
	const duration = 0.002
	n := int(math.Round(p.SampleRate * duration))

	var pilotFreqs []float64
	for i := 0; i < p.NumSubcarriers; i += 4 {
		pilotFreqs = append(pilotFreqs, p.CarrierFreq(i))
	}
	if len(pilotFreqs) == 0 {
		return make([]float64, n)
	}

	samples := make([]float64, n)
	for sampleIdx := 0; sampleIdx < n; sampleIdx++ {
		t := float64(sampleIdx) / p.SampleRate
		var sum float64
		for pilotIdx, freq := range pilotFreqs {
			bit := barker7[pilotIdx%len(barker7)]
			phase := 2 * math.Pi * freq * t
			if bit < 0 {
				phase += math.Pi
			}
			sum += math.Sin(phase)
		}
		samples[sampleIdx] = sum / float64(len(pilotFreqs))
	}
	normalizeTo(samples, 0.6)
	return samples
}

// hann evaluates a Hann window of length n at index i.
func hann(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
}

// normalizeTo scales samples in place so the peak absolute value is amp.
// An all-zero input is left untouched.
func normalizeTo(samples []float64, amp float64) {
	var peak float64
	for _, s := range samples {
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}
	if peak == 0 {
		return
	}
	scale := amp / peak
	for i := range samples {
		samples[i] *= scale
	}
}
