package acoustic

import (
	"math"
	"testing"
)

func approxEqual(a, b complex128) bool {
	return math.Abs(real(a)-real(b)) < 1e-9 && math.Abs(imag(a)-imag(b)) < 1e-9
}

func TestBPSK_Map(t *testing.T) {
	if got := BPSK.Map([]byte{0}); !approxEqual(got, complex(1, 0)) {
		t.Errorf("BPSK.Map(0) = %v, want 1+0j", got)
	}
	if got := BPSK.Map([]byte{1}); !approxEqual(got, complex(-1, 0)) {
		t.Errorf("BPSK.Map(1) = %v, want -1+0j", got)
	}
}

func TestQPSK_Map_NotGrayCoded(t *testing.T) {
	inv := 1 / math.Sqrt2
	want := []complex128{
		complex(inv, inv),
		complex(inv, -inv),
		complex(-inv, inv),
		complex(-inv, -inv),
	}
	for v := 0; v < 4; v++ {
		bits := indexToBits(v, 2)
		if got := QPSK.Map(bits); !approxEqual(got, want[v]) {
			t.Errorf("QPSK.Map(%d) = %v, want %v", v, got, want[v])
		}
	}
}

func TestQAM16_Map_Corners(t *testing.T) {
	scale := 1 / math.Sqrt(10)
	// bits 0000 -> I=0 -> 2*0-3=-3, Q=0 -> -3
	got := QAM16.Map([]byte{0, 0, 0, 0})
	want := complex(-3*scale, -3*scale)
	if !approxEqual(got, want) {
		t.Errorf("QAM16.Map(0000) = %v, want %v", got, want)
	}
	// bits 1111 -> I=3 -> 2*3-3=3, Q=3 -> 3
	got = QAM16.Map([]byte{1, 1, 1, 1})
	want = complex(3*scale, 3*scale)
	if !approxEqual(got, want) {
		t.Errorf("QAM16.Map(1111) = %v, want %v", got, want)
	}
}

func TestMapBits_LeavesShortTrailerToCaller(t *testing.T) {
	// 7 bits is 3.5 QPSK symbols; MapBits only emits full symbols, leaving
	// the caller (the OFDM symbol assembler) responsible for the trailing
	// zero-fill subcarriers.
	symbols := QPSK.MapBits([]byte{0, 0, 0, 0, 0, 0, 0})
	if len(symbols) != 3 {
		t.Fatalf("len(symbols) = %d, want 3", len(symbols))
	}
}

func indexToBits(v, n int) []byte {
	bits := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		bits[i] = byte(v & 1)
		v >>= 1
	}
	return bits
}

func TestBytesToBits_MSBFirst(t *testing.T) {
	bits := BytesToBits([]byte{0x80})
	want := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	for i := range want {
		if bits[i] != want[i] {
			t.Fatalf("bit %d = %d, want %d", i, bits[i], want[i])
		}
	}
}
