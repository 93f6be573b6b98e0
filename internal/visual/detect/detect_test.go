package detect

import (
	"math"
	"testing"

	"github.com/jeongseonghan/hvatp/internal/palette"
	"github.com/jeongseonghan/hvatp/internal/visual"
)

// checkerImage is a synthetic Image backing the rectifier/sampler tests:
// an axis-aligned grid of palette colors with no perspective distortion,
// so Rectify against an already-square quadrilateral is a near-identity
// resample.
type checkerImage struct {
	width, height int
	pixelsPerMod int
	moduleColor func(mx, my int) palette.Color
}

func (c *checkerImage) Width() int { return c.width }
func (c *checkerImage) Height() int { return c.height }
func (c *checkerImage) At(x, y int) palette.Color {
	return c.moduleColor(x/c.pixelsPerMod, y/c.pixelsPerMod)
}
func (c *checkerImage) GrayAt(x, y int) float64 {
	col := c.At(x, y)
	return 0.299*float64(col.R) + 0.587*float64(col.G) + 0.114*float64(col.B)
}

func TestDefaultRectifier_IdentitySquare(t *testing.T) {
	moduleCount := 20
	ppm := pixelsPerModule
	size := moduleCount * ppm

	img := &checkerImage{
		width: size, height: size, pixelsPerMod: ppm,
		moduleColor: func(mx, my int) palette.Color {
			if (mx+my)%2 == 0 {
				return palette.Color{R: 255, G: 255, B: 255}
			}
			return palette.Color{R: 0, G: 0, B: 0}
		},
	}

	corners := []Point{{0, 0}, {float64(size), 0}, {float64(size), float64(size)}, {0, float64(size)}}
	r := NewDefaultRectifier()
	rectified, err := r.Rectify(img, corners, moduleCount)
	if err != nil {
		t.Fatalf("Rectify: %v", err)
	}
	if rectified.Width() != size || rectified.Height() != size {
		t.Fatalf("rectified size = %dx%d, want %dx%d", rectified.Width(), rectified.Height(), size, size)
	}

	// Spot-check a handful of module centers map back to their own color.
	for _, m := range []struct{ mx, my int }{{0, 0}, {1, 0}, {5, 5}, {19, 19}} {
		cx := m.mx*ppm + ppm/2
		cy := m.my*ppm + ppm/2
		got := rectified.At(cx, cy)
		want := img.moduleColor(m.mx, m.my)
		if got != want {
			t.Errorf("module (%d,%d): rectified color %+v, want %+v", m.mx, m.my, got, want)
		}
	}
}

func TestDefaultRectifier_RejectsNonFourCorners(t *testing.T) {
	img := &checkerImage{width: 10, height: 10, pixelsPerMod: 1, moduleColor: func(int, int) palette.Color { return palette.Color{} }}
	r := NewDefaultRectifier()
	if _, err := r.Rectify(img, []Point{{0, 0}, {1, 1}, {2, 2}}, 5); err != visual.ErrRectificationFailed {
		t.Errorf("3-corner Rectify error = %v, want ErrRectificationFailed", err)
	}
}

func TestSingleLinkCluster_MergesNearbyPoints(t *testing.T) {
	points := []Point{{0, 0}, {5, 5}, {500, 500}, {505, 495}}
	clusters := singleLinkCluster(points, 50)
	if len(clusters) != 2 {
		t.Fatalf("len(clusters) = %d, want 2", len(clusters))
	}
}

func TestOrderCorners_MinXYFirst(t *testing.T) {
	// A square whose corners are shuffled; orderCorners should restore
	// (TL, TR, BR, BL) with TL being the minimum x+y point.
	square := []Point{{100, 0}, {100, 100}, {0, 100}, {0, 0}}
	ordered := orderCorners(square)
	if ordered[0] != (Point{0, 0}) {
		t.Fatalf("ordered[0] = %+v, want {0,0}", ordered[0])
	}
	// Confirm no input corner was lost or replaced.
	for _, want := range square {
		found := false
		for _, got := range ordered {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("corner %+v missing from ordered result", want)
		}
	}
}

func TestSampleModules_GrayscaleFallback(t *testing.T) {
	const moduleCount = 50
	params, err := visual.NewParams(palette.RobustBW, moduleCount, 0.4)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	ppm := pixelsPerModule
	size := moduleCount * ppm
	img := &checkerImage{
		width: size, height: size, pixelsPerMod: ppm,
		moduleColor: func(mx, my int) palette.Color {
			if visual.IsReserved(mx, my, moduleCount) {
				return palette.Color{}
			}
			if (mx+my)%2 == 0 {
				return palette.Color{R: 255, G: 255, B: 255}
			}
			return palette.Color{}
		},
	}

	modules := SampleModules(img, params)
	if len(modules) == 0 {
		t.Fatal("SampleModules returned no modules")
	}
	for _, v := range modules {
		if v != 0 && v != 1 {
			t.Fatalf("module value %d out of range for RobustBW", v)
		}
	}
}

func TestVisualDecoder_SuccessRate(t *testing.T) {
	stub := &alwaysFailFinder{}
	rect := NewDefaultRectifier()
	params, _ := visual.NewParams(palette.RobustBW, 50, 0.4)
	d := NewVisualDecoder(stub, rect, params)

	img := &checkerImage{width: 1, height: 1, pixelsPerMod: 1, moduleColor: func(int, int) palette.Color { return palette.Color{} }}
	if _, err := d.DecodeFrame(img); err != visual.ErrNotDetected {
		t.Fatalf("DecodeFrame error = %v, want ErrNotDetected", err)
	}
	if rate := d.SuccessRate(); rate != 0 {
		t.Errorf("SuccessRate = %v, want 0 after an all-failing run", rate)
	}
}

type alwaysFailFinder struct{}

func (alwaysFailFinder) DetectCorners(img Image) ([]Point, error) {
	return nil, visual.ErrNotDetected
}

func TestClampHelpers(t *testing.T) {
	if clampInt(-5, 0, 10) != 0 || clampInt(15, 0, 10) != 10 || clampInt(5, 0, 10) != 5 {
		t.Fatal("clampInt out of range")
	}
	if math.Abs(clampF(-1, 0, 1)-0) > 1e-9 || math.Abs(clampF(2, 0, 1)-1) > 1e-9 {
		t.Fatal("clampF out of range")
	}
}
