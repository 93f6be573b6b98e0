package detect

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jeongseonghan/hvatp/internal/palette"
	"github.com/jeongseonghan/hvatp/internal/visual"
)

// DefaultRectifier computes the 3x3 homography mapping four ordered
// source corners to the destination square and resamples the source
// image into a plain in-memory raster. It has no gocv
// dependency: the source is read through the generic Image interface, so
// it works against both a live camera frame and a synthetic test image.
type DefaultRectifier struct{}

// NewDefaultRectifier builds a DefaultRectifier.
func NewDefaultRectifier() *DefaultRectifier { return &DefaultRectifier{} }

// Rectify maps corners (TL, TR, BR, BL) onto (0,0)-(S,0)-(S,S)-(0,S) with
// S = moduleCount*4 and resamples img into that square by bilinear
// interpolation. Anything other than exactly 4 corners fails with
// ErrRectificationFailed -- this format explicitly leaves 3-corner
// rectification unsupported.
func (r *DefaultRectifier) Rectify(img Image, corners []Point, moduleCount int) (Image, error) {
	if len(corners) != 4 {
		return nil, visual.ErrRectificationFailed
	}
	s := float64(moduleCount * pixelsPerModule)
	dst := []Point{{0, 0}, {s, 0}, {s, s}, {0, s}}

	h, err := solveHomography(corners, dst)
	if err != nil {
		return nil, visual.ErrRectificationFailed
	}
	hinv, err := invertHomography(h)
	if err != nil {
		return nil, visual.ErrRectificationFailed
	}

	size := int(math.Round(s))
	out := newRasterImage(size, size)
	for v := 0; v < size; v++ {
		for u := 0; u < size; u++ {
			sx, sy := applyHomography(hinv, float64(u)+0.5, float64(v)+0.5)
			if sx < 0 || sy < 0 || sx > float64(img.Width()-1) || sy > float64(img.Height()-1) {
				continue
			}
			out.setColor(u, v, bilinearColor(img, sx, sy))
			out.setGray(u, v, bilinearGray(img, sx, sy))
		}
	}
	return out, nil
}

// solveHomography solves the 8-unknown DLT system mapping src[i] to
// dst[i] for 4 correspondences, returning the row-major 3x3 matrix with
// h[2][2] = 1.
func solveHomography(src, dst []Point) ([3][3]float64, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return [3][3]float64{}, err
	}
	return [3][3]float64{
		{h.AtVec(0), h.AtVec(1), h.AtVec(2)},
		{h.AtVec(3), h.AtVec(4), h.AtVec(5)},
		{h.AtVec(6), h.AtVec(7), 1},
	}, nil
}

// invertHomography inverts a 3x3 matrix via gonum's general matrix
// inverse, failing if the homography is singular (degenerate corners).
func invertHomography(h [3][3]float64) ([3][3]float64, error) {
	m := mat.NewDense(3, 3, []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	})
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return [3][3]float64{}, err
	}
	return [3][3]float64{
		{inv.At(0, 0), inv.At(0, 1), inv.At(0, 2)},
		{inv.At(1, 0), inv.At(1, 1), inv.At(1, 2)},
		{inv.At(2, 0), inv.At(2, 1), inv.At(2, 2)},
	}, nil
}

// applyHomography maps (x,y) through h, normalizing by the homogeneous
// coordinate.
func applyHomography(h [3][3]float64, x, y float64) (float64, float64) {
	u := h[0][0]*x + h[0][1]*y + h[0][2]
	v := h[1][0]*x + h[1][1]*y + h[1][2]
	w := h[2][0]*x + h[2][1]*y + h[2][2]
	if w == 0 {
		return 0, 0
	}
	return u / w, v / w
}

func bilinearColor(img Image, x, y float64) palette.Color {
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := clampInt(x0+1, 0, img.Width()-1), clampInt(y0+1, 0, img.Height()-1)
	x0, y0 = clampInt(x0, 0, img.Width()-1), clampInt(y0, 0, img.Height()-1)
	fx, fy := x-float64(x0), y-float64(y0)

	c00, c10 := img.At(x0, y0), img.At(x1, y0)
	c01, c11 := img.At(x0, y1), img.At(x1, y1)

	lerp := func(a, b, t float64) float64 { return a + (b-a)*t }
	r0 := lerp(float64(c00.R), float64(c10.R), fx)
	r1 := lerp(float64(c01.R), float64(c11.R), fx)
	g0 := lerp(float64(c00.G), float64(c10.G), fx)
	g1 := lerp(float64(c01.G), float64(c11.G), fx)
	b0 := lerp(float64(c00.B), float64(c10.B), fx)
	b1 := lerp(float64(c01.B), float64(c11.B), fx)

	return palette.Color{
		R: uint8(clampF(lerp(r0, r1, fy), 0, 255)),
		G: uint8(clampF(lerp(g0, g1, fy), 0, 255)),
		B: uint8(clampF(lerp(b0, b1, fy), 0, 255)),
	}
}

func bilinearGray(img Image, x, y float64) float64 {
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := clampInt(x0+1, 0, img.Width()-1), clampInt(y0+1, 0, img.Height()-1)
	x0, y0 = clampInt(x0, 0, img.Width()-1), clampInt(y0, 0, img.Height()-1)
	fx, fy := x-float64(x0), y-float64(y0)

	g00, g10 := img.GrayAt(x0, y0), img.GrayAt(x1, y0)
	g01, g11 := img.GrayAt(x0, y1), img.GrayAt(x1, y1)
	lerp := func(a, b, t float64) float64 { return a + (b-a)*t }
	return lerp(lerp(g00, g10, fx), lerp(g01, g11, fx), fy)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rasterImage is a plain in-memory Image used as the rectifier's output.
type rasterImage struct {
	width, height int
	colors []palette.Color
	grays []float64
}

func newRasterImage(w, h int) *rasterImage {
	return &rasterImage{width: w, height: h, colors: make([]palette.Color, w*h), grays: make([]float64, w*h)}
}

func (r *rasterImage) Width() int { return r.width }
func (r *rasterImage) Height() int { return r.height }
func (r *rasterImage) At(x, y int) palette.Color {
	return r.colors[y*r.width+x]
}
func (r *rasterImage) GrayAt(x, y int) float64 {
	return r.grays[y*r.width+x]
}
func (r *rasterImage) setColor(x, y int, c palette.Color) { r.colors[y*r.width+x] = c }
func (r *rasterImage) setGray(x, y int, g float64) { r.grays[y*r.width+x] = g }
