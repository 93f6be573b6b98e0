//go:build withcv
// +build withcv

package detect

import (
	"gocv.io/x/gocv"

	"github.com/jeongseonghan/hvatp/internal/palette"
)

// CVImage adapts a gocv.Mat (BGR, 8-bit) to the Image interface so the
// finder detector, rectifier, and module sampler never need to import
// gocv themselves.
type CVImage struct {
	mat gocv.Mat
}

// NewCVImage wraps mat. The caller retains ownership and must Close it
// once done; CVImage does not clone.
func NewCVImage(mat gocv.Mat) *CVImage { return &CVImage{mat: mat} }

func (c *CVImage) Width() int { return c.mat.Cols() }
func (c *CVImage) Height() int { return c.mat.Rows() }

func (c *CVImage) At(x, y int) palette.Color {
	v := c.mat.GetVecbAt(y, x)
	// gocv Mats are BGR by OpenCV convention.
	return palette.Color{R: v[2], G: v[1], B: v[0]}
}

func (c *CVImage) GrayAt(x, y int) float64 {
	if c.mat.Channels() == 1 {
		return float64(c.mat.GetUCharAt(y, x))
	}
	col := c.At(x, y)
	return 0.299*float64(col.R) + 0.587*float64(col.G) + 0.114*float64(col.B)
}
