package visual

import "github.com/jeongseonghan/hvatp/internal/palette"

// Raster is an RGB24 pixel image, the screen-boundary representation from
// this format: flat row-major RGB triples, no alpha, no stride padding.
type Raster struct {
	Width, Height int
	Pix []byte // len == Width*Height*3
}

// ToRaster converts a module grid to a 1-pixel-per-module raster.
func (f *Frame) ToRaster() *Raster {
	r := &Raster{Width: f.ModuleCount, Height: f.ModuleCount, Pix: make([]byte, f.ModuleCount*f.ModuleCount*3)}
	for i, c := range f.Pixels {
		r.Pix[i*3] = c.R
		r.Pix[i*3+1] = c.G
		r.Pix[i*3+2] = c.B
	}
	return r
}

// Upscale nearest-neighbor-resizes the raster by an integer scale factor,
// preserving sharp module boundaries.
func (r *Raster) Upscale(scale int) *Raster {
	if scale < 1 {
		scale = 1
	}
	out := &Raster{Width: r.Width * scale, Height: r.Height * scale, Pix: make([]byte, r.Width*scale*r.Height*scale*3)}
	for y := 0; y < out.Height; y++ {
		srcY := y / scale
		for x := 0; x < out.Width; x++ {
			srcX := x / scale
			srcIdx := (srcY*r.Width + srcX) * 3
			dstIdx := (y*out.Width + x) * 3
			out.Pix[dstIdx] = r.Pix[srcIdx]
			out.Pix[dstIdx+1] = r.Pix[srcIdx+1]
			out.Pix[dstIdx+2] = r.Pix[srcIdx+2]
		}
	}
	return out
}

// At returns the color of pixel (x, y).
func (r *Raster) At(x, y int) palette.Color {
	i := (y*r.Width + x) * 3
	return palette.Color{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2]}
}
