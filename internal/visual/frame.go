// Package visual implements the JAB-Code-like color 2D symbol codec: frame
// layout, the systematic RS-coded data region, structural finder/timing
// patterns, metadata embedding, and frame sequencing. The camera-facing
// decode half (finder detection, rectification, module sampling) lives in
// the sibling visual/detect package.
package visual

import "github.com/jeongseonghan/hvatp/internal/palette"

// ReservedModules is the nominal reserved-module count of the capacity
// formula data_modules = module_count^2 - 100. It undercounts the positions
// IsReserved excludes (finder corners, timing lines and the metadata block
// come to several hundred modules), so CapacityInfo counts the free
// positions directly and does not use this constant.
const ReservedModules = 100

// FinderSize is the side length, in modules, of one corner finder pattern.
const FinderSize = 10

// Frame is a module_count x module_count grid of palette colors: the
// visual symbol before (encode) or after (decode) rasterization to pixels.
type Frame struct {
	ModuleCount int
	Pixels []palette.Color // row-major, len == ModuleCount*ModuleCount
}

// NewFrame allocates a blank (zero-value black) frame.
func NewFrame(moduleCount int) *Frame {
	return &Frame{
		ModuleCount: moduleCount,
		Pixels: make([]palette.Color, moduleCount*moduleCount),
	}
}

// At returns the color at module (x, y).
func (f *Frame) At(x, y int) palette.Color {
	return f.Pixels[y*f.ModuleCount+x]
}

// Set writes the color at module (x, y).
func (f *Frame) Set(x, y int, c palette.Color) {
	f.Pixels[y*f.ModuleCount+x] = c
}

// IsReserved is the authoritative reserved-region predicate shared by the
// encoder and decoder (this format, testable property 7): finder corners,
// timing rows/columns, and the metadata block.
func IsReserved(x, y, moduleCount int) bool {
	if (x < 10 && y < 10) ||
		(x >= moduleCount-10 && y < 10) ||
		(x < 10 && y >= moduleCount-10) {
		return true
	}
	if x == 6 || y == 6 {
		return true
	}
	if x >= 10 && x < 20 && y >= 10 && y < 18 {
		return true
	}
	return false
}

// drawFinderPattern stamps one 10x10 concentric finder at (originX, originY):
// white ring, 8x8 black, 6x6 white, 4x4 black.
func drawFinderPattern(f *Frame, originX, originY int, pal []palette.Color) {
	for dy := 0; dy < 10; dy++ {
		for dx := 0; dx < 10; dx++ {
			f.Set(originX+dx, originY+dy, pal[1])
		}
	}
	for dy := 1; dy < 9; dy++ {
		for dx := 1; dx < 9; dx++ {
			f.Set(originX+dx, originY+dy, pal[0])
		}
	}
	for dy := 2; dy < 8; dy++ {
		for dx := 2; dx < 8; dx++ {
			f.Set(originX+dx, originY+dy, pal[1])
		}
	}
	for dy := 3; dy < 7; dy++ {
		for dx := 3; dx < 7; dx++ {
			f.Set(originX+dx, originY+dy, pal[0])
		}
	}
}

// drawFinderPatterns places the three mandatory corner finders and, for
// module_count > 150, a half-size advisory center finder. The center finder
// is not part of the reserved predicate -- rectification only needs the
// three corners, so the center pattern simply overwrites whatever data
// modules land there and relies on RS correction to absorb it.
func drawFinderPatterns(f *Frame, pal []palette.Color) {
	m := f.ModuleCount
	drawFinderPattern(f, 0, 0, pal)
	drawFinderPattern(f, m-FinderSize, 0, pal)
	drawFinderPattern(f, 0, m-FinderSize, pal)

	if m > 150 {
		center := m / 2
		origin := center - 2
		for dy := 0; dy < 5; dy++ {
			for dx := 0; dx < 5; dx++ {
				f.Set(origin+dx, origin+dy, pal[1])
			}
		}
		for dy := 1; dy < 4; dy++ {
			for dx := 1; dx < 4; dx++ {
				f.Set(origin+dx, origin+dy, pal[0])
			}
		}
		f.Set(origin+2, origin+2, pal[1])
	}
}

// drawTimingPatterns fills row 6 and column 6 between the finder corners
// with an alternating white/black sequence, starting white at even index.
func drawTimingPatterns(f *Frame, pal []palette.Color) {
	m := f.ModuleCount
	for i := 10; i < m-10; i++ {
		c := pal[1]
		if i%2 != 0 {
			c = pal[0]
		}
		f.Set(i, 6, c)
		f.Set(6, i, c)
	}
}
