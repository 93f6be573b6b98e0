// Package detect implements the camera-side half of the visual codec:
// finder detection, perspective rectification, and module sampling,
// wrapped into a VisualDecoder that hands a sampled Frame to
// internal/visual.DecodeFrame.
package detect

import (
	"math"

	"github.com/jeongseonghan/hvatp/internal/palette"
	"github.com/jeongseonghan/hvatp/internal/visual"
)

// Point is a 2D image-space coordinate.
type Point struct {
	X, Y float64
}

// Image is the minimal read-only surface a captured frame or rectified
// frame must expose. Concrete camera/gocv backends implement this so the
// clustering, ordering, and sampling logic below never touches gocv
// directly.
type Image interface {
	Width() int
	Height() int
	// At returns the pixel at (x, y) as an RGB triple.
	At(x, y int) palette.Color
	// GrayAt returns the pixel's intensity in [0, 255], used for
	// grayscale-fallback decode.
	GrayAt(x, y int) float64
}

// FinderDetector locates the three (or four) finder pattern clusters in a
// raw captured image and returns them ordered (TL, TR, BR, BL) per the
// corner-ordering rule below. It fails with visual.ErrNotDetected when
// fewer than 3 clusters are found.
type FinderDetector interface {
	DetectCorners(img Image) ([]Point, error)
}

// Rectifier warps a raw image so the ordered corners land on the square
// (0,0)-(S,0)-(S,S)-(0,S) with S = module_count*4. It fails
// with visual.ErrRectificationFailed if fewer than 4 corners are given
// (the 3-corner case is explicitly unsupported, per this format's own
// resolution of that Open Question) or the homography is singular.
type Rectifier interface {
	Rectify(img Image, corners []Point, moduleCount int) (Image, error)
}

// pixelsPerModule is the rectified image's fixed module pitch: rectify
// targets S = module_count*4, i.e. 4 pixels per module.
const pixelsPerModule = 4

// SampleModules reads each non-reserved module's color from a rectified
// image by averaging its central 60% square, then quantizes to the
// palette. It never touches gocv: Image.At/GrayAt already
// abstracts the pixel source.
func SampleModules(img Image, params *visual.Params) []byte {
	m := params.ModuleCount
	mode := params.Mode
	modules := make([]byte, 0, m*m)

	inset := (1 - 0.6) / 2 // 20% margin on each side of the module block

	for y := 0; y < m; y++ {
		for x := 0; x < m; x++ {
			if visual.IsReserved(x, y, m) {
				continue
			}
			modules = append(modules, byte(sampleModule(img, x, y, mode, inset)))
		}
	}
	return modules
}

func sampleModule(img Image, mx, my int, mode palette.Mode, inset float64) int {
	x0 := float64(mx*pixelsPerModule) + inset*pixelsPerModule
	x1 := float64((mx+1)*pixelsPerModule) - inset*pixelsPerModule
	y0 := float64(my*pixelsPerModule) + inset*pixelsPerModule
	y1 := float64((my+1)*pixelsPerModule) - inset*pixelsPerModule

	ix0, ix1 := int(math.Round(x0)), int(math.Round(x1))
	iy0, iy1 := int(math.Round(y0)), int(math.Round(y1))
	if ix1 <= ix0 {
		ix1 = ix0 + 1
	}
	if iy1 <= iy0 {
		iy1 = iy0 + 1
	}

	if mode == palette.RobustBW {
		var sum float64
		var n int
		for y := iy0; y < iy1; y++ {
			for x := ix0; x < ix1; x++ {
				sum += img.GrayAt(x, y)
				n++
			}
		}
		return mode.NearestByIntensity(sum / float64(n))
	}

	var rSum, gSum, bSum float64
	var n int
	for y := iy0; y < iy1; y++ {
		for x := ix0; x < ix1; x++ {
			c := img.At(x, y)
			rSum += float64(c.R)
			gSum += float64(c.G)
			bSum += float64(c.B)
			n++
		}
	}
	mean := palette.Color{
		R: uint8(rSum / float64(n)),
		G: uint8(gSum / float64(n)),
		B: uint8(bSum / float64(n)),
	}
	return mode.NearestColor(mean)
}

// frameFromModules builds a visual.Frame whose data-region pixels are
// drawn from sampled module colors (it reuses visual.DecodeFrame's
// reserved-region logic by constructing a plain Frame, so detection and
// decoding share exactly one reserved-region/traversal implementation).
func frameFromModules(params *visual.Params, modules []byte) *visual.Frame {
	pal := params.Mode.Palette()
	frame := visual.NewFrame(params.ModuleCount)
	m := params.ModuleCount
	idx := 0
	for y := 0; y < m; y++ {
		for x := 0; x < m; x++ {
			if visual.IsReserved(x, y, m) {
				continue
			}
			if idx < len(modules) {
				frame.Set(x, y, pal[modules[idx]])
				idx++
			}
		}
	}
	return frame
}

// VisualDecoder wraps the finder/rectify/sample pipeline and tracks
// per-instance success statistics (this format: frames_attempted /
// frames_successful are owned by a single decoder instance, not safe
// across instances).
type VisualDecoder struct {
	finder FinderDetector
	rectifier Rectifier
	params *visual.Params

	framesAttempted int
	framesSuccessful int
}

// NewVisualDecoder builds a VisualDecoder over the given finder/rectifier
// collaborators and frame params.
func NewVisualDecoder(finder FinderDetector, rectifier Rectifier, params *visual.Params) *VisualDecoder {
	return &VisualDecoder{finder: finder, rectifier: rectifier, params: params}
}

// DecodeFrame runs the full camera pipeline: corner detection,
// rectification, module sampling, and RS decode. The metadata-carried
// color_mode is not independently re-derived here -- the caller supplies
// params.Mode, matching how VisualDecoder is constructed per stream.
func (d *VisualDecoder) DecodeFrame(img Image) (*visual.DecodedFrame, error) {
	d.framesAttempted++

	corners, err := d.finder.DetectCorners(img)
	if err != nil {
		return nil, err
	}

	rectified, err := d.rectifier.Rectify(img, corners, d.params.ModuleCount)
	if err != nil {
		return nil, err
	}

	modules := SampleModules(rectified, d.params)
	frame := frameFromModules(d.params, modules)
	// Metadata lives in the reserved region, which frameFromModules leaves
	// at its zero value; recover it straight from the rectified image so
	// decode sees the same source pixels the data region did.
	copyMetadataRegion(frame, rectified, d.params.Mode)

	decoded, err := visual.DecodeFrame(frame, d.params)
	if err != nil {
		return nil, err
	}

	d.framesSuccessful++
	return decoded, nil
}

// copyMetadataRegion quantizes and writes the metadata block's pixels
// into frame so visual.DecodeFrame's recoverMetadata call sees real data
// rather than the zero value left by frameFromModules (which only visits
// non-reserved positions).
func copyMetadataRegion(frame *visual.Frame, img Image, mode palette.Mode) {
	pal := mode.Palette()
	for y := 10; y < 18; y++ {
		for x := 10; x < 20; x++ {
			idx := sampleModule(img, x, y, mode, (1-0.6)/2)
			frame.Set(x, y, pal[idx%len(pal)])
		}
	}
}

// SuccessRate returns framesSuccessful/framesAttempted, or 0 if no frame
// has been attempted yet.
func (d *VisualDecoder) SuccessRate() float64 {
	if d.framesAttempted == 0 {
		return 0
	}
	return float64(d.framesSuccessful) / float64(d.framesAttempted)
}
