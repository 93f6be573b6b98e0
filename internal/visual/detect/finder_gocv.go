//go:build withcv
// +build withcv

package detect

import (
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/jeongseonghan/hvatp/internal/visual"
)

const (
	finderTemplateSize = 40 // 10 modules * 4 px/module, matching pixelsPerModule
	finderScoreThresh = 0.6
	clusterDistPx = 50.0
)

var finderScales = []float64{0.8, 1.0, 1.2}

// CVFinderDetector locates the visual codec's finder patterns in a
// camera-captured image using CLAHE contrast normalization, a bilateral
// denoise pass, and multi-scale normalized cross-correlation template
// matching. Grounded on the teacher ecosystem's gocv usage
// pattern (ausocean-av/filter/*.go: explicit Mat ownership, Close
// cleanup, build-tagged CV code).
type CVFinderDetector struct {
	template gocv.Mat
}

// NewCVFinderDetector builds the synthetic finder template once at
// construction (this format: shared read-only resources are built once and
// reused across decode calls).
func NewCVFinderDetector() *CVFinderDetector {
	return &CVFinderDetector{template: buildFinderTemplate(finderTemplateSize)}
}

// Close releases the template Mat. gocv Mats wrap C memory and must be
// closed explicitly.
func (d *CVFinderDetector) Close() error {
	return d.template.Close()
}

// buildFinderTemplate renders the 10x10 concentric finder pattern
// (outer ring white, 8x8 black, 6x6 white, 4x4 black) as a grayscale
// Mat of size x size pixels, matching visual.drawFinderPattern's module
// layout.
func buildFinderTemplate(size int) gocv.Mat {
	m := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8UC1)
	unit := float64(size) / 10.0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			mx, my := int(float64(x)/unit), int(float64(y)/unit)
			v := byte(255)
			switch {
			case mx >= 1 && mx < 9 && my >= 1 && my < 9:
				v = 0
				if mx >= 2 && mx < 8 && my >= 2 && my < 8 {
					v = 255
					if mx >= 3 && mx < 7 && my >= 3 && my < 7 {
						v = 0
					}
				}
			}
			m.SetUCharAt(y, x, v)
		}
	}
	return m
}

// DetectCorners runs CLAHE + bilateral preprocessing, multi-scale NCC
// template matching, single-link clustering, and corner ordering.
func (d *CVFinderDetector) DetectCorners(img Image) ([]Point, error) {
	cv, ok := img.(*CVImage)
	if !ok {
		return nil, visual.ErrNotDetected
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if cv.mat.Channels() > 1 {
		gocv.CvtColor(cv.mat, &gray, gocv.ColorBGRToGray)
	} else {
		cv.mat.CopyTo(&gray)
	}

	clahe := gocv.NewCLAHEWithParams(2.0, image.Pt(8, 8))
	defer clahe.Close()
	equalized := gocv.NewMat()
	defer equalized.Close()
	clahe.Apply(gray, &equalized)

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.BilateralFilter(equalized, &denoised, 9, 75, 75)

	var matches []Point
	for _, scale := range finderScales {
		scaled := gocv.NewMat()
		newSize := int(math.Round(float64(finderTemplateSize) * scale))
		gocv.Resize(d.template, &scaled, image.Pt(newSize, newSize), 0, 0, gocv.InterpolationLinear)

		result := gocv.NewMat()
		gocv.MatchTemplate(denoised, scaled, &result, gocv.TmCcoeffNormed, gocv.NewMat())

		half := float64(newSize) / 2
		rows, cols := result.Rows(), result.Cols()
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				if score := result.GetFloatAt(y, x); score >= finderScoreThresh {
					matches = append(matches, Point{X: float64(x) + half, Y: float64(y) + half})
				}
			}
		}
		result.Close()
		scaled.Close()
	}

	clusters := singleLinkCluster(matches, clusterDistPx)
	if len(clusters) > 4 {
		sort.Slice(clusters, func(i, j int) bool { return clusters[i].weight > clusters[j].weight })
		clusters = clusters[:4]
	}
	if len(clusters) < 3 {
		return nil, visual.ErrNotDetected
	}

	points := make([]Point, len(clusters))
	for i, c := range clusters {
		points[i] = c.centroid
	}
	return orderCorners(points), nil
}
