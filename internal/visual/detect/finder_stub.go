//go:build !withcv
// +build !withcv

// Replaces the gocv-backed finder detector when built without OpenCV
// available, mirroring ausocean-av's filters_circleci.go convention.

package detect

import "github.com/jeongseonghan/hvatp/internal/visual"

// NoOpFinderDetector always reports ErrNotDetected. It exists so the
// detect package (and anything depending on it) still builds in
// environments without OpenCV installed.
type NoOpFinderDetector struct{}

// NewCVFinderDetector returns a NoOpFinderDetector in !withcv builds,
// keeping the constructor name stable across build tags.
func NewCVFinderDetector() *NoOpFinderDetector { return &NoOpFinderDetector{} }

func (d *NoOpFinderDetector) Close() error { return nil }

func (d *NoOpFinderDetector) DetectCorners(img Image) ([]Point, error) {
	return nil, visual.ErrNotDetected
}
