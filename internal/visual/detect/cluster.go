package detect

import (
	"math"
	"sort"
)

// cluster is a running centroid/weight pair built up incrementally by
// singleLinkCluster.
type cluster struct {
	centroid Point
	weight int
}

// singleLinkCluster merges points within dist of any existing cluster's
// current centroid, approximating single-link clustering by incremental
// centroid update (this format: "cluster by single-link with distance
// threshold 50 pixels, reporting the cluster centroid"). Kept free of
// gocv so the clustering and ordering math is testable without OpenCV.
func singleLinkCluster(points []Point, dist float64) []cluster {
	var clusters []cluster
	for _, p := range points {
		merged := false
		for i := range clusters {
			dx, dy := p.X-clusters[i].centroid.X, p.Y-clusters[i].centroid.Y
			if math.Hypot(dx, dy) <= dist {
				n := clusters[i].weight
				clusters[i].centroid.X = (clusters[i].centroid.X*float64(n) + p.X) / float64(n+1)
				clusters[i].centroid.Y = (clusters[i].centroid.Y*float64(n) + p.Y) / float64(n+1)
				clusters[i].weight = n + 1
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, cluster{centroid: p, weight: 1})
		}
	}
	return clusters
}

// orderCorners sorts points by angle about their centroid, then rotates
// the cyclic order so the point minimizing x+y comes first,
// yielding (TL, TR, BR, BL) for 4 corners.
func orderCorners(points []Point) []Point {
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(points))
	cy /= float64(len(points))

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		ai := math.Atan2(sorted[i].Y-cy, sorted[i].X-cx)
		aj := math.Atan2(sorted[j].Y-cy, sorted[j].X-cx)
		return ai < aj
	})

	minIdx := 0
	minSum := sorted[0].X + sorted[0].Y
	for i, p := range sorted {
		if s := p.X + p.Y; s < minSum {
			minSum = s
			minIdx = i
		}
	}
	return append(sorted[minIdx:], sorted[:minIdx]...)
}
