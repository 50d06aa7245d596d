package stats

import (
	"math"
	"math/rand"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// KMeansResult assigns each row to a cluster in PCA score space.
type KMeansResult struct {
	K         int         `json:"k"`
	Labels    []int       `json:"labels"`
	Centroids [][]float64 `json:"centroids"`
	Inertia   float64     `json:"inertia"`
}

const kmeansSeed = 42

// KMeans clusters the rows of scores with Lloyd's algorithm. The seed is
// fixed so repeated runs on the same table agree; initial centroids are
// sampled rows.
func KMeans(scores [][]float64, k int) (*KMeansResult, error) {
	if k < 2 {
		return nil, &dataset.InvalidArgumentError{Reason: "k must be at least 2"}
	}
	if len(scores) < k {
		return nil, &dataset.InvalidArgumentError{Reason: "fewer rows than clusters"}
	}
	dim := len(scores[0])

	rng := rand.New(rand.NewSource(kmeansSeed))
	perm := rng.Perm(len(scores))
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = make([]float64, dim)
		copy(centroids[i], scores[perm[i]])
	}

	labels := make([]int, len(scores))
	for iter := 0; iter < 300; iter++ {
		changed := false
		for r, row := range scores {
			best, bestDist := 0, math.Inf(1)
			for c := range centroids {
				d := sqDist(row, centroids[c])
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[r] != best {
				labels[r] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for r, row := range scores {
			c := labels[r]
			counts[c]++
			for d := range row {
				next[c][d] += row[d]
			}
		}
		for c := range next {
			if counts[c] == 0 {
				// Re-seed an empty cluster with a random row.
				copy(next[c], scores[rng.Intn(len(scores))])
				continue
			}
			for d := range next[c] {
				next[c][d] /= float64(counts[c])
			}
		}
		centroids = next
	}

	var inertia float64
	for r, row := range scores {
		inertia += sqDist(row, centroids[labels[r]])
	}
	return &KMeansResult{K: k, Labels: labels, Centroids: centroids, Inertia: inertia}, nil
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
