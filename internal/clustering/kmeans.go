package clustering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultSeed    int64 = 42
	DefaultNInit         = 10
	DefaultMaxIter       = 300
	DefaultTol           = 1e-4
)

var (
	// ErrInvalidK is returned when k is outside the allowed range.
	ErrInvalidK = errors.New("invalid cluster count")
	// ErrNoPoints is returned when Fit is called without points.
	ErrNoPoints = errors.New("no points to cluster")
)

// Config controls a k-means run
type Config struct {
	K       int
	Seed    int64
	NInit   int
	MaxIter int
	Tol     float64
}

// DefaultConfig returns the settings used by the dashboards for k clusters.
func DefaultConfig(k int) Config {
	return Config{K: k, Seed: DefaultSeed, NInit: DefaultNInit, MaxIter: DefaultMaxIter, Tol: DefaultTol}
}

func (c Config) withDefaults() Config {
	if c.NInit <= 0 {
		c.NInit = DefaultNInit
	}
	if c.MaxIter <= 0 {
		c.MaxIter = DefaultMaxIter
	}
	if c.Tol <= 0 {
		c.Tol = DefaultTol
	}
	return c
}

// Model is the best k-means solution found across restarts
type Model struct {
	Centroids  [][]float64
	Labels     []int
	Inertia    float64
	Iterations int
}

// Fit runs Lloyd's algorithm with k-means++ seeding NInit times and keeps the lowest inertia.
// Results are deterministic for a given seed and input.
func Fit(ctx context.Context, points [][]float64, cfg Config) (Model, error) {
	cfg = cfg.withDefaults()
	if len(points) == 0 {
		return Model{}, ErrNoPoints
	}
	if cfg.K < 1 || cfg.K > len(points) {
		return Model{}, fmt.Errorf("%w: k=%d with %d points", ErrInvalidK, cfg.K, len(points))
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	tol := cfg.Tol * meanVariance(points)

	best := Model{Inertia: math.Inf(1)}
	for run := 0; run < cfg.NInit; run++ {
		if err := ctx.Err(); err != nil {
			return Model{}, err
		}
		centers := seedPlusPlus(points, cfg.K, rng)
		m := lloyd(points, centers, cfg.MaxIter, tol)
		if m.Inertia < best.Inertia {
			best = m
		}
	}
	return best, nil
}

// seedPlusPlus picks k initial centers, each drawn with probability proportional
// to its squared distance from the nearest center already chosen.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(points[rng.Intn(n)]))

	d2 := make([]float64, n)
	for i, p := range points {
		d2[i] = sqDist(p, centers[0])
	}

	for len(centers) < k {
		total := floats.Sum(d2)
		next := rng.Intn(n)
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range d2 {
				acc += d
				if acc >= target && d > 0 {
					next = i
					break
				}
			}
		}
		c := clone(points[next])
		centers = append(centers, c)
		for i, p := range points {
			if d := sqDist(p, c); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centers
}

func lloyd(points [][]float64, centers [][]float64, maxIter int, tol float64) Model {
	k := len(centers)
	dims := len(points[0])
	labels := make([]int, len(points))
	dists := make([]float64, len(points))

	iter := 0
	for iter < maxIter {
		iter++
		assign(points, centers, labels, dists)

		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		counts := make([]int, k)
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := 0; c < k; c++ {
			var next []float64
			if counts[c] == 0 {
				// Relocate an empty cluster to the point farthest from its center.
				far := floats.MaxIdx(dists)
				next = clone(points[far])
				dists[far] = 0
			} else {
				next = sums[c]
				floats.Scale(1/float64(counts[c]), next)
			}
			shift += sqDist(centers[c], next)
			centers[c] = next
		}
		if shift <= tol {
			break
		}
	}

	inertia := assign(points, centers, labels, dists)
	return Model{Centroids: centers, Labels: labels, Inertia: inertia, Iterations: iter}
}

// assign writes the nearest center of every point into labels and returns the inertia.
func assign(points, centers [][]float64, labels []int, dists []float64) float64 {
	inertia := 0.0
	for i, p := range points {
		best, bestD := 0, math.Inf(1)
		for c, center := range centers {
			if d := sqDist(p, center); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i] = best
		dists[i] = bestD
		inertia += bestD
	}
	return inertia
}

func meanVariance(points [][]float64) float64 {
	dims := len(points[0])
	col := make([]float64, len(points))
	total := 0.0
	for j := 0; j < dims; j++ {
		for i, p := range points {
			col[i] = p[j]
		}
		_, v := stat.PopMeanVariance(col, nil)
		total += v
	}
	return total / float64(dims)
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}
