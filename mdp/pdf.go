package mdp

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const DefaultBins = 50

var ErrEmptyDistribution = errors.New("distribution has no samples")

// ValueDistribution is the empirical distribution of a set of samples.
type ValueDistribution struct {
	sorted []float64

	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

func NewValueDistribution(values []float64) (*ValueDistribution, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDistribution
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return &ValueDistribution{
		sorted: sorted,
		Count:  len(sorted),
		Mean:   mean,
		Median: median(sorted),
		StdDev: std,
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}, nil
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Histogram splits [Min, Max] into equal-width bins and returns the bin
// edges (len bins+1) and the number of samples in each bin.
func (d *ValueDistribution) Histogram(bins int) (edges, counts []float64) {
	if bins <= 0 {
		bins = DefaultBins
	}
	lo, hi := d.Min, d.Max
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges = floats.Span(make([]float64, bins+1), lo, hi)

	// stat.Histogram wants every sample strictly below the last divider.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts = stat.Histogram(nil, dividers, d.sorted, nil)
	return edges, counts
}
