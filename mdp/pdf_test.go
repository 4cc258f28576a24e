package mdp_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/trainplot/mdp"
)

func TestValueDistribution(t *testing.T) {
	d, err := mdp.NewValueDistribution([]float64{4, 1, 3, 2})
	require.NoError(t, err)

	assert.Equal(t, 4, d.Count)
	assert.InDelta(t, 2.5, d.Mean, 1e-12)
	assert.InDelta(t, 2.5, d.Median, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), d.StdDev, 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 4.0, d.Max)
}

func TestValueDistribution_OddMedian(t *testing.T) {
	d, err := mdp.NewValueDistribution([]float64{9, -2, 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, d.Median)
}

func TestValueDistribution_QTableSamples(t *testing.T) {
	q, err := mdp.LoadQTable(strings.NewReader(qtableCSV))
	require.NoError(t, err)

	d, err := mdp.NewValueDistribution(q.Values())
	require.NoError(t, err)

	// 1..15 without 5.
	assert.Equal(t, 14, d.Count)
	assert.InDelta(t, 115.0/14, d.Mean, 1e-12)
	assert.InDelta(t, 8.5, d.Median, 1e-12)
}

func TestValueDistribution_Empty(t *testing.T) {
	_, err := mdp.NewValueDistribution(nil)
	assert.ErrorIs(t, err, mdp.ErrEmptyDistribution)
}

func TestValueDistribution_Histogram(t *testing.T) {
	d, err := mdp.NewValueDistribution([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10})
	require.NoError(t, err)

	edges, counts := d.Histogram(5)
	require.Len(t, edges, 6)
	require.Len(t, counts, 5)
	assert.Equal(t, 0.0, edges[0])
	assert.Equal(t, 10.0, edges[5])
	assert.Equal(t, []float64{2, 2, 2, 2, 2}, counts)

	total := 0.0
	_, counts = d.Histogram(0)
	require.Len(t, counts, mdp.DefaultBins)
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 10.0, total)
}

func TestValueDistribution_HistogramSingleValue(t *testing.T) {
	d, err := mdp.NewValueDistribution([]float64{3, 3, 3})
	require.NoError(t, err)

	edges, counts := d.Histogram(2)
	assert.Equal(t, []float64{2.5, 3, 3.5}, edges)
	assert.Equal(t, []float64{0, 3}, counts)
}
