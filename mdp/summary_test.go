package mdp_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/trainplot/mdp"
)

func trainingLog(n int, success, steps bool) *mdp.TrainingLog {
	tl := &mdp.TrainingLog{RewardColumn: mdp.ColumnReward, HasSuccess: success, HasSteps: steps}
	for i := 1; i <= n; i++ {
		tl.Episodes = append(tl.Episodes, mdp.Episode{
			Number:      i,
			TotalReward: mdp.Reward(i),
			Success:     success && i%2 == 0,
			Steps:       100 - i,
		})
	}
	return tl
}

func TestSummarize(t *testing.T) {
	s, err := mdp.Summarize(trainingLog(12, true, true))
	require.NoError(t, err)

	assert.Equal(t, 12, s.Episodes)
	assert.InDelta(t, 6.5, s.RewardMean, 1e-12)
	assert.Equal(t, 12.0, s.RewardMax)
	assert.Equal(t, 1.0, s.RewardMin)
	assert.True(t, s.HasSteps)
	assert.InDelta(t, 93.5, s.StepsMean, 1e-12)
	assert.Equal(t, 99.0, s.StepsMax)
	assert.Equal(t, 88.0, s.StepsMin)
	assert.True(t, s.HasSuccess)
	assert.InDelta(t, 0.5, s.SuccessRate, 1e-12)
	// Episodes 3..12 hold five even numbers.
	assert.InDelta(t, 0.5, s.RecentSuccessRate, 1e-12)
}

func TestSummarize_FewerThanRecentEpisodes(t *testing.T) {
	tl := trainingLog(3, true, false)
	tl.Episodes[0].Success = true

	s, err := mdp.Summarize(tl)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, s.RecentSuccessRate, 1e-12)
	assert.Equal(t, s.SuccessRate, s.RecentSuccessRate)
	assert.False(t, s.HasSteps)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := mdp.Summarize(&mdp.TrainingLog{})
	assert.ErrorIs(t, err, mdp.ErrNoEpisodes)
}

func TestSummaryWrite(t *testing.T) {
	s, err := mdp.Summarize(trainingLog(25, true, true))
	require.NoError(t, err)

	var buf bytes.Buffer
	s.Write(&buf)
	out := buf.String()

	assert.Contains(t, out, "TRAINING SUMMARY STATISTICS")
	assert.Contains(t, out, "Total episodes: 25\n")
	assert.Contains(t, out, "Average reward: 13.00\n")
	assert.Contains(t, out, "Max steps per episode: 99\n")
	assert.Contains(t, out, "Overall success rate: 48.0%\n")
	assert.Contains(t, out, "Last 10 episodes success rate: 50.0%\n")
}

func TestSummaryWrite_WithoutSuccess(t *testing.T) {
	s, err := mdp.Summarize(trainingLog(5, false, false))
	require.NoError(t, err)

	var buf bytes.Buffer
	s.Write(&buf)
	assert.NotContains(t, buf.String(), "success rate")
	assert.NotContains(t, buf.String(), "steps per episode")
}

func TestWriteQTableStats(t *testing.T) {
	d, err := mdp.NewValueDistribution([]float64{1, 2, 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	mdp.WriteQTableStats(&buf, 7, d)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "\nQ-Table Statistics:"))
	for _, want := range []string{"Total states", "7", "Q-values analyzed", "3", fmt.Sprintf("%.4f", 2.0)} {
		assert.Contains(t, out, want)
	}
}
