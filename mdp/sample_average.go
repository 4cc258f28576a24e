package mdp

import (
	"errors"

	"golang.org/x/exp/constraints"
)

// SuccessWindow is the number of episodes averaged for the success rate.
const SuccessWindow = 10

var ErrInvalidWindow = errors.New("moving average window must be positive")

type Number interface {
	constraints.Integer | constraints.Float
}

type RewardStats struct {
	Sum   Reward
	Avg   Reward
	Count int
}

func (stats *RewardStats) Add(r Reward) {
	stats.Sum += r
	stats.Count++
	stats.Avg = Reward(float64(stats.Sum) / float64(stats.Count))
}

// MovingAverage replaces every sample with the mean of the samples in
// [i-window/2, i+window/2], truncated at both ends of the series.
// Series shorter than the window are returned unchanged.
func MovingAverage[T Number](values []T, window int) ([]float64, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	n := len(values)
	out := make([]float64, n)
	if n < window {
		for i, v := range values {
			out[i] = float64(v)
		}
		return out, nil
	}

	half := window / 2
	for i := 0; i < n; i++ {
		start := max(0, i-half)
		end := min(n, i+half+1)

		stats := RewardStats{}
		for _, v := range values[start:end] {
			stats.Add(Reward(v))
		}
		out[i] = float64(stats.Avg)
	}
	return out, nil
}

// DefaultWindow picks the reward and steps smoothing window for n episodes.
func DefaultWindow(n int) int {
	return min(10, max(1, n/20))
}
