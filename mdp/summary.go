package mdp

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RecentEpisodes is how many trailing episodes the recent success rate covers.
const RecentEpisodes = 10

var Rule = strings.Repeat("=", 60)

type Summary struct {
	Episodes int

	RewardMean   float64
	RewardMax    float64
	RewardMin    float64
	RewardStdDev float64

	HasSteps  bool
	StepsMean float64
	StepsMax  float64
	StepsMin  float64

	HasSuccess        bool
	SuccessRate       float64
	RecentSuccessRate float64
}

func Summarize(tl *TrainingLog) (Summary, error) {
	if tl.Len() == 0 {
		return Summary{}, ErrNoEpisodes
	}
	s := Summary{Episodes: tl.Len()}

	rewards := tl.Rewards()
	s.RewardMean, s.RewardStdDev = stat.PopMeanStdDev(rewards, nil)
	s.RewardMax = floats.Max(rewards)
	s.RewardMin = floats.Min(rewards)

	if tl.HasSteps {
		steps := tl.Steps()
		s.HasSteps = true
		s.StepsMean = stat.Mean(steps, nil)
		s.StepsMax = floats.Max(steps)
		s.StepsMin = floats.Min(steps)
	}

	if tl.HasSuccess {
		successes := tl.Successes()
		s.HasSuccess = true
		s.SuccessRate = stat.Mean(successes, nil)
		recent := successes
		if len(recent) >= RecentEpisodes {
			recent = recent[len(recent)-RecentEpisodes:]
		}
		s.RecentSuccessRate = stat.Mean(recent, nil)
	}
	return s, nil
}

func (s Summary) Write(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", Rule)
	fmt.Fprintln(w, "TRAINING SUMMARY STATISTICS")
	fmt.Fprintln(w, Rule)
	fmt.Fprintf(w, "Total episodes: %d\n", s.Episodes)
	fmt.Fprintf(w, "Average reward: %.2f\n", s.RewardMean)
	fmt.Fprintf(w, "Max reward: %.2f\n", s.RewardMax)
	fmt.Fprintf(w, "Min reward: %.2f\n", s.RewardMin)
	fmt.Fprintf(w, "Reward std dev: %.2f\n", s.RewardStdDev)

	if s.HasSteps {
		fmt.Fprintf(w, "\nAverage steps per episode: %.2f\n", s.StepsMean)
		fmt.Fprintf(w, "Max steps per episode: %.0f\n", s.StepsMax)
		fmt.Fprintf(w, "Min steps per episode: %.0f\n", s.StepsMin)
	}

	if s.HasSuccess {
		fmt.Fprintf(w, "\nOverall success rate: %.1f%%\n", s.SuccessRate*100)
		fmt.Fprintf(w, "Last %d episodes success rate: %.1f%%\n", RecentEpisodes, s.RecentSuccessRate*100)
	}
}

// WriteQTableStats prints the value distribution of a q-table with states rows.
func WriteQTableStats(w io.Writer, states int, d *ValueDistribution) {
	fmt.Fprintln(w, "\nQ-Table Statistics:")
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Total states", fmt.Sprintf("%d", states)})
	table.Append([]string{"Q-values analyzed", fmt.Sprintf("%d", d.Count)})
	table.Append([]string{"Q-value mean", fmt.Sprintf("%.4f", d.Mean)})
	table.Append([]string{"Q-value median", fmt.Sprintf("%.4f", d.Median)})
	table.Append([]string{"Q-value std", fmt.Sprintf("%.4f", d.StdDev)})
	table.Append([]string{"Q-value min", fmt.Sprintf("%.4f", d.Min)})
	table.Append([]string{"Q-value max", fmt.Sprintf("%.4f", d.Max)})
	table.Render()
}
