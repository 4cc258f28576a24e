package mdp

type State string

type Action string

type Reward float64

// Episode is one row of a training log, as written by the trainer.
type Episode struct {
	Number      int
	TotalReward Reward
	Success     bool
	Steps       int
}

// SkippedRow records a training log row that could not be parsed.
type SkippedRow struct {
	Line   int
	Reason error
}

type TrainingLog struct {
	Episodes     []Episode
	RewardColumn string
	HasSuccess   bool
	HasSteps     bool
	Skipped      []SkippedRow
}

func (l *TrainingLog) Len() int {
	return len(l.Episodes)
}

func (l *TrainingLog) EpisodeNumbers() []float64 {
	out := make([]float64, len(l.Episodes))
	for i, e := range l.Episodes {
		out[i] = float64(e.Number)
	}
	return out
}

func (l *TrainingLog) Rewards() []float64 {
	out := make([]float64, len(l.Episodes))
	for i, e := range l.Episodes {
		out[i] = float64(e.TotalReward)
	}
	return out
}

func (l *TrainingLog) Steps() []float64 {
	out := make([]float64, len(l.Episodes))
	for i, e := range l.Episodes {
		out[i] = float64(e.Steps)
	}
	return out
}

// Successes returns the success indicator of every episode as 0 or 1.
func (l *TrainingLog) Successes() []float64 {
	out := make([]float64, len(l.Episodes))
	for i, e := range l.Episodes {
		if e.Success {
			out[i] = 1
		}
	}
	return out
}
