package plot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/CodeStranger-Fred/trainplot/mdp"
)

const (
	RewardVsEpisodesFile = "1_reward_vs_episodes.png"
	StepsVsEpisodesFile  = "2_steps_vs_episodes.png"
	RewardVsStepsFile    = "3_reward_vs_steps.png"
	SuccessRateFile      = "4_success_rate_vs_episodes.png"
	QValueFile           = "5_qvalue_distribution.png"
	ReportFile           = "training_report.html"
)

type Options struct {
	OutputDir string
	// Window smooths reward and steps; zero picks mdp.DefaultWindow.
	Window        int
	SuccessWindow int
	Bins          int
	Width         int
	Height        int
	DPI           float64
	Workers       int
}

func DefaultOptions() Options {
	return Options{
		OutputDir:     "training_graphs",
		SuccessWindow: mdp.SuccessWindow,
		Bins:          mdp.DefaultBins,
		Width:         1200,
		Height:        600,
		DPI:           100,
		Workers:       4,
	}
}

func (o Options) window(n int) int {
	if o.Window > 0 {
		return o.Window
	}
	return mdp.DefaultWindow(n)
}

// Data is what the charts are drawn from. Values is nil without a q-table.
type Data struct {
	Log    *mdp.TrainingLog
	Values *mdp.ValueDistribution
}

type Result struct {
	// Saved holds the written files in chart order.
	Saved []string
	// Skipped holds one message per chart that had no data to draw.
	Skipped []string
}

type job struct {
	file  string
	chart *chart.Chart
}

func buildJobs(data Data, o Options) ([]job, []string, error) {
	var jobs []job
	var skipped []string

	add := func(file string, build func(Data, Options) (*chart.Chart, error)) error {
		c, err := build(data, o)
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", file, err)
		}
		jobs = append(jobs, job{file: file, chart: c})
		return nil
	}

	if err := add(RewardVsEpisodesFile, rewardVsEpisodes); err != nil {
		return nil, nil, err
	}
	if data.Log.HasSteps {
		if err := add(StepsVsEpisodesFile, stepsVsEpisodes); err != nil {
			return nil, nil, err
		}
		if err := add(RewardVsStepsFile, rewardVsSteps); err != nil {
			return nil, nil, err
		}
	} else {
		skipped = append(skipped, "'steps' column not found; skipping steps plots")
	}
	if data.Log.HasSuccess {
		if err := add(SuccessRateFile, successRate); err != nil {
			return nil, nil, err
		}
	} else {
		skipped = append(skipped, "'success' column not found; skipping success rate plot")
	}
	if data.Values != nil {
		if err := add(QValueFile, qValueDistribution); err != nil {
			return nil, nil, err
		}
	}
	return jobs, skipped, nil
}

// RenderPNG writes every chart the data supports into o.OutputDir.
func RenderPNG(data Data, o Options) (*Result, error) {
	if data.Log == nil || data.Log.Len() == 0 {
		return nil, mdp.ErrNoEpisodes
	}
	jobs, skipped, err := buildJobs(data, o)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
		return nil, err
	}

	saved := make([]string, len(jobs))
	p := pool.New().WithErrors().WithMaxGoroutines(max(1, o.Workers))
	for i, j := range jobs {
		p.Go(func() error {
			path := filepath.Join(o.OutputDir, j.file)
			if err := writePNG(path, j.chart); err != nil {
				return fmt.Errorf("failed to render %s: %w", path, err)
			}
			saved[i] = path
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return &Result{Saved: saved, Skipped: skipped}, nil
}

func writePNG(path string, c *chart.Chart) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Render(chart.PNG, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
