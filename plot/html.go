package plot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	log "github.com/sirupsen/logrus"

	"github.com/CodeStranger-Fred/trainplot/mdp"
)

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	return items
}

func episodeLabels(tl *mdp.TrainingLog) []string {
	labels := make([]string, 0, tl.Len())
	for _, e := range tl.Episodes {
		labels = append(labels, fmt.Sprintf("%d", e.Number))
	}
	return labels
}

func newLine(title, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	return line
}

func rollingLine(title, yName, rawName string, raw []float64, window int, labels []string) (*charts.Line, error) {
	line := newLine(title, yName).SetXAxis(labels)
	line.AddSeries(rawName, lineData(raw))
	if len(raw) > window {
		rolling, err := mdp.MovingAverage(raw, window)
		if err != nil {
			return nil, err
		}
		line.AddSeries(fmt.Sprintf("Rolling Average (%d episodes)", window), lineData(rolling))
	}
	return line, nil
}

func histogramBar(d *mdp.ValueDistribution, bins int) *charts.Bar {
	edges, counts := d.Histogram(bins)
	labels := make([]string, len(counts))
	items := make([]opts.BarData, len(counts))
	for i, n := range counts {
		labels[i] = fmt.Sprintf("%.2f", (edges[i]+edges[i+1])/2)
		items[i] = opts.BarData{Value: n}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Q-Value Distribution (Final Q-Table)",
			Subtitle: fmt.Sprintf("Mean: %.2f  Median: %.2f", d.Mean, d.Median),
		}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Q-Value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency"}),
	)
	bar.SetXAxis(labels).AddSeries("Q-Values", items)
	return bar
}

// RenderHTML writes every chart the data supports into one interactive page.
func RenderHTML(w io.Writer, data Data, o Options) error {
	if data.Log == nil || data.Log.Len() == 0 {
		return mdp.ErrNoEpisodes
	}
	tl := data.Log
	labels := episodeLabels(tl)
	window := o.window(tl.Len())

	page := components.NewPage()
	page.PageTitle = "Training Report"

	reward, err := rollingLine("Cumulative Reward over Episodes", "Reward", "Episode Reward", tl.Rewards(), window, labels)
	if err != nil {
		return err
	}
	page.AddCharts(reward)

	if tl.HasSteps {
		steps, err := rollingLine("Steps per Episode", "Steps", "Steps per Episode", tl.Steps(), window, labels)
		if err != nil {
			return err
		}
		page.AddCharts(steps)
	}

	if tl.HasSuccess {
		rolling, err := mdp.MovingAverage(tl.Successes(), o.SuccessWindow)
		if err != nil {
			return err
		}
		success := newLine(fmt.Sprintf("Success Rate (Moving Avg, %d Episodes)", o.SuccessWindow), "Success Rate").SetXAxis(labels)
		success.SetGlobalOptions(charts.WithYAxisOpts(opts.YAxis{Name: "Success Rate", Min: 0, Max: 1}))
		success.AddSeries(fmt.Sprintf("Rolling Success (%d)", o.SuccessWindow), lineData(rolling))
		page.AddCharts(success)
	}

	if data.Values != nil {
		page.AddCharts(histogramBar(data.Values, o.Bins))
	}

	return page.Render(w)
}

// WriteHTML renders the interactive page into o.OutputDir and returns its path.
func WriteHTML(data Data, o Options) (string, error) {
	if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(o.OutputDir, ReportFile)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := RenderHTML(f, data, o); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// Serve serves dir over HTTP until ctx is cancelled.
func Serve(ctx context.Context, dir, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.FileServer(http.Dir(dir)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Infof("running server at http://%s/%s", addr, ReportFile)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
