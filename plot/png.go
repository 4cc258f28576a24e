package plot

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/CodeStranger-Fred/trainplot/mdp"
)

var (
	colorBlue       = drawing.ColorFromHex("1f77b4")
	colorOrange     = drawing.ColorFromHex("ff7f0e")
	colorRed        = drawing.ColorFromHex("d62728")
	colorDarkRed    = drawing.ColorFromHex("8b0000")
	colorGreen      = drawing.ColorFromHex("2ca02c")
	colorLightGreen = drawing.ColorFromHex("90ee90")
	colorSteelBlue  = drawing.ColorFromHex("4682b4")
	colorAmber      = drawing.ColorFromHex("ffa500")
	colorGrid       = drawing.ColorFromHex("e0e0e0")
)

func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col.WithAlpha(128),
	}
}

func lineStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: width,
		StrokeColor: col,
	}
}

// axisRange spans every value with a 5% margin. go-chart refuses zero-width
// ranges, so a single distinct value is widened by one unit each way.
func axisRange(series ...[]float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, values := range series {
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func newChart(o Options, title, xName, yName string) *chart.Chart {
	grid := chart.Style{StrokeColor: colorGrid, StrokeWidth: 1}
	return &chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 14},
		Width:      o.Width,
		Height:     o.Height,
		DPI:        o.DPI,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: xName, GridMajorStyle: grid},
		YAxis:      chart.YAxis{Name: yName, GridMajorStyle: grid},
	}
}

func withLegend(c *chart.Chart) *chart.Chart {
	c.Elements = []chart.Renderable{chart.Legend(c)}
	return c
}

// scatterWithRolling draws raw samples as dots plus their moving average when
// the series is longer than the window.
func scatterWithRolling(o Options, title, yName, rawName string, raw []float64, rawColor, lineColor drawing.Color, episodes []float64) (*chart.Chart, error) {
	c := newChart(o, title, "Episode", yName)
	c.Series = []chart.Series{
		chart.ContinuousSeries{Name: rawName, XValues: episodes, YValues: raw, Style: pointStyle(rawColor)},
	}

	w := o.window(len(raw))
	if len(raw) > w {
		rolling, err := mdp.MovingAverage(raw, w)
		if err != nil {
			return nil, err
		}
		c.Series = append(c.Series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("Rolling Average (%d episodes)", w),
			XValues: episodes,
			YValues: rolling,
			Style:   lineStyle(lineColor, 2),
		})
	}
	c.XAxis.Range = axisRange(episodes)
	c.YAxis.Range = axisRange(raw)
	return withLegend(c), nil
}

func rewardVsEpisodes(data Data, o Options) (*chart.Chart, error) {
	return scatterWithRolling(o, "Total Episode Reward vs Episodes", "Total Reward", "Episode Reward",
		data.Log.Rewards(), colorBlue, colorRed, data.Log.EpisodeNumbers())
}

func stepsVsEpisodes(data Data, o Options) (*chart.Chart, error) {
	return scatterWithRolling(o, "Steps per Episode vs Episodes", "Steps", "Steps per Episode",
		data.Log.Steps(), colorOrange, colorDarkRed, data.Log.EpisodeNumbers())
}

func rewardVsSteps(data Data, o Options) (*chart.Chart, error) {
	steps := data.Log.Steps()
	rewards := data.Log.Rewards()
	episodes := data.Log.EpisodeNumbers()
	lo, hi := episodes[0], episodes[len(episodes)-1]
	if lo > hi {
		lo, hi = hi, lo
	}

	c := newChart(o, "Total Reward vs Steps per Episode", "Steps per Episode", "Total Reward")
	c.Series = []chart.Series{
		chart.ContinuousSeries{
			Name:    "Episode (dark = early, light = late)",
			XValues: steps,
			YValues: rewards,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
				DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
					return chart.Viridis(episodes[index], lo, hi)
				},
			},
		},
	}
	c.XAxis.Range = axisRange(steps)
	c.YAxis.Range = axisRange(rewards)
	return withLegend(c), nil
}

func successRate(data Data, o Options) (*chart.Chart, error) {
	episodes := data.Log.EpisodeNumbers()
	successes := data.Log.Successes()
	rolling, err := mdp.MovingAverage(successes, o.SuccessWindow)
	if err != nil {
		return nil, err
	}

	c := newChart(o, fmt.Sprintf("Success Rate (%d-Episode Moving Average) vs Episodes", o.SuccessWindow),
		"Episode", "Success Rate (0-1)")
	fill := lineStyle(colorGreen, 2.5)
	fill.FillColor = colorGreen.WithAlpha(50)
	c.Series = []chart.Series{
		chart.ContinuousSeries{
			Name:    fmt.Sprintf("%d-Episode Moving Average", o.SuccessWindow),
			XValues: episodes,
			YValues: rolling,
			Style:   fill,
		},
		chart.ContinuousSeries{Name: "Individual Episode", XValues: episodes, YValues: successes, Style: pointStyle(colorLightGreen)},
	}
	c.XAxis.Range = axisRange(episodes)
	c.YAxis.Range = &chart.ContinuousRange{Min: -0.05, Max: 1.05}
	return withLegend(c), nil
}

// histogramOutline traces the bars of a histogram as one closed polygon.
func histogramOutline(edges, counts []float64) (xs, ys []float64) {
	for i, n := range counts {
		xs = append(xs, edges[i], edges[i], edges[i+1], edges[i+1])
		ys = append(ys, 0, n, n, 0)
	}
	return xs, ys
}

func verticalMarker(name string, x, height float64, col drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: []float64{x, x},
		YValues: []float64{0, height},
		Style: chart.Style{
			StrokeWidth:     2,
			StrokeColor:     col,
			StrokeDashArray: []float64{5, 5},
		},
	}
}

func qValueDistribution(data Data, o Options) (*chart.Chart, error) {
	d := data.Values
	edges, counts := d.Histogram(o.Bins)
	xs, ys := histogramOutline(edges, counts)
	top := 0.0
	for _, n := range counts {
		top = math.Max(top, n)
	}

	c := newChart(o, "Q-Value Distribution (Final Q-Table)", "Q-Value", "Frequency")
	c.Series = []chart.Series{
		chart.ContinuousSeries{
			Name:    "Q-Values",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: 1,
				StrokeColor: drawing.ColorBlack,
				FillColor:   colorSteelBlue.WithAlpha(180),
			},
		},
		verticalMarker(fmt.Sprintf("Mean: %.2f", d.Mean), d.Mean, top, colorRed),
		verticalMarker(fmt.Sprintf("Median: %.2f", d.Median), d.Median, top, colorAmber),
	}
	c.XAxis.Range = axisRange(edges)
	c.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: math.Max(1, top*1.05)}
	return withLegend(c), nil
}
