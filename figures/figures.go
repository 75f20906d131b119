package figures

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"lossanalysis/common"
	"lossanalysis/runsummary"
)

// ErrNoData is returned when there is nothing to draw; no file is written.
var ErrNoData = errors.New("figures: nothing to plot")

const (
	CompletionBarName = "completion_time_bar.png"
	GoodputBarName    = "goodput_bar.png"
	LatencyBoxName    = "dgram_latency_boxplot.png"
	LossCurveName     = "dgram_loss_curve.png"
	LatencyCDFName    = "dgram_latency_cdf.png"
)

// Names lists the cross-run figures in report order.
var Names = []string{CompletionBarName, GoodputBarName, LatencyBoxName, LossCurveName, LatencyCDFName}

var (
	figW = 6 * vg.Inch
	figH = 4 * vg.Inch
)

// Series is a named latency sample.
type Series struct {
	Name   string
	Values []float64
}

func lossTicks(groups []runsummary.LossGroup) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Loss.Percent()
	}
	return names
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func grid(p *plot.Plot) {
	g := plotter.NewGrid()
	g.Vertical.Color = color.Gray{Y: 200}
	g.Horizontal.Color = color.Gray{Y: 200}
	g.Vertical.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	g.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(g)
}

// pairedBars draws datagram and stream bars side by side for each loss level.
func pairedBars(path, title, ylabel string, groups []runsummary.LossGroup, pick func(runsummary.LossGroup) runsummary.Pair) error {
	if len(groups) == 0 {
		return ErrNoData
	}
	dv := make(plotter.Values, len(groups))
	sv := make(plotter.Values, len(groups))
	for i, g := range groups {
		pr := pick(g)
		dv[i] = orZero(pr.Datagram)
		sv[i] = orZero(pr.Stream)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Configured loss"
	p.Y.Label.Text = ylabel
	grid(p)

	w := vg.Points(18)
	db, err := plotter.NewBarChart(dv, w)
	if err != nil {
		return err
	}
	db.LineStyle.Width = vg.Length(0)
	db.Color = plotutil.Color(0)
	db.Offset = -w / 2
	sb, err := plotter.NewBarChart(sv, w)
	if err != nil {
		return err
	}
	sb.LineStyle.Width = vg.Length(0)
	sb.Color = plotutil.Color(1)
	sb.Offset = w / 2

	p.Add(db, sb)
	p.Legend.Add("Datagram", db)
	p.Legend.Add("Stream", sb)
	p.Legend.Top = true
	p.NominalX(lossTicks(groups)...)
	return save(p, path)
}

func CompletionBar(path string, groups []runsummary.LossGroup) error {
	return pairedBars(path, "Completion time by loss", "Completion time (s)", groups,
		func(g runsummary.LossGroup) runsummary.Pair { return g.Completion })
}

func GoodputBar(path string, groups []runsummary.LossGroup) error {
	return pairedBars(path, "Goodput by loss", "Goodput (Mbps)", groups,
		func(g runsummary.LossGroup) runsummary.Pair { return g.Goodput })
}

// LatencyBox draws one box per loss level from the pooled datagram samples.
// Levels without samples keep their tick but get no box.
func LatencyBox(path string, groups []runsummary.LossGroup) error {
	p := plot.New()
	p.Title.Text = "Datagram per-message latency"
	p.X.Label.Text = "Configured loss"
	p.Y.Label.Text = "Datagram latency (ms)"
	grid(p)
	boxes := 0
	for i, g := range groups {
		if len(g.Latencies) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(g.Latencies))
		if err != nil {
			return err
		}
		p.Add(b)
		boxes++
	}
	if boxes == 0 {
		return ErrNoData
	}
	p.NominalX(lossTicks(groups)...)
	return save(p, path)
}

// LossCurve plots datagram file loss rate against configured loss, both in
// percent. Levels without a defined loss rate are left out.
func LossCurve(path string, groups []runsummary.LossGroup) error {
	pts := plotter.XYs{}
	for _, g := range groups {
		if g.LossRate == nil {
			continue
		}
		pts = append(pts, plotter.XY{X: g.Loss.Float() * 100, Y: *g.LossRate * 100})
	}
	if len(pts) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Datagram file loss vs loss setting"
	p.X.Label.Text = "Configured loss (%)"
	p.Y.Label.Text = "File loss rate (%)"
	grid(p)
	if err := plotutil.AddLinePoints(p, "Datagram", pts); err != nil {
		return err
	}
	return save(p, path)
}

// LatencyCDF draws the empirical CDF of every non-empty series.
func LatencyCDF(path, title string, series []Series) error {
	var args []interface{}
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		args = append(args, s.Name, common.ECDF(s.Values))
	}
	if len(args) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Datagram E2E latency (ms)"
	p.Y.Label.Text = "CDF"
	p.Y.Min = 0
	p.Y.Max = 1
	grid(p)
	if err := plotutil.AddLines(p, args...); err != nil {
		return err
	}
	p.Legend.Left = false
	p.Legend.Top = false
	return save(p, path)
}

// CDFSeries turns loss groups into one latency series per level.
func CDFSeries(groups []runsummary.LossGroup) []Series {
	out := make([]Series, 0, len(groups))
	for _, g := range groups {
		out = append(out, Series{Name: "loss " + g.Loss.Percent(), Values: g.Latencies})
	}
	return out
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(figW, figH, path); err != nil {
		return fmt.Errorf("save figure %s: %w", path, err)
	}
	return nil
}
