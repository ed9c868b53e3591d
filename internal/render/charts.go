package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"order-metrics/internal/report"
)

var (
	barColor  = color.RGBA{R: 135, G: 206, B: 235, A: 255} // skyblue
	edgeColor = color.Black
	printer   = message.NewPrinter(language.English)
)

const noData = " (no data)"

// errorPoints 同时提供坐标与非对称误差，供 plotter.NewYErrorBars 使用。
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

func (e errorPoints) Len() int { return len(e.XYs) }

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func distributionPlot(rep *report.Report) (*plot.Plot, error) {
	p := newPlot("Distribution of Order Types", "", "")
	p.HideAxes()
	if len(rep.Distribution) == 0 {
		p.Title.Text += noData
		return p, nil
	}

	pal, err := brewer.GetPalette(brewer.TypeQualitative, "Set3", 12)
	if err != nil {
		return nil, fmt.Errorf("render: 获取调色板失败: %w", err)
	}

	pie := &pieChart{colors: pal.Colors(), textStyle: p.Legend.TextStyle}
	for _, tc := range rep.Distribution {
		pie.values = append(pie.values, float64(tc.Count))
		pie.labels = append(pie.labels, tc.Type)
	}
	p.Add(pie)
	return p, nil
}

func histogramPlot(rep *report.Report) (*plot.Plot, error) {
	h := rep.Histogram
	title := "Orders by Latency Histogram"
	if h.Samples > 0 {
		throughput := 0.0
		if h.Mean > 0 {
			throughput = 1e9 / h.Mean
		}
		title = printer.Sprintf("%s - mean=%.1fns (%.0f orders/s)", title, h.Mean, throughput)
	}

	p := newPlot(title, "Latency (ns)", "Number of Orders")
	if h.Included == 0 {
		p.Title.Text += noData
		return p, nil
	}

	bins := make([]plotter.HistogramBin, len(h.Buckets))
	for i, b := range h.Buckets {
		bins[i] = plotter.HistogramBin{Min: b.Start, Max: b.End, Weight: float64(b.Count)}
	}
	hist := &plotter.Histogram{
		Bins:      bins,
		Width:     h.Buckets[0].End - h.Buckets[0].Start,
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	hist.LineStyle.Color = edgeColor
	p.Add(hist)
	return p, nil
}

func byTypePlot(rep *report.Report) (*plot.Plot, error) {
	p := newPlot("Latency by Order Type", "Order Type", "Latency (ns)")
	if len(rep.ByType) == 0 {
		p.Title.Text += noData
		return p, nil
	}

	values := make(plotter.Values, len(rep.ByType))
	names := make([]string, len(rep.ByType))
	points := errorPoints{
		XYs:     make(plotter.XYs, len(rep.ByType)),
		YErrors: make(plotter.YErrors, len(rep.ByType)),
	}
	for i, row := range rep.ByType {
		values[i] = row.Mean
		names[i] = row.Type
		points.XYs[i].X = float64(i)
		points.XYs[i].Y = row.Mean
		points.YErrors[i].Low = row.ErrLow
		points.YErrors[i].High = row.ErrHigh
	}

	bars, err := newBars(values)
	if err != nil {
		return nil, err
	}
	errBars, err := plotter.NewYErrorBars(points)
	if err != nil {
		return nil, fmt.Errorf("render: 创建误差线失败: %w", err)
	}
	errBars.CapWidth = vg.Points(8)

	p.Add(bars, errBars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	return p, nil
}

func countPlot(rows []report.CountLatency, title, xLabel string) (*plot.Plot, error) {
	p := newPlot(title, xLabel, "Latency (ns)")
	if len(rows) == 0 {
		p.Title.Text += noData
		return p, nil
	}

	values := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.Mean
		names[i] = strconv.Itoa(row.Key)
	}

	bars, err := newBars(values)
	if err != nil {
		return nil, err
	}
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// surfacePlot 以颜色深浅表示每个 (成交笔数, 平衡次数) 单元格的平均耗时。
func surfacePlot(rep *report.Report, mirror bool) (*plot.Plot, error) {
	p := newPlot("Latency by Number of Trades and AVL Tree Balances", "Number of Trades per Order", "AVL Tree Balances")
	cells := rep.Surface
	if len(cells) == 0 {
		p.Title.Text += noData
		return p, nil
	}

	pal, err := brewer.GetPalette(brewer.TypeSequential, "YlOrRd", 9)
	if err != nil {
		return nil, fmt.Errorf("render: 获取调色板失败: %w", err)
	}
	colors := pal.Colors()

	maxExec := report.MaxExecuted(cells)
	lo, hi := math.Inf(1), math.Inf(-1)
	xys := make(plotter.XYs, len(cells))
	for i, c := range cells {
		x := float64(c.Executed)
		if mirror {
			x = float64(maxExec - c.Executed)
		}
		xys[i].X = x
		xys[i].Y = float64(c.Rebalances)
		lo = math.Min(lo, c.Mean)
		hi = math.Max(hi, c.Mean)
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("render: 创建散点失败: %w", err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		idx := 0
		if hi > lo {
			idx = int((cells[i].Mean - lo) / (hi - lo) * float64(len(colors)-1))
		}
		return draw.GlyphStyle{Color: colors[idx], Radius: vg.Points(5), Shape: draw.BoxGlyph{}}
	}
	p.Add(scatter)
	p.Title.Text += printer.Sprintf(" (%.0f-%.0f ns)", lo, hi)

	if mirror {
		p.X.Tick.Marker = mirroredTicks(float64(maxExec))
	}
	return p, nil
}

// mirroredTicks 在翻转后的坐标上显示原始成交笔数。
func mirroredTicks(maxValue float64) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		ticks := plot.DefaultTicks{}.Ticks(min, max)
		for i := range ticks {
			if ticks[i].Label != "" {
				ticks[i].Label = strconv.FormatFloat(maxValue-ticks[i].Value, 'f', -1, 64)
			}
		}
		return ticks
	})
}

func newBars(values plotter.Values) (*plotter.BarChart, error) {
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("render: 创建柱状图失败: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Color = edgeColor
	bars.LineStyle.Width = vg.Length(0.5)
	return bars, nil
}
