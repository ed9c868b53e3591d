package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// arcSteps 是整圆被切分的折线段数。
const arcSteps = 360

// pieChart 直接在画布坐标中绘制扇形，不依赖坐标轴。
type pieChart struct {
	values    []float64
	labels    []string
	colors    []color.Color
	textStyle text.Style
}

var _ plot.Plotter = (*pieChart)(nil)

func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	total := floats.Sum(pc.values)
	if total <= 0 {
		return
	}

	cx := (c.Min.X + c.Max.X) / 2
	cy := (c.Min.Y + c.Max.Y) / 2
	radius := c.Max.X - c.Min.X
	if h := c.Max.Y - c.Min.Y; h < radius {
		radius = h
	}
	radius *= 0.35

	style := pc.textStyle
	style.XAlign = text.XCenter
	style.YAlign = text.YCenter

	start := 0.0
	for i, v := range pc.values {
		sweep := 2 * math.Pi * v / total
		steps := int(math.Ceil(sweep / (2 * math.Pi) * arcSteps))
		if steps < 1 {
			steps = 1
		}

		pts := make([]vg.Point, 0, steps+2)
		pts = append(pts, vg.Point{X: cx, Y: cy})
		for s := 0; s <= steps; s++ {
			angle := start + sweep*float64(s)/float64(steps)
			pts = append(pts, vg.Point{
				X: cx + radius*vg.Length(math.Cos(angle)),
				Y: cy + radius*vg.Length(math.Sin(angle)),
			})
		}
		c.FillPolygon(pc.colors[i%len(pc.colors)], pts)

		mid := start + sweep/2
		label := vg.Point{
			X: cx + radius*1.2*vg.Length(math.Cos(mid)),
			Y: cy + radius*1.2*vg.Length(math.Sin(mid)),
		}
		c.FillText(style, label, fmt.Sprintf("%s %.1f%%", pc.labels[i], 100*v/total))

		start += sweep
	}
}
