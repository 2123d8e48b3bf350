package share

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"wahlnetz-service/internal/domain"
)

const (
	defaultWidth  = 640
	defaultHeight = 640
	gridSteps     = 5
	userFillAlpha = 178 // 0.7 opacity
)

// RadarRenderer draws a chart as a radar (spider) diagram and encodes it as PNG.
type RadarRenderer struct {
	Width  int
	Height int
	Title  string
}

func (r RadarRenderer) size() (int, int) {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// Render returns the PNG encoding of c.
func (r RadarRenderer) Render(c domain.Chart) ([]byte, error) {
	width, height := r.size()
	rnd, err := chart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	rnd.SetFont(font)

	fillRect(rnd, 0, 0, width, height, drawing.ColorWhite)

	if r.Title != "" {
		rnd.SetFontColor(drawing.ColorBlack)
		rnd.SetFontSize(16)
		box := rnd.MeasureText(r.Title)
		rnd.Text(r.Title, (width-box.Width())/2, 28)
	}

	g := geometry{
		cx:     float64(width) / 2,
		cy:     float64(height)/2 + 10,
		radius: math.Min(float64(width), float64(height)) * 0.32,
		axes:   len(c.Rows),
	}

	if g.axes == 0 {
		rnd.SetFontColor(drawing.ColorFromHex("777777"))
		rnd.SetFontSize(12)
		msg := "Keine Themen ausgewählt"
		box := rnd.MeasureText(msg)
		rnd.Text(msg, (width-box.Width())/2, height/2)
	} else {
		drawGrid(rnd, g)
		drawLabels(rnd, g, c.Rows)
		for _, s := range c.Series {
			drawSeries(rnd, g, s, c.Rows)
		}
	}
	drawLegend(rnd, c.Series, width, height)

	var buf bytes.Buffer
	if err := rnd.Save(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type geometry struct {
	cx, cy float64
	radius float64
	axes   int
}

// point maps a value on axis i to pixel coordinates.
func (g geometry) point(i int, value float64) (int, int) {
	angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(g.axes)
	r := g.radius * value / domain.MaxAnswer
	return int(math.Round(g.cx + r*math.Cos(angle))), int(math.Round(g.cy + r*math.Sin(angle)))
}

func drawGrid(rnd chart.Renderer, g geometry) {
	rnd.SetStrokeColor(drawing.ColorFromHex("cccccc"))
	rnd.SetStrokeWidth(1)
	for step := 1; step <= gridSteps; step++ {
		value := float64(step) * domain.MaxAnswer / gridSteps
		for i := 0; i <= g.axes; i++ {
			x, y := g.point(i%g.axes, value)
			if i == 0 {
				rnd.MoveTo(x, y)
			} else {
				rnd.LineTo(x, y)
			}
		}
		rnd.Stroke()
	}
	for i := 0; i < g.axes; i++ {
		x, y := g.point(i, domain.MaxAnswer)
		rnd.MoveTo(int(g.cx), int(g.cy))
		rnd.LineTo(x, y)
		rnd.Stroke()
	}
}

func drawLabels(rnd chart.Renderer, g geometry, rows []domain.ChartRow) {
	rnd.SetFontColor(drawing.ColorFromHex("333333"))
	rnd.SetFontSize(10)
	for i, row := range rows {
		x, y := g.point(i, domain.MaxAnswer*1.15)
		box := rnd.MeasureText(row.Topic)
		rnd.Text(row.Topic, x-box.Width()/2, y+box.Height()/2)
	}
}

func drawSeries(rnd chart.Renderer, g geometry, s domain.Series, rows []domain.ChartRow) {
	color := parseColor(s.Color)
	drawn := 0
	for i, row := range rows {
		value, ok := seriesValue(s, row)
		if !ok {
			continue
		}
		x, y := g.point(i, value)
		if drawn == 0 {
			rnd.MoveTo(x, y)
		} else {
			rnd.LineTo(x, y)
		}
		drawn++
	}
	if drawn == 0 {
		return
	}
	rnd.Close()
	rnd.SetStrokeColor(color)
	rnd.SetStrokeWidth(2)
	if s.Key == domain.UserSeriesKey {
		rnd.SetFillColor(color.WithAlpha(userFillAlpha))
		rnd.FillStroke()
		return
	}
	rnd.Stroke()
}

func seriesValue(s domain.Series, row domain.ChartRow) (float64, bool) {
	if s.Key == domain.UserSeriesKey {
		return float64(row.User), row.User != 0
	}
	return row.Value(s.Key)
}

func drawLegend(rnd chart.Renderer, series []domain.Series, width, height int) {
	if len(series) == 0 {
		return
	}
	rnd.SetFontSize(10)
	rnd.SetFontColor(drawing.ColorBlack)
	const swatch, gap = 10, 16
	total := 0
	for _, s := range series {
		total += swatch + 4 + rnd.MeasureText(s.Name).Width() + gap
	}
	x := (width - total) / 2
	if x < 8 {
		x = 8
	}
	y := height - 24
	for _, s := range series {
		fillRect(rnd, x, y-swatch, x+swatch, y, parseColor(s.Color))
		x += swatch + 4
		rnd.Text(s.Name, x, y)
		x += rnd.MeasureText(s.Name).Width() + gap
	}
}

func fillRect(rnd chart.Renderer, x0, y0, x1, y1 int, color drawing.Color) {
	rnd.SetFillColor(color)
	rnd.MoveTo(x0, y0)
	rnd.LineTo(x1, y0)
	rnd.LineTo(x1, y1)
	rnd.LineTo(x0, y1)
	rnd.Close()
	rnd.Fill()
}

func parseColor(hex string) drawing.Color {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 && len(h) != 3 {
		h = strings.TrimPrefix(domain.FallbackColor, "#")
	}
	return drawing.ColorFromHex(h)
}
