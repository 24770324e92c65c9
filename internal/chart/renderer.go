package chart

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"hkpulse/internal/config"
	apperrors "hkpulse/internal/errors"
	"hkpulse/internal/sentiment"
)

// DefaultTitle is used when no title is configured
const DefaultTitle = "Hong Kong Fear & Greed Index vs Hang Seng Index"

type rgb struct{ r, g, b int }

var (
	hsiColor       = rgb{31, 119, 180}
	fearGreedColor = rgb{214, 39, 40}
	gridColor      = rgb{200, 200, 200}
	axisColor      = rgb{60, 60, 60}
)

// band shading from extreme fear to extreme greed
var bands = []struct {
	lo, hi float64
	label  string
	color  rgb
}{
	{0, sentiment.BandEdges[0], sentiment.BandExtremeFear, rgb{255, 0, 0}},
	{sentiment.BandEdges[0], sentiment.BandEdges[1], sentiment.BandFear, rgb{255, 165, 0}},
	{sentiment.BandEdges[1], sentiment.BandEdges[2], sentiment.BandNeutral, rgb{128, 128, 128}},
	{sentiment.BandEdges[2], sentiment.BandEdges[3], sentiment.BandGreed, rgb{144, 238, 144}},
	{sentiment.BandEdges[3], 100, sentiment.BandExtremeGreed, rgb{0, 128, 0}},
}

const bandAlpha = 0.12

// Options controls the chart page
type Options struct {
	Title string
	// Created stamps the document; zero means now
	Created time.Time
}

// Renderer draws the composite against the HSI on one A4 landscape page:
// HSI on the left axis, the 0-100 composite on the right axis, sentiment
// bands shaded behind.
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// NewRenderer creates a chart renderer
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	return &Renderer{opts: opts, logger: logger.With(slog.String("component", "chart"))}
}

// RenderFile renders points to a PDF file, creating its directory
func (r *Renderer) RenderFile(points []Point, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError(apperrors.StageVisualization, "create chart directory", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError(apperrors.StageVisualization, "create "+path, err)
	}
	if err := r.Render(points, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError(apperrors.StageVisualization, "close "+path, err)
	}

	r.logger.Info("Chart saved",
		slog.String("file_path", path),
		slog.Int("points", len(points)),
		slog.String("from", points[0].Date.Format(config.DateLayout)),
		slog.String("to", points[len(points)-1].Date.Format(config.DateLayout)))
	return nil
}

// Render writes the chart as PDF to w
func (r *Renderer) Render(points []Point, w io.Writer) error {
	if len(points) == 0 {
		return apperrors.NewValidationError(apperrors.StageVisualization, "", "no points to plot")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(r.opts.Title, true)
	pdf.SetCreator(config.AppName, true)
	if !r.opts.Created.IsZero() {
		pdf.SetCreationDate(r.opts.Created)
		pdf.SetModificationDate(r.opts.Created)
	}
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	p := newPlot(points, 25, 25, pageW-50, pageH-55)

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(10, 8)
	pdf.CellFormat(pageW-20, 10, r.opts.Title, "", 0, "C", false, 0, "")

	p.drawBands(pdf)
	p.drawGrid(pdf)
	p.drawSeries(pdf, hsiColor, 0.3, func(pt Point) float64 { return p.yLeft(pt.HSI) }, func(pt Point) float64 { return pt.HSI })
	p.drawSeries(pdf, fearGreedColor, 0.4, func(pt Point) float64 { return p.yRight(pt.FearGreed) }, func(pt Point) float64 { return pt.FearGreed })
	p.drawAxes(pdf)
	p.drawLegend(pdf)

	if err := pdf.Output(w); err != nil {
		return apperrors.NewRenderError("write pdf", err)
	}
	return nil
}

// plot maps dates and values into the page area
type plot struct {
	points     []Point
	x, y, w, h float64
	start, end time.Time
	hsiLo      float64
	hsiHi      float64
}

func newPlot(points []Point, x, y, w, h float64) *plot {
	p := &plot{points: points, x: x, y: y, w: w, h: h,
		start: points[0].Date, end: points[len(points)-1].Date}
	if !p.end.After(p.start) {
		p.end = p.start.AddDate(0, 0, 1)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, pt := range points {
		if math.IsNaN(pt.HSI) {
			continue
		}
		lo = math.Min(lo, pt.HSI)
		hi = math.Max(hi, pt.HSI)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	p.hsiLo, p.hsiHi = lo-pad, hi+pad
	return p
}

func (p *plot) xAt(t time.Time) float64 {
	frac := float64(t.Sub(p.start)) / float64(p.end.Sub(p.start))
	return p.x + frac*p.w
}

func (p *plot) yLeft(v float64) float64 {
	return p.y + p.h - (v-p.hsiLo)/(p.hsiHi-p.hsiLo)*p.h
}

func (p *plot) yRight(v float64) float64 {
	return p.y + p.h - v/100*p.h
}

func (p *plot) drawBands(pdf *fpdf.Fpdf) {
	pdf.SetAlpha(bandAlpha, "Normal")
	for _, b := range bands {
		pdf.SetFillColor(b.color.r, b.color.g, b.color.b)
		top := p.yRight(b.hi)
		pdf.Rect(p.x, top, p.w, p.yRight(b.lo)-top, "F")
	}
	pdf.SetAlpha(1, "Normal")
}

func (p *plot) drawGrid(pdf *fpdf.Fpdf) {
	pdf.SetDrawColor(gridColor.r, gridColor.g, gridColor.b)
	pdf.SetLineWidth(0.1)
	pdf.SetDashPattern([]float64{1, 1}, 0)
	for v := 0.0; v <= 100; v += 20 {
		y := p.yRight(v)
		pdf.Line(p.x, y, p.x+p.w, y)
	}
	for _, year := range p.years() {
		x := p.xAt(year)
		pdf.Line(x, p.y, x, p.y+p.h)
	}
	pdf.SetDashPattern([]float64{}, 0)
}

// years returns January 1st of every year inside the plotted range
func (p *plot) years() []time.Time {
	var out []time.Time
	for y := p.start.Year(); y <= p.end.Year(); y++ {
		t := time.Date(y, 1, 1, 0, 0, 0, 0, p.start.Location())
		if !t.Before(p.start) && !t.After(p.end) {
			out = append(out, t)
		}
	}
	return out
}

// drawSeries connects consecutive defined values; a NaN breaks the line
func (p *plot) drawSeries(pdf *fpdf.Fpdf, c rgb, width float64, yOf func(Point) float64, valueOf func(Point) float64) {
	pdf.SetDrawColor(c.r, c.g, c.b)
	pdf.SetLineWidth(width)

	havePrev := false
	var px, py float64
	for _, pt := range p.points {
		if math.IsNaN(valueOf(pt)) {
			havePrev = false
			continue
		}
		x, y := p.xAt(pt.Date), yOf(pt)
		if havePrev {
			pdf.Line(px, py, x, y)
		}
		px, py, havePrev = x, y, true
	}
}

func (p *plot) drawAxes(pdf *fpdf.Fpdf) {
	pdf.SetDrawColor(axisColor.r, axisColor.g, axisColor.b)
	pdf.SetLineWidth(0.3)
	pdf.Rect(p.x, p.y, p.w, p.h, "D")

	pdf.SetFont("Arial", "", 8)

	// Left axis: HSI
	pdf.SetTextColor(hsiColor.r, hsiColor.g, hsiColor.b)
	for i := 0; i <= 5; i++ {
		v := p.hsiLo + (p.hsiHi-p.hsiLo)*float64(i)/5
		y := p.yLeft(v)
		pdf.Line(p.x-1.5, y, p.x, y)
		label := fmt.Sprintf("%.0f", v)
		pdf.Text(p.x-2.5-pdf.GetStringWidth(label), y+1, label)
	}

	// Right axis: composite
	pdf.SetTextColor(fearGreedColor.r, fearGreedColor.g, fearGreedColor.b)
	for v := 0.0; v <= 100; v += 20 {
		y := p.yRight(v)
		pdf.Line(p.x+p.w, y, p.x+p.w+1.5, y)
		pdf.Text(p.x+p.w+2.5, y+1, fmt.Sprintf("%.0f", v))
	}

	// Bottom axis: years
	pdf.SetTextColor(0, 0, 0)
	for _, year := range p.years() {
		x := p.xAt(year)
		pdf.Line(x, p.y+p.h, x, p.y+p.h+1.5)
		label := year.Format("2006")
		pdf.Text(x-pdf.GetStringWidth(label)/2, p.y+p.h+5, label)
	}

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(hsiColor.r, hsiColor.g, hsiColor.b)
	pdf.TransformBegin()
	pdf.TransformRotate(90, p.x-14, p.y+p.h/2)
	pdf.Text(p.x-14-pdf.GetStringWidth("Hang Seng Index (HSI)")/2, p.y+p.h/2, "Hang Seng Index (HSI)")
	pdf.TransformEnd()

	pdf.SetTextColor(fearGreedColor.r, fearGreedColor.g, fearGreedColor.b)
	pdf.TransformBegin()
	pdf.TransformRotate(-90, p.x+p.w+12, p.y+p.h/2)
	pdf.Text(p.x+p.w+12-pdf.GetStringWidth("Fear & Greed (0-100)")/2, p.y+p.h/2, "Fear & Greed (0-100)")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
	pdf.Text(p.x+p.w/2-pdf.GetStringWidth("Date")/2, p.y+p.h+11, "Date")
}

func (p *plot) drawLegend(pdf *fpdf.Fpdf) {
	x, y := p.x+3, p.y+3
	const rowH = 4.5

	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(gridColor.r, gridColor.g, gridColor.b)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, 42, rowH*float64(2+len(bands))+2, "FD")

	pdf.SetFont("Arial", "", 7.5)
	pdf.SetTextColor(0, 0, 0)
	row := y + 1

	for _, s := range []struct {
		label string
		color rgb
	}{{"HSI", hsiColor}, {"Fear & Greed", fearGreedColor}} {
		pdf.SetDrawColor(s.color.r, s.color.g, s.color.b)
		pdf.SetLineWidth(0.5)
		pdf.Line(x+2, row+rowH/2, x+8, row+rowH/2)
		pdf.Text(x+10, row+rowH/2+1, s.label)
		row += rowH
	}

	for _, b := range bands {
		pdf.SetAlpha(bandAlpha*3, "Normal")
		pdf.SetFillColor(b.color.r, b.color.g, b.color.b)
		pdf.Rect(x+2, row+1, 6, rowH-2, "F")
		pdf.SetAlpha(1, "Normal")
		pdf.Text(x+10, row+rowH/2+1, fmt.Sprintf("%s (%.0f-%.0f)", b.label, b.lo, b.hi))
		row += rowH
	}
}
