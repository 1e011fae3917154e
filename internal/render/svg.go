package render

import (
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"github.com/NissesSenap/gridplane/internal/plane"
)

// ErrContainerMissing is returned when there is nothing to render into.
var ErrContainerMissing = errors.New("container not found")

const (
	arrowPath = "m4.497 20.835l16.51-7.363c1.324-.59 1.324-2.354 0-2.944L4.497 3.164c-1.495-.667-3.047.814-2.306 2.202l3.152 5.904c.245.459.245 1 0 1.458l-3.152 5.904c-.74 1.388.81 2.87 2.306 2.202"
	arrowSize = 4

	pointRadius = 8
	pointColor  = "var(--green-600)"

	tickPadding  = 4
	tickFontSize = 10
)

// Initialize merges overrides onto base, builds the plane, replays clicks
// and writes the rendering to target. Rejected clicks are dropped silently.
// A nil target aborts before anything is built.
func Initialize(target io.Writer, base plane.Config, overrides *plane.Overrides, clicks ...plane.Point) (*plane.Plane, error) {
	if target == nil {
		log.Printf("Container not found!")
		return nil, ErrContainerMissing
	}

	p, err := plane.New(overrides.Merge(base))
	if err != nil {
		return nil, fmt.Errorf("failed to build plane: %w", err)
	}
	for _, c := range clicks {
		p.PlacePoint(c.X, c.Y)
	}
	if err := Render(target, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Render writes the plane with its points and connecting line as an SVG
// document.
func Render(w io.Writer, p *plane.Plane) error {
	if w == nil {
		return ErrContainerMissing
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	cfg := p.Config()

	canvas.Start(cfg.Width, cfg.Height, `style="border: 1px solid var(--gray-100)"`)
	drawTitle(canvas, cfg)

	canvas.Group(`id="graph"`, fmt.Sprintf(`transform="translate(%v, %v)"`, cfg.Margin.Left, cfg.Margin.Top))
	drawArrowMarker(canvas, cfg)
	drawXAxis(canvas, p)
	drawYAxis(canvas, p)
	canvas.Rect(0, 0, cfg.InnerWidth(), cfg.InnerHeight(),
		`fill="none"`,
		attr("stroke", cfg.OuterLineColor),
		attr("stroke-width", cfg.OuterLineWeight))
	drawAxisLines(canvas, p)
	canvas.Gend()

	points := p.Points()
	drawPoints(canvas, points)
	drawConnection(canvas, points)
	canvas.End()

	if ew.err != nil {
		return fmt.Errorf("failed to write svg: %w", ew.err)
	}
	return nil
}

func drawTitle(canvas *svg.SVG, cfg plane.Config) {
	canvas.Text(cfg.Width/2, cfg.Margin.Top-10, cfg.Title,
		`text-anchor="middle"`,
		attr("font-size", cfg.TitleFontSize),
		`font-weight="bold"`)
}

func drawArrowMarker(canvas *svg.SVG, cfg plane.Config) {
	canvas.Def()
	canvas.Marker("arrow", 20, 12, arrowSize, arrowSize,
		`viewBox="0 0 24 24"`,
		`orient="auto-start-reverse"`)
	canvas.Path(arrowPath, attr("fill", cfg.AxisLineColor), attr("stroke", cfg.AxisLineColor))
	canvas.MarkerEnd()
	canvas.DefEnd()
}

// labelled reports whether the tick at 1-based position pos keeps its label.
// The outer ticks sit on the border and the origin is marked by the axes.
func labelled(pos, n, zeroPos int) bool {
	return pos != 1 && pos != n && pos != zeroPos
}

func drawXAxis(canvas *svg.SVG, p *plane.Plane) {
	cfg := p.Config()
	dom := cfg.XDomain()
	ticks := Ticks(dom[0], dom[1], cfg.VLines)
	step := TickStep(dom[0], dom[1], cfg.VLines)
	zeroPos := cfg.ZeroTickPosition(cfg.XAxis.StartPoint)
	axisY := axisOffset(p.YScale(), cfg.InnerHeight())

	canvas.Group(`class="x-axis"`)
	for i, t := range ticks {
		x := p.XScale().Apply(t)
		canvas.Line(x, 0, x, cfg.InnerHeight(),
			`class="tick"`,
			attr("stroke", cfg.InnerLineColor),
			attr("stroke-width", cfg.InnerLineWeight))
		if labelled(i+1, len(ticks), zeroPos) {
			canvas.Text(x, axisY+tickPadding, FormatTick(t, step),
				`text-anchor="middle"`, `dy="0.71em"`, attr("font-size", tickFontSize))
		}
	}
	canvas.Gend()
}

func drawYAxis(canvas *svg.SVG, p *plane.Plane) {
	cfg := p.Config()
	dom := cfg.YDomain()
	// ticks run top to bottom, following the reversed y domain
	ticks := Ticks(dom[1], dom[0], cfg.HLines)
	step := TickStep(dom[0], dom[1], cfg.HLines)
	zeroPos := cfg.ZeroTickPosition(cfg.YAxis.StartPoint)
	if cfg.GridType == plane.GridOneQuadrant {
		zeroPos = len(ticks)
	}
	axisX := axisOffset(p.XScale(), cfg.InnerWidth())

	canvas.Group(`class="y-axis"`)
	for i, t := range ticks {
		y := p.YScale().Apply(t)
		canvas.Line(0, y, cfg.InnerWidth(), y,
			`class="tick"`,
			attr("stroke", cfg.InnerLineColor),
			attr("stroke-width", cfg.InnerLineWeight))
		if labelled(i+1, len(ticks), zeroPos) {
			canvas.Text(axisX-tickPadding, y, FormatTick(t, step),
				`text-anchor="end"`, `dy="0.32em"`, attr("font-size", tickFontSize))
		}
	}
	canvas.Gend()
}

// axisOffset is where the origin falls along the other axis, kept inside
// the drawable area.
func axisOffset(s plane.Scale, extent float64) float64 {
	return math.Max(0, math.Min(extent, s.Apply(0)))
}

func drawAxisLines(canvas *svg.SVG, p *plane.Plane) {
	cfg := p.Config()
	w, h := cfg.InnerWidth(), cfg.InnerHeight()
	x0 := axisOffset(p.XScale(), w)
	y0 := axisOffset(p.YScale(), h)
	style := []string{
		`class="axis"`,
		attr("stroke", cfg.AxisLineColor),
		attr("stroke-width", cfg.OuterLineWeight),
		`marker-start="url(#arrow)"`,
		`marker-end="url(#arrow)"`,
	}

	canvas.Line(x0, 0, x0, h, style...)
	canvas.Line(0, y0, w, y0, style...)
}

func drawPoints(canvas *svg.SVG, points []plane.Point) {
	for i, pt := range points {
		canvas.Circle(pt.X, pt.Y, pointRadius,
			`class="point"`,
			attr("data-index", i),
			attr("fill", pointColor),
			attr("stroke", pointColor),
			`stroke-width="16"`,
			`stroke-opacity="0.2"`)
	}
}

// PathData builds the path through points in insertion order.
func PathData(points []plane.Point) string {
	var b strings.Builder
	for i, pt := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&b, "%s%g,%g", cmd, pt.X, pt.Y)
	}
	return b.String()
}

func drawConnection(canvas *svg.SVG, points []plane.Point) {
	if len(points) < 2 {
		return
	}
	canvas.Path(PathData(points),
		`id="connection"`,
		`fill="none"`,
		attr("stroke", pointColor),
		`stroke-width="3"`)
}

// attr formats a single attribute. Values come from caller config, so they
// are escaped.
func attr(name string, v any) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(fmt.Sprint(v)))
}

// errWriter keeps the first write error so rendering can run unchecked.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}
