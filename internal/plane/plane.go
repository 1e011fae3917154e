package plane

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("invalid plane config")

// Point is a pixel position on a grid intersection.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Plane owns one rendered coordinate plane: its config, the scales derived
// from it and the placed points. A Plane is not safe for concurrent use.
type Plane struct {
	cfg    Config
	xScale Scale
	yScale Scale
	points []Point
}

// New validates cfg and derives the axis scales.
func New(cfg Config) (*Plane, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	x := cfg.XDomain()
	y := cfg.YDomain()
	return &Plane{
		cfg:    cfg,
		xScale: NewScale(x, [2]float64{0, cfg.InnerWidth()}),
		// y grows downwards on screen, so the domain is reversed
		yScale: NewScale([2]float64{y[1], y[0]}, [2]float64{0, cfg.InnerHeight()}),
		points: make([]Point, 0, cfg.PointRules.MaximumPoints),
	}, nil
}

func (p *Plane) Config() Config { return p.cfg }
func (p *Plane) XScale() Scale  { return p.xScale }
func (p *Plane) YScale() Scale  { return p.yScale }

// IsWithinBoundary reports whether a pixel position lies inside the margins.
//
// The y bound is derived from the width, not the height. This matches the
// behavior the plane has always had and only differs on non-square planes.
func (p *Plane) IsWithinBoundary(x, y float64) bool {
	m := p.cfg.Margin
	limit := p.cfg.Width - m.Right
	return x >= m.Left && x < limit && y >= m.Top && y < limit
}

// SnapToGrid moves a pixel position to the nearest grid intersection.
func (p *Plane) SnapToGrid(x, y float64) (float64, float64) {
	m := p.cfg.Margin
	dx := math.Round(p.xScale.Invert(x - m.Left))
	dy := math.Round(p.yScale.Invert(y - m.Top))
	return p.xScale.Apply(dx) + m.Left, p.yScale.Apply(dy) + m.Top
}

// Logical converts a snapped pixel point back to grid units.
func (p *Plane) Logical(pt Point) (float64, float64) {
	m := p.cfg.Margin
	return math.Round(p.xScale.Invert(pt.X - m.Left)), math.Round(p.yScale.Invert(pt.Y - m.Top))
}

// PlacePoint snaps and appends a point. It returns false without touching
// the plane when the plane is full or the position is out of bounds.
func (p *Plane) PlacePoint(x, y float64) (Point, bool) {
	if len(p.points) >= p.cfg.PointRules.MaximumPoints {
		return Point{}, false
	}
	if !p.IsWithinBoundary(x, y) {
		return Point{}, false
	}

	cx, cy := p.SnapToGrid(x, y)
	pt := Point{X: cx, Y: cy}
	p.points = append(p.points, pt)
	return pt, true
}

// MovePoint snaps a position and overwrites the point at index i with it.
// It returns false without touching the plane for an unknown index or an
// out of bounds position.
func (p *Plane) MovePoint(i int, x, y float64) (Point, bool) {
	if i < 0 || i >= len(p.points) {
		return Point{}, false
	}
	if !p.IsWithinBoundary(x, y) {
		return Point{}, false
	}

	cx, cy := p.SnapToGrid(x, y)
	p.points[i] = Point{X: cx, Y: cy}
	return p.points[i], true
}

// Points returns a copy of the placed points in insertion order.
func (p *Plane) Points() []Point {
	out := make([]Point, len(p.points))
	copy(out, p.points)
	return out
}

func (p *Plane) Len() int { return len(p.points) }

// Full reports whether another point would be rejected for capacity.
func (p *Plane) Full() bool {
	return len(p.points) >= p.cfg.PointRules.MaximumPoints
}

// Satisfied reports whether the minimum number of points has been placed.
func (p *Plane) Satisfied() bool {
	return len(p.points) >= p.cfg.PointRules.MinimumPoints
}

// Reset drops every placed point.
func (p *Plane) Reset() {
	p.points = p.points[:0]
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
