package plane

import (
	"errors"
	"fmt"
	"strings"
)

// GridType selects how the axis domains are derived from the config.
type GridType string

const (
	// GridCoordinate is a four quadrant plane centred on the origin.
	GridCoordinate GridType = "coordinate"
	// GridOneQuadrant is the positive quadrant only.
	GridOneQuadrant GridType = "oneQuadrant"
)

type Config struct {
	GridType        GridType   `yaml:"grid_type" json:"gridType"`
	Width           float64    `yaml:"width" json:"width"`
	Height          float64    `yaml:"height" json:"height"`
	Margin          Margin     `yaml:"margin" json:"margin"`
	Title           string     `yaml:"title" json:"title"`
	TitleFontSize   string     `yaml:"title_font_size" json:"titleFontSize"`
	VLines          int        `yaml:"v_lines" json:"vLines"`
	HLines          int        `yaml:"h_lines" json:"hLines"`
	OuterLineWeight float64    `yaml:"outer_line_weight" json:"outerLineWeight"`
	OuterLineColor  string     `yaml:"outer_line_color" json:"outerLineColor"`
	InnerLineWeight float64    `yaml:"inner_line_weight" json:"innerLineWeight"`
	InnerLineColor  string     `yaml:"inner_line_color" json:"innerLineColor"`
	AxisLineColor   string     `yaml:"axis_line_color" json:"axisLineColor"`
	XAxis           Axis       `yaml:"x_axis" json:"xAxis"`
	YAxis           Axis       `yaml:"y_axis" json:"yAxis"`
	PointRules      PointRules `yaml:"point_rules" json:"pointRules"`
}

type Margin struct {
	Top    float64 `yaml:"top" json:"top"`
	Right  float64 `yaml:"right" json:"right"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Left   float64 `yaml:"left" json:"left"`
}

type Axis struct {
	StartPoint float64 `yaml:"start_point" json:"startPoint"`
	Increment  float64 `yaml:"increment" json:"increment"`
	Title      string  `yaml:"title" json:"title"`
}

type PointRules struct {
	MinimumPoints int `yaml:"minimum_points" json:"minimumPoints"`
	MaximumPoints int `yaml:"maximum_points" json:"maximumPoints"`
}

// DefaultConfig returns the built-in plane configuration.
func DefaultConfig() Config {
	return Config{
		GridType:        GridCoordinate,
		Width:           500,
		Height:          500,
		Margin:          Margin{Top: 40, Right: 40, Bottom: 40, Left: 40},
		Title:           "Title",
		TitleFontSize:   "16px",
		VLines:          22,
		HLines:          22,
		OuterLineWeight: 3,
		OuterLineColor:  "var(--blue-600)",
		InnerLineWeight: 1,
		InnerLineColor:  "var(--gray-200)",
		AxisLineColor:   "var(--pink-600)",
		XAxis:           Axis{StartPoint: -10, Increment: 1, Title: "x"},
		YAxis:           Axis{StartPoint: -10, Increment: 1, Title: "y"},
		PointRules:      PointRules{MinimumPoints: 1, MaximumPoints: 2},
	}
}

// InnerWidth is the drawable width between the left and right margins.
func (c Config) InnerWidth() float64 {
	return c.Width - c.Margin.Left - c.Margin.Right
}

// InnerHeight is the drawable height between the top and bottom margins.
func (c Config) InnerHeight() float64 {
	return c.Height - c.Margin.Top - c.Margin.Bottom
}

// Validate reports every problem with the config at once.
// markupChars may not appear in the style values copied into the rendering.
const markupChars = `"'<>&`

func (c Config) Validate() error {
	var errs []error

	switch c.GridType {
	case GridCoordinate, GridOneQuadrant:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown grid type %q", ErrInvalidConfig, c.GridType))
	}
	if c.InnerWidth() <= 0 {
		errs = append(errs, fmt.Errorf("%w: width %v leaves no room inside margins", ErrInvalidConfig, c.Width))
	}
	if c.InnerHeight() <= 0 {
		errs = append(errs, fmt.Errorf("%w: height %v leaves no room inside margins", ErrInvalidConfig, c.Height))
	}
	if c.VLines <= 0 || c.HLines <= 0 {
		errs = append(errs, fmt.Errorf("%w: line counts must be positive (v=%d, h=%d)", ErrInvalidConfig, c.VLines, c.HLines))
	}
	if c.PointRules.MaximumPoints < 0 || c.PointRules.MinimumPoints < 0 {
		errs = append(errs, fmt.Errorf("%w: point rules must not be negative", ErrInvalidConfig))
	}
	for _, v := range []struct{ name, value string }{
		{"title font size", c.TitleFontSize},
		{"outer line color", c.OuterLineColor},
		{"inner line color", c.InnerLineColor},
		{"axis line color", c.AxisLineColor},
	} {
		if strings.ContainsAny(v.value, markupChars) {
			errs = append(errs, fmt.Errorf("%w: %s %q contains markup", ErrInvalidConfig, v.name, v.value))
		}
	}
	if c.PointRules.MinimumPoints > c.PointRules.MaximumPoints {
		errs = append(errs, fmt.Errorf("%w: minimum points %d exceeds maximum %d",
			ErrInvalidConfig, c.PointRules.MinimumPoints, c.PointRules.MaximumPoints))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	// Domain checks only make sense once the grid type and line counts are sane.
	for _, d := range []struct {
		name string
		dom  [2]float64
	}{
		{"x", c.XDomain()},
		{"y", c.YDomain()},
	} {
		if d.dom[0] >= d.dom[1] {
			errs = append(errs, fmt.Errorf("%w: %s domain [%v, %v] is empty", ErrInvalidConfig, d.name, d.dom[0], d.dom[1]))
		}
	}
	return errors.Join(errs...)
}

// XDomain is the logical extent of the x axis, including the outer line.
func (c Config) XDomain() [2]float64 {
	return c.domain(c.XAxis.StartPoint, c.VLines)
}

// YDomain is the logical extent of the y axis, including the outer line.
func (c Config) YDomain() [2]float64 {
	return c.domain(c.YAxis.StartPoint, c.HLines)
}

func (c Config) domain(start float64, lines int) [2]float64 {
	if c.GridType == GridOneQuadrant {
		return [2]float64{start, float64(lines)}
	}
	// one extra unit on both sides for the outer border
	return [2]float64{start - 1, -start + 1}
}

// ZeroTickPosition is the 1-based position of the origin tick along an axis
// whose domain starts at start.
func (c Config) ZeroTickPosition(start float64) int {
	if c.GridType == GridOneQuadrant {
		return 1
	}
	return int(-start) + 2
}
