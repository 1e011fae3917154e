package plane

// Overrides carries caller supplied config keys. A nil field keeps the
// default; a non-nil field replaces the default wholesale, nested objects
// included, so a partial margin does not inherit the remaining sides.
type Overrides struct {
	GridType        *GridType   `yaml:"grid_type" json:"gridType"`
	Width           *float64    `yaml:"width" json:"width"`
	Height          *float64    `yaml:"height" json:"height"`
	Margin          *Margin     `yaml:"margin" json:"margin"`
	Title           *string     `yaml:"title" json:"title"`
	TitleFontSize   *string     `yaml:"title_font_size" json:"titleFontSize"`
	VLines          *int        `yaml:"v_lines" json:"vLines"`
	HLines          *int        `yaml:"h_lines" json:"hLines"`
	OuterLineWeight *float64    `yaml:"outer_line_weight" json:"outerLineWeight"`
	OuterLineColor  *string     `yaml:"outer_line_color" json:"outerLineColor"`
	InnerLineWeight *float64    `yaml:"inner_line_weight" json:"innerLineWeight"`
	InnerLineColor  *string     `yaml:"inner_line_color" json:"innerLineColor"`
	AxisLineColor   *string     `yaml:"axis_line_color" json:"axisLineColor"`
	XAxis           *Axis       `yaml:"x_axis" json:"xAxis"`
	YAxis           *Axis       `yaml:"y_axis" json:"yAxis"`
	PointRules      *PointRules `yaml:"point_rules" json:"pointRules"`
}

// Merge returns base with every key set in o applied on top.
func (o *Overrides) Merge(base Config) Config {
	if o == nil {
		return base
	}
	cfg := base
	setIf(&cfg.GridType, o.GridType)
	setIf(&cfg.Width, o.Width)
	setIf(&cfg.Height, o.Height)
	setIf(&cfg.Margin, o.Margin)
	setIf(&cfg.Title, o.Title)
	setIf(&cfg.TitleFontSize, o.TitleFontSize)
	setIf(&cfg.VLines, o.VLines)
	setIf(&cfg.HLines, o.HLines)
	setIf(&cfg.OuterLineWeight, o.OuterLineWeight)
	setIf(&cfg.OuterLineColor, o.OuterLineColor)
	setIf(&cfg.InnerLineWeight, o.InnerLineWeight)
	setIf(&cfg.InnerLineColor, o.InnerLineColor)
	setIf(&cfg.AxisLineColor, o.AxisLineColor)
	setIf(&cfg.XAxis, o.XAxis)
	setIf(&cfg.YAxis, o.YAxis)
	setIf(&cfg.PointRules, o.PointRules)
	return cfg
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
