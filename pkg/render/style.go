package render

// Style holds the fixed visual parameters of a scene.
type Style struct {
	NodeRadius      float64 `toml:"node_radius" yaml:"node_radius"`
	NodeStroke      string  `toml:"node_stroke" yaml:"node_stroke"`
	NodeStrokeWidth float64 `toml:"node_stroke_width" yaml:"node_stroke_width"`
	LinkStroke      string  `toml:"link_stroke" yaml:"link_stroke"`
	LinkOpacity     float64 `toml:"link_opacity" yaml:"link_opacity"`
	LabelDX         float64 `toml:"label_dx" yaml:"label_dx"`
	LabelDY         float64 `toml:"label_dy" yaml:"label_dy"`
	FontSize        float64 `toml:"font_size" yaml:"font_size"`
}

// DefaultStyle matches the reference look of the site graph.
var DefaultStyle = Style{
	NodeRadius:      15,
	NodeStroke:      "#fff",
	NodeStrokeWidth: 1.5,
	LinkStroke:      "#999",
	LinkOpacity:     0.6,
	LabelDX:         20,
	LabelDY:         0,
	FontSize:        14,
}

// withDefaults fills zero fields from DefaultStyle.
func (s Style) withDefaults() Style {
	d := DefaultStyle
	if s.NodeRadius != 0 {
		d.NodeRadius = s.NodeRadius
	}
	if s.NodeStroke != "" {
		d.NodeStroke = s.NodeStroke
	}
	if s.NodeStrokeWidth != 0 {
		d.NodeStrokeWidth = s.NodeStrokeWidth
	}
	if s.LinkStroke != "" {
		d.LinkStroke = s.LinkStroke
	}
	if s.LinkOpacity != 0 {
		d.LinkOpacity = s.LinkOpacity
	}
	if s.LabelDX != 0 {
		d.LabelDX = s.LabelDX
	}
	if s.LabelDY != 0 {
		d.LabelDY = s.LabelDY
	}
	if s.FontSize != 0 {
		d.FontSize = s.FontSize
	}
	return d
}
