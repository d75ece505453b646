package render

import "github.com/matzehuels/sitegraph/pkg/graph"

// Category10 is the ten-color categorical palette used for untyped nodes.
var Category10 = [10]string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Fill colors for typed nodes.
const (
	ColorPage        = "lightblue"
	ColorAPI         = "red"
	ColorInteraction = "purple"
)

// ColorFor returns the fill of a node marker.
func ColorFor(n *graph.Node) string {
	switch n.Type {
	case graph.TypePage:
		return ColorPage
	case graph.TypeAPI:
		return ColorAPI
	case graph.TypeInteraction:
		return ColorInteraction
	}
	g := n.Group % len(Category10)
	if g < 0 {
		g += len(Category10)
	}
	return Category10[g]
}
