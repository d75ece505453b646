// Package render keeps a visual scene in step with the simulation and turns
// it into output.
//
// # Overview
//
// A [Scene] is built once per loaded snapshot: one [Marker] and one [Label]
// per node, one [Line] per link. After every simulation tick the engine
// calls [Scene.Sync], which copies body positions into the scene and touches
// nothing else. A theme change calls [Scene.Restyle], which recolors labels
// and touches no geometry. A new snapshot discards the scene.
//
// [Scene.Project] applies a viewport transform and produces a [Frame] in
// view coordinates: markers and lines scale with the zoom, while label
// offsets and font size stay fixed on screen.
//
// # Color Policy
//
// Node fill follows a closed type set with a categorical fallback:
//
//	page        lightblue
//	api         red
//	interaction purple
//	otherwise   Category10[group mod 10]
//
// Label color is black on the light theme and white on the dark theme.
//
// # Sinks
//
//	svg := render.RenderSVG(frame, render.WithBackground("#fff"))
//	dot := render.ToDOT(frame)
//	svg, err := render.RenderDOTSVG(ctx, dot)
//
// [RenderSVG] writes SVG directly. [ToDOT] exports the frame as Graphviz
// DOT with pinned node positions, and [RenderDOTSVG] renders it in-process
// with [github.com/goccy/go-graphviz] using the neato engine.
package render
