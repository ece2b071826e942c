// Package render draws the exclusion graph of a roster.
//
// The graph has one node per participant and a dashed edge from every
// participant to the person they must not give to. It shows who constrains
// whom without revealing any draw, so it is safe to share with the group.
//
//	dot := render.ToDOT(participants, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [ToDOT] is pure string building. [RenderSVG] lays the graph out with the
// Graphviz library bundled by github.com/goccy/go-graphviz, so no external
// binary is needed.
package render
