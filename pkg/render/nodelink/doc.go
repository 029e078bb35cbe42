// Package nodelink renders feature catalogs as node-link diagrams.
//
// Features appear as boxes grouped into one cluster per layer, with arrows
// from each prerequisite to the feature it enables. The foundation layer
// sits at the bottom of the image.
//
//	dot := nodelink.ToDOT(c, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Render] dispatches on a [Format] for callers that take the format from
// user input. SVG and PNG rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz]; no external binaries are needed.
package nodelink
