package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the short description below each feature name.
	// When false, only the name is shown.
	Detailed bool
	// Layers restricts the diagram to these layers when non-empty. Edges
	// to features outside the selection are dropped.
	Layers []catalog.Layer
}

// Format is an output image format.
type Format string

// Supported output formats.
const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat converts user input to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", herrors.New(herrors.ErrCodeInvalidFormat, "unknown format %q (want dot, svg or png)", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// ToDOT converts a catalog to Graphviz DOT source. Each layer becomes a
// cluster filled with the layer color, stacked with the foundation at the
// bottom; edges point from a prerequisite up to the feature it enables.
func ToDOT(c *catalog.Catalog, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#555555\", arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")

	g := c.Graph()
	included := map[string]bool{}
	for _, info := range c.Layers() {
		if len(opts.Layers) > 0 && !slices.Contains(opts.Layers, info.ID) {
			continue
		}
		row := g.NodesInRow(info.ID.Rank())
		if len(row) == 0 {
			continue
		}
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+string(info.ID))
		fmt.Fprintf(&buf, "    label=%q;\n", info.Label)
		fmt.Fprintf(&buf, "    style=\"rounded,filled\";\n")
		fmt.Fprintf(&buf, "    color=%q;\n", info.Color)
		fmt.Fprintf(&buf, "    fillcolor=%q;\n", info.Color+"22")
		for _, n := range row {
			f, _ := c.Get(n.ID)
			included[f.ID] = true
			fmt.Fprintf(&buf, "    %q [%s];\n", f.ID, strings.Join(fmtAttrs(f, info, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if included[e.From] && included[e.To] {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(f catalog.Feature, detailed bool) string {
	if !detailed || f.ShortDescription == "" {
		return f.Name
	}
	return f.Name + "\n" + wrap(f.ShortDescription, 28)
}

func fmtAttrs(f catalog.Feature, layer catalog.LayerInfo, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(f, detailed)),
		fmt.Sprintf("color=%q", layer.Color),
	}
	if f.ShortDescription != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", f.ShortDescription))
	}
	return attrs
}

// wrap breaks s into lines of at most width runes at word boundaries.
func wrap(s string, width int) string {
	var lines []string
	var line string
	for _, word := range strings.Fields(s) {
		switch {
		case line == "":
			line = word
		case len([]rune(line))+1+len([]rune(word)) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Render renders DOT source in the given format. [FormatDOT] returns the
// source unchanged; image formats go through Graphviz in-process.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return render(ctx, dot, graphviz.PNG)
	}
	return nil, herrors.New(herrors.ErrCodeInvalidFormat, "unknown format %q", format)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz <svg> tag with one whose viewBox
// starts at the origin, so the image scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
