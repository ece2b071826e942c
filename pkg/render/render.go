package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/krampus/pkg/errors"
	"github.com/matzehuels/krampus/pkg/roster"
)

// Options configures exclusion graph rendering.
type Options struct {
	// Detailed adds each participant's email below their name.
	Detailed bool
}

// ToDOT converts a roster to Graphviz DOT format.
//
// Exclusions naming someone not on the roster are drawn to a grey dashed
// node so that typos stand out. Self exclusions are drawn as loops.
func ToDOT(participants []roster.Participant, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph exclusions {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [style=dashed, color=firebrick, arrowhead=tee];\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(participants))
	for _, p := range participants {
		known[p.Name] = true
		fmt.Fprintf(&buf, "  %q [label=%q];\n", p.Name, fmtLabel(p, opts.Detailed))
	}

	unknown := make(map[string]bool)
	for _, p := range participants {
		if p.Except != "" && !known[p.Except] && !unknown[p.Except] {
			unknown[p.Except] = true
			fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey, fontcolor=grey40];\n",
				p.Except, p.Except+"\n(unknown)")
		}
	}

	buf.WriteString("\n")
	for _, p := range participants {
		if p.Except != "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", p.Name, p.Except)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p roster.Participant, detailed bool) string {
	if !detailed {
		return p.Name
	}
	return strings.Join([]string{p.Name, p.Email}, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based width and height with the
// viewBox size so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
