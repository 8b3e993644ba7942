package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cdnlock/pkg/dag"
	"github.com/matzehuels/cdnlock/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the batch number and node metadata to labels.
	// When false, labels read "name@version".
	Detailed bool
}

// ToDOT converts a loading graph to Graphviz DOT. Nodes of one batch share a
// rank, batch 0 at the bottom, and edges point from a package down to its
// dependencies.
//
// Missing nodes (dependencies that never resolved) are drawn dashed in red.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	rows := g.RowIDs()
	slices.Reverse(rows)
	for _, row := range rows {
		fmt.Fprintf(&buf, "\n  subgraph batch_%d {\n    rank=same;\n", row)
		for _, n := range g.NodesInRow(row) {
			label := fmtLabel(*n, opts.Detailed)
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(*n, label), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n dag.Node, detailed bool) string {
	name, _ := n.Meta["name"].(string)
	ver, _ := n.Meta["version"].(string)
	title := n.ID
	if name != "" && ver != "" {
		title = name + "@" + ver
	}
	if !detailed {
		return title
	}

	parts := []string{fmt.Sprintf("batch: %d", n.Row)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if k == "name" || k == "version" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return title + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n dag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.IsMissing() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=mistyrose", "color=red")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

// Render produces the graph in the given format: "dot", "svg", "png" or
// "pdf". PNG and PDF need rsvg-convert.
func Render(g *dag.DAG, format string, opts Options) ([]byte, error) {
	dot := ToDOT(g, opts)
	if format == "dot" {
		return []byte(dot), nil
	}
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case "svg":
		return svg, nil
	case "png":
		return render.ToPNG(svg, 2.0)
	case "pdf":
		return render.ToPDF(svg)
	}
	return nil, fmt.Errorf("unsupported graph format: %q (must be one of: dot, svg, png, pdf)", format)
}
