// Package nodelink renders loading graphs as node-link diagrams.
//
// Packages appear as boxes grouped into one horizontal rank per batch,
// with arrows pointing at the dependencies they wait on. It is a debugging
// aid: it shows at a glance why a package lands in a late batch.
//
//	dot := nodelink.ToDOT(g.DAG(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// [Render] picks the output by format name. DOT output needs nothing else,
// SVG uses [github.com/goccy/go-graphviz] in process, and PNG/PDF
// additionally shell out to rsvg-convert.
package nodelink
