// Package render turns loading graphs into pictures.
//
// The [nodelink] subpackage lays a scheduled graph out with Graphviz, one
// rank per batch, and renders it to SVG. [ToPDF] and [ToPNG] convert that
// SVG further with the external rsvg-convert tool:
//
//	dot := nodelink.ToDOT(g.DAG(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := render.ToPNG(svg, 2.0)
package render
