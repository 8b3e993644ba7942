package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/cdnlock/pkg/render/nodelink"
)

// Graph output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported graph formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// FormatFromPath derives the graph format from a file extension.
func FormatFromPath(path string) (string, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if err := ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

// RenderGraph draws the loading graph of resp as a node-link diagram.
func RenderGraph(resp *Response, format string, detailed bool) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if resp.Graph == nil {
		return nil, fmt.Errorf("response has no loading graph")
	}
	data, err := nodelink.Render(resp.Graph.DAG(), format, nodelink.Options{Detailed: detailed})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
