package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bubblechart/pkg/errors"
	"github.com/matzehuels/bubblechart/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Weights adds leaf weights to the labels.
	Weights bool
}

// ToDOT converts a tree to Graphviz DOT format. Node identifiers are
// assigned in depth-first order so duplicate names still produce distinct
// nodes.
func ToDOT(root *tree.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=lightgrey, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	next := 0
	var visit func(n *tree.Node) string
	visit = func(n *tree.Node) string {
		id := "n" + strconv.Itoa(next)
		next++
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(n, opts), ", "))
		for _, c := range n.Children {
			edges = append(edges, fmt.Sprintf("  %s -> %s;\n", id, visit(c)))
		}
		return id
	}
	if root != nil {
		visit(root)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *tree.Node, opts Options) string {
	if opts.Weights && n.IsLeaf() {
		return fmt.Sprintf("%s\n%g", n.Name, n.Weight)
	}
	return n.Name
}

func fmtAttrs(n *tree.Node, opts Options) []string {
	attrs := []string{"label=" + quote(fmtLabel(n, opts))}
	if n.IsLeaf() {
		attrs = append(attrs, "shape=ellipse", "style=filled")
		if n.Color != "" {
			attrs = append(attrs, "fillcolor=" + quote(n.Color))
		}
		if n.LabelColor != "" {
			attrs = append(attrs, "fontcolor=" + quote(n.LabelColor))
		}
	}
	return attrs
}

// dotEscaper escapes a DOT quoted string. Newlines become the \n label
// line break; every other byte passes through unchanged.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
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

// normalizeViewBox replaces the Graphviz root element with one whose
// viewBox starts at the origin and whose size matches it.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
