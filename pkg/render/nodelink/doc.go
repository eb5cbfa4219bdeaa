// Package nodelink renders the chart hierarchy as a node-link diagram.
//
// # Overview
//
// The bubble chart only draws leaves. This package shows the full tree
// with Graphviz, which helps when checking how a data file nests its
// groups.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, nodelink.Options{Weights: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Leaves are filled with their chart color. Internal nodes are drawn as
// rounded grey boxes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
