// Package render draws widget snapshots.
//
// # Overview
//
// Every renderer takes a [widget.Snapshot] and lays it out with
// [pack.Layout] using the snapshot's configuration: leaves only, the
// configured padding, and a uniform margin. Fill and label colors are
// resolved through the snapshot so hover transparency is applied the same
// way in every output.
//
//   - [SVG]: vector output via svgo, the format served to browsers
//   - [PNG]: raster output via gg
//   - [JSON]: the snapshot and its positioned circles
//   - [nodelink]: the hierarchy as a Graphviz diagram
//
// # Dispatch
//
// [Render] selects a renderer by [Format] and reports timing through the
// render hooks in [observability]:
//
//	err := render.Render(ctx, w, snap, render.FormatSVG, render.Options{})
//
// [nodelink]: github.com/matzehuels/bubblechart/pkg/render/nodelink
package render
