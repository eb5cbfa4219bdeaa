package render

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/bubblechart/pkg/errors"
	"github.com/matzehuels/bubblechart/pkg/observability"
	"github.com/matzehuels/bubblechart/pkg/pack"
	"github.com/matzehuels/bubblechart/pkg/render/nodelink"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

// Format names an output format.
type Format string

const (
	FormatSVG       Format = "svg"
	FormatPNG       Format = "png"
	FormatJSON      Format = "json"
	FormatDOT       Format = "dot"
	FormatHierarchy Format = "hierarchy"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatJSON, FormatDOT, FormatHierarchy}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	if f == FormatHierarchy {
		return "tree.svg"
	}
	return string(f)
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (valid: svg, png, json, dot, hierarchy)", s)
	}
	return f, nil
}

// Options configures the renderers.
type Options struct {
	// Endpoint is the base URL the browser posts pointer events to. It is
	// written onto the SVG root of interactive widgets.
	Endpoint string

	// Scale multiplies the PNG resolution. Zero means 1.
	Scale float64
}

// Circles lays out the leaves of snap using its configuration.
func Circles(snap widget.Snapshot) []pack.Circle {
	cfg := snap.Config()
	return pack.Layout(snap.Tree, pack.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Padding:    cfg.Padding,
		Margins:    pack.Uniform(cfg.Margin),
		LeavesOnly: true,
	})
}

// Render writes snap in format f to w.
func Render(ctx context.Context, w io.Writer, snap widget.Snapshot, f Format, opts Options) (err error) {
	hooks := observability.Render()
	circles := Circles(snap)
	hooks.OnRenderStart(ctx, string(f), len(circles))

	start := time.Now()
	var buf bytes.Buffer
	defer func() {
		hooks.OnRenderComplete(ctx, string(f), buf.Len(), time.Since(start), err)
	}()

	switch f {
	case FormatSVG:
		err = writeSVG(&buf, snap, circles, opts)
	case FormatPNG:
		err = writePNG(&buf, snap, circles, opts)
	case FormatJSON:
		err = writeJSON(&buf, snap, circles)
	case FormatDOT:
		_, err = buf.WriteString(nodelink.ToDOT(snap.Tree, nodelink.Options{}))
	case FormatHierarchy:
		var out []byte
		out, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(snap.Tree, nodelink.Options{Weights: true}))
		buf.Write(out)
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// Bytes renders snap in format f and returns the output.
func Bytes(ctx context.Context, snap widget.Snapshot, f Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(ctx, &buf, snap, f, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
