package render

import (
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/bubblechart/pkg/pack"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

// SVG writes snap as a standalone SVG document.
func SVG(w io.Writer, snap widget.Snapshot, opts Options) error {
	return writeSVG(w, snap, Circles(snap), opts)
}

func writeSVG(w io.Writer, snap widget.Snapshot, circles []pack.Circle, opts Options) error {
	cfg := snap.Config()
	width, height := px(cfg.Width), px(cfg.Height)

	rootAttrs := []string{
		attr("id", cfg.ElementID),
		attr("class", "bubblechart"),
		fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height),
	}
	if cfg.Interactive && opts.Endpoint != "" {
		rootAttrs = append(rootAttrs, attr("data-endpoint", opts.Endpoint))
	}

	canvas := svg.New(w)
	canvas.Start(width, height, rootAttrs...)
	canvas.Gid("bubbles")
	for _, c := range circles {
		drawCircleSVG(canvas, snap, c)
	}
	canvas.Gend()

	canvas.Gid("labels")
	for _, c := range circles {
		drawLabelSVG(canvas, snap, c)
	}
	canvas.Gend()
	canvas.End()
	return nil
}

func drawCircleSVG(canvas *svg.SVG, snap widget.Snapshot, c pack.Circle) {
	r := px(c.R)
	if r <= 0 {
		return
	}
	cfg := snap.Config()
	attrs := []string{
		attr("fill", snap.Fill(c.Node)),
		attr("stroke", cfg.BorderColor),
		fmt.Sprintf(`stroke-width="%g"`, cfg.BorderWidth),
		attr("data-name", c.Node.Name),
	}
	if cfg.Interactive {
		attrs = append(attrs, `cursor="pointer"`)
	}
	canvas.Circle(px(c.X), px(c.Y), r, attrs...)
}

func drawLabelSVG(canvas *svg.SVG, snap widget.Snapshot, c pack.Circle) {
	cfg := snap.Config()
	if c.R < cfg.LabelSkipRadius {
		return
	}
	canvas.Text(px(c.X), px(c.Y), c.Node.Name,
		attr("fill", snap.Label(c.Node)),
		fmt.Sprintf(`font-size="%g"`, cfg.FontSize),
		`font-family="sans-serif"`,
		`text-anchor="middle"`,
		`dominant-baseline="central"`,
		`pointer-events="none"`,
	)
}

// attr formats an escaped attribute. svgo writes arguments containing "="
// verbatim.
func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func px(v float64) int {
	return int(math.Round(v))
}
