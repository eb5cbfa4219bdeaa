package render

import (
	"image/color"
	"image/png"
	"io"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/bubblechart/pkg/pack"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

var colorBackdrop = color.RGBA{255, 255, 255, 255}

// ParseColor converts a chart color to an image color. Keywords resolve
// through the SVG color names. The second result is false for
// "transparent", empty, and unparseable values.
func ParseColor(s string) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == widget.Transparent {
		return nil, false
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	hex, alpha, ok := splitAlpha(s)
	if !ok {
		return nil, false
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, false
	}
	if alpha == 0xff {
		return c, true
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, true
}

// splitAlpha normalizes #rgb, #rgba and #rrggbbaa to #rrggbb plus an
// alpha byte, which go-colorful does not parse.
func splitAlpha(s string) (string, uint8, bool) {
	if len(s) == 0 || s[0] != '#' {
		return s, 0xff, true
	}
	switch len(s) {
	case 4, 5:
		long := []byte{'#'}
		for _, ch := range []byte(s[1:]) {
			long = append(long, ch, ch)
		}
		s = string(long)
	}
	if len(s) != 9 {
		return s, 0xff, true
	}
	a, err := strconv.ParseUint(s[7:], 16, 8)
	if err != nil {
		return "", 0, false
	}
	return s[:7], uint8(a), true
}

// PNG writes snap as a PNG image.
func PNG(w io.Writer, snap widget.Snapshot, opts Options) error {
	return writePNG(w, snap, Circles(snap), opts)
}

func writePNG(w io.Writer, snap widget.Snapshot, circles []pack.Circle, opts Options) error {
	cfg := snap.Config()
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	dc := gg.NewContext(px(cfg.Width*scale), px(cfg.Height*scale))
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.Scale(scale, scale)
	dc.SetFontFace(basicfont.Face7x13)

	for _, c := range circles {
		drawCirclePNG(dc, snap, c)
	}
	for _, c := range circles {
		if c.R < cfg.LabelSkipRadius {
			continue
		}
		if col, ok := ParseColor(snap.Label(c.Node)); ok {
			dc.SetColor(col)
			dc.DrawStringAnchored(c.Node.Name, c.X, c.Y, 0.5, 0.35)
		}
	}
	return png.Encode(w, dc.Image())
}

func drawCirclePNG(dc *gg.Context, snap widget.Snapshot, c pack.Circle) {
	if c.R <= 0 {
		return
	}
	cfg := snap.Config()
	if fill, ok := ParseColor(snap.Fill(c.Node)); ok {
		dc.SetColor(fill)
		dc.DrawCircle(c.X, c.Y, c.R)
		dc.Fill()
	}
	if stroke, ok := ParseColor(cfg.BorderColor); ok && cfg.BorderWidth > 0 {
		dc.SetColor(stroke)
		dc.SetLineWidth(cfg.BorderWidth)
		dc.DrawCircle(c.X, c.Y, c.R)
		dc.Stroke()
	}
}
