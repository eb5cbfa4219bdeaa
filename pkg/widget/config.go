package widget

import (
	"github.com/matzehuels/bubblechart/pkg/errors"
)

// Render constants of the chart. They are fixed by the widget rather than
// configured by the host.
const (
	DefaultPadding         = 8.0
	DefaultMargin          = 20.0
	DefaultLabelSkipRadius = 10.0
	DefaultFontSize        = 12.0
	DefaultHeight          = 400.0
	DefaultWidth           = 600.0
)

// DefaultElementID names the chart when the host does not. It is fixed so
// that event keys and render cache keys are stable across runs.
const DefaultElementID = "bubblechart"

// Default colors.
const (
	DefaultMainColor   = "#ff5f56"
	DefaultActiveColor = "#8b0000"
	DefaultLabelColor  = "#ffffff"
	DefaultBorderWidth = 3.0
)

// Config is the configuration the host supplies at mount.
type Config struct {
	// ElementID namespaces outbound events as "<ElementID>_clicked".
	ElementID string `toml:"element_id" json:"elementId"`

	MainColor       string `toml:"main_color" json:"mainColor"`
	ActiveColor     string `toml:"active_color" json:"activeColor"`
	LabelColor      string `toml:"label_color" json:"labelColor"`
	HoverLabelColor string `toml:"hover_label_color" json:"hoverLabelColor"`

	// BorderColor defaults to MainColor.
	BorderColor string  `toml:"border_color" json:"borderColor"`
	BorderWidth float64 `toml:"border_width" json:"borderWidth"`

	// Interactive enables pointer handling in every host. A non-interactive
	// widget still renders but ignores clicks and hovers.
	Interactive bool `toml:"interactive" json:"interactive"`

	Width           float64 `toml:"width" json:"width"`
	Height          float64 `toml:"height" json:"height"`
	Padding         float64 `toml:"padding" json:"padding"`
	Margin          float64 `toml:"margin" json:"margin"`
	LabelSkipRadius float64 `toml:"label_skip_radius" json:"labelSkipRadius"`
	FontSize        float64 `toml:"font_size" json:"fontSize"`
}

// DefaultConfig returns an interactive configuration with the widget's
// default palette and the default element ID.
func DefaultConfig() Config {
	var c Config
	c.Interactive = true
	c.SetDefaults()
	return c
}

// SetDefaults fills every zero field with its default. Interactive is left
// as is because false is a meaningful setting.
func (c *Config) SetDefaults() {
	if c.ElementID == "" {
		c.ElementID = DefaultElementID
	}
	if c.MainColor == "" {
		c.MainColor = DefaultMainColor
	}
	if c.ActiveColor == "" {
		c.ActiveColor = DefaultActiveColor
	}
	if c.LabelColor == "" {
		c.LabelColor = DefaultLabelColor
	}
	if c.HoverLabelColor == "" {
		c.HoverLabelColor = c.MainColor
	}
	if c.BorderColor == "" {
		c.BorderColor = c.MainColor
	}
	if c.BorderWidth == 0 {
		c.BorderWidth = DefaultBorderWidth
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.Padding == 0 {
		c.Padding = DefaultPadding
	}
	if c.Margin == 0 {
		c.Margin = DefaultMargin
	}
	if c.LabelSkipRadius == 0 {
		c.LabelSkipRadius = DefaultLabelSkipRadius
	}
	if c.FontSize == 0 {
		c.FontSize = DefaultFontSize
	}
}

// Validate checks that the configuration can drive the selection toggle.
func (c Config) Validate() error {
	if err := errors.ValidateElementID(c.ElementID); err != nil {
		return err
	}
	colors := []struct{ field, value string }{
		{"main_color", c.MainColor},
		{"active_color", c.ActiveColor},
		{"label_color", c.LabelColor},
		{"hover_label_color", c.HoverLabelColor},
		{"border_color", c.BorderColor},
	}
	for _, col := range colors {
		if err := errors.ValidateColor(col.field, col.value); err != nil {
			return err
		}
	}
	if c.MainColor == c.ActiveColor {
		return errors.New(errors.ErrCodeInvalidConfig, "main_color and active_color must differ (both %q)", c.MainColor)
	}
	if c.BorderWidth < 0 || c.Padding < 0 || c.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "border_width, padding and margin must be non-negative")
	}
	if c.Width <= 2*c.Margin || c.Height <= 2*c.Margin {
		return errors.New(errors.ErrCodeInvalidConfig, "chart size %.0fx%.0f leaves no room inside %.0f margins", c.Width, c.Height, c.Margin)
	}
	return nil
}
