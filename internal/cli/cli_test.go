package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bubblechart/pkg/cache"
	"github.com/matzehuels/bubblechart/pkg/errors"
	"github.com/matzehuels/bubblechart/pkg/render"
	"github.com/matzehuels/bubblechart/pkg/tree"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

const fruitJSON = `{
  "name": "Fruit",
  "children": [
    {"name": "Apple", "value": 50},
    {"name": "Banana", "value": 30, "color": "#ff5f56", "labelColor": "#ffffff"},
    {"name": "Cherry", "value": 20}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *log.Logger {
	var buf bytes.Buffer
	return newLogger(&buf, log.InfoLevel)
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug should be filtered at info level")
	}
	logger.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("info should be written at info level")
	}
}

func TestLoggerContext(t *testing.T) {
	ctx := context.Background()
	if loggerFromContext(ctx) != log.Default() {
		t.Error("missing logger should fall back to the default")
	}
	l := quietLogger()
	if loggerFromContext(withLogger(ctx, l)) != l {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered 1 file(s)")
	if !strings.Contains(buf.String(), "Rendered 1 file(s) (") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	dir, _ = cacheDir()
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestParseFormats(t *testing.T) {
	got, err := parseFormats("")
	if err != nil || len(got) != 1 || got[0] != render.FormatSVG {
		t.Errorf("parseFormats(\"\") = %v, %v", got, err)
	}
	got, err = parseFormats("svg,png,json")
	if err != nil || len(got) != 3 {
		t.Errorf("parseFormats = %v, %v", got, err)
	}
	if _, err := parseFormats("svg,pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("invalid format error = %v", err)
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []render.Format
		f       render.Format
		want    string
	}{
		{"derived", "", []render.Format{render.FormatSVG}, render.FormatSVG, "data/fruit.svg"},
		{"explicit single", "out/chart.svg", []render.Format{render.FormatSVG}, render.FormatSVG, "out/chart.svg"},
		{"explicit multiple", "out/chart.svg", []render.Format{render.FormatSVG, render.FormatPNG}, render.FormatPNG, "out/chart.png"},
		{"base path", "out/chart", []render.Format{render.FormatSVG, render.FormatJSON}, render.FormatJSON, "out/chart.json"},
		{"hierarchy", "", []render.Format{render.FormatSVG, render.FormatHierarchy}, render.FormatHierarchy, "data/fruit.tree.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &renderOpts{output: tt.output, formats: tt.formats}
			if got := outputPath(opts, "data/fruit.json", tt.f); got != tt.want {
				t.Errorf("outputPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadConfig("", quietLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Widget.Interactive || cfg.Widget.MainColor != widget.DefaultMainColor || !cfg.Notify.Log.Enabled {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "bubblechart.toml", `
[widget]
element_id = "fruit"
main_color = "#336699"
interactive = false

[server]
addr = ":9000"
session_ttl = "5m"

[notify.log]
enabled = false

[notify.redis]
prefix = "charts:"
`)
	cfg, err := loadConfig(path, quietLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Widget.ElementID != "fruit" || cfg.Widget.MainColor != "#336699" || cfg.Widget.Interactive {
		t.Errorf("widget = %+v", cfg.Widget)
	}
	if cfg.Widget.BorderColor != "#336699" {
		t.Errorf("border color should default to the main color, got %q", cfg.Widget.BorderColor)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.SessionTTL.Minutes() != 5 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Notify.Log.Enabled || cfg.Notify.Redis.Prefix != "charts:" {
		t.Errorf("notify = %+v", cfg.Notify)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing explicit", filepath.Join(t.TempDir(), "nope.toml"), errors.ErrCodeFileNotFound},
		{"malformed", writeFile(t, "bad.toml", "[widget\n"), errors.ErrCodeInvalidConfig},
		{"same colors", writeFile(t, "same.toml", "[widget]\nmain_color = \"#111\"\nactive_color = \"#111\"\n"), errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(tt.path, quietLogger()); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildNotifierLogOnly(t *testing.T) {
	n, closeSinks, err := buildNotifier(context.Background(), NotifyConfig{Log: LogSinkConfig{Enabled: true}}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer closeSinks()
	if n == nil {
		t.Error("log sink should be configured")
	}

	n, closeSinks, err = buildNotifier(context.Background(), NotifyConfig{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	closeSinks()
	if n != nil {
		t.Error("no sinks should yield a nil notifier")
	}
}

func TestMountChartAppliesPalette(t *testing.T) {
	root, err := tree.ReadJSON(strings.NewReader(fruitJSON))
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := mountChart(root, widget.DefaultConfig(), nil, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	apple, _ := ctrl.FindNode("Apple")
	if apple.Color != widget.DefaultMainColor || apple.LabelColor != widget.DefaultLabelColor {
		t.Errorf("Apple = %+v", apple)
	}
}

func TestRunRender(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	input := writeFile(t, "fruit.json", fruitJSON)
	out := filepath.Join(t.TempDir(), "chart")

	c := New(&bytes.Buffer{}, log.InfoLevel)
	ctx := withLogger(context.Background(), c.Logger)
	opts := &renderOpts{
		output:  out,
		formats: []render.Format{render.FormatSVG, render.FormatJSON, render.FormatDOT},
		selects: []string{"Banana"},
		scale:   1,
	}
	if err := c.runRender(ctx, input, opts); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	svg, err := os.ReadFile(out + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), `fill="`+widget.DefaultActiveColor+`"`) {
		t.Error("selected node should be drawn active")
	}
	for _, ext := range []string{".json", ".dot"} {
		if _, err := os.Stat(out + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}

	// A second run with the default config is served from the cache.
	if err := c.runRender(ctx, input, opts); err != nil {
		t.Fatalf("cached runRender: %v", err)
	}
	again, _ := os.ReadFile(out + ".svg")
	if !bytes.Equal(svg, again) {
		t.Error("cached render differs")
	}
	store, err := newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	files, err := filepath.Glob(filepath.Join(store.(*cache.FileCache).Dir(), "*", "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != len(opts.formats) {
		t.Errorf("cache holds %d entries after two runs, want %d", len(files), len(opts.formats))
	}
}

func TestDefaultConfigRenderKeyStable(t *testing.T) {
	t.Chdir(t.TempDir())
	root, err := tree.ReadJSON(strings.NewReader(fruitJSON))
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for range 2 {
		cfg, err := loadConfig("", quietLogger())
		if err != nil {
			t.Fatal(err)
		}
		ctrl, err := mountChart(root, cfg.Widget, nil, quietLogger())
		if err != nil {
			t.Fatal(err)
		}
		snap := ctrl.Snapshot()
		if snap.ElementID != widget.DefaultElementID {
			t.Errorf("element id = %q, want %q", snap.ElementID, widget.DefaultElementID)
		}
		keys = append(keys, cache.RenderKey(renderState{Snapshot: render.NewDocument(snap), Tree: snap.Tree, Scale: 1}, "svg"))
	}
	if keys[0] != keys[1] {
		t.Errorf("render keys differ across loads: %s vs %s", keys[0], keys[1])
	}
}

func TestRunRenderMissingInput(t *testing.T) {
	t.Chdir(t.TempDir())
	c := New(&bytes.Buffer{}, log.InfoLevel)
	err := c.runRender(context.Background(), "missing.json", &renderOpts{formats: []render.Format{render.FormatSVG}, noCache: true})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRunRenderRejectsBadPaths(t *testing.T) {
	t.Chdir(t.TempDir())
	input := writeFile(t, "fruit.json", fruitJSON)
	c := New(&bytes.Buffer{}, log.InfoLevel)

	tests := []struct {
		name   string
		input  string
		output string
	}{
		{"empty input", "", ""},
		{"control byte in input", "bad\x00.json", ""},
		{"control byte in output", input, "out\nchart.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &renderOpts{output: tt.output, formats: []render.Format{render.FormatSVG}, noCache: true}
			if err := c.runRender(context.Background(), tt.input, opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
	if _, err := os.Stat("out\nchart.svg"); !os.IsNotExist(err) {
		t.Error("nothing should be written for a rejected output path")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	for _, name := range []string{"render", "serve", "tui", "inspect", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
