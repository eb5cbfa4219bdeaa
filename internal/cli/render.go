package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bubblechart/pkg/cache"
	"github.com/matzehuels/bubblechart/pkg/errors"
	"github.com/matzehuels/bubblechart/pkg/notify"
	"github.com/matzehuels/bubblechart/pkg/render"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string          // output file path (or base path for multiple outputs)
	formats []render.Format // output formats
	selects []string        // nodes to click before rendering, in order
	hover   string          // node to hover before rendering
	scale   float64         // PNG resolution multiplier
	width   float64         // frame width override
	height  float64         // frame height override
	noCache bool            // bypass the render cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 1}

	cmd := &cobra.Command{
		Use:               "render [file]",
		Short:             "Render a chart to SVG, PNG, JSON, DOT, or a hierarchy diagram",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, dot, hierarchy (comma-separated)")
	cmd.Flags().StringArrayVar(&opts.selects, "select", nil, "click a node before rendering (repeatable)")
	cmd.Flags().StringVar(&opts.hover, "hover", "", "hover a node before rendering")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG resolution multiplier")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "frame width (overrides config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "frame height (overrides config)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file written for format f.
func outputPath(opts *renderOpts, input string, f render.Format) string {
	if opts.output != "" && len(opts.formats) == 1 {
		return opts.output
	}
	return basePath(opts.output, input) + "." + f.Ext()
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if err := errors.ValidatePath(input); err != nil {
		return err
	}
	if opts.output != "" {
		if err := errors.ValidatePath(opts.output); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(c.configPath, logger)
	if err != nil {
		return err
	}
	if opts.width > 0 {
		cfg.Widget.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Widget.Height = opts.height
	}

	root, err := loadTree(ctx, input)
	if err != nil {
		return err
	}

	// Only clicks emit, so the sinks are dialed only when there are some.
	var sinks notify.Notifier
	if len(opts.selects) > 0 {
		n, closeSinks, err := buildNotifier(ctx, cfg.Notify, logger)
		if err != nil {
			return err
		}
		defer closeSinks()
		sinks = n
	}
	ctrl, err := mountChart(root, cfg.Widget, sinks, logger)
	if err != nil {
		return err
	}

	for _, name := range opts.selects {
		if res := ctrl.Click(ctx, name); !res.Found {
			printWarning("No node named %q", name)
		}
	}
	if opts.hover != "" {
		ctrl.Hover(ctx, opts.hover)
	}

	store, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	snap := ctrl.Snapshot()
	for _, f := range opts.formats {
		path := outputPath(opts, input, f)
		data, cached, err := renderCached(ctx, store, snap, f, opts)
		if err != nil {
			return fmt.Errorf("render %s: %w", f, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		logger.Debug("wrote output", "format", f, "bytes", len(data), "cached", cached)
		printFile(path)
	}

	prog.done(fmt.Sprintf("Rendered %d file(s)", len(opts.formats)))
	return nil
}

// renderState is everything the output of a render depends on.
type renderState struct {
	Snapshot render.Document
	Tree     any
	Scale    float64
}

// renderCached renders through the cache. The second result reports a
// cache hit.
func renderCached(ctx context.Context, store cache.Cache, snap widget.Snapshot, f render.Format, opts *renderOpts) ([]byte, bool, error) {
	key := cache.RenderKey(renderState{Snapshot: render.NewDocument(snap), Tree: snap.Tree, Scale: opts.scale}, string(f))
	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}

	data, err := render.Bytes(ctx, snap, f, render.Options{Scale: opts.scale})
	if err != nil {
		return nil, false, err
	}
	if err := store.Set(ctx, key, data, 0); err != nil {
		loggerFromContext(ctx).Warn("cache write failed", "error", err)
	}
	return data, false, nil
}
