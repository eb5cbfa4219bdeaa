package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bubblechart/pkg/notify"
	"github.com/matzehuels/bubblechart/pkg/tree"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

// loadTree imports a data file and logs every validation problem. Problems
// are warnings: duplicate names resolve to the first match.
func loadTree(ctx context.Context, path string) (*tree.Node, error) {
	logger := loggerFromContext(ctx)

	root, err := tree.ImportJSON(path)
	if err != nil {
		return nil, err
	}
	for _, p := range tree.Validate(root) {
		logger.Warn("tree problem", "error", p)
	}
	logger.Debugf("Loaded %s: %d nodes, %d leaves, depth %d", path, tree.Count(root), len(tree.Leaves(root)), tree.Depth(root))
	return root, nil
}

// mountChart creates a controller for root with the configured palette
// applied to uncolored leaves.
func mountChart(root *tree.Node, cfg widget.Config, n notify.Notifier, logger *log.Logger) (*widget.Controller, error) {
	cfg.SetDefaults()
	return widget.New(widget.ApplyPalette(root, cfg), cfg,
		widget.WithNotifier(n),
		widget.WithLogger(logger),
	)
}
