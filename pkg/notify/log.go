package notify

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogNotifier writes one info line per emission.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier returns a notifier that logs to l, or to the default
// logger when l is nil.
func NewLogNotifier(l *log.Logger) *LogNotifier {
	if l == nil {
		l = log.Default()
	}
	return &LogNotifier{logger: l.WithPrefix("notify")}
}

// Emit logs the event.
func (n *LogNotifier) Emit(_ context.Context, key, value string, opts Options) error {
	n.logger.Info("event", "key", key, "value", value, "priority", string(opts.Priority))
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
