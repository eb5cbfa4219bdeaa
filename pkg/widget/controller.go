package widget

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bubblechart/pkg/errors"
	"github.com/matzehuels/bubblechart/pkg/notify"
	"github.com/matzehuels/bubblechart/pkg/observability"
	"github.com/matzehuels/bubblechart/pkg/tree"
)

// DeselectEvent is the payload sent to the host when a selected node is
// clicked again.
const DeselectEvent = "DESELECT_EVENT"

// EventKey returns the host event name for a widget.
func EventKey(elementID string) string {
	return elementID + "_clicked"
}

// ClickResult describes the outcome of a click.
type ClickResult struct {
	// Found is false when the clicked name is not in the tree.
	Found bool

	// Selected is true when the click selected the node, false when it
	// deselected it.
	Selected bool

	// Payload is the value reported to the host.
	Payload string
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the host bridge. A nil notifier disables emission.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Controller holds the widget state. See the package documentation for
// the click protocol.
type Controller struct {
	cfg      Config
	notifier notify.Notifier
	logger   *log.Logger

	tree     *tree.Node
	selected string
	hovered  string
	version  uint64

	subs    []subscriber
	nextSub int
}

// New mounts root with cfg. Zero config fields take their defaults. The
// caller must not mutate root afterwards.
func New(root *tree.Node, cfg Config, opts ...Option) (*Controller, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "cannot mount an empty tree")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{cfg: cfg, tree: root, logger: log.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("element", cfg.ElementID)
	return c, nil
}

// Config returns the mounted configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// FindNode looks name up in the current tree.
func (c *Controller) FindNode(name string) (*tree.Node, bool) {
	return tree.Find(c.tree, name)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		ElementID: c.cfg.ElementID,
		Tree:      c.tree,
		Selected:  c.selected,
		Hovered:   c.hovered,
		Version:   c.version,
		cfg:       c.cfg,
	}
}

// Click toggles the selection of name and notifies the host.
func (c *Controller) Click(ctx context.Context, name string) ClickResult {
	target, ok := tree.Find(c.tree, name)
	observability.Widget().OnClick(ctx, c.cfg.ElementID, name, ok)
	if !ok {
		c.logger.Debug("click ignored, node not found", "name", name)
		return ClickResult{}
	}

	next := c.tree
	if c.selected != "" && c.selected != name {
		next, _ = tree.Update(next, c.selected, func(n tree.Node) tree.Node {
			n.Color = c.cfg.MainColor
			n.LabelColor = c.cfg.LabelColor
			return n
		})
	}

	wasActive := target.Color == c.cfg.ActiveColor
	payload := name
	if wasActive {
		payload = DeselectEvent
	}
	c.emit(ctx, payload)

	next, _ = tree.Update(next, name, func(n tree.Node) tree.Node {
		if wasActive {
			n.Color = c.cfg.MainColor
			n.LabelColor = c.cfg.LabelColor
		} else {
			n.Color = c.cfg.ActiveColor
			n.LabelColor = c.cfg.MainColor
		}
		return n
	})

	c.selected = name
	c.tree = next
	c.logger.Debug("click", "name", name, "selected", !wasActive)
	c.publish()

	return ClickResult{Found: true, Selected: !wasActive, Payload: payload}
}

// emit reports payload to the host. Delivery failures are logged, never
// returned: a broken host bridge must not break the widget.
func (c *Controller) emit(ctx context.Context, payload string) {
	if c.notifier == nil {
		c.logger.Debug("no host bridge, skipping emission", "payload", payload)
		return
	}
	key := EventKey(c.cfg.ElementID)
	err := c.notifier.Emit(ctx, key, payload, notify.Options{Priority: notify.PriorityEvent})
	observability.Widget().OnEmit(ctx, key, payload, err)
	if err != nil {
		c.logger.Warn("host notification failed", "key", key, "payload", payload, "err", err)
	}
}

// Hover marks name as hovered. Hovering does not touch the tree and emits
// nothing.
func (c *Controller) Hover(ctx context.Context, name string) {
	if c.hovered == name {
		return
	}
	c.hovered = name
	observability.Widget().OnHover(ctx, c.cfg.ElementID, name)
	c.publish()
}

// Unhover clears the hovered node.
func (c *Controller) Unhover(ctx context.Context) {
	c.Hover(ctx, "")
}

// Mount replaces the tree and clears selection and hover, as if the widget
// had been mounted afresh.
func (c *Controller) Mount(root *tree.Node) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvalidTree, "cannot mount an empty tree")
	}
	c.tree = root
	c.selected = ""
	c.hovered = ""
	c.publish()
	return nil
}

// Subscribe registers fn to receive every new snapshot. Subscribers are
// called synchronously, in subscription order, and must not call back into
// the controller. The returned function cancels the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) publish() {
	c.version++
	snap := c.Snapshot()
	for _, s := range c.subs {
		s.fn(snap)
	}
}
