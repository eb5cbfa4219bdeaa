// Package widget implements the selection/hover controller behind the
// bubble chart.
//
// A [Controller] owns the current tree, the name of the selected node and
// the name of the hovered node. Clicks toggle a leaf between the main and
// the active color and report the change to the host through an injected
// [notify.Notifier]; hovers only change how a leaf is drawn.
//
// # Click protocol
//
// For a click on name:
//
//  1. Unknown names are ignored: no state change, no emission.
//  2. A different, previously selected node is reset to the main color and
//     the configured label color.
//  3. If the clicked node already has the active color it is deselected and
//     the host receives [DeselectEvent]; otherwise it is selected and the
//     host receives its name. The event key is [EventKey](ElementID).
//  4. The clicked node becomes the selected node.
//
// # Snapshots
//
// Every state change produces a new immutable [Snapshot] that is pushed
// synchronously to subscribers. Trees inside snapshots are never mutated;
// updates copy only the changed path (see tree.Update). Renderers resolve
// per-node colors through [Snapshot.Fill] and [Snapshot.Label], which apply
// the hover override.
//
// # Concurrency
//
// A Controller is not safe for concurrent use. Hosts deliver pointer events
// one at a time, in order, as a UI thread would.
//
// [notify.Notifier]: github.com/matzehuels/bubblechart/pkg/notify.Notifier
package widget
