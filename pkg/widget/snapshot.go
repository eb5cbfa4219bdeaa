package widget

import "github.com/matzehuels/bubblechart/pkg/tree"

// Transparent is the fill of a hovered leaf.
const Transparent = "transparent"

// Snapshot is an immutable view of the controller state.
type Snapshot struct {
	ElementID string
	Tree      *tree.Node
	Selected  string
	Hovered   string
	Version   uint64

	cfg Config
}

// Config returns the configuration the snapshot was produced with.
func (s Snapshot) Config() Config {
	return s.cfg
}

// Fill resolves the drawn fill of n.
func (s Snapshot) Fill(n *tree.Node) string {
	if s.Hovered != "" && n.Name == s.Hovered {
		return Transparent
	}
	return n.Color
}

// Label resolves the drawn label color of n.
func (s Snapshot) Label(n *tree.Node) string {
	if s.Hovered != "" && n.Name == s.Hovered {
		return s.cfg.HoverLabelColor
	}
	return n.LabelColor
}

// Active returns the selected node name when that node currently carries
// the active color. After a deselect, Selected still names the last
// clicked node but Active reports false.
func (s Snapshot) Active() (string, bool) {
	if s.Selected == "" {
		return "", false
	}
	n, ok := tree.Find(s.Tree, s.Selected)
	if !ok || n.Color != s.cfg.ActiveColor {
		return "", false
	}
	return s.Selected, true
}
