package widget

import "github.com/matzehuels/bubblechart/pkg/tree"

// ApplyPalette returns a copy of root in which leaves without a color take
// cfg.MainColor and leaves without a label color take cfg.LabelColor.
// Loaded data files often omit both. root is not modified and subtrees
// that need no change are shared.
func ApplyPalette(root *tree.Node, cfg Config) *tree.Node {
	if root == nil {
		return nil
	}
	if root.IsLeaf() {
		if root.Color != "" && root.LabelColor != "" {
			return root
		}
		n := *root
		if n.Color == "" {
			n.Color = cfg.MainColor
		}
		if n.LabelColor == "" {
			n.LabelColor = cfg.LabelColor
		}
		return &n
	}

	var children []*tree.Node
	for i, c := range root.Children {
		pc := ApplyPalette(c, cfg)
		if pc != c && children == nil {
			children = make([]*tree.Node, len(root.Children))
			copy(children, root.Children[:i])
		}
		if children != nil {
			children[i] = pc
		}
	}
	if children == nil {
		return root
	}
	n := *root
	n.Children = children
	return &n
}
