package tree

import (
	"math"
	"slices"

	"github.com/matzehuels/bubblechart/pkg/errors"
)

// Node is one element of the chart hierarchy.
type Node struct {
	Name       string
	Color      string
	LabelColor string
	Weight     float64
	Children   []*Node
}

// IsLeaf reports whether n has no children. Only leaves are drawn.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Find returns the first node named name in depth-first, declaration order.
func Find(root *Node, name string) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.Name == name {
		return root, true
	}
	for _, c := range root.Children {
		if n, ok := Find(c, name); ok {
			return n, true
		}
	}
	return nil, false
}

// path returns the child indices leading from root to the first node named
// name, following the same search order as Find.
func path(root *Node, name string) ([]int, bool) {
	if root == nil {
		return nil, false
	}
	if root.Name == name {
		return []int{}, true
	}
	for i, c := range root.Children {
		if p, ok := path(c, name); ok {
			return append([]int{i}, p...), true
		}
	}
	return nil, false
}

// Update returns a new tree in which the first node named name is replaced
// by fn applied to a copy of it. Nodes on the root-to-target path are
// copied; all other subtrees are shared with root. On a miss Update returns
// root unchanged and false.
func Update(root *Node, name string, fn func(Node) Node) (*Node, bool) {
	p, ok := path(root, name)
	if !ok {
		return root, false
	}
	return rebuild(root, p, fn), true
}

func rebuild(n *Node, p []int, fn func(Node) Node) *Node {
	if len(p) == 0 {
		next := fn(*n)
		return &next
	}
	cp := *n
	cp.Children = slices.Clone(n.Children)
	cp.Children[p[0]] = rebuild(n.Children[p[0]], p[1:], fn)
	return &cp
}

// Walk visits every node in depth-first pre-order. Returning false from fn
// skips the node's children.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Leaves returns the leaf nodes in declaration order.
func Leaves(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node, _ int) bool {
		if n.IsLeaf() {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	count := 0
	Walk(root, func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the maximum depth of the tree; a lone root has depth 0.
func Depth(root *Node) int {
	if root == nil {
		return 0
	}
	maxDepth := 0
	Walk(root, func(_ *Node, d int) bool {
		maxDepth = max(maxDepth, d)
		return true
	})
	return maxDepth
}

// TotalWeight sums the weights of all leaves.
func TotalWeight(root *Node) float64 {
	total := 0.0
	for _, l := range Leaves(root) {
		if l.Weight > 0 {
			total += l.Weight
		}
	}
	return total
}

// Validate checks the structural invariants of a tree: every name is
// usable and unique, and weights are finite and non-negative. It returns
// every problem in walk order; nil means the tree is well formed.
func Validate(root *Node) (problems []error) {
	if root == nil {
		return []error{errors.New(errors.ErrCodeInvalidTree, "tree is empty")}
	}
	seen := make(map[string]bool)
	Walk(root, func(n *Node, _ int) bool {
		if err := errors.ValidateNodeName(n.Name); err != nil {
			problems = append(problems, err)
		} else if seen[n.Name] {
			problems = append(problems, errors.New(errors.ErrCodeInvalidTree, "duplicate node name %q", n.Name))
		}
		seen[n.Name] = true

		if math.IsNaN(n.Weight) || math.IsInf(n.Weight, 0) {
			problems = append(problems, errors.New(errors.ErrCodeInvalidTree, "node %q has a non-finite weight", n.Name))
		} else if n.Weight < 0 {
			problems = append(problems, errors.New(errors.ErrCodeInvalidTree, "node %q has a negative weight", n.Name))
		}
		return true
	})
	return problems
}
