package pack

import (
	"math"

	"github.com/matzehuels/bubblechart/pkg/tree"
)

// Margins reserve space around the packed circles.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Uniform returns equal margins on every side.
func Uniform(m float64) Margins {
	return Margins{Top: m, Right: m, Bottom: m, Left: m}
}

// Options configures Layout.
type Options struct {
	Width, Height float64
	Padding       float64
	Margins       Margins

	// LeavesOnly drops internal nodes from the result.
	LeavesOnly bool
}

// Circle is a positioned node. Coordinates are absolute within the frame.
type Circle struct {
	Node  *tree.Node
	X, Y  float64
	R     float64
	Depth int
}

// Contains reports whether the point lies inside the circle.
func (c Circle) Contains(x, y float64) bool {
	dx, dy := x-c.X, y-c.Y
	return dx*dx+dy*dy <= c.R*c.R
}

// IsLeaf reports whether the circle represents a leaf node.
func (c Circle) IsLeaf() bool {
	return c.Node.IsLeaf()
}

type pnode struct {
	circle
	src      *tree.Node
	depth    int
	children []*pnode
}

func build(n *tree.Node, depth int) *pnode {
	p := &pnode{src: n, depth: depth}
	if n.IsLeaf() {
		w := n.Weight
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			w = 0
		}
		p.R = math.Sqrt(w)
		return p
	}
	for _, c := range n.Children {
		p.children = append(p.children, build(c, depth+1))
	}
	return p
}

// packChildren computes internal radii bottom-up. Children are padded by
// pad while packing, so the ring around each internal node is pad wide.
func packChildren(p *pnode, pad float64) {
	if len(p.children) == 0 {
		return
	}
	for _, c := range p.children {
		packChildren(c, pad)
	}
	circles := make([]*circle, len(p.children))
	for i, c := range p.children {
		c.R += pad
		circles[i] = &c.circle
	}
	e := packSiblings(circles)
	for _, c := range p.children {
		c.R -= pad
	}
	p.R = e + pad
}

// translate converts child coordinates, relative to their parent, into
// absolute coordinates scaled by k.
func translate(p *pnode, k float64) {
	for _, c := range p.children {
		c.R *= k
		c.X = p.X + k*c.X
		c.Y = p.Y + k*c.Y
		translate(c, k)
	}
}

// Layout packs root into the frame described by opts. Circles are
// returned in depth-first pre-order.
func Layout(root *tree.Node, opts Options) []Circle {
	if root == nil {
		return nil
	}
	dx := opts.Width - opts.Margins.Left - opts.Margins.Right
	dy := opts.Height - opts.Margins.Top - opts.Margins.Bottom
	size := math.Min(dx, dy)

	p := build(root, 0)
	p.X, p.Y = dx/2, dy/2

	// Pack once without padding to learn the natural scale, then again
	// with the padding expressed in that scale.
	packChildren(p, 0)
	if p.R > 0 && size > 0 {
		packChildren(p, opts.Padding*p.R/size)
	}

	if p.R > 0 && size > 0 {
		k := size / (2 * p.R)
		p.R *= k
		translate(p, k)
	} else {
		collapse(p)
	}

	var out []Circle
	var emit func(*pnode)
	emit = func(n *pnode) {
		if !opts.LeavesOnly || len(n.children) == 0 {
			out = append(out, Circle{
				Node:  n.src,
				X:     n.X + opts.Margins.Left,
				Y:     n.Y + opts.Margins.Top,
				R:     n.R,
				Depth: n.depth,
			})
		}
		for _, c := range n.children {
			emit(c)
		}
	}
	emit(p)
	return out
}

// collapse places every node at the root center with zero radius. It is
// used when the tree carries no weight or the frame has no room.
func collapse(p *pnode) {
	for _, c := range p.children {
		c.X, c.Y, c.R = p.X, p.Y, 0
		collapse(c)
	}
	p.R = 0
}

// HitTest returns the deepest circle containing the point. Zero-radius
// circles are never hit.
func HitTest(circles []Circle, x, y float64) (Circle, bool) {
	var (
		best  Circle
		found bool
	)
	for _, c := range circles {
		if c.R <= 0 || !c.Contains(x, y) {
			continue
		}
		if !found || c.Depth > best.Depth || (c.Depth == best.Depth && c.R < best.R) {
			best, found = c, true
		}
	}
	return best, found
}
