// Package tree provides the hierarchical dataset drawn by the bubble chart.
//
// A [Node] is a named, weighted, colored element. Leaves carry the weight
// consumed by the packing layout; internal nodes only group their children.
// Node names are the identity key: they are unique across a well-formed
// tree and they are what the widget reports to its host.
//
// # Immutability
//
// Trees handed to the widget are treated as immutable values. [Update]
// never mutates its input: it copies the nodes on the path from the root to
// the target and shares every other subtree with the original. The
// difference between the old and new tree is therefore exactly the target
// node and its ancestors' child slices.
//
//	next, ok := tree.Update(root, "A", func(n tree.Node) tree.Node {
//	    n.Color = "#8b0000"
//	    return n
//	})
//
// # Lookup
//
// [Find] is a depth-first search in child declaration order that returns
// the first match. Malformed trees with duplicate names are tolerated: the
// first occurrence wins everywhere, and [Validate] reports the duplicates.
//
// # JSON
//
//	{
//	  "name": "root",
//	  "children": [
//	    {"name": "A", "color": "#ff5f56", "labelColor": "#ffffff", "loc": 11}
//	  ]
//	}
//
// The weight is read from "loc"; "value" is accepted as an alias.
package tree
