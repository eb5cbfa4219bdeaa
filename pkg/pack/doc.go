// Package pack computes circle-packing layouts for a tree.
//
// Leaves become circles whose area is proportional to their weight; each
// internal node becomes the smallest circle enclosing its packed children,
// grown by a padding ring. The result is scaled to fit a frame and offset
// by margins.
//
// Sibling circles are placed with the front-chain algorithm (Wang et al.,
// "Visualization of large hierarchical data by circle packing", 2006): each
// new circle is placed tangent to two circles of the current front chain,
// as close to the chain's centroid as possible, and the chain is repaired
// whenever the candidate position intersects it. The enclosing circle is
// found with Welzl's randomized algorithm, seeded deterministically so a
// given tree always yields the same layout.
//
//	circles := pack.Layout(root, pack.Options{
//	    Width: 600, Height: 400,
//	    Padding: 8,
//	    Margins: pack.Uniform(20),
//	    LeavesOnly: true,
//	})
package pack
