package pack

import "math"

type circle struct {
	X, Y, R float64
}

type chainNode struct {
	c          *circle
	next, prev *chainNode
}

// place positions c tangent to both a and b.
func place(b, a, c *circle) {
	dx, dy := b.X-a.X, b.Y-a.Y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		c.X = a.X + c.R
		c.Y = a.Y
		return
	}
	a2 := (a.R + c.R) * (a.R + c.R)
	b2 := (b.R + c.R) * (b.R + c.R)
	if a2 > b2 {
		x := (d2 + b2 - a2) / (2 * d2)
		y := math.Sqrt(math.Max(0, b2/d2-x*x))
		c.X = b.X - x*dx - y*dy
		c.Y = b.Y - x*dy + y*dx
	} else {
		x := (d2 + a2 - b2) / (2 * d2)
		y := math.Sqrt(math.Max(0, a2/d2-x*x))
		c.X = a.X + x*dx - y*dy
		c.Y = a.Y + x*dy + y*dx
	}
}

func intersects(a, b *circle) bool {
	dr := a.R + b.R - 1e-6
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

// score is the squared distance from the origin to the weighted midpoint
// of a chain node and its successor.
func score(n *chainNode) float64 {
	a, b := n.c, n.next.c
	ab := a.R + b.R
	dx := (a.X*b.R + b.X*a.R) / ab
	dy := (a.Y*b.R + b.Y*a.R) / ab
	return dx*dx + dy*dy
}

// packSiblings places circles without overlap around the origin, in
// order, and returns the radius of their enclosing circle. On return the
// enclosing circle is centered on the origin.
func packSiblings(circles []*circle) float64 {
	n := len(circles)
	if n == 0 {
		return 0
	}

	a := circles[0]
	a.X, a.Y = 0, 0
	if n == 1 {
		return a.R
	}

	b := circles[1]
	a.X = -b.R
	b.X, b.Y = a.R, 0
	if n == 2 {
		return a.R + b.R
	}

	place(b, a, circles[2])

	na, nb, nc := &chainNode{c: a}, &chainNode{c: b}, &chainNode{c: circles[2]}
	na.next, nc.prev = nb, nb
	nb.next, na.prev = nc, nc
	nc.next, nb.prev = na, na

pack:
	for i := 3; i < n; i++ {
		place(na.c, nb.c, circles[i])
		nc = &chainNode{c: circles[i]}

		// Find the closest intersecting circle on the front chain, if any,
		// searching both directions by accumulated radius.
		j, k := nb.next, na.prev
		sj, sk := nb.c.R, na.c.R
		for {
			if sj <= sk {
				if intersects(j.c, nc.c) {
					nb = j
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sj += j.c.R
				j = j.next
			} else {
				if intersects(k.c, nc.c) {
					na = k
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sk += k.c.R
				k = k.prev
			}
			if j == k.next {
				break
			}
		}

		// Insert c between a and b.
		nc.prev, nc.next = na, nb
		na.next, nb.prev = nc, nc
		nb = nc

		// The next placement starts at the chain pair closest to the centroid.
		aa := score(na)
		for c := nc.next; c != nb; c = c.next {
			if ca := score(c); ca < aa {
				na, aa = c, ca
			}
		}
		nb = na.next
	}

	chain := []*circle{nb.c}
	for c := nb.next; c != nb; c = c.next {
		chain = append(chain, c.c)
	}
	e := enclose(chain)

	for _, c := range circles {
		c.X -= e.X
		c.Y -= e.Y
	}
	return e.R
}
