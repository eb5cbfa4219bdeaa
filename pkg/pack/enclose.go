package pack

import (
	"math"
	"slices"
)

// lcg is the deterministic random source used to shuffle circles before
// computing their enclosing circle.
type lcg struct{ s uint64 }

func newLCG() *lcg { return &lcg{s: 1} }

func (g *lcg) next() float64 {
	const (
		a = 1664525
		c = 1013904223
		m = 4294967296
	)
	g.s = (a*g.s + c) % m
	return float64(g.s) / m
}

func shuffle(circles []*circle, rnd *lcg) {
	for m := len(circles); m > 0; {
		i := int(rnd.next() * float64(m))
		m--
		circles[m], circles[i] = circles[i], circles[m]
	}
}

// enclose returns the smallest circle enclosing all circles.
func enclose(circles []*circle) circle {
	shuffled := slices.Clone(circles)
	shuffle(shuffled, newLCG())

	var (
		e     circle
		have  bool
		basis []*circle
	)
	// Welzl's algorithm terminates in expected linear time; the guard only
	// protects against pathological floating point input.
	limit := 100 + 10*len(shuffled)*len(shuffled)
	for i, steps := 0, 0; i < len(shuffled) && steps < limit; steps++ {
		p := shuffled[i]
		if have && enclosesWeak(e, *p) {
			i++
			continue
		}
		basis = extendBasis(basis, p)
		e, have = encloseBasis(basis), true
		i = 0
	}
	return e
}

func extendBasis(basis []*circle, p *circle) []*circle {
	if enclosesWeakAll(*p, basis) {
		return []*circle{p}
	}

	for _, b := range basis {
		if enclosesNot(*p, *b) && enclosesWeakAll(encloseBasis2(*b, *p), basis) {
			return []*circle{b, p}
		}
	}

	for i := 0; i < len(basis)-1; i++ {
		for j := i + 1; j < len(basis); j++ {
			bi, bj := *basis[i], *basis[j]
			if enclosesNot(encloseBasis2(bi, bj), *p) &&
				enclosesNot(encloseBasis2(bi, *p), bj) &&
				enclosesNot(encloseBasis2(bj, *p), bi) &&
				enclosesWeakAll(encloseBasis3(bi, bj, *p), basis) {
				return []*circle{basis[i], basis[j], p}
			}
		}
	}

	// Numerically degenerate input: fall back to restarting from p.
	return []*circle{p}
}

func enclosesNot(a, b circle) bool {
	dr := a.R - b.R
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr < 0 || dr*dr < dx*dx+dy*dy
}

func enclosesWeak(a, b circle) bool {
	dr := a.R - b.R + math.Max(math.Max(a.R, b.R), 1)*1e-9
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

func enclosesWeakAll(a circle, basis []*circle) bool {
	for _, b := range basis {
		if !enclosesWeak(a, *b) {
			return false
		}
	}
	return true
}

func encloseBasis(basis []*circle) circle {
	switch len(basis) {
	case 1:
		return *basis[0]
	case 2:
		return encloseBasis2(*basis[0], *basis[1])
	default:
		return encloseBasis3(*basis[0], *basis[1], *basis[2])
	}
}

func encloseBasis2(a, b circle) circle {
	x21, y21, r21 := b.X-a.X, b.Y-a.Y, b.R-a.R
	l := math.Sqrt(x21*x21 + y21*y21)
	if l == 0 {
		return circle{X: a.X, Y: a.Y, R: math.Max(a.R, b.R)}
	}
	return circle{
		X: (a.X + b.X + x21/l*r21) / 2,
		Y: (a.Y + b.Y + y21/l*r21) / 2,
		R: (l + a.R + b.R) / 2,
	}
}

func encloseBasis3(a, b, c circle) circle {
	x1, y1, r1 := a.X, a.Y, a.R
	x2, y2, r2 := b.X, b.Y, b.R
	x3, y3, r3 := c.X, c.Y, c.R

	a2, a3 := x1-x2, x1-x3
	b2, b3 := y1-y2, y1-y3
	c2, c3 := r2-r1, r3-r1
	d1 := x1*x1 + y1*y1 - r1*r1
	d2 := d1 - x2*x2 - y2*y2 + r2*r2
	d3 := d1 - x3*x3 - y3*y3 + r3*r3
	ab := a3*b2 - a2*b3
	xa := (b2*d3-b3*d2)/(ab*2) - x1
	xb := (b3*c2 - b2*c3) / ab
	ya := (a3*d2-a2*d3)/(ab*2) - y1
	yb := (a2*c3 - a3*c2) / ab
	qa := xb*xb + yb*yb - 1
	qb := 2 * (r1 + xa*xb + ya*yb)
	qc := xa*xa + ya*ya - r1*r1

	var r float64
	if math.Abs(qa) > 1e-6 {
		r = -(qb + math.Sqrt(qb*qb-4*qa*qc)) / (2 * qa)
	} else {
		r = -(qc / qb)
	}
	return circle{X: x1 + xa + xb*r, Y: y1 + ya + yb*r, R: r}
}
