package pack

import (
	"fmt"
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/bubblechart/pkg/tree"
)

const eps = 1e-6

func leaves(weights ...float64) *tree.Node {
	root := &tree.Node{Name: "root"}
	for i, w := range weights {
		root.Children = append(root.Children, &tree.Node{Name: fmt.Sprintf("l%d", i), Weight: w})
	}
	return root
}

func defaultOpts() Options {
	return Options{Width: 600, Height: 400, Padding: 8, Margins: Uniform(20), LeavesOnly: true}
}

func assertInside(t testing.TB, circles []Circle, opts Options) {
	t.Helper()
	for _, c := range circles {
		if c.X-c.R < opts.Margins.Left-eps || c.X+c.R > opts.Width-opts.Margins.Right+eps ||
			c.Y-c.R < opts.Margins.Top-eps || c.Y+c.R > opts.Height-opts.Margins.Bottom+eps {
			t.Errorf("circle %s (%.2f,%.2f r=%.2f) leaves the frame", c.Node.Name, c.X, c.Y, c.R)
		}
	}
}

func assertNoOverlap(t testing.TB, circles []Circle) {
	t.Helper()
	for i := range circles {
		for j := i + 1; j < len(circles); j++ {
			a, b := circles[i], circles[j]
			d := math.Hypot(a.X-b.X, a.Y-b.Y)
			if d < a.R+b.R-1e-3 {
				t.Errorf("%s and %s overlap: distance %.3f < %.3f", a.Node.Name, b.Node.Name, d, a.R+b.R)
			}
		}
	}
}

func TestLayoutSingleLeafFillsFrame(t *testing.T) {
	opts := defaultOpts()
	circles := Layout(&tree.Node{Name: "only", Weight: 5}, opts)
	if len(circles) != 1 {
		t.Fatalf("got %d circles", len(circles))
	}
	c := circles[0]
	if math.Abs(c.R-180) > eps {
		t.Errorf("R = %v, want 180 (half of the 360px inner height)", c.R)
	}
	if math.Abs(c.X-300) > eps || math.Abs(c.Y-200) > eps {
		t.Errorf("center = (%v, %v), want (300, 200)", c.X, c.Y)
	}
}

func TestLayoutLeavesOnly(t *testing.T) {
	root := &tree.Node{Name: "root", Children: []*tree.Node{
		{Name: "a", Weight: 1},
		{Name: "g", Children: []*tree.Node{{Name: "b", Weight: 2}, {Name: "c", Weight: 3}}},
	}}

	all := Layout(root, Options{Width: 400, Height: 400})
	if len(all) != 5 {
		t.Fatalf("full layout has %d circles, want 5", len(all))
	}
	if all[0].Node.Name != "root" || all[0].Depth != 0 {
		t.Errorf("first circle should be the root, got %s", all[0].Node.Name)
	}

	opts := Options{Width: 400, Height: 400, LeavesOnly: true}
	got := Layout(root, opts)
	var names []string
	for _, c := range got {
		names = append(names, c.Node.Name)
	}
	if fmt.Sprint(names) != "[a b c]" {
		t.Errorf("leaves = %v, want [a b c]", names)
	}
}

func TestLayoutChildrenInsideParents(t *testing.T) {
	root := &tree.Node{Name: "root", Children: []*tree.Node{
		{Name: "g1", Children: []*tree.Node{{Name: "a", Weight: 4}, {Name: "b", Weight: 9}}},
		{Name: "g2", Children: []*tree.Node{{Name: "c", Weight: 1}, {Name: "d", Weight: 1}, {Name: "e", Weight: 2}}},
	}}
	circles := Layout(root, Options{Width: 500, Height: 500, Padding: 4})

	byName := map[string]Circle{}
	for _, c := range circles {
		byName[c.Node.Name] = c
	}
	parent := map[string]string{"a": "g1", "b": "g1", "c": "g2", "d": "g2", "e": "g2", "g1": "root", "g2": "root"}
	for child, p := range parent {
		c, pc := byName[child], byName[p]
		if math.Hypot(c.X-pc.X, c.Y-pc.Y)+c.R > pc.R+1e-3 {
			t.Errorf("%s is not inside %s", child, p)
		}
	}
}

func TestLayoutRadiiFollowWeights(t *testing.T) {
	circles := Layout(leaves(1, 4, 9), defaultOpts())
	if len(circles) != 3 {
		t.Fatalf("got %d circles", len(circles))
	}
	r0 := circles[0].R
	for i, want := range []float64{1, 2, 3} {
		if math.Abs(circles[i].R/r0-want) > 1e-6 {
			t.Errorf("circle %d radius ratio = %v, want %v", i, circles[i].R/r0, want)
		}
	}
	assertNoOverlap(t, circles)
	assertInside(t, circles, defaultOpts())
}

func TestLayoutPaddingSeparatesSiblings(t *testing.T) {
	circles := Layout(leaves(1, 1), defaultOpts())
	a, b := circles[0], circles[1]
	gap := math.Hypot(a.X-b.X, a.Y-b.Y) - a.R - b.R
	if gap <= 0 {
		t.Errorf("padded siblings should not touch, gap = %v", gap)
	}
}

func TestLayoutZeroWeights(t *testing.T) {
	circles := Layout(leaves(0, 0, 0), defaultOpts())
	for _, c := range circles {
		if c.R != 0 || math.IsNaN(c.X) || math.IsNaN(c.Y) {
			t.Errorf("zero-weight circle %s = %+v", c.Node.Name, c)
		}
	}
}

func TestLayoutNegativeWeightTreatedAsZero(t *testing.T) {
	circles := Layout(leaves(-5, 4), defaultOpts())
	if circles[0].R != 0 {
		t.Errorf("negative weight radius = %v, want 0", circles[0].R)
	}
	if circles[1].R <= 0 {
		t.Error("positive weight should get a positive radius")
	}
}

func TestLayoutNil(t *testing.T) {
	if Layout(nil, defaultOpts()) != nil {
		t.Error("nil tree should produce no circles")
	}
}

func TestLayoutDeterministic(t *testing.T) {
	a := Layout(leaves(3, 1, 4, 1, 5, 9, 2, 6), defaultOpts())
	b := Layout(leaves(3, 1, 4, 1, 5, 9, 2, 6), defaultOpts())
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y || a[i].R != b[i].R {
			t.Fatalf("layout not deterministic at %d", i)
		}
	}
}

func TestLayoutProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		weights := rapid.SliceOfN(rapid.Float64Range(0.5, 1000), 1, 40).Draw(t, "weights")
		opts := defaultOpts()
		circles := Layout(leaves(weights...), opts)
		if len(circles) != len(weights) {
			t.Fatalf("got %d circles for %d leaves", len(circles), len(weights))
		}
		for i := range circles {
			for j := i + 1; j < len(circles); j++ {
				a, b := circles[i], circles[j]
				if math.Hypot(a.X-b.X, a.Y-b.Y) < a.R+b.R-1e-3 {
					t.Fatalf("%s and %s overlap", a.Node.Name, b.Node.Name)
				}
			}
			c := circles[i]
			if c.X-c.R < opts.Margins.Left-1e-3 || c.X+c.R > opts.Width-opts.Margins.Right+1e-3 ||
				c.Y-c.R < opts.Margins.Top-1e-3 || c.Y+c.R > opts.Height-opts.Margins.Bottom+1e-3 {
				t.Fatalf("circle %s leaves the frame", c.Node.Name)
			}
		}
	})
}

func TestHitTest(t *testing.T) {
	circles := []Circle{
		{Node: &tree.Node{Name: "root", Children: []*tree.Node{{}}}, X: 50, Y: 50, R: 50, Depth: 0},
		{Node: &tree.Node{Name: "a"}, X: 30, Y: 50, R: 10, Depth: 1},
		{Node: &tree.Node{Name: "empty"}, X: 70, Y: 50, R: 0, Depth: 1},
	}

	tests := []struct {
		x, y float64
		want string
		ok   bool
	}{
		{30, 50, "a", true},
		{80, 50, "root", true},
		{70, 50, "root", true},
		{200, 200, "", false},
	}
	for _, tt := range tests {
		c, ok := HitTest(circles, tt.x, tt.y)
		if ok != tt.ok || (ok && c.Node.Name != tt.want) {
			t.Errorf("HitTest(%v, %v) = %v, %v; want %q", tt.x, tt.y, c.Node, ok, tt.want)
		}
	}
}
