package widget

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/bubblechart/pkg/notify"
	"github.com/matzehuels/bubblechart/pkg/tree"
)

const (
	mainColor   = "#aaaaaa"
	activeColor = "red"
	labelColor  = "#ffffff"
)

func testConfig() Config {
	return Config{
		ElementID:       "chart",
		MainColor:       mainColor,
		ActiveColor:     activeColor,
		LabelColor:      labelColor,
		HoverLabelColor: "#00ff00",
		Interactive:     true,
	}
}

func exampleTree() *tree.Node {
	return &tree.Node{
		Name: "root",
		Children: []*tree.Node{
			{Name: "A", Color: mainColor, LabelColor: labelColor, Weight: 1},
			{Name: "B", Color: mainColor, LabelColor: labelColor, Weight: 2},
		},
	}
}

// tb is the subset of testing.TB that rapid.T also implements.
type tb interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newController(t tb, root *tree.Node) (*Controller, *notify.Recorder) {
	t.Helper()
	rec := notify.NewRecorder()
	c, err := New(root, testConfig(), WithNotifier(rec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, rec
}

func color(t tb, c *Controller, name string) string {
	t.Helper()
	n, ok := c.FindNode(name)
	if !ok {
		t.Fatalf("node %q not found", name)
	}
	return n.Color
}

func TestClickExampleSequence(t *testing.T) {
	ctx := context.Background()
	c, rec := newController(t, exampleTree())

	c.Click(ctx, "A")
	if got := color(t, c, "A"); got != activeColor {
		t.Errorf("after click A: A.color = %q, want %q", got, activeColor)
	}

	c.Click(ctx, "B")
	if got := color(t, c, "A"); got != mainColor {
		t.Errorf("after click B: A.color = %q, want %q", got, mainColor)
	}
	if got := color(t, c, "B"); got != activeColor {
		t.Errorf("after click B: B.color = %q, want %q", got, activeColor)
	}

	c.Click(ctx, "B")
	if got := color(t, c, "B"); got != mainColor {
		t.Errorf("after second click B: B.color = %q, want %q", got, mainColor)
	}

	want := []string{"A", "B", DeselectEvent}
	if got := rec.Values(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("payloads = %v, want %v", got, want)
	}
	for _, ev := range rec.Events() {
		if ev.Key != "chart_clicked" {
			t.Errorf("event key = %q, want chart_clicked", ev.Key)
		}
		if ev.Priority != notify.PriorityEvent {
			t.Errorf("event priority = %q, want event", ev.Priority)
		}
	}
}

func TestClickLabelColors(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, exampleTree())

	c.Click(ctx, "A")
	a, _ := c.FindNode("A")
	if a.LabelColor != mainColor {
		t.Errorf("selected label = %q, want main color", a.LabelColor)
	}

	c.Click(ctx, "B")
	a, _ = c.FindNode("A")
	if a.LabelColor != labelColor {
		t.Errorf("reset label = %q, want label color", a.LabelColor)
	}

	c.Click(ctx, "B")
	b, _ := c.FindNode("B")
	if b.LabelColor != labelColor {
		t.Errorf("deselected label = %q, want label color", b.LabelColor)
	}
}

func TestClickResult(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, exampleTree())

	tests := []struct {
		name string
		want ClickResult
	}{
		{"A", ClickResult{Found: true, Selected: true, Payload: "A"}},
		{"A", ClickResult{Found: true, Selected: false, Payload: DeselectEvent}},
		{"missing", ClickResult{}},
	}
	for i, tt := range tests {
		if got := c.Click(ctx, tt.name); got != tt.want {
			t.Errorf("click %d on %q = %+v, want %+v", i, tt.name, got, tt.want)
		}
	}
}

func TestClickMissingNodeIsNoop(t *testing.T) {
	ctx := context.Background()
	c, rec := newController(t, exampleTree())
	c.Click(ctx, "A")
	before := c.Snapshot()
	rec.Reset()

	c.Click(ctx, "Z")

	after := c.Snapshot()
	if after.Tree != before.Tree {
		t.Error("tree should be unchanged after a miss")
	}
	if after.Selected != "A" {
		t.Errorf("selected = %q, want A", after.Selected)
	}
	if after.Version != before.Version {
		t.Error("a miss should not publish a new snapshot")
	}
	if len(rec.Events()) != 0 {
		t.Errorf("a miss should not emit, got %v", rec.Values())
	}
}

func TestClickWithoutNotifier(t *testing.T) {
	c, err := New(exampleTree(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	res := c.Click(context.Background(), "A")
	if !res.Found || !res.Selected {
		t.Errorf("click without host should still select, got %+v", res)
	}
	if color(t, c, "A") != activeColor {
		t.Error("A should be active")
	}
}

func TestClickNotifierFailureDoesNotPropagate(t *testing.T) {
	failing := notify.Func(func(context.Context, string, string, notify.Options) error {
		return errors.New("bridge down")
	})
	c, err := New(exampleTree(), testConfig(), WithNotifier(failing))
	if err != nil {
		t.Fatal(err)
	}
	if res := c.Click(context.Background(), "A"); !res.Selected {
		t.Errorf("state should change despite notifier failure, got %+v", res)
	}
}

func TestClickDoesNotMutatePreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, exampleTree())

	c.Click(ctx, "A")
	old := c.Snapshot()
	c.Click(ctx, "B")

	a, _ := tree.Find(old.Tree, "A")
	b, _ := tree.Find(old.Tree, "B")
	if a.Color != activeColor || b.Color != mainColor {
		t.Errorf("old snapshot changed: A=%q B=%q", a.Color, b.Color)
	}
}

func TestHover(t *testing.T) {
	ctx := context.Background()
	c, rec := newController(t, exampleTree())
	c.Click(ctx, "A")
	rec.Reset()

	before := c.Snapshot()
	a, _ := tree.Find(before.Tree, "A")
	if before.Fill(a) != activeColor || before.Label(a) != mainColor {
		t.Fatalf("unexpected pre-hover appearance %q/%q", before.Fill(a), before.Label(a))
	}

	c.Hover(ctx, "A")
	hovered := c.Snapshot()
	if hovered.Fill(a) != Transparent {
		t.Errorf("hovered fill = %q, want transparent", hovered.Fill(a))
	}
	if hovered.Label(a) != "#00ff00" {
		t.Errorf("hovered label = %q, want hover color", hovered.Label(a))
	}
	if hovered.Selected != "A" || hovered.Tree != before.Tree {
		t.Error("hover must not change selection or tree")
	}

	b, _ := tree.Find(hovered.Tree, "B")
	if hovered.Fill(b) != mainColor {
		t.Errorf("unhovered node fill = %q", hovered.Fill(b))
	}

	c.Unhover(ctx)
	after := c.Snapshot()
	if after.Fill(a) != before.Fill(a) || after.Label(a) != before.Label(a) {
		t.Error("unhover should restore the prior appearance")
	}
	if after.Hovered != "" {
		t.Errorf("hovered = %q after unhover", after.Hovered)
	}
	if len(rec.Events()) != 0 {
		t.Error("hover must not emit")
	}
}

func TestHoverSameNameDoesNotPublish(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, exampleTree())
	c.Hover(ctx, "A")
	v := c.Snapshot().Version
	c.Hover(ctx, "A")
	if c.Snapshot().Version != v {
		t.Error("repeated hover should not publish")
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, exampleTree())

	var order []string
	var last Snapshot
	cancelFirst := c.Subscribe(func(s Snapshot) {
		order = append(order, "first")
		last = s
	})
	c.Subscribe(func(Snapshot) { order = append(order, "second") })

	c.Click(ctx, "A")
	if fmt.Sprint(order) != "[first second]" {
		t.Errorf("order = %v", order)
	}
	if last.Selected != "A" || last.Version != c.Snapshot().Version {
		t.Errorf("subscriber got stale snapshot %+v", last)
	}

	cancelFirst()
	order = nil
	c.Hover(ctx, "B")
	if fmt.Sprint(order) != "[second]" {
		t.Errorf("after cancel order = %v", order)
	}
}

func TestMount(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, exampleTree())
	c.Click(ctx, "A")
	c.Hover(ctx, "B")

	fresh := exampleTree()
	if err := c.Mount(fresh); err != nil {
		t.Fatal(err)
	}
	s := c.Snapshot()
	if s.Tree != fresh || s.Selected != "" || s.Hovered != "" {
		t.Errorf("mount should reset state, got %+v", s)
	}
	if err := c.Mount(nil); err == nil {
		t.Error("mounting nil should fail")
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	if _, err := New(nil, testConfig()); err == nil {
		t.Error("nil tree should be rejected")
	}
	cfg := testConfig()
	cfg.ActiveColor = cfg.MainColor
	if _, err := New(exampleTree(), cfg); err == nil {
		t.Error("identical main and active colors should be rejected")
	}
}

func TestActive(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, exampleTree())

	if _, ok := c.Snapshot().Active(); ok {
		t.Error("nothing should be active initially")
	}
	c.Click(ctx, "A")
	if name, ok := c.Snapshot().Active(); !ok || name != "A" {
		t.Errorf("Active() = %q, %v", name, ok)
	}
	c.Click(ctx, "A")
	if _, ok := c.Snapshot().Active(); ok {
		t.Error("deselected node should not be active")
	}
}

// genLeaves draws a flat tree of uniquely named leaves.
func genLeaves(t *rapid.T) (*tree.Node, []string) {
	n := rapid.IntRange(1, 12).Draw(t, "leaves")
	root := &tree.Node{Name: "root"}
	names := make([]string, n)
	for i := range n {
		names[i] = fmt.Sprintf("leaf-%d", i)
		root.Children = append(root.Children, &tree.Node{
			Name: names[i], Color: mainColor, LabelColor: labelColor, Weight: 1,
		})
	}
	return root, names
}

func TestClickRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root, names := genLeaves(t)
		c, rec := newController(t, root)
		name := rapid.SampledFrom(names).Draw(t, "name")

		c.Click(context.Background(), name)
		c.Click(context.Background(), name)

		n, _ := c.FindNode(name)
		if n.Color != mainColor || n.LabelColor != labelColor {
			t.Fatalf("round trip left %q as %q/%q", name, n.Color, n.LabelColor)
		}
		if got := rec.Values(); len(got) != 2 || got[0] != name || got[1] != DeselectEvent {
			t.Fatalf("payloads = %v", got)
		}
	})
}

func TestSingleActiveProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root, names := genLeaves(t)
		c, _ := newController(t, root)

		clicks := rapid.SliceOfN(rapid.SampledFrom(append(names, "ghost")), 1, 30).Draw(t, "clicks")
		for _, name := range clicks {
			prev := c.Snapshot()
			c.Click(context.Background(), name)
			next := c.Snapshot()

			active := 0
			for _, l := range tree.Leaves(next.Tree) {
				if l.Color == activeColor {
					active++
				}
			}
			if active > 1 {
				t.Fatalf("%d nodes active after clicking %q", active, name)
			}

			// Only the clicked and previously selected nodes may differ.
			changed := map[string]bool{}
			for _, l := range tree.Leaves(next.Tree) {
				old, _ := tree.Find(prev.Tree, l.Name)
				if old.Color != l.Color || old.LabelColor != l.LabelColor {
					changed[l.Name] = true
				}
			}
			for n := range changed {
				if n != name && n != prev.Selected {
					t.Fatalf("click on %q changed unrelated node %q", name, n)
				}
			}
		}
	})
}
