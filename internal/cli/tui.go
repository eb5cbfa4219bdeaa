package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bubblechart/pkg/notify"
	"github.com/matzehuels/bubblechart/pkg/pack"
	"github.com/matzehuels/bubblechart/pkg/render"
	"github.com/matzehuels/bubblechart/pkg/tree"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// Rows used above and below the chart.
const (
	tuiHeaderRows = 1
	tuiFooterRows = 2
)

// tuiCommand creates the tui command.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "tui [file]",
		Short:             "Explore the chart in the terminal",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runTUI(ctx context.Context, input string) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(c.configPath, logger)
	if err != nil {
		return err
	}
	root, err := loadTree(ctx, input)
	if err != nil {
		return err
	}

	// Log output would tear the alternate screen.
	cfg.Notify.Log.Enabled = false
	sinks, closeSinks, err := buildNotifier(ctx, cfg.Notify, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	events := notify.NewRecorder()
	ctrl, err := mountChart(root, cfg.Widget, notify.Multi(events, sinks), log.New(io.Discard))
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewChartModel(ctx, ctrl, events),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return err
	}

	if name, ok := ctrl.Snapshot().Active(); ok {
		printInfo("Selected %s", StyleHighlight.Render(name))
	}
	return nil
}

// =============================================================================
// ChartModel - Interactive bubble chart
// =============================================================================

// chartState is shared by every copy of a ChartModel. The controller
// subscription writes to it.
type chartState struct {
	snap widget.Snapshot

	// layout cache
	circles []pack.Circle
	laidOut *tree.Node
	cols    int
	rows    int
}

// ChartModel is the bubbletea model that draws the chart as colored cells.
// Terminal cells are about twice as tall as wide, so chart y coordinates
// are two units per row.
type ChartModel struct {
	ctx    context.Context
	ctrl   *widget.Controller
	events *notify.Recorder
	state  *chartState

	width, height int
	cursor        int
}

// NewChartModel creates a chart model bound to ctrl.
func NewChartModel(ctx context.Context, ctrl *widget.Controller, events *notify.Recorder) ChartModel {
	st := &chartState{snap: ctrl.Snapshot()}
	ctrl.Subscribe(func(s widget.Snapshot) { st.snap = s })
	return ChartModel{ctx: ctx, ctrl: ctrl, events: events, state: st, width: 80, height: 24, cursor: -1}
}

func (m ChartModel) Init() tea.Cmd {
	return nil
}

func (m ChartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		if !m.interactive() {
			return m, nil
		}
		switch msg.String() {
		case "right", "tab", "l":
			m.moveCursor(1)
		case "left", "shift+tab", "h":
			m.moveCursor(-1)
		case "enter", " ":
			if name := m.state.snap.Hovered; name != "" {
				m.ctrl.Click(m.ctx, name)
			}
		case "esc":
			m.cursor = -1
			m.ctrl.Unhover(m.ctx)
		}

	case tea.MouseMsg:
		if !m.interactive() {
			return m, nil
		}
		c, hit := m.hit(msg.X, msg.Y)
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			if hit {
				m.ctrl.Click(m.ctx, c.Node.Name)
			}
		case msg.Action == tea.MouseActionMotion:
			if hit {
				m.ctrl.Hover(m.ctx, c.Node.Name)
			} else {
				m.ctrl.Unhover(m.ctx)
			}
		}
	}
	return m, nil
}

func (m ChartModel) interactive() bool {
	return m.state.snap.Config().Interactive
}

func (m *ChartModel) moveCursor(step int) {
	circles := m.layout()
	if len(circles) == 0 {
		return
	}
	n := len(circles)
	if m.cursor < 0 {
		if step > 0 {
			m.cursor = 0
		} else {
			m.cursor = n - 1
		}
	} else {
		m.cursor = ((m.cursor+step)%n + n) % n
	}
	m.ctrl.Hover(m.ctx, circles[m.cursor].Node.Name)
}

// chartSize returns the grid available to the chart.
func (m ChartModel) chartSize() (cols, rows int) {
	return max(m.width, 1), max(m.height-tuiHeaderRows-tuiFooterRows, 1)
}

// layout packs the current tree into the chart grid, reusing the previous
// result while neither the tree nor the grid changed.
func (m ChartModel) layout() []pack.Circle {
	st := m.state
	cols, rows := m.chartSize()
	if st.laidOut != st.snap.Tree || st.cols != cols || st.rows != rows {
		st.circles = pack.Layout(st.snap.Tree, pack.Options{
			Width:      float64(cols),
			Height:     float64(rows * 2),
			Padding:    1,
			Margins:    pack.Uniform(1),
			LeavesOnly: true,
		})
		st.laidOut, st.cols, st.rows = st.snap.Tree, cols, rows
	}
	return st.circles
}

// hit resolves a screen position to the leaf under it.
func (m ChartModel) hit(x, y int) (pack.Circle, bool) {
	px, py := cellCenter(x, y-tuiHeaderRows)
	return pack.HitTest(m.layout(), px, py)
}

func cellCenter(col, row int) (float64, float64) {
	return float64(col) + 0.5, (float64(row) + 0.5) * 2
}

// =============================================================================
// Rendering
// =============================================================================

type cell struct {
	ch     rune
	fg, bg string
}

func (m ChartModel) View() string {
	snap := m.state.snap
	cfg := snap.Config()
	cols, rows := m.chartSize()
	circles := m.layout()

	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' '}
			px, py := cellCenter(x, y)
			c, ok := pack.HitTest(circles, px, py)
			if !ok {
				continue
			}
			d := math.Hypot(px-c.X, py-c.Y)
			if d > c.R-1 {
				grid[y][x] = cell{ch: '█', fg: cfg.BorderColor}
				continue
			}
			if fill := snap.Fill(c.Node); fill != widget.Transparent {
				grid[y][x] = cell{ch: '█', fg: fill}
			}
		}
	}
	for _, c := range circles {
		drawLabel(grid, snap, c)
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(snap.Tree.Name))
	b.WriteString("\n")
	for _, row := range grid {
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.help()))
	return b.String()
}

// drawLabel writes the node name across the middle row of the circle when
// it fits inside.
func drawLabel(grid [][]cell, snap widget.Snapshot, c pack.Circle) {
	if c.R < 3 || len(grid) == 0 {
		return
	}
	row := int(c.Y / 2)
	if row < 0 || row >= len(grid) {
		return
	}
	width := int(2*c.R) - 2
	name := []rune(c.Node.Name)
	if len(name) > width {
		if width < 2 {
			return
		}
		name = append(name[:width-1], '…')
	}
	start := int(math.Round(c.X - float64(len(name))/2))
	fill := snap.Fill(c.Node)
	if fill == widget.Transparent {
		fill = ""
	}
	for i, r := range name {
		x := start + i
		if x < 0 || x >= len(grid[row]) {
			continue
		}
		grid[row][x] = cell{ch: r, fg: snap.Label(c.Node), bg: fill}
	}
}

// renderRow styles runs of equally colored cells.
func renderRow(row []cell) string {
	var b strings.Builder
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for j < len(row) && row[j].fg == row[i].fg && row[j].bg == row[i].bg {
			run.WriteRune(row[j].ch)
			j++
		}
		style := lipgloss.NewStyle()
		if fg, ok := termColor(row[i].fg); ok {
			style = style.Foreground(fg)
		}
		if bg, ok := termColor(row[i].bg); ok {
			style = style.Background(bg)
		}
		b.WriteString(style.Render(run.String()))
		i = j
	}
	return b.String()
}

// termColor converts a chart color to a terminal color.
func termColor(s string) (lipgloss.TerminalColor, bool) {
	c, ok := render.ParseColor(s)
	if !ok {
		return nil, false
	}
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return nil, false
	}
	return lipgloss.Color(cf.Hex()), true
}

func (m ChartModel) status() string {
	snap := m.state.snap
	var parts []string
	if ev, ok := m.events.Last(); ok {
		parts = append(parts, StyleDim.Render(ev.Key+" "+iconArrow+" ")+StyleHighlight.Render(ev.Value))
	}
	if name, ok := snap.Active(); ok {
		parts = append(parts, StyleDim.Render("selected ")+StyleValue.Render(name))
	}
	if snap.Hovered != "" {
		parts = append(parts, StyleDim.Render("hover ")+StyleValue.Render(snap.Hovered))
	}
	if len(parts) == 0 {
		return StyleDim.Render("no selection")
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func (m ChartModel) help() string {
	if !m.interactive() {
		return "read-only  q quit"
	}
	return fmt.Sprintf("click or ←/→ + enter select  esc clear hover  q quit  [%d leaves]", len(m.layout()))
}
