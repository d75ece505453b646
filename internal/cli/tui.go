package cli

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/sitegraph/pkg/engine"
	"github.com/matzehuels/sitegraph/pkg/render"
)

// Keyboard steps, in view units.
const (
	panStep  = 40.0
	dragStep = 20.0
	zoomStep = 1.25
)

const viewHelp = "←↑↓→ pan · +/- zoom · tab select · enter drag · hjkl move · f fit · 0 reset · t theme · esc clear · q quit"

// =============================================================================
// viewModel - Interactive terminal view of a live engine
// =============================================================================

// frameMsg drives one engine frame.
type frameMsg time.Time

// viewModel owns the engine for the lifetime of the program; bubbletea
// calls Update and View from one goroutine.
type viewModel struct {
	eng      *engine.Engine
	sched    *engine.ManualScheduler
	interval time.Duration
	padding  float64
	source   string

	width, height int
	ids           []string
	cursor        int
	dragging      string
	err           error
}

func newViewModel(eng *engine.Engine, sched *engine.ManualScheduler, interval time.Duration, padding float64, source string) viewModel {
	var ids []string
	if g := eng.Graph(); g != nil {
		ids = g.IDs()
	}
	return viewModel{
		eng:      eng,
		sched:    sched,
		interval: interval,
		padding:  padding,
		source:   source,
		ids:      ids,
		cursor:   -1,
	}
}

func (m viewModel) Init() tea.Cmd {
	return m.nextFrame()
}

func (m viewModel) nextFrame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case frameMsg:
		m.sched.Advance(time.Time(msg))
		return m, m.nextFrame()
	case tea.KeyMsg:
		return m.handleKey(msg, time.Now())
	case tea.MouseMsg:
		return m.handleMouse(msg, time.Now())
	}
	return m, nil
}

func (m viewModel) handleKey(msg tea.KeyMsg, now time.Time) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left":
		m.eng.Pan(-panStep, 0, now)
	case "right":
		m.eng.Pan(panStep, 0, now)
	case "up":
		m.eng.Pan(0, -panStep, now)
	case "down":
		m.eng.Pan(0, panStep, now)
	case "+", "=":
		m.eng.Wheel(0, 0, zoomStep, now)
	case "-", "_":
		m.eng.Wheel(0, 0, 1/zoomStep, now)
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "enter":
		m.toggleDrag()
	case "h":
		m.nudge(-dragStep, 0)
	case "l":
		m.nudge(dragStep, 0)
	case "k":
		m.nudge(0, -dragStep)
	case "j":
		m.nudge(0, dragStep)
	case "t":
		m.err = m.eng.SetTheme(m.eng.Theme().Toggle())
	case "f":
		m.eng.FitView(m.padding)
	case "0":
		m.eng.ResetView()
	case "esc":
		m.endDrag()
		m.eng.ClearSelection()
		m.cursor = -1
	}
	return m, nil
}

// cycle moves the selection through nodes in snapshot order.
func (m *viewModel) cycle(d int) {
	n := len(m.ids)
	if n == 0 {
		return
	}
	m.endDrag()
	switch {
	case m.cursor < 0 && d > 0:
		m.cursor = 0
	case m.cursor < 0:
		m.cursor = n - 1
	default:
		m.cursor = ((m.cursor+d)%n + n) % n
	}
	m.err = m.eng.Select(m.ids[m.cursor])
}

func (m *viewModel) toggleDrag() {
	if m.dragging != "" {
		m.endDrag()
		return
	}
	sel := m.eng.Selection()
	if sel == nil {
		return
	}
	if m.err = m.eng.DragStart(sel.ID); m.err == nil {
		m.dragging = sel.ID
	}
}

func (m *viewModel) endDrag() {
	if m.dragging == "" {
		return
	}
	m.err = m.eng.DragEnd(m.dragging)
	m.dragging = ""
}

// nudge moves the dragged node by (dx, dy) view units.
func (m *viewModel) nudge(dx, dy float64) {
	if m.dragging == "" {
		return
	}
	sim := m.eng.Simulation()
	if sim == nil {
		return
	}
	b := sim.Body(m.dragging)
	if b == nil {
		return
	}
	x, y := b.X, b.Y
	if b.Fixed {
		x, y = b.FX, b.FY
	}
	k := m.eng.Transform().K
	m.err = m.eng.DragMove(m.dragging, x+dx/k, y+dy/k)
}

func (m viewModel) handleMouse(msg tea.MouseMsg, now time.Time) (tea.Model, tea.Cmd) {
	cols, rows := m.canvasSize()
	if msg.X < 0 || msg.Y < 0 || msg.X >= cols || msg.Y >= rows {
		return m, nil
	}
	o := m.eng.Options()
	x, y := cellToView(msg.X, msg.Y, cols, rows, o.Width, o.Height)
	x, y = m.snap(msg.X, msg.Y, cols, rows, x, y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.eng.Wheel(x, y, 1.1, now)
	case msg.Button == tea.MouseButtonWheelDown:
		m.eng.Wheel(x, y, 1/1.1, now)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.endDrag()
		m.err = m.eng.PointerDown(x, y, now)
	case msg.Action == tea.MouseActionMotion:
		m.err = m.eng.PointerMove(x, y, now)
	case msg.Action == tea.MouseActionRelease:
		m.err = m.eng.PointerUp(x, y, now)
		m.syncCursor()
	}
	return m, nil
}

// snap moves a pointer in a cell that shows a marker onto the marker, since
// a terminal cell is larger than a node.
func (m viewModel) snap(col, row, cols, rows int, x, y float64) (float64, float64) {
	f := m.eng.Frame()
	for _, mk := range slices.Backward(f.Markers) {
		c, r := viewToCell(mk.X, mk.Y, cols, rows, f.Width, f.Height)
		if c == col && r == row {
			return mk.X, mk.Y
		}
	}
	return x, y
}

func (m *viewModel) syncCursor() {
	m.cursor = -1
	if sel := m.eng.Selection(); sel != nil {
		m.cursor = slices.Index(m.ids, sel.ID)
	}
}

func (m viewModel) canvasSize() (int, int) {
	cols, rows := m.width, m.height-2
	if m.width <= 0 || m.height <= 0 {
		cols, rows = 100, 30
	}
	return cols, max(rows, 1)
}

func (m viewModel) View() string {
	cols, rows := m.canvasSize()
	f := m.eng.Frame()

	var b strings.Builder
	b.WriteString(strings.Join(rasterize(f, cols, rows), "\n"))
	b.WriteString("\n")
	b.WriteString(m.status(f))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(viewHelp))
	return b.String()
}

func (m viewModel) status(f render.Frame) string {
	parts := []string{
		StyleNumber.Render(fmt.Sprintf("tick %d", f.Tick)),
		fmt.Sprintf("α %.3f", f.Alpha),
		fmt.Sprintf("zoom %.2fx", f.Transform.K),
		m.eng.State().String(),
		string(f.Theme),
	}
	if sel := m.eng.Selection(); sel != nil {
		s := "selected " + StyleHighlight.Render(sel.ID)
		if m.dragging != "" {
			s += " (dragging)"
		}
		for _, k := range slices.Sorted(maps.Keys(sel.Payload)) {
			s += fmt.Sprintf(" %s=%v", k, sel.Payload[k])
		}
		parts = append(parts, s)
	}
	line := strings.Join(parts, StyleDim.Render(" · "))
	if m.err != nil {
		line += "  " + StyleWarning.Render(m.err.Error())
	}
	return line
}

// =============================================================================
// Rasterizer
// =============================================================================

// cell is one terminal character of the canvas.
type cell struct {
	r     rune
	color string
	bold  bool
}

// grid maps view coordinates (origin at the canvas center) onto a cols×rows
// character grid.
type grid struct {
	cols, rows int
	w, h       float64
	cells      []cell
}

func newGrid(cols, rows int, w, h float64) *grid {
	g := &grid{cols: cols, rows: rows, w: w, h: h, cells: make([]cell, cols*rows)}
	for i := range g.cells {
		g.cells[i].r = ' '
	}
	return g
}

func viewToCell(x, y float64, cols, rows int, w, h float64) (int, int) {
	col := int(math.Floor((x + w/2) / w * float64(cols)))
	row := int(math.Floor((y + h/2) / h * float64(rows)))
	return col, row
}

// cellToView returns the view coordinate of the center of a cell.
func cellToView(col, row, cols, rows int, w, h float64) (float64, float64) {
	x := (float64(col)+0.5)/float64(cols)*w - w/2
	y := (float64(row)+0.5)/float64(rows)*h - h/2
	return x, y
}

func (g *grid) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return nil
	}
	return &g.cells[row*g.cols+col]
}

func (g *grid) line(ln render.Line) {
	c0, r0 := viewToCell(ln.X1, ln.Y1, g.cols, g.rows, g.w, g.h)
	c1, r1 := viewToCell(ln.X2, ln.Y2, g.cols, g.rows, g.w, g.h)
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	// Segments far outside the grid are clipped by at(); bound the walk.
	for steps := 0; steps <= 4*(g.cols+g.rows); steps++ {
		if c := g.at(c0, r0); c != nil && c.r == ' ' {
			*c = cell{r: '·', color: ln.Stroke}
		}
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func (g *grid) marker(m render.Marker) {
	c := g.at(viewToCell(m.X, m.Y, g.cols, g.rows, g.w, g.h))
	if c == nil {
		return
	}
	r := '●'
	switch {
	case m.Selected:
		r = '◉'
	case m.Pinned:
		r = '◆'
	case m.Hovered:
		r = '○'
	}
	*c = cell{r: r, color: m.Fill, bold: m.Selected || m.Hovered}
}

// label writes text to the right of its anchor over blank and link cells.
func (g *grid) label(lb render.Label) {
	col, row := viewToCell(lb.X, lb.Y, g.cols, g.rows, g.w, g.h)
	col++
	for _, r := range lb.Text {
		c := g.at(col, row)
		if c == nil {
			return
		}
		if c.r == ' ' || c.r == '·' {
			*c = cell{r: r, color: lb.Color}
		}
		col++
	}
}

// rasterize draws f onto a cols×rows grid: links, then markers, then labels.
func rasterize(f render.Frame, cols, rows int) []string {
	if cols <= 0 || rows <= 0 || f.Width <= 0 || f.Height <= 0 {
		return nil
	}
	g := newGrid(cols, rows, f.Width, f.Height)
	for _, ln := range f.Lines {
		g.line(ln)
	}
	for _, m := range f.Markers {
		g.marker(m)
	}
	for _, lb := range f.Labels {
		g.label(lb)
	}
	return g.render()
}

func (g *grid) render() []string {
	styles := map[cell]lipgloss.Style{}
	style := func(c cell) lipgloss.Style {
		key := cell{color: c.color, bold: c.bold}
		s, ok := styles[key]
		if !ok {
			s = lipgloss.NewStyle().Foreground(lipgloss.Color(termColor(c.color))).Bold(c.bold)
			styles[key] = s
		}
		return s
	}

	out := make([]string, g.rows)
	for row := range g.rows {
		var b strings.Builder
		cells := g.cells[row*g.cols : (row+1)*g.cols]
		for i := 0; i < len(cells); {
			j := i
			var run strings.Builder
			for j < len(cells) && cells[j].color == cells[i].color && cells[j].bold == cells[i].bold {
				run.WriteRune(cells[j].r)
				j++
			}
			if cells[i].color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(style(cells[i]).Render(run.String()))
			}
			i = j
		}
		out[row] = b.String()
	}
	return out
}

// cssColors covers the named colors the scene uses.
var cssColors = map[string]string{
	render.ColorPage:        "#add8e6",
	render.ColorAPI:         "#ff0000",
	render.ColorInteraction: "#800080",
	"black":                 "#000000",
	"white":                 "#ffffff",
}

func termColor(c string) string {
	if hex, ok := cssColors[c]; ok {
		return hex
	}
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
