package tui

import (
	"context"
	"strings"
	"time"

	explorer "github.com/EricFan2002/GTOJsonExplorer"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultResizeDebounce is how long the window size must stay unchanged
// before the layout is recomputed.
const DefaultResizeDebounce = 200 * time.Millisecond

// Navigator is the part of explorer.Explorer the browser drives.
type Navigator interface {
	Lines() []explorer.Line
	Goto(ctx context.Context, addr domain.Address) error
	Toggle(ctx context.Context, addr domain.Address) error
	Retry(ctx context.Context, addr domain.Address) error
	Selection() (domain.Address, bool)
	Node(addr domain.Address) (domain.TreeNode, bool)
	Moves(addr domain.Address) []explorer.Move
	Breadcrumb(addr domain.Address) []explorer.Crumb
	Failure(addr domain.Address) error
	State() domain.NavState
	Subscribe() (<-chan struct{}, func())
}

// changedMsg signals that the explorer re-rendered.
type changedMsg struct{}

// resizeMsg fires when a debounced resize settles.
type resizeMsg struct{ gen int }

// navDoneMsg carries the outcome of a navigation command.
type navDoneMsg struct {
	op  string
	err error
}

// Option configures a Model.
type Option func(*Model)

// WithResizeDebounce sets the resize settle delay.
func WithResizeDebounce(d time.Duration) Option {
	return func(m *Model) {
		if d >= 0 {
			m.debounce = d
		}
	}
}

// WithMarkdownStyle selects the glamour style of the detail pane.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		m.mdStyle = style
	}
}

// Model is the bubbletea model of the tree browser: a tree pane on the
// left and a detail pane for the selected node on the right.
type Model struct {
	ctx      context.Context
	nav      Navigator
	keys     keyMap
	help     help.Model
	detail   viewport.Model
	render   func(string) (string, error)
	mdStyle  string
	debounce time.Duration

	changes     <-chan struct{}
	unsubscribe func()

	lines    []explorer.Line
	cursor   int
	offset   int
	lastSel  string
	status   string
	quitting bool

	width, height   int
	pendW, pendH    int
	resizeGen       int
	renderedForSize int
}

// New creates a browser over nav. ctx bounds every navigation it issues.
func New(ctx context.Context, nav Navigator, opts ...Option) Model {
	m := Model{
		ctx:      ctx,
		nav:      nav,
		keys:     defaultKeyMap(),
		help:     help.New(),
		detail:   viewport.New(0, 0),
		mdStyle:  "dark",
		debounce: DefaultResizeDebounce,
		width:    80,
		height:   24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.changes, m.unsubscribe = nav.Subscribe()
	m.layout()
	m.refresh()
	return m
}

// Init starts listening for explorer changes.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Update handles input and background notifications.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case tea.WindowSizeMsg:
		m.pendW, m.pendH = msg.Width, msg.Height
		m.resizeGen++
		if m.debounce == 0 {
			return m.Update(resizeMsg{gen: m.resizeGen})
		}
		gen := m.resizeGen
		return m, tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return resizeMsg{gen: gen}
		})

	case resizeMsg:
		if msg.gen != m.resizeGen {
			return m, nil
		}
		m.width, m.height = m.pendW, m.pendH
		m.layout()
		m.refresh()
		return m, nil

	case navDoneMsg:
		switch {
		case domain.IsFailure(msg.err):
			m.status = msg.op + " failed: " + msg.err.Error()
		default:
			m.status = ""
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Goto):
		if addr, ok := m.cursorAddress(); ok {
			return m, m.run("goto", m.nav.Goto, addr)
		}
	case key.Matches(msg, m.keys.Toggle):
		if addr, ok := m.cursorAddress(); ok {
			return m, m.run("toggle", m.nav.Toggle, addr)
		}
	case key.Matches(msg, m.keys.Retry):
		if addr, ok := m.cursorAddress(); ok {
			return m, m.run("retry", m.nav.Retry, addr)
		}
	case key.Matches(msg, m.keys.Parent):
		if sel, ok := m.nav.Selection(); ok {
			if parent, ok := sel.Parent(); ok {
				return m, m.run("goto", m.nav.Goto, parent)
			}
		}
	}
	return m, nil
}

func (m Model) run(op string, fn func(context.Context, domain.Address) error, addr domain.Address) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return navDoneMsg{op: op, err: fn(ctx, addr)}
	}
}

func (m *Model) cursorAddress() (domain.Address, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return nil, false
	}
	n := m.lines[m.cursor].Node
	if n.Placeholder {
		return nil, false
	}
	return n.Address, true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	m.scroll()
	m.updateDetail()
}

// refresh re-reads the rendered tree. When the selection changed since the
// last refresh, the cursor follows it.
func (m *Model) refresh() {
	var keep string
	if addr, ok := m.cursorAddress(); ok {
		keep = addr.Key()
	}
	m.lines = m.nav.Lines()

	sel := ""
	if addr, ok := m.nav.Selection(); ok {
		sel = addr.Key()
	}
	target := keep
	if sel != m.lastSel {
		target = sel
		m.lastSel = sel
	}

	m.cursor = min(m.cursor, max(len(m.lines)-1, 0))
	for i, l := range m.lines {
		if !l.Node.Placeholder && l.Node.Address.Key() == target {
			m.cursor = i
			break
		}
	}
	m.scroll()
	m.updateDetail()
}

func (m *Model) updateDetail() {
	addr, ok := m.cursorAddress()
	if !ok {
		m.detail.SetContent("")
		return
	}
	md := detailMarkdown(m.nav, addr)
	out, err := m.render(md)
	if err != nil {
		out = md
	}
	m.detail.SetContent(out)
}

func (m *Model) treeHeight() int {
	return max(m.height-4, 1)
}

func (m *Model) scroll() {
	h := m.treeHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) treeWidth() int {
	return max(m.width*3/5, 20)
}

// layout sizes the panes and rebuilds the markdown renderer when the detail
// width changed.
func (m *Model) layout() {
	detailW := max(m.width-m.treeWidth()-4, 10)
	m.detail.Width = detailW
	m.detail.Height = m.treeHeight()
	m.help.Width = m.width
	if m.render == nil || m.renderedForSize != detailW {
		m.render = NewRenderer(m.mdStyle, detailW-2)
		m.renderedForSize = detailW
	}
}

// View renders both panes, the status line and the help bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var tree strings.Builder
	tree.WriteString(titleStyle.Render("Game tree"))
	tree.WriteString("\n")
	end := min(m.offset+m.treeHeight()-1, len(m.lines))
	for i := m.offset; i < end; i++ {
		tree.WriteString(m.renderLine(m.lines[i], i == m.cursor))
		tree.WriteString("\n")
	}

	left := paneStyle.Width(m.treeWidth()).Height(m.treeHeight()).Render(tree.String())
	right := paneStyle.Width(m.detail.Width).Height(m.treeHeight()).Render(m.detail.View())

	status := m.nav.State().String()
	if m.status != "" {
		status = errorStyle.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		statusStyle.Render(status),
		m.help.View(m.keys),
	)
}

func (m Model) renderLine(l explorer.Line, atCursor bool) string {
	n := l.Node
	var sb strings.Builder
	sb.WriteString(branchStyle.Render(l.Prefix))

	if n.Placeholder {
		sb.WriteString(mutedStyle.Render(n.Label))
		return sb.String()
	}

	indicator := "•"
	switch {
	case n.Loading:
		indicator = "⋯"
	case n.Expanded:
		indicator = "▾"
	case n.HasToggle:
		indicator = "▸"
	}
	sb.WriteString(mutedStyle.Render(indicator))
	sb.WriteString(" ")

	label := n.Label
	switch {
	case n.Selected:
		label = selectedStyle.Render(label)
	case n.Kind == domain.TagCard:
		label = cardStyle.Render(label)
	}
	if atCursor {
		label = cursorStyle.Render(label)
	}
	sb.WriteString(label)

	if n.Error != "" {
		sb.WriteString(" ")
		sb.WriteString(errorStyle.Render("✗"))
	}
	return sb.String()
}
