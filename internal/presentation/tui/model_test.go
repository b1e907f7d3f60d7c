package tui

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	explorer "github.com/EricFan2002/GTOJsonExplorer"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/memory"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/gametree"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExplorer(t *testing.T) *explorer.Explorer {
	t.Helper()
	data, err := os.ReadFile("../../../pkg/gametree/testdata/flop.json")
	require.NoError(t, err)
	tree, err := gametree.Parse(data)
	require.NoError(t, err)

	ex := explorer.New(memory.NewNodeService(memory.StaticTrees{"flop": tree}))
	t.Cleanup(ex.Close)
	require.NoError(t, ex.Load(context.Background(), "flop"))
	ex.Wait()
	return ex
}

func newTestModel(t *testing.T, ex *explorer.Explorer) Model {
	t.Helper()
	return New(context.Background(), ex, WithResizeDebounce(0), WithMarkdownStyle("notty"))
}

// apply feeds msg to m and runs any navigation command it returns.
func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if done, ok := cmd().(navDoneMsg); ok {
		next, _ = m.Update(done)
		m = next.(Model)
	}
	return m
}

func rowOf(m Model, label string) int {
	for i, l := range m.lines {
		if l.Node.Label == label && !l.Node.Placeholder {
			return i
		}
	}
	return -1
}

func TestModel_RendersTree(t *testing.T) {
	m := newTestModel(t, newTestExplorer(t))

	view := m.View()
	assert.Contains(t, view, "Game tree")
	assert.Contains(t, view, "Root")
	assert.Contains(t, view, "BET 2")
	assert.Contains(t, view, "└── ")
	assert.GreaterOrEqual(t, rowOf(m, "CHECK"), 1)
}

func TestModel_GotoMovesSelection(t *testing.T) {
	ex := newTestExplorer(t)
	m := newTestModel(t, ex)

	row := rowOf(m, "BET 2")
	require.Positive(t, row)
	for m.cursor < row {
		m = apply(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	sel, ok := ex.Selection()
	require.True(t, ok)
	assert.Equal(t, "/childrens/BET 2", sel.String())
	assert.Empty(t, m.status)
	assert.Equal(t, "BET 2", m.lines[m.cursor].Node.Label)
	assert.Contains(t, detailMarkdown(ex, sel), "- RAISE 6")

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}})
	sel, _ = ex.Selection()
	assert.True(t, sel.IsRoot())
	assert.Equal(t, 0, m.cursor)
}

func TestModel_ToggleCollapses(t *testing.T) {
	ex := newTestExplorer(t)
	m := newTestModel(t, ex)
	check := domain.MustParseAddress("/childrens/CHECK")
	require.True(t, ex.IsExpanded(check))

	for m.cursor < rowOf(m, "CHECK") {
		m = apply(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m = apply(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.False(t, ex.IsExpanded(check))

	next, _ := m.Update(changedMsg{})
	m = next.(Model)
	assert.Equal(t, "CHECK", m.lines[m.cursor].Node.Label)
}

func TestModel_FailureShowsStatus(t *testing.T) {
	m := newTestModel(t, newTestExplorer(t))
	next, _ := m.Update(navDoneMsg{op: "goto", err: domain.ErrRecoveryFailed})
	m = next.(Model)
	assert.Contains(t, m.View(), "goto failed")

	next, _ = m.Update(navDoneMsg{op: "goto", err: domain.ErrStaleDiscarded})
	m = next.(Model)
	assert.Empty(t, m.status)
}

func TestModel_ResizeIsDebounced(t *testing.T) {
	m := New(context.Background(), newTestExplorer(t), WithResizeDebounce(time.Hour), WithMarkdownStyle("notty"))

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)
	require.NotNil(t, cmd)
	next, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	m = next.(Model)
	assert.Equal(t, 80, m.width)

	next, _ = m.Update(resizeMsg{gen: 1})
	m = next.(Model)
	assert.Equal(t, 80, m.width, "superseded resize must be ignored")

	next, _ = m.Update(resizeMsg{gen: 2})
	m = next.(Model)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 50, m.height)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, newTestExplorer(t))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.True(t, next.(Model).quitting)
	require.NotNil(t, cmd)
	assert.Empty(t, next.(Model).View())
}

func TestModel_Teatest(t *testing.T) {
	ex := newTestExplorer(t)
	tm := teatest.NewTestModel(t, newTestModel(t, ex), teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return strings.Contains(string(b), "Game tree")
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	assert.True(t, final.quitting)
}
