package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/docmerge/internal/linediff"
	"github.com/chojs23/docmerge/internal/render"
)

// DiffView is the input of ShowDiff.
type DiffView struct {
	OldName string
	NewName string
	Ops     []linediff.Operation
}

type diffModel struct {
	view        DiffView
	rows        []render.Row
	hunks       []render.Hunk
	currentHunk int
	stats       linediff.Stats
	viewportOld viewport.Model
	viewportNew viewport.Model
	ready       bool
	width       int
	height      int
}

// ShowDiff opens a read-only side-by-side viewer for view.
func ShowDiff(ctx context.Context, view DiffView) error {
	if err := ensureThemeLoaded(); err != nil {
		return err
	}

	p := tea.NewProgram(newDiffModel(view), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("diff viewer error: %w", err)
	}
	return nil
}

func newDiffModel(view DiffView) diffModel {
	rows := render.Rows(view.Ops)
	return diffModel{
		view:  view,
		rows:  rows,
		hunks: render.Hunks(rows),
		stats: linediff.Summarize(view.Ops),
	}
}

func (m diffModel) Init() tea.Cmd {
	return nil
}

func (m diffModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "n":
			if m.currentHunk < len(m.hunks)-1 {
				m.currentHunk++
				m.refresh(true)
			}
			return m, nil
		case "p":
			if m.currentHunk > 0 {
				m.currentHunk--
				m.refresh(true)
			}
			return m, nil
		case "H":
			scrollViewportHorizontal(&m.viewportOld, -4)
			scrollViewportHorizontal(&m.viewportNew, -4)
			return m, nil
		case "L":
			scrollViewportHorizontal(&m.viewportOld, 4)
			scrollViewportHorizontal(&m.viewportNew, 4)
			return m, nil
		case "g":
			m.viewportOld.GotoTop()
			m.viewportNew.GotoTop()
			return m, nil
		case "G":
			m.viewportOld.GotoBottom()
			m.viewportNew.GotoBottom()
			return m, nil
		}
		if !isScrollKey(msg.String()) {
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		paneWidth := max((m.width-8)/2, 1)
		contentHeight := max(m.height-2-3-4, 1)
		if !m.ready {
			m.viewportOld = viewport.New(paneWidth, contentHeight)
			m.viewportNew = viewport.New(paneWidth, contentHeight)
			m.ready = true
			m.refresh(true)
		} else {
			m.viewportOld.Width, m.viewportOld.Height = paneWidth, contentHeight
			m.viewportNew.Width, m.viewportNew.Height = paneWidth, contentHeight
			m.refresh(false)
		}
		return m, nil
	}

	// Scroll the old pane and keep the new pane on the same row.
	var cmd tea.Cmd
	m.viewportOld, cmd = m.viewportOld.Update(msg)
	m.viewportNew.SetYOffset(m.viewportOld.YOffset)
	return m, cmd
}

func (m *diffModel) selectedHunk() render.Hunk {
	if m.currentHunk < 0 || m.currentHunk >= len(m.hunks) {
		return render.Hunk{}
	}
	return m.hunks[m.currentHunk]
}

func (m *diffModel) refresh(scroll bool) {
	hunk := m.selectedHunk()

	baseStyles := map[lineCategory]lipgloss.Style{categoryDefault: resultLineStyle}
	highlightStyles := map[lineCategory]lipgloss.Style{
		categoryModified: modifiedLineStyle,
		categoryAdded:    addedLineStyle,
		categoryRemoved:  removedLineStyle,
	}
	connectorStyles := map[lineCategory]lipgloss.Style{categoryDefault: lineNumberStyle}

	oldSelected := map[lineCategory]lipgloss.Style{categoryDefault: resultLineStyle.Bold(true)}
	newSelected := map[lineCategory]lipgloss.Style{categoryDefault: resultLineStyle.Bold(true)}
	for category := range highlightStyles {
		oldSelected[category] = baseHighlightStyle.Bold(true)
		newSelected[category] = headHighlightStyle.Bold(true)
	}

	oldLines := buildDiffLines(m.rows, true, hunk)
	newLines := buildDiffLines(m.rows, false, hunk)
	m.viewportOld.SetContent(renderLines(oldLines, lineNumberStyle, baseStyles, highlightStyles, oldSelected, connectorStyles))
	m.viewportNew.SetContent(renderLines(newLines, lineNumberStyle, baseStyles, highlightStyles, newSelected, connectorStyles))

	if scroll {
		ensureVisible(&m.viewportOld, hunk.Start, len(m.rows))
		m.viewportNew.SetYOffset(m.viewportOld.YOffset)
	}
}

func (m diffModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	status := "identical"
	if len(m.hunks) > 0 {
		status = fmt.Sprintf("Hunk %d/%d", m.currentHunk+1, len(m.hunks))
	}
	header := headerStyle.Render(fmt.Sprintf("%s -> %s - %s", m.view.OldName, m.view.NewName, status))

	oldPane := paneStyle.Render(titleStyle.Render("OLD "+m.view.OldName) + "\n" + m.viewportOld.View())
	newPane := paneStyle.Render(titleStyle.Render("NEW "+m.view.NewName) + "\n" + m.viewportNew.View())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, oldPane, newPane)

	summary := fmt.Sprintf(" | %d changed, %d added, %d deleted", m.stats.Changed, m.stats.Added, m.stats.Deleted)
	footer := footerStyle.Width(m.width).Render("n/p: hunk | j/k g/G: scroll | H/L: scroll | q: quit" + summary)

	return lipgloss.JoinVertical(lipgloss.Left, header, panes, footer)
}
