package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/docmerge/internal/engine"
	"github.com/chojs23/docmerge/internal/markers"
)

const (
	maxUndoSize = 100
)

var ErrBackToSelector = errors.New("back to selector")

// Options selects the merge document to resolve.
type Options struct {
	MergedPath string
	Backup     bool
}

type model struct {
	opts            Options
	state           *engine.State
	doc             markers.Document
	currentConflict int
	selectedSide    selectionSide
	pendingScroll   bool
	viewportHead    viewport.Model
	viewportResult  viewport.Model
	viewportBase    viewport.Model
	ready           bool
	width           int
	height          int
	quitting        bool
	toastMessage    string
	toastSeq        int
	err             error
}

type selectionSide int

const (
	selectedHead selectionSide = iota
	selectedBase
)

// Run starts the three-pane resolver for opts.MergedPath.
func Run(ctx context.Context, opts Options) error {
	if err := ensureThemeLoaded(); err != nil {
		return err
	}

	data, err := os.ReadFile(opts.MergedPath)
	if err != nil {
		return fmt.Errorf("read merged: %w", err)
	}
	doc, err := markers.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse conflict blocks: %w", err)
	}

	state, err := engine.NewState(doc, maxUndoSize)
	if err != nil {
		return fmt.Errorf("failed to create state: %w", err)
	}

	m := model{
		opts:          opts,
		state:         state,
		doc:           state.Document(),
		selectedSide:  selectedHead,
		pendingScroll: true,
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := finalModel.(model); ok {
		return m.err
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

type editorFinishedMsg struct {
	err error
}

type toastExpiredMsg struct {
	id int
}

func (m *model) showToast(message string, duration time.Duration) tea.Cmd {
	m.toastMessage = message
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(duration*time.Second, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: seq}
	})
}

// openEditor saves the current state, unresolved blocks included, and hands
// the terminal to $EDITOR. The file is re-parsed when the editor exits.
func (m *model) openEditor() tea.Cmd {
	editor := strings.Fields(os.Getenv("EDITOR"))
	if len(editor) == 0 {
		editor = []string{"vi"}
	}

	if err := m.writeResolved(); err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: fmt.Errorf("write merged before editor: %w", err)}
		}
	}

	cmd := exec.Command(editor[0], append(editor[1:], m.opts.MergedPath)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return editorFinishedMsg{err: fmt.Errorf("editor failed: %w", err)}
		}
		return editorFinishedMsg{}
	})
}

func (m *model) reloadFromFile() error {
	data, err := os.ReadFile(m.opts.MergedPath)
	if err != nil {
		return fmt.Errorf("read edited file: %w", err)
	}

	doc, err := markers.Parse(data)
	if err != nil {
		return fmt.Errorf("parse edited file: %w", err)
	}

	state, err := engine.NewState(doc, maxUndoSize)
	if err != nil {
		return fmt.Errorf("create new state: %w", err)
	}

	m.state = state
	m.doc = state.Document()

	if m.currentConflict >= len(m.doc.Conflicts) {
		m.currentConflict = len(m.doc.Conflicts) - 1
	}
	if m.currentConflict < 0 {
		m.currentConflict = 0
	}

	m.pendingScroll = true
	m.updateViewports()
	return nil
}

func (m *model) apply(resolution markers.Resolution) error {
	if err := m.state.ApplyResolution(m.currentConflict, resolution); err != nil {
		return err
	}
	m.doc = m.state.Document()
	m.updateViewports()
	return nil
}

func (m *model) selectedResolution() markers.Resolution {
	return resolutionFromSelection(m.selectedSide)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case editorFinishedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("editor workflow failed: %w", msg.err)
			m.quitting = true
			return m, tea.Quit
		}

		if err := m.reloadFromFile(); err != nil {
			m.err = fmt.Errorf("reload after editor failed: %w", err)
			m.quitting = true
			return m, tea.Quit
		}
		if len(m.doc.Conflicts) == 0 {
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.showToast("Reloaded", 2)

	case toastExpiredMsg:
		if msg.id == m.toastSeq {
			m.toastMessage = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			m.err = ErrBackToSelector
			m.quitting = true
			return m, tea.Quit

		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "n":
			if m.currentConflict < len(m.doc.Conflicts)-1 {
				m.currentConflict++
				m.pendingScroll = true
				m.updateViewports()
			}

		case "p":
			if m.currentConflict > 0 {
				m.currentConflict--
				m.pendingScroll = true
				m.updateViewports()
			}

		case "h":
			m.selectedSide = selectedHead
			m.updateViewports()

		case "l":
			m.selectedSide = selectedBase
			m.updateViewports()

		case "H":
			m.scrollHorizontal(-4)

		case "L":
			m.scrollHorizontal(4)

		case "g":
			m.scrollToTop()

		case "G":
			m.scrollToBottom()

		case "a", " ":
			if err := m.apply(m.selectedResolution()); err != nil {
				m.err = fmt.Errorf("failed to apply selection: %w", err)
				return m, tea.Quit
			}

		case "A":
			if err := m.state.ApplyAll(m.selectedResolution()); err != nil {
				m.err = fmt.Errorf("failed to apply selection to all: %w", err)
				return m, tea.Quit
			}
			m.doc = m.state.Document()
			m.updateViewports()

		case "b":
			if err := m.apply(markers.ResolutionBoth); err != nil {
				m.err = fmt.Errorf("failed to apply both: %w", err)
				return m, tea.Quit
			}

		case "x":
			if err := m.apply(markers.ResolutionNone); err != nil {
				m.err = fmt.Errorf("failed to apply none: %w", err)
				return m, tea.Quit
			}

		case "u":
			if err := m.state.Undo(); err == nil {
				m.doc = m.state.Document()
				m.updateViewports()
			}

		case "r":
			if err := m.state.Redo(); err == nil {
				m.doc = m.state.Document()
				m.updateViewports()
			}

		case "w":
			if err := m.writeResolved(); err != nil {
				m.err = fmt.Errorf("failed to write resolved: %w", err)
				return m, tea.Quit
			}
			if remaining := m.state.Remaining(); remaining > 0 {
				return m, m.showToast(fmt.Sprintf("Saved (%d unresolved)", remaining), 2)
			}
			return m, m.showToast("Saved", 2)

		case "e":
			return m, m.openEditor()
		}

		// Only vertical scrolling reaches the viewports; their default
		// keymap also binds letters used above.
		if !isScrollKey(msg.String()) {
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		paneWidth, contentHeight := m.paneSize()
		if !m.ready {
			m.viewportHead = viewport.New(paneWidth, contentHeight)
			m.viewportResult = viewport.New(paneWidth, contentHeight)
			m.viewportBase = viewport.New(paneWidth, contentHeight)
			m.ready = true
		} else {
			for _, vp := range []*viewport.Model{&m.viewportHead, &m.viewportResult, &m.viewportBase} {
				vp.Width = paneWidth
				vp.Height = contentHeight
			}
		}
		m.updateViewports()
	}

	m.viewportHead, cmd = m.viewportHead.Update(msg)
	cmds = append(cmds, cmd)
	m.viewportResult, cmd = m.viewportResult.Update(msg)
	cmds = append(cmds, cmd)
	m.viewportBase, cmd = m.viewportBase.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func isScrollKey(key string) bool {
	switch key {
	case "j", "k", "down", "up", "pgdown", "pgup", "ctrl+d", "ctrl+u":
		return true
	}
	return false
}

// paneSize returns the width of each of the three panes and the viewport
// height left after header, footer and borders.
func (m model) paneSize() (int, int) {
	headerHeight := 2
	footerHeight := 3
	contentHeight := m.height - headerHeight - footerHeight - 6
	paneWidth := (m.width - 12) / 3
	return max(paneWidth, 1), max(contentHeight, 1)
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.quitting {
		if m.err != nil {
			if errors.Is(m.err, ErrBackToSelector) {
				return "\n  Returning to selector...\n"
			}
			return fmt.Sprintf("\n  Error: %v\n", m.err)
		}
		return "\n  Resolved! File written.\n"
	}

	seg, ok := m.doc.Conflict(m.currentConflict)
	if !ok {
		return "\n  No conflict blocks found.\n"
	}

	blockStatus := fmt.Sprintf("Block %d/%d", m.currentConflict+1, len(m.doc.Conflicts))
	header := headerStyle.Render(fmt.Sprintf("%s - %s", m.opts.MergedPath, blockStatus))

	statusText := "Unresolved"
	statusStyle := statusUnresolvedStyle
	if seg.Resolution != markers.ResolutionUnset {
		statusText = fmt.Sprintf("Resolved: %s", seg.Resolution)
		statusStyle = statusResolvedStyle
	}

	headStyle := headPaneStyle
	if m.selectedSide == selectedHead {
		headStyle = selectedSidePaneStyle
	}
	headPane := headStyle.Render(
		titleStyle.Render(paneTitle("HEAD", seg.HeadLabel)) + "\n" +
			m.viewportHead.View(),
	)

	resultStyle := resultUnresolvedPaneStyle
	if m.state.Resolved() {
		resultStyle = resultResolvedPaneStyle
	}
	resultPane := resultStyle.Render(
		resultTitleStyle.Render("RESULT "+statusStyle.Render("("+statusText+")")) + "\n" +
			m.viewportResult.View(),
	)

	baseStyle := basePaneStyle
	if m.selectedSide == selectedBase {
		baseStyle = selectedSidePaneStyle
	}
	basePane := baseStyle.Render(
		titleStyle.Render(paneTitle("BASE", seg.BaseLabel)) + "\n" +
			m.viewportBase.View(),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top, headPane, resultPane, basePane)

	history := fmt.Sprintf(" | %d unresolved", m.state.Remaining())
	if m.state.UndoDepth() > 0 {
		history += fmt.Sprintf(" | undo: %d", m.state.UndoDepth())
	}
	if m.state.RedoDepth() > 0 {
		history += fmt.Sprintf(" | redo: %d", m.state.RedoDepth())
	}

	footerText := footerStyle.Width(m.width).Render(
		"n/p: block | h/l: side | a: accept | A: accept all | b: both | x: none | u/r: undo/redo | j/k g/G H/L: scroll | e: editor | w: write | q: back" + history,
	)
	footer := lipgloss.JoinVertical(lipgloss.Left, footerText, m.renderToastLine())

	return lipgloss.JoinVertical(lipgloss.Left, header, panes, footer)
}

func paneTitle(side, label string) string {
	if label == "" {
		return side
	}
	return fmt.Sprintf("%s (%s)", side, label)
}

func (m model) renderToastLine() string {
	content := ""
	if m.toastMessage != "" {
		content = toastStyle.Render(m.toastMessage)
	}
	return toastLineStyle.Width(m.width).Render(content)
}

func resolverStyles() (map[lineCategory]lipgloss.Style, map[lineCategory]lipgloss.Style, map[lineCategory]lipgloss.Style, map[lineCategory]lipgloss.Style) {
	baseStyles := map[lineCategory]lipgloss.Style{
		categoryDefault: resultLineStyle,
	}

	highlightStyles := map[lineCategory]lipgloss.Style{
		categoryModified:     modifiedLineStyle,
		categoryAdded:        addedLineStyle,
		categoryRemoved:      removedLineStyle,
		categoryConflicted:   conflictedLineStyle,
		categoryInsertMarker: insertMarkerStyle,
	}

	selectedStyles := map[lineCategory]lipgloss.Style{
		categoryDefault: resultLineStyle.Bold(true),
	}
	for category, style := range highlightStyles {
		selectedStyles[category] = style.Bold(true)
	}
	selectedStyles[categoryInsertMarker] = selectedHunkMarkerStyle

	connectorStyles := map[lineCategory]lipgloss.Style{
		categoryDefault:  lineNumberStyle,
		categoryResolved: resultResolvedMarkerStyle,
	}
	for category, style := range highlightStyles {
		connectorStyles[category] = style
	}
	return baseStyles, highlightStyles, selectedStyles, connectorStyles
}

func (m *model) updateViewports() {
	if m.currentConflict >= len(m.doc.Conflicts) {
		return
	}

	baseStyles, highlightStyles, selectedStyles, connectorStyles := resolverStyles()

	panes := []struct {
		vp    *viewport.Model
		build func() ([]lineInfo, int)
	}{
		{&m.viewportHead, func() ([]lineInfo, int) {
			return buildPaneLines(m.doc, paneHead, m.currentConflict, m.selectedSide)
		}},
		{&m.viewportResult, func() ([]lineInfo, int) {
			return buildResultLines(m.doc, m.currentConflict, m.selectedSide)
		}},
		{&m.viewportBase, func() ([]lineInfo, int) {
			return buildPaneLines(m.doc, paneBase, m.currentConflict, m.selectedSide)
		}},
	}

	for _, pane := range panes {
		lines, start := pane.build()
		pane.vp.SetContent(renderLines(lines, lineNumberStyle, baseStyles, highlightStyles, selectedStyles, connectorStyles))
		if m.pendingScroll {
			ensureVisible(pane.vp, start, len(lines))
		}
	}
	m.pendingScroll = false
}

func ensureVisible(viewportModel *viewport.Model, start int, total int) {
	if viewportModel.Height <= 0 {
		return
	}
	if total <= 0 {
		viewportModel.YOffset = 0
		return
	}

	maxOffset := total - viewportModel.Height
	if maxOffset < 0 {
		maxOffset = 0
	}

	margin := 2
	target := start - margin
	if target < 0 {
		target = 0
	}
	if target > maxOffset {
		target = maxOffset
	}
	viewportModel.YOffset = target
}

func (m *model) scrollHorizontal(delta int) {
	for _, vp := range []*viewport.Model{&m.viewportHead, &m.viewportResult, &m.viewportBase} {
		scrollViewportHorizontal(vp, delta)
	}
}

func scrollViewportHorizontal(viewportModel *viewport.Model, delta int) {
	if delta < 0 {
		viewportModel.ScrollLeft(-delta)
		return
	}
	if delta > 0 {
		viewportModel.ScrollRight(delta)
	}
}

func (m *model) scrollToTop() {
	for _, vp := range []*viewport.Model{&m.viewportHead, &m.viewportResult, &m.viewportBase} {
		vp.GotoTop()
	}
}

func (m *model) scrollToBottom() {
	for _, vp := range []*viewport.Model{&m.viewportHead, &m.viewportResult, &m.viewportBase} {
		vp.GotoBottom()
	}
}

// writeResolved saves the document. Resolved blocks are replaced by their
// content; unresolved blocks are kept as marker blocks.
func (m *model) writeResolved() error {
	var data []byte
	if m.state.Resolved() {
		resolved, err := m.state.Preview()
		if err != nil {
			return fmt.Errorf("cannot write: %w", err)
		}
		data = resolved
	} else {
		data = markers.RenderMarked(m.state.Document())
	}

	if err := engine.WriteResolved(m.opts.MergedPath, data, m.opts.Backup); err != nil {
		return err
	}

	remaining, err := markers.Count(data)
	if err != nil {
		return fmt.Errorf("post-parse merged: %w", err)
	}
	if remaining != m.state.Remaining() {
		return fmt.Errorf("written file has %d conflict blocks, expected %d", remaining, m.state.Remaining())
	}
	return nil
}
