package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FileCandidate is one document offered by SelectFile. Blocks counts the
// conflict blocks still present in the file.
type FileCandidate struct {
	Path   string
	Blocks int
}

type fileItem struct {
	path   string
	blocks int
}

func (f fileItem) Title() string {
	return f.path
}

func (f fileItem) Description() string {
	return ""
}

func (f fileItem) FilterValue() string {
	return f.path
}

type fileItemDelegate struct{}

var (
	resolvedLabelStyle   lipgloss.Style
	unresolvedLabelStyle lipgloss.Style
)

const blockLabelWidth = len("999 blocks")

func (d fileItemDelegate) Height() int {
	return 1
}

func (d fileItemDelegate) Spacing() int {
	return 0
}

func (d fileItemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d fileItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	file, ok := item.(fileItem)
	if !ok {
		return
	}
	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	label := "resolved"
	labelStyle := resolvedLabelStyle
	switch {
	case file.blocks == 1:
		label = "1 block"
		labelStyle = unresolvedLabelStyle
	case file.blocks > 1:
		label = fmt.Sprintf("%d blocks", file.blocks)
		labelStyle = unresolvedLabelStyle
	}
	labelText := fmt.Sprintf("%*s", blockLabelWidth, label)
	fmt.Fprint(w, cursor+labelStyle.Render(labelText)+"  "+file.path)
}

type fileSelectModel struct {
	list     list.Model
	selected string
	err      error
}

var ErrSelectorQuit = errors.New("selector quit")

// SelectFile opens a TUI selector and returns the chosen path.
func SelectFile(ctx context.Context, candidates []FileCandidate) (string, error) {
	if err := ensureThemeLoaded(); err != nil {
		return "", err
	}

	program := tea.NewProgram(newFileSelectModel(candidates), tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("file selector TUI error: %w", err)
	}

	result, ok := finalModel.(fileSelectModel)
	if !ok {
		return "", fmt.Errorf("file selector returned unexpected model")
	}
	if result.err != nil {
		return "", result.err
	}
	if result.selected == "" {
		return "", fmt.Errorf("no file selected")
	}
	return result.selected, nil
}

func newFileSelectModel(candidates []FileCandidate) fileSelectModel {
	items := make([]list.Item, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, fileItem{path: candidate.Path, blocks: candidate.Blocks})
	}

	model := fileSelectModel{list: list.New(items, fileItemDelegate{}, 0, 0)}
	model.list.Title = "Select document with conflict blocks"
	model.list.SetShowHelp(false)
	model.list.SetShowStatusBar(false)
	model.list.SetShowPagination(false)
	model.list.SetFilteringEnabled(false)
	return model
}

func (m fileSelectModel) Init() tea.Cmd {
	return nil
}

func (m fileSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.err = ErrSelectorQuit
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(fileItem); ok {
				m.selected = item.path
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		height := max(msg.Height, 5)
		m.list.SetSize(msg.Width, height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m fileSelectModel) View() string {
	return m.list.View() + "\n" + "up/down: move, enter: open, q: quit"
}
