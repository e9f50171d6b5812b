package tui

import "github.com/charmbracelet/lipgloss"

// Styles are assigned by applyTheme.
var (
	titleStyle                lipgloss.Style
	paneStyle                 lipgloss.Style
	headPaneStyle             lipgloss.Style
	basePaneStyle             lipgloss.Style
	selectedSidePaneStyle     lipgloss.Style
	headerStyle               lipgloss.Style
	footerStyle               lipgloss.Style
	lineNumberStyle           lipgloss.Style
	headHighlightStyle        lipgloss.Style
	baseHighlightStyle        lipgloss.Style
	resultLineStyle           lipgloss.Style
	modifiedLineStyle         lipgloss.Style
	addedLineStyle            lipgloss.Style
	removedLineStyle          lipgloss.Style
	conflictedLineStyle       lipgloss.Style
	insertMarkerStyle         lipgloss.Style
	selectedHunkMarkerStyle   lipgloss.Style
	statusResolvedStyle       lipgloss.Style
	statusUnresolvedStyle     lipgloss.Style
	resultResolvedMarkerStyle lipgloss.Style
	resultResolvedPaneStyle   lipgloss.Style
	resultUnresolvedPaneStyle lipgloss.Style
	resultTitleStyle          lipgloss.Style
	toastStyle                lipgloss.Style
	toastLineStyle            lipgloss.Style

	dimForegroundMuted lipgloss.Color
)
