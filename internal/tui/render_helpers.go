package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/docmerge/internal/linediff"
	"github.com/chojs23/docmerge/internal/markers"
	"github.com/chojs23/docmerge/internal/render"
)

type lineInfo struct {
	text      string
	number    int
	category  lineCategory
	highlight bool
	selected  bool
	underline bool
	dim       bool
	connector string
}

type lineCategory int

const (
	categoryDefault lineCategory = iota
	categoryModified
	categoryAdded
	categoryRemoved
	categoryConflicted
	categoryInsertMarker
	categoryResolved
)

// splitLines splits section bytes into display lines. A trailing newline
// does not produce an extra empty line.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}

	text := strings.TrimSuffix(string(content), "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// numberLines assigns sequential line numbers to lines that are not markers.
func numberLines(lines []lineInfo) {
	n := 0
	for i := range lines {
		if lines[i].category == categoryInsertMarker {
			continue
		}
		n++
		lines[i].number = n
	}
}

func renderLines(
	lines []lineInfo,
	numberStyle lipgloss.Style,
	baseStyles map[lineCategory]lipgloss.Style,
	highlightStyles map[lineCategory]lipgloss.Style,
	selectedStyles map[lineCategory]lipgloss.Style,
	connectorStyles map[lineCategory]lipgloss.Style,
) string {
	if len(lines) == 0 {
		return ""
	}

	highest := 0
	for _, line := range lines {
		highest = max(highest, line.number)
	}
	width := len(fmt.Sprintf("%d", highest))

	var b strings.Builder
	for i, line := range lines {
		connector := line.connector
		if connector == "" {
			connector = " "
		}

		numberText := strings.Repeat(" ", width)
		if line.number > 0 {
			numberText = fmt.Sprintf("%*d", width, line.number)
		}

		style := styleForCategory(baseStyles, line.category, lipgloss.NewStyle())
		if line.highlight {
			style = styleForCategory(highlightStyles, line.category, style)
		}
		if line.selected {
			style = styleForCategory(selectedStyles, line.category, style)
		}
		if line.dim {
			style = style.Foreground(dimForegroundMuted)
		}
		if line.underline {
			style = style.Underline(true)
		}

		connectorStyle := styleForCategory(connectorStyles, line.category, numberStyle)
		if line.highlight {
			connectorStyle = styleForCategory(highlightStyles, line.category, connectorStyle)
		}
		if line.selected {
			connectorStyle = styleForCategory(selectedStyles, line.category, connectorStyle)
		}

		prefix := numberStyle.Render(numberText) + " " + connectorStyle.Render(connector) + " "

		b.WriteString(prefix + style.Render(line.text))
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func styleForCategory(styles map[lineCategory]lipgloss.Style, category lineCategory, fallback lipgloss.Style) lipgloss.Style {
	if style, ok := styles[category]; ok {
		return style
	}
	if style, ok := styles[categoryDefault]; ok {
		return style
	}
	return fallback
}

type paneSide int

const (
	paneHead paneSide = iota
	paneBase
)

type lineEntry struct {
	text     string
	category lineCategory
}

// blockEntries classifies the lines of one conflict block by diffing its
// base section against its head section.
func blockEntries(seg markers.ConflictSegment) ([]lineEntry, []lineEntry) {
	baseLines := splitLines(seg.Base)
	headLines := splitLines(seg.Head)
	ops := linediff.Classify(baseLines, headLines, linediff.Align(baseLines, headLines))

	var headEntries, baseEntries []lineEntry
	for _, op := range ops {
		switch op.Kind {
		case linediff.Unchanged:
			headEntries = append(headEntries, lineEntry{text: op.Content, category: categoryDefault})
			baseEntries = append(baseEntries, lineEntry{text: op.Content, category: categoryDefault})
		case linediff.Added:
			headEntries = append(headEntries, lineEntry{text: op.Content, category: categoryAdded})
		case linediff.Deleted:
			baseEntries = append(baseEntries, lineEntry{text: op.Content, category: categoryRemoved})
		case linediff.Changed:
			headEntries = append(headEntries, lineEntry{text: op.AddedContent, category: categoryModified})
			baseEntries = append(baseEntries, lineEntry{text: op.DeletedContent, category: categoryConflicted})
		}
	}
	return headEntries, baseEntries
}

func buildPaneLines(doc markers.Document, side paneSide, highlightConflict int, selectedSide selectionSide) ([]lineInfo, int) {
	var lines []lineInfo
	conflictIndex := -1
	currentStart := -1

	for _, seg := range doc.Segments {
		switch s := seg.(type) {
		case markers.TextSegment:
			for _, line := range splitLines(s.Bytes) {
				lines = append(lines, lineInfo{text: line, category: categoryDefault})
			}
		case markers.ConflictSegment:
			conflictIndex++
			selected := conflictIndex == highlightConflict
			if selected {
				currentStart = len(lines)
			}

			headEntries, baseEntries := blockEntries(s)
			entries := headEntries
			if side == paneBase {
				entries = baseEntries
			}

			if selected && selectedSideMatchesPane(selectedSide, side) {
				lines = append(lines, lineInfo{
					text:      fmt.Sprintf(">> selected block start (%s) >>", sideLabel(side)),
					category:  categoryInsertMarker,
					highlight: true,
					selected:  true,
					connector: connectorForSide(side),
				})
			}

			resolution := s.Resolution
			if resolution == markers.ResolutionUnset && selected {
				resolution = resolutionFromSelection(selectedSide)
			}
			connector := ""
			if selected && resolutionIncludes(resolution, side) {
				connector = connectorForSide(side)
			}

			for _, entry := range entries {
				text := entry.text
				if entry.category == categoryRemoved {
					text = "- " + text
				}
				lines = append(lines, lineInfo{
					text:      text,
					category:  entry.category,
					highlight: entry.category != categoryDefault,
					selected:  selected,
					dim:       entry.category == categoryRemoved,
					connector: connector,
				})
			}

			if selected && selectedSideMatchesPane(selectedSide, side) {
				lines = append(lines, lineInfo{
					text:      ">> selected block end >>",
					category:  categoryInsertMarker,
					highlight: true,
					selected:  true,
					connector: connectorForSide(side),
				})
			}
		}
	}

	numberLines(lines)
	if currentStart == -1 {
		currentStart = 0
	}
	return lines, currentStart
}

func buildResultLines(doc markers.Document, highlightConflict int, selectedSide selectionSide) ([]lineInfo, int) {
	var lines []lineInfo
	conflictIndex := -1
	currentStart := -1

	for _, seg := range doc.Segments {
		switch s := seg.(type) {
		case markers.TextSegment:
			for _, line := range splitLines(s.Bytes) {
				lines = append(lines, lineInfo{text: line, category: categoryDefault})
			}
		case markers.ConflictSegment:
			conflictIndex++
			selected := conflictIndex == highlightConflict
			if selected {
				currentStart = len(lines)
			}

			preview := s.Resolution == markers.ResolutionUnset
			effective := s.Resolution
			if preview {
				effective = resolutionFromSelection(selectedSide)
			}

			headEntries, baseEntries := blockEntries(s)
			var entries []lineEntry
			switch effective {
			case markers.ResolutionHead:
				entries = headEntries
			case markers.ResolutionBase:
				entries = baseEntries
			case markers.ResolutionBoth:
				entries = append(append(entries, headEntries...), baseEntries...)
			}

			if len(entries) == 0 {
				if preview {
					lines = append(lines, lineInfo{
						text:      "[unresolved block]",
						category:  categoryConflicted,
						dim:       true,
						connector: connectorForResult(false, selected),
					})
				}
				continue
			}

			resolved := !preview
			for _, entry := range entries {
				category := entry.category
				if category == categoryRemoved {
					category = categoryDefault
				}
				if resolved {
					category = categoryResolved
				}
				lines = append(lines, lineInfo{
					text:      entry.text,
					category:  category,
					highlight: entry.category != categoryDefault,
					selected:  selected,
					underline: selected,
					dim:       preview,
					connector: connectorForResult(resolved, selected),
				})
			}
		}
	}

	numberLines(lines)
	if currentStart == -1 {
		currentStart = 0
	}
	return lines, currentStart
}

// buildDiffLines renders one side of a side-by-side diff. Rows missing on a
// side become blank filler lines so both panes stay aligned.
func buildDiffLines(rows []render.Row, left bool, hunk render.Hunk) []lineInfo {
	lines := make([]lineInfo, 0, len(rows))
	for i, row := range rows {
		text, number := row.Right, row.RightNo
		if left {
			text, number = row.Left, row.LeftNo
		}
		info := lineInfo{text: text, number: number, selected: i >= hunk.Start && i < hunk.End}

		switch row.Kind {
		case linediff.Unchanged:
			info.category = categoryDefault
		case linediff.Changed:
			info.category = categoryModified
			info.highlight = true
		case linediff.Added:
			if left {
				info.dim = true
			} else {
				info.category = categoryAdded
				info.highlight = true
			}
		case linediff.Deleted:
			if left {
				info.category = categoryRemoved
				info.highlight = true
			} else {
				info.dim = true
			}
		}
		if info.selected && info.category != categoryDefault {
			info.connector = diffConnector(row.Kind, left)
		}
		lines = append(lines, info)
	}
	return lines
}

func diffConnector(kind linediff.Kind, left bool) string {
	switch kind {
	case linediff.Added:
		return "+"
	case linediff.Deleted:
		return "-"
	case linediff.Changed:
		if left {
			return "-"
		}
		return "+"
	}
	return " "
}

func resolutionIncludes(resolution markers.Resolution, side paneSide) bool {
	switch resolution {
	case markers.ResolutionHead:
		return side == paneHead
	case markers.ResolutionBase:
		return side == paneBase
	case markers.ResolutionBoth:
		return true
	default:
		return false
	}
}

func resolutionFromSelection(selectedSide selectionSide) markers.Resolution {
	if selectedSide == selectedBase {
		return markers.ResolutionBase
	}
	return markers.ResolutionHead
}

func connectorForSide(side paneSide) string {
	switch side {
	case paneHead:
		return ">"
	case paneBase:
		return "<"
	default:
		return " "
	}
}

func connectorForResult(resolved bool, selected bool) string {
	if resolved {
		return "v"
	}
	if selected {
		return "|"
	}
	return " "
}

func selectedSideMatchesPane(selectedSide selectionSide, side paneSide) bool {
	if selectedSide == selectedBase {
		return side == paneBase
	}
	return side == paneHead
}

func sideLabel(side paneSide) string {
	if side == paneBase {
		return "base"
	}
	return "head"
}
