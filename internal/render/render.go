// Package render turns classified line operations into presentation rows and
// text output. It owns every display decision downstream of linediff.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/docmerge/internal/linediff"
)

// Row is one line of a side-by-side view. Left is the old side, Right the new
// side; a zero line number means that side is blank on this row.
type Row struct {
	Kind    linediff.Kind
	Left    string
	Right   string
	LeftNo  int
	RightNo int
}

// Rows lays out one row per operation, old text on the left and new on the right.
func Rows(ops []linediff.Operation) []Row {
	rows := make([]Row, 0, len(ops))
	for _, op := range ops {
		row := Row{Kind: op.Kind, LeftNo: op.OldLineNo, RightNo: op.NewLineNo}
		if text, ok := op.OldText(); ok {
			row.Left = text
		}
		if text, ok := op.NewText(); ok {
			row.Right = text
		}
		rows = append(rows, row)
	}
	return rows
}

// Hunk is a half-open range [Start, End) of consecutive changed rows.
type Hunk struct {
	Start int
	End   int
}

// Hunks groups consecutive non-unchanged rows into hunks, in row order.
func Hunks(rows []Row) []Hunk {
	var hunks []Hunk
	start := -1
	for i, row := range rows {
		if row.Kind == linediff.Unchanged {
			if start >= 0 {
				hunks = append(hunks, Hunk{Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		hunks = append(hunks, Hunk{Start: start, End: len(rows)})
	}
	return hunks
}

// Options controls Unified output.
type Options struct {
	Color       bool
	LineNumbers bool
}

var (
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	deletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	numberStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Unified renders ops one line each with " ", "-" or "+" prefixes. A Changed
// operation prints its deleted line and then its added line.
func Unified(ops []linediff.Operation, opts Options) string {
	width := numberWidth(ops)
	var b strings.Builder

	write := func(prefix string, oldNo, newNo int, text string, style *lipgloss.Style) {
		if opts.LineNumbers {
			numbers := fmt.Sprintf("%*s %*s ", width, lineNo(oldNo), width, lineNo(newNo))
			if opts.Color {
				numbers = numberStyle.Render(numbers)
			}
			b.WriteString(numbers)
		}
		line := prefix + text
		if opts.Color && style != nil {
			line = style.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	for _, op := range ops {
		switch op.Kind {
		case linediff.Unchanged:
			write(" ", op.OldLineNo, op.NewLineNo, op.Content, nil)
		case linediff.Deleted:
			write("-", op.OldLineNo, 0, op.Content, &deletedStyle)
		case linediff.Added:
			write("+", 0, op.NewLineNo, op.Content, &addedStyle)
		case linediff.Changed:
			write("-", op.OldLineNo, 0, op.DeletedContent, &deletedStyle)
			write("+", 0, op.NewLineNo, op.AddedContent, &addedStyle)
		}
	}
	return b.String()
}

func lineNo(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

func numberWidth(ops []linediff.Operation) int {
	highest := 0
	for _, op := range ops {
		highest = max(highest, op.OldLineNo, op.NewLineNo)
	}
	return len(fmt.Sprintf("%d", highest))
}

type jsonOperation struct {
	Kind           string  `json:"kind"`
	Content        *string `json:"content,omitempty"`
	DeletedContent *string `json:"deletedContent,omitempty"`
	AddedContent   *string `json:"addedContent,omitempty"`
	OldLineNo      int     `json:"oldLineNo,omitempty"`
	NewLineNo      int     `json:"newLineNo,omitempty"`
}

// JSON encodes ops as an array of objects. Fields that do not apply to an
// operation's kind are omitted, empty-string content is kept.
func JSON(ops []linediff.Operation) ([]byte, error) {
	out := make([]jsonOperation, 0, len(ops))
	for _, op := range ops {
		item := jsonOperation{Kind: op.Kind.String(), OldLineNo: op.OldLineNo, NewLineNo: op.NewLineNo}
		if op.Kind == linediff.Changed {
			item.DeletedContent = &op.DeletedContent
			item.AddedContent = &op.AddedContent
		} else {
			item.Content = &op.Content
		}
		out = append(out, item)
	}
	return json.MarshalIndent(out, "", "  ")
}
