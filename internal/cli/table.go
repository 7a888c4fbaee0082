package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// table renders rows of text under a coloured header.
type table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

func newTable(w io.Writer, noColor bool, headers ...string) *table {
	return &table{writer: w, headers: headers, noColor: noColor}
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if t.noColor {
		bold.DisableColor()
		gray.DisableColor()
	}

	for i, header := range t.headers {
		bold.Fprint(t.writer, t.pad(header, widths[i], i))
	}
	fmt.Fprintln(t.writer)
	for i, width := range widths {
		gray.Fprint(t.writer, t.pad(strings.Repeat("─", width), width, i))
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprint(t.writer, t.pad(cell, widths[i], i))
			}
		}
		fmt.Fprintln(t.writer)
	}
}

// pad fills a cell to width plus the column gap. The last column is
// never padded.
func (t *table) pad(s string, width, col int) string {
	if col == len(t.headers)-1 {
		return s
	}
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s + "  "
}
