package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"

	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// GridTSV renders the matrix as tab-separated text. Tabs and newlines
// inside cells are flattened to spaces so the row/column structure stays
// intact.
func GridTSV(grid [][]string) (tsv string) {
	var lines []string
	for _, row := range grid {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = flatten(cell)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	tsv = strings.Join(lines, "\n")
	if tsv != "" {
		tsv += "\n"
	}
	return tsv
}

// GridHTML renders the matrix as an HTML table. Evaluation cells get a
// class per symbol (filled/partial/minimal/none) so a stylesheet can color
// them.
func GridHTML(grid [][]string) (doc string) {
	var buf strings.Builder

	buf.WriteString("<table class=\"persona-matrix\">\n")
	for i, row := range grid {
		buf.WriteString("  <tr>\n")
		for _, cell := range row {
			if i == 0 {
				fmt.Fprintf(&buf, "    <th>%s</th>\n", html.EscapeString(cell))
				continue
			}
			fmt.Fprintf(&buf, "    <td class=%q>%s</td>\n", symbolClass(cell), html.EscapeString(cell))
		}
		buf.WriteString("  </tr>\n")
	}
	buf.WriteString("</table>\n")

	doc = buf.String()
	return doc
}

// DiscussionHTML renders the markdown discussion guide as HTML.
func DiscussionHTML(discussion string) (doc string, err error) {
	var buf bytes.Buffer
	err = goldmark.Convert([]byte(discussion), &buf)
	if err != nil {
		err = errors.Wrap(err, "failed to render discussion markdown")
		return doc, err
	}
	doc = buf.String()
	return doc, err
}

// symbolClass maps an evaluation symbol to its CSS class. Identity cells
// carry text rather than symbols and fall through to "cell".
func symbolClass(cell string) (class string) {
	switch cell {
	case state.SymbolFilled:
		class = "filled"
	case state.SymbolPartial:
		class = "partial"
	case state.SymbolMinimal:
		class = "minimal"
	case state.SymbolNone:
		class = "none"
	default:
		class = "cell"
	}
	return class
}

// flatten replaces structural whitespace inside a cell.
func flatten(cell string) (out string) {
	out = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(cell)
	return out
}
