// Package formatter renders annotated sentences as aligned text tables.
package formatter

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"newscorpus/internal/models"
)

const minColumnWidth = 3

// RenderSentences renders each sentence as a heading followed by a table of
// its tokens. Morphological columns are filled only when includeMorph is set.
func RenderSentences(sentences []*models.Sentence, includeMorph bool) string {
	header := []string{"ID", "FORM", "CLEANED"}
	if includeMorph {
		header = append(header, "LEMMA", "UPOS", "FEATS")
	}

	var blocks []string

	for _, s := range sentences {
		rows := [][]string{header}

		for i, tok := range s.Tokens {
			row := []string{strconv.Itoa(i + 1), tok.Text, orDash(tok.Cleaned())}

			if includeMorph {
				if m := tok.Morph(); m != nil {
					row = append(row, orDash(m.Lemma), orDash(m.POS), orDash(m.Features))
				} else {
					row = append(row, "-", "-", "-")
				}
			}

			rows = append(rows, row)
		}

		block := "[" + strconv.Itoa(s.Position) + "] " + s.Text + "\n" + strings.Join(RenderTable(rows), "\n")
		blocks = append(blocks, block)
	}

	if len(blocks) == 0 {
		return ""
	}

	return strings.Join(blocks, "\n\n") + "\n"
}

// RenderTable lays rows out as a pipe table. The first row is the header and
// is followed by a separator; columns are padded by display width.
func RenderTable(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}

	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	colWidths := make([]int, colCount)

	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < minColumnWidth {
			colWidths[i] = minColumnWidth
		}
	}

	result := make([]string, 0, len(rows)+1)

	for i, row := range rows {
		result = append(result, renderRow(row, colWidths))

		if i == 0 {
			sep := make([]string, colCount)
			for j := range sep {
				sep[j] = strings.Repeat("-", colWidths[j])
			}

			result = append(result, renderRow(sep, colWidths))
		}
	}

	return result
}

func renderRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(" ")
		sb.WriteString(content)

		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
