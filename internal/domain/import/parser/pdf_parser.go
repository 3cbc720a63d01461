// Package parser recovers provisional (date, description, amount) lines from bank
// statements. PDF statements go through text extraction and line pattern matching;
// CSV exports are decoded with gocsv after their header row has been resolved.
package parser

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

// ExtractText returns the text of every page joined by newlines. Lines are rebuilt
// from glyph positions, so rows placed with Td, TD or Tm come out one per line.
// Pages without extractable text (scanned images) are skipped. A buffer that is not
// a readable PDF, or one that yields no text at all, is an UnreadableDocument error.
func ExtractText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", NewError(KindUnreadableDocument, "empty document", nil)
	}
	if !LooksLikePDF(data) {
		return "", NewError(KindUnreadableDocument, "missing PDF header", nil)
	}

	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = NewError(KindUnreadableDocument, "failed to read PDF", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", NewError(KindUnreadableDocument, "failed to open PDF", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText := strings.Join(pageLines(page.Content().Text), "\n")
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		pages = append(pages, pageText)
	}

	if len(pages) == 0 {
		return "", NewError(KindUnreadableDocument, "no extractable text in PDF", nil)
	}
	return strings.Join(pages, "\n"), nil
}

// pageLines groups glyphs into visual rows by baseline, top of the page first, and
// orders each row left to right. A space is inserted between glyphs that are
// placed apart without an explicit space character, as happens when a statement
// draws date, description and amount as separate runs.
func pageLines(glyphs []pdf.Text) []string {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows [][]pdf.Text
	var rowY float64
	for _, g := range sorted {
		if len(rows) == 0 || rowY-g.Y > rowTolerance(g) {
			rows = append(rows, nil)
			rowY = g.Y
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], g)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var b strings.Builder
		for i, g := range row {
			if i > 0 && needsSpace(row[i-1], g) && !strings.HasSuffix(b.String(), " ") && g.S != " " {
				b.WriteByte(' ')
			}
			b.WriteString(g.S)
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// rowTolerance is how far below a row's baseline a glyph may sit and still belong
// to it.
func rowTolerance(g pdf.Text) float64 {
	if g.FontSize > 0 {
		return g.FontSize / 2
	}
	return 2
}

// needsSpace reports whether the horizontal gap between the end of prev and the
// start of next is wider than half a glyph. Fonts without a Widths array report
// zero width, in which case a quarter of the font size stands in for it.
func needsSpace(prev, next pdf.Text) bool {
	width := prev.W
	if width <= 0 {
		width = math.Abs(prev.FontSize) / 2
	}
	return next.X-(prev.X+prev.W) > width/2
}
