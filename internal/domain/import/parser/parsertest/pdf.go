// Package parsertest builds statement fixtures for tests.
package parsertest

import (
	"bytes"
	"fmt"
	"strings"
)

var pdfEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// Positioning selects the text operator used to place rows and cells.
type Positioning int

const (
	// PositionTd moves between cells with relative Td offsets inside one text object.
	PositionTd Positioning = iota
	// PositionTm sets an absolute text matrix before every cell.
	PositionTm
)

// Row is one statement line drawn as separate cells, typically date, description
// and amount.
type Row []string

var columns = []float64{72, 150, 450}

const (
	topY    = 720
	leading = 14
)

// BuildPDF writes a minimal PDF with one page per entry. Each non-empty entry is drawn
// as a single text run; an empty entry produces a page without text.
func BuildPDF(pages ...string) []byte {
	streams := make([]string, 0, len(pages))
	for _, text := range pages {
		stream := "q Q"
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf %d %d Td (%s) Tj ET", 72, topY, pdfEscaper.Replace(text))
		}
		streams = append(streams, stream)
	}
	return writePDF(streams)
}

// BuildStatementPDF writes one page per entry, laying rows out top to bottom. Every
// cell of a row is its own text run at a fixed column, so the document carries no
// explicit separators between cells or rows.
func BuildStatementPDF(pos Positioning, pages ...[]Row) []byte {
	streams := make([]string, 0, len(pages))
	for _, rows := range pages {
		if len(rows) == 0 {
			streams = append(streams, "q Q")
			continue
		}

		var b strings.Builder
		b.WriteString("BT /F1 12 Tf")
		var cx, cy float64
		for i, row := range rows {
			y := float64(topY - i*leading)
			for j, cell := range row {
				x := columnX(j)
				switch pos {
				case PositionTm:
					fmt.Fprintf(&b, " 1 0 0 1 %g %g Tm", x, y)
				default:
					fmt.Fprintf(&b, " %g %g Td", x-cx, y-cy)
					cx, cy = x, y
				}
				fmt.Fprintf(&b, " (%s) Tj", pdfEscaper.Replace(cell))
			}
		}
		b.WriteString(" ET")
		streams = append(streams, b.String())
	}
	return writePDF(streams)
}

func columnX(i int) float64 {
	if i < len(columns) {
		return columns[i]
	}
	return columns[len(columns)-1] + float64(i-len(columns)+1)*80
}

func writePDF(streams []string) []byte {
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	objects = append(objects, "") // pages tree, filled in below
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	kids := make([]string, 0, len(streams))
	for _, stream := range streams {
		pageNum := len(objects) + 1
		contentNum := pageNum + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))

		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentNum))
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(streams))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}
