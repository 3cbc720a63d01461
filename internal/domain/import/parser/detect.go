package parser

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
)

// FileKind is the statement format handed to the ingestion pipeline.
type FileKind string

const (
	FilePDF     FileKind = "pdf"
	FileCSV     FileKind = "csv"
	FileUnknown FileKind = ""
)

var pdfMagic = []byte("%PDF-")

// ParseFileKind maps a user supplied format name ("pdf", ".CSV") to a FileKind.
func ParseFileKind(s string) FileKind {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "pdf":
		return FilePDF
	case "csv":
		return FileCSV
	}
	return FileUnknown
}

// DetectFileKind resolves the format from the filename extension, falling back to the
// declared content type. The extension wins when both are present.
func DetectFileKind(filename, contentType string) FileKind {
	if kind := ParseFileKind(filepath.Ext(filename)); kind != FileUnknown {
		return kind
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return FileUnknown
	}
	switch mediaType {
	case "application/pdf":
		return FilePDF
	case "text/csv", "application/csv", "text/comma-separated-values":
		return FileCSV
	}
	return FileUnknown
}

// pdfHeaderWindow is how far into the file the PDF header may appear.
const pdfHeaderWindow = 1024

// LooksLikePDF reports whether data carries a PDF header near its start.
func LooksLikePDF(data []byte) bool {
	if len(data) > pdfHeaderWindow {
		data = data[:pdfHeaderWindow]
	}
	return bytes.Contains(data, pdfMagic)
}
