// Package export renders a generated report as a downloadable document.
package export

import (
	"fmt"
	"strings"
)

// Format is a downloadable representation of a report.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// BaseName is the download file name without extension.
const BaseName = "research_report"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOCX, FormatPDF, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FileName returns the download name, e.g. research_report.pdf.
func (f Format) FileName() string {
	return BaseName + "." + string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/html; charset=utf-8"
	}
}

// Title returns the document title used for a question.
func Title(question string) string {
	return "Report - " + question
}

// Render produces the report in format f.
func Render(f Format, text, title string) ([]byte, error) {
	switch f {
	case FormatDOCX:
		return ToDOCX(text, title)
	case FormatPDF:
		return ToPDF(text, title)
	case FormatHTML:
		return ToHTML(text)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}
