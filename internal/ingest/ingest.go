// Package ingest converts uploaded documents into plain text blocks that can
// be embedded in a prompt.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ayush/smart-research-assistant/internal/metrics"
)

// MIME types recognised besides the file extension.
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEHTML = "text/html"
	MIMEText = "text/plain"
)

// File is one uploaded document.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Result is the outcome of extracting a single file. Warning is empty on
// success.
type Result struct {
	Block   string
	Source  string
	Warning string
}

// Batch is the combined extraction of every file of one request.
type Batch struct {
	Text     string
	Sources  []string
	Warnings []string
}

type extractor func(data []byte) (string, error)

// ExtractFile extracts the text of f. It never fails: a parser error or panic
// yields a placeholder block and a warning.
func ExtractFile(f File) Result {
	text, err := safeExtract(extractorFor(f), f.Data)
	if err != nil {
		metrics.IngestWarnings.Inc()
		return Result{
			Block:   fmt.Sprintf("[File: %s] (error reading file: %v)\n", f.Name, err),
			Source:  f.Name + " (read error)",
			Warning: fmt.Sprintf("%s: %v", f.Name, err),
		}
	}
	return Result{
		Block:  fmt.Sprintf("[File: %s]\n%s\n", f.Name, text),
		Source: f.Name,
	}
}

// ExtractAll extracts every file in order. Blocks are separated by a blank
// line.
func ExtractAll(files []File) Batch {
	b := Batch{Sources: []string{}, Warnings: []string{}}
	blocks := make([]string, 0, len(files))
	for _, f := range files {
		r := ExtractFile(f)
		blocks = append(blocks, r.Block)
		b.Sources = append(b.Sources, r.Source)
		if r.Warning != "" {
			b.Warnings = append(b.Warnings, r.Warning)
		}
	}
	b.Text = strings.Join(blocks, "\n\n")
	return b
}

func extractorFor(f File) extractor {
	ext := strings.ToLower(filepath.Ext(f.Name))
	mime := strings.ToLower(f.MIME)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	switch {
	case ext == ".pdf" || mime == MIMEPDF:
		return extractPDF
	case ext == ".docx" || mime == MIMEDOCX:
		return extractDOCX
	case ext == ".html" || ext == ".htm" || mime == MIMEHTML:
		return extractHTML
	default:
		return extractText
	}
}

func safeExtract(fn extractor, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return fn(data)
}

func extractText(data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}
