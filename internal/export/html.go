package export

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

const (
	htmlHead = "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Research Report</title></head><body>\n"
	htmlTail = "</body></html>\n"
)

// ToHTML renders the Markdown report as a standalone HTML page.
func ToHTML(text string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(htmlHead)
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return nil, fmt.Errorf("html render: %w", err)
	}
	buf.WriteString(htmlTail)
	return buf.Bytes(), nil
}
