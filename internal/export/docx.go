package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gingfrederik/docx"
)

// titleSize is the title run's font size in points.
const titleSize = 16

// ToDOCX builds a Word document: a sized title run followed by one paragraph
// per line of text. Blank lines become empty paragraphs.
func ToDOCX(text, title string) ([]byte, error) {
	f := docx.NewFile()

	f.AddParagraph().AddText(title).Size(titleSize)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		p := f.AddParagraph()
		if line != "" {
			p.AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("docx write: %w", err)
	}
	return buf.Bytes(), nil
}
