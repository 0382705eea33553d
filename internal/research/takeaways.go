package research

import "strings"

const takeawaysHeading = "Key Takeaways"

// DefaultTakeawayWindow is how many lines after the heading are scanned.
const DefaultTakeawayWindow = 7

// ExtractTakeaways returns the bulleted lines found in the seven lines that
// follow the first "Key Takeaways" heading.
func ExtractTakeaways(reportText string) []string {
	return ExtractTakeawaysWindow(reportText, DefaultTakeawayWindow)
}

// ExtractTakeawaysWindow scans window lines after the heading line. Lines that
// are not bullets are skipped; they do not end the scan.
func ExtractTakeawaysWindow(reportText string, window int) []string {
	start := strings.Index(reportText, takeawaysHeading)
	if start < 0 || window <= 0 {
		return []string{}
	}

	lines := strings.Split(reportText[start:], "\n")[1:]
	if len(lines) > window {
		lines = lines[:window]
	}

	out := []string{}
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if !strings.HasPrefix(ln, "-") && !strings.HasPrefix(ln, "•") {
			continue
		}
		out = append(out, stripBullet(ln))
	}
	return out
}
