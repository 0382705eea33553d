package research

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ayush/smart-research-assistant/internal/models"
)

// NoSourcesMessage is shown when reconciliation yields nothing.
const NoSourcesMessage = "No explicit sources were found in the generated report."

const sourcesToken = "sources"

// bulletTrim is the set stripped from both ends of a source or takeaway line.
const bulletTrim = "-• "

var inlineCiteRe = regexp.MustCompile(`\[(\d+)\]`)

// SourceList is the display-ready source list of a report and the strategy
// that produced it.
type SourceList struct {
	Lines    []string
	Strategy models.SourceStrategy
}

// Empty reports the no-sources state, which callers must render explicitly.
func (l SourceList) Empty() bool {
	return len(l.Lines) == 0
}

// Reconcile derives the source list of reportText. Lines after the first
// case-insensitive "sources" that start with "[", "-" or "•" win; otherwise
// the candidates are listed as "[id] description".
//
// The first "sources" may sit in ordinary prose ahead of the real section.
// Any bullet between the two then counts as a source. The model's output
// format is not guaranteed, so this stays a best-effort scan.
func Reconcile(reportText string, candidates []models.EvidenceSource) SourceList {
	if lines := explicitSources(reportText); len(lines) > 0 {
		return SourceList{Lines: lines, Strategy: models.StrategyExplicit}
	}
	if len(candidates) == 0 {
		return SourceList{Lines: []string{}, Strategy: models.StrategyNone}
	}
	lines := make([]string, 0, len(candidates))
	for _, c := range candidates {
		lines = append(lines, fmt.Sprintf("[%d] %s", c.ID, c.Description))
	}
	return SourceList{Lines: lines, Strategy: models.StrategyCandidates}
}

func explicitSources(text string) []string {
	idx := indexASCIIFold(text, sourcesToken)
	if idx < 0 {
		return nil
	}

	var out []string
	for _, ln := range strings.Split(text[idx:], "\n") {
		ln = strings.TrimSpace(ln)
		if !strings.HasPrefix(ln, "[") && !strings.HasPrefix(ln, "-") && !strings.HasPrefix(ln, "•") {
			continue
		}
		out = append(out, stripBullet(ln))
	}
	return out
}

// CitedIDs returns the distinct inline [n] markers in order of first use.
func CitedIDs(reportText string) []int {
	seen := make(map[int]bool)
	ids := []int{}
	for _, m := range inlineCiteRe.FindAllStringSubmatch(reportText, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		ids = append(ids, n)
	}
	return ids
}

func stripBullet(line string) string {
	return strings.TrimSpace(strings.Trim(line, bulletTrim))
}

// indexASCIIFold is strings.Index with ASCII case folding; needle must be lower case.
func indexASCIIFold(s, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(s); i++ {
		match := true
		for j := 0; j < n; j++ {
			c := s[i+j]
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
