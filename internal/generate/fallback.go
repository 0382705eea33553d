package generate

import (
	"strings"
)

// FallbackLabel marks reports written without a language model.
const FallbackLabel = "_Fallback report: generated without a language model._"

// FallbackReport builds the deterministic report used in mock mode and when
// the model fails. It lists the evidence categories that were provided and
// never names a source list, so callers fall back to their own candidates.
// The question goes last: a question mentioning "sources" must not turn the
// bullets above it into an explicit source list.
func FallbackReport(question, fileText, liveText string) string {
	var evidence []string
	if strings.TrimSpace(fileText) != "" {
		evidence = append(evidence, "Uploaded files combined (user files)")
	}
	if strings.TrimSpace(liveText) != "" {
		evidence = append(evidence, "Live feed updates (ingested)")
	}
	if len(evidence) == 0 {
		evidence = []string{"General knowledge (no evidence provided)"}
	}

	var b strings.Builder
	b.WriteString("# Research Report\n\n")
	b.WriteString(FallbackLabel + "\n\n")
	b.WriteString("## Key Takeaways\n")
	b.WriteString("- This is a fallback key takeaway generated for demo purposes.\n")
	b.WriteString("- The assistant will use uploaded files and live feed when available.\n\n")
	b.WriteString("## Abstract\n")
	b.WriteString("This report demonstrates the Smart Research Assistant workflow without a language model.\n\n")
	b.WriteString("## Introduction\n")
	b.WriteString("The system ingests documents and live feeds, then synthesizes answers with citations.\n\n")
	b.WriteString("## Detailed Findings\n")
	b.WriteString("Detailed analysis would come from the language model in production. Example reference: [1].\n\n")
	b.WriteString("## Evidence Considered\n")
	for _, e := range evidence {
		b.WriteString(e + "\n")
	}
	b.WriteString("\n## Conclusion\n")
	b.WriteString("Fallback conclusion.\n\n")
	b.WriteString("## Research Question\n")
	b.WriteString(strings.Join(strings.Fields(question), " ") + "\n")
	return b.String()
}
