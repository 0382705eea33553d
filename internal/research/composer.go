package research

import (
	"fmt"
	"strings"

	"github.com/ayush/smart-research-assistant/internal/models"
)

// systemPrompt asks the model for the report structure the extractors look for.
const systemPrompt = "You are an expert research assistant. Generate a structured, evidence-based research report " +
	"that contains: Key Takeaways (bulleted), Abstract, Introduction, Main Sections depending on the question, " +
	"Conclusion, and References. Inline-cite sources using [1], [2] etc. At the end include a 'Sources' section " +
	"that maps citation numbers to source names/URLs/pages.\n\n" +
	"If provided with uploaded file content or live feed content, use that content as primary evidence. " +
	"If content isn't provided, produce a concise general report."

const userPromptTemplate = `Question: %s

Uploaded file content (if any):
%s

Live feed content (if any):
%s

Instructions:
- Compose a report ~ 400-800 words depending on complexity.
- Use inline citation markers like [1], [2] where you reference the provided content.
- At the end, include a "Sources:" section listing sources in the format:
  [1] source description (e.g., 'myfile.pdf p.12' or 'MockNews: article title (2025-09-20)')
`

const emptyBlock = "[none]"

// BuildCandidateSources numbers the uploaded files from 1 in the given order
// and continues with the live-feed entries in their registry order.
func BuildCandidateSources(uploaded []string, feed []models.LiveFeedEntry) []models.EvidenceSource {
	out := make([]models.EvidenceSource, 0, len(uploaded)+len(feed))
	for _, name := range uploaded {
		out = append(out, models.EvidenceSource{
			ID:          len(out) + 1,
			Description: name + " (uploaded file)",
			Origin:      models.OriginUploadedFile,
		})
	}
	for _, e := range feed {
		out = append(out, models.EvidenceSource{
			ID:          len(out) + 1,
			Description: fmt.Sprintf("%s: %s (%s)", e.Source, e.Title, e.Timestamp()),
			Origin:      models.OriginLiveFeedEntry,
		})
	}
	return out
}

// ComposeLiveText concatenates the feed into the live evidence block.
func ComposeLiveText(feed []models.LiveFeedEntry) string {
	parts := make([]string, 0, len(feed))
	for _, e := range feed {
		parts = append(parts, fmt.Sprintf("%s (%s):\n%s", e.Title, e.Source, e.Content))
	}
	return strings.Join(parts, "\n\n")
}

// BuildPromptPayload merges the question and both evidence blocks into the
// instructions sent to the generation backend. Empty blocks become [none].
func BuildPromptPayload(question, fileText, liveText string) models.PromptPayload {
	return models.PromptPayload{
		Question: question,
		FileText: fileText,
		LiveText: liveText,
		System:   systemPrompt,
		User:     fmt.Sprintf(userPromptTemplate, question, orNone(fileText), orNone(liveText)),
	}
}

func orNone(block string) string {
	if block == "" {
		return emptyBlock
	}
	return block
}
