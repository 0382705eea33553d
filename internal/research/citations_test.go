package research

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ayush/smart-research-assistant/internal/models"
)

func TestReconcile(t *testing.T) {
	candidates := []models.EvidenceSource{
		{ID: 1, Description: "a.pdf (uploaded file)", Origin: models.OriginUploadedFile},
		{ID: 2, Description: "b.docx (uploaded file)", Origin: models.OriginUploadedFile},
	}

	tests := []struct {
		name         string
		text         string
		candidates   []models.EvidenceSource
		want         []string
		wantStrategy models.SourceStrategy
	}{
		{
			name:         "explicit bracketed section",
			text:         "Body text [1].\n\nSources:\n[1] A\n[2] B\n",
			candidates:   candidates,
			want:         []string{"[1] A", "[2] B"},
			wantStrategy: models.StrategyExplicit,
		},
		{
			name:         "markdown heading with bullets",
			text:         "# Report\n\n## Sources\n- first.pdf p.2\n• MockNews: title (2025-09-20)\n  - indented item  \n",
			candidates:   candidates,
			want:         []string{"first.pdf p.2", "MockNews: title (2025-09-20)", "indented item"},
			wantStrategy: models.StrategyExplicit,
		},
		{
			name:         "case insensitive token",
			text:         "SOURCES\n[1] upper",
			want:         []string{"[1] upper"},
			wantStrategy: models.StrategyExplicit,
		},
		{
			name:         "no sources token uses candidates",
			text:         "A report with [1] but no list.",
			candidates:   candidates,
			want:         []string{"[1] a.pdf (uploaded file)", "[2] b.docx (uploaded file)"},
			wantStrategy: models.StrategyCandidates,
		},
		{
			name:         "section without bullets uses candidates",
			text:         "Sources:\nnone given\n",
			candidates:   candidates,
			want:         []string{"[1] a.pdf (uploaded file)", "[2] b.docx (uploaded file)"},
			wantStrategy: models.StrategyCandidates,
		},
		{
			name:         "horizontal rule strips to an empty explicit entry",
			text:         "Body\n\nSources:\n---\n",
			candidates:   candidates[:1],
			want:         []string{""},
			wantStrategy: models.StrategyExplicit,
		},
		{
			name:         "nothing at all",
			text:         "Plain text.",
			want:         []string{},
			wantStrategy: models.StrategyNone,
		},
		{
			name:         "earlier prose match is accepted",
			text:         "Many sources agree:\n- point one\n\nSources:\n[1] A",
			want:         []string{"point one", "[1] A"},
			wantStrategy: models.StrategyExplicit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.text, tt.candidates)
			assert.Equal(t, tt.want, got.Lines)
			assert.Equal(t, tt.wantStrategy, got.Strategy)
			assert.Equal(t, len(tt.want) == 0, got.Empty())
		})
	}
}

func TestReconcile_LiveFeedFallbackScenario(t *testing.T) {
	created := time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)
	feed := []models.LiveFeedEntry{{ID: "1", Title: "DBMS Basics", Source: "blog.x.com", Content: "...", CreatedAt: created}}
	candidates := BuildCandidateSources(nil, feed)

	got := Reconcile("# Research Report: components of DBMS\n\nNo list here [1].", candidates)

	assert.Equal(t, []string{"[1] blog.x.com: DBMS Basics (2025-09-20 10:00:00)"}, got.Lines)
	assert.Equal(t, models.StrategyCandidates, got.Strategy)
}

func TestReconcile_ExplicitIgnoresCandidates(t *testing.T) {
	candidates := BuildCandidateSources([]string{"a.pdf", "b.docx"}, nil)
	text := "Findings [1][3].\n\nSources:\n- a.pdf p.3\n- b.docx section 2\n- Wikipedia: Database\n"

	got := Reconcile(text, candidates)

	assert.Equal(t, []string{"a.pdf p.3", "b.docx section 2", "Wikipedia: Database"}, got.Lines)
	assert.Equal(t, models.StrategyExplicit, got.Strategy)
}

func TestCitedIDs(t *testing.T) {
	assert.Equal(t, []int{2, 1, 10}, CitedIDs("See [2], then [1] and [2] again, finally [10]."))
	assert.Equal(t, []int{}, CitedIDs("no markers [a] [ 1 ]"))
}

func TestIndexASCIIFold(t *testing.T) {
	assert.Equal(t, 0, indexASCIIFold("Sources", "sources"))
	assert.Equal(t, 3, indexASCIIFold("My SoUrCeS", "sources"))
	assert.Equal(t, -1, indexASCIIFold("source", "sources"))
	assert.Equal(t, 4, indexASCIIFold("•\nSOURCES", "sources"))
}
