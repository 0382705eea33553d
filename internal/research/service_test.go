package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/smart-research-assistant/internal/generate"
	"github.com/ayush/smart-research-assistant/internal/ingest"
	"github.com/ayush/smart-research-assistant/internal/models"
	"github.com/ayush/smart-research-assistant/internal/session"
)

var txTime = time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)

// stubGenerator returns a fixed text, or the fallback report when text is empty.
type stubGenerator struct {
	text    string
	err     error
	payload models.PromptPayload
	calls   int
}

func (g *stubGenerator) Generate(_ context.Context, p models.PromptPayload) generate.Result {
	g.calls++
	g.payload = p
	if g.text == "" {
		return generate.Result{
			Text:     generate.FallbackReport(p.Question, p.FileText, p.LiveText),
			Backend:  generate.MockBackendName,
			Fallback: true,
			Err:      g.err,
		}
	}
	return generate.Result{Text: g.text, Backend: "stub"}
}

func newTestSession() *session.Session {
	s := session.New(100)
	s.Sources.SetClock(func() time.Time { return txTime })
	return s
}

func newTestService(gen Generator) *Service {
	svc := NewService(gen, 1, nil)
	svc.SetClock(func() time.Time { return txTime })
	return svc
}

func TestGenerate_EmptyQuestion(t *testing.T) {
	gen := &stubGenerator{}
	svc := newTestService(gen)
	sess := newTestSession()
	sess.Sources.RegisterUploadedFiles([]string{"kept.pdf"})

	_, err := svc.Generate(context.Background(), sess, "   \t", []ingest.File{{Name: "x.txt", Data: []byte("x")}})

	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, 0, sess.Ledger.Usage().Questions)
	assert.Empty(t, sess.Ledger.Records)
	assert.Equal(t, []string{"kept.pdf"}, sess.Sources.Uploaded())
	assert.Nil(t, sess.LastReport)
}

func TestGenerate_FallbackUsesLiveFeedCandidates(t *testing.T) {
	svc := newTestService(&stubGenerator{})
	sess := newTestSession()
	_, err := svc.IngestLiveUpdate(sess, "DBMS Basics", "blog.x.com", "...")
	require.NoError(t, err)

	out, err := svc.Generate(context.Background(), sess, "components of DBMS", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"[1] blog.x.com: DBMS Basics (2025-09-20 10:00:00)"}, out.Report.Sources)
	assert.Equal(t, models.StrategyCandidates, out.Report.Strategy)
	assert.True(t, out.Report.Fallback)
	assert.Len(t, out.Report.Takeaways, 2)
	assert.Equal(t, []int{1}, out.Report.Cited)
	assert.Equal(t, models.Usage{Questions: 1, Reports: 1, CreditsUsed: 1, CreditsRemaining: 99, InitialCredits: 100}, out.Usage)
	assert.Equal(t, models.BillingRecord{Question: "components of DBMS", Cost: 1, Timestamp: txTime}, out.Billing)
	require.NotNil(t, sess.LastReport)
	assert.Equal(t, out.Report, *sess.LastReport)
	assert.Empty(t, out.Response().NoSourcesMessage)
}

func TestGenerate_ExplicitSources(t *testing.T) {
	text := "# Report\n\n## Key Takeaways\n- Disk storage matters [1]\n\n## Abstract\nA.\nB.\nC.\nD.\n\n## Sources:\n[1] paper.pdf p.3\n- MockNews: update\n"
	gen := &stubGenerator{text: text}
	svc := newTestService(gen)
	sess := newTestSession()

	out, err := svc.Generate(context.Background(), sess, "  storage engines  ", []ingest.File{
		{Name: "paper.pdf", Data: []byte("not really a pdf")},
		{Name: "notes.txt", Data: []byte("B-trees")},
	})
	require.NoError(t, err)

	assert.Equal(t, "storage engines", out.Report.Question)
	assert.Equal(t, []string{"[1] paper.pdf p.3", "MockNews: update"}, out.Report.Sources)
	assert.Equal(t, models.StrategyExplicit, out.Report.Strategy)
	assert.Equal(t, []string{"Disk storage matters [1]"}, out.Report.Takeaways)
	assert.False(t, out.Report.Fallback)
	assert.Equal(t, "stub", out.Report.Backend)

	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "paper.pdf")
	assert.Equal(t, []string{"paper.pdf (read error)", "notes.txt"}, sess.Sources.Uploaded())
	assert.Equal(t, []models.EvidenceSource{
		{ID: 1, Description: "paper.pdf (read error) (uploaded file)", Origin: models.OriginUploadedFile},
		{ID: 2, Description: "notes.txt (uploaded file)", Origin: models.OriginUploadedFile},
	}, out.Candidates)

	assert.Equal(t, "storage engines", gen.payload.Question)
	assert.Contains(t, gen.payload.FileText, "[File: notes.txt]\nB-trees\n")
	assert.Equal(t, "", gen.payload.LiveText)
	assert.Contains(t, gen.payload.User, "[none]")
}

func TestGenerate_NoSources(t *testing.T) {
	svc := newTestService(&stubGenerator{})
	sess := newTestSession()
	sess.Sources.RegisterUploadedFiles([]string{"old.pdf"})

	out, err := svc.Generate(context.Background(), sess, "what is a DBMS", nil)
	require.NoError(t, err)

	assert.Equal(t, models.StrategyNone, out.Report.Strategy)
	assert.Equal(t, []string{}, out.Report.Sources)
	assert.Empty(t, sess.Sources.Uploaded(), "a transaction without uploads clears the list")
	assert.Equal(t, NoSourcesMessage, out.Response().NoSourcesMessage)
}

func TestGenerate_GenerationFailureStillBills(t *testing.T) {
	boom := errors.New("upstream 500")
	svc := newTestService(&stubGenerator{err: boom})
	sess := newTestSession()

	out, err := svc.Generate(context.Background(), sess, "q", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, out.GenerationErr, boom)
	assert.True(t, out.Report.Fallback)
	assert.Equal(t, 1, out.Usage.Reports)
}

func TestGenerate_CreditsFloorAtZero(t *testing.T) {
	svc := NewService(&stubGenerator{}, 60, nil)
	sess := newTestSession()

	for i := 0; i < 2; i++ {
		_, err := svc.Generate(context.Background(), sess, "q", nil)
		require.NoError(t, err)
	}

	u := sess.Ledger.Usage()
	assert.Equal(t, 120.0, u.CreditsUsed)
	assert.Equal(t, 0.0, u.CreditsRemaining)
}

func TestIngestLiveUpdate(t *testing.T) {
	svc := newTestService(&stubGenerator{})

	tests := []struct {
		name                   string
		title, source, content string
		wantErr                bool
		wantSource             string
	}{
		{name: "ok", title: "T", source: "blog.x.com", content: "c", wantSource: "blog.x.com"},
		{name: "default source", title: " T ", source: "  ", content: "c", wantSource: DefaultLiveSource},
		{name: "blank title", title: " ", content: "c", wantErr: true},
		{name: "blank content", title: "T", content: "\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newTestSession()
			entry, err := svc.IngestLiveUpdate(sess, tt.title, tt.source, tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyLiveUpdate)
				assert.Empty(t, sess.Sources.LiveFeed())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "T", entry.Title)
			assert.Equal(t, tt.wantSource, entry.Source)
			assert.Equal(t, []models.LiveFeedEntry{entry}, sess.Sources.LiveFeed())
		})
	}
}
