package research

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/smart-research-assistant/internal/generate"
	"github.com/ayush/smart-research-assistant/internal/ingest"
	"github.com/ayush/smart-research-assistant/internal/metrics"
	"github.com/ayush/smart-research-assistant/internal/models"
	"github.com/ayush/smart-research-assistant/internal/session"
)

// DefaultLiveSource labels live updates submitted without a source.
const DefaultLiveSource = "MockSource"

var (
	ErrEmptyQuestion   = errors.New("research question is empty")
	ErrEmptyLiveUpdate = errors.New("live update needs a title and content")
)

// Generator produces report text for a prompt. It never fails; a failed
// model call comes back as a fallback Result.
type Generator interface {
	Generate(ctx context.Context, p models.PromptPayload) generate.Result
}

// Service runs report transactions against a session.
type Service struct {
	gen  Generator
	cost float64
	now  func() time.Time
	log  *zap.Logger
}

func NewService(gen Generator, costPerReport float64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gen: gen, cost: costPerReport, now: time.Now, log: log}
}

// SetClock overrides the time source for billing records and report stamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Outcome is everything one report transaction produced.
type Outcome struct {
	Report     models.GeneratedReport
	Candidates []models.EvidenceSource
	Warnings   []string
	Billing    models.BillingRecord
	Usage      models.Usage
	// GenerationErr is the model failure that forced the fallback report.
	GenerationErr error
}

// Response converts the outcome to the POST /api/reports body.
func (o *Outcome) Response() models.ReportResponse {
	resp := models.ReportResponse{
		GeneratedReport: o.Report,
		Warnings:        o.Warnings,
		Usage:           o.Usage,
		Billing:         o.Billing,
	}
	if o.Report.Strategy == models.StrategyNone {
		resp.NoSourcesMessage = NoSourcesMessage
	}
	return resp
}

// Generate runs one transaction: ingest the uploads, compose the prompt,
// generate, reconcile sources, extract takeaways and book the usage. A blank
// question is rejected before the session is touched.
func (s *Service) Generate(ctx context.Context, sess *session.Session, question string, files []ingest.File) (*Outcome, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	batch := ingest.ExtractAll(files)
	for _, w := range batch.Warnings {
		s.log.Warn("file ingestion failed", zap.String("session", sess.ID), zap.String("warning", w))
	}
	sess.Sources.RegisterUploadedFiles(batch.Sources)

	feed := sess.Sources.LiveFeed()
	liveText := ComposeLiveText(feed)
	candidates := BuildCandidateSources(batch.Sources, feed)
	payload := BuildPromptPayload(question, batch.Text, liveText)

	res := s.gen.Generate(ctx, payload)

	list := Reconcile(res.Text, candidates)
	now := s.now()
	report := models.GeneratedReport{
		Question:    question,
		Report:      res.Text,
		Sources:     list.Lines,
		Strategy:    list.Strategy,
		Takeaways:   ExtractTakeaways(res.Text),
		Cited:       CitedIDs(res.Text),
		Backend:     res.Backend,
		Fallback:    res.Fallback,
		GeneratedAt: now,
	}

	rec := sess.Ledger.RecordTransaction(question, s.cost, now)
	sess.LastReport = &report

	metrics.ReportsGenerated.WithLabelValues(string(list.Strategy)).Inc()
	metrics.CreditsConsumed.Add(s.cost)
	s.log.Info("report generated",
		zap.String("session", sess.ID),
		zap.String("backend", res.Backend),
		zap.Bool("fallback", res.Fallback),
		zap.String("strategy", string(list.Strategy)),
		zap.Int("sources", len(list.Lines)),
		zap.Int("files", len(files)),
	)

	return &Outcome{
		Report:        report,
		Candidates:    candidates,
		Warnings:      batch.Warnings,
		Billing:       rec,
		Usage:         sess.Ledger.Usage(),
		GenerationErr: res.Err,
	}, nil
}

// IngestLiveUpdate validates and stores a live feed entry. A blank source
// becomes DefaultLiveSource.
func (s *Service) IngestLiveUpdate(sess *session.Session, title, source, content string) (models.LiveFeedEntry, error) {
	title, source, content = strings.TrimSpace(title), strings.TrimSpace(source), strings.TrimSpace(content)
	if title == "" || content == "" {
		return models.LiveFeedEntry{}, ErrEmptyLiveUpdate
	}
	if source == "" {
		source = DefaultLiveSource
	}
	entry := sess.Sources.RegisterLiveFeedEntry(title, source, content)
	metrics.LiveFeedEntries.Inc()
	s.log.Info("live update ingested", zap.String("session", sess.ID), zap.String("entry", entry.ID), zap.String("source", source))
	return entry, nil
}
