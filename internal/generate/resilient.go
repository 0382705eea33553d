package generate

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/smart-research-assistant/internal/metrics"
	"github.com/ayush/smart-research-assistant/internal/models"
)

// MockBackendName labels reports produced without any backend configured.
const MockBackendName = "mock"

// ErrEmptyReport is returned when a backend answers with no text.
var ErrEmptyReport = errors.New("backend returned an empty report")

// Result is the outcome of one generation call. Err is set only when a
// configured backend failed and the fallback report was substituted.
type Result struct {
	Text     string
	Backend  string
	Fallback bool
	Err      error
}

// Resilient never fails: every backend error, timeout or empty answer turns
// into the fallback report.
type Resilient struct {
	backend Backend
	timeout time.Duration
	log     *zap.Logger
}

// NewResilient wraps backend. A nil backend runs in mock mode.
func NewResilient(backend Backend, timeout time.Duration, log *zap.Logger) *Resilient {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resilient{backend: backend, timeout: timeout, log: log}
}

// Generate asks the backend for a report bounded by the configured timeout.
func (r *Resilient) Generate(ctx context.Context, p models.PromptPayload) Result {
	if r.backend == nil {
		metrics.GenerationFallbacks.WithLabelValues("mock").Inc()
		return Result{
			Text:     FallbackReport(p.Question, p.FileText, p.LiveText),
			Backend:  MockBackendName,
			Fallback: true,
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	name := r.backend.Name()
	start := time.Now()
	text, err := r.backend.Complete(ctx, p)
	metrics.GenerationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyReport
	}
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			reason = "timeout"
		}
		metrics.GenerationFallbacks.WithLabelValues(reason).Inc()
		r.log.Warn("generation failed, using fallback report",
			zap.String("backend", name), zap.String("reason", reason), zap.Error(err))
		return Result{
			Text:     FallbackReport(p.Question, p.FileText, p.LiveText),
			Backend:  name,
			Fallback: true,
			Err:      err,
		}
	}
	return Result{Text: text, Backend: name}
}
