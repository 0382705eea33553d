// Package billing implements the session-local mock usage meter.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayush/smart-research-assistant/internal/models"
)

// Ledger counts questions, reports and credits for one session and keeps an
// append-only billing log. Nothing decreases the counters or refills credits.
// Credits are decimal so fractional costs add up exactly; the remaining
// balance is always max(0, initial - used).
type Ledger struct {
	InitialCredits decimal.Decimal        `json:"initial_credits"`
	Questions      int                    `json:"questions"`
	Reports        int                    `json:"reports"`
	CreditsUsed    decimal.Decimal        `json:"credits_used"`
	Records        []models.BillingRecord `json:"records"`
}

// NewLedger starts a ledger with the given credit balance.
func NewLedger(initialCredits float64) *Ledger {
	return &Ledger{
		InitialCredits: decimal.NewFromFloat(initialCredits),
		CreditsUsed:    decimal.Zero,
	}
}

// RecordTransaction books one generated report.
func (l *Ledger) RecordTransaction(question string, cost float64, at time.Time) models.BillingRecord {
	l.Questions++
	l.Reports++
	l.CreditsUsed = l.CreditsUsed.Add(decimal.NewFromFloat(cost))

	rec := models.BillingRecord{Question: question, Cost: cost, Timestamp: at}
	l.Records = append(l.Records, rec)
	return rec
}

// Usage returns the current counters.
func (l *Ledger) Usage() models.Usage {
	return models.Usage{
		Questions:        l.Questions,
		Reports:          l.Reports,
		CreditsUsed:      l.CreditsUsed.InexactFloat64(),
		CreditsRemaining: l.remaining().InexactFloat64(),
		InitialCredits:   l.InitialCredits.InexactFloat64(),
	}
}

func (l *Ledger) remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, l.InitialCredits.Sub(l.CreditsUsed))
}

// Recent returns up to n records, newest first. n <= 0 returns all of them.
func (l *Ledger) Recent(n int) []models.BillingRecord {
	if n <= 0 || n > len(l.Records) {
		n = len(l.Records)
	}
	out := make([]models.BillingRecord, 0, n)
	for i := len(l.Records) - 1; i >= len(l.Records)-n; i-- {
		out = append(out, l.Records[i])
	}
	return out
}

// FormatRecord renders a record as a billing log line.
func FormatRecord(rec models.BillingRecord) string {
	return fmt.Sprintf("%s: %q → %g credit(s)", rec.Timestamp.Format(models.DisplayTimeFormat), rec.Question, rec.Cost)
}
