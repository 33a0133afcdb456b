package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/api/metrics"
	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
)

const (
	defaultAnalyticsDays = 30
	maxCallsPerQuery     = 500
)

// Analytics aggregates call statistics live from the telephony API. Nothing
// is persisted; when the upstream is unreachable every endpoint degrades to
// an empty dataset labelled with the fallback source instead of erroring, so
// dashboards render blanks rather than failures.
type Analytics struct {
	telephony ports.Telephony
	log       zerolog.Logger
}

func NewAnalytics(telephony ports.Telephony, log zerolog.Logger) *Analytics {
	return &Analytics{
		telephony: telephony,
		log:       log.With().Str("service", "analytics").Logger(),
	}
}

func normalizeDays(days int) int {
	if days <= 0 {
		return defaultAnalyticsDays
	}
	return days
}

func periodLabel(days int) string {
	return fmt.Sprintf("last_%d_days", days)
}

func startDate(days int) string {
	return time.Now().AddDate(0, 0, -days).Format("2006-01-02")
}

// Overview aggregates all calls in the period into one report.
func (s *Analytics) Overview(ctx context.Context, days int) (*ports.OverviewStats, ports.AnalyticsSource, error) {
	days = normalizeDays(days)
	stats := &ports.OverviewStats{Period: periodLabel(days)}

	calls, err := s.telephony.ListCalls(ctx, ports.CallFilter{
		StartDate: startDate(days),
		Limit:     maxCallsPerQuery,
	})
	if err != nil {
		s.fallback(err, "overview")
		return stats, ports.SourceFallback, nil
	}

	totalSeconds := 0
	for _, c := range calls {
		stats.TotalCalls++
		totalSeconds += c.Duration
		if c.Status == "completed" {
			stats.CompletedCalls++
		}
		switch c.Direction {
		case "inbound":
			stats.InboundCalls++
		default:
			stats.OutboundCalls++
		}
	}
	if stats.TotalCalls > 0 {
		stats.AvgDuration = totalSeconds / stats.TotalCalls
	}
	stats.TotalMinutes = float64(totalSeconds) / 60

	return stats, ports.SourceTelephonyAPI, nil
}

// Calls returns the raw filtered call log.
func (s *Analytics) Calls(ctx context.Context, f ports.CallFilter) ([]domain.CallRecord, ports.AnalyticsSource, error) {
	if f.Limit <= 0 {
		f.Limit = maxCallsPerQuery
	}
	calls, err := s.telephony.ListCalls(ctx, f)
	if err != nil {
		s.fallback(err, "calls")
		return []domain.CallRecord{}, ports.SourceFallback, nil
	}
	return calls, ports.SourceTelephonyAPI, nil
}

// Setters reports per-number performance, labelled with each number's
// friendly name. Calls are grouped by the receiving number in one sweep so
// the inventory size does not multiply upstream queries.
func (s *Analytics) Setters(ctx context.Context, days int) (*ports.SetterReport, ports.AnalyticsSource, error) {
	days = normalizeDays(days)
	report := &ports.SetterReport{Period: periodLabel(days), Setters: []ports.SetterStats{}}

	numbers, err := s.telephony.ListAll(ctx)
	if err != nil {
		s.fallback(err, "setters")
		return report, ports.SourceFallback, nil
	}
	calls, err := s.telephony.ListCalls(ctx, ports.CallFilter{
		StartDate: startDate(days),
		Limit:     maxCallsPerQuery,
	})
	if err != nil {
		s.fallback(err, "setters")
		return report, ports.SourceFallback, nil
	}

	type bucket struct {
		total, completed, seconds int
	}
	byNumber := map[string]*bucket{}
	for _, c := range calls {
		b, ok := byNumber[c.To]
		if !ok {
			b = &bucket{}
			byNumber[c.To] = b
		}
		b.total++
		b.seconds += c.Duration
		if c.Status == "completed" {
			b.completed++
		}
	}

	for _, n := range numbers {
		b, ok := byNumber[n.Number]
		if !ok {
			continue
		}
		stat := ports.SetterStats{
			PhoneNumber:    n.Number,
			FriendlyName:   n.FriendlyName,
			TotalCalls:     b.total,
			CompletedCalls: b.completed,
		}
		if b.total > 0 {
			stat.AvgDuration = b.seconds / b.total
		}
		report.Setters = append(report.Setters, stat)
	}
	return report, ports.SourceTelephonyAPI, nil
}

func (s *Analytics) fallback(err error, view string) {
	metrics.AnalyticsFallbackTotal.Inc()
	s.log.Warn().Err(err).Str("view", view).Msg("telephony unavailable, serving fallback analytics")
}
