package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/go-ivu-ics/internal/config"
	"github.com/tartampluch/go-ivu-ics/internal/schedule"
)

// MonthSpan is the half-open interval [Start, End) covering one calendar month.
type MonthSpan struct {
	Start time.Time
	End   time.Time
}

// SpanOf returns the month containing t, in t's location.
func SpanOf(t time.Time) MonthSpan {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return MonthSpan{Start: start, End: start.AddDate(0, 1, 0)}
}

// Contains reports whether t lies in [Start, End).
func (s MonthSpan) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// ParseMonth parses a month selector such as "2024-03" into the month span
// in loc. A full date or RFC 3339 instant selects the month containing it.
// Failures wrap ErrUsage.
func ParseMonth(value string, loc *time.Location) (MonthSpan, error) {
	value = strings.TrimSpace(value)

	localLayouts := []string{
		config.MonthFormatYM,
		config.MonthFormatYMD,
		config.MonthFormatY,
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return SpanOf(t), nil
		}
	}

	if t, err := time.Parse(config.MonthFormatRFC, value); err == nil {
		return SpanOf(t.In(loc)), nil
	}

	return MonthSpan{}, fmt.Errorf("%w: %s %q", ErrUsage, config.ErrMonthParse, value)
}

// FilterMonth keeps the events whose begin lies within span.
// All-day and timed events are compared the same way.
func FilterMonth(set *schedule.EventSet, span MonthSpan) *schedule.EventSet {
	out := set.Filter(func(e schedule.Event) bool {
		return span.Contains(e.Begin)
	})

	slog.Debug(config.MsgEventFiltered,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMonth, span.Start.Format(config.MonthFormatYM),
		config.LogKeyKept, out.Len(),
		config.LogKeyDropped, set.Len()-out.Len(),
	)
	return out
}
