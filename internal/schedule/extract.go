package schedule

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // schedule zones must resolve on hosts without a zoneinfo database

	"github.com/PuerkitoBio/goquery"
	"github.com/tartampluch/go-ivu-ics/internal/config"
)

// Extractor turns IVU schedule pages into calendar events.
type Extractor struct {
	// Location is the zone the portal's naive times are expressed in.
	Location  *time.Location
	Selectors config.Selectors
}

// NewExtractor resolves the timezone and returns an Extractor using the given selectors.
func NewExtractor(timezone string, sel config.Selectors) (*Extractor, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", config.ErrTimezone, timezone, err)
	}
	return &Extractor{Location: loc, Selectors: sel}, nil
}

// Extract parses every document and returns the deduplicated set of events.
// Malformed day cells are skipped; only unreadable documents are errors.
func (x *Extractor) Extract(ctx context.Context, docs ...io.Reader) (*EventSet, error) {
	set := NewEventSet()
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := x.ExtractInto(set, doc); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// ExtractInto parses a single document and adds its events to set.
// It returns the number of day cells found.
func (x *Extractor) ExtractInto(set *EventSet, r io.Reader) (int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrHTMLParse, err)
	}

	days := doc.Find(x.Selectors.Day)
	added := 0
	days.Each(func(_ int, day *goquery.Selection) {
		ev, ok := x.parseDay(day)
		if !ok {
			return
		}
		if set.Add(ev) {
			added++
		}
	})

	slog.Debug(config.MsgDocParsed,
		config.LogKeyComponent, config.CompSchedule,
		config.LogKeyCells, days.Length(),
		config.LogKeyEvents, added,
	)
	return days.Length(), nil
}

// parseDay produces zero or one event from a day cell.
func (x *Extractor) parseDay(day *goquery.Selection) (Event, bool) {
	sel := x.Selectors

	date, ok := day.Find(sel.AllocDay).First().Attr(sel.DateAttr)
	if !ok {
		return skip(config.SkipNoDate, "")
	}

	title := day.Find(sel.Title).First()
	if title.Length() == 0 {
		return skip(config.SkipNoTitle, date)
	}
	name := strings.TrimSpace(title.Text())
	if name == "" {
		return skip(config.SkipNoTitle, date)
	}

	d, err := time.ParseInLocation(config.DateFormatDay, strings.TrimSpace(date), x.Location)
	if err != nil {
		return skip(config.SkipBadDate, date)
	}

	begin := day.Find(sel.TimeBegin).First()
	if begin.Length() == 0 {
		// Free day.
		return Event{Name: name, Begin: d, AllDay: true}, true
	}

	end := day.Find(sel.TimeEnd).First()
	if end.Length() == 0 {
		return skip(config.SkipNoEnd, date)
	}

	rawEnd := end.Text()
	endDay := d
	if IsOvernight(rawEnd) {
		endDay = d.AddDate(0, 0, 1)
	}

	beginAt, err := x.at(d, begin.Text())
	if err != nil {
		return skip(config.SkipBadTime, date)
	}
	endAt, err := x.at(endDay, rawEnd)
	if err != nil {
		return skip(config.SkipBadTime, date)
	}
	if !endAt.After(beginAt) {
		slog.Warn(config.MsgSkippedCell,
			config.LogKeyComponent, config.CompSchedule,
			config.LogKeyReason, config.SkipEndNotAfter,
			config.LogKeyDate, date,
			config.LogKeyTitle, name,
		)
		return Event{}, false
	}

	return Event{Name: name, Begin: beginAt, End: endAt}, true
}

// at combines a date with a raw "HH:MM" value, stripping the overnight marker.
func (x *Extractor) at(day time.Time, raw string) (time.Time, error) {
	clean := strings.Trim(strings.TrimSpace(raw), config.OvernightMarker)
	t, err := time.Parse(config.TimeFormatHHMM, strings.TrimSpace(clean))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, x.Location), nil
}

// IsOvernight reports whether a raw end-time value belongs to a shift
// ending on the day after it begins. Either clause is sufficient:
//   - the value ends with the continuation marker ("23:45+"), or
//   - the value contains the midnight literal anywhere ("00:00").
func IsOvernight(rawEnd string) bool {
	return strings.HasSuffix(strings.TrimSpace(rawEnd), config.OvernightMarker) ||
		strings.Contains(rawEnd, config.MidnightLiteral)
}

func skip(reason, date string) (Event, bool) {
	slog.Debug(config.MsgSkippedCell,
		config.LogKeyComponent, config.CompSchedule,
		config.LogKeyReason, reason,
		config.LogKeyDate, date,
	)
	return Event{}, false
}
