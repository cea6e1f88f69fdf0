package engine

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tartampluch/go-ivu-ics/internal/config"
	"github.com/tartampluch/go-ivu-ics/internal/schedule"
)

// CalendarMeta carries the calendar-level values written around the events.
type CalendarMeta struct {
	Name     string    // X-WR-CALNAME
	Timezone string    // X-WR-TIMEZONE
	Stamp    time.Time // DTSTAMP of every event
}

// EncodeCalendar serializes the events as an iCalendar document.
// An empty set yields a minimal valid VCALENDAR.
func EncodeCalendar(set *schedule.EventSet, meta CalendarMeta) ([]byte, error) {
	if set.Len() == 0 {
		var buf bytes.Buffer
		fmt.Fprint(&buf, config.StubVCalendar)
		return buf.Bytes(), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)
	if meta.Name != "" {
		cal.Props.SetText(config.PropXWRCalName, meta.Name)
	}
	if meta.Timezone != "" {
		cal.Props.SetText(config.PropXWRTZ, meta.Timezone)
	}

	dtStampProp := utcProp(config.PropDTStamp, meta.Stamp)

	for _, ev := range set.Events() {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, eventUID(ev))
		event.Props.Set(dtStampProp)
		event.Props.SetText(config.PropSummary, ev.Name)

		if ev.AllDay {
			dtStartProp := ical.NewProp(config.PropDTStart)
			dtStartProp.SetDate(ev.Begin)
			event.Props.Set(dtStartProp)
		} else {
			event.Props.Set(utcProp(config.PropDTStart, ev.Begin))
			event.Props.Set(utcProp(config.PropDTEnd, ev.End))
		}

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// utcProp renders t as a UTC date-time ("Z" form). No TZID is written, so
// the calendar needs no VTIMEZONE.
func utcProp(name string, t time.Time) *ical.Prop {
	prop := ical.NewProp(name)
	prop.SetDateTime(t.UTC())
	return prop
}

// uidSpace scopes the name-based UUIDs to this application.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.UIDNamespace))

// eventUID derives a stable UID from the event value, so re-running the
// conversion on the same schedule yields the same UIDs.
func eventUID(ev schedule.Event) string {
	return fmt.Sprintf(config.FormatUID, uuid.NewSHA1(uidSpace, []byte(ev.Key())), config.ICalDomain)
}
