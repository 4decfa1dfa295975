// Package ical_export renders base events as an iCalendar feed. Recurring events are
// written once with an RRULE so calendar clients expand them on their side.
package ical_export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/klokku/monthcal/pkg/calendar"
	"github.com/klokku/monthcal/pkg/recurrence"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const ProductID = "-//klokku//monthcal//EN"

var weekdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Export serializes events into a VCALENDAR document. stamp is written as
// DTSTAMP on every VEVENT. Events whose pattern cannot be expressed as an
// RRULE are exported as single events.
func Export(events []calendar.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, e := range events {
		vevent := cal.AddEvent(e.ID)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(e.StartDate)
		vevent.SetEndAt(e.EndDate)
		vevent.SetSummary(e.Title)
		if e.Description != "" {
			vevent.SetDescription(e.Description)
		}
		if e.Category != "" {
			vevent.AddProperty(ical.ComponentPropertyCategories, string(e.Category))
		}
		if e.Color != "" {
			vevent.AddProperty(ical.ComponentProperty("COLOR"), string(e.Color))
		}

		if !e.IsRecurring || e.Recurrence == nil {
			continue
		}
		rule, err := RRule(e)
		if err != nil {
			log.Warnf("exporting %s without recurrence: %v", e.ID, err)
			continue
		}
		vevent.AddProperty(ical.ComponentPropertyRrule, rule)
	}
	return cal.Serialize()
}

// RRule returns the RRULE value (without DTSTART) equivalent to e's pattern.
//
// Weekly patterns with weekdays step one week at a time and patterns with no
// end are capped at recurrence.DefaultMaxOccurrences, as in local expansion.
// RRULE allows only one of COUNT and UNTIL, so an occurrence limit wins over
// an end date.
func RRule(e calendar.Event) (string, error) {
	p := e.Recurrence
	if err := recurrence.Validate(p); err != nil {
		return "", err
	}

	opt := rrule.ROption{
		Dtstart:  e.StartDate,
		Interval: p.Interval,
	}
	switch {
	case p.EndAfterOccurrences > 0:
		opt.Count = p.EndAfterOccurrences
	case p.EndDate != nil:
		// UNTIL is inclusive, the end date is not.
		opt.Until = p.EndDate.Add(-time.Second)
	default:
		opt.Count = recurrence.DefaultMaxOccurrences
	}

	switch p.Type {
	case calendar.Weekly:
		opt.Freq = rrule.WEEKLY
		if len(p.DaysOfWeek) > 0 {
			opt.Interval = 1
			for _, d := range p.DaysOfWeek {
				if d < 0 || d > 6 {
					return "", fmt.Errorf("invalid weekday %d", d)
				}
				opt.Byweekday = append(opt.Byweekday, weekdays[d])
			}
		}
	case calendar.Monthly:
		opt.Freq = rrule.MONTHLY
		if p.DayOfMonth > 0 {
			opt.Bymonthday = []int{min(p.DayOfMonth, 31)}
		}
	default:
		opt.Freq = rrule.DAILY
	}

	if _, err := rrule.NewRRule(opt); err != nil {
		return "", fmt.Errorf("invalid recurrence for %s: %w", e.ID, err)
	}
	return opt.RRuleString(), nil
}
