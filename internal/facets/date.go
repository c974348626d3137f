package facets

import (
	"slices"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

// DateMode is which of the mutually exclusive creation date constraints is
// in effect.
type DateMode int

const (
	DateAny DateMode = iota
	DateExact
	DateInLast
	DateRange
	DateLeakPeriod
)

// ModeOf returns the creation date mode of f. An exact date wins over
// everything else, as it hides the other controls.
func ModeOf(f filter.Filter) DateMode {
	switch {
	case f.CreatedAt != "":
		return DateExact
	case f.CreatedInLast != "":
		return DateInLast
	case f.CreatedAfter != "" || f.CreatedBefore != "":
		return DateRange
	case f.SinceLeakPeriod:
		return DateLeakPeriod
	default:
		return DateAny
	}
}

// Period is a predefined "created in last" choice. The empty value means
// any time.
type Period struct {
	Value string
	Label string
}

// Periods lists the predefined periods in display order.
var Periods = []Period{
	{"", "All"},
	{"1w", "Last week"},
	{"1m", "Last month"},
	{"1y", "Last year"},
}

// Date item values. Bars carry their range after the prefix.
const (
	periodPrefix = "period:"
	barPrefix    = "bar:"
	exactValue   = "exact"
)

// Bar is one period of the creation date histogram. Before is zero for the
// last bar when the filter has no upper bound.
type Bar struct {
	After  time.Time
	Before time.Time
	Count  int
}

// Value returns the item value selecting the bar.
func (b Bar) Value() string {
	return barPrefix + model.FormatDate(b.After) + "|" + model.FormatDate(b.Before)
}

// Label returns the start date of the bar, with its end when the bar spans
// more than a day.
func (b Bar) Label() string {
	label := b.After.Format("2006-01-02")
	if !b.Before.IsZero() {
		end := b.Before.AddDate(0, 0, -1)
		if end.Sub(b.After) > 24*time.Hour {
			label += " – " + end.Format("2006-01-02")
		}
	}
	return label
}

// Bars builds the histogram from the createdAt facet. Each bar runs from its
// period start to the start of the next period; the last bar ends at the
// filter's createdBefore, if any. Fewer than two periods yield no bars.
func Bars(f filter.Filter, stats filter.Facet) []Bar {
	if len(stats) < 2 {
		return nil
	}

	type period struct {
		start time.Time
		count int
	}
	periods := make([]period, 0, len(stats))
	for raw, count := range stats {
		start, err := model.ParseDate(raw)
		if err != nil || start.IsZero() {
			continue
		}
		periods = append(periods, period{start, count})
	}
	if len(periods) < 2 {
		return nil
	}
	slices.SortFunc(periods, func(a, b period) int { return a.start.Compare(b.start) })

	var lastBefore time.Time
	if f.CreatedBefore != "" {
		if t, err := model.ParseDate(f.CreatedBefore); err == nil {
			lastBefore = t
		}
	}

	bars := make([]Bar, len(periods))
	for i, p := range periods {
		bars[i] = Bar{After: p.start, Count: p.count}
		if i < len(periods)-1 {
			bars[i].Before = periods[i+1].start
		} else {
			bars[i].Before = lastBefore
		}
	}
	return bars
}

// DateItems lists the creation date controls. With an exact date set only
// that date is listed; otherwise the histogram bars followed by the
// predefined periods.
func DateItems(f filter.Filter, stats filter.Facet) []Item {
	if f.CreatedAt != "" {
		return []Item{{Value: exactValue, Name: ExactDate(f.CreatedAt, time.Now()), Active: true}}
	}

	var items []Item
	for _, bar := range Bars(f, stats) {
		items = append(items, Item{
			Value:    bar.Value(),
			Name:     bar.Label(),
			Count:    bar.Count,
			HasCount: true,
			Active:   barActive(f, bar),
		})
	}
	for _, p := range Periods {
		items = append(items, Item{
			Value:  periodPrefix + p.Value,
			Name:   p.Label,
			Active: p.Value != "" && f.CreatedInLast == p.Value,
		})
	}
	return items
}

func barActive(f filter.Filter, bar Bar) bool {
	return f.CreatedAfter != "" && sameDate(f.CreatedAfter, bar.After) && sameDate(f.CreatedBefore, bar.Before)
}

// sameDate reports whether raw names the instant t. The empty string
// matches the zero time.
func sameDate(raw string, t time.Time) bool {
	parsed, err := model.ParseDate(raw)
	return err == nil && parsed.Equal(t)
}

// ExactDate renders an exact creation date with its age.
func ExactDate(raw string, now time.Time) string {
	t, err := model.ParseDate(raw)
	if err != nil || t.IsZero() {
		return raw
	}
	return t.Format("Jan 2, 2006 3:04 PM") + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

// DateClick returns the change for a date item. Every date control resets
// the others.
func DateClick(f filter.Filter, value string) filter.Patch {
	switch {
	case value == exactValue:
		return ResetDates(filter.Patch{})
	case strings.HasPrefix(value, periodPrefix):
		return PeriodClick(strings.TrimPrefix(value, periodPrefix))
	case strings.HasPrefix(value, barPrefix):
		after, before, _ := strings.Cut(strings.TrimPrefix(value, barPrefix), "|")
		return ResetDates(filter.Patch{
			CreatedAfter:  filter.String(after),
			CreatedBefore: filter.String(before),
		})
	default:
		return filter.Patch{}
	}
}

// PeriodClick selects a predefined period; "" means any time.
func PeriodClick(period string) filter.Patch {
	return ResetDates(filter.Patch{CreatedInLast: filter.String(period)})
}

// ResetDates clears every date constraint except the ones set in changes.
func ResetDates(changes filter.Patch) filter.Patch {
	p := filter.Patch{
		CreatedAfter:    filter.String(""),
		CreatedBefore:   filter.String(""),
		CreatedAt:       filter.String(""),
		CreatedInLast:   filter.String(""),
		SinceLeakPeriod: filter.Bool(false),
	}
	if changes.CreatedAfter != nil {
		p.CreatedAfter = changes.CreatedAfter
	}
	if changes.CreatedBefore != nil {
		p.CreatedBefore = changes.CreatedBefore
	}
	if changes.CreatedAt != nil {
		p.CreatedAt = changes.CreatedAt
	}
	if changes.CreatedInLast != nil {
		p.CreatedInLast = changes.CreatedInLast
	}
	if changes.SinceLeakPeriod != nil {
		p.SinceLeakPeriod = changes.SinceLeakPeriod
	}
	return p
}

// PickAfter sets the lower bound of the date range, keeping the upper bound
// and dropping the exact, in-last and leak period constraints.
func PickAfter(value string) filter.Patch {
	return pick(filter.Patch{CreatedAfter: filter.String(value)})
}

// PickBefore sets the upper bound of the date range.
func PickBefore(value string) filter.Patch {
	return pick(filter.Patch{CreatedBefore: filter.String(value)})
}

func pick(p filter.Patch) filter.Patch {
	p.CreatedAt = filter.String("")
	p.CreatedInLast = filter.String("")
	p.SinceLeakPeriod = filter.Bool(false)
	return p
}

// ValidDay reports whether s is a YYYY-MM-DD date as accepted by the date
// pickers.
func ValidDay(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
