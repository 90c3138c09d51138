// Package airdrop derives event timestamps and display labels from the loose
// date fields an airdrop record may carry, and deduplicates listings that
// share a project name.
package airdrop

import (
	"strings"
	"time"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// HasTimeComponent reports whether a raw timestamp string carries a
// time-of-day part (an ISO "T" separator with content after it).
func HasTimeComponent(value string) bool {
	return value != "" && strings.Contains(value, "T") && len(value) > 10
}

// SanitizeTime normalizes a loose time-of-day string to HH:MM:SS: zone
// suffixes and fractional seconds are stripped, missing segments default to
// zero, and segments are zero-padded. Returns "" for blank input.
func SanitizeTime(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	// Drop zone and fraction: "10:30:00.500+07:00" -> "10:30:00".
	main := trimmed
	if i := strings.IndexAny(main, "Zz"); i >= 0 {
		main = main[:i]
	}
	if i := strings.Index(main, "+"); i >= 0 {
		main = main[:i]
	}
	if i := strings.Index(main, "."); i >= 0 {
		main = main[:i]
	}

	segments := strings.Split(main, ":")
	parts := []string{"00", "00", "00"}
	for i := 0; i < len(segments) && i < 3; i++ {
		seg := segments[i]
		for len(seg) < 2 {
			seg = "0" + seg
		}
		parts[i] = seg
	}
	return strings.Join(parts, ":")
}

// EventTimestamp derives the event time in epoch milliseconds. EventDate
// (plus a sanitized EventTime when present) wins over TimeISO; records with
// neither have no timestamp.
func EventTimestamp(a model.Airdrop) (int64, bool) {
	if a.EventDate != "" {
		s := a.EventDate
		layout := "2006-01-02"
		if t := SanitizeTime(a.EventTime); t != "" {
			s = a.EventDate + "T" + t
			layout = "2006-01-02T15:04:05"
		}
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts.UnixMilli(), true
		}
	}

	if a.TimeISO != "" {
		if ts, ok := parseISO(a.TimeISO); ok {
			return ts.UnixMilli(), true
		}
	}

	return 0, false
}

// DateLabel renders the event date: "Jan 2, 2006", the raw string when it
// refuses to parse, or "TBA" when no date exists at all.
func DateLabel(a model.Airdrop) string {
	if a.EventDate != "" {
		if ts, err := time.ParseInLocation("2006-01-02", a.EventDate, time.Local); err == nil {
			return ts.Format("Jan 2, 2006")
		}
		return a.EventDate
	}

	if a.TimeISO != "" {
		if ts, ok := parseISO(a.TimeISO); ok {
			return ts.Format("Jan 2, 2006")
		}
	}

	return "TBA"
}

// TimeLabel renders the event time of day ("3:04 PM"), or "" when the record
// carries no usable time. Legacy records that stored their only time inside
// TimeISO are honored when no EventDate is present.
func TimeLabel(a model.Airdrop) string {
	if t := SanitizeTime(a.EventTime); t != "" {
		if ts, err := time.Parse("15:04:05", t); err == nil {
			return ts.Format("3:04 PM")
		}
	}

	if a.EventDate == "" && HasTimeComponent(a.TimeISO) {
		if ts, ok := parseISO(a.TimeISO); ok {
			return ts.Format("3:04 PM")
		}
	}

	return ""
}

// Dedupe collapses records sharing a project name, keeping the one with the
// latest derived timestamp. A timestamped record beats an undated one; ties
// keep the first seen. Order of survivors follows first appearance.
func Dedupe(items []model.Airdrop) []model.Airdrop {
	type entry struct {
		idx int
		ts  int64
		has bool
	}

	best := make(map[string]entry, len(items))
	var order []string

	for i, a := range items {
		ts, has := EventTimestamp(a)

		cur, seen := best[a.Project]
		if !seen {
			best[a.Project] = entry{idx: i, ts: ts, has: has}
			order = append(order, a.Project)
			continue
		}

		if has && (!cur.has || ts > cur.ts) {
			best[a.Project] = entry{idx: i, ts: ts, has: has}
		}
	}

	out := make([]model.Airdrop, 0, len(order))
	for _, project := range order {
		out = append(out, items[best[project].idx])
	}
	return out
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
