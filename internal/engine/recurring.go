package engine

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DueRecurring plans the concrete records that recurring templates owe up to
// today. A template produces one record per month, dated on its recurrence
// day (clamped to the month's length), strictly after both the template's own
// date and lastCheck (YYYY-MM-DD, empty for never). Occurrences already
// present as generated records are skipped, so the plan can be re-run.
func DueRecurring(records []CashflowRecord, lastCheck string, today time.Time) []CashflowRecord {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var checked time.Time
	if lastCheck != "" {
		if t, err := time.Parse(dateLayout, lastCheck); err == nil {
			checked = t
		}
	}

	existing := make(map[string]bool)
	for _, r := range records {
		if r.SourceID != "" {
			existing[r.SourceID+"|"+r.Date] = true
		}
	}

	var due []CashflowRecord
	for _, tpl := range records {
		if !tpl.Recurring || tpl.RecurrenceDay < 1 || tpl.RecurrenceDay > 31 {
			continue
		}
		start, err := time.Parse(dateLayout, tpl.Date)
		if err != nil {
			continue
		}
		after := start
		if checked.After(after) {
			after = checked
		}

		for m := time.Date(after.Year(), after.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(today); m = m.AddDate(0, 1, 0) {
			day := tpl.RecurrenceDay
			if last := daysIn(m); day > last {
				day = last
			}
			occ := time.Date(m.Year(), m.Month(), day, 0, 0, 0, 0, time.UTC)
			if !occ.After(after) || occ.After(today) {
				continue
			}
			date := occ.Format(dateLayout)
			if existing[tpl.ID+"|"+date] {
				continue
			}

			rec := tpl
			rec.ID = ""
			rec.Date = date
			rec.Recurring = false
			rec.RecurrenceDay = 0
			rec.SourceID = tpl.ID
			due = append(due, rec)
		}
	}
	return due
}

func daysIn(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FilterRecords returns the records whose category, description, account name
// or amount contains term, ignoring case. An empty term matches everything.
func FilterRecords(records []CashflowRecord, term string) []CashflowRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}

	out := make([]CashflowRecord, 0, len(records))
	for _, r := range records {
		amount := strconv.FormatFloat(r.Amount.Float(), 'f', -1, 64)
		if strings.Contains(strings.ToLower(r.Category), term) ||
			strings.Contains(strings.ToLower(r.Description), term) ||
			strings.Contains(strings.ToLower(r.AccountName), term) ||
			strings.Contains(amount, term) {
			out = append(out, r)
		}
	}
	return out
}
