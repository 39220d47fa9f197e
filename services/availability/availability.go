// Package availability counts persisted bookings against daily and weekly
// capacity and proposes alternate dates when a day is full.
package availability

import (
	"context"
	"time"

	"movebot/database/records"
	"movebot/utils"

	"go.uber.org/zap"
)

// alternateWindowDays bounds the forward scan for alternate dates.
const alternateWindowDays = 14

// Tracker answers capacity questions against the records store. Counts
// are recomputed per query; nothing here is cached.
type Tracker struct {
	Repo          records.Repository
	DailyCapacity int

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewTracker(repo records.Repository, dailyCapacity int) *Tracker {
	return &Tracker{Repo: repo, DailyCapacity: dailyCapacity, Now: time.Now}
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// CountOnDate tallies bookings whose move date exactly matches the given
// YYYY-MM-DD date. Row read failures count as zero; capacity checks must
// not block the flow on a flaky read.
func (t *Tracker) CountOnDate(ctx context.Context, date string) int {
	dates, err := t.Repo.BookingDates(ctx)
	if err != nil {
		utils.GetLogger().Error("Counting bookings on date failed", zap.String("date", date), zap.Error(err))
		return 0
	}
	return countMatches(dates, date)
}

func countMatches(dates []string, date string) int {
	count := 0
	for _, d := range dates {
		if d == date {
			count++
		}
	}
	return count
}

// CountInCurrentWeek tallies bookings created in the current calendar
// week (Monday 00:00:00 through Sunday 23:59:59 local). Unparsable rows
// are skipped silently.
func (t *Tracker) CountInCurrentWeek(ctx context.Context) int {
	stamps, err := t.Repo.BookingTimestamps(ctx)
	if err != nil {
		utils.GetLogger().Error("Counting weekly bookings failed", zap.Error(err))
		return 0
	}
	start, end := WeekBounds(t.now())
	count := 0
	for _, s := range stamps {
		ts, err := time.ParseInLocation(records.TimestampLayout, s, start.Location())
		if err != nil {
			continue
		}
		if !ts.Before(start) && !ts.After(end) {
			count++
		}
	}
	return count
}

// WeekBounds returns the Monday-start week containing t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end
}

// SuggestAlternates scans forward day-by-day from requested+1 for up to
// two weeks, collecting dates with spare capacity. It may return fewer
// than maxN, including none. An unparsable requested date yields nil.
func (t *Tracker) SuggestAlternates(ctx context.Context, requestedDate string, maxN int) []string {
	requested, err := time.Parse(records.DateLayout, requestedDate)
	if err != nil {
		return nil
	}
	dates, err := t.Repo.BookingDates(ctx)
	if err != nil {
		utils.GetLogger().Error("Reading booking dates for alternates failed", zap.Error(err))
		return nil
	}

	var suggestions []string
	for i := 1; i <= alternateWindowDays && len(suggestions) < maxN; i++ {
		candidate := requested.AddDate(0, 0, i).Format(records.DateLayout)
		if countMatches(dates, candidate) < t.DailyCapacity {
			suggestions = append(suggestions, candidate)
		}
	}
	return suggestions
}
