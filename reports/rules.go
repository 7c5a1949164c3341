package reports

import (
	"sort"
	"time"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/utils"
)

// Segment is a continuous presence interval derived from punches.
type Segment struct {
	Start time.Time
	End   time.Time
}

func (s Segment) Duration() time.Duration {
	if s.End.Before(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Delay returns how late an ENTRY punch is against the user's schedule.
// Zero/false when no schedule applies on that weekday or the punch is
// on time or early.
func Delay(entry time.Time, schedule *models.WorkSchedule) (time.Duration, bool) {
	if schedule == nil || !schedule.AppliesOn(entry) {
		return 0, false
	}
	expected, err := utils.ParseTimeOnDate(entry, schedule.StartTime)
	if err != nil {
		return 0, false
	}
	delay := entry.Sub(expected)
	if delay <= 0 {
		return 0, false
	}
	return delay, true
}

// WorkedSegments pairs a day's punches into presence intervals. ENTRY
// and RETURN open a segment, PAUSE and EXIT close it; an unclosed
// segment at the end of the list is dropped (still on the clock).
func WorkedSegments(records []models.TimeRecord) []Segment {
	sorted := make([]models.TimeRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var segments []Segment
	var open *time.Time
	for _, r := range sorted {
		switch r.Type {
		case models.RecordEntry, models.RecordReturn:
			if open == nil {
				ts := r.Timestamp
				open = &ts
			}
		case models.RecordPause, models.RecordExit:
			if open != nil {
				segments = append(segments, Segment{Start: *open, End: r.Timestamp})
				open = nil
			}
		}
	}
	return segments
}

// WorkedDuration sums the presence intervals of a day's punches.
func WorkedDuration(records []models.TimeRecord) time.Duration {
	var total time.Duration
	for _, seg := range WorkedSegments(records) {
		total += seg.Duration()
	}
	return total
}

// Overtime is the worked time falling outside the scheduled window on
// the segments' day. False when no schedule applies.
func Overtime(records []models.TimeRecord, schedule *models.WorkSchedule, date time.Time) (time.Duration, bool) {
	if schedule == nil || !schedule.AppliesOn(date) {
		return 0, false
	}
	windowStart, err := utils.ParseTimeOnDate(date, schedule.StartTime)
	if err != nil {
		return 0, false
	}
	windowEnd, err := utils.ParseTimeOnDate(date, schedule.EndTime)
	if err != nil {
		return 0, false
	}
	if windowEnd.Before(windowStart) {
		// Night shift crossing midnight.
		windowEnd = windowEnd.Add(24 * time.Hour)
	}

	var total time.Duration
	for _, seg := range WorkedSegments(records) {
		total += outsideWindow(seg, windowStart, windowEnd)
	}
	return total, true
}

func outsideWindow(seg Segment, windowStart, windowEnd time.Time) time.Duration {
	if seg.End.Before(seg.Start) {
		return 0
	}
	var total time.Duration
	if seg.Start.Before(windowStart) {
		end := seg.End
		if end.After(windowStart) {
			end = windowStart
		}
		total += end.Sub(seg.Start)
	}
	if seg.End.After(windowEnd) {
		start := seg.Start
		if start.Before(windowEnd) {
			start = windowEnd
		}
		total += seg.End.Sub(start)
	}
	return total
}
