package meeting

import (
	"time"

	"meetsync/models"
)

const (
	dayLayout      = "2006-01-02"
	intervalLayout = "2006-01-02 15:04:05"
	slotIDLayout   = "2006-01-02T15:04:05"

	// DefaultCutoff is the fixed business-hours boundary: no offered slot
	// may end after this instant of its day.
	DefaultCutoff = "18:00:00"

	// fallbackDuration substitutes for a meeting with no usable duration.
	fallbackDuration = 60
)

// BuildSlotOptions discretizes availability intervals into the ordered,
// finite candidate list offered to the organizer. The cursor walks each
// interval in minute steps from start to end inclusive; a candidate is
// emitted when cursor+duration stays within the day's cutoff. The
// interval's own end only bounds the cursor, never the candidate's
// finish, so an interval reaching past the cutoff is implicitly capped.
// Interval input order and ascending time within an interval are kept.
// An interval that does not parse is skipped.
func BuildSlotOptions(intervals []models.AvailabilityInterval, durationMinutes int, cutoff string) []models.SlotOption {
	if durationMinutes <= 0 {
		durationMinutes = fallbackDuration
	}
	if cutoff == "" {
		cutoff = DefaultCutoff
	}
	duration := time.Duration(durationMinutes) * time.Minute

	options := make([]models.SlotOption, 0)
	for _, interval := range intervals {
		start, err := time.Parse(intervalLayout, interval.Date+" "+interval.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(intervalLayout, interval.Date+" "+interval.End)
		if err != nil {
			continue
		}
		cutoffAt, err := time.Parse(intervalLayout, interval.Date+" "+cutoff)
		if err != nil {
			continue
		}

		for cursor := start; !cursor.After(end); cursor = cursor.Add(time.Minute) {
			if cursor.Add(duration).After(cutoffAt) {
				continue
			}
			options = append(options, models.SlotOption{
				ID:        cursor.Format(slotIDLayout),
				DateLabel: cursor.Format("02.01.2006"),
				TimeLabel: cursor.Format("15:04"),
			})
		}
	}
	return options
}
