package models

// AvailabilityInterval is a same-day half-open window during which the
// best-case participant count is achievable.
type AvailabilityInterval struct {
	Date  string `json:"date"`  // "2006-01-02"
	Start string `json:"start"` // "15:04:05"
	End   string `json:"end"`   // "15:04:05"
}

// AvailabilitySummary is the backend's aggregate over participant
// responses for one meeting, computed per confirmation attempt.
type AvailabilitySummary struct {
	MeetingID         int64                  `json:"meetingId"`
	MaxCount          int                    `json:"maxCount"`          // Most participants simultaneously free
	PossibleIntervals []AvailabilityInterval `json:"possibleIntervals"` // Windows achieving MaxCount, in order
	HavePending       bool                   `json:"havePending"`       // Any participant still undecided
}

// SlotOption is one concrete, duration-bounded start instant offered to
// the organizer during confirmation.
type SlotOption struct {
	ID        string `json:"id"`        // ISO local date-time, payload for scheduling
	DateLabel string `json:"dateLabel"` // "02.01.2006"
	TimeLabel string `json:"timeLabel"` // "15:04"
}
