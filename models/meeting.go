package models

// AcceptStatus is the response state of a single participant.
type AcceptStatus string

const (
	AcceptPending   AcceptStatus = "PENDING"
	AcceptAccepted  AcceptStatus = "ACCEPTED"
	AcceptDeclined  AcceptStatus = "DECLINED"
	AcceptInability AcceptStatus = "INABILITY" // set by the backend scheduler only
)

// MeetingStatus is the negotiation state of the meeting itself.
// PENDING moves to ACCEPTED exactly once; deletion is terminal.
type MeetingStatus string

const (
	MeetingPending  MeetingStatus = "PENDING"
	MeetingAccepted MeetingStatus = "ACCEPTED"
)

// MaxDurationMinutes bounds a meeting's duration.
const MaxDurationMinutes = 540

// Participant ties one user to one meeting. At most one record
// exists per (meeting, user) pair.
type Participant struct {
	ID           int64        `json:"id"`           // Participant row identifier
	EventID      int64        `json:"eventId"`      // Owning meeting
	UserID       int64        `json:"userId"`       // Responding user
	User         User         `json:"user"`         // Embedded user snapshot
	Status       AcceptStatus `json:"status"`       // Response state
	SelectedDays []string     `json:"selectedDays"` // Days the participant flagged as workable ("2006-01-02")
}

// Meeting is the client-side view of one meeting under negotiation
// or already scheduled. The backend owns the canonical record.
type Meeting struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	AuthorID     int64         `json:"authorId"`     // Organizer; always also a participant
	PossibleDays []string      `json:"possibleDays"` // Candidate days proposed at creation
	Participants []Participant `json:"participants"`
	IsPersonal   bool          `json:"isPersonal"` // No negotiation phase, author only
	StartTime    string        `json:"startTime,omitempty"` // ISO instant, present iff status is ACCEPTED
	Duration     int           `json:"duration"`            // Minutes, 0 < d <= 540
	Status       MeetingStatus `json:"status"`
	CreatedAt    string        `json:"createdAt"`
}

// Clone returns a deep copy of the meeting. Every slice gets a fresh
// backing array, so the copy can be mutated or decoded into without
// writing through to the original.
func (m *Meeting) Clone() Meeting {
	cp := *m
	cp.PossibleDays = append([]string(nil), m.PossibleDays...)
	cp.Participants = make([]Participant, len(m.Participants))
	for i, p := range m.Participants {
		p.SelectedDays = append([]string(nil), p.SelectedDays...)
		cp.Participants[i] = p
	}
	return cp
}

// Participant returns the response record for the given user, or nil.
func (m *Meeting) Participant(userID int64) *Participant {
	for i := range m.Participants {
		if m.Participants[i].UserID == userID {
			return &m.Participants[i]
		}
	}
	return nil
}

// EffectivelyPersonal reports whether the meeting is treated as personal
// for scheduling decisions: either flagged as such, or it never had more
// than one participant.
func (m *Meeting) EffectivelyPersonal() bool {
	return m.IsPersonal || len(m.Participants) <= 1
}

// Void reports whether a non-personal meeting has degenerated to the
// organizer alone. Such a meeting cannot occur and must not persist in
// the local collection.
func (m *Meeting) Void() bool {
	return !m.IsPersonal &&
		len(m.Participants) == 1 &&
		m.Participants[0].UserID == m.AuthorID
}

// HasPossibleDay reports whether day is one of the candidate days.
func (m *Meeting) HasPossibleDay(day string) bool {
	for _, d := range m.PossibleDays {
		if d == day {
			return true
		}
	}
	return false
}

// CreateMeetingRequest is the payload for creating a meeting.
type CreateMeetingRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PossibleDays []string `json:"possibleDays"`
	Participants []int64  `json:"participants,omitempty"` // Invited user ids
	Duration     int      `json:"duration"`
}

// RespondRequest is a participant's answer to a pending meeting.
// Status is ACCEPTED or DECLINED; INABILITY is never sent by a client.
type RespondRequest struct {
	Status       AcceptStatus `json:"status"`
	SelectedDays []string     `json:"selectedDays"`
}

// ScheduleRequest fixes the meeting at a concrete start instant.
type ScheduleRequest struct {
	StartTime string `json:"startTime"`
}

// SortOption selects one of the presentation orders over the collection.
type SortOption string

const (
	SortByDate   SortOption = "DATE"   // createdAt ascending
	SortByTitle  SortOption = "TITLE"  // title lexicographic
	SortByStatus SortOption = "STATUS" // status lexicographic (ACCEPTED < PENDING)
)
