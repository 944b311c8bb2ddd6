package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"meetsync/models"
)

// journalCap bounds how many applied events are retained.
const journalCap = 256

// Entry records one push event the reconciler applied.
type Entry struct {
	ID        string            `json:"id"`
	Action    models.PushAction `json:"action"`
	MeetingID int64             `json:"meetingId"`
	AppliedAt time.Time         `json:"appliedAt"`
}

// Journal is a bounded log of applied push events, kept for diagnosis of
// merge behaviour under reordering and duplication.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
}

// Record appends an entry for the applied event.
func (j *Journal) Record(action models.PushAction, meetingID int64) Entry {
	entry := Entry{
		ID:        uuid.New().String(),
		Action:    action,
		MeetingID: meetingID,
		AppliedAt: time.Now(),
	}
	j.mu.Lock()
	j.entries = append(j.entries, entry)
	if len(j.entries) > journalCap {
		j.entries = j.entries[len(j.entries)-journalCap:]
	}
	j.mu.Unlock()
	return entry
}

// Entries returns a copy of the retained log, oldest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}
