package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"meetsync/models"
)

// Subscription is the push-channel handle a session owns. Exactly one is
// attached per established identity.
type Subscription interface {
	Close()
}

// Session is the per-identity client state: the local meeting collection,
// the in-flight guards, and the push subscription handle. It is built when
// an identity is resolved and torn down on logout. The collection has two
// writers, the optimistic apply of local calls and the reconciler, and
// both go through the merge primitives here.
type Session struct {
	id   string
	user models.User

	mu       sync.Mutex
	meetings []*models.Meeting
	deleting map[int64]struct{}
	fetching map[int64]struct{}
	sub      Subscription
}

// New builds an empty session for the given identity.
func New(user models.User) *Session {
	return &Session{
		id:       uuid.New().String(),
		user:     user,
		deleting: make(map[int64]struct{}),
		fetching: make(map[int64]struct{}),
	}
}

// ID is the session correlation id used in logs.
func (s *Session) ID() string {
	return s.id
}

// User returns the session identity.
func (s *Session) User() models.User {
	return s.user
}

// Len reports the collection size.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.meetings)
}

// Get returns an independent copy of the meeting with the given id.
func (s *Session) Get(id int64) (models.Meeting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(id); i >= 0 {
		return s.meetings[i].Clone(), true
	}
	return models.Meeting{}, false
}

// Snapshot copies the collection in its current presentation order. The
// copies are independent of later merges.
func (s *Session) Snapshot() []models.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Meeting, len(s.meetings))
	for i, m := range s.meetings {
		out[i] = m.Clone()
	}
	return out
}

// Insert adds a meeting unless one with the same id is already present.
// Reports whether the collection changed.
func (s *Session) Insert(m *models.Meeting) bool {
	if m == nil || m.ID == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(m.ID) >= 0 {
		return false
	}
	cp := m.Clone()
	s.meetings = append(s.meetings, &cp)
	return true
}

// Merge applies a partial JSON record to the meeting with the given id:
// fields present in patch overwrite, absent fields are retained. A missing
// meeting is inserted from the patch, tolerating a missed CREATE. When the
// result is a non-personal meeting holding only its author, the record is
// dropped instead of kept. Returns the resulting meeting, or nil when the
// merge removed (or refused to insert) a void record.
func (s *Session) Merge(id int64, patch json.RawMessage) (*models.Meeting, error) {
	if id == 0 {
		return nil, fmt.Errorf("merge: missing meeting id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.find(id); i >= 0 {
		// Deep copy before decoding: json.Unmarshal writes slice elements
		// in place, and a patch may fail mid-decode. The stored record and
		// any copies handed out earlier must stay untouched either way.
		updated := s.meetings[i].Clone()
		if err := json.Unmarshal(patch, &updated); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		updated.ID = id
		if updated.Void() {
			s.meetings = append(s.meetings[:i], s.meetings[i+1:]...)
			return nil, nil
		}
		s.meetings[i] = &updated
		out := updated.Clone()
		return &out, nil
	}

	var m models.Meeting
	if err := json.Unmarshal(patch, &m); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	m.ID = id
	if m.Void() {
		return nil, nil
	}
	s.meetings = append(s.meetings, &m)
	out := m.Clone()
	return &out, nil
}

// Remove drops the meeting with the given id, reporting whether it was present.
func (s *Session) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(id); i >= 0 {
		s.meetings = append(s.meetings[:i], s.meetings[i+1:]...)
		return true
	}
	return false
}

// BeginDelete marks a delete request as in flight. Returns false when one
// is already outstanding for that id.
func (s *Session) BeginDelete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.deleting[id]; busy {
		return false
	}
	s.deleting[id] = struct{}{}
	return true
}

// EndDelete clears the delete-in-flight marker. Called both when the
// request settles and when a DELETE push arrives for the id.
func (s *Session) EndDelete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deleting, id)
}

// DeleteInFlight reports whether a delete request is outstanding for id.
func (s *Session) DeleteInFlight(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.deleting[id]
	return busy
}

// BeginAvailability marks an availability fetch as in flight for the
// meeting, refusing a duplicate concurrent fetch.
func (s *Session) BeginAvailability(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.fetching[id]; busy {
		return false
	}
	s.fetching[id] = struct{}{}
	return true
}

// EndAvailability clears the availability fetch marker.
func (s *Session) EndAvailability(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fetching, id)
}

// AttachSubscription records the push-channel handle. Returns false when
// one is already attached; the caller must not subscribe twice.
func (s *Session) AttachSubscription(sub Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		return false
	}
	s.sub = sub
	return true
}

// Sort reorders the presented collection by the given option. All three
// orders are total and stable; ties keep their relative order.
func (s *Session) Sort(option models.SortOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch option {
	case models.SortByDate:
		sort.SliceStable(s.meetings, func(i, j int) bool {
			return parseCreatedAt(s.meetings[i].CreatedAt).Before(parseCreatedAt(s.meetings[j].CreatedAt))
		})
	case models.SortByTitle:
		sort.SliceStable(s.meetings, func(i, j int) bool {
			return s.meetings[i].Title < s.meetings[j].Title
		})
	case models.SortByStatus:
		sort.SliceStable(s.meetings, func(i, j int) bool {
			return s.meetings[i].Status < s.meetings[j].Status
		})
	}
}

// Close tears the session down: the subscription is released and all
// local state is cleared.
func (s *Session) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.meetings = nil
	s.deleting = make(map[int64]struct{})
	s.fetching = make(map[int64]struct{})
	s.mu.Unlock()
	if sub != nil {
		sub.Close()
	}
}

// find returns the index of the meeting with the given id, or -1.
// Callers hold s.mu.
func (s *Session) find(id int64) int {
	for i, m := range s.meetings {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// createdAtLayouts covers the instant formats the backend emits.
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseCreatedAt(value string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
