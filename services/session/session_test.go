package session_test

import (
	"encoding/json"
	"testing"

	"meetsync/models"
	"meetsync/services/session"
)

func meetingFixture(id int64, title string) *models.Meeting {
	return &models.Meeting{
		ID:           id,
		Title:        title,
		AuthorID:     1,
		PossibleDays: []string{"2030-05-20", "2030-05-21"},
		Duration:     30,
		Status:       models.MeetingPending,
		CreatedAt:    "2026-08-01T10:00:00",
		Participants: []models.Participant{
			{ID: id*10 + 1, EventID: id, UserID: 1, Status: models.AcceptAccepted},
			{ID: id*10 + 2, EventID: id, UserID: 2, Status: models.AcceptPending},
		},
	}
}

func rawPatch(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal patch: %v", err)
	}
	return data
}

func TestInsertDeduplicates(t *testing.T) {
	s := session.New(models.User{ID: 1})

	if !s.Insert(meetingFixture(5, "first")) {
		t.Fatal("first insert should succeed")
	}
	if s.Insert(meetingFixture(5, "second")) {
		t.Fatal("insert with an existing id must be a no-op")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 meeting, got %d", s.Len())
	}
	m, _ := s.Get(5)
	if m.Title != "first" {
		t.Fatalf("duplicate insert must keep the existing record, got %q", m.Title)
	}
	if s.Insert(&models.Meeting{Title: "no id"}) {
		t.Fatal("a meeting without an id must be refused")
	}
}

func TestMergeRetainsAbsentFields(t *testing.T) {
	s := session.New(models.User{ID: 1})
	s.Insert(meetingFixture(5, "planning"))

	merged, err := s.Merge(5, rawPatch(t, map[string]any{
		"status":    models.MeetingAccepted,
		"startTime": "2030-05-20T09:00:00",
	}))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Status != models.MeetingAccepted || merged.StartTime != "2030-05-20T09:00:00" {
		t.Fatalf("patched fields not applied: %+v", merged)
	}
	if merged.Title != "planning" || len(merged.Participants) != 2 || merged.Duration != 30 {
		t.Fatalf("absent fields must be retained: %+v", merged)
	}
}

func TestMergeInsertsMissingMeeting(t *testing.T) {
	s := session.New(models.User{ID: 1})

	merged, err := s.Merge(9, rawPatch(t, meetingFixture(9, "late create")))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged == nil || merged.Title != "late create" {
		t.Fatalf("missed create not inserted: %+v", merged)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 meeting, got %d", s.Len())
	}
}

func TestMergeCollapsesVoidMeeting(t *testing.T) {
	s := session.New(models.User{ID: 1})
	s.Insert(meetingFixture(5, "planning"))

	// Everyone but the organizer has left.
	merged, err := s.Merge(5, rawPatch(t, map[string]any{
		"participants": []models.Participant{
			{ID: 51, EventID: 5, UserID: 1, Status: models.AcceptAccepted},
		},
	}))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged != nil {
		t.Fatalf("void meeting must be removed, got %+v", merged)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", s.Len())
	}
}

func TestMergeKeepsVoidShapedPersonalMeeting(t *testing.T) {
	s := session.New(models.User{ID: 1})
	personal := meetingFixture(5, "focus time")
	personal.IsPersonal = true
	personal.Participants = personal.Participants[:1]
	s.Insert(personal)

	merged, err := s.Merge(5, rawPatch(t, map[string]any{"title": "deep focus"}))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged == nil || merged.Title != "deep focus" {
		t.Fatalf("personal meeting must survive the merge: %+v", merged)
	}
}

func TestMergeErrors(t *testing.T) {
	s := session.New(models.User{ID: 1})
	s.Insert(meetingFixture(5, "planning"))

	if _, err := s.Merge(0, rawPatch(t, map[string]any{"title": "x"})); err == nil {
		t.Fatal("merge without an id must fail")
	}
	if _, err := s.Merge(5, json.RawMessage(`{not json`)); err == nil {
		t.Fatal("malformed patch must fail")
	}
	m, _ := s.Get(5)
	if m.Title != "planning" {
		t.Fatalf("failed merge must leave the record untouched, got %q", m.Title)
	}
}

func TestMergeFailureLeavesParticipantsUntouched(t *testing.T) {
	s := session.New(models.User{ID: 1})
	s.Insert(meetingFixture(5, "planning"))

	// The participants array decodes before the type-mismatched title
	// aborts the unmarshal. The stored record must not see the partial
	// decode.
	patch := json.RawMessage(`{"participants":[{"id":51,"eventId":5,"userId":99,"status":"DECLINED"}],"title":123}`)
	if _, err := s.Merge(5, patch); err == nil {
		t.Fatal("expected the malformed patch to fail")
	}

	m, _ := s.Get(5)
	if len(m.Participants) != 2 {
		t.Fatalf("participants rewritten by a failed merge: %+v", m.Participants)
	}
	if m.Participants[0].UserID != 1 || m.Participants[0].Status != models.AcceptAccepted {
		t.Fatalf("participant 0 corrupted: %+v", m.Participants[0])
	}
}

func TestCopiesAreIndependentOfLaterMerges(t *testing.T) {
	s := session.New(models.User{ID: 1})
	s.Insert(meetingFixture(5, "planning"))

	before, _ := s.Get(5)
	snapshot := s.Snapshot()

	_, err := s.Merge(5, rawPatch(t, map[string]any{
		"participants": []models.Participant{
			{ID: 51, EventID: 5, UserID: 1, Status: models.AcceptAccepted},
			{ID: 52, EventID: 5, UserID: 2, Status: models.AcceptDeclined},
		},
	}))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	if before.Participants[1].Status != models.AcceptPending {
		t.Fatalf("copy from Get mutated by a later merge: %+v", before.Participants[1])
	}
	if snapshot[0].Participants[1].Status != models.AcceptPending {
		t.Fatalf("copy from Snapshot mutated by a later merge: %+v", snapshot[0].Participants[1])
	}
	m, _ := s.Get(5)
	if m.Participants[1].Status != models.AcceptDeclined {
		t.Fatalf("merge itself not applied: %+v", m.Participants[1])
	}
}

func TestSortOrders(t *testing.T) {
	build := func() *session.Session {
		s := session.New(models.User{ID: 1})
		a := meetingFixture(1, "beta")
		a.CreatedAt = "2026-08-03T10:00:00"
		b := meetingFixture(2, "alpha")
		b.CreatedAt = "2026-08-01T10:00:00"
		b.Status = models.MeetingAccepted
		c := meetingFixture(3, "alpha")
		c.CreatedAt = "2026-08-02T10:00:00"
		s.Insert(a)
		s.Insert(b)
		s.Insert(c)
		return s
	}

	ids := func(s *session.Session) []int64 {
		var out []int64
		for _, m := range s.Snapshot() {
			out = append(out, m.ID)
		}
		return out
	}

	t.Run("by date", func(t *testing.T) {
		s := build()
		s.Sort(models.SortByDate)
		got := ids(s)
		want := []int64{2, 3, 1}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("date order: got %v, want %v", got, want)
			}
		}
	})

	t.Run("by title is stable", func(t *testing.T) {
		s := build()
		s.Sort(models.SortByTitle)
		got := ids(s)
		// The two "alpha" meetings keep their insertion order.
		want := []int64{2, 3, 1}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("title order: got %v, want %v", got, want)
			}
		}
		// Sorting again must not reshuffle ties.
		s.Sort(models.SortByTitle)
		again := ids(s)
		for i := range want {
			if again[i] != want[i] {
				t.Fatalf("repeated sort reshuffled: got %v, want %v", again, want)
			}
		}
	})

	t.Run("by status", func(t *testing.T) {
		s := build()
		s.Sort(models.SortByStatus)
		got := ids(s)
		// ACCEPTED sorts before PENDING; pending ones keep insertion order.
		want := []int64{2, 1, 3}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("status order: got %v, want %v", got, want)
			}
		}
	})
}

func TestDeleteGuard(t *testing.T) {
	s := session.New(models.User{ID: 1})

	if !s.BeginDelete(5) {
		t.Fatal("first delete should acquire the marker")
	}
	if s.BeginDelete(5) {
		t.Fatal("second delete must be refused while in flight")
	}
	if !s.BeginDelete(6) {
		t.Fatal("guard is per meeting")
	}
	s.EndDelete(5)
	if !s.BeginDelete(5) {
		t.Fatal("marker must be reusable after EndDelete")
	}
}

func TestAvailabilityGuard(t *testing.T) {
	s := session.New(models.User{ID: 1})

	if !s.BeginAvailability(5) {
		t.Fatal("first fetch should acquire the marker")
	}
	if s.BeginAvailability(5) {
		t.Fatal("concurrent fetch must be refused")
	}
	s.EndAvailability(5)
	if !s.BeginAvailability(5) {
		t.Fatal("marker must be reusable after EndAvailability")
	}
}

type closeCounter struct{ closed int }

func (c *closeCounter) Close() { c.closed++ }

func TestAttachSubscriptionOnce(t *testing.T) {
	s := session.New(models.User{ID: 1})
	first, second := &closeCounter{}, &closeCounter{}

	if !s.AttachSubscription(first) {
		t.Fatal("first attach should succeed")
	}
	if s.AttachSubscription(second) {
		t.Fatal("second attach must be refused")
	}
}

func TestCloseTearsDown(t *testing.T) {
	s := session.New(models.User{ID: 1})
	s.Insert(meetingFixture(5, "planning"))
	s.BeginDelete(5)
	sub := &closeCounter{}
	s.AttachSubscription(sub)

	s.Close()

	if sub.closed != 1 {
		t.Fatalf("subscription closed %d times, want 1", sub.closed)
	}
	if s.Len() != 0 {
		t.Fatalf("collection must be cleared, got %d", s.Len())
	}
	if s.DeleteInFlight(5) {
		t.Fatal("markers must be cleared")
	}
	// Idempotent.
	s.Close()
	if sub.closed != 1 {
		t.Fatalf("second close must not re-close the subscription, got %d", sub.closed)
	}
}
