package meeting_test

import (
	"testing"

	"meetsync/models"
	"meetsync/services/meeting"
)

func TestEvaluateDecisionTable(t *testing.T) {
	tests := []struct {
		name      string
		summary   models.AvailabilitySummary
		personal  bool
		slotCount int
		want      meeting.Outcome
	}{
		{"personal without slots", models.AvailabilitySummary{MaxCount: 1}, true, 0, meeting.OutcomeVoid},
		{"personal with slots", models.AvailabilitySummary{MaxCount: 1}, true, 5, meeting.OutcomeSelectable},
		{"organizer cannot attend", models.AvailabilitySummary{MaxCount: 0}, false, 5, meeting.OutcomeVoid},
		{"only organizer, invitees pending", models.AvailabilitySummary{MaxCount: 1, HavePending: true}, false, 5, meeting.OutcomeArbitrate},
		{"only organizer, all responded", models.AvailabilitySummary{MaxCount: 1, HavePending: false}, false, 5, meeting.OutcomeVoid},
		{"too few options for a group", models.AvailabilitySummary{MaxCount: 2}, false, 1, meeting.OutcomeVoid},
		{"group selectable", models.AvailabilitySummary{MaxCount: 2}, false, 2, meeting.OutcomeSelectable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := meeting.Evaluate(&tt.summary, tt.personal, tt.slotCount)
			if got.Outcome != tt.want {
				t.Fatalf("expected %s, got %s (%s)", tt.want, got.Outcome, got.Reason)
			}
		})
	}
}

func TestEvaluateIgnoresIntervalList(t *testing.T) {
	// Intervals are presentation detail; the verdict depends only on
	// MaxCount, HavePending and the slot count.
	summary := models.AvailabilitySummary{
		MaxCount:    1,
		HavePending: true,
		PossibleIntervals: []models.AvailabilityInterval{
			{Date: "2030-01-10", Start: "09:00:00", End: "10:00:00"},
			{Date: "2030-01-11", Start: "09:00:00", End: "10:00:00"},
			{Date: "2030-01-12", Start: "09:00:00", End: "10:00:00"},
		},
	}
	got := meeting.Evaluate(&summary, false, 100)
	if got.Outcome != meeting.OutcomeArbitrate {
		t.Fatalf("expected arbitrate, got %s", got.Outcome)
	}
}
