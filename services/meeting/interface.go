package meeting

import (
	"context"

	"go.uber.org/zap"

	"meetsync/models"
	"meetsync/services/session"
)

// API is the slice of the backend surface the negotiation service needs.
// *client.Client satisfies it.
type API interface {
	CreateMeeting(ctx context.Context, req models.CreateMeetingRequest) (*models.Meeting, error)
	Respond(ctx context.Context, meetingID int64, req models.RespondRequest) error
	Schedule(ctx context.Context, meetingID int64, req models.ScheduleRequest) error
	DeleteMeeting(ctx context.Context, meetingID int64) error
	Availability(ctx context.Context, meetingID int64) (*models.AvailabilitySummary, error)
}

// Service governs the legal moves of the negotiation state machine and
// applies their optimistic local effects.
type Service interface {
	Create(ctx context.Context, req models.CreateMeetingRequest) (*models.Meeting, error)
	Respond(ctx context.Context, meetingID int64, req models.RespondRequest) error
	Confirm(ctx context.Context, meetingID int64, req models.ScheduleRequest) error
	Remove(ctx context.Context, meetingID int64) error
	Availability(ctx context.Context, meetingID int64) (*models.AvailabilitySummary, error)
	ConfirmationOptions(ctx context.Context, meetingID int64) (*ConfirmationPlan, error)
}

// ConfirmationPlan is everything a confirmation attempt needs: the fetched
// summary, the discretized candidates, and the policy verdict over both.
type ConfirmationPlan struct {
	Summary  *models.AvailabilitySummary
	Options  []models.SlotOption
	Decision Decision
}

// DefaultService implements Service over a session and the backend API.
type DefaultService struct {
	API     API
	Session *session.Session
	Logger  *zap.Logger
	Cutoff  string // daily slot cutoff, DefaultCutoff when empty
}
