package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meetsync/models"
	"meetsync/utils"
)

func (s *DefaultService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

// Create validates and submits a new meeting, then inserts the created
// record optimistically. The push CREATE that follows deduplicates
// against this insert by id.
func (s *DefaultService) Create(ctx context.Context, req models.CreateMeetingRequest) (*models.Meeting, error) {
	if _, err := s.identity(); err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, NewValidationError("title is required")
	}
	if req.Duration <= 0 || req.Duration > models.MaxDurationMinutes {
		return nil, NewValidationError(fmt.Sprintf("duration must be between 1 and %d minutes", models.MaxDurationMinutes))
	}
	if len(req.PossibleDays) == 0 {
		return nil, NewValidationError("propose at least one candidate day")
	}
	if err := validateDays(req.PossibleDays, nil); err != nil {
		return nil, err
	}

	created, err := s.API.CreateMeeting(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Session.Insert(created)
	return created, nil
}

// Respond submits the caller's answer to a pending meeting. Accepting a
// group meeting requires at least one selected day, and every selected
// day must be a future candidate day; declining clears the selection.
// All checks run before any network call.
func (s *DefaultService) Respond(ctx context.Context, meetingID int64, req models.RespondRequest) error {
	user, err := s.identity()
	if err != nil {
		return err
	}
	m, ok := s.Session.Get(meetingID)
	if !ok {
		return NewInvalidTransitionError("unknown meeting")
	}
	if m.Status != models.MeetingPending {
		return NewInvalidTransitionError("meeting is no longer pending")
	}
	participant := m.Participant(user.ID)
	if participant == nil {
		return NewNotAuthorizedError("not a participant of this meeting")
	}
	if participant.Status != models.AcceptPending {
		return NewInvalidTransitionError("response already recorded")
	}

	switch req.Status {
	case models.AcceptAccepted:
		if !m.EffectivelyPersonal() && len(req.SelectedDays) == 0 {
			return NewValidationError("select at least one workable day")
		}
		if err := validateDays(req.SelectedDays, &m); err != nil {
			return err
		}
	case models.AcceptDeclined:
		req.SelectedDays = nil
	default:
		return NewValidationError("unsupported response status")
	}

	if err := s.API.Respond(ctx, meetingID, req); err != nil {
		return err
	}

	// Optimistic apply through the shared merge primitive; the push
	// UPDATE carrying the canonical record converges with this.
	participants := make([]models.Participant, len(m.Participants))
	copy(participants, m.Participants)
	for i := range participants {
		if participants[i].UserID == user.ID {
			participants[i].Status = req.Status
			participants[i].SelectedDays = req.SelectedDays
		}
	}
	s.applyPatch(meetingID, struct {
		Participants []models.Participant `json:"participants"`
	}{participants})
	return nil
}

// Confirm fixes a pending meeting at the chosen slot. Organizer only,
// and the slot's day must be one of the candidate days.
func (s *DefaultService) Confirm(ctx context.Context, meetingID int64, req models.ScheduleRequest) error {
	user, err := s.identity()
	if err != nil {
		return err
	}
	m, ok := s.Session.Get(meetingID)
	if !ok {
		return NewInvalidTransitionError("unknown meeting")
	}
	if user.ID != m.AuthorID {
		return NewNotAuthorizedError("only the organizer may confirm a meeting")
	}
	if m.Status != models.MeetingPending {
		return NewInvalidTransitionError("meeting is already scheduled")
	}
	if req.StartTime == "" {
		return NewValidationError("select a slot before confirming")
	}
	start, err := time.Parse(slotIDLayout, req.StartTime)
	if err != nil {
		return NewValidationError("malformed start time")
	}
	if !m.HasPossibleDay(start.Format(dayLayout)) {
		return NewValidationError("start day is not among the candidate days")
	}

	if err := s.API.Schedule(ctx, meetingID, req); err != nil {
		return err
	}

	s.applyPatch(meetingID, struct {
		Status    models.MeetingStatus `json:"status"`
		StartTime string               `json:"startTime"`
	}{models.MeetingAccepted, req.StartTime})
	return nil
}

// Remove deletes a meeting. A repeat call while one is outstanding for
// the same id is suppressed. The local record is dropped only when the
// request succeeds; a failure leaves the collection untouched.
func (s *DefaultService) Remove(ctx context.Context, meetingID int64) error {
	user, err := s.identity()
	if err != nil {
		return err
	}
	if m, ok := s.Session.Get(meetingID); ok && user.ID != m.AuthorID {
		return NewNotAuthorizedError("only the organizer may delete a meeting")
	}

	if !s.Session.BeginDelete(meetingID) {
		s.logger().Debug("delete already in flight, suppressed", zap.Int64("meetingId", meetingID))
		return nil
	}
	defer s.Session.EndDelete(meetingID)

	if err := s.API.DeleteMeeting(ctx, meetingID); err != nil {
		return err
	}
	s.Session.Remove(meetingID)
	return nil
}

// Availability fetches the summary for one confirmation attempt. At most
// one fetch per meeting may be in flight within a session.
func (s *DefaultService) Availability(ctx context.Context, meetingID int64) (*models.AvailabilitySummary, error) {
	if !s.Session.BeginAvailability(meetingID) {
		return nil, ErrFetchInFlight
	}
	defer s.Session.EndAvailability(meetingID)
	return s.API.Availability(ctx, meetingID)
}

// ConfirmationOptions runs a full confirmation attempt up to the point of
// choice: fetch the summary, discretize it against the meeting duration,
// and evaluate the decision table.
func (s *DefaultService) ConfirmationOptions(ctx context.Context, meetingID int64) (*ConfirmationPlan, error) {
	m, ok := s.Session.Get(meetingID)
	if !ok {
		return nil, NewInvalidTransitionError("unknown meeting")
	}
	summary, err := s.Availability(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	options := BuildSlotOptions(summary.PossibleIntervals, m.Duration, s.Cutoff)
	decision := Evaluate(summary, m.EffectivelyPersonal(), len(options))
	return &ConfirmationPlan{Summary: summary, Options: options, Decision: decision}, nil
}

func (s *DefaultService) identity() (models.User, error) {
	user := s.Session.User()
	if user.ID == 0 {
		return models.User{}, NewNotAuthenticatedError("no authenticated user")
	}
	return user, nil
}

// applyPatch funnels an optimistic local mutation through the session's
// merge primitive. A failure here is only logged: the backend accepted
// the operation and the push event will converge the collection.
func (s *DefaultService) applyPatch(meetingID int64, patch any) {
	raw, err := json.Marshal(patch)
	if err != nil {
		s.logger().Warn("optimistic apply: encode failed", zap.Int64("meetingId", meetingID), zap.Error(err))
		return
	}
	if _, err := s.Session.Merge(meetingID, raw); err != nil {
		s.logger().Warn("optimistic apply: merge failed", zap.Int64("meetingId", meetingID), zap.Error(err))
	}
}

// validateDays checks that every day parses, is not already past, and,
// when a meeting is given, is one of its candidate days.
func validateDays(days []string, m *models.Meeting) error {
	today := time.Now().Format(dayLayout)
	for _, day := range days {
		parsed, err := time.Parse(dayLayout, day)
		if err != nil {
			return NewValidationError(fmt.Sprintf("malformed day %q", day))
		}
		if parsed.Format(dayLayout) < today {
			return NewValidationError(fmt.Sprintf("day %s is already past", day))
		}
		if m != nil && !m.HasPossibleDay(day) {
			return NewValidationError(fmt.Sprintf("day %s is not among the candidate days", day))
		}
	}
	return nil
}
