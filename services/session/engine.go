package session

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"meetsync/models"
	"meetsync/utils"
)

// Reconciler is the sole consumer of the push channel. It applies events
// to the session collection one at a time in delivery order: duplicates
// are absorbed, a missed CREATE is tolerated, and a malformed message is
// dropped without disturbing the collection.
type Reconciler struct {
	session *Session
	logger  *zap.Logger
	journal Journal
}

// NewReconciler builds a reconciler over the given session.
func NewReconciler(s *Session, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Reconciler{session: s, logger: logger}
}

// Journal exposes the applied-event log.
func (r *Reconciler) Journal() *Journal {
	return &r.journal
}

// Run consumes messages until the channel closes or ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, messages <-chan models.PushMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			r.Apply(msg)
		}
	}
}

// Apply merges one push event into the collection.
func (r *Reconciler) Apply(msg models.PushMessage) {
	switch msg.Action {
	case models.ActionCreate:
		r.applyCreate(msg)
	case models.ActionUpdate, models.ActionSchedule:
		r.applyMerge(msg)
	case models.ActionDelete:
		r.applyDelete(msg)
	default:
		r.logger.Warn("reconcile: dropping event with unknown action",
			zap.String("session", r.session.ID()),
			zap.String("action", string(msg.Action)))
	}
}

func (r *Reconciler) applyCreate(msg models.PushMessage) {
	if len(msg.Data) == 0 {
		r.logger.Warn("reconcile: CREATE without payload",
			zap.String("session", r.session.ID()),
			zap.Int64("meetingId", msg.MeetingID))
		return
	}
	var m models.Meeting
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		r.logger.Warn("reconcile: dropping malformed CREATE",
			zap.String("session", r.session.ID()), zap.Error(err))
		return
	}
	if m.ID == 0 {
		m.ID = msg.MeetingID
	}
	if m.ID == 0 {
		r.logger.Warn("reconcile: CREATE without meeting id",
			zap.String("session", r.session.ID()))
		return
	}
	inserted := r.session.Insert(&m)
	r.journal.Record(models.ActionCreate, m.ID)
	if !inserted {
		// Already present: race with the initial bulk fetch or a duplicate
		// delivery. Either way the collection is unchanged.
		r.logger.Debug("reconcile: CREATE deduplicated",
			zap.String("session", r.session.ID()), zap.Int64("meetingId", m.ID))
	}
}

func (r *Reconciler) applyMerge(msg models.PushMessage) {
	if len(msg.Data) == 0 {
		r.logger.Warn("reconcile: update without payload",
			zap.String("session", r.session.ID()),
			zap.String("action", string(msg.Action)),
			zap.Int64("meetingId", msg.MeetingID))
		return
	}
	id := msg.MeetingID
	if id == 0 {
		id = peekID(msg.Data)
	}
	merged, err := r.session.Merge(id, msg.Data)
	if err != nil {
		r.logger.Warn("reconcile: dropping malformed update",
			zap.String("session", r.session.ID()),
			zap.String("action", string(msg.Action)),
			zap.Int64("meetingId", id),
			zap.Error(err))
		return
	}
	r.journal.Record(msg.Action, id)
	if merged == nil {
		r.logger.Info("reconcile: meeting collapsed to author only, removed",
			zap.String("session", r.session.ID()), zap.Int64("meetingId", id))
	}
}

func (r *Reconciler) applyDelete(msg models.PushMessage) {
	removed := r.session.Remove(msg.MeetingID)
	// The push may race ahead of our own delete response; the marker is
	// cleared on either path.
	r.session.EndDelete(msg.MeetingID)
	r.journal.Record(models.ActionDelete, msg.MeetingID)
	if !removed {
		r.logger.Debug("reconcile: DELETE for unknown meeting",
			zap.String("session", r.session.ID()), zap.Int64("meetingId", msg.MeetingID))
	}
}

// peekID reads just the id field of a raw meeting payload.
func peekID(data json.RawMessage) int64 {
	var probe struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0
	}
	return probe.ID
}
