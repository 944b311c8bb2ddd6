package models

import "encoding/json"

// PushAction tags a push message on the per-user update channel.
type PushAction string

const (
	ActionCreate   PushAction = "CREATE"
	ActionUpdate   PushAction = "UPDATE"
	ActionSchedule PushAction = "SCHEDULE"
	ActionDelete   PushAction = "DELETE"
)

// Known reports whether the action is one the reconciler understands.
func (a PushAction) Known() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionSchedule, ActionDelete:
		return true
	}
	return false
}

// PushMessage is one event on the per-user update channel. Data is kept
// raw so that merges only touch the fields the message actually carries.
type PushMessage struct {
	Action    PushAction      `json:"action"`
	MeetingID int64           `json:"meetingId"`
	Data      json.RawMessage `json:"data"`
}
