package meeting

import "meetsync/models"

// Outcome is what the availability policy allows a confirmation attempt
// to do next.
type Outcome int

const (
	// OutcomeSelectable offers the discretized slot list for choice.
	OutcomeSelectable Outcome = iota
	// OutcomeArbitrate asks the organizer to wait for pending invitees
	// or delete the meeting now.
	OutcomeArbitrate
	// OutcomeVoid means the meeting cannot occur and must be deleted.
	OutcomeVoid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelectable:
		return "selectable"
	case OutcomeArbitrate:
		return "arbitrate"
	case OutcomeVoid:
		return "void"
	}
	return "unknown"
}

// Decision is the policy verdict plus the operator-facing reason.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Evaluate runs the confirmation decision table over an availability
// summary. The rows are ordered; the first match wins. The interval list
// itself never enters the decision — only MaxCount, HavePending and the
// discretized slot count do. A meeting with at most one participant is
// treated as personal here.
func Evaluate(summary *models.AvailabilitySummary, personal bool, slotCount int) Decision {
	if personal {
		if slotCount == 0 {
			return Decision{
				Outcome: OutcomeVoid,
				Reason:  "no slots available for a personal meeting",
			}
		}
		return Decision{Outcome: OutcomeSelectable}
	}

	switch {
	case summary.MaxCount == 0:
		return Decision{
			Outcome: OutcomeVoid,
			Reason:  "the organizer cannot attend any candidate window",
		}
	case summary.MaxCount == 1 && summary.HavePending:
		return Decision{
			Outcome: OutcomeArbitrate,
			Reason:  "only the organizer is available; other invitees have not responded",
		}
	case summary.MaxCount == 1:
		return Decision{
			Outcome: OutcomeVoid,
			Reason:  "no other participant can attend",
		}
	case slotCount <= 1:
		return Decision{
			Outcome: OutcomeVoid,
			Reason:  "not enough timing options for a group meeting",
		}
	}
	return Decision{Outcome: OutcomeSelectable}
}
