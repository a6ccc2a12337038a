package domain

// Status is the approval state of an investment request.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"

	// StatusDraft is a legacy state still present in stored records.
	// It is never a valid transition target.
	StatusDraft Status = "Draft"
)

// TransitionTargets are the states an admin may move a request into.
// Approved and Rejected are not terminal: decisions are reversible and
// a request can be put back to Pending (hold).
var TransitionTargets = []Status{StatusApproved, StatusRejected, StatusPending}

// IsValidTransition reports whether s is an allowed transition target.
func (s Status) IsValidTransition() bool {
	for _, t := range TransitionTargets {
		if s == t {
			return true
		}
	}
	return false
}

// IsKnown reports whether s is one of the recognized states, including
// the legacy Draft state.
func (s Status) IsKnown() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDraft:
		return true
	}
	return false
}

// NormalizeStatus maps a raw stored status string onto the closed enum.
// Empty and unrecognized values fold into Pending so that legacy records
// are counted rather than dropped or crashed on.
func NormalizeStatus(raw string) Status {
	s := Status(raw)
	if s.IsKnown() {
		return s
	}
	return StatusPending
}

func (s Status) String() string {
	return string(s)
}
