package registration

import (
	"fmt"

	gatherly "gatherly-go"
)

// Draft is the mutable accumulator of everything the attendee has entered
// for one registration attempt. The controller owns it exclusively; on
// failure it is retained so the attendee can correct input and resubmit.
type Draft struct {
	Name  string
	Email string
	Phone string

	TeamName    string
	TeamMembers []gatherly.TeamMember

	CustomValues    map[string]string
	CollectDefaults map[string]bool
}

func newDraft() Draft {
	return Draft{
		CustomValues:    make(map[string]string),
		CollectDefaults: make(map[string]bool),
	}
}

// clone returns a deep copy so callers can inspect the draft without
// mutating controller state.
func (d Draft) clone() Draft {
	out := d
	out.TeamMembers = make([]gatherly.TeamMember, len(d.TeamMembers))
	copy(out.TeamMembers, d.TeamMembers)
	out.CustomValues = make(map[string]string, len(d.CustomValues))
	for k, v := range d.CustomValues {
		out.CustomValues[k] = v
	}
	out.CollectDefaults = make(map[string]bool, len(d.CollectDefaults))
	for k, v := range d.CollectDefaults {
		out.CollectDefaults[k] = v
	}
	return out
}

// ValidationError is a client-side input failure: a missing required field,
// a missing tier selection or an invalid promo code.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return e.Reason
}
