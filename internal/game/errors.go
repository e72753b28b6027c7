package game

import "fmt"

// Reason classifies a rejected zone operation.
type Reason string

const (
	ReasonEmptyZone        Reason = "EmptyZone"
	ReasonIndexOutOfRange  Reason = "IndexOutOfRange"
	ReasonCapacityExceeded Reason = "CapacityExceeded"
	ReasonInvalidZone      Reason = "InvalidZone"
	ReasonNotInitialized   Reason = "NotInitialized"
	ReasonSlotEmpty        Reason = "SlotEmpty"
)

// Sentinels for errors.Is. They match any RejectedError with the same reason.
var (
	ErrEmptyZone        = &RejectedError{Reason: ReasonEmptyZone, Index: -1}
	ErrIndexOutOfRange  = &RejectedError{Reason: ReasonIndexOutOfRange, Index: -1}
	ErrCapacityExceeded = &RejectedError{Reason: ReasonCapacityExceeded, Index: -1}
	ErrInvalidZone      = &RejectedError{Reason: ReasonInvalidZone, Index: -1}
	ErrNotInitialized   = &RejectedError{Reason: ReasonNotInitialized, Index: -1}
	ErrSlotEmpty        = &RejectedError{Reason: ReasonSlotEmpty, Index: -1}
)

// RejectedError reports an operation whose precondition was not met.
// The match state is unchanged when it is returned.
type RejectedError struct {
	Op     string
	Reason Reason
	Zone   Zone
	Index  int // -1 when the operation takes no index
}

func (e *RejectedError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s rejected: %s in %s at index %d", e.Op, e.Reason, e.Zone, e.Index)
	}
	if e.Zone != "" {
		return fmt.Sprintf("%s rejected: %s in %s", e.Op, e.Reason, e.Zone)
	}
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Reason)
}

// Is matches on reason, and on zone when target names one.
func (e *RejectedError) Is(target error) bool {
	t, ok := target.(*RejectedError)
	if !ok {
		return false
	}
	if t.Reason != e.Reason {
		return false
	}
	return t.Zone == "" || t.Zone == e.Zone
}

func reject(op string, reason Reason, zone Zone, index int) *RejectedError {
	return &RejectedError{Op: op, Reason: reason, Zone: zone, Index: index}
}
