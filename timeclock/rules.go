package timeclock

import (
	"fmt"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

// Mode selects the punch-sequencing policy for a deployment. The two
// policies are mutually inconsistent and are never merged: a deployment
// runs one or the other.
type Mode string

const (
	// ModeTwoState accepts ENTRY/EXIT and rejects a punch whose type
	// equals the user's most recent punch of the current day.
	ModeTwoState Mode = "two-state"
	// ModeFourState enforces the strict ENTRY, PAUSE, RETURN, EXIT cycle.
	ModeFourState Mode = "four-state"
)

func (m Mode) Valid() bool {
	return m == ModeTwoState || m == ModeFourState
}

// SequenceViolationError names the offending transition,
// e.g. "duplicate ENTRY" or "EXIT without RETURN".
type SequenceViolationError struct {
	Transition string
}

func (e *SequenceViolationError) Error() string {
	return "sequence violation: " + e.Transition
}

// ValidateTransition decides whether a punch of type next is legal given
// the user's most recent punch. last is nil when the user has no prior
// punch in the mode's window (two-state: today; four-state: ever).
func ValidateTransition(mode Mode, last *models.TimeRecord, next models.RecordType) error {
	switch mode {
	case ModeTwoState:
		return validateTwoState(last, next)
	case ModeFourState:
		return validateFourState(last, next)
	}
	return fmt.Errorf("unknown sequencing mode %q", mode)
}

func validateTwoState(last *models.TimeRecord, next models.RecordType) error {
	if next != models.RecordEntry && next != models.RecordExit {
		return &SequenceViolationError{Transition: string(next) + " not allowed in two-state mode"}
	}
	if last != nil && last.Type == next {
		return &SequenceViolationError{Transition: "duplicate " + string(next)}
	}
	return nil
}

func validateFourState(last *models.TimeRecord, next models.RecordType) error {
	switch next {
	case models.RecordEntry:
		// Legal only when there is no open (non-EXIT-terminated) entry.
		if last != nil && last.Type != models.RecordExit {
			return &SequenceViolationError{Transition: "duplicate ENTRY"}
		}
	case models.RecordPause:
		if last == nil || last.Type != models.RecordEntry {
			return &SequenceViolationError{Transition: "PAUSE without ENTRY"}
		}
	case models.RecordReturn:
		if last == nil || last.Type != models.RecordPause {
			return &SequenceViolationError{Transition: "RETURN without PAUSE"}
		}
	case models.RecordExit:
		if last == nil || last.Type != models.RecordReturn {
			return &SequenceViolationError{Transition: "EXIT without RETURN"}
		}
	default:
		return &SequenceViolationError{Transition: "unknown type " + string(next)}
	}
	return nil
}

// NextType derives the punch type a kiosk should record when the client
// does not supply one, from the user's most recent punch.
func NextType(mode Mode, last *models.TimeRecord) models.RecordType {
	if last == nil {
		return models.RecordEntry
	}
	if mode == ModeTwoState {
		if last.Type == models.RecordExit {
			return models.RecordEntry
		}
		return models.RecordExit
	}
	switch last.Type {
	case models.RecordEntry:
		return models.RecordPause
	case models.RecordPause:
		return models.RecordReturn
	case models.RecordReturn:
		return models.RecordExit
	}
	return models.RecordEntry
}
