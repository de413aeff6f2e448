package domain

import "errors"

// Intent is a caller's requested lifecycle action.
type Intent string

const (
	IntentCreate     Intent = "CREATE"
	IntentEscalate   Intent = "ESCALATE"
	IntentHold       Intent = "HOLD"
	IntentWithdraw   Intent = "WITHDRAW"
	IntentClose      Intent = "CLOSE"
	IntentProgress   Intent = "PROGRESS"
	IntentRemind     Intent = "REMIND"
	IntentLinkTicket Intent = "LINK_TICKET"
)

var (
	// ErrAlreadyClosed is returned for terminal-guarded intents on a closed matter.
	ErrAlreadyClosed = errors.New("matter already closed")
	// ErrIllegalTransition is returned when the intent is not allowed from the current state.
	ErrIllegalTransition = errors.New("illegal transition")
)

// StepActionFor maps an intent onto the audit vocabulary.
func StepActionFor(intent Intent) StepAction {
	switch intent {
	case IntentCreate:
		return StepActionCreated
	case IntentEscalate:
		return StepActionEscalate
	case IntentWithdraw, IntentClose:
		return StepActionClose
	default:
		return StepActionProgress
	}
}

// NextState returns the status and level after applying intent to a matter in
// the given state.
func NextState(status MatterStatus, level int, intent Intent) (MatterStatus, int, error) {
	switch intent {
	case IntentCreate:
		return MatterStatusOpen, LevelInitial, nil
	case IntentEscalate:
		if status.IsTerminal() || level != LevelInitial {
			return status, level, ErrIllegalTransition
		}
		return MatterStatusEscalated, LevelEscalated, nil
	case IntentHold:
		if status.IsTerminal() {
			return status, level, ErrAlreadyClosed
		}
		return MatterStatusOnHold, level, nil
	case IntentWithdraw, IntentClose:
		if status.IsTerminal() {
			return status, level, ErrAlreadyClosed
		}
		return MatterStatusClosed, level, nil
	case IntentLinkTicket:
		if status.IsTerminal() {
			return status, level, ErrAlreadyClosed
		}
		return status, level, nil
	case IntentProgress, IntentRemind:
		return status, level, nil
	}
	return status, level, ErrIllegalTransition
}
