package domain

import "fmt"

// ReplayedState is the lifecycle state derived from a matter's steps.
type ReplayedState struct {
	Status MatterStatus
	Level  int
	Steps  int
}

// Replay folds an ordered step sequence into the state it implies.
func Replay(steps []Step) (ReplayedState, error) {
	var state ReplayedState
	for i, step := range steps {
		if i == 0 {
			if step.Action != StepActionCreated {
				return state, fmt.Errorf("step %d: history must start with %s, got %s", i, StepActionCreated, step.Action)
			}
			state.Status, state.Level = MatterStatusOpen, LevelInitial
			state.Steps++
			continue
		}
		switch step.Action {
		case StepActionCreated:
			return state, fmt.Errorf("step %d: duplicate %s", i, StepActionCreated)
		case StepActionEscalate:
			if state.Status.IsTerminal() || state.Level != LevelInitial {
				return state, fmt.Errorf("step %d: escalate from %s at level %d", i, state.Status, state.Level)
			}
			state.Status, state.Level = MatterStatusEscalated, LevelEscalated
		case StepActionClose:
			if state.Status.IsTerminal() {
				return state, fmt.Errorf("step %d: close of closed matter", i)
			}
			state.Status = MatterStatusClosed
		case StepActionProgress:
			if step.IsHold() {
				if state.Status.IsTerminal() {
					return state, fmt.Errorf("step %d: hold of closed matter", i)
				}
				state.Status = MatterStatusOnHold
			}
		default:
			return state, fmt.Errorf("step %d: unknown action %q", i, step.Action)
		}
		state.Steps++
	}
	return state, nil
}

// Matches reports whether the replayed state agrees with the matter row.
func (r ReplayedState) Matches(m *Matter) bool {
	return m != nil && r.Status == m.Status && r.Level == m.Level
}
