package model

import "fmt"

type State string

const (
	StateTodo    State = "todo"
	StateProg    State = "prog"
	StateDone    State = "done"
	StateBlocked State = "blck"
)

var validStates = []State{StateTodo, StateProg, StateDone, StateBlocked}

func ValidateState(s State) error {
	for _, v := range validStates {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("invalid state %q: must be one of todo, prog, done, blck", s)
}

// Label is the long form shown in tables.
func (s State) Label() string {
	switch s {
	case StateProg:
		return "in progress"
	case StateDone:
		return "done"
	case StateBlocked:
		return "blocked"
	default:
		return "todo"
	}
}
