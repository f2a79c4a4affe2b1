package game

import (
	"errors"
	"fmt"
)

// ErrInvalidAction is returned for action names outside the fixed set
var ErrInvalidAction = errors.New("invalid action")

// Action is one of the five player-triggered transitions
type Action int

const (
	ActionLecture Action = iota + 1
	ActionHomework
	ActionOfficeHours
	ActionUseAI
	ActionBreak
)

var actionNames = map[Action]string{
	ActionLecture:     "lecture",
	ActionHomework:    "homework",
	ActionOfficeHours: "officeHours",
	ActionUseAI:       "useAI",
	ActionBreak:       "break",
}

// Actions returns every action in menu order
func Actions() []Action {
	return []Action{ActionLecture, ActionHomework, ActionOfficeHours, ActionUseAI, ActionBreak}
}

// ParseAction maps a wire name to an Action. Names are case-sensitive.
func ParseAction(name string) (Action, error) {
	for action, n := range actionNames {
		if n == name {
			return action, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidAction, name)
}

// String returns the wire name of the action
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Valid reports whether a is one of the five known actions
func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}
