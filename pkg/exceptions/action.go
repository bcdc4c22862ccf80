package exceptions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/driftmap/pkg/errors"
)

// Action is the resolution outcome for a property diff or an entity.
// The numeric codes are stable and shared with the rule store.
type Action int

// Actions.
const (
	NoAction Action = -1 // Entity has no diffs at all
	Ignore   Action = 0  // Detected changes are ignored
	Update   Action = 2  // Detected changes are applied
)

// Actions lists the actions in bucket order.
func Actions() []Action {
	return []Action{Ignore, Update, NoAction}
}

// String returns the action's name.
func (a Action) String() string {
	switch a {
	case Ignore:
		return "ignore"
	case Update:
		return "update"
	case NoAction:
		return "no_action"
	default:
		return "unknown(" + strconv.Itoa(int(a)) + ")"
	}
}

// Code returns the stable numeric code.
func (a Action) Code() int {
	return int(a)
}

// Valid reports whether a is one of the three defined actions.
func (a Action) Valid() bool {
	switch a {
	case Ignore, Update, NoAction:
		return true
	}
	return false
}

// ValidForRule reports whether a may appear in an exception rule.
func (a Action) ValidForRule() bool {
	return a == Ignore || a == Update
}

// ParseAction accepts an action name ("ignore", "update", "no_action") or its
// numeric code ("0", "2", "-1").
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore", "0":
		return Ignore, nil
	case "update", "2":
		return Update, nil
	case "no_action", "noaction", "none", "-1":
		return NoAction, nil
	}
	return 0, errors.NewValidationError("action", s, "must be one of: ignore (0), update (2), no_action (-1)")
}

// ParseActionValue converts a decoded YAML/TOML/SQL value into an Action.
func ParseActionValue(v any) (Action, error) {
	switch x := v.(type) {
	case Action:
		return x, nil
	case string:
		return ParseAction(x)
	case int:
		return codeToAction(int64(x))
	case int64:
		return codeToAction(x)
	case uint64:
		return codeToAction(int64(x))
	case float64:
		return codeToAction(int64(x))
	case nil:
		return 0, errors.NewValidationError("action", nil, "missing")
	default:
		return ParseAction(fmt.Sprint(x))
	}
}

func codeToAction(code int64) (Action, error) {
	a := Action(code)
	if !a.Valid() {
		return 0, errors.NewValidationError("action", code, "unknown action code")
	}
	return a, nil
}
