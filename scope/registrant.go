package scope

import (
	"fmt"
	"reflect"
)

// Registrant is an object whose lifetime is tied to a scope.
//
// Registrants are deduplicated by interface equality, so implementations are
// normally pointer types. OnEnter is called once, synchronously, from
// Register. OnExit is called once, when the scope is destroyed.
type Registrant interface {
	OnEnter(n *Node)
	OnExit()
}

// Hooks adapts a pair of functions to Registrant. Either function may be nil.
// Use a *Hooks; each pointer is a distinct registrant.
type Hooks struct {
	Enter func(n *Node)
	Exit  func()
}

func (h *Hooks) OnEnter(n *Node) {
	if h.Enter != nil {
		h.Enter(n)
	}
}

func (h *Hooks) OnExit() {
	if h.Exit != nil {
		h.Exit()
	}
}

// CheckRegistrant rejects a nil registrant and one whose dynamic type cannot
// be compared, since registrants are tracked by identity.
func CheckRegistrant(r Registrant) error {
	if r == nil {
		return fmt.Errorf("%w: nil registrant", ErrPrecondition)
	}
	if t := reflect.TypeOf(r); !t.Comparable() {
		return fmt.Errorf("%w: registrant type %s is not comparable", ErrPrecondition, t)
	}
	return nil
}
