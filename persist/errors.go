package persist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/scopes/scope"
)

// Errors reported by the coordinator. ErrPrecondition and ErrDestroyed are
// the scope package sentinels, so errors.Is works across both packages.
var (
	ErrPrecondition  = scope.ErrPrecondition
	ErrDestroyed     = scope.ErrDestroyed
	ErrNoCoordinator = errors.New("persist: no coordinator bound")
)

// ValidateKey checks a participant key: it must not be blank and must not
// contain scope.Separator.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: participant key must not be blank", ErrPrecondition)
	}
	if strings.Contains(key, scope.Separator) {
		return fmt.Errorf("%w: participant key %q must not contain separator %q", ErrPrecondition, key, scope.Separator)
	}
	return nil
}
