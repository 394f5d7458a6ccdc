package search

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOptimizing is returned by Constrain on engines that
	// enumerate solutions without optimizing.
	ErrNotOptimizing = errors.New("engine does not support constrain")
	// ErrNotConstrainable is returned when an optimizing engine is
	// created for a space that does not implement Constrainer.
	ErrNotConstrainable = errors.New("space does not implement Constrainer")
	// ErrInvalidOption is wrapped by all option validation errors.
	ErrInvalidOption = errors.New("invalid search option")
	// ErrNoRoot is returned when an engine is created without a
	// root space.
	ErrNoRoot = errors.New("no root space")
)

// MisuseError reports a violation of the Space or Choice contract.
// Engines and spaces panic with a *MisuseError since the violation is a
// programming error that cannot be recovered from.
type MisuseError struct {
	Op  string
	Msg string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("search: misuse in %s: %s", e.Op, e.Msg)
}

// Misuse panics with a MisuseError.
func Misuse(op, format string, args ...interface{}) {
	panic(&MisuseError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// CheckAlternative panics unless alt is a valid alternative of c.
func CheckAlternative(op string, c Choice, alt int) {
	if alt < 0 || alt >= c.Alternatives() {
		Misuse(op, "alternative %d out of range [0,%d)", alt, c.Alternatives())
	}
}
