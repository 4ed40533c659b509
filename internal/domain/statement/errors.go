package statement

import (
	"errors"
	"fmt"
)

// Error kinds. Only ErrInput and ErrProbe reach callers of the router;
// the others are recorded in per-strategy diagnostics.
var (
	ErrInput    = errors.New("input error")
	ErrProbe    = errors.New("probe error")
	ErrStrategy = errors.New("strategy error")
	ErrTimeout  = errors.New("strategy timeout")
)

// Error carries the kind of failure together with the operation and, for
// strategy failures, the strategy name.
type Error struct {
	Kind     error
	Op       string
	Strategy string
	Err      error
}

func (e *Error) Error() string {
	prefix := e.Op
	if e.Strategy != "" {
		prefix = fmt.Sprintf("%s [%s]", e.Op, e.Strategy)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", prefix, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", prefix, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel so errors.Is(err, ErrProbe) works on wrapped
// values. A timeout is also a strategy failure.
func (e *Error) Is(target error) bool {
	return e.Kind == target || (e.Kind == ErrTimeout && target == ErrStrategy)
}

// InputError reports a missing or unreadable file.
func InputError(op string, err error) error {
	return &Error{Kind: ErrInput, Op: op, Err: err}
}

// ProbeError reports a PDF the engine refused to open.
func ProbeError(op string, err error) error {
	return &Error{Kind: ErrProbe, Op: op, Err: err}
}

// StrategyError reports a single failed strategy run.
func StrategyError(strategy string, err error) error {
	return &Error{Kind: ErrStrategy, Op: "extract", Strategy: strategy, Err: err}
}

// TimeoutError reports a strategy that exceeded its budget. It matches both
// ErrTimeout and ErrStrategy.
func TimeoutError(strategy string, err error) error {
	return &Error{Kind: ErrTimeout, Op: "extract", Strategy: strategy, Err: err}
}
