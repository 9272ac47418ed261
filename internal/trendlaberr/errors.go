// Package trendlaberr defines the cross-cutting error kinds of the
// engine and the exit codes the CLI maps them to. Recoverable
// conditions (a PM missing its ATR, a filter rejecting a signal) are
// not errors at all and never appear here.
package trendlaberr

import (
	"errors"
	"fmt"
)

// Kind partitions failures by how the caller must react.
type Kind int

const (
	// KindConfiguration: bad params, unknown component. Fail fast,
	// exit 1.
	KindConfiguration Kind = iota + 1
	// KindData: missing cache, schema mismatch, provider failure.
	// Structured with symbol; exit 2.
	KindData
	// KindRuntime: invariant violation (equity identity, fill >
	// remaining, stopless window). Exit 3; a sweep abandons the run
	// but not its siblings.
	KindRuntime
)

// Error wraps a cause with its kind and, for data errors, the symbol
// involved.
type Error struct {
	Kind   Kind
	Symbol string
	Err    error
}

func (e *Error) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Configuration wraps err as a configuration error.
func Configuration(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindConfiguration, Err: err}
}

// Configurationf builds a configuration error from a format string.
func Configurationf(format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Err: fmt.Errorf(format, args...)}
}

// Data wraps err as a data error for symbol (symbol may be empty).
func Data(symbol string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindData, Symbol: symbol, Err: err}
}

// Runtime wraps err as a runtime-invariant error.
func Runtime(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindRuntime, Err: err}
}

// KindOf extracts the kind from err's chain, or 0 if none is present.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// ExitCode maps err to the CLI contract: 0 success, 1 configuration,
// 2 data, 3 runtime (unclassified errors are runtime).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfiguration:
		return 1
	case KindData:
		return 2
	default:
		return 3
	}
}
