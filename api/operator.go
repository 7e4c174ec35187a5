// File: api/operator.go
// Package api defines the score operator contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Feature is one scoring request. Callers build a fresh value per
// invocation; the struct is never shared or mutated after construction.
type Feature struct {
	UserID     int
	ItemID     int
	UserSignal float64
	ItemSignal float64
}

// ScoreOperator is the capability every loadable implementation satisfies.
// A single instance may be invoked from many goroutines at once, so
// implementations must be free of unsynchronized mutable state.
type ScoreOperator interface {
	// ComputeScore turns a feature record into a score.
	ComputeScore(f Feature) float64

	// Name reports the operator identity, used to verify which
	// implementation served a request after a hot swap.
	Name() string
}

// CreateOperatorFunc is the factory entry point a loadable module exports.
type CreateOperatorFunc func() ScoreOperator

// DestroyOperatorFunc is the destructor entry point a loadable module
// exports. It releases one instance previously returned by the factory.
type DestroyOperatorFunc func(ScoreOperator)

// Symbol names every loadable module must export. Absence of either is a
// hard load failure.
const (
	SymbolNewOperator     = "NewScoreOperator"
	SymbolDestroyOperator = "DestroyScoreOperator"
)
