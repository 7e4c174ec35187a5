// File: fake/operators.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Built-in score operator variants mirroring the demo plugins, plus a
// helper that registers them under well-known paths. The destroy counters
// let tests assert exactly-once teardown end to end.

package fake

import (
	"math"
	"sync/atomic"

	"github.com/momentics/hotswap-op/api"
)

// Well-known registry paths for the built-in variants.
const (
	PathV1 = "builtin://score-op-v1"
	PathV2 = "builtin://score-op-v2"
)

// OperatorV1 is a plain linear blend of the two signals.
type OperatorV1 struct{}

func (OperatorV1) ComputeScore(f api.Feature) float64 {
	return f.UserSignal*0.7 + f.ItemSignal*0.3
}

func (OperatorV1) Name() string { return "ScoreOperatorV1" }

// OperatorV2 adds a nonlinear user-dependent modulation and a bias.
type OperatorV2 struct{}

func (OperatorV2) ComputeScore(f api.Feature) float64 {
	base := f.UserSignal*0.4 + f.ItemSignal*0.6
	return base*(1.0+0.1*math.Sin(float64(f.UserID)*0.1)) + 2.0
}

func (OperatorV2) Name() string { return "ScoreOperatorV2" }

// RegisterBuiltins installs both variants into the opener and returns
// per-variant destroy counters.
func RegisterBuiltins(o *Opener) (destroysV1, destroysV2 *atomic.Int64) {
	destroysV1 = new(atomic.Int64)
	destroysV2 = new(atomic.Int64)
	o.Register(PathV1, ModuleSpec{
		New:     func() api.ScoreOperator { return OperatorV1{} },
		Destroy: func(api.ScoreOperator) { destroysV1.Add(1) },
	})
	o.Register(PathV2, ModuleSpec{
		New:     func() api.ScoreOperator { return OperatorV2{} },
		Destroy: func(api.ScoreOperator) { destroysV2.Add(1) },
	})
	return destroysV1, destroysV2
}
