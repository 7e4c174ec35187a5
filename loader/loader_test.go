// File: loader/loader_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package loader_test

import (
	"errors"
	"testing"

	"github.com/momentics/hotswap-op/api"
	"github.com/momentics/hotswap-op/fake"
	"github.com/momentics/hotswap-op/loader"
)

func TestLoad_Success(t *testing.T) {
	opener := fake.NewOpener()
	destroysV1, _ := fake.RegisterBuiltins(opener)
	l := loader.New(opener)

	b, err := l.Load(fake.PathV1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := b.Operator().Name(); got != "ScoreOperatorV1" {
		t.Fatalf("wrong operator: %s", got)
	}
	if b.Source() != fake.PathV1 {
		t.Fatalf("wrong source: %s", b.Source())
	}
	if b.Refs() != 1 {
		t.Fatalf("fresh bundle holds %d refs, want 1", b.Refs())
	}

	b.Release()
	if destroysV1.Load() != 1 {
		t.Fatalf("destructor ran %d times, want 1", destroysV1.Load())
	}
	if opener.Closes() != 1 {
		t.Fatalf("module closed %d times, want 1", opener.Closes())
	}
}

func TestLoad_ModuleNotFound(t *testing.T) {
	l := loader.New(fake.NewOpener())
	_, err := l.Load("/nonexistent.module")
	if !errors.Is(err, api.ErrModuleNotFound) {
		t.Fatalf("want ErrModuleNotFound, got %v", err)
	}
}

func TestLoad_MissingSymbols(t *testing.T) {
	opener := fake.NewOpener()
	opener.Register("no-factory", fake.ModuleSpec{
		Destroy: func(api.ScoreOperator) {},
	})
	opener.Register("no-destructor", fake.ModuleSpec{
		New: func() api.ScoreOperator { return fake.OperatorV1{} },
	})
	l := loader.New(opener)

	for _, path := range []string{"no-factory", "no-destructor"} {
		_, err := l.Load(path)
		if !errors.Is(err, api.ErrSymbolResolution) {
			t.Fatalf("%s: want ErrSymbolResolution, got %v", path, err)
		}
	}
	// Both failed loads must have unwound their module handles.
	if opener.Closes() != opener.Opens() {
		t.Fatalf("leaked module handles: %d opened, %d closed",
			opener.Opens(), opener.Closes())
	}
}

func TestLoad_InstantiationFailed(t *testing.T) {
	opener := fake.NewOpener()
	opener.Register("nil-factory", fake.ModuleSpec{
		New:     func() api.ScoreOperator { return nil },
		Destroy: func(api.ScoreOperator) {},
	})
	l := loader.New(opener)

	_, err := l.Load("nil-factory")
	if !errors.Is(err, api.ErrInstantiationFailed) {
		t.Fatalf("want ErrInstantiationFailed, got %v", err)
	}
	if opener.Closes() != 1 {
		t.Fatalf("failed load leaked the module handle")
	}
}
