// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package builder_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/api/options"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/build/ir/irkind"
	"github.com/gx-org/kernelir/internal/base/scope"
)

func newContext(t *testing.T, opts ...options.TraceOption) *builder.Context {
	t.Helper()
	ctx, err := builder.NewContext(append([]options.TraceOption{options.Registry{Registry: ir.NewRegistry()}}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

type unknownOption struct{ options.TraceOption }

func TestNewContextOptions(t *testing.T) {
	if _, err := builder.NewContext(unknownOption{}); err == nil {
		t.Errorf("unknown option accepted")
	}
	reg := ir.NewRegistry()
	ctx := newContext(t, options.Registry{Registry: reg})
	if ctx.Registry() != reg {
		t.Errorf("registry option ignored")
	}
	def, err := builder.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	if def.Registry() != ir.DefaultRegistry() {
		t.Errorf("default context does not use the default registry")
	}
}

func TestSealCallable(t *testing.T) {
	ctx := newContext(t)
	reg := ctx.Registry()
	f32 := reg.Scalar(irkind.Float32)
	fn, err := ctx.WithNewBuilder("inc", ir.Callable, func(b *builder.Builder) (ir.NodeID, error) {
		x := b.Argument(f32)
		one := b.Literal(f32, float32(1))
		return b.Emit(ir.OpAdd, []ir.NodeID{x, one}, f32, nil), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if fn.Result() != f32 {
		t.Errorf("got result type %s but want %s", fn.Result(), f32)
	}
	var ops []string
	for node := range fn.Nodes() {
		ops = append(ops, node.Op().String())
	}
	if diff := cmp.Diff([]string{"argument", "literal", "add"}, ops); diff != "" {
		t.Errorf("unexpected nodes:\n%s", diff)
	}
	if diff := cmp.Diff([]ir.NodeID{1, 2, 3}, fn.Body().Nodes()); diff != "" {
		t.Errorf("unexpected body:\n%s", diff)
	}
	if ctx.Depth() != 0 {
		t.Errorf("builder still active after sealing: depth=%d", ctx.Depth())
	}
}

func TestNestedBuildersRestoreCurrent(t *testing.T) {
	ctx := newContext(t)
	reg := ctx.Registry()
	var outer, inner *builder.Builder
	_, err := ctx.WithNewBuilder("outer", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		outer = b
		_, err := ctx.WithNewBuilder("inner", ir.Callable, func(b *builder.Builder) (ir.NodeID, error) {
			inner = b
			return b.Literal(reg.Scalar(irkind.Int32), int32(1)), nil
		})
		if err != nil {
			return ir.NoNode, err
		}
		ctx.Current(func(cur *builder.Builder) {
			if cur != outer {
				t.Errorf("current builder is %s but want outer", cur.Name())
			}
		})
		// Failing nested construction also restores the current builder.
		_, err = ctx.WithNewBuilder("failing", ir.Callable, func(b *builder.Builder) (ir.NodeID, error) {
			fmterr.Raise(fmterr.ErrTypeMismatch, "boom")
			return ir.NoNode, nil
		})
		if !errors.Is(err, fmterr.ErrTypeMismatch) {
			t.Errorf("got error %v but want a type mismatch", err)
		}
		ctx.Current(func(cur *builder.Builder) {
			if cur != outer {
				t.Errorf("current builder is %s after a failure but want outer", cur.Name())
			}
		})
		return ir.NoNode, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !outer.Sealed() || !inner.Sealed() {
		t.Errorf("builders not sealed: outer=%t inner=%t", outer.Sealed(), inner.Sealed())
	}
}

func recoverError(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var ok bool
		if err, ok = r.(error); !ok {
			t.Fatalf("recovered %T but want an error", r)
		}
	}()
	f()
	return nil
}

func TestCurrentWithoutBuilder(t *testing.T) {
	ctx := newContext(t)
	err := recoverError(t, func() {
		ctx.Current(func(*builder.Builder) {})
	})
	if !errors.Is(err, fmterr.ErrContextMisuse) {
		t.Errorf("got error %v but want a context misuse", err)
	}
}

func TestUseAfterSeal(t *testing.T) {
	ctx := newContext(t)
	reg := ctx.Registry()
	var stale *builder.Builder
	if _, err := ctx.WithNewBuilder("k", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		stale = b
		return ir.NoNode, nil
	}); err != nil {
		t.Fatal(err)
	}
	err := recoverError(t, func() {
		stale.Literal(reg.Scalar(irkind.Int32), int32(0))
	})
	if !errors.Is(err, fmterr.ErrContextMisuse) {
		t.Errorf("got error %v but want a context misuse", err)
	}
}

func TestFatalErrorsPropagate(t *testing.T) {
	ctx := newContext(t)
	err := recoverError(t, func() {
		ctx.WithNewBuilder("k", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
			fmterr.Raise(fmterr.ErrUnreachableDowncast, "cannot handle arguments")
			return ir.NoNode, nil
		})
	})
	if !errors.Is(err, fmterr.ErrUnreachableDowncast) {
		t.Errorf("got error %v but want an unreachable downcast", err)
	}
	if ctx.Depth() != 0 {
		t.Errorf("builder still active after a fatal error: depth=%d", ctx.Depth())
	}
}

func TestForeignBuilder(t *testing.T) {
	ctx := newContext(t)
	reg := ctx.Registry()
	_, err := ctx.WithNewBuilder("outer", ir.Kernel, func(outer *builder.Builder) (ir.NodeID, error) {
		_, err := ctx.WithNewBuilder("inner", ir.Callable, func(*builder.Builder) (ir.NodeID, error) {
			return outer.Literal(reg.Scalar(irkind.Int32), int32(1)), nil
		})
		return ir.NoNode, err
	})
	if !errors.Is(err, fmterr.ErrForeignValue) {
		t.Errorf("got error %v but want a foreign value", err)
	}
}

func TestScopes(t *testing.T) {
	ctx := newContext(t)
	reg := ctx.Registry()
	i32 := reg.Scalar(irkind.Int32)
	buf := testBuffer{typ: i32}
	fn, err := ctx.WithNewBuilder("k", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		cond := b.Literal(reg.Scalar(irkind.Bool), true)
		b.PushScope(scope.Block)
		ptr := b.BindBuffer(buf)
		tid := b.DispatchID()
		x := b.Emit(ir.OpExtract, []ir.NodeID{tid}, reg.Scalar(irkind.Uint32), 0)
		val := b.Emit(ir.OpBufferRead, []ir.NodeID{ptr, x}, i32, nil)
		then := b.PopScope(val)
		if b.BindBuffer(buf) != ptr {
			t.Errorf("buffer bound twice")
		}
		b.Emit(ir.OpIf, []ir.NodeID{cond}, i32, ir.IfAux{Then: then})
		return ir.NoNode, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	// Buffer and dispatch id nodes are hoisted in the function scope.
	if diff := cmp.Diff([]ir.NodeID{1, 2, 3, 6}, fn.Body().Nodes()); diff != "" {
		t.Errorf("unexpected body:\n%s", diff)
	}
	if got := len(fn.Buffers()); got != 1 {
		t.Errorf("got %d buffers but want 1", got)
	}
}

func TestScopeErrors(t *testing.T) {
	ctx := newContext(t)
	_, err := ctx.WithNewBuilder("k", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		b.PushScope(scope.Block)
		return ir.NoNode, nil
	})
	if !errors.Is(err, fmterr.ErrScope) {
		t.Errorf("got error %v but want an unbalanced scope", err)
	}
	_, err = ctx.WithNewBuilder("k", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		b.PopScope(ir.NoNode)
		return ir.NoNode, nil
	})
	if !errors.Is(err, fmterr.ErrScope) {
		t.Errorf("got error %v but want an unbalanced scope", err)
	}
}

func TestValueUsedOutsideItsBlock(t *testing.T) {
	ctx := newContext(t)
	reg := ctx.Registry()
	i32 := reg.Scalar(irkind.Int32)
	_, err := ctx.WithNewBuilder("k", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		cond := b.Literal(reg.Scalar(irkind.Bool), true)
		b.PushScope(scope.Block)
		inner := b.Literal(i32, int32(1))
		then := b.PopScope(ir.NoNode)
		b.Emit(ir.OpIf, []ir.NodeID{cond}, reg.Void(), ir.IfAux{Then: then})
		b.Emit(ir.OpAdd, []ir.NodeID{inner, inner}, i32, nil)
		return ir.NoNode, nil
	})
	if !errors.Is(err, fmterr.ErrScope) {
		t.Errorf("got error %v but want a scope error", err)
	}
	_, err = ctx.WithNewBuilder("k", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		b.PushScope(scope.Block)
		b.PushScope(scope.Block)
		inner := b.Literal(i32, int32(1))
		b.PopScope(ir.NoNode)
		b.PopScope(inner)
		return ir.NoNode, nil
	})
	if !errors.Is(err, fmterr.ErrScope) {
		t.Errorf("got error %v but want a scope error for a hidden block result", err)
	}
	_, err = ctx.WithNewBuilder("k", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		cond := b.Literal(reg.Scalar(irkind.Bool), true)
		outer := b.Literal(i32, int32(1))
		b.PushScope(scope.Block)
		b.Emit(ir.OpAdd, []ir.NodeID{outer, outer}, i32, nil)
		then := b.PopScope(outer)
		b.Emit(ir.OpIf, []ir.NodeID{cond}, reg.Void(), ir.IfAux{Then: then})
		return ir.NoNode, nil
	})
	if err != nil {
		t.Errorf("outer value rejected in a nested block: %v", err)
	}
}

func TestErrorPosition(t *testing.T) {
	ctx := newContext(t)
	_, err := ctx.WithNewBuilder("k", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		b.PopScope(ir.NoNode)
		return ir.NoNode, nil
	})
	var cErr *fmterr.Error
	if !errors.As(err, &cErr) {
		t.Fatalf("got error %T but want a *fmterr.Error", err)
	}
	if !strings.Contains(cErr.Pos(), "builder_test.go") {
		t.Errorf("error positioned at %q but want the test file", cErr.Pos())
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := newContext(t, options.Logger{Logger: logger})
	if _, err := ctx.WithNewBuilder("logged", ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		return ir.NoNode, nil
	}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"builder pushed", "function sealed", "name=logged"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log %q does not contain %q", buf.String(), want)
		}
	}
}

type testBuffer struct {
	typ *ir.Type
}

func (b testBuffer) ElemType() *ir.Type { return b.typ }

func (b testBuffer) Len() int { return 1 }
