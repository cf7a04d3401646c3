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

package graph_test

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"github.com/gx-org/kernelir/api/options"
	"github.com/gx-org/kernelir/api/values"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/graph"
	goplatform "github.com/gx-org/kernelir/golang/backend/platform"
	"github.com/gx-org/kernelir/proxies"
)

type fixture struct {
	t   *testing.T
	reg *ir.Registry
	ctx *builder.Context
	dev *goplatform.Device
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := ir.NewRegistry()
	ctx, err := builder.NewContext(options.Registry{Registry: reg})
	if err != nil {
		t.Fatal(err)
	}
	dev, err := goplatform.New().GoDevice(0)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{t: t, reg: reg, ctx: ctx, dev: dev}
}

func (f *fixture) kernel(name string, body func(b *builder.Builder, tid proxies.Expr[uint32])) *ir.Func {
	f.t.Helper()
	fn, err := f.ctx.WithNewBuilder(name, ir.Kernel, func(b *builder.Builder) (ir.NodeID, error) {
		body(b, proxies.DispatchID(b).X())
		return ir.NoNode, nil
	})
	if err != nil {
		f.t.Fatalf("%+v", err)
	}
	return fn
}

func (f *fixture) run(fn *ir.Func, n int, opts ...options.RunOption) error {
	f.t.Helper()
	runner, err := graph.Compile(f.dev, fn, opts...)
	if err != nil {
		f.t.Fatalf("%+v", err)
	}
	return runner.Run(context.Background(), n)
}

func zeros[T values.Scalar](f *fixture, n int) *goplatform.Buffer {
	f.t.Helper()
	buf, err := goplatform.NewZeroBuffer(f.dev, values.ScalarType[T](f.reg), n)
	if err != nil {
		f.t.Fatal(err)
	}
	return buf
}

func fetch[T any](t *testing.T, buf *goplatform.Buffer) []T {
	t.Helper()
	vals, err := goplatform.ToSlice[T](buf)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return vals
}

func TestArithmetic(t *testing.T) {
	f := newFixture(t)
	out := zeros[float32](f, 4)
	rem := zeros[float32](f, 4)
	fn := f.kernel("arith", func(b *builder.Builder, tid proxies.Expr[uint32]) {
		x := proxies.Cast[float32](tid)
		v := proxies.VecOf[float32](b, 1, 2, 3).Mul(x)
		y := v.Sum().Add(x.Lit(0.5)).Clamp(x.Lit(0), x.Lit(10))
		proxies.Buffer[proxies.Expr[float32]](b, out).Write(tid, y)
		r := x.Add(x.Lit(0.5)).Neg().Rem(x.Lit(2))
		proxies.Buffer[proxies.Expr[float32]](b, rem).Write(tid, r)
	})
	if err := f.run(fn, 4); err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff([]float32{0.5, 6.5, 10, 10}, fetch[float32](t, out)); diff != "" {
		t.Errorf("unexpected output: (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]float32{-0.5, -1.5, -0.5, -1.5}, fetch[float32](t, rem)); diff != "" {
		t.Errorf("unexpected remainders: (-want +got)\n%s", diff)
	}
}

func TestLoopAndBreak(t *testing.T) {
	f := newFixture(t)
	out := zeros[uint32](f, 8)
	fn := f.kernel("loop", func(b *builder.Builder, tid proxies.Expr[uint32]) {
		acc := proxies.NewVar(proxies.Zero[uint32](b))
		proxies.ForRange(proxies.Zero[uint32](b), tid, func(i proxies.Expr[uint32]) {
			proxies.If(i.Eq(i.Lit(5)), func() { proxies.Break(b) }, nil)
			acc.Store(acc.Load().Add(i))
		})
		proxies.Buffer[proxies.Expr[uint32]](b, out).Write(tid, acc.Load())
	})
	if err := f.run(fn, 8); err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff([]uint32{0, 0, 1, 3, 6, 10, 10, 10}, fetch[uint32](t, out)); diff != "" {
		t.Errorf("unexpected output: (-want +got)\n%s", diff)
	}
}

func TestIfElse(t *testing.T) {
	f := newFixture(t)
	out := zeros[int32](f, 4)
	fn := f.kernel("ifelse", func(b *builder.Builder, tid proxies.Expr[uint32]) {
		x := proxies.Cast[int32](tid)
		two := x.Lit(2)
		y := proxies.IfElse(x.Rem(two).Eq(x.Lit(0)), func() proxies.Expr[int32] {
			return x
		}, func() proxies.Expr[int32] {
			return x.Mul(x.Lit(10)).Neg()
		})
		proxies.Buffer[proxies.Expr[int32]](b, out).Write(tid, y)
	})
	if err := f.run(fn, 4); err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff([]int32{0, -10, 2, -30}, fetch[int32](t, out)); diff != "" {
		t.Errorf("unexpected output: (-want +got)\n%s", diff)
	}
}

func TestAtomicCounter(t *testing.T) {
	f := newFixture(t)
	const n = 64
	counter := zeros[uint32](f, 1)
	slots := zeros[uint32](f, n)
	fn := f.kernel("counter", func(b *builder.Builder, tid proxies.Expr[uint32]) {
		zero := proxies.Zero[uint32](b)
		slot := proxies.Buffer[proxies.Expr[uint32]](b, counter).AtomicFetchAdd(zero, proxies.One[uint32](b))
		proxies.Buffer[proxies.Expr[uint32]](b, slots).Write(tid, slot)
	})
	if err := f.run(fn, n, options.Workers{N: 8}); err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff([]uint32{n}, fetch[uint32](t, counter)); diff != "" {
		t.Errorf("unexpected counter: (-want +got)\n%s", diff)
	}
	got := fetch[uint32](t, slots)
	slices.Sort(got)
	want := make([]uint32, n)
	for i := range want {
		want[i] = uint32(i)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("threads did not get distinct slots: (-want +got)\n%s", diff)
	}
}

func TestMatrix(t *testing.T) {
	f := newFixture(t)
	out, err := goplatform.NewBuffer(f.dev, f.reg, make([]values.Vec2[float32], 1))
	if err != nil {
		t.Fatal(err)
	}
	fn := f.kernel("matrix", func(b *builder.Builder, tid proxies.Expr[uint32]) {
		m := proxies.MatOf(b, values.Mat2{{2, 0}, {0, 4}})
		v := m.Inverse().MulVec(proxies.VecOf[float32](b, 2, 4))
		proxies.Buffer[proxies.Vec[float32]](b, out).Write(tid, v.Normalize())
	})
	if err := f.run(fn, 1); err != nil {
		t.Fatalf("%+v", err)
	}
	got := fetch[values.Vec2[float32]](t, out)
	want := []values.Vec2[float32]{{0.70710677, 0.70710677}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("unexpected output: (-want +got)\n%s", diff)
	}
}

func TestUnreachable(t *testing.T) {
	f := newFixture(t)
	out := zeros[uint32](f, 4)
	fn := f.kernel("trap", func(b *builder.Builder, tid proxies.Expr[uint32]) {
		proxies.Buffer[proxies.Expr[uint32]](b, out).Write(tid, tid.Lit(1))
		proxies.If(tid.Ge(tid.Lit(2)), func() {
			proxies.Unreachable(b, "thread out of bounds")
		}, nil)
	})
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	err := f.run(fn, 4, options.Logger{Logger: logger})
	if !errors.Is(err, graph.ErrUnreachable) {
		t.Fatalf("got error %v but want an unreachable error", err)
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Errorf("got %d errors but want 2: %v", got, err)
	}
	if diff := cmp.Diff([]uint32{1, 1, 1, 1}, fetch[uint32](t, out)); diff != "" {
		t.Errorf("unexpected output: (-want +got)\n%s", diff)
	}
	for _, event := range []string{"kernel dispatched", "kernel failed"} {
		if !strings.Contains(logs.String(), event) {
			t.Errorf("event %q not logged in:\n%s", event, logs.String())
		}
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	out := zeros[uint32](f, 4)
	fn := f.kernel("cancel", func(b *builder.Builder, tid proxies.Expr[uint32]) {
		proxies.Buffer[proxies.Expr[uint32]](b, out).Write(tid, tid)
	})
	runner, err := graph.Compile(f.dev, fn)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx, 1000); !errors.Is(err, context.Canceled) {
		t.Errorf("got error %v but want %v", err, context.Canceled)
	}
}

func TestThreadCount(t *testing.T) {
	f := newFixture(t)
	out := zeros[uint32](f, 2)
	fn := f.kernel("count", func(b *builder.Builder, tid proxies.Expr[uint32]) {
		proxies.Buffer[proxies.Expr[uint32]](b, out).Write(tid, tid.Add(tid.Lit(1)))
	})
	for _, n := range []int{-1, -1000} {
		if err := f.run(fn, n); err == nil || !strings.Contains(err.Error(), "invalid number of threads") {
			t.Errorf("Run(%d): got error %v but want an invalid number of threads", n, err)
		}
	}
	if err := f.run(fn, 0); err != nil {
		t.Errorf("Run(0): %+v", err)
	}
	if diff := cmp.Diff([]uint32{0, 0}, fetch[uint32](t, out)); diff != "" {
		t.Errorf("threads executed by an empty dispatch: (-want +got)\n%s", diff)
	}
	if err := f.run(fn, 2, options.Logger{Logger: nil}); err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff([]uint32{1, 2}, fetch[uint32](t, out)); diff != "" {
		t.Errorf("unexpected output: (-want +got)\n%s", diff)
	}
}

func TestCompileErrors(t *testing.T) {
	f := newFixture(t)
	fn, err := f.ctx.WithNewBuilder("callable", ir.Callable, func(b *builder.Builder) (ir.NodeID, error) {
		return proxies.Const[float32](b, 1).Node(), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := graph.Compile(f.dev, fn); err == nil {
		t.Errorf("expected an error when compiling a callable as a kernel")
	}
	other, err := goplatform.New().GoDevice(0)
	if err != nil {
		t.Fatal(err)
	}
	foreign, err := goplatform.NewZeroBuffer(other, values.ScalarType[uint32](f.reg), 1)
	if err != nil {
		t.Fatal(err)
	}
	fn = f.kernel("foreign", func(b *builder.Builder, tid proxies.Expr[uint32]) {
		proxies.Buffer[proxies.Expr[uint32]](b, foreign).Write(tid, tid)
	})
	if _, err := graph.Compile(f.dev, fn); err == nil {
		t.Errorf("expected an error when compiling a kernel binding a buffer of another device")
	}
}
