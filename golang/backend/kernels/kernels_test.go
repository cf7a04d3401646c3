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

package kernels_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/kernels"
)

func flat[T float32 | int32 | uint32 | bool](t *testing.T, a kernels.Array) []T {
	t.Helper()
	vals, err := kernels.ToSlice[T](a)
	if err != nil {
		t.Fatal(err)
	}
	return vals
}

func TestBinaryBroadcast(t *testing.T) {
	x := kernels.ToArray([]float32{1, 2, 3}, []int{3})
	two := kernels.Atom[float32](2)
	mul, err := x.Factory().BinaryOp(ir.OpMul)
	if err != nil {
		t.Fatal(err)
	}
	for _, args := range [][2]kernels.Array{{x, two}, {two, x}} {
		got, err := mul(args[0], args[1])
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]float32{2, 4, 6}, flat[float32](t, got)); diff != "" {
			t.Errorf("unexpected product: (-want +got)\n%s", diff)
		}
	}
	lt, err := x.Factory().BinaryOp(ir.OpLt)
	if err != nil {
		t.Fatal(err)
	}
	mask, err := lt(x, two)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]bool{true, false, false}, flat[bool](t, mask)); diff != "" {
		t.Errorf("unexpected comparison: (-want +got)\n%s", diff)
	}
	if _, err := mul(x, kernels.ToArray([]float32{1, 2}, []int{2})); err == nil {
		t.Errorf("expected an error when multiplying arrays of different lengths")
	}
}

func TestIntegers(t *testing.T) {
	f, err := kernels.FactoryFor(dtype.Int32)
	if err != nil {
		t.Fatal(err)
	}
	rem, err := f.BinaryOp(ir.OpRem)
	if err != nil {
		t.Fatal(err)
	}
	got, err := rem(kernels.Atom[int32](7), kernels.Atom[int32](3))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{1}, flat[int32](t, got)); diff != "" {
		t.Errorf("unexpected remainder: (-want +got)\n%s", diff)
	}
	if _, err := rem(kernels.Atom[int32](7), kernels.Atom[int32](0)); err == nil {
		t.Errorf("expected an error when dividing by zero")
	}
	shl, err := f.BinaryOp(ir.OpShl)
	if err != nil {
		t.Fatal(err)
	}
	got, err = shl(kernels.Atom[int32](1), kernels.Atom[int32](33))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{2}, flat[int32](t, got)); diff != "" {
		t.Errorf("unexpected shift: (-want +got)\n%s", diff)
	}
	if _, err := f.UnaryOp(ir.OpSqrt); err == nil {
		t.Errorf("expected sqrt not to be supported for integers")
	}
}

func TestReduceAndCast(t *testing.T) {
	x := kernels.ToArray([]uint32{3, 0, 4}, []int{3})
	maxOf, err := x.Factory().Reduce(ir.OpReduceMax)
	if err != nil {
		t.Fatal(err)
	}
	got, err := maxOf(x)
	if err != nil {
		t.Fatal(err)
	}
	atom, err := got.ToAtom()
	if err != nil {
		t.Fatal(err)
	}
	if atom != uint32(4) {
		t.Errorf("got max %v but want 4", atom)
	}
	toBool, err := x.Factory().Cast(dtype.Bool)
	if err != nil {
		t.Fatal(err)
	}
	mask, err := toBool(x)
	if err != nil {
		t.Fatal(err)
	}
	anyOf, err := mask.Factory().Reduce(ir.OpAll)
	if err != nil {
		t.Fatal(err)
	}
	all, err := anyOf(mask)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := all.String(), "bool(false)"; got != want {
		t.Errorf("got %s but want %s", got, want)
	}
}

func TestComposite(t *testing.T) {
	f, err := kernels.FactoryFor(dtype.Float32)
	if err != nil {
		t.Fatal(err)
	}
	col0 := kernels.ToArray([]float32{1, 2}, []int{2})
	col1 := kernels.ToArray([]float32{3, 4}, []int{2})
	m, err := f.Compose()([]kernels.Array{col0, col1})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m.String(), "mat2<float32>((1, 2), (3, 4))"; got != want {
		t.Errorf("got %s but want %s", got, want)
	}
	c1, err := m.Component(1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{3, 4}, flat[float32](t, c1)); diff != "" {
		t.Errorf("unexpected column: (-want +got)\n%s", diff)
	}
	v, err := col0.WithComponent(1, kernels.Atom[float32](9))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{1, 9}, flat[float32](t, v)); diff != "" {
		t.Errorf("unexpected vector: (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]float32{1, 2}, flat[float32](t, col0)); diff != "" {
		t.Errorf("original vector modified: (-want +got)\n%s", diff)
	}
	splat, err := f.Splat(3)(kernels.Atom[float32](5))
	if err != nil {
		t.Fatal(err)
	}
	sel, err := f.Select(kernels.ToArray([]bool{true, false, true}, []int{3}))(splat, kernels.ToArray([]float32{0, 1, 2}, []int{3}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{5, 1, 5}, flat[float32](t, sel)); diff != "" {
		t.Errorf("unexpected selection: (-want +got)\n%s", diff)
	}
}

func TestGeometry(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-5)
	x := kernels.ToArray([]float32{1, 0, 0}, []int{3})
	y := kernels.ToArray([]float32{0, 1, 0}, []int{3})
	z, err := kernels.Cross(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{0, 0, 1}, flat[float32](t, z)); diff != "" {
		t.Errorf("unexpected cross product: (-want +got)\n%s", diff)
	}
	n, err := kernels.Normalize(kernels.ToArray([]float32{3, 4}, []int{2}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{0.6, 0.8}, flat[float32](t, n), approx); diff != "" {
		t.Errorf("unexpected normalized vector: (-want +got)\n%s", diff)
	}
	dot, err := kernels.Dot(kernels.ToArray([]int32{1, 2}, []int{2}), kernels.ToArray([]int32{3, 4}, []int{2}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{11}, flat[int32](t, dot)); diff != "" {
		t.Errorf("unexpected dot product: (-want +got)\n%s", diff)
	}
	// Columns (1, 2) and (3, 4).
	m := kernels.ToArray([]float32{1, 2, 3, 4}, []int{2, 2})
	mv, err := kernels.MatVec(m, kernels.ToArray([]float32{1, 1}, []int{2}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{4, 6}, flat[float32](t, mv)); diff != "" {
		t.Errorf("unexpected matrix-vector product: (-want +got)\n%s", diff)
	}
	tr, err := kernels.Transpose(m)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{1, 3, 2, 4}, flat[float32](t, tr)); diff != "" {
		t.Errorf("unexpected transpose: (-want +got)\n%s", diff)
	}
	inv, err := kernels.Inverse(m)
	if err != nil {
		t.Fatal(err)
	}
	id, err := kernels.MatMul(m, inv)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{1, 0, 0, 1}, flat[float32](t, id), approx); diff != "" {
		t.Errorf("m * inverse(m) is not the identity: (-want +got)\n%s", diff)
	}
	if _, err := kernels.Inverse(kernels.ToArray([]float32{1, 2, 2, 4}, []int{2, 2})); err == nil {
		t.Errorf("expected an error when inverting a singular matrix")
	}
}

func TestTuple(t *testing.T) {
	tuple := kernels.NewTuple([]kernels.Value{kernels.Atom[float32](1), kernels.Atom[int32](2)})
	next, err := tuple.WithElem(0, kernels.Atom[float32](3))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tuple.String(), "{float32(1), int32(2)}"; got != want {
		t.Errorf("got %s but want %s", got, want)
	}
	if got, want := next.String(), "{float32(3), int32(2)}"; got != want {
		t.Errorf("got %s but want %s", got, want)
	}
	if _, err := tuple.Elem(2); err == nil {
		t.Errorf("expected an error when accessing an element out of range")
	}
}
