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

package ir_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

func mustRegister(t *testing.T, r *ir.Registry, d ir.Desc) *ir.Type {
	t.Helper()
	typ, err := r.Register(d)
	if err != nil {
		t.Fatal(err)
	}
	return typ
}

func TestInterning(t *testing.T) {
	r := ir.NewRegistry()
	f32 := r.Scalar(irkind.Float32)
	u32 := r.Scalar(irkind.Uint32)
	tests := []struct {
		name   string
		d1, d2 ir.Desc
		want   string
	}{
		{
			name: "scalar",
			d1:   ir.ScalarDesc{Kind: irkind.Float32},
			d2:   ir.ScalarDesc{Kind: irkind.Float32},
			want: "float32",
		},
		{
			name: "vector",
			d1:   ir.VectorDesc{Elem: irkind.Int32, Len: 3},
			d2:   ir.VectorDesc{Elem: irkind.Int32, Len: 3},
			want: "vec3<int32>",
		},
		{
			name: "matrix",
			d1:   ir.MatrixDesc{Elem: irkind.Float32, Dim: 2},
			d2:   ir.MatrixDesc{Elem: irkind.Float32, Dim: 2},
			want: "mat2<float32>",
		},
		{
			name: "struct",
			d1:   ir.StructDesc{Fields: []ir.Field{{Name: "radius", Type: f32}}},
			d2:   ir.StructDesc{Fields: []ir.Field{{Name: "radius", Type: f32}}},
			want: "struct{radius:float32}",
		},
		{
			name: "array",
			d1:   ir.ArrayDesc{Elem: u32, Len: 4},
			d2:   ir.ArrayDesc{Elem: u32, Len: 4},
			want: "[4]uint32",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t1 := mustRegister(t, r, test.d1)
			t2 := mustRegister(t, r, test.d2)
			if t1 != t2 {
				t.Errorf("structurally equal descriptors registered as different types: %p != %p", t1, t2)
			}
			if t1.String() != test.want {
				t.Errorf("got type %s but want %s", t1, test.want)
			}
			if got, ok := r.Lookup(t1.ID()); !ok || got != t1 {
				t.Errorf("Lookup(%d) = %v, %v", t1.ID(), got, ok)
			}
		})
	}
}

func TestStructuralDifferences(t *testing.T) {
	r := ir.NewRegistry()
	f32 := r.Scalar(irkind.Float32)
	a := mustRegister(t, r, ir.StructDesc{Fields: []ir.Field{{Name: "radius", Type: f32}}})
	b := mustRegister(t, r, ir.StructDesc{Fields: []ir.Field{{Name: "side", Type: f32}}})
	if a == b {
		t.Errorf("structures with different field names share a type")
	}
	ab := mustRegister(t, r, ir.StructDesc{Fields: []ir.Field{{Name: "a", Type: f32}, {Name: "b", Type: f32}}})
	joined := mustRegister(t, r, ir.StructDesc{Fields: []ir.Field{{Name: "a:float32,b", Type: f32}}})
	if ab == joined {
		t.Errorf("structures %s and %s share a type", ab, joined)
	}
	if got := len(joined.Fields()); got != 1 {
		t.Errorf("got %d fields but want 1", got)
	}
	v3 := mustRegister(t, r, ir.VectorDesc{Elem: irkind.Float32, Len: 3})
	v4 := mustRegister(t, r, ir.VectorDesc{Elem: irkind.Float32, Len: 4})
	if v3 == v4 {
		t.Errorf("vectors of different lengths share a type")
	}
	if v3.Elem() != f32 {
		t.Errorf("vector element is %s but want %s", v3.Elem(), f32)
	}
	m := mustRegister(t, r, ir.MatrixDesc{Elem: irkind.Float32, Dim: 3})
	if m.Elem() != v3 {
		t.Errorf("matrix column is %s but want %s", m.Elem(), v3)
	}
}

func TestInvalidDescriptors(t *testing.T) {
	r := ir.NewRegistry()
	other := ir.NewRegistry().Scalar(irkind.Float32)
	tests := []ir.Desc{
		ir.VectorDesc{Elem: irkind.Float32, Len: 5},
		ir.VectorDesc{Elem: irkind.Float32, Len: 1},
		ir.MatrixDesc{Elem: irkind.Bool, Dim: 2},
		ir.MatrixDesc{Elem: irkind.Int32, Dim: 3},
		ir.ScalarDesc{Kind: irkind.Invalid},
		ir.ArrayDesc{Elem: r.Scalar(irkind.Int32), Len: 0},
		ir.ArrayDesc{Elem: other, Len: 2},
		ir.StructDesc{},
		ir.StructDesc{Fields: []ir.Field{{Name: "a", Type: other}}},
		ir.StructDesc{Fields: []ir.Field{
			{Name: "a", Type: r.Scalar(irkind.Int32)},
			{Name: "a", Type: r.Scalar(irkind.Int32)},
		}},
	}
	for i, d := range tests {
		if typ, err := r.Register(d); err == nil {
			t.Errorf("test %d: registering %T succeeded with type %s but want an error", i, d, typ)
		}
	}
}

func TestConcurrentRegistration(t *testing.T) {
	r := ir.NewRegistry()
	const numWriters = 8
	got := make([]*ir.Type, numWriters)
	var wg sync.WaitGroup
	for i := range numWriters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			typ, err := r.Vector(irkind.Uint32, 3)
			if err != nil {
				t.Error(err)
				return
			}
			got[i] = typ
		}()
	}
	wg.Wait()
	for i := 1; i < numWriters; i++ {
		if got[i] != got[0] {
			t.Errorf("writer %d got type %p but writer 0 got %p", i, got[i], got[0])
		}
	}
	// uint32 and vec3<uint32>
	if r.Size() != 2 {
		t.Errorf("registry has %d types but want 2", r.Size())
	}
}

type circle struct {
	Radius float32
}

type particle struct {
	Pos  [3]float32
	Mass float32
	Tag  uint32
}

type hidden struct {
	x float32
}

func TestTypeOf(t *testing.T) {
	r := ir.NewRegistry()
	circleT, err := ir.TypeOf[circle](r)
	if err != nil {
		t.Fatal(err)
	}
	if circleT.String() != `struct{"Radius":float32}` {
		t.Errorf("got type %s", circleT)
	}
	again, err := ir.TypeOf[circle](r)
	if err != nil {
		t.Fatal(err)
	}
	if again != circleT {
		t.Errorf("TypeOf is not stable")
	}
	particleT, err := ir.TypeOf[particle](r)
	if err != nil {
		t.Fatal(err)
	}
	if want := "struct{Pos:[3]float32,Mass:float32,Tag:uint32}"; particleT.String() != want {
		t.Errorf("got type %s but want %s", particleT, want)
	}
	if _, err := ir.TypeOf[hidden](r); err == nil {
		t.Errorf("unexported fields should not be supported")
	}
	if _, err := ir.TypeOf[float64](r); err == nil {
		t.Errorf("float64 should not be supported")
	}
}

func newBuffer(t *testing.T, r *ir.Registry) ir.Buffer {
	return testBuffer{typ: r.Scalar(irkind.Float32)}
}

type testBuffer struct {
	typ *ir.Type
}

func (b testBuffer) ElemType() *ir.Type { return b.typ }

func (b testBuffer) Len() int { return 4 }

func TestValidate(t *testing.T) {
	r := ir.NewRegistry()
	f32 := r.Scalar(irkind.Float32)
	x := ir.NewNode(1, ir.OpArgument, nil, f32, ir.ArgumentAux{Index: 0})
	one := ir.NewNode(2, ir.OpLiteral, nil, f32, float32(1))
	sum := ir.NewNode(3, ir.OpAdd, []ir.NodeID{1, 2}, f32, nil)
	valid := ir.NewFunc("inc", ir.Callable, []*ir.Node{x, one, sum}, []ir.NodeID{1}, ir.NewBlock([]ir.NodeID{1, 2, 3}, 3), f32, nil)
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	forward := ir.NewNode(3, ir.OpAdd, []ir.NodeID{1, 3}, f32, nil)
	cyclic := ir.NewFunc("cyclic", ir.Callable, []*ir.Node{x, one, forward}, []ir.NodeID{1}, ir.NewBlock([]ir.NodeID{1, 2, 3}, 3), f32, nil)
	err := cyclic.Validate()
	if !errors.Is(err, fmterr.ErrInvalidGraph) {
		t.Fatalf("got error %v but want an invalid graph error", err)
	}
	if !strings.Contains(err.Error(), "operand %3 is not defined before the node") {
		t.Errorf("unexpected error: %v", err)
	}

	orphan := ir.NewFunc("orphan", ir.Callable, []*ir.Node{x, one, sum}, []ir.NodeID{1}, ir.NewBlock([]ir.NodeID{1, 3}, 3), f32, nil)
	if err := orphan.Validate(); err == nil || !strings.Contains(err.Error(), "node %2 belongs to 0 blocks") {
		t.Errorf("got error %v but want an orphan node error", err)
	}

	call := ir.NewNode(3, ir.OpCall, []ir.NodeID{2}, r.Scalar(irkind.Int32), valid)
	badCall := ir.NewFunc("bad_call", ir.Kernel, []*ir.Node{x, one, call}, nil, ir.NewBlock([]ir.NodeID{1, 2, 3}, ir.NoNode), r.Void(), []ir.Buffer{newBuffer(t, r)})
	if err := badCall.Validate(); err == nil || !strings.Contains(err.Error(), "returns float32") {
		t.Errorf("got error %v but want a call result error", err)
	}
	if got := len(badCall.Buffers()); got != 1 {
		t.Errorf("got %d buffers but want 1", got)
	}

	cond := ir.NewNode(2, ir.OpLiteral, nil, r.Scalar(irkind.Bool), true)
	inner := ir.NewNode(3, ir.OpLiteral, nil, f32, float32(2))
	branch := ir.NewNode(4, ir.OpIf, []ir.NodeID{2}, r.Void(), ir.IfAux{Then: ir.NewBlock([]ir.NodeID{3}, ir.NoNode)})
	escaped := ir.NewNode(5, ir.OpAdd, []ir.NodeID{1, 3}, f32, nil)
	hidden := ir.NewFunc("hidden", ir.Callable, []*ir.Node{x, cond, inner, branch, escaped}, []ir.NodeID{1}, ir.NewBlock([]ir.NodeID{1, 2, 4, 5}, 5), f32, nil)
	if err := hidden.Validate(); err == nil || !strings.Contains(err.Error(), "operand %3 is defined in a block not enclosing the node") {
		t.Errorf("got error %v but want a visibility error", err)
	}
}
