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

package proxies

import (
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
)

// Var is an assignable local variable storing values of type P.
type Var[P Proxy[P]] struct {
	base
}

// NewVar declares a local variable initialized with init.
func NewVar[P Proxy[P]](init P) Var[P] {
	typ := mustType(current(init).Registry().Pointer(init.Type()))
	return emit[Var[P]](ir.OpLocal, typ, nil, init)
}

func (Var[P]) accepts(typ *ir.Type) bool {
	var zero P
	return typ.Class() == ir.PointerClass && zero.accepts(typ.Elem())
}

func (Var[P]) withNode(b *builder.Builder, id ir.NodeID) Var[P] {
	return Var[P]{base{b: b, id: id}}
}

// Load returns the value currently stored by the variable.
func (v Var[P]) Load() P {
	return emit[P](ir.OpLoad, v.Type().Elem(), nil, v)
}

// Store assigns a new value to the variable.
func (v Var[P]) Store(x P) {
	checkSameType("assignment", v.Type().Elem(), x.Type())
	emit[Dyn](ir.OpStore, v.registry().Void(), nil, v, x)
}

// BufferVar is a view on a device buffer storing elements of type P.
type BufferVar[P Proxy[P]] struct {
	base
	buf ir.Buffer
}

// Buffer binds a buffer to the function being traced.
// The buffer is bound once per function.
func Buffer[P Proxy[P]](b *builder.Builder, buf ir.Buffer) BufferVar[P] {
	var zero P
	if elem := buf.ElemType(); elem == nil || !zero.accepts(elem) {
		fmterr.Raise(fmterr.ErrTypeMismatch, "buffer of %s cannot be accessed as %T", elem, zero)
	}
	return BufferVar[P]{base: base{b: b, id: b.BindBuffer(buf)}, buf: buf}
}

// Handle returns the buffer bound to the function.
func (bv BufferVar[P]) Handle() ir.Buffer {
	return bv.buf
}

// Len returns the number of elements in the buffer.
func (bv BufferVar[P]) Len() int {
	return bv.buf.Len()
}

// Read returns the element at index i.
func (bv BufferVar[P]) Read(i Expr[uint32]) P {
	return emit[P](ir.OpBufferRead, bv.buf.ElemType(), nil, bv, i)
}

// Write stores x at index i.
func (bv BufferVar[P]) Write(i Expr[uint32], x P) {
	checkSameType("buffer write", bv.buf.ElemType(), x.Type())
	emit[Dyn](ir.OpBufferWrite, bv.registry().Void(), nil, bv, i, x)
}

// AtomicFetchAdd atomically adds x to the element at index i
// and returns the previous value of the element.
// Only buffers of integer scalars are supported.
func (bv BufferVar[P]) AtomicFetchAdd(i Expr[uint32], x P) P {
	elem := bv.buf.ElemType()
	if !elem.IsScalar() || !elem.IsInteger() {
		fmterr.Raise(fmterr.ErrTypeMismatch, "atomic add requires a buffer of integers but got a buffer of %s", elem)
	}
	checkSameType("atomic add", elem, x.Type())
	return emit[P](ir.OpAtomicAdd, elem, nil, bv, i, x)
}
