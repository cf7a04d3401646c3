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

// Package proxies provides typed host handles over the nodes of a function
// being traced.
//
// Host code builds kernels by calling methods on proxies: each operation
// checks the types of its operands, registers the type of its result,
// emits exactly one node in the builder owning the operands, and returns
// a new proxy wrapping that node. Proxies are immutable: an operation never
// changes the node of its receiver.
//
// A proxy is only valid while the builder which created it is the current
// builder of its context. Using it afterwards is a context misuse, which
// panics. Other construction errors, such as type mismatches, are raised
// as panics recovered by the builder and returned as errors by
// [builder.Context.WithNewBuilder].
package proxies

import (
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
)

type (
	// Value is a type-erased handle on a node.
	Value interface {
		// Builder returns the builder which recorded the node.
		Builder() *builder.Builder
		// Node returns the identifier of the node wrapped by the proxy.
		Node() ir.NodeID
		// Type returns the kernel type of the node.
		Type() *ir.Type
	}

	// Proxy is implemented by all the typed proxies of this package.
	// P is the type implementing the interface.
	Proxy[P any] interface {
		Value
		accepts(*ir.Type) bool
		withNode(*builder.Builder, ir.NodeID) P
	}

	base struct {
		b  *builder.Builder
		id ir.NodeID
	}

	// Dyn is a proxy for a value of any type.
	Dyn struct {
		base
	}
)

var _ Proxy[Dyn] = Dyn{}

// Builder returns the builder which recorded the node.
func (v base) Builder() *builder.Builder { return v.b }

// Node returns the identifier of the node.
func (v base) Node() ir.NodeID { return v.id }

// Type returns the kernel type of the node.
func (v base) Type() *ir.Type {
	if v.b == nil {
		fmterr.Raise(fmterr.ErrContextMisuse, "zero value used as a kernel value")
	}
	return v.b.Type(v.id)
}

func (v base) registry() *ir.Registry {
	if v.b == nil {
		fmterr.Raise(fmterr.ErrContextMisuse, "zero value used as a kernel value")
	}
	return v.b.Registry()
}

func (Dyn) accepts(*ir.Type) bool { return true }

func (Dyn) withNode(b *builder.Builder, id ir.NodeID) Dyn {
	return Dyn{base{b: b, id: id}}
}

// FromNode wraps a node recorded by a builder into a typed proxy.
// It raises a type mismatch if the type of the node cannot be represented by P.
func FromNode[P Proxy[P]](b *builder.Builder, id ir.NodeID) P {
	var zero P
	typ := b.Type(id)
	if !zero.accepts(typ) {
		fmterr.Raise(fmterr.ErrTypeMismatch, "value of type %s cannot be represented by %T", typ, zero)
	}
	return zero.withNode(b, id)
}

// Accepts returns true if values of a given type can be represented by P.
func Accepts[P Proxy[P]](typ *ir.Type) bool {
	var zero P
	return typ != nil && zero.accepts(typ)
}

// Downcast returns a typed view of an erased value if the type of
// the value can be represented by P. No node is emitted.
func Downcast[P Proxy[P]](v Value) (P, bool) {
	var zero P
	if v == nil || v.Builder() == nil {
		return zero, false
	}
	if !zero.accepts(v.Type()) {
		return zero, false
	}
	return zero.withNode(v.Builder(), v.Node()), true
}

// MustDowncast returns a typed view of an erased value.
// It raises an unreachable downcast error, which is fatal,
// if the type of the value cannot be represented by P.
func MustDowncast[P Proxy[P]](v Value) P {
	p, ok := Downcast[P](v)
	if !ok {
		var zero P
		typeName := "nil"
		if v != nil && v.Builder() != nil {
			typeName = v.Type().String()
		}
		fmterr.Raise(fmterr.ErrUnreachableDowncast, "cannot downcast a value of type %s to %T", typeName, zero)
	}
	return p
}

// Erase returns the type-erased view of a value.
func Erase(v Value) Dyn {
	return Dyn{base{b: v.Builder(), id: v.Node()}}
}

// BuilderOf returns the builder owning a set of values after checking
// that all the values have been recorded by the current builder.
func BuilderOf(vals ...Value) *builder.Builder {
	return current(vals...)
}

func current(vals ...Value) *builder.Builder {
	var b *builder.Builder
	for _, v := range vals {
		vb := v.Builder()
		if vb == nil {
			fmterr.Raise(fmterr.ErrContextMisuse, "zero %T used as a kernel value", v)
		}
		vb.CheckActive()
		b = vb
	}
	return b
}

func nodes(vals []Value) []ir.NodeID {
	ids := make([]ir.NodeID, len(vals))
	for i, v := range vals {
		ids[i] = v.Node()
	}
	return ids
}

// emit records a node given its operands. The builder is the builder of the operands.
func emit[P Proxy[P]](op ir.Op, typ *ir.Type, aux any, operands ...Value) P {
	b := current(operands...)
	return emitIn[P](b, op, typ, aux, operands...)
}

func emitIn[P Proxy[P]](b *builder.Builder, op ir.Op, typ *ir.Type, aux any, operands ...Value) P {
	current(operands...)
	var zero P
	return zero.withNode(b, b.Emit(op, nodes(operands), typ, aux))
}

// mustType raises a type mismatch error if err is not nil.
func mustType(typ *ir.Type, err error) *ir.Type {
	if err != nil {
		panic(fmterr.Position(fmterr.ErrTypeMismatch, err))
	}
	return typ
}
