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
	"slices"

	"github.com/gx-org/kernelir/api/values"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

// Const returns a scalar literal.
func Const[T values.Scalar](b *builder.Builder, v T) Expr[T] {
	return emitIn[Expr[T]](b, ir.OpLiteral, values.ScalarType[T](b.Registry()), v)
}

// Zero returns the scalar literal 0 (or false).
func Zero[T values.Scalar](b *builder.Builder) Expr[T] {
	var zero T
	return Const(b, zero)
}

// One returns the scalar literal 1 (or true).
func One[T values.Numeric](b *builder.Builder) Expr[T] {
	return Const(b, T(1))
}

// VecOf returns a vector literal.
func VecOf[T values.Scalar](b *builder.Builder, vals ...T) Vec[T] {
	typ := mustType(b.Registry().Vector(values.KindOf[T](), len(vals)))
	return emitIn[Vec[T]](b, ir.OpLiteral, typ, slices.Clone(vals))
}

// MatOf returns a matrix literal given its columns.
func MatOf[M values.Mat2 | values.Mat3 | values.Mat4](b *builder.Builder, m M) Mat {
	var (
		flat []float32
		dim  int
	)
	switch mT := any(m).(type) {
	case values.Mat2:
		flat, dim = mT.Flat(), 2
	case values.Mat3:
		flat, dim = mT.Flat(), 3
	case values.Mat4:
		flat, dim = mT.Flat(), 4
	}
	typ := mustType(b.Registry().Matrix(irkind.Float32, dim))
	return emitIn[Mat](b, ir.OpLiteral, typ, flat)
}

// Splat returns a vector of n components all equal to x.
func Splat[T values.Scalar](x Expr[T], n int) Vec[T] {
	typ := mustType(x.registry().Vector(values.KindOf[T](), n))
	return emit[Vec[T]](ir.OpSplat, typ, nil, x)
}

// MakeVec returns a vector given its components.
func MakeVec[T values.Scalar](comps ...Expr[T]) Vec[T] {
	if len(comps) == 0 {
		fmterr.Raise(fmterr.ErrTypeMismatch, "cannot build a vector without components")
	}
	vals := make([]Value, len(comps))
	for i, c := range comps {
		vals[i] = c
	}
	typ := mustType(comps[0].registry().Vector(values.KindOf[T](), len(comps)))
	return emit[Vec[T]](ir.OpCompose, typ, nil, vals...)
}

// Cast converts a scalar to another scalar kind.
func Cast[To, From values.Scalar](x Expr[From]) Expr[To] {
	return emit[Expr[To]](ir.OpCast, values.ScalarType[To](x.registry()), nil, x)
}

// CastVec converts the components of a vector to another scalar kind.
func CastVec[To, From values.Scalar](x Vec[From]) Vec[To] {
	typ := mustType(x.registry().WithKind(x.Type(), values.KindOf[To]()))
	return emit[Vec[To]](ir.OpCast, typ, nil, x)
}

// Select returns a if mask is true, b otherwise.
// Both a and b are evaluated.
func Select[T values.Scalar](mask Expr[bool], a, b Expr[T]) Expr[T] {
	checkSameType("select", a.Type(), b.Type())
	return emit[Expr[T]](ir.OpSelect, a.Type(), nil, mask, a, b)
}

// SelectVec selects the components of a where mask is true and
// the components of b otherwise.
func SelectVec[T values.Scalar](mask Vec[bool], a, b Vec[T]) Vec[T] {
	typ := a.Type()
	checkSameType("select", typ, b.Type())
	if mask.Len() != typ.Len() {
		fmterr.Raise(fmterr.ErrTypeMismatch, "select mask %s does not match %s", mask.Type(), typ)
	}
	return emit[Vec[T]](ir.OpSelect, typ, nil, mask, a, b)
}

// DispatchID returns the index of the current thread in the dispatch grid.
func DispatchID(b *builder.Builder) Vec[uint32] {
	return Vec[uint32]{base{b: b, id: b.DispatchID()}}
}

// Argument declares the next parameter of the function being traced.
func Argument(b *builder.Builder, typ *ir.Type) Dyn {
	return Dyn{base{b: b, id: b.Argument(typ)}}
}
