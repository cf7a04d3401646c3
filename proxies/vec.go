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
	"github.com/gx-org/kernelir/api/values"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

type (
	// Operand is the right operand of a vector operator:
	// either a vector of the same type or a scalar broadcast
	// to all the components.
	Operand[T values.Scalar] interface {
		Value
		operand(T)
	}

	// Vec is a proxy for a vector of 2 to 4 components.
	// The number of components is known when the vector is traced.
	Vec[T values.Scalar] struct {
		base
	}
)

var (
	_ Proxy[Vec[float32]] = Vec[float32]{}
	_ Operand[float32]    = Vec[float32]{}
)

func (Vec[T]) accepts(typ *ir.Type) bool {
	return typ.IsVector() && typ.Kind() == values.KindOf[T]()
}

func (Vec[T]) withNode(b *builder.Builder, id ir.NodeID) Vec[T] {
	return Vec[T]{base{b: b, id: id}}
}

func (Vec[T]) operand(T) {}

// Len returns the number of components of the vector.
func (v Vec[T]) Len() int {
	return v.Type().Len()
}

func (v Vec[T]) binary(op ir.Op, y Operand[T]) Vec[T] {
	return emit[Vec[T]](op, binaryType(op, v.Type(), y.Type()), nil, v, y)
}

func (v Vec[T]) compare(op ir.Op, y Operand[T]) Vec[bool] {
	return emit[Vec[bool]](op, binaryType(op, v.Type(), y.Type()), nil, v, y)
}

func (v Vec[T]) unary(op ir.Op) Vec[T] {
	return emit[Vec[T]](op, unaryType(op, v.Type()), nil, v)
}

// Add returns v+y.
func (v Vec[T]) Add(y Operand[T]) Vec[T] { return v.binary(ir.OpAdd, y) }

// Sub returns v-y.
func (v Vec[T]) Sub(y Operand[T]) Vec[T] { return v.binary(ir.OpSub, y) }

// Mul returns the component-wise product v*y.
func (v Vec[T]) Mul(y Operand[T]) Vec[T] { return v.binary(ir.OpMul, y) }

// Div returns v/y.
func (v Vec[T]) Div(y Operand[T]) Vec[T] { return v.binary(ir.OpDiv, y) }

// Rem returns v%y.
func (v Vec[T]) Rem(y Operand[T]) Vec[T] { return v.binary(ir.OpRem, y) }

// And returns v&y.
func (v Vec[T]) And(y Operand[T]) Vec[T] { return v.binary(ir.OpAnd, y) }

// Or returns v|y.
func (v Vec[T]) Or(y Operand[T]) Vec[T] { return v.binary(ir.OpOr, y) }

// Xor returns v^y.
func (v Vec[T]) Xor(y Operand[T]) Vec[T] { return v.binary(ir.OpXor, y) }

// Shl returns v<<y.
func (v Vec[T]) Shl(y Operand[T]) Vec[T] { return v.binary(ir.OpShl, y) }

// Shr returns v>>y.
func (v Vec[T]) Shr(y Operand[T]) Vec[T] { return v.binary(ir.OpShr, y) }

// Min returns the component-wise minimum of v and y.
func (v Vec[T]) Min(y Operand[T]) Vec[T] { return v.binary(ir.OpMin, y) }

// Max returns the component-wise maximum of v and y.
func (v Vec[T]) Max(y Operand[T]) Vec[T] { return v.binary(ir.OpMax, y) }

// Clamp restricts the components of v to the range [lo, hi].
func (v Vec[T]) Clamp(lo, hi Operand[T]) Vec[T] { return v.Max(lo).Min(hi) }

// Lt returns v<y component-wise.
func (v Vec[T]) Lt(y Operand[T]) Vec[bool] { return v.compare(ir.OpLt, y) }

// Le returns v<=y component-wise.
func (v Vec[T]) Le(y Operand[T]) Vec[bool] { return v.compare(ir.OpLe, y) }

// Gt returns v>y component-wise.
func (v Vec[T]) Gt(y Operand[T]) Vec[bool] { return v.compare(ir.OpGt, y) }

// Ge returns v>=y component-wise.
func (v Vec[T]) Ge(y Operand[T]) Vec[bool] { return v.compare(ir.OpGe, y) }

// Eq returns v==y component-wise.
func (v Vec[T]) Eq(y Operand[T]) Vec[bool] { return v.compare(ir.OpEq, y) }

// Ne returns v!=y component-wise.
func (v Vec[T]) Ne(y Operand[T]) Vec[bool] { return v.compare(ir.OpNe, y) }

// Neg returns -v.
func (v Vec[T]) Neg() Vec[T] { return v.unary(ir.OpNeg) }

// Not returns the component-wise logical negation or bitwise complement of v.
func (v Vec[T]) Not() Vec[T] { return v.unary(ir.OpNot) }

// Abs returns the component-wise absolute value of v.
func (v Vec[T]) Abs() Vec[T] { return v.unary(ir.OpAbs) }

// Sqrt returns the component-wise square root of v.
func (v Vec[T]) Sqrt() Vec[T] { return v.unary(ir.OpSqrt) }

// Floor returns the component-wise floor of v.
func (v Vec[T]) Floor() Vec[T] { return v.unary(ir.OpFloor) }

// At returns the ith component.
func (v Vec[T]) At(i int) Expr[T] {
	return emit[Expr[T]](ir.OpExtract, checkIndex(v.Type(), i), i, v)
}

// X returns the first component.
func (v Vec[T]) X() Expr[T] { return v.At(0) }

// Y returns the second component.
func (v Vec[T]) Y() Expr[T] { return v.At(1) }

// Z returns the third component.
func (v Vec[T]) Z() Expr[T] { return v.At(2) }

// W returns the fourth component.
func (v Vec[T]) W() Expr[T] { return v.At(3) }

// WithAt returns a new vector equal to v except for its ith component
// which is set to x. v is not modified.
func (v Vec[T]) WithAt(i int, x Expr[T]) Vec[T] {
	checkSameType("replacing a vector component", checkIndex(v.Type(), i), x.Type())
	return emit[Vec[T]](ir.OpInsert, v.Type(), i, v, x)
}

// WithX returns a copy of v with its first component set to x.
func (v Vec[T]) WithX(x Expr[T]) Vec[T] { return v.WithAt(0, x) }

// WithY returns a copy of v with its second component set to x.
func (v Vec[T]) WithY(x Expr[T]) Vec[T] { return v.WithAt(1, x) }

// WithZ returns a copy of v with its third component set to x.
func (v Vec[T]) WithZ(x Expr[T]) Vec[T] { return v.WithAt(2, x) }

// WithW returns a copy of v with its fourth component set to x.
func (v Vec[T]) WithW(x Expr[T]) Vec[T] { return v.WithAt(3, x) }

func (v Vec[T]) reduce(op ir.Op) Expr[T] {
	typ := v.Type()
	checkOperator(op, typ)
	return emit[Expr[T]](op, typ.Elem(), nil, v)
}

// Sum returns the sum of the components.
func (v Vec[T]) Sum() Expr[T] { return v.reduce(ir.OpReduceSum) }

// Prod returns the product of the components.
func (v Vec[T]) Prod() Expr[T] { return v.reduce(ir.OpReduceProd) }

// ReduceMin returns the minimum component.
func (v Vec[T]) ReduceMin() Expr[T] { return v.reduce(ir.OpReduceMin) }

// ReduceMax returns the maximum component.
func (v Vec[T]) ReduceMax() Expr[T] { return v.reduce(ir.OpReduceMax) }

// Dot returns the dot product of v and y.
func (v Vec[T]) Dot(y Vec[T]) Expr[T] {
	typ := v.Type()
	checkSameType("dot product", typ, y.Type())
	checkOperator(ir.OpDot, typ)
	return emit[Expr[T]](ir.OpDot, typ.Elem(), nil, v, y)
}

func (v Vec[T]) checkFloat(what string) *ir.Type {
	typ := v.Type()
	if !typ.IsFloat() {
		fmterr.Raise(fmterr.ErrTypeMismatch, "%s requires a floating-point vector but got %s", what, typ)
	}
	return typ
}

// Length returns the Euclidean length of v.
func (v Vec[T]) Length() Expr[T] {
	return emit[Expr[T]](ir.OpLength, v.checkFloat("length").Elem(), nil, v)
}

// LengthSquared returns the dot product of v with itself.
func (v Vec[T]) LengthSquared() Expr[T] {
	return v.Dot(v)
}

// Distance returns the Euclidean distance between v and y.
func (v Vec[T]) Distance(y Vec[T]) Expr[T] {
	return v.Sub(y).Length()
}

// Normalize returns v divided by its length.
func (v Vec[T]) Normalize() Vec[T] {
	return emit[Vec[T]](ir.OpNormalize, v.checkFloat("normalize"), nil, v)
}

// Cross returns the cross product of two vectors of 3 components.
func (v Vec[T]) Cross(y Vec[T]) Vec[T] {
	typ := v.checkFloat("cross product")
	checkSameType("cross product", typ, y.Type())
	if typ.Len() != 3 {
		fmterr.Raise(fmterr.ErrTypeMismatch, "cross product requires vectors of 3 components but got %s", typ)
	}
	return emit[Vec[T]](ir.OpCross, typ, nil, v, y)
}

func (v Vec[T]) checkBool(what string) {
	if typ := v.Type(); typ.Kind() != irkind.Bool {
		fmterr.Raise(fmterr.ErrTypeMismatch, "%s requires a boolean vector but got %s", what, typ)
	}
}

// All returns true if all the components of a boolean vector are true.
func (v Vec[T]) All() Expr[bool] {
	v.checkBool("all")
	return emit[Expr[bool]](ir.OpAll, v.Type().Elem(), nil, v)
}

// Any returns true if at least one component of a boolean vector is true.
func (v Vec[T]) Any() Expr[bool] {
	v.checkBool("any")
	return emit[Expr[bool]](ir.OpAny, v.Type().Elem(), nil, v)
}
