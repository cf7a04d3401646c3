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
	"github.com/gx-org/kernelir/build/ir"
)

// Expr is a proxy for a scalar value.
type Expr[T values.Scalar] struct {
	base
}

var (
	_ Proxy[Expr[float32]] = Expr[float32]{}
	_ Operand[float32]     = Expr[float32]{}
)

func (Expr[T]) accepts(typ *ir.Type) bool {
	return typ.IsScalar() && typ.Kind() == values.KindOf[T]()
}

func (Expr[T]) withNode(b *builder.Builder, id ir.NodeID) Expr[T] {
	return Expr[T]{base{b: b, id: id}}
}

func (Expr[T]) operand(T) {}

// Lit returns a literal in the builder of x.
func (x Expr[T]) Lit(v T) Expr[T] {
	return Const(current(x), v)
}

func (x Expr[T]) binary(op ir.Op, y Expr[T]) Expr[T] {
	return emit[Expr[T]](op, binaryType(op, x.Type(), y.Type()), nil, x, y)
}

func (x Expr[T]) compare(op ir.Op, y Expr[T]) Expr[bool] {
	return emit[Expr[bool]](op, binaryType(op, x.Type(), y.Type()), nil, x, y)
}

func (x Expr[T]) unary(op ir.Op) Expr[T] {
	return emit[Expr[T]](op, unaryType(op, x.Type()), nil, x)
}

// Add returns x+y.
func (x Expr[T]) Add(y Expr[T]) Expr[T] { return x.binary(ir.OpAdd, y) }

// Sub returns x-y.
func (x Expr[T]) Sub(y Expr[T]) Expr[T] { return x.binary(ir.OpSub, y) }

// Mul returns x*y.
func (x Expr[T]) Mul(y Expr[T]) Expr[T] { return x.binary(ir.OpMul, y) }

// Div returns x/y.
func (x Expr[T]) Div(y Expr[T]) Expr[T] { return x.binary(ir.OpDiv, y) }

// Rem returns x%y.
func (x Expr[T]) Rem(y Expr[T]) Expr[T] { return x.binary(ir.OpRem, y) }

// And returns x&y.
func (x Expr[T]) And(y Expr[T]) Expr[T] { return x.binary(ir.OpAnd, y) }

// Or returns x|y.
func (x Expr[T]) Or(y Expr[T]) Expr[T] { return x.binary(ir.OpOr, y) }

// Xor returns x^y.
func (x Expr[T]) Xor(y Expr[T]) Expr[T] { return x.binary(ir.OpXor, y) }

// Shl returns x<<y.
func (x Expr[T]) Shl(y Expr[T]) Expr[T] { return x.binary(ir.OpShl, y) }

// Shr returns x>>y.
func (x Expr[T]) Shr(y Expr[T]) Expr[T] { return x.binary(ir.OpShr, y) }

// Min returns the minimum of x and y.
func (x Expr[T]) Min(y Expr[T]) Expr[T] { return x.binary(ir.OpMin, y) }

// Max returns the maximum of x and y.
func (x Expr[T]) Max(y Expr[T]) Expr[T] { return x.binary(ir.OpMax, y) }

// Clamp returns x restricted to the range [lo, hi].
func (x Expr[T]) Clamp(lo, hi Expr[T]) Expr[T] { return x.Max(lo).Min(hi) }

// Lt returns x<y.
func (x Expr[T]) Lt(y Expr[T]) Expr[bool] { return x.compare(ir.OpLt, y) }

// Le returns x<=y.
func (x Expr[T]) Le(y Expr[T]) Expr[bool] { return x.compare(ir.OpLe, y) }

// Gt returns x>y.
func (x Expr[T]) Gt(y Expr[T]) Expr[bool] { return x.compare(ir.OpGt, y) }

// Ge returns x>=y.
func (x Expr[T]) Ge(y Expr[T]) Expr[bool] { return x.compare(ir.OpGe, y) }

// Eq returns x==y.
func (x Expr[T]) Eq(y Expr[T]) Expr[bool] { return x.compare(ir.OpEq, y) }

// Ne returns x!=y.
func (x Expr[T]) Ne(y Expr[T]) Expr[bool] { return x.compare(ir.OpNe, y) }

// Neg returns -x.
func (x Expr[T]) Neg() Expr[T] { return x.unary(ir.OpNeg) }

// Not returns the logical negation of a boolean or the bitwise complement of an integer.
func (x Expr[T]) Not() Expr[T] { return x.unary(ir.OpNot) }

// Abs returns the absolute value of x.
func (x Expr[T]) Abs() Expr[T] { return x.unary(ir.OpAbs) }

// Sqrt returns the square root of x.
func (x Expr[T]) Sqrt() Expr[T] { return x.unary(ir.OpSqrt) }

// Floor returns the greatest integer value less than or equal to x.
func (x Expr[T]) Floor() Expr[T] { return x.unary(ir.OpFloor) }
