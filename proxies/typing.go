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
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

// checkOperator checks that the element kind of a type supports an operator.
func checkOperator(op ir.Op, typ *ir.Type) {
	kind := typ.Kind()
	switch {
	case op == ir.OpShl || op == ir.OpShr:
		if !kind.IsInteger() {
			fmterr.Raise(fmterr.ErrTypeMismatch, "operator %s requires integer operands but got %s", op, typ)
		}
	case op.IsBitwise() || op == ir.OpNot:
		if !kind.IsInteger() && kind != irkind.Bool {
			fmterr.Raise(fmterr.ErrTypeMismatch, "operator %s requires integer or boolean operands but got %s", op, typ)
		}
	case op == ir.OpEq || op == ir.OpNe:
	case op == ir.OpSqrt || op == ir.OpFloor:
		if !kind.IsFloat() {
			fmterr.Raise(fmterr.ErrTypeMismatch, "operator %s requires floating-point operands but got %s", op, typ)
		}
	default:
		if !typ.IsNumeric() {
			fmterr.Raise(fmterr.ErrTypeMismatch, "operator %s requires numeric operands but got %s", op, typ)
		}
	}
}

// binaryType returns the type of the result of a binary operator.
// Operands must have the same type, or one of them is a scalar of
// the element kind of the other operand, in which case the scalar
// is broadcast.
func binaryType(op ir.Op, x, y *ir.Type) *ir.Type {
	var shaped *ir.Type
	switch {
	case x == y:
		shaped = x
	case y.IsScalar() && x.Kind() == y.Kind() && (x.IsVector() || x.IsMatrix()):
		shaped = x
	case x.IsScalar() && x.Kind() == y.Kind() && (y.IsVector() || y.IsMatrix()):
		shaped = y
	default:
		fmterr.Raise(fmterr.ErrTypeMismatch, "invalid operation: operator %s not defined on %s and %s", op, x, y)
	}
	if !shaped.IsScalar() && !shaped.IsVector() && !shaped.IsMatrix() {
		fmterr.Raise(fmterr.ErrTypeMismatch, "invalid operation: operator %s not defined on %s", op, shaped)
	}
	if shaped.IsMatrix() {
		switch op {
		case ir.OpAdd, ir.OpSub:
			if x != y {
				fmterr.Raise(fmterr.ErrTypeMismatch, "invalid operation: operator %s not defined on %s and %s", op, x, y)
			}
		case ir.OpMul, ir.OpDiv:
			if x == y {
				fmterr.Raise(fmterr.ErrTypeMismatch, "invalid operation: operator %s on two matrices: use MatMul", op)
			}
		default:
			fmterr.Raise(fmterr.ErrTypeMismatch, "invalid operation: operator %s not defined on matrix %s", op, shaped)
		}
	}
	checkOperator(op, shaped)
	if op.IsComparison() {
		return mustType(shaped.Registry().WithKind(shaped, irkind.Bool))
	}
	return shaped
}

// unaryType returns the type of the result of a unary operator.
func unaryType(op ir.Op, x *ir.Type) *ir.Type {
	if !x.IsScalar() && !x.IsVector() {
		fmterr.Raise(fmterr.ErrTypeMismatch, "invalid operation: operator %s not defined on %s", op, x)
	}
	if op == ir.OpNeg || op == ir.OpAbs {
		if !x.Kind().IsSigned() {
			fmterr.Raise(fmterr.ErrTypeMismatch, "invalid operation: operator %s not defined on unsigned %s", op, x)
		}
	}
	checkOperator(op, x)
	return x
}

// checkIndex raises an error if a component index is out of range.
func checkIndex(typ *ir.Type, i int) *ir.Type {
	comp, err := typ.Component(i)
	if err != nil {
		panic(fmterr.Position(fmterr.ErrTypeMismatch, err))
	}
	return comp
}

func checkSameType(what string, x, y *ir.Type) {
	if x != y {
		fmterr.Raise(fmterr.ErrTypeMismatch, "%s: %s and %s are different types", what, x, y)
	}
}
