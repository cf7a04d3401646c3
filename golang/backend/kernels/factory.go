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

package kernels

import (
	"math"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/api/values"
	"github.com/gx-org/kernelir/build/ir"
	"golang.org/x/exp/constraints"
)

type (
	arrayFactory[T values.Scalar] struct{}

	numericFactory[T values.Numeric] struct {
		arrayFactory[T]
	}

	boolFactory struct {
		arrayFactory[bool]
	}

	floatFactory struct {
		numericFactory[float32]
	}

	integerFactory[T values.Integer] struct {
		numericFactory[T]
	}
)

var (
	_ Factory = boolFactory{}
	_ Factory = floatFactory{}
	_ Factory = integerFactory[int32]{}
)

func errNotSupported[T values.Scalar](what string, op ir.Op) error {
	var zero T
	return errors.Errorf("%s %s not supported for %T", what, op, zero)
}

// binaryE returns a kernel applying f component-wise.
// An atomic operand is broadcast to the shape of the other operand.
func binaryE[T, R values.Scalar](f func(x, y T) (R, error)) Binary {
	return func(xVal, yVal Array) (Array, error) {
		x, err := toArray[T](xVal)
		if err != nil {
			return nil, err
		}
		y, err := toArray[T](yVal)
		if err != nil {
			return nil, err
		}
		out := x
		if isAtomic(&x.shape) {
			out = y
		} else if !isAtomic(&y.shape) && len(x.values) != len(y.values) {
			return nil, errors.Errorf("shape mismatch: %s and %s", x.shape.String(), y.shape.String())
		}
		z := make([]R, len(out.values))
		for i := range z {
			if z[i], err = f(x.at(i), y.at(i)); err != nil {
				return nil, err
			}
		}
		return newArray(z, append([]int{}, out.shape.AxisLengths...)), nil
	}
}

func binary[T, R values.Scalar](f func(x, y T) R) Binary {
	return binaryE(func(x, y T) (R, error) {
		return f(x, y), nil
	})
}

func unary[T, R values.Scalar](f func(T) R) Unary {
	return func(xVal Array) (Array, error) {
		x, err := toArray[T](xVal)
		if err != nil {
			return nil, err
		}
		z := make([]R, len(x.values))
		for i, xi := range x.values {
			z[i] = f(xi)
		}
		return newArray(z, append([]int{}, x.shape.AxisLengths...)), nil
	}
}

func fold[T values.Scalar](f func(acc, x T) T) Unary {
	return func(xVal Array) (Array, error) {
		x, err := toArray[T](xVal)
		if err != nil {
			return nil, err
		}
		if len(x.values) == 0 {
			return nil, errors.Errorf("cannot reduce an empty array")
		}
		acc := x.values[0]
		for _, xi := range x.values[1:] {
			acc = f(acc, xi)
		}
		return newArray([]T{acc}, nil), nil
	}
}

func lt[T constraints.Ordered](x, y T) bool { return x < y }
func le[T constraints.Ordered](x, y T) bool { return x <= y }
func gt[T constraints.Ordered](x, y T) bool { return x > y }
func ge[T constraints.Ordered](x, y T) bool { return x >= y }
func eq[T comparable](x, y T) bool          { return x == y }
func ne[T comparable](x, y T) bool          { return x != y }

func minOf[T constraints.Ordered](x, y T) T { return min(x, y) }
func maxOf[T constraints.Ordered](x, y T) T { return max(x, y) }

// Compose builds a vector from atoms or a matrix from vectors.
func (arrayFactory[T]) Compose() NAry {
	return func(comps []Array) (Array, error) {
		if len(comps) == 0 {
			return nil, errors.Errorf("cannot compose a value without components")
		}
		var vals []T
		for _, comp := range comps {
			cT, err := toArray[T](comp)
			if err != nil {
				return nil, err
			}
			if len(cT.shape.AxisLengths) != len(comps[0].Shape().AxisLengths) || len(cT.values) != comps[0].Shape().Size() {
				return nil, errors.Errorf("cannot compose %s with %s", comps[0].Shape().String(), cT.shape.String())
			}
			vals = append(vals, cT.values...)
		}
		dims := append([]int{len(comps)}, comps[0].Shape().AxisLengths...)
		if len(dims) > 2 {
			return nil, errors.Errorf("cannot compose values of shape %s", comps[0].Shape().String())
		}
		return newArray(vals, dims), nil
	}
}

// Splat returns a vector of n components equal to an atom.
func (arrayFactory[T]) Splat(n int) Unary {
	return func(xVal Array) (Array, error) {
		x, err := toArray[T](xVal)
		if err != nil {
			return nil, err
		}
		if !isAtomic(&x.shape) {
			return nil, errors.Errorf("cannot splat %s", x.shape.String())
		}
		vals := make([]T, n)
		for i := range vals {
			vals[i] = x.values[0]
		}
		return newArray(vals, []int{n}), nil
	}
}

// Select returns the components of x where mask is true, the components of y otherwise.
func (arrayFactory[T]) Select(maskVal Array) Binary {
	return func(xVal, yVal Array) (Array, error) {
		mask, err := toArray[bool](maskVal)
		if err != nil {
			return nil, err
		}
		x, err := toArray[T](xVal)
		if err != nil {
			return nil, err
		}
		y, err := toArray[T](yVal)
		if err != nil {
			return nil, err
		}
		if len(x.values) != len(y.values) || (!isAtomic(&mask.shape) && len(mask.values) != len(x.values)) {
			return nil, errors.Errorf("cannot select between %s and %s with mask %s", x.shape.String(), y.shape.String(), mask.shape.String())
		}
		z := make([]T, len(x.values))
		for i := range z {
			if mask.at(i) {
				z[i] = x.values[i]
			} else {
				z[i] = y.values[i]
			}
		}
		return newArray(z, append([]int{}, x.shape.AxisLengths...)), nil
	}
}

// Booleans

func (boolFactory) UnaryOp(op ir.Op) (Unary, error) {
	if op == ir.OpNot {
		return unary(func(x bool) bool { return !x }), nil
	}
	return nil, errNotSupported[bool]("unary operator", op)
}

func (boolFactory) BinaryOp(op ir.Op) (Binary, error) {
	switch op {
	case ir.OpAnd:
		return binary(func(x, y bool) bool { return x && y }), nil
	case ir.OpOr:
		return binary(func(x, y bool) bool { return x || y }), nil
	case ir.OpXor, ir.OpNe:
		return binary(ne[bool]), nil
	case ir.OpEq:
		return binary(eq[bool]), nil
	}
	return nil, errNotSupported[bool]("binary operator", op)
}

func (boolFactory) Reduce(op ir.Op) (Unary, error) {
	switch op {
	case ir.OpAll:
		return fold(func(acc, x bool) bool { return acc && x }), nil
	case ir.OpAny:
		return fold(func(acc, x bool) bool { return acc || x }), nil
	}
	return nil, errNotSupported[bool]("reduction", op)
}

// Numbers

func (numericFactory[T]) UnaryOp(op ir.Op) (Unary, error) {
	switch op {
	case ir.OpNeg:
		return unary(func(x T) T { return -x }), nil
	case ir.OpAbs:
		return unary(func(x T) T {
			if x < 0 {
				return -x
			}
			return x
		}), nil
	}
	return nil, errNotSupported[T]("unary operator", op)
}

func (numericFactory[T]) BinaryOp(op ir.Op) (Binary, error) {
	switch op {
	case ir.OpAdd:
		return binary(func(x, y T) T { return x + y }), nil
	case ir.OpSub:
		return binary(func(x, y T) T { return x - y }), nil
	case ir.OpMul:
		return binary(func(x, y T) T { return x * y }), nil
	case ir.OpMin:
		return binary(minOf[T]), nil
	case ir.OpMax:
		return binary(maxOf[T]), nil
	case ir.OpLt:
		return binary(lt[T]), nil
	case ir.OpLe:
		return binary(le[T]), nil
	case ir.OpGt:
		return binary(gt[T]), nil
	case ir.OpGe:
		return binary(ge[T]), nil
	case ir.OpEq:
		return binary(eq[T]), nil
	case ir.OpNe:
		return binary(ne[T]), nil
	}
	return nil, errNotSupported[T]("binary operator", op)
}

func (numericFactory[T]) Reduce(op ir.Op) (Unary, error) {
	switch op {
	case ir.OpReduceSum:
		return fold(func(acc, x T) T { return acc + x }), nil
	case ir.OpReduceProd:
		return fold(func(acc, x T) T { return acc * x }), nil
	case ir.OpReduceMin:
		return fold(minOf[T]), nil
	case ir.OpReduceMax:
		return fold(maxOf[T]), nil
	}
	return nil, errNotSupported[T]("reduction", op)
}

// Floats

func (f floatFactory) UnaryOp(op ir.Op) (Unary, error) {
	switch op {
	case ir.OpSqrt:
		return unary(func(x float32) float32 { return float32(math.Sqrt(float64(x))) }), nil
	case ir.OpFloor:
		return unary(func(x float32) float32 { return float32(math.Floor(float64(x))) }), nil
	}
	return f.numericFactory.UnaryOp(op)
}

func (f floatFactory) BinaryOp(op ir.Op) (Binary, error) {
	switch op {
	case ir.OpDiv:
		return binary(func(x, y float32) float32 { return x / y }), nil
	case ir.OpRem:
		// Truncated remainder: the result has the sign of x.
		return binary(func(x, y float32) float32 { return float32(math.Mod(float64(x), float64(y))) }), nil
	}
	return f.numericFactory.BinaryOp(op)
}

// Integers

func (f integerFactory[T]) UnaryOp(op ir.Op) (Unary, error) {
	if op == ir.OpNot {
		return unary(func(x T) T { return ^x }), nil
	}
	return f.numericFactory.UnaryOp(op)
}

func (f integerFactory[T]) BinaryOp(op ir.Op) (Binary, error) {
	switch op {
	case ir.OpDiv:
		return binaryE(func(x, y T) (T, error) {
			if y == 0 {
				return 0, errors.Errorf("integer division by zero")
			}
			return x / y, nil
		}), nil
	case ir.OpRem:
		return binaryE(func(x, y T) (T, error) {
			if y == 0 {
				return 0, errors.Errorf("integer division by zero")
			}
			return x % y, nil
		}), nil
	case ir.OpAnd:
		return binary(func(x, y T) T { return x & y }), nil
	case ir.OpOr:
		return binary(func(x, y T) T { return x | y }), nil
	case ir.OpXor:
		return binary(func(x, y T) T { return x ^ y }), nil
	case ir.OpShl:
		// Shift amounts are taken modulo the bit width.
		return binary(func(x, y T) T { return x << (uint32(y) & 31) }), nil
	case ir.OpShr:
		return binary(func(x, y T) T { return x >> (uint32(y) & 31) }), nil
	}
	return f.numericFactory.BinaryOp(op)
}
