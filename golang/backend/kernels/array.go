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
	"unsafe"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/kernelir/api/values"
	"github.com/gx-org/kernelir/fmt/fmtarray"
)

type (
	baseArray interface {
		array()
	}

	// arrayT is a scalar, a vector, or a matrix of scalars of type T.
	arrayT[T values.Scalar] struct {
		shape  shape.Shape
		values []T
	}
)

var _ Array = (*arrayT[int32])(nil)

// ToArray returns an array given its flat values and its axes.
// The array owns the slice of values.
func ToArray[T values.Scalar](vals []T, dims []int) Array {
	return newArray(vals, dims)
}

// Atom returns an atomic array.
func Atom[T values.Scalar](val T) Array {
	return newArray([]T{val}, nil)
}

// ToSlice returns the flat values of an array.
func ToSlice[T values.Scalar](a Array) ([]T, error) {
	aT, ok := a.base().(*arrayT[T])
	if !ok {
		return nil, errors.Errorf("cannot convert an array of %s to %s", a.Shape().DType, dtype.Generic[T]())
	}
	return aT.values, nil
}

func newArray[T values.Scalar](vals []T, dims []int) *arrayT[T] {
	return &arrayT[T]{
		shape: shape.Shape{
			DType:       dtype.Generic[T](),
			AxisLengths: dims,
		},
		values: vals,
	}
}

func toArray[T values.Scalar](a Array) (*arrayT[T], error) {
	aT, ok := a.base().(*arrayT[T])
	if !ok {
		return nil, errors.Errorf("expected an array of %s but got an array of %s", dtype.Generic[T](), a.Shape().DType)
	}
	return aT, nil
}

func (a *arrayT[T]) array() {}

func (a *arrayT[T]) base() baseArray {
	return a
}

// Shape of the array.
func (a *arrayT[T]) Shape() *shape.Shape {
	return &a.shape
}

// Factory returns the kernels available for the array.
func (a *arrayT[T]) Factory() Factory {
	factory, _ := FactoryFor(a.shape.DType)
	return factory
}

// Flat values of the array.
func (a *arrayT[T]) Flat() []T {
	return a.values
}

// at returns the ith value. Atomic arrays return their value for all indices.
func (a *arrayT[T]) at(i int) T {
	if len(a.values) == 1 {
		return a.values[0]
	}
	return a.values[i]
}

// String representation of the array.
func (a *arrayT[T]) String() string {
	return fmtarray.Sprint(a.values, a.shape.AxisLengths)
}

// Buffer returns the data of the array as a generic []byte buffer.
func (a *arrayT[T]) Buffer() []byte {
	ptr := unsafe.Pointer(&(a.values[0]))
	return unsafe.Slice((*byte)(ptr), a.shape.Size()*dtype.Sizeof(a.shape.DType))
}

// Clone returns a copy of the array.
func (a *arrayT[T]) Clone() Value {
	return newArray(append([]T{}, a.values...), append([]int{}, a.shape.AxisLengths...))
}

// ToAtom returns the atomic value contained in the array.
func (a *arrayT[T]) ToAtom() (any, error) {
	if !isAtomic(&a.shape) {
		return nil, errors.Errorf("%s not atomic", a.shape.String())
	}
	return a.values[0], nil
}

func (a *arrayT[T]) componentRange(i int) (start, end int, err error) {
	axes := a.shape.AxisLengths
	if len(axes) == 0 || i < 0 || i >= axes[0] {
		return 0, 0, errors.Errorf("component %d out of range for %s", i, a.shape.String())
	}
	stride := 1
	if len(axes) == 2 {
		stride = axes[1]
	}
	return i * stride, (i + 1) * stride, nil
}

// Component returns the ith component of a vector or the ith column of a matrix.
func (a *arrayT[T]) Component(i int) (Array, error) {
	start, end, err := a.componentRange(i)
	if err != nil {
		return nil, err
	}
	vals := append([]T{}, a.values[start:end]...)
	if len(a.shape.AxisLengths) == 1 {
		return newArray(vals, nil), nil
	}
	return newArray(vals, []int{end - start}), nil
}

// WithComponent returns a copy of the array with its ith component set to c.
func (a *arrayT[T]) WithComponent(i int, c Array) (Array, error) {
	start, end, err := a.componentRange(i)
	if err != nil {
		return nil, err
	}
	cT, err := toArray[T](c)
	if err != nil {
		return nil, err
	}
	if len(cT.values) != end-start {
		return nil, errors.Errorf("cannot set component %d of %s to %s", i, a.shape.String(), cT.shape.String())
	}
	out := a.Clone().(*arrayT[T])
	copy(out.values[start:end], cT.values)
	return out, nil
}
