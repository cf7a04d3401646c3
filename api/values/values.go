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

// Package values implements the host representation of kernel values.
//
// Scalars are represented by the Go types bool, int32, uint32 and float32.
// Vectors and matrices are represented by fixed-length arrays declaring
// their kernel type. Matrices are stored in column-major order.
package values

import (
	"fmt"
	"strings"

	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

type (
	// Scalar is the set of Go types for kernel scalars.
	Scalar interface {
		bool | int32 | uint32 | float32
	}

	// Numeric is the set of Go types for numeric kernel scalars.
	Numeric interface {
		int32 | uint32 | float32
	}

	// Integer is the set of Go types for integer kernel scalars.
	Integer interface {
		int32 | uint32
	}
)

// KindOf returns the kind of a Go scalar type.
func KindOf[T Scalar]() irkind.Kind {
	return irkind.KindGeneric[T]()
}

// ScalarType returns the kernel type of a Go scalar type.
func ScalarType[T Scalar](r *ir.Registry) *ir.Type {
	return r.Scalar(KindOf[T]())
}

type (
	// Vec2 is a host vector with 2 components.
	Vec2[T Scalar] [2]T
	// Vec3 is a host vector with 3 components.
	Vec3[T Scalar] [3]T
	// Vec4 is a host vector with 4 components.
	Vec4[T Scalar] [4]T

	// Mat2 is a 2x2 host matrix stored as an array of columns.
	Mat2 [2]Vec2[float32]
	// Mat3 is a 3x3 host matrix stored as an array of columns.
	Mat3 [3]Vec3[float32]
	// Mat4 is a 4x4 host matrix stored as an array of columns.
	Mat4 [4]Vec4[float32]
)

var (
	_ ir.HostType = Vec2[float32]{}
	_ ir.HostType = Vec3[int32]{}
	_ ir.HostType = Vec4[bool]{}
	_ ir.HostType = Mat2{}
	_ ir.HostType = Mat3{}
	_ ir.HostType = Mat4{}
)

// KernelType returns the kernel type of the vector.
func (Vec2[T]) KernelType(r *ir.Registry) (*ir.Type, error) { return r.Vector(KindOf[T](), 2) }

// KernelType returns the kernel type of the vector.
func (Vec3[T]) KernelType(r *ir.Registry) (*ir.Type, error) { return r.Vector(KindOf[T](), 3) }

// KernelType returns the kernel type of the vector.
func (Vec4[T]) KernelType(r *ir.Registry) (*ir.Type, error) { return r.Vector(KindOf[T](), 4) }

// KernelType returns the kernel type of the matrix.
func (Mat2) KernelType(r *ir.Registry) (*ir.Type, error) { return r.Matrix(irkind.Float32, 2) }

// KernelType returns the kernel type of the matrix.
func (Mat3) KernelType(r *ir.Registry) (*ir.Type, error) { return r.Matrix(irkind.Float32, 3) }

// KernelType returns the kernel type of the matrix.
func (Mat4) KernelType(r *ir.Registry) (*ir.Type, error) { return r.Matrix(irkind.Float32, 4) }

// Components returns the components of the vector.
func (v Vec2[T]) Components() []T { return v[:] }

// Components returns the components of the vector.
func (v Vec3[T]) Components() []T { return v[:] }

// Components returns the components of the vector.
func (v Vec4[T]) Components() []T { return v[:] }

func (v Vec2[T]) String() string { return sprintVec(v[:]) }

func (v Vec3[T]) String() string { return sprintVec(v[:]) }

func (v Vec4[T]) String() string { return sprintVec(v[:]) }

// Identity2 returns the 2x2 identity matrix.
func Identity2() Mat2 {
	return Mat2{{1, 0}, {0, 1}}
}

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	return Mat4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
}

// Flat returns the components of the matrix in column-major order.
func (m Mat2) Flat() []float32 { return flatten(m[:]) }

// Flat returns the components of the matrix in column-major order.
func (m Mat3) Flat() []float32 { return flatten(m[:]) }

// Flat returns the components of the matrix in column-major order.
func (m Mat4) Flat() []float32 { return flatten(m[:]) }

type column interface {
	Components() []float32
}

func flatten[C column](cols []C) []float32 {
	var flat []float32
	for _, col := range cols {
		flat = append(flat, col.Components()...)
	}
	return flat
}

func sprintVec[T Scalar](vals []T) string {
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("vec%d(%s)", len(vals), strings.Join(s, ", "))
}
