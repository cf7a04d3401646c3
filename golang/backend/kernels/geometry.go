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
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/kernelir/api/values"
)

func dot[T values.Numeric](xVal, yVal Array) (Array, error) {
	x, err := toArray[T](xVal)
	if err != nil {
		return nil, err
	}
	y, err := toArray[T](yVal)
	if err != nil {
		return nil, err
	}
	if len(x.values) != len(y.values) {
		return nil, errors.Errorf("dot product of %s and %s", x.shape.String(), y.shape.String())
	}
	var sum T
	for i, xi := range x.values {
		sum += xi * y.values[i]
	}
	return Atom(sum), nil
}

// Dot returns the dot product of two vectors.
func Dot(x, y Array) (Array, error) {
	switch x.Shape().DType {
	case dtype.Float32:
		return dot[float32](x, y)
	case dtype.Int32:
		return dot[int32](x, y)
	case dtype.Uint32:
		return dot[uint32](x, y)
	}
	return nil, errors.Errorf("dot product not supported for %s", x.Shape().DType)
}

func length(x []float32) float32 {
	var sum float64
	for _, xi := range x {
		sum += float64(xi) * float64(xi)
	}
	return float32(math.Sqrt(sum))
}

// Length returns the Euclidean length of a vector.
func Length(xVal Array) (Array, error) {
	x, err := toArray[float32](xVal)
	if err != nil {
		return nil, err
	}
	return Atom(length(x.values)), nil
}

// Normalize divides a vector by its length.
func Normalize(xVal Array) (Array, error) {
	x, err := toArray[float32](xVal)
	if err != nil {
		return nil, err
	}
	l := length(x.values)
	z := make([]float32, len(x.values))
	for i, xi := range x.values {
		z[i] = xi / l
	}
	return newArray(z, append([]int{}, x.shape.AxisLengths...)), nil
}

// Cross returns the cross product of two vectors of 3 components.
func Cross(xVal, yVal Array) (Array, error) {
	x, err := toArray[float32](xVal)
	if err != nil {
		return nil, err
	}
	y, err := toArray[float32](yVal)
	if err != nil {
		return nil, err
	}
	if len(x.values) != 3 || len(y.values) != 3 {
		return nil, errors.Errorf("cross product of %s and %s", x.shape.String(), y.shape.String())
	}
	a, b := x.values, y.values
	return newArray([]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}, []int{3}), nil
}

func squareMatrix(mVal Array) (*arrayT[float32], int, error) {
	m, err := toArray[float32](mVal)
	if err != nil {
		return nil, 0, err
	}
	axes := m.shape.AxisLengths
	if len(axes) != 2 || axes[0] != axes[1] {
		return nil, 0, errors.Errorf("%s is not a square matrix", m.shape.String())
	}
	return m, axes[0], nil
}

// MatVec returns the product of a matrix by a column vector.
func MatVec(mVal, vVal Array) (Array, error) {
	m, n, err := squareMatrix(mVal)
	if err != nil {
		return nil, err
	}
	v, err := toArray[float32](vVal)
	if err != nil {
		return nil, err
	}
	if len(v.values) != n {
		return nil, errors.Errorf("cannot multiply %s by %s", m.shape.String(), v.shape.String())
	}
	z := make([]float32, n)
	for c := range n {
		for r := range n {
			z[r] += m.values[c*n+r] * v.values[c]
		}
	}
	return newArray(z, []int{n}), nil
}

// MatMul returns the product of two matrices.
func MatMul(aVal, bVal Array) (Array, error) {
	a, n, err := squareMatrix(aVal)
	if err != nil {
		return nil, err
	}
	b, bn, err := squareMatrix(bVal)
	if err != nil {
		return nil, err
	}
	if n != bn {
		return nil, errors.Errorf("cannot multiply %s by %s", a.shape.String(), b.shape.String())
	}
	z := make([]float32, n*n)
	for c := range n {
		for r := range n {
			var sum float32
			for k := range n {
				sum += a.values[k*n+r] * b.values[c*n+k]
			}
			z[c*n+r] = sum
		}
	}
	return newArray(z, []int{n, n}), nil
}

// Transpose returns the transpose of a matrix.
func Transpose(mVal Array) (Array, error) {
	m, n, err := squareMatrix(mVal)
	if err != nil {
		return nil, err
	}
	z := make([]float32, n*n)
	for c := range n {
		for r := range n {
			z[c*n+r] = m.values[r*n+c]
		}
	}
	return newArray(z, []int{n, n}), nil
}

// Inverse returns the inverse of a matrix using Gauss-Jordan elimination
// with partial pivoting.
func Inverse(mVal Array) (Array, error) {
	m, n, err := squareMatrix(mVal)
	if err != nil {
		return nil, err
	}
	// Augmented row-major matrix [m | I].
	aug := make([][]float64, n)
	for r := range n {
		aug[r] = make([]float64, 2*n)
		for c := range n {
			aug[r][c] = float64(m.values[c*n+r])
		}
		aug[r][n+r] = 1
	}
	for col := range n {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if aug[pivot][col] == 0 {
			return nil, errors.Errorf("matrix %s is singular", m.String())
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		scale := aug[col][col]
		for c := range aug[col] {
			aug[col][c] /= scale
		}
		for r := range n {
			if r == col {
				continue
			}
			factor := aug[r][col]
			for c := range aug[r] {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}
	z := make([]float32, n*n)
	for c := range n {
		for r := range n {
			z[c*n+r] = float32(aug[r][n+c])
		}
	}
	return newArray(z, []int{n, n}), nil
}
