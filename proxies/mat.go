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
	"github.com/gx-org/kernelir/build/ir/irkind"
)

// Mat is a proxy for a square float32 matrix stored as columns.
type Mat struct {
	base
}

var _ Proxy[Mat] = Mat{}

func (Mat) accepts(typ *ir.Type) bool {
	return typ.IsMatrix() && typ.Kind() == irkind.Float32
}

func (Mat) withNode(b *builder.Builder, id ir.NodeID) Mat {
	return Mat{base{b: b, id: id}}
}

// Dim returns the number of rows and columns of the matrix.
func (m Mat) Dim() int {
	return m.Type().Len()
}

// Col returns the ith column.
func (m Mat) Col(i int) Vec[float32] {
	return emit[Vec[float32]](ir.OpExtract, checkIndex(m.Type(), i), i, m)
}

// WithCol returns a copy of m with its ith column set to col.
func (m Mat) WithCol(i int, col Vec[float32]) Mat {
	checkSameType("replacing a matrix column", checkIndex(m.Type(), i), col.Type())
	return emit[Mat](ir.OpInsert, m.Type(), i, m, col)
}

// Add returns m+y.
func (m Mat) Add(y Mat) Mat {
	return emit[Mat](ir.OpAdd, binaryType(ir.OpAdd, m.Type(), y.Type()), nil, m, y)
}

// Sub returns m-y.
func (m Mat) Sub(y Mat) Mat {
	return emit[Mat](ir.OpSub, binaryType(ir.OpSub, m.Type(), y.Type()), nil, m, y)
}

// Scale multiplies all the components of m by s.
func (m Mat) Scale(s Expr[float32]) Mat {
	return emit[Mat](ir.OpMul, binaryType(ir.OpMul, m.Type(), s.Type()), nil, m, s)
}

// MulVec returns the product of m by a column vector.
func (m Mat) MulVec(v Vec[float32]) Vec[float32] {
	typ := m.Type()
	checkSameType("matrix-vector product", typ.Elem(), v.Type())
	return emit[Vec[float32]](ir.OpMatVec, typ.Elem(), nil, m, v)
}

// MatMul returns the matrix product m*y.
func (m Mat) MatMul(y Mat) Mat {
	typ := m.Type()
	checkSameType("matrix product", typ, y.Type())
	return emit[Mat](ir.OpMatMul, typ, nil, m, y)
}

// Transpose returns the transpose of m.
func (m Mat) Transpose() Mat {
	return emit[Mat](ir.OpTranspose, m.Type(), nil, m)
}

// Inverse returns the inverse of m.
func (m Mat) Inverse() Mat {
	return emit[Mat](ir.OpInverse, m.Type(), nil, m)
}

// MakeMat returns a matrix given its columns.
func MakeMat(cols ...Vec[float32]) Mat {
	if len(cols) < ir.MinArity || len(cols) > ir.MaxArity {
		fmterr.Raise(fmterr.ErrTypeMismatch, "cannot build a matrix from %d columns", len(cols))
	}
	vals := make([]Value, len(cols))
	for i, col := range cols {
		vals[i] = col
		checkSameType("matrix column", cols[0].Type(), col.Type())
	}
	if cols[0].Len() != len(cols) {
		fmterr.Raise(fmterr.ErrTypeMismatch, "cannot build a square matrix from %d columns of %s", len(cols), cols[0].Type())
	}
	typ := mustType(cols[0].registry().Matrix(irkind.Float32, len(cols)))
	return emit[Mat](ir.OpCompose, typ, nil, vals...)
}

// Eye returns the identity matrix of a given dimension.
func Eye(b *builder.Builder, dim int) Mat {
	typ := mustType(b.Registry().Matrix(irkind.Float32, dim))
	flat := make([]float32, dim*dim)
	for i := range dim {
		flat[i*dim+i] = 1
	}
	return emitIn[Mat](b, ir.OpLiteral, typ, flat)
}
