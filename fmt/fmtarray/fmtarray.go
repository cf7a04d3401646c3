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

// Package fmtarray formats kernel scalars, vectors and matrices into strings.
package fmtarray

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

type builder[T dtype.GoDataType] struct {
	w    *strings.Builder
	data []T
	axes []int
}

func newBuilder[T dtype.GoDataType](data []T, axes []int) (*builder[T], error) {
	b := &builder[T]{
		w:    &strings.Builder{},
		data: data,
		axes: axes,
	}
	if len(axes) > 2 {
		return b, errors.Errorf("cannot format a value with %d axes", len(axes))
	}
	total := 1
	for _, size := range b.axes {
		total *= size
	}
	if total != len(data) {
		return b, errors.Errorf("len(data)=%d does not match axes %v=%d", len(data), axes, total)
	}
	return b, nil
}

func (b *builder[T]) toValue(x T) string {
	if _, ok := any(x).(float32); !ok {
		return fmt.Sprint(x)
	}
	result := fmt.Sprintf("%.6f", any(x))
	if strings.ContainsRune(result, '.') {
		// Remove any number of trailing zeroes after the decimal point, and remove
		// the point itself if there are no digits after it.
		result = strings.TrimRight(result, "0")
		result = strings.TrimSuffix(result, ".")
	}
	return result
}

func (b *builder[T]) printTuple(vals []T) {
	b.w.WriteString("(")
	for i, v := range vals {
		if i > 0 {
			b.w.WriteString(", ")
		}
		b.w.WriteString(b.toValue(v))
	}
	b.w.WriteString(")")
}

// printColumns prints a matrix stored in column-major order.
func (b *builder[T]) printColumns() {
	cols, rows := b.axes[0], b.axes[1]
	b.w.WriteString("(")
	for c := range cols {
		if c > 0 {
			b.w.WriteString(", ")
		}
		b.printTuple(b.data[c*rows : (c+1)*rows])
	}
	b.w.WriteString(")")
}

func (b *builder[T]) printType() {
	kind := irkind.KindGeneric[T]().String()
	switch len(b.axes) {
	case 0:
		b.w.WriteString(kind)
	case 1:
		fmt.Fprintf(b.w, "vec%d<%s>", b.axes[0], kind)
	case 2:
		fmt.Fprintf(b.w, "mat%d<%s>", b.axes[0], kind)
	}
}

func (b *builder[T]) printData() {
	if len(b.axes) == 2 {
		b.printColumns()
		return
	}
	b.printTuple(b.data)
}

// SDataPrint returns a string representation of the content of a value without the type.
// Matrices are stored in column-major order with axes [columns, rows].
func SDataPrint[T dtype.GoDataType](data []T, axes []int) string {
	b, err := newBuilder[T](data, axes)
	if err != nil {
		return err.Error()
	}
	b.printData()
	return b.w.String()
}

// Sprint returns a string representation of a value prefixed by its kernel type.
func Sprint[T dtype.GoDataType](data []T, axes []int) string {
	b, err := newBuilder[T](data, axes)
	if err != nil {
		return err.Error()
	}
	b.printType()
	b.printData()
	return b.w.String()
}
