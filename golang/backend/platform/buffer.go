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

package platform

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/kernels"
	"github.com/gx-org/kernelir/golang/encoding/native"
)

// Buffer is a storage buffer of kernel values bound to kernels.
// It can be read and written concurrently by the threads of a dispatch.
type Buffer struct {
	device *Device
	typ    *ir.Type

	mut   sync.Mutex
	elems []kernels.Value
}

var _ ir.Buffer = (*Buffer)(nil)

// NewBuffer returns a buffer storing the values of a host slice.
// The type of the elements is the kernel type of T.
func NewBuffer[T any](dev *Device, reg *ir.Registry, host []T) (*Buffer, error) {
	typ, err := ir.TypeOf[T](reg)
	if err != nil {
		return nil, err
	}
	elems, err := native.EncodeSlice(typ, host)
	if err != nil {
		return nil, err
	}
	return &Buffer{device: dev, typ: typ, elems: elems}, nil
}

// NewZeroBuffer returns a buffer of n zero values of type typ.
func NewZeroBuffer(dev *Device, typ *ir.Type, n int) (*Buffer, error) {
	elems := make([]kernels.Value, n)
	for i := range elems {
		var err error
		if elems[i], err = kernels.Zero(typ); err != nil {
			return nil, err
		}
	}
	return &Buffer{device: dev, typ: typ, elems: elems}, nil
}

// Device on which the buffer is stored.
func (buf *Buffer) Device() *Device {
	return buf.device
}

// ElemType returns the type of the elements of the buffer.
func (buf *Buffer) ElemType() *ir.Type {
	return buf.typ
}

// Len returns the number of elements in the buffer.
func (buf *Buffer) Len() int {
	return len(buf.elems)
}

func (buf *Buffer) checkIndex(i int) error {
	if i < 0 || i >= len(buf.elems) {
		return errors.Errorf("index %d out of range [0, %d) for buffer of %s", i, len(buf.elems), buf.typ)
	}
	return nil
}

// Load returns a copy of the ith element.
func (buf *Buffer) Load(i int) (kernels.Value, error) {
	if err := buf.checkIndex(i); err != nil {
		return nil, err
	}
	buf.mut.Lock()
	defer buf.mut.Unlock()
	return buf.elems[i].Clone(), nil
}

// Store sets the ith element.
func (buf *Buffer) Store(i int, val kernels.Value) error {
	if err := buf.checkIndex(i); err != nil {
		return err
	}
	buf.mut.Lock()
	defer buf.mut.Unlock()
	buf.elems[i] = val.Clone()
	return nil
}

// AtomicAdd adds val to the ith element and returns the previous value.
func (buf *Buffer) AtomicAdd(i int, val kernels.Array) (kernels.Array, error) {
	if err := buf.checkIndex(i); err != nil {
		return nil, err
	}
	add, err := val.Factory().BinaryOp(ir.OpAdd)
	if err != nil {
		return nil, err
	}
	buf.mut.Lock()
	defer buf.mut.Unlock()
	old, ok := buf.elems[i].(kernels.Array)
	if !ok {
		return nil, errors.Errorf("cannot add to an element of type %s", buf.typ)
	}
	sum, err := add(old, val)
	if err != nil {
		return nil, err
	}
	buf.elems[i] = sum
	return old, nil
}

// Handle returns a device handle on the ith element
// if it is a scalar, a vector, or a matrix.
func (buf *Buffer) Handle(i int) (*Handle, error) {
	val, err := buf.Load(i)
	if err != nil {
		return nil, err
	}
	array, ok := val.(kernels.Array)
	if !ok {
		return nil, errors.Errorf("element of type %s cannot be referenced by a device handle", buf.typ)
	}
	return &Handle{device: buf.device, array: array}, nil
}

// ToSlice decodes all the elements of a buffer into host values.
func ToSlice[T any](buf *Buffer) ([]T, error) {
	buf.mut.Lock()
	defer buf.mut.Unlock()
	host := make([]T, len(buf.elems))
	for i, el := range buf.elems {
		if err := native.Decode(el, &host[i]); err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
	}
	return host, nil
}
