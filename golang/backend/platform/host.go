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
	"github.com/gx-org/backend/platform"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/kernelir/golang/backend/kernels"
)

// HostArray is an array held in Go memory used to transfer data
// to and from devices.
type HostArray struct {
	mut   sync.Mutex
	array kernels.Array
}

var _ platform.HostBuffer = (*HostArray)(nil)

// NewHostArray returns a host array with all values set to zero.
func NewHostArray(sh *shape.Shape) (*HostArray, error) {
	array, err := kernels.NewArrayFromRaw(make([]byte, sh.ByteSize()), sh)
	if err != nil {
		return nil, err
	}
	return &HostArray{array: array}, nil
}

// Shape of the underlying array.
func (buf *HostArray) Shape() *shape.Shape {
	return buf.array.Shape()
}

// Array returns the array storing the data of the buffer.
func (buf *HostArray) Array() kernels.Array {
	return buf.array
}

// ToDevice transfers the handle to a device.
func (buf *HostArray) ToDevice(dev platform.Device) (platform.DeviceHandle, error) {
	data := buf.Acquire()
	defer buf.Release()
	return dev.Send(data, buf.array.Shape())
}

// ToHost copies the data of the buffer into another host buffer.
func (buf *HostArray) ToHost(target platform.HostBuffer) error {
	src := buf.Acquire()
	defer buf.Release()

	dst := target.Acquire()
	defer target.Release()

	if len(src) != len(dst) {
		return errors.Errorf("cannot copy source with length %d (shape: %s) to destination of length %d (shape: %s)", len(src), buf.Shape(), len(dst), target.Shape())
	}
	copy(dst, src)
	return nil
}

// Acquire locks the buffer and returns it.
// The buffer can be read or written by the caller. All other access is locked.
func (buf *HostArray) Acquire() []byte {
	buf.mut.Lock()
	return buf.array.Buffer()
}

// Release the buffer.
func (buf *HostArray) Release() {
	buf.mut.Unlock()
}

// Free the memory occupied by the buffer.
func (buf *HostArray) Free() {
	buf.array = nil
}
