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
	"github.com/pkg/errors"
	"github.com/gx-org/backend/platform"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/kernelir/golang/backend/kernels"
)

// Handle references a scalar, vector or matrix held by a device.
// Handles are snapshots: later writes to the buffer they were
// taken from are not reflected.
type Handle struct {
	device *Device
	array  kernels.Array
}

var _ platform.DeviceHandle = (*Handle)(nil)

// Device on which the value is located.
func (h *Handle) Device() platform.Device {
	return h.device
}

// Shape of the value.
func (h *Handle) Shape() *shape.Shape {
	return h.array.Shape()
}

// Array returns the value referenced by the handle.
func (h *Handle) Array() kernels.Array {
	return h.array
}

// ToHost copies the value into a host buffer of the same byte size.
func (h *Handle) ToHost(buf platform.HostBuffer) error {
	src := h.array.Buffer()
	dst := buf.Acquire()
	defer buf.Release()
	if len(dst) != len(src) {
		return errors.Errorf("cannot copy %s (%d bytes) into a host buffer of %d bytes", h.Shape(), len(src), len(dst))
	}
	copy(dst, src)
	return nil
}

// ToDevice returns a handle on dev holding the same value.
// The handle itself is returned if dev is its device.
func (h *Handle) ToDevice(dev platform.Device) (platform.DeviceHandle, error) {
	if dev == platform.Device(h.device) {
		return h, nil
	}
	return dev.Send(h.array.Buffer(), h.Shape())
}
