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
	"github.com/gx-org/backend/platform"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/kernelir/golang/backend/kernels"
)

// Device executes kernels on the CPU and stores their buffers in Go memory.
type Device struct {
	plat *Platform
}

var _ platform.Device = (*Device)(nil)

// Platform owning the device.
func (dev *Device) Platform() platform.Platform {
	return dev.plat
}

// Ordinal of the device. The Go platform has a single device.
func (dev *Device) Ordinal() int {
	return 0
}

// Send copies raw data into a new array held by the device.
func (dev *Device) Send(data []byte, sh *shape.Shape) (platform.DeviceHandle, error) {
	array, err := kernels.NewArrayFromRaw(data, sh)
	if err != nil {
		return nil, err
	}
	return &Handle{device: dev, array: array}, nil
}
