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

// Package platform implements a CPU platform holding kernel buffers in Go memory.
package platform

import (
	"github.com/pkg/errors"
	"github.com/gx-org/backend/platform"
)

// Platform is the Go platform. It owns a single CPU device.
type Platform struct {
	dev *Device
}

var _ platform.Platform = (*Platform)(nil)

// New returns a Go native platform.
func New() *Platform {
	plat := &Platform{}
	plat.dev = &Device{plat: plat}
	return plat
}

// Name of the platform.
func (plat *Platform) Name() string {
	return "gonative"
}

// GoDevice returns a Go CPU device.
func (plat *Platform) GoDevice(ordinal int) (*Device, error) {
	if ordinal != 0 {
		return nil, errors.Errorf("device %d does not exist: %s has a single device", ordinal, plat.Name())
	}
	return plat.dev, nil
}

// Device returns the CPU device.
func (plat *Platform) Device(ordinal int) (platform.Device, error) {
	return plat.GoDevice(ordinal)
}
