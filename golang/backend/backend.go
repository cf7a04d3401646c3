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

// Package backend runs kernels on the CPU with the native Go platform.
package backend

import (
	"context"

	"github.com/gx-org/backend/platform"
	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/api/options"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/graph"
	goplatform "github.com/gx-org/kernelir/golang/backend/platform"
)

// Backend dispatches kernels on the Go platform.
type Backend struct {
	plat *goplatform.Platform
	dev  *goplatform.Device
	opts []options.RunOption
}

// New native Go backend.
func New(opts ...options.RunOption) *Backend {
	plat := goplatform.New()
	dev, _ := plat.GoDevice(0)
	return &Backend{plat: plat, dev: dev, opts: opts}
}

// Platform returns the Go native platform.
func (bck *Backend) Platform() platform.Platform {
	return bck.plat
}

// Device returns the device on which kernels are executed.
func (bck *Backend) Device() *goplatform.Device {
	return bck.dev
}

// Compile returns a runner executing a kernel on the device of the backend.
func (bck *Backend) Compile(fn *ir.Func) (*graph.Runner, error) {
	return graph.Compile(bck.dev, fn, bck.opts...)
}

// Dispatch executes n threads of a kernel.
func (bck *Backend) Dispatch(ctx context.Context, fn *ir.Func, n int) error {
	if err := graph.CheckThreads(n); err != nil {
		return errors.WithMessagef(err, "cannot dispatch %s", fn.Name())
	}
	runner, err := bck.Compile(fn)
	if err != nil {
		return err
	}
	return runner.Run(ctx, n)
}

// NewBuffer returns a buffer on the device of the backend
// storing the values of a host slice.
func NewBuffer[T any](bck *Backend, reg *ir.Registry, host []T) (*goplatform.Buffer, error) {
	return goplatform.NewBuffer(bck.dev, reg, host)
}
