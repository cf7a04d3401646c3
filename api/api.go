// Copyright 2024 Google LLC
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

// Package api defines the interface between kernels and a backend.
package api

import (
	"context"

	"github.com/gx-org/backend/platform"
	"github.com/gx-org/kernelir/api/options"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend"
	"github.com/gx-org/kernelir/golang/backend/graph"
)

// Runtime encapsulates a construction context and a backend.
// Kernels traced by the runtime intern their types in the registry
// of the context and can be dispatched on the backend.
type Runtime struct {
	bck *backend.Backend
	ctx *builder.Context
}

// NewRuntime returns a new runtime given a backend.
// A new construction context is created with the trace options.
func NewRuntime(bck *backend.Backend, opts ...options.TraceOption) (*Runtime, error) {
	ctx, err := builder.NewContext(opts...)
	if err != nil {
		return nil, err
	}
	return &Runtime{bck: bck, ctx: ctx}, nil
}

// Backend used by the runtime.
func (rtm *Runtime) Backend() *backend.Backend {
	return rtm.bck
}

// Platform used by the runtime.
func (rtm *Runtime) Platform() platform.Platform {
	return rtm.bck.Platform()
}

// Context returns the construction context used to trace kernels.
func (rtm *Runtime) Context() *builder.Context {
	return rtm.ctx
}

// Registry returns the registry interning the types of the kernels.
func (rtm *Runtime) Registry() *ir.Registry {
	return rtm.ctx.Registry()
}

// Trace a kernel.
func (rtm *Runtime) Trace(name string, body builder.Body) (*ir.Func, error) {
	return rtm.ctx.WithNewBuilder(name, ir.Kernel, body)
}

// Compile a kernel and returns a runner to run the kernel on the device.
func (rtm *Runtime) Compile(fn *ir.Func) (*graph.Runner, error) {
	return rtm.bck.Compile(fn)
}

// Dispatch n threads of a kernel on the device.
func (rtm *Runtime) Dispatch(ctx context.Context, fn *ir.Func, n int) error {
	return rtm.bck.Dispatch(ctx, fn, n)
}
