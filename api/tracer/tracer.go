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

// Package tracer traces kernels and compiles them for the device of a runtime.
package tracer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/api"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/graph"
)

// CompiledFunc is a kernel compiled for the device of a runtime
// which is ready to run.
type CompiledFunc struct {
	runner *graph.Runner
}

// Trace a kernel and returns a function to run the kernel on the device.
func Trace(rtm *api.Runtime, name string, body builder.Body) (_ *CompiledFunc, err error) {
	defer func() {
		if err != nil {
			err = errors.WithMessagef(err, "%s evaluation error", name)
		}
	}()
	fn, err := rtm.Trace(name, body)
	if err != nil {
		return nil, err
	}
	runner, err := rtm.Compile(fn)
	if err != nil {
		return nil, err
	}
	return &CompiledFunc{runner: runner}, nil
}

// Func returns the traced kernel.
func (f *CompiledFunc) Func() *ir.Func {
	return f.runner.Func()
}

// Run n threads of the kernel.
func (f *CompiledFunc) Run(ctx context.Context, n int) error {
	return f.runner.Run(ctx, n)
}
