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

// Package options specifies options to trace and run kernels.
package options

import (
	"log/slog"

	"github.com/gx-org/kernelir/build/ir"
)

type (
	// TraceOption configures a trace context.
	TraceOption interface {
		traceOption()
	}

	// RunOption configures the execution of kernels.
	RunOption interface {
		runOption()
	}

	// Logger sets the logger used to report tracing or execution events.
	// Events are logged at the debug level.
	Logger struct {
		Logger *slog.Logger
	}

	// Registry sets the registry interning the types of the traced functions.
	// The process-wide registry is used by default.
	Registry struct {
		Registry *ir.Registry
	}

	// Validate sets whether sealed functions are validated.
	// Validation is enabled by default.
	Validate struct {
		Enabled bool
	}

	// Workers sets the number of goroutines executing the threads of a dispatch.
	// The number of CPUs is used by default.
	Workers struct {
		N int
	}
)

func (Logger) traceOption() {}

func (Registry) traceOption() {}

func (Validate) traceOption() {}

func (Logger) runOption() {}

func (Workers) runOption() {}
