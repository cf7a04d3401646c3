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

// Package builder records the nodes emitted by host code into
// sealed kernel and callable functions.
//
// A Context owns the stack of builders of one construction task.
// Builders are pushed when the tracing of a kernel or a callable
// starts and popped when it completes, including when the tracing
// fails. Construction errors raised while tracing are recovered by
// the builder which started the construction and returned as errors.
//
// A Context is not safe for concurrent use. Independent construction
// tasks use independent contexts and can share a type registry.
package builder

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/api/options"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
)

// Context holds the builders of a construction task.
type Context struct {
	reg      *ir.Registry
	logger   *slog.Logger
	validate bool

	stack   []*Builder
	tracing map[any]bool
}

// NewContext returns a new construction context.
func NewContext(opts ...options.TraceOption) (*Context, error) {
	ctx := &Context{
		reg:      ir.DefaultRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate: true,
		tracing:  make(map[any]bool),
	}
	for _, opt := range opts {
		switch optT := opt.(type) {
		case options.Logger:
			if optT.Logger != nil {
				ctx.logger = optT.Logger
			}
		case options.Registry:
			if optT.Registry != nil {
				ctx.reg = optT.Registry
			}
		case options.Validate:
			ctx.validate = optT.Enabled
		default:
			return nil, errors.Errorf("trace option %T not supported", optT)
		}
	}
	return ctx, nil
}

// Registry returns the registry interning the types of the context.
func (ctx *Context) Registry() *ir.Registry {
	return ctx.reg
}

// Logger returns the logger of the context.
func (ctx *Context) Logger() *slog.Logger {
	return ctx.logger
}

// Depth returns the number of active builders.
func (ctx *Context) Depth() int {
	return len(ctx.stack)
}

// Current calls f with the innermost active builder.
// It raises a context misuse error if no builder is active.
func (ctx *Context) Current(f func(*Builder)) {
	if len(ctx.stack) == 0 {
		fmterr.Raise(fmterr.ErrContextMisuse, "no active builder: values can only be used while a kernel or a callable is being traced")
	}
	f(ctx.stack[len(ctx.stack)-1])
}

// Trace marks a key as being traced until the returned function is called.
// It returns false if the key is already being traced by an enclosing builder.
func (ctx *Context) Trace(key any) (done func(), ok bool) {
	if ctx.tracing[key] {
		return nil, false
	}
	ctx.tracing[key] = true
	return func() { delete(ctx.tracing, key) }, true
}

func (ctx *Context) top() *Builder {
	if len(ctx.stack) == 0 {
		return nil
	}
	return ctx.stack[len(ctx.stack)-1]
}

func (ctx *Context) push(b *Builder) {
	ctx.stack = append(ctx.stack, b)
	ctx.logger.Debug("builder pushed", "name", b.name, "kind", b.kind, "depth", len(ctx.stack))
}

func (ctx *Context) pop(b *Builder) {
	if ctx.top() != b {
		// Unreachable unless the stack is modified outside of WithNewBuilder.
		panic(fmterr.Internal(errors.Errorf("builder %s is not the innermost builder", b.name)))
	}
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	b.sealed = true
	ctx.logger.Debug("builder popped", "name", b.name, "kind", b.kind, "depth", len(ctx.stack))
}

// Body traces the body of a function. It returns the node yielding
// the value returned by the function or NoNode for functions without results.
type Body func(*Builder) (ir.NodeID, error)

// WithNewBuilder pushes a new builder, traces a function by calling body,
// and seals the result. The previous builder becomes current again on
// every exit path.
//
// Construction errors raised by body are returned as errors. Fatal errors
// (context misuse and unreachable downcasts) are raised again.
func (ctx *Context) WithNewBuilder(name string, kind ir.FuncKind, body Body) (fn *ir.Func, err error) {
	b := newBuilder(ctx, name, kind)
	ctx.push(b)
	defer func() {
		ctx.pop(b)
		r := recover()
		if r == nil {
			return
		}
		cErr, ok := r.(*fmterr.Error)
		if !ok || fmterr.IsFatal(cErr) {
			panic(r)
		}
		ctx.logger.Debug("tracing failed", "name", name, "error", cErr)
		fn, err = nil, cErr
	}()
	result, err := body(b)
	if err != nil {
		return nil, err
	}
	return b.seal(result)
}
