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

// Package callable defines functions called by kernels.
//
// A dynamic callable is defined once over type-erased arguments. The first
// time it is called with a given list of argument types, its body is traced
// in a new builder with arguments of these types and the resulting function
// is cached. Later calls with the same argument types reuse the cached
// function. Cached specializations are never evicted.
package callable

import (
	"iter"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/base/sync"
	"github.com/gx-org/kernelir/base/uname"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/proxies"
)

type (
	// Body traces the body of a callable given its arguments.
	// It returns the value returned by the callable or nil.
	Body func(b *builder.Builder, args []proxies.Dyn) proxies.Value

	// Specialization is a callable traced for a signature.
	Specialization struct {
		Signature Signature
		Func      *ir.Func
	}

	// Dynamic is a callable specialized for each signature it is called with.
	// It can be called concurrently from different construction contexts.
	Dynamic struct {
		name  string
		body  Body
		names *uname.Unique
		cache sync.Map[Signature, *Specialization]
	}

	traceKey struct {
		d   *Dynamic
		sig Signature
	}
)

// NewDynamic returns a new dynamic callable.
func NewDynamic(name string, body Body) *Dynamic {
	return &Dynamic{name: name, body: body, names: uname.New()}
}

// Name of the callable.
func (d *Dynamic) Name() string {
	return d.name
}

// Call records a call to the specialization of the callable for the types
// of args. The specialization is traced if it does not exist.
func (d *Dynamic) Call(b *builder.Builder, args ...proxies.Value) proxies.Dyn {
	b.CheckActive()
	if len(args) > 0 {
		if ab := proxies.BuilderOf(args...); ab != b {
			fmterr.Raise(fmterr.ErrForeignValue, "arguments of %s have not been recorded by %s", d.name, b.Name())
		}
	}
	spec, err := d.specialize(b, signatureOf(b.Registry(), args))
	if err != nil {
		panic(asConstructionError(err))
	}
	operands := make([]ir.NodeID, len(args))
	for i, arg := range args {
		operands[i] = arg.Node()
	}
	return proxies.FromNode[proxies.Dyn](b, b.Emit(ir.OpCall, operands, spec.Func.Result(), spec.Func))
}

// Specialize returns the specialization of the callable for a signature,
// tracing it in the context of b if it does not exist yet.
func (d *Dynamic) Specialize(b *builder.Builder, sig Signature) (*Specialization, error) {
	return d.specialize(b, sig)
}

func (d *Dynamic) specialize(b *builder.Builder, sig Signature) (*Specialization, error) {
	logger := b.Logger()
	if spec, ok := d.cache.Load(sig); ok {
		logger.Debug("callable specialization reused", "callable", d.name, "signature", sig)
		return spec, nil
	}
	ctx := b.Context()
	done, ok := ctx.Trace(traceKey{d: d, sig: sig})
	if !ok {
		return nil, fmterr.Errorf(fmterr.ErrRecursiveCallable, "%s%s calls itself", d.name, sig)
	}
	defer done()
	types := sig.Types()
	fn, err := ctx.WithNewBuilder(d.names.Name(d.name), ir.Callable, func(cb *builder.Builder) (ir.NodeID, error) {
		params := make([]proxies.Dyn, len(types))
		for i, typ := range types {
			params[i] = proxies.Argument(cb, typ)
		}
		res := d.body(cb, params)
		if res == nil {
			return ir.NoNode, nil
		}
		if rb := proxies.BuilderOf(res); rb != cb {
			return ir.NoNode, fmterr.Errorf(fmterr.ErrForeignValue, "%s%s returns a value recorded by %s", d.name, sig, rb.Name())
		}
		return res.Node(), nil
	})
	if err != nil {
		return nil, err
	}
	spec, loaded := d.cache.LoadOrStore(sig, &Specialization{Signature: sig, Func: fn})
	if loaded {
		logger.Debug("callable specialization traced concurrently", "callable", d.name, "signature", sig)
	} else {
		logger.Debug("callable specialization inserted", "callable", d.name, "signature", sig, "function", fn.Name(), "specializations", d.cache.Size())
	}
	return spec, nil
}

// Lookup returns the specialization for a signature if it exists.
func (d *Dynamic) Lookup(sig Signature) (*Specialization, bool) {
	return d.cache.Load(sig)
}

// Inserts returns the number of specializations inserted in the cache.
func (d *Dynamic) Inserts() int {
	return d.cache.Size()
}

// Specializations returns all the specializations of the callable.
// The order is unspecified.
func (d *Dynamic) Specializations() iter.Seq2[Signature, *Specialization] {
	return d.cache.Iter()
}

// Unreachable raises a fatal error reporting that a callable has been
// called with arguments it cannot handle. It never returns.
func Unreachable(format string, a ...any) proxies.Value {
	fmterr.Raise(fmterr.ErrUnreachableDowncast, format, a...)
	return nil
}

// As downcasts all arguments to P.
// It returns false if one of the arguments cannot be represented by P.
func As[P proxies.Proxy[P]](args []proxies.Dyn) ([]P, bool) {
	ps := make([]P, len(args))
	for i, arg := range args {
		p, ok := proxies.Downcast[P](arg)
		if !ok {
			return nil, false
		}
		ps[i] = p
	}
	return ps, true
}

func asConstructionError(err error) *fmterr.Error {
	var cErr *fmterr.Error
	if errors.As(err, &cErr) {
		return cErr
	}
	return fmterr.Position(fmterr.ErrInvalidGraph, errors.Wrap(err, "invalid specialization"))
}
