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

package callable

import (
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/proxies"
)

// Callable is a callable with a fixed signature.
type Callable struct {
	dyn    *Dynamic
	params []*ir.Type
}

// New returns a callable accepting arguments of the given types only.
func New(name string, params []*ir.Type, body Body) *Callable {
	return &Callable{dyn: NewDynamic(name, body), params: params}
}

// Name of the callable.
func (c *Callable) Name() string {
	return c.dyn.Name()
}

// Params returns the types of the parameters of the callable.
func (c *Callable) Params() []*ir.Type {
	return append([]*ir.Type(nil), c.params...)
}

// Call records a call to the callable.
// The types of args must match the types of the parameters.
func (c *Callable) Call(b *builder.Builder, args ...proxies.Value) proxies.Dyn {
	if len(args) != len(c.params) {
		fmterr.Raise(fmterr.ErrTypeMismatch, "%s called with %d arguments but want %d", c.Name(), len(args), len(c.params))
	}
	for i, arg := range args {
		if got := arg.Type(); got != c.params[i] {
			fmterr.Raise(fmterr.ErrTypeMismatch, "argument %d of %s has type %s but want %s", i, c.Name(), got, c.params[i])
		}
	}
	return c.dyn.Call(b, args...)
}

// Func returns the function of the callable once it has been traced.
func (c *Callable) Func() (*ir.Func, bool) {
	if len(c.params) == 0 {
		for _, spec := range c.dyn.Specializations() {
			return spec.Func, true
		}
		return nil, false
	}
	spec, ok := c.dyn.Lookup(SignatureOf(c.params[0].Registry(), c.params...))
	if !ok {
		return nil, false
	}
	return spec.Func, true
}
