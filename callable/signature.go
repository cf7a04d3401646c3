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
	"strconv"
	"strings"

	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/proxies"
)

// Signature identifies the concrete types of the arguments of a call.
// Signatures are comparable: two signatures are equal if and only if
// their types have been interned by the same registry and are equal.
type Signature struct {
	reg *ir.Registry
	ids string
}

// SignatureOf returns the signature of a list of types.
// All the types must have been interned by the same registry.
func SignatureOf(reg *ir.Registry, types ...*ir.Type) Signature {
	ids := make([]string, len(types))
	for i, typ := range types {
		ids[i] = strconv.Itoa(typ.ID())
	}
	return Signature{reg: reg, ids: strings.Join(ids, ",")}
}

func signatureOf(reg *ir.Registry, args []proxies.Value) Signature {
	types := make([]*ir.Type, len(args))
	for i, arg := range args {
		types[i] = arg.Type()
	}
	return SignatureOf(reg, types...)
}

// Types returns the types of the arguments.
func (s Signature) Types() []*ir.Type {
	if s.ids == "" {
		return nil
	}
	var types []*ir.Type
	for _, idS := range strings.Split(s.ids, ",") {
		id, _ := strconv.Atoi(idS)
		typ, _ := s.reg.Lookup(id)
		types = append(types, typ)
	}
	return types
}

// String representation of the signature.
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString("(")
	for i, typ := range s.Types() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typ.String())
	}
	b.WriteString(")")
	return b.String()
}
