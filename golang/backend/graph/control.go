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

package graph

import (
	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/kernels"
)

// result evaluates a block and returns the value it yields, if any.
func (e *executor) result(fr *frame, block *ir.Block) (any, bool, error) {
	if block == nil {
		return nil, false, nil
	}
	brk, err := e.block(fr, block)
	if err != nil || brk || !block.Result().IsValid() {
		return nil, brk, err
	}
	return fr.vals[block.Result()], false, nil
}

func (e *executor) ifNode(fr *frame, node *ir.Node) (any, bool, error) {
	cond, err := fr.boolean(node.Operand(0))
	if err != nil {
		return nil, false, err
	}
	aux := node.Aux().(ir.IfAux)
	if cond {
		return e.result(fr, aux.Then)
	}
	return e.result(fr, aux.Else)
}

func (e *executor) switchNode(fr *frame, node *ir.Node) (any, bool, error) {
	tag, err := fr.array(node.Operand(0))
	if err != nil {
		return nil, false, err
	}
	val, err := atomAsInt(tag)
	if err != nil {
		return nil, false, err
	}
	aux := node.Aux().(ir.SwitchAux)
	for _, c := range aux.Cases {
		if int64(c.Value) == val {
			return e.result(fr, c.Body)
		}
	}
	return e.result(fr, aux.Default)
}

func (e *executor) loop(fr *frame, node *ir.Node) error {
	aux := node.Aux().(ir.LoopAux)
	for {
		if _, err := e.block(fr, aux.Cond); err != nil {
			return err
		}
		cond, err := fr.boolean(aux.Cond.Result())
		if err != nil {
			return err
		}
		if !cond {
			return nil
		}
		brk, err := e.block(fr, aux.Body)
		if err != nil {
			return err
		}
		if brk {
			return nil
		}
	}
}

func (e *executor) callNode(fr *frame, node *ir.Node) (any, error) {
	callee, ok := node.Aux().(*ir.Func)
	if !ok {
		return nil, errors.Errorf("%s: %s calls %T", fr.fn.Name(), node.ID(), node.Aux())
	}
	args := make([]kernels.Value, node.NumOperands())
	for i := range args {
		var err error
		if args[i], err = fr.value(node.Operand(i)); err != nil {
			return nil, err
		}
	}
	res, err := e.call(callee, args)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: call to %s", fr.fn.Name(), callee.Name())
	}
	return res, nil
}
