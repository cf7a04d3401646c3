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

package encoding

import (
	"sync"

	"go.uber.org/multierr"
	"github.com/gx-org/kernelir/build/ir"
)

// numWorkers is the number of simultaneous workers loading data.
const numWorkers = 16

type asyncErrors struct {
	locker sync.Mutex
	errs   error
}

func (ae *asyncErrors) add(err error) {
	ae.locker.Lock()
	defer ae.locker.Unlock()

	ae.errs = multierr.Append(ae.errs, err)
}

func (ae *asyncErrors) errors() error {
	ae.locker.Lock()
	defer ae.locker.Unlock()

	errs := ae.errs
	ae.errs = nil
	return errs
}

type (
	leaf struct {
		typ    *ir.Type
		set    setter
		future ValueFuture
	}

	// loader loads leaf values asynchronously in Go routines.
	loader struct {
		wg       sync.WaitGroup
		errs     asyncErrors
		toWorker chan leaf
	}
)

func newLoader() *loader {
	ld := &loader{
		toWorker: make(chan leaf),
	}
	for range numWorkers {
		ld.wg.Add(1)
		go ld.worker()
	}
	return ld
}

func (ld *loader) setLeaf(typ *ir.Type, data Data, set setter) error {
	future, err := data.ValueFuture()
	if err != nil {
		return err
	}
	ld.toWorker <- leaf{typ: typ, set: set, future: future}
	return nil
}

func (l leaf) process() error {
	val, err := l.future.Value(l.typ)
	if err != nil {
		return err
	}
	l.set(val)
	return nil
}

func (ld *loader) worker() {
	defer ld.wg.Done()
	for l := range ld.toWorker {
		if err := l.process(); err != nil {
			ld.errs.add(err)
		}
	}
}

func (ld *loader) close() error {
	close(ld.toWorker)
	ld.wg.Wait()
	return ld.errs.errors()
}
