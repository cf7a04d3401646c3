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

// Package graph executes kernel graphs on the Go platform.
//
// Each thread of a dispatch evaluates the kernel graph with its own index.
// Threads are executed concurrently by a pool of goroutines and
// communicate only through buffers.
package graph

import (
	"context"
	"io"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"github.com/gx-org/kernelir/api/options"
	ksync "github.com/gx-org/kernelir/base/sync"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/kernels"
	goplatform "github.com/gx-org/kernelir/golang/backend/platform"
	"github.com/gx-org/kernelir/golang/encoding/native"
)

// ErrUnreachable is returned when a thread executes an unreachable instruction.
var ErrUnreachable = errors.New("unreachable instruction executed")

type (
	// Runner executes a kernel on a device.
	Runner struct {
		fn       *ir.Func
		device   *goplatform.Device
		logger   *slog.Logger
		workers  int
		literals ksync.Map[*ir.Node, kernels.Value]
	}

	executor struct {
		runner *Runner
		tid    uint32
	}
)

func checkBuffers(dev *goplatform.Device, fn *ir.Func) error {
	for i, buf := range fn.Buffers() {
		goBuf, ok := buf.(*goplatform.Buffer)
		if !ok {
			return errors.Errorf("buffer %d of %s is a %T: not supported by the Go platform", i, fn.Name(), buf)
		}
		if goBuf.Device() != dev {
			return errors.Errorf("buffer %d of %s is not stored on the device", i, fn.Name())
		}
	}
	return nil
}

// Compile returns a runner executing a kernel on a device.
// The function is not supposed to be modified once it has been compiled.
func Compile(dev *goplatform.Device, fn *ir.Func, opts ...options.RunOption) (*Runner, error) {
	if fn.Kind() != ir.Kernel {
		return nil, errors.Errorf("cannot dispatch %s %s: not a kernel", fn.Kind(), fn.Name())
	}
	if err := checkBuffers(dev, fn); err != nil {
		return nil, err
	}
	r := &Runner{
		fn:      fn,
		device:  dev,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		switch optT := opt.(type) {
		case options.Logger:
			if optT.Logger != nil {
				r.logger = optT.Logger
			}
		case options.Workers:
			if optT.N > 0 {
				r.workers = optT.N
			}
		}
	}
	return r, nil
}

// Func returns the kernel executed by the runner.
func (r *Runner) Func() *ir.Func {
	return r.fn
}

func (r *Runner) literal(node *ir.Node) (kernels.Value, error) {
	if val, ok := r.literals.Load(node); ok {
		return val, nil
	}
	val, err := native.Encode(node.Type(), node.Aux())
	if err != nil {
		return nil, err
	}
	val, _ = r.literals.LoadOrStore(node, val)
	return val, nil
}

// CheckThreads returns an error if n threads cannot be dispatched.
// Thread indices are uint32 values.
func CheckThreads(n int) error {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return errors.Errorf("invalid number of threads %d: must be in [0, %d]", n, uint64(math.MaxUint32))
	}
	return nil
}

// Run executes n threads with the indices [0, n).
// All threads are executed even if some of them fail.
// The errors of all the threads are returned.
func (r *Runner) Run(ctx context.Context, n int) error {
	if err := CheckThreads(n); err != nil {
		return errors.WithMessagef(err, "cannot run %s", r.fn.Name())
	}
	workers := min(r.workers, n)
	r.logger.Debug("kernel dispatched", "kernel", r.fn.Name(), "threads", n, "workers", workers)
	var (
		wg   sync.WaitGroup
		mut  sync.Mutex
		errs error
	)
	threads := make(chan uint32)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tid := range threads {
				if err := r.thread(tid); err != nil {
					mut.Lock()
					errs = multierr.Append(errs, err)
					mut.Unlock()
				}
			}
		}()
	}
	var ctxErr error
	for tid := range uint32(n) {
		select {
		case threads <- tid:
			continue
		case <-ctx.Done():
			ctxErr = ctx.Err()
		}
		break
	}
	close(threads)
	wg.Wait()
	errs = multierr.Append(errs, ctxErr)
	if errs != nil {
		r.logger.Debug("kernel failed", "kernel", r.fn.Name(), "errors", len(multierr.Errors(errs)))
	}
	return errs
}

func (r *Runner) thread(tid uint32) error {
	exec := &executor{runner: r, tid: tid}
	if _, err := exec.call(r.fn, nil); err != nil {
		return errors.WithMessagef(err, "thread %d", tid)
	}
	return nil
}
