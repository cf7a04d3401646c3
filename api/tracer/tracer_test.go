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

package tracer_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/api"
	"github.com/gx-org/kernelir/api/options"
	"github.com/gx-org/kernelir/api/tracer"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend"
	goplatform "github.com/gx-org/kernelir/golang/backend/platform"
	"github.com/gx-org/kernelir/proxies"
)

func newRuntime(t *testing.T) *api.Runtime {
	t.Helper()
	rtm, err := api.NewRuntime(backend.New(), options.Registry{Registry: ir.NewRegistry()})
	if err != nil {
		t.Fatal(err)
	}
	return rtm
}

func TestTraceAndRun(t *testing.T) {
	rtm := newRuntime(t)
	buf, err := backend.NewBuffer(rtm.Backend(), rtm.Registry(), make([]uint32, 4))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	square, err := tracer.Trace(rtm, "square", func(b *builder.Builder) (ir.NodeID, error) {
		tid := proxies.DispatchID(b).X()
		proxies.Buffer[proxies.Expr[uint32]](b, buf).Write(tid, tid.Mul(tid))
		return ir.NoNode, nil
	})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if got := square.Func().Name(); got != "square" {
		t.Errorf("got kernel %q but want square", got)
	}
	if err := square.Run(context.Background(), 4); err != nil {
		t.Fatalf("%+v", err)
	}
	got, err := goplatform.ToSlice[uint32](buf)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff([]uint32{0, 1, 4, 9}, got); diff != "" {
		t.Errorf("unexpected result: (-want +got)\n%s", diff)
	}
}

func TestTraceError(t *testing.T) {
	rtm := newRuntime(t)
	_, err := tracer.Trace(rtm, "broken", func(b *builder.Builder) (ir.NodeID, error) {
		proxies.Break(b)
		return ir.NoNode, nil
	})
	if !errors.Is(err, fmterr.ErrScope) {
		t.Errorf("got error %v but want a scope error", err)
	}
}
