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

package irkind_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

func TestKindRoundTrip(t *testing.T) {
	for _, k := range irkind.All() {
		if got := irkind.FromDType(k.DType()); got != k {
			t.Errorf("FromDType(%s.DType()) = %s", k, got)
		}
		if got := irkind.KindFromString(k.String()); got != k {
			t.Errorf("KindFromString(%q) = %s", k.String(), got)
		}
	}
}

func TestKindGeneric(t *testing.T) {
	tests := []struct {
		got  irkind.Kind
		want irkind.Kind
	}{
		{got: irkind.KindGeneric[bool](), want: irkind.Bool},
		{got: irkind.KindGeneric[int32](), want: irkind.Int32},
		{got: irkind.KindGeneric[uint32](), want: irkind.Uint32},
		{got: irkind.KindGeneric[float32](), want: irkind.Float32},
		{got: irkind.KindGeneric[float64](), want: irkind.Invalid},
		{got: irkind.FromDType(dtype.Int64), want: irkind.Invalid},
	}
	for i, test := range tests {
		if test.got != test.want {
			t.Errorf("test %d: got kind %s but want %s", i, test.got, test.want)
		}
	}
}

func TestKindClasses(t *testing.T) {
	if !irkind.Int32.IsInteger() || !irkind.Uint32.IsInteger() || irkind.Float32.IsInteger() {
		t.Errorf("incorrect integer classification")
	}
	if !irkind.Float32.IsFloat() || irkind.Bool.IsFloat() {
		t.Errorf("incorrect float classification")
	}
	if irkind.Uint32.IsSigned() || !irkind.Int32.IsSigned() {
		t.Errorf("incorrect sign classification")
	}
}
