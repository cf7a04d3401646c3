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

package ordered_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/kernelir/base/ordered"
)

type entry struct {
	K string
	V int
}

func TestMap(t *testing.T) {
	tests := []struct {
		entries []entry
		want    []entry
		wantPos []int
	}{
		{
			entries: []entry{
				{K: "a", V: 1},
				{K: "b", V: 2},
				{K: "c", V: 3},
			},
			want: []entry{
				{K: "a", V: 1},
				{K: "b", V: 2},
				{K: "c", V: 3},
			},
			wantPos: []int{0, 1, 2},
		},
		{
			entries: []entry{
				{K: "a", V: 1},
				{K: "b", V: 2},
				{K: "a", V: 3},
			},
			want: []entry{
				{K: "a", V: 3},
				{K: "b", V: 2},
			},
			wantPos: []int{0, 1, 0},
		},
		{
			entries: []entry{
				{K: "a", V: 1},
				{K: "a", V: 2},
				{K: "a", V: 3},
				{K: "a", V: 4},
			},
			want: []entry{
				{K: "a", V: 4},
			},
			wantPos: []int{0, 0, 0, 0},
		},
	}
	for ti, test := range tests {
		m := ordered.NewMap[string, int]()
		var gotPos []int
		for _, entry := range test.entries {
			gotPos = append(gotPos, m.Store(entry.K, entry.V))
		}
		if diff := cmp.Diff(test.wantPos, gotPos); diff != "" {
			t.Errorf("test %d: unexpected positions (-want +got):\n%s", ti, diff)
		}
		if m.Size() != len(test.want) {
			t.Errorf("test %d: map has %d entries but want %d", ti, m.Size(), len(test.want))
			continue
		}
		var got []entry
		for k, v := range m.Iter() {
			got = append(got, entry{K: k, V: v})
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("test %d: unexpected entries (-want +got):\n%s", ti, diff)
		}
		for i, want := range test.want {
			k, v := m.At(i)
			if k != want.K || v != want.V {
				t.Errorf("test %d: At(%d) = %s->%d but want %s->%d", ti, i, k, v, want.K, want.V)
			}
			if pos, ok := m.Index(want.K); !ok || pos != i {
				t.Errorf("test %d: Index(%s) = %d, %v but want %d, true", ti, want.K, pos, ok, i)
			}
		}
		var keys []string
		for k := range m.Keys() {
			keys = append(keys, k)
		}
		var vals []int
		for v := range m.Values() {
			vals = append(vals, v)
		}
		if len(keys) != len(test.want) || len(vals) != len(test.want) {
			t.Errorf("test %d: got %d keys and %d values but want %d", ti, len(keys), len(vals), len(test.want))
		}
	}
}

func TestLoadMissing(t *testing.T) {
	m := ordered.NewMap[string, int]()
	if v, ok := m.Load("x"); ok || v != 0 {
		t.Errorf("Load(x) = %d, %v but want 0, false", v, ok)
	}
	if _, ok := m.Index("x"); ok {
		t.Errorf("Index(x) found a missing key")
	}
}
