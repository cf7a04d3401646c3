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

package sync_test

import (
	gosync "sync"
	"testing"

	"github.com/gx-org/kernelir/base/sync"
)

func TestLoadOrStore(t *testing.T) {
	var m sync.Map[string, int]
	if got, loaded := m.LoadOrStore("a", 1); loaded || got != 1 {
		t.Errorf("LoadOrStore(a, 1) = %d, %v but want 1, false", got, loaded)
	}
	if got, loaded := m.LoadOrStore("a", 2); !loaded || got != 1 {
		t.Errorf("LoadOrStore(a, 2) = %d, %v but want 1, true", got, loaded)
	}
	if got, ok := m.Load("a"); !ok || got != 1 {
		t.Errorf("Load(a) = %d, %v but want 1, true", got, ok)
	}
	if _, ok := m.Load("b"); ok {
		t.Errorf("Load(b) found a missing key")
	}
	if m.Size() != 1 {
		t.Errorf("Size() = %d but want 1", m.Size())
	}
}

func TestConcurrentInsert(t *testing.T) {
	var m sync.Map[int, int]
	var wg gosync.WaitGroup
	const numWriters = 8
	for w := range numWriters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range 100 {
				m.LoadOrStore(k, w)
			}
		}()
	}
	wg.Wait()
	if m.Size() != 100 {
		t.Errorf("Size() = %d but want 100", m.Size())
	}
	count := 0
	for range m.Iter() {
		count++
	}
	if count != 100 {
		t.Errorf("Iter() yielded %d elements but want 100", count)
	}
}
