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

package tmpl_test

import (
	"fmt"
	"strings"
	"testing"
	"text/template"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/base/tmpl"
)

var errOdd = errors.New("odd")

func TestIterateFunc(t *testing.T) {
	line := func(i int, s string) (string, error) {
		return fmt.Sprintf("%d:%s", i, s), nil
	}
	got, err := tmpl.IterateFunc([]string{"a", "b"}, line)
	if err != nil {
		t.Fatal(err)
	}
	if want := "0:a\n1:b"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	_, err = tmpl.IterateFunc([]int{2, 3}, func(_ int, n int) (string, error) {
		if n%2 == 1 {
			return "", errOdd
		}
		return "", nil
	})
	if !errors.Is(err, errOdd) || !strings.Contains(err.Error(), "element 1") {
		t.Errorf("got error %v but want %v on element 1", err, errOdd)
	}
}

func TestIterateTmpl(t *testing.T) {
	tpl := template.Must(template.New("item").Parse("[{{.}}]"))
	got, err := tmpl.IterateTmpl([]int{1, 2}, tpl)
	if err != nil {
		t.Fatal(err)
	}
	if want := "[1][2]"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
}
