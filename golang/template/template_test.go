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

package template_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gx-org/kernelir/golang/template"
)

func TestExec(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "kernel.ir")
	if err := template.Exec("// {{.}}\n", target, "areas"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if want := "// areas\n"; string(got) != want {
		t.Errorf("got %q but want %q", got, want)
	}
}

func TestExecError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "kernel.ir")
	if err := template.Exec("{{.Missing}}", target, map[string]string{}); err == nil {
		t.Errorf("expected an error for a missing key")
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("%s written after a template error", target)
	}
	if _, err := template.Render("{{", nil); err == nil {
		t.Errorf("expected a parse error")
	}
}
