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

// Package template renders IR listings through a template into files.
package template

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/pkg/errors"
)

// Render parses a template and runs it on data.
func Render(src string, data any) ([]byte, error) {
	tpl, err := template.New("").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse template source")
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "cannot execute template")
	}
	return buf.Bytes(), nil
}

// Exec renders a template and writes the result into target,
// creating its parent directories. target is left untouched if
// the template fails.
func Exec(src string, target string, data any) error {
	out, err := Render(src, data)
	if err != nil {
		return errors.WithMessagef(err, "cannot generate %q", target)
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "cannot generate %q", target)
		}
	}
	if err := os.WriteFile(target, out, 0o644); err != nil {
		return errors.Wrapf(err, "cannot generate %q", target)
	}
	return nil
}
