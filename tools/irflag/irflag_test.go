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

package irflag_test

import (
	"flag"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/kernelir/tools/irflag"
)

func TestStringList(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	list := irflag.StringList(fs, "kernels", "kernels to dump")
	if err := fs.Parse([]string{"-kernels", "a, b,,", "-kernels=c"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, *list); diff != "" {
		t.Errorf("unexpected list: (-want +got)\n%s", diff)
	}
}
