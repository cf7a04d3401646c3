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

// Package stringseq converts iterator sequences to strings.
package stringseq

import (
	"fmt"
	"iter"
	"strings"
)

// AppendFunc writes f(item) for each item of seq into b, separated by sep.
func AppendFunc[T any](b *strings.Builder, seq iter.Seq[T], sep string, f func(T) string) {
	first := true
	for item := range seq {
		if !first {
			b.WriteString(sep)
		}
		first = false
		b.WriteString(f(item))
	}
}

// JoinFunc concatenates f(item) for each item of seq, separated by sep.
func JoinFunc[T any](seq iter.Seq[T], sep string, f func(T) string) string {
	var b strings.Builder
	AppendFunc(&b, seq, sep, f)
	return b.String()
}

// Join concatenates the strings of seq, separated by sep.
func Join(seq iter.Seq[string], sep string) string {
	return JoinFunc(seq, sep, func(s string) string { return s })
}

// JoinStringer concatenates the string form of the items of seq, separated by sep.
func JoinStringer[T fmt.Stringer](seq iter.Seq[T], sep string) string {
	return JoinFunc(seq, sep, func(item T) string { return item.String() })
}
