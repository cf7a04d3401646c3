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

package kernels

import (
	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/kernelir/api/values"
)

func isTrue[T values.Scalar](x T) bool {
	var zero T
	return x != zero
}

func toNumeric[To values.Numeric, From values.Scalar](x From) To {
	switch xT := any(x).(type) {
	case bool:
		if xT {
			return 1
		}
		return 0
	case float32:
		return To(xT)
	case int32:
		return To(xT)
	case uint32:
		return To(xT)
	}
	return 0
}

// Cast returns the kernel converting arrays to another data type.
// Booleans convert to 0 or 1 and numbers convert to true if they are not zero.
func (arrayFactory[T]) Cast(target dtype.DataType) (Unary, error) {
	switch target {
	case dtype.Bool:
		return unary(isTrue[T]), nil
	case dtype.Float32:
		return unary(toNumeric[float32, T]), nil
	case dtype.Int32:
		return unary(toNumeric[int32, T]), nil
	case dtype.Uint32:
		return unary(toNumeric[uint32, T]), nil
	}
	return nil, errors.Errorf("cannot cast %s to %s", dtype.Generic[T](), target)
}
