/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package shape

import (
	"errors"
	"fmt"
)

// ErrMissingType is returned for a definition without a type tag.
var ErrMissingType = errors.New("shape definition has no type")

// UnknownTypeError reports a type tag without metadata.
type UnknownTypeError struct{ Type string }

func (e *UnknownTypeError) Error() string { return fmt.Sprintf("unknown shape type %q", e.Type) }

// UnknownConstructorError reports metadata naming a constructor nobody registered.
type UnknownConstructorError struct{ Type, Constructor string }

func (e *UnknownConstructorError) Error() string {
	return fmt.Sprintf("no constructor %q registered for type %q", e.Constructor, e.Type)
}

// MissingPropertyError names the first required property absent from a definition.
type MissingPropertyError struct{ Type, Property string }

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("%s: required property %q not present", e.Type, e.Property)
}

// InvalidPropertyError wraps a property value that cannot be interpreted.
type InvalidPropertyError struct {
	Type, Property string
	Err            error
}

func (e *InvalidPropertyError) Error() string {
	return fmt.Sprintf("%s: invalid property %q: %v", e.Type, e.Property, e.Err)
}

func (e *InvalidPropertyError) Unwrap() error { return e.Err }
