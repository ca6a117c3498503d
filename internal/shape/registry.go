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
	"fmt"
	"maps"
	"slices"
)

// Factory builds a shape from a definition at the given scale.
type Factory func(def Definition, scale float64) (Shape, error)

// Registry resolves type tags through the metadata to registered factories.
type Registry struct {
	meta      *Metadata
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in constructors.
// A nil metadata uses the embedded default.
func NewRegistry(meta *Metadata) *Registry {
	if meta == nil {
		meta = DefaultMetadata()
	}
	r := &Registry{meta: meta, factories: map[string]Factory{}}
	r.Register("Line", factoryOf(NewLine))
	r.Register("Corridor", factoryOf(NewCorridor))
	r.Register("Circle", factoryOf(NewCircle))
	r.Register("Rectangle", factoryOf(NewRectangle))
	return r
}

// factoryOf adapts a typed constructor so a failed build yields a nil Shape.
func factoryOf[T Shape](ctor func(Definition, float64) (T, error)) Factory {
	return func(d Definition, s float64) (Shape, error) {
		v, err := ctor(d, s)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Register binds a constructor name used in the metadata to a factory.
func (r *Registry) Register(constructor string, f Factory) {
	r.factories[constructor] = f
}

func (r *Registry) Metadata() *Metadata { return r.meta }

// Constructors lists the registered constructor names.
func (r *Registry) Constructors() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Create validates def against the metadata and builds the shape.
func (r *Registry) Create(def Definition, scale float64) (Shape, error) {
	typ := def.Type()
	if typ == "" {
		return nil, ErrMissingType
	}
	it, ok := r.meta.Item(typ)
	if !ok {
		return nil, &UnknownTypeError{Type: typ}
	}
	name := it.Constructor
	if name == "" {
		name = typ
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, &UnknownConstructorError{Type: typ, Constructor: name}
	}
	for _, p := range it.RequiredProperties {
		if !def.Has(p) {
			return nil, &MissingPropertyError{Type: typ, Property: p}
		}
	}
	if scale == 0 {
		return nil, fmt.Errorf("%s: scale factor must not be zero", typ)
	}
	return f(def, scale)
}

// Clone builds an independent copy of s from its serialized definition.
func (r *Registry) Clone(s Shape) (Shape, error) {
	return r.Create(s.Serialize(), s.ScaleFactor())
}

// DefaultDefinition returns the template used to add a shape interactively.
func (r *Registry) DefaultDefinition(typ string) (Definition, error) {
	it, ok := r.meta.Item(typ)
	if !ok {
		return Definition{}, &UnknownTypeError{Type: typ}
	}
	return it.Default.With(KeyType, typ), nil
}

// EditableProperties returns the subset of the shape's current definition a
// properties dialog may change.
func (r *Registry) EditableProperties(s Shape) map[string]any {
	it, ok := r.meta.Item(s.Type())
	if !ok {
		return map[string]any{}
	}
	return s.Serialize().Subset(it.EditableProperties)
}
