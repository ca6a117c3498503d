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

	"godeklar/internal/geom"

	"gopkg.in/yaml.v3"
)

// Property keys understood by the built-in shapes.
const (
	KeyType        = "type"
	KeyName        = "name"
	KeyTooltip     = "tooltip"
	KeyStart       = "start"
	KeyEnd         = "end"
	KeyCenter      = "center"
	KeyRadius      = "radius"
	KeyWidth       = "width"
	KeyHeight      = "height"
	KeyRotation    = "rotation"
	KeyColor       = "color"
	KeyAlpha       = "alpha"
	KeyMovable     = "is_movable"
	KeySelectable  = "is_selectable"
	KeyBorderWidth = "border_width"
	KeyShowBorders = "show_borders"
	KeyArrow       = "arrow"
	KeyVisible     = "visible"
)

var geometryKeys = []string{KeyStart, KeyEnd, KeyCenter, KeyRadius, KeyWidth, KeyHeight, KeyRotation}

// Definition is the serialized form of a shape: a property mapping with a
// mandatory type tag. Values are never modified in place; With and Merge
// return new definitions.
type Definition struct {
	m map[string]any
}

// NewDefinition copies m into a new definition.
func NewDefinition(m map[string]any) Definition {
	return Definition{m: copyMap(m)}
}

// Def is a convenience for building a definition from key/value pairs.
func Def(typ string, kv ...any) Definition {
	m := map[string]any{KeyType: typ}
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("shape.Def: key %v is not a string", kv[i]))
		}
		m[k] = normalize(kv[i+1])
	}
	return Definition{m: m}
}

func (d Definition) Type() string { return d.String(KeyType, "") }

func (d Definition) Len() int { return len(d.m) }

func (d Definition) Has(key string) bool {
	_, ok := d.m[key]
	return ok
}

func (d Definition) Get(key string) (any, bool) {
	v, ok := d.m[key]
	return copyValue(v), ok
}

// Keys returns the property names in sorted order.
func (d Definition) Keys() []string {
	return slices.Sorted(maps.Keys(d.m))
}

func (d Definition) String(key, def string) string {
	v, ok := d.m[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (d Definition) Float(key string, def float64) float64 {
	f, err := toFloat(d.m[key])
	if err != nil {
		return def
	}
	return f
}

func (d Definition) Bool(key string, def bool) bool {
	if b, ok := d.m[key].(bool); ok {
		return b
	}
	return def
}

// Point reads a two-element numeric sequence.
func (d Definition) Point(key string) (geom.Point, error) {
	v, ok := d.m[key]
	if !ok {
		return geom.Point{}, fmt.Errorf("%s: missing", key)
	}
	p, err := toPoint(v)
	if err != nil {
		return geom.Point{}, fmt.Errorf("%s: %w", key, err)
	}
	return p, nil
}

// With returns a copy of d with key set to v.
func (d Definition) With(key string, v any) Definition {
	m := copyMap(d.m)
	m[key] = normalize(v)
	return Definition{m: m}
}

// Without returns a copy of d without key.
func (d Definition) Without(key string) Definition {
	m := copyMap(d.m)
	delete(m, key)
	return Definition{m: m}
}

// Merge returns a copy of d with all entries of changed applied.
func (d Definition) Merge(changed map[string]any) Definition {
	m := copyMap(d.m)
	for k, v := range changed {
		m[k] = normalize(v)
	}
	return Definition{m: m}
}

// Map returns a deep copy of the properties.
func (d Definition) Map() map[string]any { return copyMap(d.m) }

// Subset returns the listed properties that are present.
func (d Definition) Subset(keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := d.m[k]; ok {
			out[k] = copyValue(v)
		}
	}
	return out
}

// MarshalYAML writes the type first, then the remaining keys sorted, with
// points in flow style.
func (d Definition) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	keys := d.Keys()
	if i := slices.Index(keys, KeyType); i > 0 {
		keys = append([]string{KeyType}, slices.Delete(keys, i, i+1)...)
	}
	for _, k := range keys {
		var val yaml.Node
		if err := val.Encode(d.m[k]); err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		if val.Kind == yaml.SequenceNode {
			val.Style = yaml.FlowStyle
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, &val)
	}
	return n, nil
}

func (d *Definition) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]any
	if err := value.Decode(&m); err != nil {
		return err
	}
	for k, v := range m {
		m[k] = normalize(v)
	}
	d.m = m
	return nil
}

// PointValue is the persisted representation of a point.
func PointValue(p geom.Point) []any { return []any{p.X, p.Y} }

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case nil:
		return 0, fmt.Errorf("missing number")
	}
	return 0, fmt.Errorf("not a number: %v (%T)", v, v)
}

func toPoint(v any) (geom.Point, error) {
	switch p := v.(type) {
	case geom.Point:
		return p, nil
	case []float64:
		if len(p) == 2 {
			return geom.Pt(p[0], p[1]), nil
		}
	case []any:
		if len(p) == 2 {
			x, err := toFloat(p[0])
			if err != nil {
				return geom.Point{}, err
			}
			y, err := toFloat(p[1])
			if err != nil {
				return geom.Point{}, err
			}
			return geom.Pt(x, y), nil
		}
	}
	return geom.Point{}, fmt.Errorf("expected [x, y], got %v", v)
}

// normalize turns typed slices and points into the []any form yaml produces,
// so definitions built in code compare equal to decoded ones.
func normalize(v any) any {
	switch t := v.(type) {
	case geom.Point:
		return PointValue(t)
	case []float64:
		out := make([]any, len(t))
		for i, f := range t {
			out[i] = f
		}
		return out
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		return copyMap(t)
	}
	return v
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case map[string]any:
		return copyMap(t)
	}
	return v
}
