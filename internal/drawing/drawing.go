/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package drawing holds the persisted form of a scene: a general section with
// drawing-wide settings and a list of shape definitions.
package drawing

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"godeklar/internal/geom"
	"godeklar/internal/shape"
)

const (
	KeyVersion = "version"
	KeyGeneral = "general"

	KeyBackColor   = "back_color"
	KeyBackAlpha   = "back_alpha"
	KeyScaleFactor = "scale_factor"
	KeySize        = "size"
	KeyGridSize    = "grid_size"
	KeyDescription = "description"

	CurrentVersion  = 1
	DefaultGridSize = 1.0
)

// General carries drawing-wide settings. Unknown keys are kept in Extra.
type General struct {
	BackColor   string         `yaml:"back_color,omitempty"`
	BackAlpha   *float64       `yaml:"back_alpha,omitempty"`
	ScaleFactor *float64       `yaml:"scale_factor,omitempty"`
	Size        []float64      `yaml:"size,omitempty,flow"`
	GridSize    *float64       `yaml:"grid_size,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// Alpha is the background opacity on the 0..10 scale (default 0).
func (g General) Alpha() float64 {
	if g.BackAlpha == nil {
		return 0
	}
	return *g.BackAlpha
}

// Scale returns the explicit scale factor, if any.
func (g General) Scale() (float64, bool) {
	if g.ScaleFactor == nil || *g.ScaleFactor <= 0 {
		return 0, false
	}
	return *g.ScaleFactor, true
}

func (g General) Grid() float64 {
	if g.GridSize == nil || *g.GridSize <= 0 {
		return DefaultGridSize
	}
	return *g.GridSize
}

// Bounds is the world-unit area given by size = [xmin, xmax, ymin, ymax].
func (g General) Bounds() (geom.Rect, bool) {
	if len(g.Size) != 4 {
		return geom.Rect{}, false
	}
	return geom.RectFromPoints(geom.Pt(g.Size[0], g.Size[2]), geom.Pt(g.Size[1], g.Size[3])), true
}

// Map returns the section as a plain mapping.
func (g General) Map() map[string]any {
	out := map[string]any{}
	b, err := yaml.Marshal(g)
	if err != nil {
		return out
	}
	_ = yaml.Unmarshal(b, &out)
	return out
}

// Merge returns a copy with changed applied on top.
func (g General) Merge(changed map[string]any) (General, error) {
	m := g.Map()
	for k, v := range changed {
		m[k] = v
	}
	b, err := yaml.Marshal(m)
	if err != nil {
		return g, fmt.Errorf("merge general: %w", err)
	}
	var out General
	if err := yaml.Unmarshal(b, &out); err != nil {
		return g, fmt.Errorf("merge general: %w", err)
	}
	return out, nil
}

// Subset returns the values of keys, using "" for absent ones.
func (g General) Subset(keys []string) map[string]any {
	m := g.Map()
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		} else {
			out[k] = ""
		}
	}
	return out
}

func Float(v float64) *float64 { return &v }

// Entry is one element of the items list. Err is set when the element could
// not be read as a shape definition.
type Entry struct {
	Item shape.Definition
	Err  error
}

// Document is a complete drawing.
type Document struct {
	Version int
	General General
	Items   []Entry
	// Extra keeps unknown top-level keys.
	Extra map[string]any
}

func New(general General, defs ...shape.Definition) *Document {
	return &Document{Version: CurrentVersion, General: general, Items: Entries(defs...)}
}

func Entries(defs ...shape.Definition) []Entry {
	out := make([]Entry, 0, len(defs))
	for _, d := range defs {
		out = append(out, Entry{Item: d})
	}
	return out
}

// Definitions returns the readable items in order.
func (d *Document) Definitions() []shape.Definition {
	out := make([]shape.Definition, 0, len(d.Items))
	for _, e := range d.Items {
		if e.Err == nil {
			out = append(out, e.Item)
		}
	}
	return out
}

// EntryError reports an items element that is not a shape definition.
type EntryError struct {
	Index int
	Err   error
}

func (e *EntryError) Error() string { return fmt.Sprintf("item %d: %v", e.Index, e.Err) }
func (e *EntryError) Unwrap() error { return e.Err }
