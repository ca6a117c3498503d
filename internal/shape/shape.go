/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package shape implements the editable shape model: line, corridor, circle
// and rectangle, the handles that manipulate them and the commands that make
// every manipulation reversible.
//
// Geometry is held in device units (world units times the scale factor that
// was active when the shape was created). Serialize converts back to world
// units with that cached factor.
package shape

import (
	"errors"
	"fmt"
	"slices"

	"godeklar/internal/geom"
)

// MinHitWidth is the narrowest band, in device units, that still counts as a
// hit on a line.
const MinHitWidth = 10.0

// DefaultLineWidth is the world width of a line without a width property.
const DefaultLineWidth = 0.01

// Geometry is a value snapshot of everything a command can change. Fields a
// variant does not use stay zero.
type Geometry struct {
	Start, End geom.Point
	Center     geom.Point
	Radius     float64
	Width      float64
	Height     float64
	Rotation   float64
}

// Style carries the cosmetic state renderers need.
type Style struct {
	Color       string
	Alpha       uint8
	LineWidth   float64 // device units
	BorderWidth float64
	ShowBorders bool
	Arrow       bool
}

// Shape is the capability set shared by all variants.
type Shape interface {
	Type() string
	Name() string
	TypeAndName() string
	ScaleFactor() float64

	Contains(p geom.Point) bool
	Translate(delta geom.Point)
	Center() geom.Point
	Bounds() geom.Rect

	Definition() Definition
	Serialize() Definition
	Geometry() Geometry
	SetGeometry(g Geometry)
	Restore(def Definition, g Geometry)
	UpdateProperties(changed map[string]any) error

	Handles(h Host) []Handle

	Style() Style
	Visible() bool
	SetVisible(v bool)
	Movable() bool
	Selectable() bool
}

// Endpointed is implemented by line-like shapes.
type Endpointed interface {
	Shape
	Endpoints() (geom.Point, geom.Point)
	SetEndpoint(isStart bool, p geom.Point)
}

// Sizable is implemented by shapes with an interactive radius.
type Sizable interface {
	Shape
	Radius() float64
	Resize(r float64)
}

// variant is the internal contract every concrete shape fulfils so the
// shared helpers below can rebuild it from a definition.
type variant interface {
	Shape
	load(def Definition) error
}

// base holds the state common to all variants.
type base struct {
	def     Definition
	scale   float64
	visible bool
}

func newBase(def Definition, scale float64) base {
	return base{def: def, scale: scale, visible: def.Bool(KeyVisible, true)}
}

func (b *base) Type() string          { return b.def.Type() }
func (b *base) Name() string          { return b.def.String(KeyName, "") }
func (b *base) ScaleFactor() float64  { return b.scale }
func (b *base) Definition() Definition { return b.def }
func (b *base) Visible() bool         { return b.visible }
func (b *base) SetVisible(v bool)     { b.visible = v }
func (b *base) Movable() bool         { return b.def.Bool(KeyMovable, true) }
func (b *base) Selectable() bool      { return b.def.Bool(KeySelectable, true) }

func (b *base) TypeAndName() string {
	if n := b.Name(); n != "" {
		return fmt.Sprintf("%s %s", b.Type(), n)
	}
	return b.Type()
}

func (b *base) Style() Style {
	alpha := b.def.Float(KeyAlpha, 10)
	alpha = max(0, min(10, alpha))
	return Style{
		Color:       b.def.String(KeyColor, "black"),
		Alpha:       uint8(alpha * 255 / 10),
		BorderWidth: b.def.Float(KeyBorderWidth, 1),
		ShowBorders: b.def.Bool(KeyShowBorders, true),
		Arrow:       b.def.Bool(KeyArrow, false),
	}
}

func (b *base) scalePoint(def Definition, key string) (geom.Point, error) {
	p, err := def.Point(key)
	if err != nil {
		return geom.Point{}, &InvalidPropertyError{Type: def.Type(), Property: key, Err: err}
	}
	return geom.ScalePoint(p, b.scale), nil
}

func (b *base) scaleFloat(def Definition, key string, fallback float64) (float64, error) {
	v, ok := def.m[key]
	if !ok {
		return geom.Scale(fallback, b.scale), nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, &InvalidPropertyError{Type: def.Type(), Property: key, Err: err}
	}
	return geom.Scale(f, b.scale), nil
}

func (b *base) worldPoint(p geom.Point) []any {
	return PointValue(geom.DescalePoint(p, b.scale))
}

// restore swaps in a definition and geometry snapshot.
func restore(v variant, b *base, def Definition, g Geometry) {
	b.def = def
	b.visible = def.Bool(KeyVisible, b.visible)
	v.SetGeometry(g)
}

// updateProperties merges changed into the current serialized definition.
// Geometry is re-derived only when a geometry key changed, otherwise the
// device values are kept exactly.
func updateProperties(v variant, b *base, changed map[string]any) error {
	if len(changed) == 0 {
		return nil
	}
	if t, ok := changed[KeyType]; ok && t != b.def.Type() {
		return errors.New("the type of a shape cannot be changed")
	}
	prevDef, prevGeom := b.def, v.Geometry()
	next := v.Serialize().Merge(changed)
	if err := v.load(next); err != nil {
		restore(v, b, prevDef, prevGeom)
		return err
	}
	touched := false
	for k := range changed {
		if slices.Contains(geometryKeys, k) {
			touched = true
			break
		}
	}
	if !touched {
		v.SetGeometry(prevGeom)
	}
	if vis, ok := changed[KeyVisible].(bool); ok {
		b.visible = vis
	}
	return nil
}
