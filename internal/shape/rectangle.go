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
	"math"

	"godeklar/internal/geom"
)

// Rectangle is centered, with an optional rotation in degrees.
type Rectangle struct {
	base
	center        geom.Point
	width, height float64
	rotation      float64
}

func NewRectangle(def Definition, scale float64) (*Rectangle, error) {
	r := &Rectangle{base: newBase(def, scale)}
	if err := r.load(def); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rectangle) load(def Definition) error {
	center, err := r.scalePoint(def, KeyCenter)
	if err != nil {
		return err
	}
	w, err := r.scaleFloat(def, KeyWidth, 0)
	if err != nil {
		return err
	}
	h, err := r.scaleFloat(def, KeyHeight, 0)
	if err != nil {
		return err
	}
	r.def, r.center, r.width, r.height = def, center, math.Abs(w), math.Abs(h)
	r.rotation = def.Float(KeyRotation, 0)
	return nil
}

// Size returns width and height in device units.
func (r *Rectangle) Size() (float64, float64) { return r.width, r.height }

// Rotation is in degrees, counter-clockwise.
func (r *Rectangle) Rotation() float64 { return r.rotation }

// Corners returns the four corners in drawing order.
func (r *Rectangle) Corners() [4]geom.Point {
	hw, hh := r.width/2, r.height/2
	local := [4]geom.Point{
		{X: r.center.X - hw, Y: r.center.Y - hh},
		{X: r.center.X + hw, Y: r.center.Y - hh},
		{X: r.center.X + hw, Y: r.center.Y + hh},
		{X: r.center.X - hw, Y: r.center.Y + hh},
	}
	for i, p := range local {
		local[i] = geom.RotateAround(p, r.center, r.rotation)
	}
	return local
}

func (r *Rectangle) Contains(p geom.Point) bool {
	q := geom.RotateAround(p, r.center, -r.rotation)
	return math.Abs(q.X-r.center.X) <= r.width/2 && math.Abs(q.Y-r.center.Y) <= r.height/2
}

func (r *Rectangle) Translate(delta geom.Point) { r.center = r.center.Add(delta) }

func (r *Rectangle) Center() geom.Point { return r.center }

func (r *Rectangle) Bounds() geom.Rect {
	c := r.Corners()
	return geom.RectFromPoints(c[:]...)
}

func (r *Rectangle) Serialize() Definition {
	return r.def.
		With(KeyCenter, r.worldPoint(r.center)).
		With(KeyWidth, geom.Descale(r.width, r.scale)).
		With(KeyHeight, geom.Descale(r.height, r.scale)).
		With(KeyRotation, r.rotation)
}

func (r *Rectangle) Geometry() Geometry {
	return Geometry{Center: r.center, Width: r.width, Height: r.height, Rotation: r.rotation}
}

func (r *Rectangle) SetGeometry(g Geometry) {
	r.center, r.width, r.height, r.rotation = g.Center, g.Width, g.Height, g.Rotation
}

func (r *Rectangle) Restore(def Definition, g Geometry) { restore(r, &r.base, def, g) }

func (r *Rectangle) UpdateProperties(changed map[string]any) error {
	return updateProperties(r, &r.base, changed)
}

// Handles offers only a move handle; size and rotation are edited as
// properties.
func (r *Rectangle) Handles(h Host) []Handle {
	if !r.Movable() {
		return nil
	}
	return []Handle{NewMoveHandle(h, r)}
}
