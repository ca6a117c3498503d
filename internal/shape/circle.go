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
	"godeklar/internal/geom"
)

// Circle is given by its center and radius.
type Circle struct {
	base
	center geom.Point
	radius float64
}

func NewCircle(def Definition, scale float64) (*Circle, error) {
	c := &Circle{base: newBase(def, scale)}
	if err := c.load(def); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Circle) load(def Definition) error {
	center, err := c.scalePoint(def, KeyCenter)
	if err != nil {
		return err
	}
	r, err := c.scaleFloat(def, KeyRadius, 0)
	if err != nil {
		return err
	}
	c.def, c.center, c.radius = def, center, max(r, 0)
	return nil
}

func (c *Circle) Radius() float64 { return c.radius }

// Resize sets the radius in device units. Negative values collapse to zero.
func (c *Circle) Resize(r float64) { c.radius = max(r, 0) }

func (c *Circle) Contains(p geom.Point) bool {
	return geom.Distance(c.center, p) < c.radius
}

func (c *Circle) Translate(delta geom.Point) { c.center = c.center.Add(delta) }

func (c *Circle) Center() geom.Point { return c.center }

func (c *Circle) Bounds() geom.Rect {
	return geom.R(c.center.X-c.radius, c.center.Y-c.radius, 2*c.radius, 2*c.radius)
}

func (c *Circle) Serialize() Definition {
	return c.def.
		With(KeyCenter, c.worldPoint(c.center)).
		With(KeyRadius, geom.Descale(c.radius, c.scale))
}

func (c *Circle) Geometry() Geometry { return Geometry{Center: c.center, Radius: c.radius} }

func (c *Circle) SetGeometry(g Geometry) { c.center, c.radius = g.Center, g.Radius }

func (c *Circle) Restore(def Definition, g Geometry) { restore(c, &c.base, def, g) }

func (c *Circle) UpdateProperties(changed map[string]any) error {
	return updateProperties(c, &c.base, changed)
}

func (c *Circle) Handles(h Host) []Handle {
	hs := []Handle{NewResizeHandle(h, c)}
	if c.Movable() {
		hs = append(hs, NewMoveHandle(h, c))
	}
	return hs
}
