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

// Corridor is a line with two borders at half its width on either side.
type Corridor struct {
	Line
	borders [2]geom.Segment
}

func NewCorridor(def Definition, scale float64) (*Corridor, error) {
	c := &Corridor{Line: Line{base: newBase(def, scale)}}
	if err := c.load(def); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Corridor) load(def Definition) error {
	if err := c.Line.load(def); err != nil {
		return err
	}
	c.updateBorders()
	return nil
}

// Borders returns the two lines parallel to the center line.
func (c *Corridor) Borders() [2]geom.Segment { return c.borders }

func (c *Corridor) updateBorders() {
	c.borders = geom.ParallelSegments(c.p1, c.p2, c.width/2)
}

func (c *Corridor) Translate(delta geom.Point) {
	c.Line.Translate(delta)
	c.updateBorders()
}

func (c *Corridor) SetEndpoint(isStart bool, p geom.Point) {
	c.Line.SetEndpoint(isStart, p)
	c.updateBorders()
}

func (c *Corridor) SetGeometry(g Geometry) {
	c.Line.SetGeometry(g)
	c.updateBorders()
}

func (c *Corridor) Bounds() geom.Rect {
	r := c.Line.Bounds()
	for _, b := range c.borders {
		r = r.Union(geom.RectFromPoints(b.P1, b.P2))
	}
	return r
}

func (c *Corridor) Restore(def Definition, g Geometry) { restore(c, &c.base, def, g) }

func (c *Corridor) UpdateProperties(changed map[string]any) error {
	return updateProperties(c, &c.base, changed)
}

func (c *Corridor) Handles(h Host) []Handle {
	return lineHandles(h, c)
}
