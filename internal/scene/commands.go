/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"godeklar/internal/drawing"
	"godeklar/internal/shape"
)

// AddShape puts a shape on top of the scene.
type AddShape struct {
	scene  *Scene
	target shape.Shape
}

func NewAddShape(s *Scene, sh shape.Shape) *AddShape {
	return &AddShape{scene: s, target: sh}
}

func (c *AddShape) Name() string { return "add " + c.target.TypeAndName() }

func (c *AddShape) Do() {
	if c.scene.Owns(c.target) {
		panic(fmt.Sprintf("add: %s is already part of the scene", c.target.TypeAndName()))
	}
	c.scene.insert(c.target, -1)
}

func (c *AddShape) Undo() {
	i := c.scene.Index(c.target)
	if i < 0 {
		panic(fmt.Sprintf("undo add: %s is not part of the scene", c.target.TypeAndName()))
	}
	c.scene.detach(i)
}

// RemoveShapes takes shapes out of the scene. Undo puts them back at their
// original z positions.
type RemoveShapes struct {
	scene   *Scene
	targets []shape.Shape
	indices []int
}

func NewRemoveShapes(s *Scene, shapes ...shape.Shape) *RemoveShapes {
	return &RemoveShapes{scene: s, targets: slices.Clone(shapes)}
}

func (c *RemoveShapes) Name() string {
	if len(c.targets) == 1 {
		return "delete " + c.targets[0].TypeAndName()
	}
	return fmt.Sprintf("delete %d items", len(c.targets))
}

func (c *RemoveShapes) Do() {
	c.indices = c.indices[:0]
	for _, t := range c.targets {
		i := c.scene.Index(t)
		if i < 0 {
			panic(fmt.Sprintf("delete: %s is not part of the scene", t.TypeAndName()))
		}
		c.indices = append(c.indices, i)
	}
	// remove from the top so the recorded indices stay valid
	order := c.order()
	for k := len(order) - 1; k >= 0; k-- {
		c.scene.detach(c.scene.Index(c.targets[order[k]]))
	}
}

func (c *RemoveShapes) Undo() {
	for _, k := range c.order() {
		t := c.targets[k]
		if c.scene.Owns(t) {
			panic(fmt.Sprintf("undo delete: %s is already part of the scene", t.TypeAndName()))
		}
		c.scene.insert(t, c.indices[k])
	}
}

// order returns target positions sorted by their original index.
func (c *RemoveShapes) order() []int {
	out := make([]int, len(c.targets))
	for i := range out {
		out[i] = i
	}
	sort.SliceStable(out, func(a, b int) bool { return c.indices[out[a]] < c.indices[out[b]] })
	return out
}

// ChangeGeneral replaces the drawing-wide settings.
type ChangeGeneral struct {
	scene  *Scene
	before drawing.General
	after  drawing.General
	keys   []string
}

func NewChangeGeneral(s *Scene, next drawing.General) *ChangeGeneral {
	c := &ChangeGeneral{scene: s, before: s.general, after: next}
	bm, am := s.general.Map(), next.Map()
	for k, v := range am {
		if fmt.Sprint(bm[k]) != fmt.Sprint(v) {
			c.keys = append(c.keys, k)
		}
	}
	sort.Strings(c.keys)
	return c
}

func (c *ChangeGeneral) Name() string {
	return "edit drawing properties " + strings.Join(c.keys, ", ")
}

func (c *ChangeGeneral) Do()   { c.scene.setGeneral(c.after) }
func (c *ChangeGeneral) Undo() { c.scene.setGeneral(c.before) }
