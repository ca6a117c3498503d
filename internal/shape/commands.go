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

	"godeklar/internal/geom"
	"godeklar/internal/undo"
)

// Owner answers whether a shape still belongs to the scene. A command whose
// target is gone indicates corrupted history and panics.
type Owner interface {
	Owns(s Shape) bool
}

// geometryCommand records the target's geometry before the first apply and
// after it, so undo and redo restore exact values.
type geometryCommand struct {
	owner   Owner
	target  Shape
	gesture uint64
	applied bool
	before  Geometry
	after   Geometry
}

func (c *geometryCommand) mustOwn(op string) {
	if c.owner != nil && !c.owner.Owns(c.target) {
		panic(fmt.Sprintf("%s: %s is not part of the scene", op, c.target.TypeAndName()))
	}
}

func (c *geometryCommand) apply(op string, mutate func()) {
	c.mustOwn(op)
	if c.applied {
		c.target.SetGeometry(c.after)
		return
	}
	c.before = c.target.Geometry()
	mutate()
	c.after = c.target.Geometry()
	c.applied = true
}

func (c *geometryCommand) revert(op string) {
	c.mustOwn(op)
	c.target.SetGeometry(c.before)
}

// absorb takes over the end state of a later step of the same gesture.
func (c *geometryCommand) absorb(o *geometryCommand) bool {
	if c.gesture == 0 || o.gesture != c.gesture || o.target != c.target || !o.applied {
		return false
	}
	c.after = o.after
	return true
}

// Translate moves a shape by a device delta.
type Translate struct {
	geometryCommand
	Delta geom.Point
}

func NewTranslate(owner Owner, s Shape, delta geom.Point, gesture uint64) *Translate {
	return &Translate{geometryCommand: geometryCommand{owner: owner, target: s, gesture: gesture}, Delta: delta}
}

func (c *Translate) Name() string { return "translate " + c.target.TypeAndName() }
func (c *Translate) Do()          { c.apply("translate", func() { c.target.Translate(c.Delta) }) }
func (c *Translate) Undo()        { c.revert("translate") }

func (c *Translate) Merge(next undo.Command) bool {
	o, ok := next.(*Translate)
	if !ok || !c.absorb(&o.geometryCommand) {
		return false
	}
	c.Delta = c.Delta.Add(o.Delta)
	return true
}

// ChangeEndpoint moves one endpoint of a line-like shape.
type ChangeEndpoint struct {
	geometryCommand
	line    Endpointed
	IsStart bool
	Pos     geom.Point
}

func NewChangeEndpoint(owner Owner, l Endpointed, isStart bool, p geom.Point, gesture uint64) *ChangeEndpoint {
	return &ChangeEndpoint{
		geometryCommand: geometryCommand{owner: owner, target: l, gesture: gesture},
		line:            l,
		IsStart:         isStart,
		Pos:             p,
	}
}

func (c *ChangeEndpoint) Name() string { return "change endpoint of " + c.target.TypeAndName() }

func (c *ChangeEndpoint) Do() {
	c.apply("change endpoint", func() { c.line.SetEndpoint(c.IsStart, c.Pos) })
}

func (c *ChangeEndpoint) Undo() { c.revert("change endpoint") }

func (c *ChangeEndpoint) Merge(next undo.Command) bool {
	o, ok := next.(*ChangeEndpoint)
	if !ok || o.IsStart != c.IsStart || !c.absorb(&o.geometryCommand) {
		return false
	}
	c.Pos = o.Pos
	return true
}

// ChangeSize sets the radius of a sizable shape.
type ChangeSize struct {
	geometryCommand
	sized  Sizable
	Radius float64
}

func NewChangeSize(owner Owner, s Sizable, r float64, gesture uint64) *ChangeSize {
	return &ChangeSize{
		geometryCommand: geometryCommand{owner: owner, target: s, gesture: gesture},
		sized:           s,
		Radius:          r,
	}
}

func (c *ChangeSize) Name() string { return "resize " + c.target.TypeAndName() }
func (c *ChangeSize) Do()          { c.apply("resize", func() { c.sized.Resize(c.Radius) }) }
func (c *ChangeSize) Undo()        { c.revert("resize") }

func (c *ChangeSize) Merge(next undo.Command) bool {
	o, ok := next.(*ChangeSize)
	if !ok || !c.absorb(&o.geometryCommand) {
		return false
	}
	c.Radius = o.Radius
	return true
}

// ChangeProperties applies the result of a properties dialog. The changed
// values must have been validated (see Validate) before the command is pushed.
type ChangeProperties struct {
	owner      Owner
	target     Shape
	Changed    map[string]any
	applied    bool
	defBefore  Definition
	defAfter   Definition
	geomBefore Geometry
	geomAfter  Geometry
}

func NewChangeProperties(owner Owner, s Shape, changed map[string]any) *ChangeProperties {
	return &ChangeProperties{owner: owner, target: s, Changed: NewDefinition(changed).Map()}
}

// ValidateProperties reports whether changed can be applied to s, using a
// throwaway clone.
func ValidateProperties(reg *Registry, s Shape, changed map[string]any) error {
	c, err := reg.Clone(s)
	if err != nil {
		return err
	}
	return c.UpdateProperties(changed)
}

func (c *ChangeProperties) Name() string { return "edit " + c.target.TypeAndName() }

func (c *ChangeProperties) Do() {
	if c.owner != nil && !c.owner.Owns(c.target) {
		panic(fmt.Sprintf("edit: %s is not part of the scene", c.target.TypeAndName()))
	}
	if c.applied {
		c.target.Restore(c.defAfter, c.geomAfter)
		return
	}
	c.defBefore, c.geomBefore = c.target.Definition(), c.target.Geometry()
	if err := c.target.UpdateProperties(c.Changed); err != nil {
		panic(fmt.Sprintf("edit %s: %v", c.target.TypeAndName(), err))
	}
	c.defAfter, c.geomAfter = c.target.Definition(), c.target.Geometry()
	c.applied = true
}

func (c *ChangeProperties) Undo() {
	if c.owner != nil && !c.owner.Owns(c.target) {
		panic(fmt.Sprintf("edit: %s is not part of the scene", c.target.TypeAndName()))
	}
	c.target.Restore(c.defBefore, c.geomBefore)
}
