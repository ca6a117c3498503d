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
	"godeklar/internal/undo"
)

// Host is the part of the scene a handle talks to.
type Host interface {
	Owner
	// Push applies a command through the undo stack.
	Push(cmd undo.Command)
	// RemoveHandles drops every handle except the given one (nil drops all).
	RemoveHandles(except Handle)
	// Gesture identifies the current drag; commands of one gesture coalesce.
	Gesture() uint64
}

// HandleKind tells the handle variants apart.
type HandleKind int

const (
	KindMove HandleKind = iota
	KindEndpoint
	KindRotate
	KindResize
)

func (k HandleKind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindEndpoint:
		return "endpoint"
	case KindRotate:
		return "rotate"
	case KindResize:
		return "resize"
	}
	return "unknown"
}

// Handle is a draggable manipulator attached to a selected shape.
type Handle interface {
	Kind() HandleKind
	Shape() Shape
	Position() geom.Point
	// Rotation is the icon orientation in degrees.
	Rotation() float64
	// Contains reports whether p is within radius of the handle.
	Contains(p geom.Point, radius float64) bool
	// Drag moves the handle to the device point and updates the shape.
	Drag(to geom.Point)
}

type handleBase struct {
	host     Host
	pos      geom.Point
	rotation float64
}

func (h *handleBase) Position() geom.Point { return h.pos }
func (h *handleBase) Rotation() float64    { return h.rotation }

func (h *handleBase) Contains(p geom.Point, radius float64) bool {
	return geom.Distance(h.pos, p) <= radius
}

// ordered returns (selected, other) endpoints.
func ordered(l Endpointed, isStart bool) (geom.Point, geom.Point) {
	p1, p2 := l.Endpoints()
	if isStart {
		return p1, p2
	}
	return p2, p1
}

// EndpointHandle slides one endpoint along the line.
type EndpointHandle struct {
	handleBase
	line    Endpointed
	isStart bool
	anchor  geom.Segment
}

func NewEndpointHandle(host Host, l Endpointed, isStart bool) *EndpointHandle {
	sel, other := ordered(l, isStart)
	p1, p2 := l.Endpoints()
	return &EndpointHandle{
		handleBase: handleBase{host: host, pos: sel, rotation: geom.AngleDeg(sel, other)},
		line:       l,
		isStart:    isStart,
		anchor:     geom.Segment{P1: p1, P2: p2},
	}
}

func (h *EndpointHandle) Kind() HandleKind { return KindEndpoint }
func (h *EndpointHandle) Shape() Shape     { return h.line }
func (h *EndpointHandle) IsStart() bool    { return h.isStart }

// Drag projects the pointer onto the infinite line through the endpoints
// captured at selection time.
func (h *EndpointHandle) Drag(to geom.Point) {
	h.host.RemoveHandles(h)
	p := geom.ProjectPointToSegment(h.anchor.P1, h.anchor.P2, to, false)
	h.host.Push(NewChangeEndpoint(h.host, h.line, h.isStart, p, h.host.Gesture()))
	h.pos = p
}

// RotatePercentage places a rotate handle along the line, measured from the
// fixed endpoint.
const RotatePercentage = 0.8

// RotateHandle turns the line around its other endpoint keeping its length.
type RotateHandle struct {
	handleBase
	line       Endpointed
	isStart    bool
	percentage float64
	length     float64
}

func NewRotateHandle(host Host, l Endpointed, isStart bool) *RotateHandle {
	sel, other := ordered(l, isStart)
	return &RotateHandle{
		handleBase: handleBase{host: host, pos: geom.PointAtParameter(other, sel, RotatePercentage)},
		line:       l,
		isStart:    isStart,
		percentage: RotatePercentage,
		length:     geom.Distance(sel, other),
	}
}

func (h *RotateHandle) Kind() HandleKind { return KindRotate }
func (h *RotateHandle) Shape() Shape     { return h.line }
func (h *RotateHandle) IsStart() bool    { return h.isStart }

func (h *RotateHandle) Drag(to geom.Point) {
	h.host.RemoveHandles(h)
	_, pivot := ordered(h.line, h.isStart)
	if geom.Distance(pivot, to) < 1e-9 {
		return
	}
	p := geom.PointBetweenAtDistance(pivot, to, h.length)
	h.host.Push(NewChangeEndpoint(h.host, h.line, h.isStart, p, h.host.Gesture()))
	h.pos = geom.PointAtParameter(pivot, p, h.percentage)
}

// ResizeHandle changes the radius of a circle.
type ResizeHandle struct {
	handleBase
	target Sizable
}

func NewResizeHandle(host Host, s Sizable) *ResizeHandle {
	return &ResizeHandle{
		handleBase: handleBase{host: host, pos: s.Center().Add(geom.Pt(s.Radius(), 0))},
		target:     s,
	}
}

func (h *ResizeHandle) Kind() HandleKind { return KindResize }
func (h *ResizeHandle) Shape() Shape     { return h.target }

func (h *ResizeHandle) Drag(to geom.Point) {
	h.host.RemoveHandles(h)
	r := geom.Distance(h.target.Center(), to)
	h.host.Push(NewChangeSize(h.host, h.target, r, h.host.Gesture()))
	h.pos = to
}

// MoveHandle translates the whole shape by the pointer delta.
type MoveHandle struct {
	handleBase
	target Shape
}

func NewMoveHandle(host Host, s Shape) *MoveHandle {
	return &MoveHandle{handleBase: handleBase{host: host, pos: s.Center()}, target: s}
}

func (h *MoveHandle) Kind() HandleKind { return KindMove }
func (h *MoveHandle) Shape() Shape     { return h.target }

// Grab rebases the handle on p so the next drag moves relative to it. Used
// when the user drags the shape body instead of the handle icon.
func (h *MoveHandle) Grab(p geom.Point) { h.pos = p }

func (h *MoveHandle) Drag(to geom.Point) {
	h.host.RemoveHandles(h)
	delta := to.Sub(h.pos)
	if delta == (geom.Point{}) {
		return
	}
	h.host.Push(NewTranslate(h.host, h.target, delta, h.host.Gesture()))
	h.pos = to
}
