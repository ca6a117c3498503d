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

// Line is a straight segment with a stroke width.
type Line struct {
	base
	p1, p2 geom.Point
	width  float64
}

// NewLine builds a line from a definition with start and end points.
func NewLine(def Definition, scale float64) (*Line, error) {
	l := &Line{base: newBase(def, scale)}
	if err := l.load(def); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Line) load(def Definition) error {
	p1, err := l.scalePoint(def, KeyStart)
	if err != nil {
		return err
	}
	p2, err := l.scalePoint(def, KeyEnd)
	if err != nil {
		return err
	}
	w, err := l.scaleFloat(def, KeyWidth, DefaultLineWidth)
	if err != nil {
		return err
	}
	l.def, l.p1, l.p2, l.width = def, p1, p2, w
	return nil
}

func (l *Line) Endpoints() (geom.Point, geom.Point) { return l.p1, l.p2 }

func (l *Line) SetEndpoint(isStart bool, p geom.Point) {
	if isStart {
		l.p1 = p
	} else {
		l.p2 = p
	}
}

func (l *Line) Length() float64 { return geom.Distance(l.p1, l.p2) }

// Width is the stroke width in device units.
func (l *Line) Width() float64 { return l.width }

func (l *Line) hitWidth() float64 { return max(l.width, MinHitWidth) }

func (l *Line) Contains(p geom.Point) bool {
	return geom.DistancePointToSegment(l.p1, l.p2, p) < l.hitWidth()
}

func (l *Line) Translate(delta geom.Point) {
	l.p1 = l.p1.Add(delta)
	l.p2 = l.p2.Add(delta)
}

func (l *Line) Center() geom.Point { return geom.Midpoint(l.p1, l.p2) }

func (l *Line) Bounds() geom.Rect {
	hw := l.width / 2
	return geom.RectFromPoints(l.p1, l.p2).Inset(-hw, -hw)
}

func (l *Line) Serialize() Definition {
	return l.def.
		With(KeyStart, l.worldPoint(l.p1)).
		With(KeyEnd, l.worldPoint(l.p2))
}

func (l *Line) Geometry() Geometry {
	return Geometry{Start: l.p1, End: l.p2, Width: l.width}
}

func (l *Line) SetGeometry(g Geometry) {
	l.p1, l.p2, l.width = g.Start, g.End, g.Width
}

func (l *Line) Restore(def Definition, g Geometry) { restore(l, &l.base, def, g) }

func (l *Line) UpdateProperties(changed map[string]any) error {
	return updateProperties(l, &l.base, changed)
}

func (l *Line) Style() Style {
	s := l.base.Style()
	s.LineWidth = l.width
	return s
}

// ArrowHead returns the barbs drawn at the end point when the arrow property
// is set.
func (l *Line) ArrowHead() [2]geom.Point {
	size := max(l.width*4, MinHitWidth)
	return geom.ArrowHead(l.p1, l.p2, size, 30)
}

func (l *Line) Handles(h Host) []Handle {
	return lineHandles(h, l)
}

func lineHandles(h Host, l Endpointed) []Handle {
	hs := []Handle{
		NewEndpointHandle(h, l, true),
		NewEndpointHandle(h, l, false),
		NewRotateHandle(h, l, true),
		NewRotateHandle(h, l, false),
	}
	if l.Movable() {
		hs = append(hs, NewMoveHandle(h, l))
	}
	return hs
}
