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
	"math"
	"testing"

	"godeklar/internal/geom"
	"godeklar/internal/undo"
)

type fakeHost struct {
	stack   *undo.Stack
	owned   map[Shape]bool
	kept    []Handle
	gesture uint64
}

func newFakeHost(coalesce bool, shapes ...Shape) *fakeHost {
	h := &fakeHost{stack: undo.NewStack(undo.Config{Coalesce: coalesce}), owned: map[Shape]bool{}, gesture: 1}
	for _, s := range shapes {
		h.owned[s] = true
	}
	return h
}

func (h *fakeHost) Push(cmd undo.Command)       { h.stack.Push(cmd) }
func (h *fakeHost) RemoveHandles(except Handle) { h.kept = append(h.kept, except) }
func (h *fakeHost) Gesture() uint64             { return h.gesture }
func (h *fakeHost) Owns(s Shape) bool           { return h.owned[s] }

func newTestLine(t *testing.T, p1, p2 geom.Point) *Line {
	t.Helper()
	l, err := NewLine(Def("line", KeyStart, p1, KeyEnd, p2), 1)
	if err != nil {
		t.Fatalf("new line: %v", err)
	}
	return l
}

func TestLineHandleSet(t *testing.T) {
	l := newTestLine(t, geom.Pt(0, 0), geom.Pt(10, 0))
	host := newFakeHost(false, l)
	hs := l.Handles(host)
	kinds := map[HandleKind]int{}
	for _, h := range hs {
		kinds[h.Kind()]++
		if h.Shape() != Shape(l) {
			t.Fatalf("handle %s not attached to the line", h.Kind())
		}
	}
	if kinds[KindEndpoint] != 2 || kinds[KindRotate] != 2 || kinds[KindMove] != 1 {
		t.Fatalf("unexpected handle set: %v", kinds)
	}

	c, _ := NewCircle(Def("circle", KeyCenter, geom.Pt(0, 0), KeyRadius, 1), 1)
	if n := len(c.Handles(host)); n != 2 {
		t.Fatalf("circle should have resize and move handles, got %d", n)
	}
	r, _ := NewRectangle(Def("rectangle", KeyCenter, geom.Pt(0, 0), KeyWidth, 1, KeyHeight, 1), 1)
	if hs := r.Handles(host); len(hs) != 1 || hs[0].Kind() != KindMove {
		t.Fatalf("rectangle should only have a move handle")
	}
	fixed, _ := NewRectangle(Def("rectangle", KeyCenter, geom.Pt(0, 0), KeyWidth, 1, KeyHeight, 1, KeyMovable, false), 1)
	if len(fixed.Handles(host)) != 0 {
		t.Fatalf("immovable rectangle must not offer a move handle")
	}
}

func TestEndpointHandle(t *testing.T) {
	l := newTestLine(t, geom.Pt(0, 0), geom.Pt(10, 0))
	host := newFakeHost(false, l)
	h := NewEndpointHandle(host, l, true)
	if h.Position() != geom.Pt(0, 0) || h.Rotation() != 0 {
		t.Fatalf("start handle at %v rot %v", h.Position(), h.Rotation())
	}
	end := NewEndpointHandle(host, l, false)
	if end.Position() != geom.Pt(10, 0) || math.Abs(end.Rotation()) != 180 {
		t.Fatalf("end handle at %v rot %v", end.Position(), end.Rotation())
	}

	h.Drag(geom.Pt(-5, 3))
	p1, p2 := l.Endpoints()
	if p1 != geom.Pt(-5, 0) || p2 != geom.Pt(10, 0) {
		t.Fatalf("endpoint not projected onto the line: %v %v", p1, p2)
	}
	if len(host.kept) != 1 || host.kept[0] != Handle(h) {
		t.Fatalf("drag must remove the other handles first")
	}
	if host.stack.Len() != 1 {
		t.Fatalf("drag must push a command")
	}
	host.stack.Undo()
	if p1, _ := l.Endpoints(); p1 != geom.Pt(0, 0) {
		t.Fatalf("undo should restore start, got %v", p1)
	}
}

func TestRotateHandlePreservesLength(t *testing.T) {
	l := newTestLine(t, geom.Pt(2, 1), geom.Pt(5, 5))
	host := newFakeHost(false, l)
	length := l.Length()
	h := NewRotateHandle(host, l, false)
	want := geom.PointAtParameter(geom.Pt(2, 1), geom.Pt(5, 5), 0.8)
	if !h.Position().Eq(want, 1e-12) {
		t.Fatalf("rotate handle at %v, want %v", h.Position(), want)
	}
	for i := 0; i < 72; i++ {
		s, c := math.Sincos(float64(i) * 5 * math.Pi / 180)
		for _, r := range []float64{0.01, 0.5, 3, 80} {
			h.Drag(geom.Pt(2+c*r, 1+s*r))
			p1, p2 := l.Endpoints()
			if p1 != geom.Pt(2, 1) {
				t.Fatalf("pivot moved to %v", p1)
			}
			if got := geom.Distance(p1, p2); math.Abs(got-length) > 1e-6 {
				t.Fatalf("length %v changed to %v (angle %d r %v)", length, got, i*5, r)
			}
		}
	}
	// dragging onto the pivot changes nothing
	before := l.Geometry()
	h.Drag(geom.Pt(2, 1))
	if l.Geometry() != before {
		t.Fatalf("drag onto pivot should be ignored")
	}
}

func TestResizeHandle(t *testing.T) {
	c, err := NewCircle(Def("circle", KeyCenter, geom.Pt(1, 1), KeyRadius, 2), 1)
	if err != nil {
		t.Fatal(err)
	}
	host := newFakeHost(false, c)
	h := NewResizeHandle(host, c)
	if h.Position() != geom.Pt(3, 1) {
		t.Fatalf("resize handle at %v", h.Position())
	}
	h.Drag(geom.Pt(1, 5))
	if c.Radius() != 4 {
		t.Fatalf("radius want 4 got %v", c.Radius())
	}
	host.stack.Undo()
	if c.Radius() != 2 {
		t.Fatalf("undo radius want 2 got %v", c.Radius())
	}
}

func TestMoveHandleCoalescesGesture(t *testing.T) {
	l := newTestLine(t, geom.Pt(0.1, 0.2), geom.Pt(0.7, 0.3))
	host := newFakeHost(true, l)
	before := l.Geometry()
	h := NewMoveHandle(host, l)
	start := h.Position()
	for i := 1; i <= 10; i++ {
		h.Drag(start.Add(geom.Pt(0.1*float64(i), -0.3*float64(i))))
	}
	if host.stack.Len() != 1 {
		t.Fatalf("one gesture should be one history entry, got %d", host.stack.Len())
	}
	moved := l.Geometry()
	host.stack.Undo()
	if l.Geometry() != before {
		t.Fatalf("undo should restore exact geometry: %+v vs %+v", l.Geometry(), before)
	}
	host.stack.Redo()
	if l.Geometry() != moved {
		t.Fatalf("redo should restore exact geometry")
	}

	host.gesture++
	h.Drag(h.Position().Add(geom.Pt(1, 1)))
	if host.stack.Len() != 2 {
		t.Fatalf("a new gesture must start a new entry")
	}
}

func TestTranslateUndoIsExact(t *testing.T) {
	c, _ := NewCircle(Def("circle", KeyCenter, geom.Pt(0.1, 0.2), KeyRadius, 1), 3)
	host := newFakeHost(false, c)
	pos := c.Center()
	host.Push(NewTranslate(host, c, geom.Pt(2, 3), 0))
	if c.Center() == pos {
		t.Fatalf("translate had no effect")
	}
	host.stack.Undo()
	if c.Center() != pos {
		t.Fatalf("undo: want %v got %v", pos, c.Center())
	}
}

func TestCommandOnForeignShapePanics(t *testing.T) {
	c, _ := NewCircle(Def("circle", KeyCenter, geom.Pt(0, 0), KeyRadius, 1), 1)
	host := newFakeHost(false) // owns nothing
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic for a shape outside the scene")
		}
		if s := fmt.Sprint(r); s == "" {
			t.Fatalf("panic without message")
		}
	}()
	host.Push(NewChangeSize(host, c, 3, 0))
}

func TestChangePropertiesUndoRedo(t *testing.T) {
	reg := NewRegistry(nil)
	c, _ := NewCircle(Def("circle", KeyCenter, geom.Pt(0.3, 0.3), KeyRadius, 1, KeyColor, "red"), 7)
	host := newFakeHost(false, c)
	changed := map[string]any{KeyColor: "blue", KeyRadius: 2.5}
	if err := ValidateProperties(reg, c, changed); err != nil {
		t.Fatal(err)
	}
	defBefore, geomBefore := c.Definition(), c.Geometry()
	host.Push(NewChangeProperties(host, c, changed))
	if c.Style().Color != "blue" || math.Abs(c.Radius()-17.5) > 1e-12 {
		t.Fatalf("edit not applied: %v %v", c.Style().Color, c.Radius())
	}
	host.stack.Undo()
	if c.Style().Color != "red" || c.Geometry() != geomBefore || c.Definition().Has(KeyCenter) != defBefore.Has(KeyCenter) {
		t.Fatalf("undo did not restore: %v %+v", c.Style().Color, c.Geometry())
	}
	host.stack.Redo()
	if c.Style().Color != "blue" {
		t.Fatalf("redo did not re-apply")
	}
	if err := ValidateProperties(reg, c, map[string]any{KeyRadius: []any{1}}); err == nil {
		t.Fatalf("invalid radius should be rejected")
	}
}
