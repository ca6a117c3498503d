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
	"godeklar/internal/geom"
	"godeklar/internal/shape"
)

// Event is an input message. Positions are in view pixels.
type Event interface{ event() }

type PointerDown struct{ Pos geom.Point }
type PointerDrag struct{ Pos geom.Point }
type PointerUp struct{ Pos geom.Point }

// Wheel zooms in for a positive Delta and out otherwise, around Pos.
type Wheel struct {
	Pos   geom.Point
	Delta float64
}

// Key is a keyboard shortcut resolved to an action, with the pointer
// position at the time.
type Key struct {
	Action Action
	Pos    geom.Point
}

// Resize reports a new view size.
type Resize struct{ Width, Height float64 }

func (PointerDown) event() {}
func (PointerDrag) event() {}
func (PointerUp) event()   {}
func (Wheel) event()       {}
func (Key) event()         {}
func (Resize) event()      {}

type Action int

const (
	ActionUndo Action = iota
	ActionRedo
	ActionCopy
	ActionPaste
	ActionDelete
	ActionZoomIn
	ActionZoomOut
	ActionToggleGrid
	ActionEscape
)

func (a Action) String() string {
	switch a {
	case ActionUndo:
		return "undo"
	case ActionRedo:
		return "redo"
	case ActionCopy:
		return "copy"
	case ActionPaste:
		return "paste"
	case ActionDelete:
		return "delete"
	case ActionZoomIn:
		return "zoom-in"
	case ActionZoomOut:
		return "zoom-out"
	case ActionToggleGrid:
		return "toggle-grid"
	case ActionEscape:
		return "escape"
	}
	return "unknown"
}

// Dispatch routes an input message and reports whether the scene needs a
// redraw.
func (s *Scene) Dispatch(ev Event) bool {
	switch e := ev.(type) {
	case PointerDown:
		return s.pointerDown(s.view.ToDevice(e.Pos))
	case PointerDrag:
		return s.pointerDrag(s.view.ToDevice(e.Pos))
	case PointerUp:
		return s.pointerUp()
	case Wheel:
		if e.Delta > 0 {
			return s.ZoomInAt(e.Pos)
		}
		return s.ZoomOutAt(e.Pos)
	case Key:
		return s.key(e.Action, e.Pos)
	case Resize:
		s.view.Resize(e.Width, e.Height)
		s.notify(ChangeView)
		return true
	}
	return false
}

func (s *Scene) pointerDown(p geom.Point) bool {
	s.dragged = false
	if h := s.handleAt(p); h != nil {
		if mh, ok := h.(*shape.MoveHandle); ok {
			mh.Grab(p)
		}
		s.active = h
		s.gesture++
		return false
	}
	had := len(s.handles) > 0
	s.RemoveHandles(nil)
	s.active = nil
	hit := s.HitTest(p)
	s.Select(hit)
	if hit != nil && hit.Movable() {
		mh := shape.NewMoveHandle(s, hit)
		mh.Grab(p)
		s.active = mh
		s.gesture++
	}
	return had || hit != nil
}

// handleAt finds a shown handle within half the on-screen handle size.
func (s *Scene) handleAt(p geom.Point) shape.Handle {
	tol := s.opts.HandleSize / 2 / s.view.Zoom
	for i := len(s.handles) - 1; i >= 0; i-- {
		if s.handles[i].Contains(p, tol) {
			return s.handles[i]
		}
	}
	return nil
}

func (s *Scene) pointerDrag(p geom.Point) bool {
	if s.active == nil {
		return false
	}
	s.active.Drag(p)
	s.dragged = true
	return true
}

func (s *Scene) pointerUp() bool {
	dragged := s.dragged
	s.dragged = false
	s.active = nil
	if dragged {
		s.EndResizing()
	}
	return dragged
}

func (s *Scene) key(a Action, pos geom.Point) bool {
	p := s.view.ToDevice(pos)
	switch a {
	case ActionUndo:
		return s.Undo()
	case ActionRedo:
		return s.Redo()
	case ActionCopy:
		s.CopyItem(p)
		return false
	case ActionPaste:
		sh, err := s.PasteItem(p)
		if err != nil {
			s.log.Warn("paste failed", "err", err)
		}
		return sh != nil
	case ActionDelete:
		if s.selected != nil {
			sel := s.selected
			s.pushUI(NewRemoveShapes(s, sel))
			return true
		}
		return s.DeleteItemFromUI(p)
	case ActionZoomIn:
		return s.ZoomIn()
	case ActionZoomOut:
		return s.ZoomOut()
	case ActionToggleGrid:
		s.ShowGrid(!s.grid)
		return true
	case ActionEscape:
		if len(s.handles) == 0 && s.selected == nil {
			return false
		}
		s.EndResizing()
		return true
	}
	return false
}
