/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package scene owns the shapes of one drawing, their handles, the selection
// and the undo history, and turns pointer and key messages into commands.
//
// A Scene is not safe for concurrent use. All calls are expected from the UI
// event loop.
package scene

import (
	"fmt"
	"log/slog"
	"slices"

	"godeklar/internal/drawing"
	"godeklar/internal/geom"
	applog "godeklar/internal/log"
	"godeklar/internal/shape"
	"godeklar/internal/undo"
)

type Options struct {
	// ScaleFactor maps world units to device units when a drawing sets
	// neither scale_factor nor size.
	ScaleFactor float64
	// ViewWidth and ViewHeight size the viewport and drive the automatic
	// scale of drawings that only give a size.
	ViewWidth  float64
	ViewHeight float64
	ZoomFactor float64
	MinZoom    float64
	MaxZoom    float64
	// HandleSize is the on-screen handle diameter in view pixels.
	HandleSize float64
	// AutoScaleFill is the share of the view a sized drawing fills.
	AutoScaleFill float64
	BackColor     string
	Undo          undo.Config
}

func DefaultOptions() Options {
	return Options{
		ScaleFactor:   100,
		ViewWidth:     800,
		ViewHeight:    600,
		ZoomFactor:    1.15,
		MinZoom:       0.1,
		MaxZoom:       10,
		HandleSize:    10,
		AutoScaleFill: 0.75,
		BackColor:     "white",
		Undo:          undo.Config{MaxDepth: 500, Coalesce: true},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ScaleFactor <= 0 {
		o.ScaleFactor = d.ScaleFactor
	}
	if o.ViewWidth <= 0 {
		o.ViewWidth = d.ViewWidth
	}
	if o.ViewHeight <= 0 {
		o.ViewHeight = d.ViewHeight
	}
	if o.ZoomFactor <= 1 {
		o.ZoomFactor = d.ZoomFactor
	}
	if o.MinZoom <= 0 {
		o.MinZoom = d.MinZoom
	}
	if o.MaxZoom < o.MinZoom {
		o.MaxZoom = max(d.MaxZoom, o.MinZoom)
	}
	if o.HandleSize <= 0 {
		o.HandleSize = d.HandleSize
	}
	if o.AutoScaleFill <= 0 {
		o.AutoScaleFill = d.AutoScaleFill
	}
	if o.BackColor == "" {
		o.BackColor = d.BackColor
	}
	return o
}

// Change tells observers what part of the scene changed.
type Change int

const (
	ChangeItems Change = iota
	ChangeHandles
	ChangeView
	ChangeSettings
	ChangeHistory
	ChangeLoad
)

func (c Change) String() string {
	switch c {
	case ChangeItems:
		return "items"
	case ChangeHandles:
		return "handles"
	case ChangeView:
		return "view"
	case ChangeSettings:
		return "general"
	case ChangeHistory:
		return "history"
	case ChangeLoad:
		return "load"
	}
	return "unknown"
}

// ViewProvider populates a scene on request of the host.
type ViewProvider interface {
	UpdateView(s *Scene) error
}

type Scene struct {
	opts Options
	reg  *shape.Registry
	keys drawing.Keys
	log  *slog.Logger

	items     []shape.Shape
	handles   []shape.Handle
	active    shape.Handle
	selected  shape.Shape
	clipboard shape.Shape
	gesture   uint64
	dragged   bool

	stack   *undo.Stack
	general drawing.General
	version int
	extra   map[string]any
	scale   float64
	view    Viewport
	grid    bool

	observers []func(Change)
}

// New returns an empty scene. A nil registry uses the built-in shapes.
func New(opts Options, reg *shape.Registry) *Scene {
	opts = opts.withDefaults()
	if reg == nil {
		reg = shape.NewRegistry(nil)
	}
	s := &Scene{
		opts:    opts,
		reg:     reg,
		keys:    drawing.KeysFrom(reg.Metadata()),
		log:     applog.WithComponent("scene"),
		stack:   undo.NewStack(opts.Undo),
		general: drawing.General{BackColor: opts.BackColor},
		version: drawing.CurrentVersion,
		scale:   opts.ScaleFactor,
		view:    newViewport(opts.ViewWidth, opts.ViewHeight),
	}
	s.stack.OnChange = func(op undo.Op, cmd undo.Command) {
		if cmd != nil {
			applog.WithOperation(s.log, string(op)).Debug("history", slog.String("command", cmd.Name()))
		}
		s.notify(ChangeHistory)
	}
	return s
}

func (s *Scene) Registry() *shape.Registry { return s.reg }
func (s *Scene) Keys() drawing.Keys        { return s.keys }
func (s *Scene) Options() Options          { return s.opts }
func (s *Scene) Stack() *undo.Stack        { return s.stack }
func (s *Scene) General() drawing.General  { return s.general }
func (s *Scene) ScaleFactor() float64      { return s.scale }
func (s *Scene) Viewport() Viewport        { return s.view }

// Subscribe registers fn to run after every change.
func (s *Scene) Subscribe(fn func(Change)) {
	s.observers = append(s.observers, fn)
}

func (s *Scene) notify(c Change) {
	for _, fn := range s.observers {
		fn(c)
	}
}

// Items returns the shapes bottom to top.
func (s *Scene) Items() []shape.Shape { return slices.Clone(s.items) }

func (s *Scene) Len() int { return len(s.items) }

func (s *Scene) Index(sh shape.Shape) int { return slices.Index(s.items, sh) }

func (s *Scene) Owns(sh shape.Shape) bool { return s.Index(sh) >= 0 }

// AddItem puts a shape on top without going through the history.
func (s *Scene) AddItem(sh shape.Shape) {
	s.insert(sh, -1)
	s.notify(ChangeItems)
}

// AddDefinition creates a shape at the scene scale and adds it directly.
func (s *Scene) AddDefinition(def shape.Definition) (shape.Shape, error) {
	sh, err := s.reg.Create(def, s.scale)
	if err != nil {
		return nil, err
	}
	s.AddItem(sh)
	return sh, nil
}

// RemoveItem drops a shape without going through the history.
func (s *Scene) RemoveItem(sh shape.Shape) bool {
	i := s.Index(sh)
	if i < 0 {
		return false
	}
	s.detach(i)
	s.notify(ChangeItems)
	return true
}

func (s *Scene) insert(sh shape.Shape, at int) {
	if at < 0 || at > len(s.items) {
		s.items = append(s.items, sh)
		return
	}
	s.items = slices.Insert(s.items, at, sh)
}

func (s *Scene) detach(i int) {
	sh := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	s.dropHandlesOf(sh)
	if s.selected == sh {
		s.selected = nil
	}
}

func (s *Scene) dropHandlesOf(sh shape.Shape) {
	s.handles = slices.DeleteFunc(s.handles, func(h shape.Handle) bool { return h.Shape() == sh })
	if s.active != nil && s.active.Shape() == sh {
		s.active = nil
	}
}

// HitTest returns the topmost visible shape containing the device point.
func (s *Scene) HitTest(p geom.Point) shape.Shape {
	for i := len(s.items) - 1; i >= 0; i-- {
		it := s.items[i]
		if it.Visible() && it.Contains(p) {
			return it
		}
	}
	return nil
}

// Handles returns the handles currently shown.
func (s *Scene) Handles() []shape.Handle { return slices.Clone(s.handles) }

func (s *Scene) ActiveHandle() shape.Handle { return s.active }

func (s *Scene) Selected() shape.Shape { return s.selected }

// Select makes sh the current selection and shows its handles. A nil or
// unselectable shape clears the selection.
func (s *Scene) Select(sh shape.Shape) {
	s.handles = nil
	s.selected = nil
	if sh != nil && sh.Selectable() && s.Owns(sh) {
		s.selected = sh
		s.handles = sh.Handles(s)
	}
	s.notify(ChangeHandles)
}

// RemoveHandles drops every handle except the given one.
func (s *Scene) RemoveHandles(except shape.Handle) {
	if except != nil && slices.Contains(s.handles, except) {
		s.handles = []shape.Handle{except}
	} else {
		s.handles = nil
	}
	s.notify(ChangeHandles)
}

// EndResizing finishes a manipulation: handles go away and nothing stays
// selected.
func (s *Scene) EndResizing() {
	s.handles = nil
	s.selected = nil
	s.active = nil
	s.notify(ChangeHandles)
}

// Gesture identifies the current drag. Commands pushed within one gesture
// coalesce into one history entry.
func (s *Scene) Gesture() uint64 { return s.gesture }

// Push applies cmd through the history.
func (s *Scene) Push(cmd undo.Command) {
	s.stack.Push(cmd)
	s.notify(ChangeItems)
}

// pushUI is Push for commands that do not come from a handle. Handles are
// removed first so none of them keeps stale device coordinates.
func (s *Scene) pushUI(cmd undo.Command) {
	s.EndResizing()
	s.gesture++
	s.Push(cmd)
}

func (s *Scene) Undo() bool {
	s.EndResizing()
	ok := s.stack.Undo()
	if ok {
		s.notify(ChangeItems)
	}
	return ok
}

func (s *Scene) Redo() bool {
	s.EndResizing()
	ok := s.stack.Redo()
	if ok {
		s.notify(ChangeItems)
	}
	return ok
}

// CopyItem remembers the shape at p for a later paste.
func (s *Scene) CopyItem(p geom.Point) bool {
	hit := s.HitTest(p)
	if hit == nil {
		return false
	}
	s.clipboard = hit
	return true
}

func (s *Scene) Clipboard() shape.Shape { return s.clipboard }

// PasteItem adds a copy of the clipboard shape centred on p.
func (s *Scene) PasteItem(p geom.Point) (shape.Shape, error) {
	if s.clipboard == nil {
		return nil, nil
	}
	clone, err := s.reg.Clone(s.clipboard)
	if err != nil {
		return nil, fmt.Errorf("paste %s: %w", s.clipboard.TypeAndName(), err)
	}
	clone.Translate(p.Sub(clone.Center()))
	s.pushUI(NewAddShape(s, clone))
	return clone, nil
}

// Clear removes every shape as one undoable step.
func (s *Scene) Clear() bool {
	if len(s.items) == 0 {
		return false
	}
	s.pushUI(NewRemoveShapes(s, s.items...))
	return true
}

// AddItemFromUI adds the metadata default of typ translated by p.
func (s *Scene) AddItemFromUI(typ string, p geom.Point) (shape.Shape, error) {
	def, err := s.reg.DefaultDefinition(typ)
	if err != nil {
		return nil, err
	}
	sh, err := s.reg.Create(def, s.scale)
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", typ, err)
	}
	sh.Translate(p)
	s.pushUI(NewAddShape(s, sh))
	return sh, nil
}

// AddableTypes lists the types that have a default definition.
func (s *Scene) AddableTypes() []string {
	var out []string
	for _, it := range s.reg.Metadata().Items {
		if it.Default.Len() > 0 {
			out = append(out, it.Type)
		}
	}
	return out
}

// DeleteItemFromUI removes the shape at p.
func (s *Scene) DeleteItemFromUI(p geom.Point) bool {
	hit := s.HitTest(p)
	if hit == nil {
		return false
	}
	s.pushUI(NewRemoveShapes(s, hit))
	return true
}

// EditItem applies a properties dialog result. The change is checked on a
// clone first so a bad value never reaches the history.
func (s *Scene) EditItem(sh shape.Shape, changed map[string]any) error {
	if len(changed) == 0 {
		return nil
	}
	if err := shape.ValidateProperties(s.reg, sh, changed); err != nil {
		return fmt.Errorf("edit %s: %w", sh.TypeAndName(), err)
	}
	s.pushUI(shape.NewChangeProperties(s, sh, changed))
	return nil
}

// EditableGeneral returns the general settings a drawing dialog may change.
func (s *Scene) EditableGeneral() map[string]any {
	keys := s.reg.Metadata().General.EditableProperties
	if len(keys) == 0 {
		keys = []string{drawing.KeyDescription, drawing.KeyBackColor, drawing.KeyBackAlpha}
	}
	return s.general.Subset(keys)
}

func (s *Scene) EditGeneral(changed map[string]any) error {
	if len(changed) == 0 {
		return nil
	}
	next, err := s.general.Merge(changed)
	if err != nil {
		return err
	}
	s.pushUI(NewChangeGeneral(s, next))
	return nil
}

func (s *Scene) setGeneral(g drawing.General) {
	s.general = g
	s.notify(ChangeSettings)
}

// SetVisibleType shows or hides every shape of a type.
func (s *Scene) SetVisibleType(typ string, visible bool) int {
	n := 0
	for _, it := range s.items {
		if it.Type() == typ {
			it.SetVisible(visible)
			if !visible {
				s.dropHandlesOf(it)
				if s.selected == it {
					s.selected = nil
				}
			}
			n++
		}
	}
	if n > 0 {
		s.notify(ChangeItems)
	}
	return n
}

// UpdateFigure empties the scene and lets the provider fill it again.
func (s *Scene) UpdateFigure(p ViewProvider) error {
	s.EndResizing()
	s.items = nil
	s.clipboard = nil
	s.stack.Clear()
	if err := p.UpdateView(s); err != nil {
		return fmt.Errorf("update figure: %w", err)
	}
	s.notify(ChangeLoad)
	return nil
}

// Bounds is the device-unit box of the drawing size, or of all visible
// shapes when no size is set.
func (s *Scene) Bounds() geom.Rect {
	if b, ok := s.BackgroundRect(); ok {
		return b
	}
	var r geom.Rect
	for _, it := range s.items {
		if it.Visible() {
			r = r.Union(it.Bounds())
		}
	}
	return r
}

// BackgroundRect is the drawing size in device units.
func (s *Scene) BackgroundRect() (geom.Rect, bool) {
	b, ok := s.general.Bounds()
	if !ok {
		return geom.Rect{}, false
	}
	return geom.RectFromPoints(geom.ScalePoint(b.Min(), s.scale), geom.ScalePoint(b.Max(), s.scale)), true
}
