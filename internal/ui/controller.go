/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui hosts the interactive editor. Controller holds the toolkit
// independent part: it turns pointer, wheel and key input into scene
// messages and builds the context menu. The Fyne widget only forwards events
// and paints Controller.Frame.
package ui

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"godeklar/internal/export"
	"godeklar/internal/geom"
	applog "godeklar/internal/log"
	"godeklar/internal/scene"
	"godeklar/internal/session"
	"godeklar/internal/shape"
)

type Controller struct {
	sess *session.Session
	sc   *scene.Scene
	log  *slog.Logger

	pointer geom.Point
	pressed bool
	panning bool

	// OnChange runs after input changed what is shown.
	OnChange func()
}

func NewController(sess *session.Session) *Controller {
	return &Controller{sess: sess, sc: sess.Scene(), log: applog.WithComponent("ui")}
}

func (c *Controller) Session() *session.Session { return c.sess }
func (c *Controller) Scene() *scene.Scene       { return c.sc }

func (c *Controller) changed(redraw bool) bool {
	if redraw && c.OnChange != nil {
		c.OnChange()
	}
	return redraw
}

// Down starts a gesture. A press on nothing arms panning.
func (c *Controller) Down(p geom.Point) bool {
	c.pointer = p
	c.pressed = true
	redraw := c.sc.Dispatch(scene.PointerDown{Pos: p})
	c.panning = c.sc.ActiveHandle() == nil
	return c.changed(redraw)
}

// Drag moves the active handle or pans the view.
func (c *Controller) Drag(p geom.Point) bool {
	if !c.pressed {
		c.Down(p)
	}
	prev := c.pointer
	c.pointer = p
	if c.panning {
		c.sc.Pan(p.Sub(prev))
		return c.changed(true)
	}
	return c.changed(c.sc.Dispatch(scene.PointerDrag{Pos: p}))
}

func (c *Controller) Up(p geom.Point) bool {
	if !c.pressed {
		return false
	}
	c.pressed = false
	c.pointer = p
	wasPanning := c.panning
	c.panning = false
	redraw := c.sc.Dispatch(scene.PointerUp{Pos: p})
	return c.changed(redraw || wasPanning)
}

// Wheel zooms around p; dy > 0 zooms in.
func (c *Controller) Wheel(p geom.Point, dy float64) bool {
	if dy == 0 {
		return false
	}
	return c.changed(c.sc.Dispatch(scene.Wheel{Pos: p, Delta: dy}))
}

// Hover remembers the pointer for keyboard actions that need a position.
func (c *Controller) Hover(p geom.Point) { c.pointer = p }

func (c *Controller) Resize(w, h float64) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	return c.changed(c.sc.Dispatch(scene.Resize{Width: w, Height: h}))
}

// Shortcut resolves a key name with modifiers ("ctrl+z", "delete", "+").
func Shortcut(key string) (scene.Action, bool) {
	a, ok := shortcuts[strings.ToLower(key)]
	return a, ok
}

var shortcuts = map[string]scene.Action{
	"ctrl+z":       scene.ActionUndo,
	"ctrl+y":       scene.ActionRedo,
	"ctrl+shift+z": scene.ActionRedo,
	"ctrl+c":       scene.ActionCopy,
	"ctrl+v":       scene.ActionPaste,
	"delete":       scene.ActionDelete,
	"backspace":    scene.ActionDelete,
	"+":            scene.ActionZoomIn,
	"=":            scene.ActionZoomIn,
	"-":            scene.ActionZoomOut,
	"g":            scene.ActionToggleGrid,
	"escape":       scene.ActionEscape,
}

// Key runs the action bound to key at the last pointer position.
func (c *Controller) Key(key string) bool {
	a, ok := Shortcut(key)
	if !ok {
		return false
	}
	return c.Action(a)
}

func (c *Controller) Action(a scene.Action) bool {
	applog.WithOperation(c.log, "key").Debug("action", slog.String("action", a.String()))
	return c.changed(c.sc.Dispatch(scene.Key{Action: a, Pos: c.pointer}))
}

// Frame renders the scene as the view shows it, handles included.
func (c *Controller) Frame() image.Image {
	return export.Raster(c.sc, export.ViewFrame(c.sc), export.Options{Handles: true})
}

// MenuEntry is one line of the context menu.
type MenuEntry struct {
	Label    string
	Disabled bool
	Run      func() error
}

// ContextMenu lists what a secondary click at p offers.
func (c *Controller) ContextMenu(p geom.Point) []MenuEntry {
	d := c.sc.Viewport().ToDevice(p)
	var out []MenuEntry
	for _, typ := range c.sc.AddableTypes() {
		out = append(out, MenuEntry{Label: "Add " + typ, Run: func() error {
			_, err := c.sc.AddItemFromUI(typ, d)
			c.changed(err == nil)
			return err
		}})
	}
	hit := c.sc.HitTest(d)
	name := ""
	if hit != nil {
		name = " " + hit.TypeAndName()
	}
	out = append(out,
		MenuEntry{Label: "Delete" + name, Disabled: hit == nil, Run: func() error {
			c.changed(c.sc.DeleteItemFromUI(d))
			return nil
		}},
		MenuEntry{Label: "Copy" + name, Disabled: hit == nil, Run: func() error {
			c.sc.CopyItem(d)
			return nil
		}},
		MenuEntry{Label: "Paste", Disabled: c.sc.Clipboard() == nil, Run: func() error {
			sh, err := c.sc.PasteItem(d)
			c.changed(sh != nil)
			return err
		}},
	)
	return out
}

// Properties returns the editable properties of the shape at view point p
// as text fields, sorted by key.
func (c *Controller) Properties(p geom.Point) (shape.Shape, []Field) {
	hit := c.sc.HitTest(c.sc.Viewport().ToDevice(p))
	if hit == nil {
		return nil, nil
	}
	return hit, fieldsOf(c.sc.Registry().EditableProperties(hit))
}

// GeneralFields returns the editable drawing settings.
func (c *Controller) GeneralFields() []Field {
	return fieldsOf(c.sc.EditableGeneral())
}

// Field is a property shown as text.
type Field struct {
	Key  string
	Text string
}

func fieldsOf(m map[string]any) []Field {
	out := make([]Field, 0, len(m))
	for k, v := range m {
		out = append(out, Field{Key: k, Text: FormatValue(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Changed compares edited fields with the originals and parses the ones
// that differ.
func Changed(orig []Field, edited map[string]string) (map[string]any, error) {
	out := map[string]any{}
	for _, f := range orig {
		txt, ok := edited[f.Key]
		if !ok || strings.TrimSpace(txt) == strings.TrimSpace(f.Text) {
			continue
		}
		v, err := ParseValue(txt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
		out[f.Key] = v
	}
	return out, nil
}

// ApplyProperties validates and pushes a properties dialog result.
func (c *Controller) ApplyProperties(sh shape.Shape, orig []Field, edited map[string]string) error {
	changed, err := Changed(orig, edited)
	if err != nil {
		return err
	}
	if err := c.sc.EditItem(sh, changed); err != nil {
		return err
	}
	c.changed(len(changed) > 0)
	return nil
}

func (c *Controller) ApplyGeneral(orig []Field, edited map[string]string) error {
	changed, err := Changed(orig, edited)
	if err != nil {
		return err
	}
	if err := c.sc.EditGeneral(changed); err != nil {
		return err
	}
	c.changed(len(changed) > 0)
	return nil
}

// FormatValue renders a property in YAML flow style ("[1, 2]", "true").
func FormatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	setFlow(&n)
	b, err := yaml.Marshal(&n)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(string(b))
}

func setFlow(n *yaml.Node) {
	n.Style |= yaml.FlowStyle
	for _, c := range n.Content {
		setFlow(c)
	}
}

// ParseValue reads a field back with YAML scalar rules. Empty text is "".
func ParseValue(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, nil
}

// Title is the window title: file name, dirty mark and zoom.
func (c *Controller) Title() string {
	name := "untitled"
	if p := c.sess.Path(); p != "" {
		name = filepath.Base(p)
	}
	if c.sess.Dirty() {
		name += "*"
	}
	return fmt.Sprintf("%s - godeklar (%.0f%%)", name, c.sc.Zoom()*100)
}

// Status summarizes the scene and the next undo and redo steps.
func (c *Controller) Status() string {
	st := c.sc.Stack()
	parts := []string{fmt.Sprintf("%d items", c.sc.Len())}
	if n := st.UndoName(); n != "" {
		parts = append(parts, "undo: "+n)
	}
	if n := st.RedoName(); n != "" {
		parts = append(parts, "redo: "+n)
	}
	if err := c.sess.AutosaveErr(); err != nil {
		parts = append(parts, "autosave failed")
	}
	return strings.Join(parts, " | ")
}
