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
	"log/slog"
	"math"
	"maps"

	"godeklar/internal/drawing"
	"godeklar/internal/geom"
	"godeklar/internal/shape"
)

// maxGridLines bounds GridLines for very fine grids.
const maxGridLines = 4000

// Load replaces the scene content with doc. Shapes are created directly,
// the history is cleared, and every item that cannot be created is reported
// while the rest still loads.
func (s *Scene) Load(doc *drawing.Document) []error {
	s.EndResizing()
	s.items = nil
	s.clipboard = nil
	s.grid = false
	s.general = doc.General
	s.version = doc.Version
	s.extra = maps.Clone(doc.Extra)
	s.scale = s.scaleFor(doc.General)

	var errs []error
	for i, e := range doc.Items {
		if e.Err != nil {
			errs = append(errs, e.Err)
			continue
		}
		sh, err := s.reg.Create(e.Item, s.scale)
		if err != nil {
			err = fmt.Errorf("item %d: %w", i, err)
			s.log.Warn("skip item", slog.Int("index", i), slog.String("type", e.Item.Type()), slog.Any("err", err))
			errs = append(errs, err)
			continue
		}
		s.items = append(s.items, sh)
	}
	s.stack.Clear()
	s.view.Zoom = 1
	s.view.CenterOn(s.Bounds().Center())
	s.log.Info("drawing loaded", slog.Int("items", len(s.items)), slog.Int("failed", len(errs)), slog.Float64("scale", s.scale))
	s.notify(ChangeLoad)
	return errs
}

// scaleFor picks the world to device factor of a drawing: its scale_factor,
// else a fit of its size into the view, else the configured default.
func (s *Scene) scaleFor(g drawing.General) float64 {
	if f, ok := g.Scale(); ok {
		return f
	}
	if len(g.Size) == 4 {
		w := g.Size[1] - g.Size[0]
		h := g.Size[3] - g.Size[2]
		var f float64
		if w > h {
			f = s.view.Width / w
		} else {
			f = s.view.Height / h
		}
		f *= s.opts.AutoScaleFill
		if f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	}
	return s.opts.ScaleFactor
}

// Drawing returns the persisted form of the current state.
func (s *Scene) Drawing() *drawing.Document {
	defs := make([]shape.Definition, 0, len(s.items))
	for _, it := range s.items {
		defs = append(defs, it.Serialize())
	}
	general := s.general
	if _, ok := general.Scale(); !ok && len(general.Size) != 4 {
		general.ScaleFactor = drawing.Float(s.scale)
	}
	return &drawing.Document{
		Version: s.version,
		General: general,
		Items:   drawing.Entries(defs...),
		Extra:   maps.Clone(s.extra),
	}
}

func (s *Scene) Zoom() float64 { return s.view.Zoom }

func (s *Scene) ZoomIn() bool {
	return s.ZoomInAt(geom.Pt(s.view.Width/2, s.view.Height/2))
}

func (s *Scene) ZoomOut() bool {
	return s.ZoomOutAt(geom.Pt(s.view.Width/2, s.view.Height/2))
}

// ZoomInAt zooms by the zoom factor around a view point. Beyond the zoom
// limit nothing happens.
func (s *Scene) ZoomInAt(anchor geom.Point) bool {
	z := s.view.Zoom * s.opts.ZoomFactor
	if z > s.opts.MaxZoom {
		return false
	}
	return s.zoomAt(anchor, z)
}

func (s *Scene) ZoomOutAt(anchor geom.Point) bool {
	z := s.view.Zoom / s.opts.ZoomFactor
	if z < s.opts.MinZoom {
		return false
	}
	return s.zoomAt(anchor, z)
}

// ZoomTo sets the zoom, clamped to the limits.
func (s *Scene) ZoomTo(z float64) bool {
	z = max(s.opts.MinZoom, min(s.opts.MaxZoom, z))
	return s.zoomAt(geom.Pt(s.view.Width/2, s.view.Height/2), z)
}

func (s *Scene) zoomAt(anchor geom.Point, z float64) bool {
	if z == s.view.Zoom {
		return false
	}
	s.view.ZoomAt(anchor, z)
	s.notify(ChangeView)
	return true
}

// Pan shifts the view by a delta in view pixels.
func (s *Scene) Pan(delta geom.Point) {
	s.view.Pan = s.view.Pan.Add(delta)
	s.notify(ChangeView)
}

func (s *Scene) ShowGrid(visible bool) {
	s.grid = visible
	s.notify(ChangeView)
}

func (s *Scene) GridVisible() bool { return s.grid }

// GridLines returns the grid over Bounds in device units, grid_size world
// units apart and aligned to multiples of the spacing.
func (s *Scene) GridLines() []geom.Segment {
	r := s.Bounds()
	step := s.general.Grid() * s.scale
	if step <= 0 || r.Empty() {
		return nil
	}
	if (r.W/step)+(r.H/step) > maxGridLines {
		return nil
	}
	var out []geom.Segment
	x0 := math.Floor(r.X/step) * step
	for x := x0; x <= r.X+r.W; x += step {
		if x < r.X {
			continue
		}
		out = append(out, geom.Segment{P1: geom.Pt(x, r.Y), P2: geom.Pt(x, r.Y+r.H)})
	}
	y0 := math.Floor(r.Y/step) * step
	for y := y0; y <= r.Y+r.H; y += step {
		if y < r.Y {
			continue
		}
		out = append(out, geom.Segment{P1: geom.Pt(r.X, y), P2: geom.Pt(r.X+r.W, y)})
	}
	return out
}
