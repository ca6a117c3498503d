/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders a scene to PNG, SVG and PDF. All three formats share
// one walk over the scene and differ only in the Canvas that receives the
// primitives.
package export

import (
	"image/color"
	"math"

	"godeklar/internal/geom"
	"godeklar/internal/scene"
	"godeklar/internal/shape"
)

// Paint describes how a primitive is filled and stroked. A zero alpha
// disables the respective part.
type Paint struct {
	Fill   color.NRGBA
	Stroke color.NRGBA
	Width  float64
	Dash   []float64
}

// Canvas receives primitives in target coordinates (y pointing down).
type Canvas interface {
	Path(pts []geom.Point, closed bool, p Paint)
	Circle(center geom.Point, r float64, p Paint)
}

type Options struct {
	// Width and Height size the output; zero derives them from the content
	// at one pixel (point) per device unit.
	Width, Height int
	// Margin is added around the content, in device units.
	Margin float64
	Grid   bool
	// Handles draws the handles of the current selection.
	Handles bool
}

var (
	white     = color.NRGBA{255, 255, 255, 255}
	black     = color.NRGBA{0, 0, 0, 255}
	gridColor = color.NRGBA{200, 200, 200, 255}
	handleCol = color.NRGBA{30, 110, 220, 255}
)

// Frame maps device coordinates to the target.
type Frame struct {
	W, H   float64
	Matrix geom.Affine
	// K is the target length of one device unit.
	K float64
}

// FitFrame fits the scene bounds plus margin into the requested size,
// centred and with the y axis flipped.
func FitFrame(sc *scene.Scene, opts Options) Frame {
	r := sc.Bounds()
	if r.Empty() {
		r = geom.R(-50, -50, 100, 100)
	}
	r = r.Inset(-opts.Margin, -opts.Margin)
	r.W, r.H = max(r.W, 1), max(r.H, 1)
	w, h := float64(opts.Width), float64(opts.Height)
	switch {
	case w <= 0 && h <= 0:
		w, h = math.Ceil(r.W), math.Ceil(r.H)
	case w <= 0:
		w = math.Ceil(h * r.W / r.H)
	case h <= 0:
		h = math.Ceil(w * r.H / r.W)
	}
	k := min(w/r.W, h/r.H)
	ox := (w - r.W*k) / 2
	oy := (h - r.H*k) / 2
	m := geom.Translate(ox, oy).
		Mul(geom.Scaling(k, -k)).
		Mul(geom.Translate(-r.X, -(r.Y + r.H)))
	return Frame{W: w, H: h, Matrix: m, K: k}
}

// ViewFrame uses the scene viewport, as the interactive editor shows it.
func ViewFrame(sc *scene.Scene) Frame {
	v := sc.Viewport()
	return Frame{W: v.Width, H: v.Height, Matrix: v.Matrix(), K: v.Zoom}
}

// Render walks the scene: page, background, grid, visible shapes in z-order
// and optionally the handles.
func Render(sc *scene.Scene, cv Canvas, f Frame, opts Options) {
	cv.Path(rectPath(geom.R(0, 0, f.W, f.H)), true, Paint{Fill: white})

	g := sc.General()
	back := colorOr(backColor(sc), alphaByte(g.Alpha()), white)
	if r, ok := sc.BackgroundRect(); ok {
		cv.Path(f.points(corners(r)...), true, Paint{Fill: back})
	} else if back.A != 0 {
		cv.Path(rectPath(geom.R(0, 0, f.W, f.H)), true, Paint{Fill: back})
	}

	if opts.Grid || sc.GridVisible() {
		for _, s := range sc.GridLines() {
			cv.Path(f.points(s.P1, s.P2), false, Paint{Stroke: gridColor, Width: 0.5})
		}
	}

	for _, it := range sc.Items() {
		if it.Visible() {
			renderShape(cv, f, it)
		}
	}

	if opts.Handles {
		for _, h := range sc.Handles() {
			size := sc.Options().HandleSize / 2
			cv.Circle(f.Matrix.Apply(h.Position()), size, Paint{Fill: white, Stroke: handleCol, Width: 1.5})
		}
	}
}

func backColor(sc *scene.Scene) string {
	if c := sc.General().BackColor; c != "" {
		return c
	}
	return sc.Options().BackColor
}

func alphaByte(a10 float64) uint8 {
	a10 = max(0, min(10, a10))
	return uint8(math.Round(a10 * 255 / 10))
}

func renderShape(cv Canvas, f Frame, it shape.Shape) {
	st := it.Style()
	col := colorOr(st.Color, st.Alpha, black)
	switch s := it.(type) {
	case *shape.Corridor:
		a, b := s.Endpoints()
		cv.Path(f.points(a, b), false, Paint{Stroke: col, Width: 1, Dash: []float64{4, 3}})
		if st.ShowBorders {
			for _, br := range s.Borders() {
				cv.Path(f.points(br.P1, br.P2), false, Paint{Stroke: col, Width: max(st.BorderWidth, 0.5)})
			}
		}
		if st.Arrow {
			arrow(cv, f, &s.Line, col)
		}
	case *shape.Line:
		a, b := s.Endpoints()
		cv.Path(f.points(a, b), false, Paint{Stroke: col, Width: f.width(st.LineWidth)})
		if st.Arrow {
			arrow(cv, f, s, col)
		}
	case *shape.Circle:
		p := Paint{Fill: col}
		if st.ShowBorders {
			p.Stroke, p.Width = opaque(col), max(st.BorderWidth, 0.5)
		}
		cv.Circle(f.Matrix.Apply(s.Center()), s.Radius()*f.K, p)
	case *shape.Rectangle:
		c := s.Corners()
		p := Paint{Fill: col}
		if st.ShowBorders {
			p.Stroke, p.Width = opaque(col), max(st.BorderWidth, 0.5)
		}
		cv.Path(f.points(c[:]...), true, p)
	default:
		cv.Path(f.points(corners(it.Bounds())...), true, Paint{Stroke: col, Width: 1})
	}
}

func arrow(cv Canvas, f Frame, l *shape.Line, col color.NRGBA) {
	_, end := l.Endpoints()
	barbs := l.ArrowHead()
	cv.Path(f.points(barbs[0], end, barbs[1]), false, Paint{Stroke: col, Width: f.width(l.Style().LineWidth)})
}

func opaque(c color.NRGBA) color.NRGBA {
	c.A = 255
	return c
}

func (f Frame) points(pts ...geom.Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = f.Matrix.Apply(p)
	}
	return out
}

// width converts a device width, never thinner than a hairline.
func (f Frame) width(w float64) float64 { return max(w*f.K, 1) }

func corners(r geom.Rect) []geom.Point {
	return []geom.Point{r.Min(), geom.Pt(r.X+r.W, r.Y), r.Max(), geom.Pt(r.X, r.Y+r.H)}
}

func rectPath(r geom.Rect) []geom.Point { return corners(r) }