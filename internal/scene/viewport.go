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

import "godeklar/internal/geom"

// Viewport maps device coordinates (y up) to view pixels (y down).
type Viewport struct {
	Zoom   float64
	Pan    geom.Point // view position of the device origin
	Width  float64
	Height float64
}

func newViewport(w, h float64) Viewport {
	return Viewport{Zoom: 1, Pan: geom.Pt(w/2, h/2), Width: w, Height: h}
}

// Matrix is the device to view transform.
func (v Viewport) Matrix() geom.Affine {
	return geom.Translate(v.Pan.X, v.Pan.Y).Mul(geom.Scaling(v.Zoom, -v.Zoom))
}

func (v Viewport) ToView(p geom.Point) geom.Point   { return v.Matrix().Apply(p) }
func (v Viewport) ToDevice(p geom.Point) geom.Point { return v.Matrix().Invert().Apply(p) }

// ZoomAt changes the zoom keeping the device point under anchor in place.
func (v *Viewport) ZoomAt(anchor geom.Point, zoom float64) {
	d := v.ToDevice(anchor)
	v.Zoom = zoom
	v.Pan = anchor.Sub(geom.Pt(d.X*zoom, -d.Y*zoom))
}

// CenterOn puts the device point in the middle of the view.
func (v *Viewport) CenterOn(p geom.Point) {
	c := geom.Pt(v.Width/2, v.Height/2)
	v.Pan = c.Sub(geom.Pt(p.X*v.Zoom, -p.Y*v.Zoom))
}

// Resize keeps the device point at the view center fixed.
func (v *Viewport) Resize(w, h float64) {
	center := v.ToDevice(geom.Pt(v.Width/2, v.Height/2))
	v.Width, v.Height = w, h
	v.CenterOn(center)
}
