/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/gogpu/gg"

	"godeklar/internal/geom"
	"godeklar/internal/scene"
)

// ggCanvas rasterizes primitives with gg.
type ggCanvas struct {
	dc *gg.Context
}

func setColor(dc *gg.Context, c color.NRGBA) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

func (c *ggCanvas) Path(pts []geom.Point, closed bool, p Paint) {
	if len(pts) < 2 {
		return
	}
	trace := func() {
		c.dc.MoveTo(pts[0].X, pts[0].Y)
		for _, q := range pts[1:] {
			c.dc.LineTo(q.X, q.Y)
		}
		if closed {
			c.dc.ClosePath()
		}
	}
	if closed && p.Fill.A != 0 {
		trace()
		setColor(c.dc, p.Fill)
		_ = c.dc.Fill()
	}
	if p.Stroke.A != 0 && p.Width > 0 {
		trace()
		c.stroke(p)
	}
	c.dc.ClearPath()
}

func (c *ggCanvas) Circle(center geom.Point, r float64, p Paint) {
	if r <= 0 {
		return
	}
	if p.Fill.A != 0 {
		c.dc.DrawCircle(center.X, center.Y, r)
		setColor(c.dc, p.Fill)
		_ = c.dc.Fill()
	}
	if p.Stroke.A != 0 && p.Width > 0 {
		c.dc.DrawCircle(center.X, center.Y, r)
		c.stroke(p)
	}
	c.dc.ClearPath()
}

func (c *ggCanvas) stroke(p Paint) {
	setColor(c.dc, p.Stroke)
	c.dc.SetLineWidth(p.Width)
	if len(p.Dash) > 0 {
		c.dc.SetDash(p.Dash...)
	} else {
		c.dc.ClearDash()
	}
	_ = c.dc.Stroke()
}

// Raster renders the scene into an image of the frame size.
func Raster(sc *scene.Scene, f Frame, opts Options) image.Image {
	w := max(int(math.Ceil(f.W)), 1)
	h := max(int(math.Ceil(f.H)), 1)
	dc := gg.NewContext(w, h)
	defer func() { _ = dc.Close() }()
	Render(sc, &ggCanvas{dc: dc}, f, opts)
	_ = dc.FlushGPU()
	return dc.Image()
}

// PNG writes the scene fitted into opts.Width x opts.Height.
func PNG(sc *scene.Scene, w io.Writer, opts Options) error {
	f := FitFrame(sc, opts)
	dc := gg.NewContext(max(int(f.W), 1), max(int(f.H), 1))
	defer func() { _ = dc.Close() }()
	Render(sc, &ggCanvas{dc: dc}, f, opts)
	_ = dc.FlushGPU()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNGFile writes PNG output to path, creating its directory.
func PNGFile(sc *scene.Scene, path string, opts Options) error {
	return writeFile(path, func(w io.Writer) error { return PNG(sc, w, opts) })
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
