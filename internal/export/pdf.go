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
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"godeklar/internal/geom"
	"godeklar/internal/scene"
	"godeklar/internal/version"
)

// pdfCanvas draws primitives as vector paths; target units are points.
type pdfCanvas struct {
	pdf *gofpdf.Fpdf
}

func (c *pdfCanvas) style(p Paint, closed bool) string {
	fill := closed && p.Fill.A != 0
	stroke := p.Stroke.A != 0 && p.Width > 0
	if fill {
		c.pdf.SetFillColor(int(p.Fill.R), int(p.Fill.G), int(p.Fill.B))
	}
	if stroke {
		c.pdf.SetDrawColor(int(p.Stroke.R), int(p.Stroke.G), int(p.Stroke.B))
		c.pdf.SetLineWidth(p.Width)
		if len(p.Dash) > 0 {
			c.pdf.SetDashPattern(p.Dash, 0)
		} else {
			c.pdf.SetDashPattern(nil, 0)
		}
	}
	// gofpdf has a single alpha for fill and stroke
	a := p.Fill.A
	if !fill {
		a = p.Stroke.A
	}
	c.pdf.SetAlpha(float64(a)/255, "Normal")
	switch {
	case fill && stroke:
		return "FD"
	case fill:
		return "F"
	case stroke:
		return "D"
	}
	return ""
}

func (c *pdfCanvas) Path(pts []geom.Point, closed bool, p Paint) {
	if len(pts) < 2 {
		return
	}
	st := c.style(p, closed)
	if st == "" {
		return
	}
	if closed {
		ps := make([]gofpdf.PointType, len(pts))
		for i, q := range pts {
			ps[i] = gofpdf.PointType{X: q.X, Y: q.Y}
		}
		c.pdf.Polygon(ps, st)
		return
	}
	for i := 1; i < len(pts); i++ {
		c.pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
	}
}

func (c *pdfCanvas) Circle(center geom.Point, r float64, p Paint) {
	if r <= 0 {
		return
	}
	if st := c.style(p, true); st != "" {
		c.pdf.Circle(center.X, center.Y, r, st)
	}
}

// PDF writes the scene as a single page vector PDF at path. The page is the
// fitted frame in points.
func PDF(sc *scene.Scene, path string, opts Options) error {
	f := FitFrame(sc, opts)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: f.W, Ht: f.H},
	})
	title := sc.General().Description
	if title == "" {
		title = filepath.Base(path)
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("godeklar "+version.String(), true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: f.W, Ht: f.H})

	Render(sc, &pdfCanvas{pdf: pdf}, f, opts)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
