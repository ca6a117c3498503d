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
	"bytes"
	"fmt"
	"io"
	"strings"

	"godeklar/internal/geom"
	"godeklar/internal/scene"
)

// svgCanvas collects SVG elements; the first write error sticks.
type svgCanvas struct {
	buf  bytes.Buffer
	werr error
}

func (c *svgCanvas) wf(format string, args ...any) {
	if c.werr != nil {
		return
	}
	_, c.werr = fmt.Fprintf(&c.buf, format, args...)
}

func (c *svgCanvas) Path(pts []geom.Point, closed bool, p Paint) {
	if len(pts) < 2 {
		return
	}
	var d strings.Builder
	for i, q := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&d, "%s%.3f %.3f ", cmd, q.X, q.Y)
	}
	if closed {
		d.WriteString("Z")
	}
	if !closed {
		p.Fill.A = 0
	}
	c.wf("  <path d=\"%s\"%s/>\n", strings.TrimSpace(d.String()), svgPaint(p))
}

func (c *svgCanvas) Circle(center geom.Point, r float64, p Paint) {
	if r <= 0 {
		return
	}
	c.wf("  <circle cx=\"%.3f\" cy=\"%.3f\" r=\"%.3f\"%s/>\n", center.X, center.Y, r, svgPaint(p))
}

func svgPaint(p Paint) string {
	var b strings.Builder
	if p.Fill.A == 0 {
		b.WriteString(` fill="none"`)
	} else {
		fmt.Fprintf(&b, ` fill="%s"`, hexString(p.Fill))
		if p.Fill.A != 255 {
			fmt.Fprintf(&b, ` fill-opacity="%.3f"`, float64(p.Fill.A)/255)
		}
	}
	if p.Stroke.A != 0 && p.Width > 0 {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%.3f"`, hexString(p.Stroke), p.Width)
		if p.Stroke.A != 255 {
			fmt.Fprintf(&b, ` stroke-opacity="%.3f"`, float64(p.Stroke.A)/255)
		}
		if len(p.Dash) > 0 {
			parts := make([]string, len(p.Dash))
			for i, v := range p.Dash {
				parts[i] = fmt.Sprintf("%g", v)
			}
			fmt.Fprintf(&b, ` stroke-dasharray="%s"`, strings.Join(parts, " "))
		}
	}
	return b.String()
}

// SVG writes the scene as a standalone SVG document.
func SVG(sc *scene.Scene, w io.Writer, opts Options) error {
	f := FitFrame(sc, opts)
	c := &svgCanvas{}
	c.wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	c.wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n", f.W, f.H, f.W, f.H)
	if d := sc.General().Description; d != "" {
		c.wf("  <title>%s</title>\n", escText(d))
	}
	Render(sc, c, f, opts)
	c.wf("</svg>\n")
	if c.werr != nil {
		return fmt.Errorf("build svg: %w", c.werr)
	}
	_, err := w.Write(c.buf.Bytes())
	return err
}

// SVGFile writes SVG output to path, creating its directory.
func SVGFile(sc *scene.Scene, path string, opts Options) error {
	return writeFile(path, func(w io.Writer) error { return SVG(sc, w, opts) })
}

func escText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
