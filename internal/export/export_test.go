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
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"godeklar/internal/drawing"
	"godeklar/internal/geom"
	"godeklar/internal/scene"
	"godeklar/internal/shape"
)

func sampleScene(t *testing.T) *scene.Scene {
	t.Helper()
	sc := scene.New(scene.DefaultOptions(), nil)
	g := drawing.General{ScaleFactor: drawing.Float(100), Size: []float64{0, 4, 0, 3}, Description: "plan <A>"}
	errs := sc.Load(drawing.New(g,
		shape.Def("circle", shape.KeyCenter, geom.Pt(1, 2), shape.KeyRadius, 0.5, shape.KeyColor, "red"),
		shape.Def("line", shape.KeyStart, geom.Pt(0, 0), shape.KeyEnd, geom.Pt(4, 3)),
		shape.Def("rectangle", shape.KeyCenter, geom.Pt(3, 1), shape.KeyWidth, 1, shape.KeyHeight, 1, shape.KeyVisible, false),
	))
	if len(errs) != 0 {
		t.Fatalf("load: %v", errs)
	}
	return sc
}

type recorder struct {
	paths   [][]geom.Point
	circles []geom.Point
	radii   []float64
}

func (r *recorder) Path(pts []geom.Point, closed bool, p Paint) { r.paths = append(r.paths, pts) }
func (r *recorder) Circle(c geom.Point, rad float64, p Paint) {
	r.circles = append(r.circles, c)
	r.radii = append(r.radii, rad)
}

func TestFitFrameFlipsY(t *testing.T) {
	f := FitFrame(sampleScene(t), Options{})
	if f.W != 400 || f.H != 300 || f.K != 1 {
		t.Fatalf("frame = %+v", f)
	}
	if got := f.Matrix.Apply(geom.Pt(0, 0)); !got.Eq(geom.Pt(0, 300), 1e-9) {
		t.Fatalf("origin maps to %v", got)
	}
	if got := f.Matrix.Apply(geom.Pt(400, 300)); !got.Eq(geom.Pt(400, 0), 1e-9) {
		t.Fatalf("top right maps to %v", got)
	}
}

func TestFitFrameKeepsAspect(t *testing.T) {
	f := FitFrame(sampleScene(t), Options{Width: 800, Height: 800})
	if f.K != 2 {
		t.Fatalf("k = %v", f.K)
	}
	// 600 px of content centred in 800
	if got := f.Matrix.Apply(geom.Pt(0, 300)); !got.Eq(geom.Pt(0, 100), 1e-9) {
		t.Fatalf("top left maps to %v", got)
	}
	f = FitFrame(sampleScene(t), Options{Width: 200})
	if f.H != 150 {
		t.Fatalf("derived height = %v", f.H)
	}
}

func TestRenderSkipsHiddenShapes(t *testing.T) {
	sc := sampleScene(t)
	f := FitFrame(sc, Options{})
	var r recorder
	Render(sc, &r, f, Options{})
	// page, background, line
	if len(r.paths) != 3 || len(r.circles) != 1 {
		t.Fatalf("paths=%d circles=%d", len(r.paths), len(r.circles))
	}
	if !r.circles[0].Eq(geom.Pt(100, 100), 1e-9) || r.radii[0] != 50 {
		t.Fatalf("circle at %v r=%v", r.circles[0], r.radii[0])
	}

	var withGrid recorder
	Render(sc, &withGrid, f, Options{Grid: true})
	if len(withGrid.paths) != 3+9 {
		t.Fatalf("grid paths = %d", len(withGrid.paths))
	}
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(sampleScene(t), &buf, Options{}); err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Fatalf("size = %v", b)
	}
	c := color.NRGBAModel.Convert(img.At(100, 100)).(color.NRGBA)
	if c.R < 200 || c.G > 60 || c.B > 60 {
		t.Fatalf("circle centre colour = %v", c)
	}
	c = color.NRGBAModel.Convert(img.At(390, 290)).(color.NRGBA)
	if c.R < 240 || c.G < 240 || c.B < 240 {
		t.Fatalf("empty area colour = %v", c)
	}
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(sampleScene(t), &buf, Options{}); err != nil {
		t.Fatalf("SVG: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`viewBox="0 0 400 300"`, `<title>plan &lt;A&gt;</title>`, `<circle cx="100.000" cy="100.000" r="50.000" fill="#ff0000"`, `</svg>`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
	if strings.Count(out, "<circle") != 1 {
		t.Fatalf("hidden shapes must not be exported")
	}
}

func TestPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "plan.pdf")
	if err := PDF(sampleScene(t), path, Options{Margin: 10}); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("not a pdf")
	}
}

func TestPNGFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b.png")
	if err := PNGFile(sampleScene(t), path, Options{Width: 100}); err != nil {
		t.Fatal(err)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Fatalf("png not written: %v", err)
	}
}

func TestFileByExtension(t *testing.T) {
	dir := t.TempDir()
	sc := sampleScene(t)
	for _, name := range []string{"a.svg", "b.PNG", "c.pdf"} {
		path := filepath.Join(dir, name)
		if err := File(sc, path, Options{Width: 100}); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s not written", name)
		}
	}
	if err := File(sc, filepath.Join(dir, "d.gif"), Options{}); err == nil {
		t.Fatalf("gif should be rejected")
	}
}

func TestRasterUsesViewport(t *testing.T) {
	sc := sampleScene(t)
	img := Raster(sc, ViewFrame(sc), Options{Handles: true})
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("raster size = %v", b)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
		err  bool
	}{
		{"red", color.NRGBA{255, 0, 0, 255}, false},
		{"Dark Blue", color.NRGBA{0, 0, 139, 255}, false},
		{"k", color.NRGBA{0, 0, 0, 255}, false},
		{"#0f0", color.NRGBA{0, 255, 0, 255}, false},
		{"#11223380", color.NRGBA{0x11, 0x22, 0x33, 0x80}, false},
		{"none", color.NRGBA{}, false},
		{"#12", color.NRGBA{}, true},
		{"blurple", color.NRGBA{}, true},
	}
	for _, c := range cases {
		got, err := ParseColor(c.in)
		if (err != nil) != c.err {
			t.Fatalf("%q: err = %v", c.in, err)
		}
		if !c.err && got != c.want {
			t.Fatalf("%q = %v, want %v", c.in, got, c.want)
		}
	}
	if got := colorOr("nope", 128, black); got.A != 128 || got.R != 0 {
		t.Fatalf("fallback = %v", got)
	}
}
