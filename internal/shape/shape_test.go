/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package shape

import (
	"errors"
	"math"
	"strings"
	"testing"

	"godeklar/internal/geom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustCreate(t *testing.T, reg *Registry, def Definition, scale float64) Shape {
	t.Helper()
	s, err := reg.Create(def, scale)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func assertPointKey(t *testing.T, want, got Definition, key string) {
	t.Helper()
	wp, err := want.Point(key)
	require.NoError(t, err)
	gp, err := got.Point(key)
	require.NoError(t, err)
	assert.InDelta(t, wp.X, gp.X, 1e-6, key)
	assert.InDelta(t, wp.Y, gp.Y, 1e-6, key)
}

func TestRoundTrip(t *testing.T) {
	reg := NewRegistry(nil)
	defs := []Definition{
		Def("line", KeyStart, []float64{0, 0}, KeyEnd, []float64{1, 2}, KeyColor, "red", KeyWidth, 0.2),
		Def("corridor", KeyStart, []float64{-3.25, 4}, KeyEnd, []float64{7, 4}, KeyWidth, 1.5, KeyName, "hall"),
		Def("circle", KeyCenter, []float64{0, 0}, KeyRadius, 1),
		Def("rectangle", KeyCenter, []float64{2, -1}, KeyWidth, 3, KeyHeight, 0.75, KeyRotation, 30),
	}
	for _, scale := range []float64{1, 37.5, 100} {
		for _, def := range defs {
			s := mustCreate(t, reg, def, scale)
			out := s.Serialize()
			back := mustCreate(t, reg, out, scale)
			assert.Equal(t, def.Type(), back.Type())
			for _, k := range []string{KeyStart, KeyEnd, KeyCenter} {
				if def.Has(k) {
					assertPointKey(t, def, back.Serialize(), k)
				}
			}
			for _, k := range []string{KeyRadius, KeyWidth, KeyHeight, KeyRotation} {
				if def.Has(k) {
					assert.InDelta(t, def.Float(k, 0), back.Serialize().Float(k, -1), 1e-6, k)
				}
			}
			assert.Equal(t, def.String(KeyName, ""), back.Name())
		}
	}
}

func TestSerializeAfterTranslate(t *testing.T) {
	reg := NewRegistry(nil)
	s := mustCreate(t, reg, Def("line", KeyStart, []float64{1, 1}, KeyEnd, []float64{2, 3}), 50)
	s.Translate(geom.Pt(50, -100))
	out := s.Serialize()
	assertPointKey(t, Def("line", KeyStart, []float64{2, -1}), out, KeyStart)
	assertPointKey(t, Def("line", KeyEnd, []float64{3, 1}), out, KeyEnd)
}

func TestLineHitWidthFloor(t *testing.T) {
	reg := NewRegistry(nil)
	// device width 1 at scale 1, length 10
	s := mustCreate(t, reg, Def("line", KeyStart, []float64{0, 0}, KeyEnd, []float64{10, 0}, KeyWidth, 1), 1)
	for _, p := range []geom.Point{{X: 5, Y: 0}, {X: 5, Y: 9.9}, {X: 5, Y: -9.9}, {X: 0, Y: 3}, {X: 10, Y: -9.5}} {
		assert.True(t, s.Contains(p), "expected hit at %v", p)
	}
	for _, p := range []geom.Point{{X: 5, Y: 10.1}, {X: 5, Y: -10.5}, {X: -0.5, Y: 0}, {X: 10.5, Y: 0}, {X: 5, Y: 40}} {
		assert.False(t, s.Contains(p), "expected miss at %v", p)
	}

	wide := mustCreate(t, reg, Def("line", KeyStart, []float64{0, 0}, KeyEnd, []float64{10, 0}, KeyWidth, 30), 1)
	assert.True(t, wide.Contains(geom.Pt(5, 14)))
	assert.False(t, wide.Contains(geom.Pt(5, 31)))
}

func TestCircleAndRectangleContains(t *testing.T) {
	reg := NewRegistry(nil)
	c := mustCreate(t, reg, Def("circle", KeyCenter, []float64{1, 1}, KeyRadius, 2), 10)
	assert.True(t, c.Contains(geom.Pt(10, 10)))
	assert.True(t, c.Contains(geom.Pt(29, 10)))
	assert.False(t, c.Contains(geom.Pt(30, 10)))

	r := mustCreate(t, reg, Def("rectangle", KeyCenter, []float64{0, 0}, KeyWidth, 4, KeyHeight, 2, KeyRotation, 90), 1)
	// rotated by 90 degrees the box spans 2 in x and 4 in y
	assert.True(t, r.Contains(geom.Pt(0, 1.9)))
	assert.True(t, r.Contains(geom.Pt(0.9, 0)))
	assert.False(t, r.Contains(geom.Pt(1.5, 0)))
	assert.False(t, r.Contains(geom.Pt(0, 2.1)))
}

func borderSpacing(t *testing.T, c *Corridor) {
	t.Helper()
	p1, p2 := c.Endpoints()
	dir := p2.Sub(p1)
	b := c.Borders()
	for _, s := range b {
		d := s.P2.Sub(s.P1)
		cross := dir.X*d.Y - dir.Y*d.X
		require.InDelta(t, 0, cross/(dir.Len()*d.Len()), 1e-6, "border not parallel")
	}
	// perpendicular distance between the border lines
	d := b[0].P2.Sub(b[0].P1)
	q := b[1].P1.Sub(b[0].P1)
	dist := math.Abs(d.X*q.Y-d.Y*q.X) / d.Len()
	require.InDelta(t, c.Width(), dist, 1e-6)
}

func TestCorridorBordersFollowEdits(t *testing.T) {
	reg := NewRegistry(nil)
	ends := [][2]geom.Point{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 0, Y: 0}, {X: 0, Y: 10}},
		{{X: 1, Y: 2}, {X: 4, Y: 6}},
		{{X: 5, Y: -5}, {X: -3, Y: 1}},
		{{X: 0, Y: 0}, {X: -10, Y: 0}},
		{{X: 2, Y: 8}, {X: 2, Y: -8}},
	}
	for _, w := range []float64{0.1, 1, 10} {
		for _, e := range ends {
			def := Def("corridor", KeyStart, e[0], KeyEnd, e[1], KeyWidth, w)
			s := mustCreate(t, reg, def, 1)
			c := s.(*Corridor)
			assert.InDelta(t, w, c.Width(), 1e-12)
			borderSpacing(t, c)

			c.Translate(geom.Pt(3.5, -7.25))
			borderSpacing(t, c)

			c.SetEndpoint(false, geom.Pt(40, 40))
			borderSpacing(t, c)
			c.SetEndpoint(true, geom.Pt(40, -10)) // vertical
			borderSpacing(t, c)
			c.SetEndpoint(true, geom.Pt(-2, 40)) // horizontal
			borderSpacing(t, c)
		}
	}
}

func TestCreateErrors(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.Create(NewDefinition(map[string]any{"start": []any{0, 0}}), 1)
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = reg.Create(Def("polygon"), 1)
	var ute *UnknownTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "polygon", ute.Type)

	_, err = reg.Create(Def("line"), 1)
	var mpe *MissingPropertyError
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, "start", mpe.Property)

	_, err = reg.Create(Def("corridor", KeyStart, []float64{0, 0}, KeyEnd, []float64{1, 0}), 1)
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, "width", mpe.Property)

	_, err = reg.Create(Def("circle", KeyCenter, "middle", KeyRadius, 1), 1)
	var ipe *InvalidPropertyError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, KeyCenter, ipe.Property)

	md, err := ParseMetadata([]byte("items:\n  - item: {type: star, constructor: Star, required_properties: [center]}\n"))
	require.NoError(t, err)
	_, err = NewRegistry(md).Create(Def("star", KeyCenter, []float64{0, 0}), 1)
	var uce *UnknownConstructorError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, "Star", uce.Constructor)
}

func TestCustomConstructor(t *testing.T) {
	md, err := ParseMetadata([]byte("items:\n  - item: {type: ring, constructor: Ring, required_properties: [center, radius]}\n"))
	require.NoError(t, err)
	reg := NewRegistry(md)
	reg.Register("Ring", factoryOf(NewCircle))
	s, err := reg.Create(Def("ring", KeyCenter, []float64{1, 1}, KeyRadius, 1), 2)
	require.NoError(t, err)
	assert.Equal(t, "ring", s.Type())
	assert.Contains(t, reg.Constructors(), "Ring")
}

func TestUpdateProperties(t *testing.T) {
	reg := NewRegistry(nil)
	s := mustCreate(t, reg, Def("circle", KeyCenter, []float64{0.1, 0.7}, KeyRadius, 0.3), 3)
	s.Translate(geom.Pt(0.01, 0.02))
	g := s.Geometry()

	require.NoError(t, s.UpdateProperties(map[string]any{KeyColor: "orange", KeyAlpha: 5}))
	assert.Equal(t, g, s.Geometry(), "cosmetic edits must keep geometry bit-identical")
	assert.Equal(t, "orange", s.Style().Color)
	assert.Equal(t, uint8(127), s.Style().Alpha)

	require.NoError(t, s.UpdateProperties(map[string]any{KeyRadius: 2}))
	assert.InDelta(t, 6, s.(*Circle).Radius(), 1e-12)

	err := s.UpdateProperties(map[string]any{KeyRadius: "big"})
	require.Error(t, err)
	assert.InDelta(t, 6, s.(*Circle).Radius(), 1e-12, "failed edit must leave the shape untouched")

	assert.Error(t, s.UpdateProperties(map[string]any{KeyType: "line"}))
}

func TestCloneIsIndependent(t *testing.T) {
	reg := NewRegistry(nil)
	s := mustCreate(t, reg, Def("line", KeyStart, []float64{0, 0}, KeyEnd, []float64{1, 0}), 10)
	c, err := reg.Clone(s)
	require.NoError(t, err)
	c.Translate(geom.Pt(5, 5))
	p1, _ := s.(*Line).Endpoints()
	assert.Equal(t, geom.Pt(0, 0), p1)
	assert.Equal(t, s.ScaleFactor(), c.ScaleFactor())
}

func TestDefinitionIsImmutable(t *testing.T) {
	d := Def("line", KeyStart, []float64{0, 0})
	d2 := d.With(KeyColor, "red")
	assert.False(t, d.Has(KeyColor))
	assert.True(t, d2.Has(KeyColor))

	m := d.Map()
	m[KeyStart].([]any)[0] = 99.0
	p, err := d.Point(KeyStart)
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(0, 0), p)

	d3 := d.Merge(map[string]any{KeyStart: geom.Pt(3, 4)})
	p, _ = d3.Point(KeyStart)
	assert.Equal(t, geom.Pt(3, 4), p)
	assert.False(t, d3.Without(KeyStart).Has(KeyStart))
}

func TestDefinitionYAML(t *testing.T) {
	d := Def("line", KeyStart, []float64{0, 0.5}, KeyEnd, []int{1, 2}, KeyColor, "red")
	b, err := yaml.Marshal(d)
	require.NoError(t, err)
	out := string(b)
	assert.True(t, strings.HasPrefix(out, "type: line\n"), out)
	assert.Contains(t, out, "start: [0, 0.5]")

	var back Definition
	require.NoError(t, yaml.Unmarshal(b, &back))
	assert.Equal(t, "line", back.Type())
	p, err := back.Point(KeyEnd)
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(1, 2), p)
}

func TestEditableAndDefaults(t *testing.T) {
	reg := NewRegistry(nil)
	for _, typ := range reg.Metadata().Types() {
		def, err := reg.DefaultDefinition(typ)
		require.NoError(t, err)
		s := mustCreate(t, reg, def, 100)
		props := reg.EditableProperties(s)
		assert.NotContains(t, props, KeyType)
	}
	_, err := reg.DefaultDefinition("nope")
	var ute *UnknownTypeError
	assert.True(t, errors.As(err, &ute))

	s := mustCreate(t, reg, Def("line", KeyStart, []float64{0, 0}, KeyEnd, []float64{1, 0}, KeyName, "a"), 1)
	assert.Equal(t, "a", reg.EditableProperties(s)[KeyName])
	assert.Equal(t, "line a", s.TypeAndName())
}
