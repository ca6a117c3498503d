/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineDistance(s Segment, p Point) float64 {
	d := s.P2.Sub(s.P1)
	q := p.Sub(s.P1)
	return math.Abs(d.X*q.Y-d.Y*q.X) / d.Len()
}

func cross(a, b Point) float64 { return a.X*b.Y - a.Y*b.X }

func TestScaleDescaleInverse(t *testing.T) {
	for _, f := range []float64{0.5, 1, 3, 100, 1e-3} {
		for _, v := range []float64{0, 1, -2.5, 1234.5678} {
			assert.InDelta(t, v, Descale(Scale(v, f), f), 1e-12)
		}
	}
}

func TestProjectPointToSegment(t *testing.T) {
	p1, p2 := Pt(0, 0), Pt(10, 0)
	assert.Equal(t, Pt(5, 0), ProjectPointToSegment(p1, p2, Pt(5, 7), true))
	assert.Equal(t, Pt(15, 0), ProjectPointToSegment(p1, p2, Pt(15, 3), false))
	assert.Equal(t, Pt(10, 0), ProjectPointToSegment(p1, p2, Pt(15, 3), true))
	assert.Equal(t, Pt(0, 0), ProjectPointToSegment(p1, p2, Pt(-4, 3), true))

	// degenerate segment returns p1 unchanged
	d := Pt(3, 4)
	assert.Equal(t, d, ProjectPointToSegment(d, Pt(3.001, 4.001), Pt(100, 100), false))
}

func TestDistancePointToSegment(t *testing.T) {
	p1, p2 := Pt(0, 0), Pt(0, 10)
	assert.InDelta(t, 4, DistancePointToSegment(p1, p2, Pt(4, 5)), 1e-12)
	assert.Equal(t, NotContained, DistancePointToSegment(p1, p2, Pt(1, 11)))
	assert.Equal(t, NotContained, DistancePointToSegment(p1, p2, Pt(1, -0.5)))
	assert.InDelta(t, 5, DistancePointToSegment(p1, p1, Pt(3, 4)), 1e-12)
}

func TestSlopeAndIntercept(t *testing.T) {
	l := SlopeAndIntercept(Pt(0, 1), Pt(2, 5))
	assert.False(t, l.Vertical)
	assert.InDelta(t, 2, l.A, 1e-12)
	assert.InDelta(t, 1, l.B, 1e-12)

	v := SlopeAndIntercept(Pt(3, 0), Pt(3, 8))
	assert.True(t, v.Vertical)
	assert.Equal(t, 3.0, v.B)

	same := SlopeAndIntercept(Pt(3, 0), Pt(3, 0))
	assert.True(t, math.IsInf(same.B, 1))

	assert.True(t, math.IsInf(PerpendicularSlope(0), 1))
	assert.InDelta(t, -0.5, PerpendicularSlope(2), 1e-12)
}

func TestPerpendicularOffsetPoints(t *testing.T) {
	cases := []struct {
		name   string
		p1, p2 Point
	}{
		{"horizontal", Pt(0, 0), Pt(10, 0)},
		{"vertical", Pt(2, -3), Pt(2, 9)},
		{"diagonal", Pt(0, 0), Pt(3, 4)},
		{"steep", Pt(1, 1), Pt(1.5, 40)},
		{"flat", Pt(-5, 2), Pt(50, 2.3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pts := PerpendicularOffsetPoints(tc.p1, tc.p2, 2.5)
			dir := tc.p2.Sub(tc.p1)
			for _, p := range pts {
				assert.InDelta(t, 2.5, Distance(tc.p2, p), 1e-9)
				off := p.Sub(tc.p2)
				// orthogonal to the segment direction
				assert.InDelta(t, 0, (dir.X*off.X+dir.Y*off.Y)/dir.Len(), 1e-2)
			}
			assert.NotEqual(t, pts[0], pts[1])
		})
	}
}

func TestPointBetweenAtDistanceKeepsLength(t *testing.T) {
	pivot := Pt(3, -2)
	for i := 0; i < 360; i += 7 {
		s, c := math.Sincos(float64(i) * math.Pi / 180)
		for _, r := range []float64{0.05, 1, 17, 250} {
			target := pivot.Add(Pt(c*r, s*r))
			p := PointBetweenAtDistance(pivot, target, 42)
			require.InDelta(t, 42, Distance(pivot, p), 1e-6, "angle %d radius %v", i, r)
		}
	}
	// coincident points still give the requested distance
	assert.InDelta(t, 5, Distance(pivot, PointBetweenAtDistance(pivot, pivot, 5)), 1e-12)
}

func TestPointBetweenAtDistanceDirection(t *testing.T) {
	p := PointBetweenAtDistance(Pt(0, 0), Pt(-30, -40), 5)
	assert.InDelta(t, -3, p.X, 1e-9)
	assert.InDelta(t, -4, p.Y, 1e-9)
	p = PointBetweenAtDistance(Pt(0, 0), Pt(0, -9), 2)
	assert.Equal(t, Pt(0, -2), p)
}

func TestParallelSegmentsSpacing(t *testing.T) {
	orientations := []Point{
		Pt(10, 0), Pt(-10, 0), Pt(0, 10), Pt(0, -10),
		Pt(3, 4), Pt(-7, 2), Pt(1, -9), Pt(100, 0.5),
	}
	for _, w := range []float64{0.1, 1, 10} {
		for _, o := range orientations {
			p1 := Pt(5, 7)
			p2 := p1.Add(o)
			segs := ParallelSegments(p1, p2, w/2)
			center := Segment{p1, p2}
			for _, s := range segs {
				// parallel to the center line
				assert.InDelta(t, 0, cross(s.P2.Sub(s.P1), o)/(o.Len()*s.Len()), 1e-6)
				assert.InDelta(t, w/2, lineDistance(center, s.P1), 1e-6)
			}
			// the two borders lie on opposite sides, width apart
			assert.InDelta(t, w, lineDistance(segs[0], segs[1].P1), 1e-6, "w=%v o=%v", w, o)
		}
	}
}

func TestSegmentIntersection(t *testing.T) {
	p, ok := SegmentIntersection(Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0))
	require.True(t, ok)
	assert.InDelta(t, 5, p.X, 1e-12)
	assert.InDelta(t, 5, p.Y, 1e-12)

	_, ok = SegmentIntersection(Pt(0, 0), Pt(1, 1), Pt(0, 1), Pt(1, 2))
	assert.False(t, ok)
	_, ok = SegmentIntersection(Pt(0, 0), Pt(1, 0), Pt(5, -1), Pt(5, 1))
	assert.False(t, ok)
}

func TestRotateAroundAndArrow(t *testing.T) {
	p := RotateAround(Pt(2, 0), Pt(1, 0), 90)
	assert.InDelta(t, 1, p.X, 1e-12)
	assert.InDelta(t, 1, p.Y, 1e-12)

	barbs := ArrowHead(Pt(0, 0), Pt(10, 0), 2, 45)
	for _, b := range barbs {
		assert.InDelta(t, 2, Distance(b, Pt(10, 0)), 1e-12)
		assert.Less(t, b.X, 10.0)
	}
	assert.InDelta(t, -barbs[0].Y, barbs[1].Y, 1e-12)
}

func TestAffineInvert(t *testing.T) {
	m := Translate(10, -4).Mul(Scaling(2, -2)).Mul(Rotation(0.3))
	p := Pt(3.5, -1.25)
	back := m.Invert().Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-12)
	assert.InDelta(t, p.Y, back.Y, 1e-12)
}

func TestRectUnion(t *testing.T) {
	r := Rect{}.Union(R(1, 1, 2, 2)).Union(R(-1, 0, 1, 1))
	assert.Equal(t, R(-1, 0, 4, 3), r)
	assert.True(t, r.Contains(Pt(0, 2)))
	assert.Equal(t, R(0, 0, 3, 4), RectFromPoints(Pt(3, 0), Pt(0, 4)))
}
