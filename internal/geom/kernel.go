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

import "math"

const (
	// NotContained is returned by DistancePointToSegment when the projection
	// falls outside the segment.
	NotContained = 999999.0

	degenerateEps = 1e-4
	axisEps       = 1e-3
	slopeEps      = 1e-5
	// AxisPrecision decides when PointBetweenAtDistance treats two points as
	// sharing an x or y coordinate.
	AxisPrecision = 0.08
)

// Scale maps a world value to device units.
func Scale(v, factor float64) float64 { return v * factor }

// Descale maps a device value back to world units.
func Descale(v, factor float64) float64 { return v / factor }

func ScalePoint(p Point, factor float64) Point   { return Point{p.X * factor, p.Y * factor} }
func DescalePoint(p Point, factor float64) Point { return Point{p.X / factor, p.Y / factor} }

func Distance(a, b Point) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

func Midpoint(a, b Point) Point { return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2} }

// segmentParameter returns u for the projection of p3 on p1p2 and the squared
// segment length.
func segmentParameter(p1, p2, p3 Point) (u, d2 float64) {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	d2 = dx*dx + dy*dy
	if d2 < degenerateEps {
		return 0, d2
	}
	u = ((p3.X-p1.X)*dx + (p3.Y-p1.Y)*dy) / d2
	return u, d2
}

// ProjectPointToSegment projects p3 orthogonally onto the line through p1 and
// p2. With clamp the result is kept inside [p1, p2]. A degenerate segment
// returns p1.
func ProjectPointToSegment(p1, p2, p3 Point, clamp bool) Point {
	u, d2 := segmentParameter(p1, p2, p3)
	if d2 < degenerateEps {
		return p1
	}
	if clamp {
		u = math.Max(0, math.Min(1, u))
	}
	return PointAtParameter(p1, p2, u)
}

// DistancePointToSegment is the perpendicular distance from p3 to the segment,
// or NotContained when the foot of the perpendicular lies outside it.
func DistancePointToSegment(p1, p2, p3 Point) float64 {
	u, d2 := segmentParameter(p1, p2, p3)
	if d2 < degenerateEps {
		return Distance(p1, p3)
	}
	if u < 0 || u > 1 {
		return NotContained
	}
	return Distance(PointAtParameter(p1, p2, u), p3)
}

// PointAtParameter interpolates p1 + t*(p2-p1).
func PointAtParameter(p1, p2 Point, t float64) Point {
	return Point{p1.X + t*(p2.X-p1.X), p1.Y + t*(p2.Y-p1.Y)}
}

// Line is y = A*x + B. For a vertical line A is +Inf and B holds x, unless
// both points coincide, in which case B is +Inf too.
type Line struct {
	A, B     float64
	Vertical bool
}

func SlopeAndIntercept(p1, p2 Point) Line {
	dx := p2.X - p1.X
	if math.Abs(dx) < degenerateEps {
		if math.Abs(p2.Y-p1.Y) < degenerateEps {
			return Line{A: math.Inf(1), B: math.Inf(1), Vertical: true}
		}
		return Line{A: math.Inf(1), B: p1.X, Vertical: true}
	}
	a := (p2.Y - p1.Y) / dx
	return Line{A: a, B: p1.Y - a*p1.X}
}

// PerpendicularSlope is -1/a, or +Inf for a (nearly) horizontal line.
func PerpendicularSlope(a float64) float64 {
	if math.Abs(a) <= slopeEps {
		return math.Inf(1)
	}
	return -1 / a
}

// PointInLineAtDistance walks distance d from p along a line of slope a.
// sign picks the direction on the x axis.
func PointInLineAtDistance(a float64, p Point, d, sign float64) Point {
	x := p.X + sign*d/math.Sqrt(1+a*a)
	return Point{x, a*(x-p.X) + p.Y}
}

func IsHorizontal(p1, p2 Point) bool { return math.Abs(p1.Y-p2.Y) < axisEps }
func IsVertical(p1, p2 Point) bool   { return math.Abs(p1.X-p2.X) < axisEps }

// PerpendicularOffsetPoints returns the two points at distance d from p2 on
// the perpendicular to p1p2.
func PerpendicularOffsetPoints(p1, p2 Point, d float64) [2]Point {
	switch {
	case IsHorizontal(p1, p2):
		return [2]Point{{p2.X, p2.Y + d}, {p2.X, p2.Y - d}}
	case IsVertical(p1, p2):
		return [2]Point{{p2.X + d, p2.Y}, {p2.X - d, p2.Y}}
	}
	a90 := PerpendicularSlope(SlopeAndIntercept(p1, p2).A)
	if math.IsInf(a90, 0) {
		// long, almost flat segment
		return [2]Point{{p2.X, p2.Y + d}, {p2.X, p2.Y - d}}
	}
	return [2]Point{
		PointInLineAtDistance(a90, p2, d, -1),
		PointInLineAtDistance(a90, p2, d, 1),
	}
}

func relationSign(a, b float64) float64 {
	switch {
	case a < b:
		return 1
	case a > b:
		return -1
	}
	return 0
}

// PointBetweenAtDistance returns the point at distance d from p1 in the
// direction of p2. Points that nearly share a coordinate use an axis branch.
func PointBetweenAtDistance(p1, p2 Point, d float64) Point {
	xs := relationSign(p1.X, p2.X)
	ys := relationSign(p1.Y, p2.Y)
	nearY := math.Abs(p1.Y-p2.Y) <= AxisPrecision
	nearX := math.Abs(p1.X-p2.X) <= AxisPrecision
	switch {
	case nearY && nearX:
		if xs == 0 && ys == 0 {
			return Point{p1.X + d, p1.Y}
		}
		// the longer axis wins
		if math.Abs(p2.Y-p1.Y) > math.Abs(p2.X-p1.X) {
			return Point{p1.X, p1.Y + ys*d}
		}
		return Point{p1.X + xs*d, p1.Y}
	case nearY:
		return Point{p1.X + xs*d, p1.Y}
	case nearX:
		return Point{p1.X, p1.Y + ys*d}
	}
	a := (p2.Y - p1.Y) / (p2.X - p1.X)
	return PointInLineAtDistance(a, p1, d, xs)
}

// RectangleFromLine returns the corners of the band of half-width w around
// p1p2: the two offsets at p2 followed by the two offsets at p1 in reverse.
func RectangleFromLine(p1, p2 Point, w float64) [4]Point {
	at2 := PerpendicularOffsetPoints(p1, p2, w)
	at1 := PerpendicularOffsetPoints(p2, p1, w)
	return [4]Point{at2[0], at2[1], at1[1], at1[0]}
}

// ParallelSegments returns the two segments parallel to p1p2 at distance d on
// either side. Each segment runs from the p1 side to the p2 side.
func ParallelSegments(p1, p2 Point, d float64) [2]Segment {
	c := RectangleFromLine(p1, p2, d)
	// c[2], c[3] are the p1-side offsets in reverse order
	return [2]Segment{
		{P1: c[2], P2: c[1]},
		{P1: c[3], P2: c[0]},
	}
}

// SegmentIntersection returns the crossing point of a1a2 and b1b2.
func SegmentIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	den := r.X*s.Y - r.Y*s.X
	if math.Abs(den) < 1e-12 {
		return Point{}, false
	}
	q := b1.Sub(a1)
	t := (q.X*s.Y - q.Y*s.X) / den
	u := (q.X*r.Y - q.Y*r.X) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return a1.Add(r.Mul(t)), true
}

// RotateAround rotates p around pivot by deg degrees (counter-clockwise).
func RotateAround(p, pivot Point, deg float64) Point {
	s, c := math.Sincos(deg * math.Pi / 180)
	dx, dy := p.X-pivot.X, p.Y-pivot.Y
	return Point{pivot.X + dx*c - dy*s, pivot.Y + dx*s + dy*c}
}

// AngleDeg is the direction from a to b in degrees.
func AngleDeg(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
}

// ArrowHead returns the two barb points of an arrow whose tip is at p2.
func ArrowHead(p1, p2 Point, size, angleDeg float64) [2]Point {
	dir := math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
	half := angleDeg * math.Pi / 180
	var out [2]Point
	for i, sign := range []float64{1, -1} {
		out[i] = Point{p2.X - size*math.Cos(dir+sign*half), p2.Y - size*math.Sin(dir+sign*half)}
	}
	return out
}
