/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Shape is the hit-testable outline of an entity in its local space.
type Shape int

const (
	ShapeRect Shape = iota
	ShapeEllipse
	ShapeTriangle
)

// Hit reports whether p (in scene space) lies inside the shape occupying
// local, after applying xf. The point is inverse-transformed into local space.
func Hit(shape Shape, local Rect, xf Affine2D, p Pt) bool {
	q := xf.Invert().Apply(p)
	switch shape {
	case ShapeEllipse:
		rx, ry := local.W/2, local.H/2
		if rx == 0 || ry == 0 {
			return false
		}
		c := local.Center()
		dx := (q.X - c.X) / rx
		dy := (q.Y - c.Y) / ry
		return dx*dx+dy*dy <= 1
	case ShapeTriangle:
		a := Pt{local.X + local.W/2, local.Y}
		b := Pt{local.X + local.W, local.Y + local.H}
		c := Pt{local.X, local.Y + local.H}
		return InPolygon(q, []Pt{a, b, c})
	default:
		return local.Contains(q)
	}
}

// InPolygon is an even-odd point in polygon test.
func InPolygon(p Pt, poly []Pt) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// ObjectTransform returns the transform of an entity whose top-left corner
// sits at (left, top), scaled then rotated by angle degrees about that corner.
func ObjectTransform(left, top, scaleX, scaleY, angle float64) Affine2D {
	return Translate(left, top).Mul(Rotate(Degrees(angle))).Mul(Scale(scaleX, scaleY))
}
