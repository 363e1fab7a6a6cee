/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Alignment guides and snapping for dragging entities on the canvas.
// The computation is UI-agnostic and deterministic so it can be unit tested
// without a rendering surface.

import "math"

// Orientation of a guide line.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// Feature names which edge or centre aligned.
type Feature string

const (
	FeatureLeft   Feature = "left"
	FeatureCenter Feature = "center"
	FeatureRight  Feature = "right"
	FeatureTop    Feature = "top"
	FeatureMiddle Feature = "middle"
	FeatureBottom Feature = "bottom"
)

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Margin is the maximum distance in screen pixels at which a guide fires.
	Margin float64
	// Snap moves the dragged rect onto the guide when true.
	Snap bool
	// Edges enables left/right and top/bottom alignment.
	Edges bool
	// Centers enables centre alignment.
	Centers bool
}

// DefaultSnapOptions mirrors the editor defaults.
func DefaultSnapOptions() SnapOptions {
	return SnapOptions{Margin: 4, Snap: true, Edges: true, Centers: true}
}

// Anchor is a static reference rect, a sibling entity or the workarea.
type Anchor struct {
	ID   string
	Rect Rect
}

// GuideLine describes one ruler produced by an alignment match.
// Position is the x (vertical) or y (horizontal) coordinate of the guide.
type GuideLine struct {
	Orientation Orientation
	Feature     Feature
	Position    float64
	From        Pt
	To          Pt
	AnchorID    string
}

type candidate struct {
	delta float64
	dist  float64
	guide GuideLine
	ok    bool
}

func (c *candidate) consider(delta, threshold float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	if !c.ok || dist < c.dist {
		*c = candidate{delta: delta, dist: dist, guide: g, ok: true}
	}
}

// ComputeAlignment matches the {left, center, right} x {top, middle, bottom}
// features of moving against the same features of every anchor. threshold is
// in the same units as the rects. At most one guide per axis is returned, the
// closest one. When snap is set the returned rect is moved onto the guides.
func ComputeAlignment(moving Rect, anchors []Anchor, threshold float64, opts SnapOptions) (Rect, []GuideLine) {
	if threshold <= 0 {
		threshold = 4
	}
	var bestX, bestY candidate
	mx := [3]float64{moving.X, moving.X + moving.W/2, moving.X + moving.W}
	my := [3]float64{moving.Y, moving.Y + moving.H/2, moving.Y + moving.H}
	xFeatures := [3]Feature{FeatureLeft, FeatureCenter, FeatureRight}
	yFeatures := [3]Feature{FeatureTop, FeatureMiddle, FeatureBottom}

	for _, a := range anchors {
		ax := [3]float64{a.Rect.X, a.Rect.X + a.Rect.W/2, a.Rect.X + a.Rect.W}
		ay := [3]float64{a.Rect.Y, a.Rect.Y + a.Rect.H/2, a.Rect.Y + a.Rect.H}
		for i := 0; i < 3; i++ {
			if i == 1 && !opts.Centers || i != 1 && !opts.Edges {
				continue
			}
			bestX.consider(mx[i]-ax[i], threshold, verticalGuide(ax[i], moving, a, xFeatures[i]))
			bestY.consider(my[i]-ay[i], threshold, horizontalGuide(ay[i], moving, a, yFeatures[i]))
		}
	}

	snapped := moving
	var guides []GuideLine
	if bestX.ok {
		if opts.Snap {
			snapped.X = FloatRound(moving.X-bestX.delta, 3)
		}
		guides = append(guides, bestX.guide)
	}
	if bestY.ok {
		if opts.Snap {
			snapped.Y = FloatRound(moving.Y-bestY.delta, 3)
		}
		guides = append(guides, bestY.guide)
	}
	return snapped, guides
}

func verticalGuide(x float64, moving Rect, a Anchor, f Feature) GuideLine {
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: Vertical,
		Feature:     f,
		Position:    x,
		From:        Pt{x, math.Min(moving.Y, a.Rect.Y)},
		To:          Pt{x, math.Max(moving.Y+moving.H, a.Rect.Y+a.Rect.H)},
		AnchorID:    a.ID,
	}
}

func horizontalGuide(y float64, moving Rect, a Anchor, f Feature) GuideLine {
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: Horizontal,
		Feature:     f,
		Position:    y,
		From:        Pt{math.Min(moving.X, a.Rect.X), y},
		To:          Pt{math.Max(moving.X+moving.W, a.Rect.X+a.Rect.W), y},
		AnchorID:    a.ID,
	}
}

// Guidelines holds the transient ruler state for one drag gesture. Begin
// snapshots the viewport at pointer-down, Moving recomputes rulers on each
// move and Clear discards them on pointer-up.
type Guidelines struct {
	opts       SnapOptions
	viewport   Affine2D
	zoom       float64
	vertical   []GuideLine
	horizontal []GuideLine
}

func NewGuidelines(opts SnapOptions) *Guidelines {
	if opts.Margin <= 0 {
		opts.Margin = DefaultSnapOptions().Margin
	}
	return &Guidelines{opts: opts, viewport: Identity, zoom: 1}
}

// Options returns the active snap options.
func (g *Guidelines) Options() SnapOptions { return g.opts }

// Begin records the pan/zoom in effect for the gesture.
func (g *Guidelines) Begin(viewport Affine2D, zoom float64) {
	if zoom <= 0 {
		zoom = 1
	}
	g.viewport = viewport
	g.zoom = zoom
}

// Moving computes guides for a rect in scene coordinates. The margin is in
// screen pixels, so it shrinks in scene units as the zoom grows. The returned
// rect is the (possibly snapped) scene rect.
func (g *Guidelines) Moving(moving Rect, anchors []Anchor) Rect {
	g.vertical = g.vertical[:0]
	g.horizontal = g.horizontal[:0]
	snapped, lines := ComputeAlignment(moving, anchors, g.opts.Margin/g.zoom, g.opts)
	for _, l := range lines {
		l.From = g.viewport.Apply(l.From)
		l.To = g.viewport.Apply(l.To)
		if l.Orientation == Vertical {
			l.Position = l.From.X
			g.vertical = append(g.vertical, l)
		} else {
			l.Position = l.From.Y
			g.horizontal = append(g.horizontal, l)
		}
	}
	return snapped
}

// Vertical returns the current vertical rulers in screen coordinates.
func (g *Guidelines) Vertical() []GuideLine { return g.vertical }

// Horizontal returns the current horizontal rulers in screen coordinates.
func (g *Guidelines) Horizontal() []GuideLine { return g.horizontal }

// Lines returns all current rulers.
func (g *Guidelines) Lines() []GuideLine {
	out := make([]GuideLine, 0, len(g.vertical)+len(g.horizontal))
	out = append(out, g.vertical...)
	return append(out, g.horizontal...)
}

// Clear discards all transient geometry.
func (g *Guidelines) Clear() {
	g.vertical = g.vertical[:0]
	g.horizontal = g.horizontal[:0]
}
