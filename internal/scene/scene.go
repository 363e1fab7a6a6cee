/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene describes the rendering collaborator the editor drives and
// ships a headless implementation of it.
package scene

import (
	"gocanvas/internal/entity"
	"gocanvas/internal/vector"
)

// Surface is the scene the editor mutates. Entities are held in paint order;
// index 0 is painted first. Implementations own rendering and hit testing.
type Surface interface {
	Add(e *entity.Entity)
	Remove(e *entity.Entity)
	Objects() []*entity.Entity
	IndexOf(e *entity.Entity) int
	MoveTo(e *entity.Entity, index int)
	BringForward(e *entity.Entity)
	BringToFront(e *entity.Entity)
	SendBackwards(e *entity.Entity)
	SendToBack(e *entity.Entity)

	Width() float64
	Height() float64
	SetSize(w, h float64)
	// Center is the canvas centre in screen coordinates.
	Center() vector.Pt

	Zoom() float64
	ZoomToPoint(p vector.Pt, zoom float64)
	RelativePan(d vector.Pt)
	ViewportTransform() vector.Affine2D
	SetViewportTransform(m vector.Affine2D)

	ActiveObject() *entity.Entity
	SetActiveObject(e *entity.Entity)
	DiscardActiveObject()
	// OnSelection registers the listener for selection created, updated and
	// cleared. A cleared selection is reported as nil.
	OnSelection(fn func(active *entity.Entity))

	// FindTarget returns the topmost evented entity under the screen point.
	FindTarget(p vector.Pt) *entity.Entity
	RequestRender()
}

// ToScene maps a screen point into scene coordinates.
func ToScene(s Surface, p vector.Pt) vector.Pt {
	return s.ViewportTransform().Invert().Apply(p)
}
