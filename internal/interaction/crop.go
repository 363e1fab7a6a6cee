/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"gocanvas/internal/entity"
	"gocanvas/internal/vector"
)

// Crop is the rectangle being fitted over a target. It never leaves the
// target's bounds.
type Crop struct {
	Target *entity.Entity
	rect   vector.Rect
	bounds vector.Rect
}

// CropResult is what a finished crop applies to its target. CropX and CropY
// are in the target's unscaled units.
type CropResult struct {
	Left, Top     float64
	Width, Height float64
	CropX, CropY  float64
}

// Croppable reports whether e can be cropped: images and plain shapes, never
// the workarea, graph entities or composites.
func Croppable(e *entity.Entity) bool {
	if e == nil || e.IsWorkarea() || e.IsComposite() || e.IsGroup() {
		return false
	}
	switch e.SuperType {
	case entity.SuperImage, entity.SuperPlain:
		return e.Angle == 0
	default:
		return false
	}
}

// StartCrop enters crop mode over target. It reports false and stays put when
// the target cannot be cropped.
func (m *Machine) StartCrop(target *entity.Entity) bool {
	if !Croppable(target) {
		return false
	}
	b := target.Bounds()
	m.drawing = nil
	m.panning = false
	m.crop = &Crop{Target: target, rect: b, bounds: b}
	m.switchTo(ModeCrop)
	return true
}

// Crop returns the active crop, or nil.
func (m *Machine) Crop() *Crop { return m.crop }

// Rect is the current crop rectangle in scene units.
func (c *Crop) Rect() vector.Rect { return c.rect }

// Move offsets the crop rectangle.
func (c *Crop) Move(dx, dy float64) vector.Rect {
	c.rect = c.rect.Offset(dx, dy).ClampInside(c.bounds)
	return c.rect
}

// MoveTo places the crop rectangle's top-left corner.
func (c *Crop) MoveTo(x, y float64) vector.Rect {
	return c.Move(x-c.rect.X, y-c.rect.Y)
}

// Resize changes the crop rectangle's size keeping its top-left corner.
func (c *Crop) Resize(w, h float64) vector.Rect {
	c.rect.W = max(1, w)
	c.rect.H = max(1, h)
	c.rect = c.rect.ClampInside(c.bounds)
	return c.rect
}

// FinishCrop leaves crop mode and returns the geometry to apply.
func (m *Machine) FinishCrop() (*entity.Entity, CropResult, bool) {
	c := m.crop
	if c == nil {
		return nil, CropResult{}, false
	}
	t := c.Target
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	res := CropResult{
		Left:   c.rect.X,
		Top:    c.rect.Y,
		Width:  c.rect.W / sx,
		Height: c.rect.H / sy,
		CropX:  t.CropX + (c.rect.X-c.bounds.X)/sx,
		CropY:  t.CropY + (c.rect.Y-c.bounds.Y)/sy,
	}
	m.Selection()
	return t, res, true
}

// CancelCrop discards the crop rectangle.
func (m *Machine) CancelCrop() {
	if m.crop != nil {
		m.Selection()
	}
}
