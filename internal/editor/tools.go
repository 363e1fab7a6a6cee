/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"gocanvas/internal/entity"
	"gocanvas/internal/interaction"
	"gocanvas/internal/vector"
)

// Stroke and fill given to drawn shapes.
const (
	DrawStroke      = "rgba(0, 0, 0, 1)"
	DrawStrokeWidth = 3
	DrawFill        = "rgba(0, 0, 0, 0.25)"
)

// DrawLine arms the line tool: the next two presses make a line.
func (ed *Editor) DrawLine() { ed.machine.DrawLine() }

// DrawPolygon arms the polygon tool. It closes on a press near the first
// point or on FinishDrawing.
func (ed *Editor) DrawPolygon() { ed.machine.DrawPolygon() }

// FinishDrawing commits the shape in progress, if it has enough points.
func (ed *Editor) FinishDrawing() *entity.Entity {
	pts, kind, done := ed.machine.FinishDrawing()
	if !done {
		return nil
	}
	return ed.commitDrawing(pts, kind)
}

func (ed *Editor) commitDrawing(pts []vector.Pt, kind entity.Kind) *entity.Entity {
	d := &entity.Descriptor{Entity: entity.Entity{
		Kind:        kind,
		SuperType:   entity.SuperDrawing,
		Points:      pts,
		Stroke:      DrawStroke,
		StrokeWidth: DrawStrokeWidth,
	}}
	if kind == entity.KindPolygon {
		d.Fill = DrawFill
	}
	e, err := ed.reg.Add(d, false, false)
	if err != nil {
		ed.log.Warn("drawing dropped", "err", err)
		return nil
	}
	return e
}

// StartCrop enters crop mode for target, or the active entity when target
// is nil.
func (ed *Editor) StartCrop(target *entity.Entity) bool {
	if target == nil {
		target = ed.surface.ActiveObject()
	}
	if !ed.reg.Editable() || !ed.machine.StartCrop(target) {
		return false
	}
	ed.surface.DiscardActiveObject()
	return true
}

// CropRect is the current crop rectangle in scene coordinates.
func (ed *Editor) CropRect() (vector.Rect, bool) {
	c := ed.machine.Crop()
	if c == nil {
		return vector.Rect{}, false
	}
	return c.Rect(), true
}

// FinishCrop applies the crop rectangle to its target and records it.
func (ed *Editor) FinishCrop() bool {
	target, res, ok := ed.machine.FinishCrop()
	if !ok {
		return false
	}
	ed.reg.SetByPartial(target, map[string]any{
		"left":   res.Left,
		"top":    res.Top,
		"width":  res.Width,
		"height": res.Height,
		"cropX":  res.CropX,
		"cropY":  res.CropY,
	})
	ed.reg.Save("cropped")
	ed.reg.Select(target)
	ed.bus.Modified.Publish(target)
	return true
}

// CancelCrop leaves crop mode without changes.
func (ed *Editor) CancelCrop() {
	if ed.machine.Is(interaction.ModeCrop) {
		ed.machine.CancelCrop()
	}
}
