/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interaction holds the mode state machine that decides how pointer
// input is interpreted, plus the transient geometry of the crop and drawing
// tools.
package interaction

import (
	"gocanvas/internal/entity"
	"gocanvas/internal/vector"
)

// Mode is the active interaction mode.
type Mode string

const (
	ModeSelection Mode = "selection"
	ModeGrab      Mode = "grab"
	ModeCrop      Mode = "crop"
	ModeLine      Mode = "line"
	ModePolygon   Mode = "polygon"
)

// ChangeCallback is called after the mode changed.
type ChangeCallback func(from, to Mode)

// Machine tracks exactly one active mode. It is owned by the editor
// goroutine and holds no locks.
type Machine struct {
	mode      Mode
	callbacks []ChangeCallback

	panning bool
	last    vector.Pt

	drawing *Drawing
	crop    *Crop

	// CloseMargin is the distance within which a polygon point closes the
	// shape on its first point.
	CloseMargin float64
}

func NewMachine() *Machine {
	return &Machine{mode: ModeSelection, CloseMargin: 4}
}

// OnChange registers fn for mode changes.
func (m *Machine) OnChange(fn ChangeCallback) { m.callbacks = append(m.callbacks, fn) }

func (m *Machine) Mode() Mode { return m.mode }

// Is reports whether the machine is in mode.
func (m *Machine) Is(mode Mode) bool { return m.mode == mode }

// IsDrawingMode reports whether a drawing tool is active.
func (m *Machine) IsDrawingMode() bool { return m.mode == ModeLine || m.mode == ModePolygon }

func (m *Machine) switchTo(to Mode) {
	from := m.mode
	if from == to {
		return
	}
	m.mode = to
	for _, cb := range m.callbacks {
		cb(from, to)
	}
}

// Selection returns to selection mode and drops all transient geometry.
func (m *Machine) Selection() {
	m.panning = false
	m.drawing = nil
	m.crop = nil
	m.switchTo(ModeSelection)
}

// Grab switches to viewport panning. Active tools are abandoned.
func (m *Machine) Grab() {
	m.drawing = nil
	m.crop = nil
	m.switchTo(ModeGrab)
}

// Escape always lands in selection mode.
func (m *Machine) Escape() { m.Selection() }

// BeginPan starts translating the viewport from the screen point p.
func (m *Machine) BeginPan(p vector.Pt) {
	m.panning = true
	m.last = p
}

// Panning reports whether a pan drag is in progress.
func (m *Machine) Panning() bool { return m.panning }

// PanTo returns the screen delta since the previous pan point.
func (m *Machine) PanTo(p vector.Pt) (vector.Pt, bool) {
	if !m.panning {
		return vector.Pt{}, false
	}
	d := vector.Pt{X: p.X - m.last.X, Y: p.Y - m.last.Y}
	m.last = p
	return d, true
}

func (m *Machine) EndPan() { m.panning = false }

// DrawLine activates the line tool.
func (m *Machine) DrawLine() {
	m.crop = nil
	m.drawing = &Drawing{tool: ModeLine}
	m.switchTo(ModeLine)
}

// DrawPolygon activates the polygon tool.
func (m *Machine) DrawPolygon() {
	m.crop = nil
	m.drawing = &Drawing{tool: ModePolygon}
	m.switchTo(ModePolygon)
}

// Drawing returns the in-progress drawing, or nil.
func (m *Machine) Drawing() *Drawing { return m.drawing }

// AddPoint feeds a scene point to the active drawing tool. When the shape is
// complete its points are returned with done set, and the machine is back in
// selection mode.
func (m *Machine) AddPoint(p vector.Pt) (points []vector.Pt, kind entity.Kind, done bool) {
	d := m.drawing
	if d == nil || !m.IsDrawingMode() {
		return nil, "", false
	}
	switch d.tool {
	case ModeLine:
		d.points = append(d.points, p)
		if len(d.points) < 2 {
			return nil, "", false
		}
	case ModePolygon:
		if len(d.points) >= 3 && vector.Distance(p, d.points[0]) <= m.CloseMargin {
			break
		}
		d.points = append(d.points, p)
		return nil, "", false
	}
	return m.commitDrawing()
}

// FinishDrawing closes the polygon with the points collected so far. A
// polygon needs three points; anything shorter is discarded.
func (m *Machine) FinishDrawing() (points []vector.Pt, kind entity.Kind, done bool) {
	d := m.drawing
	if d == nil || !m.IsDrawingMode() {
		return nil, "", false
	}
	if (d.tool == ModePolygon && len(d.points) < 3) || (d.tool == ModeLine && len(d.points) < 2) {
		m.Selection()
		return nil, "", false
	}
	return m.commitDrawing()
}

func (m *Machine) commitDrawing() ([]vector.Pt, entity.Kind, bool) {
	d := m.drawing
	kind := entity.KindPolygon
	if d.tool == ModeLine {
		kind = entity.KindLine
	}
	pts := append([]vector.Pt(nil), d.points...)
	m.Selection()
	return pts, kind, true
}

// Drawing accumulates the points of a line or polygon.
type Drawing struct {
	tool   Mode
	points []vector.Pt
}

func (d *Drawing) Tool() Mode { return d.tool }

// Points returns a copy of the collected points.
func (d *Drawing) Points() []vector.Pt { return append([]vector.Pt(nil), d.points...) }
