/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"slices"

	"gocanvas/internal/entity"
	"gocanvas/internal/vector"
)

// Memory is a headless Surface. It keeps paint order, viewport and selection
// and counts render requests instead of drawing.
type Memory struct {
	objects  []*entity.Entity
	width    float64
	height   float64
	vpt      vector.Affine2D
	active   *entity.Entity
	onSelect func(*entity.Entity)
	renders  int
}

var _ Surface = (*Memory)(nil)

func NewMemory(width, height float64) *Memory {
	return &Memory{width: width, height: height, vpt: vector.Identity}
}

func (m *Memory) Add(e *entity.Entity) {
	if m.IndexOf(e) >= 0 {
		return
	}
	m.objects = append(m.objects, e)
}

func (m *Memory) Remove(e *entity.Entity) {
	if i := m.IndexOf(e); i >= 0 {
		m.objects = slices.Delete(m.objects, i, i+1)
	}
	if m.active == e {
		m.DiscardActiveObject()
	}
}

// Objects returns a copy of the paint order.
func (m *Memory) Objects() []*entity.Entity { return slices.Clone(m.objects) }

func (m *Memory) IndexOf(e *entity.Entity) int { return slices.Index(m.objects, e) }

func (m *Memory) MoveTo(e *entity.Entity, index int) {
	i := m.IndexOf(e)
	if i < 0 {
		return
	}
	m.objects = slices.Delete(m.objects, i, i+1)
	index = max(0, min(index, len(m.objects)))
	m.objects = slices.Insert(m.objects, index, e)
}

func (m *Memory) BringForward(e *entity.Entity) {
	if i := m.IndexOf(e); i >= 0 {
		m.MoveTo(e, i+1)
	}
}

func (m *Memory) BringToFront(e *entity.Entity) { m.MoveTo(e, len(m.objects)) }

func (m *Memory) SendBackwards(e *entity.Entity) {
	if i := m.IndexOf(e); i > 0 {
		m.MoveTo(e, i-1)
	}
}

func (m *Memory) SendToBack(e *entity.Entity) { m.MoveTo(e, 0) }

func (m *Memory) Width() float64  { return m.width }
func (m *Memory) Height() float64 { return m.height }

func (m *Memory) SetSize(w, h float64) { m.width, m.height = w, h }

func (m *Memory) Center() vector.Pt { return vector.Pt{X: m.width / 2, Y: m.height / 2} }

func (m *Memory) Zoom() float64 { return m.vpt.A }

// ZoomToPoint sets the zoom keeping the scene point under p fixed on screen.
func (m *Memory) ZoomToPoint(p vector.Pt, zoom float64) {
	before := m.vpt.Invert().Apply(p)
	m.vpt.A, m.vpt.D = zoom, zoom
	m.vpt.B, m.vpt.C = 0, 0
	m.vpt.E = p.X - before.X*zoom
	m.vpt.F = p.Y - before.Y*zoom
}

func (m *Memory) RelativePan(d vector.Pt) {
	m.vpt.E += d.X
	m.vpt.F += d.Y
}

func (m *Memory) ViewportTransform() vector.Affine2D { return m.vpt }

func (m *Memory) SetViewportTransform(v vector.Affine2D) { m.vpt = v }

func (m *Memory) ActiveObject() *entity.Entity { return m.active }

func (m *Memory) SetActiveObject(e *entity.Entity) {
	if e == nil {
		m.DiscardActiveObject()
		return
	}
	if m.active == e {
		return
	}
	m.active = e
	if m.onSelect != nil {
		m.onSelect(e)
	}
}

func (m *Memory) DiscardActiveObject() {
	if m.active == nil {
		return
	}
	m.active = nil
	if m.onSelect != nil {
		m.onSelect(nil)
	}
}

func (m *Memory) OnSelection(fn func(*entity.Entity)) { m.onSelect = fn }

func (m *Memory) FindTarget(p vector.Pt) *entity.Entity {
	q := ToScene(m, p)
	if m.active != nil && m.active.IsComposite() && m.active.Hit(q) {
		return m.active
	}
	for i := len(m.objects) - 1; i >= 0; i-- {
		e := m.objects[i]
		if !e.Visible || !e.Evented {
			continue
		}
		if e.Hit(q) {
			return e
		}
	}
	return nil
}

func (m *Memory) RequestRender() { m.renders++ }

// Renders reports how many renders were requested.
func (m *Memory) Renders() int { return m.renders }
