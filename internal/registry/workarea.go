/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"gocanvas/internal/entity"
	"gocanvas/internal/scene"
	"gocanvas/internal/vector"
)

// InitWorkarea creates the workarea from the configured options, replacing
// any previous one, and applies its layout.
func (r *Registry) InitWorkarea() *entity.Entity {
	if r.workarea != nil {
		r.surface.Remove(r.workarea)
		delete(r.byID, entity.WorkareaID)
	}
	o := r.opts.Workarea
	if o.Width <= 0 {
		o.Width = 600
	}
	if o.Height <= 0 {
		o.Height = 400
	}
	wa := &entity.Entity{
		ID:             entity.WorkareaID,
		Kind:           entity.KindImage,
		SuperType:      entity.SuperImage,
		Width:          o.Width,
		Height:         o.Height,
		ScaleX:         1,
		ScaleY:         1,
		Opacity:        1,
		Visible:        true,
		Fill:           o.BackgroundColor,
		Layout:         entity.ParseLayout(string(o.Layout)),
		WorkareaWidth:  o.Width,
		WorkareaHeight: o.Height,
		Element:        placeholder(),
	}
	r.surface.Add(wa)
	r.surface.SendToBack(wa)
	r.workarea = wa
	r.byID[wa.ID] = wa
	r.ApplyLayout()
	if o.Src != "" {
		r.SetImage(wa, o.Src)
	}
	if r.opts.Grid {
		r.initGrid()
	}
	r.reindex()
	return wa
}

// Workarea returns the workarea, or nil before InitWorkarea.
func (r *Registry) Workarea() *entity.Entity { return r.workarea }

func (r *Registry) initGrid() {
	if r.grid != nil {
		r.surface.Remove(r.grid)
	}
	b := r.workarea.Bounds()
	g := &entity.Entity{
		ID:      entity.GridID,
		Kind:    entity.KindGrid,
		Left:    b.X,
		Top:     b.Y,
		Width:   b.W,
		Height:  b.H,
		ScaleX:  1,
		ScaleY:  1,
		Opacity: 1,
		Visible: true,
		Extra:   map[string]any{"size": r.opts.GridSize},
	}
	r.surface.Add(g)
	r.surface.MoveTo(g, r.surface.IndexOf(r.workarea)+1)
	r.grid = g
	r.byID[g.ID] = g
}

// CalculateScale is the zoom at which the whole workarea fits the canvas.
func (r *Registry) CalculateScale() float64 {
	wa := r.workarea
	if wa == nil || wa.ScaledWidth() == 0 || wa.ScaledHeight() == 0 {
		return 1
	}
	return min(r.surface.Width()/wa.ScaledWidth(), r.surface.Height()/wa.ScaledHeight())
}

// CenterWorkarea positions the workarea in the middle of the canvas.
func (r *Registry) CenterWorkarea() {
	wa := r.workarea
	if wa == nil {
		return
	}
	c := r.surface.Center()
	wa.Left = c.X - wa.ScaledWidth()/2
	wa.Top = c.Y - wa.ScaledHeight()/2
	r.syncGrid()
}

func (r *Registry) syncGrid() {
	if r.grid == nil || r.workarea == nil {
		return
	}
	b := r.workarea.Bounds()
	r.grid.Left, r.grid.Top, r.grid.Width, r.grid.Height = b.X, b.Y, b.W, b.H
}

// ApplyLayout scales and positions the workarea for its layout: fixed keeps
// the nominal size, responsive zooms the viewport to fit and fullscreen
// stretches the workarea over the canvas.
func (r *Registry) ApplyLayout() {
	wa := r.workarea
	if wa == nil {
		return
	}
	switch wa.Layout {
	case entity.LayoutFullscreen:
		wa.ScaleX = r.surface.Width() / wa.Width
		wa.ScaleY = r.surface.Height() / wa.Height
		wa.Left, wa.Top = 0, 0
		r.surface.SetViewportTransform(vector.Identity)
		r.syncGrid()
	case entity.LayoutResponsive:
		wa.ScaleX, wa.ScaleY = 1, 1
		r.surface.SetViewportTransform(vector.Identity)
		r.CenterWorkarea()
		r.surface.ZoomToPoint(r.surface.Center(), r.CalculateScale())
	default:
		wa.ScaleX, wa.ScaleY = 1, 1
		r.CenterWorkarea()
	}
	r.surface.RequestRender()
}

// SetWorkareaOption reconfigures the workarea in place. Zero sizes keep the
// current ones.
func (r *Registry) SetWorkareaOption(o WorkareaOptions) error {
	wa := r.workarea
	if wa == nil {
		return ErrNoWorkarea
	}
	if o.Width > 0 {
		wa.Width, wa.WorkareaWidth = o.Width, o.Width
	}
	if o.Height > 0 {
		wa.Height, wa.WorkareaHeight = o.Height, o.Height
	}
	if o.Layout != "" {
		wa.Layout = entity.ParseLayout(string(o.Layout))
	}
	if o.BackgroundColor != "" {
		wa.Fill = o.BackgroundColor
	}
	r.opts.Workarea = WorkareaOptions{
		Width:           wa.Width,
		Height:          wa.Height,
		Layout:          wa.Layout,
		BackgroundColor: wa.Fill,
		Src:             o.Src,
	}
	r.ApplyLayout()
	r.SetImage(wa, o.Src)
	return nil
}

// ViewportCenter is the canvas centre in scene coordinates.
func (r *Registry) ViewportCenter() vector.Pt {
	return scene.ToScene(r.surface, r.surface.Center())
}

// Resize sets the canvas size and keeps the scene in place for the workarea
// layout. Fixed re-centres the workarea and shifts every other entity by half
// the size delta; responsive pans by that delta and zooms to fit; fullscreen
// stretches the workarea and multiplies positions and scales of everything
// else by the change in its rendered size.
func (r *Registry) Resize(width, height float64) {
	dx := width/2 - r.surface.Width()/2
	dy := height/2 - r.surface.Height()/2
	r.surface.SetSize(width, height)
	wa := r.workarea
	if wa == nil {
		return
	}
	switch wa.Layout {
	case entity.LayoutResponsive:
		r.surface.RelativePan(vector.Pt{X: dx, Y: dy})
		r.surface.ZoomToPoint(r.surface.Center(), r.CalculateScale())
	case entity.LayoutFullscreen:
		sx := width / wa.ScaledWidth()
		sy := height / wa.ScaledHeight()
		wa.ScaleX, wa.ScaleY = width/wa.Width, height/wa.Height
		r.syncGrid()
		r.each(func(e *entity.Entity) {
			e.Left *= sx
			e.Top *= sy
			e.ScaleX *= sx
			e.ScaleY *= sy
			for i := range e.Points {
				e.Points[i].X *= sx
				e.Points[i].Y *= sy
			}
		})
	default:
		r.CenterWorkarea()
		r.each(func(e *entity.Entity) {
			e.Left += dx
			e.Top += dy
			for i := range e.Points {
				e.Points[i].X += dx
				e.Points[i].Y += dy
			}
		})
	}
	r.surface.RequestRender()
}

// each visits every entity on the surface except the workarea and grid,
// group members included.
func (r *Registry) each(fn func(e *entity.Entity)) {
	for _, o := range r.surface.Objects() {
		if o.IsWorkarea() || o.IsGrid() {
			continue
		}
		entity.Walk(o, fn)
	}
}
