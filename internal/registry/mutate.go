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
)

// translate moves e and everything attached to it: group members, the live
// members of a selection, a node's ports and the links on those ports.
func (r *Registry) translate(e *entity.Entity, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	e.Left += dx
	e.Top += dy
	for _, c := range e.Children {
		r.translate(c, dx, dy)
	}
	for i := range e.Points {
		e.Points[i].X += dx
		e.Points[i].Y += dy
	}
	switch {
	case e.IsNode():
		r.layoutPorts(e)
	case e.IsLink():
		r.routeLink(e)
	}
}

// MoveBy translates e by dx, dy.
func (r *Registry) MoveBy(e *entity.Entity, dx, dy float64) {
	if e == nil || e.IsWorkarea() {
		return
	}
	r.translate(e, dx, dy)
	r.surface.RequestRender()
}

// Moved re-anchors whatever is attached to e after the surface moved it, for
// example during a drag.
func (r *Registry) Moved(e *entity.Entity) {
	if e == nil {
		return
	}
	entity.Walk(e, func(c *entity.Entity) {
		if c.IsNode() {
			r.layoutPorts(c)
		}
	})
}

// Set changes a single property of e.
func (r *Registry) Set(e *entity.Entity, key string, value any) {
	r.SetByPartial(e, map[string]any{key: value})
}

// SetByID changes a single property of the entity with id.
func (r *Registry) SetByID(id, key string, value any) {
	if e := r.FindByID(id); e != nil {
		r.Set(e, key, value)
	}
}

// SetByObject is Set for hosts holding the entity.
func (r *Registry) SetByObject(e *entity.Entity, key string, value any) {
	r.Set(r.Find(e), key, value)
}

// SetByPartial applies a bag of wire properties to e. Ids are never
// changed. On a multi selection, left and top translate every member by the
// delta and other keys are applied to each member.
func (r *Registry) SetByPartial(e *entity.Entity, partial map[string]any) {
	if e == nil || len(partial) == 0 {
		return
	}
	if e.IsComposite() {
		r.setComposite(e, partial)
		r.surface.RequestRender()
		return
	}
	next, err := merge(entity.FromEntity(e, r.opts.PropertiesToInclude), partial)
	if err != nil {
		r.log.Warn("set ignored", "id", e.ID, "err", err)
		return
	}
	ne := next.ToEntity()
	dx, dy := ne.Left-e.Left, ne.Top-e.Top
	ne.ID = e.ID
	ne.Kind = e.Kind
	ne.Children = e.Children
	ne.Element = e.Element
	ne.Animated = e.Animated
	ne.Extra = mergeExtra(e.Extra, ne.Extra)
	ne.Left, ne.Top = e.Left, e.Top
	src := e.Src
	*e = *ne
	for _, c := range e.Children {
		r.translate(c, dx, dy)
	}
	e.Left += dx
	e.Top += dy
	for i := range e.Points {
		e.Points[i].X += dx
		e.Points[i].Y += dy
	}
	switch {
	case e.IsNode():
		r.layoutPorts(e)
	case e.IsLink():
		r.routeLink(e)
	}
	if e.Kind == entity.KindImage && e.Src != src {
		r.SetImage(e, e.Src)
	}
	r.surface.RequestRender()
}

func (r *Registry) setComposite(sel *entity.Entity, partial map[string]any) {
	rest := map[string]any{}
	var dx, dy float64
	for k, v := range partial {
		f, ok := toFloat(v)
		switch {
		case k == "left" && ok:
			dx = f - sel.Left
		case k == "top" && ok:
			dy = f - sel.Top
		default:
			rest[k] = v
		}
	}
	r.translate(sel, dx, dy)
	if len(rest) > 0 {
		for _, m := range sel.Children {
			r.SetByPartial(m, rest)
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func mergeExtra(keep, next map[string]any) map[string]any {
	if len(keep) == 0 {
		return next
	}
	out := map[string]any{}
	for k, v := range keep {
		out[k] = v
	}
	for k, v := range next {
		out[k] = v
	}
	return out
}

// SetShadow replaces the shadow of e. A nil shadow removes it.
func (r *Registry) SetShadow(e *entity.Entity, s *entity.Shadow) {
	if e == nil {
		return
	}
	if s != nil {
		c := *s
		s = &c
	}
	e.Shadow = s
	r.surface.RequestRender()
}

// SetVisible shows or hides the active entity.
func (r *Registry) SetVisible(visible bool) {
	a := r.surface.ActiveObject()
	if a == nil {
		return
	}
	entity.Walk(a, func(c *entity.Entity) { c.Visible = visible })
	if a.IsNode() {
		for _, p := range r.Ports(a) {
			p.Visible = visible
		}
	}
	r.surface.RequestRender()
}

// Rotate sets the angle of the active entity.
func (r *Registry) Rotate(angle float64) {
	a := r.surface.ActiveObject()
	if a == nil || a.IsComposite() {
		return
	}
	a.Angle = angle
	r.surface.RequestRender()
}

// ScaleToResize scales the active entity to the given rendered size.
func (r *Registry) ScaleToResize(width, height float64) {
	a := r.surface.ActiveObject()
	if a == nil {
		return
	}
	r.OriginScaleToResize(a, width, height)
}

// OriginScaleToResize scales e to the given rendered size. For the workarea
// the nominal workarea size follows.
func (r *Registry) OriginScaleToResize(e *entity.Entity, width, height float64) {
	if e == nil || e.Width == 0 || e.Height == 0 {
		return
	}
	if e.IsWorkarea() {
		e.WorkareaWidth, e.WorkareaHeight = width, height
	}
	e.ScaleX = width / e.Width
	e.ScaleY = height / e.Height
	if e.IsNode() {
		r.layoutPorts(e)
	}
	r.surface.RequestRender()
}
