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

// Select makes e the active entity.
func (r *Registry) Select(e *entity.Entity) {
	if e == nil {
		return
	}
	r.surface.DiscardActiveObject()
	r.surface.SetActiveObject(e)
	r.surface.RequestRender()
}

// SelectByID selects the entity with id.
func (r *Registry) SelectByID(id string) {
	r.Select(r.FindByID(id))
}

// NewSelection wraps members into a transient composite. The composite is
// not registered and not on the surface; its children are the live entities.
func (r *Registry) NewSelection(members []*entity.Entity) *entity.Entity {
	sel := &entity.Entity{
		Kind:       entity.KindActiveSelection,
		ScaleX:     1,
		ScaleY:     1,
		Opacity:    1,
		Selectable: true,
		Movable:    true,
		Deletable:  true,
		Cloneable:  true,
		Editable:   r.opts.Editable,
		Visible:    true,
		Evented:    true,
		Children:   append([]*entity.Entity(nil), members...),
	}
	b := entity.ChildBounds(members)
	sel.Left, sel.Top, sel.Width, sel.Height = b.X, b.Y, b.W, b.H
	r.styleSelection(sel)
	return sel
}

// styleSelection applies the configured selection option without touching
// geometry or membership.
func (r *Registry) styleSelection(sel *entity.Entity) {
	if len(r.opts.ActiveSelectionOption) == 0 {
		return
	}
	next, err := merge(entity.FromEntity(&entity.Entity{Kind: sel.Kind}, nil), r.opts.ActiveSelectionOption)
	if err != nil {
		r.log.Warn("active selection option ignored", "err", err)
		return
	}
	o := next.ToEntity()
	if o.Fill != "" {
		sel.Fill = o.Fill
	}
	if o.Stroke != "" {
		sel.Stroke = o.Stroke
	}
	if o.StrokeWidth != 0 {
		sel.StrokeWidth = o.StrokeWidth
	}
	if next.Opacity != nil {
		sel.Opacity = o.Opacity
	}
}

// StyleSelection re-applies the selection option to a composite created by
// the surface.
func (r *Registry) StyleSelection(sel *entity.Entity) {
	if sel.IsComposite() {
		r.styleSelection(sel)
	}
}

// SelectMany selects members: one entity directly, several as a composite.
func (r *Registry) SelectMany(members []*entity.Entity) *entity.Entity {
	switch len(members) {
	case 0:
		return nil
	case 1:
		r.Select(members[0])
		return members[0]
	}
	sel := r.NewSelection(members)
	r.Select(sel)
	return sel
}

// SelectAll selects every evented, unlocked entity except the workarea and
// ports.
func (r *Registry) SelectAll() *entity.Entity {
	r.surface.DiscardActiveObject()
	var members []*entity.Entity
	for _, e := range r.surface.Objects() {
		if e.IsWorkarea() || e.IsGrid() || !e.Evented || e.IsPort() || e.Locked {
			continue
		}
		members = append(members, e)
	}
	return r.SelectMany(members)
}

// Members returns the entities an active object stands for.
func Members(e *entity.Entity) []*entity.Entity {
	if e == nil {
		return nil
	}
	if e.IsComposite() {
		return append([]*entity.Entity(nil), e.Children...)
	}
	return []*entity.Entity{e}
}

// Remove deletes target, or the active entity when target is nil. Non
// deletable entities, and selections containing one, are left alone. Nodes
// take their ports and every link on those ports with them.
func (r *Registry) Remove(target *entity.Entity) error {
	a := target
	if a == nil {
		a = r.surface.ActiveObject()
	}
	if a == nil {
		return nil
	}
	for _, m := range Members(a) {
		if !m.Deletable {
			r.log.Debug("remove refused", "id", m.ID)
			return ErrNotDeletable
		}
	}
	if a.IsComposite() || r.surface.ActiveObject() == a {
		r.surface.DiscardActiveObject()
	}
	for _, m := range Members(a) {
		r.destroy(m)
	}
	r.Save("remove")
	r.reindex()
	r.updateAnimation()
	r.surface.RequestRender()
	r.bus.Remove.Publish(a)
	return nil
}

// RemoveByID removes the entity with id.
func (r *Registry) RemoveByID(id string) error {
	if e := r.FindByID(id); e != nil {
		return r.Remove(e)
	}
	return nil
}

// destroy takes e off the surface with its ports and links.
func (r *Registry) destroy(e *entity.Entity) {
	if active := r.surface.ActiveObject(); active == e {
		r.surface.DiscardActiveObject()
	}
	switch {
	case e.IsNode():
		for _, l := range r.Links(e) {
			r.destroy(l)
		}
		for _, p := range r.Ports(e) {
			r.surface.Remove(p)
			delete(r.byID, p.ID)
		}
	case e.IsLink():
		r.detachLink(e)
	case e.IsPort():
		for _, id := range e.LinkIDs {
			if l, ok := r.byID[id]; ok {
				r.destroy(l)
			}
		}
	}
	r.surface.Remove(e)
	r.unregister(e)
}

// Rollback takes entities added by an abandoned batch off the surface in
// reverse order. No snapshot is recorded and no event is published.
func (r *Registry) Rollback(created []*entity.Entity) {
	for i := len(created) - 1; i >= 0; i-- {
		if _, ok := r.byID[created[i].ID]; ok {
			r.destroy(created[i])
		}
	}
	r.reindex()
	r.surface.RequestRender()
}

// Clear removes every entity except the workarea and grid. With
// includeWorkarea the surface is emptied completely.
func (r *Registry) Clear(includeWorkarea bool) {
	r.surface.DiscardActiveObject()
	for _, e := range r.surface.Objects() {
		if !includeWorkarea && (e.IsWorkarea() || e.IsGrid()) {
			continue
		}
		r.surface.Remove(e)
	}
	if includeWorkarea {
		r.workarea, r.grid = nil, nil
	}
	r.reindex()
	r.updateAnimation()
	r.surface.RequestRender()
}

// Duplicate clones the active entity with fresh ids, offset by the grid
// size, and selects the copy. A selection duplicates every member; links are
// only carried when both of their nodes are part of it.
func (r *Registry) Duplicate() *entity.Entity {
	a := r.surface.ActiveObject()
	if a == nil || !a.Cloneable || a.IsWorkarea() {
		return nil
	}
	members := Members(a)
	for _, m := range members {
		if !m.Cloneable {
			return nil
		}
	}
	descs := make([]*entity.Descriptor, 0, len(members))
	for _, m := range members {
		descs = append(descs, entity.FromEntity(m, r.opts.PropertiesToInclude))
	}
	descs = r.Reidentify(descs, true)
	g := r.opts.GridSize
	var created []*entity.Entity
	err := r.Suppress(func() error {
		for _, d := range descs {
			if !d.IsLink() {
				shift(d, g, g)
			}
			d.Evented = entity.Bool(true)
			e, err := r.build(d, false, true)
			if err != nil {
				return err
			}
			created = append(created, e)
		}
		return nil
	})
	if err != nil {
		r.log.Warn("duplicate failed", "err", err)
		r.Rollback(created)
		return nil
	}
	r.surface.DiscardActiveObject()
	sel := r.SelectMany(created)
	r.Save("duplicate")
	for _, e := range created {
		r.bus.Add.Publish(e)
	}
	return sel
}

// DuplicateByID duplicates the entity with id.
func (r *Registry) DuplicateByID(id string) *entity.Entity {
	e := r.FindByID(id)
	if e == nil {
		return nil
	}
	r.Select(e)
	return r.Duplicate()
}

func shift(d *entity.Descriptor, dx, dy float64) {
	d.Walk(func(c *entity.Descriptor) {
		c.Left += dx
		c.Top += dy
		for i := range c.Points {
			c.Points[i].X += dx
			c.Points[i].Y += dy
		}
		if c.Properties != nil {
			c.Properties.Left += dx
			c.Properties.Top += dy
		}
	})
}
