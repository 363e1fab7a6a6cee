/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"slices"

	"gocanvas/internal/entity"
)

// Group replaces members on the surface by one compound entity with a fresh
// id. Members keep their ids and scene coordinates. Graph entities cannot be
// grouped; Group returns nil for them or for fewer than two members.
func (r *Registry) Group(members []*entity.Entity) *entity.Entity {
	if len(members) < 2 {
		return nil
	}
	for _, m := range members {
		if m.IsNode() || m.IsPort() || m.IsLink() || m.IsWorkarea() {
			r.log.Debug("group refused", "id", m.ID, "superType", m.SuperType)
			return nil
		}
	}
	ordered := slices.Clone(members)
	slices.SortFunc(ordered, func(a, b *entity.Entity) int {
		return r.surface.IndexOf(a) - r.surface.IndexOf(b)
	})
	at := r.surface.IndexOf(ordered[0])
	r.surface.DiscardActiveObject()
	for _, m := range ordered {
		r.surface.Remove(m)
	}
	editable := r.opts.Editable
	g := &entity.Entity{
		ID:         r.newID(),
		Kind:       entity.KindGroup,
		Name:       "New group",
		ScaleX:     1,
		ScaleY:     1,
		Opacity:    1,
		Selectable: editable,
		Movable:    editable,
		Deletable:  true,
		Cloneable:  true,
		Editable:   editable,
		Visible:    true,
		Evented:    true,
		Children:   ordered,
	}
	b := entity.ChildBounds(ordered)
	g.Left, g.Top, g.Width, g.Height = b.X, b.Y, b.W, b.H
	r.surface.Add(g)
	r.surface.MoveTo(g, at)
	r.register(g)
	r.reindex()
	r.surface.RequestRender()
	return g
}

// Ungroup puts the members of g back on the surface where g was and drops g.
func (r *Registry) Ungroup(g *entity.Entity) []*entity.Entity {
	if !g.IsGroup() || r.surface.IndexOf(g) < 0 {
		return nil
	}
	at := r.surface.IndexOf(g)
	if r.surface.ActiveObject() == g {
		r.surface.DiscardActiveObject()
	}
	r.surface.Remove(g)
	delete(r.byID, g.ID)
	members := g.Children
	g.Children = nil
	for i, m := range members {
		r.surface.Add(m)
		r.surface.MoveTo(m, at+i)
	}
	r.reindex()
	r.surface.RequestRender()
	return members
}

// Floor is the lowest paint index an entity may take: everything below is
// the workarea and grid.
func (r *Registry) Floor() int {
	n := 0
	for _, e := range r.surface.Objects() {
		if !e.IsWorkarea() && !e.IsGrid() {
			break
		}
		n++
	}
	return n
}

// Reorder moves e to position pos among the primary entities (see Objects).
// A node's ports stay directly above it.
func (r *Registry) Reorder(e *entity.Entity, pos int) {
	prims := slices.DeleteFunc(r.Objects(), func(x *entity.Entity) bool { return x == e })
	pos = max(0, min(pos, len(prims)))
	ports := r.attached(e)
	r.surface.BringToFront(e)
	for _, p := range ports {
		r.surface.BringToFront(p)
	}
	if pos < len(prims) {
		r.surface.MoveTo(e, r.surface.IndexOf(prims[pos]))
		for i, p := range ports {
			r.surface.MoveTo(p, r.surface.IndexOf(e)+1+i)
		}
	}
	r.reindex()
	r.surface.RequestRender()
}

func (r *Registry) attached(e *entity.Entity) []*entity.Entity {
	if e.IsNode() {
		return r.Ports(e)
	}
	return nil
}

// Position returns the index of e among the primary entities, or -1.
func (r *Registry) Position(e *entity.Entity) int {
	return slices.Index(r.Objects(), e)
}
