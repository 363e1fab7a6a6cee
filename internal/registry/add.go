/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"fmt"

	"gocanvas/internal/entity"
	"gocanvas/internal/scene"
)

// Add creates the entity described by d and places it on the surface.
//
// Unless loaded, the entity is placed in the viewport (centred, or around its
// own drop point when centered is false) and an "add" snapshot is recorded.
// Drawings keep their coordinates. The add callback fires for editable
// entities outside of a bulk load. An unknown type panics.
func (r *Registry) Add(d *entity.Descriptor, centered, loaded bool) (*entity.Entity, error) {
	editable := d.EditableOr(r.opts.Editable)
	e, err := r.build(d, centered, loaded)
	if err != nil {
		return nil, err
	}
	if !loaded {
		r.Save("add")
	}
	if editable && !loaded {
		r.bus.Add.Publish(e)
	}
	return e, nil
}

func (r *Registry) build(d *entity.Descriptor, centered, loaded bool) (*entity.Entity, error) {
	if d.Kind == entity.KindActiveSelection {
		return nil, fmt.Errorf("%w: %s is transient", entity.ErrInvalidScene, d.Kind)
	}
	d = r.withDefaults(d)
	e := r.create(d, loaded)
	if err := r.checkIDs(e); err != nil {
		return nil, err
	}
	if e.IsLink() {
		if err := r.attachLink(e); err != nil {
			return nil, err
		}
	}
	if !loaded && e.SuperType != entity.SuperDrawing && e.Editable {
		r.place(e, centered)
	}
	r.surface.Add(e)
	r.register(e)
	if e.IsNode() {
		r.decorateNode(e)
	}
	entity.Walk(e, func(c *entity.Entity) {
		if c.Kind == entity.KindImage {
			r.SetImage(c, c.Src)
		}
	})
	r.reindex()
	r.updateAnimation()
	r.surface.RequestRender()
	return e, nil
}

// create materialises d and, for groups, its members. Members are indexed
// but only the group itself goes on the surface.
func (r *Registry) create(d *entity.Descriptor, loaded bool) *entity.Entity {
	editable := d.EditableOr(r.opts.Editable)
	e := r.factory.Create(d)
	if e.ID == "" {
		e.ID = r.newID()
	}
	e.Editable = editable
	e.Selectable = editable && e.Selectable
	e.Movable = editable && e.Movable
	if e.IsPort() {
		e.Selectable, e.Movable = false, false
	}
	if editable && !loaded && r.workarea != nil && r.workarea.Layout == entity.LayoutFullscreen {
		e.ScaleX, e.ScaleY = r.workarea.ScaleX, r.workarea.ScaleY
	}
	if e.IsGroup() {
		e.Children = nil
		for _, cd := range d.Objects {
			if cd.Editable == nil {
				cd = cd.Clone()
				cd.Editable = entity.Bool(editable)
			}
			e.Children = append(e.Children, r.create(cd, loaded))
		}
		if e.Name == "" {
			e.Name = "New Group"
		}
		if len(e.Children) > 0 {
			b := entity.ChildBounds(e.Children)
			e.Left, e.Top, e.Width, e.Height = b.X, b.Y, b.W, b.H
			e.ScaleX, e.ScaleY, e.Angle = 1, 1, 0
		}
	}
	return e
}

func (r *Registry) checkIDs(e *entity.Entity) error {
	seen := map[string]bool{}
	var err error
	entity.Walk(e, func(c *entity.Entity) {
		if err != nil {
			return
		}
		if _, taken := r.byID[c.ID]; taken || seen[c.ID] {
			err = fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = true
	})
	return err
}

// place positions a new entity in the viewport. Centred entities land in the
// middle of the visible area; otherwise left/top are a screen drop point the
// entity is centred on.
func (r *Registry) place(e *entity.Entity, centered bool) {
	var left, top float64
	if centered {
		c := scene.ToScene(r.surface, r.surface.Center())
		left = c.X - e.ScaledWidth()/2
		top = c.Y - e.ScaledHeight()/2
	} else {
		z := r.surface.Zoom()
		if z == 0 {
			z = 1
		}
		vpt := r.surface.ViewportTransform()
		left = e.Left/z - e.Width/2 - vpt.E/z
		top = e.Top/z - e.Height/2 - vpt.F/z
	}
	r.translate(e, left-e.Left, top-e.Top)
}
