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
	"slices"

	"gocanvas/internal/entity"
	"gocanvas/internal/vector"
)

// Nodes carry one input port at the top centre and FromPorts output ports
// spread along the bottom edge. Ports and links are plain surface entities
// that refer to each other by id; the registry resolves them.

func (r *Registry) decorateNode(n *entity.Entity) {
	if n.Shadow == nil {
		n.Shadow = &entity.Shadow{Color: n.Stroke}
	}
	want := 1 + max(n.FromPorts, 0)
	prev := n.PortIDs
	n.PortIDs = make([]string, 0, want)
	for i := 0; i < want; i++ {
		id := ""
		if i < len(prev) && prev[i] != "" {
			if _, taken := r.byID[prev[i]]; !taken {
				id = prev[i]
			}
		}
		if id == "" {
			id = r.newID()
		}
		dir := entity.PortOut
		if i == 0 {
			dir = entity.PortIn
		}
		p := r.factory.Create(&entity.Descriptor{Entity: entity.Entity{
			ID:        id,
			Kind:      entity.KindPort,
			Direction: dir,
			ParentID:  n.ID,
			Fill:      n.Stroke,
		}})
		p.Editable = n.Editable
		p.Selectable, p.Movable, p.Deletable, p.Cloneable = false, false, false, false
		p.Visible = n.Visible
		r.surface.Add(p)
		r.byID[id] = p
		n.PortIDs = append(n.PortIDs, id)
	}
	r.layoutPorts(n)
}

// Ports returns the ports owned by node n, input port first.
func (r *Registry) Ports(n *entity.Entity) []*entity.Entity {
	var out []*entity.Entity
	for _, id := range n.PortIDs {
		if p, ok := r.byID[id]; ok && p.IsPort() && p.ParentID == n.ID {
			out = append(out, p)
		}
	}
	return out
}

// InPort returns the input port of node n.
func (r *Registry) InPort(n *entity.Entity) *entity.Entity {
	for _, p := range r.Ports(n) {
		if p.Direction == entity.PortIn {
			return p
		}
	}
	return nil
}

// OutPorts returns the output ports of node n in layout order.
func (r *Registry) OutPorts(n *entity.Entity) []*entity.Entity {
	var out []*entity.Entity
	for _, p := range r.Ports(n) {
		if p.Direction == entity.PortOut {
			out = append(out, p)
		}
	}
	return out
}

// Links returns every link attached to a port of node n, without duplicates.
func (r *Registry) Links(n *entity.Entity) []*entity.Entity {
	var out []*entity.Entity
	for _, p := range r.Ports(n) {
		for _, id := range p.LinkIDs {
			if l, ok := r.byID[id]; ok && !slices.Contains(out, l) {
				out = append(out, l)
			}
		}
	}
	return out
}

func (r *Registry) layoutPorts(n *entity.Entity) {
	ports := r.Ports(n)
	if len(ports) == 0 {
		return
	}
	w, h := n.ScaledWidth(), n.ScaledHeight()
	half := float64(entity.PortSize) / 2
	outs := len(r.OutPorts(n))
	k := 0
	for _, p := range ports {
		if p.Direction == entity.PortIn {
			p.Left = n.Left + w/2 - half
			p.Top = n.Top - half
			continue
		}
		k++
		p.Left = n.Left + w*float64(k)/float64(outs+1) - half
		p.Top = n.Top + h - half
	}
	for _, l := range r.Links(n) {
		r.routeLink(l)
	}
}

// attachLink resolves the endpoints of link l: the named (or first) output
// port of the source node and the input port of the target node.
func (r *Registry) attachLink(l *entity.Entity) error {
	from, to := r.byID[l.FromNodeID], r.byID[l.ToNodeID]
	if !from.IsNode() || !to.IsNode() {
		return fmt.Errorf("%w: %s -> %s", ErrDanglingLink, l.FromNodeID, l.ToNodeID)
	}
	var fp *entity.Entity
	if p, ok := r.byID[l.FromPortID]; ok && p.IsPort() && p.ParentID == from.ID && p.Direction == entity.PortOut {
		fp = p
	}
	if fp == nil {
		outs := r.OutPorts(from)
		if len(outs) == 0 {
			return fmt.Errorf("%w: node %s has no output port", ErrDanglingLink, from.ID)
		}
		fp = outs[0]
	}
	tp := r.InPort(to)
	if tp == nil {
		return fmt.Errorf("%w: node %s has no input port", ErrDanglingLink, to.ID)
	}
	l.FromPortID, l.ToPortID = fp.ID, tp.ID
	if !slices.Contains(fp.LinkIDs, l.ID) {
		fp.LinkIDs = append(fp.LinkIDs, l.ID)
	}
	if !slices.Contains(tp.LinkIDs, l.ID) {
		tp.LinkIDs = append(tp.LinkIDs, l.ID)
	}
	r.routeLink(l)
	return nil
}

func (r *Registry) routeLink(l *entity.Entity) {
	fp, ok1 := r.byID[l.FromPortID]
	tp, ok2 := r.byID[l.ToPortID]
	if !ok1 || !ok2 {
		return
	}
	l.Points = []vector.Pt{fp.Bounds().Center(), tp.Bounds().Center()}
	entity.FitPoints(l)
}

// detachLink removes l from both of its ports.
func (r *Registry) detachLink(l *entity.Entity) {
	for _, id := range []string{l.FromPortID, l.ToPortID} {
		if p, ok := r.byID[id]; ok {
			p.LinkIDs = slices.DeleteFunc(p.LinkIDs, func(s string) bool { return s == l.ID })
		}
	}
}

// Dangling lists links whose ports or nodes no longer resolve. A consistent
// registry returns nothing.
func (r *Registry) Dangling() []*entity.Entity {
	var out []*entity.Entity
	for _, e := range r.surface.Objects() {
		if !e.IsLink() {
			continue
		}
		fp, ok1 := r.byID[e.FromPortID]
		tp, ok2 := r.byID[e.ToPortID]
		if !ok1 || !ok2 || fp.ParentID != e.FromNodeID || tp.ParentID != e.ToNodeID {
			out = append(out, e)
			continue
		}
		if _, ok := r.byID[e.FromNodeID]; !ok {
			out = append(out, e)
		} else if _, ok := r.byID[e.ToNodeID]; !ok {
			out = append(out, e)
		}
	}
	return out
}
