/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"errors"
	"testing"

	"gocanvas/internal/entity"
)

func TestNodeGetsPortsAndShadow(t *testing.T) {
	f := newFixture(t)
	d := node("n")
	d.FromPorts = 2
	d.Left, d.Top = 100, 100
	n := mustAdd(t, f.reg, d, true)

	ports := f.reg.Ports(n)
	if len(ports) != 3 {
		t.Fatalf("got %d ports, want 3", len(ports))
	}
	in := f.reg.InPort(n)
	if in == nil || in.ParentID != "n" || in.Selectable {
		t.Fatalf("bad input port %+v", in)
	}
	if c := in.Bounds().Center(); c.X != 200 || c.Y != 100 {
		t.Fatalf("input port centre %v, want top centre 200,100", c)
	}
	outs := f.reg.OutPorts(n)
	if c := outs[0].Bounds().Center(); c.Y != 140 {
		t.Fatalf("output port centre %v, want bottom edge", c)
	}
	if n.Shadow == nil || n.Shadow.Color != n.Stroke {
		t.Fatalf("node shadow %+v, want stroke colour", n.Shadow)
	}
}

func TestNodeReusesDeclaredPortIDs(t *testing.T) {
	f := newFixture(t)
	d := node("n")
	d.PortIDs = []string{"in-1", "out-1"}
	n := mustAdd(t, f.reg, d, true)
	if n.PortIDs[0] != "in-1" || n.PortIDs[1] != "out-1" {
		t.Fatalf("got %v", n.PortIDs)
	}
	if p := f.reg.FindByID("out-1"); p == nil || p.Direction != entity.PortOut {
		t.Fatalf("declared port not created")
	}
}

func TestLinkResolvesPorts(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.reg, node("a"), true)
	b := mustAdd(t, f.reg, node("b"), true)
	l := mustAdd(t, f.reg, link("l", "a", "b"), true)

	out := f.reg.OutPorts(a)[0]
	in := f.reg.InPort(b)
	if l.FromPortID != out.ID || l.ToPortID != in.ID {
		t.Fatalf("link ports %s -> %s", l.FromPortID, l.ToPortID)
	}
	if len(out.LinkIDs) != 1 || len(in.LinkIDs) != 1 {
		t.Fatalf("ports do not know the link")
	}
	if len(l.Points) != 2 || l.Points[0] != out.Bounds().Center() {
		t.Fatalf("link not routed: %v", l.Points)
	}
}

func TestLinkToMissingNodeFails(t *testing.T) {
	f := newFixture(t)
	mustAdd(t, f.reg, node("a"), true)
	if _, err := f.reg.Add(link("l", "a", "ghost"), false, true); !errors.Is(err, ErrDanglingLink) {
		t.Fatalf("got %v, want ErrDanglingLink", err)
	}
	if _, ok := f.reg.Lookup("l"); ok {
		t.Fatalf("failed link was registered")
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	f := newFixture(t)
	mustAdd(t, f.reg, node("a"), true)
	b := mustAdd(t, f.reg, node("b"), true)
	mustAdd(t, f.reg, node("c"), true)
	mustAdd(t, f.reg, link("ab", "a", "b"), true)
	mustAdd(t, f.reg, link("bc", "b", "c"), true)

	if err := f.reg.Remove(b); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, id := range append([]string{"b", "ab", "bc"}, b.PortIDs...) {
		if _, ok := f.reg.Lookup(id); ok {
			t.Fatalf("%s survived the cascade", id)
		}
	}
	if d := f.reg.Dangling(); len(d) != 0 {
		t.Fatalf("dangling links: %v", d)
	}
	a, _ := f.reg.Lookup("a")
	if out := f.reg.OutPorts(a)[0]; len(out.LinkIDs) != 0 {
		t.Fatalf("surviving port still lists %v", out.LinkIDs)
	}
	for _, e := range f.surface.Objects() {
		if e.IsPort() && e.ParentID == "b" {
			t.Fatalf("port of removed node still on surface")
		}
	}
}

func TestRemoveLinkDetaches(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.reg, node("a"), true)
	mustAdd(t, f.reg, node("b"), true)
	l := mustAdd(t, f.reg, link("l", "a", "b"), true)
	if err := f.reg.Remove(l); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(f.reg.Links(a)) != 0 {
		t.Fatalf("node still linked")
	}
}

func TestMovingNodeDragsPortsAndLinks(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.reg, node("a"), true)
	mustAdd(t, f.reg, node("b"), true)
	l := mustAdd(t, f.reg, link("l", "a", "b"), true)
	before := l.Points[0]

	f.reg.MoveBy(a, 30, 40)
	in := f.reg.InPort(a)
	if c := in.Bounds().Center(); c.X != a.Left+100 || c.Y != a.Top {
		t.Fatalf("port did not follow: %v", c)
	}
	if l.Points[0].X != before.X+30 || l.Points[0].Y != before.Y+40 {
		t.Fatalf("link start %v, want moved from %v", l.Points[0], before)
	}
}

func TestReidentifyRemapsGraph(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.reg, node("a"), true)
	b := mustAdd(t, f.reg, node("b"), true)
	mustAdd(t, f.reg, node("c"), true)
	ab := mustAdd(t, f.reg, link("ab", "a", "b"), true)
	bc := mustAdd(t, f.reg, link("bc", "b", "c"), true)

	in := []*entity.Descriptor{}
	for _, e := range []*entity.Entity{ab, a, b, bc} {
		in = append(in, entity.FromEntity(e, nil))
	}
	out := f.reg.Reidentify(in, true)
	if len(out) != 3 {
		t.Fatalf("got %d descriptors, want 3 (bc must be dropped)", len(out))
	}
	if !out[2].IsLink() {
		t.Fatalf("link not moved last")
	}
	na, nb, nl := out[0], out[1], out[2]
	if na.ID == "a" || nb.ID == "b" || nl.ID == "ab" {
		t.Fatalf("ids not refreshed")
	}
	if nl.FromNodeID != na.ID || nl.ToNodeID != nb.ID {
		t.Fatalf("link points at %s -> %s", nl.FromNodeID, nl.ToNodeID)
	}
	if nl.FromPortID != na.PortIDs[1] || nl.ToPortID != nb.PortIDs[0] {
		t.Fatalf("link ports not remapped")
	}
	if in[0].ID != "ab" {
		t.Fatalf("input was modified")
	}

	kept := f.reg.Reidentify(in, false)
	if kept[0].ID != "a" || kept[2].FromNodeID != "a" {
		t.Fatalf("ids changed without fresh")
	}
}
