/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"math"
	"testing"

	"gocanvas/internal/entity"
	"gocanvas/internal/vector"
)

func rect(id string, x, y float64) *entity.Entity {
	return &entity.Entity{ID: id, Kind: entity.KindRect, Left: x, Top: y, Width: 10, Height: 10, ScaleX: 1, ScaleY: 1, Visible: true, Evented: true}
}

func ids(es []*entity.Entity) string {
	s := ""
	for _, e := range es {
		s += e.ID
	}
	return s
}

func TestMemoryPaintOrder(t *testing.T) {
	m := NewMemory(100, 100)
	a, b, c := rect("a", 0, 0), rect("b", 0, 0), rect("c", 0, 0)
	m.Add(a)
	m.Add(b)
	m.Add(c)
	m.Add(a) // duplicate add is ignored
	if got := ids(m.Objects()); got != "abc" {
		t.Fatalf("got %q, want abc", got)
	}
	m.BringForward(a)
	if got := ids(m.Objects()); got != "bac" {
		t.Fatalf("bring forward: got %q", got)
	}
	m.BringToFront(b)
	if got := ids(m.Objects()); got != "acb" {
		t.Fatalf("bring to front: got %q", got)
	}
	m.SendBackwards(b)
	m.SendToBack(c)
	if got := ids(m.Objects()); got != "cab" {
		t.Fatalf("send back: got %q", got)
	}
	m.MoveTo(b, 99)
	m.Remove(a)
	if got := ids(m.Objects()); got != "cb" {
		t.Fatalf("remove: got %q", got)
	}
}

func TestMemoryZoomToPointKeepsPivot(t *testing.T) {
	m := NewMemory(200, 100)
	m.RelativePan(vector.Pt{X: 10, Y: 5})
	pivot := vector.Pt{X: 100, Y: 50}
	before := ToScene(m, pivot)
	m.ZoomToPoint(pivot, 2)
	after := ToScene(m, pivot)
	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Fatalf("pivot moved: %+v -> %+v", before, after)
	}
	if m.Zoom() != 2 {
		t.Fatalf("got zoom %v, want 2", m.Zoom())
	}
}

func TestMemorySelectionListener(t *testing.T) {
	m := NewMemory(100, 100)
	var events []*entity.Entity
	m.OnSelection(func(e *entity.Entity) { events = append(events, e) })
	a := rect("a", 0, 0)
	m.Add(a)
	m.SetActiveObject(a)
	m.SetActiveObject(a)
	m.Remove(a)
	if len(events) != 2 || events[0] != a || events[1] != nil {
		t.Fatalf("unexpected selection events: %v", events)
	}
}

func TestMemoryFindTarget(t *testing.T) {
	m := NewMemory(100, 100)
	low, high := rect("low", 0, 0), rect("high", 5, 5)
	hidden := rect("hidden", 0, 0)
	hidden.Visible = false
	m.Add(low)
	m.Add(high)
	m.Add(hidden)
	if got := m.FindTarget(vector.Pt{X: 7, Y: 7}); got != high {
		t.Fatalf("got %v, want high", got)
	}
	if got := m.FindTarget(vector.Pt{X: 2, Y: 2}); got != low {
		t.Fatalf("got %v, want low", got)
	}
	m.ZoomToPoint(vector.Pt{}, 2)
	if got := m.FindTarget(vector.Pt{X: 25, Y: 25}); got != high {
		t.Fatalf("zoomed lookup: got %v, want high", got)
	}
	if m.FindTarget(vector.Pt{X: 90, Y: 90}) != nil {
		t.Fatalf("expected miss")
	}
}
