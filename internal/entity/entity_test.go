/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package entity

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gocanvas/internal/textlayout"
	"gocanvas/internal/vector"
)

func TestFactoryBuiltinDefaults(t *testing.T) {
	f := NewFactory()
	e := f.Create(&Descriptor{Entity: Entity{ID: "n1", Kind: KindNode}})
	if e.SuperType != SuperNode {
		t.Fatalf("got superType %q, want node", e.SuperType)
	}
	if e.Width != 200 || e.Height != 40 || e.FromPorts != 1 {
		t.Fatalf("unexpected node defaults: %+v", e)
	}
	if !e.Selectable || !e.Deletable || !e.Cloneable || !e.Visible || !e.Evented {
		t.Fatalf("absent flags should default to true: %+v", e)
	}
	if e.ScaleX != 1 || e.ScaleY != 1 || e.Opacity != 1 {
		t.Fatalf("absent scale/opacity should default to 1: %+v", e)
	}

	line := f.Create(&Descriptor{Entity: Entity{Kind: KindLine, Points: []vector.Pt{{X: 10, Y: 20}, {X: 30, Y: 5}}}})
	if line.SuperType != SuperDrawing || line.Left != 10 || line.Top != 5 || line.Width != 20 || line.Height != 15 {
		t.Fatalf("unexpected line geometry: %+v", line)
	}
}

func TestFactorySizesText(t *testing.T) {
	f := NewFactory()
	txt := f.Create(&Descriptor{Entity: Entity{Kind: KindText, Text: "ABC", FontSize: 26}})
	if txt.Width != 42 || txt.Height != 26*textlayout.LineHeight {
		t.Fatalf("got %vx%v, want 42x%v", txt.Width, txt.Height, 26*textlayout.LineHeight)
	}
	box := f.Create(&Descriptor{Entity: Entity{Kind: KindTextbox, Text: "Hello world from Go", FontSize: 13, Width: 50}})
	if box.Width != 50 || box.Height != 3*13*textlayout.LineHeight {
		t.Fatalf("got %vx%v, want a 50 wide box of three lines", box.Width, box.Height)
	}
	def := f.Create(&Descriptor{Entity: Entity{Kind: KindText}})
	if def.Text != "Text" || def.FontSize != 32 || def.Width == 0 {
		t.Fatalf("unexpected text defaults: %+v", def)
	}
}

func TestFactoryUnknownKindPanics(t *testing.T) {
	f := NewFactory()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnknownKind) {
			t.Fatalf("expected ErrUnknownKind panic, got %v", r)
		}
	}()
	f.Create(&Descriptor{Entity: Entity{Kind: "hexagon"}})
}

func TestFactoryHostExtension(t *testing.T) {
	f := NewFactory()
	f.Register("card", SuperNode, func(e *Entity) {
		defaultSize(e, 100, 100)
		if e.Text == "" {
			e.Text = "NONO"
		}
	})
	if !f.Known("card") {
		t.Fatalf("card should be known after Register")
	}
	e := f.Create(&Descriptor{Entity: Entity{Kind: "card"}})
	if e.SuperType != SuperNode || e.Width != 100 || e.Text != "NONO" {
		t.Fatalf("unexpected card: %+v", e)
	}
	// An explicit superType on the descriptor wins over the registered one.
	d := &Descriptor{Entity: Entity{Kind: "card", SuperType: SuperDrawing}}
	if got := f.Create(d).SuperType; got != SuperDrawing {
		t.Fatalf("got %q, want drawing", got)
	}
}

func TestDescriptorExtraRoundTrip(t *testing.T) {
	in := `{"id":"r1","type":"rect","left":5,"top":6,"selectable":false,"tooltip":{"enabled":true},"custom":3}`
	var d Descriptor
	if err := json.Unmarshal([]byte(in), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.ID != "r1" || d.Left != 5 || d.Selectable == nil || *d.Selectable {
		t.Fatalf("unexpected decode: %+v", d)
	}
	if len(d.Extra) != 2 || d.Extra["custom"] != float64(3) {
		t.Fatalf("unexpected extras: %v", d.Extra)
	}
	e := d.ToEntity()
	if e.Selectable {
		t.Fatalf("explicit false must survive defaults")
	}

	out := FromEntity(e, []string{"tooltip"})
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"tooltip":{"enabled":true}`) {
		t.Fatalf("whitelisted extra missing: %s", s)
	}
	if strings.Contains(s, "custom") {
		t.Fatalf("non-whitelisted extra leaked: %s", s)
	}
	if !strings.Contains(s, `"selectable":false`) {
		t.Fatalf("flag not encoded: %s", s)
	}
}

func TestParseSceneDropsNulls(t *testing.T) {
	list, err := ParseScene([]byte(`[null, {"type":"rect","id":"a"}, null]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list) != 1 || list[0].ID != "a" {
		t.Fatalf("got %+v", list)
	}
	if _, err := ParseScene([]byte(`{not json`)); !errors.Is(err, ErrInvalidScene) {
		t.Fatalf("expected ErrInvalidScene, got %v", err)
	}
}

func TestValidateScene(t *testing.T) {
	ok := `[{"id":"workarea","type":"image","layout":"fixed","width":600,"height":400},
		{"type":"node","properties":{"left":1,"top":2}},
		{"type":"link","superType":"link","fromNodeIndex":0,"toNodeIndex":1}]`
	if err := ValidateScene([]byte(ok)); err != nil {
		t.Fatalf("valid scene rejected: %v", err)
	}
	bad := []string{
		`{"type":"rect"}`,
		`[{"id":"x"}]`,
		`[{"type":"link","fromNodeIndex":-1}]`,
		`[{"type":"image","layout":"stretch"}]`,
	}
	for _, b := range bad {
		err := ValidateScene([]byte(b))
		if !errors.Is(err, ErrInvalidScene) {
			t.Fatalf("expected ErrInvalidScene for %s, got %v", b, err)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := &Entity{
		ID:            "g",
		Kind:          KindGroup,
		Configuration: map[string]any{"nested": map[string]any{"k": "v"}},
		Shadow:        &Shadow{Color: "red"},
		Children:      []*Entity{{ID: "c", Kind: KindRect}},
	}
	c := e.Clone()
	c.Children[0].ID = "changed"
	c.Shadow.Color = "blue"
	c.Configuration["nested"].(map[string]any)["k"] = "w"
	if e.Children[0].ID != "c" || e.Shadow.Color != "red" {
		t.Fatalf("clone shares state with original")
	}
	if e.Configuration["nested"].(map[string]any)["k"] != "v" {
		t.Fatalf("nested configuration shared")
	}
}

func TestBoundsAndHit(t *testing.T) {
	e := &Entity{Kind: KindRect, Left: 10, Top: 20, Width: 50, Height: 10, ScaleX: 2, ScaleY: 1}
	b := e.Bounds()
	if b.X != 10 || b.Y != 20 || b.W != 100 || b.H != 10 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if !e.Hit(vector.Pt{X: 105, Y: 25}) || e.Hit(vector.Pt{X: 115, Y: 25}) {
		t.Fatalf("hit test does not honour scale")
	}
	g := &Entity{Kind: KindGroup, Children: []*Entity{e, {Kind: KindRect, Left: 200, Top: 0, Width: 10, Height: 10, ScaleX: 1, ScaleY: 1}}}
	gb := g.Bounds()
	if gb.X != 10 || gb.Y != 0 || gb.W != 200 || gb.H != 30 {
		t.Fatalf("unexpected group bounds: %+v", gb)
	}
}

func TestParseLayout(t *testing.T) {
	if ParseLayout("responsive") != LayoutResponsive || ParseLayout("bogus") != LayoutFixed {
		t.Fatalf("unexpected layout parse")
	}
}
