/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"
	"testing"

	"gocanvas/internal/entity"
	"gocanvas/internal/event"
	"gocanvas/internal/input"
	"gocanvas/internal/interaction"
	"gocanvas/internal/log"
	"gocanvas/internal/undo"
	"gocanvas/internal/vector"
)

func newEditor(t *testing.T, mutate func(*Options), options ...Option) *Editor {
	t.Helper()
	log.Discard()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	ed, err := New(opts, options...)
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	return ed
}

func place(t *testing.T, ed *Editor, id string, left, top float64) *entity.Entity {
	t.Helper()
	e, err := ed.Registry().Add(&entity.Descriptor{Entity: entity.Entity{
		ID: id, Kind: entity.KindRect, Left: left, Top: top, Width: 50, Height: 30,
	}}, false, true)
	if err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
	return e
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestUndoRedoAddScenario(t *testing.T) {
	ed := newEditor(t, nil)
	var events []undo.Event
	ed.Bus().Transaction.Subscribe(func(e undo.Event) { events = append(events, e) })

	r1, err := ed.Add(&entity.Descriptor{Entity: entity.Entity{ID: "r1", Kind: entity.KindRect, Width: 40, Height: 40}}, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	left, top := r1.Left, r1.Top
	if !ed.Undo() {
		t.Fatal("undo refused")
	}
	if _, ok := ed.Registry().Lookup("r1"); ok {
		t.Fatal("undo kept r1")
	}
	if ed.Registry().Workarea() == nil || ed.Surface().IndexOf(ed.Registry().Workarea()) < 0 {
		t.Fatal("undo removed the workarea")
	}
	if !ed.Redo() {
		t.Fatal("redo refused")
	}
	back, ok := ed.Registry().Lookup("r1")
	if !ok || back.Left != left || back.Top != top {
		t.Fatalf("got %v, want r1 at %v,%v", back, left, top)
	}
	if len(events) != 2 || events[0].Kind != undo.KindUndo || events[0].Label != "add" || events[1].Kind != undo.KindRedo {
		t.Fatalf("got transactions %+v", events)
	}
	if ed.Undo(); ed.Undo() {
		t.Fatal("undo on an empty stack should report false")
	}
}

func TestWheelZoomsAroundCenterAndClamps(t *testing.T) {
	ed := newEditor(t, nil)
	var zooms []float64
	ed.Bus().Zoom.Subscribe(func(z float64) { zooms = append(zooms, z) })

	ev := &input.WheelEvent{DeltaY: -1}
	ed.Wheel(ev)
	if !ev.Prevented {
		t.Fatal("wheel not consumed")
	}
	if got := ed.Zoom(); !near(got, 1.05) {
		t.Fatalf("got zoom %v, want 1.05", got)
	}
	c := ed.Surface().Center()
	if p := ed.Surface().ViewportTransform().Apply(vector.Pt{X: 400, Y: 300}); !near(p.X, c.X) || !near(p.Y, c.Y) {
		t.Fatalf("centre moved to %v", p)
	}
	for i := 0; i < 40; i++ {
		ed.Wheel(&input.WheelEvent{DeltaY: 1})
	}
	if got := ed.Zoom(); got != 0.3 {
		t.Fatalf("got zoom %v, want 0.3", got)
	}
	if len(zooms) != 41 {
		t.Fatalf("got %d zoom callbacks, want 41", len(zooms))
	}
}

func TestWheelIgnoredWhenZoomDisabled(t *testing.T) {
	ed := newEditor(t, func(o *Options) { o.ZoomEnabled = false })
	ev := &input.WheelEvent{DeltaY: -1}
	ed.Wheel(ev)
	if ev.Prevented || ed.Zoom() != 1 {
		t.Fatalf("got zoom %v prevented %v, want untouched", ed.Zoom(), ev.Prevented)
	}
}

func TestZoomToFitAndOneToOne(t *testing.T) {
	ed := newEditor(t, nil)
	ed.ZoomToFit()
	if got := ed.Zoom(); !near(got, 4.0/3) && !near(got, vector.FloatRound(4.0/3, 4)) {
		t.Fatalf("got zoom %v, want 1.3333", got)
	}
	ed.ZoomOneToOne()
	if got := ed.Surface().ViewportTransform(); got != vector.Identity {
		t.Fatalf("got viewport %+v, want identity", got)
	}
}

func TestResizeFixedShiftsByHalfDelta(t *testing.T) {
	ed := newEditor(t, nil)
	r := place(t, ed, "r", 150, 150)
	ed.Resize(1000, 800)
	if r.Left != 250 || r.Top != 250 {
		t.Fatalf("got %v,%v want 250,250", r.Left, r.Top)
	}
	if wa := ed.Registry().Workarea(); wa.Left != 200 || wa.Top != 200 {
		t.Fatalf("got workarea at %v,%v want 200,200", wa.Left, wa.Top)
	}
}

func TestResizeFullscreenStretches(t *testing.T) {
	ed := newEditor(t, func(o *Options) { o.Workarea.Layout = entity.LayoutFullscreen })
	r := place(t, ed, "r", 100, 100)
	ed.Resize(1600, 1200)
	if !near(r.Left, 200) || !near(r.Top, 200) || !near(r.ScaleX, 2) || !near(r.ScaleY, 2) {
		t.Fatalf("got %v,%v scale %v,%v want 200,200 scale 2,2", r.Left, r.Top, r.ScaleX, r.ScaleY)
	}
	wa := ed.Registry().Workarea()
	if !near(wa.ScaledWidth(), 1600) || !near(wa.ScaledHeight(), 1200) {
		t.Fatalf("workarea %vx%v, want 1600x1200", wa.ScaledWidth(), wa.ScaledHeight())
	}
}

func TestShortcutsNeedFocus(t *testing.T) {
	ed := newEditor(t, nil)
	place(t, ed, "a", 0, 0)
	place(t, ed, "b", 300, 0)
	selectAll := input.Key("a", input.ModCtrl)

	ed.KeyDown(selectAll)
	if ed.Surface().ActiveObject() != nil {
		t.Fatal("shortcut fired without focus")
	}
	ed.Focus(true)
	ed.KeyDown(selectAll)
	a := ed.Surface().ActiveObject()
	if a == nil || !a.IsComposite() || len(a.Children) != 2 {
		t.Fatalf("got active %v, want both rects", a)
	}
	ed.KeyDown(input.Key("escape", 0))
	if ed.Surface().ActiveObject() != nil {
		t.Fatal("escape kept the selection")
	}
}

func TestArrowNudgesActiveEntity(t *testing.T) {
	ed := newEditor(t, nil)
	ed.Focus(true)
	r := place(t, ed, "r", 100, 100)
	ed.Registry().Select(r)
	var modified int
	ed.Bus().Modified.Subscribe(func(*entity.Entity) { modified++ })

	ed.KeyDown(input.Key("ArrowRight", 0))
	ed.KeyDown(input.Key("ArrowUp", 0))
	if r.Left != 102 || r.Top != 98 {
		t.Fatalf("got %v,%v want 102,98", r.Left, r.Top)
	}
	if modified != 2 {
		t.Fatalf("got %d modified callbacks, want 2", modified)
	}
	ed.Registry().Select(ed.Registry().Workarea())
	wa := ed.Registry().Workarea()
	left := wa.Left
	ed.KeyDown(input.Key("ArrowLeft", 0))
	if wa.Left != left {
		t.Fatal("workarea was nudged")
	}
}

func TestDeleteAndDuplicateShortcuts(t *testing.T) {
	ed := newEditor(t, nil)
	ed.Focus(true)
	r := place(t, ed, "r", 100, 100)
	ed.Registry().Select(r)
	ed.KeyDown(input.Key("d", input.ModMeta))
	dup := ed.Surface().ActiveObject()
	if dup == nil || dup.ID == "r" || dup.Left != 110 {
		t.Fatalf("got %v, want a duplicate at 110", dup)
	}
	ed.KeyDown(input.Key("delete", 0))
	if _, ok := ed.Registry().Lookup(dup.ID); ok {
		t.Fatal("delete kept the duplicate")
	}
	ed.KeyDown(input.Key("z", input.ModCtrl))
	if _, ok := ed.Registry().Lookup(dup.ID); !ok {
		t.Fatal("undo did not bring the duplicate back")
	}
}

func TestAltDragPansThenKeyUpReturnsToSelection(t *testing.T) {
	ed := newEditor(t, nil)
	var modes []interaction.Mode
	ed.Bus().Interaction.Subscribe(func(e event.InteractionEvent) { modes = append(modes, e.To) })

	ed.PointerDown(input.PointerEvent{Point: vector.Pt{X: 10, Y: 10}, Mods: input.ModAlt})
	if !ed.Machine().Is(interaction.ModeGrab) {
		t.Fatalf("got mode %s, want grab", ed.Machine().Mode())
	}
	ed.PointerMove(input.PointerEvent{Point: vector.Pt{X: 30, Y: 20}})
	vpt := ed.Surface().ViewportTransform()
	if vpt.E != 20 || vpt.F != 10 {
		t.Fatalf("got pan %v,%v want 20,10", vpt.E, vpt.F)
	}
	ed.PointerUp(input.PointerEvent{})
	ed.KeyUp(input.Key("alt", 0))
	if !ed.Machine().Is(interaction.ModeSelection) {
		t.Fatalf("got mode %s, want selection", ed.Machine().Mode())
	}
	if len(modes) != 2 || modes[0] != interaction.ModeGrab || modes[1] != interaction.ModeSelection {
		t.Fatalf("got modes %v", modes)
	}
}

func TestPanKeyHoldsGrab(t *testing.T) {
	ed := newEditor(t, nil)
	ed.KeyDown(input.Key("w", 0))
	ed.KeyUp(input.Key("a", 0))
	if !ed.Machine().Is(interaction.ModeGrab) {
		t.Fatalf("got mode %s, want grab while the pan key is held", ed.Machine().Mode())
	}
	ed.KeyUp(input.Key("w", 0))
	if !ed.Machine().Is(interaction.ModeSelection) {
		t.Fatalf("got mode %s, want selection", ed.Machine().Mode())
	}
}

func TestDrawLineCommitsDrawing(t *testing.T) {
	ed := newEditor(t, nil)
	var added []*entity.Entity
	ed.Bus().Add.Subscribe(func(e *entity.Entity) { added = append(added, e) })

	ed.DrawLine()
	ed.PointerDown(input.PointerEvent{Point: vector.Pt{X: 100, Y: 100}})
	ed.PointerDown(input.PointerEvent{Point: vector.Pt{X: 200, Y: 150}})
	if len(added) != 1 {
		t.Fatalf("got %d added, want 1", len(added))
	}
	l := added[0]
	if l.Kind != entity.KindLine || l.SuperType != entity.SuperDrawing {
		t.Fatalf("got %s/%s, want line/drawing", l.Kind, l.SuperType)
	}
	if l.Left != 100 || l.Top != 100 || l.Width != 100 || l.Height != 50 {
		t.Fatalf("got %v,%v %vx%v, want 100,100 100x50", l.Left, l.Top, l.Width, l.Height)
	}
	if !ed.Machine().Is(interaction.ModeSelection) {
		t.Fatalf("got mode %s, want selection", ed.Machine().Mode())
	}
	if u, _, _ := ed.Journal().Stats(); u != 1 {
		t.Fatalf("got %d snapshots, want 1", u)
	}
}

func TestCropFinishAppliesAndRecords(t *testing.T) {
	ed := newEditor(t, nil)
	r, err := ed.Registry().Add(&entity.Descriptor{Entity: entity.Entity{ID: "r", Kind: entity.KindRect, Width: 100, Height: 50}}, false, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !ed.StartCrop(r) {
		t.Fatal("crop refused")
	}
	handle := &entity.Entity{Left: 20, Top: 10, Width: 100, Height: 50, ScaleX: 0.5, ScaleY: 0.5}
	ed.ObjectScaling(handle)
	ed.ObjectMoving(handle)
	rect, _ := ed.CropRect()
	if rect != vector.R(20, 10, 50, 25) {
		t.Fatalf("got crop %+v, want 20,10 50x25", rect)
	}
	if !ed.FinishCrop() {
		t.Fatal("finish refused")
	}
	if r.Left != 20 || r.Top != 10 || r.Width != 50 || r.Height != 25 || r.CropX != 20 || r.CropY != 10 {
		t.Fatalf("got %+v", r)
	}
	if !ed.Machine().Is(interaction.ModeSelection) {
		t.Fatalf("got mode %s, want selection", ed.Machine().Mode())
	}
	if u, _, _ := ed.Journal().Stats(); u != 1 {
		t.Fatalf("got %d snapshots, want 1", u)
	}
}

func TestCropGesturesRecordNothing(t *testing.T) {
	ed := newEditor(t, nil)
	r, err := ed.Registry().Add(&entity.Descriptor{Entity: entity.Entity{ID: "r", Kind: entity.KindRect, Width: 100, Height: 50}}, false, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !ed.StartCrop(r) {
		t.Fatal("crop refused")
	}
	handle := &entity.Entity{Left: 10, Top: 5, Width: 100, Height: 50, ScaleX: 0.5, ScaleY: 0.5}
	for i := 0; i < 3; i++ {
		ed.ObjectMoving(handle)
		ed.ObjectMoved(handle)
		ed.ObjectScaling(handle)
		ed.ObjectScaled(handle)
	}
	if u, _, _ := ed.Journal().Stats(); u != 0 {
		t.Fatalf("got %d snapshots, want 0", u)
	}
	if !ed.Machine().Is(interaction.ModeCrop) {
		t.Fatalf("got mode %s, want crop", ed.Machine().Mode())
	}
}

func TestMovingSnapsToGuidelines(t *testing.T) {
	ed := newEditor(t, nil)
	place(t, ed, "a", 300, 300)
	b := place(t, ed, "b", 303, 450)
	ed.PointerDown(input.PointerEvent{Point: vector.Pt{X: 310, Y: 460}, Target: b})
	ed.ObjectMoving(b)
	if b.Left != 300 {
		t.Fatalf("got left %v, want 300", b.Left)
	}
	if len(ed.Guidelines().Vertical()) == 0 {
		t.Fatal("no vertical guide")
	}
	ed.PointerUp(input.PointerEvent{})
	if len(ed.Guidelines().Lines()) != 0 {
		t.Fatal("guides survived pointer up")
	}
	ed.ObjectMoved(b)
	if u, _, _ := ed.Journal().Stats(); u != 1 {
		t.Fatalf("got %d snapshots, want 1", u)
	}
}

func TestContextMenuSelectsTarget(t *testing.T) {
	ed := newEditor(t, nil)
	r := place(t, ed, "r", 200, 200)
	var got []event.ContextEvent
	ed.Bus().Context.Subscribe(func(e event.ContextEvent) { got = append(got, e) })
	ed.ContextMenu(input.PointerEvent{Point: vector.Pt{X: 210, Y: 210}})
	if len(got) != 1 || got[0].Target != r {
		t.Fatalf("got %+v, want the rect", got)
	}
	if ed.Surface().ActiveObject() != r {
		t.Fatal("context menu did not select the target")
	}
}

func TestClickAndDoubleClickHooks(t *testing.T) {
	ed := newEditor(t, nil)
	var clicks, dbl int
	ed.Bus().Click.Subscribe(func(*entity.Entity) { clicks++ })
	ed.Bus().DblClick.Subscribe(func(*entity.Entity) { dbl++ })

	plain := place(t, ed, "plain", 0, 0)
	linked := place(t, ed, "linked", 100, 0)
	linked.Link = &entity.HyperLink{Enabled: true, URL: "https://example.com"}
	linked.DblClick = true

	ed.ObjectDown(plain)
	ed.ObjectDown(linked)
	ed.DoubleClick(plain)
	ed.DoubleClick(linked)
	if clicks != 1 || dbl != 1 {
		t.Fatalf("got %d clicks %d double clicks, want 1 and 1", clicks, dbl)
	}
}

func TestTooltipOnReadOnlyCanvas(t *testing.T) {
	ed := newEditor(t, func(o *Options) { o.Editable = false })
	r := place(t, ed, "r", 0, 0)
	var tips []event.TooltipEvent
	ed.Bus().Tooltip.Subscribe(func(e event.TooltipEvent) { tips = append(tips, e) })

	ed.PointerMove(input.PointerEvent{Target: r})
	ed.PointerMove(input.PointerEvent{Target: r})
	ed.PointerMove(input.PointerEvent{Target: ed.Registry().Workarea()})
	if len(tips) != 2 || !tips[0].Visible || tips[0].Target != r || tips[1].Visible {
		t.Fatalf("got tooltips %+v", tips)
	}
}

func TestModifiedIgnoresPortDecorations(t *testing.T) {
	ed := newEditor(t, nil)
	n, err := ed.Registry().Add(&entity.Descriptor{Entity: entity.Entity{ID: "n", Kind: entity.KindNode}}, false, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	var modified int
	ed.Bus().Modified.Subscribe(func(*entity.Entity) { modified++ })
	ed.ObjectModified(ed.Registry().Ports(n)[0])
	ed.ObjectModified(n)
	if modified != 1 {
		t.Fatalf("got %d modified callbacks, want 1", modified)
	}
}
