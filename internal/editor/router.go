/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"gocanvas/internal/entity"
	"gocanvas/internal/event"
	"gocanvas/internal/input"
	"gocanvas/internal/interaction"
	"gocanvas/internal/scene"
	"gocanvas/internal/vector"
)

// Focus tells the editor whether the canvas has keyboard focus. Shortcuts
// and paste are inert without it.
func (ed *Editor) Focus(focused bool) { ed.focused = focused }

func (ed *Editor) Focused() bool { return ed.focused }

// PointerDown dispatches a press: alt forces grab, grab mode starts a pan,
// drawing modes collect points and selection mode prepares guidelines.
func (ed *Editor) PointerDown(ev input.PointerEvent) {
	editable := ed.reg.Editable()
	if ev.Mods.Has(input.ModAlt) && editable && !ed.machine.IsDrawingMode() {
		ed.machine.Grab()
		ed.machine.BeginPan(ev.Point)
		return
	}
	if ed.machine.Is(interaction.ModeGrab) {
		ed.machine.BeginPan(ev.Point)
		return
	}
	if !editable {
		return
	}
	if ed.machine.IsDrawingMode() {
		pts, kind, done := ed.machine.AddPoint(scene.ToScene(ed.surface, ev.Point))
		if done {
			ed.commitDrawing(pts, kind)
		}
		return
	}
	ed.guides.Begin(ed.surface.ViewportTransform(), ed.surface.Zoom())
	if ed.machine.Is(interaction.ModeSelection) {
		if t := ev.Target; t != nil && t.IsLink() {
			ed.highlight(t)
		}
		ed.prevTarget = ev.Target
	}
}

// PointerMove pans in grab mode and drives tooltips on a read only canvas.
func (ed *Editor) PointerMove(ev input.PointerEvent) {
	if ed.machine.Is(interaction.ModeGrab) && ed.machine.Panning() {
		if d, ok := ed.machine.PanTo(ev.Point); ok {
			ed.surface.RelativePan(d)
			ed.surface.RequestRender()
		}
	}
	if ed.reg.Editable() || ev.Target == nil {
		return
	}
	if ev.Target.IsWorkarea() {
		ed.hideTooltip()
		return
	}
	if ev.Target != ed.hovered {
		ed.hovered = ev.Target
		ed.bus.Tooltip.Publish(event.TooltipEvent{Target: ev.Target, Visible: true})
	}
}

// PointerUp ends a pan or discards the guidelines of the finished drag.
func (ed *Editor) PointerUp(ev input.PointerEvent) {
	if ed.machine.Is(interaction.ModeGrab) {
		ed.machine.EndPan()
		return
	}
	if ed.reg.Editable() && ed.opts.Guidelines {
		ed.guides.Clear()
	}
	ed.unhighlight()
	ed.surface.RequestRender()
}

// PointerOut hides the tooltip when the pointer left every entity.
func (ed *Editor) PointerOut(ev input.PointerEvent) {
	if ev.Target == nil {
		ed.hideTooltip()
	}
}

// PrevTarget is the entity under the last selection mode press.
func (ed *Editor) PrevTarget() *entity.Entity { return ed.prevTarget }

func (ed *Editor) hideTooltip() {
	t := ed.hovered
	ed.hovered = nil
	ed.bus.Tooltip.Publish(event.TooltipEvent{Target: t, Visible: false})
}

func (ed *Editor) highlight(l *entity.Entity) {
	ed.unhighlight()
	ed.highlighted, ed.savedStroke = l, l.Stroke
	l.Stroke = l.SelectFill
	if l.Stroke == "" {
		l.Stroke = "green"
	}
}

func (ed *Editor) unhighlight() {
	if ed.highlighted != nil {
		ed.highlighted.Stroke = ed.savedStroke
		ed.highlighted = nil
	}
}

// Wheel zooms one step around the canvas centre and consumes the event.
func (ed *Editor) Wheel(ev *input.WheelEvent) {
	if !ed.opts.ZoomEnabled {
		return
	}
	z := ed.surface.Zoom()
	if ev.DeltaY > 0 {
		z -= ed.opts.ZoomStep
	} else {
		z += ed.opts.ZoomStep
	}
	ed.ZoomToPoint(ed.surface.Center(), z)
	ev.PreventDefault()
}

// Resize changes the canvas size, keeping the scene in place for the
// workarea layout.
func (ed *Editor) Resize(width, height float64) {
	ed.reg.Resize(width, height)
	if sel := ed.surface.ActiveObject(); sel != nil && sel.IsComposite() {
		ed.reg.StyleSelection(sel)
	}
}

// KeyDown handles the pan key and escape at all times; everything else needs
// focus and an editable canvas.
func (ed *Editor) KeyDown(ev input.KeyEvent) {
	editable := ed.reg.Editable()
	if ed.keymap.Is(input.ActionPan, ev) {
		ed.panKey = true
		ed.machine.Grab()
		return
	}
	if ev.Mods.Has(input.ModAlt) && editable {
		ed.machine.Grab()
		return
	}
	if ed.keymap.Is(input.ActionEscape, ev) {
		ed.escape()
		return
	}
	if !ed.focused || !editable {
		return
	}
	if ev.IsArrow() {
		ed.nudge(ev)
		return
	}
	action, ok := ed.keymap.Resolve(ev)
	if !ok {
		return
	}
	ed.log.Debug("shortcut", "action", action)
	switch action {
	case input.ActionDelete:
		_ = ed.reg.Remove(nil)
	case input.ActionSelectAll:
		ed.reg.SelectAll()
	case input.ActionCopy:
		ed.clip.Copy()
	case input.ActionPaste:
		if !ed.opts.PlatformClipboard {
			_ = ed.clip.Paste()
		}
	case input.ActionCut:
		ed.clip.Cut()
	case input.ActionUndo:
		ed.journal.Undo()
	case input.ActionRedo:
		ed.journal.Redo()
	case input.ActionDuplicate:
		ed.reg.Duplicate()
	case input.ActionZoomIn:
		ed.ZoomIn()
	case input.ActionZoomOut:
		ed.ZoomOut()
	case input.ActionZoomReset:
		ed.ZoomOneToOne()
	case input.ActionZoomFit:
		ed.ZoomToFit()
	}
}

// KeyUp returns from grab to selection unless a drawing is in progress or
// the pan key is still held.
func (ed *Editor) KeyUp(ev input.KeyEvent) {
	if ed.machine.IsDrawingMode() {
		return
	}
	if ed.keymap.Is(input.ActionPan, ev) {
		ed.panKey = false
	}
	if ed.panKey || !ed.machine.Is(interaction.ModeGrab) {
		return
	}
	ed.machine.Selection()
}

func (ed *Editor) escape() {
	switch {
	case ed.machine.Is(interaction.ModeSelection):
		ed.surface.DiscardActiveObject()
		ed.surface.RequestRender()
	case ed.machine.Is(interaction.ModeCrop):
		ed.machine.CancelCrop()
	default:
		ed.machine.Escape()
	}
	ed.panKey = false
	ed.hideTooltip()
}

func (ed *Editor) nudge(ev input.KeyEvent) {
	a := ed.surface.ActiveObject()
	if a == nil || a.IsWorkarea() {
		return
	}
	step := ed.opts.ArrowStep
	var dx, dy float64
	switch input.Key(ev.Key, ev.Mods).Key {
	case input.KeyArrowUp:
		dy = -step
	case input.KeyArrowDown:
		dy = step
	case input.KeyArrowLeft:
		dx = -step
	case input.KeyArrowRight:
		dx = step
	}
	ed.reg.MoveBy(a, dx, dy)
	ed.surface.RequestRender()
	ed.bus.Modified.Publish(a)
}

// ContextMenu selects the entity under the pointer and asks the host for a
// menu.
func (ed *Editor) ContextMenu(ev input.PointerEvent) {
	if !ed.reg.Editable() {
		return
	}
	t := ev.Target
	if t == nil {
		t = ed.surface.FindTarget(ev.Point)
	}
	if t != nil && !t.IsComposite() {
		ed.reg.Select(t)
	}
	ed.bus.Context.Publish(event.ContextEvent{Target: t, Point: ev.Point})
}

// ObjectDown fires the click callback for entities carrying an enabled
// hyperlink.
func (ed *Editor) ObjectDown(target *entity.Entity) {
	if target != nil && target.Link != nil && target.Link.Enabled {
		ed.bus.Click.Publish(target)
	}
}

// DoubleClick fires the double click callback for entities that asked for it.
func (ed *Editor) DoubleClick(target *entity.Entity) {
	if target != nil && target.DblClick {
		ed.bus.DblClick.Publish(target)
	}
}

// ObjectModified reports a finished change of target. Port decorations are
// not reported.
func (ed *Editor) ObjectModified(target *entity.Entity) {
	if target == nil || target.ParentID != "" {
		return
	}
	ed.bus.Modified.Publish(target)
}

// ObjectMoving handles a drag step. In crop mode the crop rectangle is kept
// inside its target; otherwise alignment guides are computed and, when
// snapping, target is moved onto them.
func (ed *Editor) ObjectMoving(target *entity.Entity) {
	if target == nil {
		return
	}
	if ed.machine.Is(interaction.ModeCrop) {
		if c := ed.machine.Crop(); c != nil {
			r := c.MoveTo(target.Left, target.Top)
			target.Left, target.Top = r.X, r.Y
		}
		return
	}
	if !ed.reg.Editable() || !ed.opts.Guidelines {
		return
	}
	b := target.Bounds()
	snapped := ed.guides.Moving(b, ed.anchors(target))
	if dx, dy := snapped.X-b.X, snapped.Y-b.Y; dx != 0 || dy != 0 {
		ed.reg.MoveBy(target, dx, dy)
	} else {
		ed.reg.Moved(target)
	}
}

func (ed *Editor) anchors(moving *entity.Entity) []vector.Anchor {
	skip := map[*entity.Entity]bool{moving: true}
	for _, m := range moving.Children {
		skip[m] = true
	}
	var out []vector.Anchor
	if wa := ed.reg.Workarea(); wa != nil {
		out = append(out, vector.Anchor{ID: wa.ID, Rect: wa.Bounds()})
	}
	for _, e := range ed.reg.Objects() {
		if skip[e] || e.IsLink() || !e.Visible {
			continue
		}
		out = append(out, vector.Anchor{ID: e.ID, Rect: e.Bounds()})
	}
	return out
}

// ObjectMoved records the end of a drag. Dragging the crop rectangle
// changes nothing until the crop is finished.
func (ed *Editor) ObjectMoved(target *entity.Entity) {
	if ed.machine.Is(interaction.ModeCrop) {
		return
	}
	if target != nil {
		ed.reg.Moved(target)
	}
	ed.reg.Save("moved")
}

// ObjectScaling resizes the crop rectangle while cropping.
func (ed *Editor) ObjectScaling(target *entity.Entity) {
	if target == nil || !ed.machine.Is(interaction.ModeCrop) {
		return
	}
	if c := ed.machine.Crop(); c != nil {
		r := c.Resize(target.ScaledWidth(), target.ScaledHeight())
		if target.Width > 0 && target.Height > 0 {
			target.ScaleX, target.ScaleY = r.W/target.Width, r.H/target.Height
		}
	}
}

// ObjectScaled records the end of a resize.
func (ed *Editor) ObjectScaled(*entity.Entity) {
	if ed.machine.Is(interaction.ModeCrop) {
		return
	}
	ed.reg.Save("scaled")
}

// ObjectRotated records the end of a rotation.
func (ed *Editor) ObjectRotated(*entity.Entity) { ed.reg.Save("rotated") }
