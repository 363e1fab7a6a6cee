/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "gocanvas/internal/vector"

// Zoom is the current viewport scale.
func (ed *Editor) Zoom() float64 { return ed.surface.Zoom() }

// ZoomToPoint scales the viewport around the screen point p. The zoom is
// clamped to the configured range and reported to zoom listeners.
func (ed *Editor) ZoomToPoint(p vector.Pt, zoom float64) {
	if ed.opts.MinZoom > 0 && zoom < ed.opts.MinZoom {
		zoom = ed.opts.MinZoom
	}
	if ed.opts.MaxZoom > 0 && zoom > ed.opts.MaxZoom {
		zoom = ed.opts.MaxZoom
	}
	zoom = vector.FloatRound(zoom, 4)
	ed.surface.ZoomToPoint(p, zoom)
	ed.surface.RequestRender()
	ed.bus.Zoom.Publish(zoom)
}

func (ed *Editor) ZoomIn()  { ed.ZoomToPoint(ed.surface.Center(), ed.surface.Zoom()+ed.opts.ZoomStep) }
func (ed *Editor) ZoomOut() { ed.ZoomToPoint(ed.surface.Center(), ed.surface.Zoom()-ed.opts.ZoomStep) }

// ZoomOneToOne resets the viewport with the workarea in the middle.
func (ed *Editor) ZoomOneToOne() {
	ed.resetViewport()
	ed.ZoomToPoint(ed.surface.Center(), 1)
}

// ZoomToFit zooms so that the whole workarea is visible.
func (ed *Editor) ZoomToFit() {
	ed.resetViewport()
	ed.ZoomToPoint(ed.surface.Center(), ed.reg.CalculateScale())
}

func (ed *Editor) resetViewport() {
	ed.surface.SetViewportTransform(vector.Identity)
	wa := ed.reg.Workarea()
	if wa == nil {
		return
	}
	c, wc := ed.surface.Center(), wa.Bounds().Center()
	ed.surface.RelativePan(vector.Pt{X: c.X - wc.X, Y: c.Y - wc.Y})
}
