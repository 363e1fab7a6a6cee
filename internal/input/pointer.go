/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package input

import (
	"gocanvas/internal/entity"
	"gocanvas/internal/vector"
)

// PointerEvent is a pointer down, move or up in screen coordinates. Target
// is the entity the surface found under the pointer, if any.
type PointerEvent struct {
	Point  vector.Pt
	Mods   Modifier
	Target *entity.Entity
}

// WheelEvent is a scroll; negative DeltaY scrolls up.
type WheelEvent struct {
	Point     vector.Pt
	DeltaY    float64
	Prevented bool
}

// PreventDefault marks the wheel as consumed by the canvas.
func (w *WheelEvent) PreventDefault() { w.Prevented = true }
