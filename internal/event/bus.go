/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package event is the typed observer bus the editor reports through. Each
// host callback is one Topic; delivery is synchronous and in subscription
// order.
package event

import (
	"gocanvas/internal/entity"
	"gocanvas/internal/interaction"
	"gocanvas/internal/undo"
	"gocanvas/internal/vector"
)

type subscriber[T any] struct {
	id uint32
	fn func(T)
}

// Topic fans a payload out to its subscribers.
type Topic[T any] struct {
	nextID uint32
	subs   []subscriber[T]
}

// Handle removes a subscription.
type Handle struct {
	remove func()
}

// Remove unregisters the callback. Calling it twice is harmless.
func (h Handle) Remove() {
	if h.remove != nil {
		h.remove()
	}
}

// Subscribe registers fn and returns its handle.
func (t *Topic[T]) Subscribe(fn func(T)) Handle {
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	return Handle{remove: func() { t.unsubscribe(id) }}
}

func (t *Topic[T]) unsubscribe(id uint32) {
	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers v to every subscriber. Subscribers added or removed while
// publishing take effect on the next Publish.
func (t *Topic[T]) Publish(v T) {
	subs := t.subs
	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of subscribers.
func (t *Topic[T]) Len() int { return len(t.subs) }

// ContextEvent asks the host to show a context menu.
type ContextEvent struct {
	Target *entity.Entity
	Point  vector.Pt
}

// TooltipEvent asks the host to show or hide a tooltip for Target.
type TooltipEvent struct {
	Target  *entity.Entity
	Visible bool
}

// InteractionEvent reports a mode change.
type InteractionEvent struct {
	From interaction.Mode
	To   interaction.Mode
}

// LoadEvent is published once a scene finished loading.
type LoadEvent struct {
	Objects int
}

// Bus holds one topic per host callback.
type Bus struct {
	Add         Topic[*entity.Entity]
	Remove      Topic[*entity.Entity]
	Modified    Topic[*entity.Entity]
	Select      Topic[*entity.Entity]
	Transaction Topic[undo.Event]
	Interaction Topic[InteractionEvent]
	Zoom        Topic[float64]
	Context     Topic[ContextEvent]
	Tooltip     Topic[TooltipEvent]
	Click       Topic[*entity.Entity]
	DblClick    Topic[*entity.Entity]
	Load        Topic[LoadEvent]
}

func NewBus() *Bus { return &Bus{} }
