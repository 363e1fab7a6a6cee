/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package input

import (
	"fmt"
	"slices"
)

// Action is a shortcut target.
type Action string

const (
	ActionSelectAll Action = "select-all"
	ActionCopy      Action = "copy"
	ActionCut       Action = "cut"
	ActionPaste     Action = "paste"
	ActionDuplicate Action = "duplicate"
	ActionUndo      Action = "undo"
	ActionRedo      Action = "redo"
	ActionDelete    Action = "delete"
	ActionZoomIn    Action = "zoom-in"
	ActionZoomOut   Action = "zoom-out"
	ActionZoomReset Action = "zoom-reset"
	ActionZoomFit   Action = "zoom-fit"
	ActionPan       Action = "pan"
	ActionEscape    Action = "escape"
)

// Actions lists every action in resolution order.
var Actions = []Action{
	ActionPan, ActionEscape, ActionDelete, ActionSelectAll, ActionCopy, ActionPaste,
	ActionCut, ActionUndo, ActionRedo, ActionDuplicate, ActionZoomIn, ActionZoomOut,
	ActionZoomReset, ActionZoomFit,
}

// Keymap maps actions to the chords that trigger them.
type Keymap struct {
	bindings map[Action][]Chord
}

// DefaultKeymap returns the stock bindings.
func DefaultKeymap() *Keymap {
	return &Keymap{bindings: map[Action][]Chord{
		ActionPan:       {MustChord("w")},
		ActionEscape:    {MustChord("escape")},
		ActionDelete:    {MustChord("delete"), MustChord("backspace")},
		ActionSelectAll: {MustChord("ctrl+a")},
		ActionCopy:      {MustChord("ctrl+c")},
		ActionPaste:     {MustChord("ctrl+v")},
		ActionCut:       {MustChord("ctrl+x")},
		ActionUndo:      {MustChord("ctrl+z")},
		ActionRedo:      {MustChord("ctrl+y"), MustChord("ctrl+shift+z")},
		ActionDuplicate: {MustChord("ctrl+d")},
		ActionZoomIn:    {MustChord("+"), MustChord("shift++"), MustChord("="), MustChord("shift+=")},
		ActionZoomOut:   {MustChord("-")},
		ActionZoomReset: {MustChord("o")},
		ActionZoomFit:   {MustChord("p")},
	}}
}

// Bind replaces the chords of action with specs.
func (k *Keymap) Bind(action Action, specs ...string) error {
	if !slices.Contains(Actions, action) {
		return fmt.Errorf("unknown action %q", action)
	}
	chords := make([]Chord, 0, len(specs))
	for _, s := range specs {
		c, err := ParseChord(s)
		if err != nil {
			return fmt.Errorf("bind %s: %w", action, err)
		}
		chords = append(chords, c)
	}
	k.bindings[action] = chords
	return nil
}

// Chords returns the bindings of action.
func (k *Keymap) Chords(action Action) []Chord { return k.bindings[action] }

// Is reports whether e triggers action.
func (k *Keymap) Is(action Action, e KeyEvent) bool {
	for _, c := range k.bindings[action] {
		if c.Matches(e) {
			return true
		}
	}
	return false
}

// Resolve returns the first action e triggers.
func (k *Keymap) Resolve(e KeyEvent) (Action, bool) {
	for _, a := range Actions {
		if k.Is(a, e) {
			return a, true
		}
	}
	return "", false
}
