/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package input holds the pointer and keyboard event types delivered to the
// editor and the shortcut keymap that resolves key chords to actions.
package input

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyChord   = errors.New("empty key chord")
	ErrInvalidChord = errors.New("invalid key chord")
)

// Modifier is a bitset of held modifier keys.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

func (m Modifier) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if m.Has(ModMeta) {
		parts = append(parts, "meta")
	}
	return strings.Join(parts, "+")
}

// primary folds meta into ctrl so that Cmd and Ctrl shortcuts coincide.
func (m Modifier) primary() Modifier {
	if m.Has(ModMeta) {
		m = m&^ModMeta | ModCtrl
	}
	return m
}

// Key names for non printable keys. Printable keys use their lower case
// character.
const (
	KeyEscape     = "escape"
	KeyDelete     = "delete"
	KeyBackspace  = "backspace"
	KeyArrowUp    = "arrowup"
	KeyArrowDown  = "arrowdown"
	KeyArrowLeft  = "arrowleft"
	KeyArrowRight = "arrowright"
	KeyAlt        = "alt"
)

var aliases = map[string]string{
	"esc":   KeyEscape,
	"del":   KeyDelete,
	"bs":    KeyBackspace,
	"up":    KeyArrowUp,
	"down":  KeyArrowDown,
	"left":  KeyArrowLeft,
	"right": KeyArrowRight,
	"plus":  "+",
	"minus": "-",
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	if a, ok := aliases[k]; ok {
		return a
	}
	return k
}

// KeyEvent is one key press or release.
type KeyEvent struct {
	Key  string
	Mods Modifier
}

// Key returns a normalised key event.
func Key(name string, mods Modifier) KeyEvent {
	return KeyEvent{Key: normalizeKey(name), Mods: mods}
}

// IsArrow reports whether the event is one of the arrow keys.
func (e KeyEvent) IsArrow() bool {
	switch normalizeKey(e.Key) {
	case KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight:
		return true
	}
	return false
}

// Chord is a modifier set plus key, e.g. ctrl+shift+z.
type Chord struct {
	Key  string
	Mods Modifier
}

func (c Chord) String() string {
	if c.Mods == ModNone {
		return c.Key
	}
	return c.Mods.String() + "+" + c.Key
}

// Matches compares modifiers exactly, with meta counting as ctrl.
func (c Chord) Matches(e KeyEvent) bool {
	return c.Key == normalizeKey(e.Key) && c.Mods.primary() == e.Mods.primary()
}

// ParseChord parses "ctrl+c", "Ctrl+Shift+Z", "delete" or "ctrl++".
func ParseChord(spec string) (Chord, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Chord{}, ErrEmptyChord
	}
	key := ""
	switch {
	case spec == "+":
		return Chord{Key: "+"}, nil
	case strings.HasSuffix(spec, "++"):
		key = "+"
		spec = strings.TrimSuffix(spec, "++")
	default:
		i := strings.LastIndex(spec, "+")
		key = spec[i+1:]
		if i < 0 {
			spec = ""
		} else {
			spec = spec[:i]
		}
	}
	key = normalizeKey(key)
	if key == "" {
		return Chord{}, fmt.Errorf("%w: missing key", ErrInvalidChord)
	}
	var mods Modifier
	if spec != "" {
		for _, p := range strings.Split(spec, "+") {
			switch strings.ToLower(strings.TrimSpace(p)) {
			case "ctrl", "control", "c":
				mods |= ModCtrl
			case "alt", "option", "a":
				mods |= ModAlt
			case "shift", "s":
				mods |= ModShift
			case "meta", "cmd", "super", "m":
				mods |= ModMeta
			default:
				return Chord{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidChord, p)
			}
		}
	}
	return Chord{Key: key, Mods: mods}, nil
}

// MustChord is ParseChord for literals.
func MustChord(spec string) Chord {
	c, err := ParseChord(spec)
	if err != nil {
		panic(err)
	}
	return c
}
