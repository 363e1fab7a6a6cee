/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo implements the transaction journal: a snapshot based
// undo/redo history with a re-entrancy guard around replays.
package undo

import (
	"fmt"
	"time"

	"gocanvas/internal/log"
)

// Transaction is one labelled snapshot of the full scene state.
// Blob content is opaque to the journal.
type Transaction struct {
	Label string
	Blob  []byte
	TS    time.Time
}

// Kind tells undo from redo in an Event.
type Kind string

const (
	KindUndo Kind = "undo"
	KindRedo Kind = "redo"
)

// Event is published after each undo or redo. Label is the transaction that
// was reverted or re-applied.
type Event struct {
	Kind  Kind
	Label string
}

// Config controls depth and memory caps.
type Config struct {
	// MaxEntries limits the undo stack (0 means unlimited). Oldest entries go first.
	MaxEntries int
	// MaxBytes is a soft cap on the summed blob size of the undo stack.
	MaxBytes int
	// Disabled turns Save into a no-op.
	Disabled bool
}

// Capture serialises the live state.
type Capture func() ([]byte, error)

// Apply replaces the live state with a captured one.
type Apply func(blob []byte) error

// Journal keeps the undo and redo stacks plus the current state. It is owned
// by a single goroutine; replays run with the journal marked active so that
// mutations triggered by the replay do not record snapshots of their own.
type Journal struct {
	cfg     Config
	capture Capture
	apply   Apply

	undo  []Transaction
	redo  []Transaction
	state Transaction

	active     bool
	totalBytes int
	onEvent    func(Event)
}

func New(cfg Config, capture Capture, apply Apply) *Journal {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	return &Journal{cfg: cfg, capture: capture, apply: apply}
}

// OnTransaction registers the listener for undo and redo.
func (j *Journal) OnTransaction(fn func(Event)) { j.onEvent = fn }

// Active reports whether a replay or suppressed operation is running.
func (j *Journal) Active() bool { return j.active }

// Suppress runs fn with snapshot capture disabled. Nested calls are allowed.
func (j *Journal) Suppress(fn func() error) error {
	prev := j.active
	j.active = true
	defer func() { j.active = prev }()
	return fn()
}

// Reset captures the live state as the new baseline and drops all history.
func (j *Journal) Reset() error {
	blob, err := j.capture()
	if err != nil {
		return fmt.Errorf("capture baseline: %w", err)
	}
	j.undo, j.redo = nil, nil
	j.totalBytes = 0
	j.state = Transaction{Blob: blob, TS: time.Now()}
	return nil
}

// Save records the live state under label. The previous state moves onto the
// undo stack and the redo stack is cleared. It does nothing while active or
// disabled and reports whether a snapshot was taken.
func (j *Journal) Save(label string) bool {
	if j.active || j.cfg.Disabled {
		return false
	}
	blob, err := j.capture()
	if err != nil {
		log.WithComponent("journal").Error("capture failed", "label", label, "err", err)
		return false
	}
	if j.state.Blob != nil {
		j.undo = append(j.undo, j.state)
		j.totalBytes += len(j.state.Blob)
	}
	j.state = Transaction{Label: label, Blob: blob, TS: time.Now()}
	j.redo = nil
	j.enforceCaps()
	log.WithComponent("journal").Debug("saved", "label", label, "undo", len(j.undo))
	return true
}

// Undo restores the state before the latest transaction. An empty stack is a
// no-op.
func (j *Journal) Undo() bool {
	if j.active || len(j.undo) == 0 {
		return false
	}
	prev := j.undo[len(j.undo)-1]
	j.undo = j.undo[:len(j.undo)-1]
	j.totalBytes -= len(prev.Blob)
	undone := j.state
	j.redo = append(j.redo, undone)
	j.state = prev
	j.replay(prev, Event{Kind: KindUndo, Label: undone.Label})
	return true
}

// Redo re-applies the latest undone transaction. An empty stack is a no-op.
func (j *Journal) Redo() bool {
	if j.active || len(j.redo) == 0 {
		return false
	}
	next := j.redo[len(j.redo)-1]
	j.redo = j.redo[:len(j.redo)-1]
	j.undo = append(j.undo, j.state)
	j.totalBytes += len(j.state.Blob)
	j.state = next
	j.enforceCaps()
	j.replay(next, Event{Kind: KindRedo, Label: next.Label})
	return true
}

func (j *Journal) replay(t Transaction, ev Event) {
	err := j.Suppress(func() error { return j.apply(t.Blob) })
	if err != nil {
		log.WithComponent("journal").Error("replay failed", "kind", ev.Kind, "label", ev.Label, "err", err)
	}
	if j.onEvent != nil {
		j.onEvent(ev)
	}
}

// CanUndo reports whether Undo would do anything.
func (j *Journal) CanUndo() bool { return len(j.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (j *Journal) CanRedo() bool { return len(j.redo) > 0 }

// State returns the transaction describing the live state.
func (j *Journal) State() Transaction { return j.state }

// Stats returns stack depths and the accounted undo bytes.
func (j *Journal) Stats() (undo, redo, totalBytes int) {
	return len(j.undo), len(j.redo), j.totalBytes
}

func (j *Journal) enforceCaps() {
	if j.cfg.MaxEntries > 0 && len(j.undo) > j.cfg.MaxEntries {
		toDrop := len(j.undo) - j.cfg.MaxEntries
		for i := 0; i < toDrop; i++ {
			j.totalBytes -= len(j.undo[i].Blob)
		}
		j.undo = append([]Transaction{}, j.undo[toDrop:]...)
	}
	for j.cfg.MaxBytes > 0 && j.totalBytes > j.cfg.MaxBytes && len(j.undo) > 0 {
		j.totalBytes -= len(j.undo[0].Blob)
		j.undo = j.undo[1:]
	}
}
