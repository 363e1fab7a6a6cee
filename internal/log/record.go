/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is one record captured by a Recorder.
type Entry struct {
	Level     slog.Level
	Message   string
	Component string
	Attrs     map[string]string
}

// Recorder is a slog handler that keeps records in memory. Tests install it
// with Use(slog.New(rec)) to assert on warnings.
type Recorder struct {
	store *recordStore
	attrs []slog.Attr
}

type recordStore struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder { return &Recorder{store: &recordStore{}} }

func (r *Recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	e := Entry{Level: rec.Level, Message: rec.Message, Attrs: map[string]string{}}
	add := func(a slog.Attr) bool {
		if a.Key == "component" {
			e.Component = a.Value.String()
		}
		e.Attrs[a.Key] = attrValueString(a.Value)
		return true
	}
	for _, a := range r.attrs {
		add(a)
	}
	rec.Attrs(add)
	r.store.mu.Lock()
	r.store.entries = append(r.store.entries, e)
	r.store.mu.Unlock()
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	na := append(append([]slog.Attr(nil), r.attrs...), attrs...)
	return &Recorder{store: r.store, attrs: na}
}

func (r *Recorder) WithGroup(string) slog.Handler { return r }

// Entries returns a copy of the captured records.
func (r *Recorder) Entries() []Entry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]Entry(nil), r.store.entries...)
}

// Count returns how many records at level or above were captured for component.
// An empty component matches all.
func (r *Recorder) Count(level slog.Level, component string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level >= level && (component == "" || e.Component == component) {
			n++
		}
	}
	return n
}
