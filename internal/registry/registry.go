/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package registry is the canonical id indexed store of scene entities. Every
// create, lookup, mutation and removal goes through it so that nodes, their
// ports and the links between ports stay consistent.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"gocanvas/internal/entity"
	"gocanvas/internal/event"
	"gocanvas/internal/log"
	"gocanvas/internal/scene"
	"gocanvas/internal/task"
	"gocanvas/internal/undo"
)

var (
	ErrNotDeletable = errors.New("entity is not deletable")
	ErrDanglingLink = errors.New("link endpoint does not resolve")
	ErrNoWorkarea   = errors.New("no workarea")
	ErrDuplicateID  = errors.New("duplicate entity id")
)

// WorkareaOptions configure the editable surface.
type WorkareaOptions struct {
	Width           float64
	Height          float64
	Layout          entity.Layout
	BackgroundColor string
	Src             string
}

// Options configure a Registry.
type Options struct {
	// Editable is the default for descriptors without an editable flag.
	Editable bool
	// PropertiesToInclude lists host properties kept on export and copy.
	PropertiesToInclude []string
	// GridSize is the duplicate and paste offset.
	GridSize float64
	// Grid adds the non interactive grid entity over the workarea.
	Grid bool

	Workarea WorkareaOptions

	// ObjectOption is merged under every added descriptor.
	ObjectOption map[string]any
	// ActiveSelectionOption is applied to every multi selection composite.
	ActiveSelectionOption map[string]any
}

func DefaultOptions() Options {
	return Options{
		Editable: true,
		GridSize: 10,
		Workarea: WorkareaOptions{
			Width:           600,
			Height:          400,
			Layout:          entity.LayoutFixed,
			BackgroundColor: "#fff",
		},
	}
}

// Registry owns entity state. It is not safe for concurrent use; image loads
// complete through the task queue on the owner goroutine.
type Registry struct {
	surface scene.Surface
	factory *entity.Factory
	bus     *event.Bus
	journal *undo.Journal
	tasks   *task.Queue
	loader  Loader
	opts    Options

	byID     map[string]*entity.Entity
	objects  []*entity.Entity
	workarea *entity.Entity
	grid     *entity.Entity
	elements map[string]*entity.Element

	animating bool
	frames    int

	newID func() string
	log   *slog.Logger
}

// Option customises a Registry.
type Option func(*Registry)

// WithLoader replaces the image loader.
func WithLoader(l Loader) Option { return func(r *Registry) { r.loader = l } }

// WithTasks sets the queue image loads complete through.
func WithTasks(q *task.Queue) Option { return func(r *Registry) { r.tasks = q } }

// WithIDs replaces the id generator.
func WithIDs(fn func() string) Option { return func(r *Registry) { r.newID = fn } }

func New(s scene.Surface, f *entity.Factory, bus *event.Bus, opts Options, options ...Option) *Registry {
	if opts.GridSize <= 0 {
		opts.GridSize = 10
	}
	r := &Registry{
		surface:  s,
		factory:  f,
		bus:      bus,
		opts:     opts,
		byID:     map[string]*entity.Entity{},
		elements: map[string]*entity.Element{},
		newID:    func() string { return uuid.New().String() },
		log:      log.WithComponent("registry"),
	}
	for _, o := range options {
		o(r)
	}
	if r.tasks == nil {
		r.tasks = task.New()
	}
	if r.loader == nil {
		r.loader = FileLoader{}
	}
	return r
}

// SetJournal attaches the journal that records snapshots.
func (r *Registry) SetJournal(j *undo.Journal) { r.journal = j }

func (r *Registry) Journal() *undo.Journal   { return r.journal }
func (r *Registry) Surface() scene.Surface   { return r.surface }
func (r *Registry) Factory() *entity.Factory { return r.factory }
func (r *Registry) Bus() *event.Bus          { return r.bus }
func (r *Registry) Tasks() *task.Queue       { return r.tasks }
func (r *Registry) Options() Options         { return r.opts }

// Editable reports the registry wide editable default.
func (r *Registry) Editable() bool { return r.opts.Editable }

// SetEditable changes the editable default for later adds.
func (r *Registry) SetEditable(v bool) { r.opts.Editable = v }

// GridSize is the offset used by duplicate and paste.
func (r *Registry) GridSize() float64 { return r.opts.GridSize }

// NewID returns a fresh entity id.
func (r *Registry) NewID() string { return r.newID() }

// Replaying reports whether the journal is applying a snapshot or capture is
// otherwise suppressed.
func (r *Registry) Replaying() bool { return r.journal != nil && r.journal.Active() }

// Save records a snapshot unless a replay is in progress.
func (r *Registry) Save(label string) {
	if r.journal == nil || r.journal.Active() {
		return
	}
	r.journal.Save(label)
}

// Suppress runs fn without recording snapshots.
func (r *Registry) Suppress(fn func() error) error {
	if r.journal == nil {
		return fn()
	}
	return r.journal.Suppress(fn)
}

// FindByID returns the entity with id. A miss is logged and yields nil.
func (r *Registry) FindByID(id string) *entity.Entity {
	if e, ok := r.byID[id]; ok {
		return e
	}
	r.log.Warn("not found object by id", "id", id)
	return nil
}

// Lookup is FindByID without the warning.
func (r *Registry) Lookup(id string) (*entity.Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Find resolves e through the index by its id.
func (r *Registry) Find(e *entity.Entity) *entity.Entity {
	if e == nil {
		return nil
	}
	return r.FindByID(e.ID)
}

// Objects returns the primary entities in paint order: no workarea, grid or
// ports. The id index is rebuilt from the surface as a side effect.
func (r *Registry) Objects() []*entity.Entity {
	r.reindex()
	return append([]*entity.Entity(nil), r.objects...)
}

// Len is the number of primary entities.
func (r *Registry) Len() int { return len(r.objects) }

func (r *Registry) reindex() {
	r.byID = map[string]*entity.Entity{}
	r.objects = r.objects[:0]
	for _, e := range r.surface.Objects() {
		entity.Walk(e, func(c *entity.Entity) {
			if c.ID != "" {
				r.byID[c.ID] = c
			}
		})
		if e.ID == "" || e.IsWorkarea() || e.IsGrid() || e.IsPort() {
			continue
		}
		r.objects = append(r.objects, e)
	}
}

func (r *Registry) register(e *entity.Entity) {
	entity.Walk(e, func(c *entity.Entity) { r.byID[c.ID] = c })
}

func (r *Registry) unregister(e *entity.Entity) {
	entity.Walk(e, func(c *entity.Entity) { delete(r.byID, c.ID) })
}

// merge overlays partial onto the wire form of base and decodes the result.
func merge(base *entity.Descriptor, partial map[string]any) (*entity.Descriptor, error) {
	raw, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	for k, v := range partial {
		m[k] = v
	}
	raw, err = json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode partial: %w", err)
	}
	out := &entity.Descriptor{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode partial: %w", err)
	}
	return out, nil
}

// withDefaults layers d over the configured object option.
func (r *Registry) withDefaults(d *entity.Descriptor) *entity.Descriptor {
	if len(r.opts.ObjectOption) == 0 {
		return d
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return d
	}
	over := map[string]any{}
	if err := json.Unmarshal(raw, &over); err != nil {
		return d
	}
	base := map[string]any{}
	for k, v := range r.opts.ObjectOption {
		base[k] = v
	}
	for k, v := range over {
		base[k] = v
	}
	raw, err = json.Marshal(base)
	if err != nil {
		return d
	}
	out := &entity.Descriptor{}
	if err := json.Unmarshal(raw, out); err != nil {
		r.log.Warn("object option ignored", "err", err)
		return d
	}
	out.Objects = d.Objects
	return out
}
