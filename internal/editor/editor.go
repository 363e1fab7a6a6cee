/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor wires the canvas core together: registry, journal,
// clipboard, arrangement, interaction modes and the event router. An Editor
// is owned by one goroutine; background image loads are applied when the
// owner drains its task queue.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gocanvas/internal/arrange"
	"gocanvas/internal/clipboard"
	"gocanvas/internal/entity"
	"gocanvas/internal/event"
	"gocanvas/internal/input"
	"gocanvas/internal/interaction"
	"gocanvas/internal/log"
	"gocanvas/internal/registry"
	"gocanvas/internal/scene"
	"gocanvas/internal/task"
	"gocanvas/internal/undo"
	"gocanvas/internal/vector"
)

var ErrImportCancelled = errors.New("import cancelled")

// Options configure an Editor.
type Options struct {
	Editable    bool
	ZoomEnabled bool
	MinZoom     float64
	MaxZoom     float64
	ZoomStep    float64
	// Width and Height size the headless surface when none is supplied.
	Width  float64
	Height float64

	PropertiesToInclude []string
	Workarea            registry.WorkareaOptions
	Grid                bool
	GridSize            float64

	Guidelines        bool
	GuidelineOptions  vector.SnapOptions
	PlatformClipboard bool
	ArrowStep         float64
	// Bindings override the default chords per action.
	Bindings map[input.Action][]string

	Journal undo.Config

	ObjectOption          map[string]any
	ActiveSelectionOption map[string]any
}

func DefaultOptions() Options {
	ro := registry.DefaultOptions()
	return Options{
		Editable:         true,
		ZoomEnabled:      true,
		MinZoom:          0.3,
		MaxZoom:          3,
		ZoomStep:         0.05,
		Width:            800,
		Height:           600,
		Workarea:         ro.Workarea,
		GridSize:         ro.GridSize,
		Guidelines:       true,
		GuidelineOptions: vector.DefaultSnapOptions(),
		ArrowStep:        2,
		Journal:          undo.Config{MaxEntries: 100},
	}
}

type settings struct {
	surface scene.Surface
	system  clipboard.System
	loader  registry.Loader
	factory *entity.Factory
	ids     func() string
}

// Option customises an Editor.
type Option func(*settings)

// WithSurface drives s instead of a headless surface.
func WithSurface(s scene.Surface) Option { return func(o *settings) { o.surface = s } }

// WithSystemClipboard sets the platform clipboard.
func WithSystemClipboard(c clipboard.System) Option { return func(o *settings) { o.system = c } }

// WithLoader sets the image loader.
func WithLoader(l registry.Loader) Option { return func(o *settings) { o.loader = l } }

// WithFactory supplies the entity factory, with host kinds registered.
func WithFactory(f *entity.Factory) Option { return func(o *settings) { o.factory = f } }

// WithIDs replaces the id generator.
func WithIDs(fn func() string) Option { return func(o *settings) { o.ids = fn } }

// Editor is the host facing canvas editor.
type Editor struct {
	opts    Options
	surface scene.Surface
	bus     *event.Bus
	tasks   *task.Queue
	reg     *registry.Registry
	journal *undo.Journal
	clip    *clipboard.Clipboard
	arrange *arrange.Manager
	machine *interaction.Machine
	keymap  *input.Keymap
	guides  *vector.Guidelines

	focused     bool
	panKey      bool
	prevTarget  *entity.Entity
	highlighted *entity.Entity
	savedStroke string
	hovered     *entity.Entity

	log *slog.Logger
}

func New(opts Options, options ...Option) (*Editor, error) {
	var s settings
	for _, o := range options {
		o(&s)
	}
	if s.surface == nil {
		s.surface = scene.NewMemory(opts.Width, opts.Height)
	}
	keymap := input.DefaultKeymap()
	for action, specs := range opts.Bindings {
		if err := keymap.Bind(action, specs...); err != nil {
			return nil, fmt.Errorf("keyboard bindings: %w", err)
		}
	}
	if opts.ZoomStep <= 0 {
		opts.ZoomStep = 0.05
	}
	if opts.ArrowStep <= 0 {
		opts.ArrowStep = 2
	}

	ed := &Editor{
		opts:    opts,
		surface: s.surface,
		bus:     event.NewBus(),
		tasks:   task.New(),
		machine: interaction.NewMachine(),
		keymap:  keymap,
		guides:  vector.NewGuidelines(opts.GuidelineOptions),
		log:     log.WithComponent("editor"),
	}
	ro := registry.Options{
		Editable:              opts.Editable,
		PropertiesToInclude:   opts.PropertiesToInclude,
		GridSize:              opts.GridSize,
		Grid:                  opts.Grid,
		Workarea:              opts.Workarea,
		ObjectOption:          opts.ObjectOption,
		ActiveSelectionOption: opts.ActiveSelectionOption,
	}
	regOpts := []registry.Option{registry.WithTasks(ed.tasks)}
	if s.loader != nil {
		regOpts = append(regOpts, registry.WithLoader(s.loader))
	}
	if s.ids != nil {
		regOpts = append(regOpts, registry.WithIDs(s.ids))
	}
	if s.factory == nil {
		s.factory = entity.NewFactory()
	}
	ed.reg = registry.New(ed.surface, s.factory, ed.bus, ro, regOpts...)
	ed.surface.OnSelection(ed.selectionChanged)
	ed.reg.InitWorkarea()

	ed.journal = undo.New(opts.Journal, ed.reg.Snapshot, ed.reg.Restore)
	ed.journal.OnTransaction(ed.bus.Transaction.Publish)
	ed.reg.SetJournal(ed.journal)
	if err := ed.journal.Reset(); err != nil {
		return nil, fmt.Errorf("journal baseline: %w", err)
	}
	ed.machine.OnChange(func(from, to interaction.Mode) {
		ed.log.Debug("interaction", "from", from, "to", to)
		ed.bus.Interaction.Publish(event.InteractionEvent{From: from, To: to})
	})
	ed.clip = clipboard.New(ed.reg, s.system, opts.PlatformClipboard)
	ed.arrange = arrange.New(ed.reg)
	return ed, nil
}

func (ed *Editor) Options() Options                { return ed.opts }
func (ed *Editor) Bus() *event.Bus                 { return ed.bus }
func (ed *Editor) Surface() scene.Surface          { return ed.surface }
func (ed *Editor) Registry() *registry.Registry    { return ed.reg }
func (ed *Editor) Journal() *undo.Journal          { return ed.journal }
func (ed *Editor) Clipboard() *clipboard.Clipboard { return ed.clip }
func (ed *Editor) Arrange() *arrange.Manager       { return ed.arrange }
func (ed *Editor) Machine() *interaction.Machine   { return ed.machine }
func (ed *Editor) Keymap() *input.Keymap           { return ed.keymap }
func (ed *Editor) Guidelines() *vector.Guidelines  { return ed.guides }
func (ed *Editor) Tasks() *task.Queue              { return ed.tasks }

// Drain applies finished background work, such as loaded images.
func (ed *Editor) Drain() int { return ed.tasks.Drain() }

// Settle waits for all background work and applies it.
func (ed *Editor) Settle(ctx context.Context) error { return ed.tasks.Settle(ctx) }

func (ed *Editor) selectionChanged(active *entity.Entity) {
	if active != nil && active.IsComposite() {
		ed.reg.StyleSelection(active)
	}
	ed.bus.Select.Publish(active)
}

// Add inserts an entity built from d and records it.
func (ed *Editor) Add(d *entity.Descriptor, centered bool) (*entity.Entity, error) {
	return ed.reg.Add(d, centered, false)
}

// Remove deletes target, or the active entity when target is nil.
func (ed *Editor) Remove(target *entity.Entity) error { return ed.reg.Remove(target) }

func (ed *Editor) Undo() bool { return ed.journal.Undo() }
func (ed *Editor) Redo() bool { return ed.journal.Redo() }

func (ed *Editor) Copy() bool                { return ed.clip.Copy() }
func (ed *Editor) Cut() bool                 { return ed.clip.Cut() }
func (ed *Editor) Duplicate() *entity.Entity { return ed.reg.Duplicate() }

// Paste inserts the in-memory clipboard buffer.
func (ed *Editor) Paste() error { return ed.clip.Paste() }

// PasteText handles a paste event carrying platform clipboard text. It is
// ignored while the canvas does not have focus.
func (ed *Editor) PasteText(text string) error {
	if !ed.focused {
		return nil
	}
	if !ed.opts.PlatformClipboard {
		return ed.clip.Paste()
	}
	return ed.clip.PasteText(text)
}

// PasteSystem reads the platform clipboard and pastes its content.
func (ed *Editor) PasteSystem() error {
	text, err := ed.clip.System().ReadAll()
	if err != nil {
		return fmt.Errorf("read clipboard: %w", err)
	}
	return ed.clip.PasteText(text)
}
