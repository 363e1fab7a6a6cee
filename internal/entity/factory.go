/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package entity

import (
	"fmt"
	"slices"

	"gocanvas/internal/textlayout"
	"gocanvas/internal/vector"
)

// Constructor fills kind specific defaults on an entity after defaults and
// descriptor values have been merged.
type Constructor func(e *Entity)

type kindSpec struct {
	super SuperType
	ctor  Constructor
}

// Factory resolves descriptor types to constructors. The builtin kinds are
// always present; hosts add their own variants with Register.
type Factory struct {
	kinds map[Kind]kindSpec
	text  textlayout.Provider
}

func NewFactory() *Factory {
	f := &Factory{kinds: map[Kind]kindSpec{}, text: textlayout.BasicProvider{}}
	shape := func(w, h float64) Constructor {
		return func(e *Entity) { defaultSize(e, w, h) }
	}
	f.kinds[KindRect] = kindSpec{SuperPlain, shape(40, 40)}
	f.kinds[KindCircle] = kindSpec{SuperPlain, shape(40, 40)}
	f.kinds[KindTriangle] = kindSpec{SuperPlain, shape(40, 40)}
	f.kinds[KindText] = kindSpec{SuperPlain, f.newText}
	f.kinds[KindTextbox] = kindSpec{SuperPlain, f.newText}
	f.kinds[KindImage] = kindSpec{SuperImage, nil}
	f.kinds[KindSVG] = kindSpec{SuperPlain, shape(40, 40)}
	f.kinds[KindGroup] = kindSpec{SuperPlain, nil}
	f.kinds[KindActiveSelection] = kindSpec{SuperPlain, nil}
	f.kinds[KindNode] = kindSpec{SuperNode, newNode}
	f.kinds[KindPort] = kindSpec{SuperPort, newPort}
	f.kinds[KindLink] = kindSpec{SuperLink, nil}
	f.kinds[KindLine] = kindSpec{SuperDrawing, FitPoints}
	f.kinds[KindPolygon] = kindSpec{SuperDrawing, FitPoints}
	f.kinds[KindGrid] = kindSpec{SuperPlain, nil}
	return f
}

// Register adds or replaces a kind. A nil constructor is allowed.
func (f *Factory) Register(kind Kind, super SuperType, ctor Constructor) {
	f.kinds[kind] = kindSpec{super: super, ctor: ctor}
}

// SetTextProvider replaces the font source used to size text entities.
func (f *Factory) SetTextProvider(p textlayout.Provider) { f.text = p }

// Known reports whether kind has a constructor.
func (f *Factory) Known(kind Kind) bool {
	_, ok := f.kinds[kind]
	return ok
}

// Kinds lists the registered kinds in sorted order.
func (f *Factory) Kinds() []Kind {
	out := make([]Kind, 0, len(f.kinds))
	for k := range f.kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Classify fills the default super type on d and its children where the
// payload left it out.
func (f *Factory) Classify(d *Descriptor) {
	d.Walk(func(x *Descriptor) {
		if x.SuperType == SuperPlain {
			x.SuperType = f.kinds[x.Kind].super
		}
	})
}

// SuperTypeOf returns the default super type for kind.
func (f *Factory) SuperTypeOf(kind Kind) SuperType { return f.kinds[kind].super }

// Create builds the entity for d. An unknown type is a programmer error and
// panics with ErrUnknownKind.
func (f *Factory) Create(d *Descriptor) *Entity {
	spec, ok := f.kinds[d.Kind]
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind))
	}
	e := d.ToEntity()
	if e.SuperType == SuperPlain {
		e.SuperType = spec.super
	}
	if spec.ctor != nil {
		spec.ctor(e)
	}
	return e
}

func defaultSize(e *Entity, w, h float64) {
	if e.Width == 0 {
		e.Width = w
	}
	if e.Height == 0 {
		e.Height = h
	}
}

// newText sizes text to its content. A textbox with a width keeps it and
// wraps into that width.
func (f *Factory) newText(e *Entity) {
	if e.FontSize == 0 {
		e.FontSize = 32
	}
	if e.Text == "" {
		e.Text = "Text"
	}
	spec := textlayout.FontSpec{Size: e.FontSize}
	if fam, ok := e.Extra["fontFamily"].(string); ok {
		spec.Family = fam
	}
	if e.Kind == KindTextbox && e.Width > 0 {
		box := textlayout.Layout(f.text, spec, e.Text, e.Width)
		defaultSize(e, e.Width, box.Height)
		return
	}
	w, h := textlayout.Measure(f.text, spec, e.Text)
	defaultSize(e, w, h)
}

func newNode(e *Entity) {
	defaultSize(e, 200, 40)
	if e.FromPorts == 0 {
		e.FromPorts = 1
	}
	if e.Stroke == "" {
		e.Stroke = "rgba(0, 0, 0, 0.2)"
	}
}

// PortSize is the diameter of a port circle.
const PortSize = 10

func newPort(e *Entity) {
	defaultSize(e, PortSize, PortSize)
	e.Selectable = false
}

// FitPoints derives the bounding geometry of a point based entity.
func FitPoints(e *Entity) {
	if len(e.Points) == 0 {
		return
	}
	r := vector.BoundsOf(vector.Identity, e.Points...)
	e.Left, e.Top, e.Width, e.Height = r.X, r.Y, r.W, r.H
}
