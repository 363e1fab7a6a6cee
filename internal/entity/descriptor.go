/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// NodeProperties is the placement block of the reduced node form written to
// the platform clipboard.
type NodeProperties struct {
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	IconName string  `json:"iconName,omitempty"`
}

// Descriptor is the wire form of an entity. Fields whose zero value is a
// meaningful setting are pointers so that an absent key can fall back to a
// default. Links carry node indices on import and resolved ids on export.
type Descriptor struct {
	Entity

	ScaleX  *float64 `json:"scaleX,omitempty"`
	ScaleY  *float64 `json:"scaleY,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`

	Selectable *bool `json:"selectable,omitempty"`
	Movable    *bool `json:"movable,omitempty"`
	Deletable  *bool `json:"deletable,omitempty"`
	Cloneable  *bool `json:"cloneable,omitempty"`
	Editable   *bool `json:"editable,omitempty"`
	Visible    *bool `json:"visible,omitempty"`
	Evented    *bool `json:"evented,omitempty"`

	FromNodeIndex *int `json:"fromNodeIndex,omitempty"`
	ToNodeIndex   *int `json:"toNodeIndex,omitempty"`

	Properties *NodeProperties `json:"properties,omitempty"`
	Objects    []*Descriptor   `json:"objects,omitempty"`
}

func Bool(v bool) *bool        { return &v }
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }

func boolOr(p *bool, d bool) bool {
	if p == nil {
		return d
	}
	return *p
}

func floatOr(p *float64, d float64) float64 {
	if p == nil {
		return d
	}
	return *p
}

// EditableOr returns the descriptor's editable flag or def when unset.
func (d *Descriptor) EditableOr(def bool) bool { return boolOr(d.Editable, def) }

// ToEntity materialises the descriptor with defaults for unset tri-state
// fields. Children are not converted; the registry builds them.
func (d *Descriptor) ToEntity() *Entity {
	e := d.Entity.Clone()
	e.Children = nil
	e.ScaleX = floatOr(d.ScaleX, 1)
	e.ScaleY = floatOr(d.ScaleY, 1)
	e.Opacity = floatOr(d.Opacity, 1)
	e.Selectable = boolOr(d.Selectable, true)
	e.Movable = boolOr(d.Movable, true)
	e.Deletable = boolOr(d.Deletable, true)
	e.Cloneable = boolOr(d.Cloneable, true)
	e.Editable = boolOr(d.Editable, false)
	e.Visible = boolOr(d.Visible, true)
	e.Evented = boolOr(d.Evented, true)
	return e
}

// FromEntity serialises e. Host properties in Extra are kept only when
// listed in include.
func FromEntity(e *Entity, include []string) *Descriptor {
	c := e.Clone()
	d := &Descriptor{Entity: *c}
	d.Entity.Children = nil
	d.Extra = nil
	for k, v := range c.Extra {
		if slices.Contains(include, k) {
			if d.Extra == nil {
				d.Extra = map[string]any{}
			}
			d.Extra[k] = v
		}
	}
	d.ScaleX, d.ScaleY, d.Opacity = Float(c.ScaleX), Float(c.ScaleY), Float(c.Opacity)
	d.Selectable, d.Movable = Bool(c.Selectable), Bool(c.Movable)
	d.Deletable, d.Cloneable = Bool(c.Deletable), Bool(c.Cloneable)
	d.Editable, d.Visible, d.Evented = Bool(c.Editable), Bool(c.Visible), Bool(c.Evented)
	for _, ch := range e.Children {
		d.Objects = append(d.Objects, FromEntity(ch, include))
	}
	return d
}

// Clone deep copies the descriptor.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	out := *d
	out.Entity = *d.Entity.Clone()
	copyPtr := func(p *bool) *bool {
		if p == nil {
			return nil
		}
		return Bool(*p)
	}
	out.Selectable, out.Movable = copyPtr(d.Selectable), copyPtr(d.Movable)
	out.Deletable, out.Cloneable = copyPtr(d.Deletable), copyPtr(d.Cloneable)
	out.Editable, out.Visible, out.Evented = copyPtr(d.Editable), copyPtr(d.Visible), copyPtr(d.Evented)
	if d.ScaleX != nil {
		out.ScaleX = Float(*d.ScaleX)
	}
	if d.ScaleY != nil {
		out.ScaleY = Float(*d.ScaleY)
	}
	if d.Opacity != nil {
		out.Opacity = Float(*d.Opacity)
	}
	if d.FromNodeIndex != nil {
		out.FromNodeIndex = Int(*d.FromNodeIndex)
	}
	if d.ToNodeIndex != nil {
		out.ToNodeIndex = Int(*d.ToNodeIndex)
	}
	if d.Properties != nil {
		p := *d.Properties
		out.Properties = &p
	}
	if d.Objects != nil {
		out.Objects = make([]*Descriptor, len(d.Objects))
		for i, o := range d.Objects {
			out.Objects[i] = o.Clone()
		}
	}
	return &out
}

// Walk visits d and all nested descriptors depth first.
func (d *Descriptor) Walk(fn func(*Descriptor)) {
	if d == nil {
		return
	}
	fn(d)
	for _, o := range d.Objects {
		o.Walk(fn)
	}
}

var (
	knownOnce sync.Once
	known     map[string]bool
)

func knownKeys() map[string]bool {
	knownOnce.Do(func() {
		known = map[string]bool{}
		collectKeys(reflect.TypeOf(Descriptor{}), known)
	})
	return known
}

func collectKeys(t reflect.Type, into map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, into)
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		into[name] = true
	}
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	type plain Descriptor
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	keys := knownKeys()
	for k, v := range raw {
		if keys[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("decode %q: %w", k, err)
		}
		if p.Extra == nil {
			p.Extra = map[string]any{}
		}
		p.Extra[k] = val
	}
	*d = Descriptor(p)
	return nil
}

// MarshalJSON encodes the descriptor with Extra merged into the object.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	type plain Descriptor
	b, err := json.Marshal((*plain)(d))
	if err != nil || len(d.Extra) == 0 {
		return b, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range d.Extra {
		if _, taken := m[k]; taken {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		m[k] = raw
	}
	return json.Marshal(m)
}

// ParseScene decodes a flat array of descriptors. Null elements are dropped.
func ParseScene(data []byte) ([]*Descriptor, error) {
	data = bytes.TrimSpace(data)
	var list []*Descriptor
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	out := list[:0]
	for _, d := range list {
		if d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

// EncodeScene writes descriptors as an indented JSON array.
func EncodeScene(list []*Descriptor) ([]byte, error) {
	if list == nil {
		list = []*Descriptor{}
	}
	return json.MarshalIndent(list, "", "\t")
}
