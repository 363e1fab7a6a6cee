/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package clipboard implements copy, cut and paste. Single entities travel
// as descriptors, either through the platform clipboard as JSON or through
// an in-memory buffer. Multi selections containing graph nodes are kept as
// a live reference and re-identified on paste so that links between the
// copied nodes survive.
package clipboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"gocanvas/internal/entity"
	"gocanvas/internal/log"
	"gocanvas/internal/registry"
)

var (
	ErrEmpty  = errors.New("clipboard is empty")
	ErrDecode = errors.New("clipboard payload is not a scene")
)

// Clipboard is owned by the editor goroutine.
type Clipboard struct {
	reg *registry.Registry
	sys System
	// platform selects the system clipboard for single entity payloads.
	platform bool

	buffer []*entity.Descriptor
	live   []*entity.Entity
	offset float64
	isCut  bool

	log *slog.Logger
}

func New(reg *registry.Registry, sys System, platform bool) *Clipboard {
	if sys == nil {
		sys = &Memory{}
	}
	return &Clipboard{reg: reg, sys: sys, platform: platform, log: log.WithComponent("clipboard")}
}

// UsesPlatform reports whether copies go to the system clipboard.
func (c *Clipboard) UsesPlatform() bool { return c.platform }

// System returns the platform clipboard.
func (c *Clipboard) System() System { return c.sys }

// IsCut reports whether the next paste moves instead of duplicating.
func (c *Clipboard) IsCut() bool { return c.isCut }

// Empty reports whether the in-memory buffer holds nothing.
func (c *Clipboard) Empty() bool { return c.buffer == nil && c.live == nil }

// nodeForm is the reduced wire form of a single copied node.
type nodeForm struct {
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	SuperType     entity.SuperType      `json:"superType"`
	Type          entity.Kind           `json:"type"`
	NodeClazz     string                `json:"nodeClazz"`
	Configuration map[string]any        `json:"configuration"`
	Properties    entity.NodeProperties `json:"properties"`
}

// Copy captures the active entity. It reports false when nothing is active
// or the entity is not cloneable.
func (c *Clipboard) Copy() bool {
	c.isCut = false
	a := c.reg.Surface().ActiveObject()
	if a == nil {
		return false
	}
	if !a.Cloneable {
		return false
	}
	members := registry.Members(a)
	if a.IsComposite() && hasNode(members) {
		c.buffer = nil
		c.live = members
		c.offset = 0
		return true
	}
	include := c.reg.Options().PropertiesToInclude
	if c.platform {
		text, err := c.encode(a, members, include)
		if err != nil {
			c.log.Warn("copy failed", "err", err)
			return false
		}
		if err := c.sys.WriteAll(text); err != nil {
			c.log.Warn("clipboard write failed", "err", err)
			return false
		}
		return true
	}
	c.live = nil
	c.offset = 0
	c.buffer = make([]*entity.Descriptor, 0, len(members))
	for _, m := range members {
		c.buffer = append(c.buffer, entity.FromEntity(m, include))
	}
	return true
}

func (c *Clipboard) encode(a *entity.Entity, members []*entity.Entity, include []string) (string, error) {
	if a.IsNode() {
		icon := a.Icon
		if icon == "" {
			if s, ok := a.Extra["descriptor"].(map[string]any); ok {
				icon, _ = s["icon"].(string)
			}
		}
		form := []nodeForm{{
			Name:          a.Name,
			Description:   a.Description,
			SuperType:     a.SuperType,
			Type:          a.Kind,
			NodeClazz:     a.NodeClazz,
			Configuration: a.Configuration,
			Properties:    entity.NodeProperties{Left: a.Left, Top: a.Top, IconName: icon},
		}}
		b, err := json.MarshalIndent(form, "", "\t")
		return string(b), err
	}
	descs := make([]*entity.Descriptor, 0, len(members))
	for _, m := range members {
		descs = append(descs, entity.FromEntity(m, include))
	}
	b, err := entity.EncodeScene(descs)
	return string(b), err
}

func hasNode(es []*entity.Entity) bool {
	for _, e := range es {
		if e.IsNode() {
			return true
		}
	}
	return false
}

// Cut copies the active entity, removes it and marks the next paste as a
// move: original ids and no offset.
func (c *Clipboard) Cut() bool {
	a := c.reg.Surface().ActiveObject()
	if !c.Copy() {
		return false
	}
	if err := c.reg.Remove(a); err != nil {
		c.log.Debug("cut kept the selection", "err", err)
		return false
	}
	c.isCut = true
	return true
}

// Paste inserts the in-memory buffer and selects the result. Unless the
// buffer came from a cut, entities get fresh ids and are offset by the grid
// size, further on each repeated paste.
func (c *Clipboard) Paste() error {
	if c.Empty() {
		return ErrEmpty
	}
	cut := c.isCut
	c.isCut = false
	padding := c.reg.GridSize()
	if cut {
		padding = 0
	}
	descs := c.contents()
	for _, d := range descs {
		if d.Cloneable != nil && !*d.Cloneable {
			return nil
		}
	}
	descs = c.reg.Reidentify(descs, !cut)
	shift := c.offset + padding
	for _, d := range descs {
		if !d.IsLink() {
			moveDescriptor(d, shift, shift)
		}
		d.Evented = entity.Bool(true)
	}
	created, err := c.insert(descs)
	if err != nil {
		return err
	}
	if cut {
		c.buffer, c.live, c.offset = nil, nil, 0
	} else {
		c.offset = shift
	}
	c.reg.Save("paste")
	for _, e := range created {
		c.reg.Bus().Add.Publish(e)
	}
	c.reg.Surface().DiscardActiveObject()
	c.reg.SelectMany(created)
	return nil
}

func (c *Clipboard) contents() []*entity.Descriptor {
	if c.live != nil {
		include := c.reg.Options().PropertiesToInclude
		out := make([]*entity.Descriptor, 0, len(c.live))
		for _, e := range c.live {
			out = append(out, entity.FromEntity(e, include))
		}
		return out
	}
	out := make([]*entity.Descriptor, 0, len(c.buffer))
	for _, d := range c.buffer {
		out = append(out, d.Clone())
	}
	return out
}

// insert adds descs as one unit: on any failure the entities added so far
// are removed again.
func (c *Clipboard) insert(descs []*entity.Descriptor) ([]*entity.Entity, error) {
	var created []*entity.Entity
	err := c.reg.Suppress(func() error {
		for _, d := range descs {
			e, err := c.reg.Add(d, false, true)
			if err != nil {
				return err
			}
			created = append(created, e)
		}
		return nil
	})
	if err != nil {
		c.reg.Rollback(created)
		c.log.Warn("paste abandoned", "err", err)
		return nil, err
	}
	return created, nil
}

// PasteText inserts a JSON payload from the platform clipboard. A single
// descriptor is added as is; a list is graph aware: links name their nodes
// by fromNodeIndex/toNodeIndex, counted over the node entries in order, and
// are resolved to the ids the nodes receive here. Malformed payloads leave
// the scene untouched. After a paste the result is copied again so repeated
// pastes cascade.
func (c *Clipboard) PasteText(text string) error {
	if !gjson.Valid(text) {
		c.log.Warn("paste ignored", "err", ErrDecode)
		return ErrDecode
	}
	if payload := gjson.Parse(text); payload.IsArray() {
		if err := c.checkIndices(payload); err != nil {
			c.log.Warn("paste ignored", "err", err)
			return err
		}
	}
	descs, err := entity.ParseScene([]byte(text))
	if err != nil {
		c.log.Warn("paste ignored", "err", err)
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(descs) == 0 {
		return ErrEmpty
	}
	for _, d := range descs {
		if !c.reg.Factory().Known(d.Kind) {
			return fmt.Errorf("%w: unknown type %q", ErrDecode, d.Kind)
		}
		c.reg.Factory().Classify(d)
	}
	padding := c.reg.GridSize()
	if c.isCut {
		padding = 0
	}

	var created []*entity.Entity
	if len(descs) == 1 {
		d := descs[0]
		if d.Cloneable != nil && !*d.Cloneable {
			return nil
		}
		c.prepare(d, padding)
		created, err = c.insert(descs)
		if err != nil {
			return err
		}
		c.reg.Select(created[0])
	} else {
		c.resolveIndices(descs)
		for _, d := range descs {
			if !d.IsLink() {
				c.prepare(d, padding)
			}
		}

		created, err = c.insert(descs)
		if err != nil {
			return err
		}
		var nodes, targets []*entity.Entity
		for _, e := range created {
			if e.IsNode() {
				nodes = append(nodes, e)
			} else {
				targets = append(targets, e)
			}
		}
		if len(nodes) == 0 {
			nodes = targets
		}
		c.reg.Surface().DiscardActiveObject()
		c.reg.SelectMany(nodes)
	}
	c.reg.Save("paste")
	c.Copy()
	return nil
}

// prepare assigns a free id and the pasted position.
func (c *Clipboard) prepare(d *entity.Descriptor, padding float64) {
	if _, taken := c.reg.Lookup(d.ID); d.ID == "" || taken {
		d.ID = c.reg.NewID()
	}
	if p := d.Properties; p != nil {
		d.Left = p.Left + padding
		d.Top = p.Top + padding
		if d.Icon == "" {
			d.Icon = p.IconName
		}
		return
	}
	moveDescriptor(d, padding, padding)
}

// checkIndices walks the raw payload and checks every link's
// fromNodeIndex/toNodeIndex against the nodes listed before it, without
// decoding the entries.
func (c *Clipboard) checkIndices(payload gjson.Result) error {
	nodes := 0
	var err error
	payload.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		super := entity.SuperType(v.Get("superType").String())
		if super == entity.SuperPlain {
			super = c.reg.Factory().SuperTypeOf(entity.Kind(v.Get("type").String()))
		}
		switch super {
		case entity.SuperNode:
			nodes++
		case entity.SuperLink:
			from, to := v.Get("fromNodeIndex"), v.Get("toNodeIndex")
			if !from.Exists() || !to.Exists() {
				return true
			}
			i, j := from.Int(), to.Int()
			if i < 0 || j < 0 || i >= int64(nodes) || j >= int64(nodes) {
				err = fmt.Errorf("%w: link %q references node %d/%d of %d", ErrDecode, v.Get("id").String(), i, j, nodes)
				return false
			}
		}
		return true
	})
	return err
}

// resolveIndices rewrites link endpoints given by node index to the ids
// the nodes receive here. Indices were checked by checkIndices.
func (c *Clipboard) resolveIndices(descs []*entity.Descriptor) {
	var nodes []*entity.Descriptor
	taken := map[string]bool{}
	for _, d := range descs {
		if d.IsLink() {
			continue
		}
		if _, inUse := c.reg.Lookup(d.ID); d.ID == "" || inUse || taken[d.ID] {
			d.ID = c.reg.NewID()
		}
		taken[d.ID] = true
		if d.IsNode() {
			nodes = append(nodes, d)
		}
	}
	for _, d := range descs {
		if !d.IsLink() || d.FromNodeIndex == nil || d.ToNodeIndex == nil {
			continue
		}
		d.FromNodeID = nodes[*d.FromNodeIndex].ID
		d.ToNodeID = nodes[*d.ToNodeIndex].ID
		d.FromPortID, d.ToPortID = "", ""
		if _, inUse := c.reg.Lookup(d.ID); d.ID == "" || inUse || taken[d.ID] {
			d.ID = c.reg.NewID()
		}
		taken[d.ID] = true
	}
}

func moveDescriptor(d *entity.Descriptor, dx, dy float64) {
	d.Walk(func(x *entity.Descriptor) {
		x.Left += dx
		x.Top += dy
		for i := range x.Points {
			x.Points[i].X += dx
			x.Points[i].Y += dy
		}
	})
}
