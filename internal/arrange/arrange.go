/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package arrange converts between multi selections and groups and changes
// the paint order of the active entity.
package arrange

import (
	"log/slog"

	"gocanvas/internal/entity"
	"gocanvas/internal/log"
	"gocanvas/internal/registry"
)

type Manager struct {
	reg *registry.Registry
	log *slog.Logger
}

func New(reg *registry.Registry) *Manager {
	return &Manager{reg: reg, log: log.WithComponent("arrange")}
}

// ToGroup turns the active multi selection into a group and selects it.
func (m *Manager) ToGroup() *entity.Entity {
	a := m.reg.Surface().ActiveObject()
	if !a.IsComposite() {
		m.log.Debug("to group ignored: no multi selection")
		return nil
	}
	g := m.reg.Group(a.Children)
	if g == nil {
		return nil
	}
	m.reg.Select(g)
	m.reg.Save("group")
	return g
}

// ToActiveSelection dissolves the active group into a multi selection of
// its members.
func (m *Manager) ToActiveSelection() *entity.Entity {
	a := m.reg.Surface().ActiveObject()
	if !a.IsGroup() {
		m.log.Debug("to active selection ignored: no group")
		return nil
	}
	members := m.reg.Ungroup(a)
	if len(members) == 0 {
		return nil
	}
	sel := m.reg.SelectMany(members)
	m.reg.Save("ungroup")
	return sel
}

// target is the single active entity paint order operations act on.
func (m *Manager) target() *entity.Entity {
	a := m.reg.Surface().ActiveObject()
	if a == nil || a.IsComposite() || a.IsWorkarea() {
		return nil
	}
	return a
}

func (m *Manager) done(e *entity.Entity, label string) {
	m.reg.Save(label)
	m.reg.Bus().Modified.Publish(e)
}

// BringForward moves the active entity one step up.
func (m *Manager) BringForward() {
	a := m.target()
	if a == nil {
		return
	}
	pos := m.reg.Position(a)
	if pos < 0 || pos == m.reg.Len()-1 {
		return
	}
	m.reg.Reorder(a, pos+1)
	m.done(a, "bringForward")
}

// BringToFront moves the active entity to the top.
func (m *Manager) BringToFront() {
	a := m.target()
	if a == nil {
		return
	}
	m.reg.Reorder(a, m.reg.Len())
	m.done(a, "bringToFront")
}

// SendBackwards moves the active entity one step down. It never goes below
// the workarea.
func (m *Manager) SendBackwards() {
	a := m.target()
	if a == nil {
		return
	}
	pos := m.reg.Position(a)
	if pos <= 0 {
		return
	}
	m.reg.Reorder(a, pos-1)
	m.done(a, "sendBackwards")
}

// SendToBack moves the active entity to the bottom, just above the workarea.
func (m *Manager) SendToBack() {
	a := m.target()
	if a == nil {
		return
	}
	m.reg.Reorder(a, 0)
	m.done(a, "sendToBack")
}
