/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"errors"
	"fmt"

	"gocanvas/internal/entity"
)

// Export serialises the scene in paint order with host properties filtered
// by PropertiesToInclude. Ports and the grid are left out; they are rebuilt
// from their owners. Links carry resolved node and port ids.
func (r *Registry) Export(includeWorkarea bool) []*entity.Descriptor {
	var out []*entity.Descriptor
	for _, e := range r.surface.Objects() {
		if e.ID == "" || e.IsPort() || e.IsGrid() {
			continue
		}
		if e.IsWorkarea() && !includeWorkarea {
			continue
		}
		out = append(out, entity.FromEntity(e, r.opts.PropertiesToInclude))
	}
	return out
}

// Snapshot captures the entity state for the journal. The workarea is not
// part of it.
func (r *Registry) Snapshot() ([]byte, error) {
	return entity.EncodeScene(r.Export(false))
}

// Restore replaces every entity except the workarea and grid with those in
// blob, keeping ids and paint order. It is the journal's apply function and
// expects to run with capture suppressed.
func (r *Registry) Restore(blob []byte) error {
	descs, err := entity.ParseScene(blob)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	r.Clear(false)
	var errs []error
	for _, links := range []bool{false, true} {
		for _, d := range descs {
			if d.IsLink() != links {
				continue
			}
			if _, err := r.build(d, false, true); err != nil {
				errs = append(errs, fmt.Errorf("restore %s: %w", d.ID, err))
			}
		}
	}
	for _, d := range descs {
		e, ok := r.byID[d.ID]
		if !ok {
			continue
		}
		r.surface.BringToFront(e)
		if e.IsNode() {
			for _, p := range r.Ports(e) {
				r.surface.BringToFront(p)
			}
		}
	}
	r.reindex()
	r.surface.RequestRender()
	return errors.Join(errs...)
}
