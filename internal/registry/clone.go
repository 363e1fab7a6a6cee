/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"slices"

	"gocanvas/internal/entity"
)

// Reidentify prepares a set of descriptors for re-insertion. With fresh set
// every entity, and every port a node declares, gets a new id and graph
// references are remapped to match; otherwise ids are kept. Links whose two
// nodes are not both in the set are dropped, and links are moved after the
// entities they connect. The input is not modified.
func (r *Registry) Reidentify(descs []*entity.Descriptor, fresh bool) []*entity.Descriptor {
	ids := map[string]string{}
	out := make([]*entity.Descriptor, 0, len(descs))
	for _, d := range descs {
		c := d.Clone()
		c.Walk(func(x *entity.Descriptor) {
			if x.ID == "" {
				x.ID = r.newID()
			}
			id := x.ID
			if fresh {
				id = r.newID()
			}
			ids[x.ID] = id
			x.ID = id
			x.LinkIDs = nil
			for i, p := range x.PortIDs {
				np := p
				if fresh {
					np = r.newID()
				}
				ids[p] = np
				x.PortIDs[i] = np
			}
		})
		out = append(out, c)
	}
	kept := out[:0]
	for _, d := range out {
		if d.IsLink() {
			from, ok1 := ids[d.FromNodeID]
			to, ok2 := ids[d.ToNodeID]
			if !ok1 || !ok2 {
				continue
			}
			d.FromNodeID, d.ToNodeID = from, to
			d.FromPortID = ids[d.FromPortID]
			d.ToPortID = ids[d.ToPortID]
		}
		if d.ParentID != "" {
			if p, ok := ids[d.ParentID]; ok {
				d.ParentID = p
			}
		}
		kept = append(kept, d)
	}
	slices.SortStableFunc(kept, func(a, b *entity.Descriptor) int {
		return boolRank(a.IsLink()) - boolRank(b.IsLink())
	})
	return kept
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
