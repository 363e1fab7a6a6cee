/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"context"
	"fmt"

	"gocanvas/internal/entity"
	"gocanvas/internal/vector"
)

// CheckImport validates the structure of a scene payload without touching
// the registry: kinds must be known, ids unique within the payload and the
// scene, and every link must name nodes that exist. Links may give their
// endpoints as fromNodeIndex/toNodeIndex, counted over the nodes listed
// before them. Entries without a super type get the default of their kind.
func (r *Registry) CheckImport(descs []*entity.Descriptor) error {
	seen := map[string]bool{}
	nodes := 0
	nodeIDs := map[string]bool{}
	workareas := 0
	for _, d := range descs {
		if d.ID == entity.WorkareaID {
			workareas++
			if workareas > 1 {
				return fmt.Errorf("%w: more than one workarea", entity.ErrInvalidScene)
			}
			continue
		}
		r.factory.Classify(d)
		var err error
		d.Walk(func(x *entity.Descriptor) {
			if err != nil {
				return
			}
			switch {
			case !r.factory.Known(x.Kind):
				err = fmt.Errorf("%w: %q", entity.ErrUnknownKind, x.Kind)
			case x.Kind == entity.KindActiveSelection:
				err = fmt.Errorf("%w: %s is transient", entity.ErrInvalidScene, x.Kind)
			case x.ID == "":
			case seen[x.ID]:
				err = fmt.Errorf("%w: %s", ErrDuplicateID, x.ID)
			default:
				if _, taken := r.byID[x.ID]; taken {
					err = fmt.Errorf("%w: %s", ErrDuplicateID, x.ID)
				}
			}
			seen[x.ID] = true
		})
		if err != nil {
			return err
		}
		if d.IsNode() {
			nodes++
			nodeIDs[d.ID] = true
		}
		if !d.IsLink() {
			continue
		}
		if d.FromNodeIndex != nil || d.ToNodeIndex != nil {
			i, j := -1, -1
			if d.FromNodeIndex != nil && d.ToNodeIndex != nil {
				i, j = *d.FromNodeIndex, *d.ToNodeIndex
			}
			if i < 0 || j < 0 || i >= nodes || j >= nodes {
				return fmt.Errorf("%w: link %q node index out of range", ErrDanglingLink, d.ID)
			}
			continue
		}
		for _, id := range []string{d.FromNodeID, d.ToNodeID} {
			if nodeIDs[id] {
				continue
			}
			if n, ok := r.byID[id]; !ok || !n.IsNode() {
				return fmt.Errorf("%w: link %q names node %q", ErrDanglingLink, d.ID, id)
			}
		}
	}
	return nil
}

type saved struct {
	blob     []byte
	workarea entity.Entity
	opts     WorkareaOptions
	vpt      vector.Affine2D
}

// Import adds descs to the scene as one unit. A workarea entry reconfigures
// the workarea; the other entities are rebased so they keep their place
// relative to it: by the shift of its position for fixed and responsive
// layouts, by the canvas to workarea ratio for fullscreen. On failure or
// cancellation the scene is put back exactly as it was.
func (r *Registry) Import(ctx context.Context, descs []*entity.Descriptor) error {
	if r.workarea == nil {
		return ErrNoWorkarea
	}
	if err := r.CheckImport(descs); err != nil {
		return err
	}
	blob, err := r.Snapshot()
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	before := saved{blob: blob, workarea: *r.workarea, opts: r.opts.Workarea, vpt: r.surface.ViewportTransform()}
	err = r.Suppress(func() error { return r.importAll(ctx, descs) })
	if err != nil {
		r.log.Warn("import rolled back", "err", err)
		r.undoImport(before)
		return err
	}
	return nil
}

func (r *Registry) undoImport(s saved) {
	_ = r.Suppress(func() error {
		if err := r.Restore(s.blob); err != nil {
			r.log.Error("import rollback incomplete", "err", err)
		}
		return nil
	})
	*r.workarea = s.workarea
	r.opts.Workarea = s.opts
	r.surface.SetViewportTransform(s.vpt)
	r.syncGrid()
	r.updateAnimation()
	r.surface.RequestRender()
}

func (r *Registry) importAll(ctx context.Context, descs []*entity.Descriptor) error {
	wa := r.workarea
	prev := vector.Pt{X: wa.Left, Y: wa.Top}
	rest := make([]*entity.Descriptor, 0, len(descs))
	for _, d := range descs {
		if d.ID != entity.WorkareaID {
			rest = append(rest, d.Clone())
			continue
		}
		prev = vector.Pt{X: d.Left, Y: d.Top}
		err := r.SetWorkareaOption(WorkareaOptions{
			Width:           d.Width,
			Height:          d.Height,
			Layout:          d.Layout,
			BackgroundColor: d.Fill,
			Src:             d.Src,
		})
		if err != nil {
			return err
		}
	}

	var nodes []*entity.Descriptor
	for _, d := range rest {
		if d.ID == "" {
			d.ID = r.newID()
		}
		switch {
		case d.IsNode():
			nodes = append(nodes, d)
		case d.IsLink() && d.FromNodeIndex != nil && d.ToNodeIndex != nil:
			d.FromNodeID = nodes[*d.FromNodeIndex].ID
			d.ToNodeID = nodes[*d.ToNodeIndex].ID
			d.FromNodeIndex, d.ToNodeIndex = nil, nil
		}
		r.rebase(d, prev)
	}

	for _, links := range []bool{false, true} {
		for _, d := range rest {
			if d.IsLink() != links {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := r.build(d, false, true); err != nil {
				return fmt.Errorf("import %s: %w", d.ID, err)
			}
		}
	}
	for _, d := range rest {
		e := r.byID[d.ID]
		r.surface.BringToFront(e)
		if e.IsNode() {
			for _, p := range r.Ports(e) {
				r.surface.BringToFront(p)
			}
		}
	}
	r.reindex()
	return nil
}

func (r *Registry) rebase(d *entity.Descriptor, prev vector.Pt) {
	wa := r.workarea
	if wa.Layout != entity.LayoutFullscreen {
		shift(d, wa.Left-prev.X, wa.Top-prev.Y)
		return
	}
	lr := r.surface.Width() / wa.ScaledWidth()
	tr := r.surface.Height() / wa.ScaledHeight()
	d.Walk(func(x *entity.Descriptor) {
		x.Left *= lr
		x.Top *= tr
		x.ScaleX = entity.Float(floatOr(x.ScaleX, 1) * lr)
		x.ScaleY = entity.Float(floatOr(x.ScaleY, 1) * tr)
	})
}

func floatOr(p *float64, d float64) float64 {
	if p == nil {
		return d
	}
	return *p
}
