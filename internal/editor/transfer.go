/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"errors"
	"fmt"

	"gocanvas/internal/entity"
	"gocanvas/internal/event"
)

// ExportJSON writes the scene, workarea included, as a flat descriptor
// array. Links carry resolved node and port ids.
func (ed *Editor) ExportJSON() ([]byte, error) {
	return entity.EncodeScene(ed.reg.Export(true))
}

// ImportJSON adds a scene document to the canvas. Nothing changes unless the
// whole document applies: it is schema validated and structurally checked
// first, images are loaded before any entity is added, and a failure or
// cancellation part way restores the previous scene. A successful import
// becomes the new undo baseline.
func (ed *Editor) ImportJSON(ctx context.Context, data []byte) error {
	if err := entity.ValidateScene(data); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	descs, err := entity.ParseScene(data)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := ed.reg.CheckImport(descs); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := ed.preload(ctx, descs); err != nil {
		return err
	}
	if err := ed.reg.Import(ctx, descs); err != nil {
		if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
			return fmt.Errorf("%w: %v", ErrImportCancelled, cerr)
		}
		return fmt.Errorf("import: %w", err)
	}
	if err := ed.journal.Reset(); err != nil {
		return fmt.Errorf("import: journal baseline: %w", err)
	}
	ed.log.Info("scene imported", "objects", ed.reg.Len())
	ed.bus.Load.Publish(event.LoadEvent{Objects: ed.reg.Len()})
	return nil
}

// preload fetches the workarea image, which must load, and then every other
// image source. Entities whose image fails keep their placeholder.
func (ed *Editor) preload(ctx context.Context, descs []*entity.Descriptor) error {
	var srcs []string
	for _, d := range descs {
		if d.ID == entity.WorkareaID {
			if err := ed.reg.Preload(ctx, []string{d.Src}); err != nil {
				return ed.cancelled(ctx, fmt.Errorf("import: workarea image: %w", err))
			}
			continue
		}
		d.Walk(func(x *entity.Descriptor) {
			if x.Kind == entity.KindImage && x.Src != "" {
				srcs = append(srcs, x.Src)
			}
		})
	}
	if err := ed.reg.Preload(ctx, srcs); err != nil {
		if ctx.Err() != nil {
			return ed.cancelled(ctx, err)
		}
		ed.log.Warn("image preload incomplete", "err", err)
	}
	return nil
}

func (ed *Editor) cancelled(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w: %v", ErrImportCancelled, cerr)
	}
	return err
}
