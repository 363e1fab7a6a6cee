/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"gocanvas/internal/entity"
)

// ErrUnsupportedSource is returned for image sources a loader cannot read.
var ErrUnsupportedSource = errors.New("unsupported image source")

// Loader resolves an image source to its decoded element. Load runs off the
// owner goroutine and must not touch entities.
type Loader interface {
	Load(ctx context.Context, src string) (*entity.Element, error)
}

// FileLoader reads data URIs and local files. Relative paths resolve against
// BaseDir.
type FileLoader struct {
	BaseDir string
}

func (l FileLoader) Load(ctx context.Context, src string) (*entity.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.read(src)
	if err != nil {
		return nil, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", shortSrc(src), err)
	}
	return &entity.Element{Src: src, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

func (l FileLoader) read(src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
		if !ok {
			return nil, fmt.Errorf("%w: malformed data uri", ErrUnsupportedSource)
		}
		if strings.HasSuffix(meta, ";base64") {
			return base64.StdEncoding.DecodeString(payload)
		}
		s, err := url.PathUnescape(payload)
		return []byte(s), err
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(u.Path)
	case strings.Contains(src, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, shortSrc(src))
	}
	p := src
	if !filepath.IsAbs(p) && l.BaseDir != "" {
		p = filepath.Join(l.BaseDir, p)
	}
	return os.ReadFile(p)
}

func shortSrc(src string) string {
	if len(src) > 48 {
		return src[:48] + "..."
	}
	return src
}

func placeholder() *entity.Element { return &entity.Element{Placeholder: true} }

// SetImage swaps the source of an image entity. The entity shows a
// placeholder until the load completes on the task queue; an empty source
// resets it to the placeholder. Sources seen before, or preloaded, apply
// immediately.
func (r *Registry) SetImage(e *entity.Entity, src string) {
	if e == nil {
		return
	}
	e.Src = src
	if src == "" {
		e.Element = placeholder()
		e.Animated = false
		r.updateAnimation()
		r.surface.RequestRender()
		return
	}
	if el, ok := r.elements[src]; ok {
		r.applyElement(e, el)
		return
	}
	e.Element = placeholder()
	loader := r.loader
	r.tasks.Go(func() func() {
		el, err := loader.Load(context.Background(), src)
		return func() {
			if e.Src != src {
				return
			}
			if err != nil {
				r.log.Warn("image load failed", "id", e.ID, "err", err)
				return
			}
			r.elements[src] = el
			r.applyElement(e, el)
		}
	})
}

// SetImageByID is SetImage for the entity with id.
func (r *Registry) SetImageByID(id, src string) {
	r.SetImage(r.FindByID(id), src)
}

func (r *Registry) applyElement(e *entity.Entity, el *entity.Element) {
	c := *el
	e.Element = &c
	if e.Width == 0 || e.Height == 0 {
		e.Width, e.Height = float64(el.Width), float64(el.Height)
	}
	e.Animated = el.Format == "gif"
	r.updateAnimation()
	r.surface.RequestRender()
}

// Preload resolves srcs concurrently and caches the results, so that a
// following bulk load applies images without suspending. The first failure
// cancels the rest.
func (r *Registry) Preload(ctx context.Context, srcs []string) error {
	todo := map[string]bool{}
	for _, s := range srcs {
		if _, ok := r.elements[s]; !ok && s != "" {
			todo[s] = true
		}
	}
	if len(todo) == 0 {
		return nil
	}
	type loaded struct {
		src string
		el  *entity.Element
	}
	results := make(chan loaded, len(todo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for src := range todo {
		src := src
		g.Go(func() error {
			el, err := r.loader.Load(gctx, src)
			if err != nil {
				return fmt.Errorf("load %s: %w", shortSrc(src), err)
			}
			results <- loaded{src: src, el: el}
			return nil
		})
	}
	err := g.Wait()
	close(results)
	if err != nil {
		return err
	}
	for res := range results {
		r.elements[res.src] = res.el
	}
	return nil
}

// updateAnimation runs the redraw loop while any entity is animated.
func (r *Registry) updateAnimation() {
	animated := false
	for _, e := range r.byID {
		if e.Animated {
			animated = true
			break
		}
	}
	r.animating = animated
}

// Animating reports whether the redraw loop is running.
func (r *Registry) Animating() bool { return r.animating }

// Frame requests a redraw when the loop is running and reports whether it
// is. Hosts call it once per display frame.
func (r *Registry) Frame() bool {
	if !r.animating {
		return false
	}
	r.frames++
	r.surface.RequestRender()
	return true
}
