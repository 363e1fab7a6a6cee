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
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gocanvas/internal/entity"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestFileLoaderReadsDataURIAndFiles(t *testing.T) {
	el, err := FileLoader{}.Load(context.Background(), pngDataURI(t, 3, 2))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if el.Format != "png" || el.Width != 3 || el.Height != 2 {
		t.Fatalf("got %+v", el)
	}

	dir := t.TempDir()
	var buf bytes.Buffer
	pal := image.NewPaletted(image.Rect(0, 0, 4, 4), []color.Color{color.Black, color.White})
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "spin.gif"), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	el, err = FileLoader{BaseDir: dir}.Load(context.Background(), "spin.gif")
	if err != nil || el.Format != "gif" {
		t.Fatalf("got %+v, %v", el, err)
	}

	if _, err := (FileLoader{}).Load(context.Background(), "https://example.com/a.png"); err == nil {
		t.Fatalf("remote sources must be refused")
	}
}

func TestImageSwapsInAfterLoad(t *testing.T) {
	f := newFixture(t)
	src := pngDataURI(t, 64, 32)
	d := &entity.Descriptor{Entity: entity.Entity{ID: "img", Kind: entity.KindImage, Src: src}}
	e := mustAdd(t, f.reg, d, true)
	if e.Element == nil || !e.Element.Placeholder {
		t.Fatalf("expected placeholder before the load completes")
	}
	if err := f.reg.Tasks().Settle(context.Background()); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if e.Element.Placeholder || e.Width != 64 || e.Height != 32 {
		t.Fatalf("got element %+v size %vx%v", e.Element, e.Width, e.Height)
	}

	f.reg.SetImage(e, "")
	if !e.Element.Placeholder || e.Src != "" {
		t.Fatalf("empty source must reset to placeholder")
	}
}

func TestPreloadAppliesSynchronously(t *testing.T) {
	f := newFixture(t)
	src := pngDataURI(t, 5, 5)
	if err := f.reg.Preload(context.Background(), []string{src, src}); err != nil {
		t.Fatalf("preload: %v", err)
	}
	e := mustAdd(t, f.reg, &entity.Descriptor{Entity: entity.Entity{ID: "img", Kind: entity.KindImage, Src: src}}, true)
	if e.Element == nil || e.Element.Placeholder || f.reg.Tasks().Pending() != 0 {
		t.Fatalf("preloaded image should apply without a task")
	}
}

func TestPreloadReportsFailure(t *testing.T) {
	f := newFixture(t)
	err := f.reg.Preload(context.Background(), []string{"data:image/png;base64,AAAA"})
	if err == nil {
		t.Fatalf("expected decode failure")
	}
}

func TestAnimatedImageRunsRedrawLoop(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), []color.Color{color.Black, color.White})
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	src := "data:image/gif;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	if err := f.reg.Preload(context.Background(), []string{src}); err != nil {
		t.Fatalf("preload: %v", err)
	}
	e := mustAdd(t, f.reg, &entity.Descriptor{Entity: entity.Entity{ID: "g", Kind: entity.KindImage, Src: src}}, true)
	if !f.reg.Animating() || !f.reg.Frame() {
		t.Fatalf("redraw loop should run for a gif")
	}
	if err := f.reg.Remove(e); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if f.reg.Animating() || f.reg.Frame() {
		t.Fatalf("redraw loop should stop once the gif is gone")
	}
}
