/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gocanvas/internal/entity"
	"gocanvas/internal/input"
)

func TestEnvOverridesEditor(t *testing.T) {
	t.Setenv(EnvEditable, "false")
	t.Setenv(EnvWorkareaLayout, "Responsive")
	t.Setenv(EnvGridSize, "25")
	t.Setenv(EnvGuidelines, "off")
	t.Setenv(EnvClipboard, "yes")
	t.Setenv(EnvJournalMax, "7")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Editor.Editable {
		t.Fatalf("Editor.Editable expected false from env override")
	}
	if got, want := cfg.Workarea.Layout, "responsive"; got != want {
		t.Fatalf("Workarea.Layout = %q, want %q", got, want)
	}
	if got, want := cfg.Grid.Size, 25.0; got != want {
		t.Fatalf("Grid.Size = %v, want %v", got, want)
	}
	if cfg.Guideline.Enabled || !cfg.Keyboard.Clipboard {
		t.Fatalf("boolean overrides not applied: %#v %#v", cfg.Guideline, cfg.Keyboard)
	}
	if got, want := cfg.Journal.MaxEntries, 7; got != want {
		t.Fatalf("Journal.MaxEntries = %d, want %d", got, want)
	}
}

func TestEnvOverridesIgnoreGarbageNumbers(t *testing.T) {
	t.Setenv(EnvGridSize, "wide")
	t.Setenv(EnvJournalMax, "-3")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Grid.Size != 10 || cfg.Journal.MaxEntries != 100 {
		t.Fatalf("got grid %v journal %d, want defaults", cfg.Grid.Size, cfg.Journal.MaxEntries)
	}
}

func TestFileKeepsDefaultBooleans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "workarea:\n  width: 1024\ngrid:\n  enabled: true\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if got, want := cfg.Workarea.Width, 1024.0; got != want {
		t.Fatalf("Workarea.Width = %v, want %v", got, want)
	}
	if got, want := cfg.Workarea.Height, 400.0; got != want {
		t.Fatalf("Workarea.Height = %v, want %v", got, want)
	}
	if !cfg.Grid.Enabled {
		t.Fatalf("Grid.Enabled was not merged from file config")
	}
	if !cfg.Editor.Editable || !cfg.Guideline.Enabled || !cfg.Journal.Enabled {
		t.Fatalf("absent booleans lost their defaults: %#v", cfg)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = " /tmp/gcv.log "
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/gcv.log" {
		t.Fatalf("logging was not merged: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogFormat, "JSON")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/gcv.log")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/gcv.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
	lo := cfg.LogOptions()
	if lo.Level != "error" || !lo.AddSource {
		t.Fatalf("LogOptions() = %#v", lo)
	}
}

func TestEnvOverrideFor(t *testing.T) {
	if _, ok := EnvOverrideFor("grid.size"); ok {
		t.Fatalf("grid.size reported overridden without env")
	}
	t.Setenv(EnvGridSize, "5")
	name, ok := EnvOverrideFor("grid.size")
	if !ok || name != EnvGridSize {
		t.Fatalf("got %q %v, want %q true", name, ok, EnvGridSize)
	}
	if _, ok := EnvOverrideFor("nope"); ok {
		t.Fatalf("unknown key reported overridden")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Workarea.Layout = "fullscreen"
	cfg.Keyboard.Bindings = map[string][]string{"undo": {"ctrl+u"}}
	cfg.Journal.Enabled = false
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if got.Workarea.Layout != "fullscreen" || got.Journal.Enabled {
		t.Fatalf("got %#v, want saved values", got)
	}
	if b := got.Keyboard.Bindings["undo"]; len(b) != 1 || b[0] != "ctrl+u" {
		t.Fatalf("Bindings = %v, want [ctrl+u]", b)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "layout.yaml")
	_ = os.WriteFile(bad, []byte("workarea:\n  layout: sideways\n"), 0o600)
	if _, err := LoadFrom(bad); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("got %v, want %v", err, ErrInvalidLayout)
	}
	binding := filepath.Join(dir, "binding.yaml")
	_ = os.WriteFile(binding, []byte("keyboard:\n  bindings:\n    explode: [\"ctrl+x\"]\n"), 0o600)
	if _, err := LoadFrom(binding); err == nil {
		t.Fatalf("expected error for unknown binding action")
	}
	broken := filepath.Join(dir, "broken.yaml")
	_ = os.WriteFile(broken, []byte("editor: [\n"), 0o600)
	cfg, err := LoadFrom(broken)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Workarea.Width != 600 {
		t.Fatalf("got width %v, want defaults on parse error", cfg.Workarea.Width)
	}
}

func TestEditorOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Editor.Editable = false
	cfg.Workarea.Layout = "responsive"
	cfg.Grid.Enabled = true
	cfg.Grid.Size = 20
	cfg.Guideline.Margin = 8
	cfg.Keyboard.Clipboard = true
	cfg.Keyboard.Bindings = map[string][]string{"redo": {"ctrl+y"}}
	cfg.Journal.Enabled = false
	o := cfg.EditorOptions()
	if o.Editable || !o.ZoomEnabled {
		t.Fatalf("got editable %v zoom %v, want false true", o.Editable, o.ZoomEnabled)
	}
	if got, want := o.Workarea.Layout, entity.LayoutResponsive; got != want {
		t.Fatalf("Workarea.Layout = %v, want %v", got, want)
	}
	if !o.Grid || o.GridSize != 20 {
		t.Fatalf("got grid %v size %v, want true 20", o.Grid, o.GridSize)
	}
	if got, want := o.GuidelineOptions.Margin, 8.0; got != want {
		t.Fatalf("GuidelineOptions.Margin = %v, want %v", got, want)
	}
	if !o.GuidelineOptions.Edges || !o.GuidelineOptions.Centers {
		t.Fatalf("guideline edge and centre defaults lost: %#v", o.GuidelineOptions)
	}
	if !o.PlatformClipboard || !o.Journal.Disabled || o.Journal.MaxEntries != 100 {
		t.Fatalf("got clipboard %v journal %#v", o.PlatformClipboard, o.Journal)
	}
	if b := o.Bindings[input.ActionRedo]; len(b) != 1 || b[0] != "ctrl+y" {
		t.Fatalf("Bindings[redo] = %v, want [ctrl+y]", b)
	}
}
