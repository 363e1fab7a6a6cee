/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocanvas/internal/entity"
)

const (
	workareaDoc = `[{"id":"workarea","type":"image","layout":"fixed","width":600,"height":400}]`
	rectDoc     = `[{"id":"workarea","type":"image","layout":"fixed","width":600,"height":400},{"id":"r1","type":"rect","left":10,"top":20}]`
)

func countBackups(t *testing.T, path string) int {
	t.Helper()
	list, err := Backups(path)
	if err != nil {
		t.Fatalf("Backups error: %v", err)
	}
	return len(list)
}

func TestCreateWritesDocumentAndRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scene.json")
	h, err := Create(path, []byte(workareaDoc))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	b, err := os.ReadFile(h.Path)
	if err != nil {
		t.Fatalf("read scene: %v", err)
	}
	if !strings.HasSuffix(string(b), "\n") {
		t.Fatalf("saved scene has no trailing newline")
	}
	if fi, err := os.Stat(h.BackupDir()); err != nil || !fi.IsDir() {
		t.Fatalf("expected directory %s to exist", h.BackupDir())
	}
	if _, err := Create(path, []byte(workareaDoc)); !errors.Is(err, ErrExists) {
		t.Fatalf("got %v, want %v", err, ErrExists)
	}
}

func TestSaveRejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	h, err := Create(path, []byte(workareaDoc))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	h.Data = []byte(`[{"left":1}]`)
	if err := Save(h); !errors.Is(err, entity.ErrInvalidScene) {
		t.Fatalf("got %v, want %v", err, entity.ErrInvalidScene)
	}
	if n := countBackups(t, path); n != 0 {
		t.Fatalf("got %d backups, want 0", n)
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	h, err := Create(path, []byte(workareaDoc))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	h.Data = []byte(rectDoc)
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	list, err := Backups(path)
	if err != nil || len(list) != 1 {
		t.Fatalf("got %v %v, want one backup", list, err)
	}
	b, _ := os.ReadFile(list[0])
	if strings.Contains(string(b), "r1") {
		t.Fatalf("backup holds the new contents")
	}
}

func TestOpenFallsBackToLatestBackupOnCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	h, err := Create(path, []byte(rectDoc))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	// Force a backup to exist by saving
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(path, []byte("[ this is not json"), 0o644); err != nil {
		t.Fatalf("corrupt scene: %v", err)
	}
	opened, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if opened.Recovered == "" {
		t.Fatalf("expected Recovered to name the backup")
	}
	objs, err := opened.Objects()
	if err != nil || len(objs) != 2 || objs[1].ID != "r1" {
		t.Fatalf("got %v %v, want workarea and r1", objs, err)
	}
}

func TestOpenWithoutBackupFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("expected error for invalid scene without backups")
	}
}

func TestSetObjectsRoundTrip(t *testing.T) {
	h := &SceneHandle{Path: filepath.Join(t.TempDir(), "scene.json")}
	err := h.SetObjects([]*entity.Descriptor{{Entity: entity.Entity{ID: "a", Kind: entity.KindRect, Width: 40, Top: 10}}})
	if err != nil {
		t.Fatalf("SetObjects error: %v", err)
	}
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	opened, err := Open(h.Path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	objs, _ := opened.Objects()
	if len(objs) != 1 || objs[0].ID != "a" {
		t.Fatalf("got %v, want [a]", objs)
	}
}

func TestPruneBackupsKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	if _, err := Create(path, []byte(workareaDoc)); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	for _, stamp := range []string{"20250101-000000.000", "20250102-000000.000", "20250103-000000.000"} {
		_ = os.WriteFile(filepath.Join(bdir, "scene.json."+stamp+".bak"), []byte(workareaDoc), 0o644)
	}
	removed, err := PruneBackups(path, 1)
	if err != nil {
		t.Fatalf("PruneBackups error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("got %d removed, want 2", removed)
	}
	list, _ := Backups(path)
	if len(list) != 1 || !strings.Contains(list[0], "20250103") {
		t.Fatalf("got %v, want newest backup kept", list)
	}
}

func TestAutosaveCrashSnapshotWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	h, err := Create(path, []byte(workareaDoc))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	h.Data = []byte(rectDoc)
	snap, err := AutosaveCrashSnapshot(h)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	b, err := os.ReadFile(snap)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(b) != rectDoc {
		t.Fatalf("got %q, want %q", b, rectDoc)
	}
	// the document on disk is untouched
	disk, _ := os.ReadFile(path)
	if strings.Contains(string(disk), "r1") {
		t.Fatalf("autosave replaced the document")
	}
	if n := countBackups(t, path); n != 0 {
		t.Fatalf("crash snapshot counted as backup: %d", n)
	}
}
