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
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gocanvas/internal/entity"
	applog "gocanvas/internal/log"
)

const (
	BackupsDirName = "backups"
	backupSuffix   = ".bak"
	stampLayout    = "20060102-150405.000"
)

var (
	ErrExists   = errors.New("scene document already exists")
	ErrNoBackup = errors.New("no backups found")
)

// SceneHandle keeps track of a scene document loaded/saved from disk.
// Data holds the encoded descriptor array; it is validated on every save.
// Recovered is set when Open had to fall back to a backup.
type SceneHandle struct {
	Path      string
	Data      []byte
	Recovered string
}

// Dir returns the directory holding the document and its backups folder.
func (h *SceneHandle) Dir() string { return filepath.Dir(h.Path) }

// BackupDir returns the backups folder next to the document.
func (h *SceneHandle) BackupDir() string { return filepath.Join(h.Dir(), BackupsDirName) }

// Objects decodes the document.
func (h *SceneHandle) Objects() ([]*entity.Descriptor, error) { return entity.ParseScene(h.Data) }

// SetObjects replaces the document contents.
func (h *SceneHandle) SetObjects(list []*entity.Descriptor) error {
	data, err := entity.EncodeScene(list)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	h.Data = data
	return nil
}

// Create writes a new scene document at path. It refuses to replace an
// existing file.
func Create(path string, data []byte) (*SceneHandle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("scene path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create scene dir: %w", err)
	}
	h := &SceneHandle{Path: path, Data: data}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads a scene document. If it cannot be read or does not validate,
// the latest backup is used instead.
func Open(path string) (*SceneHandle, error) {
	l := applog.WithComponent("storage")
	b, err := os.ReadFile(path)
	if err == nil {
		err = entity.ValidateScene(b)
	}
	if err != nil {
		data, from, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open scene: %w; backup attempt: %v", err, berr)
		}
		l.Warn("scene unreadable, opened latest backup", slog.String("path", path), slog.String("backup", from), slog.Any("err", err))
		return &SceneHandle{Path: path, Data: data, Recovered: from}, nil
	}
	return &SceneHandle{Path: path, Data: b}, nil
}

// Save writes the handle to disk with transactional semantics and a
// timestamped backup of the previous document (if present).
func Save(h *SceneHandle) error {
	if h == nil {
		return errors.New("nil SceneHandle")
	}
	if h.Path == "" {
		return errors.New("invalid SceneHandle: missing path")
	}
	if err := entity.ValidateScene(h.Data); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	data := h.Data
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(append([]byte(nil), data...), '\n')
	}

	bdir := h.BackupDir()
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// If a current document exists, copy it to a timestamped backup before replacing
	if _, statErr := os.Stat(h.Path); statErr == nil {
		bpath := freeBackupPath(bdir, h.Path, time.Now())
		if cerr := copyFile(h.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current scene: %w", cerr)
		}
	}

	// Transactional write: to temp file in same directory, then rename over target
	dir := filepath.Dir(h.Path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(h.Path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp scene: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if rerr := os.Rename(temp, h.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace scene: %w", rerr)
	}
	applog.WithComponent("storage").Debug("scene saved", slog.String("path", h.Path), slog.Int("bytes", len(data)))
	return nil
}

// SaveAs writes the document to a new path and updates the handle.
func SaveAs(h *SceneHandle, path string) error {
	if h == nil {
		return errors.New("nil SceneHandle")
	}
	if path == "" {
		return errors.New("new path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create scene dir: %w", err)
	}
	h.Path = path
	h.Recovered = ""
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory document to the backups folder
// without touching the document itself. The data is written as is, valid or not.
func AutosaveCrashSnapshot(h *SceneHandle) (string, error) {
	if h == nil || h.Path == "" {
		return "", errors.New("invalid SceneHandle")
	}
	bdir := h.BackupDir()
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	name := fmt.Sprintf("%s.crash-%s.json", filepath.Base(h.Path), time.Now().Format(stampLayout))
	path := filepath.Join(bdir, name)
	if err := writeFileSync(path, h.Data); err != nil {
		return path, fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// Backups lists the timestamped backups of the document, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, backupSuffix) {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

// PruneBackups keeps the newest keep backups and removes the rest.
func PruneBackups(path string, keep int) (int, error) {
	list, err := Backups(path)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	removed := 0
	for len(list)-removed > keep {
		if err := os.Remove(list[removed]); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// freeBackupPath names a backup for ts, adding a counter when two saves
// share a timestamp. The counter sorts after the plain name.
func freeBackupPath(bdir, path string, ts time.Time) string {
	base := fmt.Sprintf("%s.%s", filepath.Base(path), ts.Format(stampLayout))
	p := filepath.Join(bdir, base+backupSuffix)
	for i := 1; ; i++ {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return p
		}
		p = filepath.Join(bdir, fmt.Sprintf("%s~%d%s", base, i, backupSuffix))
	}
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// openFromLatestBackup returns the newest backup that still validates.
func openFromLatestBackup(path string) ([]byte, string, error) {
	list, err := Backups(path)
	if err != nil {
		return nil, "", err
	}
	if len(list) == 0 {
		return nil, "", ErrNoBackup
	}
	var lastErr error
	for i := len(list) - 1; i >= 0; i-- {
		b, err := os.ReadFile(list[i])
		if err == nil {
			err = entity.ValidateScene(b)
		}
		if err == nil {
			return b, list[i], nil
		}
		lastErr = err
	}
	return nil, "", fmt.Errorf("no valid backup: %w", lastErr)
}
