/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"gocanvas/internal/clipboard"
	"gocanvas/internal/config"
	"gocanvas/internal/crash"
	"gocanvas/internal/editor"
	"gocanvas/internal/entity"
	applog "gocanvas/internal/log"
	"gocanvas/internal/storage"
	"gocanvas/internal/version"
)

// systemClipboard is swapped in tests.
var systemClipboard clipboard.System = clipboard.OS{}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "GoCanvas, diagram canvas editor core")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  gocanvas [--config <file>] <command>")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  gocanvas version|-v|--version         Show version")
	_, _ = fmt.Fprintln(w, "  gocanvas init <scene.json> [w h]      Create a scene holding only a workarea")
	_, _ = fmt.Fprintln(w, "  gocanvas inspect <scene.json>         Print objects, geometry and graph summary")
	_, _ = fmt.Fprintln(w, "  gocanvas validate <scene.json>        Check a scene against the schema and graph rules")
	_, _ = fmt.Fprintln(w, "  gocanvas paste <scene.json>           Paste the OS clipboard into the scene and save")
	_, _ = fmt.Fprintln(w, "  gocanvas tidy <scene.json>            Re-import and re-export the scene (creates backup)")
}

func main() {
	defer crash.Recover(nil)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cfgPath string
	if len(args) >= 2 && args[0] == "--config" {
		cfgPath, args = args[1], args[2:]
	}
	cfg, err := loadConfig(cfgPath)
	lo := cfg.LogOptions()
	lo.Writer = stderr
	applog.Init(lo)
	l := applog.WithComponent("cli")
	if err != nil {
		l.Warn("config not applied, using defaults", slog.Any("err", err))
	}
	l.Debug("start", slog.Int("args", len(args)))

	if len(args) == 0 {
		usage(stdout)
		return 2
	}
	cmd, rest := args[0], args[1:]
	if cmd == "version" || cmd == "--version" || cmd == "-v" {
		_, _ = fmt.Fprintln(stdout, "GoCanvas")
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	}
	handler, ok := commands[cmd]
	if !ok || len(rest) == 0 {
		if ok {
			_, _ = fmt.Fprintf(stdout, "%s requires <scene.json>\n", cmd)
		}
		usage(stdout)
		return 2
	}
	abs, _ := filepath.Abs(rest[0])
	ctx = applog.WithScene(ctx, abs)
	if err := handler(ctx, cfg, abs, rest[1:], stdout); err != nil {
		l.ErrorContext(ctx, cmd+" failed", slog.Any("err", err))
		_, _ = fmt.Fprintln(stdout, "Error:", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("invalid arguments")

type command func(ctx context.Context, cfg config.AppConfig, path string, args []string, out io.Writer) error

var commands = map[string]command{
	"init":     cmdInit,
	"inspect":  cmdInspect,
	"validate": cmdValidate,
	"paste":    cmdPaste,
	"tidy":     cmdTidy,
}

func loadConfig(path string) (config.AppConfig, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func newEditor(cfg config.AppConfig) (*editor.Editor, error) {
	return editor.New(cfg.EditorOptions(), editor.WithSystemClipboard(systemClipboard))
}

// open loads the scene document into a fresh headless editor.
func open(ctx context.Context, cfg config.AppConfig, path string) (*storage.SceneHandle, *editor.Editor, error) {
	h, err := storage.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if h.Recovered != "" {
		applog.WithComponent("cli").WarnContext(ctx, "opened from backup", slog.String("backup", h.Recovered))
	}
	ed, err := newEditor(cfg)
	if err != nil {
		return h, nil, err
	}
	if err := ed.ImportJSON(ctx, h.Data); err != nil {
		return h, nil, err
	}
	return h, ed, nil
}

// store exports the editor scene into h and saves it.
func store(h *storage.SceneHandle, ed *editor.Editor) error {
	data, err := ed.ExportJSON()
	if err != nil {
		return err
	}
	h.Data = data
	return storage.Save(h)
}

func cmdInit(_ context.Context, cfg config.AppConfig, path string, args []string, out io.Writer) error {
	if len(args) == 1 || len(args) > 2 {
		return fmt.Errorf("%w: init takes a width and a height together", errUsage)
	}
	if len(args) == 2 {
		w, werr := strconv.ParseFloat(args[0], 64)
		hgt, herr := strconv.ParseFloat(args[1], 64)
		if werr != nil || herr != nil || w <= 0 || hgt <= 0 {
			return fmt.Errorf("%w: width and height must be positive numbers", errUsage)
		}
		cfg.Workarea.Width, cfg.Workarea.Height = w, hgt
	}
	ed, err := newEditor(cfg)
	if err != nil {
		return err
	}
	data, err := ed.ExportJSON()
	if err != nil {
		return err
	}
	if _, err := storage.Create(path, data); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Created scene at", path)
	return nil
}

func cmdValidate(_ context.Context, cfg config.AppConfig, path string, _ []string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := entity.ValidateScene(data); err != nil {
		return err
	}
	descs, err := entity.ParseScene(data)
	if err != nil {
		return err
	}
	ed, err := newEditor(cfg)
	if err != nil {
		return err
	}
	if err := ed.Registry().CheckImport(descs); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Valid scene: %d descriptors\n", len(descs))
	return nil
}

func cmdInspect(ctx context.Context, cfg config.AppConfig, path string, _ []string, out io.Writer) error {
	h, ed, err := open(ctx, cfg, path)
	if err != nil {
		return err
	}
	defer crash.Recover(h)
	reg := ed.Registry()
	_, _ = fmt.Fprintln(out, "Scene:", h.Path)
	if h.Recovered != "" {
		_, _ = fmt.Fprintln(out, "Recovered from:", h.Recovered)
	}
	if wa := reg.Workarea(); wa != nil {
		_, _ = fmt.Fprintf(out, "Workarea: %gx%g layout %s\n", wa.Width, wa.Height, wa.Layout)
	}
	objs := reg.Objects()
	_, _ = fmt.Fprintf(out, "Objects: %d\n", len(objs))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	var nodes, links, ports int
	for _, e := range objs {
		switch {
		case e.IsNode():
			nodes++
			ports += len(reg.Ports(e))
		case e.IsLink():
			links++
		}
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\t%g,%g\t%gx%g\n", e.ID, e.Kind, e.SuperType, e.Left, e.Top, e.ScaledWidth(), e.ScaledHeight())
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(out, "Graph: %d nodes, %d ports, %d links\n", nodes, ports, links)
	return nil
}

func cmdPaste(ctx context.Context, cfg config.AppConfig, path string, _ []string, out io.Writer) error {
	if osc, ok := systemClipboard.(clipboard.OS); ok && !osc.Available() {
		return errors.New("no platform clipboard available")
	}
	h, ed, err := open(ctx, cfg, path)
	if err != nil {
		return err
	}
	defer crash.Recover(h)
	before := ed.Registry().Len()
	ed.Focus(true)
	if err := ed.PasteSystem(); err != nil {
		return err
	}
	if err := store(h, ed); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Pasted %d objects into %s\n", ed.Registry().Len()-before, h.Path)
	return nil
}

func cmdTidy(ctx context.Context, cfg config.AppConfig, path string, _ []string, out io.Writer) error {
	h, ed, err := open(ctx, cfg, path)
	if err != nil {
		return err
	}
	defer crash.Recover(h)
	if err := store(h, ed); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Tidied %s: %d objects\n", h.Path, ed.Registry().Len())
	return nil
}
