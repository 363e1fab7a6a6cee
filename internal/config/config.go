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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"gocanvas/internal/editor"
	"gocanvas/internal/entity"
	"gocanvas/internal/input"
	"gocanvas/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type EditorConfig struct {
	Editable            bool     `yaml:"editable"`
	ZoomEnabled         bool     `yaml:"zoom_enabled"`
	MinZoom             float64  `yaml:"min_zoom"`
	MaxZoom             float64  `yaml:"max_zoom"`
	ZoomStep            float64  `yaml:"zoom_step"`
	PropertiesToInclude []string `yaml:"properties_to_include"`
}

type WorkareaConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Layout          string  `yaml:"layout"` // "fixed" | "responsive" | "fullscreen"
	BackgroundColor string  `yaml:"background_color"`
	Src             string  `yaml:"src"`
}

type GridConfig struct {
	Enabled bool    `yaml:"enabled"`
	Size    float64 `yaml:"size"`
}

type GuidelineConfig struct {
	Enabled bool    `yaml:"enabled"`
	Margin  float64 `yaml:"margin"`
	Snap    bool    `yaml:"snap"`
}

type KeyboardConfig struct {
	// Clipboard routes copy and paste through the platform clipboard.
	Clipboard bool                `yaml:"clipboard"`
	ArrowStep float64             `yaml:"arrow_step"`
	Bindings  map[string][]string `yaml:"bindings,omitempty"`
}

type JournalConfig struct {
	MaxEntries int  `yaml:"max_entries"`
	Enabled    bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Editor        EditorConfig    `yaml:"editor"`
	Workarea      WorkareaConfig  `yaml:"workarea"`
	Grid          GridConfig      `yaml:"grid"`
	Guideline     GuidelineConfig `yaml:"guideline"`
	Keyboard      KeyboardConfig  `yaml:"keyboard"`
	Journal       JournalConfig   `yaml:"journal"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor:        EditorConfig{Editable: true, ZoomEnabled: true, MinZoom: 0.3, MaxZoom: 3, ZoomStep: 0.05},
		Workarea:      WorkareaConfig{Width: 600, Height: 400, Layout: string(entity.LayoutFixed), BackgroundColor: "#fff"},
		Grid:          GridConfig{Enabled: false, Size: 10},
		Guideline:     GuidelineConfig{Enabled: true, Margin: 4, Snap: true},
		Keyboard:      KeyboardConfig{Clipboard: false, ArrowStep: 2},
		Journal:       JournalConfig{MaxEntries: 100, Enabled: true},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvEditable       = "GCV_EDITABLE"
	EnvWorkareaLayout = "GCV_WORKAREA_LAYOUT"
	EnvGridSize       = "GCV_GRID_SIZE"
	EnvGuidelines     = "GCV_GUIDELINES"
	EnvClipboard      = "GCV_CLIPBOARD"
	EnvJournalMax     = "GCV_JOURNAL_MAX"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GCV_LOG_LEVEL"
	EnvLogFormat = "GCV_LOG_FORMAT"
	EnvLogSource = "GCV_LOG_SOURCE"
	EnvLogFile   = "GCV_LOG_FILE"
)

var ErrInvalidLayout = errors.New("invalid workarea layout")

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoCanvas")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "gocanvas")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "gocanvas")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path. A missing file is not an error;
// a file that fails to parse is.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// start from defaults so booleans absent from the file keep their default
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, err
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg to path, creating parent directories.
func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate rejects values the editor cannot run with.
func (c AppConfig) Validate() error {
	switch entity.Layout(c.Workarea.Layout) {
	case entity.LayoutFixed, entity.LayoutResponsive, entity.LayoutFullscreen:
	default:
		return ErrInvalidLayout
	}
	for name, specs := range c.Keyboard.Bindings {
		if !slices.Contains(input.Actions, input.Action(name)) {
			return errors.New("unknown key binding action: " + name)
		}
		for _, s := range specs {
			if _, err := input.ParseChord(s); err != nil {
				return fmt.Errorf("binding %s: %w", name, err)
			}
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Editor.Editable = src.Editor.Editable
	dst.Editor.ZoomEnabled = src.Editor.ZoomEnabled
	if src.Editor.MinZoom > 0 {
		dst.Editor.MinZoom = src.Editor.MinZoom
	}
	if src.Editor.MaxZoom > 0 {
		dst.Editor.MaxZoom = src.Editor.MaxZoom
	}
	if src.Editor.ZoomStep > 0 {
		dst.Editor.ZoomStep = src.Editor.ZoomStep
	}
	if len(src.Editor.PropertiesToInclude) > 0 {
		dst.Editor.PropertiesToInclude = append([]string(nil), src.Editor.PropertiesToInclude...)
	}
	// workarea
	if src.Workarea.Width > 0 {
		dst.Workarea.Width = src.Workarea.Width
	}
	if src.Workarea.Height > 0 {
		dst.Workarea.Height = src.Workarea.Height
	}
	if strings.TrimSpace(src.Workarea.Layout) != "" {
		dst.Workarea.Layout = strings.ToLower(strings.TrimSpace(src.Workarea.Layout))
	}
	if strings.TrimSpace(src.Workarea.BackgroundColor) != "" {
		dst.Workarea.BackgroundColor = strings.TrimSpace(src.Workarea.BackgroundColor)
	}
	dst.Workarea.Src = strings.TrimSpace(src.Workarea.Src)
	// grid and guidelines
	dst.Grid.Enabled = src.Grid.Enabled
	if src.Grid.Size > 0 {
		dst.Grid.Size = src.Grid.Size
	}
	dst.Guideline.Enabled = src.Guideline.Enabled
	dst.Guideline.Snap = src.Guideline.Snap
	if src.Guideline.Margin > 0 {
		dst.Guideline.Margin = src.Guideline.Margin
	}
	// keyboard
	dst.Keyboard.Clipboard = src.Keyboard.Clipboard
	if src.Keyboard.ArrowStep > 0 {
		dst.Keyboard.ArrowStep = src.Keyboard.ArrowStep
	}
	if len(src.Keyboard.Bindings) > 0 {
		dst.Keyboard.Bindings = make(map[string][]string, len(src.Keyboard.Bindings))
		for k, v := range src.Keyboard.Bindings {
			dst.Keyboard.Bindings[strings.ToLower(strings.TrimSpace(k))] = append([]string(nil), v...)
		}
	}
	// journal
	dst.Journal.Enabled = src.Journal.Enabled
	if src.Journal.MaxEntries >= 0 {
		dst.Journal.MaxEntries = src.Journal.MaxEntries
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvEditable)); v != "" {
		cfg.Editor.Editable = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkareaLayout)); v != "" {
		cfg.Workarea.Layout = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvGridSize)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.Grid.Size = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvGuidelines)); v != "" {
		cfg.Guideline.Enabled = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvClipboard)); v != "" {
		cfg.Keyboard.Clipboard = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalMax)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Journal.MaxEntries = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"editor.editable":     EnvEditable,
	"workarea.layout":     EnvWorkareaLayout,
	"grid.size":           EnvGridSize,
	"guideline.enabled":   EnvGuidelines,
	"keyboard.clipboard":  EnvClipboard,
	"journal.max_entries": EnvJournalMax,
	"logging.level":       EnvLogLevel,
	"logging.format":      EnvLogFormat,
	"logging.source":      EnvLogSource,
	"logging.file":        EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// LogOptions converts the logging section for log.Init.
func (c AppConfig) LogOptions() log.Options {
	return log.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// EditorOptions converts the configuration into editor options over the
// editor defaults.
func (c AppConfig) EditorOptions() editor.Options {
	o := editor.DefaultOptions()
	o.Editable = c.Editor.Editable
	o.ZoomEnabled = c.Editor.ZoomEnabled
	o.MinZoom = c.Editor.MinZoom
	o.MaxZoom = c.Editor.MaxZoom
	o.ZoomStep = c.Editor.ZoomStep
	o.PropertiesToInclude = append([]string(nil), c.Editor.PropertiesToInclude...)

	o.Workarea.Width = c.Workarea.Width
	o.Workarea.Height = c.Workarea.Height
	o.Workarea.Layout = entity.ParseLayout(c.Workarea.Layout)
	o.Workarea.BackgroundColor = c.Workarea.BackgroundColor
	o.Workarea.Src = c.Workarea.Src

	o.Grid = c.Grid.Enabled
	o.GridSize = c.Grid.Size
	o.Guidelines = c.Guideline.Enabled
	o.GuidelineOptions.Margin = c.Guideline.Margin
	o.GuidelineOptions.Snap = c.Guideline.Snap

	o.PlatformClipboard = c.Keyboard.Clipboard
	o.ArrowStep = c.Keyboard.ArrowStep
	if len(c.Keyboard.Bindings) > 0 {
		o.Bindings = make(map[input.Action][]string, len(c.Keyboard.Bindings))
		for k, v := range c.Keyboard.Bindings {
			o.Bindings[input.Action(k)] = append([]string(nil), v...)
		}
	}
	o.Journal.MaxEntries = c.Journal.MaxEntries
	o.Journal.Disabled = !c.Journal.Enabled
	return o
}
