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
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "godeklar/internal/log"
	"godeklar/internal/scene"
	"godeklar/internal/undo"
)

// AppConfig is the user configuration persisted as YAML in the user scope.
// Environment variables override it at runtime and are never written back.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Scene         SceneConfig    `yaml:"scene"`
	Undo          UndoConfig     `yaml:"undo"`
	Autosave      AutosaveConfig `yaml:"autosave"`
	Logging       LoggingConfig  `yaml:"logging"`
}

type SceneConfig struct {
	ScaleFactor  float64 `yaml:"scale_factor"`
	ViewWidth    float64 `yaml:"view_width"`
	ViewHeight   float64 `yaml:"view_height"`
	ZoomFactor   float64 `yaml:"zoom_factor"`
	MinZoom      float64 `yaml:"min_zoom"`
	MaxZoom      float64 `yaml:"max_zoom"`
	HandleSize   float64 `yaml:"handle_size"`
	BackColor    string  `yaml:"back_color"`
	MetadataFile string  `yaml:"metadata_file"` // empty uses the built-in catalogue
}

type UndoConfig struct {
	MaxDepth      int  `yaml:"max_depth"`
	CoalesceDrags bool `yaml:"coalesce_drags"`
}

type AutosaveConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Every    int    `yaml:"every"`     // history changes between snapshots
	KeepLast int    `yaml:"keep_last"` // snapshots kept per drawing
	Dir      string `yaml:"dir"`       // empty uses the user cache dir
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Source     bool   `yaml:"source"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func Defaults() AppConfig {
	d := scene.DefaultOptions()
	return AppConfig{
		ConfigVersion: 1,
		Scene: SceneConfig{
			ScaleFactor: d.ScaleFactor,
			ViewWidth:   d.ViewWidth,
			ViewHeight:  d.ViewHeight,
			ZoomFactor:  d.ZoomFactor,
			MinZoom:     d.MinZoom,
			MaxZoom:     d.MaxZoom,
			HandleSize:  d.HandleSize,
			BackColor:   d.BackColor,
		},
		Undo:     UndoConfig{MaxDepth: d.Undo.MaxDepth, CoalesceDrags: true},
		Autosave: AutosaveConfig{Enabled: true, Every: 20, KeepLast: 10},
		Logging:  LoggingConfig{Level: "info", Format: "console", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Env var names used as overrides.
const (
	EnvScaleFactor   = "GDK_SCALE_FACTOR"
	EnvMetadataFile  = "GDK_METADATA_FILE"
	EnvUndoMaxDepth  = "GDK_UNDO_MAX_DEPTH"
	EnvUndoCoalesce  = "GDK_UNDO_COALESCE"
	EnvAutosave      = "GDK_AUTOSAVE"
	EnvAutosaveEvery = "GDK_AUTOSAVE_EVERY"
	EnvAutosaveDir   = "GDK_AUTOSAVE_DIR"
	EnvLogLevel      = applog.EnvLevel
	EnvLogFormat     = applog.EnvFormat
	EnvLogSource     = applog.EnvSource
	EnvLogFile       = applog.EnvFile
)

type envBinding struct {
	key   string
	env   string
	apply func(cfg *AppConfig, v string)
}

var envBindings = []envBinding{
	{"scene.scale_factor", EnvScaleFactor, func(c *AppConfig, v string) { setFloat(&c.Scene.ScaleFactor, v) }},
	{"scene.metadata_file", EnvMetadataFile, func(c *AppConfig, v string) { c.Scene.MetadataFile = v }},
	{"undo.max_depth", EnvUndoMaxDepth, func(c *AppConfig, v string) { setInt(&c.Undo.MaxDepth, v) }},
	{"undo.coalesce_drags", EnvUndoCoalesce, func(c *AppConfig, v string) { c.Undo.CoalesceDrags = truthy(v) }},
	{"autosave.enabled", EnvAutosave, func(c *AppConfig, v string) { c.Autosave.Enabled = truthy(v) }},
	{"autosave.every", EnvAutosaveEvery, func(c *AppConfig, v string) { setInt(&c.Autosave.Every, v) }},
	{"autosave.dir", EnvAutosaveDir, func(c *AppConfig, v string) { c.Autosave.Dir = v }},
	{"logging.level", EnvLogLevel, func(c *AppConfig, v string) { c.Logging.Level = strings.ToLower(v) }},
	{"logging.format", EnvLogFormat, func(c *AppConfig, v string) { c.Logging.Format = strings.ToLower(v) }},
	{"logging.source", EnvLogSource, func(c *AppConfig, v string) { c.Logging.Source = truthy(v) }},
	{"logging.file", EnvLogFile, func(c *AppConfig, v string) { c.Logging.File = v }},
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func setFloat(dst *float64, v string) {
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
		*dst = f
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoDeklar")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoDeklar")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "godeklar")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "godeklar")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present) over the defaults and
// applies environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit file. A missing file is not an error; a
// malformed one is reported together with the usable defaults.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	var ferr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			ferr = fmt.Errorf("parse config %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg, data)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, ferr
}

// Save writes the config to the user config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

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

// mergeInto copies the non-zero values of src. Booleans are copied only
// when the raw file mentions them, so an absent key keeps the default.
func mergeInto(dst, src *AppConfig, raw []byte) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	mergeFloat(&dst.Scene.ScaleFactor, src.Scene.ScaleFactor)
	mergeFloat(&dst.Scene.ViewWidth, src.Scene.ViewWidth)
	mergeFloat(&dst.Scene.ViewHeight, src.Scene.ViewHeight)
	mergeFloat(&dst.Scene.ZoomFactor, src.Scene.ZoomFactor)
	mergeFloat(&dst.Scene.MinZoom, src.Scene.MinZoom)
	mergeFloat(&dst.Scene.MaxZoom, src.Scene.MaxZoom)
	mergeFloat(&dst.Scene.HandleSize, src.Scene.HandleSize)
	mergeString(&dst.Scene.BackColor, src.Scene.BackColor)
	mergeString(&dst.Scene.MetadataFile, src.Scene.MetadataFile)

	if src.Undo.MaxDepth != 0 {
		dst.Undo.MaxDepth = src.Undo.MaxDepth
	}
	present := presentKeys(raw)
	if present["undo.coalesce_drags"] {
		dst.Undo.CoalesceDrags = src.Undo.CoalesceDrags
	}
	if present["autosave.enabled"] {
		dst.Autosave.Enabled = src.Autosave.Enabled
	}
	if src.Autosave.Every > 0 {
		dst.Autosave.Every = src.Autosave.Every
	}
	if src.Autosave.KeepLast > 0 {
		dst.Autosave.KeepLast = src.Autosave.KeepLast
	}
	mergeString(&dst.Autosave.Dir, src.Autosave.Dir)

	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	mergeString(&dst.Logging.File, src.Logging.File)
	if src.Logging.MaxSizeMB > 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	if src.Logging.MaxBackups > 0 {
		dst.Logging.MaxBackups = src.Logging.MaxBackups
	}
}

func mergeFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func mergeString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// presentKeys lists the section.key pairs that appear in raw YAML.
func presentKeys(raw []byte) map[string]bool {
	var m map[string]map[string]any
	out := map[string]bool{}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return out
	}
	for section, kv := range m {
		for k := range kv {
			out[section+"."+k] = true
		}
	}
	return out
}

func applyEnvOverrides(cfg *AppConfig) {
	for _, b := range envBindings {
		if v := strings.TrimSpace(os.Getenv(b.env)); v != "" {
			b.apply(cfg, v)
		}
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	for _, b := range envBindings {
		if b.key == key && os.Getenv(b.env) != "" {
			return b.env, true
		}
	}
	return "", false
}

// SceneOptions converts the scene and undo sections.
func (c AppConfig) SceneOptions() scene.Options {
	o := scene.DefaultOptions()
	o.ScaleFactor = c.Scene.ScaleFactor
	o.ViewWidth = c.Scene.ViewWidth
	o.ViewHeight = c.Scene.ViewHeight
	o.ZoomFactor = c.Scene.ZoomFactor
	o.MinZoom = c.Scene.MinZoom
	o.MaxZoom = c.Scene.MaxZoom
	o.HandleSize = c.Scene.HandleSize
	o.BackColor = c.Scene.BackColor
	o.Undo = undo.Config{MaxDepth: c.Undo.MaxDepth, Coalesce: c.Undo.CoalesceDrags}
	return o
}

// LogOptions converts the logging section.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		AddSource:  c.Logging.Source,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
	}
}

// AutosaveDir resolves the snapshot directory.
func (c AppConfig) AutosaveDir() (string, error) {
	if c.Autosave.Dir != "" {
		return c.Autosave.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve autosave dir: %w", err)
	}
	return filepath.Join(base, "godeklar", "autosave"), nil
}
