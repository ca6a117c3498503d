/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"godeklar/internal/config"
	"godeklar/internal/crash"
	"godeklar/internal/export"
	applog "godeklar/internal/log"
	"godeklar/internal/scene"
	"godeklar/internal/session"
	"godeklar/internal/shape"
	"godeklar/internal/storage"
	"godeklar/internal/ui"
	"godeklar/internal/version"
)

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "GoDeklar - declarative drawing editor")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  godeklar version|-v|--version            Show version")
	_, _ = fmt.Fprintln(w, "  godeklar validate <file>                 Check a drawing against the schema")
	_, _ = fmt.Fprintln(w, "  godeklar info <file>                     Print a summary of a drawing")
	_, _ = fmt.Fprintln(w, "  godeklar render <file> <out.png>         Rasterize a drawing")
	_, _ = fmt.Fprintln(w, "  godeklar export <file> <out.svg|out.pdf> Write a vector export")
	_, _ = fmt.Fprintln(w, "  godeklar snapshots [<file>]              List autosave snapshots")
	_, _ = fmt.Fprintln(w, "  godeklar recover <file> [<out>]          Write the newest snapshot of <file>")
	_, _ = fmt.Fprintln(w, "  godeklar ui [<file>]                     Launch the editor (build with -tags fyne)")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// app is what every command but version needs.
type app struct {
	cfg   config.AppConfig
	sess  *session.Session
	store *storage.Store
	log   *slog.Logger
}

func newApp(cfg config.AppConfig) (*app, error) {
	l := applog.WithComponent("cli")
	meta, err := shape.LoadMetadata(cfg.Scene.MetadataFile)
	if err != nil {
		return nil, err
	}
	sc := scene.New(cfg.SceneOptions(), shape.NewRegistry(meta))
	a := &app{cfg: cfg, log: l}
	if cfg.Autosave.Enabled {
		dir, err := cfg.AutosaveDir()
		if err == nil {
			a.store, err = storage.Open(dir)
		}
		if err != nil {
			l.Warn("autosave disabled", slog.Any("err", err))
		}
	}
	a.sess = session.New(sc, a.store, session.Options{
		Autosave: a.store != nil,
		Every:    cfg.Autosave.Every,
		KeepLast: cfg.Autosave.KeepLast,
	})
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close autosave store", slog.Any("err", err))
	}
}

func run(args []string, out io.Writer) int {
	if len(args) == 0 {
		usage(out)
		return 0
	}
	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(out, "GoDeklar")
		_, _ = fmt.Fprintln(out, version.String())
		return 0
	case "help", "-h", "--help":
		usage(out)
		return 0
	}

	cfg, cerr := config.Load()
	applog.Init(cfg.LogOptions())
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	if cerr != nil {
		l.Warn("config ignored", slog.Any("err", cerr))
	}

	a, err := newApp(cfg)
	if err != nil {
		_, _ = fmt.Fprintln(out, "Error:", err)
		return 1
	}
	defer a.Close()
	defer crash.Recover(a.sess)

	l.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)))
	need := map[string]int{"validate": 1, "info": 1, "render": 2, "export": 2, "recover": 1}
	if n, ok := need[args[0]]; ok && len(args) < n+1 {
		_, _ = fmt.Fprintf(out, "%s requires %d argument(s)\n", args[0], n)
		usage(out)
		return 2
	}

	switch args[0] {
	case "validate":
		err = a.validate(out, args[1])
	case "info":
		err = a.info(out, args[1])
	case "render", "export":
		err = a.export(out, args[1], args[2])
	case "snapshots":
		key := ""
		if len(args) > 1 {
			key = args[1]
		}
		err = a.snapshots(out, key)
	case "recover":
		dst := ""
		if len(args) > 2 {
			dst = args[2]
		}
		err = a.recoverSnapshot(out, args[1], dst)
	case "ui":
		if len(args) > 1 {
			if err = a.open(args[1]); err != nil {
				break
			}
		}
		err = ui.Run(a.sess)
	default:
		usage(out)
		return 2
	}
	if err != nil {
		l.Error(args[0]+" failed", slog.Any("err", err))
		_, _ = fmt.Fprintln(out, "Error:", err)
		return 1
	}
	return 0
}

// open loads path and logs the items that could not be built.
func (a *app) open(path string) error {
	errs, err := a.sess.Open(path)
	if err != nil {
		return err
	}
	for _, e := range errs {
		a.log.Warn("item skipped", slog.Any("err", e))
	}
	return nil
}

func (a *app) validate(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := a.sess.Scene().Keys().Validate(data); err != nil {
		return err
	}
	errs, err := a.sess.Open(path)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d item(s) invalid: %w", len(errs), errors.Join(errs...))
	}
	_, _ = fmt.Fprintf(out, "%s: OK (%d items)\n", path, a.sess.Scene().Len())
	return nil
}

func (a *app) info(out io.Writer, path string) error {
	if err := a.open(path); err != nil {
		return err
	}
	sc := a.sess.Scene()
	counts := map[string]int{}
	for _, it := range sc.Items() {
		counts[it.Type()]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	b := sc.Bounds()
	_, _ = fmt.Fprintf(out, "Drawing: %s\n", path)
	if d := sc.General().Description; d != "" {
		_, _ = fmt.Fprintf(out, "Description: %s\n", d)
	}
	_, _ = fmt.Fprintf(out, "Scale factor: %g\n", sc.ScaleFactor())
	_, _ = fmt.Fprintf(out, "Items: %d\n", sc.Len())
	for _, t := range types {
		_, _ = fmt.Fprintf(out, "  %-10s %d\n", t, counts[t])
	}
	_, _ = fmt.Fprintf(out, "Bounds: x=%g y=%g w=%g h=%g\n", b.X, b.Y, b.W, b.H)
	return nil
}

func (a *app) export(out io.Writer, path, dst string) error {
	if err := a.open(path); err != nil {
		return err
	}
	if err := export.File(a.sess.Scene(), dst, export.Options{Margin: 20}); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Wrote", dst)
	return nil
}

func (a *app) snapshots(out io.Writer, path string) error {
	if a.store == nil {
		return errors.New("autosave store not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if path == "" {
		ds, err := a.store.Drawings(ctx)
		if err != nil {
			return err
		}
		for _, d := range ds {
			_, _ = fmt.Fprintf(out, "%s  %s\n", d.Latest.Local().Format(time.DateTime), d.Key)
		}
		return nil
	}
	key, err := snapshotKey(path)
	if err != nil {
		return err
	}
	snaps, err := a.store.ListSnapshots(ctx, key, 0)
	if err != nil {
		return err
	}
	for _, s := range snaps {
		_, _ = fmt.Fprintf(out, "%d  %s  %d items\n", s.ID, s.TS.Local().Format(time.DateTime), s.Items)
	}
	return nil
}

func snapshotKey(path string) (string, error) {
	if strings.EqualFold(path, session.UntitledKey) {
		return session.UntitledKey, nil
	}
	return filepath.Abs(path)
}

// recoverSnapshot writes the newest snapshot of path to dst, by default
// <name>.recovered.yaml beside the drawing, leaving path untouched.
func (a *app) recoverSnapshot(out io.Writer, path, dst string) error {
	if strings.EqualFold(path, session.UntitledKey) {
		path = ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap, errs, err := a.sess.Recover(ctx, path)
	if err != nil {
		return err
	}
	for _, e := range errs {
		a.log.Warn("item skipped", slog.Any("err", e))
	}
	if dst == "" {
		base := path
		if base == "" {
			base = session.UntitledKey + ".yaml"
		}
		dst = strings.TrimSuffix(base, filepath.Ext(base)) + ".recovered.yaml"
	}
	sc := a.sess.Scene()
	if err := sc.Keys().SaveFile(dst, a.sess.Document()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Recovered snapshot from %s (%d items) to %s\n", snap.TS.Local().Format(time.DateTime), sc.Len(), dst)
	return nil
}
