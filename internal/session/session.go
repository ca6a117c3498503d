/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package session ties a scene to the drawing file it was opened from and to
// the autosave store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"godeklar/internal/drawing"
	applog "godeklar/internal/log"
	"godeklar/internal/scene"
	"godeklar/internal/storage"
)

// UntitledKey is the snapshot key of a drawing that was never saved.
const UntitledKey = "untitled"

// ErrNoPath is returned by Save when the drawing has no file yet.
var ErrNoPath = errors.New("drawing has no file name")

type Options struct {
	Autosave bool
	Every    int // history changes between snapshots
	KeepLast int
}

type Session struct {
	scene *scene.Scene
	store *storage.Store
	opts  Options
	log   *slog.Logger

	path    string
	dirty   bool
	changes int
	lastErr error
	loading bool
	now     func() time.Time
}

// New attaches a session to sc. store may be nil, which disables autosave.
func New(sc *scene.Scene, store *storage.Store, opts Options) *Session {
	if opts.Every <= 0 {
		opts.Every = 20
	}
	s := &Session{scene: sc, store: store, opts: opts, log: applog.WithComponent("session"), now: time.Now}
	sc.Subscribe(s.onChange)
	return s
}

func (s *Session) Scene() *scene.Scene { return s.scene }
func (s *Session) Path() string        { return s.path }
func (s *Session) Dirty() bool         { return s.dirty }

// AutosaveErr returns the error of the last failed background snapshot.
func (s *Session) AutosaveErr() error { return s.lastErr }

// Key returns the snapshot key of the current drawing.
func (s *Session) Key() string { return keyFor(s.path) }

func keyFor(path string) string {
	if path == "" {
		return UntitledKey
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func (s *Session) onChange(c scene.Change) {
	if c != scene.ChangeHistory || s.loading {
		return
	}
	s.dirty = true
	s.changes++
	if !s.opts.Autosave || s.store == nil || s.changes < s.opts.Every {
		return
	}
	s.changes = 0
	if err := s.Snapshot(context.Background()); err != nil {
		s.lastErr = err
		s.log.Warn("autosave failed", slog.String("drawing", s.Key()), slog.Any("err", err))
	}
}

// Open loads path into the scene. Items that cannot be created are returned
// as the first value while the rest of the drawing loads.
func (s *Session) Open(path string) ([]error, error) {
	l := applog.WithOperation(s.log, "open").With(slog.String("path", path))
	doc, err := s.scene.Keys().LoadFile(path)
	if err != nil {
		l.Error("open drawing failed", slog.Any("err", err))
		return nil, err
	}
	errs := s.load(doc)
	s.path = path
	s.dirty = false
	s.changes = 0
	l.Info("drawing opened", slog.Int("items", s.scene.Len()), slog.Int("errors", len(errs)))
	return errs, nil
}

// Save writes the drawing to its file and drops its snapshots.
func (s *Session) Save() error {
	if s.path == "" {
		return ErrNoPath
	}
	return s.write(s.path)
}

// SaveAs writes the drawing to path, which becomes the session's file.
// Snapshots taken under the previous key are dropped.
func (s *Session) SaveAs(path string) error {
	if path == "" {
		return ErrNoPath
	}
	old := s.Key()
	if err := s.write(path); err != nil {
		return err
	}
	s.path = path
	if s.store != nil && old != s.Key() {
		if err := s.store.DeleteSnapshots(context.Background(), old); err != nil {
			s.log.Warn("drop old snapshots failed", slog.String("drawing", old), slog.Any("err", err))
		}
	}
	return nil
}

func (s *Session) write(path string) error {
	l := applog.WithOperation(s.log, "save").With(slog.String("path", path))
	if err := s.scene.Keys().SaveFile(path, s.scene.Drawing()); err != nil {
		l.Error("save drawing failed", slog.Any("err", err))
		return fmt.Errorf("save %s: %w", path, err)
	}
	s.dirty = false
	s.changes = 0
	if s.store != nil {
		if err := s.store.DeleteSnapshots(context.Background(), keyFor(path)); err != nil {
			l.Warn("drop snapshots failed", slog.Any("err", err))
		}
	}
	l.Info("drawing saved", slog.Int("items", s.scene.Len()))
	return nil
}

// Snapshot stores the current drawing in the autosave store and prunes old
// snapshots.
func (s *Session) Snapshot(ctx context.Context) error {
	if s.store == nil {
		return errors.New("autosave store not configured")
	}
	blob, err := s.scene.Keys().Marshal(s.scene.Drawing())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	key := s.Key()
	if err := s.store.SaveSnapshot(ctx, key, blob, s.scene.Len(), s.now()); err != nil {
		return err
	}
	if _, err := s.store.PruneSnapshots(ctx, key, s.opts.KeepLast); err != nil {
		return err
	}
	s.lastErr = nil
	return nil
}

// Recover loads the newest snapshot of path (empty for an untitled
// drawing) into the scene. The session takes path as its file and stays
// dirty until saved.
func (s *Session) Recover(ctx context.Context, path string) (storage.Snapshot, []error, error) {
	if s.store == nil {
		return storage.Snapshot{}, nil, errors.New("autosave store not configured")
	}
	snap, err := s.store.LatestSnapshot(ctx, keyFor(path))
	if err != nil {
		return storage.Snapshot{}, nil, err
	}
	doc, err := s.scene.Keys().Unmarshal(snap.Blob)
	if err != nil {
		return snap, nil, fmt.Errorf("decode snapshot: %w", err)
	}
	errs := s.load(doc)
	s.path = path
	s.dirty = true
	s.changes = 0
	s.log.Info("snapshot recovered", slog.String("drawing", snap.Drawing), slog.Time("ts", snap.TS), slog.Int("items", s.scene.Len()))
	return snap, errs, nil
}

func (s *Session) load(doc *drawing.Document) []error {
	s.loading = true
	defer func() { s.loading = false }()
	return s.scene.Load(doc)
}

// Document returns the drawing as it would be saved.
func (s *Session) Document() *drawing.Document { return s.scene.Drawing() }
