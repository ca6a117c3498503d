/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"godeklar/internal/geom"
	"godeklar/internal/scene"
	"godeklar/internal/storage"
)

const sample = `general:
  scale_factor: 100
items:
  - item: {type: line, start: [0, 0], end: [1, 2]}
  - item: {type: circle, center: [0, 0], radius: 1}
`

func newSession(t *testing.T, opts Options) (*Session, *storage.Store) {
	t.Helper()
	st, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(scene.New(scene.DefaultOptions(), nil), st, opts), st
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenEditSave(t *testing.T) {
	s, _ := newSession(t, Options{})
	path := writeSample(t)
	errs, err := s.Open(path)
	if err != nil || len(errs) != 0 {
		t.Fatalf("Open: %v %v", err, errs)
	}
	if s.Dirty() || s.Scene().Len() != 2 {
		t.Fatalf("fresh drawing: dirty=%v len=%d", s.Dirty(), s.Scene().Len())
	}
	if _, err := s.Scene().AddItemFromUI("circle", geom.Pt(300, 0)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !s.Dirty() {
		t.Fatalf("edit should mark the session dirty")
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.Dirty() {
		t.Fatalf("save should clear dirty")
	}

	other, _ := newSession(t, Options{})
	if _, err := other.Open(path); err != nil {
		t.Fatal(err)
	}
	if other.Scene().Len() != 3 {
		t.Fatalf("saved drawing has %d items", other.Scene().Len())
	}
}

func TestSaveWithoutPath(t *testing.T) {
	s, _ := newSession(t, Options{})
	if err := s.Save(); !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
	path := filepath.Join(t.TempDir(), "new.yaml")
	if err := s.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if s.Path() != path {
		t.Fatalf("path = %q", s.Path())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not written: %v", err)
	}
}

func TestAutosaveEveryNChanges(t *testing.T) {
	s, st := newSession(t, Options{Autosave: true, Every: 2, KeepLast: 2})
	path := writeSample(t)
	if _, err := s.Open(path); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	sc := s.Scene()
	sc.AddItemFromUI("circle", geom.Pt(100, 100))
	if _, err := st.LatestSnapshot(ctx, s.Key()); !errors.Is(err, storage.ErrNoSnapshot) {
		t.Fatalf("one change should not autosave yet: %v", err)
	}
	sc.AddItemFromUI("circle", geom.Pt(200, 100))
	snap, err := st.LatestSnapshot(ctx, s.Key())
	if err != nil || snap.Items != 4 {
		t.Fatalf("snapshot = %+v, %v", snap, err)
	}
	sc.Undo()
	sc.Undo()
	sc.Redo()
	sc.Redo()
	list, _ := st.ListSnapshots(ctx, s.Key(), 10)
	if len(list) != 2 {
		t.Fatalf("expected pruning to 2 snapshots, got %d", len(list))
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LatestSnapshot(ctx, s.Key()); !errors.Is(err, storage.ErrNoSnapshot) {
		t.Fatalf("clean save should drop snapshots: %v", err)
	}
}

func TestRecover(t *testing.T) {
	s, st := newSession(t, Options{Autosave: true, Every: 1})
	path := writeSample(t)
	if _, err := s.Open(path); err != nil {
		t.Fatal(err)
	}
	s.Scene().AddItemFromUI("rectangle", geom.Pt(0, 0))

	fresh := New(scene.New(scene.DefaultOptions(), nil), st, Options{})
	snap, errs, err := fresh.Recover(context.Background(), path)
	if err != nil || len(errs) != 0 {
		t.Fatalf("Recover: %v %v", err, errs)
	}
	if snap.Items != 3 || fresh.Scene().Len() != 3 {
		t.Fatalf("recovered %d items (snapshot says %d)", fresh.Scene().Len(), snap.Items)
	}
	if !fresh.Dirty() || fresh.Path() != path {
		t.Fatalf("recovered session: dirty=%v path=%q", fresh.Dirty(), fresh.Path())
	}
	if _, _, err := fresh.Recover(context.Background(), filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, storage.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestNoStore(t *testing.T) {
	s := New(scene.New(scene.DefaultOptions(), nil), nil, Options{Autosave: true, Every: 1})
	s.Scene().AddItemFromUI("circle", geom.Pt(0, 0))
	if s.AutosaveErr() != nil {
		t.Fatalf("autosave without a store should be skipped")
	}
	if err := s.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected error without store")
	}
}
