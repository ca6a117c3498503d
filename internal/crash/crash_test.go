/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"godeklar/internal/drawing"
	"godeklar/internal/geom"
	"godeklar/internal/scene"
	"godeklar/internal/session"
	"godeklar/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	defer os.Remove(path)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "GoDeklar Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestRecoverWritesReportAndSnapshot(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	st, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	dir := t.TempDir()
	sess := session.New(scene.New(scene.DefaultOptions(), nil), st, session.Options{})
	if err := sess.SaveAs(filepath.Join(dir, "plan.yaml")); err != nil {
		t.Fatal(err)
	}
	sess.Scene().AddItemFromUI("circle", geom.Pt(0, 0))

	func() {
		defer Recover(sess)
		panic("boom")
	}()

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
	files, _ := os.ReadDir(filepath.Join(dir, drawing.BackupsDirName))
	var report string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			report = filepath.Join(dir, drawing.BackupsDirName, f.Name())
		}
	}
	if report == "" {
		t.Fatalf("expected crash report beside the drawing")
	}
	b, _ := os.ReadFile(report)
	if !strings.Contains(string(b), "Panic: boom") || !strings.Contains(string(b), "Items: 1") {
		t.Fatalf("unexpected report: %s", b)
	}
	snap, err := st.LatestSnapshot(context.Background(), sess.Key())
	if err != nil || snap.Items != 1 {
		t.Fatalf("crash snapshot = %+v, %v", snap, err)
	}
}

func TestRecoverWithoutPanic(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("exit must not run without a panic")
	}
}
