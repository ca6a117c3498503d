/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lastJSONLine(t *testing.T, data []byte) map[string]any {
	t.Helper()
	sc := bufio.NewScanner(bytes.NewReader(data))
	var last string
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

func TestInitWritesRotatingFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "godeklar.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Output: &console})
	t.Cleanup(func() { _ = Close() })

	l := WithOperation(WithComponent("scene"), "push")
	l.InfoContext(WithDrawing(context.Background(), "plan.yaml"), "history", slog.String("command", "translate circle"))
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	m := lastJSONLine(t, b)
	want := map[string]string{
		"app":       AppName,
		"component": "scene",
		"op":        "push",
		"msg":       "history",
		"command":   "translate circle",
		"drawing":   "plan.yaml",
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s: want %q got %v", k, v, m[k])
		}
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if c := lastJSONLine(t, console.Bytes()); c["drawing"] != "plan.yaml" {
		t.Fatalf("console json output should match: %v", c)
	}
}

func TestConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Output: &buf})
	L().Info("quiet")
	L().Warn("loud", slog.Int("n", 3))
	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "WRN loud") || !strings.Contains(out, "n=3") || !strings.Contains(out, "app=godeklar") {
		t.Fatalf("unexpected console line: %q", out)
	}
}

func TestDrawingFrom(t *testing.T) {
	if _, ok := DrawingFrom(context.Background()); ok {
		t.Fatalf("no drawing expected")
	}
	if p, ok := DrawingFrom(WithDrawing(context.Background(), "a.yaml")); !ok || p != "a.yaml" {
		t.Fatalf("got %q %v", p, ok)
	}
	if _, ok := DrawingFrom(WithDrawing(context.Background(), "")); ok {
		t.Fatalf("empty path should not count")
	}
}
