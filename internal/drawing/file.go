/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package drawing

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const BackupsDirName = "backups"

// LoadFile reads a drawing. If the file is missing or cannot be parsed, the
// latest timestamped backup is tried.
func (k Keys) LoadFile(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		doc, berr := k.loadLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open drawing: %w; backup attempt: %v", err, berr)
		}
		return doc, nil
	}
	doc, perr := k.Unmarshal(b)
	if perr != nil {
		doc, berr := k.loadLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("parse drawing: %w; backup attempt: %v", perr, berr)
		}
		return doc, nil
	}
	return doc, nil
}

// SaveFile writes doc next to path through a temp file and keeps a
// timestamped backup of the previous content in backups/.
func (k Keys) SaveFile(path string, doc *Document) error {
	if path == "" {
		return errors.New("drawing path is required")
	}
	data, err := k.Marshal(doc)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create drawing dir: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		bpath := backupPath(path, time.Now())
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current drawing: %w", cerr)
		}
	}

	base := filepath.Base(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", base, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp drawing: %w", werr)
	}
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace drawing: %w", rerr)
	}
	return nil
}

func LoadFile(path string) (*Document, error) { return DefaultKeys().LoadFile(path) }

func SaveFile(path string, doc *Document) error { return DefaultKeys().SaveFile(path, doc) }

func backupPath(path string, now time.Time) string {
	stamp := now.Format("20060102-150405.000")
	return filepath.Join(filepath.Dir(path), BackupsDirName, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
}

// Backups lists the backups of path, oldest first.
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
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // the timestamp sorts lexicographically
	return out, nil
}

func (k Keys) loadLatestBackup(path string) (*Document, error) {
	all, err := Backups(path)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errors.New("no backups found")
	}
	b, err := os.ReadFile(all[len(all)-1])
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	doc, err := k.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return doc, nil
}

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
