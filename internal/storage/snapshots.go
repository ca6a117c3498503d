/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(drawing, ts, blob, items) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT id, ts, blob, items FROM snapshots WHERE drawing = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, ts, blob, items FROM snapshots WHERE drawing = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE drawing = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE drawing = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// language=SQL
// dialect=SQLite
const listDrawingsSQL = `SELECT drawing, MAX(ts) FROM snapshots GROUP BY drawing ORDER BY MAX(ts) DESC`

// language=SQL
// dialect=SQLite
const deleteDrawingSQL = `DELETE FROM snapshots WHERE drawing = ?`

// Snapshot is one autosaved copy of an encoded drawing.
type Snapshot struct {
	ID      int64
	Drawing string
	TS      time.Time
	Items   int
	Blob    []byte
}

// ErrNoSnapshot is returned by LatestSnapshot when a drawing has none.
var ErrNoSnapshot = errors.New("no snapshot")

// tsLayout sorts lexically in time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// SaveSnapshot stores blob as the newest snapshot of drawing.
func (s *Store) SaveSnapshot(ctx context.Context, drawing string, blob []byte, items int, ts time.Time) error {
	if drawing == "" {
		return errors.New("drawing key is required")
	}
	if _, err := s.db.ExecContext(ctx, insertSnapshotSQL, drawing, ts.UTC().Format(tsLayout), blob, items); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.log.Debug("snapshot saved", slog.String("drawing", drawing), slog.Int("bytes", len(blob)), slog.Int("items", items))
	return nil
}

// LatestSnapshot returns the newest snapshot of drawing or ErrNoSnapshot.
func (s *Store) LatestSnapshot(ctx context.Context, drawing string) (Snapshot, error) {
	snap := Snapshot{Drawing: drawing}
	var ts string
	err := s.db.QueryRowContext(ctx, selectLatestSnapshotSQL, drawing).Scan(&snap.ID, &ts, &snap.Blob, &snap.Items)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}
	snap.TS, _ = time.Parse(tsLayout, ts)
	return snap, nil
}

// ListSnapshots returns up to limit snapshots of drawing, newest first.
func (s *Store) ListSnapshots(ctx context.Context, drawing string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, listSnapshotsSQL, drawing, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		snap := Snapshot{Drawing: drawing}
		var ts string
		if err := rows.Scan(&snap.ID, &ts, &snap.Blob, &snap.Items); err != nil {
			return nil, err
		}
		snap.TS, _ = time.Parse(tsLayout, ts)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps the keepLast newest snapshots of drawing and reports
// how many were deleted. keepLast <= 0 keeps everything.
func (s *Store) PruneSnapshots(ctx context.Context, drawing string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, pruneOldSnapshotsSQL, drawing, drawing, keepLast)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

// DeleteSnapshots drops every snapshot of drawing, typically after a clean save.
func (s *Store) DeleteSnapshots(ctx context.Context, drawing string) error {
	_, err := s.db.ExecContext(ctx, deleteDrawingSQL, drawing)
	return err
}

// Drawing is a drawing key with the time of its newest snapshot.
type Drawing struct {
	Key    string
	Latest time.Time
}

// Drawings lists the drawings that have snapshots, most recently saved first.
func (s *Store) Drawings(ctx context.Context) ([]Drawing, error) {
	rows, err := s.db.QueryContext(ctx, listDrawingsSQL)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Drawing
	for rows.Next() {
		var d Drawing
		var ts string
		if err := rows.Scan(&d.Key, &ts); err != nil {
			return nil, err
		}
		d.Latest, _ = time.Parse(tsLayout, ts)
		out = append(out, d)
	}
	return out, rows.Err()
}
