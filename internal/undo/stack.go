/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo provides a linear command history with a cursor.
package undo

// Command is a reversible mutation. Do is called once by Push and again for
// every redo; Undo reverses the last Do.
type Command interface {
	Do()
	Undo()
	Name() string
}

// Merger is implemented by commands that can absorb a following command of
// the same kind, so a whole drag gesture becomes one history entry. Merge is
// called after next has been applied and returns false to keep both.
type Merger interface {
	Merge(next Command) bool
}

// Config controls depth and coalescing.
type Config struct {
	// MaxDepth drops the oldest entries beyond this many (0 means unlimited).
	MaxDepth int
	// Coalesce lets Merger commands absorb their successors.
	Coalesce bool
}

// Op names a history change reported to listeners.
type Op string

const (
	OpPush  Op = "push"
	OpMerge Op = "merge"
	OpUndo  Op = "undo"
	OpRedo  Op = "redo"
	OpClear Op = "clear"
)

// Stack is an in-memory undo/redo history. Entries before the cursor are
// applied, entries at and after it are undone. It is not safe for concurrent
// use; all calls are expected from the UI event loop.
type Stack struct {
	cfg    Config
	cmds   []Command
	cursor int

	// OnChange, when set, runs after every history change.
	OnChange func(op Op, cmd Command)
}

func NewStack(cfg Config) *Stack {
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = 0
	}
	return &Stack{cfg: cfg}
}

// Push discards the redo tail, applies cmd and records it.
func (s *Stack) Push(cmd Command) {
	if cmd == nil {
		return
	}
	// Any new change invalidates redo
	s.cmds = s.cmds[:s.cursor]
	cmd.Do()
	if s.cfg.Coalesce && s.cursor > 0 {
		if m, ok := s.cmds[s.cursor-1].(Merger); ok && m.Merge(cmd) {
			s.notify(OpMerge, s.cmds[s.cursor-1])
			return
		}
	}
	s.cmds = append(s.cmds, cmd)
	s.cursor++
	s.enforceCaps()
	s.notify(OpPush, cmd)
}

// Undo reverses the command before the cursor. It reports false at the
// bottom of the history.
func (s *Stack) Undo() bool {
	if s.cursor == 0 {
		return false
	}
	s.cursor--
	cmd := s.cmds[s.cursor]
	cmd.Undo()
	s.notify(OpUndo, cmd)
	return true
}

// Redo re-applies the command at the cursor. It reports false at the top of
// the history.
func (s *Stack) Redo() bool {
	if s.cursor >= len(s.cmds) {
		return false
	}
	cmd := s.cmds[s.cursor]
	cmd.Do()
	s.cursor++
	s.notify(OpRedo, cmd)
	return true
}

func (s *Stack) CanUndo() bool { return s.cursor > 0 }
func (s *Stack) CanRedo() bool { return s.cursor < len(s.cmds) }
func (s *Stack) Len() int      { return len(s.cmds) }
func (s *Stack) Cursor() int   { return s.cursor }

// UndoName returns the name of the command Undo would reverse.
func (s *Stack) UndoName() string {
	if s.cursor == 0 {
		return ""
	}
	return s.cmds[s.cursor-1].Name()
}

// RedoName returns the name of the command Redo would apply.
func (s *Stack) RedoName() string {
	if s.cursor >= len(s.cmds) {
		return ""
	}
	return s.cmds[s.cursor].Name()
}

// Clear forgets the whole history without touching any state.
func (s *Stack) Clear() {
	s.cmds = nil
	s.cursor = 0
	s.notify(OpClear, nil)
}

// Stats returns depth and cursor for diagnostics.
func (s *Stack) Stats() (depth, cursor int) { return len(s.cmds), s.cursor }

func (s *Stack) enforceCaps() {
	if s.cfg.MaxDepth <= 0 || len(s.cmds) <= s.cfg.MaxDepth {
		return
	}
	toDrop := len(s.cmds) - s.cfg.MaxDepth
	s.cmds = append([]Command(nil), s.cmds[toDrop:]...)
	s.cursor -= toDrop
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *Stack) notify(op Op, cmd Command) {
	if s.OnChange != nil {
		s.OnChange(op, cmd)
	}
}
