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

package symbolizer

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/btree"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
)

// DefaultMaxPar is spec.md §4.6's SYMB_MAX_PAR default.
const DefaultMaxPar = 16

// DefaultDiscoveryFreq and DefaultRetryFreq are spec.md §4.6's
// SYMB_FREQ and SYMB_RETRY_FREQ defaults.
const (
	DefaultDiscoveryFreq = time.Second
	DefaultRetryFreq     = 30 * time.Second
)

// DefaultFetchRatePerSec caps how often the controller starts a new
// fetch against the symbolizer backend, independent of how many are
// already in flight -- protects a backend that is up but slow to
// respond from being hit with maxPar requests all at once after a
// quiet period.
const DefaultFetchRatePerSec = 32

type pendingItem struct {
	id   model.FileId
	meta model.ExecutableMeta
}

func pendingLess(a, b pendingItem) bool { return bytes.Compare(a.id[:], b.id[:]) < 0 }

type taskResult struct {
	item pendingItem
	tree rangeTree
	err  error
}

// rangeTree is the symbol-store-ready tree a Fetcher produces; kept as
// a narrow interface so the controller doesn't need to know about
// symstore.TreeBuilder's own Encode/Len signatures beyond what it
// calls here.
type rangeTree interface {
	Encode() []byte
	Len() int
}

// Controller is spec.md §4.6's controller loop: a pending ordered map
// (deduplicating by FileId) and an in-flight set capped at maxPar,
// driving Fetcher tasks and folding their results back into the
// executables table by read-modify-write.
type Controller struct {
	store   *dbstore.Store
	fetcher Fetcher
	maxPar  int
	sem     *semaphore.Weighted
	limiter *rate.Limiter

	mu       sync.Mutex
	pending  *btree.BTreeG[pendingItem]
	inFlight map[model.FileId]bool
}

func NewController(store *dbstore.Store, fetcher Fetcher, maxPar int) *Controller {
	if maxPar <= 0 {
		maxPar = DefaultMaxPar
	}
	return &Controller{
		store:    store,
		fetcher:  fetcher,
		maxPar:   maxPar,
		sem:      semaphore.NewWeighted(int64(maxPar)),
		limiter:  rate.NewLimiter(rate.Limit(DefaultFetchRatePerSec), maxPar),
		pending:  btree.NewG(32, pendingLess),
		inFlight: map[model.FileId]bool{},
	}
}

// EnqueueDiscovered accepts discovery results into pending, skipping
// anything already in flight. Re-enqueuing an id already pending
// simply replaces its stashed meta (ReplaceOrInsert on the same key).
func (c *Controller) EnqueueDiscovered(discovered []Discovered) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range discovered {
		if c.inFlight[d.FileId] {
			continue
		}
		c.pending.ReplaceOrInsert(pendingItem{id: d.FileId, meta: d.Meta})
	}
}

// InFlightSnapshot returns a copy of the current in-flight set, for
// passing to Scan so a second discovery pass doesn't re-enqueue a
// task already running.
func (c *Controller) InFlightSnapshot() map[model.FileId]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[model.FileId]bool, len(c.inFlight))
	for k := range c.inFlight {
		out[k] = true
	}
	return out
}

// PendingLen and InFlightLen expose queue depth for internal/metrics'
// symbolizer queue-depth gauge.
func (c *Controller) PendingLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Len()
}

func (c *Controller) InFlightLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inFlight)
}

// fillSlots pops pending items while the SYMB_MAX_PAR semaphore has
// room and spawns one fetch goroutine per item, each reporting to
// results on completion. The semaphore (not inFlight's length) is the
// actual capacity gate; inFlight exists purely so Scan can skip a
// FileId already being fetched.
func (c *Controller) fillSlots(ctx context.Context, results chan<- taskResult) {
	for {
		if !c.sem.TryAcquire(1) {
			return
		}
		c.mu.Lock()
		item, ok := c.pending.DeleteMin()
		if !ok {
			c.mu.Unlock()
			c.sem.Release(1)
			return
		}
		c.inFlight[item.id] = true
		c.mu.Unlock()

		go c.runTask(ctx, item, results)
	}
}

func (c *Controller) runTask(ctx context.Context, item pendingItem, results chan<- taskResult) {
	defer c.sem.Release(1)

	if err := c.limiter.Wait(ctx); err != nil {
		results <- taskResult{item: item, err: err}
		return
	}

	buildId := ""
	if item.meta.BuildId != nil {
		buildId = *item.meta.BuildId
	}
	tree, err := c.fetcher.FetchRanges(ctx, item.id, buildId)
	var rt rangeTree
	if tree != nil {
		rt = tree
	}
	results <- taskResult{item: item, tree: rt, err: err}
}

// ApplyResult performs spec.md §4.6's read-modify-write status update
// for one completed task and releases its in-flight slot.
func (c *Controller) ApplyResult(syms SymInserter, res taskResult) error {
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, res.item.id)
		c.mu.Unlock()
	}()

	var status model.SymbStatus
	switch {
	case res.err == nil:
		if err := syms.Insert(res.item.id, res.tree.Encode()); err != nil {
			return err
		}
		status = model.Complete(uint32(res.tree.Len()))
	case errors.Is(res.err, ErrNotPresentGlobally):
		status = model.NotPresentGlobally()
	default:
		status = model.TempError(time.Now())
	}

	key := res.item.id
	meta := res.item.meta
	raw, found, err := c.store.Executables.Get(key[:])
	if err != nil {
		return err
	}
	if found {
		if meta, err = dbstore.DecodeExecutableMeta(raw); err != nil {
			return err
		}
	}
	meta.SymbStatus = status
	return c.store.Executables.Insert(key[:], dbstore.EncodeExecutableMeta(meta))
}

// SymInserter is the subset of *symstore.Store the controller needs,
// narrowed so ApplyResult's unit tests can use a map-backed double
// instead of real mmap'd files.
type SymInserter interface {
	Insert(id model.FileId, buf []byte) error
}

// Run drives the discovery scan on discoveryFreq and the controller
// loop until ctx is cancelled, per spec.md §4.6. It blocks, so callers
// run it in its own goroutine.
func (c *Controller) Run(ctx context.Context, syms SymInserter, discoveryFreq, retryFreq time.Duration) error {
	if discoveryFreq <= 0 {
		discoveryFreq = DefaultDiscoveryFreq
	}
	if retryFreq <= 0 {
		retryFreq = DefaultRetryFreq
	}

	results := make(chan taskResult, c.maxPar)
	ticker := time.NewTicker(discoveryFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			discovered, err := Scan(c.store, time.Now(), retryFreq, c.InFlightSnapshot())
			if err != nil {
				return err
			}
			c.EnqueueDiscovered(discovered)
			c.fillSlots(ctx, results)
		case res := <-results:
			if err := c.ApplyResult(syms, res); err != nil {
				return err
			}
			c.fillSlots(ctx, results)
		}
	}
}
