/*
	OFH Core - Open Fronthaul lower-layer stack
	Copyright (C) 2026  srsOSS Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package grid holds the uplink resource-grid repository and the PRACH
// buffer repository: per-slot, per-symbol ownership of a shared grid
// plus a per-port bitmap of resource elements written, mutex-guarded
// with deferred inserts drained off the real-time receive path.
package grid

import (
	"sync"

	"github.com/srsoss/ofh-core/pkg/executor"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

// Samples is one port's worth of decompressed IQ samples for a grid
// symbol, indexed by resource element (subcarrier) across the whole
// configured bandwidth.
type Samples []complex64

type uplinkSymbolEntry struct {
	valid    bool
	nofPrb   int
	written  []bitset // one bitset per port, sized nofPrb*NofSubcarriersPerPrb
	samples  []Samples
}

func newUplinkSymbolEntry(nofPorts, nofPrb int) uplinkSymbolEntry {
	nofRe := nofPrb * ofhtypes.NofSubcarriersPerPrb
	e := uplinkSymbolEntry{
		valid:   true,
		nofPrb:  nofPrb,
		written: make([]bitset, nofPorts),
		samples: make([]Samples, nofPorts),
	}
	for p := 0; p < nofPorts; p++ {
		e.written[p] = newBitset(nofRe)
		e.samples[p] = make(Samples, nofRe)
	}
	return e
}

func (e *uplinkSymbolEntry) writeRe(port, startRe int, iq []complex64) {
	if port < 0 || port >= len(e.samples) {
		return
	}
	copy(e.samples[port][startRe:], iq)
	e.written[port].fill(startRe, startRe+len(iq))
}

func (e *uplinkSymbolEntry) complete() bool {
	if !e.valid {
		return false
	}
	for _, b := range e.written {
		if !b.all() {
			return false
		}
	}
	return true
}

// CompletedSymbol is a symbol popped from the repository, complete or
// force-delivered partial.
type CompletedSymbol struct {
	Slot      ofhtypes.SlotPoint
	Symbol    uint8
	NofPrb    int
	Samples   []Samples
	ValidMask []bool // per-port: true if that port's bitmap was full
}

// UplinkRepository is the slot/symbol-indexed uplink resource-grid
// repository. Inserts are deferred through a task queue so the
// real-time receive path never blocks on the repository mutex directly
// for a brand-new slot/symbol-range allocation; writes to an already
// allocated symbol do take the mutex, bounded by a single port's bitmap
// update.
type UplinkRepository struct {
	mu      sync.Mutex
	rows    [][ofhtypes.NofSymbolsPerSlotNormalCP]uplinkSymbolEntry
	pending *executor.TaskQueue
}

// NewUplinkRepository builds a repository with the given number of slot
// rows (see cplane.CalculateRepositorySize for how to size this) and a
// pending-insert queue of the given capacity.
func NewUplinkRepository(repoSize, pendingQueueCapacity int) *UplinkRepository {
	return &UplinkRepository{
		rows:    make([][ofhtypes.NofSymbolsPerSlotNormalCP]uplinkSymbolEntry, repoSize),
		pending: executor.NewTaskQueue(pendingQueueCapacity),
	}
}

func (r *UplinkRepository) index(slot ofhtypes.SlotPoint) int {
	return slot.SystemSlot() % len(r.rows)
}

// Add enqueues the allocation of entries for every symbol in
// [startSymbol, startSymbol+nofSymbols) at slot. The allocation itself
// runs later, under ProcessPending, so the caller (typically the
// C-Plane install path or first U-Plane packet of a slot) is never
// blocked by contention with the symbol writer.
func (r *UplinkRepository) Add(slot ofhtypes.SlotPoint, startSymbol, nofSymbols uint8, nofPorts, nofPrb int) bool {
	return r.pending.TryPush(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		idx := r.index(slot)
		for s := startSymbol; s < startSymbol+nofSymbols; s++ {
			r.rows[idx][s] = newUplinkSymbolEntry(nofPorts, nofPrb)
		}
	})
}

// ProcessPending drains every queued Add call. Must be invoked
// regularly from the pipeline's symbol-paced step.
func (r *UplinkRepository) ProcessPending() int {
	return r.pending.Drain()
}

// WriteGrid writes iq into port's slice of the grid at slot/symbol,
// starting at resource element startRe.
func (r *UplinkRepository) WriteGrid(slot ofhtypes.SlotPoint, symbol uint8, port, startRe int, iq []complex64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(slot)
	r.rows[idx][symbol].writeRe(port, startRe, iq)
}

// TryPopComplete pops and clears the entry at slot/symbol if every
// port's bitmap is full, returning (entry, true); otherwise returns
// (CompletedSymbol{}, false) and leaves the entry untouched.
func (r *UplinkRepository) TryPopComplete(slot ofhtypes.SlotPoint, symbol uint8) (CompletedSymbol, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(slot)
	entry := &r.rows[idx][symbol]
	if !entry.complete() {
		return CompletedSymbol{}, false
	}
	out := completedFrom(slot, symbol, entry)
	r.rows[idx][symbol] = uplinkSymbolEntry{}
	return out, true
}

// Pop unconditionally pops whatever is at slot/symbol (valid or not),
// used by the closed-window handler to force-deliver an overdue,
// possibly partial grid.
func (r *UplinkRepository) Pop(slot ofhtypes.SlotPoint, symbol uint8) (CompletedSymbol, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(slot)
	entry := &r.rows[idx][symbol]
	if !entry.valid {
		return CompletedSymbol{}, false
	}
	out := completedFrom(slot, symbol, entry)
	r.rows[idx][symbol] = uplinkSymbolEntry{}
	return out, true
}

func completedFrom(slot ofhtypes.SlotPoint, symbol uint8, entry *uplinkSymbolEntry) CompletedSymbol {
	valid := make([]bool, len(entry.written))
	for i, b := range entry.written {
		valid[i] = b.all()
	}
	return CompletedSymbol{
		Slot:      slot,
		Symbol:    symbol,
		NofPrb:    entry.nofPrb,
		Samples:   entry.samples,
		ValidMask: valid,
	}
}

// Clear discards the entry at slot/symbol without returning it.
func (r *UplinkRepository) Clear(slot ofhtypes.SlotPoint, symbol uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(slot)
	r.rows[idx][symbol] = uplinkSymbolEntry{}
}
