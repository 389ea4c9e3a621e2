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

package grid

import (
	"sync"

	"github.com/srsoss/ofh-core/pkg/executor"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

// PRACH preamble sequence lengths, in resource elements.
const (
	LongSequenceLength  = 839
	ShortSequenceLength = 139
)

// PrachOccasion describes the PRACH buffer an uplink PRACH data flow
// writes into for one slot: format, port count, and the start symbol
// carried by C-Plane.
type PrachOccasion struct {
	Long              bool
	SequenceLength    int
	NofSymbols        uint8
	StartSymbol       uint8
	NofPorts          int
	IgnoreStartSymbol bool // long-format-only tolerance for RUs that always send symbolId=0
}

type prachEntry struct {
	valid    bool
	occasion PrachOccasion
	written  [][]bitset // [symbol][port]
	samples  [][]Samples
}

func newPrachEntry(occ PrachOccasion) prachEntry {
	e := prachEntry{valid: true, occasion: occ}
	e.written = make([][]bitset, occ.NofSymbols)
	e.samples = make([][]Samples, occ.NofSymbols)
	for s := range e.written {
		e.written[s] = make([]bitset, occ.NofPorts)
		e.samples[s] = make([]Samples, occ.NofPorts)
		for p := 0; p < occ.NofPorts; p++ {
			e.written[s][p] = newBitset(occ.SequenceLength)
			e.samples[s][p] = make(Samples, occ.SequenceLength)
		}
	}
	return e
}

// localSymbolIndex maps a wire symbol_id onto the preamble-local symbol
// index. The tolerance for a wire symbol_id smaller than start_symbol
// (some RUs always send symbolId=0 regardless of C-Plane) only applies
// when both the occasion is long format and IgnoreStartSymbol is set;
// every other case is a strict subtraction.
func (e *prachEntry) localSymbolIndex(symbol uint8) (int, bool) {
	var local int
	if e.occasion.Long && e.occasion.IgnoreStartSymbol {
		if symbol >= e.occasion.StartSymbol {
			local = int(symbol) - int(e.occasion.StartSymbol)
		} else {
			local = int(symbol)
		}
	} else {
		if symbol < e.occasion.StartSymbol {
			return 0, false
		}
		local = int(symbol) - int(e.occasion.StartSymbol)
	}
	if local < 0 || local >= int(e.occasion.NofSymbols) {
		return 0, false
	}
	return local, true
}

func (e *prachEntry) writeRe(symbol uint8, port, reStart int, iq []complex64) {
	local, ok := e.localSymbolIndex(symbol)
	if !ok || port < 0 || port >= e.occasion.NofPorts {
		return
	}
	copy(e.samples[local][port][reStart:], iq)
	e.written[local][port].fill(reStart, reStart+len(iq))
}

func (e *prachEntry) complete() bool {
	if !e.valid {
		return false
	}
	for _, symbolPorts := range e.written {
		for _, b := range symbolPorts {
			if !b.all() {
				return false
			}
		}
	}
	return true
}

// CompletedPrach is a PRACH buffer popped from the repository.
type CompletedPrach struct {
	Slot     ofhtypes.SlotPoint
	Occasion PrachOccasion
	Samples  [][]Samples // [symbol][port]
}

// PrachRepository holds one PrachContext per slot: mutex-guarded, with
// deferred inserts drained the same way as UplinkRepository.
type PrachRepository struct {
	mu      sync.Mutex
	rows    []prachEntry
	pending *executor.TaskQueue
}

// NewPrachRepository builds a repository with repoSize slot rows.
func NewPrachRepository(repoSize, pendingQueueCapacity int) *PrachRepository {
	return &PrachRepository{
		rows:    make([]prachEntry, repoSize),
		pending: executor.NewTaskQueue(pendingQueueCapacity),
	}
}

func (r *PrachRepository) index(slot ofhtypes.SlotPoint) int {
	return slot.SystemSlot() % len(r.rows)
}

// Add enqueues the allocation of a PRACH occasion at slot.
func (r *PrachRepository) Add(slot ofhtypes.SlotPoint, occ PrachOccasion) bool {
	return r.pending.TryPush(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows[r.index(slot)] = newPrachEntry(occ)
	})
}

// ProcessPending drains every queued Add call.
func (r *PrachRepository) ProcessPending() int {
	return r.pending.Drain()
}

// WriteIQ writes iq into the PRACH buffer at slot, for the given wire
// symbol_id and port, applying the occasion's ignore-start-symbol and
// format-specific local-index rules.
func (r *PrachRepository) WriteIQ(slot ofhtypes.SlotPoint, symbol uint8, port, reStart int, iq []complex64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[r.index(slot)].writeRe(symbol, port, reStart, iq)
}

// TryPopComplete pops the PRACH buffer at slot if every symbol's every
// port bitmap is full.
func (r *PrachRepository) TryPopComplete(slot ofhtypes.SlotPoint) (CompletedPrach, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(slot)
	entry := &r.rows[idx]
	if !entry.complete() {
		return CompletedPrach{}, false
	}
	out := CompletedPrach{Slot: slot, Occasion: entry.occasion, Samples: entry.samples}
	r.rows[idx] = prachEntry{}
	return out, true
}

// Pop unconditionally pops whatever PRACH buffer is at slot, used by
// the closed-window handler to force-deliver an overdue buffer.
func (r *PrachRepository) Pop(slot ofhtypes.SlotPoint) (CompletedPrach, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(slot)
	entry := &r.rows[idx]
	if !entry.valid {
		return CompletedPrach{}, false
	}
	out := CompletedPrach{Slot: slot, Occasion: entry.occasion, Samples: entry.samples}
	r.rows[idx] = prachEntry{}
	return out, true
}

// Clear discards the entry at slot without returning it.
func (r *PrachRepository) Clear(slot ofhtypes.SlotPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[r.index(slot)] = prachEntry{}
}
