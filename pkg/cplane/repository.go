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

// Package cplane holds the uplink Control-Plane scheduling context
// repository: a slot- and eAxC-indexed table of the resource-allocation
// context a C-Plane message installs, consulted lock-free from the
// U-Plane reception path.
package cplane

import (
	"sync/atomic"

	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

// CalculateRepositorySize returns the smallest value >= minimumSize that
// evenly divides the total number of slots in a full SFN period for the
// given numerology. Sizing the repository this way guarantees the
// repeating (slot mod size) pattern realigns cleanly at every SFN wrap,
// instead of leaving a short cycle at the boundary.
func CalculateRepositorySize(numerology uint8, minimumSize int) int {
	totalSlots := ofhtypes.SfnWireMax * ofhtypes.SlotsPerSubframe(numerology) * ofhtypes.NofSubframes
	size := minimumSize
	for totalSlots%size != 0 {
		size++
	}
	return size
}

func repositoryIndex(slot ofhtypes.SlotPoint, repoSize int) int {
	return slot.SystemSlot() % repoSize
}

// Repository is the uplink Control-Plane scheduling context repository.
// Each (slot, eAxC) cell is a single atomic 64-bit word: a store(release)
// from the C-Plane install path and a load(relaxed) from the U-Plane
// validation path never block each other.
type Repository struct {
	rows [][ofhtypes.MaxSupportedEaxcIDValue]atomic.Uint64
}

// NewRepository builds a repository sized by CalculateRepositorySize for
// the given numerology and minimum size (the minimum number of distinct
// slots the repository must be able to hold concurrently, e.g. derived
// from the RU processing delay in slots).
func NewRepository(numerology uint8, minimumSize int) *Repository {
	size := CalculateRepositorySize(numerology, minimumSize)
	return &Repository{rows: make([][ofhtypes.MaxSupportedEaxcIDValue]atomic.Uint64, size)}
}

// Add installs new_context at (slot, eaxc), overwriting whatever was
// there before.
func (r *Repository) Add(slot ofhtypes.SlotPoint, eaxc ofhtypes.Eaxc, newContext ofhtypes.UlCplaneContext) {
	idx := repositoryIndex(slot, len(r.rows))
	r.rows[idx][eaxc].Store(newContext.Pack())
}

// Get returns the context installed at (slot, eaxc), or the zero value
// if none was ever installed (or it was since overwritten by a later
// slot aliasing onto the same repository row).
func (r *Repository) Get(slot ofhtypes.SlotPoint, eaxc ofhtypes.Eaxc) ofhtypes.UlCplaneContext {
	idx := repositoryIndex(slot, len(r.rows))
	return ofhtypes.UnpackUlCplaneContext(r.rows[idx][eaxc].Load())
}

// Size returns the number of slot rows the repository holds.
func (r *Repository) Size() int {
	return len(r.rows)
}
