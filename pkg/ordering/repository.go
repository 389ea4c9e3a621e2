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

// Package ordering tracks, per slot, which uplink grid symbols have been
// notified to upper layers, and reorders out-of-sequence symbol arrivals
// into the longest in-order run available so a caller can notify symbols
// as soon as every earlier one in the slot has arrived.
//
// Each slot's state lives in a single atomic word: bits 0-13 mark which
// symbols have arrived, bit 14 is the extended-CP flag, bit 15 marks the
// slot as in use, and bits 16-29 mark which of those arrivals were valid
// (as opposed to a dropped/malformed packet still occupying its symbol
// slot). A single fetch-or both records the new symbol and returns the
// previous state needed to decide what is now notifiable.
package ordering

import (
	"sync/atomic"

	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

const (
	validSymbolBitmaskStartBit = 16
	extendedCPBit              = 14
	usedSlotBit                = 15

	usedSlotBitmap   = uint32(1) << usedSlotBit
	extendedCPBitmap = uint32(1) << extendedCPBit

	allSymbolsNotifiedCPNormal   = uint32(1)<<ofhtypes.NofSymbolsPerSlotNormalCP - 1
	allSymbolsNotifiedCPExtended = uint32(1)<<ofhtypes.NofSymbolsPerSlotExtendedCP - 1
)

func isSlotUsed(value uint32) bool {
	return value&usedSlotBitmap != 0
}

func areAllSymbolsNotified(value uint32) bool {
	if value&extendedCPBitmap != 0 {
		return value&allSymbolsNotifiedCPExtended == allSymbolsNotifiedCPExtended
	}
	return value&allSymbolsNotifiedCPNormal == allSymbolsNotifiedCPNormal
}

func isAnyPreviousSymbolMissed(value uint32, symbol uint8) bool {
	for i := uint8(0); i < symbol; i++ {
		if (value>>i)&1 == 0 {
			return true
		}
	}
	return false
}

func getNofSymbols(value uint32) uint8 {
	if value&extendedCPBitmap != 0 {
		return ofhtypes.NofSymbolsPerSlotExtendedCP
	}
	return ofhtypes.NofSymbolsPerSlotNormalCP
}

// getNofSymbolsToNotify returns how many symbols starting at symbol are
// now notifiable. value is the slot word as it was before the new
// symbol's bit was set; the symbol's own bit is never inspected.
func getNofSymbolsToNotify(value uint32, symbol uint8) uint8 {
	nofSymbols := getNofSymbols(value)
	value >>= symbol

	for i := uint8(1); i < nofSymbols-symbol; i++ {
		if (value>>i)&1 == 0 {
			return i
		}
	}
	return nofSymbols - symbol
}

// Results describes the contiguous run of symbols now safe to notify, and
// which of them were valid receptions.
type Results struct {
	FirstSymbol  uint8
	NofSymbols   uint8
	ValidSymbols [ofhtypes.NofSymbolsPerSlotNormalCP]bool
}

// Repository is the slot-indexed notified-grid-symbol tracker.
type Repository struct {
	rows []atomic.Uint32
}

// NewRepository builds a repository with the given number of slot rows.
func NewRepository(size int) *Repository {
	return &Repository{rows: make([]atomic.Uint32, size)}
}

func (r *Repository) entry(slot ofhtypes.SlotPoint) *atomic.Uint32 {
	return &r.rows[slot.SystemSlot()%len(r.rows)]
}

func (r *Repository) clearSlot(slot ofhtypes.SlotPoint) {
	r.entry(slot).Store(0)
}

// Add marks slot as in use, with symbols before startSymbol considered
// already notified (the usual case is startSymbol 0, covering the whole
// grid; a nonzero value is used when only part of the slot is scheduled).
func (r *Repository) Add(slot ofhtypes.SlotPoint, startSymbol uint8, cp ofhtypes.CyclicPrefix) {
	value := usedSlotBitmap
	if cp == ofhtypes.CyclicPrefixExtended {
		value |= extendedCPBitmap
	}
	value |= uint32(1)<<startSymbol - 1
	r.entry(slot).Store(value)
}

// UpdateRxSymbolAndComputeSymbolsToNotify records that symbol arrived (the
// second return is false if the slot was not known via Add, or an earlier
// symbol in the slot is still outstanding) and returns the run of symbols
// now safe to notify, in arrival order, trimmed to the caller's contiguous
// prefix.
func (r *Repository) UpdateRxSymbolAndComputeSymbolsToNotify(slot ofhtypes.SlotPoint, symbol uint8, isValid bool) (Results, bool) {
	var bitmask uint32
	bitmask |= uint32(1) << symbol
	if isValid {
		bitmask |= uint32(1) << (symbol + validSymbolBitmaskStartBit)
	}

	value := r.entry(slot).Or(bitmask)

	if !isSlotUsed(value) {
		return Results{}, false
	}
	if isAnyPreviousSymbolMissed(value, symbol) {
		return Results{}, false
	}

	nofSymbolsToNotify := getNofSymbolsToNotify(value, symbol)
	value |= bitmask

	if areAllSymbolsNotified(value) {
		r.clearSlot(slot)
	}

	var out Results
	out.FirstSymbol = symbol
	out.NofSymbols = nofSymbolsToNotify
	validBits := value >> validSymbolBitmaskStartBit
	for i := range out.ValidSymbols {
		out.ValidSymbols[i] = (validBits>>uint(i))&1 != 0
	}

	return out, true
}
