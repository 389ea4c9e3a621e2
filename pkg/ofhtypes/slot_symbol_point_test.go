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

package ofhtypes

import "testing"

func TestSlotSymbolPointDistanceAcrossSfnWrapIsOnTime(t *testing.T) {
	// A message in SFN 255 subframe 9 slot 0 (last slot, numerology 0, 1 slot/subframe)
	// and OTA in SFN 0 slot 0 must not look "late" or "early" just because
	// of the SFN wrap: the symbol distance should be small.
	ota := NewSlotSymbolPoint(NewSlotPoint(0, 0, 0, 0), 0, 14)
	msg := NewSlotSymbolPoint(NewSlotPoint(0, 255, 9, 0), 13, 14)

	d := ota.DistanceSymbols(msg)
	if d != 1 {
		t.Errorf("expected distance 1 symbol across sfn wrap, got %d", d)
	}
}

func TestSlotSymbolPointAddSymbolsCarriesIntoNextSlot(t *testing.T) {
	sp := NewSlotSymbolPoint(NewSlotPoint(1, 0, 0, 0), 13, 14)
	next := sp.AddSymbols(1)

	want := NewSlotSymbolPoint(NewSlotPoint(1, 0, 0, 1), 0, 14)
	if !next.Equal(want) {
		t.Errorf("AddSymbols(1) = %+v, want %+v", next, want)
	}
}

func TestSlotSymbolPointAddSymbolsNegativeBorrowsFromPreviousSlot(t *testing.T) {
	sp := NewSlotSymbolPoint(NewSlotPoint(1, 0, 0, 1), 0, 14)
	prev := sp.AddSymbols(-1)

	want := NewSlotSymbolPoint(NewSlotPoint(1, 0, 0, 0), 13, 14)
	if !prev.Equal(want) {
		t.Errorf("AddSymbols(-1) = %+v, want %+v", prev, want)
	}
}
