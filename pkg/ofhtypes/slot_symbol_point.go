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

// SlotSymbolPoint is a SlotPoint plus a symbol index within the slot. It is
// the finest-grained point on the reception timeline: windows, ordering
// and OTA pacing are all expressed in slot-symbol distance.
type SlotSymbolPoint struct {
	Slot       SlotPoint
	Symbol     uint8
	NofSymbols uint8 // symbols per slot in effect (14 normal CP, 12 extended)
}

// NewSlotSymbolPoint builds a SlotSymbolPoint. nofSymbols must be the
// number of OFDM symbols per slot under the active cyclic prefix.
func NewSlotSymbolPoint(slot SlotPoint, symbol, nofSymbols uint8) SlotSymbolPoint {
	return SlotSymbolPoint{Slot: slot, Symbol: symbol, NofSymbols: nofSymbols}
}

// linearIndex returns the symbol's position in the slot-symbol group.
func (sp SlotSymbolPoint) linearIndex() int {
	return sp.Slot.linearIndex()*int(sp.NofSymbols) + int(sp.Symbol)
}

// period is the size of the slot-symbol group for sp's numerology and
// symbols-per-slot configuration.
func (sp SlotSymbolPoint) period() int {
	return sp.Slot.period() * int(sp.NofSymbols)
}

// DistanceSymbols returns the signed symbol distance from other to sp,
// wrapped to (-period/2, period/2]. Both points must share a numerology
// and symbols-per-slot configuration.
func (sp SlotSymbolPoint) DistanceSymbols(other SlotSymbolPoint) int {
	return signedWrapDistance(sp.linearIndex()-other.linearIndex(), sp.period())
}

// AddSymbols returns a new SlotSymbolPoint advanced by n symbols (n may be
// negative), wrapping through slot/subframe/SFN boundaries.
func (sp SlotSymbolPoint) AddSymbols(n int) SlotSymbolPoint {
	nofSymbols := int(sp.NofSymbols)
	total := int(sp.Symbol) + n
	slotDelta := total / nofSymbols
	symbol := total % nofSymbols
	if symbol < 0 {
		symbol += nofSymbols
		slotDelta--
	}
	return SlotSymbolPoint{
		Slot:       sp.Slot.AddSlots(slotDelta),
		Symbol:     uint8(symbol),
		NofSymbols: sp.NofSymbols,
	}
}

// Equal reports structural equality.
func (sp SlotSymbolPoint) Equal(other SlotSymbolPoint) bool {
	return sp.Slot.Equal(other.Slot) && sp.Symbol == other.Symbol
}
