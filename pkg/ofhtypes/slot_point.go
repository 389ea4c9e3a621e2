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

// SlotPoint is a point on the finite cyclic group formed by
// (numerology, SFN, subframe, slot). SFN is tracked here modulo SfnWireMax,
// matching the wire representation; arithmetic that needs a wider SFN
// space is a concern of the caller.
type SlotPoint struct {
	Numerology uint8
	Sfn        uint16 // 0..SfnWireMax-1
	Subframe   uint8  // 0..NofSubframes-1
	Slot       uint8  // 0..SlotsPerSubframe(Numerology)-1
}

// NewSlotPoint builds a SlotPoint, wrapping sfn into [0, SfnWireMax).
func NewSlotPoint(numerology uint8, sfn uint16, subframe, slot uint8) SlotPoint {
	return SlotPoint{
		Numerology: numerology,
		Sfn:        sfn % SfnWireMax,
		Subframe:   subframe,
		Slot:       slot,
	}
}

// period returns the total number of distinct slot points in the finite
// group for this slot point's numerology.
func (sp SlotPoint) period() int {
	return SfnWireMax * NofSubframes * SlotsPerSubframe(sp.Numerology)
}

// linearIndex maps the slot point onto [0, period) in ascending
// (sfn, subframe, slot) order.
func (sp SlotPoint) linearIndex() int {
	slotsPerSf := SlotsPerSubframe(sp.Numerology)
	return int(sp.Sfn)*NofSubframes*slotsPerSf + int(sp.Subframe)*slotsPerSf + int(sp.Slot)
}

// SystemSlot is the linear slot index within the numerology's period,
// used to index slot-keyed repositories.
func (sp SlotPoint) SystemSlot() int {
	return sp.linearIndex()
}

// Equal reports structural equality.
func (sp SlotPoint) Equal(other SlotPoint) bool {
	return sp.Numerology == other.Numerology && sp.Sfn == other.Sfn &&
		sp.Subframe == other.Subframe && sp.Slot == other.Slot
}

// DistanceSlots returns the signed distance in slots from other to sp,
// wrapped to (-period/2, period/2]. Both points must share a numerology.
func (sp SlotPoint) DistanceSlots(other SlotPoint) int {
	return signedWrapDistance(sp.linearIndex()-other.linearIndex(), sp.period())
}

// AddSlots returns a new SlotPoint advanced by n slots (n may be negative),
// wrapping through SFN/subframe/slot boundaries.
func (sp SlotPoint) AddSlots(n int) SlotPoint {
	slotsPerSf := SlotsPerSubframe(sp.Numerology)
	period := sp.period()
	idx := sp.linearIndex() + n
	idx = ((idx % period) + period) % period

	sfn := idx / (NofSubframes * slotsPerSf)
	rem := idx % (NofSubframes * slotsPerSf)
	subframe := rem / slotsPerSf
	slot := rem % slotsPerSf

	return SlotPoint{
		Numerology: sp.Numerology,
		Sfn:        uint16(sfn),
		Subframe:   uint8(subframe),
		Slot:       uint8(slot),
	}
}

// signedWrapDistance wraps value into the group of the given period,
// returning the representative in (-period/2, period/2].
func signedWrapDistance(value, period int) int {
	d := value % period
	if d < 0 {
		d += period
	}
	half := period / 2
	if d > half {
		d -= period
	}
	return d
}
