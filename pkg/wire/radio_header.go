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

package wire

import "github.com/srsoss/ofh-core/pkg/ofhtypes"

// radioAppHeaderCommon is the 4-byte prefix shared by U-Plane and
// C-Plane messages: [direction(1b)|payload_version(3b)|filter_index(4b)]
// [frame] [subframe(4b)|slot_msb(4b)] [slot_lsb(2b)|symbol(6b)].
type radioAppHeaderCommon struct {
	Direction      ofhtypes.Direction
	PayloadVersion uint8
	FilterIndex    ofhtypes.FilterIndex
	Sfn            uint16 // wire SFN, already masked to [0, ofhtypes.SfnWireMax)
	Subframe       uint8
	SlotOfSubframe uint8
	Symbol         uint8 // OTA symbol for U-Plane, start_symbol for C-Plane
}

func decodeRadioAppHeaderCommon(r *reader) (radioAppHeaderCommon, bool) {
	b0, ok := r.u8()
	if !ok {
		return radioAppHeaderCommon{}, false
	}
	frame, ok := r.u8()
	if !ok {
		return radioAppHeaderCommon{}, false
	}
	b2, ok := r.u8()
	if !ok {
		return radioAppHeaderCommon{}, false
	}
	b3, ok := r.u8()
	if !ok {
		return radioAppHeaderCommon{}, false
	}

	slotMsb := b2 & 0x0F
	slotLsb := (b3 >> 6) & 0x03

	return radioAppHeaderCommon{
		Direction:      ofhtypes.Direction(b0 >> 7),
		PayloadVersion: (b0 >> 4) & 0x07,
		FilterIndex:    ofhtypes.FilterIndex(b0 & 0x0F),
		Sfn:            uint16(frame),
		Subframe:       b2 >> 4,
		SlotOfSubframe: slotMsb<<2 | slotLsb,
		Symbol:         b3 & 0x3F,
	}, true
}

func encodeRadioAppHeaderCommon(h radioAppHeaderCommon) [4]byte {
	var out [4]byte
	out[0] = byte(h.Direction)<<7 | (h.PayloadVersion&0x07)<<4 | byte(h.FilterIndex)&0x0F
	out[1] = byte(h.Sfn)
	slotMsb := (h.SlotOfSubframe >> 2) & 0x0F
	slotLsb := h.SlotOfSubframe & 0x03
	out[2] = h.Subframe<<4 | slotMsb
	out[3] = slotLsb<<6 | h.Symbol&0x3F
	return out
}

// slotPointFromHeader reconstructs a full SlotPoint from the wire SFN
// and subframe/slot fields, given the numerology (needed to know how
// many slots a subframe has).
func slotPointFromHeader(h radioAppHeaderCommon, numerology uint8) ofhtypes.SlotPoint {
	return ofhtypes.NewSlotPoint(numerology, h.Sfn, h.Subframe, h.SlotOfSubframe)
}
