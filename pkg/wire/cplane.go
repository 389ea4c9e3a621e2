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

const cplaneSectionFieldsSize = 8

// CplaneMessage is a decoded O-RAN Control-Plane section-type-1 message
// (the only section type the reception pipeline consumes; DL/idle
// section types are a DU-encode concern out of scope here).
type CplaneMessage struct {
	Direction    ofhtypes.Direction
	FilterIndex  ofhtypes.FilterIndex
	Slot         ofhtypes.SlotPoint
	StartSymbol  uint8
	SectionID    uint16
	RbEveryOther bool
	SymInc       bool
	Context      ofhtypes.UlCplaneContext
	ReMask       uint16
	Comp         ofhtypes.CompressionParams
}

// DecodeCplane decodes a 12-byte O-RAN Control-Plane section-type-1
// message: the common radio application header, the shared section-0/
// 1/3/5 fields, and a compression header.
func DecodeCplane(message []byte, numerology uint8) (CplaneMessage, error) {
	r := newReader(message)
	common, ok := decodeRadioAppHeaderCommon(r)
	if !ok {
		return CplaneMessage{}, ErrCplaneDecodeFailure
	}

	if r.remainingBytes() < cplaneSectionFieldsSize {
		return CplaneMessage{}, ErrCplaneDecodeFailure
	}
	hi, _ := r.u16()
	prbStartLow, _ := r.u8()
	nofPrb, _ := r.u8()
	reMask, _ := r.u16()
	nofSymbols, _ := r.u8()
	compByte, _ := r.u8()

	sectionID := hi >> 4
	rb := (hi>>3)&0x1 != 0
	symInc := (hi>>2)&0x1 != 0
	prbStartHigh := uint16(hi & 0x03)
	prbStart := prbStartHigh<<8 | uint16(prbStartLow)

	comp := ofhtypes.CompressionParamsFromHeaderByte(compByte)
	if err := comp.Validate(); err != nil {
		return CplaneMessage{}, ErrCplaneDecodeFailure
	}

	slot := slotPointFromHeader(common, numerology)
	cplCtx := ofhtypes.UlCplaneContext{
		FilterIndex: common.FilterIndex,
		StartSymbol: common.Symbol,
		NofSymbols:  nofSymbols,
		PrbStart:    prbStart,
		NofPrb:      uint16(nofPrb),
	}

	return CplaneMessage{
		Direction:    common.Direction,
		FilterIndex:  common.FilterIndex,
		Slot:         slot,
		StartSymbol:  common.Symbol,
		SectionID:    sectionID,
		RbEveryOther: rb,
		SymInc:       symInc,
		Context:      cplCtx,
		ReMask:       reMask & 0x0FFF,
		Comp:         comp,
	}, nil
}

// EncodeCplane builds the wire bytes for a C-Plane section-type-1
// message, used by the DU side to issue scheduling context and by
// tests to construct fixtures.
func EncodeCplane(msg CplaneMessage) []byte {
	out := make([]byte, 12)
	common := encodeRadioAppHeaderCommon(radioAppHeaderCommon{
		Direction:      msg.Direction,
		FilterIndex:    msg.FilterIndex,
		Sfn:            msg.Slot.Sfn,
		Subframe:       msg.Slot.Subframe,
		SlotOfSubframe: msg.Slot.Slot,
		Symbol:         msg.StartSymbol,
	})
	copy(out[0:4], common[:])

	hi := msg.SectionID<<4 | boolBit(msg.RbEveryOther)<<3 | boolBit(msg.SymInc)<<2 | (msg.Context.PrbStart>>8)&0x03
	out[4] = byte(hi >> 8)
	out[5] = byte(hi)
	out[6] = byte(msg.Context.PrbStart)
	out[7] = byte(msg.Context.NofPrb)
	out[8] = byte(msg.ReMask >> 8)
	out[9] = byte(msg.ReMask)
	out[10] = msg.Context.NofSymbols
	out[11] = msg.Comp.HeaderByte()
	return out
}
