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

const uplaneSectionHeaderSize = 6 // section_id/rb/symInc/prb_start_hi(2) + prb_start_lo(1) + nof_prb(1) + comp_hdr(1) + reserved(1)

// IqDecompressor turns a section's raw compressed IQ bytes into complex
// samples. The decompression algorithms themselves (BFP, block-scaling,
// mu-law, modulation and their selective variants) are pluggable and
// live outside this package.
type IqDecompressor interface {
	Decompress(raw []byte, params ofhtypes.CompressionParams, nofPrb uint16) ([]complex64, error)
}

// UplaneSection is one decoded U-Plane resource-block section.
type UplaneSection struct {
	SectionID    uint16
	RbEveryOther bool
	SymInc       bool
	StartPrb     uint16
	NofPrb       uint16
	Samples      []complex64
}

// UplaneMessageDecoded is a fully decoded O-RAN U-Plane message.
type UplaneMessageDecoded struct {
	Direction   ofhtypes.Direction
	FilterIndex ofhtypes.FilterIndex
	Slot        ofhtypes.SlotSymbolPoint
	Sections    []UplaneSection
}

// PeekFilterIndex reads the filter index out of the low 4 bits of the
// first byte without touching any other part of the message.
func PeekFilterIndex(message []byte) (ofhtypes.FilterIndex, error) {
	if len(message) < 1 {
		return 0, ErrUplaneDecodeFailure
	}
	return ofhtypes.FilterIndex(message[0] & 0x0F), nil
}

// PeekSlotSymbolPoint reads the frame/subframe/slot/symbol tri-octet
// without decoding sections or IQ data.
func PeekSlotSymbolPoint(message []byte, numerology uint8, cp ofhtypes.CyclicPrefix) (ofhtypes.SlotSymbolPoint, error) {
	r := newReader(message)
	common, ok := decodeRadioAppHeaderCommon(r)
	if !ok {
		return ofhtypes.SlotSymbolPoint{}, ErrUplaneDecodeFailure
	}
	slot := slotPointFromHeader(common, numerology)
	return ofhtypes.NewSlotSymbolPoint(slot, common.Symbol, cp.NofSymbolsPerSlot()), nil
}

// DecodeUplane decodes a full O-RAN U-Plane message: the common radio
// application header followed by one or more resource-block sections,
// each with its own compression header and IQ payload. decompressor is
// consulted once per section.
func DecodeUplane(message []byte, numerology uint8, cp ofhtypes.CyclicPrefix, decompressor IqDecompressor) (UplaneMessageDecoded, error) {
	r := newReader(message)
	common, ok := decodeRadioAppHeaderCommon(r)
	if !ok {
		return UplaneMessageDecoded{}, ErrUplaneDecodeFailure
	}

	out := UplaneMessageDecoded{
		Direction:   common.Direction,
		FilterIndex: common.FilterIndex,
		Slot:        ofhtypes.NewSlotSymbolPoint(slotPointFromHeader(common, numerology), common.Symbol, cp.NofSymbolsPerSlot()),
	}

	for r.remainingBytes() > 0 {
		section, err := decodeUplaneSection(r, decompressor)
		if err != nil {
			return UplaneMessageDecoded{}, err
		}
		out.Sections = append(out.Sections, section)
	}
	if len(out.Sections) == 0 {
		return UplaneMessageDecoded{}, ErrUplaneDecodeFailure
	}
	return out, nil
}

func decodeUplaneSection(r *reader, decompressor IqDecompressor) (UplaneSection, error) {
	if r.remainingBytes() < uplaneSectionHeaderSize {
		return UplaneSection{}, ErrUplaneDecodeFailure
	}
	hi, _ := r.u16()
	prbStartLow, _ := r.u8()
	nofPrb, _ := r.u8()
	compByte, _ := r.u8()
	r.skip(1) // reserved byte

	sectionID := hi >> 4
	rb := (hi>>3)&0x1 != 0
	symInc := (hi>>2)&0x1 != 0
	prbStartHigh := uint16(hi & 0x03)
	startPrb := prbStartHigh<<8 | uint16(prbStartLow)

	params := ofhtypes.CompressionParamsFromHeaderByte(compByte)
	if err := params.Validate(); err != nil {
		return UplaneSection{}, ErrUplaneDecodeFailure
	}

	rawLen := int(nofPrb) * params.BytesPerPrb()
	raw, ok := r.take(rawLen)
	if !ok {
		return UplaneSection{}, ErrUplaneDecodeFailure
	}

	samples, err := decompressor.Decompress(raw, params, uint16(nofPrb))
	if err != nil {
		return UplaneSection{}, ErrUplaneDecodeFailure
	}

	return UplaneSection{
		SectionID:    sectionID,
		RbEveryOther: rb,
		SymInc:       symInc,
		StartPrb:     startPrb,
		NofPrb:       uint16(nofPrb),
		Samples:      samples,
	}, nil
}

// EncodeUplaneSection builds the wire bytes for a single section,
// including its compression header and already-compressed IQ payload.
// Used by the RU emulator to assemble canned bursts.
func EncodeUplaneSection(sectionID uint16, rb, symInc bool, startPrb, nofPrb uint16, params ofhtypes.CompressionParams, compressedIQ []byte) []byte {
	out := make([]byte, uplaneSectionHeaderSize+len(compressedIQ))
	hi := sectionID<<4 | boolBit(rb)<<3 | boolBit(symInc)<<2 | (startPrb>>8)&0x03
	out[0] = byte(hi >> 8)
	out[1] = byte(hi)
	out[2] = byte(startPrb)
	out[3] = byte(nofPrb)
	out[4] = params.HeaderByte()
	out[5] = 0
	copy(out[6:], compressedIQ)
	return out
}

// EncodeUplaneCommonHeader builds the 4-byte radio application header
// shared by every section of a message.
func EncodeUplaneCommonHeader(direction ofhtypes.Direction, filterIndex ofhtypes.FilterIndex, payloadVersion uint8, slot ofhtypes.SlotPoint, symbol uint8) [4]byte {
	return encodeRadioAppHeaderCommon(radioAppHeaderCommon{
		Direction:      direction,
		PayloadVersion: payloadVersion,
		FilterIndex:    filterIndex,
		Sfn:            slot.Sfn,
		Subframe:       slot.Subframe,
		SlotOfSubframe: slot.Slot,
		Symbol:         symbol,
	})
}

func boolBit(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
