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

import (
	"testing"

	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

// fakeDecompressor treats raw bytes as big-endian int16 I/Q pairs,
// scaled to [-1, 1). Good enough to exercise the section-framing logic
// without depending on a real BFP/block-scaling implementation.
type fakeDecompressor struct{}

func (fakeDecompressor) Decompress(raw []byte, params ofhtypes.CompressionParams, nofPrb uint16) ([]complex64, error) {
	samples := make([]complex64, 0, int(nofPrb)*ofhtypes.NofSubcarriersPerPrb)
	for i := 0; i+4 <= len(raw); i += 4 {
		re := int16(uint16(raw[i])<<8 | uint16(raw[i+1]))
		im := int16(uint16(raw[i+2])<<8 | uint16(raw[i+3]))
		samples = append(samples, complex(float32(re)/32768.0, float32(im)/32768.0))
	}
	return samples, nil
}

func TestDecodeUplaneSingleSection(t *testing.T) {
	slot := ofhtypes.NewSlotPoint(0, 100, 3, 0)
	common := EncodeUplaneCommonHeader(ofhtypes.DirectionUplink, ofhtypes.FilterStandardChannel, 0, slot, 5)

	params := ofhtypes.CompressionParams{Type: ofhtypes.CompressionNone, DataWidth: 16}
	nofPrb := uint16(2)
	iq := make([]byte, int(nofPrb)*ofhtypes.NofSubcarriersPerPrb*4)
	for i := range iq {
		iq[i] = byte(i + 1)
	}
	section := EncodeUplaneSection(7, false, true, 10, nofPrb, params, iq)

	message := append(append([]byte{}, common[:]...), section...)

	decoded, err := DecodeUplane(message, 0, ofhtypes.CyclicPrefixNormal, fakeDecompressor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Direction != ofhtypes.DirectionUplink {
		t.Errorf("direction = %v, want uplink", decoded.Direction)
	}
	if decoded.FilterIndex != ofhtypes.FilterStandardChannel {
		t.Errorf("filter = %v, want standard", decoded.FilterIndex)
	}
	if !decoded.Slot.Slot.Equal(slot) {
		t.Errorf("slot mismatch: %+v", decoded.Slot.Slot)
	}
	if decoded.Slot.Symbol != 5 {
		t.Errorf("symbol = %d, want 5", decoded.Slot.Symbol)
	}
	if len(decoded.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(decoded.Sections))
	}
	s := decoded.Sections[0]
	if s.SectionID != 7 || s.RbEveryOther || !s.SymInc || s.StartPrb != 10 || s.NofPrb != nofPrb {
		t.Errorf("unexpected section fields: %+v", s)
	}
	if len(s.Samples) != int(nofPrb)*ofhtypes.NofSubcarriersPerPrb {
		t.Errorf("got %d samples, want %d", len(s.Samples), int(nofPrb)*ofhtypes.NofSubcarriersPerPrb)
	}
}

func TestPeekFilterIndexAndSlotSymbolPoint(t *testing.T) {
	slot := ofhtypes.NewSlotPoint(1, 255, 9, 1)
	common := EncodeUplaneCommonHeader(ofhtypes.DirectionDownlink, ofhtypes.FilterUlPrachPreambleShort, 0, slot, 13)

	fi, err := PeekFilterIndex(common[:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fi != ofhtypes.FilterUlPrachPreambleShort {
		t.Errorf("filter = %v, want prach-short", fi)
	}

	ssp, err := PeekSlotSymbolPoint(common[:], 1, ofhtypes.CyclicPrefixNormal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ssp.Slot.Equal(slot) || ssp.Symbol != 13 {
		t.Errorf("unexpected slot symbol point: %+v", ssp)
	}
}

func TestDecodeUplaneTooShortFails(t *testing.T) {
	_, err := DecodeUplane([]byte{1, 2, 3}, 0, ofhtypes.CyclicPrefixNormal, fakeDecompressor{})
	if err != ErrUplaneDecodeFailure {
		t.Errorf("got %v, want ErrUplaneDecodeFailure", err)
	}
}
