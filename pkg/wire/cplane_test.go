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

func TestEncodeDecodeCplaneRoundtrip(t *testing.T) {
	slot := ofhtypes.NewSlotPoint(0, 42, 5, 0)
	msg := CplaneMessage{
		Direction:    ofhtypes.DirectionUplink,
		FilterIndex:  ofhtypes.FilterStandardChannel,
		Slot:         slot,
		StartSymbol:  2,
		SectionID:    99,
		RbEveryOther: false,
		SymInc:       false,
		Context: ofhtypes.UlCplaneContext{
			FilterIndex: ofhtypes.FilterStandardChannel,
			StartSymbol: 2,
			NofSymbols:  10,
			PrbStart:    20,
			NofPrb:      30,
		},
		ReMask: 0x0FFF,
		Comp:   ofhtypes.CompressionParams{Type: ofhtypes.CompressionBlockFloatingPoint, DataWidth: 9},
	}

	wire := EncodeCplane(msg)
	if len(wire) != 12 {
		t.Fatalf("encoded length = %d, want 12", len(wire))
	}

	got, err := DecodeCplane(wire, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Direction != msg.Direction || got.FilterIndex != msg.FilterIndex {
		t.Errorf("header mismatch: %+v", got)
	}
	if !got.Slot.Equal(slot) {
		t.Errorf("slot mismatch: %+v", got.Slot)
	}
	if got.StartSymbol != msg.StartSymbol {
		t.Errorf("start_symbol = %d, want %d", got.StartSymbol, msg.StartSymbol)
	}
	if got.SectionID != msg.SectionID {
		t.Errorf("section_id = %d, want %d", got.SectionID, msg.SectionID)
	}
	if got.Context != msg.Context {
		t.Errorf("context mismatch: got %+v, want %+v", got.Context, msg.Context)
	}
	if got.ReMask != msg.ReMask {
		t.Errorf("re_mask = %#x, want %#x", got.ReMask, msg.ReMask)
	}
	if got.Comp != msg.Comp {
		t.Errorf("comp params mismatch: got %+v, want %+v", got.Comp, msg.Comp)
	}
}

func TestDecodeCplaneTooShortFails(t *testing.T) {
	_, err := DecodeCplane([]byte{1, 2, 3, 4, 5}, 0)
	if err != ErrCplaneDecodeFailure {
		t.Errorf("got %v, want ErrCplaneDecodeFailure", err)
	}
}
