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

package ruemu

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/srsoss/ofh-core/pkg/config"
	"github.com/srsoss/ofh-core/pkg/netio"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/wire"
	"github.com/srsoss/ofh-core/pkg/window"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

var testVlan = VlanFilter{
	SrcMAC:  wire.MacAddress{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
	DstMAC:  wire.MacAddress{0x80, 0x61, 0x5f, 0x0d, 0xdf, 0xaa},
	EthType: wire.EtherTypeOranFh,
}

type fakeFrameSender struct {
	bursts [][][]byte
	err    error
}

func (f *fakeFrameSender) Send(frames [][]byte) error {
	f.bursts = append(f.bursts, frames)
	return f.err
}

func buildControlPlaneFrame(slot ofhtypes.SlotPoint, eaxc ofhtypes.Eaxc, seqID uint16, filter ofhtypes.FilterIndex,
	startSymbol uint8, nofSymbols uint8, startPrb, nofPrb uint16, compHeader byte) []byte {
	msg := wire.CplaneMessage{
		Direction:   ofhtypes.DirectionUplink,
		FilterIndex: filter,
		Slot:        slot,
		StartSymbol: startSymbol,
		Context: ofhtypes.UlCplaneContext{
			FilterIndex: filter,
			StartSymbol: startSymbol,
			NofSymbols:  nofSymbols,
			PrbStart:    startPrb,
			NofPrb:      nofPrb,
		},
		Comp: ofhtypes.CompressionParamsFromHeaderByte(compHeader),
	}
	cplane := wire.EncodeCplane(msg)
	ecpri := wire.EncodeEcpri(wire.MsgTypeRtControlData, uint16(eaxc), seqID, cplane)
	vlanParams := wire.VlanFrameParams{SrcMAC: testVlan.SrcMAC, DstMAC: testVlan.DstMAC, EthType: testVlan.EthType}
	return wire.EncodeVlanFrame(vlanParams, ecpri)
}

func newTestEmulator(sender *fakeFrameSender) *Emulator {
	cfg := Config{
		Sector:           0,
		Vlan:             testVlan,
		Numerology:       1,
		Cp:               ofhtypes.CyclicPrefixNormal,
		UlEaxc:           ofhtypes.EaxcList{4},
		DlEaxc:           ofhtypes.EaxcList{0},
		PrachEaxc:        ofhtypes.EaxcList{6},
		PrachFormat:      config.PrachFormatLong0,
		CompressionUL:    ofhtypes.CompressionParams{Type: ofhtypes.CompressionNone, DataWidth: 16},
		CompressionPrach: ofhtypes.CompressionParams{Type: ofhtypes.CompressionNone, DataWidth: 16},
	}
	return New(cfg, window.TimingParameters{SymStart: -100, SymEnd: 100}, sender, testLog())
}

func TestOnNewFrameUlGrantRepliesWithOneBurstPerSymbol(t *testing.T) {
	sender := &fakeFrameSender{}
	e := newTestEmulator(sender)

	slot := ofhtypes.NewSlotPoint(1, 0, 0, 1)
	frame := buildControlPlaneFrame(slot, 4, 0x0100, ofhtypes.FilterStandardChannel, 2, 3, 0, 10, 0x00)
	e.OnNewFrame(netio.SliceRxBuffer(frame))

	if len(sender.bursts) != 1 {
		t.Fatalf("expected exactly one Send call, got %d", len(sender.bursts))
	}
	if len(sender.bursts[0]) != 3 {
		t.Fatalf("expected 3 frames (one per granted symbol), got %d", len(sender.bursts[0]))
	}
	if m := e.CollectMetrics(); m.TxTotal != 3 || m.RxTotal != 1 || m.Corrupt != 0 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestOnNewFrameDropsOnVlanMismatch(t *testing.T) {
	sender := &fakeFrameSender{}
	e := newTestEmulator(sender)

	slot := ofhtypes.NewSlotPoint(1, 0, 0, 1)
	frame := buildControlPlaneFrame(slot, 4, 0x0100, ofhtypes.FilterStandardChannel, 2, 3, 0, 10, 0x00)
	frame[0] ^= 0xff

	e.OnNewFrame(netio.SliceRxBuffer(frame))

	if len(sender.bursts) != 0 {
		t.Fatal("a frame with a mismatched VLAN header must never generate a reply")
	}
	if e.CollectMetrics().Dropped != 1 {
		t.Fatalf("dropped counter = %d, want 1", e.CollectMetrics().Dropped)
	}
}

func TestOnNewFrameRejectsUnconfiguredEaxc(t *testing.T) {
	sender := &fakeFrameSender{}
	e := newTestEmulator(sender)

	slot := ofhtypes.NewSlotPoint(1, 0, 0, 1)
	frame := buildControlPlaneFrame(slot, 9, 0x0100, ofhtypes.FilterStandardChannel, 2, 3, 0, 10, 0x00)
	e.OnNewFrame(netio.SliceRxBuffer(frame))

	if len(sender.bursts) != 0 {
		t.Fatal("an unconfigured eAxC must never generate a reply")
	}
	if e.CollectMetrics().Corrupt != 1 {
		t.Fatalf("corrupt counter = %d, want 1", e.CollectMetrics().Corrupt)
	}
}

func TestOnNewFramePrachGrantUsesConfiguredFormatPrbWidth(t *testing.T) {
	sender := &fakeFrameSender{}
	e := newTestEmulator(sender)

	slot := ofhtypes.NewSlotPoint(1, 0, 0, 1)
	frame := buildControlPlaneFrame(slot, 6, 0x0100, ofhtypes.FilterUlPrachPreamble1p25kHz, 0, 1, 0, prachLongFormatNofPrb, 0x00)
	e.OnNewFrame(netio.SliceRxBuffer(frame))

	if len(sender.bursts) != 1 || len(sender.bursts[0]) != 1 {
		t.Fatalf("expected a single-symbol PRACH reply, got bursts=%+v", sender.bursts)
	}
}

func TestOnNewFrameRejectsPrachWithWrongFilterForConfiguredFormat(t *testing.T) {
	sender := &fakeFrameSender{}
	e := newTestEmulator(sender)

	slot := ofhtypes.NewSlotPoint(1, 0, 0, 1)
	// Configured format is long (0x00 -> FilterUlPrachPreamble1p25kHz); sending the short-format filter must be rejected.
	frame := buildControlPlaneFrame(slot, 6, 0x0100, ofhtypes.FilterUlPrachPreambleShort, 0, 1, 0, prachShortFormatNofPrb, 0x00)
	e.OnNewFrame(netio.SliceRxBuffer(frame))

	if len(sender.bursts) != 0 {
		t.Fatal("a PRACH filter index mismatched against the configured format must never generate a reply")
	}
	if e.CollectMetrics().Corrupt != 1 {
		t.Fatalf("corrupt counter = %d, want 1", e.CollectMetrics().Corrupt)
	}
}

func TestOnNewFrameRejectsUnsupportedCompressionHeader(t *testing.T) {
	sender := &fakeFrameSender{}
	e := newTestEmulator(sender)

	slot := ofhtypes.NewSlotPoint(1, 0, 0, 1)
	frame := buildControlPlaneFrame(slot, 4, 0x0100, ofhtypes.FilterStandardChannel, 2, 3, 0, 10, 0xA5)
	e.OnNewFrame(netio.SliceRxBuffer(frame))

	if len(sender.bursts) != 0 {
		t.Fatal("an unsupported compression header must never generate a reply")
	}
	if e.CollectMetrics().Corrupt != 1 {
		t.Fatalf("corrupt counter = %d, want 1", e.CollectMetrics().Corrupt)
	}
}

func TestOnNewSymbolForwardsToAllThreeWindowCheckers(t *testing.T) {
	sender := &fakeFrameSender{}
	e := newTestEmulator(sender)

	point := ofhtypes.NewSlotSymbolPoint(ofhtypes.NewSlotPoint(1, 0, 0, 1), 5, 14)
	e.OnNewSymbol(point)

	if e.dlCpWindow.NofOnTimeMessages()+e.dlCpWindow.NofEarlyMessages()+e.dlCpWindow.NofLateMessages() != 0 {
		t.Fatal("OnNewSymbol must only record the OTA tick, never classify a message")
	}
}
