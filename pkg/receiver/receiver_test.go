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

package receiver

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/srsoss/ofh-core/pkg/cplane"
	"github.com/srsoss/ofh-core/pkg/dataflow"
	"github.com/srsoss/ofh-core/pkg/grid"
	"github.com/srsoss/ofh-core/pkg/netio"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/ordering"
	"github.com/srsoss/ofh-core/pkg/seqid"
	"github.com/srsoss/ofh-core/pkg/wire"
	"github.com/srsoss/ofh-core/pkg/window"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fakeDecompressor struct{}

func (fakeDecompressor) Decompress(raw []byte, params ofhtypes.CompressionParams, nofPrb uint16) ([]complex64, error) {
	return make([]complex64, int(nofPrb)*ofhtypes.NofSubcarriersPerPrb), nil
}

type fakeUplinkSymbolNotifier struct{ calls int }

func (f *fakeUplinkSymbolNotifier) OnNewUplinkSymbol(sector int, symbol grid.CompletedSymbol) { f.calls++ }

type fakePrachWindowNotifier struct{ calls int }

func (f *fakePrachWindowNotifier) OnNewPrachWindowData(sector int, prach grid.CompletedPrach) { f.calls++ }

type fakeClosedWindowHandler struct{ started bool }

func (f *fakeClosedWindowHandler) StartLoggingUnreceivedMessages() { f.started = true }

type fakeEthernetReceiver struct {
	notifier  netio.FrameNotifier
	startErr  error
	started   bool
	stopCalls int
}

func (f *fakeEthernetReceiver) SetFrameNotifier(n netio.FrameNotifier) { f.notifier = n }
func (f *fakeEthernetReceiver) Start() error                           { f.started = true; return f.startErr }
func (f *fakeEthernetReceiver) Stop()                                  { f.stopCalls++ }

var vlanFilter = VlanFilter{
	SrcMAC:  wire.MacAddress{0x80, 0x61, 0x5f, 0x0d, 0xdf, 0xaa},
	DstMAC:  wire.MacAddress{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
	EthType: wire.EtherTypeOranFh,
}

func buildFullFrame(slot ofhtypes.SlotPoint, symbol uint8, eaxc ofhtypes.Eaxc, seqID uint16,
	filter ofhtypes.FilterIndex, startPrb, nofPrb uint16) []byte {
	common := wire.EncodeUplaneCommonHeader(ofhtypes.DirectionUplink, filter, 0, slot, symbol)
	params := ofhtypes.CompressionParams{Type: ofhtypes.CompressionNone, DataWidth: 16}
	iq := make([]byte, int(nofPrb)*ofhtypes.NofSubcarriersPerPrb*4)
	section := wire.EncodeUplaneSection(0, false, false, startPrb, nofPrb, params, iq)
	uplane := append(append([]byte{}, common[:]...), section...)

	ecpri := wire.EncodeEcpri(wire.MsgTypeIqData, uint16(eaxc), seqID, uplane)

	vlanParams := wire.VlanFrameParams{SrcMAC: vlanFilter.SrcMAC, DstMAC: vlanFilter.DstMAC, EthType: vlanFilter.EthType}
	return wire.EncodeVlanFrame(vlanParams, ecpri)
}

func newTestReceiver(numerology uint8, eaxc ofhtypes.Eaxc, slot ofhtypes.SlotPoint) (*Receiver, *fakeUplinkSymbolNotifier, *cplane.Repository, *grid.UplinkRepository) {
	cplaneRepo := cplane.NewRepository(numerology, 8)
	gridRepo := grid.NewUplinkRepository(20, 8)
	orderingRepo := ordering.NewRepository(20)
	orderingRepo.Add(slot, 0, ofhtypes.CyclicPrefixNormal)
	ulNotifier := &fakeUplinkSymbolNotifier{}

	ulFlowCfg := dataflow.UplinkDataConfig{Sector: 0, Numerology: numerology, Cp: ofhtypes.CyclicPrefixNormal, UlEaxc: ofhtypes.EaxcList{eaxc}}
	ulFlow := dataflow.NewUplinkDataFlow(ulFlowCfg, cplaneRepo, gridRepo, orderingRepo, fakeDecompressor{}, ulNotifier, testLog())

	prachRepo := grid.NewPrachRepository(20, 8)
	prachNotifier := &fakePrachWindowNotifier{}
	prachFlowCfg := dataflow.UplinkPrachConfig{Sector: 0, Numerology: numerology, Cp: ofhtypes.CyclicPrefixNormal, PrachEaxc: ofhtypes.EaxcList{}, IsPrachCplaneEnabled: false}
	prachFlow := dataflow.NewUplinkPrachDataFlow(prachFlowCfg, nil, prachRepo, fakeDecompressor{}, prachNotifier, testLog())

	windowCheck := window.NewChecker(false, window.TimingParameters{SymStart: -10, SymEnd: 10})
	closerH := &fakeClosedWindowHandler{}

	cfg := Config{
		Sector: 0, Vlan: vlanFilter, Numerology: numerology, Cp: ofhtypes.CyclicPrefixNormal,
		UlEaxc: ofhtypes.EaxcList{eaxc}, PrachEaxc: ofhtypes.EaxcList{},
	}
	r := New(cfg, seqid.NewChecker(), windowCheck, closerH, ulFlow, prachFlow, testLog())
	return r, ulNotifier, cplaneRepo, gridRepo
}

func TestOnNewFrameHappyPathDispatchesToUplinkFlow(t *testing.T) {
	numerology := uint8(1)
	eaxc := ofhtypes.Eaxc(4)
	slot := ofhtypes.NewSlotPoint(numerology, 0, 0, 1)

	r, ulNotifier, cplaneRepo, gridRepo := newTestReceiver(numerology, eaxc, slot)
	r.st.Store(int32(stateRunning))

	context := ofhtypes.UlCplaneContext{FilterIndex: ofhtypes.FilterStandardChannel, StartSymbol: 0, NofSymbols: 14, PrbStart: 0, NofPrb: 2}
	cplaneRepo.Add(slot, eaxc, context)
	gridRepo.Add(slot, 0, 1, 1, 2)
	gridRepo.ProcessPending()

	frame := buildFullFrame(slot, 0, eaxc, 0x0100, ofhtypes.FilterStandardChannel, 0, 2)
	r.OnNewFrame(netio.SliceRxBuffer(frame))

	if ulNotifier.calls != 1 {
		t.Fatalf("expected 1 notified uplink symbol, got %d; metrics=%+v", ulNotifier.calls, r.CollectMetrics())
	}
}

func TestOnNewFrameDropsOnVlanMismatch(t *testing.T) {
	numerology := uint8(1)
	eaxc := ofhtypes.Eaxc(4)
	slot := ofhtypes.NewSlotPoint(numerology, 0, 0, 1)

	r, ulNotifier, _, _ := newTestReceiver(numerology, eaxc, slot)
	r.st.Store(int32(stateRunning))

	frame := buildFullFrame(slot, 0, eaxc, 0x0100, ofhtypes.FilterStandardChannel, 0, 2)
	// Corrupt the destination MAC so it no longer matches the configured filter.
	frame[0] ^= 0xff

	r.OnNewFrame(netio.SliceRxBuffer(frame))

	if ulNotifier.calls != 0 {
		t.Fatal("a frame with a mismatched VLAN header must never reach a data flow")
	}
	if r.CollectMetrics().MalformedFrame != 1 {
		t.Fatalf("malformed frame counter = %d, want 1", r.CollectMetrics().MalformedFrame)
	}
}

func TestOnNewFrameDropsSeqIdFromPast(t *testing.T) {
	numerology := uint8(1)
	eaxc := ofhtypes.Eaxc(4)
	slot := ofhtypes.NewSlotPoint(numerology, 0, 0, 1)

	r, ulNotifier, cplaneRepo, gridRepo := newTestReceiver(numerology, eaxc, slot)
	r.st.Store(int32(stateRunning))

	context := ofhtypes.UlCplaneContext{FilterIndex: ofhtypes.FilterStandardChannel, StartSymbol: 0, NofSymbols: 14, PrbStart: 0, NofPrb: 2}
	cplaneRepo.Add(slot, eaxc, context)
	gridRepo.Add(slot, 0, 1, 1, 2)
	gridRepo.ProcessPending()

	first := buildFullFrame(slot, 0, eaxc, 0x8000, ofhtypes.FilterStandardChannel, 0, 2)
	r.OnNewFrame(netio.SliceRxBuffer(first))
	if ulNotifier.calls != 1 {
		t.Fatalf("first packet should be accepted, got %d notifications", ulNotifier.calls)
	}

	// Second packet carries a seq_id slightly behind the expected next
	// value: the checker must reject it as from-the-past and the data
	// flow must not run.
	second := buildFullFrame(slot, 1, eaxc, 0x7f00, ofhtypes.FilterStandardChannel, 0, 2)
	r.OnNewFrame(netio.SliceRxBuffer(second))

	if ulNotifier.calls != 1 {
		t.Fatalf("expected no additional notification for the from-the-past packet, got %d total", ulNotifier.calls)
	}
	if r.CollectMetrics().SeqIdFromPast != 1 {
		t.Fatalf("seq id from past counter = %d, want 1", r.CollectMetrics().SeqIdFromPast)
	}
}

func TestOnNewFrameIgnoredWhenNotRunning(t *testing.T) {
	numerology := uint8(1)
	eaxc := ofhtypes.Eaxc(4)
	slot := ofhtypes.NewSlotPoint(numerology, 0, 0, 1)

	r, ulNotifier, _, _ := newTestReceiver(numerology, eaxc, slot)
	// state left at the zero value, stateIdle.

	frame := buildFullFrame(slot, 0, eaxc, 0x0100, ofhtypes.FilterStandardChannel, 0, 2)
	r.OnNewFrame(netio.SliceRxBuffer(frame))

	if ulNotifier.calls != 0 {
		t.Fatal("a frame arriving before Start must be dropped")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	numerology := uint8(1)
	eaxc := ofhtypes.Eaxc(4)
	slot := ofhtypes.NewSlotPoint(numerology, 0, 0, 1)
	r, _, _, _ := newTestReceiver(numerology, eaxc, slot)

	eth := &fakeEthernetReceiver{}
	if err := r.Start(eth); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !eth.started || eth.notifier == nil {
		t.Fatal("Start must install the notifier and start the ethernet receiver")
	}
	if err := r.Start(eth); err == nil {
		t.Fatal("a second Start while running must fail")
	}

	if err := r.Stop(eth); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if eth.stopCalls != 1 {
		t.Fatalf("expected Stop to be forwarded once, got %d", eth.stopCalls)
	}
	if err := r.Stop(eth); err == nil {
		t.Fatal("a second Stop once stopped must fail")
	}
}
