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

// Package ruemu is a reflector that stands in for a real radio unit: it
// validates received C-Plane messages against its configured eAxC lists
// and, for every UL or PRACH grant, replies with a canned U-Plane burst
// covering the granted symbols/PRBs. It exercises a DU's reception
// pipeline end to end without real RF hardware.
package ruemu

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/srsoss/ofh-core/pkg/config"
	"github.com/srsoss/ofh-core/pkg/netio"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/seqid"
	"github.com/srsoss/ofh-core/pkg/wire"
	"github.com/srsoss/ofh-core/pkg/window"
)

// VlanFilter is the configured Ethernet header a frame must match before
// the emulator considers its payload. Declared independently from
// receiver.VlanFilter: the two packages are never both linked by the
// same binary, and each is small enough that sharing it would cost more
// in coupling than it saves in lines.
type VlanFilter struct {
	SrcMAC  wire.MacAddress
	DstMAC  wire.MacAddress
	TCI     *uint16
	EthType uint16
}

func (f VlanFilter) matches(got wire.VlanFrameParams) bool {
	if got.SrcMAC != f.SrcMAC || got.DstMAC != f.DstMAC || got.EthType != f.EthType {
		return false
	}
	if f.TCI == nil {
		return true
	}
	return got.TCI != nil && *got.TCI == *f.TCI
}

const (
	prachLongFormatNofPrb  = 72
	prachShortFormatNofPrb = 12
)

// isSupportedUlCompression reports whether a UL C-Plane message's
// compression scheme is one the emulator accepts: uncompressed or block
// floating point, matching the reference RU emulator's accepted set.
func isSupportedUlCompression(c ofhtypes.CompressionParams) bool {
	return c.Type == ofhtypes.CompressionNone || c.Type == ofhtypes.CompressionBlockFloatingPoint
}

func nofPrachSymbols(format config.PrachFormat) uint8 {
	if format == config.PrachFormatShortB4 {
		return 1
	}
	return 12
}

func prachNofPrb(format config.PrachFormat) uint16 {
	if format == config.PrachFormatShortB4 {
		return prachShortFormatNofPrb
	}
	return prachLongFormatNofPrb
}

func expectedPrachFilter(format config.PrachFormat) ofhtypes.FilterIndex {
	if format == config.PrachFormatShortB4 {
		return ofhtypes.FilterUlPrachPreambleShort
	}
	return ofhtypes.FilterUlPrachPreamble1p25kHz
}

// Config configures an Emulator.
type Config struct {
	Sector     int
	Vlan       VlanFilter
	Numerology uint8
	Cp         ofhtypes.CyclicPrefix

	UlEaxc    ofhtypes.EaxcList
	DlEaxc    ofhtypes.EaxcList
	PrachEaxc ofhtypes.EaxcList

	PrachFormat            config.PrachFormat
	CompressionUL          ofhtypes.CompressionParams
	CompressionPrach       ofhtypes.CompressionParams
	IgnoreEcpriPayloadSize bool
}

// Metrics is a snapshot of the emulator's lifetime packet counters.
type Metrics struct {
	RxTotal uint64
	TxTotal uint64
	Corrupt uint64
	Dropped uint64
}

// Emulator is the top-level reflector: it implements netio.FrameNotifier
// and netio.OTASymbolNotifier, dispatching received C-Plane messages to
// canned UL/PRACH U-Plane replies sent through a netio.FrameSender.
type Emulator struct {
	cfg    Config
	sender netio.FrameSender
	log    *logrus.Entry

	dlCpWindow *window.Checker
	dlUpWindow *window.Checker
	ulCpWindow *window.Checker

	dlCpSeq  seqid.Checker
	dlUpSeq  seqid.Checker
	ulCpSeq  seqid.Checker
	prachSeq seqid.Checker

	ulCannedIQ    []byte
	prachCannedIQ []byte

	seqMu            sync.Mutex
	ulTxSeqCounters  map[ofhtypes.Eaxc]uint8
	prachSeqCounters map[ofhtypes.Eaxc]uint8

	rxTotal atomic.Uint64
	txTotal atomic.Uint64
	corrupt atomic.Uint64
	dropped atomic.Uint64
}

// New builds an Emulator. windowTiming bounds the early/on-time/late
// classification applied to every received message class.
func New(cfg Config, windowTiming window.TimingParameters, sender netio.FrameSender, log *logrus.Entry) *Emulator {
	e := &Emulator{
		cfg:    cfg,
		sender: sender,
		log:    log.WithField("sector", cfg.Sector),

		dlCpWindow: window.NewChecker(true, windowTiming),
		dlUpWindow: window.NewChecker(true, windowTiming),
		ulCpWindow: window.NewChecker(true, windowTiming),

		dlCpSeq:  seqid.NewChecker(),
		dlUpSeq:  seqid.NewChecker(),
		ulCpSeq:  seqid.NewChecker(),
		prachSeq: seqid.NewChecker(),

		ulCannedIQ:    make([]byte, int(ofhtypes.MaxNofPrb)*cfg.CompressionUL.BytesPerPrb()),
		prachCannedIQ: make([]byte, int(prachNofPrb(cfg.PrachFormat))*cfg.CompressionPrach.BytesPerPrb()),

		ulTxSeqCounters:  make(map[ofhtypes.Eaxc]uint8),
		prachSeqCounters: make(map[ofhtypes.Eaxc]uint8),
	}
	return e
}

// OnNewSymbol implements netio.OTASymbolNotifier.
func (e *Emulator) OnNewSymbol(point ofhtypes.SlotSymbolPoint) {
	e.dlCpWindow.OnNewSymbol(point)
	e.dlUpWindow.OnNewSymbol(point)
	e.ulCpWindow.OnNewSymbol(point)
}

// OnNewFrame implements netio.FrameNotifier: decode, validate, classify
// and, for an accepted UL/PRACH grant, reply with a canned burst.
func (e *Emulator) OnNewFrame(buf netio.RxBuffer) {
	payload := buf.Data()

	vlan, rest, err := wire.DecodeVlanFrame(payload)
	if err != nil || !e.cfg.Vlan.matches(vlan) {
		e.dropped.Add(1)
		return
	}

	mode := wire.TrustHeaderPayloadSize
	if e.cfg.IgnoreEcpriPayloadSize {
		mode = wire.IgnoreHeaderPayloadSize
	}
	ecpri, ecpriPayload, err := wire.DecodeEcpri(rest, mode)
	if err != nil {
		e.corrupt.Add(1)
		return
	}

	e.rxTotal.Add(1)

	switch ecpri.Header.MsgType {
	case wire.MsgTypeRtControlData:
		e.handleControlPlane(ofhtypes.Eaxc(ecpri.Params.ID), wire.EcpriSeqIDTop8(ecpri.Params.SeqID), ecpriPayload)
	case wire.MsgTypeIqData:
		e.handleUserPlane(ofhtypes.Eaxc(ecpri.Params.ID), wire.EcpriSeqIDTop8(ecpri.Params.SeqID), ecpriPayload)
	default:
		e.corrupt.Add(1)
	}
}

// handleUserPlane tracks window/seq-id statistics for received DL
// U-Plane traffic. The emulator never replies to it: only a DU sends
// DL U-Plane, and nothing downstream of an RU consumes an RU's opinion
// of it beyond the same KPI counters control-plane traffic gets.
func (e *Emulator) handleUserPlane(eaxc ofhtypes.Eaxc, seqID uint8, payload []byte) {
	point, err := wire.PeekSlotSymbolPoint(payload, e.cfg.Numerology, e.cfg.Cp)
	if err != nil {
		e.corrupt.Add(1)
		return
	}
	if _, ok := e.cfg.DlEaxc.IndexOf(eaxc); !ok {
		e.corrupt.Add(1)
		return
	}
	e.dlUpWindow.Classify(point)
	e.dlUpSeq.UpdateAndCompare(eaxc, seqID)
}

func (e *Emulator) handleControlPlane(eaxc ofhtypes.Eaxc, seqID uint8, payload []byte) {
	msg, err := wire.DecodeCplane(payload, e.cfg.Numerology)
	if err != nil {
		e.corrupt.Add(1)
		return
	}

	if msg.Direction == ofhtypes.DirectionDownlink {
		if _, ok := e.cfg.DlEaxc.IndexOf(eaxc); !ok {
			e.corrupt.Add(1)
			return
		}
		point := ofhtypes.NewSlotSymbolPoint(msg.Slot, msg.StartSymbol, e.cfg.Cp.NofSymbolsPerSlot())
		e.dlCpWindow.Classify(point)
		e.dlCpSeq.UpdateAndCompare(eaxc, seqID)
		return
	}

	isPrach := msg.FilterIndex.IsPrach()
	eaxcList := e.cfg.UlEaxc
	if isPrach {
		eaxcList = e.cfg.PrachEaxc
	}
	if _, ok := eaxcList.IndexOf(eaxc); !ok {
		e.corrupt.Add(1)
		return
	}

	if !isPrach && msg.Context.NofSymbols > ofhtypes.NofSymbolsPerSlotNormalCP {
		e.corrupt.Add(1)
		return
	}
	if isPrach {
		expected := expectedPrachFilter(e.cfg.PrachFormat)
		if msg.FilterIndex != expected {
			e.corrupt.Add(1)
			return
		}
		if msg.Context.NofSymbols > nofPrachSymbols(e.cfg.PrachFormat) {
			e.corrupt.Add(1)
			return
		}
	}
	if !isSupportedUlCompression(msg.Comp) {
		e.corrupt.Add(1)
		return
	}

	point := ofhtypes.NewSlotSymbolPoint(msg.Slot, msg.StartSymbol, e.cfg.Cp.NofSymbolsPerSlot())
	e.ulCpWindow.Classify(point)
	if isPrach {
		e.prachSeq.UpdateAndCompare(eaxc, seqID)
		e.sendPrachUplane(eaxc, msg)
	} else {
		e.ulCpSeq.UpdateAndCompare(eaxc, seqID)
		e.sendUlUplane(eaxc, msg)
	}
}

func (e *Emulator) sendUlUplane(eaxc ofhtypes.Eaxc, msg wire.CplaneMessage) {
	frames := make([][]byte, 0, msg.Context.NofSymbols)
	for s := 0; s < int(msg.Context.NofSymbols); s++ {
		symbol := msg.Context.StartSymbol + uint8(s)
		txSeq := e.nextUlSeq(eaxc)
		frames = append(frames, e.buildUplaneFrame(eaxc, msg.Slot, symbol, msg.Context.PrbStart, msg.Context.NofPrb,
			ofhtypes.FilterStandardChannel, e.cfg.CompressionUL, e.ulCannedIQ, txSeq))
	}
	e.send(frames)
}

func (e *Emulator) sendPrachUplane(eaxc ofhtypes.Eaxc, msg wire.CplaneMessage) {
	frames := make([][]byte, 0, msg.Context.NofSymbols)
	for s := 0; s < int(msg.Context.NofSymbols); s++ {
		symbol := msg.Context.StartSymbol + uint8(s)
		txSeq := e.nextPrachSeq(eaxc)
		frames = append(frames, e.buildUplaneFrame(eaxc, msg.Slot, symbol, 0, prachNofPrb(e.cfg.PrachFormat),
			msg.FilterIndex, e.cfg.CompressionPrach, e.prachCannedIQ, txSeq))
	}
	e.send(frames)
}

// buildUplaneFrame assembles a complete Ethernet frame carrying one
// U-Plane section, reusing the canned IQ payload sliced to the
// requested PRB count. Every call encodes all headers and copies the IQ
// bytes into a newly allocated frame.
func (e *Emulator) buildUplaneFrame(eaxc ofhtypes.Eaxc, slot ofhtypes.SlotPoint, symbol uint8, startPrb, nofPrb uint16,
	filter ofhtypes.FilterIndex, comp ofhtypes.CompressionParams, cannedIQ []byte, txSeq uint8) []byte {
	iqLen := int(nofPrb) * comp.BytesPerPrb()
	iq := cannedIQ
	if iqLen <= len(cannedIQ) {
		iq = cannedIQ[:iqLen]
	} else {
		iq = make([]byte, iqLen)
	}

	common := wire.EncodeUplaneCommonHeader(ofhtypes.DirectionUplink, filter, 0, slot, symbol)
	section := wire.EncodeUplaneSection(0, false, false, startPrb, nofPrb, comp, iq)
	uplane := append(append([]byte{}, common[:]...), section...)

	ecpri := wire.EncodeEcpri(wire.MsgTypeIqData, uint16(eaxc), uint16(txSeq)<<8, uplane)

	vlanParams := wire.VlanFrameParams{SrcMAC: e.cfg.Vlan.SrcMAC, DstMAC: e.cfg.Vlan.DstMAC, EthType: e.cfg.Vlan.EthType, TCI: e.cfg.Vlan.TCI}
	return wire.EncodeVlanFrame(vlanParams, ecpri)
}

func (e *Emulator) nextUlSeq(eaxc ofhtypes.Eaxc) uint8 {
	e.seqMu.Lock()
	defer e.seqMu.Unlock()
	v := e.ulTxSeqCounters[eaxc]
	e.ulTxSeqCounters[eaxc] = v + 1
	return v
}

func (e *Emulator) nextPrachSeq(eaxc ofhtypes.Eaxc) uint8 {
	e.seqMu.Lock()
	defer e.seqMu.Unlock()
	v := e.prachSeqCounters[eaxc]
	e.prachSeqCounters[eaxc] = v + 1
	return v
}

func (e *Emulator) send(frames [][]byte) {
	if len(frames) == 0 {
		return
	}
	if err := e.sender.Send(frames); err != nil {
		e.log.WithError(err).Warn("failed to send uplink burst")
		return
	}
	e.txTotal.Add(uint64(len(frames)))
}

// CollectMetrics returns the emulator's lifetime packet counters.
func (e *Emulator) CollectMetrics() Metrics {
	return Metrics{
		RxTotal: e.rxTotal.Load(),
		TxTotal: e.txTotal.Load(),
		Corrupt: e.corrupt.Load(),
		Dropped: e.dropped.Load(),
	}
}

var _ netio.FrameNotifier = (*Emulator)(nil)
var _ netio.OTASymbolNotifier = (*Emulator)(nil)
