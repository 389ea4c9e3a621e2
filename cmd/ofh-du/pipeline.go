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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srsoss/ofh-core/pkg/closer"
	"github.com/srsoss/ofh-core/pkg/compression"
	"github.com/srsoss/ofh-core/pkg/config"
	"github.com/srsoss/ofh-core/pkg/cplane"
	"github.com/srsoss/ofh-core/pkg/dataflow"
	"github.com/srsoss/ofh-core/pkg/grid"
	"github.com/srsoss/ofh-core/pkg/netio"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/ordering"
	"github.com/srsoss/ofh-core/pkg/receiver"
	"github.com/srsoss/ofh-core/pkg/seqid"
	"github.com/srsoss/ofh-core/pkg/wire"
	"github.com/srsoss/ofh-core/pkg/window"
)

// pendingQueueCapacity bounds the grid/PRACH repositories' deferred
// insert queues: one entry per eAxC per slot in flight is ample for a
// demo-scale deployment.
const pendingQueueCapacity = 256

// duPipeline owns every component wired together for one DU-side
// reception pipeline: the repositories, the data flows, the receiver,
// the raw-Ethernet transport, and the demonstration scheduler that
// stands in for a real MAC.
type duPipeline struct {
	cfg *config.Config
	log *logrus.Entry

	numerology uint8
	cp         ofhtypes.CyclicPrefix

	cplaneRepo   *cplane.Repository
	gridRepo     *grid.UplinkRepository
	prachRepo    *grid.PrachRepository
	orderingRepo *ordering.Repository

	windowCheck *window.Checker
	closerH     *closer.Handler
	dataFlow    *dataflow.UplinkDataFlow
	prachFlow   *dataflow.UplinkPrachDataFlow
	recv        *receiver.Receiver

	transport *netio.AfPacketTransport
	notifier  *completionNotifier
	sched     *demoScheduler

	symbolDuration time.Duration
}

// newDuPipeline builds and wires a duPipeline from cfg, binding its
// transport to iface.
func newDuPipeline(cfg *config.Config, iface string, log *logrus.Logger) (*duPipeline, error) {
	entry := log.WithField("component", "ofh-du")

	srcMAC, err := parseMAC(cfg.Vlan.SrcMac)
	if err != nil {
		return nil, err
	}
	dstMAC, err := parseMAC(cfg.Vlan.DstMac)
	if err != nil {
		return nil, err
	}

	numerology := cfg.Numerology()
	cp := cfg.CyclicPrefix()
	ulEaxc := toEaxcList(cfg.Eaxc.UL)
	prachEaxc := toEaxcList(cfg.Eaxc.Prach)
	nofPrb := nofPrbForBandwidth(cfg.CellBandwidthMHz, cfg.ScsKHz)

	minSlots := minimumRepositorySlots(cfg.RxWindow.Ta4MaxUs, numerology)
	repoSize := cplane.CalculateRepositorySize(numerology, minSlots)

	cplaneRepo := cplane.NewRepository(numerology, minSlots)
	gridRepo := grid.NewUplinkRepository(repoSize, pendingQueueCapacity)
	prachRepo := grid.NewPrachRepository(repoSize, pendingQueueCapacity)
	orderingRepo := ordering.NewRepository(repoSize)

	symStart, symEnd := windowTimingFromUs(cfg.RxWindow.Ta4MinUs, cfg.RxWindow.Ta4MaxUs, numerology, cp)
	windowCheck := window.NewChecker(true, window.TimingParameters{SymStart: symStart, SymEnd: symEnd})

	notifier := newCompletionNotifier(entry)

	closerH := closer.NewHandler(closer.Config{
		Sector:                    0,
		NofSymbolsToProcessUplink: 1,
		RxTimingParams:            closer.RxWindowTimingParameters{SymStart: symStart, SymEnd: symEnd},
		WarnUnreceivedFrames:      toCloserWarnPolicy(cfg.WarnUnreceivedRuFrames),
	}, gridRepo, prachRepo, notifier, notifier, entry)

	decompressor := compression.New()

	dataFlow := dataflow.NewUplinkDataFlow(dataflow.UplinkDataConfig{
		Sector:     0,
		Numerology: numerology,
		Cp:         cp,
		UlEaxc:     ulEaxc,
	}, cplaneRepo, gridRepo, orderingRepo, decompressor, notifier, entry)

	prachFlow := dataflow.NewUplinkPrachDataFlow(dataflow.UplinkPrachConfig{
		Sector:                 0,
		Numerology:             numerology,
		Cp:                     cp,
		PrachEaxc:              prachEaxc,
		IsPrachCplaneEnabled:   cfg.IsPrachCplaneEnabled,
		IgnorePrachStartSymbol: cfg.IgnorePrachStartSymbol,
	}, cplaneRepo, prachRepo, decompressor, notifier, entry)

	var seqChecker seqid.Checker = seqid.NewChecker()
	if cfg.IgnoreEcpriSeqId {
		seqChecker = seqid.Dummy{}
	}

	recv := receiver.New(receiver.Config{
		Sector:                 0,
		Vlan:                   receiver.VlanFilter{SrcMAC: srcMAC, DstMAC: dstMAC, TCI: cfg.Vlan.TCI, EthType: cfg.Vlan.EtherType},
		Numerology:             numerology,
		Cp:                     cp,
		UlEaxc:                 ulEaxc,
		PrachEaxc:              prachEaxc,
		IgnoreEcpriPayloadSize: cfg.IgnoreEcpriPayloadSize,
		IgnoreEcpriSeqId:       cfg.IgnoreEcpriSeqId,
	}, seqChecker, windowCheck, closerH, dataFlow, prachFlow, entry)

	transport, err := netio.NewAfPacketTransport(iface)
	if err != nil {
		return nil, err
	}

	vlanParams := wire.VlanFrameParams{SrcMAC: srcMAC, DstMAC: dstMAC, TCI: cfg.Vlan.TCI, EthType: cfg.Vlan.EtherType}
	sched := newDemoScheduler(demoSchedulerConfig{
		Vlan:          vlanParams,
		UlEaxc:        ulEaxc,
		Cp:            cp,
		CompressionUL: toCompressionParams(cfg.CompressionUL),
		NofPrb:        nofPrb,
	}, cplaneRepo, gridRepo, orderingRepo, transport, entry)

	return &duPipeline{
		cfg:        cfg,
		log:        entry,
		numerology: numerology,
		cp:         cp,

		cplaneRepo:   cplaneRepo,
		gridRepo:     gridRepo,
		prachRepo:    prachRepo,
		orderingRepo: orderingRepo,

		windowCheck: windowCheck,
		closerH:     closerH,
		dataFlow:    dataFlow,
		prachFlow:   prachFlow,
		recv:        recv,

		transport: transport,
		notifier:  notifier,
		sched:     sched,

		symbolDuration: symbolDuration(numerology, cp),
	}, nil
}

// symbolDuration returns the nominal OFDM symbol period for numerology
// and cp, ignoring the first symbol's longer cyclic prefix: immaterial
// at the pacing granularity a software symbol ticker needs.
func symbolDuration(numerology uint8, cp ofhtypes.CyclicPrefix) time.Duration {
	slot := time.Millisecond / time.Duration(int(1)<<numerology)
	return slot / time.Duration(cp.NofSymbolsPerSlot())
}

// run starts the receive pipeline, the demo scheduler's symbol-paced
// loop and the Prometheus metrics server, and blocks until SIGINT or
// SIGTERM.
func (p *duPipeline) run(reportInterval, metricsAddr string) error {
	interval, err := time.ParseDuration(reportInterval)
	if err != nil {
		return fmt.Errorf("parsing --report-interval: %w", err)
	}

	if err := p.recv.Start(p.transport); err != nil {
		return fmt.Errorf("starting receiver: %w", err)
	}
	defer p.recv.Stop(p.transport)

	stopMetrics := serveMetrics(metricsAddr, p.log, newDuCollector(p))
	defer stopMetrics()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	symbolTicker := time.NewTicker(p.symbolDuration)
	defer symbolTicker.Stop()
	reportTicker := time.NewTicker(interval)
	defer reportTicker.Stop()

	point := ofhtypes.NewSlotSymbolPoint(ofhtypes.NewSlotPoint(p.numerology, 0, 0, 0), 0, p.cp.NofSymbolsPerSlot())

	p.log.Info("ofh-du pipeline running")

	for {
		select {
		case <-ctx.Done():
			p.log.Info("shutdown requested")
			return nil
		case <-symbolTicker.C:
			p.recv.OnNewSymbol(point)
			p.closerH.OnNewSymbol(point)
			p.sched.onNewSymbol(point)
			point = point.AddSymbols(1)
		case <-reportTicker.C:
			p.logStats()
		}
	}
}

func (p *duPipeline) logStats() {
	rxMetrics := p.recv.CollectMetrics()
	winMetrics := p.windowCheck.CollectMetrics()
	closerMetrics := p.closerH.CollectMetrics()
	dataMetrics := p.dataFlow.CollectMetrics()
	prachMetrics := p.prachFlow.CollectMetrics()
	uplinkSymbols, incompleteGrants, prachOccasions := p.notifier.CollectMetrics()

	p.log.WithFields(logrus.Fields{
		"malformed_frame":    rxMetrics.MalformedFrame,
		"unsupported_ecpri":  rxMetrics.UnsupportedEcpri,
		"unconfigured_eaxc":  rxMetrics.UnconfiguredEaxc,
		"seq_id_from_past":   rxMetrics.SeqIdFromPast,
		"on_time":            winMetrics.NofOnTimeMessages,
		"early":              winMetrics.NofEarlyMessages,
		"late":               winMetrics.NofLateMessages,
		"missing_symbols":    closerMetrics.NofMissingUplinkSymbols,
		"missing_prach":      closerMetrics.NofMissingPrachContexts,
		"dropped_uplink":     dataMetrics.DroppedMessages,
		"dropped_prach":      prachMetrics.DroppedMessages,
		"uplink_symbols":     uplinkSymbols,
		"incomplete_grants":  incompleteGrants,
		"prach_occasions":    prachOccasions,
	}).Info("reception statistics")
}
