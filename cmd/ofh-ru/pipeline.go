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

	"github.com/srsoss/ofh-core/pkg/config"
	"github.com/srsoss/ofh-core/pkg/netio"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/ruemu"
	"github.com/srsoss/ofh-core/pkg/window"
)

// ruPipeline owns the RU emulator and the raw-Ethernet transport it
// reflects traffic through, paced by the same software symbol ticker
// cmd/ofh-du uses.
type ruPipeline struct {
	log *logrus.Entry

	numerology uint8
	cp         ofhtypes.CyclicPrefix

	emu       *ruemu.Emulator
	transport *netio.AfPacketTransport

	symbolDuration time.Duration
}

// newRuPipeline builds and wires a ruPipeline from cfg, binding its
// transport to iface.
func newRuPipeline(cfg *config.Config, iface string, log *logrus.Logger) (*ruPipeline, error) {
	entry := log.WithField("component", "ofh-ru")

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

	symStart, symEnd := windowTimingFromUs(cfg.RxWindow.Ta4MinUs, cfg.RxWindow.Ta4MaxUs, numerology, cp)
	windowTiming := window.TimingParameters{SymStart: symStart, SymEnd: symEnd}

	transport, err := netio.NewAfPacketTransport(iface)
	if err != nil {
		return nil, err
	}

	emu := ruemu.New(ruemu.Config{
		Sector: 0,
		Vlan: ruemu.VlanFilter{
			SrcMAC:  srcMAC,
			DstMAC:  dstMAC,
			TCI:     cfg.Vlan.TCI,
			EthType: cfg.Vlan.EtherType,
		},
		Numerology: numerology,
		Cp:         cp,

		UlEaxc:    toEaxcList(cfg.Eaxc.UL),
		DlEaxc:    toEaxcList(cfg.Eaxc.DL),
		PrachEaxc: toEaxcList(cfg.Eaxc.Prach),

		PrachFormat:            cfg.PrachFormat,
		CompressionUL:          toCompressionParams(cfg.CompressionUL),
		CompressionPrach:       toCompressionParams(cfg.CompressionPrach),
		IgnoreEcpriPayloadSize: cfg.IgnoreEcpriPayloadSize,
	}, windowTiming, transport, entry)

	return &ruPipeline{
		log:        entry,
		numerology: numerology,
		cp:         cp,

		emu:       emu,
		transport: transport,

		symbolDuration: symbolDuration(numerology, cp),
	}, nil
}

// symbolDuration returns the nominal OFDM symbol period for numerology
// and cp, mirroring cmd/ofh-du's symbol pacing.
func symbolDuration(numerology uint8, cp ofhtypes.CyclicPrefix) time.Duration {
	slot := time.Millisecond / time.Duration(int(1)<<numerology)
	return slot / time.Duration(cp.NofSymbolsPerSlot())
}

// run starts the emulator's symbol-paced loop and the Prometheus metrics
// server, and blocks until SIGINT or SIGTERM.
func (p *ruPipeline) run(reportInterval, metricsAddr string) error {
	interval, err := time.ParseDuration(reportInterval)
	if err != nil {
		return fmt.Errorf("parsing --report-interval: %w", err)
	}

	p.transport.SetFrameNotifier(p.emu)
	if err := p.transport.Start(); err != nil {
		return fmt.Errorf("starting transport: %w", err)
	}
	defer p.transport.Stop()

	stopMetrics := serveMetrics(metricsAddr, p.log, newRuCollector(p))
	defer stopMetrics()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	symbolTicker := time.NewTicker(p.symbolDuration)
	defer symbolTicker.Stop()
	reportTicker := time.NewTicker(interval)
	defer reportTicker.Stop()

	point := ofhtypes.NewSlotSymbolPoint(ofhtypes.NewSlotPoint(p.numerology, 0, 0, 0), 0, p.cp.NofSymbolsPerSlot())

	p.log.Info("ofh-ru pipeline running")

	for {
		select {
		case <-ctx.Done():
			p.log.Info("shutdown requested")
			return nil
		case <-symbolTicker.C:
			p.emu.OnNewSymbol(point)
			point = point.AddSymbols(1)
		case <-reportTicker.C:
			p.logStats()
		}
	}
}

func (p *ruPipeline) logStats() {
	m := p.emu.CollectMetrics()
	p.log.WithFields(logrus.Fields{
		"rx_total": m.RxTotal,
		"tx_total": m.TxTotal,
		"corrupt":  m.Corrupt,
		"dropped":  m.Dropped,
	}).Info("reflector statistics")
}
