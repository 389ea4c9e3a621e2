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

// Package dataflow turns a decoded U-Plane message into writes against the
// uplink resource grid or PRACH buffer repositories, validating each
// message against the scheduling context a prior C-Plane message
// installed, and notifying upper layers once a symbol is complete and
// in order.
package dataflow

import (
	"github.com/sirupsen/logrus"

	"github.com/srsoss/ofh-core/pkg/cplane"
	"github.com/srsoss/ofh-core/pkg/grid"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/ordering"
	"github.com/srsoss/ofh-core/pkg/wire"
)

// UplinkSymbolNotifier receives grid symbols once every earlier symbol in
// the slot has also been notified.
type UplinkSymbolNotifier interface {
	OnNewUplinkSymbol(sector int, symbol grid.CompletedSymbol)
}

// Metrics counts the outcomes of decode_type1_message.
type Metrics struct {
	DroppedMessages uint64
}

// UplinkDataConfig configures an UplinkDataFlow.
type UplinkDataConfig struct {
	Sector     int
	Numerology uint8
	Cp         ofhtypes.CyclicPrefix
	UlEaxc     ofhtypes.EaxcList // configured UL eAxC values; index is the grid port
}

// UplinkDataFlow decodes U-Plane messages on the uplink's standard-channel
// eAxCs, validates them against the C-Plane schedule, writes them into the
// shared resource grid, and notifies symbols in order.
type UplinkDataFlow struct {
	cfg          UplinkDataConfig
	cplaneRepo   *cplane.Repository
	gridRepo     *grid.UplinkRepository
	orderingRepo *ordering.Repository
	decompressor wire.IqDecompressor
	notifier     UplinkSymbolNotifier
	log          *logrus.Entry

	droppedMessages uint64
}

// NewUplinkDataFlow builds an UplinkDataFlow. log should already carry
// sector/component fields via WithFields at the call site.
func NewUplinkDataFlow(cfg UplinkDataConfig, cplaneRepo *cplane.Repository, gridRepo *grid.UplinkRepository,
	orderingRepo *ordering.Repository, decompressor wire.IqDecompressor, notifier UplinkSymbolNotifier, log *logrus.Entry) *UplinkDataFlow {
	return &UplinkDataFlow{
		cfg:          cfg,
		cplaneRepo:   cplaneRepo,
		gridRepo:     gridRepo,
		orderingRepo: orderingRepo,
		decompressor: decompressor,
		notifier:     notifier,
		log:          log,
	}
}

// DecodeType1Message decodes a standard-channel U-Plane message received
// on eaxc, validates it, writes its sections into the resource grid, and
// notifies any symbol that is now safe to deliver in order.
func (f *UplinkDataFlow) DecodeType1Message(eaxc ofhtypes.Eaxc, message []byte) {
	results, err := wire.DecodeUplane(message, f.cfg.Numerology, f.cfg.Cp, f.decompressor)
	if err != nil {
		f.drop("failed to decode Open Fronthaul User-Plane message", nil)
		return
	}

	if f.shouldBeFiltered(eaxc, results) {
		return
	}

	port, ok := f.cfg.UlEaxc.IndexOf(eaxc)
	if !ok {
		f.drop("eAxC not configured for the uplink grid", logrus.Fields{"eaxc": eaxc})
		return
	}

	slot := results.Slot.Slot
	symbol := results.Slot.Symbol
	for _, section := range results.Sections {
		startRe := int(section.StartPrb) * ofhtypes.NofSubcarriersPerPrb
		f.gridRepo.WriteGrid(slot, symbol, port, startRe, section.Samples)
	}

	f.notifyReceivedSymbol(results.Slot)
}

func (f *UplinkDataFlow) shouldBeFiltered(eaxc ofhtypes.Eaxc, results wire.UplaneMessageDecoded) bool {
	if results.FilterIndex == ofhtypes.FilterReserved || results.FilterIndex.IsPrach() {
		f.drop("decoded filter index is not valid for the uplink grid data flow", logrus.Fields{
			"slot": results.Slot.Slot, "symbol": results.Slot.Symbol, "filter_index": results.FilterIndex,
		})
		return true
	}

	context := f.cplaneRepo.Get(results.Slot.Slot, eaxc)

	if results.FilterIndex != context.FilterIndex {
		f.drop("filter index does not match the installed C-Plane context", logrus.Fields{
			"slot": results.Slot.Slot, "symbol": results.Slot.Symbol, "eaxc": eaxc,
			"expected": context.FilterIndex, "got": results.FilterIndex,
		})
		return true
	}

	if !context.ContainsSymbol(results.Slot.Symbol) {
		f.drop("symbol index is outside the installed C-Plane schedule", logrus.Fields{
			"slot": results.Slot.Slot, "symbol": results.Slot.Symbol, "eaxc": eaxc,
		})
		return true
	}

	for _, section := range results.Sections {
		if ok, reason := sectionPrbFieldsValid(section); !ok {
			f.drop(reason, logrus.Fields{
				"slot": results.Slot.Slot, "symbol": results.Slot.Symbol, "eaxc": eaxc,
				"start_prb": section.StartPrb, "nof_prb": section.NofPrb,
			})
			return true
		}

		if !context.ContainsPrbRange(section.StartPrb, section.NofPrb) {
			f.drop("PRB range is outside the installed C-Plane schedule", logrus.Fields{
				"slot": results.Slot.Slot, "symbol": results.Slot.Symbol, "eaxc": eaxc,
				"start_prb": section.StartPrb, "nof_prb": section.NofPrb,
			})
			return true
		}
	}

	return false
}

// notifyReceivedSymbol only marks a symbol as arrived in the ordering
// repository once the grid itself confirms every port's PRBs are in: a
// partial grid must never be force-delivered from here, since that is
// exclusively the closed-window handler's job on an overdue symbol.
func (f *UplinkDataFlow) notifyReceivedSymbol(point ofhtypes.SlotSymbolPoint) {
	completed, ok := f.gridRepo.TryPopComplete(point.Slot, point.Symbol)
	if !ok {
		return
	}

	results, ok := f.orderingRepo.UpdateRxSymbolAndComputeSymbolsToNotify(point.Slot, point.Symbol, true)
	if !ok {
		return
	}

	for i := uint8(0); i < results.NofSymbols; i++ {
		symbol := results.FirstSymbol + i
		if symbol == point.Symbol {
			f.notifier.OnNewUplinkSymbol(f.cfg.Sector, completed)
			continue
		}
		if other, ok := f.gridRepo.TryPopComplete(point.Slot, symbol); ok {
			f.notifier.OnNewUplinkSymbol(f.cfg.Sector, other)
		}
	}
}

func (f *UplinkDataFlow) drop(msg string, fields logrus.Fields) {
	f.droppedMessages++
	entry := f.log
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.WithField("sector", f.cfg.Sector).Info(msg)
}

// CollectMetrics returns the lifetime dropped-message counter.
func (f *UplinkDataFlow) CollectMetrics() Metrics {
	return Metrics{DroppedMessages: f.droppedMessages}
}
