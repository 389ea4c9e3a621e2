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

package dataflow

import (
	"github.com/sirupsen/logrus"

	"github.com/srsoss/ofh-core/pkg/cplane"
	"github.com/srsoss/ofh-core/pkg/grid"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/wire"
)

// PrachWindowNotifier receives a PRACH buffer once every occasion symbol
// has arrived.
type PrachWindowNotifier interface {
	OnNewPrachWindowData(sector int, prach grid.CompletedPrach)
}

// UplinkPrachConfig configures an UplinkPrachDataFlow.
type UplinkPrachConfig struct {
	Sector                int
	Numerology            uint8
	Cp                    ofhtypes.CyclicPrefix
	PrachEaxc             ofhtypes.EaxcList
	IsPrachCplaneEnabled  bool
	IgnorePrachStartSymbol bool
}

// UplinkPrachDataFlow decodes U-Plane messages carrying PRACH preambles,
// optionally validates them against a PRACH C-Plane schedule, writes them
// into the PRACH buffer repository, and notifies once an occasion is
// complete.
type UplinkPrachDataFlow struct {
	cfg          UplinkPrachConfig
	cplaneRepo   *cplane.Repository // only read when IsPrachCplaneEnabled is true; may be nil otherwise
	prachRepo    *grid.PrachRepository
	decompressor wire.IqDecompressor
	notifier     PrachWindowNotifier
	log          *logrus.Entry

	droppedMessages uint64
}

// NewUplinkPrachDataFlow builds an UplinkPrachDataFlow.
func NewUplinkPrachDataFlow(cfg UplinkPrachConfig, cplaneRepo *cplane.Repository, prachRepo *grid.PrachRepository,
	decompressor wire.IqDecompressor, notifier PrachWindowNotifier, log *logrus.Entry) *UplinkPrachDataFlow {
	return &UplinkPrachDataFlow{
		cfg:          cfg,
		cplaneRepo:   cplaneRepo,
		prachRepo:    prachRepo,
		decompressor: decompressor,
		notifier:     notifier,
		log:          log,
	}
}

// DecodeType1Message decodes a PRACH-filtered U-Plane message received on
// eaxc, validates it, writes its samples into the PRACH buffer, and
// notifies the occasion once complete.
func (f *UplinkPrachDataFlow) DecodeType1Message(eaxc ofhtypes.Eaxc, message []byte) {
	results, err := wire.DecodeUplane(message, f.cfg.Numerology, f.cfg.Cp, f.decompressor)
	if err != nil {
		f.drop("failed to decode Open Fronthaul User-Plane PRACH message", nil)
		return
	}

	if f.shouldBeFiltered(eaxc, results) {
		return
	}

	port, ok := f.cfg.PrachEaxc.IndexOf(eaxc)
	if !ok {
		f.drop("eAxC not configured for PRACH", logrus.Fields{"eaxc": eaxc})
		return
	}

	slot := results.Slot.Slot
	for _, section := range results.Sections {
		startRe := int(section.StartPrb) * ofhtypes.NofSubcarriersPerPrb
		f.prachRepo.WriteIQ(slot, results.Slot.Symbol, port, startRe, section.Samples)
	}

	f.notifyPrach(slot)
}

func (f *UplinkPrachDataFlow) shouldBeFiltered(eaxc ofhtypes.Eaxc, results wire.UplaneMessageDecoded) bool {
	if !results.FilterIndex.IsPrach() {
		f.drop("decoded filter index is not a PRACH preamble", logrus.Fields{
			"slot": results.Slot.Slot, "symbol": results.Slot.Symbol, "filter_index": results.FilterIndex,
		})
		return true
	}

	if !f.cfg.IsPrachCplaneEnabled {
		return false
	}

	context := f.cplaneRepo.Get(results.Slot.Slot, eaxc)

	if results.FilterIndex != context.FilterIndex {
		f.drop("filter index does not match the installed PRACH C-Plane context", logrus.Fields{
			"slot": results.Slot.Slot, "symbol": results.Slot.Symbol, "eaxc": eaxc,
			"expected": context.FilterIndex, "got": results.FilterIndex,
		})
		return true
	}

	if !f.isStartSymbolValid(context, results.Slot.Symbol) {
		f.drop("symbol index is invalid for the installed PRACH C-Plane context", logrus.Fields{
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
			f.drop("PRB range is outside the installed PRACH C-Plane context", logrus.Fields{
				"slot": results.Slot.Slot, "symbol": results.Slot.Symbol, "eaxc": eaxc,
				"start_prb": section.StartPrb, "nof_prb": section.NofPrb,
			})
			return true
		}
	}

	return false
}

// isStartSymbolValid mirrors the long-format tolerance: some RUs always
// send symbolId=0 for the long 1.25kHz preamble format regardless of what
// C-Plane indicated, so that case is accepted when configured to.
func (f *UplinkPrachDataFlow) isStartSymbolValid(context ofhtypes.UlCplaneContext, startSymbol uint8) bool {
	if f.cfg.IgnorePrachStartSymbol && context.FilterIndex == ofhtypes.FilterUlPrachPreamble1p25kHz {
		if startSymbol >= context.StartSymbol {
			startSymbol -= context.StartSymbol
		}
		return startSymbol < context.NofSymbols
	}
	return context.ContainsSymbol(startSymbol)
}

func (f *UplinkPrachDataFlow) notifyPrach(slot ofhtypes.SlotPoint) {
	prach, ok := f.prachRepo.TryPopComplete(slot)
	if !ok {
		return
	}
	f.notifier.OnNewPrachWindowData(f.cfg.Sector, prach)
}

func (f *UplinkPrachDataFlow) drop(msg string, fields logrus.Fields) {
	f.droppedMessages++
	entry := f.log
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.WithField("sector", f.cfg.Sector).Info(msg)
}

// CollectMetrics returns the lifetime dropped-message counter.
func (f *UplinkPrachDataFlow) CollectMetrics() Metrics {
	return Metrics{DroppedMessages: f.droppedMessages}
}
