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
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/srsoss/ofh-core/pkg/grid"
)

// completionNotifier is the pipeline's sink for completed uplink grid
// symbols and PRACH occasions. It satisfies both the dataflow and closer
// packages' notifier interfaces (their method sets are identical by
// design, so one implementation serves both the in-order and
// force-delivered paths), and counts deliveries for the stats log and
// the Prometheus bridge.
type completionNotifier struct {
	log *logrus.Entry

	uplinkSymbols    atomic.Uint64
	incompleteGrants atomic.Uint64
	prachOccasions   atomic.Uint64
}

func newCompletionNotifier(log *logrus.Entry) *completionNotifier {
	return &completionNotifier{log: log}
}

// OnNewUplinkSymbol implements dataflow.UplinkSymbolNotifier and
// closer.UplinkSymbolNotifier.
func (n *completionNotifier) OnNewUplinkSymbol(sector int, symbol grid.CompletedSymbol) {
	n.uplinkSymbols.Add(1)
	for _, valid := range symbol.ValidMask {
		if !valid {
			n.incompleteGrants.Add(1)
			break
		}
	}
}

// OnNewPrachWindowData implements dataflow.PrachWindowNotifier and
// closer.PrachWindowNotifier.
func (n *completionNotifier) OnNewPrachWindowData(sector int, prach grid.CompletedPrach) {
	n.prachOccasions.Add(1)
}

// CollectMetrics returns the lifetime delivery counters.
func (n *completionNotifier) CollectMetrics() (uplinkSymbols, incompleteGrants, prachOccasions uint64) {
	return n.uplinkSymbols.Load(), n.incompleteGrants.Load(), n.prachOccasions.Load()
}
