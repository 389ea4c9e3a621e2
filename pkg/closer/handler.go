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

// Package closer force-delivers uplink grid symbols and PRACH buffers
// whose reception window has closed, complete or not, so a late or
// dropped packet never blocks the pipeline from notifying upper layers.
package closer

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/srsoss/ofh-core/pkg/grid"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

// WarnUnreceivedFrames controls when the handler logs force-delivered
// symbols/PRACH buffers as missed. They are counted regardless.
type WarnUnreceivedFrames int

const (
	WarnNever WarnUnreceivedFrames = iota
	WarnAfterTrafficDetection
	WarnAlways
)

// UplinkSymbolNotifier is notified of an uplink grid symbol that reached
// the end of its reception window, whether complete or not.
type UplinkSymbolNotifier interface {
	OnNewUplinkSymbol(sector int, symbol grid.CompletedSymbol)
}

// PrachWindowNotifier is notified of a PRACH buffer that reached the end
// of its reception window.
type PrachWindowNotifier interface {
	OnNewPrachWindowData(sector int, prach grid.CompletedPrach)
}

// Config configures a Handler.
type Config struct {
	Sector int
	// NofSymbolsToProcessUplink delays closing the window by the time
	// the decoder needs to finish processing an already-received message.
	NofSymbolsToProcessUplink int
	RxTimingParams            RxWindowTimingParameters
	WarnUnreceivedFrames      WarnUnreceivedFrames
}

// RxWindowTimingParameters mirrors window.TimingParameters; duplicated
// here (rather than imported) to keep this package's Config free of a
// dependency on the window package's classification API.
type RxWindowTimingParameters struct {
	SymStart int
	SymEnd   int
}

// Metrics is a snapshot of force-delivery counters, reset on read.
type Metrics struct {
	NofMissingUplinkSymbols uint32
	NofMissingPrachContexts uint32
}

// Handler sweeps the uplink and PRACH repositories one notification delay
// behind the current OTA symbol, force-delivering anything still pending.
type Handler struct {
	notificationDelay    int
	sector               int
	warnUnreceivedFrames WarnUnreceivedFrames
	logUnreceivedMessage atomic.Bool

	log *logrus.Entry

	uplinkRepo *grid.UplinkRepository
	prachRepo  *grid.PrachRepository
	notifier   UplinkSymbolNotifier
	prachNotif PrachWindowNotifier

	nofMissedUplinkSymbols atomic.Uint32
	nofMissedPrachContexts atomic.Uint32
}

// NewHandler builds a Handler. log should already carry component/sector
// fields via WithFields at the call site.
func NewHandler(cfg Config, uplinkRepo *grid.UplinkRepository, prachRepo *grid.PrachRepository,
	notifier UplinkSymbolNotifier, prachNotif PrachWindowNotifier, log *logrus.Entry) *Handler {
	h := &Handler{
		notificationDelay:    cfg.NofSymbolsToProcessUplink + cfg.RxTimingParams.SymEnd + 1,
		sector:               cfg.Sector,
		warnUnreceivedFrames: cfg.WarnUnreceivedFrames,
		log:                  log,
		uplinkRepo:           uplinkRepo,
		prachRepo:            prachRepo,
		notifier:             notifier,
		prachNotif:           prachNotif,
	}
	h.logUnreceivedMessage.Store(cfg.WarnUnreceivedFrames == WarnAlways)
	return h
}

// StartLoggingUnreceivedMessages switches on missed-message logging once
// traffic has been detected, for deployments configured to warn only
// after the link is known to be up.
func (h *Handler) StartLoggingUnreceivedMessages() {
	if h.warnUnreceivedFrames == WarnAfterTrafficDetection {
		h.logUnreceivedMessage.Store(true)
	}
}

// OnNewSymbol advances the sweep to point, minus the notification delay,
// draining pending repository inserts and force-delivering anything that
// reached the end of its reception window. Callers typically dispatch
// this onto a background task executor rather than calling it inline on
// the OTA symbol-boundary tick.
func (h *Handler) OnNewSymbol(point ofhtypes.SlotSymbolPoint) {
	internal := point.AddSymbols(-h.notificationDelay)

	h.uplinkRepo.ProcessPending()
	h.prachRepo.ProcessPending()

	h.handleUplinkContext(internal)
	h.handlePrachContext(internal)
}

func (h *Handler) handleUplinkContext(point ofhtypes.SlotSymbolPoint) {
	symbol, ok := h.uplinkRepo.Pop(point.Slot, point.Symbol)
	if !ok {
		return
	}

	h.notifier.OnNewUplinkSymbol(h.sector, symbol)

	for _, valid := range symbol.ValidMask {
		if !valid {
			h.nofMissedUplinkSymbols.Add(1)
			if h.logUnreceivedMessage.Load() {
				h.log.WithFields(logrus.Fields{"slot": point.Slot, "symbol": point.Symbol}).
					Warn("missed incoming User-Plane uplink messages")
			}
			break
		}
	}
}

func (h *Handler) handlePrachContext(point ofhtypes.SlotSymbolPoint) {
	// PRACH is sent as soon as every symbol is received; wait for the
	// start of the next slot before declaring the previous one overdue.
	if point.Symbol != 0 {
		return
	}

	slot := point.Slot.AddSlots(-1)
	prach, ok := h.prachRepo.Pop(slot)
	if !ok {
		return
	}

	h.prachNotif.OnNewPrachWindowData(h.sector, prach)

	h.nofMissedPrachContexts.Add(1)
	if h.logUnreceivedMessage.Load() {
		h.log.WithFields(logrus.Fields{"slot": slot}).Warn("missed incoming User-Plane PRACH messages")
	}
}

// CollectMetrics returns the force-delivery counters since the previous
// call, resetting them to zero.
func (h *Handler) CollectMetrics() Metrics {
	return Metrics{
		NofMissingUplinkSymbols: h.nofMissedUplinkSymbols.Swap(0),
		NofMissingPrachContexts: h.nofMissedPrachContexts.Swap(0),
	}
}
