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

// Package window classifies received U-Plane/C-Plane packets against the
// current over-the-air symbol as early, on-time, or late, and keeps the
// running counters a metrics collector periodically drains.
package window

import (
	"sync/atomic"

	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

// Classification is the result of comparing a packet's slot-symbol point
// against the current OTA symbol.
type Classification int

const (
	OnTime Classification = iota
	Early
	Late
)

func (c Classification) String() string {
	switch c {
	case Early:
		return "early"
	case Late:
		return "late"
	default:
		return "on_time"
	}
}

// TimingParameters bounds the reception window in symbols relative to the
// current OTA symbol: SymStart is the offset of the earliest acceptable
// symbol, SymEnd the offset of the latest.
type TimingParameters struct {
	SymStart int
	SymEnd   int
}

// Metrics is a snapshot of window-checker counters since the previous
// CollectMetrics call.
type Metrics struct {
	NofOnTimeMessages uint64
	NofEarlyMessages  uint64
	NofLateMessages   uint64
}

func packPoint(sp ofhtypes.SlotSymbolPoint) uint32 {
	s := sp.Slot
	return uint32(s.Sfn)<<16 | uint32(s.Subframe)<<12 | uint32(s.Slot)<<4 | uint32(sp.Symbol)
}

func unpackPoint(raw uint32, numerology, nofSymbols uint8) ofhtypes.SlotSymbolPoint {
	symbol := uint8(raw & 0xf)
	slot := uint8((raw >> 4) & 0xf)
	subframe := uint8((raw >> 12) & 0xf)
	sfn := uint16(raw >> 16)
	return ofhtypes.NewSlotSymbolPoint(ofhtypes.NewSlotPoint(numerology, sfn, subframe, slot), symbol, nofSymbols)
}

// Checker tracks the latest OTA symbol and classifies arriving packets
// against it. A disabled checker is a no-op: OnNewSymbol and Classify
// never touch the counters.
type Checker struct {
	params   TimingParameters
	disabled bool
	lastOta  atomic.Uint32

	onTimeCounter atomic.Uint64
	earlyCounter  atomic.Uint64
	lateCounter   atomic.Uint64

	lastOnTimePrinted uint64
	lastEarlyPrinted  uint64
	lastLatePrinted   uint64
}

// NewChecker builds a Checker. enabled=false produces a no-op checker,
// used when the deployment does not want reception-window statistics.
func NewChecker(enabled bool, params TimingParameters) *Checker {
	return &Checker{params: params, disabled: !enabled}
}

// Disabled reports whether this checker was built with enabled=false.
func (c *Checker) Disabled() bool {
	return c.disabled
}

// OnNewSymbol records point as the latest OTA symbol boundary. Called once
// per symbol tick from the OTA pacing source.
func (c *Checker) OnNewSymbol(point ofhtypes.SlotSymbolPoint) {
	if c.disabled {
		return
	}
	c.lastOta.Store(packPoint(point))
}

// Classify compares point (the slot-symbol a received packet targets)
// against the latest OTA symbol and bumps the matching counter. If the
// checker is disabled, it returns OnTime without touching any counter.
func (c *Checker) Classify(point ofhtypes.SlotSymbolPoint) Classification {
	if c.disabled {
		return OnTime
	}

	ota := unpackPoint(c.lastOta.Load(), point.Slot.Numerology, point.NofSymbols)
	diff := ota.DistanceSymbols(point)

	switch {
	case diff > c.params.SymEnd:
		c.lateCounter.Add(1)
		return Late
	case diff < c.params.SymStart:
		c.earlyCounter.Add(1)
		return Early
	default:
		c.onTimeCounter.Add(1)
		return OnTime
	}
}

// NofOnTimeMessages returns the lifetime on-time counter.
func (c *Checker) NofOnTimeMessages() uint64 { return c.onTimeCounter.Load() }

// NofEarlyMessages returns the lifetime early counter.
func (c *Checker) NofEarlyMessages() uint64 { return c.earlyCounter.Load() }

// NofLateMessages returns the lifetime late counter.
func (c *Checker) NofLateMessages() uint64 { return c.lateCounter.Load() }

// CollectMetrics returns the counter deltas since the previous call.
func (c *Checker) CollectMetrics() Metrics {
	onTime := c.NofOnTimeMessages()
	early := c.NofEarlyMessages()
	late := c.NofLateMessages()

	m := Metrics{
		NofOnTimeMessages: onTime - c.lastOnTimePrinted,
		NofEarlyMessages:  early - c.lastEarlyPrinted,
		NofLateMessages:   late - c.lastLatePrinted,
	}

	c.lastOnTimePrinted = onTime
	c.lastEarlyPrinted = early
	c.lastLatePrinted = late

	return m
}
