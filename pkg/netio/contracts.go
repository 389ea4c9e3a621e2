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

// Package netio declares the contracts the core expects from the
// external transport it is embedded in: a raw-Ethernet receiver/sender
// pair and the per-OFDM-symbol timing source. The one implementation in
// this package is the Linux AF_PACKET transport (afpacket_linux.go),
// which provides the receiver and the sender; cmd/ofh-du and cmd/ofh-ru
// wire it in.
package netio

import (
	"github.com/srsoss/ofh-core/pkg/grid"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

// MaxBurstSize bounds the number of frames a single FrameSender.Send call
// may carry.
const MaxBurstSize = 64

// RxBuffer borrows a received frame for the duration of a FrameNotifier
// callback. Implementations must not retain Data()'s backing array past
// the callback's return.
type RxBuffer interface {
	Data() []byte
}

// SliceRxBuffer is the trivial RxBuffer backed by an in-memory slice,
// used by tests and by transports that already copy frames into
// per-receive buffers.
type SliceRxBuffer []byte

// Data implements RxBuffer.
func (b SliceRxBuffer) Data() []byte { return b }

// FrameNotifier consumes received Ethernet frames. The core installs one
// implementation (the receiver's decode pipeline) as an EthernetReceiver's
// notifier.
type FrameNotifier interface {
	OnNewFrame(buf RxBuffer)
}

// EthernetReceiver is the external raw-Ethernet ingress. SetFrameNotifier
// must be called before Start; Stop blocks until the receive loop has
// exited and no further notifier callbacks will occur.
type EthernetReceiver interface {
	SetFrameNotifier(notifier FrameNotifier)
	Start() error
	Stop()
}

// FrameSender is the external raw-Ethernet egress. A single Send call may
// carry up to MaxBurstSize frames; frames beyond the underlying NIC's MTU
// are dropped by the sender with a warning, not an error.
type FrameSender interface {
	Send(frames [][]byte) error
}

// OTASymbolNotifier is the realtime clock source: called once per OFDM
// symbol boundary. The core never assumes monotonic or gap-free delivery.
type OTASymbolNotifier interface {
	OnNewSymbol(point ofhtypes.SlotSymbolPoint)
}

// UplinkSymbolContext identifies a completed uplink grid symbol for the
// upstream notifier.
type UplinkSymbolContext struct {
	Slot   ofhtypes.SlotPoint
	Symbol uint8
	Sector int
}

// UplinkSymbolNotifier is the upstream consumer of completed uplink grid
// symbols, called in ascending symbol order within a slot. isValid is
// false for a partial, window-closed delivery.
type UplinkSymbolNotifier interface {
	OnNewUplinkSymbol(ctx UplinkSymbolContext, symbol grid.CompletedSymbol, isValid bool)
}

// PrachWindowContext identifies a completed or force-delivered PRACH
// occasion for the upstream notifier.
type PrachWindowContext struct {
	Slot   ofhtypes.SlotPoint
	Sector int
}

// PrachWindowNotifier is the upstream consumer of completed PRACH
// occasions.
type PrachWindowNotifier interface {
	OnNewPrachWindowData(ctx PrachWindowContext, prach grid.CompletedPrach)
}
