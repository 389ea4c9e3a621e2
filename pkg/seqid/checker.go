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

// Package seqid tracks the per-eAxC 8-bit monotonic sequence counter
// carried in the eCPRI IQ-data header, classifying every received packet
// as in-order, skipped-ahead (lost), or late (from-the-past).
package seqid

import (
	"fmt"
	"sync"

	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

const (
	nofSequenceIdentifiers     = 1 << 8
	halfNofSequenceIdentifiers = nofSequenceIdentifiers / 2
)

// Checker is the interface the data flows and the receiver consult to
// validate a packet's sequence identifier. A Dummy variant is available
// for deployments that configure "ignore seq_id".
type Checker interface {
	// UpdateAndCompare advances the per-eAxC counter and classifies
	// received against it. The return value is 0 for in-order, positive
	// for skip-ahead (that many messages were potentially lost), negative
	// for a message from the past.
	UpdateAndCompare(eaxc ofhtypes.Eaxc, received uint8) int
}

type entry struct {
	initialized bool
	expected    uint8 // last confirmed sequence identifier
}

// DefaultChecker is the real, stateful implementation. State is a fixed
// array sized to ofhtypes.MaxSupportedEaxcIDValue, guarded by a single
// mutex; contention is not a concern here since one checker instance is
// consulted once per received packet, never in a hot inner loop.
type DefaultChecker struct {
	mu      sync.Mutex
	entries [ofhtypes.MaxSupportedEaxcIDValue]entry
}

// NewChecker returns a Checker with independent state per eAxC.
func NewChecker() *DefaultChecker {
	return &DefaultChecker{}
}

// UpdateAndCompare implements Checker. Panics if eaxc is out of range;
// callers are expected to have validated it against the sector's
// configured eAxC list already.
func (c *DefaultChecker) UpdateAndCompare(eaxc ofhtypes.Eaxc, received uint8) int {
	if !eaxc.Valid() {
		panic(fmt.Sprintf("seqid: eaxc %d out of range [0, %d)", eaxc, ofhtypes.MaxSupportedEaxcIDValue))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := &c.entries[eaxc]

	if !e.initialized {
		e.initialized = true
		e.expected = received
		return 0
	}

	expectedNext := e.expected + 1
	if received == expectedNext {
		e.expected = expectedNext
		return 0
	}

	delta := nofSkippedSequenceID(received, expectedNext)
	if delta > 0 {
		e.expected = received
	}
	return delta
}

// Reset clears all per-eAxC state, as if no packet had ever been seen.
func (c *DefaultChecker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = [ofhtypes.MaxSupportedEaxcIDValue]entry{}
}

// nofSkippedSequenceID computes the signed difference between received
// and expectedNext on the 256-element cyclic group, wrapped to
// [-128, 128). A negative result means received is from the past; a
// positive result is the count of messages potentially lost.
func nofSkippedSequenceID(received, expectedNext uint8) int {
	a := int(received) - int(expectedNext)
	if a >= halfNofSequenceIdentifiers {
		return a - nofSequenceIdentifiers
	}
	if a < -halfNofSequenceIdentifiers {
		return a + nofSequenceIdentifiers
	}
	return a
}

// Dummy always reports in-order; it is used when the config declares
// "ignore seq_id".
type Dummy struct{}

// UpdateAndCompare implements Checker and always returns 0.
func (Dummy) UpdateAndCompare(ofhtypes.Eaxc, uint8) int { return 0 }

var _ Checker = (*DefaultChecker)(nil)
var _ Checker = Dummy{}
