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

package grid

import (
	"testing"

	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

func TestUplinkRepositoryCompletesAfterAllPortsWritten(t *testing.T) {
	repo := NewUplinkRepository(20, 8)
	slot := ofhtypes.NewSlotPoint(0, 1, 0, 0)

	if !repo.Add(slot, 0, 1, 2, 1) {
		t.Fatal("Add should succeed")
	}
	if repo.ProcessPending() != 1 {
		t.Fatal("expected one pending task to process")
	}

	if _, ok := repo.TryPopComplete(slot, 0); ok {
		t.Fatal("should not be complete before any write")
	}

	nofRe := 1 * ofhtypes.NofSubcarriersPerPrb
	iq := make([]complex64, nofRe)
	repo.WriteGrid(slot, 0, 0, 0, iq)
	if _, ok := repo.TryPopComplete(slot, 0); ok {
		t.Fatal("should not be complete after only port 0 written")
	}

	repo.WriteGrid(slot, 0, 1, 0, iq)
	completed, ok := repo.TryPopComplete(slot, 0)
	if !ok {
		t.Fatal("expected completion after both ports written")
	}
	if completed.NofPrb != 1 || len(completed.Samples) != 2 {
		t.Errorf("unexpected completed symbol: %+v", completed)
	}
	for _, v := range completed.ValidMask {
		if !v {
			t.Error("expected every port valid in a complete pop")
		}
	}

	// Popping again should find nothing: the slot was cleared.
	if _, ok := repo.TryPopComplete(slot, 0); ok {
		t.Fatal("repository entry should have been cleared by the prior pop")
	}
}

func TestUplinkRepositoryPopForceDeliversPartial(t *testing.T) {
	repo := NewUplinkRepository(20, 8)
	slot := ofhtypes.NewSlotPoint(0, 2, 0, 0)
	repo.Add(slot, 5, 1, 2, 1)
	repo.ProcessPending()

	iq := make([]complex64, ofhtypes.NofSubcarriersPerPrb)
	repo.WriteGrid(slot, 5, 0, 0, iq)

	completed, ok := repo.Pop(slot, 5)
	if !ok {
		t.Fatal("expected Pop to force-deliver the partial symbol")
	}
	if completed.ValidMask[0] != true || completed.ValidMask[1] != false {
		t.Errorf("unexpected valid mask: %v", completed.ValidMask)
	}
}

func TestUplinkRepositorySlotsAliasAcrossPeriod(t *testing.T) {
	repo := NewUplinkRepository(10, 8)
	slotA := ofhtypes.NewSlotPoint(0, 0, 0, 0)
	slotB := slotA.AddSlots(10)

	repo.Add(slotA, 0, 1, 1, 1)
	repo.ProcessPending()

	iq := make([]complex64, ofhtypes.NofSubcarriersPerPrb)
	repo.WriteGrid(slotB, 0, 0, 0, iq)
	if _, ok := repo.TryPopComplete(slotA, 0); !ok {
		t.Fatal("expected slotB's write to alias onto slotA's repository row")
	}
}
