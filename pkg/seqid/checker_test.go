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

package seqid

import "testing"

func TestFirstMessageIsAlwaysOK(t *testing.T) {
	c := NewChecker()
	if got := c.UpdateAndCompare(0, 1); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestConsecutiveMessagesAreOK(t *testing.T) {
	c := NewChecker()
	seq := uint8(1)
	if got := c.UpdateAndCompare(0, seq); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	seq++
	if got := c.UpdateAndCompare(0, seq); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	seq++
	if got := c.UpdateAndCompare(0, seq); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestMessageFromThePastIsDetected(t *testing.T) {
	c := NewChecker()
	c.UpdateAndCompare(0, 1)
	if got := c.UpdateAndCompare(0, 0); got != -2 {
		t.Errorf("got %d, want -2", got)
	}
}

func TestMessageFromThePastBigDifference(t *testing.T) {
	c := NewChecker()
	c.UpdateAndCompare(0, 14)
	if got := c.UpdateAndCompare(0, 235); got != -36 {
		t.Errorf("got %d, want -36", got)
	}
}

func TestMessageFromThePastAtTheEdge(t *testing.T) {
	c := NewChecker()
	c.UpdateAndCompare(0, 255)
	if got := c.UpdateAndCompare(0, 255); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
}

func TestMessageFromTheFutureIsDetected(t *testing.T) {
	c := NewChecker()
	c.UpdateAndCompare(0, 1)
	if got := c.UpdateAndCompare(0, 5); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestMessageFromTheFutureAtTheEdge(t *testing.T) {
	c := NewChecker()
	c.UpdateAndCompare(0, 254)
	if got := c.UpdateAndCompare(0, 0); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestMessageFromTheFutureBigDifference(t *testing.T) {
	c := NewChecker()
	c.UpdateAndCompare(0, 234)
	if got := c.UpdateAndCompare(0, 30); got != 51 {
		t.Errorf("got %d, want 51", got)
	}
}

func TestTwoEaxcTracksIndependently(t *testing.T) {
	c := NewChecker()
	c.UpdateAndCompare(0, 1)
	c.UpdateAndCompare(2, 200)

	seq1, seq2 := uint8(1), uint8(200)
	for i := 0; i < 10; i++ {
		seq1++
		seq2++
		if got := c.UpdateAndCompare(0, seq1); got != 0 {
			t.Fatalf("eaxc 0 iteration %d: got %d, want 0", i, got)
		}
		if got := c.UpdateAndCompare(2, seq2); got != 0 {
			t.Fatalf("eaxc 2 iteration %d: got %d, want 0", i, got)
		}
	}
}

func TestMessageFromThePastDoesNotModifyExpected(t *testing.T) {
	c := NewChecker()
	c.UpdateAndCompare(0, 1)

	if got := c.UpdateAndCompare(0, 0); got != -2 {
		t.Fatalf("got %d, want -2", got)
	}
	// Expected is still 1 (unchanged), so replaying seq_id 1 is one behind
	// the next expected seq_id (2).
	if got := c.UpdateAndCompare(0, 1); got != -1 {
		t.Fatalf("got %d, want -1", got)
	}
}

func TestFromThePastResumesAtExpectedSeqID(t *testing.T) {
	c := NewChecker()
	c.UpdateAndCompare(0, 1)

	seq := uint8(200)
	for i := 1; i != 58; i++ {
		seq++
		want := -58 + i
		if got := c.UpdateAndCompare(0, seq); got != want {
			t.Fatalf("iteration %d: got %d, want %d", i, got, want)
		}
	}

	for i := 0; i != 20; i++ {
		seq++
		if got := c.UpdateAndCompare(0, seq); got != 0 {
			t.Fatalf("resync iteration %d: got %d, want 0", i, got)
		}
	}
}

func TestDummyAlwaysReturnsZero(t *testing.T) {
	var d Dummy
	if got := d.UpdateAndCompare(0, 255); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}
