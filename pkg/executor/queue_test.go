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

package executor

import "testing"

func TestTaskQueueDrainRunsInOrder(t *testing.T) {
	q := NewTaskQueue(4)
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		if !q.TryPush(func() { order = append(order, i) }) {
			t.Fatalf("push %d failed", i)
		}
	}

	n := q.Drain()
	if n != 3 {
		t.Fatalf("drained %d tasks, want 3", n)
	}
	for i, v := range order {
		if v != i {
			t.Errorf("order[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestTaskQueueTryPushFailsWhenFull(t *testing.T) {
	q := NewTaskQueue(1)
	if !q.TryPush(func() {}) {
		t.Fatal("first push should succeed")
	}
	if q.TryPush(func() {}) {
		t.Fatal("second push should fail, queue is full")
	}
}

func TestTaskQueueDrainEmptyIsNoop(t *testing.T) {
	q := NewTaskQueue(2)
	if n := q.Drain(); n != 0 {
		t.Errorf("drained %d from empty queue, want 0", n)
	}
}
