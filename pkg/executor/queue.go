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

// Package executor holds the ambient concurrency primitives the
// reception pipeline is built on: a non-blocking, bounded task queue
// that lets the real-time receive path hand a repository mutation to a
// symbol-paced drain step instead of taking a lock inline.
package executor

// TaskQueue is a bounded, non-blocking multi-producer single-consumer
// queue of deferred closures, backed by a buffered channel. TryPush
// never blocks: a full queue drops the task and reports false so the
// caller can log and count it.
type TaskQueue struct {
	tasks chan func()
}

// NewTaskQueue returns a queue with room for capacity pending tasks.
func NewTaskQueue(capacity int) *TaskQueue {
	return &TaskQueue{tasks: make(chan func(), capacity)}
}

// TryPush enqueues task without blocking. Returns false if the queue is
// full.
func (q *TaskQueue) TryPush(task func()) bool {
	select {
	case q.tasks <- task:
		return true
	default:
		return false
	}
}

// Drain runs every task currently queued, in FIFO order, and returns how
// many ran. Tasks pushed concurrently with a Drain call may or may not
// be observed, matching a single-consumer drain loop.
func (q *TaskQueue) Drain() int {
	n := 0
	for {
		select {
		case task := <-q.tasks:
			task()
			n++
		default:
			return n
		}
	}
}
