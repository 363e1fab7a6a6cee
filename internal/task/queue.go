/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package task runs blocking work off the owner goroutine and hands the
// results back as continuations. Continuations only run inside Drain, which
// the owner calls, so entity state is never touched concurrently.
package task

import (
	"context"
	"sync"
)

// Work runs in its own goroutine. The returned continuation, if any, is
// applied on the owner by Drain.
type Work func() (continuation func())

type Queue struct {
	mu      sync.Mutex
	ready   []func()
	running int
	wake    chan struct{}
}

func New() *Queue { return &Queue{wake: make(chan struct{}, 1)} }

// Go starts w.
func (q *Queue) Go(w Work) {
	q.mu.Lock()
	q.running++
	q.mu.Unlock()
	go func() {
		cont := w()
		q.mu.Lock()
		q.running--
		if cont != nil {
			q.ready = append(q.ready, cont)
		}
		q.mu.Unlock()
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}()
}

// Drain applies every continuation that is ready and returns how many ran.
func (q *Queue) Drain() int {
	q.mu.Lock()
	ready := q.ready
	q.ready = nil
	q.mu.Unlock()
	for _, fn := range ready {
		fn()
	}
	return len(ready)
}

// Pending counts running work plus continuations waiting for Drain.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running + len(q.ready)
}

// Settle drains until nothing is pending or ctx is done.
func (q *Queue) Settle(ctx context.Context) error {
	for {
		if q.Drain() > 0 {
			continue
		}
		if q.Pending() == 0 {
			return nil
		}
		select {
		case <-q.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
