// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package device

import (
	"context"
	"sync"
)

// Wire is a bounded FIFO of single values between two machines. A machine
// can use it as its input port, its output port, or both.
//
// Only the sending side may close a wire. Receives drain whatever is
// buffered and then fail with ErrWireClosed.
type Wire struct {
	ch   chan int64
	once sync.Once
}

func NewWire(capacity int) *Wire {
	if capacity < 1 {
		capacity = 1
	}

	return &Wire{ch: make(chan int64, capacity)}
}

func (w *Wire) Send(ctx context.Context, value int64) error {
	select {
	case w.ch <- value:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Wire) Recv(ctx context.Context) (int64, error) {
	select {
	case value, ok := <-w.ch:
		if !ok {
			return 0, ErrWireClosed
		}
		return value, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (w *Wire) Input(ctx context.Context) (int64, error) {
	return w.Recv(ctx)
}

func (w *Wire) Output(ctx context.Context, value int64) error {
	return w.Send(ctx, value)
}

func (w *Wire) Close() error {
	w.once.Do(func() { close(w.ch) })
	return nil
}

func (w *Wire) Len() int {
	return len(w.ch)
}

func (w *Wire) Cap() int {
	return cap(w.ch)
}

// Full reports whether a send would block right now.
func (w *Wire) Full() bool {
	return len(w.ch) == cap(w.ch)
}
