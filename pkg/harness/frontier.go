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

package harness

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var spillMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()

	if err != nil {
		panic(fmt.Sprintf("harness: failed to create CBOR enc mode: %v", err))
	}

	spillMode = em
}

// Frontier is a FIFO work queue holding at most Limit decoded items. Items
// pushed beyond that are encoded and stacked, and are only popped, newest
// first, once the queue has drained. A Limit below one means unbounded.
type Frontier[T any] struct {
	Limit int

	queue []T
	spill [][]byte
}

func NewFrontier[T any](limit int) *Frontier[T] {
	return &Frontier[T]{Limit: limit}
}

func (f *Frontier[T]) Push(item T) error {
	if f.Limit < 1 || len(f.queue) < f.Limit {
		f.queue = append(f.queue, item)
		return nil
	}

	data, err := spillMode.Marshal(item)

	if err != nil {
		return fmt.Errorf("frontier: spill: %w", err)
	}

	f.spill = append(f.spill, data)
	return nil
}

// Pop returns false once both the queue and the spill are empty.
func (f *Frontier[T]) Pop() (T, bool, error) {
	var item T

	if len(f.queue) > 0 {
		item = f.queue[0]
		f.queue = f.queue[1:]
		return item, true, nil
	}

	if len(f.spill) == 0 {
		return item, false, nil
	}

	data := f.spill[len(f.spill)-1]
	f.spill = f.spill[:len(f.spill)-1]

	if err := cbor.Unmarshal(data, &item); err != nil {
		return item, false, fmt.Errorf("frontier: unspill: %w", err)
	}

	return item, true, nil
}

func (f *Frontier[T]) Len() int {
	return len(f.queue) + len(f.spill)
}

// Spilled reports how many items are currently held encoded.
func (f *Frontier[T]) Spilled() int {
	return len(f.spill)
}
