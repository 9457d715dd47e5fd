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
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/lassandro/gointcode/pkg/device"
	"github.com/lassandro/gointcode/pkg/machine"
)

var (
	ErrNoPhases = errors.New("no phase settings")
	ErrNoSignal = errors.New("no signal produced")
)

// Amplifiers is a chain of copies of one program. Each copy first reads its
// phase setting and then signals from the previous copy; the first copy
// receives the initial signal. With Feedback set, the last copy's output is
// routed back into the first.
type Amplifiers struct {
	Program  []int64
	Signal   int64
	Feedback bool
	Settings Settings
}

// Run wires one machine per phase setting and returns the last signal the
// last machine produced.
func (a *Amplifiers) Run(ctx context.Context, phases []int64) (int64, error) {
	if len(phases) == 0 {
		return 0, ErrNoPhases
	}

	n := len(phases)
	wires := make([]*device.Wire, n)

	for i, phase := range phases {
		seeds := []int64{phase}

		if i == 0 {
			seeds = append(seeds, a.Signal)
		}

		wires[i] = device.NewWire(a.Settings.wireCapacity(len(seeds)))

		for _, v := range seeds {
			if err := wires[i].Send(ctx, v); err != nil {
				return 0, err
			}
		}
	}

	var spy *device.Spy

	if a.Feedback {
		spy = device.NewSpy(wires[0])
	} else {
		spy = device.NewSpy(&device.Collector{})
	}

	group := NewGroup(ctx)

	for i := range phases {
		var out machine.OutputDevice = spy
		var closers []io.Closer

		if i < n-1 {
			out = wires[i+1]
			closers = append(closers, wires[i+1])
		} else if a.Feedback {
			closers = append(closers, wires[0])
		}

		group.Start(&Task{
			Name:    fmt.Sprintf("amplifier %d", i),
			Machine: machine.New(a.Program),
			Hal:     device.Combine(wires[i], out),
			Closers: closers,
		})
	}

	if err := group.Wait(); err != nil {
		return 0, err
	}

	signal, ok := spy.Latest()

	if !ok {
		return 0, ErrNoSignal
	}

	log.Infof("%s: phases %v produced %d", group.ID, phases, signal)

	return signal, nil
}

// Best tries every ordering of phases on a bounded worker pool and returns
// the highest signal with the ordering that produced it. Ties go to the
// ordering generated first.
func (a *Amplifiers) Best(
	ctx context.Context,
	phases []int64,
) (int64, []int64, error) {
	if len(phases) == 0 {
		return 0, nil, ErrNoPhases
	}

	orders := Permutations(phases)
	signals := make([]int64, len(orders))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(a.Settings.workers())

	for i, order := range orders {
		eg.Go(func() error {
			signal, err := a.Run(ctx, order)

			if err != nil {
				return fmt.Errorf("phases %v: %w", order, err)
			}

			signals[i] = signal
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return 0, nil, err
	}

	best := 0

	for i, signal := range signals {
		if signal > signals[best] {
			best = i
		}
	}

	return signals[best], orders[best], nil
}

// Permutations returns every ordering of values in lexicographic order of
// their positions.
func Permutations(values []int64) [][]int64 {
	if len(values) <= 1 {
		return [][]int64{slices.Clone(values)}
	}

	var result [][]int64

	for i, head := range values {
		rest := slices.Delete(slices.Clone(values), i, i+1)

		for _, tail := range Permutations(rest) {
			result = append(result, append([]int64{head}, tail...))
		}
	}

	return result
}

