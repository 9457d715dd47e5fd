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

	"github.com/lassandro/gointcode/pkg/machine"
)

var ErrStarved = errors.New("every machine is waiting for input")

// Trampoline runs the same network as Run on the calling goroutine. Each
// machine executes until it waits for input or halts, then control passes
// to the next one. Signals travel through plain queues instead of wires.
func (a *Amplifiers) Trampoline(
	ctx context.Context,
	phases []int64,
) (int64, error) {
	if len(phases) == 0 {
		return 0, ErrNoPhases
	}

	n := len(phases)
	machines := make([]*machine.Machine, n)
	queues := make([][]int64, n)

	for i, phase := range phases {
		machines[i] = machine.New(a.Program)
		queues[i] = []int64{phase}
	}

	queues[0] = append(queues[0], a.Signal)

	var signal int64
	produced := false

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		progress := false
		halted := 0

		for i, mc := range machines {
			if mc.Halted() {
				halted++
				continue
			}

			for {
				input := machine.NoInput

				if len(queues[i]) > 0 {
					input = machine.Value(queues[i][0])
				}

				result, err := mc.Execute(input)

				if err != nil {
					return 0, fmt.Errorf("amplifier %d: %w", i, err)
				}

				if result.Consumed {
					queues[i] = queues[i][1:]
					progress = true
				}

				if result.Kind == machine.OutputProduced {
					progress = true

					if i == n-1 {
						signal, produced = result.Value, true

						if a.Feedback {
							queues[0] = append(queues[0], result.Value)
						}
					} else {
						queues[i+1] = append(queues[i+1], result.Value)
					}

					continue
				}

				if result.Kind == machine.Halted {
					progress = true
					break
				}

				if len(queues[i]) == 0 {
					break
				}
			}
		}

		if halted == n {
			break
		}

		if !progress {
			return 0, ErrStarved
		}
	}

	if !produced {
		return 0, ErrNoSignal
	}

	return signal, nil
}
