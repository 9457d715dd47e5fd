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

	"golang.org/x/sync/errgroup"

	"github.com/lassandro/gointcode/pkg/device"
	"github.com/lassandro/gointcode/pkg/machine"
)

// Droid movement commands.
const (
	North int64 = 1
	South int64 = 2
	West  int64 = 3
	East  int64 = 4
)

// Droid status replies.
const (
	StatusWall   int64 = 0
	StatusOpen   int64 = 1
	StatusOxygen int64 = 2
)

var ErrNoStatus = errors.New("droid halted without reporting a status")

var directions = map[int64]Point{
	North: {0, -1},
	South: {0, 1},
	West:  {-1, 0},
	East:  {1, 0},
}

// Commands in the order they are tried from each cell.
var commands = []int64{North, South, West, East}

// Probe sends one movement command to a copy of mc and runs it until its
// first output. mc itself is untouched; the copy, left just past the
// output, is returned with the status.
func Probe(
	ctx context.Context,
	mc *machine.Machine,
	command int64,
) (int64, *machine.Machine, error) {
	return move(ctx, mc.Clone(), command)
}

// move runs mc in place until it answers command.
func move(
	ctx context.Context,
	mc *machine.Machine,
	command int64,
) (int64, *machine.Machine, error) {
	in, out := device.NewWire(1), device.NewWire(1)

	if err := in.Send(ctx, command); err != nil {
		return 0, nil, err
	}
	in.Close()

	err := mc.Run(ctx, device.NewPowerDownOnOutput(in, out))
	out.Close()

	if err != nil {
		return 0, nil, fmt.Errorf("probe %d: %w", command, err)
	}

	status, err := out.Recv(ctx)

	if errors.Is(err, device.ErrWireClosed) {
		return 0, nil, ErrNoStatus
	}

	if err != nil {
		return 0, nil, err
	}

	return status, mc, nil
}

// Maze is the part of the area the droid could reach. Cells maps every
// probed position to its status. Spilled is the most frontier entries that
// were held encoded at once.
type Maze struct {
	Cells   map[Point]int64
	Oxygen  Point
	Found   bool
	Spilled int
}

type probeNode struct {
	Pos   Point
	State machine.MachineState
}

type probeTask struct {
	Pos     Point
	Parent  machine.MachineState
	Command int64

	Status int64
	Next   *machine.Machine
}

// Explore maps the maze from the starting cell. Each round pops at most
// FrontierLimit cells and probes their unvisited neighbours on a bounded
// worker pool, so at most that many parent states plus their moves are in
// memory while the rest of the frontier stays spilled. With no limit a
// round is a whole breadth first level. Distances are measured over the
// finished map, so the order cells are probed in does not matter.
func Explore(
	ctx context.Context,
	program []int64,
	settings Settings,
) (*Maze, error) {
	maze := &Maze{Cells: map[Point]int64{{}: StatusOpen}}
	visited := map[Point]bool{{}: true}

	frontier := NewFrontier[probeNode](settings.FrontierLimit)

	err := frontier.Push(probeNode{
		State: machine.New(program).State,
	})

	if err != nil {
		return nil, err
	}

	for round := 0; frontier.Len() > 0; round++ {
		chunk := frontier.Len()

		if settings.FrontierLimit > 0 {
			chunk = min(chunk, settings.FrontierLimit)
		}

		var pending []probeTask

		for i := 0; i < chunk; i++ {
			node, _, err := frontier.Pop()

			if err != nil {
				return nil, err
			}

			for _, command := range commands {
				next := node.Pos.Add(directions[command])

				if visited[next] {
					continue
				}

				visited[next] = true
				pending = append(pending, probeTask{
					Pos:     next,
					Parent:  node.State,
					Command: command,
				})
			}
		}

		eg, ctx := errgroup.WithContext(ctx)
		eg.SetLimit(settings.workers())

		for i := range pending {
			eg.Go(func() error {
				task := &pending[i]

				status, next, err := move(
					ctx,
					machine.Restore(task.Parent),
					task.Command,
				)

				if err != nil {
					return fmt.Errorf("explore %v: %w", task.Pos, err)
				}

				task.Status, task.Next = status, next
				return nil
			})
		}

		if err := eg.Wait(); err != nil {
			return nil, err
		}

		for _, result := range pending {
			maze.Cells[result.Pos] = result.Status

			switch result.Status {
			case StatusWall:
				continue
			case StatusOxygen:
				maze.Oxygen, maze.Found = result.Pos, true
			case StatusOpen:
			default:
				return nil, fmt.Errorf(
					"explore %v: invalid status %d",
					result.Pos,
					result.Status,
				)
			}

			err := frontier.Push(probeNode{
				Pos:   result.Pos,
				State: result.Next.State,
			})

			if err != nil {
				return nil, err
			}
		}

		maze.Spilled = max(maze.Spilled, frontier.Spilled())

		log.Debugf(
			"explore: round %d probed %d cells, %d spilled",
			round,
			len(pending),
			frontier.Spilled(),
		)
	}

	return maze, nil
}

func (m *Maze) Open(p Point) bool {
	status, ok := m.Cells[p]
	return ok && status != StatusWall
}

// distances returns the step count from start to every reachable cell.
func (m *Maze) distances(start Point) map[Point]int {
	dist := map[Point]int{start: 0}
	queue := []Point{start}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for _, command := range commands {
			next := p.Add(directions[command])

			if _, seen := dist[next]; seen || !m.Open(next) {
				continue
			}

			dist[next] = dist[p] + 1
			queue = append(queue, next)
		}
	}

	return dist
}

// Distance is the fewest moves from the starting cell to the oxygen system.
func (m *Maze) Distance() (int, bool) {
	if !m.Found {
		return 0, false
	}

	d, ok := m.distances(Point{})[m.Oxygen]
	return d, ok
}

// FillTime is the number of minutes oxygen takes to reach every open cell
// when it spreads one cell per minute from the oxygen system.
func (m *Maze) FillTime() (int, bool) {
	if !m.Found {
		return 0, false
	}

	fill := 0

	for _, d := range m.distances(m.Oxygen) {
		fill = max(fill, d)
	}

	return fill, true
}
