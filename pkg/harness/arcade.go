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
	"maps"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/lassandro/gointcode/pkg/device"
	"github.com/lassandro/gointcode/pkg/machine"
)

type Tile int64

const (
	TileEmpty Tile = iota
	TileWall
	TileBlock
	TilePaddle
	TileBall
)

// Position of the score in the output stream.
var scorePoint = Point{-1, 0}

type Screen map[Point]Tile

type GameState struct {
	Ball   Point
	Paddle Point
	Score  int64
	Quit   bool

	// Set once the tile has been drawn.
	HasBall   bool
	HasPaddle bool
}

// Arcade runs a game cabinet: the game program draws (x, y, tile) triples
// onto a screen, and a controller, if enabled, steers the paddle towards
// the ball through a joystick wire.
type Arcade struct {
	Program []int64

	// Written to address 0 before the game starts when non-zero.
	Quarters   int64
	Controller bool
	Settings   Settings

	mu     sync.RWMutex
	screen Screen
	state  GameState
}

func (a *Arcade) Run(ctx context.Context) error {
	a.mu.Lock()
	a.screen = Screen{}
	a.state = GameState{}
	a.mu.Unlock()

	program := slices.Clone(a.Program)

	if a.Quarters != 0 && len(program) > 0 {
		program[0] = a.Quarters
	}

	video := device.NewWire(a.Settings.wireCapacity(3))

	var joystick machine.InputDevice = device.NewSlice()
	var stick *device.Wire

	if a.Controller {
		stick = device.NewWire(a.Settings.wireCapacity(1))
		joystick = stick
	}

	group := NewGroup(ctx)

	group.Start(&Task{
		Name:    "arcade",
		Machine: machine.New(program),
		Hal:     device.Combine(joystick, video),
		Closers: []io.Closer{video},
	})

	group.Go(func(ctx context.Context) error {
		return a.display(ctx, video)
	})

	if stick != nil {
		group.Go(func(ctx context.Context) error {
			return a.control(ctx, stick)
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("arcade: %w", err)
	}

	return nil
}

func (a *Arcade) display(ctx context.Context, video *device.Wire) error {
	defer func() {
		a.mu.Lock()
		a.state.Quit = true
		a.mu.Unlock()
	}()

	var triple [3]int64

	for {
		for i := range triple {
			value, err := video.Recv(ctx)

			if errors.Is(err, device.ErrWireClosed) {
				if i != 0 {
					return fmt.Errorf("display: truncated draw command")
				}
				return nil
			}

			if err != nil {
				return err
			}

			triple[i] = value
		}

		a.draw(Point{triple[0], triple[1]}, triple[2])
	}
}

func (a *Arcade) draw(p Point, value int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if p == scorePoint {
		a.state.Score = value
		return
	}

	tile := Tile(value)
	a.screen[p] = tile

	switch tile {
	case TileBall:
		a.state.Ball, a.state.HasBall = p, true
	case TilePaddle:
		a.state.Paddle, a.state.HasPaddle = p, true
	}
}

// Moves the paddle towards the ball whenever the joystick has room,
// otherwise waits a backoff. Nothing is sent until both are on screen.
func (a *Arcade) control(ctx context.Context, stick *device.Wire) error {
	defer stick.Close()

	for {
		state := a.State()

		if state.Quit {
			return nil
		}

		if !stick.Full() && state.HasBall && state.HasPaddle {
			if err := stick.Send(ctx, sign(state.Ball.X-state.Paddle.X)); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.Settings.backoff()):
		}
	}
}

func (a *Arcade) State() GameState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *Arcade) Screen() Screen {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.screen)
}

func (a *Arcade) Count(tile Tile) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	count := 0

	for _, t := range a.screen {
		if t == tile {
			count++
		}
	}

	return count
}

func sign(v int64) int64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
