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

// Package harness wires machines together as communicating processes over
// bounded wires: amplifier chains, a painting robot, an arcade cabinet with
// an optional controller, and a maze explorer.
package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/lassandro/gointcode/pkg/machine"
)

var log = commonlog.GetLogger("intcode.harness")

// Settings shared by every harness. The zero value is usable.
type Settings struct {
	WireCapacity  int
	Workers       int
	FrontierLimit int
	Backoff       time.Duration
}

func (s Settings) wireCapacity(seeds int) int {
	return max(s.WireCapacity, seeds, 1)
}

func (s Settings) workers() int {
	if s.Workers < 1 {
		return 1
	}

	return s.Workers
}

func (s Settings) backoff() time.Duration {
	if s.Backoff <= 0 {
		return time.Millisecond
	}

	return s.Backoff
}

// Task is one machine bound to its ports. Closers are closed once the
// machine stops for any reason, so readers downstream see ErrWireClosed
// rather than blocking forever.
type Task struct {
	Name    string
	Machine *machine.Machine
	Hal     machine.Hal
	Closers []io.Closer
}

// Run executes the task on the calling goroutine.
func (t *Task) Run(ctx context.Context, run string) (err error) {
	defer func() {
		for _, c := range t.Closers {
			c.Close()
		}
	}()

	log.Debugf("%s: %s started", run, t.Name)

	err = t.Machine.Run(ctx, t.Hal)

	if err != nil {
		log.Errorf("%s: %s stopped: %s", run, t.Name, err.Error())
		return fmt.Errorf("%s: %w", t.Name, err)
	}

	log.Debugf(
		"%s: %s stopped after %d cycles",
		run,
		t.Name,
		t.Machine.Cycles,
	)

	return nil
}

// Group runs tasks and helper goroutines under one errgroup. The first
// failure cancels the shared context.
type Group struct {
	ID string

	eg  *errgroup.Group
	ctx context.Context
}

func NewGroup(ctx context.Context) *Group {
	eg, ctx := errgroup.WithContext(ctx)
	return &Group{ID: uuid.NewString(), eg: eg, ctx: ctx}
}

func (g *Group) Context() context.Context {
	return g.ctx
}

func (g *Group) Start(t *Task) {
	g.eg.Go(func() error {
		return t.Run(g.ctx, g.ID)
	})
}

func (g *Group) Go(f func(ctx context.Context) error) {
	g.eg.Go(func() error {
		return f(g.ctx)
	})
}

func (g *Group) Wait() error {
	return g.eg.Wait()
}
