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

// Package device provides the input and output ports a machine can be
// attached to: fixed input lists, output buffers, bounded wires between
// machines, and decorators over those.
package device

import (
	"context"
	"errors"
	"sync"

	"github.com/lassandro/gointcode/pkg/machine"
)

var (
	ErrInputExhausted = errors.New("input exhausted")
	ErrWireClosed     = errors.New("wire closed")
)

var (
	_ machine.Hal          = (*Combined)(nil)
	_ machine.Hal          = (*PowerDownOnOutput)(nil)
	_ machine.InputDevice  = (*Slice)(nil)
	_ machine.InputDevice  = (*Wire)(nil)
	_ machine.OutputDevice = (*Wire)(nil)
	_ machine.OutputDevice = (*Collector)(nil)
	_ machine.OutputDevice = (*Spy)(nil)
	_ machine.InputDevice  = InputFunc(nil)
	_ machine.OutputDevice = OutputFunc(nil)
)

// InputFunc adapts a function to an input port.
type InputFunc func(ctx context.Context) (int64, error)

func (f InputFunc) Input(ctx context.Context) (int64, error) {
	return f(ctx)
}

// OutputFunc adapts a function to an output port.
type OutputFunc func(ctx context.Context, value int64) error

func (f OutputFunc) Output(ctx context.Context, value int64) error {
	return f(ctx, value)
}

// Combined joins an input and an output port into an always powered Hal.
type Combined struct {
	In  machine.InputDevice
	Out machine.OutputDevice
}

func Combine(in machine.InputDevice, out machine.OutputDevice) *Combined {
	return &Combined{In: in, Out: out}
}

func (c *Combined) Input(ctx context.Context) (int64, error) {
	return c.In.Input(ctx)
}

func (c *Combined) Output(ctx context.Context, value int64) error {
	return c.Out.Output(ctx, value)
}

func (c *Combined) Powered() bool {
	return true
}

// Slice hands out a fixed list of values in order.
type Slice struct {
	values []int64
}

func NewSlice(values ...int64) *Slice {
	return &Slice{values: values}
}

func (s *Slice) Input(ctx context.Context) (int64, error) {
	if len(s.values) == 0 {
		return 0, ErrInputExhausted
	}

	value := s.values[0]
	s.values = s.values[1:]
	return value, nil
}

func (s *Slice) Remaining() int {
	return len(s.values)
}

// Collector appends every output it receives.
type Collector struct {
	Values []int64
}

func (c *Collector) Output(ctx context.Context, value int64) error {
	c.Values = append(c.Values, value)
	return nil
}

// Spy records the latest value passing through to Device. Latest may be
// called from other goroutines while the machine runs.
type Spy struct {
	Device machine.OutputDevice

	mu     sync.Mutex
	latest int64
	seen   bool
}

func NewSpy(device machine.OutputDevice) *Spy {
	return &Spy{Device: device}
}

func (s *Spy) Output(ctx context.Context, value int64) error {
	s.mu.Lock()
	s.latest, s.seen = value, true
	s.mu.Unlock()

	return s.Device.Output(ctx, value)
}

func (s *Spy) Latest() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.seen
}

// PowerDownOnOutput switches the machine off right after its first output,
// leaving it resumable from the following instruction.
type PowerDownOnOutput struct {
	In  machine.InputDevice
	Out machine.OutputDevice

	off bool
}

func NewPowerDownOnOutput(
	in machine.InputDevice, out machine.OutputDevice,
) *PowerDownOnOutput {
	return &PowerDownOnOutput{In: in, Out: out}
}

func (p *PowerDownOnOutput) Input(ctx context.Context) (int64, error) {
	return p.In.Input(ctx)
}

func (p *PowerDownOnOutput) Output(ctx context.Context, value int64) error {
	p.off = true
	return p.Out.Output(ctx, value)
}

func (p *PowerDownOnOutput) Powered() bool {
	return !p.off
}
