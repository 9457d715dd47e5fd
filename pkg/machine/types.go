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

package machine

import (
	"context"
)

// InputDevice supplies the next input value, blocking if it has to.
type InputDevice interface {
	Input(ctx context.Context) (int64, error)
}

// OutputDevice accepts one output value, blocking if it has to.
type OutputDevice interface {
	Output(ctx context.Context, value int64) error
}

// Hal is the full device surface a running machine talks to. Run keeps
// executing only while Powered reports true.
type Hal interface {
	InputDevice
	OutputDevice
	Powered() bool
}

// MachineState is everything needed to resume a machine. It is plain data
// so it can be copied and encoded.
type MachineState struct {
	Memory   []int64
	Program  int
	Relative int64
	Halted   bool
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr int64, mc *Machine)
	Write(addr int64, mc *Machine)
}

type Machine struct {
	State    MachineState
	Debugger MachineDebugger

	// Instructions executed and execution bursts started.
	Cycles uint64
	Yields uint64

	// Address of the instruction being executed, for fault reports.
	current int
	fault   error
}

type YieldKind int

const (
	Halted YieldKind = iota
	WaitingForInput
	OutputProduced
	Continued
)

func (k YieldKind) String() string {
	switch k {
	case Halted:
		return "halted"
	case WaitingForInput:
		return "waiting for input"
	case OutputProduced:
		return "output"
	case Continued:
		return "continued"
	default:
		return "?unknown?"
	}
}

// Yield is the result of one execution burst. Value is only meaningful for
// OutputProduced. Consumed reports whether the offered input was stored.
type Yield struct {
	Kind     YieldKind
	Value    int64
	Consumed bool
}

// Input is an optional value offered to Step and Execute.
type Input struct {
	Value int64
	Valid bool
}

var NoInput = Input{}

func Value(v int64) Input {
	return Input{Value: v, Valid: true}
}
