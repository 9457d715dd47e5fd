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
	"fmt"

	"golang.org/x/exp/slices"
)

// New returns a machine ready to execute program from its first word. The
// program is copied; the caller keeps ownership of the slice.
func New(program []int64) *Machine {
	return &Machine{
		State: MachineState{Memory: slices.Clone(program)},
	}
}

// Restore returns a machine that resumes from a saved state.
func Restore(state MachineState) *Machine {
	mc := &Machine{State: state}
	mc.State.Memory = slices.Clone(state.Memory)
	return mc
}

// Clone deep-copies the machine. The debugger is not carried over.
func (mc *Machine) Clone() *Machine {
	clone := Restore(mc.State)
	clone.Cycles = mc.Cycles
	clone.Yields = mc.Yields
	clone.fault = mc.fault
	return clone
}

func (mc *Machine) Halted() bool {
	return mc.State.Halted
}

// Err returns the fault that stopped the machine, if any.
func (mc *Machine) Err() error {
	return mc.fault
}

func (mc *MachineState) Reset(program []int64) {
	mc.Memory = slices.Clone(program)
	mc.Program = 0
	mc.Relative = 0
	mc.Halted = false
}

// Peek reads a cell without notifying the debugger. Cells past the end of
// memory and negative addresses read as zero.
func (mc *MachineState) Peek(addr int64) int64 {
	if addr < 0 || addr >= int64(len(mc.Memory)) {
		return 0
	}

	return mc.Memory[addr]
}

// Poke stores a cell from outside the instruction stream, growing memory
// the way a write instruction would, up to MEMORY_LIMIT.
func (mc *MachineState) Poke(addr, value int64) error {
	if addr < 0 {
		return fmt.Errorf("poke %d: %w", addr, ErrNegativeAddress)
	}

	if addr >= MEMORY_LIMIT {
		return fmt.Errorf("poke %d: %w", addr, ErrAddressOutOfRange)
	}

	if n := int64(len(mc.Memory)); addr >= n {
		mc.Memory = append(mc.Memory, make([]int64, addr-n+1)...)
	}

	mc.Memory[addr] = value
	return nil
}

// Step decodes and executes a single instruction.
//
// An input instruction with no input available leaves the machine exactly
// as it was and reports WaitingForInput, so the same instruction is retried
// by the next call.
func (mc *Machine) Step(input Input) (result Yield, err error) {
	if mc.fault != nil {
		return Yield{}, mc.fault
	}

	if mc.State.Halted {
		return Yield{Kind: Halted}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(*Fault)
			if !ok {
				panic(r)
			}

			mc.fault = fault
			result, err = Yield{}, fault
		}
	}()

	mc.current = mc.State.Program

	op, err := Decode(mc.State.Memory, &mc.State.Program)

	if err != nil {
		panic(err)
	}

	switch op.Code {
	case OP_HALT:
		mc.State.Program = mc.current
		mc.State.Halted = true
		return Yield{Kind: Halted}, nil

	case OP_IN:
		if !input.Valid {
			mc.State.Program = mc.current
			return Yield{Kind: WaitingForInput}, nil
		}

		mc.store(op.Params[0], input.Value)
		result = Yield{Kind: Continued, Consumed: true}

	case OP_OUT:
		result = Yield{Kind: OutputProduced, Value: mc.load(op.Params[0])}

	default:
		mc.exec(op)
		result = Yield{Kind: Continued}
	}

	mc.Cycles++

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return result, nil
}

func (mc *Machine) exec(op Op) {
	lhs, rhs, dest := op.Params[0], op.Params[1], op.Params[2]

	switch op.Code {
	case OP_ADD:
		mc.store(dest, mc.load(lhs)+mc.load(rhs))

	case OP_MUL:
		mc.store(dest, mc.load(lhs)*mc.load(rhs))

	case OP_JT:
		if mc.load(lhs) != 0 {
			mc.State.Program = int(mc.load(rhs))
		}

	case OP_JF:
		if mc.load(lhs) == 0 {
			mc.State.Program = int(mc.load(rhs))
		}

	case OP_LT:
		mc.store(dest, boolWord(mc.load(lhs) < mc.load(rhs)))

	case OP_EQ:
		mc.store(dest, boolWord(mc.load(lhs) == mc.load(rhs)))

	case OP_RB:
		// The base itself may go negative, only resolved addresses are
		// checked.
		mc.State.Relative += mc.load(lhs)

	default:
		panic(fmt.Sprintf("machine: %s has no executor", op.Code))
	}
}

// Execute runs instructions until the machine halts, blocks on input or
// produces an output. The input is offered until an instruction consumes
// it; later input instructions in the same burst block.
func (mc *Machine) Execute(input Input) (Yield, error) {
	mc.Yields++

	consumed := false

	for {
		result, err := mc.Step(input)

		if err != nil {
			return result, err
		}

		if result.Consumed {
			consumed = true
			input = NoInput
		}

		if result.Kind != Continued {
			result.Consumed = consumed
			return result, nil
		}
	}
}

// Run drives the machine against hal until it halts, powers down or fails.
func (mc *Machine) Run(ctx context.Context, hal Hal) error {
	pending := NoInput

	for n := uint64(1); hal.Powered(); n++ {
		if n%CANCEL_INTERVAL == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		result, err := mc.Step(pending)

		if err != nil {
			return err
		}

		switch result.Kind {
		case Halted:
			return nil

		case WaitingForInput:
			value, err := hal.Input(ctx)

			if err != nil {
				return fmt.Errorf("input at instruction %d: %w", mc.State.Program, err)
			}

			pending = Value(value)

		case OutputProduced:
			if err := hal.Output(ctx, result.Value); err != nil {
				return fmt.Errorf("output at instruction %d: %w", mc.current, err)
			}

		case Continued:
			if result.Consumed {
				pending = NoInput
			}
		}
	}

	return nil
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}

	return 0
}
