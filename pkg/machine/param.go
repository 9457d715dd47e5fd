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
	"fmt"
)

// Param is one operand as it appears in the instruction stream. It is
// resolved against memory and the relative base every time it is used.
type Param struct {
	Mode  Mode
	Value int64
}

// Address is the memory cell the operand refers to. Immediate operands do
// not refer to memory.
func (p Param) Address(relative int64) (int64, bool) {
	switch p.Mode {
	case MODE_POSITION:
		return p.Value, true
	case MODE_RELATIVE:
		return relative + p.Value, true
	default:
		return 0, false
	}
}

func (p Param) String() string {
	switch p.Mode {
	case MODE_IMMEDIATE:
		return fmt.Sprintf("#%d", p.Value)
	case MODE_RELATIVE:
		return fmt.Sprintf("~%d", p.Value)
	default:
		return fmt.Sprintf("[%d]", p.Value)
	}
}

func (mc *Machine) load(p Param) int64 {
	addr, ok := p.Address(mc.State.Relative)

	if !ok {
		return p.Value
	}

	return mc.read(addr)
}

func (mc *Machine) store(p Param, value int64) {
	addr, ok := p.Address(mc.State.Relative)

	if !ok {
		panic(&Fault{
			Err:  ErrInvalidWriteTarget,
			IP:   mc.current,
			Word: mc.peek(mc.current),
			Addr: p.Value,
		})
	}

	mc.write(addr, value)
}

// peek reads without growing memory and without notifying the debugger.
func (mc *Machine) peek(addr int) int64 {
	if addr < 0 || addr >= len(mc.State.Memory) {
		return 0
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) read(addr int64) int64 {
	if addr < 0 {
		panic(mc.negative(addr))
	}

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	if addr >= int64(len(mc.State.Memory)) {
		return 0
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr int64, value int64) {
	if addr < 0 {
		panic(mc.negative(addr))
	}

	if addr >= MEMORY_LIMIT {
		panic(&Fault{
			Err:  ErrAddressOutOfRange,
			IP:   mc.current,
			Word: mc.peek(mc.current),
			Addr: addr,
		})
	}

	if n := int64(len(mc.State.Memory)); addr >= n {
		mc.State.Memory = append(
			mc.State.Memory, make([]int64, addr-n+1)...,
		)
	}

	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

func (mc *Machine) negative(addr int64) *Fault {
	return &Fault{
		Err:  ErrNegativeAddress,
		IP:   mc.current,
		Word: mc.peek(mc.current),
		Addr: addr,
	}
}
