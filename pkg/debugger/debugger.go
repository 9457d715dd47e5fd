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

package debugger

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lassandro/gointcode/pkg/machine"
)

var ErrNoSuchPoint = errors.New("no such breakpoint or watchpoint")

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr int64, mc *machine.Machine) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr int64, mc *machine.Machine) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// AddBreakpoint reports false if one already exists at addr.
func (dbg *Debugger) AddBreakpoint(addr int) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

func (dbg *Debugger) RemoveBreakpoint(i int) error {
	if i < 0 || i >= len(dbg.Breakpoints) {
		return ErrNoSuchPoint
	}

	dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
	dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
	return nil
}

// AddWatchpoint reports false if an identical watchpoint exists.
func (dbg *Debugger) AddWatchpoint(addr int64, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

func (dbg *Debugger) RemoveWatchpoint(i int) error {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return ErrNoSuchPoint
	}

	dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
	dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
	return nil
}

func (dbg *Debugger) out() io.Writer {
	if dbg.Out == nil {
		return os.Stdout
	}

	return dbg.Out
}

// PrintOps disassembles count instructions starting at addr, marking the
// instruction pointer. Words that do not decode are listed as data.
func (dbg *Debugger) PrintOps(mc *machine.MachineState, addr, count int) {
	w := dbg.out()

	for i := 0; i < count && addr < len(mc.Memory); i++ {
		start := addr

		if start == mc.Program {
			fmt.Fprintf(w, "\033[1m[%04d]\033[0m> ", start)
		} else {
			fmt.Fprintf(w, "\033[1m[%04d]\033[0m  ", start)
		}

		op, err := machine.Decode(mc.Memory, &addr)

		if err != nil {
			fmt.Fprintf(w, "\033[1;30m%d\033[0m\n", mc.Memory[start])
			addr = start + 1
			continue
		}

		fmt.Fprintln(w, op)
	}
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count int64) {
	w := dbg.out()

	for i := addr; i < addr+count; i++ {
		if i == addr {
			fmt.Fprintf(w, "\033[1m[%04d]\033[0m ", i)
		} else if (i-addr)%4 == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "\033[1m[%04d]\033[0m ", i)
		}

		result := mc.Peek(i)

		if result == 0 {
			fmt.Fprintf(w, "\033[1;30m%d\033[0m ", result)
		} else {
			fmt.Fprintf(w, "%d ", result)
		}
	}

	fmt.Fprintln(w)
}

func (dbg *Debugger) PrintState(mc *machine.Machine) {
	fmt.Fprintf(
		dbg.out(),
		"\033[1mIP:\033[0m %d\t\033[1mRB:\033[0m %d\t"+
			"\033[1mCY:\033[0m %d\t\033[1mHALT:\033[0m %t\n",
		mc.State.Program,
		mc.State.Relative,
		mc.Cycles,
		mc.State.Halted,
	)
}
