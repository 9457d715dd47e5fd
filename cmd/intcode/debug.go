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

package main

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/lassandro/gointcode/pkg/debugger"
	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/machine"
)

var lastcmd []string

func debugBreak(dbg *debugger.Debugger, args []string) {
	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [addr]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := encoding.DecodeAddr(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if dbg.AddBreakpoint(int(addr)) {
			fmt.Printf("Breakpoint added [%04d]\n", addr)
		}

	case "l", "ls", "list":
		const usage = "break list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Breakpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%d\n", int64(digits)+1)
		}

		for i, breakpoint := range dbg.Breakpoints {
			log.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if err := dbg.RemoveBreakpoint(i); err != nil {
			log.Println("Invalid breakpoint number")
			return
		}

		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|rm]"

	if len(args) == 0 {
		log.Println(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [addr] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := encoding.DecodeAddr(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [%04d] (%s)\n", addr, wtype)
		}

	case "l", "ls", "list":
		const usage = "watch list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Watchpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%d %%s\n", int64(digits)+1)
		}

		for i, watchpoint := range dbg.Watchpoints {
			log.Printf(fmtstring, i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if err := dbg.RemoveWatchpoint(i); err != nil {
			log.Println("Invalid watchpoint number")
			return
		}

		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = nil
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
	}
}

func debugState(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "state [IP|RB] [value]"

	if len(args) == 0 {
		dbg.PrintState(mc)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeAddr(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	args[0] = strings.ToUpper(args[0])

	switch args[0] {
	case "IP":
		mc.State.Program = int(value)
	case "RB":
		mc.State.Relative = value
	default:
		log.Println("Invalid register")
		return
	}

	fmt.Printf("\033[1m%s:\033[0m %d\n", args[0], value)
}

// Parses the optional [addr] [count] arguments shared by the listing
// commands. A lone bare number is taken as a count from the default.
func debugRange(args []string, addr, count int64) (int64, int64, bool) {
	if len(args) > 2 {
		return 0, 0, false
	}

	if len(args) > 0 {
		value, err := encoding.DecodeAddr(args[0])

		if err != nil {
			log.Println(err)
			return 0, 0, false
		}

		if len(args) == 1 && !strings.ContainsAny(args[0], "xX#") {
			count = value
		} else {
			addr = value
		}
	}

	if len(args) > 1 {
		value, err := strconv.ParseInt(args[1], 10, 64)

		if err != nil {
			log.Println(err)
			return 0, 0, false
		}

		count = value
	}

	return addr, count, true
}

func debugOps(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "ops [0x####|#addr] [#]"

	addr, count, ok := debugRange(args, int64(mc.Program), 3)

	if !ok {
		log.Println(usage)
		return
	}

	dbg.PrintOps(mc, int(addr), int(count))
}

func debugJump(mc *machine.MachineState, args []string) {
	const usage = "jump [addr]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := encoding.DecodeAddr(args[0])

	if err != nil || addr < 0 {
		fmt.Printf("Unable to jump to '%s'\n", args[0])
		return
	}

	mc.Program = int(addr)
	fmt.Printf("\033[1mIP:\033[0m %d\n", addr)
}

func debugMemory(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "memory [0x####|#addr] [#]"

	addr, count, ok := debugRange(args, int64(mc.Program), 1)

	if !ok {
		log.Println(usage)
		return
	}

	dbg.PrintMem(mc, addr, count)
}

func debugSet(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "set [addr] [value]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := encoding.DecodeAddr(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeAddr(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	if err := mc.Poke(addr, value); err != nil {
		log.Println(err)
		return
	}

	dbg.PrintMem(mc, addr, 1)
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		line, err := stdin.ReadString('\n')

		if err != nil && line == "" {
			fmt.Println()
			shouldexit = true
			return
		}

		args := strings.Fields(line)

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "state":
			debugState(dbg, mc, args)

		case "o", "ops", "dis", "disassemble":
			debugOps(dbg, &mc.State, args)

		case "j", "jmp", "jump":
			debugJump(&mc.State, args)

		case "m", "mem", "memory":
			debugMemory(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, &mc.State, args)

		case "c", "continue":
			dbg.Break = false
			return

		case "n", "next":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			shouldexit = true
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			mc.State.Reset(dbg.Program)
			dbg.PrintState(mc)

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break {
		fmt.Println()
		fmt.Println("Program stopped")
		dbg.PrintOps(&mc.State, mc.State.Program, 8)
	} else {
		dbg.PrintOps(&mc.State, mc.State.Program, 1)
	}
	debugREPL(dbg, mc)
}

func handleRead(addr int64, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

func handleWrite(addr int64, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}
