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

package machine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lassandro/gointcode/pkg/machine"
)

type testCase struct {
	Name    string
	Program []int64
	Inputs  []int64
	Outputs []int64
	// Expected prefix of memory after the machine halts.
	Memory []int64
}

// execute drives mc with a trampoline until it halts, feeding inputs one at
// a time whenever the machine asks for one.
func execute(t *testing.T, mc *machine.Machine, inputs []int64) []int64 {
	t.Helper()

	var outputs []int64
	pending := machine.NoInput

	for {
		result, err := mc.Execute(pending)

		if err != nil {
			t.Fatalf("Unexpected fault\nhave:%v", err)
		}

		if result.Consumed {
			pending = machine.NoInput
		}

		switch result.Kind {
		case machine.Halted:
			return outputs

		case machine.WaitingForInput:
			if len(inputs) == 0 {
				t.Fatalf(
					"Insufficient input\nhave:%d outputs so far", len(outputs),
				)
			}

			pending = machine.Value(inputs[0])
			inputs = inputs[1:]

		case machine.OutputProduced:
			outputs = append(outputs, result.Value)

		default:
			t.Fatalf("Unexpected yield from Execute\nhave:%s", result.Kind)
		}
	}
}

func testMachineSuccess(t *testing.T, test *testCase) {
	mc := machine.New(test.Program)
	outputs := execute(t, mc, test.Inputs)

	if !mc.Halted() {
		t.Error("Machine did not halt")
	}

	if test.Outputs != nil {
		if len(outputs) != len(test.Outputs) {
			t.Fatalf(
				"Output count mismatch"+
					"\nwant:%v (test.Outputs)\nhave:%v",
				test.Outputs,
				outputs,
			)
		}

		for i, want := range test.Outputs {
			if outputs[i] != want {
				t.Errorf(
					"Output mismatch"+
						"\nwant:%d (test.Outputs[%d])\nhave:%d",
					want,
					i,
					outputs[i],
				)
			}
		}
	}

	for i, want := range test.Memory {
		if i >= len(mc.State.Memory) {
			t.Fatalf(
				"Memory too short\nwant:len>%d\nhave:len=%d",
				i,
				len(mc.State.Memory),
			)
		}

		if have := mc.State.Memory[i]; have != want {
			t.Errorf(
				"Memory value mismatch"+
					"\nwant:%d (test.Memory[%d])\nhave:%d",
				want,
				i,
				have,
			)
		}
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testMachineSuccess(t, &test)
			})
		}
	})
}

func TestArithmetic(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:    "ADD Position",
			Program: []int64{1, 0, 0, 0, 99},
			Memory:  []int64{2, 0, 0, 0, 99},
		},
		{
			Name:    "MUL Position",
			Program: []int64{2, 3, 0, 3, 99},
			Memory:  []int64{2, 3, 0, 6, 99},
		},
		{
			Name:    "MUL Past Halt",
			Program: []int64{2, 4, 4, 5, 99, 0},
			Memory:  []int64{2, 4, 4, 5, 99, 9801},
		},
		{
			Name:    "ADD Overwrites Next Instruction",
			Program: []int64{1, 1, 1, 4, 99, 5, 6, 0, 99},
			Memory:  []int64{30, 1, 1, 4, 2, 5, 6, 0, 99},
		},
		{
			Name:    "ADD MUL Chain",
			Program: []int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50},
			Memory:  []int64{3500, 9, 10, 70, 2, 3, 11, 0, 99, 30, 40, 50},
		},
		{
			Name:    "MUL Immediate",
			Program: []int64{1002, 4, 3, 4, 33},
			Memory:  []int64{1002, 4, 3, 4, 99},
		},
		{
			Name:    "ADD Negative Immediate",
			Program: []int64{1101, 100, -1, 4, 0},
			Memory:  []int64{1101, 100, -1, 4, 99},
		},
		{
			Name:    "MUL Large",
			Program: []int64{1102, 34915192, 34915192, 7, 4, 7, 99, 0},
			Outputs: []int64{1219070632396864},
		},
	})
}

func TestInputOutput(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:    "Echo",
			Program: []int64{3, 0, 4, 0, 99},
			Inputs:  []int64{42},
			Outputs: []int64{42},
			Memory:  []int64{42, 0, 4, 0, 99},
		},
		{
			Name:    "Large Literal",
			Program: []int64{104, 1125899906842624, 99},
			Outputs: []int64{1125899906842624},
		},
		{
			Name:    "No Output",
			Program: []int64{99},
			Outputs: []int64{},
		},
	})
}

func TestCompare(t *testing.T) {
	const (
		eqPosition = iota
		ltPosition
		eqImmediate
		ltImmediate
	)

	programs := [][]int64{
		eqPosition:  {3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8},
		ltPosition:  {3, 9, 7, 9, 10, 9, 4, 9, 99, -1, 8},
		eqImmediate: {3, 3, 1108, -1, 8, 3, 4, 3, 99},
		ltImmediate: {3, 3, 1107, -1, 8, 3, 4, 3, 99},
	}

	testSuccess(t, []testCase{
		{
			Name:    "EQ Position Equal",
			Program: programs[eqPosition],
			Inputs:  []int64{8},
			Outputs: []int64{1},
		},
		{
			Name:    "EQ Position Unequal",
			Program: programs[eqPosition],
			Inputs:  []int64{7},
			Outputs: []int64{0},
		},
		{
			Name:    "LT Position Less",
			Program: programs[ltPosition],
			Inputs:  []int64{-3},
			Outputs: []int64{1},
		},
		{
			Name:    "LT Position Equal",
			Program: programs[ltPosition],
			Inputs:  []int64{8},
			Outputs: []int64{0},
		},
		{
			Name:    "EQ Immediate Equal",
			Program: programs[eqImmediate],
			Inputs:  []int64{8},
			Outputs: []int64{1},
		},
		{
			Name:    "LT Immediate Greater",
			Program: programs[ltImmediate],
			Inputs:  []int64{9},
			Outputs: []int64{0},
		},
	})
}

func TestJump(t *testing.T) {
	position := []int64{3, 12, 6, 12, 15, 1, 13, 14, 13, 4, 13, 99, -1, 0, 1, 9}
	immediate := []int64{3, 3, 1105, -1, 9, 1101, 0, 0, 12, 4, 12, 99, 1}
	compare := []int64{
		3, 21, 1008, 21, 8, 20, 1005, 20, 22, 107, 8, 21, 20, 1006, 20, 31,
		1106, 0, 36, 98, 0, 0, 1002, 21, 125, 20, 4, 20, 1105, 1, 46, 104,
		999, 1105, 1, 46, 1101, 1000, 1, 20, 4, 20, 1105, 1, 46, 98, 99,
	}

	testSuccess(t, []testCase{
		{
			Name:    "JF Position Zero",
			Program: position,
			Inputs:  []int64{0},
			Outputs: []int64{0},
		},
		{
			Name:    "JF Position Nonzero",
			Program: position,
			Inputs:  []int64{5},
			Outputs: []int64{1},
		},
		{
			Name:    "JT Immediate Zero",
			Program: immediate,
			Inputs:  []int64{0},
			Outputs: []int64{0},
		},
		{
			Name:    "JT Immediate Negative",
			Program: immediate,
			Inputs:  []int64{-7},
			Outputs: []int64{1},
		},
		{
			Name:    "Compare Below",
			Program: compare,
			Inputs:  []int64{7},
			Outputs: []int64{999},
		},
		{
			Name:    "Compare Equal",
			Program: compare,
			Inputs:  []int64{8},
			Outputs: []int64{1000},
		},
		{
			Name:    "Compare Above",
			Program: compare,
			Inputs:  []int64{9},
			Outputs: []int64{1001},
		},
	})
}

func TestRelative(t *testing.T) {
	quine := []int64{
		109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99,
	}

	testSuccess(t, []testCase{
		{
			Name:    "Quine",
			Program: quine,
			Outputs: quine,
		},
	})

	t.Run("RoundTrip", func(t *testing.T) {
		for _, bk := range [][2]int64{
			{0, 0}, {1, 10}, {2000, -1990}, {-5, 10}, {50, 0}, {-100, 100},
		} {
			base, offset := bk[0], bk[1]

			// rb base; add #77, #0 -> ~offset; out ~offset; halt
			program := []int64{
				109, base,
				21101, 77, 0, offset,
				204, offset,
				99,
			}

			mc := machine.New(program)
			outputs := execute(t, mc, nil)

			if len(outputs) != 1 || outputs[0] != 77 {
				t.Errorf(
					"Relative round trip mismatch (base %d, offset %d)"+
						"\nwant:[77]\nhave:%v",
					base,
					offset,
					outputs,
				)
			}

			if mc.State.Relative != base {
				t.Errorf(
					"Relative base mismatch\nwant:%d\nhave:%d",
					base,
					mc.State.Relative,
				)
			}
		}
	})

	t.Run("LazyValidation", func(t *testing.T) {
		// A negative base is fine as long as no resolved address is.
		mc := machine.New([]int64{109, -5, 204, 10, 99})
		outputs := execute(t, mc, nil)

		if len(outputs) != 1 || outputs[0] != 0 {
			t.Errorf("Output mismatch\nwant:[0]\nhave:%v", outputs)
		}

		mc = machine.New([]int64{109, -5, 204, 1, 99})
		_, err := mc.Execute(machine.NoInput)

		var fault *machine.Fault

		if !errors.As(err, &fault) || !errors.Is(err, machine.ErrNegativeAddress) {
			t.Fatalf("Fault mismatch\nwant:%v\nhave:%v", machine.ErrNegativeAddress, err)
		}

		if fault.Addr != -4 || fault.IP != 2 {
			t.Errorf(
				"Fault location mismatch\nwant:addr -4 at 2\nhave:addr %d at %d",
				fault.Addr,
				fault.IP,
			)
		}
	})
}

func TestMemoryGrowth(t *testing.T) {
	t.Run("Read", func(t *testing.T) {
		mc := machine.New([]int64{4, 1000, 204, 5000, 99})
		outputs := execute(t, mc, nil)

		if len(outputs) != 2 || outputs[0] != 0 || outputs[1] != 0 {
			t.Errorf("Output mismatch\nwant:[0 0]\nhave:%v", outputs)
		}

		if have := len(mc.State.Memory); have != 5 {
			t.Errorf("Memory grew on read\nwant:len=5\nhave:len=%d", have)
		}
	})

	t.Run("Write", func(t *testing.T) {
		mc := machine.New([]int64{1101, 7, 0, 1000, 99})
		execute(t, mc, nil)

		if have := len(mc.State.Memory); have != 1001 {
			t.Fatalf("Memory length mismatch\nwant:len=1001\nhave:len=%d", have)
		}

		if have := mc.State.Memory[1000]; have != 7 {
			t.Errorf("Memory value mismatch\nwant:7\nhave:%d", have)
		}

		for i := 5; i < 1000; i++ {
			if have := mc.State.Memory[i]; have != 0 {
				t.Fatalf(
					"Memory unexpectedly changed\nwant:0 ([%d])\nhave:%d", i, have,
				)
			}
		}
	})
}

func TestSelfModifying(t *testing.T) {
	// add [5], [6] -> [2] rewrites the instruction's own third operand word.
	program := []int64{1, 5, 6, 2, 99, 7, 8}
	mc := machine.New(program)

	result, err := mc.Step(machine.NoInput)

	if err != nil || result.Kind != machine.Continued {
		t.Fatalf("Step mismatch\nwant:continued\nhave:%v, %v", result.Kind, err)
	}

	for i, before := range program {
		have := mc.State.Memory[i]

		if i == 2 {
			if have != 15 {
				t.Errorf("Memory value mismatch\nwant:15 ([2])\nhave:%d", have)
			}
		} else if have != before {
			t.Errorf(
				"Memory unexpectedly changed\nwant:%d ([%d])\nhave:%d",
				before,
				i,
				have,
			)
		}
	}

	if program[2] != 6 {
		t.Error("Machine wrote through to the caller's program slice")
	}
}

func TestSuspendResume(t *testing.T) {
	mc := machine.New([]int64{3, 0, 4, 0, 99})

	for i := 0; i < 3; i++ {
		result, err := mc.Execute(machine.NoInput)

		if err != nil || result.Kind != machine.WaitingForInput {
			t.Fatalf(
				"Yield mismatch\nwant:waiting for input\nhave:%s, %v",
				result.Kind,
				err,
			)
		}

		if result.Consumed {
			t.Error("Input reported consumed with no input offered")
		}

		if mc.State.Program != 0 || mc.State.Memory[0] != 3 || mc.Cycles != 0 {
			t.Fatalf(
				"Blocked input had side effects\nhave:ip=%d mem[0]=%d cycles=%d",
				mc.State.Program,
				mc.State.Memory[0],
				mc.Cycles,
			)
		}
	}

	result, err := mc.Execute(machine.Value(42))

	if err != nil || result.Kind != machine.OutputProduced || result.Value != 42 {
		t.Fatalf("Yield mismatch\nwant:output 42\nhave:%+v, %v", result, err)
	}

	if !result.Consumed {
		t.Error("Input not reported consumed")
	}

	for i := 0; i < 2; i++ {
		result, err = mc.Execute(machine.NoInput)

		if err != nil || result.Kind != machine.Halted {
			t.Fatalf("Yield mismatch\nwant:halted\nhave:%s, %v", result.Kind, err)
		}
	}

	if mc.State.Program != 4 {
		t.Errorf("Halted machine moved\nwant:ip=4\nhave:ip=%d", mc.State.Program)
	}

	if mc.Cycles != 2 || mc.Yields != 6 {
		t.Errorf(
			"Statistics mismatch\nwant:cycles=2 yields=6\nhave:cycles=%d yields=%d",
			mc.Cycles,
			mc.Yields,
		)
	}
}

func TestSingleInputPerBurst(t *testing.T) {
	mc := machine.New([]int64{3, 0, 3, 1, 99})

	result, err := mc.Execute(machine.Value(1))

	if err != nil || result.Kind != machine.WaitingForInput || !result.Consumed {
		t.Fatalf(
			"Yield mismatch\nwant:waiting for input, consumed\nhave:%+v, %v",
			result,
			err,
		)
	}

	if mc.State.Program != 2 {
		t.Errorf("Program mismatch\nwant:2\nhave:%d", mc.State.Program)
	}
}

func TestFault(t *testing.T) {
	tests := []struct {
		Name    string
		Program []int64
		Input   machine.Input
		Want    error
	}{
		{"Unknown Opcode", []int64{42}, machine.NoInput, machine.ErrMalformedProgram},
		{"Empty Program", []int64{}, machine.NoInput, machine.ErrMalformedProgram},
		{"Negative Opcode", []int64{-1}, machine.NoInput, machine.ErrMalformedProgram},
		{"Unknown Mode", []int64{301, 0, 0, 0, 99}, machine.NoInput, machine.ErrMalformedProgram},
		{"Write Immediate", []int64{11101, 1, 1, 0, 99}, machine.NoInput, machine.ErrInvalidWriteTarget},
		{"Input Immediate", []int64{103, 0, 99}, machine.Value(1), machine.ErrInvalidWriteTarget},
		{"Negative Position", []int64{1, -1, 0, 0, 99}, machine.NoInput, machine.ErrNegativeAddress},
		{"Negative Jump", []int64{1105, 1, -3}, machine.NoInput, machine.ErrNegativeAddress},
		{"Huge Write", []int64{1101, 1, 1, 1 << 62, 99}, machine.NoInput, machine.ErrAddressOutOfRange},
		{"Write At Limit", []int64{1101, 1, 1, machine.MEMORY_LIMIT, 99}, machine.NoInput, machine.ErrAddressOutOfRange},
		{"Huge Input", []int64{3, 1 << 40, 99}, machine.Value(7), machine.ErrAddressOutOfRange},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			mc := machine.New(test.Program)

			_, err := mc.Execute(test.Input)

			if !errors.Is(err, test.Want) {
				t.Fatalf("Fault mismatch\nwant:%v\nhave:%v", test.Want, err)
			}

			var fault *machine.Fault
			if !errors.As(err, &fault) {
				t.Fatalf("Fault type mismatch\nwant:*machine.Fault\nhave:%T", err)
			}

			// A faulted machine stays dead.
			if _, again := mc.Step(machine.Value(0)); again != err {
				t.Errorf("Fault not sticky\nwant:%v\nhave:%v", err, again)
			}

			if mc.Err() != err {
				t.Errorf("Err mismatch\nwant:%v\nhave:%v", err, mc.Err())
			}
		})
	}
}

func TestClone(t *testing.T) {
	mc := machine.New([]int64{3, 10, 4, 10, 99})

	if result, _ := mc.Execute(machine.NoInput); result.Kind != machine.WaitingForInput {
		t.Fatalf("Yield mismatch\nwant:waiting for input\nhave:%s", result.Kind)
	}

	clone := mc.Clone()
	outputs := execute(t, clone, []int64{5})

	if len(outputs) != 1 || outputs[0] != 5 {
		t.Errorf("Clone output mismatch\nwant:[5]\nhave:%v", outputs)
	}

	if len(mc.State.Memory) != 5 || mc.State.Program != 0 || mc.Halted() {
		t.Errorf(
			"Clone shared state with original\nhave:len=%d ip=%d halted=%v",
			len(mc.State.Memory),
			mc.State.Program,
			mc.Halted(),
		)
	}

	outputs = execute(t, mc, []int64{6})

	if len(outputs) != 1 || outputs[0] != 6 {
		t.Errorf("Original output mismatch\nwant:[6]\nhave:%v", outputs)
	}
}

type testHal struct {
	inputs    []int64
	outputs   []int64
	powerDown bool
}

func (h *testHal) Input(ctx context.Context) (int64, error) {
	if len(h.inputs) == 0 {
		return 0, errors.New("no input")
	}

	value := h.inputs[0]
	h.inputs = h.inputs[1:]
	return value, nil
}

func (h *testHal) Output(ctx context.Context, value int64) error {
	h.outputs = append(h.outputs, value)
	return nil
}

func (h *testHal) Powered() bool {
	return !h.powerDown || len(h.outputs) == 0
}

func TestRun(t *testing.T) {
	t.Run("Halt", func(t *testing.T) {
		hal := &testHal{inputs: []int64{2, 3}}
		// in [20]; in [21]; mul [20], [21] -> [20]; out [20]; halt
		mc := machine.New([]int64{3, 20, 3, 21, 2, 20, 21, 20, 4, 20, 99})

		if err := mc.Run(context.Background(), hal); err != nil {
			t.Fatalf("Unexpected error\nhave:%v", err)
		}

		if len(hal.outputs) != 1 || hal.outputs[0] != 6 {
			t.Errorf("Output mismatch\nwant:[6]\nhave:%v", hal.outputs)
		}
	})

	t.Run("PowerDown", func(t *testing.T) {
		hal := &testHal{powerDown: true}
		mc := machine.New([]int64{104, 1, 104, 2, 99})

		if err := mc.Run(context.Background(), hal); err != nil {
			t.Fatalf("Unexpected error\nhave:%v", err)
		}

		if len(hal.outputs) != 1 || mc.Halted() || mc.State.Program != 2 {
			t.Errorf(
				"Power down mismatch\nwant:1 output, ip=2\nhave:%v, ip=%d",
				hal.outputs,
				mc.State.Program,
			)
		}
	})

	t.Run("InputError", func(t *testing.T) {
		mc := machine.New([]int64{3, 0, 99})

		if err := mc.Run(context.Background(), &testHal{}); err == nil {
			t.Fatal("Expected input error")
		}

		if mc.State.Program != 0 {
			t.Errorf("Program mismatch\nwant:0\nhave:%d", mc.State.Program)
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		mc := machine.New([]int64{1105, 1, 0})

		if err := mc.Run(ctx, &testHal{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("Error mismatch\nwant:%v\nhave:%v", context.Canceled, err)
		}
	})
}

func TestFaultOutOfRangeLocation(t *testing.T) {
	mc := machine.New([]int64{1101, 1, 1, 1 << 62, 99})

	_, err := mc.Step(machine.NoInput)

	var fault *machine.Fault
	if !errors.As(err, &fault) || !errors.Is(err, machine.ErrAddressOutOfRange) {
		t.Fatalf("Fault mismatch\nwant:%v\nhave:%v", machine.ErrAddressOutOfRange, err)
	}

	if fault.Addr != 1<<62 || fault.IP != 0 || fault.Word != 1101 {
		t.Errorf(
			"Fault location mismatch\nwant:addr %d at 0\nhave:addr %d at %d",
			int64(1<<62),
			fault.Addr,
			fault.IP,
		)
	}

	if len(mc.State.Memory) != 5 {
		t.Errorf("Memory grew\nwant:5\nhave:%d", len(mc.State.Memory))
	}
}
