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
	"errors"
	"testing"

	"github.com/lassandro/gointcode/pkg/machine"
)

func TestDecodeArity(t *testing.T) {
	arity := map[machine.Opcode]int{
		machine.OP_ADD:  3,
		machine.OP_MUL:  3,
		machine.OP_IN:   1,
		machine.OP_OUT:  1,
		machine.OP_JT:   2,
		machine.OP_JF:   2,
		machine.OP_LT:   3,
		machine.OP_EQ:   3,
		machine.OP_RB:   1,
		machine.OP_HALT: 0,
	}

	modes := []int64{0, 1, 2}

	for code, want := range arity {
		for _, a := range modes {
			for _, b := range modes {
				for _, c := range modes {
					word := int64(code) + 100*a + 1000*b + 10000*c
					memory := []int64{word, 11, 22, 33, 44}
					ip := 0

					op, err := machine.Decode(memory, &ip)

					if err != nil {
						t.Fatalf("Decode %d\nwant:no error\nhave:%v", word, err)
					}

					if op.Code != code || len(op.Args()) != want || ip != 1+want {
						t.Fatalf(
							"Decode %d mismatch"+
								"\nwant:%s with %d operands, ip=%d"+
								"\nhave:%s with %d operands, ip=%d",
							word,
							code,
							want,
							1+want,
							op.Code,
							len(op.Args()),
							ip,
						)
					}

					for i, param := range op.Args() {
						wantMode := machine.Mode([]int64{a, b, c}[i])

						if param.Mode != wantMode || param.Value != memory[1+i] {
							t.Errorf(
								"Operand %d of %d mismatch"+
									"\nwant:mode %d value %d\nhave:mode %d value %d",
								i,
								word,
								wantMode,
								memory[1+i],
								param.Mode,
								param.Value,
							)
						}
					}
				}
			}
		}
	}
}

func TestDecodeOffset(t *testing.T) {
	memory := []int64{99, 1006, 7, 3}
	ip := 1

	op, err := machine.Decode(memory, &ip)

	if err != nil {
		t.Fatal(err)
	}

	if op.Code != machine.OP_JF || ip != 4 {
		t.Fatalf("Decode mismatch\nwant:jf, ip=4\nhave:%s, ip=%d", op.Code, ip)
	}

	// Operand words past the end of memory read as zero.
	ip = 0
	op, err = machine.Decode([]int64{1101, 5}, &ip)

	if err != nil {
		t.Fatal(err)
	}

	if op.Params[1].Value != 0 || op.Params[2].Value != 0 || ip != 4 {
		t.Errorf("Short decode mismatch\nhave:%v, ip=%d", op, ip)
	}
}

func TestDecodeMalformed(t *testing.T) {
	// 30001 is an add whose third operand has mode 3.
	for _, word := range []int64{0, 10, 98, 100, 342, 304, -1, 30001} {
		ip := 0
		memory := []int64{word, 0, 0, 0}

		_, err := machine.Decode(memory, &ip)

		if !errors.Is(err, machine.ErrMalformedProgram) {
			t.Errorf("Decode %d\nwant:%v\nhave:%v", memory[0], machine.ErrMalformedProgram, err)
		}

		if ip != 0 {
			t.Errorf("Decode %d moved the cursor\nwant:0\nhave:%d", memory[0], ip)
		}
	}
}

func TestOpString(t *testing.T) {
	tests := map[string][]int64{
		"add [4], #3, ~-1": {21001, 4, 3, -1},
		"out #7":           {104, 7},
		"jf [1], ~2":       {2006, 1, 2},
		"halt":             {99},
	}

	for want, memory := range tests {
		ip := 0
		op, err := machine.Decode(memory, &ip)

		if err != nil {
			t.Fatal(err)
		}

		if have := op.String(); have != want {
			t.Errorf("Disassembly mismatch\nwant:%s\nhave:%s", want, have)
		}
	}
}
