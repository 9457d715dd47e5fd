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

type Opcode int64

const (
	OP_ADD  Opcode = 1
	OP_MUL  Opcode = 2
	OP_IN   Opcode = 3
	OP_OUT  Opcode = 4
	OP_JT   Opcode = 5
	OP_JF   Opcode = 6
	OP_LT   Opcode = 7
	OP_EQ   Opcode = 8
	OP_RB   Opcode = 9
	OP_HALT Opcode = 99
)

type Mode int64

const (
	MODE_POSITION  Mode = 0
	MODE_IMMEDIATE Mode = 1
	MODE_RELATIVE  Mode = 2
)

// Instruction words carry the opcode in the two low decimal digits and one
// mode digit per operand above them.
const (
	OPCODE_RADIX = 100
	MODE_RADIX   = 10
)

// How many instructions run between context checks in Run.
const CANCEL_INTERVAL = 1 << 12

// Memory never grows to this many words or more.
const MEMORY_LIMIT = 1 << 24

// Arity is the number of operands that follow the opcode word.
func (op Opcode) Arity() int {
	switch op {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		return 3
	case OP_JT, OP_JF:
		return 2
	case OP_IN, OP_OUT, OP_RB:
		return 1
	default:
		return 0
	}
}

func (op Opcode) Valid() bool {
	switch op {
	case OP_ADD, OP_MUL, OP_IN, OP_OUT, OP_JT, OP_JF, OP_LT, OP_EQ, OP_RB,
		OP_HALT:
		return true
	}

	return false
}

func (op Opcode) String() string {
	switch op {
	case OP_ADD:
		return "add"
	case OP_MUL:
		return "mul"
	case OP_IN:
		return "in"
	case OP_OUT:
		return "out"
	case OP_JT:
		return "jt"
	case OP_JF:
		return "jf"
	case OP_LT:
		return "lt"
	case OP_EQ:
		return "eq"
	case OP_RB:
		return "rb"
	case OP_HALT:
		return "halt"
	default:
		return "?unknown?"
	}
}

func (m Mode) Valid() bool {
	return m == MODE_POSITION || m == MODE_IMMEDIATE || m == MODE_RELATIVE
}
