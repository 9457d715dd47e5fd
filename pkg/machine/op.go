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
	"strings"
)

type Op struct {
	Code   Opcode
	Params [3]Param
}

// Args returns the operands the opcode actually uses.
func (op Op) Args() []Param {
	return op.Params[:op.Code.Arity()]
}

func (op Op) String() string {
	var sb strings.Builder

	sb.WriteString(op.Code.String())

	for i, param := range op.Args() {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(param.String())
	}

	return sb.String()
}

// Decode reads the instruction at *ip and advances *ip past it. Words past
// the end of memory read as zero.
//
// |  ...  | C | B | A | opcode |
// ---------------------------------
// A, B, C select the mode of the first, second and third operand.
func Decode(memory []int64, ip *int) (Op, error) {
	start := *ip

	if start < 0 {
		return Op{}, &Fault{Err: ErrNegativeAddress, IP: start, Addr: int64(start)}
	}

	fetch := func() int64 {
		addr := *ip
		*ip++

		if addr >= len(memory) {
			return 0
		}

		return memory[addr]
	}

	word := fetch()
	op := Op{Code: Opcode(word % OPCODE_RADIX)}

	if !op.Code.Valid() {
		*ip = start
		return Op{}, &Fault{Err: ErrMalformedProgram, IP: start, Word: word}
	}

	modes := word / OPCODE_RADIX

	for i := 0; i < op.Code.Arity(); i++ {
		mode := Mode(modes % MODE_RADIX)
		modes /= MODE_RADIX

		if !mode.Valid() {
			*ip = start
			return Op{}, &Fault{Err: ErrMalformedProgram, IP: start, Word: word}
		}

		op.Params[i] = Param{Mode: mode, Value: fetch()}
	}

	return op, nil
}
