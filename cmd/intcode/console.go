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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/machine"
)

// Highest value printed as a character in ASCII mode.
const asciiMax = 0x7f

var errEndOfInput = errors.New("end of input")

// console exchanges values with the terminal, one number per line or one
// character per value in ASCII mode. Preset values are handed out first.
type console struct {
	In     *bufio.Reader
	Out    *bufio.Writer
	ASCII  bool
	Preset []int64
	Prompt bool

	line []int64
}

var _ machine.Hal = (*console)(nil)

func (con *console) Input(ctx context.Context) (int64, error) {
	if len(con.Preset) > 0 {
		value := con.Preset[0]
		con.Preset = con.Preset[1:]
		return value, nil
	}

	if err := con.Out.Flush(); err != nil {
		return 0, err
	}

	if con.ASCII {
		return con.readChar()
	}

	return con.readNumber()
}

func (con *console) readChar() (int64, error) {
	if len(con.line) == 0 {
		text, err := con.In.ReadString('\n')

		if len(text) == 0 && err != nil {
			return 0, eof(err)
		}

		for _, r := range text {
			con.line = append(con.line, int64(r))
		}
	}

	value := con.line[0]
	con.line = con.line[1:]
	return value, nil
}

func (con *console) readNumber() (int64, error) {
	for {
		if con.Prompt {
			fmt.Print("> ")
		}

		text, err := con.In.ReadString('\n')
		text = strings.TrimSpace(text)

		if text == "" {
			if err != nil {
				return 0, eof(err)
			}
			continue
		}

		value, perr := encoding.DecodeAddr(text)

		if perr == nil {
			return value, nil
		}

		if !con.Prompt {
			return 0, fmt.Errorf("'%s' is not a number", text)
		}

		fmt.Printf("'%s' is not a number\n", text)
	}
}

func (con *console) Output(ctx context.Context, value int64) error {
	if con.ASCII && value >= 0 && value <= asciiMax {
		return con.Out.WriteByte(byte(value))
	}

	if con.ASCII {
		fmt.Fprintln(con.Out)
	}

	_, err := fmt.Fprintln(con.Out, value)
	return err
}

func (con *console) Powered() bool {
	return !shouldexit
}

func eof(err error) error {
	if errors.Is(err, io.EOF) {
		return errEndOfInput
	}

	return err
}
