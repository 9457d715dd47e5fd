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

package encoding

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrEmptyProgram = errors.New("empty program")

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, -0xFF
func DecodeHex(s string) (int64, error) {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	return strconv.ParseInt(sign+s, 0, 64)
}

// Decodes a base-10 string in the formats: #123, 123, -123
func DecodeInt(s string) (int64, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	return strconv.ParseInt(s, 10, 64)
}

// Decodes either a hexidecimal or a base-10 string
func DecodeAddr(s string) (int64, error) {
	if strings.ContainsAny(s, "xX") {
		return DecodeHex(s)
	}

	return DecodeInt(s)
}

// Decodes a program of comma-separated signed integers. Whitespace around
// each value, including a trailing newline, is ignored.
func DecodeProgram(s string) ([]int64, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return nil, ErrEmptyProgram
	}

	fields := strings.Split(s, ",")
	program := make([]int64, 0, len(fields))

	for i, field := range fields {
		field = strings.TrimSpace(field)

		if field == "" && i == len(fields)-1 {
			break
		}

		value, err := strconv.ParseInt(field, 10, 64)

		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}

		program = append(program, value)
	}

	return program, nil
}

func ReadProgram(reader io.Reader) ([]int64, error) {
	data, err := io.ReadAll(reader)

	if err != nil {
		return nil, err
	}

	return DecodeProgram(string(data))
}

func EncodeProgram(program []int64) string {
	var sb strings.Builder

	for i, value := range program {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(value, 10))
	}

	return sb.String()
}
