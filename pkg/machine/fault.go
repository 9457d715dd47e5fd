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
	"errors"
	"fmt"
)

var (
	ErrMalformedProgram   = errors.New("malformed program")
	ErrInvalidWriteTarget = errors.New("invalid write target")
	ErrNegativeAddress    = errors.New("negative address")
	ErrAddressOutOfRange  = errors.New("address out of range")
)

// Fault is a fatal machine error. A machine that faulted never runs again.
type Fault struct {
	Err  error
	IP   int
	Word int64
	Addr int64
}

func (f *Fault) Error() string {
	switch {
	case errors.Is(f.Err, ErrNegativeAddress),
		errors.Is(f.Err, ErrAddressOutOfRange):
		return fmt.Sprintf("%s %d at instruction %d", f.Err, f.Addr, f.IP)
	case errors.Is(f.Err, ErrInvalidWriteTarget):
		return fmt.Sprintf(
			"%s: immediate %d at instruction %d", f.Err, f.Addr, f.IP,
		)
	default:
		return fmt.Sprintf("%s: word %d at instruction %d", f.Err, f.Word, f.IP)
	}
}

func (f *Fault) Unwrap() error {
	return f.Err
}
