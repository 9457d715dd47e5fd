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

package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/lassandro/gointcode/pkg/machine"
)

type Point struct {
	X, Y int64
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

const (
	ColorBlack int64 = 0
	ColorWhite int64 = 1

	TurnLeft  int64 = 0
	TurnRight int64 = 1
)

// Hull is the robot's view of the ship's side. It is the machine's port:
// input is the colour under the robot, outputs alternate between a colour
// to paint and a turn, after which the robot steps forward.
type Hull struct {
	Panels  map[Point]int64
	Robot   Point
	Heading Point

	start int64
	turn  bool
}

var _ machine.Hal = (*Hull)(nil)

func NewHull(start int64) *Hull {
	return &Hull{
		Panels:  map[Point]int64{},
		Heading: Point{0, -1},
		start:   start,
	}
}

// Color reports the colour of a panel. Unpainted panels are black except
// the starting one.
func (h *Hull) Color(p Point) int64 {
	if color, ok := h.Panels[p]; ok {
		return color
	}

	if p == (Point{}) {
		return h.start
	}

	return ColorBlack
}

func (h *Hull) Input(ctx context.Context) (int64, error) {
	return h.Color(h.Robot), nil
}

func (h *Hull) Output(ctx context.Context, value int64) error {
	defer func() { h.turn = !h.turn }()

	if !h.turn {
		if value != ColorBlack && value != ColorWhite {
			return fmt.Errorf("invalid colour %d", value)
		}

		h.Panels[h.Robot] = value
		return nil
	}

	switch value {
	case TurnLeft:
		h.Heading = Point{h.Heading.Y, -h.Heading.X}
	case TurnRight:
		h.Heading = Point{-h.Heading.Y, h.Heading.X}
	default:
		return fmt.Errorf("invalid turn %d", value)
	}

	h.Robot = h.Robot.Add(h.Heading)
	return nil
}

func (h *Hull) Powered() bool {
	return true
}

// Painted counts panels painted at least once.
func (h *Hull) Painted() int {
	return len(h.Panels)
}

// Render draws the white panels as '#' on a '.' background, framed to
// include the starting panel.
func (h *Hull) Render() string {
	lo, hi := Point{}, Point{}

	for p := range h.Panels {
		if h.Color(p) != ColorWhite {
			continue
		}

		lo = Point{min(lo.X, p.X), min(lo.Y, p.Y)}
		hi = Point{max(hi.X, p.X), max(hi.Y, p.Y)}
	}

	var sb strings.Builder

	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			if h.Color(Point{x, y}) == ColorWhite {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Paint runs the robot program over a hull whose starting panel has the
// given colour.
func Paint(ctx context.Context, program []int64, start int64) (*Hull, error) {
	hull := NewHull(start)

	if err := machine.New(program).Run(ctx, hull); err != nil {
		return hull, fmt.Errorf("painter: %w", err)
	}

	return hull, nil
}
