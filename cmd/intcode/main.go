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
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/lassandro/gointcode/pkg/config"
	"github.com/lassandro/gointcode/pkg/debugger"
	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/harness"
	"github.com/lassandro/gointcode/pkg/machine"

	_ "github.com/tliron/commonlog/simple"
)

var helpvar bool
var debugvar bool
var asciivar bool
var feedbackvar bool
var configvar string
var inputvar string
var modevar string
var phasesvar string

var shouldexit bool

var stdin = bufio.NewReader(os.Stdin)

var logger = commonlog.GetLogger("intcode.cli")

const usage = "intcode [-config file] [-debug] [-ascii] [-input 1,2] " +
	"[-mode run|amplify|paint|arcade|explore] [-phases 5,6,7,8,9] " +
	"[-feedback] filename"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(&asciivar, "ascii", false, "Exchanges characters instead of numbers")
	flag.BoolVar(&feedbackvar, "feedback", false, "Loops the last amplifier back to the first")
	flag.StringVar(&configvar, "config", "", "Reads settings from this file")
	flag.StringVar(&inputvar, "input", "", "Values fed to the program before standard input")
	flag.StringVar(&modevar, "mode", "run", "One of run, amplify, paint, arcade, explore")
	flag.StringVar(&phasesvar, "phases", "0,1,2,3,4", "Amplifier phase settings to search")
	flag.Parse()
}

func loadConfig() (*config.Config, error) {
	if configvar != "" {
		return config.Load(configvar)
	}

	return config.FindAndLoad(".")
}

func intcode() int {
	if helpvar {
		fmt.Println(usage)
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	cfg, err := loadConfig()

	if err != nil {
		log.Println(err)
		return 1
	}

	commonlog.Configure(cfg.Log.Verbosity, cfg.LogFile())

	if cfg.Path != "" {
		logger.Infof("configuration read from %s", cfg.Path)
	}

	file, err := os.Open(args[0])

	if err != nil {
		log.Println(err)
		return 1
	}

	program, err := encoding.ReadProgram(file)
	file.Close()

	if err != nil {
		log.Printf("%s: %s", args[0], err)
		return 1
	}

	var preset []int64

	if inputvar != "" {
		if preset, err = encoding.DecodeProgram(inputvar); err != nil {
			log.Printf("-input: %s", err)
			return 1
		}
	}

	switch modevar {
	case "run":
		err = runConsole(context.Background(), program, preset)

	case "amplify", "paint", "arcade", "explore":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if cfg.Harness.Timeout.Duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Harness.Timeout.Duration)
			defer cancel()
		}

		err = runHarness(ctx, cfg.Settings(), program, preset)

	default:
		log.Printf("'%s' is not a valid mode", modevar)
		return 1
	}

	if err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

func runConsole(ctx context.Context, program []int64, preset []int64) error {
	mc := machine.New(program)

	con := &console{
		In:     stdin,
		Out:    bufio.NewWriter(os.Stdout),
		ASCII:  asciivar,
		Preset: preset,
		Prompt: isTerminal(os.Stdin) && !asciivar,
	}

	defer con.Out.Flush()

	if debugvar {
		dbg := &debugger.Debugger{
			Program:     program,
			HandleBreak: handleBreak,
			HandleRead:  handleRead,
			HandleWrite: handleWrite,
		}

		mc.Debugger = dbg

		// Interrupts break into the debugger instead of stopping the run.
		c := make(chan os.Signal, 1)
		defer signal.Stop(c)

		signal.Notify(c, os.Interrupt)
		go func() {
			for range c {
				fmt.Println()
				dbg.Break = true
			}
		}()

		debugREPL(dbg, mc)
	}

	if err := mc.Run(ctx, con); err != nil {
		return err
	}

	logger.Infof(
		"stopped at instruction %d after %d cycles",
		mc.State.Program,
		mc.Cycles,
	)

	return nil
}

func runHarness(
	ctx context.Context,
	settings harness.Settings,
	program []int64,
	preset []int64,
) error {
	first := int64(0)

	if len(preset) > 0 {
		first = preset[0]
	}

	switch modevar {
	case "amplify":
		phases, err := encoding.DecodeProgram(phasesvar)

		if err != nil {
			return fmt.Errorf("-phases: %w", err)
		}

		amps := harness.Amplifiers{
			Program:  program,
			Signal:   first,
			Feedback: feedbackvar,
			Settings: settings,
		}

		best, order, err := amps.Best(ctx, phases)

		if err != nil {
			return err
		}

		fmt.Printf("%d (phases %s)\n", best, encoding.EncodeProgram(order))

	case "paint":
		hull, err := harness.Paint(ctx, program, first)

		if err != nil {
			return err
		}

		fmt.Printf("%d panels painted\n", hull.Painted())
		fmt.Print(hull.Render())

	case "arcade":
		arcade := &harness.Arcade{
			Program:    program,
			Quarters:   first,
			Controller: first != 0,
			Settings:   settings,
		}

		if err := arcade.Run(ctx); err != nil {
			return err
		}

		fmt.Printf(
			"%d blocks, score %d\n",
			arcade.Count(harness.TileBlock),
			arcade.State().Score,
		)

	case "explore":
		maze, err := harness.Explore(ctx, program, settings)

		if err != nil {
			return err
		}

		distance, ok := maze.Distance()

		if !ok {
			return errors.New("oxygen system not found")
		}

		fill, _ := maze.FillTime()
		fmt.Printf("%d moves to oxygen, %d minutes to fill\n", distance, fill)
	}

	return nil
}

func main() {
	os.Exit(intcode())
}

