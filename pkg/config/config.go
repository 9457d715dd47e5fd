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

// Package config handles intcode.toml runner configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lassandro/gointcode/pkg/harness"
)

const FileName = "intcode.toml"

type Config struct {
	Log     Log     `toml:"log"`
	Harness Harness `toml:"harness"`

	// Path of the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

type Harness struct {
	WireCapacity  int      `toml:"wire-capacity"`
	Workers       int      `toml:"workers"`
	FrontierLimit int      `toml:"frontier-limit"`
	Backoff       Duration `toml:"backoff"`
	Timeout       Duration `toml:"timeout"`
}

// Duration reads Go duration strings such as "1ms" or "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))

	if err != nil {
		return err
	}

	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	return &Config{
		Log: Log{Verbosity: 1},
		Harness: Harness{
			WireCapacity:  1,
			Workers:       4,
			FrontierLimit: 100000,
			Backoff:       Duration{time.Millisecond},
			Timeout:       Duration{30 * time.Second},
		},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()

	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Path = path

	return c, nil
}

// FindAndLoad walks up from startDir looking for intcode.toml. The
// defaults are returned when no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)

	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)

		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)

		if parent == dir {
			return Default(), nil
		}

		dir = parent
	}
}

func (c *Config) Settings() harness.Settings {
	return harness.Settings{
		WireCapacity:  c.Harness.WireCapacity,
		Workers:       c.Harness.Workers,
		FrontierLimit: c.Harness.FrontierLimit,
		Backoff:       c.Harness.Backoff.Duration,
	}
}

// LogFile is the commonlog output path, nil for stderr.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}

	return &c.Log.File
}
