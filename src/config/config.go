/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config reads synthesizer settings from YAML.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"adf4351/src/adf4351"
	"adf4351/src/refclock"
)

type Reference struct {
	Frequency uint32 `yaml:"frequency"`
	R         uint16 `yaml:"r"`
	Doubler   bool   `yaml:"doubler"`
	Half      bool   `yaml:"half"`
	HighPFD   bool   `yaml:"high_pfd"`
}

type Output struct {
	Power    uint8  `yaml:"power"`
	AuxPower uint8  `yaml:"aux_power"`
	AuxMode  string `yaml:"aux_mode"` // divided or fundamental
}

type Precision struct {
	Enabled   bool          `yaml:"enabled"`
	Tolerance uint32        `yaml:"tolerance"`
	Timeout   time.Duration `yaml:"timeout"`
	Search    string        `yaml:"search"` // linear or continued-fraction
}

// Si5351 configures an optional Si5351 that generates the reference.
type Si5351 struct {
	Enabled bool    `yaml:"enabled"`
	Crystal float64 `yaml:"crystal"`
	Output  uint8   `yaml:"output"`
}

type Sweep struct {
	Start string        `yaml:"start"`
	Stop  string        `yaml:"stop"`
	Step  string        `yaml:"step"`
	Dwell time.Duration `yaml:"dwell"`
}

type Config struct {
	Frequency   string    `yaml:"frequency"`
	Reference   Reference `yaml:"reference"`
	ChannelStep uint32    `yaml:"channel_step"`
	Output      Output    `yaml:"output"`
	Precision   Precision `yaml:"precision"`
	Si5351      Si5351    `yaml:"si5351"`
	Sweep       Sweep     `yaml:"sweep,omitempty"`
}

// Default matches the power-on state of the chip, with the RF output on at
// full power.
func Default() Config {
	return Config{
		Reference: Reference{
			Frequency: adf4351.RefDefault,
			R:         1,
		},
		ChannelStep: adf4351.ChanStepDefault,
		Output: Output{
			Power:   adf4351.MaxPower,
			AuxMode: "divided",
		},
		Precision: Precision{
			Search: "linear",
		},
		Si5351: Si5351{
			Crystal: 25e6,
		},
	}
}

// Parse reads YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "config: failed to parse YAML")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: failed to read file")
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, errors.WithMessage(err, path)
	}
	return c, nil
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks every setting against the device limits.
func (c Config) Validate() error {
	if _, err := c.State(); err != nil {
		return err
	}
	if _, err := auxMode(c.Output.AuxMode); err != nil {
		return err
	}
	if _, err := search(c.Precision.Search); err != nil {
		return err
	}
	if c.Output.Power > adf4351.MaxPower || c.Output.AuxPower > adf4351.MaxPower {
		return errors.Errorf("config: power levels %d/%d above %d", c.Output.Power, c.Output.AuxPower, adf4351.MaxPower)
	}
	if c.Precision.Timeout < 0 {
		return errors.Errorf("config: negative timeout %v", c.Precision.Timeout)
	}
	if c.Si5351.Enabled && (c.Si5351.Crystal < refclock.XtalMin || c.Si5351.Crystal > refclock.XtalMax) {
		return errors.Errorf("config: Si5351 crystal %.0f Hz outside [%.0f, %.0f]", c.Si5351.Crystal, refclock.XtalMin, refclock.XtalMax)
	}
	return nil
}

func (c Config) ReferencePath() adf4351.ReferencePath {
	r := c.Reference
	return adf4351.ReferencePath{Freq: r.Frequency, R: r.R, Doubler: r.Doubler, Half: r.Half, HighPFD: r.HighPFD}
}

// State returns the device state for the reference and channel step.
func (c Config) State() (adf4351.DeviceState, error) {
	s, _, err := adf4351.NewDeviceState().PlanReference(c.ReferencePath())
	if err != nil {
		return s, errors.WithMessage(err, "config: reference")
	}
	// precision mode does not use the channel step
	if c.Precision.Enabled && c.ChannelStep == 0 {
		return s, nil
	}
	s, err = s.WithChannelStep(c.ChannelStep)
	if err != nil {
		return s, errors.WithMessage(err, "config: channel_step")
	}
	return s, nil
}

// Request returns a plan request for frequency f with the configured
// output and precision settings.
func (c Config) Request(f string) adf4351.Request {
	mode, _ := auxMode(c.Output.AuxMode)
	alg, _ := search(c.Precision.Search)
	return adf4351.Request{
		Frequency: f,
		Power:     c.Output.Power,
		AuxPower:  c.Output.AuxPower,
		AuxMode:   mode,
		Precision: c.Precision.Enabled,
		Tolerance: c.Precision.Tolerance,
		Timeout:   c.Precision.Timeout,
		Search:    alg,
	}
}

func auxMode(s string) (adf4351.AuxMode, error) {
	switch s {
	case "", "divided":
		return adf4351.AuxDivided, nil
	case "fundamental":
		return adf4351.AuxFundamental, nil
	}
	return 0, errors.Errorf("config: unknown aux_mode %q", s)
}

func search(s string) (adf4351.Search, error) {
	switch s {
	case "", "linear":
		return adf4351.SearchLinear, nil
	case "continued-fraction":
		return adf4351.SearchContinuedFraction, nil
	}
	return 0, errors.Errorf("config: unknown search %q", s)
}
