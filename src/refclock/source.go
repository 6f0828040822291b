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

package refclock

import (
	"math"

	"github.com/pkg/errors"
)

// ClockGen is the part of an Si5351 driver a Source needs. PLL A feeds
// every output.
type ClockGen interface {
	Connected() (bool, error)
	Configure() error
	ConfigurePLL(mult uint8, num, denom uint32) error
	ConfigureMultisynth(output uint8, div, num, denom uint32) error
	EnableOutputs() error
}

// Source drives one Si5351 output as the synthesizer reference.
type Source struct {
	gen    ClockGen
	output uint8
	xtal   float64
	plan   Plan
}

func NewSource(gen ClockGen, output uint8, xtal float64) *Source {
	return &Source{gen: gen, output: output, xtal: xtal}
}

// Start checks that the chip answers and puts it in its initial state.
func (s *Source) Start() error {
	ok, err := s.gen.Connected()
	if err != nil {
		return errors.Wrap(err, "refclock: reading device status")
	}
	if !ok {
		return errors.New("refclock: Si5351 not found")
	}
	return errors.Wrap(s.gen.Configure(), "refclock: configure")
}

/*
Set programs the output to f Hz and returns the plan used. The output
divider R is not programmed, so f must be high enough for R = 1 (about
400 kHz with a 25 MHz crystal).
*/
func (s *Source) Set(f uint32) (Plan, error) {
	p, err := NewPlan(s.xtal, 0, float64(f))
	if err != nil {
		return Plan{}, err
	}
	if p.R != 1 {
		return Plan{}, errors.Errorf("refclock: %d Hz needs output divider %d", f, p.R)
	}
	if err := s.gen.ConfigurePLL(uint8(p.PLL.A), p.PLL.B, p.PLL.C); err != nil {
		return Plan{}, errors.Wrapf(err, "refclock: PLL %s", p.PLL)
	}
	if err := s.gen.ConfigureMultisynth(s.output, p.Multisynth.A, p.Multisynth.B, p.Multisynth.C); err != nil {
		return Plan{}, errors.Wrapf(err, "refclock: output %d divider %s", s.output, p.Multisynth)
	}
	if err := s.gen.EnableOutputs(); err != nil {
		return Plan{}, errors.Wrap(err, "refclock: enable outputs")
	}
	s.plan = p
	return p, nil
}

// Plan returns the last plan programmed by Set.
func (s *Source) Plan() Plan { return s.plan }

// Reference is the achieved output rounded to the nearest Hz.
func (p Plan) Reference() uint32 { return uint32(math.Round(p.Out)) }
