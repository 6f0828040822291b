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
	"github.com/chiefMarlin/tinygo-drivers/si5351"
	"tinygo.org/x/drivers"
)

type chip struct {
	d *si5351.Device
}

// NewSi5351 returns a ClockGen for an Si5351 on bus.
func NewSi5351(bus drivers.I2C) ClockGen {
	d := si5351.New(bus)
	return chip{d: &d}
}

func (c chip) Connected() (bool, error) { return c.d.Connected() }
func (c chip) Configure() error         { return c.d.Configure() }
func (c chip) EnableOutputs() error     { return c.d.EnableOutputs() }

func (c chip) ConfigurePLL(mult uint8, num, denom uint32) error {
	return c.d.ConfigurePLL(si5351.PLL_A, mult, num, denom)
}

func (c chip) ConfigureMultisynth(output uint8, div, num, denom uint32) error {
	return c.d.ConfigureMultisynth(output, si5351.PLL_A, div, num, denom)
}
