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

//go:build rp2040

/*
Package pico wires an ADF4351 and an optional Si5351 reference to an rp2040.

The ADF4351 is driven by a PIO state machine running as an SPI master
(CLK, DATA) plus a GPIO for LE. The Si5351 sits on I2C0. Pin numbers are
those of the prototype board.
*/
package pico

import (
	"machine"

	"github.com/pkg/errors"
	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"

	"adf4351/src/refclock"
	"adf4351/src/transport"
)

const (
	PinClock    = machine.GPIO2
	PinData     = machine.GPIO3
	PinLE       = machine.GPIO5
	SPIBaudRate = 4_000_000
)

type Board struct {
	Synth *transport.SPI
	Ref   *refclock.Source // nil without an Si5351
}

// Setup claims a PIO state machine for the synthesizer bus and, when
// withRef is set, brings up the Si5351 on I2C0 driving output 0.
func Setup(withRef bool, xtal float64) (*Board, error) {
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		return nil, errors.Wrap(err, "pico: no free state machine")
	}
	bus, err := piolib.NewSPI(sm, machine.SPIConfig{
		Frequency: SPIBaudRate,
		SCK:       PinClock,
		SDO:       PinData,
		SDI:       machine.NoPin,
		Mode:      0,
	})
	if err != nil {
		return nil, errors.Wrap(err, "pico: PIO SPI")
	}

	PinLE.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b := &Board{
		Synth: transport.New(bus, PinLE),
	}
	if !withRef {
		return b, nil
	}

	if err := machine.I2C0.Configure(machine.I2CConfig{}); err != nil {
		return nil, errors.Wrap(err, "pico: I2C0")
	}
	b.Ref = refclock.NewSource(refclock.NewSi5351(machine.I2C0), 0, xtal)
	if err := b.Ref.Start(); err != nil {
		return nil, err
	}
	return b, nil
}
