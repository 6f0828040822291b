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

/*
Package transport shifts ADF4351 register words onto the chip over SPI.

Each word is sent MSB first inside its own low pulse of the load enable
line. The chip latches the word on the rising edge of LE, and writing
word 0 double-buffers the others, so the words always go out from 5 down
to 0.
*/
package transport

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
)

// Pin is the load enable line. machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// Settle is the delay around each LE pulse.
const Settle = time.Microsecond

type SPI struct {
	bus   drivers.SPI
	le    Pin
	sleep func(time.Duration)
	buf   [4]byte
}

type Option func(*SPI)

// WithSleep replaces time.Sleep for the settle delays.
func WithSleep(f func(time.Duration)) Option { return func(s *SPI) { s.sleep = f } }

// New returns a writer on bus using le as the load enable. LE is driven
// high, its idle level.
func New(bus drivers.SPI, le Pin, opts ...Option) *SPI {
	s := &SPI{bus: bus, le: le, sleep: time.Sleep}
	for _, o := range opts {
		o(s)
	}
	le.High()
	return s
}

// WriteRegisters sends regs[5] through regs[0]. It stops at the first
// failed transfer with LE released.
func (s *SPI) WriteRegisters(regs [6]uint32) error {
	for i := len(regs) - 1; i >= 0; i-- {
		if err := s.WriteWord(regs[i]); err != nil {
			return errors.Wrapf(err, "transport: register %d", i)
		}
	}
	return nil
}

// WriteWord sends one 32-bit word in a single LE pulse.
func (s *SPI) WriteWord(w uint32) error {
	binary.BigEndian.PutUint32(s.buf[:], w)
	s.le.Low()
	s.sleep(Settle)
	err := s.bus.Tx(s.buf[:], nil)
	s.sleep(Settle)
	s.le.High()
	s.sleep(Settle)
	return err
}
