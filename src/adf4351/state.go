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

package adf4351

import "adf4351/src/support"

// Device limits from the ADF4351 datasheet.
const (
	PFDMax       = 45_000_000 // integer mode with VCO band select enabled
	PFDMaxBypass = 90_000_000 // integer mode with band select bypassed
	PFDMaxFrac   = 32_000_000 // fractional mode
	PFDMin       = 125_000

	RefInMin   = 100_000
	RefInMax   = 250_000_000
	RefDefault = 10_000_000
	DoublerMax = 30_000_000

	RMin = 1
	RMax = 1023

	ModMin = 2
	ModMax = 4095

	NMin45 = 23 // prescaler 4/5
	NMin89 = 75 // prescaler 8/9
	NMax   = 65535

	RFMin              = 34_375_000
	RFMax              = 4_400_000_000
	PrescalerThreshold = 3_600_000_000

	DividerMax = 64
	MaxPower   = 4

	NumRegisters   = 6
	SweepRegisters = 5 // words 0..4 change between sweep points

	ChanStepDefault = 100_000
)

var (
	rfMin        = support.DecFromUint(RFMin)
	rfMax        = support.DecFromUint(RFMax)
	vcoHalf      = support.DecFromUint(RFMax / 2)
	prescalerMin = support.DecFromUint(PrescalerThreshold)
)

// PowerOnDefaults is the register image the chip is initialised with.
var PowerOnDefaults = RegisterImage{0x00000000, 0x00008011, 0x00006FC2, 0x00E00483, 0x00850004, 0x00580005}

/*
DeviceState is the current configuration of one synthesizer: the reference
input, channel step, the working register image and the error of the last
committed plan. R, the doubler and the divide-by-2 flag live in register 2
and are read back from there.

DeviceState is a plain value. Planning methods never modify the receiver;
they return a new state or a Plan to be committed.
*/
type DeviceState struct {
	RefFreq        uint32 // REFin in Hz
	ChanStep       uint32 // channel step in Hz
	Regs           RegisterImage
	FrequencyError int32 // of the last committed plan, Hz
}

// NewDeviceState returns the power-on configuration: 10 MHz reference,
// R = 1, 100 kHz channel step.
func NewDeviceState() DeviceState {
	return DeviceState{
		RefFreq:  RefDefault,
		ChanStep: ChanStepDefault,
		Regs:     PowerOnDefaults,
	}
}

// Commit returns s with the plan's register image and frequency error.
func (s DeviceState) Commit(p Plan) DeviceState {
	s.Regs = p.Regs
	s.FrequencyError = p.FrequencyError
	return s
}

// WithSweepValues replaces words 0..4 of the image, leaving word 5 alone.
func (s DeviceState) WithSweepValues(regs [SweepRegisters]uint32) DeviceState {
	copy(s.Regs[:SweepRegisters], regs[:])
	return s
}

// SweepValues returns words 0..4 of the image.
func (s DeviceState) SweepValues() [SweepRegisters]uint32 {
	var r [SweepRegisters]uint32
	copy(r[:], s.Regs[:SweepRegisters])
	return r
}
