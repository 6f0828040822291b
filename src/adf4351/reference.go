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

// ReferencePath describes how REFin is conditioned before the phase detector.
type ReferencePath struct {
	Freq    uint32 // REFin, Hz
	R       uint16 // reference divider, 1..1023
	Doubler bool
	Half    bool
	// HighPFD allows up to 90 MHz at the phase detector. This is only usable
	// in integer mode, where the planner sets the phase adjust bit to bypass
	// VCO band selection.
	HighPFD bool
}

func pfdOf(ref uint32, r uint16, doubler, half bool) support.Dec {
	num := uint64(ref)
	if doubler {
		num *= 2
	}
	den := uint64(r)
	if half {
		den *= 2
	}
	return support.DecFromUint(num).Quo(support.DecFromUint(den))
}

/*
PlanReference validates a reference path and returns the state that uses it
together with the resulting phase detector frequency. Register 2 of the
returned state carries R, RDIV2 and the doubler bit; nothing is written to
the chip until the next frequency plan is committed.
*/
func (s DeviceState) PlanReference(p ReferencePath) (DeviceState, support.Dec, error) {
	const op = "PlanReference"
	if p.R < RMin || p.R > RMax {
		return s, support.Dec{}, fail(op, ErrRRange, "R=%d outside [%d, %d]", p.R, RMin, RMax)
	}
	if p.Freq < RefInMin || p.Freq > RefInMax {
		return s, support.Dec{}, fail(op, ErrRefFrequency, "%d Hz outside [%d, %d]", p.Freq, RefInMin, RefInMax)
	}
	if p.Doubler && p.Freq > DoublerMax {
		return s, support.Dec{}, fail(op, ErrDoublerExceeded, "%d Hz above doubler limit %d", p.Freq, DoublerMax)
	}

	pfd := pfdOf(p.Freq, p.R, p.Doubler, p.Half)
	ceiling := uint64(PFDMax)
	if p.HighPFD {
		ceiling = PFDMaxBypass
	}
	if pfd.Cmp(support.DecFromUint(ceiling)) > 0 || pfd.Cmp(support.DecFromUint(PFDMin)) < 0 {
		return s, support.Dec{}, fail(op, ErrPFDLimits, "PFD %s Hz outside [%d, %d]", pfd, PFDMin, ceiling)
	}

	next := s
	next.RefFreq = p.Freq
	FieldRCounter.Set(&next.Regs, uint32(p.R))
	FieldRDiv2.Set(&next.Regs, support.BoolToBit(p.Half))
	FieldRefDoubler.Set(&next.Regs, support.BoolToBit(p.Doubler))
	return next, pfd, nil
}
