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

func (img RegisterImage) R() uint16        { return uint16(FieldRCounter.Get(img)) }
func (img RegisterImage) Int() uint16      { return uint16(FieldInt.Get(img)) }
func (img RegisterImage) Frac() uint16     { return uint16(FieldFrac.Get(img)) }
func (img RegisterImage) Mod() uint16      { return uint16(FieldMod.Get(img)) }
func (img RegisterImage) RDiv2() bool      { return FieldRDiv2.Get(img) != 0 }
func (img RegisterImage) RefDoubler() bool { return FieldRefDoubler.Get(img) != 0 }

// OutDividerPow2 is the RF divider select code, log2 of the divider.
func (img RegisterImage) OutDividerPow2() uint8 { return uint8(FieldRFDivSel.Get(img)) }

// OutDivider is the RF output divider, 1..64.
func (img RegisterImage) OutDivider() uint8 { return 1 << img.OutDividerPow2() }

// PFD returns the phase detector frequency implied by the reference input
// and register 2. It is zero when R is zero.
func (s DeviceState) PFD() support.Dec {
	r := s.Regs.R()
	if r == 0 {
		return support.Dec{}
	}
	return pfdOf(s.RefFreq, r, s.Regs.RefDoubler(), s.Regs.RDiv2())
}

// Frequency returns the output frequency programmed by the image.
func (s DeviceState) Frequency() support.Dec {
	pfd := s.PFD()
	if pfd.IsZero() {
		return pfd
	}
	f := pfd.Mul(support.DecFromUint(uint64(s.Regs.Int())))
	if mod := s.Regs.Mod(); mod != 0 {
		f = f.Add(pfd.Mul(support.DecFromUint(uint64(s.Regs.Frac()))).Quo(support.DecFromUint(uint64(mod))))
	}
	return f.Quo(support.DecFromUint(uint64(s.Regs.OutDivider())))
}

// CurrentFrequency formats Frequency in Hz with six decimals, rounded.
func (s DeviceState) CurrentFrequency() string {
	return s.Frequency().FloatString(6)
}
