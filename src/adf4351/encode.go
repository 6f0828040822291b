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

/*
encode writes a plan into a copy of img. Only the fields the planner owns
change: everything else, including the R counter and reference flags set
by PlanReference, is carried over.

Integer mode (FRAC == 0) turns on the lock detect precision and function
bits, charge cancellation and the 3 ns anti-backlash pulse. Above 45 MHz
at the PFD the phase adjust bit bypasses VCO band selection, which is
only legal in integer mode.
*/
func encode(img RegisterImage, p *Plan, req Request, pfdHz uint64) RegisterImage {
	intMode := p.Frac == 0

	FieldFrac.Set(&img, uint32(p.Frac))
	FieldInt.Set(&img, uint32(p.N))
	FieldMod.Set(&img, uint32(p.Mod))
	FieldPrescaler.Set(&img, uint32(p.Prescaler))
	FieldPhaseAdjust.Set(&img, support.BoolToBit(intMode && pfdHz > PFDMax))

	FieldLDP.Set(&img, support.BoolToBit(intMode))
	FieldLDF.Set(&img, support.BoolToBit(intMode))
	FieldChargeCancel.Set(&img, support.BoolToBit(intMode))
	FieldABP.Set(&img, support.BoolToBit(intMode))

	// a disabled output keeps whatever level it had
	if req.Power == 0 {
		FieldOutEnable.Set(&img, 0)
	} else {
		FieldOutEnable.Set(&img, 1)
		FieldOutPower.Set(&img, uint32(req.Power-1))
	}
	if req.AuxPower == 0 {
		FieldAuxEnable.Set(&img, 0)
	} else {
		FieldAuxPower.Set(&img, uint32(req.AuxPower-1))
		FieldAuxEnable.Set(&img, 1)
		FieldAuxSelect.Set(&img, uint32(req.AuxMode))
	}

	FieldRFDivSel.Set(&img, uint32(p.OutDividerSel))
	return img
}
