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

// WithChannelStep returns s using the given channel step. The step may not
// exceed the PFD and must divide REFin/R evenly.
func (s DeviceState) WithChannelStep(step uint32) (DeviceState, error) {
	const op = "WithChannelStep"
	pfd := s.PFD()
	if support.DecFromUint(uint64(step)).Cmp(pfd) > 0 {
		return s, fail(op, ErrStepExceedsPFD, "step %d Hz above PFD %s Hz", step, pfd)
	}
	if !s.stepDividesReference(step) {
		return s, fail(op, ErrPFDAndStepRemainder, "step %d Hz does not divide %d Hz / R", step, s.RefFreq)
	}
	s.ChanStep = step
	return s, nil
}

func (s DeviceState) stepDividesReference(step uint32) bool {
	r := uint32(s.Regs.R())
	if step == 0 || r == 0 {
		return false
	}
	return (s.RefFreq/r)%step == 0
}
