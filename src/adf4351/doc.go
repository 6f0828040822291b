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
Package adf4351 plans and encodes the register image of an ADF4351 wideband
fractional-N/integer-N frequency synthesizer.

The output frequency of the chip is

	RFout = fPFD * (INT + FRAC/MOD) / divider
	fPFD  = REFin * (1 + D) / (R * (1 + T))

where D is the reference doubler, T the reference divide-by-2 and divider
a power of two between 1 and 64. Planning is pure: a DeviceState value goes
in, a Plan (or an error) comes out, and nothing changes until the plan is
committed. Synth wraps a DeviceState with a register transport and logging
for use against real hardware.

Two planning strategies are available. In channel-step mode the target must
be a whole number of channel steps and MOD follows from the PFD and step. In
precision mode the planner searches moduli 2..4095 for the FRAC/MOD pair that
gets within a caller supplied tolerance, bounded by a calculation deadline.
*/
package adf4351
