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

package support

// GCD returns the greatest common divisor of a and b. GCD(0, b) is b.
func GCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

/*
ReduceFraction brings frac/mod to lowest terms. If the reduced modulus still
exceeds maxMod, numerator and denominator are repeatedly halved (discarding
remainders) until the modulus fits; this is lossy and `rescaled` reports
that it happened. Halving can make frac catch up with mod, in which case
frac is pulled back by one so that frac < mod still holds.

A zero modulus is returned unchanged.
*/
func ReduceFraction(frac, mod, maxMod uint64) (f, m uint64, rescaled bool) {
	g := GCD(frac, mod)
	if g == 0 {
		return frac, mod, false
	}
	f, m = frac/g, mod/g
	if m <= maxMod {
		return f, m, false
	}
	for m > maxMod {
		f /= 2
		m /= 2
	}
	if f == m && f > 0 {
		f--
	}
	return f, m, true
}
