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

/*
NearestFraction finds the best approximation c/d ≈ a/b such that d <= maxDenominator.

Returns c, d and the error a/b - c/d as floating point.

The result is the last convergent of the continued fraction of a/b whose
denominator still fits. For a synthesizer this is how a fractional divider
ratio is squeezed into a finite modulus field: the ADF4351 only has 12 bits
for MOD and the Si5351 has 20 bits for its multisynth denominators. Picking
a fixed denominator (say 4095) quantizes every frequency onto the same grid,
while the convergent picks whichever denominator lands closest.

Convergents are not always the closest fraction for a given bound (a
semiconvergent can beat them) but they are best approximations of the
second kind, and each one is strictly better than all fractions with a
smaller denominator.
*/
func NearestFraction(a, b, maxDenominator uint64) (c, d uint64, eps float64) {
	c, d = continuedFraction(a, b, maxDenominator)
	eps = float64(a)/float64(b) - float64(c)/float64(d)
	return c, d, eps
}

/*
continuedFraction expands a/b term by term and returns the last convergent
h/k with k <= maxDenominator.

The convergents obey the usual recurrence

	h[i] = q[i]*h[i-1] + h[i-2]
	k[i] = q[i]*k[i-1] + k[i-2]

seeded with h[-1]/k[-1] = 1/0 and h[-2]/k[-2] = 0/1. The expansion stops
either when the remainder is exhausted (a/b is exactly representable) or
when the next denominator would be too big. If even the first term cannot
be represented the result is 1/0.
*/
func continuedFraction(a, b, maxDenominator uint64) (c, d uint64) {
	h0, h1 := uint64(0), uint64(1)
	k0, k1 := uint64(1), uint64(0)
	for b != 0 {
		q := a / b
		k := q*k1 + k0
		if k > maxDenominator {
			break
		}
		h0, h1 = h1, q*h1+h0
		k0, k1 = k1, k
		a, b = b, a-q*b
	}
	return h1, k1
}
