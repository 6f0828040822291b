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

import (
	"fmt"
	"time"

	"adf4351/src/support"
)

// edgeBand is how close, in fractions of one INT step, f*div/PFD may come to
// the next integer before it is treated as that integer (about 1/4095).
var edgeBand = support.MustParseDec("0.00024421")

/*
precisionDecompose finds INT, FRAC and MOD for f without a channel grid.

INT is the integer part of f*div/pfd. A fractional part within edgeBand of
one rounds up to an all-integer solution. Otherwise, when INT alone misses
by more than the tolerance, the configured search picks FRAC/MOD for the
residual.
*/
func precisionDecompose(op string, f, pfd, div support.Dec, req Request) (n, frac, mod uint64, err error) {
	exact := f.Mul(div).Quo(pfd)
	whole := exact.Floor()
	n, _ = whole.Uint64()

	if exact.Add(edgeBand).Floor().Cmp(whole) != 0 {
		return n + 1, 0, ModMin, nil
	}

	residual := f.Sub(pfd.Mul(whole).Quo(div)).Abs()
	tol := int64(req.Tolerance)
	if wholeHz(residual) <= tol {
		return n, 0, ModMin, nil
	}

	switch req.Search {
	case SearchContinuedFraction:
		frac, mod, carry := nearestFracMod(exact.Sub(whole))
		if carry {
			return n + 1, 0, ModMin, nil
		}
		return n, frac, mod, nil
	default:
		frac, mod, err = linearSearch(residual, pfd, div, tol, req)
		if err != nil {
			return 0, 0, 0, &E{C: ErrCalculationTimeout, Op: op, Msg: f.String() + " Hz", Err: err}
		}
		return n, frac, mod, nil
	}
}

// wholeHz truncates a non-negative error to whole Hz. Search decisions are
// taken on this value, so sub-Hz differences never count as improvements.
func wholeHz(x support.Dec) int64 {
	hz, _ := x.Int64()
	return hz
}

type deadlineError struct {
	elapsed, budget time.Duration
	mod             uint64
}

func (e deadlineError) Error() string {
	return fmt.Sprintf("search stopped at MOD %d after %v (budget %v)", e.mod, e.elapsed, e.budget)
}

/*
linearSearch tries every modulus from ModMin to ModMax. For each one the
nearest FRAC is

	FRAC = floor(residual / (pfd / MOD / div) + 1/2)

pulled back to MOD-1 when it rounds up to MOD and skipped when it is
larger still. Errors are compared in whole Hz: the first pair with the
lowest error wins and the search stops as soon as the error is within tol.
If no modulus beats INT alone the result is FRAC = 0.

The clock is polled once per modulus. When the budget is spent the search
gives up and no result is returned.
*/
func linearSearch(residual, pfd, div support.Dec, tol int64, req Request) (frac, mod uint64, err error) {
	clock := req.Clock
	if clock == nil {
		clock = wallClock
	}
	start := clock()
	half := support.DecRatio(1, 2)

	best := wholeHz(residual)
	frac, mod = 0, ModMin
	for m := uint64(ModMin); m <= ModMax; m++ {
		if req.Timeout > 0 {
			if elapsed := clock() - start; elapsed > req.Timeout {
				return 0, 0, deadlineError{elapsed: elapsed, budget: req.Timeout, mod: m}
			}
		}
		md := support.DecFromUint(m)
		step := pfd.Quo(md).Quo(div)
		fr, _ := residual.Quo(step).Add(half).Floor().Uint64()
		if fr > m {
			continue
		}
		if fr == m {
			fr--
		}
		e := wholeHz(residual.Sub(step.Mul(support.DecFromUint(fr))).Abs())
		if e < best {
			best, frac, mod = e, fr, m
		}
		if e <= tol {
			break
		}
	}
	return frac, mod, nil
}

/*
nearestFracMod approximates x in [0, 1) by the best continued fraction
convergent with a denominator of at most ModMax. carry reports that the
closest such fraction is 1, meaning INT should be incremented.
*/
func nearestFracMod(x support.Dec) (frac, mod uint64, carry bool) {
	num, den, ok := x.Fraction()
	if !ok {
		// the residual of a ratio of 64-bit integers always fits
		panic("adf4351: residual does not fit 64 bits")
	}
	c, d, _ := support.NearestFraction(num, den, ModMax)
	switch {
	case c == 0:
		return 0, ModMin, false
	case c >= d:
		return 0, ModMin, true
	}
	return c, d, false
}
