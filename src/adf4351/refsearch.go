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
	"context"

	"adf4351/src/support"
)

// ReferenceMatch is the best reference setup found for one RF frequency.
type ReferenceMatch struct {
	Ref        uint32 // REFin, Hz, after any external doubling or halving
	R          uint16
	N          uint16
	Frac       uint16
	Mod        uint16
	OutDivider uint8
	DividerSel uint8
	Prescaler  Prescaler
	PFD        support.Dec
	Actual     support.Dec
	Error      support.Dec // Actual - target, exact
	// HighPFD is set for integer solutions above 45 MHz at the phase
	// detector. They need VCO band selection bypassed.
	HighPFD bool
}

// Exact reports whether the match hits the target with no error.
func (m ReferenceMatch) Exact() bool { return m.Error.IsZero() }

// Integer reports whether the match needs no fractional divider.
func (m ReferenceMatch) Integer() bool { return m.Frac == 0 }

/*
FindReference looks for the R divider that lets ref produce rf most
accurately.

Integer solutions are tried first, with the phase detector allowed up to
90 MHz. If none divides exactly, fractional solutions are tried with the
PFD limited to 32 MHz; for each R the closest FRAC/MOD is the best continued
fraction convergent of the residual. The first exact solution wins, and
otherwise the one with the smallest error (lowest R on ties).
*/
func FindReference(rf string, ref uint32) (ReferenceMatch, error) {
	const op = "FindReference"
	if ref < RefInMin || ref > RefInMax {
		return ReferenceMatch{}, fail(op, ErrRefFrequency, "%d Hz outside [%d, %d]", ref, RefInMin, RefInMax)
	}
	target, err := support.ParseDec(rf)
	if err != nil {
		return ReferenceMatch{}, &E{C: ErrRFFrequency, Op: op, Msg: "malformed frequency", Err: err}
	}
	if target.Cmp(rfMax) > 0 || target.Cmp(rfMin) < 0 {
		return ReferenceMatch{}, fail(op, ErrRFFrequency, "%s Hz outside [%d, %d]", target, RFMin, uint64(RFMax))
	}

	m := ReferenceMatch{Ref: ref}
	m.OutDivider, m.DividerSel = selectDivider(target)
	if target.Cmp(prescalerMin) > 0 {
		m.Prescaler = Prescaler89
	}
	div := support.DecFromUint(uint64(m.OutDivider))
	vco := target.Mul(div)

	if best, ok := m.integerSearch(ref, vco); ok {
		best.Actual = vco.Quo(div)
		best.Error = support.Dec{}
		return best, nil
	}
	best, ok := m.fractionalSearch(ref, vco, div, target)
	if !ok {
		return ReferenceMatch{}, fail(op, ErrNRange, "no R gives INT in [%d, %d] for %s Hz from %d Hz", m.Prescaler.nMin(), NMax, target, ref)
	}
	return best, nil
}

// forEachR calls fn for every R whose PFD is within [PFDMin, ceiling],
// until fn returns false or INT grows past NMax.
func forEachR(ref uint32, ceiling uint64, vco support.Dec, fn func(r uint16, pfd, exact support.Dec, n uint64) bool) {
	refD := support.DecFromUint(uint64(ref))
	top := support.DecFromUint(ceiling)
	bottom := support.DecFromUint(PFDMin)
	for r := uint16(RMin); r <= RMax; r++ {
		pfd := refD.Quo(support.DecFromUint(uint64(r)))
		if pfd.Cmp(top) > 0 {
			continue
		}
		if pfd.Less(bottom) {
			return
		}
		exact := vco.Quo(pfd)
		n, _ := exact.Floor().Uint64()
		if n > NMax {
			return
		}
		if !fn(r, pfd, exact, n) {
			return
		}
	}
}

func (m ReferenceMatch) integerSearch(ref uint32, vco support.Dec) (ReferenceMatch, bool) {
	found := false
	forEachR(ref, PFDMaxBypass, vco, func(r uint16, pfd, exact support.Dec, n uint64) bool {
		if n < m.Prescaler.nMin() || !exact.IsInt() {
			return true
		}
		m.R, m.N, m.Frac, m.Mod = r, uint16(n), 0, ModMin
		m.PFD = pfd
		m.HighPFD = pfd.Cmp(support.DecFromUint(PFDMax)) > 0
		found = true
		return false
	})
	return m, found
}

func (m ReferenceMatch) fractionalSearch(ref uint32, vco, div, target support.Dec) (ReferenceMatch, bool) {
	var best ReferenceMatch
	found := false
	forEachR(ref, PFDMaxFrac, vco, func(r uint16, pfd, exact support.Dec, n uint64) bool {
		if n < m.Prescaler.nMin() {
			return true
		}
		frac, mod, carry := nearestFracMod(exact.Sub(support.DecFromUint(n)))
		if carry {
			n, frac, mod = n+1, 0, ModMin
			if n > NMax {
				return false
			}
		}
		actual := synthesized(pfd, n, frac, mod, div)
		e := actual.Sub(target)
		if found && !e.Abs().Less(best.Error.Abs()) {
			return true
		}
		best = m
		best.R, best.N, best.Frac, best.Mod = r, uint16(n), uint16(frac), uint16(mod)
		best.PFD, best.Actual, best.Error = pfd, actual, e
		found = true
		return !e.IsZero()
	})
	return best, found
}

/*
SweepReference steps the reference from start in 1 Hz increments, steps
times, calling FindReference for each, and returns the most accurate match.
The window is clamped to the legal REFin range. It stops early on an exact
match or when ctx is done, returning the best match so far with ctx's
error.
*/
func SweepReference(ctx context.Context, rf string, start, steps uint32) (ReferenceMatch, error) {
	if uint64(start)+uint64(steps) > RefInMax {
		if steps > RefInMax {
			steps = RefInMax
		}
		start = RefInMax - steps
	}
	if start < RefInMin {
		start = RefInMin
	}

	var best ReferenceMatch
	var lastErr error
	found := false
	for i := uint64(0); i <= uint64(steps); i++ {
		if err := ctx.Err(); err != nil {
			if found {
				return best, err
			}
			return ReferenceMatch{}, err
		}
		ref := uint64(start) + i
		if ref > RefInMax {
			break
		}
		m, err := FindReference(rf, uint32(ref))
		if err != nil {
			if c := Of(err); c == ErrRFFrequency {
				return ReferenceMatch{}, err
			}
			lastErr = err
			continue
		}
		if !found || m.Error.Abs().Less(best.Error.Abs()) {
			best, found = m, true
		}
		if best.Exact() {
			break
		}
	}
	if !found {
		return ReferenceMatch{}, lastErr
	}
	return best, nil
}
