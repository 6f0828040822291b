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

package refclock

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"adf4351/src/support"
)

// Ratio is a + b/c as programmed into an Si5351 PLL or multisynth.
type Ratio struct {
	A, B, C uint32
}

func (r Ratio) Float64() float64 {
	return float64(r.A) + float64(r.B)/float64(r.C)
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d+%d/%d", r.A, r.B, r.C)
}

/*
Plan holds the PLL and multisynth settings that make an Si5351 produce a
reference frequency for the synthesizer:

	out = xtal * PLL / (Multisynth * R)
*/
type Plan struct {
	Xtal       float64 // crystal, Hz
	VCO        float64 // PLL output, Hz
	Target     float64 // requested output, Hz
	Out        float64 // achieved output, Hz
	Eps        float64 // Target - Out, Hz
	PLL        Ratio
	Multisynth Ratio
	R          uint32 // output divider, power of 2 up to 128
}

const (
	XtalMin = 10e6
	XtalMax = 27e6
	OutMax  = 200e6
	vcoMin  = 600e6
	vcoMax  = 900e6

	// largest denominator either fractional divider accepts
	maxDenominator = 1 << 20
	// relative error allowed before a plan is rejected
	maxRelError = 1e-9
)

/*
NewPlan computes PLL and multisynth settings for output frequency f from a
crystal at xtal Hz. vco is the PLL frequency to use, in the range
600..900 MHz; if it is zero a suitable value is chosen. Above 100 MHz the
VCO is forced to an even multiple of f so that the multisynth runs in
integer mode.

Both fractional dividers are found as continued fraction convergents with
denominators of at most 2^20.
*/
func NewPlan(xtal, vco, f float64) (Plan, error) {
	if xtal < XtalMin || xtal > XtalMax {
		return Plan{}, errors.Errorf("refclock: crystal %.0f Hz outside [%.0f, %.0f]", xtal, XtalMin, XtalMax)
	}
	if f > OutMax {
		return Plan{}, errors.Errorf("refclock: output %.0f Hz above %.0f", f, OutMax)
	}

	switch {
	case f > 150e6:
		vco = 4 * f
	case f >= 100e6:
		vco = 6 * f
	case vco == 0:
		if f < 5e6 {
			vco = vcoMin
		} else {
			vco = 800e6
		}
	case vco < vcoMin || vco > vcoMax:
		return Plan{}, errors.Errorf("refclock: PLL %.0f Hz outside [%.0f, %.0f]", vco, vcoMin, vcoMax)
	}

	z := vco / xtal
	if z < 15 || z > 90 {
		return Plan{}, errors.Errorf("refclock: feedback ratio %.3f outside [15, 90]", z)
	}
	p := Plan{Xtal: xtal, VCO: vco, Target: f}
	p.PLL = nearestRatio(z)

	z = xtal * p.PLL.Float64() / f
	if !near(z, 4, 1e-9) && !near(z, 6, 1e-9) && z < 8 {
		return Plan{}, errors.Errorf("refclock: multisynth ratio %.5g too small", z)
	}
	p.R = 1
	for z/float64(p.R) > 2048 && p.R <= 128 {
		p.R *= 2
	}
	if p.R > 128 {
		return Plan{}, errors.Errorf("refclock: output %.3f Hz too low", f)
	}
	p.Multisynth = nearestRatio(z / float64(p.R))

	p.Out = xtal * p.PLL.Float64() / (p.Multisynth.Float64() * float64(p.R))
	p.Eps = f - p.Out
	if math.Abs(p.Eps)/f > maxRelError {
		return Plan{}, errors.Errorf("refclock: output error %.3g Hz at %.3f Hz", p.Eps, f)
	}
	return p, nil
}

func nearestRatio(z float64) Ratio {
	b, c, _ := support.NearestFraction(uint64(z*1e12), 1_000_000_000_000, maxDenominator)
	return Ratio{A: uint32(b / c), B: uint32(b % c), C: uint32(c)}
}

func near(a float64, b float64, eps float64) bool {
	return math.Abs(a-b) <= eps
}
