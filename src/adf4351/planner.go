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
	"time"

	"adf4351/src/support"
)

// AuxMode selects what drives the auxiliary output.
type AuxMode uint8

const (
	AuxDivided     AuxMode = 0 // output of the RF divider
	AuxFundamental AuxMode = 1 // VCO fundamental
)

// Prescaler is the feedback prescaler mode, stored in register 1 bit 27.
type Prescaler uint8

const (
	Prescaler45 Prescaler = 0
	Prescaler89 Prescaler = 1
)

func (p Prescaler) String() string {
	if p == Prescaler89 {
		return "8/9"
	}
	return "4/5"
}

// nMin is the smallest INT the prescaler supports.
func (p Prescaler) nMin() uint64 {
	if p == Prescaler89 {
		return NMin89
	}
	return NMin45
}

// Search selects the precision mode FRAC/MOD search.
type Search uint8

const (
	// SearchLinear tries every modulus from 2 to 4095 and keeps the first
	// pair with the lowest error, stopping once the tolerance is met.
	SearchLinear Search = iota
	// SearchContinuedFraction takes the best convergent with MOD <= 4095.
	SearchContinuedFraction
)

// Clock returns monotonic time. Only differences are used.
type Clock func() time.Duration

var epoch = time.Now()

func wallClock() time.Duration { return time.Since(epoch) }

// Request is the input of a frequency plan.
type Request struct {
	Frequency string // target in Hz, decimal
	Power     uint8  // RF output power 1..4, 0 disables the output
	AuxPower  uint8  // aux output power 1..4, 0 disables the output
	AuxMode   AuxMode
	Precision bool
	Tolerance uint32        // Hz, precision mode only
	Timeout   time.Duration // precision search budget, 0 is unbounded
	Search    Search
	Clock     Clock // nil uses the wall clock
}

// Plan is a validated synthesizer configuration.
type Plan struct {
	OutDivider    uint8 // 1..64
	OutDividerSel uint8 // log2(OutDivider)
	Prescaler     Prescaler
	N             uint16
	Frac          uint16
	Mod           uint16

	Target         support.Dec // requested frequency at 1 Hz resolution
	Actual         support.Dec // frequency produced by N, FRAC, MOD
	PFD            support.Dec
	FrequencyError int32 // Actual - Target, rounded to Hz

	// Rescaled reports that FRAC/MOD had to be halved to fit 12 bits.
	Rescaled bool
	// Status is OK or WarnFrequencyError.
	Status Code

	Regs RegisterImage
}

// Warning reports that the plan is usable but misses the requested accuracy.
func (p Plan) Warning() bool { return p.Status == WarnFrequencyError }

/*
Plan computes the register image that tunes the synthesizer to req.Frequency
using the reference path and channel step of s.

Validation failures return an error and no plan; s is never modified. A plan
whose frequency error exceeds the tolerance (precision mode) or is not zero
(channel-step mode) is returned with Status WarnFrequencyError and is meant
to be committed anyway: it is the closest frequency the chip can make.
*/
func (s DeviceState) Plan(req Request) (Plan, error) {
	const op = "Plan"
	pfd, err := s.checkRequest(op, req)
	if err != nil {
		return Plan{}, err
	}
	target, err := support.ParseDec(req.Frequency)
	if err != nil {
		return Plan{}, &E{C: ErrRFFrequency, Op: op, Msg: "malformed frequency", Err: err}
	}
	return s.planTarget(op, target, pfd, req)
}

// checkRequest validates everything in req except the frequency and
// returns the PFD.
func (s DeviceState) checkRequest(op string, req Request) (support.Dec, error) {
	if req.Power > MaxPower {
		return support.Dec{}, fail(op, ErrPowerLevel, "power level %d above %d", req.Power, MaxPower)
	}
	if req.AuxPower > MaxPower {
		return support.Dec{}, fail(op, ErrAuxPowerLevel, "aux power level %d above %d", req.AuxPower, MaxPower)
	}
	if req.AuxMode != AuxDivided && req.AuxMode != AuxFundamental {
		return support.Dec{}, fail(op, ErrAuxFreqDivider, "aux mode %d", req.AuxMode)
	}
	pfd := s.PFD()
	if pfd.IsZero() {
		return support.Dec{}, fail(op, ErrZeroPFD, "R is zero")
	}
	if !req.Precision && (s.ChanStep == 0 || s.ChanStep > 1 && !s.stepDividesReference(s.ChanStep)) {
		return support.Dec{}, fail(op, ErrPFDAndStepRemainder, "step %d Hz does not divide %d Hz / R", s.ChanStep, s.RefFreq)
	}
	return pfd, nil
}

// planTarget plans an already parsed target on a request that passed
// checkRequest.
func (s DeviceState) planTarget(op string, target, pfd support.Dec, req Request) (Plan, error) {
	channelMode := !req.Precision
	if target.Cmp(rfMax) > 0 || target.Cmp(rfMin) < 0 {
		return Plan{}, fail(op, ErrRFFrequency, "%s Hz outside [%d, %d]", target, RFMin, uint64(RFMax))
	}
	// 1 Hz resolution: anything below is dropped.
	f := target.Floor()
	if channelMode && s.ChanStep > 1 && !f.Quo(support.DecFromUint(uint64(s.ChanStep))).IsInt() {
		return Plan{}, fail(op, ErrRFStepRemainder, "%s Hz is not a multiple of %d Hz", f, s.ChanStep)
	}

	p := Plan{Target: f, PFD: pfd, Mod: ModMin}
	p.OutDivider, p.OutDividerSel = selectDivider(f)
	if f.Cmp(prescalerMin) > 0 {
		p.Prescaler = Prescaler89
	}
	div := support.DecFromUint(uint64(p.OutDivider))

	var n, frac, mod uint64
	var err error
	if req.Precision {
		n, frac, mod, err = precisionDecompose(op, f, pfd, div, req)
		if err != nil {
			return Plan{}, err
		}
	} else {
		n, frac, mod, p.Rescaled = s.channelDecompose(f, pfd, div)
	}

	if frac == 0 {
		mod = ModMin
	}
	if mod < ModMin || mod > ModMax {
		return Plan{}, fail(op, ErrModRange, "MOD=%d outside [%d, %d]", mod, ModMin, ModMax)
	}
	if frac >= mod {
		return Plan{}, fail(op, ErrFracRange, "FRAC=%d not below MOD=%d", frac, mod)
	}
	if n < p.Prescaler.nMin() || n > NMax {
		code := ErrNRange
		if p.Prescaler == Prescaler89 {
			code = ErrNRangeOver3600MHz
		}
		return Plan{}, fail(op, code, "INT=%d outside [%d, %d] for prescaler %s", n, p.Prescaler.nMin(), NMax, p.Prescaler)
	}
	pfdHz, _ := pfd.Uint64()
	if frac != 0 && pfdHz > PFDMaxFrac {
		return Plan{}, fail(op, ErrPFDExceededFractional, "PFD %d Hz above %d Hz with FRAC=%d", pfdHz, PFDMaxFrac, frac)
	}
	p.N, p.Frac, p.Mod = uint16(n), uint16(frac), uint16(mod)

	p.Actual = synthesized(pfd, n, frac, mod, div)
	ferr, _ := p.Actual.Sub(f).Round().Int64()
	p.FrequencyError = int32(ferr)

	p.Status = OK
	if req.Precision && abs64(ferr) > int64(req.Tolerance) || !req.Precision && ferr != 0 {
		p.Status = WarnFrequencyError
	}
	p.Regs = encode(s.Regs, &p, req, pfdHz)
	return p, nil
}

/*
selectDivider picks the power-of-two output divider that puts the VCO in
its 2.2..4.4 GHz band: the divider doubles for as long as it does not
exceed floor(2.2 GHz / f). The bottom of the range is pinned to the largest
divider.
*/
func selectDivider(f support.Dec) (div, sel uint8) {
	if f.Cmp(rfMin) <= 0 {
		return DividerMax, 6
	}
	ratio, _ := vcoHalf.Quo(f).Floor().Uint64()
	d := uint64(1)
	for d <= ratio && d <= DividerMax {
		d *= 2
		sel++
	}
	return uint8(d), sel
}

/*
channelDecompose splits f*div/pfd into INT and FRAC/MOD where MOD is the
number of channel steps per PFD period:

	MOD  = pfd / (step / div)
	FRAC = (f*div/pfd - INT) * MOD + 1/2

Both are then divided by div, truncated and reduced to lowest terms.
*/
func (s DeviceState) channelDecompose(f, pfd, div support.Dec) (n, frac, mod uint64, rescaled bool) {
	exact := f.Mul(div).Quo(pfd)
	whole := exact.Floor()
	n, _ = whole.Uint64()

	step := support.DecFromUint(uint64(s.ChanStep))
	modD := pfd.Quo(step.Quo(div))
	fracD := exact.Sub(whole).Mul(modD).Add(support.DecRatio(1, 2))
	fr, _ := fracD.Quo(div).Uint64()
	md, _ := modD.Quo(div).Uint64()
	frac, mod, rescaled = support.ReduceFraction(fr, md, ModMax)
	return n, frac, mod, rescaled
}

// synthesized returns pfd * (n + frac/mod) / div.
func synthesized(pfd support.Dec, n, frac, mod uint64, div support.Dec) support.Dec {
	v := pfd.Mul(support.DecFromUint(n))
	if frac != 0 {
		v = v.Add(pfd.Mul(support.DecFromUint(frac)).Quo(support.DecFromUint(mod)))
	}
	return v.Quo(div)
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
