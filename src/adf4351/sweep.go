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

	"github.com/fxamacker/cbor/v2"

	"adf4351/src/support"
)

// MaxSweepPoints bounds the size of a precomputed sweep table.
const MaxSweepPoints = 1 << 16

/*
SweepPoint is one precomputed step of a frequency sweep. Only words 0..4
change between points so that a sweep can be replayed with LoadSweep
without planning anything on the fly.
*/
type SweepPoint struct {
	Frequency      string                 `cbor:"1,keyasint" yaml:"frequency"`
	Regs           [SweepRegisters]uint32 `cbor:"2,keyasint" yaml:"regs"`
	FrequencyError int32                  `cbor:"3,keyasint,omitempty" yaml:"error,omitempty"`
	Warning        bool                   `cbor:"4,keyasint,omitempty" yaml:"warning,omitempty"`
}

var (
	sweepEncMode cbor.EncMode
	sweepDecMode cbor.DecMode
)

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}
	sweepEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create sweep CBOR encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: MaxSweepPoints,
	}
	sweepDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create sweep CBOR decoder mode: %v", err))
	}
}

// EncodeSweep encodes a sweep table as CBOR with integer keys.
func EncodeSweep(points []SweepPoint) ([]byte, error) {
	return sweepEncMode.Marshal(points)
}

// DecodeSweep decodes a table written by EncodeSweep.
func DecodeSweep(data []byte) ([]SweepPoint, error) {
	var points []SweepPoint
	if err := sweepDecMode.Unmarshal(data, &points); err != nil {
		return nil, err
	}
	return points, nil
}

/*
PlanSweep plans every frequency from start to stop inclusive in increments
of step, each with the settings in tmpl. All points are planned against s;
none is committed. The first failing point aborts the sweep and its error
names the offending frequency.
*/
func (s DeviceState) PlanSweep(start, stop, step string, tmpl Request) ([]SweepPoint, error) {
	const op = "PlanSweep"
	lo, err := support.ParseDec(start)
	if err != nil {
		return nil, &E{C: ErrRFFrequency, Op: op, Msg: "start", Err: err}
	}
	hi, err := support.ParseDec(stop)
	if err != nil {
		return nil, &E{C: ErrRFFrequency, Op: op, Msg: "stop", Err: err}
	}
	inc, err := support.ParseDec(step)
	if err != nil {
		return nil, &E{C: ErrRFFrequency, Op: op, Msg: "step", Err: err}
	}
	if inc.Sign() <= 0 || hi.Less(lo) {
		return nil, fail(op, ErrRFFrequency, "empty sweep %s..%s step %s", lo, hi, inc)
	}
	count, ok := hi.Sub(lo).Quo(inc).Floor().Uint64()
	if !ok || count >= MaxSweepPoints {
		return nil, fail(op, ErrRFFrequency, "more than %d points in %s..%s step %s", MaxSweepPoints, lo, hi, inc)
	}

	pfd, err := s.checkRequest(op, tmpl)
	if err != nil {
		return nil, err
	}
	points := make([]SweepPoint, 0, count+1)
	for i := uint64(0); i <= count; i++ {
		f := lo.Add(inc.Mul(support.DecFromUint(i)))
		p, err := s.planTarget(op, f, pfd, tmpl)
		if err != nil {
			return nil, fmt.Errorf("%s: point %d at %s Hz: %w", op, i, f.FloatString(9), err)
		}
		var regs [SweepRegisters]uint32
		copy(regs[:], p.Regs[:SweepRegisters])
		points = append(points, SweepPoint{
			Frequency:      p.Target.String(),
			Regs:           regs,
			FrequencyError: p.FrequencyError,
			Warning:        p.Warning(),
		})
	}
	return points, nil
}
