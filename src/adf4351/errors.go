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
	"errors"
	"fmt"
)

// Code identifies a planning outcome. It is a comparable string newtype
// and implements error so that a bare code can be returned or matched.
type Code string

func (c Code) Error() string { return string(c) }

const (
	OK Code = "ok"

	// channel step
	ErrStepExceedsPFD Code = "step_frequency_exceeds_pfd"

	// frequency planning
	ErrRFFrequency           Code = "rf_frequency"
	ErrPowerLevel            Code = "power_level"
	ErrAuxPowerLevel         Code = "aux_power_level"
	ErrAuxFreqDivider        Code = "aux_freq_divider"
	ErrZeroPFD               Code = "zero_pfd_frequency"
	ErrModRange              Code = "mod_range"
	ErrFracRange             Code = "frac_range"
	ErrNRange                Code = "n_range"
	ErrNRangeOver3600MHz     Code = "n_range_over_3600mhz"
	ErrRFStepRemainder       Code = "rf_frequency_and_step_frequency_has_remainder"
	ErrPFDExceededFractional Code = "pfd_exceeded_with_fractional_mode"
	ErrCalculationTimeout    Code = "precision_frequency_calculation_timeout"

	// WarnFrequencyError is not a failure: the registers were committed but
	// the achieved frequency misses the target by more than allowed.
	WarnFrequencyError Code = "frequency_error"

	// reference path
	ErrDoublerExceeded Code = "doubler_exceeded"
	ErrRRange          Code = "r_range"
	ErrRefFrequency    Code = "ref_frequency"

	// shared by reference path, channel step and frequency planning
	ErrPFDAndStepRemainder Code = "pfd_and_step_frequency_has_remainder"
	ErrPFDLimits           Code = "pfd_limits"
)

// E carries a Code together with the operation that failed and detail.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, ErrNRange) match an *E carrying that code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts the Code from an error. nil maps to OK, foreign errors to "error".
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	var e *E
	if errors.As(err, &e) {
		return e.C
	}
	return Code("error")
}

func fail(op string, c Code, format string, args ...any) error {
	return &E{C: c, Op: op, Msg: fmt.Sprintf(format, args...)}
}
