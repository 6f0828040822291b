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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanReference(t *testing.T) {
	tests := []struct {
		name string
		p    ReferencePath
		pfd  string
		code Code
	}{
		{"default", ReferencePath{Freq: 10_000_000, R: 1}, "10000000", OK},
		{"doubled and halved", ReferencePath{Freq: 25_000_000, R: 2, Doubler: true, Half: true}, "12500000", OK},
		{"inexact", ReferencePath{Freq: 10_000_000, R: 3}, "3333333.333333", OK},
		{"high pfd", ReferencePath{Freq: 90_000_000, R: 1, HighPFD: true}, "90000000", OK},
		{"r zero first", ReferencePath{Freq: 1, R: 0}, "", ErrRRange},
		{"r too big", ReferencePath{Freq: 10_000_000, R: 1024}, "", ErrRRange},
		{"ref low", ReferencePath{Freq: 99_999, R: 1}, "", ErrRefFrequency},
		{"ref high", ReferencePath{Freq: 250_000_001, R: 1}, "", ErrRefFrequency},
		{"doubler", ReferencePath{Freq: 40_000_000, R: 4, Doubler: true}, "", ErrDoublerExceeded},
		{"pfd high", ReferencePath{Freq: 250_000_000, R: 1}, "", ErrPFDLimits},
		{"pfd high bypass", ReferencePath{Freq: 250_000_000, R: 2, HighPFD: true}, "", ErrPFDLimits},
		{"pfd low", ReferencePath{Freq: 100_000, R: 1}, "", ErrPFDLimits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDeviceState()
			next, pfd, err := s.PlanReference(tt.p)
			assert.Equal(t, tt.code, Of(err))
			if err != nil {
				assert.Equal(t, s, next)
				return
			}
			assert.Equal(t, tt.pfd, pfd.String())
			assert.Equal(t, tt.p.Freq, next.RefFreq)
			assert.Equal(t, tt.p.R, next.Regs.R())
			assert.Equal(t, tt.p.Doubler, next.Regs.RefDoubler())
			assert.Equal(t, tt.p.Half, next.Regs.RDiv2())
			assert.Zero(t, pfd.Cmp(next.PFD()))
		})
	}
}

func TestWithChannelStep(t *testing.T) {
	s := NewDeviceState()

	next, err := s.WithChannelStep(100_000)
	require.NoError(t, err)
	assert.Equal(t, uint32(100_000), next.ChanStep)

	next, err = s.WithChannelStep(333)
	assert.ErrorIs(t, err, ErrPFDAndStepRemainder)
	assert.Equal(t, s, next)

	_, err = s.WithChannelStep(20_000_000)
	assert.ErrorIs(t, err, ErrStepExceedsPFD)

	_, err = s.WithChannelStep(0)
	assert.ErrorIs(t, err, ErrPFDAndStepRemainder)
}

func TestReadback(t *testing.T) {
	s := NewDeviceState()
	assert.Equal(t, uint16(1), s.Regs.R())
	assert.False(t, s.Regs.RDiv2())
	assert.False(t, s.Regs.RefDoubler())
	assert.Equal(t, "10000000", s.PFD().String())

	p, err := s.Plan(precise("4007500000"))
	require.NoError(t, err)
	s = s.Commit(p)

	assert.Equal(t, uint16(400), s.Regs.Int())
	assert.Equal(t, uint16(3), s.Regs.Frac())
	assert.Equal(t, uint16(4), s.Regs.Mod())
	assert.Equal(t, uint8(1), s.Regs.OutDivider())
	assert.Equal(t, uint8(0), s.Regs.OutDividerPow2())
	assert.Equal(t, "4007500000.000000", s.CurrentFrequency())
	assert.Equal(t, int32(0), s.FrequencyError)

	p, err = s.Plan(channel("145100000"))
	require.NoError(t, err)
	s = s.Commit(p)
	assert.Equal(t, uint8(16), s.Regs.OutDivider())
	assert.Equal(t, uint8(4), s.Regs.OutDividerPow2())
	assert.Equal(t, "145100000.000000", s.CurrentFrequency())

	// an inexact PFD reads back rounded to the microhertz
	s, _, err = s.PlanReference(ReferencePath{Freq: 10_000_000, R: 3})
	require.NoError(t, err)
	assert.Equal(t, "3333333.333333", s.PFD().FloatString(6))

	FieldRCounter.Set(&s.Regs, 0)
	assert.True(t, s.PFD().IsZero())
	assert.True(t, s.Frequency().IsZero())
}

func TestRegisterImage_Decode(t *testing.T) {
	fields := PowerOnDefaults.Decode()
	assert.Len(t, fields, len(Fields))
	assert.Equal(t, uint32(1), fields["r_counter"])
	assert.Equal(t, uint32(2), fields["mod"])
	assert.Equal(t, uint32(1), fields["ldp"])
	assert.Equal(t, uint32(1), fields["charge_cancel"])
	assert.Equal(t, uint32(0), fields["out_enable"])

	img := PowerOnDefaults
	FieldInt.Set(&img, 0xffff_ffff)
	assert.Equal(t, uint32(0xffff), FieldInt.Get(img))
	// address bits and bit 31 untouched
	assert.Equal(t, uint32(0x7fff_8000), img[0])
}

func TestSweepValues(t *testing.T) {
	s := NewDeviceState()
	vals := [SweepRegisters]uint32{1, 2, 3, 4, 5}
	next := s.WithSweepValues(vals)
	assert.Equal(t, vals, next.SweepValues())
	assert.Equal(t, s.Regs[5], next.Regs[5])
	assert.Equal(t, PowerOnDefaults, s.Regs)
}

func TestOf(t *testing.T) {
	assert.Equal(t, OK, Of(nil))
	assert.Equal(t, ErrNRange, Of(ErrNRange))
	assert.Equal(t, ErrModRange, Of(fail("x", ErrModRange, "m")))
	assert.Equal(t, Code("error"), Of(assert.AnError))

	err := fail("Plan", ErrFracRange, "FRAC=%d", 5)
	assert.EqualError(t, err, "Plan: frac_range: FRAC=5")
	assert.ErrorIs(t, err, ErrFracRange)
	assert.NotErrorIs(t, err, ErrModRange)
}
