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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adf4351/src/support"
)

func TestFindReference_integer(t *testing.T) {
	m, err := FindReference("4007500000", 10_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), m.R)
	assert.Equal(t, uint16(1603), m.N)
	assert.True(t, m.Integer())
	assert.True(t, m.Exact())
	assert.False(t, m.HighPFD)
	assert.Equal(t, Prescaler89, m.Prescaler)
	assert.Equal(t, "2500000", m.PFD.String())

	// N = 50 is allowed with the 4/5 prescaler and needs the 80 MHz PFD
	m, err = FindReference("2000000000", 80_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), m.R)
	assert.Equal(t, uint16(50), m.N)
	assert.Equal(t, uint8(2), m.OutDivider)
	assert.True(t, m.HighPFD)
}

func TestFindReference_fractional(t *testing.T) {
	m, err := FindReference("4000000001", 10_000_000)
	require.NoError(t, err)
	assert.False(t, m.Exact())
	assert.True(t, m.Error.Abs().Cmp(support.DecFromUint(1)) <= 0)
	assert.True(t, m.PFD.Cmp(support.DecFromUint(PFDMaxFrac)) <= 0)
	assert.Less(t, m.Frac, m.Mod)
	assert.Zero(t, m.Actual.Sub(support.MustParseDec("4000000001")).Cmp(m.Error))
}

func TestFindReference_errors(t *testing.T) {
	_, err := FindReference("4400000001", 10_000_000)
	assert.ErrorIs(t, err, ErrRFFrequency)
	_, err = FindReference("4000000000", 50_000)
	assert.ErrorIs(t, err, ErrRefFrequency)
	_, err = FindReference("abc", 10_000_000)
	assert.ErrorIs(t, err, ErrRFFrequency)
}

func TestSweepReference(t *testing.T) {
	ctx := context.Background()

	m, err := SweepReference(ctx, "4007500000", 9_999_999, 5)
	require.NoError(t, err)
	assert.Equal(t, uint32(10_000_000), m.Ref)
	assert.True(t, m.Exact())

	m, err = SweepReference(ctx, "4007500000", 249_999_999, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.Ref, uint32(249_999_990))
	assert.LessOrEqual(t, m.Ref, uint32(RefInMax))

	_, err = SweepReference(ctx, "1", 10_000_000, 5)
	assert.ErrorIs(t, err, ErrRFFrequency)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = SweepReference(cancelled, "4007500000", 10_000_000, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
