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

import (
	"fmt"
	"math/big"
	"strings"
)

/*
Dec is an exact decimal quantity used for frequency arithmetic.

Frequencies span six decades (34 MHz up to 4.4 GHz, channel steps down to
1 Hz) and the planner multiplies and divides them by dividers, moduli and
reference ratios. Floating point drifts across that range, so every
intermediate value is kept as an exact rational. Values are immutable: each
operation returns a new Dec. The zero value is 0.
*/
type Dec struct {
	r *big.Rat
}

// DecFromUint returns the decimal value of u.
func DecFromUint(u uint64) Dec {
	return Dec{new(big.Rat).SetUint64(u)}
}

// DecFromInt returns the decimal value of i.
func DecFromInt(i int64) Dec {
	return Dec{new(big.Rat).SetInt64(i)}
}

// DecRatio returns a/b. It panics if b is zero.
func DecRatio(a, b int64) Dec {
	return Dec{big.NewRat(a, b)}
}

// ParseDec parses a plain decimal number such as "4007500000" or "144.39e6".
func ParseDec(s string) (Dec, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsRune(s, '/') {
		return Dec{}, fmt.Errorf("support: invalid decimal %q", s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Dec{}, fmt.Errorf("support: invalid decimal %q", s)
	}
	return Dec{r}, nil
}

// MustParseDec is ParseDec for constants; it panics on malformed input.
func MustParseDec(s string) Dec {
	d, err := ParseDec(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (x Dec) rat() *big.Rat {
	if x.r == nil {
		return new(big.Rat)
	}
	return x.r
}

func (x Dec) Add(y Dec) Dec { return Dec{new(big.Rat).Add(x.rat(), y.rat())} }
func (x Dec) Sub(y Dec) Dec { return Dec{new(big.Rat).Sub(x.rat(), y.rat())} }
func (x Dec) Mul(y Dec) Dec { return Dec{new(big.Rat).Mul(x.rat(), y.rat())} }

// Quo returns x/y. It panics if y is zero.
func (x Dec) Quo(y Dec) Dec { return Dec{new(big.Rat).Quo(x.rat(), y.rat())} }

func (x Dec) Abs() Dec { return Dec{new(big.Rat).Abs(x.rat())} }

// Cmp compares x and y and returns -1, 0 or +1.
func (x Dec) Cmp(y Dec) int { return x.rat().Cmp(y.rat()) }

func (x Dec) Sign() int       { return x.rat().Sign() }
func (x Dec) IsZero() bool    { return x.rat().Sign() == 0 }
func (x Dec) IsInt() bool     { return x.rat().IsInt() }
func (x Dec) Less(y Dec) bool { return x.Cmp(y) < 0 }

// Floor returns the largest integer value <= x.
func (x Dec) Floor() Dec {
	r := x.rat()
	q := new(big.Int).Div(r.Num(), r.Denom()) // Euclidean, denominator is positive
	return Dec{new(big.Rat).SetInt(q)}
}

// Trunc drops the fractional part, rounding toward zero.
func (x Dec) Trunc() Dec {
	r := x.rat()
	return Dec{new(big.Rat).SetInt(new(big.Int).Quo(r.Num(), r.Denom()))}
}

// Frac returns x - Floor(x), which lies in [0, 1).
func (x Dec) Frac() Dec { return x.Sub(x.Floor()) }

// Round rounds half up, that is Floor(x + 1/2).
func (x Dec) Round() Dec { return x.Add(DecRatio(1, 2)).Floor() }

// Uint64 returns the integer part of a non-negative x. Negative values,
// including those above -1, and values beyond 64 bits return 0 and false.
func (x Dec) Uint64() (uint64, bool) {
	if x.Sign() < 0 {
		return 0, false
	}
	i := x.Trunc().rat().Num()
	if !i.IsUint64() {
		return 0, false
	}
	return i.Uint64(), true
}

// Int64 returns the integer part of x, truncated toward zero.
func (x Dec) Int64() (int64, bool) {
	i := x.Trunc().rat().Num()
	if !i.IsInt64() {
		return 0, false
	}
	return i.Int64(), true
}

// Fraction exposes x as numerator/denominator when both fit in 64 bits.
func (x Dec) Fraction() (num, den uint64, ok bool) {
	r := x.rat()
	if r.Sign() < 0 || !r.Num().IsUint64() || !r.Denom().IsUint64() {
		return 0, 0, false
	}
	return r.Num().Uint64(), r.Denom().Uint64(), true
}

func (x Dec) Float64() float64 {
	f, _ := x.rat().Float64()
	return f
}

// FloatString formats x with the given number of decimals, rounding the
// last digit half away from zero.
func (x Dec) FloatString(decimals int) string {
	return x.rat().FloatString(decimals)
}

func (x Dec) String() string {
	if x.IsInt() {
		return x.rat().Num().String()
	}
	s := strings.TrimRight(x.FloatString(6), "0")
	return strings.TrimSuffix(s, ".")
}
