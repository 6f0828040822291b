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

import "testing"

func Test_DecArithmetic(t *testing.T) {
	f := MustParseDec("4007500000")
	pfd := DecFromUint(10_000_000)
	n := f.Quo(pfd)
	if n.String() != "400.75" {
		t.Errorf("4007.5 MHz / 10 MHz = %s, want 400.75", n)
	}
	if n.Floor().String() != "400" {
		t.Errorf("floor = %s", n.Floor())
	}
	if n.Frac().Cmp(DecRatio(3, 4)) != 0 {
		t.Errorf("frac = %s, want 0.75", n.Frac())
	}
	if got := DecRatio(-15, 2).Floor(); got.Cmp(DecFromInt(-8)) != 0 {
		t.Errorf("floor(-7.5) = %s", got)
	}
	if got := DecRatio(-15, 2).Trunc(); got.Cmp(DecFromInt(-7)) != 0 {
		t.Errorf("trunc(-7.5) = %s", got)
	}
	if got := DecRatio(5, 2).Round(); got.Cmp(DecFromInt(3)) != 0 {
		t.Errorf("round(2.5) = %s", got)
	}
	var zero Dec
	if !zero.IsZero() || zero.Add(DecFromUint(2)).String() != "2" {
		t.Errorf("zero value is not usable")
	}
}

func Test_ParseDec(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"34375000", "34375000", true},
		{" 144.39e6 ", "144390000", true},
		{"100.000001", "100.000001", true},
		{"3/4", "", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		d, err := ParseDec(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseDec(%q) error = %v", tt.in, err)
			continue
		}
		if tt.ok && d.String() != tt.want {
			t.Errorf("ParseDec(%q) = %s, want %s", tt.in, d, tt.want)
		}
	}
}

func Test_DecConversions(t *testing.T) {
	if u, ok := DecRatio(9, 2).Uint64(); !ok || u != 4 {
		t.Errorf("Uint64(4.5) = %d, %v", u, ok)
	}
	if _, ok := DecFromInt(-1).Uint64(); ok {
		t.Errorf("Uint64(-1) should fail")
	}
	if _, ok := DecRatio(-1, 2).Uint64(); ok {
		t.Errorf("Uint64(-0.5) should fail")
	}
	if i, ok := DecRatio(-9, 2).Int64(); !ok || i != -4 {
		t.Errorf("Int64(-4.5) = %d, %v", i, ok)
	}
	if n, d, ok := DecRatio(10, 4).Fraction(); !ok || n != 5 || d != 2 {
		t.Errorf("Fraction(10/4) = %d/%d %v", n, d, ok)
	}
	if s := MustParseDec("4007500000.0000005").FloatString(6); s != "4007500000.000001" {
		t.Errorf("FloatString = %s", s)
	}
}
