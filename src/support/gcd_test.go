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

func Test_GCD(t *testing.T) {
	tests := []struct {
		a, b, want uint64
	}{
		{0, 0, 0},
		{0, 7, 7},
		{7, 0, 7},
		{12, 18, 6},
		{3, 4, 1},
		{250_000, 10_000_000, 250_000},
	}
	for _, tt := range tests {
		if got := GCD(tt.a, tt.b); got != tt.want {
			t.Errorf("GCD(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func Test_ReduceFraction(t *testing.T) {
	tests := []struct {
		name         string
		frac, mod    uint64
		wantF, wantM uint64
		rescaled     bool
	}{
		{"already reduced", 3, 4, 3, 4, false},
		{"common factor", 75, 100, 3, 4, false},
		{"zero numerator", 0, 100, 0, 1, false},
		{"fits after reduction", 4000, 8000, 1, 2, false},
		{"halved into range", 4999, 10000, 1249, 2500, true},
		{"halving catches up", 8190, 8191, 4094, 4095, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, m, r := ReduceFraction(tt.frac, tt.mod, 4095)
			if f != tt.wantF || m != tt.wantM || r != tt.rescaled {
				t.Errorf("ReduceFraction(%d, %d) = %d/%d %v, want %d/%d %v",
					tt.frac, tt.mod, f, m, r, tt.wantF, tt.wantM, tt.rescaled)
			}
		})
	}
}

// Every reduced pair is coprime unless the halving path ran, and the field
// constraints hold either way.
func Test_ReduceFractionProperties(t *testing.T) {
	for mod := uint64(2); mod < 20_000; mod += 37 {
		for frac := uint64(0); frac < mod; frac += 1 + mod/13 {
			f, m, rescaled := ReduceFraction(frac, mod, 4095)
			if m > 4095 {
				t.Fatalf("%d/%d: modulus %d too big", frac, mod, m)
			}
			if f >= m && f != 0 {
				t.Fatalf("%d/%d: %d/%d violates frac < mod", frac, mod, f, m)
			}
			if !rescaled && GCD(f, m) != 1 {
				t.Fatalf("%d/%d: %d/%d not in lowest terms", frac, mod, f, m)
			}
		}
	}
}
