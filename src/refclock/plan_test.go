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
	"math"
	"testing"
)

var seed = int64(1)

func rand() float64 {
	seed = 25214903917*seed + 11
	return float64(seed&0xffff_ffff_ffff) / float64(1<<48)
}

func Test_accuracy(t *testing.T) {
	bands := [][]float64{ // spread across the amateur bands
		{1838000, 1838200},
		{3570000, 3570200},
		{5288600, 5288800},
		{7040000, 7040200},
		{10140100, 10140300},
		{14097000, 14097200},
		{18106000, 18106200},
		{21096000, 21096200},
		{24926000, 24926200},
		{28126000, 28126200},
		{50294400, 50294600},
		{144489900, 144490100},
	}
	for i := 0; i < len(bands); i++ {
		for f := bands[i][0]; f <= bands[i][1]; f += rand() * 0.2 {
			p, err := NewPlan(25e6, 0.0, f)
			if err != nil {
				t.Fatalf("Error in plan for %.3f: %s", f, err)
			}
			if math.Abs(p.Eps)/f > 1e-9 {
				t.Errorf("Big discrepancy: %.4f, %.2f vs %.2f", p.Eps, p.Out, f)
			}
		}
	}
}

func Test_range(t *testing.T) {
	for f := 1.0; f < 2300; f += 50 {
		_, err := NewPlan(25e6, 0.0, f)
		if err == nil {
			t.Errorf("Expected error due to low frequency: %.3f", f)
		}
	}
	for f := 2302.0; f < 200e6; f *= 1.2 {
		p, err := NewPlan(25e6, 0.0, f)
		if err != nil {
			t.Errorf("Error in plan: %s", err)
		}
		if p.Eps > 1e-3 {
			t.Errorf("Error in plan: %.3f", p.Eps)
		}
	}
}

func Test_invalid(t *testing.T) {
	tests := []struct {
		xtal, vco, f float64
	}{
		{9e6, 0, 10e6},
		{28e6, 0, 10e6},
		{25e6, 0, 201e6},
		{25e6, 500e6, 10e6},
		{25e6, 950e6, 10e6},
	}
	for _, tt := range tests {
		if _, err := NewPlan(tt.xtal, tt.vco, tt.f); err == nil {
			t.Errorf("expected error for %v", tt)
		}
	}
}

func Test_integerOutputs(t *testing.T) {
	p, err := NewPlan(25e6, 0, 10e6)
	if err != nil {
		t.Fatal(err)
	}
	if p.PLL != (Ratio{32, 0, 1}) || p.Multisynth != (Ratio{80, 0, 1}) || p.R != 1 {
		t.Errorf("unexpected plan %s / %s / %d", p.PLL, p.Multisynth, p.R)
	}
	if p.Eps != 0 || p.Reference() != 10_000_000 {
		t.Errorf("expected exact output, got %.6f", p.Out)
	}

	p, err = NewPlan(25e6, 0, 120e6)
	if err != nil {
		t.Fatal(err)
	}
	if p.Multisynth != (Ratio{6, 0, 1}) {
		t.Errorf("expected integer multisynth at 120 MHz, got %s", p.Multisynth)
	}
}

func Test_references(t *testing.T) {
	for _, f := range []uint32{
		10_000_000, 12_800_000, 19_200_000, 25_000_000, 26_000_000,
		27_000_000, 38_400_000, 50_000_000, 100_000_000, 125_000_000,
	} {
		p, err := NewPlan(25e6, 0, float64(f))
		if err != nil {
			t.Fatalf("%d: %s", f, err)
		}
		if math.Abs(p.Eps) > 1e-6 || p.Reference() != f {
			t.Errorf("%d: got %.6f (%s / %s)", f, p.Out, p.PLL, p.Multisynth)
		}
	}
}
