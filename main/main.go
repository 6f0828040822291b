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

//go:build rp2040

// Firmware for an rp2040 driving an ADF4351, optionally with an Si5351
// providing the reference. It sets one frequency and then sweeps.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"machine"
	"os"
	"time"

	"adf4351/src/adf4351"
	"adf4351/src/config"
	"adf4351/src/pico"
)

// board settings; the firmware has no file system to load YAML from
const settings = `
frequency: "145000000"
reference:
  frequency: 10000000
  r: 1
channel_step: 12500
output:
  power: 4
  aux_power: 0
  aux_mode: divided
precision:
  enabled: false
  timeout: 2s
si5351:
  enabled: true
  crystal: 25000000
  output: 0
sweep:
  start: "144000000"
  stop: "146000000"
  step: "250000"
  dwell: 200ms
`

func fail(msg string, err error) {
	fmt.Printf("%s: %s\n", msg, err)
	time.Sleep(time.Second)
	machine.EnterBootloader()
}

func main() {
	time.Sleep(1000 * time.Millisecond)

	c, err := config.Parse([]byte(settings))
	if err != nil {
		fail("bad settings", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b, err := pico.Setup(c.Si5351.Enabled, c.Si5351.Crystal)
	if err != nil {
		fail("failed setup", err)
	}
	syn := adf4351.New(b.Synth, adf4351.WithLogger(log), adf4351.WithClock(pico.Stopwatch()))

	path := c.ReferencePath()
	if b.Ref != nil {
		p, err := b.Ref.Set(path.Freq)
		if err != nil {
			fail("reference", err)
		}
		fmt.Printf("Si5351: PLL %s, multisynth %s, %.3f Hz\n", p.PLL, p.Multisynth, p.Out)
		path.Freq = p.Reference()
	}
	pfd, err := syn.SetReference(path)
	if err != nil {
		fail("reference path", err)
	}
	if err := syn.SetChannelStep(c.ChannelStep); err != nil {
		fail("channel step", err)
	}
	fmt.Printf("PFD %s Hz\n", pfd)

	t0 := pico.MicroTime()
	p, err := syn.SetFrequency(c.Request(c.Frequency))
	if err != nil {
		fail("set frequency", err)
	}
	fmt.Printf("%s Hz in %d µs: %s, error %d Hz\n",
		syn.CurrentFrequency(), pico.MicroTime()-t0, p.Regs, p.FrequencyError)

	points, err := syn.State().PlanSweep(c.Sweep.Start, c.Sweep.Stop, c.Sweep.Step, c.Request(""))
	if err != nil {
		fail("sweep plan", err)
	}
	fmt.Printf("sweeping %d points\n", len(points))
	for {
		if err := syn.Sweep(context.Background(), points, c.Sweep.Dwell); err != nil {
			fail("sweep", err)
		}
	}
}
