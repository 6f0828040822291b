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
	"log/slog"
	"sync"
	"time"
)

// Writer shifts a full register image into the chip, word 5 first.
type Writer interface {
	WriteRegisters(regs [NumRegisters]uint32) error
}

/*
Synth ties a DeviceState to the transport that programs the chip.

Every setter plans against the current state, writes the resulting image
and only then adopts it. If planning or the write fails the previous state
is kept. A nil Writer gives a planning-only synthesizer.

A Synth is safe for concurrent use.
*/
type Synth struct {
	mu    sync.Mutex
	state DeviceState
	w     Writer
	log   *slog.Logger
	clock Clock
	sleep func(time.Duration)
}

type Option func(*Synth)

func WithLogger(l *slog.Logger) Option { return func(s *Synth) { s.log = l } }
func WithClock(c Clock) Option         { return func(s *Synth) { s.clock = c } }
func WithState(st DeviceState) Option  { return func(s *Synth) { s.state = st } }

// WithSleep replaces time.Sleep for the dwell between sweep points.
func WithSleep(f func(time.Duration)) Option { return func(s *Synth) { s.sleep = f } }

// New returns a synthesizer in the power-on state.
func New(w Writer, opts ...Option) *Synth {
	s := &Synth{
		state: NewDeviceState(),
		w:     w,
		log:   slog.Default(),
		sleep: time.Sleep,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns a copy of the committed state.
func (s *Synth) State() DeviceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Synth) write(regs RegisterImage) error {
	if s.w == nil {
		return nil
	}
	return s.w.WriteRegisters(regs)
}

/*
SetReference validates and adopts a reference path. The chip is not written:
R and the reference flags reach it with the next frequency.
*/
func (s *Synth) SetReference(p ReferencePath) (pfd string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, d, err := s.state.PlanReference(p)
	if err != nil {
		s.log.Info("reference rejected", "op", "SetReference", "code", Of(err), "ref", p.Freq, "r", p.R, "err", err)
		return "", err
	}
	s.state = next
	s.log.Debug("reference set", "ref", p.Freq, "r", p.R, "doubler", p.Doubler, "half", p.Half, "pfd", d.String())
	return d.String(), nil
}

// SetChannelStep adopts a channel step for channel-step planning.
func (s *Synth) SetChannelStep(step uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.WithChannelStep(step)
	if err != nil {
		s.log.Info("channel step rejected", "op", "SetChannelStep", "code", Of(err), "step", step)
		return err
	}
	s.state = next
	return nil
}

/*
SetFrequency plans req, writes it and commits it. The returned plan may
carry WarnFrequencyError; it has been committed all the same. On error
nothing is written and the state is unchanged.
*/
func (s *Synth) SetFrequency(req Request) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Clock == nil {
		req.Clock = s.clock
	}
	p, err := s.state.Plan(req)
	if err != nil {
		s.log.Info("plan failed", "op", "SetFrequency", "code", Of(err), "freq", req.Frequency, "err", err)
		return Plan{}, err
	}
	if err := s.write(p.Regs); err != nil {
		return Plan{}, err
	}
	s.state = s.state.Commit(p)
	if p.Warning() {
		s.log.Warn("frequency error above tolerance", "freq", p.Target.String(), "error_hz", p.FrequencyError, "tolerance_hz", req.Tolerance)
	}
	s.log.Debug("frequency set", "freq", p.Target.String(), "div", p.OutDivider, "prescaler", p.Prescaler.String(),
		"int", p.N, "frac", p.Frac, "mod", p.Mod, "error_hz", p.FrequencyError, "rescaled", p.Rescaled)
	return p, nil
}

// Flush rewrites the committed image, e.g. after the chip lost power.
func (s *Synth) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.state.Regs)
}

// LoadSweep writes a precomputed image for words 0..4 and commits it.
func (s *Synth) LoadSweep(regs [SweepRegisters]uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSweep(regs)
}

func (s *Synth) loadSweep(regs [SweepRegisters]uint32) error {
	next := s.state.WithSweepValues(regs)
	if err := s.write(next.Regs); err != nil {
		return err
	}
	s.state = next
	return nil
}

// SweepValues returns words 0..4 of the committed image.
func (s *Synth) SweepValues() [SweepRegisters]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SweepValues()
}

/*
Sweep loads each point in turn and waits dwell after it. It returns when
all points are done, when a write fails, or when ctx is cancelled; the
lock is held for the whole sweep.
*/
func (s *Synth) Sweep(ctx context.Context, points []SweepPoint, dwell time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, pt := range points {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.loadSweep(pt.Regs); err != nil {
			s.log.Info("sweep stopped", "op", "Sweep", "point", i, "freq", pt.Frequency, "err", err)
			return err
		}
		s.state.FrequencyError = pt.FrequencyError
		if dwell > 0 {
			s.sleep(dwell)
		}
	}
	return nil
}

// FrequencyError is the error of the committed frequency in Hz.
func (s *Synth) FrequencyError() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.FrequencyError
}

// CurrentFrequency reads the programmed frequency back from the image.
func (s *Synth) CurrentFrequency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentFrequency()
}
