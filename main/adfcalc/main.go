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

// adfcalc plans ADF4351 register settings on a host.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"adf4351/src/adf4351"
	"adf4351/src/config"
	"adf4351/src/refclock"
)

var (
	configPath string
	verbose    bool
	format     string

	refHz     uint32
	refR      uint16
	doubler   bool
	half      bool
	highPFD   bool
	stepHz    uint32
	power     uint8
	auxPower  uint8
	auxMode   string
	precision bool
	tolerance uint32
	timeout   string
	search    string
	si5351    bool

	refSteps uint32
)

var rootCmd = &cobra.Command{
	Use:          "adfcalc",
	Short:        "Compute ADF4351 synthesizer registers.",
	SilenceUsage: true,
}

func addFlagSynth(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Uint32Var(&refHz, "ref", adf4351.RefDefault, "Reference input in Hz")
	f.Uint16VarP(&refR, "r", "R", 1, "Reference divider")
	f.BoolVar(&doubler, "doubler", false, "Enable the reference doubler")
	f.BoolVar(&half, "half", false, "Enable the reference divide by 2")
	f.BoolVar(&highPFD, "high-pfd", false, "Allow up to 90 MHz at the phase detector (integer mode only)")
	f.Uint32VarP(&stepHz, "step", "s", adf4351.ChanStepDefault, "Channel step in Hz")
	f.Uint8VarP(&power, "power", "p", adf4351.MaxPower, "RF output power 0..4, 0 is off")
	f.Uint8Var(&auxPower, "aux-power", 0, "Aux output power 0..4, 0 is off")
	f.StringVar(&auxMode, "aux-mode", "divided", "Aux output source: divided or fundamental")
	f.BoolVarP(&precision, "precision", "P", false, "Search FRAC/MOD for the target instead of using the channel step")
	f.Uint32VarP(&tolerance, "tolerance", "t", 0, "Largest acceptable frequency error in Hz (precision mode)")
	f.StringVar(&timeout, "timeout", "0s", "Precision search budget, 0 is unbounded")
	f.StringVar(&search, "search", "linear", "Precision search: linear or continued-fraction")
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	pf.StringVarP(&format, "format", "f", "text", "Output format: text, yaml or cbor")

	planCmd := &cobra.Command{
		Use:   "plan [flags] frequency",
		Short: "Plan one output frequency",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return plan(cmd, args) },
	}
	addFlagSynth(planCmd)
	planCmd.Flags().BoolVar(&si5351, "si5351", false, "Also plan an Si5351 generating the reference")
	rootCmd.AddCommand(planCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [flags] start stop step",
		Short: "Precompute a sweep table",
		Args:  cobra.RangeArgs(0, 3),
		RunE:  func(cmd *cobra.Command, args []string) error { return sweep(cmd, args) },
	}
	addFlagSynth(sweepCmd)
	rootCmd.AddCommand(sweepCmd)

	refCmd := &cobra.Command{
		Use:   "refsearch [flags] frequency",
		Short: "Find the reference divider that hits a frequency best",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return refsearch(cmd, args[0]) },
	}
	refCmd.Flags().Uint32Var(&refHz, "ref", adf4351.RefDefault, "Reference in Hz after any doubling or halving")
	refCmd.Flags().Uint32Var(&refSteps, "steps", 0, "Also try this many references 1 Hz apart")
	rootCmd.AddCommand(refCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode [flags] r0 r1 r2 r3 r4 r5",
		Short: "Decode a register image given in hex",
		Args:  cobra.ExactArgs(adf4351.NumRegisters),
		RunE:  func(cmd *cobra.Command, args []string) error { return decode(cmd, args) },
	}
	decodeCmd.Flags().Uint32Var(&refHz, "ref", adf4351.RefDefault, "Reference input in Hz")
	rootCmd.AddCommand(decodeCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config, if any, and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c := config.Default()
	if configPath != "" {
		var err error
		if c, err = config.Load(configPath); err != nil {
			return c, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("ref") {
		c.Reference.Frequency = refHz
	}
	if changed("r") {
		c.Reference.R = refR
	}
	if changed("doubler") {
		c.Reference.Doubler = doubler
	}
	if changed("half") {
		c.Reference.Half = half
	}
	if changed("high-pfd") {
		c.Reference.HighPFD = highPFD
	}
	if changed("step") {
		c.ChannelStep = stepHz
	}
	if changed("power") {
		c.Output.Power = power
	}
	if changed("aux-power") {
		c.Output.AuxPower = auxPower
	}
	if changed("aux-mode") {
		c.Output.AuxMode = auxMode
	}
	if changed("precision") {
		c.Precision.Enabled = precision
	}
	if changed("tolerance") {
		c.Precision.Tolerance = tolerance
	}
	if changed("search") {
		c.Precision.Search = search
	}
	if changed("timeout") {
		d, err := parseDuration(timeout)
		if err != nil {
			return c, err
		}
		c.Precision.Timeout = d
	}
	return c, c.Validate()
}

type planReport struct {
	Frequency string            `yaml:"frequency"`
	Actual    string            `yaml:"actual"`
	Error     int32             `yaml:"error_hz"`
	Status    string            `yaml:"status"`
	PFD       string            `yaml:"pfd"`
	Divider   uint8             `yaml:"divider"`
	Prescaler string            `yaml:"prescaler"`
	N         uint16            `yaml:"int"`
	Frac      uint16            `yaml:"frac"`
	Mod       uint16            `yaml:"mod"`
	Rescaled  bool              `yaml:"rescaled,omitempty"`
	Registers []string          `yaml:"registers"`
	Fields    map[string]uint32 `yaml:"fields"`
	Si5351    *si5351Report     `yaml:"si5351,omitempty"`
}

type si5351Report struct {
	PLL        string  `yaml:"pll"`
	Multisynth string  `yaml:"multisynth"`
	Output     float64 `yaml:"output"`
	Error      float64 `yaml:"error_hz"`
}

func hexWords(regs []uint32) []string {
	s := make([]string, len(regs))
	for i, r := range regs {
		s[i] = fmt.Sprintf("%08X", r)
	}
	return s
}

func plan(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		c.Frequency = args[0]
	}
	if c.Frequency == "" {
		return errors.New("no frequency given")
	}
	state, err := c.State()
	if err != nil {
		return err
	}

	syn := adf4351.New(nil, adf4351.WithLogger(newLogger()), adf4351.WithState(state))
	p, err := syn.SetFrequency(c.Request(c.Frequency))
	if err != nil {
		return err
	}

	r := planReport{
		Frequency: p.Target.String(),
		Actual:    syn.CurrentFrequency(),
		Error:     p.FrequencyError,
		Status:    string(p.Status),
		PFD:       p.PFD.String(),
		Divider:   p.OutDivider,
		Prescaler: p.Prescaler.String(),
		N:         p.N,
		Frac:      p.Frac,
		Mod:       p.Mod,
		Rescaled:  p.Rescaled,
		Registers: hexWords(p.Regs[:]),
		Fields:    p.Regs.Decode(),
	}
	if si5351 || c.Si5351.Enabled {
		sp, err := refclock.NewPlan(c.Si5351.Crystal, 0, float64(c.Reference.Frequency))
		if err != nil {
			return err
		}
		r.Si5351 = &si5351Report{PLL: sp.PLL.String(), Multisynth: sp.Multisynth.String(), Output: sp.Out, Error: sp.Eps}
	}

	switch format {
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(r)
	case "cbor":
		var regs [adf4351.SweepRegisters]uint32
		copy(regs[:], p.Regs[:])
		data, err := adf4351.EncodeSweep([]adf4351.SweepPoint{{
			Frequency: r.Frequency, Regs: regs, FrequencyError: p.FrequencyError, Warning: p.Warning(),
		}})
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	fmt.Printf("%s Hz: INT=%d FRAC=%d MOD=%d div=%d prescaler=%s PFD=%s Hz error=%d Hz %s\n",
		r.Frequency, p.N, p.Frac, p.Mod, p.OutDivider, r.Prescaler, r.PFD, p.FrequencyError, p.Status)
	fmt.Println(strings.Join(r.Registers, " "))
	if r.Si5351 != nil {
		fmt.Printf("Si5351: PLL %s, multisynth %s, output %.3f Hz (error %.3g Hz)\n",
			r.Si5351.PLL, r.Si5351.Multisynth, r.Si5351.Output, r.Si5351.Error)
	}
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 3 {
		c.Sweep.Start, c.Sweep.Stop, c.Sweep.Step = args[0], args[1], args[2]
	} else if len(args) != 0 {
		return errors.New("need start, stop and step")
	}
	state, err := c.State()
	if err != nil {
		return err
	}
	points, err := state.PlanSweep(c.Sweep.Start, c.Sweep.Stop, c.Sweep.Step, c.Request(""))
	if err != nil {
		return err
	}
	newLogger().Debug("sweep planned", "points", len(points))
	return writeSweep(os.Stdout, points)
}

func writeSweep(w io.Writer, points []adf4351.SweepPoint) error {
	switch format {
	case "yaml":
		return yaml.NewEncoder(w).Encode(points)
	case "cbor":
		data, err := adf4351.EncodeSweep(points)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	for _, pt := range points {
		mark := ""
		if pt.Warning {
			mark = " !"
		}
		if _, err := fmt.Fprintf(w, "%s %s %d%s\n", pt.Frequency, strings.Join(hexWords(pt.Regs[:]), " "), pt.FrequencyError, mark); err != nil {
			return err
		}
	}
	return nil
}

type refReport struct {
	Reference uint32 `yaml:"reference"`
	R         uint16 `yaml:"r"`
	PFD       string `yaml:"pfd"`
	N         uint16 `yaml:"int"`
	Frac      uint16 `yaml:"frac"`
	Mod       uint16 `yaml:"mod"`
	Divider   uint8  `yaml:"divider"`
	Prescaler string `yaml:"prescaler"`
	Actual    string `yaml:"actual"`
	Error     string `yaml:"error_hz"`
	HighPFD   bool   `yaml:"high_pfd,omitempty"`
}

func refsearch(cmd *cobra.Command, rf string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var m adf4351.ReferenceMatch
	var err error
	if refSteps == 0 {
		m, err = adf4351.FindReference(rf, refHz)
	} else {
		m, err = adf4351.SweepReference(ctx, rf, refHz, refSteps)
	}
	if err != nil {
		return err
	}
	r := refReport{
		Reference: m.Ref,
		R:         m.R,
		PFD:       m.PFD.String(),
		N:         m.N,
		Frac:      m.Frac,
		Mod:       m.Mod,
		Divider:   m.OutDivider,
		Prescaler: m.Prescaler.String(),
		Actual:    m.Actual.FloatString(6),
		Error:     m.Error.FloatString(6),
		HighPFD:   m.HighPFD,
	}
	if format == "yaml" {
		return yaml.NewEncoder(os.Stdout).Encode(r)
	}
	mode := "fractional"
	if m.Integer() {
		mode = "integer"
	}
	fmt.Printf("reference %d Hz, R=%d, PFD %s Hz, %s mode\n", r.Reference, r.R, r.PFD, mode)
	fmt.Printf("INT=%d FRAC=%d MOD=%d div=%d prescaler=%s\n", r.N, r.Frac, r.Mod, r.Divider, r.Prescaler)
	fmt.Printf("actual %s Hz, error %s Hz\n", r.Actual, r.Error)
	if m.HighPFD {
		fmt.Println("needs VCO band select bypass (PFD above 45 MHz)")
	}
	return nil
}

func decode(cmd *cobra.Command, args []string) error {
	var img adf4351.RegisterImage
	for i, a := range args {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(a), "0x"), 16, 32)
		if err != nil {
			return errors.Wrapf(err, "register %d", i)
		}
		img[i] = uint32(v)
	}
	s := adf4351.DeviceState{RefFreq: refHz, Regs: img}
	fields := img.Decode()
	if format == "yaml" {
		return yaml.NewEncoder(os.Stdout).Encode(map[string]any{
			"fields":    fields,
			"pfd":       s.PFD().String(),
			"frequency": s.CurrentFrequency(),
		})
	}
	for _, nf := range adf4351.Fields {
		fmt.Printf("%-14s %d\n", nf.Name, fields[nf.Name])
	}
	fmt.Printf("PFD %s Hz, output %s Hz\n", s.PFD(), s.CurrentFrequency())
	return nil
}

func parseDuration(s string) (d time.Duration, err error) {
	d, err = time.ParseDuration(s)
	return d, errors.Wrap(err, "timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
