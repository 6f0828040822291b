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
	"fmt"

	"adf4351/src/support"
)

// RegisterImage holds the six 32-bit control words. The low three bits of
// each word are its address and are never touched by the planner.
type RegisterImage [NumRegisters]uint32

// Field locates a bit field inside the register image.
type Field struct {
	Reg   uint8
	Shift uint8
	Width uint8
}

func (f Field) Get(img RegisterImage) uint32 {
	return support.ReadField(img[f.Reg], f.Shift, f.Width)
}

func (f Field) Set(img *RegisterImage, v uint32) {
	img[f.Reg] = support.WriteField(img[f.Reg], f.Shift, f.Width, v)
}

// The register layout is a contract with the silicon; do not reorder.
var (
	FieldFrac         = Field{0, 3, 12}
	FieldInt          = Field{0, 15, 16}
	FieldMod          = Field{1, 3, 12}
	FieldPrescaler    = Field{1, 27, 1}
	FieldPhaseAdjust  = Field{1, 28, 1}
	FieldLDP          = Field{2, 7, 1}
	FieldLDF          = Field{2, 8, 1}
	FieldRCounter     = Field{2, 14, 10}
	FieldRDiv2        = Field{2, 24, 1}
	FieldRefDoubler   = Field{2, 25, 1}
	FieldChargeCancel = Field{3, 21, 1}
	FieldABP          = Field{3, 22, 1}
	FieldOutPower     = Field{4, 3, 2}
	FieldOutEnable    = Field{4, 5, 1}
	FieldAuxPower     = Field{4, 6, 2}
	FieldAuxEnable    = Field{4, 8, 1}
	FieldAuxSelect    = Field{4, 9, 1}
	FieldRFDivSel     = Field{4, 20, 3}
)

// NamedField pairs a field with a short name for dumps.
type NamedField struct {
	Name  string
	Field Field
}

// Fields lists every field the planner writes, in register order.
var Fields = []NamedField{
	{"frac", FieldFrac},
	{"int", FieldInt},
	{"mod", FieldMod},
	{"prescaler", FieldPrescaler},
	{"phase_adjust", FieldPhaseAdjust},
	{"ldp", FieldLDP},
	{"ldf", FieldLDF},
	{"r_counter", FieldRCounter},
	{"rdiv2", FieldRDiv2},
	{"ref_doubler", FieldRefDoubler},
	{"charge_cancel", FieldChargeCancel},
	{"abp", FieldABP},
	{"out_power", FieldOutPower},
	{"out_enable", FieldOutEnable},
	{"aux_power", FieldAuxPower},
	{"aux_enable", FieldAuxEnable},
	{"aux_select", FieldAuxSelect},
	{"rf_div_sel", FieldRFDivSel},
}

// Decode returns the value of every field in Fields.
func (img RegisterImage) Decode() map[string]uint32 {
	m := make(map[string]uint32, len(Fields))
	for _, nf := range Fields {
		m[nf.Name] = nf.Field.Get(img)
	}
	return m
}

func (img RegisterImage) String() string {
	return fmt.Sprintf("%08X %08X %08X %08X %08X %08X", img[0], img[1], img[2], img[3], img[4], img[5])
}
