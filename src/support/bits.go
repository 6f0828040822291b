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

// ReadField extracts the width-bit field starting at bit shift of word.
func ReadField(word uint32, shift, width uint8) uint32 {
	return (word >> shift) & mask(width)
}

// WriteField replaces the width-bit field starting at bit shift of word
// with v. Bits of v above width are dropped.
func WriteField(word uint32, shift, width uint8, v uint32) uint32 {
	m := mask(width) << shift
	return word&^m | (v<<shift)&m
}

func mask(width uint8) uint32 {
	if width >= 32 {
		return 0xffff_ffff
	}
	return 1<<width - 1
}

// BoolToBit converts a flag to the 0/1 value stored in a one-bit field.
func BoolToBit(a bool) uint32 {
	if a {
		return 1
	}
	return 0
}
