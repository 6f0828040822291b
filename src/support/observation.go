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

/*
CombineTimer reconstructs a monotonic 64-bit counter from two reads of a
split hi/lo counter, taken in the order hi1, lo1, hi2, lo2. The low word
wraps at `scale` (1<<32 for the rp2040 microsecond timer).

The reads cannot be atomic, so the high word may tick between them. If both
high reads agree, any tick happened after lo1 and (hi1, lo1) is consistent.
If they differ, lo1 is paired with hi2 when lo1 < lo2 (no wrap between the
two low reads, so lo1 was read after the tick) and with hi1 otherwise.

The counter must not advance by more than about scale/2 during the four
reads, which is trivially true for a microsecond timer read back to back.
*/
func CombineTimer(scale uint64, hi1, lo1, hi2, lo2 uint32) uint64 {
	hi := hi1
	if hi1 != hi2 && lo1 < lo2 {
		hi = hi2
	}
	return uint64(hi)*scale + uint64(lo1)
}
