// This file is part of pcsim.
//
// pcsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// pcsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with pcsim.  If not, see <https://www.gnu.org/licenses/>.

package clocks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pcsim/pcsim/curated"
)

// Frequency is a clock rate in Hz.
type Frequency uint64

// Commonly used frequencies.
const (
	Hz  Frequency = 1
	KHz Frequency = 1000 * Hz
	MHz Frequency = 1000 * KHz
	GHz Frequency = 1000 * MHz
)

// Sentinal errors.
const (
	InvalidFrequency = "clocks: invalid frequency (%s)"
)

var units = []struct {
	suffix string
	scale  Frequency
}{
	{"ghz", GHz},
	{"mhz", MHz},
	{"khz", KHz},
	{"hz", Hz},
}

// ParseFrequency converts a string of the form <count><unit> to a Frequency.
// Units are Hz, kHz, MHz and GHz in any letter case. A bare number is taken
// to be in Hz. The frequency must be greater than zero.
func ParseFrequency(s string) (Frequency, error) {
	t := strings.ToLower(strings.TrimSpace(s))

	scale := Hz
	for _, u := range units {
		if strings.HasSuffix(t, u.suffix) {
			scale = u.scale
			t = strings.TrimSpace(strings.TrimSuffix(t, u.suffix))
			break
		}
	}

	n, err := strconv.ParseUint(t, 10, 64)
	if err != nil || n == 0 {
		return 0, curated.Errorf(InvalidFrequency, s)
	}

	return Frequency(n) * scale, nil
}

// String returns the frequency in the largest unit that divides it exactly.
func (f Frequency) String() string {
	switch {
	case f == 0:
		return "0Hz"
	case f%GHz == 0:
		return fmt.Sprintf("%dGHz", f/GHz)
	case f%MHz == 0:
		return fmt.Sprintf("%dMHz", f/MHz)
	case f%KHz == 0:
		return fmt.Sprintf("%dkHz", f/KHz)
	}
	return fmt.Sprintf("%dHz", uint64(f))
}
