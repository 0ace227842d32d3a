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

package userinput

import (
	"bufio"
	"io"
)

// QuitKey is the byte that ends forwarding.
const QuitKey = 0x1d

// Keyboard is implemented by any device that can accept key presses from
// the host. The keyboard controller implements this interface.
type Keyboard interface {
	PressKey(code uint8) bool
}

// Stats of a forwarding session.
type Stats struct {
	Forwarded int
	Dropped   int
}

// Forward reads bytes from the reader and presses them on the keyboard
// until the quit key is read or the reader ends. Keys that the keyboard
// cannot accept are counted as dropped. Returns true if the quit key was
// read.
func Forward(r io.Reader, kbd Keyboard, stats *Stats) (bool, error) {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}

		if b == QuitKey {
			return true, nil
		}

		if kbd.PressKey(b) {
			stats.Forwarded++
		} else {
			stats.Dropped++
		}
	}
}
