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

// Package userinput forwards key presses from the host to a keyboard
// controller. The Terminal type puts the controlling terminal into raw mode
// using github.com/pkg/term/termios, so that every byte typed is forwarded
// as it is typed.
//
// The byte value is used as the key code. The Ctrl-] key (0x1d) is not
// forwarded and instead ends the forwarding.
package userinput
