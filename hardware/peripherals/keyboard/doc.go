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

// Package keyboard implements the keyboard controller. Key codes from the
// host are queued with PressKey(), which is safe to call from any goroutine.
// On every scan the controller moves one key from the host queue into its
// own buffer, where the guest can read it, and signals the device specific
// interrupt condition.
//
// The low nibble of the status port has bit 0 set when the buffer is not
// empty and bit 1 set when scanning is enabled.
package keyboard
