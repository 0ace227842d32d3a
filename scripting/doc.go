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

// Package scripting runs Lua scripts against a stepped appliance. Scripts
// are run with github.com/yuin/gopher-lua and can use the following
// functions in addition to the Lua base library:
//
//	inb(port)              read a byte port
//	outb(port, value)      write a byte port
//	inw(port)              read a half-word port
//	outw(port, value)      write a half-word port
//	tick(n)                advance the master clock by n cycles
//	irq()                  take the next interrupt. returns port and code or nil
//	key(code [, device])   press a key on a keyboard controller
//	mount(drive, path)     mount an image in a floppy drive. returns a status code
//	log(message)           add a message to the log
//
// The appliance must be running and stepped for tick() to succeed. Errors
// in the functions are raised as Lua errors and end the script.
package scripting
