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

// Package iobus implements the I/O bus: a 64K port address space mapping
// 16-bit addresses to device ports, and the queue of interrupts that are
// ready to be delivered to the CPU.
//
// Each port has a fixed width. A read or write of a different width to the
// port's address, or of an address with no port, is an open bus access. Open
// bus reads return zero and open bus writes are ignored.
//
// A device raises an interrupt through one of its ports. The interrupt stays
// pending on the port until it is delivered by GetIoInterrupt() or
// acknowledged with SetPortStatus(). Raising an interrupt on a port that is
// already pending merges the codes. The port is never queued twice.
//
// Interrupts are delivered in the order they became ready, regardless of the
// order in which ports were attached. An interrupt raised on a port with
// interrupts disabled stays pending but is skipped by GetIoInterrupt() until
// interrupts are enabled on that port.
//
// Locking: every bus operation takes the bus lock for the duration of the
// call. Port handlers are called with the bus lock held. The interrupt queue
// has its own lock which is taken by RaiseInterrupt() and never held while
// calling out of the package. Devices can therefore raise interrupts from
// the clock goroutine without taking the bus lock.
package iobus
