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

// Package cpu connects an instruction engine to the appliance's buses. The
// engine is the Z80 emulation provided by github.com/koron-go/z80.
//
// Memory accesses go to the memory bus. The IN and OUT instructions go to
// byte ports on the I/O bus. IN A,(n) and OUT (n),A reach ports 0x0000 to
// 0x00ff. The register forms, such as OUT (C),A and INI, use all sixteen bits
// of BC as the port address:
//
//	LD BC,03F1h
//	LD A,0E9h
//	OUT (C),A
//
// The engine is stepped one instruction at a time. Before each instruction,
// if the processor has interrupts enabled, the oldest deliverable interrupt
// on the I/O bus is taken and the low byte of its code is given to the
// processor as the interrupt data, which in interrupt mode 2 is the vector.
//
// The Z80 runs on its own goroutine with Run(), independently of the clock
// goroutine. A halted processor waits for an interrupt it can take. Pending
// interrupts on ports with interrupts disabled do not wake it.
package cpu
