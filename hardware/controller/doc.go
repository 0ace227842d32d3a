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

// Package controller implements the command/response protocol shared by
// every device controller. A concrete controller supplies an opcode table
// and embeds a Controller.
//
// Each controller has four byte-wide ports relative to its base address:
//
//	base+0	status (read)
//	base+1	command (write)
//	base+2	data (read/write)
//	base+3	interrupt mask (read/write)
//
// The protocol is a state machine:
//
//	Ready -> AcceptingCommand -> ExecutingCommand -> ProvidingResult -> Ready
//
// A command begins with an opcode written to either the command port or the
// data port. The opcode's Length function is consulted after every byte and
// once enough bytes have been received the command executes. Execution
// produces an Outcome: the result is available immediately, after a fixed
// number of clock ticks, or when an asynchronous worker posts a result to
// the controller's mailbox.
//
// The result is read back through the data port one byte at a time. The
// first byte is always a status code. After the last byte has been read the
// controller returns to Ready. A command with an empty result returns to
// Ready as soon as it completes.
//
// A write to the command port while a result is being provided abandons the
// result and starts a new command. A write to the command port while a
// command is accepting parameters restarts the command. Writes to either
// port while a command is executing are ignored, as are data port writes
// while a result is being provided.
//
// State transitions latch interrupt conditions. Conditions enabled by the
// interrupt mask are raised on the status port during the next clock tick.
// A latched condition is not raised again until the CPU has consumed the
// status port's pending interrupt.
package controller
