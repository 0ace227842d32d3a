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

package cpu

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/koron-go/z80"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/hardware/memory"
	"github.com/pcsim/pcsim/logger"
)

// how often a halted processor checks for a deliverable interrupt
const haltPoll = time.Millisecond

// the number of instructions executed between checks of the context
const checkInterval = 1024

// the I/O instructions that take the port number from an immediate byte.
// every other I/O instruction is ED prefixed and takes it from BC
const (
	opOutImmediate = 0xd3
	opInImmediate  = 0xdb
)

// memory accesses by the processor
type memoryAdapter struct {
	mem *memory.Bus
}

func (m memoryAdapter) Get(addr uint16) uint8 {
	return m.mem.Read8(uint32(addr))
}

func (m memoryAdapter) Set(addr uint16, value uint8) {
	m.mem.Write8(uint32(addr), value)
}

// port accesses by the processor. the engine only passes the low byte of
// the port address so the full address is rebuilt from the instruction
type ioAdapter struct {
	c *Z80
}

// IN A,(n) and OUT (n),A address ports 0x0000 to 0x00ff. the register forms
// put all of BC on the address bus.
func (a ioAdapter) address(addr uint8) uint16 {
	switch a.c.cpu.Memory.Get(a.c.opPC) {
	case opOutImmediate, opInImmediate:
		return uint16(addr)
	}
	return a.c.cpu.BC.U16()
}

func (a ioAdapter) In(addr uint8) uint8 {
	return a.c.io.Read8(a.address(addr))
}

func (a ioAdapter) Out(addr uint8, value uint8) {
	a.c.io.Write8(a.address(addr), value)
}

// Z80 is the instruction engine.
type Z80 struct {
	cpu  z80.CPU
	io   *iobus.Bus
	perm logger.Permission

	// address of the instruction being executed
	opPC uint16

	halted  atomic.Bool
	running atomic.Bool
}

// NewZ80 is the preferred method of initialisation for the Z80 type. The
// program counter is set to the origin.
func NewZ80(io *iobus.Bus, mem *memory.Bus, perm logger.Permission, origin uint16) *Z80 {
	c := &Z80{
		io:   io,
		perm: perm,
	}
	c.cpu = z80.CPU{
		States: z80.States{SPR: z80.SPR{PC: origin}},
		Memory: memoryAdapter{mem: mem},
		IO:     ioAdapter{c: c},
	}
	return c
}

// Halted returns true if the processor is waiting for an interrupt.
func (c *Z80) Halted() bool {
	return c.halted.Load()
}

// PC returns the program counter. Only valid when the processor is not
// running.
func (c *Z80) PC() uint16 {
	return c.cpu.PC
}

// interrupt takes the oldest deliverable interrupt from the I/O bus and
// hands it to the engine. Interrupts stay on the bus while the processor is
// not accepting them.
func (c *Z80) interrupt() {
	if c.cpu.Interrupt != nil || !c.cpu.IFF1 || !c.io.InterruptDeliverable() {
		return
	}
	irq, ok := c.io.GetIoInterrupt()
	if !ok {
		return
	}
	c.cpu.Interrupt = &z80.Interrupt{
		Type: z80.IMType,
		Data: []uint8{uint8(irq.Code)},
	}
}

// Run the processor until the context is done.
func (c *Z80) Run(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		panic("cpu: Run() called while already running")
	}
	defer c.running.Store(false)

	logger.Logf(c.perm, "cpu", "running from %#04x", c.cpu.PC)

	c.cpu.HALT = false
	for n := 0; ; n++ {
		if n%checkInterval == 0 && ctx.Err() != nil {
			return
		}

		if c.cpu.HALT {
			c.halted.Store(true)
			if !c.cpu.IFF1 {
				logger.Logf(c.perm, "cpu", "halted at %#04x with interrupts disabled", c.cpu.PC)
			}
			if !c.wait(ctx) {
				return
			}
			c.halted.Store(false)
			c.cpu.HALT = false

			// the engine leaves the program counter on the HALT instruction.
			// the interrupt returns to the instruction after it
			c.cpu.PC++
		}

		c.interrupt()
		c.opPC = c.cpu.PC
		c.cpu.Step()
	}
}

// wait for an interrupt the processor can take. returns false if the context
// is done first.
func (c *Z80) wait(ctx context.Context) bool {
	t := time.NewTicker(haltPoll)
	defer t.Stop()

	for {
		if c.cpu.IFF1 && c.io.InterruptDeliverable() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
		}
	}
}
