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

package iobus

import (
	"fmt"
	"sync/atomic"
)

// Width is the transfer width of a port.
type Width int

// List of valid Width values.
const (
	Byte     Width = 1
	HalfWord Width = 2
	Word     Width = 4
	LongWord Width = 8
)

func (w Width) String() string {
	switch w {
	case Byte:
		return "byte"
	case HalfWord:
		return "half-word"
	case Word:
		return "word"
	case LongWord:
		return "long-word"
	}
	return fmt.Sprintf("width(%d)", int(w))
}

// mask of valid data bits for the width.
func (w Width) mask() uint64 {
	if w >= LongWord {
		return ^uint64(0)
	}
	return (uint64(1) << (8 * uint(w))) - 1
}

// Status flags for a port.
type Status uint8

// List of valid Status flags.
const (
	InterruptsEnabled Status = 1 << iota
	InterruptPending
)

func (s Status) String() string {
	e := "disabled"
	if s&InterruptsEnabled == InterruptsEnabled {
		e = "enabled"
	}
	if s&InterruptPending == InterruptPending {
		return e + " pending"
	}
	return e
}

// Port is a single device port. Ports are created by devices and attached to
// a bus when the device is connected.
type Port struct {
	address uint16
	width   Width
	read    func() uint64
	write   func(uint64)

	// the bus the port is attached to. nil if not attached
	bus atomic.Pointer[Bus]

	// interrupt fields are guarded by the bus's interrupt lock
	enabled bool
	pending bool
	code    uint32
}

// NewPort is the preferred method of initialisation for the Port type. Either
// of the read or write functions can be nil, in which case the port reads
// zero or ignores writes. Data passed to and returned from the functions is
// masked to the width of the port.
//
// Interrupts are enabled on a new port.
func NewPort(address uint16, width Width, read func() uint64, write func(uint64)) *Port {
	return &Port{
		address: address,
		width:   width,
		read:    read,
		write:   write,
		enabled: true,
	}
}

func (p *Port) String() string {
	return fmt.Sprintf("%04x (%s)", p.address, p.width)
}

// Address returns the port's address.
func (p *Port) Address() uint16 {
	return p.address
}

// Width returns the port's transfer width.
func (p *Port) Width() Width {
	return p.width
}

// RaiseInterrupt makes an interrupt pending on the port. If an interrupt is
// already pending the code is merged with the pending code. Raising an
// interrupt on a port that is not attached to a bus does nothing.
//
// Safe to call from any goroutine.
func (p *Port) RaiseInterrupt(code uint32) {
	b := p.bus.Load()
	if b == nil {
		return
	}
	b.raise(p, code)
}

// Pending returns the pending interrupt code and whether an interrupt is
// pending.
func (p *Port) Pending() (uint32, bool) {
	b := p.bus.Load()
	if b == nil {
		return 0, false
	}

	b.irqCrit.Lock()
	defer b.irqCrit.Unlock()
	return p.code, p.pending
}

// Interrupt is an interrupt delivered by GetIoInterrupt().
type Interrupt struct {
	Port uint16
	Code uint32
}

func (i Interrupt) String() string {
	return fmt.Sprintf("interrupt %#08x from %04x", i.Code, i.Port)
}
