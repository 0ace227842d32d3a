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
	"sync"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/hardware/memory/bus"
)

// Sentinal errors.
const (
	PortConflict    = "iobus: port conflict at %04x"
	AlreadyAttached = "iobus: port %04x is already attached to a bus"
)

// Bus is the I/O bus.
type Bus struct {
	crit  sync.Mutex
	ports [0x10000]*Port
	count int

	// the interrupt-ready queue in the order ports became pending
	irqCrit sync.Mutex
	ready   []*Port
}

// Bus implements the bus.LoadStore interface.
var _ bus.LoadStore[uint16] = (*Bus)(nil)

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus() *Bus {
	return &Bus{}
}

// Attach ports to the bus. If any port conflicts with an attached port, or
// with another port in the same call, then none of the ports are attached.
func (b *Bus) Attach(ports ...*Port) error {
	b.crit.Lock()
	defer b.crit.Unlock()

	seen := make(map[uint16]bool, len(ports))
	for _, p := range ports {
		if b.ports[p.address] != nil || seen[p.address] {
			return curated.Errorf(PortConflict, p.address)
		}
		if p.bus.Load() != nil {
			return curated.Errorf(AlreadyAttached, p.address)
		}
		seen[p.address] = true
	}

	for _, p := range ports {
		b.ports[p.address] = p
		p.bus.Store(b)
		b.count++
	}

	return nil
}

// Detach ports from the bus. Any pending interrupt on a detached port is
// discarded. Ports not attached to this bus are ignored.
func (b *Bus) Detach(ports ...*Port) {
	b.crit.Lock()
	defer b.crit.Unlock()

	b.irqCrit.Lock()
	defer b.irqCrit.Unlock()

	for _, p := range ports {
		if b.ports[p.address] != p {
			continue
		}
		b.ports[p.address] = nil
		b.count--
		p.bus.Store(nil)
		p.pending = false
		p.code = 0
		b.unqueue(p)
	}
}

// Occupied returns the number of attached ports.
func (b *Bus) Occupied() int {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.count
}

// PortAt returns the port at the address or nil if there is no port.
func (b *Bus) PortAt(address uint16) *Port {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.ports[address]
}

func (b *Bus) read(address uint16, w Width) uint64 {
	b.crit.Lock()
	defer b.crit.Unlock()

	p := b.ports[address]
	if p == nil || p.width != w || p.read == nil {
		return 0
	}
	return p.read() & w.mask()
}

func (b *Bus) write(address uint16, w Width, data uint64) {
	b.crit.Lock()
	defer b.crit.Unlock()

	p := b.ports[address]
	if p == nil || p.width != w || p.write == nil {
		return
	}
	p.write(data & w.mask())
}

// Read8 implements the bus.LoadStore interface.
func (b *Bus) Read8(address uint16) uint8 {
	return uint8(b.read(address, Byte))
}

// Read16 implements the bus.LoadStore interface.
func (b *Bus) Read16(address uint16) uint16 {
	return uint16(b.read(address, HalfWord))
}

// Read32 implements the bus.LoadStore interface.
func (b *Bus) Read32(address uint16) uint32 {
	return uint32(b.read(address, Word))
}

// Read64 implements the bus.LoadStore interface.
func (b *Bus) Read64(address uint16) uint64 {
	return b.read(address, LongWord)
}

// Write8 implements the bus.LoadStore interface.
func (b *Bus) Write8(address uint16, data uint8) {
	b.write(address, Byte, uint64(data))
}

// Write16 implements the bus.LoadStore interface.
func (b *Bus) Write16(address uint16, data uint16) {
	b.write(address, HalfWord, uint64(data))
}

// Write32 implements the bus.LoadStore interface.
func (b *Bus) Write32(address uint16, data uint32) {
	b.write(address, Word, uint64(data))
}

// Write64 implements the bus.LoadStore interface.
func (b *Bus) Write64(address uint16, data uint64) {
	b.write(address, LongWord, data)
}
