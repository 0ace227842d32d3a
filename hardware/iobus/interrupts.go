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

// raise an interrupt on an attached port.
func (b *Bus) raise(p *Port, code uint32) {
	b.irqCrit.Lock()
	defer b.irqCrit.Unlock()

	// the port may have been detached since the caller loaded the bus pointer
	if p.bus.Load() != b {
		return
	}

	if p.pending {
		p.code |= code
		return
	}

	p.pending = true
	p.code = code
	b.ready = append(b.ready, p)
}

// remove port from ready queue. must be called with irqCrit held.
func (b *Bus) unqueue(p *Port) {
	for i, q := range b.ready {
		if q == p {
			b.ready = append(b.ready[:i], b.ready[i+1:]...)
			return
		}
	}
}

// GetIoInterrupt delivers the oldest pending interrupt on a port with
// interrupts enabled. Delivery clears the pending interrupt. Returns false if
// there is no such interrupt.
func (b *Bus) GetIoInterrupt() (Interrupt, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()

	b.irqCrit.Lock()
	defer b.irqCrit.Unlock()

	for i, p := range b.ready {
		if !p.enabled {
			continue
		}

		b.ready = append(b.ready[:i], b.ready[i+1:]...)
		irq := Interrupt{Port: p.address, Code: p.code}
		p.pending = false
		p.code = 0
		return irq, true
	}

	return Interrupt{}, false
}

// InterruptDeliverable returns true if GetIoInterrupt() would deliver an
// interrupt.
func (b *Bus) InterruptDeliverable() bool {
	b.irqCrit.Lock()
	defer b.irqCrit.Unlock()

	for _, p := range b.ready {
		if p.enabled {
			return true
		}
	}
	return false
}

// InterruptsReady returns the number of pending interrupts, including those
// on ports with interrupts disabled.
func (b *Bus) InterruptsReady() int {
	b.irqCrit.Lock()
	defer b.irqCrit.Unlock()
	return len(b.ready)
}

// TestPortStatus returns the status of the port at the address. Returns false
// if there is no port.
func (b *Bus) TestPortStatus(address uint16) (Status, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()

	p := b.ports[address]
	if p == nil {
		return 0, false
	}

	b.irqCrit.Lock()
	defer b.irqCrit.Unlock()

	var s Status
	if p.enabled {
		s |= InterruptsEnabled
	}
	if p.pending {
		s |= InterruptPending
	}
	return s, true
}

// SetPortStatus changes the status of the port at the address. The
// InterruptsEnabled flag is copied to the port. Clearing the InterruptPending
// flag acknowledges any pending interrupt, which is then discarded. Setting
// the InterruptPending flag has no effect; only a device can raise an
// interrupt. Returns false if there is no port.
func (b *Bus) SetPortStatus(address uint16, status Status) bool {
	b.crit.Lock()
	defer b.crit.Unlock()

	p := b.ports[address]
	if p == nil {
		return false
	}

	b.irqCrit.Lock()
	defer b.irqCrit.Unlock()

	p.enabled = status&InterruptsEnabled == InterruptsEnabled
	if status&InterruptPending != InterruptPending && p.pending {
		p.pending = false
		p.code = 0
		b.unqueue(p)
	}

	return true
}
