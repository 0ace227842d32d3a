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

package iobus_test

import (
	"sync"
	"testing"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/test"
)

// register is a simple port backing value.
type register struct {
	value uint64
}

func (r *register) port(address uint16, width iobus.Width) *iobus.Port {
	return iobus.NewPort(address, width,
		func() uint64 { return r.value },
		func(v uint64) { r.value = v },
	)
}

func TestAttachDetach(t *testing.T) {
	b := iobus.NewBus()
	var r register

	p := r.port(0x03f0, iobus.Byte)
	q := r.port(0x03f1, iobus.Byte)

	test.ExpectSuccess(t, b.Attach(p, q))
	test.ExpectEquality(t, b.Occupied(), 2)
	test.ExpectEquality(t, b.PortAt(0x03f0), p)

	// attaching the same port twice fails
	err := b.Attach(p)
	test.ExpectFailure(t, err)

	b.Detach(p, q)
	test.ExpectEquality(t, b.Occupied(), 0)
	test.ExpectEquality(t, b.PortAt(0x03f0), (*iobus.Port)(nil))

	// round trip: the ports can be attached again
	test.ExpectSuccess(t, b.Attach(p, q))
	test.ExpectEquality(t, b.Occupied(), 2)
}

// a conflicting attach leaves the bus exactly as it was
func TestAttachConflict(t *testing.T) {
	b := iobus.NewBus()
	var r register

	test.DemandSuccess(t, b.Attach(r.port(0x0060, iobus.Byte)))

	a := r.port(0x0070, iobus.Byte)
	c := r.port(0x0060, iobus.Word)
	err := b.Attach(a, c)
	test.ExpectSuccess(t, curated.Is(err, iobus.PortConflict))
	test.ExpectEquality(t, b.Occupied(), 1)
	test.ExpectEquality(t, b.PortAt(0x0070), (*iobus.Port)(nil))

	// duplicate addresses within a single call
	err = b.Attach(r.port(0x0080, iobus.Byte), r.port(0x0080, iobus.Byte))
	test.ExpectSuccess(t, curated.Is(err, iobus.PortConflict))
	test.ExpectEquality(t, b.Occupied(), 1)

	// the port that failed to attach can still be attached elsewhere
	test.ExpectSuccess(t, b.Attach(a))
}

func TestReadWrite(t *testing.T) {
	b := iobus.NewBus()
	var r8, r16, r32, r64 register

	test.DemandSuccess(t, b.Attach(
		r8.port(0x10, iobus.Byte),
		r16.port(0x20, iobus.HalfWord),
		r32.port(0x30, iobus.Word),
		r64.port(0x40, iobus.LongWord),
	))

	b.Write8(0x10, 0xab)
	test.ExpectEquality(t, b.Read8(0x10), 0xab)
	b.Write16(0x20, 0xabcd)
	test.ExpectEquality(t, b.Read16(0x20), 0xabcd)
	b.Write32(0x30, 0x12345678)
	test.ExpectEquality(t, b.Read32(0x30), 0x12345678)
	b.Write64(0x40, 0x1122334455667788)
	test.ExpectEquality(t, b.Read64(0x40), 0x1122334455667788)

	// width mismatch is an open bus access
	test.ExpectEquality(t, b.Read16(0x10), 0)
	b.Write8(0x20, 0xff)
	test.ExpectEquality(t, r16.value, 0xabcd)

	// unattached address
	test.ExpectEquality(t, b.Read8(0x11), 0)
	b.Write8(0x11, 0xff)

	// data is masked to the port width
	r8.value = 0x1ff
	test.ExpectEquality(t, b.Read8(0x10), 0xff)

	// nil handlers
	test.DemandSuccess(t, b.Attach(iobus.NewPort(0x50, iobus.Byte, nil, nil)))
	b.Write8(0x50, 1)
	test.ExpectEquality(t, b.Read8(0x50), 0)
}

// interrupts are delivered in the order they became ready, not in the order
// the ports were attached
func TestInterruptOrder(t *testing.T) {
	b := iobus.NewBus()
	var r register

	p := r.port(0x60, iobus.Byte)
	q := r.port(0x70, iobus.Byte)
	s := r.port(0x3f0, iobus.Byte)
	test.DemandSuccess(t, b.Attach(p, q, s))

	s.RaiseInterrupt(0x01)
	p.RaiseInterrupt(0x02)
	q.RaiseInterrupt(0x04)

	// raising again merges without queueing twice
	s.RaiseInterrupt(0x08)
	test.ExpectEquality(t, b.InterruptsReady(), 3)

	irq, ok := b.GetIoInterrupt()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, irq, iobus.Interrupt{Port: 0x3f0, Code: 0x09})

	irq, ok = b.GetIoInterrupt()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, irq, iobus.Interrupt{Port: 0x60, Code: 0x02})

	irq, ok = b.GetIoInterrupt()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, irq, iobus.Interrupt{Port: 0x70, Code: 0x04})

	_, ok = b.GetIoInterrupt()
	test.ExpectFailure(t, ok)

	// delivered interrupts are no longer pending and can be raised again
	_, pending := s.Pending()
	test.ExpectFailure(t, pending)
	s.RaiseInterrupt(0x10)
	irq, ok = b.GetIoInterrupt()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, irq.Code, 0x10)
}

func TestPortStatus(t *testing.T) {
	b := iobus.NewBus()
	var r register

	p := r.port(0x60, iobus.Byte)
	q := r.port(0x70, iobus.Byte)
	test.DemandSuccess(t, b.Attach(p, q))

	st, ok := b.TestPortStatus(0x60)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, st, iobus.InterruptsEnabled)

	_, ok = b.TestPortStatus(0x61)
	test.ExpectFailure(t, ok)
	test.ExpectFailure(t, b.SetPortStatus(0x61, 0))

	// disable interrupts on the first port. the interrupt stays pending but
	// is skipped in favour of the younger interrupt on the enabled port
	test.ExpectSuccess(t, b.SetPortStatus(0x60, 0))
	p.RaiseInterrupt(0x01)
	q.RaiseInterrupt(0x02)

	st, _ = b.TestPortStatus(0x60)
	test.ExpectEquality(t, st, iobus.InterruptPending)

	test.ExpectSuccess(t, b.InterruptDeliverable())
	irq, ok := b.GetIoInterrupt()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, irq.Port, 0x70)
	_, ok = b.GetIoInterrupt()
	test.ExpectFailure(t, ok)

	// the held interrupt is counted as ready but cannot be delivered
	test.ExpectEquality(t, b.InterruptsReady(), 1)
	test.ExpectFailure(t, b.InterruptDeliverable())

	// enabling interrupts releases the held interrupt
	test.ExpectSuccess(t, b.SetPortStatus(0x60, iobus.InterruptsEnabled|iobus.InterruptPending))
	test.ExpectSuccess(t, b.InterruptDeliverable())
	irq, ok = b.GetIoInterrupt()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, irq.Port, 0x60)

	// clearing the pending flag acknowledges the interrupt
	p.RaiseInterrupt(0x01)
	test.ExpectSuccess(t, b.SetPortStatus(0x60, iobus.InterruptsEnabled))
	_, ok = b.GetIoInterrupt()
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, b.InterruptsReady(), 0)
}

func TestDetachDiscardsInterrupt(t *testing.T) {
	b := iobus.NewBus()
	var r register

	p := r.port(0x60, iobus.Byte)
	test.DemandSuccess(t, b.Attach(p))
	p.RaiseInterrupt(0x01)
	b.Detach(p)

	_, ok := b.GetIoInterrupt()
	test.ExpectFailure(t, ok)

	// raising on a detached port does nothing
	p.RaiseInterrupt(0x01)
	test.ExpectEquality(t, b.InterruptsReady(), 0)
}

// interrupts raised concurrently are each delivered exactly once
func TestConcurrentRaise(t *testing.T) {
	b := iobus.NewBus()
	var r register

	ports := make([]*iobus.Port, 64)
	for i := range ports {
		ports[i] = r.port(uint16(0x100+i), iobus.Byte)
	}
	test.DemandSuccess(t, b.Attach(ports...))

	var wg sync.WaitGroup
	for _, p := range ports {
		wg.Add(1)
		go func(p *iobus.Port) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				p.RaiseInterrupt(1)
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[uint16]bool)
	for {
		irq, ok := b.GetIoInterrupt()
		if !ok {
			break
		}
		test.ExpectFailure(t, seen[irq.Port])
		seen[irq.Port] = true
	}
	test.ExpectEquality(t, len(seen), len(ports))
}
