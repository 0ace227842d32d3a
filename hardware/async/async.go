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

package async

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Op identifies the operation a Result is for.
type Op int

// List of valid Op values.
const (
	OpStatus Op = iota
	OpMotorOn
	OpMotorOff
	OpSeek
	OpCalibrate
	OpRead
	OpWrite
	OpMount
	OpUnmount
)

func (op Op) String() string {
	switch op {
	case OpStatus:
		return "status"
	case OpMotorOn:
		return "motor on"
	case OpMotorOff:
		return "motor off"
	case OpSeek:
		return "seek"
	case OpCalibrate:
		return "calibrate"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpMount:
		return "mount"
	case OpUnmount:
		return "unmount"
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Result of a worker operation.
type Result struct {
	Op   Op
	Unit int

	// sequence number of the command the result is for. set by the
	// controller's completion function and used to discard stale results
	Seq uint64

	// status code. zero is success
	Status uint8

	// position and motor state after the operation
	Cylinder uint8
	Spinning bool

	// sector data for read operations
	Data []uint8

	// the simulated time the operation took. the controller does not make
	// the result visible until at least this much simulated time has passed
	// since the command was issued
	Cost time.Duration
}

func (r Result) String() string {
	return fmt.Sprintf("%s unit %d: status %#02x cyl %d (%d bytes, %s)", r.Op, r.Unit, r.Status, r.Cylinder, len(r.Data), r.Cost)
}

// Mailbox is a single slot for a Result. The zero value is an empty Mailbox.
type Mailbox struct {
	slot atomic.Pointer[Result]
}

// Post a result. Safe to call from any goroutine. If the Mailbox is already
// occupied the result with the higher sequence number is kept. Returns false
// if r was dropped.
func (m *Mailbox) Post(r Result) bool {
	for {
		old := m.slot.Load()
		if old != nil && old.Seq >= r.Seq {
			return false
		}
		if m.slot.CompareAndSwap(old, &r) {
			return true
		}
	}
}

// Collect the result, emptying the Mailbox. Returns false if the Mailbox was
// empty.
func (m *Mailbox) Collect() (Result, bool) {
	r := m.slot.Swap(nil)
	if r == nil {
		return Result{}, false
	}
	return *r, true
}

// Occupied returns true if a result is waiting to be collected.
func (m *Mailbox) Occupied() bool {
	return m.slot.Load() != nil
}

// Discard any waiting result.
func (m *Mailbox) Discard() {
	m.slot.Store(nil)
}
