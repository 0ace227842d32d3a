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

package async_test

import (
	"sync"
	"testing"
	"time"

	"github.com/pcsim/pcsim/hardware/async"
	"github.com/pcsim/pcsim/test"
)

func TestMailbox(t *testing.T) {
	var m async.Mailbox

	_, ok := m.Collect()
	test.ExpectFailure(t, ok)
	test.ExpectFailure(t, m.Occupied())

	m.Post(async.Result{Op: async.OpSeek, Cylinder: 79, Cost: 79 * time.Millisecond})
	test.ExpectSuccess(t, m.Occupied())

	r, ok := m.Collect()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, r.Op, async.OpSeek)
	test.ExpectEquality(t, r.Cylinder, 79)
	test.ExpectEquality(t, r.Cost, 79*time.Millisecond)

	// collecting empties the mailbox
	_, ok = m.Collect()
	test.ExpectFailure(t, ok)

	m.Post(async.Result{})
	m.Discard()
	test.ExpectFailure(t, m.Occupied())
}

// a worker that outlives its command can post after a newer result has
// arrived. the older result is dropped
func TestMailboxOccupied(t *testing.T) {
	var m async.Mailbox
	test.ExpectSuccess(t, m.Post(async.Result{Op: async.OpRead, Seq: 5}))
	test.ExpectFailure(t, m.Post(async.Result{Op: async.OpWrite, Seq: 4}))
	test.ExpectFailure(t, m.Post(async.Result{Op: async.OpWrite, Seq: 5}))

	r, ok := m.Collect()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, r.Op, async.OpRead)

	// a newer result replaces an uncollected older one
	test.ExpectSuccess(t, m.Post(async.Result{Op: async.OpRead, Seq: 6}))
	test.ExpectSuccess(t, m.Post(async.Result{Op: async.OpSeek, Seq: 7}))
	r, ok = m.Collect()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, r.Op, async.OpSeek)
	test.ExpectEquality(t, r.Seq, uint64(7))
}

// a result posted on another goroutine is collected exactly once
func TestMailboxHandoff(t *testing.T) {
	var m async.Mailbox
	var wg sync.WaitGroup

	const n = 100
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for m.Occupied() {
				time.Sleep(time.Microsecond)
			}
			m.Post(async.Result{Unit: i})
		}
	}()

	next := 0
	for next < n {
		if r, ok := m.Collect(); ok {
			test.DemandEquality(t, r.Unit, next)
			next++
		}
	}
	wg.Wait()
}

func TestOpString(t *testing.T) {
	test.ExpectEquality(t, async.OpCalibrate.String(), "calibrate")
	test.ExpectEquality(t, async.Op(99).String(), "op(99)")
}
