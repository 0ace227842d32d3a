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

package clocks

import (
	"context"
	"sync"

	"github.com/pcsim/pcsim/assert"
	"github.com/pcsim/pcsim/curated"
)

// Clocked is implemented by any device that needs clock ticks.
type Clocked interface {
	// OnClockTick is called once per period of the device's frequency. It is
	// only ever called from the clock goroutine and must not call back into
	// the Distributor.
	OnClockTick()
}

// Sentinal errors.
const (
	ZeroFrequency     = "clocks: cannot register with zero frequency"
	AlreadyRegistered = "clocks: device already registered"
)

type registration struct {
	dev  Clocked
	freq Frequency
	acc  Frequency
}

// Distributor delivers clock ticks to registered devices.
type Distributor struct {
	crit   sync.Mutex
	regs   []*registration
	master Frequency
	cycles uint64

	// the goroutine currently running the clock
	owner assert.Owner
}

// NewDistributor is the preferred method of initialisation for the
// Distributor type.
func NewDistributor() *Distributor {
	return &Distributor{}
}

// Register a device to receive ticks at the specified frequency. Registering
// a device resets the phase of every device.
func (d *Distributor) Register(dev Clocked, freq Frequency) error {
	if freq == 0 {
		return curated.Errorf(ZeroFrequency)
	}

	d.crit.Lock()
	defer d.crit.Unlock()

	for _, r := range d.regs {
		if r.dev == dev {
			return curated.Errorf(AlreadyRegistered)
		}
	}

	d.regs = append(d.regs, &registration{dev: dev, freq: freq})
	d.recalculate()

	return nil
}

// Unregister a device. Unregistering a device that is not registered does
// nothing.
func (d *Distributor) Unregister(dev Clocked) {
	d.crit.Lock()
	defer d.crit.Unlock()

	for i, r := range d.regs {
		if r.dev == dev {
			d.regs = append(d.regs[:i], d.regs[i+1:]...)
			d.recalculate()
			return
		}
	}
}

// recalculate master frequency and reset accumulators. must be called with
// the critical section held.
func (d *Distributor) recalculate() {
	d.master = 0
	for _, r := range d.regs {
		if r.freq > d.master {
			d.master = r.freq
		}
		r.acc = 0
	}
}

// Master returns the master frequency. Zero if no devices are registered.
func (d *Distributor) Master() Frequency {
	d.crit.Lock()
	defer d.crit.Unlock()
	return d.master
}

// Cycles returns the number of master cycles elapsed.
func (d *Distributor) Cycles() uint64 {
	d.crit.Lock()
	defer d.crit.Unlock()
	return d.cycles
}

// Registered returns the number of registered devices.
func (d *Distributor) Registered() int {
	d.crit.Lock()
	defer d.crit.Unlock()
	return len(d.regs)
}

// Tick advances the master clock by one cycle and ticks every device whose
// divider has elapsed.
func (d *Distributor) Tick() {
	d.owner.Check("clocks.Tick()")

	d.crit.Lock()
	defer d.crit.Unlock()

	d.cycles++
	for _, r := range d.regs {
		r.acc += r.freq
		if r.acc >= d.master {
			r.acc -= d.master
			r.dev.OnClockTick()
		}
	}
}

// Step advances the master clock by n cycles.
func (d *Distributor) Step(n int) {
	for i := 0; i < n; i++ {
		d.Tick()
	}
}

// number of cycles between context checks when there is no limiter.
const unlimitedBatch = 1000

// Run advances the master clock until the context is cancelled. The calling
// goroutine becomes the clock goroutine for the duration of the call. If the
// limiter is nil the clock runs as fast as possible.
func (d *Distributor) Run(ctx context.Context, lmtr *Limiter) error {
	d.owner.Claim()
	defer d.owner.Release()

	batch := unlimitedBatch
	if lmtr != nil {
		lmtr.SetFrequency(d.Master())
		batch = lmtr.Batch()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		for i := 0; i < batch; i++ {
			d.Tick()
		}

		if lmtr != nil {
			lmtr.Pace(batch)
		}
	}
}
