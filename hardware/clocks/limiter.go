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
	"sync/atomic"
	"time"
)

// the number of times per second the limiter waits for the pulse.
const pulsesPerSecond = 100

// Limiter paces the master clock to real time. The clock runs a batch of
// cycles and then waits for the next pulse of a ticker. The batch size is
// chosen so that the number of cycles per second matches the master
// frequency.
type Limiter struct {
	// whether to wait for the pulse after every batch
	Active atomic.Bool

	batch int
	pulse *time.Ticker

	// pulse that performs the measurement of the actual frequency
	measuringPulse *time.Ticker
	measureTime    time.Time
	measureCt      int

	// the measured number of cycles per second
	Measured atomic.Value // float64
}

// NewLimiter is the preferred method of initialisation for the Limiter type.
// The limiter is active by default.
func NewLimiter() *Limiter {
	lmtr := &Limiter{
		batch:          1,
		pulse:          time.NewTicker(time.Second / pulsesPerSecond),
		measuringPulse: time.NewTicker(time.Second),
		measureTime:    time.Now(),
	}
	lmtr.Active.Store(true)
	lmtr.Measured.Store(float64(0))
	return lmtr
}

// SetFrequency sets the master frequency the limiter is pacing.
func (lmtr *Limiter) SetFrequency(freq Frequency) {
	lmtr.batch = int(freq / pulsesPerSecond)
	if lmtr.batch < 1 {
		lmtr.batch = 1
	}
	lmtr.pulse.Reset(time.Second / pulsesPerSecond)
	lmtr.measureCt = 0
	lmtr.measureTime = time.Now()
}

// Batch returns the number of cycles to run between calls to Pace().
func (lmtr *Limiter) Batch() int {
	return lmtr.batch
}

// Pace should be called after every batch of cycles. It blocks until the
// next pulse if the limiter is active.
func (lmtr *Limiter) Pace(cycles int) {
	lmtr.measureCt += cycles
	if lmtr.Active.Load() {
		<-lmtr.pulse.C
	}
	lmtr.measure()
}

func (lmtr *Limiter) measure() {
	select {
	case <-lmtr.measuringPulse.C:
		t := time.Now()
		m := float64(lmtr.measureCt) / t.Sub(lmtr.measureTime).Seconds()
		lmtr.Measured.Store(m)
		lmtr.measureTime = t
		lmtr.measureCt = 0
	default:
	}
}

// Stop the limiter's tickers.
func (lmtr *Limiter) Stop() {
	lmtr.pulse.Stop()
	lmtr.measuringPulse.Stop()
}
