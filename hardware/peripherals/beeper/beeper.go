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

package beeper

import (
	"sync"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/prefs"
	"github.com/pcsim/pcsim/wavwriter"
)

// Kind is the registry kind of the beeper.
const Kind = "beeper"

// Default configuration.
const (
	DefaultAddress   = 0x0042
	DefaultFrequency = 44100 * clocks.Hz
)

// ToneBase is the frequency that the divisor divides.
const ToneBase = 1193182

// Sample values.
const (
	SampleSilent = 0x80
	SampleHigh   = 0xc0
	SampleLow    = 0x40
)

// the number of samples collected for the wav file is limited to ten minutes
// at the default frequency
const maxSamples = 10 * 60 * 44100

// Beeper is the tone generator device.
type Beeper struct {
	*lifecycle.Machine[*device.Board]

	name string
	env  *environment.Environment

	// address of the divisor port. the gate port is at the next address
	Address prefs.Address

	// the sample rate
	Frequency prefs.Frequency

	// file to write samples to. the empty string means samples are not
	// collected
	Wav prefs.Path

	crit    sync.Mutex
	divisor uint16
	gate    bool
	acc     uint64
	high    bool
	sample  uint8
	rate    uint64
	wav     *wavwriter.WavWriter
	wavPath string

	ports []*iobus.Port
}

// NewBeeper is the preferred method of initialisation for the Beeper type.
func NewBeeper(name string, env *environment.Environment) *Beeper {
	bpr := &Beeper{
		name:   name,
		env:    env,
		sample: SampleSilent,
	}
	bpr.Machine = lifecycle.NewMachine[*device.Board](name, bpr)
	_ = bpr.Address.Set(uint16(DefaultAddress))
	_ = bpr.Frequency.Set(DefaultFrequency)
	return bpr
}

// Kind implements the device.Device interface.
func (bpr *Beeper) Kind() string {
	return Kind
}

// Name implements the device.Device interface.
func (bpr *Beeper) Name() string {
	return bpr.name
}

// Prefs implements the device.Device interface.
func (bpr *Beeper) Prefs(dsk *prefs.Disk, prefix string) error {
	return device.Bind(dsk, prefix, map[string]prefs.Pref{
		"address":   &bpr.Address,
		"frequency": &bpr.Frequency,
		"wav":       &bpr.Wav,
	})
}

// Sample returns the most recent sample.
func (bpr *Beeper) Sample() uint8 {
	bpr.crit.Lock()
	defer bpr.crit.Unlock()
	return bpr.sample
}

// Tone returns the frequency of the tone in Hz. Returns zero if the tone is
// gated off.
func (bpr *Beeper) Tone() int {
	bpr.crit.Lock()
	defer bpr.crit.Unlock()
	if !bpr.gate || bpr.divisor == 0 {
		return 0
	}
	return ToneBase / int(bpr.divisor)
}

func (bpr *Beeper) readDivisor() uint64 {
	bpr.crit.Lock()
	defer bpr.crit.Unlock()
	return uint64(bpr.divisor)
}

func (bpr *Beeper) writeDivisor(v uint64) {
	bpr.crit.Lock()
	defer bpr.crit.Unlock()
	bpr.divisor = uint16(v)
	bpr.acc = 0
}

func (bpr *Beeper) readGate() uint64 {
	bpr.crit.Lock()
	defer bpr.crit.Unlock()
	if bpr.gate {
		return 1
	}
	return 0
}

func (bpr *Beeper) writeGate(v uint64) {
	bpr.crit.Lock()
	defer bpr.crit.Unlock()
	gate := v&0x01 == 0x01
	if gate && !bpr.gate {
		bpr.acc = 0
		bpr.high = true
	}
	bpr.gate = gate
}

// OnClockTick implements the clocks.Clocked interface. One sample is
// produced per tick.
func (bpr *Beeper) OnClockTick() {
	bpr.crit.Lock()
	defer bpr.crit.Unlock()

	if !bpr.gate || bpr.divisor == 0 {
		bpr.sample = SampleSilent
	} else {
		// the output flips twice per period of the tone
		bpr.acc += 2 * ToneBase
		n := uint64(bpr.divisor) * bpr.rate
		for bpr.acc >= n {
			bpr.acc -= n
			bpr.high = !bpr.high
		}
		if bpr.high {
			bpr.sample = SampleHigh
		} else {
			bpr.sample = SampleLow
		}
	}

	if bpr.wav != nil {
		bpr.wav.Add(bpr.sample)
	}
}

// OnConnect implements the lifecycle.Hooks interface.
func (bpr *Beeper) OnConnect(b *device.Board) error {
	addr := bpr.Address.Get().(uint16)
	if addr == 0xffff {
		return curated.Errorf(device.InvalidConfig, bpr.name, "gate port is beyond the end of the I/O space")
	}

	ports := []*iobus.Port{
		iobus.NewPort(addr, iobus.HalfWord, bpr.readDivisor, bpr.writeDivisor),
		iobus.NewPort(addr+1, iobus.Byte, bpr.readGate, bpr.writeGate),
	}
	if err := b.IO.Attach(ports...); err != nil {
		return curated.Errorf(device.InvalidConfig, bpr.name, err)
	}
	bpr.ports = ports
	bpr.wavPath = bpr.Wav.Resolve(b.Dir)

	return nil
}

// OnDisconnect implements the lifecycle.Hooks interface.
func (bpr *Beeper) OnDisconnect(b *device.Board) {
	b.IO.Detach(bpr.ports...)
	bpr.ports = nil
}

// OnInitialise implements the lifecycle.Hooks interface.
func (bpr *Beeper) OnInitialise() error {
	bpr.crit.Lock()
	defer bpr.crit.Unlock()

	bpr.divisor = 0
	bpr.gate = false
	bpr.acc = 0
	bpr.high = false
	bpr.sample = SampleSilent
	bpr.rate = uint64(bpr.Frequency.Get().(clocks.Frequency))

	if bpr.wavPath != "" {
		var err error
		bpr.wav, err = wavwriter.New(bpr.wavPath, int(bpr.rate), maxSamples)
		if err != nil {
			return curated.Errorf(device.InvalidConfig, bpr.name, err)
		}
	}

	return nil
}

// OnDeinitialise implements the lifecycle.Hooks interface.
func (bpr *Beeper) OnDeinitialise() {
	bpr.crit.Lock()
	defer bpr.crit.Unlock()

	if bpr.wav == nil {
		return
	}

	if err := bpr.wav.Close(); err != nil {
		logger.Logf(bpr.env, bpr.name, "could not write samples: %v", err)
	} else {
		logger.Logf(bpr.env, bpr.name, "%d samples written to %s", bpr.wav.Len(), bpr.wavPath)
	}
	bpr.wav = nil
}

// OnStart implements the lifecycle.Hooks interface.
func (bpr *Beeper) OnStart() error {
	if err := bpr.Context().Clock.Register(bpr, bpr.Frequency.Get().(clocks.Frequency)); err != nil {
		return curated.Errorf(device.InvalidConfig, bpr.name, err)
	}
	return nil
}

// OnStop implements the lifecycle.Hooks interface.
func (bpr *Beeper) OnStop() {
	bpr.Context().Clock.Unregister(bpr)
}
