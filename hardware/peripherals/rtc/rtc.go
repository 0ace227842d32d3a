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

package rtc

import (
	"os"
	"time"

	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/hardware/peripherals"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/prefs"
)

// Kind is the registry kind of the real time clock.
const Kind = "rtc"

// Default configuration.
const (
	DefaultAddress   = 0x0070
	DefaultFrequency = 32768 * clocks.Hz
	DefaultDelay     = 4
)

// NVRAMSize is the number of bytes of non-volatile memory.
const NVRAMSize = 64

// Opcodes.
const (
	OpReadRegister  = 0x10
	OpWriteRegister = 0x11
	OpReadTime      = 0x12
	OpSetTime       = 0x13
	OpReadBlock     = 0x14
)

// the earliest year that can be represented
const epochYear = 2000

// RTC is the real time clock controller.
type RTC struct {
	*lifecycle.Machine[*device.Board]
	*peripherals.Base

	// register access delay in clock ticks
	Delay prefs.Int

	// file the non-volatile memory is persisted to. the empty string means
	// the memory is not persisted
	NVRAM prefs.Path

	// guarded by the controller lock
	nvram []uint8
	now   time.Time
	sub   uint64
	freq  uint64

	// resolved path of the nvram file
	nvramPath string
}

// NewRTC is the preferred method of initialisation for the RTC type.
func NewRTC(name string, env *environment.Environment) *RTC {
	rtc := &RTC{}

	rtc.Base = peripherals.NewBase(name, env, controller.Config{
		Commands: map[uint8]controller.Command{
			OpReadRegister:  {Name: "read register", Length: controller.Fixed(2), Execute: rtc.readRegister},
			OpWriteRegister: {Name: "write register", Length: controller.Fixed(3), Execute: rtc.writeRegister},
			OpReadTime:      {Name: "read time", Length: controller.Fixed(1), Execute: rtc.readTime},
			OpSetTime:       {Name: "set time", Length: controller.Fixed(7), Execute: rtc.setTime},
			OpReadBlock:     {Name: "read block", Length: controller.Fixed(3), Execute: rtc.readBlock},
		},
		Tick: rtc.tick,
	}, DefaultAddress, DefaultFrequency)

	rtc.Machine = lifecycle.NewMachine[*device.Board](name, rtc)
	_ = rtc.Delay.Set(DefaultDelay)

	return rtc
}

// Kind implements the device.Device interface.
func (rtc *RTC) Kind() string {
	return Kind
}

// Prefs implements the device.Device interface.
func (rtc *RTC) Prefs(dsk *prefs.Disk, prefix string) error {
	return rtc.Bind(dsk, prefix, map[string]prefs.Pref{
		"delay": &rtc.Delay,
		"nvram": &rtc.NVRAM,
	})
}

// Now returns the simulated time.
func (rtc *RTC) Now() time.Time {
	var t time.Time
	rtc.WithLock(func() {
		t = rtc.now
	})
	return t
}

// SetNow sets the simulated time. The sub-second count is reset.
func (rtc *RTC) SetNow(t time.Time) {
	rtc.WithLock(func() {
		rtc.now = t.UTC().Truncate(time.Second)
		rtc.sub = 0
	})
}

// NVRAMByte returns the value of a byte of non-volatile memory. Returns zero
// if the controller has not been initialised.
func (rtc *RTC) NVRAMByte(idx int) uint8 {
	var v uint8
	rtc.WithLock(func() {
		if idx >= 0 && idx < len(rtc.nvram) {
			v = rtc.nvram[idx]
		}
	})
	return v
}

// the result of every command is delayed by the register delay. called with
// the controller lock held.
func (rtc *RTC) delayed(result ...uint8) controller.Outcome {
	return controller.Delayed(rtc.Delay.Get().(int), result...)
}

func (rtc *RTC) readRegister(cmd []uint8) controller.Outcome {
	idx := int(cmd[1])
	if idx >= NVRAMSize {
		return rtc.delayed(controller.InvalidParameter)
	}
	return rtc.delayed(controller.NoError, rtc.nvram[idx])
}

func (rtc *RTC) writeRegister(cmd []uint8) controller.Outcome {
	idx := int(cmd[1])
	if idx >= NVRAMSize {
		return rtc.delayed(controller.InvalidParameter)
	}
	rtc.nvram[idx] = cmd[2]
	return rtc.delayed(controller.NoError)
}

func (rtc *RTC) readBlock(cmd []uint8) controller.Outcome {
	idx := int(cmd[1])
	n := int(cmd[2])
	if n == 0 || idx+n > NVRAMSize {
		return rtc.delayed(controller.InvalidParameter)
	}
	return rtc.delayed(append([]uint8{controller.NoError}, rtc.nvram[idx:idx+n]...)...)
}

func (rtc *RTC) readTime([]uint8) controller.Outcome {
	t := rtc.now
	return rtc.delayed(controller.NoError,
		uint8(t.Second()), uint8(t.Minute()), uint8(t.Hour()),
		uint8(t.Weekday()), uint8(t.Day()), uint8(t.Month()),
		uint8(t.Year()-epochYear))
}

func (rtc *RTC) setTime(cmd []uint8) controller.Outcome {
	sec, min, hour := int(cmd[1]), int(cmd[2]), int(cmd[3])
	day, month, year := int(cmd[4]), int(cmd[5]), int(cmd[6])+epochYear

	if sec > 59 || min > 59 || hour > 23 || month < 1 || month > 12 || day < 1 {
		return rtc.delayed(controller.InvalidParameter)
	}

	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)

	// time.Date() normalises an out of range day into the next month
	if t.Day() != day {
		return rtc.delayed(controller.InvalidParameter)
	}

	rtc.now = t
	rtc.sub = 0

	return rtc.delayed(controller.NoError)
}

// called on every clock tick with the controller lock held.
func (rtc *RTC) tick() {
	rtc.sub++
	if rtc.sub >= rtc.freq {
		rtc.sub = 0
		rtc.now = rtc.now.Add(time.Second)
		rtc.Signal(controller.CondDevice)
	}
}

// OnConnect implements the lifecycle.Hooks interface.
func (rtc *RTC) OnConnect(b *device.Board) error {
	rtc.nvramPath = rtc.NVRAM.Resolve(b.Dir)
	return rtc.ConnectPorts(b)
}

// OnDisconnect implements the lifecycle.Hooks interface.
func (rtc *RTC) OnDisconnect(b *device.Board) {
	rtc.DisconnectPorts(b)
}

// OnInitialise implements the lifecycle.Hooks interface.
func (rtc *RTC) OnInitialise() error {
	rtc.WithLock(func() {
		rtc.nvram = make([]uint8, NVRAMSize)
		rtc.now = time.Now().UTC().Truncate(time.Second)
		rtc.sub = 0
		rtc.freq = uint64(rtc.Frequency.Get().(clocks.Frequency))
		rtc.load()
	})
	rtc.Allocate()
	return nil
}

// OnDeinitialise implements the lifecycle.Hooks interface.
func (rtc *RTC) OnDeinitialise() {
	rtc.Release()
	rtc.WithLock(func() {
		rtc.save()
		rtc.nvram = nil
	})
}

// OnStart implements the lifecycle.Hooks interface.
func (rtc *RTC) OnStart() error {
	return rtc.StartClock(rtc.Context())
}

// OnStop implements the lifecycle.Hooks interface.
func (rtc *RTC) OnStop() {
	rtc.StopClock(rtc.Context())
}

// load non-volatile memory from disk. a missing file is not an error. called
// with the controller lock held.
func (rtc *RTC) load() {
	if rtc.nvramPath == "" {
		return
	}

	d, err := os.ReadFile(rtc.nvramPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Logf(rtc.Env(), rtc.Name(), "could not load nvram file: %v", err)
		}
		return
	}

	if len(d) != NVRAMSize {
		logger.Logf(rtc.Env(), rtc.Name(), "nvram file is of incorrect length. %d should be %d", len(d), NVRAMSize)
	}
	copy(rtc.nvram, d)

	logger.Logf(rtc.Env(), rtc.Name(), "nvram loaded from %s", rtc.nvramPath)
}

// save non-volatile memory to disk. called with the controller lock held.
func (rtc *RTC) save() {
	if rtc.nvramPath == "" || rtc.nvram == nil {
		return
	}

	err := os.WriteFile(rtc.nvramPath, rtc.nvram, 0o644)
	if err != nil {
		logger.Logf(rtc.Env(), rtc.Name(), "could not save nvram file: %v", err)
		return
	}

	logger.Logf(rtc.Env(), rtc.Name(), "nvram saved to %s", rtc.nvramPath)
}
