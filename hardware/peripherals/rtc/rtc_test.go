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

package rtc_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/peripherals/bench"
	"github.com/pcsim/pcsim/hardware/peripherals/rtc"
	"github.com/pcsim/pcsim/test"
)

const base = rtc.DefaultAddress

func equalBytes(t *testing.T, v []uint8, expected ...uint8) {
	t.Helper()
	if !test.ExpectEquality(t, len(v), len(expected), "length") {
		return
	}
	for i := range v {
		test.ExpectEquality(t, v[i], expected[i], i)
	}
}

func newRTC(t *testing.T, dir string) (*bench.Bench, *rtc.RTC) {
	t.Helper()

	b, err := bench.NewBench(dir)
	test.DemandSuccess(t, err)

	r := rtc.NewRTC("rtc", b.Env)
	_ = r.NVRAM.Set("$/nvram")
	_ = r.Frequency.Set("1kHz")
	b.Add(r)
	test.DemandSuccess(t, b.Start())

	return b, r
}

func TestRegisterDelay(t *testing.T) {
	b, _ := newRTC(t, t.TempDir())
	defer b.Stop()

	b.Command(base, rtc.OpWriteRegister, 0x05, 0xaa)
	test.ExpectSuccess(t, b.Busy(base))
	b.Step(rtc.DefaultDelay - 1)
	test.ExpectSuccess(t, b.Busy(base))
	b.Step(1)
	equalBytes(t, b.Result(base), controller.NoError)

	b.Command(base, rtc.OpReadRegister, 0x05)
	b.Step(rtc.DefaultDelay)
	equalBytes(t, b.Result(base), controller.NoError, 0xaa)

	b.Command(base, rtc.OpReadRegister, rtc.NVRAMSize)
	b.Step(rtc.DefaultDelay)
	equalBytes(t, b.Result(base), controller.InvalidParameter)

	b.Command(base, rtc.OpReadBlock, 0x04, 3)
	b.Step(rtc.DefaultDelay)
	equalBytes(t, b.Result(base), controller.NoError, 0x00, 0xaa, 0x00)

	b.Command(base, rtc.OpReadBlock, 60, 5)
	b.Step(rtc.DefaultDelay)
	equalBytes(t, b.Result(base), controller.InvalidParameter)
}

func TestTime(t *testing.T) {
	b, r := newRTC(t, t.TempDir())
	defer b.Stop()

	// christmas day 2024 was a wednesday
	b.Command(base, rtc.OpSetTime, 30, 15, 12, 25, 12, 24)
	b.Step(rtc.DefaultDelay)
	equalBytes(t, b.Result(base), controller.NoError)
	test.ExpectEquality(t, r.Now(), time.Date(2024, 12, 25, 12, 15, 30, 0, time.UTC))

	b.Command(base, rtc.OpReadTime)
	b.Step(rtc.DefaultDelay)
	equalBytes(t, b.Result(base), controller.NoError, 30, 15, 12, 3, 25, 12, 24)

	// the 30th of february
	b.Command(base, rtc.OpSetTime, 0, 0, 0, 30, 2, 24)
	b.Step(rtc.DefaultDelay)
	equalBytes(t, b.Result(base), controller.InvalidParameter)

	b.Command(base, rtc.OpSetTime, 60, 0, 0, 1, 1, 24)
	b.Step(rtc.DefaultDelay)
	equalBytes(t, b.Result(base), controller.InvalidParameter)
}

func TestSecondsInterrupt(t *testing.T) {
	b, r := newRTC(t, t.TempDir())
	defer b.Stop()

	start := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)
	r.SetNow(start)
	b.IO.Write8(base+controller.PortMask, controller.CondDevice)

	// the frequency is 1kHz so a second is 1000 ticks
	b.Step(999)
	test.ExpectEquality(t, r.Now(), start)
	test.ExpectEquality(t, b.IO.InterruptsReady(), 0)

	b.Step(1)
	test.ExpectEquality(t, r.Now(), start.Add(time.Second))

	irq, ok := b.IO.GetIoInterrupt()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, irq.Port, uint16(base+controller.PortStatus))
	test.ExpectEquality(t, irq.Code, uint32(controller.CondDevice))
}

func TestNVRAMPersistence(t *testing.T) {
	dir := t.TempDir()

	b, _ := newRTC(t, dir)
	b.Command(base, rtc.OpWriteRegister, 0x3f, 0x42)
	b.Step(rtc.DefaultDelay)
	equalBytes(t, b.Result(base), controller.NoError)
	b.Stop()

	d, err := os.ReadFile(filepath.Join(dir, "nvram"))
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(d), rtc.NVRAMSize)
	test.ExpectEquality(t, d[0x3f], uint8(0x42))

	b, r := newRTC(t, dir)
	defer b.Stop()
	test.ExpectEquality(t, r.NVRAMByte(0x3f), uint8(0x42))
}
