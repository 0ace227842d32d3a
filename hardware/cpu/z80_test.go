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

package cpu_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/cpu"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/hardware/memory"
	"github.com/pcsim/pcsim/hardware/peripherals/bench"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/test"
)

func newSystem(t *testing.T, program ...uint8) (*iobus.Bus, *memory.Bus, *cpu.Z80) {
	t.Helper()

	io := iobus.NewBus()
	mem := memory.NewBus()
	test.DemandSuccess(t, mem.Map(0, memory.NewRAM(0x10000)))
	mem.Store(0, program)

	return io, mem, cpu.NewZ80(io, mem, logger.Allow, 0x0000)
}

// run the processor until it halts
func runToHalt(t *testing.T, z *cpu.Z80) {
	t.Helper()

	stop := start(z)
	awaitCondition(t, z.Halted, "processor did not halt")
	stop()
}

// start the processor on its own goroutine. the returned function stops it
// and waits for Run() to return.
func start(z *cpu.Z80) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		z.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func awaitCondition(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestOut(t *testing.T) {
	// LD A,0x42; OUT (0x80),A; HALT
	io, _, z := newSystem(t, 0x3e, 0x42, 0xd3, 0x80, 0x76)

	var v atomic.Uint32
	test.DemandSuccess(t, io.Attach(iobus.NewPort(0x0080, iobus.Byte, nil, func(d uint64) {
		v.Store(uint32(d))
	})))

	runToHalt(t, z)
	test.ExpectEquality(t, v.Load(), uint32(0x42))
}

func TestIn(t *testing.T) {
	// IN A,(0x81); LD (0x1000),A; HALT
	io, mem, z := newSystem(t, 0xdb, 0x81, 0x32, 0x00, 0x10, 0x76)

	test.DemandSuccess(t, io.Attach(iobus.NewPort(0x0081, iobus.Byte, func() uint64 {
		return 0x5a
	}, nil)))

	runToHalt(t, z)
	test.ExpectEquality(t, mem.Read8(0x1000), uint8(0x5a))
}

// the register forms of IN and OUT reach ports above 0x00ff
func TestFloppyPorts(t *testing.T) {
	b, err := bench.NewBench(t.TempDir())
	test.DemandSuccess(t, err)
	fdc := floppy.NewController("fdc", b.Env)
	b.Add(fdc)
	test.DemandSuccess(t, b.Start())
	t.Cleanup(b.Stop)

	mem := memory.NewBus()
	test.DemandSuccess(t, mem.Map(0, memory.NewRAM(0x10000)))
	mem.Store(0, []uint8{
		0x01, 0xf1, 0x03,     // LD BC,03F1h
		0x3e, floppy.OpSense, // LD A,E9h
		0xed, 0x79,           // OUT (C),A
		0x01, 0xf0, 0x03,     // LD BC,03F0h
		0xed, 0x78,           // IN A,(C)
		0x32, 0x00, 0x10,     // LD (1000h),A
		0x76,                 // HALT
	})

	z := cpu.NewZ80(b.IO, mem, logger.Allow, 0x0000)
	runToHalt(t, z)

	// the sense command completes immediately and the status port reports
	// the result waiting
	test.ExpectEquality(t, mem.Read8(0x1000), controller.StatusPresent|controller.StatusOutputReady)
	test.ExpectEquality(t, fdc.Controller.State(), controller.ProvidingResult)
}

func TestInterruptWakesHalt(t *testing.T) {
	io, mem, z := newSystem(t,
		0x31, 0x00, 0x20, // LD SP,2000h
		0xed, 0x56,       // IM 1
		0xfb,             // EI
		0x76,             // HALT
		0x3e, 0x55,       // LD A,55h
		0xd3, 0x83,       // OUT (83h),A
		0x76,             // HALT
	)

	// interrupt mode 1 service routine
	mem.Store(0x0038, []uint8{
		0x3e, 0x77, // LD A,77h
		0xd3, 0x82, // OUT (82h),A
		0xfb,       // EI
		0xc9,       // RET
	})

	var isr, after atomic.Uint32
	test.DemandSuccess(t, io.Attach(
		iobus.NewPort(0x0082, iobus.Byte, nil, func(d uint64) { isr.Store(uint32(d)) }),
		iobus.NewPort(0x0083, iobus.Byte, nil, func(d uint64) { after.Store(uint32(d)) }),
	))

	p := iobus.NewPort(0x0070, iobus.Byte, nil, nil)
	test.DemandSuccess(t, io.Attach(p))

	stop := start(z)
	defer stop()
	awaitCondition(t, z.Halted, "processor did not halt")

	// an interrupt on a port with interrupts disabled does not wake the
	// processor
	test.DemandSuccess(t, io.SetPortStatus(0x0070, 0))
	p.RaiseInterrupt(0x01)
	time.Sleep(20 * time.Millisecond)
	test.ExpectSuccess(t, z.Halted())
	test.ExpectEquality(t, isr.Load(), uint32(0))

	// enabling interrupts on the port releases it. the service routine runs
	// and returns to the instruction after the HALT
	test.DemandSuccess(t, io.SetPortStatus(0x0070, iobus.InterruptsEnabled|iobus.InterruptPending))
	awaitCondition(t, func() bool { return after.Load() != 0 }, "processor did not resume")
	test.ExpectEquality(t, isr.Load(), uint32(0x77))
	test.ExpectEquality(t, after.Load(), uint32(0x55))
	test.ExpectEquality(t, io.InterruptsReady(), 0)
}
