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

package hardware_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy/drive"
	"github.com/pcsim/pcsim/hardware/peripherals/keyboard"
	"github.com/pcsim/pcsim/hardware/peripherals/rtc"
	"github.com/pcsim/pcsim/hardware/preferences"
	"github.com/pcsim/pcsim/hardware/registry"
	"github.com/pcsim/pcsim/prefs"
	"github.com/pcsim/pcsim/test"
)

func newAppliance(t *testing.T) *hardware.Appliance {
	t.Helper()

	env, err := environment.NewEnvironment(environment.MainEmulation, nil, preferences.NewDefaultPreferences())
	test.DemandSuccess(t, err)
	env.Normalise()

	return hardware.NewAppliance(env, hardware.NewRegistry())
}

// every kind of device with the floppy drive configured to use an image in
// the project directory
func addDevices(t *testing.T, app *hardware.Appliance) {
	t.Helper()

	for _, d := range [][2]string{
		{rtc.Kind, "rtc"},
		{floppy.Kind, "fdc"},
		{drive.Kind, "drive0"},
		{keyboard.Kind, "kbd"},
		{"video", "crt"},
		{"beeper", "speaker"},
	} {
		_, err := app.AddDevice(d[0], d[1])
		test.DemandSuccess(t, err)
	}

	d, ok := app.Device("drive0")
	test.DemandSuccess(t, ok)
	drv := d.(*drive.Drive)
	_ = drv.Image.Set("$/disk.img")
	_ = drv.Mounted.Set(true)
}

// connect, initialise and start the appliance
func start(t *testing.T, app *hardware.Appliance) {
	t.Helper()
	test.DemandSuccess(t, app.Connect())
	test.DemandSuccess(t, app.Initialise())
	test.DemandSuccess(t, app.Start())
}

// stop, deinitialise and disconnect the appliance
func finish(t *testing.T, app *hardware.Appliance) {
	t.Helper()
	test.ExpectSuccess(t, app.Stop())
	test.ExpectSuccess(t, app.Deinitialise())
	test.ExpectSuccess(t, app.Disconnect())
}

func TestProject(t *testing.T) {
	dir := t.TempDir()
	pth := filepath.Join(dir, "machine.project")

	app := newAppliance(t)
	addDevices(t, app)
	d, _ := app.Device("rtc")
	_ = d.(*rtc.RTC).Delay.Set(7)
	_ = app.RAMSize.Set(0x8000)
	test.DemandSuccess(t, app.Save(pth))

	app = newAppliance(t)
	test.DemandSuccess(t, app.Load(pth))
	test.ExpectEquality(t, app.RAMSize.Get().(int), 0x8000)

	devs := app.Devices()
	test.DemandEquality(t, len(devs), 6)
	test.ExpectEquality(t, devs[0].Kind(), rtc.Kind)
	test.ExpectEquality(t, devs[2].Name(), "drive0")
	test.ExpectEquality(t, devs[5].Kind(), "beeper")

	d, ok := app.Device("rtc")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, d.(*rtc.RTC).Delay.Get().(int), 7)

	d, ok = app.Device("drive0")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, d.(*drive.Drive).Image.String(), "$/disk.img")

	// loading a second time is not allowed
	err := app.Load(pth)
	test.ExpectSuccess(t, curated.Is(err, hardware.ProjectError))

	err = newAppliance(t).Load(filepath.Join(dir, "missing.project"))
	test.ExpectSuccess(t, curated.Has(err, prefs.NoPrefsFile))
}

func TestProjectUnknownKind(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "machine.project")
	data := prefs.WarningBoilerPlate + "\nappliance.devices :: rtc:rtc,teleprinter:tty\n"
	test.DemandSuccess(t, os.WriteFile(pth, []byte(data), 0o644))

	app := newAppliance(t)
	err := app.Load(pth)
	test.ExpectSuccess(t, curated.Has(err, registry.UnknownKind))
	test.ExpectEquality(t, len(app.Devices()), 0)
}

func TestAddDevice(t *testing.T) {
	app := newAppliance(t)

	_, err := app.AddDevice(rtc.Kind, "rtc")
	test.ExpectSuccess(t, err)

	_, err = app.AddDevice(rtc.Kind, "rtc")
	test.ExpectSuccess(t, curated.Is(err, hardware.DuplicateDevice))

	_, err = app.AddDevice(rtc.Kind, "real time clock")
	test.ExpectSuccess(t, curated.Is(err, hardware.InvalidName))

	_, err = app.AddDevice("teleprinter", "tty")
	test.ExpectSuccess(t, curated.Has(err, registry.UnknownKind))

	test.DemandSuccess(t, app.Connect())
	_, err = app.AddDevice(keyboard.Kind, "kbd")
	test.ExpectSuccess(t, curated.Is(err, lifecycle.InvalidTransition))
	test.ExpectSuccess(t, app.Disconnect())
}

func TestLifecycle(t *testing.T) {
	dir := t.TempDir()
	test.DemandSuccess(t, drive.CreateImage(filepath.Join(dir, "disk.img")))
	pth := filepath.Join(dir, "machine.project")

	app := newAppliance(t)
	addDevices(t, app)
	test.DemandSuccess(t, app.Save(pth))

	app = newAppliance(t)
	test.DemandSuccess(t, app.Load(pth))
	test.DemandSuccess(t, app.SetStepped(true))

	err := app.Step(1)
	test.ExpectSuccess(t, curated.Is(err, lifecycle.InvalidTransition))

	start(t, app)
	for _, d := range app.Devices() {
		test.ExpectEquality(t, d.State(), lifecycle.Running, d.Name())
	}

	d, _ := app.Device("drive0")
	test.ExpectSuccess(t, d.(*drive.Drive).IsMounted())

	// write and read back a register of the real time clock. the master
	// clock is much faster than the clock of the rtc
	const base = rtc.DefaultAddress
	await := func() {
		t.Helper()
		for i := 0; i < 1000 && app.IO.Read8(base+controller.PortStatus)&controller.StatusBusy != 0; i++ {
			test.DemandSuccess(t, app.Step(1000))
		}
		test.ExpectEquality(t, app.IO.Read8(base+controller.PortData), controller.NoError)
	}

	app.IO.Write8(base+controller.PortCommand, rtc.OpWriteRegister)
	app.IO.Write8(base+controller.PortData, 0x10)
	app.IO.Write8(base+controller.PortData, 0x99)
	await()

	app.IO.Write8(base+controller.PortCommand, rtc.OpReadRegister)
	app.IO.Write8(base+controller.PortData, 0x10)
	await()
	test.ExpectEquality(t, app.IO.Read8(base+controller.PortData), uint8(0x99))

	// the stepping mode cannot be changed while running
	test.ExpectSuccess(t, curated.Is(app.SetStepped(false), lifecycle.InvalidTransition))

	finish(t, app)
	for _, d := range app.Devices() {
		test.ExpectEquality(t, d.State(), lifecycle.Constructed, d.Name())
	}
	test.ExpectEquality(t, app.IO.Occupied(), 0)
	test.ExpectEquality(t, app.Mem.Mappings(), 0)
	test.ExpectEquality(t, app.Clock.Registered(), 0)
}

func TestDuplicatePortRollback(t *testing.T) {
	app := newAppliance(t)

	_, err := app.AddDevice(rtc.Kind, "rtc")
	test.DemandSuccess(t, err)
	_, err = app.AddDevice("beeper", "speaker")
	test.DemandSuccess(t, err)

	// the keyboard's ports overlap the ports of the real time clock
	d, err := app.AddDevice(keyboard.Kind, "kbd")
	test.DemandSuccess(t, err)
	_ = d.(*keyboard.Keyboard).Address.Set(rtc.DefaultAddress + 2)

	err = app.Connect()
	test.ExpectSuccess(t, curated.Has(err, iobus.PortConflict))
	test.ExpectSuccess(t, curated.Has(err, hardware.DeviceError))
	test.ExpectEquality(t, app.State(), lifecycle.Constructed)

	for _, d := range app.Devices() {
		test.ExpectEquality(t, d.State(), lifecycle.Constructed, d.Name())
	}
	test.ExpectEquality(t, app.IO.Occupied(), 0)
	test.ExpectEquality(t, app.Mem.Mappings(), 0)
}

func TestFreeRunning(t *testing.T) {
	app := newAppliance(t)
	_, err := app.AddDevice(rtc.Kind, "rtc")
	test.DemandSuccess(t, err)

	start(t, app)
	test.ExpectSuccess(t, app.Done() != nil)
	test.ExpectSuccess(t, curated.Is(app.Step(1), hardware.NotStepped))

	deadline := time.Now().Add(5 * time.Second)
	for app.Clock.Cycles() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.ExpectInequality(t, app.Clock.Cycles(), 0)

	finish(t, app)
	test.ExpectSuccess(t, app.Err())
}

func TestProgram(t *testing.T) {
	dir := t.TempDir()

	// write register 5 of the real time clock with the value 0xaa
	program := []uint8{
		0x3e, rtc.OpWriteRegister, // LD A,op
		0xd3, rtc.DefaultAddress + controller.PortCommand, // OUT (cmd),A
		0x3e, 0x05, // LD A,5
		0xd3, rtc.DefaultAddress + controller.PortData, // OUT (data),A
		0x3e, 0xaa, // LD A,0xaa
		0xd3, rtc.DefaultAddress + controller.PortData, // OUT (data),A
		0x76, // HALT
	}
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "prog.bin"), program, 0o644))

	pth := filepath.Join(dir, "machine.project")
	app := newAppliance(t)
	_, err := app.AddDevice(rtc.Kind, "rtc")
	test.DemandSuccess(t, err)
	_ = app.Program.Set("$/prog.bin")
	_ = app.Origin.Set(uint16(0x0100))
	test.DemandSuccess(t, app.Save(pth))

	app = newAppliance(t)
	test.DemandSuccess(t, app.Load(pth))
	start(t, app)

	d, _ := app.Device("rtc")
	r := d.(*rtc.RTC)

	deadline := time.Now().Add(5 * time.Second)
	for r.NVRAMByte(5) != 0xaa && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.ExpectEquality(t, r.NVRAMByte(5), uint8(0xaa))
	test.ExpectEquality(t, app.Mem.Read8(0x0100), uint8(0x3e))

	finish(t, app)
	test.ExpectSuccess(t, app.Err())
}

func TestProgramTooLarge(t *testing.T) {
	dir := t.TempDir()
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "prog.bin"), make([]uint8, 0x200), 0o644))

	app := newAppliance(t)
	_ = app.RAMSize.Set(0x100)
	_ = app.Program.Set(filepath.Join(dir, "prog.bin"))

	test.DemandSuccess(t, app.Connect())
	err := app.Initialise()
	test.ExpectSuccess(t, curated.Has(err, hardware.ProgramError))
	test.ExpectEquality(t, app.State(), lifecycle.Connected)
	test.ExpectSuccess(t, app.Disconnect())
}

func TestMemviz(t *testing.T) {
	app := newAppliance(t)
	_, err := app.AddDevice(rtc.Kind, "clock")
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, app.Connect())
	defer app.Disconnect()

	w := &strings.Builder{}
	app.Memviz(w)
	test.ExpectSuccess(t, strings.Contains(w.String(), "digraph"))
	test.ExpectSuccess(t, strings.Contains(w.String(), "clock"))
}
