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

package hardware

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/cpu"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/hardware/memory"
	"github.com/pcsim/pcsim/hardware/registry"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/prefs"
	"golang.org/x/sync/errgroup"
)

// Sentinal errors.
const (
	ApplianceError  = "appliance: %v"
	DeviceError     = "appliance: %s: %v"
	DuplicateDevice = "appliance: device %q already exists"
	InvalidName     = "appliance: invalid device name %q"
	NotStepped      = "appliance: cannot step a free running clock"
	ProgramError    = "appliance: program: %v"
)

// Default configuration.
const (
	DefaultRAMSize = 0x10000
	DefaultOrigin  = 0x0000
)

// Appliance is the emulated machine.
type Appliance struct {
	*lifecycle.Machine[string]

	env *environment.Environment
	reg *registry.Registry

	IO    *iobus.Bus
	Mem   *memory.Bus
	Clock *clocks.Distributor

	// size of the RAM mapped at address zero. a size of zero means there is
	// no RAM
	RAMSize prefs.Int

	// program file loaded into RAM at the origin. the empty string means
	// there is no processor
	Program prefs.Path
	Origin  prefs.Address

	// devices in the order they were added
	devices []device.Device
	named   map[string]device.Device

	// the directory of the project file
	dir string

	board *device.Board
	ram   *memory.RAM
	cpu   *cpu.Z80

	// the resolved program path
	program string

	// when true the clock is not run on its own goroutine
	stepped bool

	// running goroutines. nil when stepped or not running
	cancel context.CancelFunc
	group  *errgroup.Group
	done   <-chan struct{}
	lmtr   *clocks.Limiter

	errCrit sync.Mutex
	err     error
}

// NewAppliance is the preferred method of initialisation for the Appliance
// type. Devices are created with the registry.
func NewAppliance(env *environment.Environment, reg *registry.Registry) *Appliance {
	app := &Appliance{
		env:   env,
		reg:   reg,
		IO:    iobus.NewBus(),
		Mem:   memory.NewBus(),
		Clock: clocks.NewDistributor(),
		named: make(map[string]device.Device),
	}
	app.Machine = lifecycle.NewMachine[string]("appliance", app)
	app.SetDefaults()
	return app
}

// SetDefaults reverts the appliance configuration to the default values.
// Device configuration is not affected.
func (app *Appliance) SetDefaults() {
	_ = app.RAMSize.Set(DefaultRAMSize)
	_ = app.Program.Set("")
	_ = app.Origin.Set(uint16(DefaultOrigin))
}

// Env returns the environment of the appliance.
func (app *Appliance) Env() *environment.Environment {
	return app.env
}

// validName returns true if the name can be used in the project file.
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, ":,. \n")
}

// AddDevice creates a device of the kind and adds it to the appliance.
// Devices can only be added while the appliance is not connected.
func (app *Appliance) AddDevice(kind string, name string) (device.Device, error) {
	if s := app.State(); s != lifecycle.Constructed {
		return nil, curated.Errorf(lifecycle.InvalidTransition, "appliance", "add device", s)
	}
	if !validName(name) {
		return nil, curated.Errorf(InvalidName, name)
	}
	if _, ok := app.named[name]; ok {
		return nil, curated.Errorf(DuplicateDevice, name)
	}

	d, err := app.reg.Create(kind, name, app.env)
	if err != nil {
		return nil, curated.Errorf(ApplianceError, err)
	}

	app.devices = append(app.devices, d)
	app.named[name] = d

	return d, nil
}

// Device returns the named device.
func (app *Appliance) Device(name string) (device.Device, bool) {
	d, ok := app.named[name]
	return d, ok
}

// Devices returns the devices in the order they were added.
func (app *Appliance) Devices() []device.Device {
	return append([]device.Device(nil), app.devices...)
}

// SetStepped sets whether the clock is run on its own goroutine when the
// appliance is started. The setting cannot be changed while running.
func (app *Appliance) SetStepped(stepped bool) error {
	if s := app.State(); s == lifecycle.Running {
		return curated.Errorf(lifecycle.InvalidTransition, "appliance", "change stepping", s)
	}
	app.stepped = stepped
	return nil
}

// Connect all devices to the appliance's buses. Paths in the configuration
// are resolved against the directory of the most recently loaded project
// file.
func (app *Appliance) Connect() error {
	return app.Machine.Connect(app.dir)
}

// advance applies the step to each device in order. if a step fails the
// devices already advanced are returned to their previous state with the
// undo function, in reverse order.
func (app *Appliance) advance(step func(device.Device) error, undo func(device.Device) error) error {
	for i, d := range app.devices {
		if err := step(d); err != nil {
			for j := i - 1; j >= 0; j-- {
				if uerr := undo(app.devices[j]); uerr != nil {
					logger.Logf(app.env, "appliance", "%s: %v", app.devices[j].Name(), uerr)
				}
			}
			return curated.Errorf(DeviceError, d.Name(), err)
		}
	}
	return nil
}

// retreat applies the step to each device in reverse order. errors are
// logged.
func (app *Appliance) retreat(step func(device.Device) error) {
	for i := len(app.devices) - 1; i >= 0; i-- {
		if err := step(app.devices[i]); err != nil {
			logger.Logf(app.env, "appliance", "%s: %v", app.devices[i].Name(), err)
		}
	}
}

func (app *Appliance) lookup(name string) (device.Device, bool) {
	d, ok := app.named[name]
	return d, ok
}

// OnConnect implements the lifecycle.Hooks interface.
func (app *Appliance) OnConnect(dir string) error {
	app.board = device.NewBoard(app.IO, app.Mem, app.Clock, app.env, dir, app.lookup)
	app.program = app.Program.Resolve(dir)

	if n := app.RAMSize.Get().(int); n > 0 {
		app.ram = memory.NewRAM(uint32(n))
		if err := app.Mem.Map(0, app.ram); err != nil {
			app.ram = nil
			return curated.Errorf(ApplianceError, err)
		}
	}

	err := app.advance(
		func(d device.Device) error { return d.Connect(app.board) },
		func(d device.Device) error { return d.Disconnect() },
	)
	if err != nil {
		app.unmapRAM()
		app.board = nil
		return err
	}

	logger.Logf(app.env, "appliance", "%d devices connected", len(app.devices))

	return nil
}

func (app *Appliance) unmapRAM() {
	if app.ram == nil {
		return
	}
	if err := app.Mem.Unmap(0); err != nil {
		logger.Log(app.env, "appliance", err)
	}
	app.ram = nil
}

// OnDisconnect implements the lifecycle.Hooks interface.
func (app *Appliance) OnDisconnect(_ string) {
	app.retreat(func(d device.Device) error { return d.Disconnect() })
	app.unmapRAM()
	app.board = nil
}

// OnInitialise implements the lifecycle.Hooks interface.
func (app *Appliance) OnInitialise() error {
	if err := app.loadProgram(); err != nil {
		return err
	}

	err := app.advance(
		func(d device.Device) error { return d.Initialise() },
		func(d device.Device) error { return d.Deinitialise() },
	)
	if err != nil {
		app.cpu = nil
		return err
	}

	return nil
}

// load the program into RAM and create the processor. does nothing if
// there is no program
func (app *Appliance) loadProgram() error {
	if app.program == "" {
		return nil
	}

	data, err := os.ReadFile(app.program)
	if err != nil {
		return curated.Errorf(ProgramError, err)
	}

	origin := app.Origin.Get().(uint16)
	if app.ram == nil || int(origin)+len(data) > int(app.ram.Size()) {
		return curated.Errorf(ProgramError, "program does not fit in RAM")
	}

	app.Mem.Store(uint32(origin), data)
	app.cpu = cpu.NewZ80(app.IO, app.Mem, app.env, origin)

	logger.Logf(app.env, "appliance", "%d byte program loaded at %#04x", len(data), origin)

	return nil
}

// OnDeinitialise implements the lifecycle.Hooks interface.
func (app *Appliance) OnDeinitialise() {
	app.retreat(func(d device.Device) error { return d.Deinitialise() })
	app.cpu = nil
}

// OnStart implements the lifecycle.Hooks interface.
func (app *Appliance) OnStart() error {
	err := app.advance(
		func(d device.Device) error { return d.Start() },
		func(d device.Device) error { return d.Stop() },
	)
	if err != nil {
		return err
	}

	app.setErr(nil)
	if !app.stepped {
		app.run()
	}

	return nil
}

// OnStop implements the lifecycle.Hooks interface.
func (app *Appliance) OnStop() {
	app.halt()
	app.retreat(func(d device.Device) error { return d.Stop() })
}
