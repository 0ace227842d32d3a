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

// Package bench is a minimal board for exercising peripheral controllers
// without building an appliance. Devices are connected, initialised and
// started in the order they are added and the clock is stepped by the
// caller.
package bench

import (
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/hardware/memory"
	"github.com/pcsim/pcsim/hardware/preferences"
)

// Bench is a board and the devices connected to it.
type Bench struct {
	Board *device.Board
	IO    *iobus.Bus
	Mem   *memory.Bus
	Clock *clocks.Distributor
	Env   *environment.Environment

	devices []device.Device
	named   map[string]device.Device
}

// NewBench is the preferred method of initialisation for the Bench type. The
// environment is normalised so that device workers do not sleep.
func NewBench(dir string) (*Bench, error) {
	env, err := environment.NewEnvironment(environment.MainEmulation, nil, preferences.NewDefaultPreferences())
	if err != nil {
		return nil, err
	}
	env.Normalise()

	b := &Bench{
		IO:    iobus.NewBus(),
		Mem:   memory.NewBus(),
		Clock: clocks.NewDistributor(),
		Env:   env,
		named: make(map[string]device.Device),
	}
	b.Board = device.NewBoard(b.IO, b.Mem, b.Clock, env, dir, func(name string) (device.Device, bool) {
		d, ok := b.named[name]
		return d, ok
	})

	return b, nil
}

// Add devices to the bench.
func (b *Bench) Add(devs ...device.Device) {
	for _, d := range devs {
		b.devices = append(b.devices, d)
		b.named[d.Name()] = d
	}
}

// Start connects, initialises and starts every device. Stops at the first
// error, leaving the devices where they are.
func (b *Bench) Start() error {
	for _, d := range b.devices {
		if err := d.Connect(b.Board); err != nil {
			return err
		}
	}
	for _, d := range b.devices {
		if err := d.Initialise(); err != nil {
			return err
		}
	}
	for _, d := range b.devices {
		if err := d.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops, deinitialises and disconnects every device in reverse order.
// Devices that are not in the required state are skipped.
func (b *Bench) Stop() {
	for i := len(b.devices) - 1; i >= 0; i-- {
		_ = b.devices[i].Stop()
	}
	for i := len(b.devices) - 1; i >= 0; i-- {
		_ = b.devices[i].Deinitialise()
	}
	for i := len(b.devices) - 1; i >= 0; i-- {
		_ = b.devices[i].Disconnect()
	}
}

// Command writes the opcode to the command port of the controller at base,
// followed by the parameters to the data port.
func (b *Bench) Command(base uint16, op uint8, params ...uint8) {
	b.IO.Write8(base+controller.PortCommand, op)
	for _, p := range params {
		b.IO.Write8(base+controller.PortData, p)
	}
}

// Status reads the status port of the controller at base.
func (b *Bench) Status(base uint16) uint8 {
	return b.IO.Read8(base + controller.PortStatus)
}

// Result drains the result bytes of the controller at base.
func (b *Bench) Result(base uint16) []uint8 {
	var r []uint8
	for b.Status(base)&controller.StatusOutputReady == controller.StatusOutputReady {
		r = append(r, b.IO.Read8(base+controller.PortData))
	}
	return r
}

// Busy returns true if the controller at base is executing a command.
func (b *Bench) Busy(base uint16) bool {
	return b.Status(base)&controller.StatusBusy == controller.StatusBusy
}

// Step the clock by n master cycles.
func (b *Bench) Step(n int) {
	b.Clock.Step(n)
}
