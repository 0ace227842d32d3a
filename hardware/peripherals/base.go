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

package peripherals

import (
	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/prefs"
)

// Base is embedded by every peripheral controller.
type Base struct {
	*controller.Controller

	name string
	env  *environment.Environment

	// base address of the controller's ports
	Address prefs.Address

	// clock frequency of the controller
	Frequency prefs.Frequency

	defaultAddress   uint16
	defaultFrequency clocks.Frequency

	// ports attached to the bus. nil if not connected
	ports []*iobus.Port
}

// NewBase is the preferred method of initialisation for the Base type. The
// Name and Perm fields of the configuration are set by this function.
func NewBase(name string, env *environment.Environment, cfg controller.Config,
	address uint16, freq clocks.Frequency) *Base {

	cfg.Name = name
	cfg.Perm = env

	b := &Base{
		Controller:       controller.NewController(cfg),
		name:             name,
		env:              env,
		defaultAddress:   address,
		defaultFrequency: freq,
	}
	b.SetDefaults()

	return b
}

// SetDefaults reverts the address and frequency to the default values.
func (b *Base) SetDefaults() {
	_ = b.Address.Set(b.defaultAddress)
	_ = b.Frequency.Set(b.defaultFrequency)
}

// Name implements the device.Device interface.
func (b *Base) Name() string {
	return b.name
}

// Env returns the environment the controller was created with.
func (b *Base) Env() *environment.Environment {
	return b.env
}

// Bind the address and frequency, and any additional attributes, to the
// prefs disk.
func (b *Base) Bind(dsk *prefs.Disk, prefix string, attrs map[string]prefs.Pref) error {
	all := map[string]prefs.Pref{
		"address":   &b.Address,
		"frequency": &b.Frequency,
	}
	for k, v := range attrs {
		all[k] = v
	}
	return device.Bind(dsk, prefix, all)
}

// ConnectPorts creates the controller's ports at the configured address and
// attaches them to the I/O bus, along with any extra ports the controller
// has. Nothing is attached if any port conflicts with an existing port.
func (b *Base) ConnectPorts(board *device.Board, extra ...*iobus.Port) error {
	ports := b.CreatePorts(b.Address.Get().(uint16))
	ports = append(ports, extra...)

	if err := board.IO.Attach(ports...); err != nil {
		return curated.Errorf(device.InvalidConfig, b.name, err)
	}
	b.ports = ports

	return nil
}

// DisconnectPorts detaches the ports attached by ConnectPorts().
func (b *Base) DisconnectPorts(board *device.Board) {
	board.IO.Detach(b.ports...)
	b.ports = nil
}

// StartClock registers the controller with the clock distributor.
func (b *Base) StartClock(board *device.Board) error {
	freq := b.Frequency.Get().(clocks.Frequency)
	b.SetFrequency(freq)
	if err := board.Clock.Register(b.Controller, freq); err != nil {
		return curated.Errorf(device.InvalidConfig, b.name, err)
	}
	return nil
}

// StopClock unregisters the controller from the clock distributor.
func (b *Base) StopClock(board *device.Board) {
	board.Clock.Unregister(b.Controller)
}
