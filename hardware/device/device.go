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

package device

import (
	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/iobus"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/hardware/memory"
	"github.com/pcsim/pcsim/prefs"
)

// Sentinal errors.
const (
	MissingPeer   = "device: %s: missing required peer %q"
	WrongPeer     = "device: %s: peer %q is not a %s"
	InvalidConfig = "device: %s: %v"
)

// Device is implemented by every device that can be plugged into the
// appliance. The lifecycle methods are usually provided by embedding a
// lifecycle.Machine.
type Device interface {
	// the registry kind of the device
	Kind() string

	// the unique name of the device in the appliance
	Name() string

	// bind the device's configuration values to keys in the disk. every key
	// must begin with the prefix
	Prefs(dsk *prefs.Disk, prefix string) error

	State() lifecycle.State
	Connect(board *Board) error
	Disconnect() error
	Initialise() error
	Deinitialise() error
	Start() error
	Stop() error
}

// Board is the context a device is connected into.
type Board struct {
	IO    *iobus.Bus
	Mem   *memory.Bus
	Clock *clocks.Distributor
	Env   *environment.Environment

	// the directory of the project file. used to resolve prefs.Path values
	Dir string

	lookup func(name string) (Device, bool)
}

// NewBoard is the preferred method of initialisation for the Board type. The
// lookup function finds other devices by name.
func NewBoard(io *iobus.Bus, mem *memory.Bus, clk *clocks.Distributor, env *environment.Environment,
	dir string, lookup func(name string) (Device, bool)) *Board {
	return &Board{
		IO:     io,
		Mem:    mem,
		Clock:  clk,
		Env:    env,
		Dir:    dir,
		lookup: lookup,
	}
}

// Peer returns the named device.
func (b *Board) Peer(name string) (Device, bool) {
	if b.lookup == nil {
		return nil, false
	}
	return b.lookup(name)
}

// RequirePeer returns the named device as type T. The requester and kind
// arguments are used in the error message.
func RequirePeer[T any](b *Board, requester string, name string, kind string) (T, error) {
	var zero T

	d, ok := b.Peer(name)
	if !ok {
		return zero, curated.Errorf(MissingPeer, requester, name)
	}

	p, ok := d.(T)
	if !ok {
		return zero, curated.Errorf(WrongPeer, requester, name, kind)
	}

	return p, nil
}

// Key returns the prefs key for a device attribute.
func Key(prefix string, attr string) string {
	return prefix + "." + attr
}

// Bind adds each attribute to the disk using the prefix. The attrs map is
// from attribute name to preference value.
func Bind(dsk *prefs.Disk, prefix string, attrs map[string]prefs.Pref) error {
	for a, p := range attrs {
		if err := dsk.Add(Key(prefix, a), p); err != nil {
			return err
		}
	}
	return nil
}
