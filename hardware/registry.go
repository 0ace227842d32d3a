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
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/peripherals/beeper"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy/drive"
	"github.com/pcsim/pcsim/hardware/peripherals/keyboard"
	"github.com/pcsim/pcsim/hardware/peripherals/rtc"
	"github.com/pcsim/pcsim/hardware/peripherals/video"
	"github.com/pcsim/pcsim/hardware/registry"
)

// NewRegistry returns a registry containing every device kind.
func NewRegistry() *registry.Registry {
	reg := registry.NewRegistry()

	kinds := []struct {
		kind string
		c    registry.Constructor
	}{
		{kind: rtc.Kind, c: func(name string, env *environment.Environment) device.Device {
			return rtc.NewRTC(name, env)
		}},
		{kind: floppy.Kind, c: func(name string, env *environment.Environment) device.Device {
			return floppy.NewController(name, env)
		}},
		{kind: drive.Kind, c: func(name string, env *environment.Environment) device.Device {
			return drive.NewDrive(name, env)
		}},
		{kind: keyboard.Kind, c: func(name string, env *environment.Environment) device.Device {
			return keyboard.NewKeyboard(name, env)
		}},
		{kind: video.Kind, c: func(name string, env *environment.Environment) device.Device {
			return video.NewVideo(name, env)
		}},
		{kind: beeper.Kind, c: func(name string, env *environment.Environment) device.Device {
			return beeper.NewBeeper(name, env)
		}},
	}

	for _, k := range kinds {
		if err := reg.Register(k.kind, k.c); err != nil {
			panic(err)
		}
	}

	return reg
}
