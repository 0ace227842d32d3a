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

package floppy

import (
	"fmt"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/environment"
	"github.com/pcsim/pcsim/hardware/async"
	"github.com/pcsim/pcsim/hardware/clocks"
	"github.com/pcsim/pcsim/hardware/controller"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/hardware/peripherals"
	"github.com/pcsim/pcsim/hardware/peripherals/floppy/drive"
	"github.com/pcsim/pcsim/prefs"
)

// Kind is the registry kind of the floppy controller.
const Kind = "fdc"

// Default configuration.
const (
	DefaultAddress   = 0x03f0
	DefaultFrequency = 1 * clocks.MHz
)

// Opcodes.
const (
	OpSelect     = 0xe0
	OpMotorOn    = 0xe1
	OpMotorOff   = 0xe2
	OpSeek       = 0xe3
	OpStatus     = 0xe4
	OpCalibrate  = 0xe5
	OpRead       = 0xe6
	OpWrite      = 0xe7
	OpFormat     = 0xe8
	OpSense      = 0xe9
	spinningFlag = 0x80
)

// Sentinal errors.
const (
	UnitInUse = "fdc: %s: unit %d already has a drive"
)

// Controller is the floppy disk controller.
type Controller struct {
	*lifecycle.Machine[*device.Board]
	*peripherals.Base

	// guarded by the controller lock
	drives   [drive.MaxUnits]*drive.Drive
	selected int

	// motor state of each unit as last reported by the drive
	motors uint8
}

// NewController is the preferred method of initialisation for the
// Controller type.
func NewController(name string, env *environment.Environment) *Controller {
	fdc := &Controller{}

	fdc.Base = peripherals.NewBase(name, env, controller.Config{
		Commands:     fdc.commands(),
		DeviceStatus: fdc.motorBits,
		Complete:     fdc.complete,
	}, DefaultAddress, DefaultFrequency)

	fdc.Machine = lifecycle.NewMachine[*device.Board](name, fdc)

	return fdc
}

func (fdc *Controller) commands() map[uint8]controller.Command {
	return map[uint8]controller.Command{
		OpSelect: {Name: "select", Length: controller.Fixed(2), Execute: fdc.selectUnit},
		OpMotorOn: {Name: "motor on", Length: controller.Fixed(1), Execute: func([]uint8) controller.Outcome {
			return fdc.withDrive(func(d *drive.Drive) {
				d.BeginMotorOn(fdc.Completion())
			})
		}},
		OpMotorOff: {Name: "motor off", Length: controller.Fixed(1), Execute: func([]uint8) controller.Outcome {
			return fdc.withDrive(func(d *drive.Drive) {
				d.BeginMotorOff(fdc.Completion())
			})
		}},
		OpSeek: {Name: "seek", Length: controller.Fixed(2), Execute: func(cmd []uint8) controller.Outcome {
			return fdc.withDrive(func(d *drive.Drive) {
				d.BeginSeek(cmd[1], fdc.Completion())
			})
		}},
		OpStatus: {Name: "status", Length: controller.Fixed(1), Execute: func([]uint8) controller.Outcome {
			return fdc.withDrive(func(d *drive.Drive) {
				d.BeginStatus(fdc.Completion())
			})
		}},
		OpCalibrate: {Name: "calibrate", Length: controller.Fixed(1), Execute: func([]uint8) controller.Outcome {
			return fdc.withDrive(func(d *drive.Drive) {
				d.BeginCalibrate(fdc.Completion())
			})
		}},
		OpRead: {Name: "read", Length: controller.Fixed(4), Execute: func(cmd []uint8) controller.Outcome {
			return fdc.withDrive(func(d *drive.Drive) {
				d.BeginRead(cmd[1], cmd[2], cmd[3], fdc.Completion())
			})
		}},
		OpWrite: {Name: "write", Length: writeLength, Execute: func(cmd []uint8) controller.Outcome {
			return fdc.withDrive(func(d *drive.Drive) {
				d.BeginWrite(cmd[1], cmd[2], cmd[4:], fdc.Completion())
			})
		}},
		OpFormat: controller.Reserved("format", 3),
		OpSense:  {Name: "sense", Length: controller.Fixed(1), Execute: fdc.sense},
	}
}

// the write command is followed by count sectors of data.
func writeLength(b []uint8) int {
	if len(b) < 4 {
		return 4
	}
	return 4 + int(b[3])*drive.SectorSize
}

// called with the controller lock held.
func (fdc *Controller) withDrive(f func(d *drive.Drive)) controller.Outcome {
	d := fdc.drives[fdc.selected]
	if d == nil {
		return controller.Fail(controller.NotReady)
	}
	f(d)
	return controller.Pending()
}

func (fdc *Controller) selectUnit(cmd []uint8) controller.Outcome {
	u := int(cmd[1])
	if u >= drive.MaxUnits {
		return controller.Fail(controller.InvalidParameter)
	}
	fdc.selected = u
	return controller.Done(controller.NoError)
}

func (fdc *Controller) sense([]uint8) controller.Outcome {
	return controller.Done(controller.NoError, uint8(fdc.selected), fdc.motorBits())
}

// called with the controller lock held.
func (fdc *Controller) motorBits() uint8 {
	return fdc.motors
}

// converts a drive result into result bytes. called with the controller lock
// held.
func (fdc *Controller) complete(r async.Result) []uint8 {
	if r.Unit >= 0 && r.Unit < drive.MaxUnits {
		if r.Spinning {
			fdc.motors |= 1 << r.Unit
		} else {
			fdc.motors &^= 1 << r.Unit
		}
	}

	switch r.Op {
	case async.OpStatus:
		cyl := r.Cylinder
		if r.Spinning {
			cyl |= spinningFlag
		}
		return []uint8{r.Status, cyl}
	case async.OpSeek, async.OpCalibrate:
		return []uint8{r.Status, r.Cylinder}
	case async.OpRead:
		if r.Status == controller.NoError {
			return append([]uint8{r.Status}, r.Data...)
		}
	}
	return []uint8{r.Status}
}

// AttachDrive implements the drive.Host interface.
func (fdc *Controller) AttachDrive(unit int, d *drive.Drive) error {
	if unit < 0 || unit >= drive.MaxUnits {
		return curated.Errorf(device.InvalidConfig, fdc.Name(), fmt.Sprintf("unit %d out of range", unit))
	}

	var err error
	fdc.WithLock(func() {
		if fdc.drives[unit] != nil {
			err = curated.Errorf(UnitInUse, fdc.Name(), unit)
			return
		}
		fdc.drives[unit] = d
	})
	return err
}

// DetachDrive implements the drive.Host interface.
func (fdc *Controller) DetachDrive(unit int, d *drive.Drive) {
	if unit < 0 || unit >= drive.MaxUnits {
		return
	}
	fdc.WithLock(func() {
		if fdc.drives[unit] == d {
			fdc.drives[unit] = nil
			fdc.motors &^= 1 << unit
		}
	})
}

// Drive returns the drive attached at the unit or nil.
func (fdc *Controller) Drive(unit int) *drive.Drive {
	if unit < 0 || unit >= drive.MaxUnits {
		return nil
	}
	var d *drive.Drive
	fdc.WithLock(func() {
		d = fdc.drives[unit]
	})
	return d
}

// Kind implements the device.Device interface.
func (fdc *Controller) Kind() string {
	return Kind
}

// Prefs implements the device.Device interface.
func (fdc *Controller) Prefs(dsk *prefs.Disk, prefix string) error {
	return fdc.Bind(dsk, prefix, nil)
}

// OnConnect implements the lifecycle.Hooks interface.
func (fdc *Controller) OnConnect(b *device.Board) error {
	return fdc.ConnectPorts(b)
}

// OnDisconnect implements the lifecycle.Hooks interface.
func (fdc *Controller) OnDisconnect(b *device.Board) {
	fdc.DisconnectPorts(b)
}

// OnInitialise implements the lifecycle.Hooks interface.
func (fdc *Controller) OnInitialise() error {
	fdc.Allocate()
	fdc.WithLock(func() {
		fdc.selected = 0
		fdc.motors = 0
	})
	return nil
}

// OnDeinitialise implements the lifecycle.Hooks interface.
func (fdc *Controller) OnDeinitialise() {
	fdc.Release()
}

// OnStart implements the lifecycle.Hooks interface.
func (fdc *Controller) OnStart() error {
	return fdc.StartClock(fdc.Context())
}

// OnStop implements the lifecycle.Hooks interface.
func (fdc *Controller) OnStop() {
	fdc.StopClock(fdc.Context())
}
