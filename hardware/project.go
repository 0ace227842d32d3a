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
	"strings"

	"github.com/pcsim/pcsim/curated"
	"github.com/pcsim/pcsim/hardware/device"
	"github.com/pcsim/pcsim/hardware/lifecycle"
	"github.com/pcsim/pcsim/logger"
	"github.com/pcsim/pcsim/prefs"
)

// Sentinal errors.
const (
	ProjectError = "appliance: project: %v"
)

// project file keys
const (
	devicesKey   = "appliance.devices"
	devicePrefix = "device"
)

// separators used in the list of devices
const (
	entrySep = ","
	kindSep  = ":"
)

// bind the appliance's own configuration to the disk.
func (app *Appliance) bind(dsk *prefs.Disk) error {
	return device.Bind(dsk, "appliance", map[string]prefs.Pref{
		"ram":     &app.RAMSize,
		"program": &app.Program,
		"origin":  &app.Origin,
	})
}

// bind the configuration of every device to the disk.
func (app *Appliance) bindDevices(dsk *prefs.Disk) error {
	for _, d := range app.devices {
		if err := d.Prefs(dsk, device.Key(devicePrefix, d.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Load a project file. The devices listed in the file are created and
// configured. The appliance must not have any devices.
//
// Values for the appliance and devices that are missing from the file keep
// their default values.
func (app *Appliance) Load(path string) error {
	if s := app.State(); s != lifecycle.Constructed {
		return curated.Errorf(lifecycle.InvalidTransition, "appliance", "load", s)
	}
	if len(app.devices) > 0 {
		return curated.Errorf(ProjectError, "appliance already has devices")
	}

	dsk, err := prefs.NewDisk(path)
	if err != nil {
		return curated.Errorf(ProjectError, err)
	}

	var list prefs.String
	if err := dsk.Add(devicesKey, &list); err != nil {
		return curated.Errorf(ProjectError, err)
	}
	if err := app.bind(dsk); err != nil {
		return curated.Errorf(ProjectError, err)
	}
	if err := dsk.Load(false); err != nil {
		return curated.Errorf(ProjectError, err)
	}

	for _, e := range strings.Split(list.String(), entrySep) {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}

		kind, name, ok := strings.Cut(e, kindSep)
		if !ok {
			name = kind
		}

		if _, err := app.AddDevice(kind, name); err != nil {
			app.removeDevices()
			return curated.Errorf(ProjectError, err)
		}
	}

	// the disk is loaded a second time now that the device values are bound
	if err := app.bindDevices(dsk); err != nil {
		app.removeDevices()
		return curated.Errorf(ProjectError, err)
	}
	if err := dsk.Load(false); err != nil {
		app.removeDevices()
		return curated.Errorf(ProjectError, err)
	}

	app.dir = dsk.Dir()

	logger.Logf(app.env, "appliance", "loaded %d devices from %s", len(app.devices), path)

	return nil
}

func (app *Appliance) removeDevices() {
	app.devices = app.devices[:0]
	clear(app.named)
}

// Save the appliance and the configuration of every device to a project
// file. Entries already in the file that do not belong to the appliance are
// preserved.
func (app *Appliance) Save(path string) error {
	dsk, err := prefs.NewDisk(path)
	if err != nil {
		return curated.Errorf(ProjectError, err)
	}

	l := make([]string, 0, len(app.devices))
	for _, d := range app.devices {
		l = append(l, d.Kind()+kindSep+d.Name())
	}

	var list prefs.String
	_ = list.Set(strings.Join(l, entrySep))

	if err := dsk.Add(devicesKey, &list); err != nil {
		return curated.Errorf(ProjectError, err)
	}
	if err := app.bind(dsk); err != nil {
		return curated.Errorf(ProjectError, err)
	}
	if err := app.bindDevices(dsk); err != nil {
		return curated.Errorf(ProjectError, err)
	}
	if err := dsk.Save(); err != nil {
		return curated.Errorf(ProjectError, err)
	}

	return nil
}
