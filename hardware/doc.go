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

// Package hardware is the base package for the emulated appliance. The
// Appliance type collects the buses, the clock distributor and the devices,
// and drives the devices through their lifecycle.
//
// Devices are created by kind from a registry. NewRegistry() returns a
// registry with every device kind in the hardware/peripherals packages:
//
//	app := hardware.NewAppliance(env, hardware.NewRegistry())
//	err := app.Load("machine.project")
//	...
//	err = app.Connect()
//	err = app.Initialise()
//	err = app.Start()
//
// The project file is a prefs file. The key "appliance.devices" lists the
// devices as kind:name pairs separated by commas. Devices are connected in
// the order in which they are listed. The configuration of each device is
// stored under keys beginning with "device.<name>".
//
// A started appliance runs the clock on its own goroutine, along with a Z80
// processor if a program has been configured. Alternatively, the appliance
// can be stepped by the caller with Step(), which is how tests and scripts
// drive the appliance.
package hardware
