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

// Package device defines the contract between the appliance and the devices
// plugged into it.
//
// A device is created by the registry from its kind and a unique name. The
// appliance asks the device to bind its configuration values to a prefs.Disk
// and then walks the device through the lifecycle. Connect receives a Board,
// which gives the device access to the buses, the clock, the environment
// and the other devices in the appliance.
//
// Problems found while connecting (port conflicts, missing peers, bad
// configuration) are configuration errors. The appliance reports the error
// and disconnects every device it has already connected.
package device
