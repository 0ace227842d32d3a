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

// Package peripherals contains the parts common to every peripheral
// controller. The controllers themselves are in the sub-packages.
//
// A peripheral controller embeds a Base. The Base holds the configurable port
// address and clock frequency and provides the steps of the lifecycle that
// every controller shares: attaching the controller's ports to the I/O bus
// on connect, allocating the runtime buffers on initialise and registering
// with the clock on start. Each step is undone by the matching teardown
// step.
package peripherals
