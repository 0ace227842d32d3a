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

// Package clocks distributes the master clock to every clocked device.
//
// Each device is registered with its own frequency. The master frequency is
// the fastest registered frequency and one call to Tick() is one cycle of
// the master clock. Slower devices are ticked using a Bresenham style
// integer divider: on each master cycle the device's frequency is added to
// an accumulator and when the accumulator reaches the master frequency the
// device is ticked and the accumulator reduced by the master frequency. Over
// any whole number of master-clock seconds a device receives exactly its
// frequency in ticks and there is no long-term drift.
//
// Within a master cycle devices are ticked in the order in which they were
// registered.
//
// The Limiter type paces the distributor to real time.
package clocks
