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

// Package rtc implements the real time clock and configuration store. The
// controller keeps a calendar time, advanced once per simulated second, and
// 64 bytes of non-volatile memory which is persisted to a file.
//
// Every result is delayed by a fixed number of clock ticks, modelling the
// access time of the clock chip's registers. The device specific interrupt
// condition is signalled each time the seconds counter advances.
package rtc
