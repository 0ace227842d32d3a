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

// Package beeper implements a square wave tone generator in the manner of
// the PC speaker. A divisor of the tone base frequency is written to the
// divisor port and the tone is gated on and off with bit zero of the gate
// port.
//
// The beeper is sampled at its clock frequency. If the "wav" preference is
// set the samples are collected and written to a WAV file when the device is
// deinitialised.
package beeper
