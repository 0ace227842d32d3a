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

// Package floppy implements the floppy disk controller. The controller
// supports up to four drives (see the drive package), one of which is
// selected at any time. Commands that move the head or transfer data are
// handed to the selected drive's worker and the result is made visible on
// the clock tick once the simulated cost of the operation has elapsed.
//
// The low nibble of the status port has one bit per unit, set when that
// unit's motor is on.
package floppy
